package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"julenisse/db"
	"julenisse/models"
	"julenisse/services"
)

type fakeJudge struct {
	score int
	err   error
}

func (f fakeJudge) ScoreDeed(ctx context.Context, deed string) (int, error) {
	return f.score, f.err
}

// scriptedResponder replays a fixed list of turns and records what it was
// asked.
type scriptedResponder struct {
	turns    []models.AgentMessage
	requests []ResponderRequest
}

func (r *scriptedResponder) Provider() string {
	return "scripted"
}

func (r *scriptedResponder) Respond(ctx context.Context, req ResponderRequest, onToken TokenFunc) (*models.AgentMessage, error) {
	r.requests = append(r.requests, req)
	if len(r.requests) > len(r.turns) {
		return nil, errors.New("script exhausted")
	}

	turn := r.turns[len(r.requests)-1]
	if onToken != nil && turn.Content != "" {
		onToken(turn.Content)
	}
	return &turn, nil
}

// alwaysToolResponder asks for a lookup on every turn.
type alwaysToolResponder struct {
	calls int
}

func (r *alwaysToolResponder) Provider() string {
	return "looping"
}

func (r *alwaysToolResponder) Respond(ctx context.Context, req ResponderRequest, onToken TokenFunc) (*models.AgentMessage, error) {
	r.calls++
	return &models.AgentMessage{
		Role: models.RoleAssistant,
		ToolCalls: []models.ToolCall{{
			ID:        "call",
			Name:      string(ToolCheckNaughtyList),
			Arguments: map[string]interface{}{"name": "Ola"},
		}},
	}, nil
}

type testEnv struct {
	reputations *services.ReputationService
	threads     *services.ThreadService
}

func newTestEnv(t *testing.T, judge services.DeedJudge) testEnv {
	t.Helper()

	database, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "julenisse.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	return testEnv{
		reputations: services.NewReputationService(db.NewReputationRepository(database), judge, nil),
		threads:     services.NewThreadService(db.NewThreadRepository(database)),
	}
}
