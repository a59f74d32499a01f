package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"julenisse/db"
	"julenisse/models"
)

type fakeJudge struct {
	scores map[string]int
	err    error
	calls  int
}

func (f *fakeJudge) ScoreDeed(ctx context.Context, deed string) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[deed], nil
}

// failingRepository fails every call with err.
type failingRepository struct {
	err error
}

func (f failingRepository) GetByName(ctx context.Context, name string) (*models.Reputation, error) {
	return nil, f.err
}

func (f failingRepository) AddScore(ctx context.Context, name string, delta int) (*models.Reputation, error) {
	return nil, f.err
}

func (f failingRepository) TopNice(ctx context.Context, limit int) ([]*models.Reputation, error) {
	return nil, f.err
}

func (f failingRepository) TopNaughty(ctx context.Context, limit int) ([]*models.Reputation, error) {
	return nil, f.err
}

func (f failingRepository) ListAll(ctx context.Context) ([]*models.Reputation, error) {
	return nil, f.err
}

func newTestDatabase(t *testing.T) *db.Database {
	t.Helper()

	database, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "julenisse.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}
	return database
}

func newTestReputationService(t *testing.T, judge DeedJudge) *ReputationService {
	t.Helper()
	return NewReputationService(db.NewReputationRepository(newTestDatabase(t)), judge, nil)
}

func TestRecordDeedForUnseenName(t *testing.T) {
	judge := &fakeJudge{scores: map[string]int{"Jeg hjalp mamma med oppvasken": 12}}
	service := newTestReputationService(t, judge)

	result, err := service.RecordDeed(context.Background(), " Ola ", "Jeg hjalp mamma med oppvasken")
	if err != nil {
		t.Fatalf("RecordDeed() returned error: %v", err)
	}

	if result.Name != "Ola" || result.DeedScore != 12 {
		t.Errorf("RecordDeed() = %+v, expected name Ola and deed score 12", result)
	}
	if result.Reputation.Score != 12 || result.Reputation.Updates != 1 {
		t.Errorf("Reputation = %+v, expected score 12 with 1 update", result.Reputation)
	}
}

func TestRecordDeedAccumulates(t *testing.T) {
	judge := &fakeJudge{scores: map[string]int{
		"Jeg ga bort lekene mine": 40,
		"Jeg sa et stygt ord":     -5,
	}}
	service := newTestReputationService(t, judge)
	ctx := context.Background()

	if _, err := service.RecordDeed(ctx, "Kari", "Jeg ga bort lekene mine"); err != nil {
		t.Fatalf("first RecordDeed() returned error: %v", err)
	}
	result, err := service.RecordDeed(ctx, "Kari", "Jeg sa et stygt ord")
	if err != nil {
		t.Fatalf("second RecordDeed() returned error: %v", err)
	}

	if result.Reputation.Score != 35 || result.Reputation.Updates != 2 {
		t.Errorf("Reputation = %+v, expected score 35 with 2 updates", result.Reputation)
	}
}

func TestCheckStanding(t *testing.T) {
	judge := &fakeJudge{scores: map[string]int{
		"snill":     25,
		"slem":      -30,
		"ingenting": 0,
	}}
	service := newTestReputationService(t, judge)
	ctx := context.Background()

	for name, deed := range map[string]string{"Nice": "snill", "Naughty": "slem", "Zero": "ingenting"} {
		if _, err := service.RecordDeed(ctx, name, deed); err != nil {
			t.Fatalf("RecordDeed(%s) returned error: %v", name, err)
		}
	}

	tests := []struct {
		name     string
		expected models.Standing
	}{
		{name: "Nice", expected: models.StandingNice},
		{name: "Naughty", expected: models.StandingNaughty},
		{name: "Zero", expected: models.StandingNaughty},
		{name: "Ukjent", expected: models.StandingUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			standing, reputation, err := service.CheckStanding(ctx, tt.name)
			if err != nil {
				t.Fatalf("CheckStanding() returned error: %v", err)
			}
			if standing != tt.expected {
				t.Errorf("CheckStanding() = %s, expected %s", standing, tt.expected)
			}
			if tt.expected == models.StandingUnknown && reputation != nil {
				t.Errorf("expected no reputation for unknown name, got %+v", reputation)
			}
		})
	}
}

func TestReputationServiceValidation(t *testing.T) {
	judge := &fakeJudge{}
	service := NewReputationService(failingRepository{err: errors.New("unreachable")}, judge, nil)
	ctx := context.Background()

	if _, _, err := service.CheckStanding(ctx, "  "); !errors.Is(err, ErrValidation) {
		t.Errorf("CheckStanding(blank) error = %v, expected ErrValidation", err)
	}
	if _, err := service.RecordDeed(ctx, "", "noe"); !errors.Is(err, ErrValidation) {
		t.Errorf("RecordDeed(blank name) error = %v, expected ErrValidation", err)
	}
	if _, err := service.RecordDeed(ctx, "Ola", " "); !errors.Is(err, ErrValidation) {
		t.Errorf("RecordDeed(blank deed) error = %v, expected ErrValidation", err)
	}
	if _, err := service.Leaderboard(ctx, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("Leaderboard(0) error = %v, expected ErrValidation", err)
	}
	if _, err := service.Search(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("Search(blank) error = %v, expected ErrValidation", err)
	}
	if judge.calls != 0 {
		t.Errorf("judge called %d times for invalid input", judge.calls)
	}
}

func TestReputationServiceStorageFaults(t *testing.T) {
	storageErr := errors.New("connection refused")
	judge := &fakeJudge{scores: map[string]int{"noe": 3}}
	service := NewReputationService(failingRepository{err: storageErr}, judge, nil)
	ctx := context.Background()

	if _, _, err := service.CheckStanding(ctx, "Ola"); !errors.Is(err, storageErr) {
		t.Errorf("CheckStanding() error = %v, expected storage error", err)
	}
	if _, err := service.RecordDeed(ctx, "Ola", "noe"); !errors.Is(err, storageErr) {
		t.Errorf("RecordDeed() error = %v, expected storage error", err)
	}
}

func TestRecordDeedJudgeFailureStoresNothing(t *testing.T) {
	judgeErr := errors.New("model unavailable")
	service := newTestReputationService(t, &fakeJudge{err: judgeErr})
	ctx := context.Background()

	if _, err := service.RecordDeed(ctx, "Ola", "Jeg ryddet rommet"); !errors.Is(err, judgeErr) {
		t.Fatalf("RecordDeed() error = %v, expected judge error", err)
	}

	standing, _, err := service.CheckStanding(ctx, "Ola")
	if err != nil {
		t.Fatalf("CheckStanding() returned error: %v", err)
	}
	if standing != models.StandingUnknown {
		t.Errorf("standing = %s, expected nothing recorded after judge failure", standing)
	}
}

func TestLeaderboardAndSearch(t *testing.T) {
	judge := &fakeJudge{scores: map[string]int{"bra": 10, "dårlig": -10}}
	service := newTestReputationService(t, judge)
	ctx := context.Background()

	records := []struct{ name, deed string }{
		{"Ingrid", "bra"},
		{"Ingrid", "bra"},
		{"Ingvild", "bra"},
		{"Lars", "dårlig"},
	}
	for _, r := range records {
		if _, err := service.RecordDeed(ctx, r.name, r.deed); err != nil {
			t.Fatalf("RecordDeed(%s) returned error: %v", r.name, err)
		}
	}

	board, err := service.Leaderboard(ctx, 5)
	if err != nil {
		t.Fatalf("Leaderboard() returned error: %v", err)
	}
	if len(board.Nice) != 2 || board.Nice[0].Name != "Ingrid" || board.Nice[0].Score != 20 {
		t.Errorf("Nice = %+v, expected Ingrid first with 20", board.Nice)
	}
	if len(board.Naughty) != 1 || board.Naughty[0].Name != "Lars" {
		t.Errorf("Naughty = %+v, expected only Lars", board.Naughty)
	}

	matches, err := service.Search(ctx, "ingrd")
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Ingrid" {
		t.Errorf("Search(ingrd) = %+v, expected Ingrid", matches)
	}

	matches, err = service.Search(ctx, "ing")
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Search(ing) returned %d matches, expected 2", len(matches))
	}
}
