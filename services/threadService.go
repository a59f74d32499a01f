package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"julenisse/db"
	"julenisse/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const Greeting = "Hei, jeg er Julenissen! Hva heter du, og hva ønsker du deg til jul i år?"

type ThreadService struct {
	repo db.ThreadRepository
}

func NewThreadService(repo db.ThreadRepository) *ThreadService {
	return &ThreadService{repo: repo}
}

func (s *ThreadService) NewThreadID() string {
	return uuid.New().String()
}

func (s *ThreadService) History(ctx context.Context, threadID string) ([]models.AgentMessage, error) {
	threadID, err := normalizeThreadID(threadID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.GetMessages(ctx, threadID)
	if err != nil {
		log.Printf("[ERROR] Failed to load thread %s: %v", threadID, err)
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}

	return messages, nil
}

// VisibleHistory returns the user and assistant turns that carry text, which
// is what the chat surfaces render.
func (s *ThreadService) VisibleHistory(ctx context.Context, threadID string) ([]models.AgentMessage, error) {
	messages, err := s.History(ctx, threadID)
	if err != nil {
		return nil, err
	}

	return VisibleMessages(messages), nil
}

func (s *ThreadService) Append(ctx context.Context, threadID string, messages ...models.AgentMessage) error {
	threadID, err := normalizeThreadID(threadID)
	if err != nil {
		return err
	}

	if err := s.repo.AppendMessages(ctx, threadID, messages...); err != nil {
		log.Printf("[ERROR] Failed to append %d messages to thread %s: %v", len(messages), threadID, err)
		return fmt.Errorf("failed to append to thread: %w", err)
	}

	return nil
}

func VisibleMessages(messages []models.AgentMessage) []models.AgentMessage {
	return lo.FilterMap(messages, func(msg models.AgentMessage, _ int) (models.AgentMessage, bool) {
		if strings.TrimSpace(msg.Content) == "" {
			return models.AgentMessage{}, false
		}
		if msg.Role != models.RoleUser && msg.Role != models.RoleAssistant {
			return models.AgentMessage{}, false
		}
		return models.AgentMessage{Role: msg.Role, Content: msg.Content}, true
	})
}

func normalizeThreadID(threadID string) (string, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return "", fmt.Errorf("%w: thread id is required", ErrValidation)
	}
	return threadID, nil
}
