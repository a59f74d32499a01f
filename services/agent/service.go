package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"julenisse/metrics"
	"julenisse/models"
	"julenisse/services"

	"github.com/samber/lo"
)

var ErrToolRoundsExceeded = errors.New("tool round limit exceeded")

// TokenFunc receives reply text as it is produced.
type TokenFunc func(token string)

type ResponderRequest struct {
	SystemPrompt string
	Messages     []models.AgentMessage
	Tools        []AgentTool
}

// Responder produces one assistant turn: text, tool calls, or both.
type Responder interface {
	Provider() string
	Respond(ctx context.Context, req ResponderRequest, onToken TokenFunc) (*models.AgentMessage, error)
}

type Service struct {
	responder     Responder
	threads       *services.ThreadService
	tools         []AgentTool
	maxToolRounds int
	metrics       *metrics.Metrics
}

func NewService(responder Responder, threads *services.ThreadService, reputations *services.ReputationService, maxToolRounds int, m *metrics.Metrics) *Service {
	tools := []AgentTool{
		NewCheckNaughtyListTool(reputations),
		NewRegisterNaughtyOrNiceTool(reputations),
	}

	return &Service{
		responder:     responder,
		threads:       threads,
		tools:         tools,
		maxToolRounds: maxToolRounds,
		metrics:       m,
	}
}

// ProcessMessage appends the user's input to the thread and runs the
// respond/act cycle until the responder stops asking for tools. A turn that
// asks for tools is persisted in the same transaction as its results.
func (s *Service) ProcessMessage(ctx context.Context, threadID, input string, onToken TokenFunc) (*models.AgentResponse, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: message is required", services.ErrValidation)
	}

	log.Printf("[INFO] Starting agent message processing for thread %s", threadID)

	history, err := s.threads.History(ctx, threadID)
	if err != nil {
		return nil, err
	}

	userMsg := models.AgentMessage{Role: models.RoleUser, Content: input}
	if err := s.threads.Append(ctx, threadID, userMsg); err != nil {
		return nil, err
	}
	s.metrics.IncChatTurn()

	transcript := append(history, userMsg)
	produced := []models.AgentMessage{userMsg}

	for round := 0; ; round++ {
		reply, err := s.respond(ctx, transcript, onToken)
		if err != nil {
			return nil, err
		}

		if !reply.HasToolCalls() {
			if err := s.threads.Append(ctx, threadID, *reply); err != nil {
				return nil, err
			}
			produced = append(produced, *reply)
			break
		}

		// a tool call is only stored together with its results
		if round >= s.maxToolRounds {
			toolMsg := s.refuseToolCalls(reply.ToolCalls)
			if err := s.threads.Append(ctx, threadID, *reply, toolMsg); err != nil {
				return nil, err
			}
			log.Printf("[ERROR] Thread %s exceeded %d tool rounds", threadID, s.maxToolRounds)
			return nil, fmt.Errorf("%w: %d rounds", ErrToolRoundsExceeded, s.maxToolRounds)
		}

		toolMsg := s.executeToolCalls(ctx, reply.ToolCalls)
		if err := s.threads.Append(ctx, threadID, *reply, toolMsg); err != nil {
			return nil, err
		}
		transcript = append(transcript, *reply, toolMsg)
		produced = append(produced, *reply, toolMsg)
	}

	log.Printf("[INFO] Agent message processing completed with %d new messages", len(produced))

	return &models.AgentResponse{
		ThreadID: threadID,
		Reply:    replyText(produced),
		Messages: produced,
	}, nil
}

func (s *Service) respond(ctx context.Context, transcript []models.AgentMessage, onToken TokenFunc) (*models.AgentMessage, error) {
	started := time.Now()
	reply, err := s.responder.Respond(ctx, ResponderRequest{
		SystemPrompt: SantaSystemPrompt,
		Messages:     transcript,
		Tools:        s.tools,
	}, onToken)
	s.metrics.ObserveResponder(s.responder.Provider(), started, err)

	if err != nil {
		log.Printf("[ERROR] Responder call failed: %v", err)
		return nil, fmt.Errorf("failed to get response: %w", err)
	}

	reply.Role = models.RoleAssistant
	return reply, nil
}

func (s *Service) executeToolCalls(ctx context.Context, calls []models.ToolCall) models.AgentMessage {
	toolMsg := models.AgentMessage{Role: models.RoleTool}

	for _, call := range calls {
		log.Printf("[INFO] Executing tool: %s with arguments: %v", call.Name, call.Arguments)

		result, err := s.executeTool(ctx, call)
		if err != nil {
			log.Printf("[ERROR] Tool execution failed: %v", err)
			result = fmt.Sprintf("Error: %v", err)
		} else {
			log.Printf("[INFO] Tool execution result: %s", result)
		}

		toolMsg.ToolResults = append(toolMsg.ToolResults, models.ToolResult{
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    result,
		})
	}

	return toolMsg
}

func (s *Service) executeTool(ctx context.Context, call models.ToolCall) (string, error) {
	tool, ok := lo.Find(s.tools, func(t AgentTool) bool {
		return string(t.Name()) == call.Name
	})
	if !ok {
		s.metrics.IncToolCall(call.Name, "unknown")
		return "", fmt.Errorf("tool %s not found", call.Name)
	}

	arguments := call.Arguments
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	inputJSON, err := json.Marshal(arguments)
	if err != nil {
		s.metrics.IncToolCall(call.Name, "error")
		return "", fmt.Errorf("failed to encode arguments for %s: %w", call.Name, err)
	}

	result, err := tool.Call(ctx, string(inputJSON))
	if err != nil {
		s.metrics.IncToolCall(call.Name, "error")
		return "", err
	}

	s.metrics.IncToolCall(call.Name, "ok")
	return result, nil
}

func (s *Service) refuseToolCalls(calls []models.ToolCall) models.AgentMessage {
	return models.AgentMessage{
		Role: models.RoleTool,
		ToolResults: lo.Map(calls, func(call models.ToolCall, _ int) models.ToolResult {
			return models.ToolResult{
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    fmt.Sprintf(toolLimitReplyFormat, call.Name),
			}
		}),
	}
}

func replyText(messages []models.AgentMessage) string {
	texts := lo.FilterMap(messages, func(msg models.AgentMessage, _ int) (string, bool) {
		content := strings.TrimSpace(msg.Content)
		return content, msg.Role == models.RoleAssistant && content != ""
	})
	return strings.Join(texts, "\n\n")
}
