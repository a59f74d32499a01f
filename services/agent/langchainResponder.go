package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"julenisse/models"

	"github.com/tmc/langchaingo/llms"
)

// LangchainResponder drives any langchaingo model with tool support. It does
// not stream; the finished text is handed to onToken in one piece.
type LangchainResponder struct {
	llm      llms.Model
	provider string
}

func NewLangchainResponder(llm llms.Model, provider string) *LangchainResponder {
	return &LangchainResponder{llm: llm, provider: provider}
}

func (r *LangchainResponder) Provider() string {
	return r.provider
}

func (r *LangchainResponder) Respond(ctx context.Context, req ResponderRequest, onToken TokenFunc) (*models.AgentMessage, error) {
	messageHistory := convertToLangchainMessages(req.SystemPrompt, req.Messages)
	tools := buildLangchainTools(req.Tools)

	log.Printf("[INFO] Calling %s model with %d messages and %d tools", r.provider, len(messageHistory), len(tools))

	resp, err := r.llm.GenerateContent(ctx, messageHistory,
		llms.WithTools(tools),
		llms.WithTemperature(0.7))
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in model response")
	}
	choice := resp.Choices[0]

	reply := &models.AgentMessage{
		Role:    models.RoleAssistant,
		Content: choice.Content,
	}

	for _, toolCall := range choice.ToolCalls {
		if toolCall.FunctionCall == nil {
			continue
		}

		var arguments map[string]interface{}
		if toolCall.FunctionCall.Arguments != "" {
			if err := json.Unmarshal([]byte(toolCall.FunctionCall.Arguments), &arguments); err != nil {
				log.Printf("[ERROR] Failed to parse %s arguments: %v", toolCall.FunctionCall.Name, err)
			}
		}

		reply.ToolCalls = append(reply.ToolCalls, models.ToolCall{
			ID:        toolCall.ID,
			Name:      toolCall.FunctionCall.Name,
			Arguments: arguments,
		})
	}

	log.Printf("[INFO] Model replied with %d characters and %d tool calls", len(reply.Content), len(reply.ToolCalls))

	if onToken != nil && reply.Content != "" {
		onToken(reply.Content)
	}

	return reply, nil
}

func convertToLangchainMessages(systemPrompt string, messages []models.AgentMessage) []llms.MessageContent {
	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
	}

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			messageHistory = append(messageHistory, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		case models.RoleAssistant:
			var parts []llms.ContentPart
			if msg.Content != "" {
				parts = append(parts, llms.TextContent{Text: msg.Content})
			}
			for _, toolCall := range msg.ToolCalls {
				arguments, _ := json.Marshal(toolCall.Arguments)
				parts = append(parts, llms.ToolCall{
					ID:   toolCall.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      toolCall.Name,
						Arguments: string(arguments),
					},
				})
			}
			if len(parts) == 0 {
				continue
			}
			messageHistory = append(messageHistory, llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: parts,
			})
		case models.RoleTool:
			for _, result := range msg.ToolResults {
				messageHistory = append(messageHistory, llms.MessageContent{
					Role: llms.ChatMessageTypeTool,
					Parts: []llms.ContentPart{
						llms.ToolCallResponse{
							ToolCallID: result.ToolCallID,
							Name:       result.Name,
							Content:    result.Content,
						},
					},
				})
			}
		}
	}

	return messageHistory
}

func buildLangchainTools(tools []AgentTool) []llms.Tool {
	var definitions []llms.Tool

	for _, tool := range tools {
		definitions = append(definitions, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        string(tool.Name()),
				Description: tool.Description(),
				Parameters:  tool.InputSchema(),
			},
		})
	}

	return definitions
}
