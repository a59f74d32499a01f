package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"julenisse/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicResponder struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropicResponder(apiKey, model string) *AnthropicResponder {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicResponder{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: 4096,
	}
}

func (r *AnthropicResponder) Provider() string {
	return "anthropic"
}

// Respond streams one assistant turn, forwarding text deltas to onToken and
// collecting tool use blocks from the accumulated message.
func (r *AnthropicResponder) Respond(ctx context.Context, req ResponderRequest, onToken TokenFunc) (*models.AgentMessage, error) {
	anthropicMessages := convertToAnthropicMessages(req.Messages)
	toolSpecs := buildAnthropicToolSpecs(req.Tools)

	log.Printf("[INFO] Anthropic request: %d messages, %d tools", len(anthropicMessages), len(toolSpecs))

	stream := r.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.SystemPrompt}},
		Messages:  anthropicMessages,
		Tools:     toolSpecs,
	})
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("failed to accumulate Anthropic stream: %w", err)
		}

		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && onToken != nil && text.Text != "" {
				onToken(text.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	log.Printf("[INFO] Anthropic response: stop reason %s, %d content blocks", message.StopReason, len(message.Content))

	return messageFromAnthropic(&message), nil
}

func messageFromAnthropic(message *anthropic.Message) *models.AgentMessage {
	reply := &models.AgentMessage{Role: models.RoleAssistant}

	for _, block := range message.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			reply.Content += block.Text
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(block.Input)
			var inputMap map[string]interface{}
			if err := json.Unmarshal(inputJSON, &inputMap); err != nil {
				log.Printf("[ERROR] Failed to decode tool input for %s: %v", block.Name, err)
			}

			reply.ToolCalls = append(reply.ToolCalls, models.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: inputMap,
			})
		}
	}

	return reply
}

func convertToAnthropicMessages(messages []models.AgentMessage) []anthropic.MessageParam {
	var anthropicMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case models.RoleAssistant:
			contentBlocks := []anthropic.ContentBlockParamUnion{}

			if msg.Content != "" {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfText: &anthropic.TextBlockParam{Text: msg.Content},
				})
			}

			for _, toolCall := range msg.ToolCalls {
				input := toolCall.Arguments
				if input == nil {
					input = map[string]interface{}{}
				}
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    toolCall.ID,
						Name:  toolCall.Name,
						Input: input,
					},
				})
			}

			// the API rejects empty assistant turns
			if len(contentBlocks) == 0 {
				continue
			}
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(contentBlocks...))
		case models.RoleTool:
			toolResultBlocks := []anthropic.ContentBlockParamUnion{}
			for _, result := range msg.ToolResults {
				toolResultBlocks = append(toolResultBlocks, anthropic.ContentBlockParamUnion{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: result.ToolCallID,
						Content: []anthropic.ToolResultBlockParamContentUnion{
							{OfText: &anthropic.TextBlockParam{Text: result.Content}},
						},
					},
				})
			}
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	return anthropicMessages
}

func buildAnthropicToolSpecs(tools []AgentTool) []anthropic.ToolUnionParam {
	var toolSpecs []anthropic.ToolUnionParam

	for _, tool := range tools {
		schema := tool.InputSchema()
		toolSpecs = append(toolSpecs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        string(tool.Name()),
				Description: anthropic.String(tool.Description()),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema.Properties,
					Required:   schema.Required,
				},
			},
		})
	}

	return toolSpecs
}
