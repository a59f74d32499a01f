package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"julenisse/models"
	"julenisse/services"

	"github.com/invopop/jsonschema"
)

type ToolName string

const (
	ToolCheckNaughtyList      ToolName = "check_naughty_list"
	ToolRegisterNaughtyOrNice ToolName = "register_naughty_or_nice"
)

// AgentTool interface that all tools must implement
type AgentTool interface {
	Name() ToolName
	Description() string
	Call(ctx context.Context, input string) (string, error)
	InputSchema() *jsonschema.Schema
}

func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

type CheckNaughtyListToolInput struct {
	Name string `json:"name" jsonschema:"required,description=First name of the child to look up"`
}

type CheckNaughtyListTool struct {
	reputationService *services.ReputationService
}

func NewCheckNaughtyListTool(reputationService *services.ReputationService) CheckNaughtyListTool {
	return CheckNaughtyListTool{reputationService: reputationService}
}

func (c CheckNaughtyListTool) Name() ToolName {
	return ToolCheckNaughtyList
}

func (c CheckNaughtyListTool) Description() string {
	return "Call with a name, to check if the name is on the naughty list."
}

// Call never fails on storage faults; they become a sentence the model can
// pass on.
func (c CheckNaughtyListTool) Call(ctx context.Context, input string) (string, error) {
	var params CheckNaughtyListToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse check naughty list tool input: %v", err)
	}

	name := strings.TrimSpace(params.Name)
	standing, _, err := c.reputationService.CheckStanding(ctx, name)
	if err != nil {
		log.Printf("[ERROR] Naughty list lookup failed for %q: %v", name, err)
		return LookupFailedReply, nil
	}

	switch standing {
	case models.StandingNice:
		return fmt.Sprintf(niceReplyFormat, name), nil
	case models.StandingNaughty:
		return fmt.Sprintf(naughtyReplyFormat, name), nil
	default:
		return fmt.Sprintf(unknownReplyFormat, name), nil
	}
}

func (c CheckNaughtyListTool) InputSchema() *jsonschema.Schema {
	return generateSchema[CheckNaughtyListToolInput]()
}

type RegisterNaughtyOrNiceToolInput struct {
	Name   string `json:"name" jsonschema:"required,description=First name of the child who did the action"`
	Action string `json:"action" jsonschema:"required,description=What the child did that was naughty or nice"`
}

type RegisterNaughtyOrNiceTool struct {
	reputationService *services.ReputationService
}

func NewRegisterNaughtyOrNiceTool(reputationService *services.ReputationService) RegisterNaughtyOrNiceTool {
	return RegisterNaughtyOrNiceTool{reputationService: reputationService}
}

func (r RegisterNaughtyOrNiceTool) Name() ToolName {
	return ToolRegisterNaughtyOrNice
}

func (r RegisterNaughtyOrNiceTool) Description() string {
	return "Call with a name and action, to update the naughty or nice score for the name."
}

func (r RegisterNaughtyOrNiceTool) Call(ctx context.Context, input string) (string, error) {
	var params RegisterNaughtyOrNiceToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse register naughty or nice tool input: %v", err)
	}

	if _, err := r.reputationService.RecordDeed(ctx, params.Name, params.Action); err != nil {
		log.Printf("[ERROR] Registering action failed for %q: %v", params.Name, err)
		return RecordFailedReply, nil
	}

	return RecordedReply, nil
}

func (r RegisterNaughtyOrNiceTool) InputSchema() *jsonschema.Schema {
	return generateSchema[RegisterNaughtyOrNiceToolInput]()
}
