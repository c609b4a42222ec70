// CreateSkillTool implementation.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"
)

// CreateSkillTool persists a new skill into the skill store.
type CreateSkillTool struct {
	tc Context
}

func (t *CreateSkillTool) Name() string { return "create_skill" }

func (t *CreateSkillTool) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        "create_skill",
			Description: openai.String("Saves a new skill for the AI. Use this when the user asks you to remember something, learn a new workflow, or create a new capability for yourself."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "A short, descriptive name for the skill.",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "A one-sentence explanation of what the skill does.",
					},
					"instructions": map[string]any{
						"type":        "string",
						"description": "Detailed, step-by-step instructions for the AI to follow.",
					},
				},
				"required": []string{"name", "description", "instructions"},
			},
		},
	}
}

func (t *CreateSkillTool) Execute(_ context.Context, argText string) (string, error) {
	var args struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		Instructions string `json:"instructions"`
	}
	if err := json.Unmarshal([]byte(argText), &args); err != nil {
		return marshalResponse(t.Name(), nil, errors.Wrap(err, "invalid arguments"))
	}
	if t.tc.Skills == nil {
		return marshalResponse(t.Name(), nil, errors.New("skill store is not configured"))
	}

	skill, err := t.tc.Skills.Create(args.Name, args.Description, args.Instructions)
	if err != nil {
		return marshalResponse(t.Name(), nil, err)
	}

	result := struct {
		Name    string `json:"name"`
		Path    string `json:"path"`
		Message string `json:"message"`
	}{
		Name:    skill.Name,
		Path:    skill.Directory,
		Message: fmt.Sprintf("Skill %q created successfully. It is now available for use.", skill.Name),
	}
	return marshalResponse(t.Name(), result, nil)
}
