// RunShellCommandTool implementation.
package tools

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"
)

// RunShellCommandTool executes a shell command on the local machine.
type RunShellCommandTool struct {
	tc Context
}

func (t *RunShellCommandTool) Name() string { return "run_shell_command" }

func (t *RunShellCommandTool) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        "run_shell_command",
			Description: openai.String("Run a shell command on the user's local machine."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"command": map[string]any{
						"type":        "string",
						"description": "The bash command to execute.",
					},
					"working_dir": map[string]any{
						"type":        "string",
						"description": "Optional working directory for the command.",
					},
				},
				"required": []string{"command"},
			},
		},
	}
}

func (t *RunShellCommandTool) Execute(ctx context.Context, argText string) (string, error) {
	var args struct {
		Command    string `json:"command"`
		WorkingDir string `json:"working_dir"`
	}
	if err := json.Unmarshal([]byte(argText), &args); err != nil {
		return marshalResponse(t.Name(), nil, errors.Wrap(err, "invalid arguments"))
	}
	if args.Command == "" {
		return marshalResponse(t.Name(), nil, errors.New("command is required"))
	}

	if isDangerousCommand(args.Command) {
		return marshalResponse(t.Name(), nil, errors.Errorf("dangerous command not allowed: %s", args.Command))
	}

	workingDir := ""
	if args.WorkingDir != "" {
		validated, err := validatePath(args.WorkingDir, t.tc.AllowedDirs)
		if err != nil {
			return marshalResponse(t.Name(), nil, errors.Wrap(err, "working directory validation failed"))
		}
		workingDir = validated
	}

	result := runCommand(ctx, "bash", []string{"-lc", args.Command}, workingDir, t.tc.ShellTimeout)
	return marshalResponse(t.Name(), result, nil)
}
