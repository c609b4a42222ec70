// ReadFileTool implementation.
package tools

import (
	"context"
	"encoding/json"
	"os"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"
)

// ReadFileTool reads the contents of a local file.
type ReadFileTool struct {
	tc Context
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        "read_file",
			Description: openai.String("Read the contents of a local file."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"file_path": map[string]any{
						"type":        "string",
						"description": "Absolute or relative path to the file.",
					},
					"max_bytes": map[string]any{
						"type":        "integer",
						"description": "Optional byte cap on the returned content.",
					},
				},
				"required": []string{"file_path"},
			},
		},
	}
}

func (t *ReadFileTool) Execute(_ context.Context, argText string) (string, error) {
	var args struct {
		FilePath string `json:"file_path"`
		MaxBytes int64  `json:"max_bytes"`
	}
	if err := json.Unmarshal([]byte(argText), &args); err != nil {
		return marshalResponse(t.Name(), nil, errors.Wrap(err, "invalid arguments"))
	}
	if args.FilePath == "" {
		return marshalResponse(t.Name(), nil, errors.New("file_path is required"))
	}

	validated, err := validatePath(args.FilePath, t.tc.AllowedDirs)
	if err != nil {
		return marshalResponse(t.Name(), nil, errors.Wrap(err, "path validation failed"))
	}
	if err := validateFileExists(validated); err != nil {
		return marshalResponse(t.Name(), nil, err)
	}

	data, err := os.ReadFile(validated)
	if err != nil {
		return marshalResponse(t.Name(), nil, err)
	}

	maxBytes := args.MaxBytes
	if maxBytes <= 0 {
		maxBytes = t.tc.MaxReadBytes
	}
	truncated := false
	if int64(len(data)) > maxBytes {
		truncated = true
		data = data[:maxBytes]
	}

	result := struct {
		Path      string `json:"path"`
		Bytes     int    `json:"bytes"`
		Truncated bool   `json:"truncated"`
		Content   string `json:"content"`
	}{
		Path:      validated,
		Bytes:     len(data),
		Truncated: truncated,
		Content:   string(data),
	}
	return marshalResponse(t.Name(), result, nil)
}
