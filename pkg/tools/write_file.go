// WriteFileTool implementation.
package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"
)

// WriteFileTool writes complete file contents, creating parent directories
// as needed. Existing files are overwritten, matching the documented tool
// contract ("Overwrites existing files.").
type WriteFileTool struct {
	tc Context
}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        "write_file",
			Description: openai.String("Writes the complete content to a file. Overwrites existing files."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"file_path": map[string]any{
						"type":        "string",
						"description": "Path to the file.",
					},
					"content": map[string]any{
						"type":        "string",
						"description": "The complete content to write.",
					},
				},
				"required": []string{"file_path", "content"},
			},
		},
	}
}

func (t *WriteFileTool) Execute(_ context.Context, argText string) (string, error) {
	var args struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
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

	dir := filepath.Dir(validated)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return marshalResponse(t.Name(), nil, err)
		}
	}
	if err := os.WriteFile(validated, []byte(args.Content), 0o644); err != nil {
		return marshalResponse(t.Name(), nil, err)
	}

	result := struct {
		Path  string `json:"path"`
		Bytes int    `json:"bytes"`
	}{
		Path:  validated,
		Bytes: len(args.Content),
	}
	return marshalResponse(t.Name(), result, nil)
}
