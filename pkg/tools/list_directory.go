// ListDirectoryTool implementation.
package tools

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"
)

// ListDirectoryTool lists the names of entries directly inside a directory.
type ListDirectoryTool struct {
	tc Context
}

func (t *ListDirectoryTool) Name() string { return "list_directory" }

func (t *ListDirectoryTool) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        "list_directory",
			Description: openai.String("Lists the names of files and subdirectories directly within a specified directory path."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"dir_path": map[string]any{
						"type":        "string",
						"description": "The path to the directory to list.",
					},
				},
				"required": []string{"dir_path"},
			},
		},
	}
}

func (t *ListDirectoryTool) Execute(_ context.Context, argText string) (string, error) {
	var args struct {
		DirPath string `json:"dir_path"`
	}
	if err := json.Unmarshal([]byte(argText), &args); err != nil {
		return marshalResponse(t.Name(), nil, errors.Wrap(err, "invalid arguments"))
	}
	if args.DirPath == "" {
		return marshalResponse(t.Name(), nil, errors.New("dir_path is required"))
	}

	validated, err := validatePath(args.DirPath, t.tc.AllowedDirs)
	if err != nil {
		return marshalResponse(t.Name(), nil, errors.Wrap(err, "path validation failed"))
	}

	info, err := os.Stat(validated)
	if err != nil {
		return marshalResponse(t.Name(), nil, err)
	}
	if !info.IsDir() {
		return marshalResponse(t.Name(), nil, errors.Errorf("not a directory: %s", validated))
	}

	entries, err := os.ReadDir(validated)
	if err != nil {
		return marshalResponse(t.Name(), nil, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	result := struct {
		Path    string   `json:"path"`
		Entries []string `json:"entries"`
		Count   int      `json:"count"`
		Note    string   `json:"note,omitempty"`
	}{
		Path:    validated,
		Entries: names,
		Count:   len(names),
	}
	if len(names) == 0 {
		result.Note = "(empty directory)"
	}
	return marshalResponse(t.Name(), result, nil)
}
