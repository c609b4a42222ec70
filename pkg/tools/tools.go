// Package tools implements the tool surface exposed to the model: shell
// execution, file I/O, directory listing, web search, and skill creation.
// Every tool returns a JSON envelope {ok, tool, data, error} so the model
// always receives a parseable result, even on failure.
package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"

	"github.com/gptcli/gptcli/pkg/logger"
	"github.com/gptcli/gptcli/pkg/skills"
)

// DefaultMaxReadBytes caps read_file output.
const DefaultMaxReadBytes int64 = 1024 * 1024

// DefaultShellTimeout bounds run_shell_command execution.
const DefaultShellTimeout = 60 * time.Second

// Tool is a single capability callable by the model.
type Tool interface {
	// Name returns the tool name used in the API schema.
	Name() string
	// Definition returns the chat-completions tool schema.
	Definition() openai.ChatCompletionToolParam
	// Execute runs the tool against raw JSON arguments. The returned string
	// is always an envelope; the error is reserved for marshaling failures.
	Execute(ctx context.Context, argText string) (string, error)
}

// Context carries shared configuration into every tool.
type Context struct {
	MaxReadBytes int64
	ShellTimeout time.Duration
	// AllowedDirs restricts file operations when non-empty.
	AllowedDirs []string
	// Skills backs the create_skill tool.
	Skills *skills.Store
	// HTTPClient is used by web_search; a default client is created when nil.
	HTTPClient *http.Client
}

// Registry holds the registered tools and dispatches calls by name.
type Registry struct {
	tools  map[string]Tool
	params []openai.ChatCompletionToolParam
}

// NewRegistry builds a registry with all built-in tools.
func NewRegistry(tc Context) *Registry {
	if tc.MaxReadBytes <= 0 {
		tc.MaxReadBytes = DefaultMaxReadBytes
	}
	if tc.ShellTimeout <= 0 {
		tc.ShellTimeout = DefaultShellTimeout
	}
	if tc.HTTPClient == nil {
		tc.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	r := &Registry{tools: make(map[string]Tool)}
	r.Register(&RunShellCommandTool{tc: tc})
	r.Register(&ReadFileTool{tc: tc})
	r.Register(&WriteFileTool{tc: tc})
	r.Register(&ListDirectoryTool{tc: tc})
	r.Register(&WebSearchTool{tc: tc})
	r.Register(&CreateSkillTool{tc: tc})
	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
	r.params = append(r.params, t.Definition())
}

// Definitions returns the tool schemas for the chat-completions request.
func (r *Registry) Definitions() []openai.ChatCompletionToolParam {
	return r.params
}

// Execute dispatches a tool call. Unknown tools and cancelled contexts
// produce error envelopes rather than hard failures.
func (r *Registry) Execute(ctx context.Context, call openai.ChatCompletionMessageToolCall) (string, error) {
	select {
	case <-ctx.Done():
		return marshalResponse(call.Function.Name, nil, ctx.Err())
	default:
	}

	t, ok := r.tools[call.Function.Name]
	if !ok {
		return marshalResponse(call.Function.Name, nil, errors.Errorf("unknown tool: %s", call.Function.Name))
	}

	logger.G(ctx).WithField("tool", call.Function.Name).Debug("executing tool call")
	return t.Execute(ctx, call.Function.Arguments)
}

// response is the envelope sent back to the model after tool execution.
type response struct {
	OK   bool   `json:"ok"`
	Tool string `json:"tool,omitempty"`
	Data any    `json:"data,omitempty"`
	Err  string `json:"error,omitempty"`
}

// marshalResponse encodes a tool result envelope.
func marshalResponse(tool string, data any, err error) (string, error) {
	resp := response{OK: err == nil, Tool: tool, Data: data}
	if err != nil {
		resp.Err = err.Error()
	}
	payload, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		return "", marshalErr
	}
	return string(payload), nil
}
