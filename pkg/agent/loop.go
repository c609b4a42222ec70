// Package agent runs the conversation loop: it sends the message history to
// the chat-completions API, dispatches returned tool calls, and repeats until
// the model produces a plain response or the turn cap is hit.
package agent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"

	"github.com/gptcli/gptcli/pkg/logger"
	"github.com/gptcli/gptcli/pkg/tools"
)

// maxToolOutput caps the bytes of a single tool result fed back to the model.
const maxToolOutput = 10000

// UI receives user-visible events from the loop.
type UI interface {
	Assistant(message string)
	ToolCall(name, args string)
}

// nopUI discards all events.
type nopUI struct{}

func (nopUI) Assistant(string)        {}
func (nopUI) ToolCall(string, string) {}

// Loop holds the conversation state for one session.
type Loop struct {
	client       openai.Client
	model        openai.ChatModel
	registry     *tools.Registry
	systemPrompt string

	ui       UI
	maxTurns int
	stream   bool
	out      io.Writer

	history []openai.ChatCompletionMessageParamUnion
}

// Option configures a Loop.
type Option func(*Loop)

// WithUI routes assistant output and tool-call notices to ui.
func WithUI(ui UI) Option {
	return func(l *Loop) {
		if ui != nil {
			l.ui = ui
		}
	}
}

// WithMaxTurns caps tool-call turns per Run.
func WithMaxTurns(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxTurns = n
		}
	}
}

// WithStreaming streams assistant deltas to w as they arrive.
func WithStreaming(w io.Writer) Option {
	return func(l *Loop) {
		if w != nil {
			l.stream = true
			l.out = w
		}
	}
}

// New creates a Loop seeded with the system prompt.
func New(client openai.Client, model string, registry *tools.Registry, systemPrompt string, opts ...Option) *Loop {
	l := &Loop{
		client:       client,
		model:        openai.ChatModel(model),
		registry:     registry,
		systemPrompt: systemPrompt,
		ui:           nopUI{},
		maxTurns:     20,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.Reset()
	return l
}

// Reset clears the history back to the system message.
func (l *Loop) Reset() {
	l.history = []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(l.systemPrompt),
	}
}

// Len reports the number of messages in the history, system message included.
func (l *Loop) Len() int { return len(l.history) }

// Run executes one user turn: the input is appended to the history and the
// loop runs until the model stops calling tools. On error the history is
// rolled back to its state before the turn, so a failed request never leaves
// an assistant tool-call message without its tool responses.
func (l *Loop) Run(ctx context.Context, input string) (string, error) {
	mark := len(l.history)
	l.history = append(l.history, openai.UserMessage(input))

	var lastContent string
	for turn := 0; turn < l.maxTurns; turn++ {
		log := logger.G(ctx).WithField("turn", turn+1)
		log.WithField("messages", len(l.history)).Debug("sending chat completion request")

		message, streamed, err := l.completeOnce(ctx)
		if err != nil {
			l.history = l.history[:mark]
			return "", err
		}

		if strings.TrimSpace(message.Content) != "" {
			lastContent = message.Content
			if !streamed {
				l.ui.Assistant(message.Content)
			}
		}

		l.history = append(l.history, message.ToParam())

		if len(message.ToolCalls) == 0 {
			if streamed && !strings.HasSuffix(message.Content, "\n") {
				fmt.Fprintln(l.out)
			}
			return lastContent, nil
		}

		log.WithField("tool_calls", len(message.ToolCalls)).Debug("executing tool calls")
		for _, call := range message.ToolCalls {
			l.ui.ToolCall(call.Function.Name, call.Function.Arguments)

			output, err := l.registry.Execute(ctx, call)
			if err != nil {
				output = fmt.Sprintf(`{"ok":false,"error":%q}`, err.Error())
			}
			l.history = append(l.history, openai.ToolMessage(truncateOutput(output), call.ID))
		}
	}

	if lastContent == "" {
		return "", errors.Errorf("no assistant content after %d turns", l.maxTurns)
	}
	return lastContent, nil
}

// completeOnce performs a single chat-completions request, streaming deltas
// when enabled.
func (l *Loop) completeOnce(ctx context.Context) (openai.ChatCompletionMessage, bool, error) {
	params := openai.ChatCompletionNewParams{
		Model:    l.model,
		Messages: l.history,
		Tools:    l.registry.Definitions(),
	}

	if !l.stream {
		completion, err := l.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return openai.ChatCompletionMessage{}, false, errors.Wrap(err, "chat completion failed")
		}
		if len(completion.Choices) == 0 {
			return openai.ChatCompletionMessage{}, false, errors.New("empty completion choices")
		}
		return completion.Choices[0].Message, false, nil
	}

	stream := l.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	streamed := false
	for stream.Next() {
		chunk := stream.Current()
		if !acc.AddChunk(chunk) {
			return openai.ChatCompletionMessage{}, streamed, errors.New("failed to accumulate stream")
		}
		if len(chunk.Choices) > 0 {
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				_, _ = io.WriteString(l.out, delta)
				streamed = true
			}
		}
	}
	if err := stream.Err(); err != nil {
		return openai.ChatCompletionMessage{}, streamed, errors.Wrap(err, "streaming chat completion failed")
	}
	if len(acc.Choices) == 0 {
		return openai.ChatCompletionMessage{}, streamed, errors.New("empty streamed completion choices")
	}
	return acc.Choices[0].Message, streamed, nil
}

// truncateOutput trims oversized tool output with an explicit marker so the
// model knows content was dropped.
func truncateOutput(output string) string {
	if len(output) <= maxToolOutput {
		return output
	}
	return output[:maxToolOutput] + "... [Truncated]"
}
