package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gptcli/gptcli/pkg/agent"
	"github.com/gptcli/gptcli/pkg/config"
	"github.com/gptcli/gptcli/pkg/logger"
	"github.com/gptcli/gptcli/pkg/presenter"
	"github.com/gptcli/gptcli/pkg/skills"
	"github.com/gptcli/gptcli/pkg/sysprompt"
	"github.com/gptcli/gptcli/pkg/tools"
)

var (
	chatStream     bool
	chatMaxTurns   int
	chatAllowedDir string
)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Start an interactive chat with the agent",
	Long: `Chat starts an interactive session with the agent. An optional prompt
argument is answered first, then the session continues interactively;
type "exit", "quit" or "q" to leave and "/clear" to reset history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p := presenter.New()

		if err := ensureAPIKey(cfg, p); err != nil {
			return err
		}

		store := skills.NewStore(cfg.SkillsDir())
		available, err := store.List(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "listing skills")
		}

		loop := newLoop(cfg, store, available, p)

		// An initial prompt runs one turn first; the session then continues
		// interactively either way.
		if len(args) == 1 {
			p.User(args[0])
			if _, err := loop.Run(cmd.Context(), args[0]); err != nil {
				return err
			}
		}
		return runInteractive(cmd.Context(), loop, p, os.Stdin)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatStream, "stream", false, "stream assistant output as it arrives")
	chatCmd.Flags().IntVar(&chatMaxTurns, "max-turns", 0, "max tool-call turns per prompt (default from config)")
	chatCmd.Flags().StringVar(&chatAllowedDir, "allowed-dir", "", "restrict file tools to this directory")
}

// newLoop assembles the API client, tool registry and agent loop from the
// resolved configuration.
func newLoop(cfg *config.Config, store *skills.Store, available []*skills.Skill, p *presenter.Presenter) *agent.Loop {
	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	allowedDir := cfg.AllowedDir
	if chatAllowedDir != "" {
		allowedDir = chatAllowedDir
	}
	var allowedDirs []string
	if allowedDir != "" {
		allowedDirs = []string{allowedDir}
	}

	registry := tools.NewRegistry(tools.Context{
		MaxReadBytes: cfg.MaxReadBytes,
		ShellTimeout: cfg.ShellTimeout,
		AllowedDirs:  allowedDirs,
		Skills:       store,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	})

	maxTurns := cfg.MaxTurns
	if chatMaxTurns > 0 {
		maxTurns = chatMaxTurns
	}

	opts := []agent.Option{
		agent.WithUI(p),
		agent.WithMaxTurns(maxTurns),
	}
	if chatStream || cfg.Stream {
		opts = append(opts, agent.WithStreaming(os.Stdout))
	}

	return agent.New(client, cfg.Model, registry, sysprompt.Build(available), opts...)
}

// runInteractive reads prompts until EOF, an exit word, or context
// cancellation. Input is read on a goroutine so Ctrl-C ends the session even
// while blocked at the prompt.
func runInteractive(ctx context.Context, loop *agent.Loop, p *presenter.Presenter, in io.Reader) error {
	p.Info("gpt-cli interactive session. Type 'exit' to quit, '/clear' to reset history.")

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(os.Stdout, "You: ")
		var input string
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stdout)
			p.Info("Goodbye.")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(os.Stdout)
				p.Info("Goodbye.")
				return <-scanErr
			}
			input = strings.TrimSpace(line)
		}
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "exit", "quit", "q", "/quit":
			p.Info("Goodbye.")
			return nil
		case "/clear":
			loop.Reset()
			p.Info("Conversation history cleared.")
			continue
		case "/help":
			p.Plain("Commands: exit|quit|q|/quit leave, /clear reset history, /help this message")
			continue
		}

		if _, err := loop.Run(ctx, input); err != nil {
			if ctx.Err() != nil {
				// Ctrl-C during a turn ends the session, not the process
				// with an error.
				p.Info("Goodbye.")
				return nil
			}
			p.Error(err, "")
			logger.G(ctx).WithError(err).Debug("turn failed")
		}
	}
}

// ensureAPIKey prompts for and persists an API key when none is configured.
func ensureAPIKey(cfg *config.Config, p *presenter.Presenter) error {
	if cfg.APIKey != "" {
		return nil
	}

	p.Info("No API key configured.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "Enter your OpenAI API key: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errors.New("no API key provided")
		}
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		if err := cfg.SaveAPIKey(key); err != nil {
			return err
		}
		p.Success(fmt.Sprintf("API key saved to %s", cfg.EnvFile()))
		return nil
	}
}
