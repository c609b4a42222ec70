// Command gpt-cli is a conversational agent for the terminal. It wraps the
// OpenAI chat-completions API with tool calling (shell, file I/O, web search)
// and a persistent skill library under ~/.gpt-cli.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gptcli/gptcli/pkg/config"
	"github.com/gptcli/gptcli/pkg/logger"
	"github.com/gptcli/gptcli/pkg/presenter"
)

var (
	logLevel  string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "gpt-cli",
	Short: "A conversational CLI agent with tools and skills",
	Long: `gpt-cli is a conversational agent for the terminal. It talks to a
chat-completion model, runs tools on its behalf (shell commands, file
reads and writes, directory listings, web search), and can persist
reusable workflows as skills under ~/.gpt-cli/skills.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.SetLogLevel(logLevel)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.gpt-cli)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration honoring the --config-dir flag.
func loadConfig() (*config.Config, error) {
	return config.Load(configDir)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.New().Error(err, "")
		os.Exit(1)
	}
}
