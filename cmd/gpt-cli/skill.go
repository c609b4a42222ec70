package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gptcli/gptcli/pkg/presenter"
	"github.com/gptcli/gptcli/pkg/skills"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage persisted skills",
	Long: `Skills are reusable workflows the agent saves under
~/.gpt-cli/skills, one directory per skill with a SKILL.md file. The
agent creates them during chat; this command inspects and removes them.`,
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := skillStore()
		if err != nil {
			return err
		}
		available, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(available) == 0 {
			presenter.New().Info("No skills yet. Ask the agent to remember a workflow to create one.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION")
		for _, s := range available {
			fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Description)
		}
		return w.Flush()
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a skill's full instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := skillStore()
		if err != nil {
			return err
		}
		skill, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Name: %s\nDescription: %s\n\n%s\n", skill.Name, skill.Description, skill.Content)
		return nil
	},
}

var skillRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a skill",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := skillStore()
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		presenter.New().Success(fmt.Sprintf("Removed skill %q", skills.NormalizeName(args[0])))
		return nil
	},
}

func skillStore() (*skills.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}
	return skills.NewStore(cfg.SkillsDir()), nil
}

func init() {
	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillShowCmd)
	skillCmd.AddCommand(skillRemoveCmd)
}
