package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gptcli/gptcli/pkg/installer"
	"github.com/gptcli/gptcli/pkg/presenter"
)

var (
	installBinDir string
	installCheck  bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install gpt-cli as a global command",
	Long: `Install writes a wrapper script into a bin directory (default
/usr/local/bin) pointing at this binary, and records the installation
under the config directory so it can be verified and removed later.
Writing to a system bin directory usually requires root; rerun under
sudo or pass --bin-dir for a user-writable location.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p := presenter.New()

		if installCheck {
			return reportStatus(cfg.InstallRecordPath(), p)
		}

		record, err := installer.NewRecord(installBinDir)
		if err != nil {
			return err
		}
		if err := installer.Install(record, cfg.InstallRecordPath()); err != nil {
			return err
		}
		p.Success(fmt.Sprintf("Installed %s -> %s", record.WrapperPath, record.Program))
		return nil
	},
}

var uninstallBinDir string

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the installed global command",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		record, err := installer.Uninstall(cfg.InstallRecordPath())
		if err != nil {
			// No record (or unreadable): fall back to the wrapper path
			// implied by --bin-dir so pre-record installs can still be
			// removed.
			wrapper := filepath.Join(uninstallBinDir, installer.CommandName)
			if rmErr := os.Remove(wrapper); rmErr != nil {
				return err
			}
			presenter.New().Success(fmt.Sprintf("Removed %s", wrapper))
			return nil
		}
		presenter.New().Success(fmt.Sprintf("Removed %s", record.WrapperPath))
		return nil
	},
}

func reportStatus(recordPath string, p *presenter.Presenter) error {
	st, err := installer.Check(recordPath)
	if err != nil {
		return err
	}
	p.Plain(fmt.Sprintf("Wrapper:    %s", st.Record.WrapperPath))
	p.Plain(fmt.Sprintf("Program:    %s", st.Record.Program))
	p.Plain(fmt.Sprintf("Present:    %v", st.WrapperOK))
	p.Plain(fmt.Sprintf("Executable: %v", st.Executable))
	p.Plain(fmt.Sprintf("Up to date: %v", st.Current))
	if !st.ProgramOK {
		p.Info("The recorded binary no longer exists; the install root may have moved. Reinstall to fix.")
	}
	return nil
}

func init() {
	installCmd.Flags().StringVar(&installBinDir, "bin-dir", installer.DefaultBinDir, "directory to place the wrapper in")
	installCmd.Flags().BoolVar(&installCheck, "check", false, "report installation status instead of installing")
	uninstallCmd.Flags().StringVar(&uninstallBinDir, "bin-dir", installer.DefaultBinDir, "wrapper directory to fall back to when no record exists")
}
