// Subprocess execution shared by shell-backed tools.
package tools

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gptcli/gptcli/pkg/logger"
)

// commandResult captures command execution metadata and output.
type commandResult struct {
	Command    string   `json:"command"`
	Args       []string `json:"args,omitempty"`
	WorkingDir string   `json:"working_dir,omitempty"`
	ExitCode   int      `json:"exit_code"`
	Stdout     string   `json:"stdout,omitempty"`
	Stderr     string   `json:"stderr,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// runCommand executes a command with a timeout and captures stdout/stderr.
func runCommand(ctx context.Context, command string, args []string, workingDir string, timeout time.Duration) commandResult {
	if timeout <= 0 {
		timeout = DefaultShellTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, command, args...)
	cmd.Env = sanitizedEnv()
	if workingDir != "" {
		cmd.Dir = workingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start).Milliseconds()

	exitCode := 0
	errText := ""
	if err != nil {
		errText = err.Error()
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitCode()
		case cctx.Err() != nil:
			exitCode = -1
			errText = "command timed out after " + timeout.String()
		default:
			exitCode = -1
		}
	}

	logger.G(ctx).WithFields(map[string]any{
		"command":     command,
		"exit_code":   exitCode,
		"duration_ms": duration,
	}).Debug("command completed")

	return commandResult{
		Command:    command,
		Args:       args,
		WorkingDir: workingDir,
		ExitCode:   exitCode,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMs: duration,
		Error:      errText,
	}
}

// sanitizedEnv keeps only low-risk environment variables for subprocesses,
// most importantly excluding the API key.
func sanitizedEnv() []string {
	allowedPrefixes := []string{
		"PATH=",
		"HOME=",
		"USER=",
		"LOGNAME=",
		"SHELL=",
		"TMPDIR=",
		"TMP=",
		"TEMP=",
		"LANG=",
		"LC_",
		"TERM=",
		"PWD=",
	}

	env := make([]string, 0, len(allowedPrefixes))
	for _, kv := range os.Environ() {
		for _, prefix := range allowedPrefixes {
			if strings.HasPrefix(kv, prefix) {
				env = append(env, kv)
				break
			}
		}
	}
	return env
}
