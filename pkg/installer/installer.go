// Package installer makes the gpt-cli binary callable as a global command by
// writing a small wrapper script into a bin directory. The installation is
// captured as an explicit record (install root, program, entry arguments)
// persisted alongside the config so uninstall and status checks do not have
// to guess paths.
package installer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// CommandName is the name the wrapper is installed under.
const CommandName = "gpt-cli"

// DefaultBinDir is where the wrapper goes unless overridden.
const DefaultBinDir = "/usr/local/bin"

// Record describes one installation. It is persisted as JSON so later
// invocations can verify or remove the install without re-deriving paths.
type Record struct {
	InstallRoot string   `json:"install_root"`
	Program     string   `json:"program"`
	EntryArgs   []string `json:"entry_args,omitempty"`
	WrapperPath string   `json:"wrapper_path"`
}

// NewRecord builds a record for the currently running binary.
func NewRecord(binDir string) (Record, error) {
	exe, err := os.Executable()
	if err != nil {
		return Record{}, errors.Wrap(err, "resolving executable path")
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return Record{}, errors.Wrap(err, "resolving executable symlinks")
	}
	return Record{
		InstallRoot: filepath.Dir(exe),
		Program:     exe,
		WrapperPath: filepath.Join(binDir, CommandName),
	}, nil
}

// WrapperContent renders the shell wrapper for r. The wrapper changes into
// the install root and execs the program, forwarding all arguments verbatim.
// Content is deterministic so repeated installs are byte-identical.
func WrapperContent(r Record) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "cd %s || exit 1\n", shellQuote(r.InstallRoot))
	b.WriteString("exec " + shellQuote(r.Program))
	for _, arg := range r.EntryArgs {
		b.WriteString(" " + shellQuote(arg))
	}
	b.WriteString(" \"$@\"\n")
	return b.String()
}

// Install writes the wrapper and persists the record at recordPath.
// Re-running with the same record overwrites the wrapper with identical
// bytes. A failure to write the wrapper leaves no partial file behind.
func Install(r Record, recordPath string) error {
	if r.Program == "" || r.InstallRoot == "" || r.WrapperPath == "" {
		return errors.New("incomplete installation record")
	}

	content := []byte(WrapperContent(r))

	// Write-then-rename within the target directory so a permission or
	// disk failure never leaves a half-written wrapper on PATH.
	tmp, err := os.CreateTemp(filepath.Dir(r.WrapperPath), "."+CommandName+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "bin directory %s is not writable", filepath.Dir(r.WrapperPath))
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing wrapper")
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "marking wrapper executable")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing wrapper")
	}
	if err := os.Rename(tmpName, r.WrapperPath); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "installing wrapper at %s", r.WrapperPath)
	}

	if err := saveRecord(r, recordPath); err != nil {
		return err
	}
	return nil
}

// Uninstall removes the wrapper named by the record at recordPath, then the
// record itself. A missing wrapper is not an error; the record is still
// cleaned up.
func Uninstall(recordPath string) (Record, error) {
	r, err := LoadRecord(recordPath)
	if err != nil {
		return Record{}, err
	}
	if err := os.Remove(r.WrapperPath); err != nil && !os.IsNotExist(err) {
		return r, errors.Wrapf(err, "removing wrapper at %s", r.WrapperPath)
	}
	if err := os.Remove(recordPath); err != nil && !os.IsNotExist(err) {
		return r, errors.Wrap(err, "removing installation record")
	}
	return r, nil
}

// Status describes the outcome of Check.
type Status struct {
	Record     Record
	WrapperOK  bool
	Executable bool
	Current    bool
	ProgramOK  bool
}

// Check verifies an existing installation: the wrapper exists, is executable,
// matches what the record would generate, and the recorded program is still
// present. The last check catches a moved install root, which breaks the
// wrapper by design rather than silently.
func Check(recordPath string) (Status, error) {
	r, err := LoadRecord(recordPath)
	if err != nil {
		return Status{}, err
	}
	st := Status{Record: r}

	info, err := os.Stat(r.WrapperPath)
	if err == nil {
		st.WrapperOK = true
		st.Executable = info.Mode()&0o111 != 0
		if data, err := os.ReadFile(r.WrapperPath); err == nil {
			st.Current = string(data) == WrapperContent(r)
		}
	}

	if _, err := os.Stat(r.Program); err == nil {
		st.ProgramOK = true
	}
	return st, nil
}

// LoadRecord reads the installation record at path.
func LoadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, errors.New("no installation record found; run install first")
		}
		return Record{}, errors.Wrap(err, "reading installation record")
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, errors.Wrap(err, "parsing installation record")
	}
	return r, nil
}

func saveRecord(r Record, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "creating record directory")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding installation record")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "writing installation record")
	}
	return nil
}

// shellQuote single-quotes s for /bin/sh, escaping embedded quotes.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
