// Path validation and command safety checks shared by the file and shell tools.
package tools

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// normalizeAllowedDirs returns a sorted, deduplicated list of absolute directories.
func normalizeAllowedDirs(allowedDirs []string) []string {
	normalized := make([]string, 0, len(allowedDirs))
	seen := map[string]struct{}{}
	for _, dir := range allowedDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		abs = filepath.Clean(abs)
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		normalized = append(normalized, abs)
	}
	slices.Sort(normalized)
	return normalized
}

// validatePath ensures a path is safe and within one of the allowed
// directories. An empty allow list permits any path.
func validatePath(path string, allowedDirs []string) (string, error) {
	if path == "" {
		return "", errors.New("path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if hasParentTraversal(cleanPath) {
		return "", errors.Errorf("path traversal not allowed: %s", path)
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", errors.Wrap(err, "invalid path")
	}

	roots := normalizeAllowedDirs(allowedDirs)
	if len(roots) == 0 {
		return absPath, nil
	}

	for _, root := range roots {
		rel, err := filepath.Rel(root, absPath)
		if err != nil {
			continue
		}
		if rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..") {
			return absPath, nil
		}
	}

	return "", errors.Errorf("path outside allowed directories: %s (allowed: %s)", absPath, strings.Join(roots, ", "))
}

// hasParentTraversal reports whether a path contains a parent directory segment.
func hasParentTraversal(cleanPath string) bool {
	if cleanPath == ".." {
		return true
	}
	for _, part := range strings.Split(cleanPath, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	return false
}

// validateFileExists checks that a path exists and is not a directory.
func validateFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.Errorf("path is a directory: %s", path)
	}
	return nil
}

// dangerousCommands lists executables run_shell_command refuses to run.
var dangerousCommands = map[string]struct{}{
	"rm":       {},
	"rmdir":    {},
	"dd":       {},
	"mkfs":     {},
	"fdisk":    {},
	"shutdown": {},
	"reboot":   {},
	"halt":     {},
	"poweroff": {},
	"init":     {},
	"kill":     {},
	"killall":  {},
	"pkill":    {},
	"chown":    {},
	"chgrp":    {},
	"mount":    {},
	"umount":   {},
	"parted":   {},
	"sfdisk":   {},
	"wipefs":   {},
}

// isDangerousCommand checks whether the command's executable is deny-listed.
func isDangerousCommand(cmd string) bool {
	args, err := parseCommandLine(cmd)
	if err != nil || len(args) == 0 {
		return false
	}
	base := strings.ToLower(filepath.Base(strings.TrimSpace(args[0])))
	if base == "" {
		return false
	}
	if _, blocked := dangerousCommands[base]; blocked {
		return true
	}
	// mkfs.ext4 and friends
	return strings.HasPrefix(base, "mkfs.")
}

// parseCommandLine splits a command string into argv without invoking a shell.
func parseCommandLine(input string) ([]string, error) {
	var (
		args     []string
		current  strings.Builder
		inSingle bool
		inDouble bool
		escaped  bool
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		args = append(args, current.String())
		current.Reset()
	}

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case (r == ' ' || r == '\t') && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
		}
	}

	if escaped {
		return nil, errors.New("unterminated escape in command")
	}
	if inSingle || inDouble {
		return nil, errors.New("unterminated quote in command")
	}
	flush()

	return args, nil
}
