package tools

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	allowed := t.TempDir()

	tests := []struct {
		name    string
		path    string
		allowed []string
		wantErr bool
	}{
		{"inside allowed dir", filepath.Join(allowed, "test.txt"), []string{allowed}, false},
		{"traversal attempt", "../../etc/passwd", []string{allowed}, true},
		{"empty path", "", []string{allowed}, true},
		{"no restriction", "/tmp/test.txt", nil, false},
		{"outside allowed dir", "/tmp/test.txt", []string{allowed}, true},
		{"nested inside allowed", filepath.Join(allowed, "a", "b.txt"), []string{allowed}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validatePath(tt.path, tt.allowed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsDangerousCommand(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"rm -rf /tmp/test", true},
		{"dd if=/dev/zero of=/dev/sda", true},
		{"/bin/rm file", true},
		{"mkfs.ext4 /dev/sdb1", true},
		{"shutdown now", true},
		{"echo hello", false},
		{"ls -la", false},
		{"grep -r pattern .", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isDangerousCommand(tt.command), "command %q", tt.command)
	}
}

func TestParseCommandLine(t *testing.T) {
	args, err := parseCommandLine(`echo "hello world" 'single quoted' plain`)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "hello world", "single quoted", "plain"}, args)

	_, err = parseCommandLine(`echo "unterminated`)
	assert.Error(t, err)

	_, err = parseCommandLine(`echo trailing\`)
	assert.Error(t, err)
}

func TestNormalizeAllowedDirs(t *testing.T) {
	dir := t.TempDir()
	out := normalizeAllowedDirs([]string{dir, dir, " ", ""})
	assert.Equal(t, []string{dir}, out)
}
