// Package config resolves runtime configuration for gpt-cli from the
// environment, the per-user config directory, and defaults.
//
// Precedence: process environment > ~/.gpt-cli/config.env (godotenv) >
// ~/.gpt-cli/config.yaml (viper) > built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DirName is the per-user configuration directory under $HOME.
	DirName = ".gpt-cli"
	// EnvFileName holds secrets, most importantly the API key.
	EnvFileName = "config.env"
	// SkillsDirName holds persisted skills.
	SkillsDirName = "skills"
	// InstallRecordName records where and how the wrapper was installed.
	InstallRecordName = "install.json"

	apiKeyEnv = "OPENAI_API_KEY"
)

// Config holds all runtime configuration for the agent.
type Config struct {
	// Dir is the per-user configuration directory (~/.gpt-cli by default).
	Dir string

	APIKey  string
	BaseURL string
	Model   string

	MaxTurns     int
	Stream       bool
	AllowedDir   string
	ShellTimeout time.Duration
	MaxReadBytes int64
}

// DefaultDir returns the default per-user configuration directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolving home directory")
	}
	return filepath.Join(home, DirName), nil
}

// Load resolves configuration rooted at dir. An empty dir selects the
// default location. The directory and its skills subdirectory are created
// if missing.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	if err := ensureDirs(dir); err != nil {
		return nil, err
	}

	// Secrets first so viper's AutomaticEnv sees them.
	_ = godotenv.Load(filepath.Join(dir, EnvFileName))

	v := viper.New()
	v.SetEnvPrefix("GPTCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("model", "gpt-5.2")
	v.SetDefault("max_turns", 20)
	v.SetDefault("stream", false)
	v.SetDefault("allowed_dir", "")
	v.SetDefault("shell_timeout_seconds", 60)
	v.SetDefault("max_read_bytes", 1024*1024)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config.yaml")
		}
	}

	cfg := &Config{
		Dir:          dir,
		APIKey:       strings.TrimSpace(os.Getenv(apiKeyEnv)),
		BaseURL:      strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		Model:        strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		MaxTurns:     v.GetInt("max_turns"),
		Stream:       v.GetBool("stream"),
		AllowedDir:   strings.TrimSpace(v.GetString("allowed_dir")),
		ShellTimeout: time.Duration(v.GetInt("shell_timeout_seconds")) * time.Second,
		MaxReadBytes: v.GetInt64("max_read_bytes"),
	}
	if cfg.Model == "" {
		cfg.Model = v.GetString("model")
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 1
	}
	return cfg, nil
}

// SkillsDir returns the skills directory under the config directory.
func (c *Config) SkillsDir() string {
	return filepath.Join(c.Dir, SkillsDirName)
}

// EnvFile returns the path of the secrets file.
func (c *Config) EnvFile() string {
	return filepath.Join(c.Dir, EnvFileName)
}

// InstallRecordPath returns the path of the installation record.
func (c *Config) InstallRecordPath() string {
	return filepath.Join(c.Dir, InstallRecordName)
}

// SaveAPIKey persists the API key into config.env with 0600 permissions,
// replacing an existing OPENAI_API_KEY line if present. The in-memory
// config and process environment are updated as well.
func (c *Config) SaveAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key cannot be empty")
	}

	path := c.EnvFile()
	line := fmt.Sprintf("%s=%s", apiKeyEnv, key)

	var lines []string
	replaced := false
	if data, err := os.ReadFile(path); err == nil {
		for _, l := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if strings.HasPrefix(l, apiKeyEnv+"=") {
				lines = append(lines, line)
				replaced = true
				continue
			}
			if l != "" {
				lines = append(lines, l)
			}
		}
	}
	if !replaced {
		lines = append(lines, line)
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return errors.Wrap(err, "writing config.env")
	}

	c.APIKey = key
	return os.Setenv(apiKeyEnv, key)
}

func ensureDirs(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "creating config directory %s", dir)
	}
	if err := os.MkdirAll(filepath.Join(dir, SkillsDirName), 0o700); err != nil {
		return errors.Wrap(err, "creating skills directory")
	}
	return nil
}
