// Package skills implements the on-disk skill store. A skill is a directory
// under the store root containing a SKILL.md file with YAML frontmatter
// (name, description) followed by free-form markdown instructions. Skills are
// folded into the system prompt so the model can recall them across sessions.
package skills

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"github.com/gptcli/gptcli/pkg/logger"
)

const skillFileName = "SKILL.md"

// Skill is a persisted, reusable workflow the model can recall.
type Skill struct {
	Name        string // unique name, doubles as the directory name
	Description string // one-line summary from frontmatter
	Directory   string // full path to the skill directory
	Content     string // SKILL.md body with frontmatter stripped
}

// Metadata mirrors the YAML frontmatter in SKILL.md files.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Store manages skills under a single root directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// first write; List tolerates a missing root.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

// List returns all parseable skills sorted by name. Entries whose SKILL.md
// is missing or malformed are skipped with a warning rather than failing
// the listing.
func (s *Store) List(ctx context.Context) ([]*Skill, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading skills directory %s", s.dir)
	}

	var out []*Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.dir, entry.Name())
		skill, err := parseSkillFile(filepath.Join(dir, skillFileName))
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", entry.Name()).Warn("skipping unparseable skill")
			continue
		}
		// The directory name is the store key; a divergent frontmatter
		// name never wins, so show/remove always agree with list.
		skill.Name = entry.Name()
		skill.Directory = dir
		out = append(out, skill)
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Get returns a skill by its directory name, the same key Remove uses.
func (s *Store) Get(ctx context.Context, name string) (*Skill, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, errors.New("skill name is required")
	}
	dir := filepath.Join(s.dir, normalized)
	path := filepath.Join(dir, skillFileName)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Errorf("skill %q not found", normalized)
	}
	skill, err := parseSkillFile(path)
	if err != nil {
		return nil, err
	}
	skill.Name = normalized
	skill.Directory = dir
	return skill, nil
}

// Create persists a new skill. Creation is exclusive: an existing skill of
// the same (normalized) name is an error, never silently overwritten.
func (s *Store) Create(name, description, instructions string) (*Skill, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, errors.New("skill name is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, errors.New("skill description is required")
	}
	if strings.TrimSpace(instructions) == "" {
		return nil, errors.New("skill instructions are required")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating skills directory")
	}

	dir := filepath.Join(s.dir, normalized)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return nil, errors.Errorf("skill %q already exists", normalized)
		}
		return nil, errors.Wrapf(err, "creating skill directory %s", dir)
	}

	fm, err := yaml.Marshal(Metadata{Name: normalized, Description: strings.TrimSpace(description)})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(err, "marshaling frontmatter")
	}

	body := strings.TrimSpace(instructions)
	content := fmt.Sprintf("---\n%s---\n\n%s\n", fm, body)
	if err := os.WriteFile(filepath.Join(dir, skillFileName), []byte(content), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing SKILL.md")
	}

	return &Skill{
		Name:        normalized,
		Description: strings.TrimSpace(description),
		Directory:   dir,
		Content:     body,
	}, nil
}

// Remove deletes a skill directory by name.
func (s *Store) Remove(name string) error {
	normalized := NormalizeName(name)
	if normalized == "" {
		return errors.New("skill name is required")
	}
	dir := filepath.Join(s.dir, normalized)
	if _, err := os.Stat(filepath.Join(dir, skillFileName)); err != nil {
		return errors.Errorf("skill %q not found", normalized)
	}
	return errors.Wrapf(os.RemoveAll(dir), "removing skill %q", normalized)
}

// NormalizeName lowercases a skill name, maps whitespace to underscores,
// and drops characters that are unsafe in a directory name.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "-_")
}

// parseSkillFile loads a single SKILL.md, validating its frontmatter.
func parseSkillFile(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading skill file")
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "parsing markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}
	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)
	if name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	return &Skill{
		Name:        name,
		Description: description,
		Content:     extractBody(string(content)),
	}, nil
}

// extractBody strips the YAML frontmatter block and returns the body.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return strings.TrimSpace(content)
	}
	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
	}
	return strings.TrimSpace(content)
}
