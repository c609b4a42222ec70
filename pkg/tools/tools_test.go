package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gptcli/gptcli/pkg/skills"
)

// envelope mirrors the tool response shape for assertions.
type envelope struct {
	OK   bool            `json:"ok"`
	Tool string          `json:"tool"`
	Data json.RawMessage `json:"data"`
	Err  string          `json:"error"`
}

func decodeEnvelope(t *testing.T, payload string) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal([]byte(payload), &e))
	return e
}

func toolCall(name, args string) openai.ChatCompletionMessageToolCall {
	call := openai.ChatCompletionMessageToolCall{ID: "call-1"}
	call.Function.Name = name
	call.Function.Arguments = args
	return call
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry(Context{})
	out, err := r.Execute(context.Background(), toolCall("no_such_tool", "{}"))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	assert.False(t, e.OK)
	assert.Contains(t, e.Err, "unknown tool")
}

func TestRegistryDefinitions(t *testing.T) {
	r := NewRegistry(Context{})
	defs := r.Definitions()
	require.Len(t, defs, 6)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Function.Name)
	}
	assert.ElementsMatch(t, []string{
		"run_shell_command", "read_file", "write_file",
		"list_directory", "web_search", "create_skill",
	}, names)
}

func TestReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(Context{AllowedDirs: []string{dir}})
	path := filepath.Join(dir, "note.txt")

	out, err := r.Execute(context.Background(), toolCall("write_file",
		fmt.Sprintf(`{"file_path":%q,"content":"hello world"}`, path)))
	require.NoError(t, err)
	require.True(t, decodeEnvelope(t, out).OK)

	out, err = r.Execute(context.Background(), toolCall("read_file",
		fmt.Sprintf(`{"file_path":%q,"max_bytes":5}`, path)))
	require.NoError(t, err)
	e := decodeEnvelope(t, out)
	require.True(t, e.OK)

	var data struct {
		Content   string `json:"content"`
		Truncated bool   `json:"truncated"`
		Bytes     int    `json:"bytes"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, "hello", data.Content)
	assert.True(t, data.Truncated)
	assert.Equal(t, 5, data.Bytes)
}

func TestWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(Context{AllowedDirs: []string{dir}})
	path := filepath.Join(dir, "a", "b", "c.txt")

	out, err := r.Execute(context.Background(), toolCall("write_file",
		fmt.Sprintf(`{"file_path":%q,"content":"x"}`, path)))
	require.NoError(t, err)
	require.True(t, decodeEnvelope(t, out).OK)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestReadFileOutsideAllowedDirs(t *testing.T) {
	r := NewRegistry(Context{AllowedDirs: []string{t.TempDir()}})
	out, err := r.Execute(context.Background(), toolCall("read_file", `{"file_path":"/etc/hostname"}`))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	assert.False(t, e.OK)
	assert.Contains(t, e.Err, "outside allowed directories")
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	r := NewRegistry(Context{AllowedDirs: []string{dir}})
	out, err := r.Execute(context.Background(), toolCall("list_directory",
		fmt.Sprintf(`{"dir_path":%q}`, dir)))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	require.True(t, e.OK)
	var data struct {
		Entries []string `json:"entries"`
		Count   int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, data.Entries)
	assert.Equal(t, 3, data.Count)
}

func TestListDirectoryEmpty(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(Context{AllowedDirs: []string{dir}})
	out, err := r.Execute(context.Background(), toolCall("list_directory",
		fmt.Sprintf(`{"dir_path":%q}`, dir)))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	require.True(t, e.OK)
	var data struct {
		Count int    `json:"count"`
		Note  string `json:"note"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Zero(t, data.Count)
	assert.Equal(t, "(empty directory)", data.Note)
}

func TestListDirectoryNotADir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	r := NewRegistry(Context{AllowedDirs: []string{dir}})
	out, err := r.Execute(context.Background(), toolCall("list_directory",
		fmt.Sprintf(`{"dir_path":%q}`, file)))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	assert.False(t, e.OK)
	assert.Contains(t, e.Err, "not a directory")
}

func TestRunShellCommand(t *testing.T) {
	r := NewRegistry(Context{})
	out, err := r.Execute(context.Background(), toolCall("run_shell_command", `{"command":"echo hello"}`))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	require.True(t, e.OK, "shell failed: %s", e.Err)

	var result commandResult
	require.NoError(t, json.Unmarshal(e.Data, &result))
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "hello")
}

func TestRunShellCommandBlocksDangerous(t *testing.T) {
	r := NewRegistry(Context{})
	out, err := r.Execute(context.Background(), toolCall("run_shell_command", `{"command":"rm -rf /tmp/x"}`))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	assert.False(t, e.OK)
	assert.Contains(t, e.Err, "dangerous command")
}

func TestRunShellCommandSanitizedEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "secret-for-test")
	r := NewRegistry(Context{})
	out, err := r.Execute(context.Background(), toolCall("run_shell_command", `{"command":"env"}`))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	require.True(t, e.OK)
	var result commandResult
	require.NoError(t, json.Unmarshal(e.Data, &result))
	assert.NotContains(t, result.Stdout, "secret-for-test")
}

func TestCreateSkillTool(t *testing.T) {
	store := skills.NewStore(filepath.Join(t.TempDir(), "skills"))
	r := NewRegistry(Context{Skills: store})

	out, err := r.Execute(context.Background(), toolCall("create_skill",
		`{"name":"Release Notes","description":"draft release notes","instructions":"1. collect commits\n2. summarize"}`))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	require.True(t, e.OK, "create_skill failed: %s", e.Err)

	skill, err := store.Get(context.Background(), "release_notes")
	require.NoError(t, err)
	assert.Equal(t, "draft release notes", skill.Description)

	// Second creation with the same name fails.
	out, err = r.Execute(context.Background(), toolCall("create_skill",
		`{"name":"release notes","description":"again","instructions":"x"}`))
	require.NoError(t, err)
	e = decodeEnvelope(t, out)
	assert.False(t, e.OK)
	assert.Contains(t, e.Err, "already exists")
}

func TestExecuteCancelledContext(t *testing.T) {
	r := NewRegistry(Context{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := r.Execute(ctx, toolCall("run_shell_command", `{"command":"echo hi"}`))
	require.NoError(t, err)
	e := decodeEnvelope(t, out)
	assert.False(t, e.OK)
}

func TestMalformedArguments(t *testing.T) {
	r := NewRegistry(Context{})
	out, err := r.Execute(context.Background(), toolCall("read_file", `{not json`))
	require.NoError(t, err)

	e := decodeEnvelope(t, out)
	assert.False(t, e.OK)
	assert.Contains(t, e.Err, "invalid arguments")
}
