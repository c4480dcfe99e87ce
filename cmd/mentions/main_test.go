package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[[triggers]]
prefix = "~"
target = "groups"
values = ["comp", "Music", "musical"]

[[triggers]]
prefix = "@"
target = "usernames"
values = ["alice", "bob"]
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestCompleteShowsMatches(t *testing.T) {
	cfg := writeConfig(t)

	out, errOut, code := execute(t, "", "--config", cfg, "complete", "hi ~mu")
	require.Equal(t, 0, code, errOut)

	assert.Equal(t, "text: hi ~mu\n"+
		"caret: 6\n"+
		"groups \"mu\" (2 matches)\n"+
		"> ~music\n"+
		"  ~musical\n", out)
}

func TestCompleteTabAndCommit(t *testing.T) {
	cfg := writeConfig(t)

	out, errOut, code := execute(t, "", "--config", cfg, "complete", "hi ~mu", "--tab", "1", "--commit")
	require.Equal(t, 0, code, errOut)

	assert.Equal(t, "text: hi ~musical\ncaret: 11\nno completion\n", out)
}

func TestCompleteExtraKeys(t *testing.T) {
	cfg := writeConfig(t)

	out, errOut, code := execute(t, "", "--config", cfg, "complete", "cc @bo",
		"--key", "Backspace", "--key", "Backspace")
	require.Equal(t, 0, code, errOut)

	assert.Contains(t, out, "text: cc @\n")
	assert.Contains(t, out, "usernames \"\" (2 matches)\n> @alice\n  @bob\n")
}

func TestCompleteNoTrigger(t *testing.T) {
	cfg := writeConfig(t)

	out, _, code := execute(t, "", "--config", cfg, "complete", "plain text")
	require.Equal(t, 0, code)
	assert.Equal(t, "text: plain text\ncaret: 10\nno completion\n", out)
}

func TestCompleteBadKey(t *testing.T) {
	cfg := writeConfig(t)

	_, errOut, code := execute(t, "", "--config", cfg, "complete", "x", "--key", "Bogus+Key")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `key "Bogus+Key"`)
}

func TestMissingConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	_, errOut, code := execute(t, "", "--config", missing, "complete", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
}

func TestInvalidLogLevel(t *testing.T) {
	cfg := writeConfig(t)

	_, errOut, code := execute(t, "", "--config", cfg, "--log-level", "loud", "complete", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid log level")
}

func TestLogFile(t *testing.T) {
	cfg := writeConfig(t)
	logPath := filepath.Join(t.TempDir(), "mentions.log")

	_, errOut, code := execute(t, "", "--config", cfg, "--log-file", logPath, "complete", "~")
	require.Equal(t, 0, code, errOut)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loaded 2 triggers")
}

func TestScrapeFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("see ~Music and ~art,\nmail bob~x\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("~music again ~chess.\n"), 0o644))

	out, errOut, code := execute(t, "", "scrape", a, b)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "music\nart\nchess\n", out)
}

func TestScrapeStdin(t *testing.T) {
	out, errOut, code := execute(t, "ping @Alice and @bob", "scrape", "--prefix", "@")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "alice\nbob\n", out)
}

func TestScrapeBadPrefix(t *testing.T) {
	_, errOut, code := execute(t, "", "scrape", "--prefix", "ab")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "single character")
}

func TestLabelsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")

	for _, args := range [][]string{
		{"labels", "add", path, "alice", "friend"},
		{"labels", "add", path, "bob", "mod"},
		{"labels", "add", path, "bob", "friend"},
	} {
		_, errOut, code := execute(t, "", args...)
		require.Equal(t, 0, code, errOut)
	}

	out, _, code := execute(t, "", "labels", "list", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "alice: friend\nbob: mod, friend\n", out)

	out, _, code = execute(t, "", "labels", "list", path, "--label", "mod")
	require.Equal(t, 0, code)
	assert.Equal(t, "bob\n", out)

	_, errOut, code := execute(t, "", "labels", "rm", path, "alice")
	require.Equal(t, 0, code, errOut)

	out, _, code = execute(t, "", "labels", "list", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "bob: mod, friend\n", out)
}

func TestLabelsFeedCompletion(t *testing.T) {
	dir := t.TempDir()
	labels := filepath.Join(dir, "labels.json")
	require.NoError(t, os.WriteFile(labels, []byte(`{"users":{"carol":["ops"],"dave":["ops","qa"]}}`), 0o644))

	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
[[triggers]]
prefix = "@"
target = "usernames"
labels = "labels.json"
`), 0o644))

	out, errOut, code := execute(t, "", "--config", cfg, "complete", "@")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "> @carol\n  @dave\n")
}

func TestVersion(t *testing.T) {
	out, _, code := execute(t, "", "version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "mentions dev")
	assert.Contains(t, out, "Commit: unknown")
}
