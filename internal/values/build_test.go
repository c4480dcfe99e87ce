package values

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.txt", "in ~Music by @carol, see ~comp")
	labels := writeFile(t, dir, "labels.json", `{"users":{"Dave":["friend"],"carol":[]}}`)
	script := writeFile(t, dir, "users.lua", `function values(t) return {"@Erin", t} end`)

	cfg := &config.Config{Triggers: []config.TriggerSpec{
		{Prefix: "~", Target: trigger.TargetGroups, Values: []string{"comp"}, Scrape: []string{page}},
		{Prefix: "@", Target: trigger.TargetUsernames, Scrape: []string{page}, Labels: labels, Script: script},
	}}

	reg, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	groups, ok := reg.ByPrefix('~')
	require.True(t, ok)
	assert.Equal(t, []string{"comp", "music"}, groups.Values.Values())

	users, ok := reg.ByTarget(trigger.TargetUsernames)
	require.True(t, ok)
	assert.Equal(t, []string{"carol", "dave", "erin", "usernames"}, users.Values.Values())
}

func TestBuild_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Build(ctx, &config.Config{Triggers: []config.TriggerSpec{
		{Prefix: "@", Target: "u", Scrape: []string{filepath.Join(t.TempDir(), "missing.txt")}},
	}})
	assert.Error(t, err)

	_, err = Build(ctx, &config.Config{Triggers: []config.TriggerSpec{
		{Prefix: "@", Target: "a"},
		{Prefix: "@", Target: "b"},
	}})
	assert.ErrorIs(t, err, trigger.ErrDuplicatePrefix)

	_, err = Build(ctx, &config.Config{Triggers: []config.TriggerSpec{{Prefix: "", Target: "a"}}})
	assert.ErrorIs(t, err, trigger.ErrInvalidPrefix)
}
