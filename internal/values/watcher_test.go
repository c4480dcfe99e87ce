package values

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/config"
)

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.txt", "~comp")
	cfg := &config.Config{Triggers: []config.TriggerSpec{
		{Prefix: "~", Target: trigger.TargetGroups, Scrape: []string{page}},
	}}

	reloads := make(chan *trigger.Registry, 4)
	w, err := NewWatcher(cfg, func(r *trigger.Registry) { reloads <- r }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	abs, _ := filepath.Abs(page)
	assert.Equal(t, []string{abs}, w.Files())

	// Unrelated files in the same directory are ignored.
	writeFile(t, dir, "other.txt", "~nope")
	writeFile(t, dir, "page.txt", "~comp ~music")

	select {
	case reg := <-reloads:
		groups, _ := reg.ByTarget(trigger.TargetGroups)
		assert.Equal(t, []string{"comp", "music"}, groups.Values.Values())
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWatcher_BuildFailureKeepsWaiting(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "v.lua", `function values() return {"a"} end`)
	cfg := &config.Config{Triggers: []config.TriggerSpec{
		{Prefix: "@", Target: "u", Script: script},
	}}

	reloads := make(chan *trigger.Registry, 4)
	w, err := NewWatcher(cfg, func(r *trigger.Registry) { reloads <- r }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, dir, "v.lua", `function values(`)
	select {
	case <-reloads:
		t.Fatal("broken script must not reload")
	case <-time.After(300 * time.Millisecond):
	}

	writeFile(t, dir, "v.lua", `function values() return {"b"} end`)
	select {
	case reg := <-reloads:
		u, _ := reg.ByTarget("u")
		assert.Equal(t, []string{"b"}, u.Values.Values())
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after fix")
	}
}

func TestWatcher_CloseWaitsForRunningRebuild(t *testing.T) {
	var reloads atomic.Int32
	w, err := NewWatcher(&config.Config{}, func(*trigger.Registry) { reloads.Add(1) })
	require.NoError(t, err)

	var builds atomic.Int32
	started := make(chan struct{})
	w.build = func(ctx context.Context, _ *config.Config) (*trigger.Registry, error) {
		if builds.Add(1) == 1 {
			close(started)
		}
		<-ctx.Done()
		return trigger.MustRegistry(), nil
	}

	done := make(chan struct{})
	go func() {
		w.rebuild()
		close(done)
	}()
	<-started

	require.NoError(t, w.Close())
	select {
	case <-done:
	default:
		t.Fatal("Close returned while a rebuild was running")
	}
	assert.Zero(t, reloads.Load(), "no reload after Close")

	w.rebuild()
	assert.Equal(t, int32(1), builds.Load(), "rebuild after Close is a no-op")
}
