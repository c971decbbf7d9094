package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/adapters/watcher"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
)

func TestWatcher_ReportsOnlyTargetFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, domain.SettingsFileName)
	require.NoError(t, os.WriteFile(target, []byte("version: \"1\"\n"), domain.FilePerm))

	w, err := watcher.NewWatcher(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx, target))

	received := make(chan ports.WatchEvent, 16)
	go func() {
		for event := range w.Events() {
			received <- event
		}
		close(received)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), domain.FilePerm))
	require.NoError(t, os.WriteFile(target, []byte("version: \"1\"\ncache_size_limit: 2\n"), domain.FilePerm))

	select {
	case event := <-received:
		assert.Equal(t, target, event.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the settings file")
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w, err := watcher.NewWatcher(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing", domain.SettingsFileName))
	require.Error(t, err)
}
