package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffaheem88/BrowserOS-sub000/internal/persist"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
)

func TestNewSessionHasBuiltinCatalog(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	assert.NotEmpty(t, s.Apps.List())
	assert.Equal(t, 0, s.Windows.Len())
}

func TestLaunchFlowsThroughWindowRegistry(t *testing.T) {
	s, err := New(Config{ViewportWidth: 1280, ViewportHeight: 720})
	require.NoError(t, err)

	win, err := s.Apps.Launch("notes", wm.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, s.Windows.Len())
	assert.Equal(t, win.ID, s.Windows.FocusedID())
}

func TestCloseFlushesToCache(t *testing.T) {
	cache := persist.NewMemoryStore()
	clock := persist.NewManualClock()
	s, err := New(Config{Cache: cache, Clock: clock})
	require.NoError(t, err)

	_, err = s.Apps.Launch("clock", wm.Options{})
	require.NoError(t, err)
	s.Close()

	_, ok, err := cache.Get(persist.CacheKeyWindows)
	require.NoError(t, err)
	assert.True(t, ok, "shutdown must flush without waiting for the debounce")
}

func TestStartLoadsLocalCacheSynchronously(t *testing.T) {
	cache := persist.NewMemoryStore()
	clock := persist.NewManualClock()

	first, err := New(Config{Cache: cache, Clock: clock})
	require.NoError(t, err)
	first.Desktop.SetWallpaper("persisted.jpg")
	first.Close()

	second, err := New(Config{Cache: cache, Clock: persist.NewManualClock()})
	require.NoError(t, err)
	<-second.Start(context.Background())

	assert.Equal(t, "persisted.jpg", second.Desktop.Snapshot().Wallpaper)
}
