package persist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apperrors"
	"github.com/ffaheem88/BrowserOS-sub000/internal/desktop"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
)

// fakeRemote implements Remote with the same optimistic-lock contract
// as the server record store: a push carrying an expected version that
// does not match the stored version is rejected and leaves the record
// unchanged.
type fakeRemote struct {
	mu          sync.Mutex
	version     int
	desktop     desktop.Settings
	windows     []wm.Window
	focusedID   string
	failNetwork bool
	statePushes int
	winPushes   int
}

func (f *fakeRemote) FetchState(ctx context.Context) (*StateEnvelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNetwork {
		return nil, &apperrors.NetworkError{Op: "fetch state", Err: errors.New("unreachable")}
	}
	return &StateEnvelope{Version: f.version, Desktop: f.desktop}, nil
}

func (f *fakeRemote) PushState(ctx context.Context, expected int, s desktop.Settings) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNetwork {
		return 0, &apperrors.NetworkError{Op: "push state", Err: errors.New("unreachable")}
	}
	if expected > 0 && expected != f.version {
		return 0, &apperrors.ConflictError{Resource: "desktop record", Expected: expected, Actual: f.version}
	}
	f.desktop = s
	f.version++
	f.statePushes++
	return f.version, nil
}

func (f *fakeRemote) FetchWindows(ctx context.Context) (*WindowsEnvelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNetwork {
		return nil, &apperrors.NetworkError{Op: "fetch windows", Err: errors.New("unreachable")}
	}
	return &WindowsEnvelope{Version: f.version, Windows: f.windows, FocusedWindowID: f.focusedID}, nil
}

func (f *fakeRemote) PushWindows(ctx context.Context, expected int, windows []wm.Window, focusedID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNetwork {
		return 0, &apperrors.NetworkError{Op: "push windows", Err: errors.New("unreachable")}
	}
	if expected > 0 && expected != f.version {
		return 0, &apperrors.ConflictError{Resource: "desktop record", Expected: expected, Actual: f.version}
	}
	f.windows = windows
	f.focusedID = focusedID
	f.version++
	f.winPushes++
	return f.version, nil
}

type harness struct {
	clock   *ManualClock
	cache   *MemoryStore
	remote  *fakeRemote
	windows *wm.Registry
	desktop *desktop.Registry
	bridge  *Bridge
}

func newHarness(remote *fakeRemote) *harness {
	h := &harness{
		clock:   NewManualClock(),
		cache:   NewMemoryStore(),
		remote:  remote,
		windows: wm.NewRegistry(wm.Config{}),
		desktop: desktop.NewRegistry(),
	}
	var r Remote
	if remote != nil {
		r = remote
	}
	h.bridge = NewBridge(h.windows, h.desktop, h.cache, r, NewScheduler(h.clock))
	return h
}

func TestDebouncedWindowSaveCoalesces(t *testing.T) {
	h := newHarness(&fakeRemote{version: 1})

	w := h.windows.Create("notes", wm.Options{})
	h.windows.Rename(w.ID, "a")
	h.windows.Rename(w.ID, "b")

	_, ok, err := h.cache.Get(CacheKeyWindows)
	require.NoError(t, err)
	assert.False(t, ok, "nothing flushed before the debounce elapses")

	h.clock.Advance(windowsDebounce)

	data, ok, err := h.cache.Get(CacheKeyWindows)
	require.NoError(t, err)
	require.True(t, ok)
	var blob windowsBlob
	require.NoError(t, json.Unmarshal(data, &blob))
	require.Len(t, blob.Windows, 1)
	assert.Equal(t, "b", blob.Windows[0].Title)
	assert.Equal(t, w.ID, blob.FocusedWindowID)

	assert.Equal(t, 1, h.remote.winPushes, "burst coalesced into one remote push")
}

func TestCacheWriteSurvivesRemoteFailure(t *testing.T) {
	h := newHarness(&fakeRemote{version: 1, failNetwork: true})

	h.desktop.SetWallpaper("sunset.jpg")
	h.clock.Advance(desktopDebounce)

	data, ok, err := h.cache.Get(CacheKeyDesktop)
	require.NoError(t, err)
	require.True(t, ok, "local cache write must never be skipped")

	var s desktop.Settings
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "sunset.jpg", s.Wallpaper)
}

func TestLocalOnlyModeWithoutRemote(t *testing.T) {
	h := newHarness(nil)

	h.desktop.ToggleTheme()
	h.clock.Advance(desktopDebounce)

	_, ok, err := h.cache.Get(CacheKeyDesktop)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVersionConflictRejectedAndRecordUnchanged(t *testing.T) {
	// Scenario: stored version is already 2, writer supplies an older
	// expected version. The write is rejected and the stored record
	// keeps its value.
	remote := &fakeRemote{version: 2, desktop: desktop.DefaultSettings()}
	before := remote.desktop

	changed := desktop.DefaultSettings()
	changed.Wallpaper = "intruder.jpg"
	_, err := remote.PushState(context.Background(), 1, changed)

	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 2, conflict.Actual)
	assert.Equal(t, before, remote.desktop, "rejected write must not modify the record")
	assert.Equal(t, 2, remote.version)
}

func TestConflictRecordsServerVersionForReapply(t *testing.T) {
	h := newHarness(&fakeRemote{version: 5})
	// Bridge believes an outdated version.
	h.bridge.setVersion(2)

	h.desktop.SetWallpaper("mine.jpg")
	h.clock.Advance(desktopDebounce)

	// Push conflicted; bridge adopted the server's version so the next
	// flush reapplies local state successfully.
	assert.Equal(t, 5, h.bridge.Version())
	assert.Equal(t, 0, h.remote.statePushes)

	h.desktop.SetWallpaper("mine2.jpg")
	h.clock.Advance(desktopDebounce)

	assert.Equal(t, 1, h.remote.statePushes)
	assert.Equal(t, "mine2.jpg", h.remote.desktop.Wallpaper)
	assert.Equal(t, 6, h.bridge.Version())
}

func TestLoadFromCache(t *testing.T) {
	h := newHarness(nil)

	s := desktop.DefaultSettings()
	s.Wallpaper = "cached.jpg"
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, h.cache.Put(CacheKeyDesktop, data))

	blob := windowsBlob{
		Windows: []wm.Window{
			{ID: "w1", AppID: "notes", Title: "Cached", ZIndex: 100, State: wm.StateNormal},
		},
		FocusedWindowID: "w1",
	}
	data, err = json.Marshal(blob)
	require.NoError(t, err)
	require.NoError(t, h.cache.Put(CacheKeyWindows, data))

	h.bridge.Load()

	assert.Equal(t, "cached.jpg", h.desktop.Snapshot().Wallpaper)
	require.Equal(t, 1, h.windows.Len())
	assert.Equal(t, "w1", h.windows.FocusedID())
}

func TestCacheRoundTripFieldForField(t *testing.T) {
	h := newHarness(nil)

	h.desktop.SetWallpaper("rt.jpg")
	h.desktop.ToggleTheme()
	h.desktop.AddIcon(desktop.Icon{ID: "i1", Label: "Notes", AppID: "notes", Position: desktop.Position{X: 1, Y: 2}})
	w := h.windows.Create("notes", wm.Options{})
	h.windows.Maximize(w.ID)
	h.clock.Advance(desktopDebounce)

	wantDesktop := h.desktop.Snapshot()
	wantWindows, wantFocused := h.windows.Snapshot()

	// Fresh session restoring from the same cache.
	h2 := &harness{
		clock:   NewManualClock(),
		cache:   h.cache,
		windows: wm.NewRegistry(wm.Config{}),
		desktop: desktop.NewRegistry(),
	}
	h2.bridge = NewBridge(h2.windows, h2.desktop, h2.cache, nil, NewScheduler(h2.clock))
	h2.bridge.Load()

	assert.Equal(t, wantDesktop, h2.desktop.Snapshot())
	gotWindows, gotFocused := h2.windows.Snapshot()
	assert.Equal(t, wantWindows, gotWindows)
	assert.Equal(t, wantFocused, gotFocused)
}

func TestLoadRemoteReplacesCleanState(t *testing.T) {
	remote := &fakeRemote{
		version: 7,
		desktop: desktop.Settings{Wallpaper: "server.jpg", Theme: desktop.ThemeDark, Icons: map[string]desktop.Icon{}, Taskbar: desktop.Taskbar{Position: "top", PinnedApps: []string{}}},
		windows: []wm.Window{
			{ID: "s1", AppID: "clock", Title: "Clock", ZIndex: 100, State: wm.StateNormal},
		},
		focusedID: "s1",
	}
	h := newHarness(remote)

	require.NoError(t, h.bridge.LoadRemote(context.Background()))

	assert.Equal(t, "server.jpg", h.desktop.Snapshot().Wallpaper)
	assert.Equal(t, "s1", h.windows.FocusedID())
	assert.Equal(t, 7, h.bridge.Version())

	// Server copy also lands in the cache.
	data, ok, err := h.cache.Get(CacheKeyDesktop)
	require.NoError(t, err)
	require.True(t, ok)
	var s desktop.Settings
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "server.jpg", s.Wallpaper)
}

func TestLateRemoteLoadNeverClobbersNewerLocalState(t *testing.T) {
	remote := &fakeRemote{
		version: 7,
		desktop: desktop.Settings{Wallpaper: "server.jpg", Theme: desktop.ThemeLight},
	}
	h := newHarness(remote)

	// Local mutation lands before the fetch result is applied.
	h.desktop.SetWallpaper("local-edit.jpg")

	require.NoError(t, h.bridge.LoadRemote(context.Background()))

	assert.Equal(t, "local-edit.jpg", h.desktop.Snapshot().Wallpaper,
		"fetch result must not overwrite newer local state")
	assert.Equal(t, 7, h.bridge.Version())
}

func TestLoadRemoteFailureFallsBackToLocal(t *testing.T) {
	h := newHarness(&fakeRemote{failNetwork: true})
	h.desktop.SetWallpaper("local.jpg")

	err := h.bridge.LoadRemote(context.Background())
	assert.True(t, apperrors.IsNetwork(err))
	assert.Equal(t, "local.jpg", h.desktop.Snapshot().Wallpaper)
}

func TestFlushWritesImmediately(t *testing.T) {
	h := newHarness(&fakeRemote{version: 1})

	h.windows.Create("notes", wm.Options{})
	h.bridge.Flush()

	_, ok, err := h.cache.Get(CacheKeyWindows)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, h.remote.winPushes)

	// The superseded debounce must not double-push.
	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.remote.winPushes)
}
