package persist

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apperrors"
	"github.com/ffaheem88/BrowserOS-sub000/internal/desktop"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
)

const (
	windowsDebounce = 1500 * time.Millisecond
	desktopDebounce = 2 * time.Second

	windowsKey = "windows"
	desktopKey = "desktop"
)

type windowsBlob struct {
	Windows         []wm.Window `json:"windows"`
	FocusedWindowID string      `json:"focusedWindowId"`
}

// Bridge debounces registry changes into local-cache writes plus
// best-effort pushes to the server record store. The cache write always
// happens first and is never skipped; remote failures are logged and
// swallowed so they cannot reach the UI layer.
type Bridge struct {
	windows *wm.Registry
	desktop *desktop.Registry
	cache   CacheStore
	remote  Remote
	sched   *Scheduler

	mu      sync.Mutex
	version int
	dirty   bool
}

// NewBridge wires the registries' change hooks to debounced saves. A
// nil remote leaves the bridge in local-only mode.
func NewBridge(windows *wm.Registry, desk *desktop.Registry, cache CacheStore, remote Remote, sched *Scheduler) *Bridge {
	b := &Bridge{
		windows: windows,
		desktop: desk,
		cache:   cache,
		remote:  remote,
		sched:   sched,
	}
	windows.SetOnChange(b.scheduleWindowsSave)
	desk.SetOnChange(b.scheduleDesktopSave)
	return b
}

func (b *Bridge) scheduleWindowsSave() {
	b.mu.Lock()
	b.dirty = true
	b.mu.Unlock()
	b.sched.Schedule(windowsKey, windowsDebounce, b.flushWindows)
}

func (b *Bridge) scheduleDesktopSave() {
	b.mu.Lock()
	b.dirty = true
	b.mu.Unlock()
	b.sched.Schedule(desktopKey, desktopDebounce, b.flushDesktop)
}

// Version reports the last-known server record version.
func (b *Bridge) Version() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

func (b *Bridge) setVersion(v int) {
	b.mu.Lock()
	b.version = v
	b.mu.Unlock()
}

// flushWindows writes the window slice: cache first, then remote.
func (b *Bridge) flushWindows() {
	windows, focused := b.windows.Snapshot()
	blob := windowsBlob{Windows: windows, FocusedWindowID: focused}
	data, err := json.Marshal(blob)
	if err != nil {
		log.Printf("persist: marshal windows: %v", err)
		return
	}
	if err := b.cache.Put(CacheKeyWindows, data); err != nil {
		log.Printf("persist: cache windows: %v", err)
	}
	if b.remote == nil {
		return
	}
	newVersion, err := b.remote.PushWindows(context.Background(), b.Version(), windows, focused)
	if err != nil {
		b.handlePushError("windows", err)
		return
	}
	b.setVersion(newVersion)
}

// flushDesktop writes the settings slice: cache first, then remote.
func (b *Bridge) flushDesktop() {
	settings := b.desktop.Snapshot()
	data, err := json.Marshal(settings)
	if err != nil {
		log.Printf("persist: marshal desktop: %v", err)
		return
	}
	if err := b.cache.Put(CacheKeyDesktop, data); err != nil {
		log.Printf("persist: cache desktop: %v", err)
	}
	if b.remote == nil {
		return
	}
	newVersion, err := b.remote.PushState(context.Background(), b.Version(), settings)
	if err != nil {
		b.handlePushError("desktop", err)
		return
	}
	b.setVersion(newVersion)
}

// handlePushError downgrades every remote failure to a warning. On a
// version conflict the server's current version is recorded so the next
// debounced save reapplies the local state on top of it; the bridge
// detects conflicts but does not merge.
func (b *Bridge) handlePushError(slice string, err error) {
	var conflict *apperrors.ConflictError
	switch {
	case errors.As(err, &conflict):
		log.Printf("persist: %s push conflict, server at version %d", slice, conflict.Actual)
		b.setVersion(conflict.Actual)
	case errors.Is(err, ErrNoCredential):
		log.Printf("persist: %s push skipped, not signed in", slice)
	default:
		log.Printf("persist: %s push failed: %v", slice, err)
	}
}

// Load restores state from the local cache synchronously. Callers
// should follow up with LoadRemote, typically in a goroutine.
func (b *Bridge) Load() {
	if data, ok, err := b.cache.Get(CacheKeyDesktop); err != nil {
		log.Printf("persist: read desktop cache: %v", err)
	} else if ok {
		var settings desktop.Settings
		if err := json.Unmarshal(data, &settings); err != nil {
			log.Printf("persist: decode desktop cache: %v", err)
		} else {
			b.desktop.Replace(settings)
		}
	}

	if data, ok, err := b.cache.Get(CacheKeyWindows); err != nil {
		log.Printf("persist: read windows cache: %v", err)
	} else if ok {
		var blob windowsBlob
		if err := json.Unmarshal(data, &blob); err != nil {
			log.Printf("persist: decode windows cache: %v", err)
		} else {
			b.windows.Replace(blob.Windows, blob.FocusedWindowID)
		}
	}
}

// LoadRemote fetches the server record and, when the session has not
// been mutated locally in the meantime, replaces in-memory state
// wholesale: the server is the freshness authority on load. A fetch
// that lands after local edits only refreshes the version counter
// source of truth and leaves the newer local state alone.
func (b *Bridge) LoadRemote(ctx context.Context) error {
	if b.remote == nil {
		return nil
	}
	state, err := b.remote.FetchState(ctx)
	if err != nil {
		log.Printf("persist: fetch state: %v", err)
		return err
	}
	winEnv, err := b.remote.FetchWindows(ctx)
	if err != nil {
		log.Printf("persist: fetch windows: %v", err)
		return err
	}

	b.mu.Lock()
	mutated := b.dirty
	b.version = state.Version
	b.mu.Unlock()
	if mutated {
		return nil
	}

	b.desktop.Replace(state.Desktop)
	b.windows.Replace(winEnv.Windows, winEnv.FocusedWindowID)

	// Keep the cache in step with the adopted server copy.
	if data, err := json.Marshal(state.Desktop); err == nil {
		if err := b.cache.Put(CacheKeyDesktop, data); err != nil {
			log.Printf("persist: cache desktop: %v", err)
		}
	}
	blob := windowsBlob{Windows: winEnv.Windows, FocusedWindowID: winEnv.FocusedWindowID}
	if data, err := json.Marshal(blob); err == nil {
		if err := b.cache.Put(CacheKeyWindows, data); err != nil {
			log.Printf("persist: cache windows: %v", err)
		}
	}
	return nil
}

// Flush cancels pending debounces and writes both slices immediately.
// Intended for session shutdown.
func (b *Bridge) Flush() {
	b.sched.Cancel(windowsKey)
	b.sched.Cancel(desktopKey)
	b.flushWindows()
	b.flushDesktop()
}
