// Package session wires the client-side registries and the persistence
// bridge into one explicit application context. Nothing in the core is
// reachable through package-level state; a Session is constructed once
// per signed-in user and passed to callers.
package session

import (
	"context"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apps"
	"github.com/ffaheem88/BrowserOS-sub000/internal/desktop"
	"github.com/ffaheem88/BrowserOS-sub000/internal/persist"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
)

// Config holds construction parameters for a session.
type Config struct {
	ViewportWidth  int
	ViewportHeight int
	Cache          persist.CacheStore
	Remote         persist.Remote
	Clock          persist.Clock
}

// Session is the per-user application context.
type Session struct {
	Windows *wm.Registry
	Desktop *desktop.Registry
	Apps    *apps.Registry
	Bridge  *persist.Bridge

	sched *persist.Scheduler
}

// New builds a session: window and desktop registries, the built-in app
// catalog and the persistence bridge. cfg.Cache defaults to an
// in-memory store; a nil cfg.Remote leaves the session local-only.
func New(cfg Config) (*Session, error) {
	if cfg.Cache == nil {
		cfg.Cache = persist.NewMemoryStore()
	}

	windows := wm.NewRegistry(wm.Config{
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
	})
	desk := desktop.NewRegistry()
	appReg := apps.NewRegistry(windows)
	if err := apps.RegisterBuiltin(appReg); err != nil {
		return nil, err
	}

	sched := persist.NewScheduler(cfg.Clock)
	bridge := persist.NewBridge(windows, desk, cfg.Cache, cfg.Remote, sched)

	return &Session{
		Windows: windows,
		Desktop: desk,
		Apps:    appReg,
		Bridge:  bridge,
		sched:   sched,
	}, nil
}

// Start restores state: local cache synchronously, then the server
// record in the background. The returned channel closes once the
// remote load has finished (or failed).
func (s *Session) Start(ctx context.Context) <-chan struct{} {
	s.Bridge.Load()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Bridge.LoadRemote(ctx)
	}()
	return done
}

// Close flushes pending saves and stops the debounce scheduler.
func (s *Session) Close() {
	s.Bridge.Flush()
	s.sched.Stop()
}
