package desktop

import "sync"

// TaskbarPatch is a partial taskbar update. Nil fields keep the current
// value.
type TaskbarPatch struct {
	Position   *string
	Autohide   *bool
	PinnedApps *[]string
}

// Registry owns the desktop settings singleton for one user session.
// Mutations on unknown icon ids are idempotent no-ops.
type Registry struct {
	mu       sync.RWMutex
	settings Settings
	onChange func()
}

func NewRegistry() *Registry {
	return &Registry{settings: DefaultSettings()}
}

// SetOnChange installs the persistence hook, invoked outside the lock
// after every state change.
func (r *Registry) SetOnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

func (r *Registry) notify(changed bool) {
	if !changed {
		return
	}
	r.mu.RLock()
	fn := r.onChange
	r.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (r *Registry) SetWallpaper(ref string) {
	r.mu.Lock()
	r.settings.Wallpaper = ref
	r.mu.Unlock()
	r.notify(true)
}

func (r *Registry) SetTheme(theme Theme) {
	if theme != ThemeLight && theme != ThemeDark {
		return
	}
	r.mu.Lock()
	r.settings.Theme = theme
	r.mu.Unlock()
	r.notify(true)
}

// ToggleTheme flips light and dark.
func (r *Registry) ToggleTheme() {
	r.mu.Lock()
	if r.settings.Theme == ThemeDark {
		r.settings.Theme = ThemeLight
	} else {
		r.settings.Theme = ThemeDark
	}
	r.mu.Unlock()
	r.notify(true)
}

// AddIcon places or replaces a desktop icon keyed by its id.
func (r *Registry) AddIcon(icon Icon) {
	if icon.ID == "" {
		return
	}
	r.mu.Lock()
	r.settings.Icons[icon.ID] = icon
	r.mu.Unlock()
	r.notify(true)
}

// RemoveIcon deletes the icon; removing an unknown id changes nothing.
func (r *Registry) RemoveIcon(id string) {
	r.mu.Lock()
	_, ok := r.settings.Icons[id]
	if ok {
		delete(r.settings.Icons, id)
	}
	r.mu.Unlock()
	r.notify(ok)
}

// MoveIcon repositions the icon; an unknown id changes nothing.
func (r *Registry) MoveIcon(id string, pos Position) {
	r.mu.Lock()
	icon, ok := r.settings.Icons[id]
	if ok {
		icon.Position = pos
		r.settings.Icons[id] = icon
	}
	r.mu.Unlock()
	r.notify(ok)
}

// UpdateTaskbar applies a partial taskbar configuration.
func (r *Registry) UpdateTaskbar(patch TaskbarPatch) {
	r.mu.Lock()
	if patch.Position != nil {
		r.settings.Taskbar.Position = *patch.Position
	}
	if patch.Autohide != nil {
		r.settings.Taskbar.Autohide = *patch.Autohide
	}
	if patch.PinnedApps != nil {
		r.settings.Taskbar.PinnedApps = append([]string(nil), *patch.PinnedApps...)
	}
	r.mu.Unlock()
	r.notify(true)
}

// Reset restores the hard-coded defaults.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.settings = DefaultSettings()
	r.mu.Unlock()
	r.notify(true)
}

// Snapshot returns a deep copy of the current settings.
func (r *Registry) Snapshot() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.settings)
}

// Replace swaps in a loaded settings record. Only the initial load
// path uses it. Missing maps are rebuilt so later mutations never
// panic on a nil collection.
func (r *Registry) Replace(s Settings) {
	r.mu.Lock()
	next := clone(s)
	if next.Icons == nil {
		next.Icons = map[string]Icon{}
	}
	if next.Theme != ThemeLight && next.Theme != ThemeDark {
		next.Theme = ThemeLight
	}
	if next.Taskbar.PinnedApps == nil {
		next.Taskbar.PinnedApps = []string{}
	}
	r.settings = next
	r.mu.Unlock()
}
