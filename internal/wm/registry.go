package wm

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

const (
	baseZIndex       = 100
	compactThreshold = 1000

	cascadeBaseX = 50
	cascadeBaseY = 50
	cascadeStep  = 30

	taskbarHeight = 48
	// Minimum room a cascaded window keeps above the taskbar before the
	// cursors wrap back to the base offset.
	cascadeReserve = 200

	defaultWidth  = 800
	defaultHeight = 600
)

// Config holds construction parameters for a window registry.
type Config struct {
	ViewportWidth  int
	ViewportHeight int
}

// Registry owns the in-memory window collection, z-order allocation and
// cascade placement for one user session. All operations are safe for
// concurrent use. Operations on unknown ids are silent no-ops so a
// stray action against a just-closed window never surfaces an error.
type Registry struct {
	mu       sync.RWMutex
	windows  map[string]*Window
	nextZ    int
	cascadeX int
	cascadeY int
	viewW    int
	viewH    int
	onChange func()
}

// NewRegistry creates an empty registry. Zero viewport dimensions fall
// back to 1920x1080.
func NewRegistry(cfg Config) *Registry {
	w, h := cfg.ViewportWidth, cfg.ViewportHeight
	if w <= 0 {
		w = 1920
	}
	if h <= 0 {
		h = 1080
	}
	return &Registry{
		windows:  make(map[string]*Window),
		nextZ:    baseZIndex,
		cascadeX: cascadeBaseX,
		cascadeY: cascadeBaseY,
		viewW:    w,
		viewH:    h,
	}
}

// SetOnChange installs a hook invoked after every mutating operation
// that changed state. The persistence bridge uses it to schedule
// debounced saves. The hook runs outside the registry lock.
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

// Create opens a new window for appID and returns a copy of the record.
// The new window is placed by the cascade cursor unless opts.Position
// is set, receives the next z-index and takes exclusive focus. Crossing
// the compaction threshold renumbers the stack after the create.
func (r *Registry) Create(appID string, opts Options) *Window {
	r.mu.Lock()

	win := &Window{
		ID:          uuid.NewString(),
		AppID:       appID,
		Title:       appID,
		Size:        Size{Width: defaultWidth, Height: defaultHeight},
		State:       StateNormal,
		Resizable:   true,
		Movable:     true,
		Minimizable: true,
		Maximizable: true,
	}
	if opts.Title != nil {
		win.Title = *opts.Title
	}
	if opts.Icon != nil {
		win.Icon = *opts.Icon
	}
	if opts.Size != nil {
		win.Size = *opts.Size
	}
	if opts.Position != nil {
		win.Position = *opts.Position
	} else {
		win.Position = r.cascadeNextLocked()
	}
	if opts.State != nil && opts.State.Valid() {
		win.State = *opts.State
	}
	if opts.Resizable != nil {
		win.Resizable = *opts.Resizable
	}
	if opts.Movable != nil {
		win.Movable = *opts.Movable
	}
	if opts.Minimizable != nil {
		win.Minimizable = *opts.Minimizable
	}
	if opts.Maximizable != nil {
		win.Maximizable = *opts.Maximizable
	}

	win.ZIndex = r.nextZ
	r.nextZ++
	for _, other := range r.windows {
		other.Focused = false
	}
	win.Focused = true
	r.windows[win.ID] = win

	if r.nextZ > compactThreshold {
		r.compactLocked()
	}

	out := *win
	r.mu.Unlock()
	r.notify(true)
	return &out
}

// cascadeNextLocked returns the current cursor position and advances
// both cursors by one step, wrapping back to the base offset once
// either cursor runs out of room above the taskbar. The wrap keeps
// placement bounded no matter how many windows have been created.
func (r *Registry) cascadeNextLocked() Position {
	pos := Position{X: r.cascadeX, Y: r.cascadeY}
	r.cascadeX += cascadeStep
	r.cascadeY += cascadeStep
	bound := r.viewH - taskbarHeight - cascadeReserve
	if r.cascadeX > bound || r.cascadeY > bound {
		r.cascadeX = cascadeBaseX
		r.cascadeY = cascadeBaseY
	}
	return pos
}

// compactLocked reassigns contiguous z-indices starting at the base
// while preserving relative stacking order, then resets the counter.
func (r *Registry) compactLocked() {
	ordered := make([]*Window, 0, len(r.windows))
	for _, w := range r.windows {
		ordered = append(ordered, w)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ZIndex < ordered[j].ZIndex })
	for i, w := range ordered {
		w.ZIndex = baseZIndex + i
	}
	r.nextZ = baseZIndex + len(ordered)
}

// refocusTopLocked hands focus to the visible window with the highest
// z-index, or clears focus when none remain. It does not advance the
// z-index counter; only Create and Focus do.
func (r *Registry) refocusTopLocked() {
	var top *Window
	for _, w := range r.windows {
		if !w.Visible() {
			continue
		}
		if top == nil || w.ZIndex > top.ZIndex {
			top = w
		}
	}
	if top != nil {
		top.Focused = true
	}
}

// Close removes the window. If it held focus, focus transfers to the
// remaining visible window with the highest z-index.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	hadFocus := win.Focused
	delete(r.windows, id)
	if hadFocus {
		r.refocusTopLocked()
	}
	r.mu.Unlock()
	r.notify(true)
}

// Minimize hides the window from the visible stacking order. Windows
// created non-minimizable are left untouched.
func (r *Registry) Minimize(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok || !win.Minimizable {
		r.mu.Unlock()
		return
	}
	hadFocus := win.Focused
	win.State = StateMinimized
	win.Focused = false
	if hadFocus {
		r.refocusTopLocked()
	}
	r.mu.Unlock()
	r.notify(true)
}

// Maximize toggles between maximized and normal, then focuses the
// window. A second call returns the window to normal.
func (r *Registry) Maximize(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok || !win.Maximizable {
		r.mu.Unlock()
		return
	}
	if win.State == StateMaximized {
		win.State = StateNormal
	} else {
		win.State = StateMaximized
	}
	r.focusLocked(win)
	r.mu.Unlock()
	r.notify(true)
}

// Restore unconditionally returns the window to the normal state and
// focuses it. A window minimized while maximized restores to normal;
// the prior maximized state is deliberately not remembered.
func (r *Registry) Restore(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	win.State = StateNormal
	r.focusLocked(win)
	r.mu.Unlock()
	r.notify(true)
}

// Focus gives the window exclusive focus and raises it to the top of
// the stack by allocating the next z-index.
func (r *Registry) Focus(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	r.focusLocked(win)
	r.mu.Unlock()
	r.notify(true)
}

func (r *Registry) focusLocked(win *Window) {
	for _, other := range r.windows {
		other.Focused = false
	}
	win.Focused = true
	win.ZIndex = r.nextZ
	r.nextZ++
}

// Move updates the window origin. Non-movable windows are left alone.
func (r *Registry) Move(id string, pos Position) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok || !win.Movable {
		r.mu.Unlock()
		return
	}
	win.Position = pos
	r.mu.Unlock()
	r.notify(true)
}

// Resize updates the window extent. Non-resizable windows are left alone.
func (r *Registry) Resize(id string, size Size) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok || !win.Resizable {
		r.mu.Unlock()
		return
	}
	win.Size = size
	r.mu.Unlock()
	r.notify(true)
}

// Rename updates the window title.
func (r *Registry) Rename(id, title string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	win.Title = title
	r.mu.Unlock()
	r.notify(true)
}

// SetState writes the display state directly. Unknown states are ignored.
func (r *Registry) SetState(id string, state State) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok || !state.Valid() {
		r.mu.Unlock()
		return
	}
	win.State = state
	r.mu.Unlock()
	r.notify(true)
}

// Get returns a copy of the window, or nil if absent.
func (r *Registry) Get(id string) *Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	win, ok := r.windows[id]
	if !ok {
		return nil
	}
	out := *win
	return &out
}

// Visible returns copies of all non-minimized windows in ascending
// z-index order.
func (r *Registry) Visible() []Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Window, 0, len(r.windows))
	for _, w := range r.windows {
		if w.Visible() {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// Minimized returns copies of all minimized windows.
func (r *Registry) Minimized() []Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Window, 0)
	for _, w := range r.windows {
		if w.State == StateMinimized {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// ByApp returns copies of all windows launched from appID.
func (r *Registry) ByApp(appID string) []Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Window, 0)
	for _, w := range r.windows {
		if w.AppID == appID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// Focused returns a copy of the focused window, or nil when no window
// holds focus.
func (r *Registry) Focused() *Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.windows {
		if w.Focused {
			out := *w
			return &out
		}
	}
	return nil
}

// FocusedID returns the focused window id, or "".
func (r *Registry) FocusedID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.windows {
		if w.Focused {
			return w.ID
		}
	}
	return ""
}

// Len returns the number of open windows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}

// Snapshot returns value copies of every window in ascending z-index
// order together with the focused window id, for persistence.
func (r *Registry) Snapshot() ([]Window, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Window, 0, len(r.windows))
	focused := ""
	for _, w := range r.windows {
		out = append(out, *w)
		if w.Focused {
			focused = w.ID
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out, focused
}

// Replace swaps the whole collection for the given records. Only the
// initial load path uses it; later sync results never replace newer
// local state. The z-index counter resumes above the highest loaded
// index and the focused flag is rewritten from focusedID so the
// single-focus invariant holds even against a corrupt snapshot.
func (r *Registry) Replace(windows []Window, focusedID string) {
	r.mu.Lock()
	r.windows = make(map[string]*Window, len(windows))
	maxZ := baseZIndex - 1
	for i := range windows {
		w := windows[i]
		if w.ID == "" {
			continue
		}
		if !w.State.Valid() {
			w.State = StateNormal
		}
		w.Focused = w.ID == focusedID
		if w.ZIndex > maxZ {
			maxZ = w.ZIndex
		}
		r.windows[w.ID] = &w
	}
	r.nextZ = maxZ + 1
	r.mu.Unlock()
}

// ForceNextZIndex sets the z-index counter directly. Tests use it to
// exercise compaction without creating a thousand windows.
func (r *Registry) ForceNextZIndex(z int) {
	r.mu.Lock()
	r.nextZ = z
	r.mu.Unlock()
}

// NextZIndex reports the current counter value.
func (r *Registry) NextZIndex() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextZ
}
