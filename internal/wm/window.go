package wm

// State is the display state of a window. These are pure data-model
// values manipulated by application logic, not a real display server.
type State string

const (
	StateNormal     State = "normal"
	StateMinimized  State = "minimized"
	StateMaximized  State = "maximized"
	StateFullscreen State = "fullscreen"
)

// Valid reports whether s is one of the four known states.
func (s State) Valid() bool {
	switch s {
	case StateNormal, StateMinimized, StateMaximized, StateFullscreen:
		return true
	}
	return false
}

// Position is a window origin in desktop coordinates.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window extent in desktop coordinates.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Window is one open application instance. The registry exclusively
// owns the collection; callers receive copies and mutate through
// registry operations only.
type Window struct {
	ID          string   `json:"id"`
	AppID       string   `json:"appId"`
	Title       string   `json:"title"`
	Icon        string   `json:"icon,omitempty"`
	Position    Position `json:"position"`
	Size        Size     `json:"size"`
	State       State    `json:"state"`
	ZIndex      int      `json:"zIndex"`
	Focused     bool     `json:"focused"`
	Resizable   bool     `json:"resizable"`
	Movable     bool     `json:"movable"`
	Minimizable bool     `json:"minimizable"`
	Maximizable bool     `json:"maximizable"`
}

// Visible reports whether the window participates in the visible
// stacking order.
func (w *Window) Visible() bool {
	return w.State != StateMinimized
}

// Options is the closed set of per-creation overrides. Nil fields keep
// their defaults: cascade placement, 800x600, normal state, title equal
// to the app id and every capability enabled.
type Options struct {
	Title       *string
	Icon        *string
	Position    *Position
	Size        *Size
	State       *State
	Resizable   *bool
	Movable     *bool
	Minimizable *bool
	Maximizable *bool
}
