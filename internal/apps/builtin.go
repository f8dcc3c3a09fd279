package apps

import "github.com/ffaheem88/BrowserOS-sub000/internal/wm"

// Builtin returns the descriptors of the stock applications. The entry
// strings are opaque references resolved by the rendering surface.
func Builtin() []Descriptor {
	return []Descriptor{
		{
			ID:          "calculator",
			Name:        "Calculator",
			Icon:        "calculator.svg",
			Category:    "utilities",
			Description: "Basic arithmetic calculator",
			DefaultSize: wm.Size{Width: 320, Height: 480},
			MinSize:     wm.Size{Width: 280, Height: 400},
			MaxSize:     wm.Size{Width: 480, Height: 720},
			Resizable:   true,
			Maximizable: false,
			Entry:       "apps/calculator",
		},
		{
			ID:          "notes",
			Name:        "Notes",
			Icon:        "notes.svg",
			Category:    "productivity",
			Description: "Plain-text note taking",
			DefaultSize: wm.Size{Width: 640, Height: 480},
			MinSize:     wm.Size{Width: 320, Height: 240},
			Resizable:   true,
			Maximizable: true,
			Entry:       "apps/notes",
		},
		{
			ID:          "clock",
			Name:        "Clock",
			Icon:        "clock.svg",
			Category:    "utilities",
			Description: "Clock and timers",
			DefaultSize: wm.Size{Width: 360, Height: 360},
			Resizable:   false,
			Maximizable: false,
			Entry:       "apps/clock",
		},
		{
			ID:          "settings",
			Name:        "Settings",
			Icon:        "settings.svg",
			Category:    "system",
			Description: "Desktop appearance and taskbar settings",
			DefaultSize: wm.Size{Width: 720, Height: 540},
			MinSize:     wm.Size{Width: 480, Height: 360},
			Resizable:   true,
			Maximizable: true,
			Entry:       "apps/settings",
		},
	}
}

// RegisterBuiltin registers every stock application, returning the
// first validation error.
func RegisterBuiltin(r *Registry) error {
	for _, d := range Builtin() {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
