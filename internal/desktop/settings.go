package desktop

// Theme is the desktop color scheme. There is no third value;
// ToggleTheme flips between the two.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Position is a desktop-grid coordinate for an icon.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Icon is one desktop icon placement, keyed by id in Settings.
type Icon struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Icon     string   `json:"icon,omitempty"`
	AppID    string   `json:"appId"`
	Position Position `json:"position"`
}

// Taskbar holds taskbar configuration.
type Taskbar struct {
	Position   string   `json:"position"`
	Autohide   bool     `json:"autohide"`
	PinnedApps []string `json:"pinnedApps"`
}

// Settings is the per-session desktop configuration singleton.
type Settings struct {
	Wallpaper string          `json:"wallpaper"`
	Theme     Theme           `json:"theme"`
	Icons     map[string]Icon `json:"icons"`
	Taskbar   Taskbar         `json:"taskbar"`
}

// DefaultSettings returns the hard-coded first-use configuration.
func DefaultSettings() Settings {
	return Settings{
		Wallpaper: "default",
		Theme:     ThemeLight,
		Icons:     map[string]Icon{},
		Taskbar: Taskbar{
			Position:   "bottom",
			Autohide:   false,
			PinnedApps: []string{},
		},
	}
}

// clone deep-copies s so registry snapshots never alias internal state.
func clone(s Settings) Settings {
	out := s
	out.Icons = make(map[string]Icon, len(s.Icons))
	for id, ic := range s.Icons {
		out.Icons[id] = ic
	}
	out.Taskbar.PinnedApps = append([]string(nil), s.Taskbar.PinnedApps...)
	return out
}
