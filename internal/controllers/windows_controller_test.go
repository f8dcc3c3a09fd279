package controllers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/ffaheem88/BrowserOS-sub000/internal/models"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
)

func TestWindowRecordRoundTrip(t *testing.T) {
	w := wm.Window{
		ID:          uuid.NewString(),
		AppID:       "notes",
		Title:       "Notes",
		Icon:        "notes.svg",
		Position:    wm.Position{X: 80, Y: 110},
		Size:        wm.Size{Width: 640, Height: 480},
		State:       wm.StateMaximized,
		ZIndex:      104,
		Focused:     true,
		Resizable:   true,
		Movable:     true,
		Minimizable: true,
		Maximizable: true,
	}

	rec := windowToRecord("user-1", w)
	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, w, recordToWindow(rec))
}

func TestValidateWindow(t *testing.T) {
	valid := wm.Window{ID: uuid.NewString(), AppID: "notes", State: wm.StateNormal}
	assert.Empty(t, validateWindow(valid))

	tests := []struct {
		name   string
		mutate func(*wm.Window)
	}{
		{"missing id", func(w *wm.Window) { w.ID = "" }},
		{"non-uuid id", func(w *wm.Window) { w.ID = "abc" }},
		{"missing app id", func(w *wm.Window) { w.AppID = "" }},
		{"bad state", func(w *wm.Window) { w.State = "exploded" }},
		{"negative size", func(w *wm.Window) { w.Size.Width = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			tt.mutate(&w)
			assert.NotEmpty(t, validateWindow(w))
		})
	}
}

func TestRecordSettingsDefaults(t *testing.T) {
	rec := models.DesktopRecord{
		Wallpaper:       "default",
		Theme:           "light",
		TaskbarPosition: "bottom",
	}
	s := recordSettings(rec)

	assert.NotNil(t, s.Icons, "nil icon column must decode to an empty set")
	assert.NotNil(t, s.Taskbar.PinnedApps)
	assert.Equal(t, "bottom", s.Taskbar.Position)
}

func TestRecordSettingsDecodesColumns(t *testing.T) {
	rec := models.DesktopRecord{
		Wallpaper:       "sunset.jpg",
		Theme:           "dark",
		Icons:           datatypes.JSON(`{"i1":{"id":"i1","label":"Notes","appId":"notes","position":{"x":1,"y":2}}}`),
		TaskbarPosition: "left",
		TaskbarAutohide: true,
		PinnedApps:      datatypes.JSON(`["notes","clock"]`),
	}
	s := recordSettings(rec)

	assert.Equal(t, "sunset.jpg", s.Wallpaper)
	assert.Contains(t, s.Icons, "i1")
	assert.Equal(t, 1, s.Icons["i1"].Position.X)
	assert.Equal(t, []string{"notes", "clock"}, s.Taskbar.PinnedApps)
	assert.True(t, s.Taskbar.Autohide)
}
