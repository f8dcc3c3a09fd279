package models

import (
	"time"

	"gorm.io/datatypes"
)

// DesktopRecord is the authoritative per-user desktop state. Version
// increments by exactly one on every accepted write; a write carrying a
// stale expected version is rejected with a conflict instead of
// last-write-wins.
type DesktopRecord struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"uniqueIndex"`
	Version         int
	Wallpaper       string
	Theme           string
	Icons           datatypes.JSON `gorm:"type:jsonb"`
	TaskbarPosition string
	TaskbarAutohide bool
	PinnedApps      datatypes.JSON `gorm:"type:jsonb"`
	FocusedWindowID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WindowRecord is one persisted window. The upsert key is (UserID,
// WindowID): the same window id updates in place, while multiple
// windows of the same app coexist as distinct records.
type WindowRecord struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"index;uniqueIndex:idx_user_window"`
	WindowID    string `gorm:"uniqueIndex:idx_user_window"`
	AppID       string `gorm:"index"`
	Title       string
	Icon        string
	X           int
	Y           int
	Width       int
	Height      int
	State       string
	ZIndex      int
	Focused     bool
	Resizable   bool
	Movable     bool
	Minimizable bool
	Maximizable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
