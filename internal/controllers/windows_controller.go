package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ffaheem88/BrowserOS-sub000/internal/models"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
	"github.com/ffaheem88/BrowserOS-sub000/internal/ws"
)

// WindowsController persists the per-user window list. Bulk saves are
// all-or-nothing so a crash mid-write never leaves a half-updated
// layout.
type WindowsController struct {
	DB  *gorm.DB
	Hub *ws.DesktopHub
}

func windowToRecord(userID string, w wm.Window) models.WindowRecord {
	return models.WindowRecord{
		UserID:      userID,
		WindowID:    w.ID,
		AppID:       w.AppID,
		Title:       w.Title,
		Icon:        w.Icon,
		X:           w.Position.X,
		Y:           w.Position.Y,
		Width:       w.Size.Width,
		Height:      w.Size.Height,
		State:       string(w.State),
		ZIndex:      w.ZIndex,
		Focused:     w.Focused,
		Resizable:   w.Resizable,
		Movable:     w.Movable,
		Minimizable: w.Minimizable,
		Maximizable: w.Maximizable,
	}
}

func recordToWindow(rec models.WindowRecord) wm.Window {
	return wm.Window{
		ID:          rec.WindowID,
		AppID:       rec.AppID,
		Title:       rec.Title,
		Icon:        rec.Icon,
		Position:    wm.Position{X: rec.X, Y: rec.Y},
		Size:        wm.Size{Width: rec.Width, Height: rec.Height},
		State:       wm.State(rec.State),
		ZIndex:      rec.ZIndex,
		Focused:     rec.Focused,
		Resizable:   rec.Resizable,
		Movable:     rec.Movable,
		Minimizable: rec.Minimizable,
		Maximizable: rec.Maximizable,
	}
}

func validateWindow(w wm.Window) string {
	if strings.TrimSpace(w.ID) == "" {
		return "window id required"
	}
	if _, err := uuid.Parse(w.ID); err != nil {
		return "window id must be a uuid"
	}
	if strings.TrimSpace(w.AppID) == "" {
		return "app id required"
	}
	if !w.State.Valid() {
		return "invalid window state"
	}
	if w.Size.Width < 0 || w.Size.Height < 0 {
		return "invalid window size"
	}
	return ""
}

// List returns the window list in ascending z-index order together with
// the record version and focused window id.
func (wc *WindowsController) List(c *gin.Context) {
	userID := currentUserID(c)

	rec, err := getOrCreate(wc.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var recs []models.WindowRecord
	if err := wc.DB.Where("user_id = ?", userID).Order("z_index ASC").Find(&recs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	windows := make([]wm.Window, 0, len(recs))
	for _, r := range recs {
		windows = append(windows, recordToWindow(r))
	}
	c.JSON(http.StatusOK, gin.H{
		"version":         rec.Version,
		"windows":         windows,
		"focusedWindowId": rec.FocusedWindowID,
	})
}

type bulkSaveRequest struct {
	Version         *int        `json:"version"`
	Windows         []wm.Window `json:"windows"`
	FocusedWindowID string      `json:"focusedWindowId"`
}

// BulkSave replaces the whole window list in a single transaction under
// the optimistic lock: either every window updates or none do.
func (wc *WindowsController) BulkSave(c *gin.Context) {
	userID := currentUserID(c)

	var req bulkSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, w := range req.Windows {
		if reason := validateWindow(w); reason != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": reason})
			return
		}
	}

	var newVersion int
	err := wc.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreate(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.WindowRecord{}).Error; err != nil {
			return err
		}
		for _, w := range req.Windows {
			rec := windowToRecord(userID, w)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.DesktopRecord{}).Where("user_id = ?", userID).
			Update("focused_window_id", req.FocusedWindowID).Error; err != nil {
			return err
		}
		v, err := bumpVersion(tx, userID, req.Version)
		if err != nil {
			return err
		}
		newVersion = v
		return nil
	})
	if err != nil {
		if respondConflict(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	wc.Hub.NotifyVersion(userID, newVersion)
	c.JSON(http.StatusOK, gin.H{"version": newVersion})
}

// Upsert writes one window keyed by (userID, windowID): posting the
// same window id again updates the record instead of duplicating it,
// while several windows of the same app remain distinct records.
func (wc *WindowsController) Upsert(c *gin.Context) {
	userID := currentUserID(c)

	var w wm.Window
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if reason := validateWindow(w); reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	var newVersion int
	created := false
	err := wc.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreate(tx, userID); err != nil {
			return err
		}
		var existing models.WindowRecord
		err := tx.Where("user_id = ? AND window_id = ?", userID, w.ID).First(&existing).Error
		if err == nil {
			rec := windowToRecord(userID, w)
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
			if err := tx.Save(&rec).Error; err != nil {
				return err
			}
		} else if err == gorm.ErrRecordNotFound {
			rec := windowToRecord(userID, w)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			created = true
		} else {
			return err
		}
		v, err := bumpVersion(tx, userID, nil)
		if err != nil {
			return err
		}
		newVersion = v
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	wc.Hub.NotifyVersion(userID, newVersion)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"version": newVersion, "window": w})
}

// Delete removes one window record.
func (wc *WindowsController) Delete(c *gin.Context) {
	userID := currentUserID(c)
	windowID := strings.TrimSpace(c.Param("window_id"))
	if windowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return
	}

	var newVersion int
	err := wc.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreate(tx, userID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND window_id = ?", userID, windowID).Delete(&models.WindowRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		v, err := bumpVersion(tx, userID, nil)
		if err != nil {
			return err
		}
		newVersion = v
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	wc.Hub.NotifyVersion(userID, newVersion)
	c.JSON(http.StatusOK, gin.H{"version": newVersion, "message": "deleted"})
}

// DeleteAll removes every window record of the user (close all).
func (wc *WindowsController) DeleteAll(c *gin.Context) {
	userID := currentUserID(c)

	var newVersion int
	err := wc.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreate(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.WindowRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DesktopRecord{}).Where("user_id = ?", userID).
			Update("focused_window_id", "").Error; err != nil {
			return err
		}
		v, err := bumpVersion(tx, userID, nil)
		if err != nil {
			return err
		}
		newVersion = v
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	wc.Hub.NotifyVersion(userID, newVersion)
	c.JSON(http.StatusOK, gin.H{"version": newVersion, "message": "deleted"})
}
