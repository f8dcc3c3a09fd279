package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apperrors"
	"github.com/ffaheem88/BrowserOS-sub000/internal/desktop"
	"github.com/ffaheem88/BrowserOS-sub000/internal/models"
	"github.com/ffaheem88/BrowserOS-sub000/internal/ws"
)

// DesktopController serves the authoritative per-user desktop record.
// Every accepted write increments the record version by exactly one;
// writers racing from two devices are resolved by rejecting the stale
// writer with 409 VERSION_CONFLICT rather than last-write-wins.
type DesktopController struct {
	DB  *gorm.DB
	Hub *ws.DesktopHub
}

func currentUserID(c *gin.Context) string {
	uVal, ok := c.Get("user")
	if !ok {
		return ""
	}
	return uVal.(models.User).UserID
}

// getOrCreate returns the user's desktop record, creating one with the
// hard-coded defaults on first use. A concurrent create from another
// device loses the unique-index race and re-reads.
func getOrCreate(db *gorm.DB, userID string) (models.DesktopRecord, error) {
	var rec models.DesktopRecord
	err := db.Where("user_id = ?", userID).First(&rec).Error
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, err
	}

	defaults := desktop.DefaultSettings()
	icons, _ := json.Marshal(defaults.Icons)
	pinned, _ := json.Marshal(defaults.Taskbar.PinnedApps)
	rec = models.DesktopRecord{
		UserID:          userID,
		Version:         1,
		Wallpaper:       defaults.Wallpaper,
		Theme:           string(defaults.Theme),
		Icons:           datatypes.JSON(icons),
		TaskbarPosition: defaults.Taskbar.Position,
		TaskbarAutohide: defaults.Taskbar.Autohide,
		PinnedApps:      datatypes.JSON(pinned),
	}
	if err := db.Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			err = db.Where("user_id = ?", userID).First(&rec).Error
		}
		return rec, err
	}
	return rec, nil
}

func recordSettings(rec models.DesktopRecord) desktop.Settings {
	s := desktop.Settings{
		Wallpaper: rec.Wallpaper,
		Theme:     desktop.Theme(rec.Theme),
		Icons:     map[string]desktop.Icon{},
		Taskbar: desktop.Taskbar{
			Position:   rec.TaskbarPosition,
			Autohide:   rec.TaskbarAutohide,
			PinnedApps: []string{},
		},
	}
	if len(rec.Icons) > 0 {
		_ = json.Unmarshal([]byte(rec.Icons), &s.Icons)
	}
	if len(rec.PinnedApps) > 0 {
		_ = json.Unmarshal([]byte(rec.PinnedApps), &s.Taskbar.PinnedApps)
	}
	return s
}

// bumpVersion applies the optimistic-lock predicate: the version column
// advances only when it still matches the caller's expectation. Zero
// rows affected means a concurrent writer got there first.
func bumpVersion(tx *gorm.DB, userID string, expected *int) (int, error) {
	q := tx.Model(&models.DesktopRecord{}).Where("user_id = ?", userID)
	if expected != nil {
		q = q.Where("version = ?", *expected)
	}
	res := q.Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	var rec models.DesktopRecord
	if err := tx.Where("user_id = ?", userID).First(&rec).Error; err != nil {
		return 0, err
	}
	if res.RowsAffected == 0 {
		exp := 0
		if expected != nil {
			exp = *expected
		}
		return 0, &apperrors.ConflictError{Resource: "desktop record", Expected: exp, Actual: rec.Version}
	}
	return rec.Version, nil
}

func respondConflict(c *gin.Context, err error) bool {
	var conflict *apperrors.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "VERSION_CONFLICT", "version": conflict.Actual})
		return true
	}
	return false
}

// GetState returns { version, desktop }, creating defaults on first call.
func (dc *DesktopController) GetState(c *gin.Context) {
	rec, err := getOrCreate(dc.DB, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": rec.Version, "desktop": recordSettings(rec)})
}

type updateStateRequest struct {
	Version *int              `json:"version"`
	Desktop *desktop.Settings `json:"desktop" binding:"required"`
}

// UpdateState replaces the desktop settings under the optimistic lock.
func (dc *DesktopController) UpdateState(c *gin.Context) {
	userID := currentUserID(c)

	var req updateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := *req.Desktop
	if s.Theme != desktop.ThemeLight && s.Theme != desktop.ThemeDark {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid theme"})
		return
	}

	icons, err := json.Marshal(s.Icons)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pinned, err := json.Marshal(s.Taskbar.PinnedApps)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var newVersion int
	err = dc.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreate(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(&models.DesktopRecord{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
			"wallpaper":        s.Wallpaper,
			"theme":            string(s.Theme),
			"icons":            datatypes.JSON(icons),
			"taskbar_position": s.Taskbar.Position,
			"taskbar_autohide": s.Taskbar.Autohide,
			"pinned_apps":      datatypes.JSON(pinned),
		}).Error; err != nil {
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

	dc.Hub.NotifyVersion(userID, newVersion)
	c.JSON(http.StatusOK, gin.H{"version": newVersion})
}

// ResetState deletes the desktop record and, by cascade, every window
// record of the user. The next GetState recreates the defaults.
func (dc *DesktopController) ResetState(c *gin.Context) {
	userID := currentUserID(c)
	err := dc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.WindowRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.DesktopRecord{}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	dc.Hub.NotifyVersion(userID, 0)
	c.JSON(http.StatusOK, gin.H{"message": "reset"})
}
