package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ffaheem88/BrowserOS-sub000/internal/models"
)

type AdminController struct {
	DB *gorm.DB
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	limit := 20
	page := 1
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	sortBy := strings.ToLower(c.DefaultQuery("sort_by", "created_at"))
	sortDir := strings.ToUpper(c.DefaultQuery("sort_dir", "DESC"))
	if sortDir != "ASC" && sortDir != "DESC" {
		sortDir = "DESC"
	}
	allowedSorts := map[string]string{
		"id":         "id",
		"created_at": "created_at",
		"email":      "email",
		"full_name":  "full_name",
	}
	sortCol, ok := allowedSorts[sortBy]
	if !ok {
		sortCol = "created_at"
	}
	order := fmt.Sprintf("%s %s", sortCol, sortDir)

	base := ac.DB.Model(&models.User{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		base = base.Where("email ILIKE ? OR full_name ILIKE ?", like, like)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var users []models.User
	if err := base.Order(order).Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"user_id":    u.UserID,
			"email":      u.Email,
			"full_name":  u.FullName,
			"role":       u.Role,
			"active":     u.Active,
			"created_at": u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"data": out,
		"meta": gin.H{"total": total, "limit": limit, "page": page, "sort_by": sortCol, "sort_dir": sortDir},
	})
}

func (ac *AdminController) GetUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	var user models.User
	if err := ac.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":    user.UserID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"role":       user.Role,
		"active":     user.Active,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	})
}

// DeleteUser removes the account together with its desktop record,
// window records and refresh tokens.
func (ac *AdminController) DeleteUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	var user models.User
	if err := ac.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.WindowRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.DesktopRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id_ref = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
