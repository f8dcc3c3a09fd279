package database

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ffaheem88/BrowserOS-sub000/internal/config"
	"github.com/ffaheem88/BrowserOS-sub000/internal/models"
	"github.com/ffaheem88/BrowserOS-sub000/internal/utils"
)

func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:   uuid.NewString(),
		FullName: cfg.AdminFullName,
		Email:    cfg.AdminEmail,
		Password: hashed,
		Role:     "admin",
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Seeded initial admin:", cfg.AdminEmail)
	return nil
}
