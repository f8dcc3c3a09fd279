package routes

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apps"
	"github.com/ffaheem88/BrowserOS-sub000/internal/config"
	"github.com/ffaheem88/BrowserOS-sub000/internal/controllers"
	"github.com/ffaheem88/BrowserOS-sub000/internal/middleware"
	"github.com/ffaheem88/BrowserOS-sub000/internal/ws"
)

func ttl(value string, unit time.Duration, fallback time.Duration) time.Duration {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * unit
}

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config, hub *ws.DesktopHub) {
	accessTTL := ttl(cfg.AccessTokenTTLMinutes, time.Minute, 15*time.Minute)
	refreshTTL := ttl(cfg.RefreshTokenTTLDays, 24*time.Hour, 30*24*time.Hour)

	authCtrl := &controllers.AuthController{
		DB:            db,
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshJWTSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
	desktopCtrl := &controllers.DesktopController{DB: db, Hub: hub}
	windowsCtrl := &controllers.WindowsController{DB: db, Hub: hub}
	appsCtrl := &controllers.AppsController{Catalog: apps.Builtin()}
	adminCtrl := &controllers.AdminController{DB: db}

	// Public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/refresh", authCtrl.Refresh)
	}

	// Protected
	authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		JWTExpiresIn: accessTTL,
	})
	api := r.Group("/api/v1", authMW)
	{
		api.GET("/auth/me", authCtrl.Me)
		api.POST("/auth/logout", authCtrl.Logout)

		// Application catalog
		api.GET("/apps", appsCtrl.List)
		api.GET("/apps/:app_id", appsCtrl.Get)

		// Desktop record
		api.GET("/desktop/state", desktopCtrl.GetState)
		api.PUT("/desktop/state", desktopCtrl.UpdateState)
		api.DELETE("/desktop/state", desktopCtrl.ResetState)

		api.GET("/desktop/windows", windowsCtrl.List)
		api.PUT("/desktop/windows", windowsCtrl.BulkSave)
		api.POST("/desktop/windows", windowsCtrl.Upsert)
		api.DELETE("/desktop/windows/:window_id", windowsCtrl.Delete)
		api.DELETE("/desktop/windows", windowsCtrl.DeleteAll)

		// Version-advance push for other devices of the same account
		api.GET("/desktop/ws", ws.DesktopHandler(hub))

		// Admin-only
		admin := api.Group("/admin", middleware.RequireRoles("admin"))
		{
			admin.GET("/users", adminCtrl.ListUsers)
			admin.GET("/users/:user_id", adminCtrl.GetUser)
			admin.DELETE("/users/:user_id", adminCtrl.DeleteUser)
		}
	}
}
