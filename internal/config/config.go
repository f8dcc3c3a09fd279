package config

import (
	"os"
)

type Config struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// Token settings
	JWTSecret             string
	AccessTokenTTLMinutes string // minutes
	RefreshTokenTTLDays   string // days
	RefreshJWTSecret      string
	// Seed admin
	AdminEmail    string
	AdminPassword string
	AdminFullName string
}

func Load() *Config {
	return &Config{
		Port:       getenv("PORT", "8080"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "browseros_db"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		JWTSecret:             getenv("JWT_SECRET", "supersecret_change_me"),
		AccessTokenTTLMinutes: getenv("ACCESS_TOKEN_TTL_MINUTES", "15"),
		RefreshTokenTTLDays:   getenv("REFRESH_TOKEN_TTL_DAYS", "30"),
		RefreshJWTSecret:      getenv("REFRESH_JWT_SECRET", getenv("JWT_SECRET", "supersecret_change_me")),

		AdminEmail:    getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
		AdminFullName: getenv("ADMIN_FULL_NAME", "Administrator"),
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
