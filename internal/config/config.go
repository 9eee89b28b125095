package config

import (
	"os"
)

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	RedisHost      string
	RedisPort      string
	SessionSecret  string
	GinMode        string
	SiteURL        string
	ResendAPIKey   string
	MailFrom       string
	OutboxInterval string
}

func Load() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "zadaci"),
		DBPassword:     getEnv("DB_PASSWORD", "zadaci"),
		DBName:         getEnv("DB_NAME", "zadaci"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		SessionSecret:  getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		SiteURL:        getEnv("SITE_URL", "http://localhost:3000"),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		MailFrom:       getEnv("MAIL_FROM", "Team Zadaci <noreply@thecodingmontana.com>"),
		OutboxInterval: getEnv("OUTBOX_INTERVAL", "15s"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
