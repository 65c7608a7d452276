package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the runtime configuration loaded from the environment.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	StoreTable  string
	JWTSecret   string
	TokenExpiry time.Duration
	// ArchiveSweep enables the periodic expired-activity sweeper when > 0.
	ArchiveSweep time.Duration
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "world_chronicle"),
		StoreTable:   getEnv("STORE_TABLE", "records"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenExpiry:  time.Duration(getEnvInt("TOKEN_EXPIRY_HOURS", 72)) * time.Hour,
		ArchiveSweep: time.Duration(getEnvInt("ARCHIVE_SWEEP_MINUTES", 0)) * time.Minute,
	}

	if cfg.JWTSecret == "" {
		logrus.Warn("JWT_SECRET is not set; tokens will not be secure")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		logrus.WithField("key", key).Warn("Invalid integer in environment, using fallback")
	}
	return fallback
}
