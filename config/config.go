package config

import (
	"os"
)

// DatabaseConfig is what a connector needs to reach its database.
type DatabaseConfig interface {
	GetConnectionString() string
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
