package config

import (
	"fmt"
)

// PostgresConfig represents the configuration needed to connect to a
// PostgreSQL database. YAML values are overridden by POSTGRES_* env vars.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

func (pc *PostgresConfig) GetConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

// applyEnv fills each field from the environment, falling back to the
// current (YAML-provided) value.
func (pc *PostgresConfig) applyEnv() {
	pc.Host = getEnv("POSTGRES_HOST", defaultString(pc.Host, "localhost"))
	pc.Port = getEnv("POSTGRES_PORT", defaultString(pc.Port, "5432"))
	pc.User = getEnv("POSTGRES_USER", defaultString(pc.User, "postgres"))
	pc.Password = getEnv("POSTGRES_PASSWORD", defaultString(pc.Password, "postgres"))
	pc.DBName = getEnv("POSTGRES_NAME", defaultString(pc.DBName, "bevtrend"))
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
