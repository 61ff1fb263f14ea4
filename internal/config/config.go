// Package config reads the service configuration from the environment. A
// .env file in the working directory is loaded first, so that local
// development does not need exported variables.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the service needs to start.
type Config struct {
	Port       string
	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string
	GinLogging string
	LogMode    string
}

// Load builds the configuration from the environment with development
// fallbacks for everything except the database credentials.
func Load() *Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return &Config{
		Port:       getEnv("PORT", "8080"),
		DBUser:     os.Getenv("DBUSER"),
		DBPassword: os.Getenv("DBPWD"),
		DBHost:     getEnv("DBHOST", "localhost:3306"),
		DBName:     getEnv("DBNAME", "rubrica"),
		GinLogging: getEnv("GIN_LOGGING", "on"),
		LogMode:    getEnv("LOG_MODE", "dev"),
	}
}

// DSN returns the MySQL data source name for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
