package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the server configuration, read from the environment with
// an optional .env file.
type Config struct {
	Addr         string
	DatabaseURL  string
	PickClockSec int
	LogLevel     string
}

func Load() Config {
	_ = godotenv.Load() // missing .env is fine

	return Config{
		Addr:         getenv("ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		PickClockSec: getenvInt("PICK_CLOCK_SEC", 90),
		LogLevel:     getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
