package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port                string
	DBConn              string
	RedisAddr           string
	LogLevel            string
	ForecastDays        int
	LowBalanceThreshold float64
}

// NewConfig loads configuration from environment variables. DB_CONN and
// REDIS_ADDR may be empty, in which case in-memory backends are used.
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBConn:    getEnv("DB_CONN", ""),
		RedisAddr: getEnv("REDIS_ADDR", ""),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
	}

	days, err := strconv.Atoi(getEnv("FORECAST_DAYS", "30"))
	if err != nil || days <= 0 {
		return nil, fmt.Errorf("FORECAST_DAYS must be a positive integer")
	}
	cfg.ForecastDays = days

	threshold, err := strconv.ParseFloat(getEnv("LOW_BALANCE_THRESHOLD", "100"), 64)
	if err != nil || threshold < 0 {
		return nil, fmt.Errorf("LOW_BALANCE_THRESHOLD must be a non-negative number")
	}
	cfg.LowBalanceThreshold = threshold

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
