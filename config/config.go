package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Scrape target
	BaseURL string

	// Politeness
	Delay          time.Duration
	RequestTimeout time.Duration
	RetryWait      time.Duration
	BlockTime      time.Duration

	// Memcache configuration (empty disables the origin block guard)
	MemcacheAddr string

	// Redis configuration (empty disables record publishing)
	RedisAddr   string
	RedisDB     int
	RedisStream string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	delayMs, _ := strconv.Atoi(getEnv("SVE_DELAY_MS", "600"))
	timeoutSec, _ := strconv.Atoi(getEnv("SVE_REQUEST_TIMEOUT_SECONDS", "15"))
	retryWaitMs, _ := strconv.Atoi(getEnv("SVE_RETRY_WAIT_MS", "500"))
	blockSec, _ := strconv.Atoi(getEnv("SVE_BLOCK_SECONDS", "300"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		BaseURL:        getEnv("SVE_BASE_URL", "https://shadowverse-evolve.com"),
		Delay:          time.Duration(delayMs) * time.Millisecond,
		RequestTimeout: time.Duration(timeoutSec) * time.Second,
		RetryWait:      time.Duration(retryWaitMs) * time.Millisecond,
		BlockTime:      time.Duration(blockSec) * time.Second,
		MemcacheAddr:   getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisDB:        redisDB,
		RedisStream:    getEnv("REDIS_STREAM", "svecards"),
		Environment:    getEnv("SVE_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
