package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Port            string
	ConfigPath      string // analysis config file, see Load
	RatePerSecond   float64
	RateBurst       int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

func LoadServerConfig() (*ServerConfig, error) {
	rate, err := strconv.ParseFloat(getEnvOrDefault("RATE_PER_SECOND", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_PER_SECOND: %w", err)
	}

	// burst defaults to twice the rate
	defaultBurst := int(rate * 2)
	if defaultBurst < 1 {
		defaultBurst = 1
	}
	burst, err := strconv.Atoi(getEnvOrDefault("RATE_BURST", strconv.Itoa(defaultBurst)))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_BURST: %w", err)
	}

	maxBody, err := strconv.ParseInt(getEnvOrDefault("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_BODY_BYTES: %w", err)
	}

	shutdown, err := time.ParseDuration(getEnvOrDefault("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		shutdown = 30 * time.Second
	}

	cfg := &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		ConfigPath:      getEnvOrDefault(EnvPrefix+"_CONFIG", ""),
		RatePerSecond:   rate,
		RateBurst:       burst,
		MaxBodyBytes:    maxBody,
		ShutdownTimeout: shutdown,
		CORSOrigins:     splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
	}

	if cfg.RatePerSecond < 0 {
		return nil, fmt.Errorf("invalid RATE_PER_SECOND: %v (must be >= 0, 0 disables limiting)", cfg.RatePerSecond)
	}
	if cfg.RateBurst < 1 {
		return nil, fmt.Errorf("invalid RATE_BURST: %d (must be >= 1)", cfg.RateBurst)
	}
	if cfg.MaxBodyBytes < 1 {
		return nil, fmt.Errorf("invalid MAX_BODY_BYTES: %d (must be >= 1)", cfg.MaxBodyBytes)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
