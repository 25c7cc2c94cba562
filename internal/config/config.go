// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable process configuration, loaded once at startup
// and shared read-only.
type Config struct {
	Server    ServerConfig
	Solana    SolanaConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SolanaConfig holds ledger RPC settings.
type SolanaConfig struct {
	RPCURL     string
	ProgramID  string
	Commitment string
	Timeout    time.Duration
}

// JWTConfig holds the credential signing secret and lifetime.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// RateLimitConfig holds the global quota shared across protected routes.
type RateLimitConfig struct {
	Requests int
	Duration time.Duration
}

// Load reads configuration from the environment. A .env file is applied
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	programID := os.Getenv("SOLANA_PROGRAM_ID")
	if programID == "" {
		return nil, fmt.Errorf("SOLANA_PROGRAM_ID must be set")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Solana: SolanaConfig{
			RPCURL:     getEnv("SOLANA_RPC_URL", "http://localhost:8899"),
			ProgramID:  programID,
			Commitment: getEnv("SOLANA_COMMITMENT", "confirmed"),
			Timeout:    time.Duration(getEnvInt("SOLANA_RPC_TIMEOUT", 30)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:     secret,
			Expiration: time.Duration(getEnvInt("JWT_EXPIRATION", 86400)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
			Duration: time.Duration(getEnvInt("RATE_LIMIT_DURATION", 60)) * time.Second,
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
