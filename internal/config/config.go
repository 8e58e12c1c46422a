package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port   string
	AppEnv string
	// Store / policy
	StoreBackend string // memory | postgres | redis
	EndPolicy    string // guarded | permissive
	// Postgres
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// Redis
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	// Caller identity
	JWTSecret string
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		AppEnv:         getenv("APP_ENV", "development"),
		StoreBackend:   getenv("STORE_BACKEND", "memory"),
		EndPolicy:      getenv("END_POLICY", "guarded"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBPort:         getenv("DB_PORT", "5432"),
		DBUser:         getenv("DB_USER", "postgres"),
		DBPassword:     getenv("DB_PASSWORD", "postgres"),
		DBName:         getenv("DB_NAME", "seb_proctor"),
		DBSSLMode:      getenv("DB_SSLMODE", "disable"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		RedisDB:        getenvInt("REDIS_DB", 0),
		RedisKeyPrefix: getenv("REDIS_KEY_PREFIX", "proctor:"),
		JWTSecret:      getenv("JWT_SECRET", "supersecret_change_me"),
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.EndPolicy {
	case "guarded", "permissive":
	default:
		return fmt.Errorf("unknown END_POLICY %q", c.EndPolicy)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) int {
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
