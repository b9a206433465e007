package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen       string        `yaml:"listen"`
	DatabasePath string        `yaml:"database_path"`
	APIKey       string        `yaml:"api_key"`      // shared secret for log ingestion; empty disables the gate
	WebPassword  string        `yaml:"web_password"` // bcrypt hash for basic-auth page listing; empty disables the gate
	AESSecret    string        `yaml:"aes_secret"`
	Session      SessionConfig `yaml:"session"`
	Logs         LogsConfig    `yaml:"logs"`
}

type SessionConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Secret  string        `yaml:"secret"`
}

type LogsConfig struct {
	Retention       time.Duration `yaml:"retention"`         // how long server-emitted logs are kept
	IngestRateLimit int           `yaml:"ingest_rate_limit"` // POST /logs requests per minute per IP
}

var C Config

func Load() error {
	// Defaults
	C = Config{
		Listen:       ":8080",
		DatabasePath: "app.db",
		// Known-insecure default so encryption still round-trips out of the box.
		AESSecret: "insecure-default-secret",
		Session: SessionConfig{
			Timeout: 24 * time.Hour,
		},
		Logs: LogsConfig{
			Retention:       48 * time.Hour,
			IngestRateLimit: 60,
		},
	}

	// Load from YAML if exists
	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &C); err != nil {
			return err
		}
	}

	// Environment overrides
	if v := os.Getenv("LISTEN"); v != "" {
		C.Listen = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		C.DatabasePath = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		C.APIKey = v
	}
	if v := os.Getenv("WEB_PASSWORD"); v != "" {
		C.WebPassword = v
	}
	if v := os.Getenv("AES_SECRET"); v != "" {
		C.AESSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		C.Session.Secret = v
	}
	if v := os.Getenv("SESSION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			C.Session.Timeout = d
		}
	}
	if v := os.Getenv("LOG_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			C.Logs.Retention = d
		}
	}
	if v := os.Getenv("INGEST_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			C.Logs.IngestRateLimit = n
		}
	}

	// WEB_PASSWORD is documented as a bcrypt hash. A plain value is hashed
	// once here so a dev setup with a bare password still works.
	if C.WebPassword != "" && !strings.HasPrefix(C.WebPassword, "$2") {
		hash, err := bcrypt.GenerateFromPassword([]byte(C.WebPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		C.WebPassword = string(hash)
	}

	return nil
}
