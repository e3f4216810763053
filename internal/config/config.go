// Package config builds the explicit runtime configuration once at
// process start; nothing else reads the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// 10 lookups/minute would allow 6s; the extra margin keeps the
	// source from ever answering 429.
	defaultPaceInterval = 8 * time.Second

	defaultHTTPTimeout   = 10 * time.Second
	defaultUserAgent     = "EmailSecurityCheck"
	defaultEmailsPath    = "emails.txt"
	defaultDedupPath     = "breached_emails.txt"
	defaultWatermarkPath = "last_known_breach.json"
	defaultSMTPHost      = "127.0.0.1"
	defaultSMTPPort      = 1025
)

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

type Config struct {
	APIKey    string
	UserAgent string
	BaseURL   string // empty means the production API

	EmailsPath    string
	DedupPath     string
	WatermarkPath string

	PaceInterval time.Duration
	HTTPTimeout  time.Duration

	SMTP   SMTP
	DryRun bool
}

// Load reads config from environment variables, applying defaults.
// Flag overrides are applied by main on top of this.
func Load() *Config {
	sender := readEnv("HIBP_EMAIL_SENDER", "")
	recipient := readEnv("HIBP_EMAIL_RECIPIENT", sender)

	return &Config{
		APIKey:        readEnv("HIBP_API_KEY", ""),
		UserAgent:     readEnv("BREACHWATCH_USER_AGENT", defaultUserAgent),
		BaseURL:       readEnv("BREACHWATCH_BASE_URL", ""),
		EmailsPath:    readEnv("BREACHWATCH_EMAILS_PATH", defaultEmailsPath),
		DedupPath:     readEnv("BREACHWATCH_DEDUP_PATH", defaultDedupPath),
		WatermarkPath: readEnv("BREACHWATCH_WATERMARK_PATH", defaultWatermarkPath),
		PaceInterval:  readEnvDuration("BREACHWATCH_PACE_INTERVAL", defaultPaceInterval),
		HTTPTimeout:   readEnvDuration("BREACHWATCH_HTTP_TIMEOUT", defaultHTTPTimeout),
		SMTP: SMTP{
			Host:     readEnv("BREACHWATCH_SMTP_HOST", defaultSMTPHost),
			Port:     readEnvInt("BREACHWATCH_SMTP_PORT", defaultSMTPPort),
			Username: sender,
			Password: readEnv("HIBP_EMAIL_PASSWORD", ""),
			From:     sender,
			To:       recipient,
		},
	}
}

// Validate returns a field->problem map, empty when the config is
// usable.
func (c *Config) Validate() map[string]string {
	details := map[string]string{}

	if strings.TrimSpace(c.APIKey) == "" {
		details["apiKey"] = "required (HIBP_API_KEY)"
	}
	if strings.TrimSpace(c.EmailsPath) == "" {
		details["emailsPath"] = "required"
	}
	if strings.TrimSpace(c.DedupPath) == "" {
		details["dedupPath"] = "required"
	}
	if strings.TrimSpace(c.WatermarkPath) == "" {
		details["watermarkPath"] = "required"
	}
	if c.PaceInterval <= 0 {
		details["paceInterval"] = "must be > 0"
	}
	if c.HTTPTimeout <= 0 {
		details["httpTimeout"] = "must be > 0"
	}

	if !c.DryRun {
		if strings.TrimSpace(c.SMTP.From) == "" {
			details["smtp.from"] = "required (HIBP_EMAIL_SENDER)"
		}
		if strings.TrimSpace(c.SMTP.To) == "" {
			details["smtp.to"] = "required (HIBP_EMAIL_RECIPIENT)"
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			details["smtp.port"] = "must be a valid port"
		}
	}

	return details
}

func readEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func readEnvInt(key string, fallback int) int {
	if val := readEnv(key, ""); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func readEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := readEnv(key, ""); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
