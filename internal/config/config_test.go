package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HIBP_API_KEY", "k")
	t.Setenv("HIBP_EMAIL_SENDER", "me@proton.me")
	t.Setenv("HIBP_EMAIL_RECIPIENT", "")
	t.Setenv("HIBP_EMAIL_PASSWORD", "pw")

	cfg := Load()

	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "emails.txt", cfg.EmailsPath)
	assert.Equal(t, "breached_emails.txt", cfg.DedupPath)
	assert.Equal(t, "last_known_breach.json", cfg.WatermarkPath)
	assert.Equal(t, 8*time.Second, cfg.PaceInterval)
	assert.Equal(t, "127.0.0.1", cfg.SMTP.Host)
	assert.Equal(t, 1025, cfg.SMTP.Port)
	// Recipient falls back to the sender.
	assert.Equal(t, "me@proton.me", cfg.SMTP.To)

	assert.Empty(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BREACHWATCH_PACE_INTERVAL", "6s")
	t.Setenv("BREACHWATCH_SMTP_PORT", "2525")
	t.Setenv("BREACHWATCH_EMAILS_PATH", "/etc/breachwatch/emails.txt")

	cfg := Load()

	assert.Equal(t, 6*time.Second, cfg.PaceInterval)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "/etc/breachwatch/emails.txt", cfg.EmailsPath)
}

func TestValidateMissingFields(t *testing.T) {
	cfg := &Config{}

	details := cfg.Validate()
	require.NotEmpty(t, details)
	assert.Contains(t, details, "apiKey")
	assert.Contains(t, details, "smtp.from")
	assert.Contains(t, details, "paceInterval")
}

func TestValidateDryRunSkipsSMTP(t *testing.T) {
	cfg := &Config{
		APIKey:        "k",
		EmailsPath:    "emails.txt",
		DedupPath:     "d.txt",
		WatermarkPath: "w.json",
		PaceInterval:  time.Second,
		HTTPTimeout:   time.Second,
		DryRun:        true,
	}
	assert.Empty(t, cfg.Validate())
}
