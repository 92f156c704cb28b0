package courier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("CONTACT_SMTP_USER", "owner@gmail.com")
	t.Setenv("CONTACT_SMTP_PASS", "app-password")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, 64, cfg.MaxBodyKB)
	assert.True(t, cfg.AllowJSON)
	assert.False(t, cfg.AllowForm)
	assert.Empty(t, cfg.AllowedOrigins)

	assert.Equal(t, "smtp.gmail.com", cfg.Mail.SMTP.Host)
	assert.Equal(t, 587, cfg.Mail.SMTP.Port)
	assert.Equal(t, 10*time.Second, cfg.Mail.SMTP.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.Mail.SMTP.GreetingTimeout)
	assert.Equal(t, 10*time.Second, cfg.Mail.SMTP.SocketTimeout)
	assert.Equal(t, 15*time.Second, cfg.Mail.SendTimeout)
	assert.Equal(t, "Omid Portfolio", cfg.Mail.FromName)
	assert.Equal(t, "owner@gmail.com", cfg.Mail.Recipient())

	assert.Equal(t, 5, cfg.Rate.Max)
	assert.Equal(t, 10*time.Minute, cfg.Rate.Window)
	assert.Empty(t, cfg.Rate.RedisURL)
	assert.Equal(t, "rl:contact:", cfg.Rate.KeyPrefix)

	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("ALLOWED_ORIGINS", "https://a.com, https://b.com,")
	t.Setenv("CONTACT_TO", "inbox@example.com")
	t.Setenv("CONTACT_SEND_TIMEOUT", "5s")
	t.Setenv("CONTACT_CALENDAR", "gregorian")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("RATE_LIMIT_REDIS_URL", "rediss://default:x@example.upstash.io:6379")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "inbox@example.com", cfg.Mail.Recipient())
	assert.Equal(t, 5*time.Second, cfg.Mail.SendTimeout)
	assert.Equal(t, CalendarGregorian, cfg.Mail.Calendar)
	assert.Equal(t, 3, cfg.Rate.Max)
	assert.Equal(t, time.Minute, cfg.Rate.Window)
	assert.Equal(t, "rediss://default:x@example.upstash.io:6379", cfg.Rate.RedisURL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigMissingCredentialsIsNotFatal(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("CONTACT_SMTP_USER", "")
	t.Setenv("CONTACT_SMTP_PASS", "")

	_, err := LoadConfig()
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no encodings", func(c *Config) { c.AllowJSON, c.AllowForm = false, false }},
		{"zero max", func(c *Config) { c.Rate.Max = 0 }},
		{"zero window", func(c *Config) { c.Rate.Window = 0 }},
		{"zero body", func(c *Config) { c.MaxBodyKB = 0 }},
		{"bad calendar", func(c *Config) { c.Mail.Calendar = "lunar" }},
		{"bad timezone", func(c *Config) { c.Mail.TimeZone = "Nowhere/Land" }},
		{"zero send timeout", func(c *Config) { c.Mail.SendTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
