package courier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omidportfolio/contact-courier/env"
)

/*
ENV-ONLY CONFIG (a .env file is loaded first when present):
  Server:
    LISTEN_ADDR (default ":3000")
    MAX_BODY_KB (default 64)
    ALLOW_JSON (default "true"), ALLOW_FORM (default "false")
    ALLOWED_ORIGINS="https://a.com,https://b.com"

  Mail:
    CONTACT_SMTP_HOST (default smtp.gmail.com), CONTACT_SMTP_PORT (default 587)
    CONTACT_SMTP_USER, CONTACT_SMTP_PASS   // missing -> every send fails with 500
    CONTACT_SMTP_CONNECT_TIMEOUT, CONTACT_SMTP_GREETING_TIMEOUT, CONTACT_SMTP_SOCKET_TIMEOUT (10s)
    CONTACT_SEND_TIMEOUT (15s)
    CONTACT_SEND_PER_MINUTE (30), CONTACT_SEND_BURST (5)
    CONTACT_FROM_NAME (default "Omid Portfolio")
    CONTACT_TO (default CONTACT_SMTP_USER)
    CONTACT_TIMEZONE (default Asia/Tehran), CONTACT_CALENDAR (persian|gregorian)

  Rate limit:
    RATE_LIMIT_MAX (5), RATE_LIMIT_WINDOW (10m)
    RATE_LIMIT_REDIS_URL, RATE_LIMIT_REDIS_TOKEN   // unset -> in-process limiter

  Logging:
    LOG_LEVEL (info), LOG_FORMAT (text|json), LOG_FILE (optional, rotated)
*/

type SMTPCfg struct {
	Host            string        `env:"HOST" envDefault:"smtp.gmail.com"`
	Port            int           `env:"PORT" envDefault:"587"`
	User            string        `env:"USER"`
	Pass            string        `env:"PASS"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	GreetingTimeout time.Duration `env:"GREETING_TIMEOUT" envDefault:"10s"`
	SocketTimeout   time.Duration `env:"SOCKET_TIMEOUT" envDefault:"10s"`
}

type MailCfg struct {
	SMTP          SMTPCfg       `envPrefix:"CONTACT_SMTP_"`
	SendTimeout   time.Duration `env:"CONTACT_SEND_TIMEOUT" envDefault:"15s"`
	SendPerMinute int           `env:"CONTACT_SEND_PER_MINUTE" envDefault:"30"`
	SendBurst     int           `env:"CONTACT_SEND_BURST" envDefault:"5"`
	FromName      string        `env:"CONTACT_FROM_NAME" envDefault:"Omid Portfolio"`
	To            string        `env:"CONTACT_TO"`
	TimeZone      string        `env:"CONTACT_TIMEZONE" envDefault:"Asia/Tehran"`
	Calendar      string        `env:"CONTACT_CALENDAR" envDefault:"persian"`
}

// Recipient is CONTACT_TO, or the SMTP account itself when unset.
func (m MailCfg) Recipient() string {
	if m.To != "" {
		return m.To
	}
	return m.SMTP.User
}

type RateCfg struct {
	Max        int           `env:"MAX" envDefault:"5"`
	Window     time.Duration `env:"WINDOW" envDefault:"10m"`
	RedisURL   string        `env:"REDIS_URL"`
	RedisToken string        `env:"REDIS_TOKEN"`
	KeyPrefix  string        `env:"KEY_PREFIX" envDefault:"rl:contact:"`
}

type LogCfg struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"28"`
}

type Config struct {
	ListenAddr     string   `env:"LISTEN_ADDR" envDefault:":3000"`
	MaxBodyKB      int      `env:"MAX_BODY_KB" envDefault:"64"`
	AllowJSON      bool     `env:"ALLOW_JSON" envDefault:"true"`
	AllowForm      bool     `env:"ALLOW_FORM" envDefault:"false"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	Mail MailCfg
	Rate RateCfg `envPrefix:"RATE_LIMIT_"`
	Log  LogCfg  `envPrefix:"LOG_"`
}

var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfig loads dotenv files, parses the environment and validates the
// result. Missing SMTP credentials are not an error here: the dispatcher
// refuses to send instead, so the endpoint answers 500 rather than the
// process refusing to start.
func LoadConfig() (*Config, error) {
	if _, err := env.Load(); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.AllowedOrigins = splitOrigins(cfg.AllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var problems []string
	if c.MaxBodyKB <= 0 {
		problems = append(problems, "MAX_BODY_KB must be positive")
	}
	if !c.AllowJSON && !c.AllowForm {
		problems = append(problems, "at least one of ALLOW_JSON or ALLOW_FORM must be true")
	}
	if c.Rate.Max <= 0 {
		problems = append(problems, "RATE_LIMIT_MAX must be positive")
	}
	if c.Rate.Window <= 0 {
		problems = append(problems, "RATE_LIMIT_WINDOW must be positive")
	}
	if c.Mail.SendTimeout <= 0 {
		problems = append(problems, "CONTACT_SEND_TIMEOUT must be positive")
	}
	if c.Mail.SendPerMinute <= 0 || c.Mail.SendBurst <= 0 {
		problems = append(problems, "CONTACT_SEND_PER_MINUTE and CONTACT_SEND_BURST must be positive")
	}
	switch strings.ToLower(c.Mail.Calendar) {
	case CalendarPersian, CalendarGregorian:
	default:
		problems = append(problems, fmt.Sprintf("CONTACT_CALENDAR %q is not one of persian, gregorian", c.Mail.Calendar))
	}
	if _, err := time.LoadLocation(c.Mail.TimeZone); err != nil {
		problems = append(problems, fmt.Sprintf("CONTACT_TIMEZONE %q: %v", c.Mail.TimeZone, err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
