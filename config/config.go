package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"proofok-api/utils"
)

// Config is the full runtime configuration, sourced from the environment.
type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"5000"`
	GinMode     string `env:"GIN_MODE"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// BaseURL overrides the scheme/host used for share links; empty means
	// "use the inbound request's host".
	BaseURL     string `env:"BASE_URL"`
	DataDir     string `env:"DATA_DIR" envDefault:"./data"`
	UploadDir   string `env:"UPLOAD_PATH" envDefault:"./uploads"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"25"`
	LogDir      string `env:"LOG_DIR" envDefault:"./logs"`

	MonitorTokenHash   string   `env:"MONITOR_TOKEN_HASH"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	Store StoreConfig
	Mail  MailConfig
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER" envDefault:"file"`
	Host       string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port       string `env:"DB_PORT" envDefault:"3306"`
	Database   string `env:"DB_DATABASE"`
	Username   string `env:"DB_USERNAME"`
	Password   string `env:"DB_PASSWORD"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/proofok.db"`
	DebugSQL   bool   `env:"DEBUG_SQL"`
}

// MailConfig configures the outbound SMTP channel and the delivery mode.
type MailConfig struct {
	Host           string   `env:"SMTP_HOST" envDefault:"smtp.example.com"`
	Port           int      `env:"SMTP_PORT" envDefault:"587"`
	Username       string   `env:"SMTP_USER"`
	Password       string   `env:"SMTP_PASS"`
	From           string   `env:"FROM_EMAIL" envDefault:"no-reply@example.com"`
	To             []string `env:"TO_EMAIL" envDefault:"orders@example.com" envSeparator:","`
	SSL            bool     `env:"SMTP_SSL" envDefault:"false"`
	SkipTLSVerify  bool     `env:"SMTP_SKIP_TLS_VERIFY"`
	TimeoutSeconds int      `env:"SMTP_TIMEOUT" envDefault:"10"`
	Mode           string   `env:"EMAIL_MODE" envDefault:"async"`
	Workers        int      `env:"EMAIL_WORKERS" envDefault:"2"`
	QueueSize      int      `env:"EMAIL_QUEUE_SIZE" envDefault:"64"`
}

// Timeout is the SMTP dial/IO timeout, also used as the bounded-async wait.
func (m MailConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Endpoint renders host:port for log lines and warnings.
func (m MailConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Recipients returns the trimmed, non-empty TO_EMAIL entries.
func (m MailConfig) Recipients() []string {
	out := make([]string, 0, len(m.To))
	for _, addr := range m.To {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the process configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Mail.Mode = strings.ToLower(strings.TrimSpace(cfg.Mail.Mode))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ServerPort) == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be greater than 0"))
	}
	switch c.Store.Driver {
	case "file", "sqlite":
	case "mysql":
		if c.Store.Database == "" {
			errs = append(errs, errors.New("DB_DATABASE is required when STORE_DRIVER=mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver))
	}
	if c.Mail.Port <= 0 {
		errs = append(errs, errors.New("SMTP_PORT must be greater than 0"))
	}
	if c.Mail.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SMTP_TIMEOUT must be greater than 0"))
	}
	if c.Mail.Workers <= 0 {
		errs = append(errs, errors.New("EMAIL_WORKERS must be greater than 0"))
	}
	if c.Mail.QueueSize < 0 {
		errs = append(errs, errors.New("EMAIL_QUEUE_SIZE must not be negative"))
	}
	if c.Mail.Mode != "off" && c.Mail.Mode != "disabled" {
		if !utils.ValidateEmail(strings.TrimSpace(c.Mail.From)) {
			errs = append(errs, fmt.Errorf("FROM_EMAIL %q is not a valid address", c.Mail.From))
		}
		recipients := c.Mail.Recipients()
		if len(recipients) == 0 {
			errs = append(errs, errors.New("TO_EMAIL needs at least one address"))
		}
		for _, addr := range recipients {
			if !utils.ValidateEmail(addr) {
				errs = append(errs, fmt.Errorf("TO_EMAIL entry %q is not a valid address", addr))
			}
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// MaxUploadBytes converts MAX_UPLOAD_MB to bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}
