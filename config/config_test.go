package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.Driver != "file" {
		t.Fatalf("expected file store by default, got %q", cfg.Store.Driver)
	}
	if cfg.Mail.Mode != "async" {
		t.Fatalf("expected async email mode by default, got %q", cfg.Mail.Mode)
	}
	if cfg.Mail.Workers != 2 {
		t.Fatalf("expected 2 email workers, got %d", cfg.Mail.Workers)
	}
	if cfg.Mail.Timeout() != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.Mail.Timeout())
	}
	if cfg.Mail.Port != 587 || cfg.Mail.SSL {
		t.Fatalf("unexpected SMTP defaults: %+v", cfg.Mail)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BASE_URL", "https://proofs.example.org/")
	t.Setenv("SMTP_SSL", "true")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_TIMEOUT", "3")
	t.Setenv("EMAIL_MODE", " SYNC ")
	t.Setenv("TO_EMAIL", "a@example.org, b@example.org,")
	t.Setenv("STORE_DRIVER", "SQLite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "https://proofs.example.org" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if !cfg.Mail.SSL || cfg.Mail.Port != 465 {
		t.Fatalf("expected implicit TLS on 465, got %+v", cfg.Mail)
	}
	if cfg.Mail.Timeout() != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.Mail.Timeout())
	}
	if cfg.Mail.Mode != "sync" {
		t.Fatalf("expected normalized mode sync, got %q", cfg.Mail.Mode)
	}
	if got := cfg.Mail.Recipients(); len(got) != 2 || got[1] != "b@example.org" {
		t.Fatalf("unexpected recipients: %v", got)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.Store.Driver)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("EMAIL_WORKERS", "0")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "STORE_DRIVER") || !strings.Contains(msg, "EMAIL_WORKERS") {
		t.Fatalf("expected both problems reported, got %q", msg)
	}
}

func TestLoadRequiresDatabaseForMySQL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("DB_DATABASE", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DB_DATABASE") {
		t.Fatalf("expected DB_DATABASE error, got %v", err)
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(StoreConfig{Host: "db", Port: "3306", Database: "proofs", Username: "u", Password: "p"})
	if dsn != "u:p@tcp(db:3306)/proofs?charset=utf8mb4&parseTime=True&loc=UTC" {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
}

func TestLoadValidatesMailAddresses(t *testing.T) {
	t.Setenv("FROM_EMAIL", "not-an-address")
	t.Setenv("TO_EMAIL", "orders@example.org,bad@")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "FROM_EMAIL") || !strings.Contains(err.Error(), `"bad@"`) {
		t.Fatalf("expected both addresses reported, got %q", err.Error())
	}

	t.Setenv("EMAIL_MODE", "off")
	if _, err := Load(); err != nil {
		t.Fatalf("expected addresses to be ignored when email is off, got %v", err)
	}
}
