package internal

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.SMTP.Enabled() {
		t.Error("SMTP should be disabled by default")
	}
	if cfg.App.HTTP.Address() != ":3000" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := NewDefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PORT":       "8081",
		"LOG_LEVEL":  "debug",
		"SITE_ROOT":  "/srv/site",
		"SMTP_HOST":  "smtp.example.com",
		"SMTP_PORT":  "465",
		"SMTP_USER":  "me@example.com",
		"SMTP_PASS":  "secret",
		"EMAIL_FROM": "site@example.com",
		"NOTIFY_TO":  "inbox@example.com",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.App.HTTP.Port != 8081 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.Site.Root != "/srv/site" {
		t.Errorf("site root = %q", cfg.Site.Root)
	}
	if !cfg.SMTP.Enabled() {
		t.Error("SMTP should be enabled")
	}
	if cfg.Sender() != "site@example.com" || cfg.Recipient() != "inbox@example.com" {
		t.Errorf("sender/recipient = %q/%q", cfg.Sender(), cfg.Recipient())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if err := cfg.ValidateNotify(); err != nil {
		t.Errorf("ValidateNotify: %v", err)
	}
}

func TestApplyEnvEmptyValuesIgnored(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.ApplyEnv(envMap(map[string]string{"PORT": "", "SMTP_HOST": ""})); err != nil {
		t.Fatal(err)
	}
	if cfg.App.HTTP.Port != 3000 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
}

func TestApplyEnvBadPort(t *testing.T) {
	cfg := NewDefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{"PORT": "abc"}))
	if err == nil || !strings.Contains(err.Error(), "PORT") {
		t.Errorf("err = %v", err)
	}
}

func TestApplyEnvBadSMTPPortOnlyDisablesNotification(t *testing.T) {
	cfg := NewDefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"SMTP_HOST": "smtp.example.com",
		"SMTP_PORT": "abc",
		"SMTP_USER": "me@example.com",
		"SMTP_PASS": "secret",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !cfg.SMTP.Enabled() {
		t.Fatal("SMTP settings were given and should count as configured")
	}
	err = cfg.ValidateNotify()
	if err == nil || !strings.Contains(err.Error(), "SMTP_PORT") {
		t.Errorf("ValidateNotify err = %v", err)
	}
}

func TestSMTPPartialConfigDisables(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.Port = 587
	cfg.SMTP.User = "me@example.com"
	if cfg.SMTP.Enabled() {
		t.Error("missing password should disable SMTP")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("partial SMTP config must not be an error: %v", err)
	}
}

func TestSenderRecipientFallbacks(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Sender() != defaultSender {
		t.Errorf("sender = %q", cfg.Sender())
	}
	cfg.SMTP.User = "me@example.com"
	if cfg.Sender() != "me@example.com" {
		t.Errorf("sender = %q", cfg.Sender())
	}
	if cfg.Recipient() != "me@example.com" {
		t.Errorf("recipient = %q", cfg.Recipient())
	}
}

func TestNonEmailSMTPUserStillLoads(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SMTP = SMTPConfig{Host: "smtp.sendgrid.net", Port: 587, User: "apikey", Password: "x", Timeout: time.Second}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("notification settings must not block startup: %v", err)
	}
	if err := cfg.ValidateNotify(); err == nil {
		t.Fatal("recipient falling back to a non-email SMTP user should be reported")
	}
	cfg.Notify.To = "inbox@example.com"
	cfg.Notify.From = "site@example.com"
	if err := cfg.ValidateNotify(); err != nil {
		t.Fatalf("ValidateNotify: %v", err)
	}
}

func TestInvalidPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("port out of range should fail")
	}
}

func TestEmptySiteRootFails(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Site.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty site root should fail")
	}
}
