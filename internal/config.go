package internal

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const defaultSender = "no-reply@example.com"

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Site   SiteConfig        `yaml:"site"`
	Store  StoreConfig       `yaml:"store"`
	SMTP   SMTPConfig        `yaml:"smtp"`
	Notify NotifyConfig      `yaml:"notify"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	return c.Store.Validate()
}

// ValidateNotify checks the SMTP and notification settings. Notification is
// optional, so a failure here disables it instead of failing startup.
func (c *Config) ValidateNotify() error {
	if err := c.SMTP.Validate(); err != nil {
		return err
	}
	return c.Notify.Validate(c.Sender(), c.Recipient())
}

// ApplyEnv overlays environment variables on the configuration. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	if err := num("PORT", &c.App.HTTP.Port); err != nil {
		return err
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		if err := c.App.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("env LOG_LEVEL: %w", err)
		}
	}
	str("SITE_ROOT", &c.Site.Root)
	str("SMTP_HOST", &c.SMTP.Host)
	// A malformed SMTP_PORT only disables notification.
	if err := num("SMTP_PORT", &c.SMTP.Port); err != nil {
		c.SMTP.Port = 0
		c.SMTP.portErr = err
	}
	str("SMTP_USER", &c.SMTP.User)
	str("SMTP_PASS", &c.SMTP.Password)
	str("EMAIL_FROM", &c.Notify.From)
	str("NOTIFY_TO", &c.Notify.To)
	return nil
}

// Sender returns the notification From address.
func (c *Config) Sender() string {
	switch {
	case c.Notify.From != "":
		return c.Notify.From
	case c.SMTP.User != "":
		return c.SMTP.User
	default:
		return defaultSender
	}
}

// Recipient returns the notification To address.
func (c *Config) Recipient() string {
	if c.Notify.To != "" {
		return c.Notify.To
	}
	return c.SMTP.User
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig locates the static site.
type SiteConfig struct {
	Root            string `yaml:"root"`
	DefaultDocument string `yaml:"default_document"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.DefaultDocument, validation.Required),
	)
}

// StoreConfig holds contact store configuration. File is relative to the
// site root.
type StoreConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.File, validation.Required),
	)
}

// SMTPConfig holds mail relay configuration. Notification is enabled only
// when host, port, user and password are all set.
type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`

	portErr error
}

// Enabled reports whether enough is configured to attempt sending mail. A
// port that was set but could not be parsed counts as configured, so that
// Validate can report it.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != "" && (c.Port != 0 || c.portErr != nil) && c.User != "" && c.Password != ""
}

// Validate validates the SMTP configuration.
func (c *SMTPConfig) Validate() error {
	if c.portErr != nil {
		return c.portErr
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// NotifyConfig holds notification addressing and queueing.
type NotifyConfig struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	QueueSize int    `yaml:"queue_size"`
}

// Validate validates the notification configuration against the effective
// sender and recipient.
func (c *NotifyConfig) Validate(sender, recipient string) error {
	if err := validation.Validate(c.QueueSize, validation.Min(1)); err != nil {
		return fmt.Errorf("notify: queue_size: %w", err)
	}
	if err := validation.Validate(sender, validation.Required, is.EmailFormat); err != nil {
		return fmt.Errorf("notify: sender %q: %w", sender, err)
	}
	if err := validation.Validate(recipient, validation.Required, is.EmailFormat); err != nil {
		return fmt.Errorf("notify: recipient %q: %w", recipient, err)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3000,
			},
		},
		Site: SiteConfig{
			Root:            "./web/site",
			DefaultDocument: "home.html",
		},
		Store: StoreConfig{
			File:  "contacts.json",
			Watch: true,
		},
		SMTP: SMTPConfig{
			Timeout: 15 * time.Second,
		},
		Notify: NotifyConfig{
			QueueSize: 64,
		},
	}
}
