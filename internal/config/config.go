// Package config loads folio's settings from defaults, an optional YAML
// file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// SendMode selects how contact messages leave the server.
type SendMode string

const (
	SendSimulated SendMode = "simulated"
	SendSMTP      SendMode = "smtp"
)

const envPrefix = "FOLIO_"

// Config is the top-level folio configuration.
type Config struct {
	Port    string `yaml:"port" koanf:"port"`
	GinMode string `yaml:"gin_mode" koanf:"gin_mode"`

	SendMode    SendMode      `yaml:"send_mode" koanf:"send_mode"`
	SendDelay   time.Duration `yaml:"send_delay" koanf:"send_delay"`
	ResetAfter  time.Duration `yaml:"reset_after" koanf:"reset_after"`
	SendTimeout time.Duration `yaml:"send_timeout" koanf:"send_timeout"`

	SMTPHost string `yaml:"smtp_host" koanf:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" koanf:"smtp_port"`
	SMTPUser string `yaml:"smtp_user" koanf:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass,omitempty" koanf:"smtp_pass"`
	ToEmail  string `yaml:"to_email" koanf:"to_email"`

	InboxPath      string        `yaml:"inbox_path" koanf:"inbox_path"`
	InboxRetention time.Duration `yaml:"inbox_retention" koanf:"inbox_retention"`
	HashSalt       string        `yaml:"hash_salt,omitempty" koanf:"hash_salt"`

	ImageTimeout time.Duration `yaml:"image_timeout" koanf:"image_timeout"`
	ImageHosts   []string      `yaml:"image_hosts" koanf:"image_hosts"`

	SessionTTL      time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
	MaxSessions     int           `yaml:"max_sessions" koanf:"max_sessions"`
	JanitorInterval time.Duration `yaml:"janitor_interval" koanf:"janitor_interval"`

	// ContentFile replaces the embedded site copy when set.
	ContentFile string `yaml:"content_file" koanf:"content_file"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		Port:            "8080",
		GinMode:         "release",
		SendMode:        SendSimulated,
		SendDelay:       1500 * time.Millisecond,
		ResetAfter:      5 * time.Second,
		SendTimeout:     30 * time.Second,
		SMTPPort:        "587",
		InboxPath:       "data/inbox.db",
		ImageTimeout:    5 * time.Second,
		ImageHosts:      []string{"source.unsplash.com", "images.unsplash.com"},
		SessionTTL:      30 * time.Minute,
		MaxSessions:     10000,
		JanitorInterval: time.Minute,
	}
}

// legacyEnv maps the bare variable names the site has always read.
var legacyEnv = map[string]string{
	"PORT":      "port",
	"SMTP_HOST": "smtp_host",
	"SMTP_PORT": "smtp_port",
	"SMTP_USER": "smtp_user",
	"SMTP_PASS": "smtp_pass",
	"TO_EMAIL":  "to_email",
}

// LoadDotenv exports the variables in the given files (".env" when none are
// given). Missing files are ignored and existing variables win.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays the
// legacy variables and finally FOLIO_* overrides. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// FOLIO_SMTP_HOST -> smtp_host
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// decoding into a populated slice keeps its tail
	hosts := cfg.ImageHosts
	cfg.ImageHosts = nil
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if !k.Exists("image_hosts") {
		cfg.ImageHosts = hosts
	}

	// a configured relay implies smtp unless the mode was pinned
	if !k.Exists("send_mode") && cfg.SMTPHost != "" {
		cfg.SendMode = SendSMTP
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validGinModes = map[string]bool{"debug": true, "release": true, "test": true}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("invalid gin_mode %q: must be one of debug, release, test", c.GinMode)
	}

	switch c.SendMode {
	case SendSimulated:
	case SendSMTP:
		if c.SMTPHost == "" || c.SMTPPort == "" {
			return fmt.Errorf("smtp send_mode requires smtp_host and smtp_port")
		}
		if c.ToEmail == "" {
			return fmt.Errorf("smtp send_mode requires to_email")
		}
	default:
		return fmt.Errorf("invalid send_mode %q: must be simulated or smtp", c.SendMode)
	}

	if c.SendDelay < 0 {
		return fmt.Errorf("send_delay must be non-negative")
	}
	if c.ResetAfter <= 0 {
		return fmt.Errorf("reset_after must be positive")
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("send_timeout must be positive")
	}
	if c.InboxRetention < 0 {
		return fmt.Errorf("inbox_retention must be non-negative")
	}
	if c.ImageTimeout <= 0 {
		return fmt.Errorf("image_timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("max_sessions must be non-negative")
	}
	if c.JanitorInterval <= 0 {
		return fmt.Errorf("janitor_interval must be positive")
	}
	return nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
