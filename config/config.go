package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/k1LoW/expand"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "bubble.yml"

type Config struct {
	// address the HTTP service listens on
	Listen string `yaml:"listen,omitempty" json:"listen,omitempty"`
	// IANA zone the time label is formatted in
	Timezone string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
	// handle printed in the image header
	Handle     string     `yaml:"handle,omitempty" json:"handle,omitempty"`
	RateLimit  RateLimit  `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
	Moderation Moderation `yaml:"moderation,omitempty" json:"moderation,omitempty"`
	Instagram  Instagram  `yaml:"instagram,omitempty" json:"instagram,omitempty"`

	location *time.Location
	window   time.Duration
	cacheTTL time.Duration
}

type RateLimit struct {
	Window string `yaml:"window,omitempty" json:"window,omitempty"`
}

type Moderation struct {
	MinLength         int      `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength         int      `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	BlockedWords      []string `yaml:"blockedWords,omitempty" json:"blockedWords,omitempty"`
	BlockedWordsFile  string   `yaml:"blockedWordsFile,omitempty" json:"blockedWordsFile,omitempty"`
	CacheTTL          string   `yaml:"cacheTTL,omitempty" json:"cacheTTL,omitempty"`
	PerspectiveAPIKey string   `yaml:"perspectiveAPIKey,omitempty" json:"perspectiveAPIKey,omitempty"`
	PerspectiveURL    string   `yaml:"perspectiveURL,omitempty" json:"perspectiveURL,omitempty"`
}

type Instagram struct {
	AccountID   string `yaml:"accountID,omitempty" json:"accountID,omitempty"`
	AccessToken string `yaml:"accessToken,omitempty" json:"accessToken,omitempty"`
	ImgbbAPIKey string `yaml:"imgbbAPIKey,omitempty" json:"imgbbAPIKey,omitempty"`
	GraphURL    string `yaml:"graphURL,omitempty" json:"graphURL,omitempty"`
	ImgbbURL    string `yaml:"imgbbURL,omitempty" json:"imgbbURL,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		Timezone: "America/Vancouver",
		RateLimit: RateLimit{
			Window: "10m",
		},
		Moderation: Moderation{
			MinLength: 10,
			MaxLength: 500,
			CacheTTL:  "5m",
		},
	}
}

// LoadDotenv loads variables from .env files into the environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file at path, expanding ${VAR} references from the
// environment. An empty path means DefaultPath. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(expand.ExpandenvYAMLBytes(b), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve fills zero values with defaults and parses durations and the zone.
func (c *Config) resolve() error {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.RateLimit.Window == "" {
		c.RateLimit.Window = d.RateLimit.Window
	}
	if c.Moderation.MinLength <= 0 {
		c.Moderation.MinLength = d.Moderation.MinLength
	}
	if c.Moderation.MaxLength <= 0 {
		c.Moderation.MaxLength = d.Moderation.MaxLength
	}
	if c.Moderation.CacheTTL == "" {
		c.Moderation.CacheTTL = d.Moderation.CacheTTL
	}
	if c.Moderation.MinLength > c.Moderation.MaxLength {
		return fmt.Errorf("moderation.minLength %d exceeds maxLength %d", c.Moderation.MinLength, c.Moderation.MaxLength)
	}

	var err error
	if c.location, err = time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.window, err = time.ParseDuration(c.RateLimit.Window); err != nil {
		return fmt.Errorf("invalid rateLimit.window: %w", err)
	}
	if c.cacheTTL, err = time.ParseDuration(c.Moderation.CacheTTL); err != nil {
		return fmt.Errorf("invalid moderation.cacheTTL: %w", err)
	}
	return nil
}

// Location returns the parsed Timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Window returns the parsed rate limit window.
func (c *Config) Window() time.Duration {
	return c.window
}

// CacheTTL returns the parsed blocked word cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

// InstagramEnabled reports whether every credential publishing needs is set.
// The image is hosted on imgbb before the Graph API can fetch it, so the
// imgbb key counts as much as the Graph credentials.
func (c *Config) InstagramEnabled() bool {
	return len(c.MissingInstagram()) == 0
}

// MissingInstagram returns the config keys of the unset publishing
// credentials, in file order.
func (c *Config) MissingInstagram() []string {
	var missing []string
	if c.Instagram.AccountID == "" {
		missing = append(missing, "accountID")
	}
	if c.Instagram.AccessToken == "" {
		missing = append(missing, "accessToken")
	}
	if c.Instagram.ImgbbAPIKey == "" {
		missing = append(missing, "imgbbAPIKey")
	}
	return missing
}
