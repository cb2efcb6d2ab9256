package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// Config holds all configuration for the application
type Config struct {
	ManifestURL string
	Port        string
	BucketName  string
	LayoutFile  string
	AdminKey    string
	ManifestTTL time.Duration
	Layout      Layout
}

// DefaultManifestURL is where the manifest is read from when MANIFEST_URL is not set
const DefaultManifestURL = "./public/art_manifest.json"

// ErrInvalidPort is returned when PORT is not a valid TCP port
var ErrInvalidPort = errors.New("PORT must be a number between 1 and 65535")

// ErrInvalidTTL is returned when MANIFEST_TTL is not a positive duration
var ErrInvalidTTL = errors.New("MANIFEST_TTL must be a positive duration")

// Load loads configuration from environment variables and the optional layout file
func Load() (*Config, error) {
	manifestURL := os.Getenv("MANIFEST_URL")
	if manifestURL == "" {
		manifestURL = DefaultManifestURL
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ttl := 5 * time.Minute
	if raw := os.Getenv("MANIFEST_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTTL, raw)
		}
		ttl = d
	}

	cfg := &Config{
		ManifestURL: manifestURL,
		Port:        port,
		BucketName:  os.Getenv("BUCKET_NAME"),
		LayoutFile:  os.Getenv("LAYOUT_FILE"),
		AdminKey:    os.Getenv("ADMIN_KEY"),
		ManifestTTL: ttl,
		Layout:      DefaultLayout(),
	}

	if cfg.LayoutFile != "" {
		layout, err := LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, err
		}
		cfg.Layout = *layout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the port and the layout
func (c *Config) Validate() error {
	p, err := strconv.Atoi(c.Port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, c.Port)
	}
	if c.ManifestTTL <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, c.ManifestTTL)
	}
	return c.Layout.Validate()
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// LogServerStart reports where the site is served
func (c *Config) LogServerStart(l *log.Logger) {
	l.Info("starting server", "port", c.Port)
	l.Info("showcase", "url", fmt.Sprintf("http://localhost:%s/", c.Port))
	l.Info("manifest", "source", c.ManifestURL, "ttl", c.ManifestTTL)
	if c.AdminKey != "" {
		l.Info("admin", "url", fmt.Sprintf("http://localhost:%s%s", c.Port, c.AdminPrefix()))
	}
}

// AdminPrefix is the path the maintenance routes are mounted under, empty when disabled
func (c *Config) AdminPrefix() string {
	if c.AdminKey == "" {
		return ""
	}
	return fmt.Sprintf("/%s/admin", c.AdminKey)
}
