package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/rewind/internal/export"
	"github.com/hyperifyio/rewind/internal/extract"
	"github.com/hyperifyio/rewind/internal/locate"
	"github.com/hyperifyio/rewind/internal/topics"
)

// Flag defaults. ApplyFileConfig treats a field still holding its default as
// unset so a config file can replace it.
const (
	DefaultCacheDir    = "data/html"
	DefaultOutDir      = "data"
	DefaultFormat      = "csv"
	DefaultFromYear    = 1985
	DefaultToYear      = 2015
	DefaultTimeout     = 30 * time.Second
	DefaultRate        = 1.0
	DefaultConcurrency = 1
)

// DefaultUserAgent identifies the tool to the sites it reads.
var DefaultUserAgent = "rewind/" + BuildVersion + " (+https://github.com/hyperifyio/rewind)"

// Config holds runtime configuration for the application.
type Config struct {
	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	Offline          bool

	// Extraction
	Years       extract.YearRange
	Topics      []string
	Concurrency int
	// TopicOverrides adjust built-in topics by name before the run.
	TopicOverrides map[string]topics.Override
	// HeadingTags are the tags a section may be anchored on; empty means
	// h2 and h3.
	HeadingTags []string

	// Network
	UserAgent string
	Timeout   time.Duration
	// Rate is requests per second; 0 disables limiting.
	Rate    float64
	Retries int
	Robots  bool

	// Output
	OutDir     string
	Format     string
	Clean      bool
	Analytics  bool
	PDF        bool
	MetricsOut string
	// NoManifest skips manifest.json.
	NoManifest bool

	Verbose bool
}

// ValidateConfig rejects settings the run cannot start with.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.CacheDir) == "" {
		return errors.New("config: cache dir is required")
	}
	if strings.TrimSpace(cfg.OutDir) == "" {
		return errors.New("config: output dir is required")
	}
	if err := cfg.Years.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := export.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := (&locate.Locator{HeadingTags: cfg.HeadingTags}).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Timeout < 0 || cfg.Rate < 0 || cfg.Retries < 0 || cfg.Concurrency < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Analytics && !cfg.Clean {
		return errors.New("config: analytics requires clean output")
	}
	if cfg.Offline && cfg.CacheClear {
		return errors.New("config: offline runs cannot clear the cache")
	}
	return nil
}
