package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvOverrides,
// e.g. REWIND_CACHE_DIR.
const EnvPrefix = "REWIND"

// envOverrides mirrors Config with pointer fields so an unset variable can be
// told apart from a zero value.
type envOverrides struct {
	CacheDir         *string        `envconfig:"CACHE_DIR"`
	CacheMaxAge      *time.Duration `envconfig:"CACHE_MAX_AGE"`
	CacheClear       *bool          `envconfig:"CACHE_CLEAR"`
	CacheStrictPerms *bool          `envconfig:"CACHE_STRICT_PERMS"`
	Offline          *bool          `envconfig:"OFFLINE"`

	From        *int     `envconfig:"FROM"`
	To          *int     `envconfig:"TO"`
	Topics      []string `envconfig:"TOPICS"`
	Concurrency *int     `envconfig:"CONCURRENCY"`
	Headings    []string `envconfig:"HEADINGS"`

	UserAgent *string        `envconfig:"USER_AGENT"`
	Timeout   *time.Duration `envconfig:"TIMEOUT"`
	Rate      *float64       `envconfig:"RATE"`
	Retries   *int           `envconfig:"RETRIES"`
	Robots    *bool          `envconfig:"ROBOTS"`

	OutDir     *string `envconfig:"OUT"`
	Format     *string `envconfig:"FORMAT"`
	Clean      *bool   `envconfig:"CLEAN"`
	Analytics  *bool   `envconfig:"ANALYTICS"`
	PDF        *bool   `envconfig:"PDF"`
	MetricsOut *string `envconfig:"METRICS_OUT"`

	Verbose *bool `envconfig:"VERBOSE"`
}

// ApplyEnvOverrides overrides cfg fields with REWIND_* environment variables
// that are set. It runs after the config file so env takes precedence over
// it; explicit flags are re-applied by the caller afterwards.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	setString(&cfg.CacheDir, env.CacheDir)
	set(&cfg.CacheMaxAge, env.CacheMaxAge)
	set(&cfg.CacheClear, env.CacheClear)
	set(&cfg.CacheStrictPerms, env.CacheStrictPerms)
	set(&cfg.Offline, env.Offline)

	set(&cfg.Years.From, env.From)
	set(&cfg.Years.To, env.To)
	if len(env.Topics) > 0 {
		cfg.Topics = env.Topics
	}
	set(&cfg.Concurrency, env.Concurrency)
	if len(env.Headings) > 0 {
		cfg.HeadingTags = env.Headings
	}

	setString(&cfg.UserAgent, env.UserAgent)
	set(&cfg.Timeout, env.Timeout)
	set(&cfg.Rate, env.Rate)
	set(&cfg.Retries, env.Retries)
	set(&cfg.Robots, env.Robots)

	setString(&cfg.OutDir, env.OutDir)
	setString(&cfg.Format, env.Format)
	set(&cfg.Clean, env.Clean)
	set(&cfg.Analytics, env.Analytics)
	set(&cfg.PDF, env.PDF)
	setString(&cfg.MetricsOut, env.MetricsOut)
	set(&cfg.Verbose, env.Verbose)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// setString ignores empty values, matching how blank strings are treated
// in flags and files.
func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
