package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/rewind/internal/topics"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Years struct {
		From int `yaml:"from" json:"from"`
		To   int `yaml:"to" json:"to"`
	} `yaml:"years" json:"years"`

	// Select names the topics to run; empty runs all.
	Select []string `yaml:"select" json:"select"`
	// Topics overrides built-in topic definitions by name.
	Topics map[string]topics.Override `yaml:"topics" json:"topics"`
	// Headings lists the heading tags sections are anchored on.
	Headings []string `yaml:"headings" json:"headings"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		Offline     bool          `yaml:"offline" json:"offline"`
	} `yaml:"cache" json:"cache"`

	HTTP struct {
		UserAgent string        `yaml:"ua" json:"ua"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout"`
		Rate      float64       `yaml:"rate" json:"rate"`
		Retries   int           `yaml:"retries" json:"retries"`
		Robots    bool          `yaml:"robots" json:"robots"`
	} `yaml:"http" json:"http"`

	Concurrency int `yaml:"concurrency" json:"concurrency"`

	Output struct {
		Dir       string `yaml:"dir" json:"dir"`
		Format    string `yaml:"format" json:"format"`
		Clean     bool   `yaml:"clean" json:"clean"`
		Analytics bool   `yaml:"analytics" json:"analytics"`
		PDF       bool   `yaml:"pdf" json:"pdf"`
		Metrics   string `yaml:"metrics" json:"metrics"`
	} `yaml:"output" json:"output"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc onto cfg wherever cfg still holds
// the zero value or the flag default. Flags set explicitly win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if (cfg.Years.From == 0 || cfg.Years.From == DefaultFromYear) && fc.Years.From > 0 {
		cfg.Years.From = fc.Years.From
	}
	if (cfg.Years.To == 0 || cfg.Years.To == DefaultToYear) && fc.Years.To > 0 {
		cfg.Years.To = fc.Years.To
	}
	if len(cfg.Topics) == 0 && len(fc.Select) > 0 {
		cfg.Topics = append([]string(nil), fc.Select...)
	}
	if len(cfg.HeadingTags) == 0 && len(fc.Headings) > 0 {
		cfg.HeadingTags = append([]string(nil), fc.Headings...)
	}
	if len(fc.Topics) > 0 {
		if cfg.TopicOverrides == nil {
			cfg.TopicOverrides = map[string]topics.Override{}
		}
		for name, o := range fc.Topics {
			if _, set := cfg.TopicOverrides[name]; !set {
				cfg.TopicOverrides[name] = o
			}
		}
	}

	if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if !cfg.Offline && fc.Cache.Offline {
		cfg.Offline = true
	}

	if (cfg.UserAgent == "" || cfg.UserAgent == DefaultUserAgent) && fc.HTTP.UserAgent != "" {
		cfg.UserAgent = fc.HTTP.UserAgent
	}
	if (cfg.Timeout == 0 || cfg.Timeout == DefaultTimeout) && fc.HTTP.Timeout > 0 {
		cfg.Timeout = fc.HTTP.Timeout
	}
	if (cfg.Rate == 0 || cfg.Rate == DefaultRate) && fc.HTTP.Rate > 0 {
		cfg.Rate = fc.HTTP.Rate
	}
	if cfg.Retries == 0 && fc.HTTP.Retries > 0 {
		cfg.Retries = fc.HTTP.Retries
	}
	if !cfg.Robots && fc.HTTP.Robots {
		cfg.Robots = true
	}
	if (cfg.Concurrency == 0 || cfg.Concurrency == DefaultConcurrency) && fc.Concurrency > 0 {
		cfg.Concurrency = fc.Concurrency
	}

	if (cfg.OutDir == "" || cfg.OutDir == DefaultOutDir) && fc.Output.Dir != "" {
		cfg.OutDir = fc.Output.Dir
	}
	if (cfg.Format == "" || cfg.Format == DefaultFormat) && fc.Output.Format != "" {
		cfg.Format = fc.Output.Format
	}
	if !cfg.Clean && fc.Output.Clean {
		cfg.Clean = true
	}
	if !cfg.Analytics && fc.Output.Analytics {
		cfg.Analytics = true
	}
	if !cfg.PDF && fc.Output.PDF {
		cfg.PDF = true
	}
	if cfg.MetricsOut == "" && fc.Output.Metrics != "" {
		cfg.MetricsOut = fc.Output.Metrics
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
