package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/rewind/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("load .env failed")
	}
	cfg, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
	}
	os.Exit(exitCode(err))
}

// exitCode maps run errors to the process status: 2 when nothing was
// extracted, 1 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoRecords):
		return 2
	default:
		return 1
	}
}

// loadConfig layers configuration: flag defaults, then the config file, then
// REWIND_* environment variables, then flags given explicitly on the command
// line.
func loadConfig(fs *flag.FlagSet, args []string) (app.Config, error) {
	var (
		fv          app.Config
		configPath  string
		topicList   string
		headingList string
	)
	fs.StringVar(&configPath, "config", "", "Path to YAML or JSON config file")
	fs.StringVar(&fv.CacheDir, "cache.dir", app.DefaultCacheDir, "Directory holding cached HTML pages")
	fs.DurationVar(&fv.CacheMaxAge, "cache.maxAge", 0, "Purge cached pages older than this before the run (e.g. 720h); 0 disables")
	fs.BoolVar(&fv.CacheClear, "cache.clear", false, "Clear the cache directory before the run")
	fs.BoolVar(&fv.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&fv.Offline, "offline", false, "Serve pages from the cache only; a miss fails that year")
	fs.IntVar(&fv.Years.From, "from", app.DefaultFromYear, "First year (inclusive)")
	fs.IntVar(&fv.Years.To, "to", app.DefaultToYear, "Last year (inclusive)")
	fs.StringVar(&topicList, "topics", "", "Comma-separated topic names; empty runs all")
	fs.IntVar(&fv.Concurrency, "concurrency", app.DefaultConcurrency, "Years processed at once per topic")
	fs.StringVar(&headingList, "headings", "", "Comma-separated heading tags sections are anchored on (default h2,h3)")
	fs.StringVar(&fv.UserAgent, "ua", app.DefaultUserAgent, "User-Agent for HTTP requests")
	fs.DurationVar(&fv.Timeout, "timeout", app.DefaultTimeout, "Per-request timeout")
	fs.Float64Var(&fv.Rate, "rate", app.DefaultRate, "Maximum requests per second; 0 disables limiting")
	fs.IntVar(&fv.Retries, "retries", 0, "Retries of transient HTTP failures after the first attempt")
	fs.BoolVar(&fv.Robots, "robots", false, "Honour robots.txt before fetching")
	fs.StringVar(&fv.OutDir, "out", app.DefaultOutDir, "Output directory")
	fs.StringVar(&fv.Format, "format", app.DefaultFormat, "Output format: csv, jsonl or md")
	fs.BoolVar(&fv.Clean, "clean", false, "Also write cleaned, typed tables")
	fs.BoolVar(&fv.Analytics, "analytics", false, "Also write summary tables (requires -clean)")
	fs.BoolVar(&fv.PDF, "pdf", false, "Also write a PDF report")
	fs.StringVar(&fv.MetricsOut, "metrics.out", "", "Write Prometheus metrics in text format to this file")
	fs.BoolVar(&fv.NoManifest, "no-manifest", false, "Skip writing manifest.json")
	fs.BoolVar(&fv.Verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	fv.Topics = splitList(topicList)
	fv.HeadingTags = splitList(headingList)

	cfg := fv
	if strings.TrimSpace(configPath) != "" {
		file, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, file)
	}
	if err := app.ApplyEnvOverrides(&cfg); err != nil {
		return app.Config{}, err
	}

	explicit := map[string]func(){
		"cache.dir":         func() { cfg.CacheDir = fv.CacheDir },
		"cache.maxAge":      func() { cfg.CacheMaxAge = fv.CacheMaxAge },
		"cache.clear":       func() { cfg.CacheClear = fv.CacheClear },
		"cache.strictPerms": func() { cfg.CacheStrictPerms = fv.CacheStrictPerms },
		"offline":           func() { cfg.Offline = fv.Offline },
		"from":              func() { cfg.Years.From = fv.Years.From },
		"to":                func() { cfg.Years.To = fv.Years.To },
		"topics":            func() { cfg.Topics = fv.Topics },
		"concurrency":       func() { cfg.Concurrency = fv.Concurrency },
		"headings":          func() { cfg.HeadingTags = fv.HeadingTags },
		"ua":                func() { cfg.UserAgent = fv.UserAgent },
		"timeout":           func() { cfg.Timeout = fv.Timeout },
		"rate":              func() { cfg.Rate = fv.Rate },
		"retries":           func() { cfg.Retries = fv.Retries },
		"robots":            func() { cfg.Robots = fv.Robots },
		"out":               func() { cfg.OutDir = fv.OutDir },
		"format":            func() { cfg.Format = fv.Format },
		"clean":             func() { cfg.Clean = fv.Clean },
		"analytics":         func() { cfg.Analytics = fv.Analytics },
		"pdf":               func() { cfg.PDF = fv.PDF },
		"metrics.out":       func() { cfg.MetricsOut = fv.MetricsOut },
		"no-manifest":       func() { cfg.NoManifest = fv.NoManifest },
		"v":                 func() { cfg.Verbose = fv.Verbose },
	}
	fs.Visit(func(f *flag.Flag) {
		if apply, ok := explicit[f.Name]; ok {
			apply()
		}
	})
	return cfg, app.ValidateConfig(cfg)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	log.Info().
		Stringer("years", cfg.Years).
		Int("topics", len(a.Topics())).
		Bool("offline", cfg.Offline).
		Str("out", cfg.OutDir).
		Msg("starting run")
	return a.Run(ctx)
}
