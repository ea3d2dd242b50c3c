package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/rewind/internal/cache"
	"github.com/hyperifyio/rewind/internal/export"
	"github.com/hyperifyio/rewind/internal/extract"
	"github.com/hyperifyio/rewind/internal/fetch"
	"github.com/hyperifyio/rewind/internal/locate"
	"github.com/hyperifyio/rewind/internal/metrics"
	"github.com/hyperifyio/rewind/internal/robots"
	"github.com/hyperifyio/rewind/internal/source"
	"github.com/hyperifyio/rewind/internal/topics"
)

// robotsExpiry is how long a host's robots.txt is trusted within a run.
const robotsExpiry = 30 * time.Minute

// ErrNoRecords is returned when a run completes without a single record
// across every selected topic and year. The CLI maps it to exit code 2.
var ErrNoRecords = errors.New("no records extracted")

type App struct {
	cfg       Config
	topics    []topics.Topic
	format    export.Format
	extractor *extract.Extractor
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New validates cfg, resolves the topic selection and wires the cache,
// network client and extractor. Invalid topics are fatal here, before any
// year runs.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	reg := topics.Defaults()
	names := make([]string, 0, len(cfg.TopicOverrides))
	for name := range cfg.TopicOverrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := reg.Override(name, cfg.TopicOverrides[name]); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	selected, err := reg.Select(cfg.Topics)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no topics selected", topics.ErrInvalidTopic)
	}

	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			return nil, fmt.Errorf("clear cache: %w", err)
		}
		log.Info().Str("dir", cfg.CacheDir).Msg("cache cleared")
	}
	if cfg.CacheMaxAge > 0 {
		n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed; continuing")
		} else if n > 0 {
			log.Info().Int("files", n).Dur("max_age", cfg.CacheMaxAge).Msg("purged stale cache entries")
		}
	}

	m := metrics.New()
	src := &source.Source{
		Store:   &cache.Store{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms},
		Offline: cfg.Offline,
		Metrics: m,
	}
	if !cfg.Offline {
		src.Client = newFetchClient(cfg)
	}

	return &App{
		cfg:       cfg,
		topics:    selected,
		format:    format,
		extractor: &extract.Extractor{
			Source:      src,
			Locator:     &locate.Locator{HeadingTags: cfg.HeadingTags},
			Concurrency: cfg.Concurrency,
			Metrics:     m,
		},
		metrics:   m,
		now:       time.Now,
	}, nil
}

func newFetchClient(cfg Config) *fetch.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	hc := newHTTPClient(cfg.Timeout)
	c := &fetch.Client{
		HTTPClient:        hc,
		UserAgent:         ua,
		PerRequestTimeout: cfg.Timeout,
		RetryMax:          cfg.Retries,
		MaxConcurrent:     max(cfg.Concurrency, 1),
	}
	if cfg.Rate > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	if cfg.Robots {
		c.Robots = &robots.Manager{HTTPClient: hc, UserAgent: ua, EntryExpiry: robotsExpiry}
	}
	return c
}

// Topics returns the topics this app will run.
func (a *App) Topics() []topics.Topic { return a.topics }

// Run extracts every selected topic over the configured years and writes
// the outputs. Per-year failures are logged and recorded in the manifest;
// they do not fail the run. ErrNoRecords is returned when nothing at all
// was extracted, after the manifest has been written.
func (a *App) Run(ctx context.Context) error {
	started := a.now()
	man := newManifest(a.cfg, started)
	var (
		outputs []string
		results []extract.Result
		total   int
		cl      cleaned
		derived []namedTable
	)

	for _, t := range a.topics {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := a.extractor.Extract(ctx, t, a.cfg.Years)
		results = append(results, res)
		man.addResult(t.URL, res)
		total += len(res.Records)
		log.Info().
			Str("topic", t.Name).
			Stringer("years", a.cfg.Years).
			Int("records", len(res.Records)).
			Int("failed", len(res.Failures())).
			Msg("topic extracted")

		path, err := export.WriteFile(rawDir(a.cfg), t.Name, a.format, export.RecordTable{Fields: t.Fields, Records: res.Records})
		if err != nil {
			return fmt.Errorf("write %s: %w", t.Name, err)
		}
		outputs = append(outputs, path)

		if a.cfg.Clean {
			if nt, ok := cl.add(t.Name, res.Records); ok {
				derived = append(derived, nt)
			}
		}
	}

	if a.cfg.Analytics {
		derived = append(derived, cl.analyze()...)
	}
	for _, nt := range derived {
		path, err := export.WriteFile(processedDir(a.cfg), nt.name, a.format, nt.table)
		if err != nil {
			return fmt.Errorf("write %s: %w", nt.name, err)
		}
		outputs = append(outputs, path)
	}

	if a.cfg.PDF {
		p := reportPath(a.cfg)
		if err := writeReport(p, a.cfg, results, derived, started); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		outputs = append(outputs, p)
	}
	if a.cfg.MetricsOut != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsOut); err != nil {
			log.Warn().Err(err).Str("path", a.cfg.MetricsOut).Msg("metrics write failed")
		}
	}
	if !a.cfg.NoManifest {
		if err := man.addOutputs(a.cfg.OutDir, outputs...); err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		if err := man.write(manifestPath(a.cfg), a.now()); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		log.Info().Str("path", manifestPath(a.cfg)).Str("run_id", man.RunID).Msg("wrote manifest")
	}

	log.Info().Int("records", total).Int("files", len(outputs)).Dur("elapsed", a.now().Sub(started)).Msg("run finished")
	if total == 0 {
		return ErrNoRecords
	}
	return nil
}
