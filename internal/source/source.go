// Package source provides parsed documents for a (topic, year) pair,
// reading them from the on-disk cache or fetching and persisting them on a
// miss.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/hyperifyio/rewind/internal/cache"
	"github.com/hyperifyio/rewind/internal/dom"
	"github.com/hyperifyio/rewind/internal/fetch"
	"github.com/hyperifyio/rewind/internal/metrics"
	"github.com/hyperifyio/rewind/internal/topics"
)

// ErrCacheMiss is reported, together with fetch.ErrRetrieval, when an
// offline source has no cached copy.
var ErrCacheMiss = errors.New("document not cached")

// Getter retrieves raw bytes for a URL.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Source combines the cache and the network client. Concurrent misses on
// the same cache entry are coalesced into one fetch.
type Source struct {
	Store  *cache.Store
	Client Getter
	// Offline serves only cached documents.
	Offline bool
	Metrics *metrics.Metrics

	group singleflight.Group
}

// Fetch returns the parsed document for topic and year.
func (s *Source) Fetch(ctx context.Context, t topics.Topic, year int) (*dom.Document, error) {
	raw, err := s.Raw(ctx, t, year)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", t.CacheName(year), err)
	}
	return doc, nil
}

// Raw returns the stored or freshly fetched markup for topic and year. A
// fetched document is persisted before Raw returns.
func (s *Source) Raw(ctx context.Context, t topics.Topic, year int) ([]byte, error) {
	name := t.CacheName(year)
	start := time.Now()
	if b, ok, err := s.load(name); err != nil {
		return nil, err
	} else if ok {
		log.Debug().Str("topic", t.Name).Int("year", year).Str("path", name).Msg("cache hit")
		s.Metrics.ObserveFetch(metrics.SourceCache, time.Since(start))
		return b, nil
	}
	if s.Offline {
		return nil, fmt.Errorf("%w: %w: %s", fetch.ErrRetrieval, ErrCacheMiss, name)
	}
	if s.Client == nil {
		return nil, fmt.Errorf("%w: no client configured", fetch.ErrRetrieval)
	}
	v, err, shared := s.group.Do(name, func() (any, error) {
		// A concurrent caller may have persisted it meanwhile.
		if b, ok, err := s.load(name); err == nil && ok {
			return b, nil
		}
		url := t.URLFor(year)
		log.Debug().Str("topic", t.Name).Int("year", year).Str("url", url).Msg("cache miss; fetching")
		b, err := s.Client.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		if s.Store != nil {
			if err := s.Store.Save(name, b); err != nil {
				return nil, fmt.Errorf("persist %s: %w", name, err)
			}
		}
		s.Metrics.ObserveFetch(metrics.SourceNetwork, time.Since(start))
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug().Str("path", name).Msg("shared in-flight fetch")
	}
	return v.([]byte), nil
}

func (s *Source) load(name string) ([]byte, bool, error) {
	if s.Store == nil {
		return nil, false, nil
	}
	return s.Store.Load(name)
}
