package app

import (
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/rewind/internal/analytics"
	"github.com/hyperifyio/rewind/internal/clean"
	"github.com/hyperifyio/rewind/internal/export"
	"github.com/hyperifyio/rewind/internal/schema"
	"github.com/hyperifyio/rewind/internal/topics"
)

// topArtistsN is how many artists the singles ranking keeps.
const topArtistsN = 20

// namedTable is a table bound for processed/{name}.
type namedTable struct {
	name  string
	title string
	table export.Tabular
}

// cleaned collects typed tables per topic for analytics.
type cleaned struct {
	films  clean.Films
	awards clean.Awards
	hits   clean.Hits
	albums clean.Albums
	chart  clean.ChartAlbums
	ran    map[string]bool
}

// add cleans one topic's records. Topics without a cleaner are skipped.
func (c *cleaned) add(topic string, recs []schema.Record) (namedTable, bool) {
	if c.ran == nil {
		c.ran = map[string]bool{}
	}
	var t export.Tabular
	switch topic {
	case topics.FilmsGross:
		c.films = clean.CleanFilms(recs)
		t = c.films
	case topics.Awards:
		c.awards = clean.CleanAwards(recs)
		t = c.awards
	case topics.TopHits:
		c.hits = clean.CleanHits(recs)
		t = c.hits
	case topics.AlbumsWiki:
		c.albums = clean.CleanAlbums(recs)
		t = c.albums
	case topics.AlbumsBillboard:
		c.chart = clean.CleanChartAlbums(recs)
		t = c.chart
	default:
		log.Debug().Str("topic", topic).Msg("no cleaner for topic")
		return namedTable{}, false
	}
	c.ran[topic] = true
	return namedTable{name: topic, title: topic, table: t}, true
}

// analyze derives the summary tables whose inputs were part of the run.
func (c *cleaned) analyze() []namedTable {
	var out []namedTable
	if c.ran[topics.FilmsGross] || c.ran[topics.TopHits] {
		out = append(out, namedTable{"yearly_stats", "Yearly statistics", analytics.YearlyStats(c.films, c.hits)})
	}
	if c.ran[topics.TopHits] {
		out = append(out, namedTable{"top_artists", "Top artists by year-end singles", analytics.TopArtists(c.hits, topArtistsN)})
	}
	if c.ran[topics.Awards] {
		out = append(out, namedTable{"best_picture", "Best picture winners", analytics.BestPictureList(c.awards)})
	}
	if c.ran[topics.AlbumsBillboard] || c.ran[topics.AlbumsWiki] {
		s := analytics.AlbumStats(c.chart, c.albums)
		if c.ran[topics.AlbumsBillboard] {
			out = append(out,
				namedTable{"top_us_albums", "Longest-running US number-one albums", s.TopUSAlbums},
				namedTable{"top_us_artists", "US artists by weeks at number one", s.TopUSArtists},
			)
		}
		if c.ran[topics.AlbumsWiki] {
			out = append(out, namedTable{"top_global_artists", "Artists in best-selling album lists", s.TopGlobalArtists})
		}
	}
	return out
}
