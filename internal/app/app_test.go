package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/rewind/internal/cache"
	"github.com/hyperifyio/rewind/internal/extract"
	"github.com/hyperifyio/rewind/internal/topics"
)

func filmPage(year int) string {
	return fmt.Sprintf(`<html><head><title>%[1]d in film</title></head><body>
		<h2>Highest-grossing films</h2>
		<table class="wikitable">
		  <tr><th>Rank</th><th>Title</th><th>Distributor</th><th>Worldwide gross</th></tr>
		  <tr><td rowspan="2">1</td><td>Alpha %[1]d</td><td>Studio A</td><td>$10</td></tr>
		  <tr><td>Beta %[1]d</td><td>Studio B</td><td>$8</td></tr>
		  <tr><td>3</td><td>Gamma %[1]d</td><td>Studio C</td><td>$5</td></tr>
		</table>
		<h2>Events</h2></body></html>`, year)
}

func testConfig(t *testing.T) Config {
	t.Helper()
	tmp := t.TempDir()
	return Config{
		CacheDir: filepath.Join(tmp, "html"),
		OutDir:   filepath.Join(tmp, "data"),
		Format:   "csv",
		Years:    extract.YearRange{From: 1990, To: 1990},
		Topics:   []string{topics.FilmsGross},
	}
}

func seed(t *testing.T, dir string, years ...int) {
	t.Helper()
	st := &cache.Store{Dir: dir}
	for _, y := range years {
		require.NoError(t, st.Save(fmt.Sprintf("%d_in_film.html", y), []byte(filmPage(y))))
	}
}

func readManifest(t *testing.T, cfg Config) manifest {
	t.Helper()
	b, err := os.ReadFile(manifestPath(cfg))
	require.NoError(t, err)
	var m manifest
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestRun_OfflineWritesRawCleanAnalyticsAndManifest(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Years = extract.YearRange{From: 1990, To: 1992}
	cfg.Offline = true
	cfg.Clean = true
	cfg.Analytics = true
	cfg.PDF = true
	seed(t, cfg.CacheDir, 1990, 1991)

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))

	raw, err := os.ReadFile(filepath.Join(rawDir(cfg), "films-gross.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "rank,title,distributor,gross,year", lines[0])
	require.Len(t, lines, 7, "6 records over two years:\n%s", raw)
	assert.Equal(t, "1,Beta 1990,Studio B,$8,1990", lines[2], "rowspan rank carried down")

	stats, err := os.ReadFile(filepath.Join(processedDir(cfg), "yearly_stats.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(stats), "\n1990,23,")
	assert.FileExists(t, filepath.Join(processedDir(cfg), "films-gross.csv"))
	assert.FileExists(t, reportPath(cfg))

	m := readManifest(t, cfg)
	assert.NotEmpty(t, m.RunID)
	require.Len(t, m.Topics, 1)
	years := m.Topics[0].Years
	require.Len(t, years, 3)
	assert.Equal(t, "records", years[0].Outcome)
	assert.Equal(t, 3, years[0].Records)
	assert.Equal(t, "failed", years[2].Outcome)
	assert.NotEmpty(t, years[2].Error, "failed year carries its error")

	require.Len(t, m.Outputs, 4)
	for _, o := range m.Outputs {
		assert.Len(t, o.SHA256, 64)
		assert.NotZero(t, o.Bytes)
		assert.False(t, filepath.IsAbs(o.Path), o.Path)
	}
}

func TestRun_NoRecordsStillWritesManifest(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Offline = true

	a, err := New(cfg)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Run(context.Background()), ErrNoRecords)
	assert.Equal(t, "failed", readManifest(t, cfg).Topics[0].Years[0].Outcome)
}

func TestRun_HeadingTagsRestrictAnchors(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Offline = true
	cfg.HeadingTags = []string{"h3"}
	seed(t, cfg.CacheDir, 1990)

	a, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, a.extractor.Locator)
	assert.Equal(t, []string{"h3"}, a.extractor.Locator.HeadingTags)

	// The fixture anchors on an h2, so an h3-only run finds no section.
	assert.ErrorIs(t, a.Run(context.Background()), ErrNoRecords)
	assert.Equal(t, "empty", readManifest(t, cfg).Topics[0].Years[0].Outcome)

	cfg.HeadingTags = []string{"div"}
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestRun_FetchesOnceThenServesFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/1990_in_film" {
			http.NotFound(w, r)
			return
		}
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "rewind-test"), r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(filmPage(1990)))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.UserAgent = "rewind-test/1.0"
	cfg.TopicOverrides = map[string]topics.Override{
		topics.FilmsGross: {URL: srv.URL + "/{year}_in_film"},
	}
	for i := 0; i < 2; i++ {
		a, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, a.Run(context.Background()), "run %d", i)
	}
	assert.EqualValues(t, 1, hits.Load(), "one network fetch")
	assert.FileExists(t, filepath.Join(cfg.CacheDir, "1990_in_film.html"))
}

func TestNew_RejectsInvalidTopics(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.TopicOverrides = map[string]topics.Override{
		topics.FilmsGross: {ForwardFill: []string{"bogus"}},
	}
	_, err := New(cfg)
	assert.ErrorIs(t, err, topics.ErrInvalidTopic, "bad override")

	cfg = testConfig(t)
	cfg.Topics = []string{"no-such-topic"}
	_, err = New(cfg)
	assert.ErrorIs(t, err, topics.ErrInvalidTopic, "unknown name")
}

func TestNew_AppliesOverridesAndSelection(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Topics = nil
	cfg.TopicOverrides = map[string]topics.Override{
		topics.Awards: {Keywords: []string{"ceremonies"}},
	}
	a, err := New(cfg)
	require.NoError(t, err)
	require.Len(t, a.Topics(), len(topics.Builtin()), "empty selection runs all topics")
	for _, tp := range a.Topics() {
		if tp.Name == topics.Awards {
			assert.Equal(t, "ceremonies", tp.Keywords[0])
		}
	}
}
