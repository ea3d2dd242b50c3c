package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	r := Defaults()
	require.NoError(t, r.Validate())
	assert.Equal(t, []string{FilmsGross, Awards, TopHits, AlbumsWiki, AlbumsBillboard}, r.Names())
}

func TestMatchHeader(t *testing.T) {
	films, _ := Defaults().Get(FilmsGross)
	hits, _ := Defaults().Get(TopHits)
	cases := []struct {
		topic Topic
		label string
		want  string
		ok    bool
	}{
		{films, "Rank", "rank", true},
		{films, "  TITLE ", "title", true},
		{films, "Worldwide box office", "gross", true},
		{films, "Domestic gross", "gross", true},
		{films, "Distributor", "distributor", true},
		{films, "Notes", "", false},
		{films, "", "", false},
		{hits, "No.", "rank", true},
		{hits, "Artist(s)", "artist", true},
		{hits, "Title", "title", true},
	}
	for _, tc := range cases {
		got, ok := tc.topic.MatchHeader(tc.label)
		assert.Equal(t, tc.want, got, "%s: MatchHeader(%q)", tc.topic.Name, tc.label)
		assert.Equal(t, tc.ok, ok, "%s: MatchHeader(%q)", tc.topic.Name, tc.label)
	}
}

func TestMatchHeaderFirstRuleWins(t *testing.T) {
	tp := Topic{
		Fields: []string{"a", "b"},
		Rules: []Rule{
			{Field: "a", Contains: []string{"box"}},
			{Field: "b", Contains: []string{"office"}},
		},
	}
	got, _ := tp.MatchHeader("Box office")
	assert.Equal(t, "a", got)
}

func TestMatchHeaderCanonicalNameIsIdentity(t *testing.T) {
	for _, tp := range Builtin() {
		for _, f := range tp.Fields {
			got, ok := tp.MatchHeader(f)
			assert.True(t, ok, "%s: %q", tp.Name, f)
			assert.Equal(t, f, got, "%s", tp.Name)
		}
	}
}

func TestURLAndCacheName(t *testing.T) {
	tp, _ := Defaults().Get(Awards)
	assert.Equal(t, "https://en.wikipedia.org/wiki/1994_in_film", tp.URLFor(1994))
	assert.Equal(t, "1994_in_film.html", tp.CacheName(1994))

	films, _ := Defaults().Get(FilmsGross)
	assert.Equal(t, tp.CacheName(1994), films.CacheName(1994), "topics on one page share a cache entry")
}

func TestValidateRejects(t *testing.T) {
	base := func() Topic {
		return Topic{
			Name: "x", Page: "p", URL: "http://h/{year}",
			Keywords: []string{"k"}, Fields: []string{"a"},
		}
	}
	cases := map[string]func(*Topic){
		"no keyword":      func(tp *Topic) { tp.Keywords = []string{" "} },
		"no fields":       func(tp *Topic) { tp.Fields = nil },
		"reserved year":   func(tp *Topic) { tp.Fields = []string{"year"} },
		"duplicate":       func(tp *Topic) { tp.Fields = []string{"a", "a"} },
		"rule field":      func(tp *Topic) { tp.Rules = []Rule{{Field: "b", Contains: []string{"b"}}} },
		"empty rule":      func(tp *Topic) { tp.Rules = []Rule{{Field: "a"}} },
		"positional":      func(tp *Topic) { tp.Positional = []string{"zz"} },
		"forward fill":    func(tp *Topic) { tp.ForwardFill = []string{"zz"} },
		"lead":            func(tp *Topic) { tp.LeadField = "zz" },
		"url":             func(tp *Topic) { tp.URL = "http://h/static" },
		"page":            func(tp *Topic) { tp.Page = "" },
		"list no fields":  func(tp *Topic) { tp.ListFallback = true },
		"list rank field": func(tp *Topic) { tp.ListRankField = "zz" },
	}
	for name, mutate := range cases {
		tp := base()
		mutate(&tp)
		assert.ErrorIs(t, tp.Validate(), ErrInvalidTopic, name)
	}
	assert.NoError(t, base().Validate())
}

func TestOverride(t *testing.T) {
	r := Defaults()
	off := false
	require.NoError(t, r.Override(Awards, Override{Keywords: []string{"ceremonies"}, AllTables: &off}))

	tp, _ := r.Get(Awards)
	assert.Equal(t, []string{"ceremonies"}, tp.Keywords)
	assert.False(t, tp.AllTables)
	assert.Equal(t, "category", tp.LeadField, "unrelated member changed")

	assert.ErrorIs(t, r.Override("nope", Override{}), ErrInvalidTopic)
	require.NoError(t, r.Override(FilmsGross, Override{ForwardFill: []string{"budget"}}))
	assert.ErrorIs(t, r.Validate(), ErrInvalidTopic)
}

func TestOverride_EmptyListClears(t *testing.T) {
	r := Defaults()
	before, _ := r.Get(Awards)
	require.NotEmpty(t, before.ForwardFill)

	require.NoError(t, r.Override(Awards, Override{ForwardFill: []string{}}))
	tp, _ := r.Get(Awards)
	assert.Empty(t, tp.ForwardFill)
	assert.Equal(t, before.Keywords, tp.Keywords, "unset members keep their value")
}

func TestGetReturnsCopy(t *testing.T) {
	r := Defaults()
	tp, _ := r.Get(FilmsGross)
	tp.Fields[0] = "mutated"
	tp.Rules[0].Contains[0] = "mutated"
	again, _ := r.Get(FilmsGross)
	assert.Equal(t, "rank", again.Fields[0])
	assert.Equal(t, "rank", again.Rules[0].Contains[0])
}

func TestSelect(t *testing.T) {
	r := Defaults()
	got, err := r.Select([]string{AlbumsWiki, FilmsGross})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, FilmsGross, got[0].Name, "registry order")
	assert.Equal(t, AlbumsWiki, got[1].Name)

	all, err := r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = r.Select([]string{"bogus"})
	assert.ErrorIs(t, err, ErrInvalidTopic)
}
