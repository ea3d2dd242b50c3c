package clean

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/rewind/internal/grid"
	"github.com/hyperifyio/rewind/internal/schema"
)

func rec(year int, kv ...string) schema.Record {
	r := schema.Record{Year: year, Fields: map[string]grid.Value{}}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Fields[kv[i]] = grid.Str(kv[i+1])
	}
	return r
}

func TestMoneyAndRank(t *testing.T) {
	assert.Equal(t, 1234567.0, Money("$1,234,567[3]"))
	assert.Equal(t, 12.5, Money(" $12.5 "))
	assert.True(t, math.IsNaN(Money("N/A")), "non-numeric should be NaN")

	cases := map[string]int{"1": 1, " 2= ": 2, "3[a]": 3, "": 0, "T-4": 0}
	for in, want := range cases {
		assert.Equal(t, want, Rank(in), "Rank(%q)", in)
	}
}

func TestCleanFilms(t *testing.T) {
	films := CleanFilms([]schema.Record{
		rec(1991, "rank", "2", "title", "B", "distributor", "X", "gross", "$20[1]"),
		rec(1990, "rank", "1", "title", "A", "distributor", "Y", "gross", "$1,000"),
		rec(1991, "rank", "1", "title", "C", "distributor", "Z", "gross", "unknown"),
	})
	require.Len(t, films, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{films[0].Title, films[1].Title, films[2].Title})
	assert.Equal(t, 1000.0, films[0].Gross)
	assert.Equal(t, 20.0, films[2].Gross)
	assert.True(t, math.IsNaN(films[1].Gross))

	rows := films.Rows()
	assert.Equal(t, []string{"1", "C", "Z", "", "1991"}, rows[1])
	assert.Len(t, films.Header(), len(rows[0]))
}

func TestCleanAwards(t *testing.T) {
	awards := CleanAwards([]schema.Record{
		rec(1991, "category", "Category/Organization", "winner", "Academy Awards"),
		rec(1991, "category", " Best Picture ", "winner", "Silence"),
		rec(1990, "category", "Best Picture", "winner", "Dances"),
		rec(1990, "category", "Best Actor", "winner", "—"),
		rec(1990, "category", "Best Director", "winner", "Costner"),
	})
	assert.Equal(t, Awards{
		{Year: 1990, Category: "best director", Winner: "Costner"},
		{Year: 1990, Category: "best picture", Winner: "Dances"},
		{Year: 1991, Category: "best picture", Winner: "Silence"},
	}, awards)
}

func TestLeadArtist(t *testing.T) {
	cases := map[string]string{
		"Madonna":                           "Madonna",
		"Lionel Richie, Diana Ross":         "Lionel Richie",
		"Simon & Garfunkel":                 "Simon",
		"Wham! featuring George":            "Wham!",
		"Hall and Oates":                    "Hall",
		"Sandwich with Cheese":              "Sandwich",
		"Brandy or Monica":                  "Brandy",
		"Andy Gibb":                         "Andy Gibb",
		"Orchestral Manoeuvres in the Dark": "Orchestral Manoeuvres in the Dark",
	}
	for in, want := range cases {
		assert.Equal(t, want, LeadArtist(in), "LeadArtist(%q)", in)
	}
}

func TestCleanHits(t *testing.T) {
	hits := CleanHits([]schema.Record{
		rec(1985, "rank", "2", "title", `"Careless Whisper"`, "artist", "Wham! featuring George Michael"),
		rec(1985, "rank", "1", "title", `"Solo"`, "artist", " Madonna "),
		rec(1985, "rank", "3", "title", `"Duet"`, "artist", "Elton John With Kiki Dee"),
	})
	require.Len(t, hits, 3)
	assert.Equal(t, "Solo", hits[0].Title)
	assert.Equal(t, "madonna", hits[0].MainArtist)
	assert.Equal(t, "Madonna", hits[0].DisplayArtist)
	assert.False(t, hits[0].IsFeature)

	assert.Equal(t, "Careless Whisper", hits[1].Title)
	assert.Equal(t, "wham!", hits[1].MainArtist)
	assert.True(t, hits[1].IsFeature)

	// Display splitting is case-sensitive; grouping uses the lowered credit.
	assert.Equal(t, "Elton John With Kiki Dee", hits[2].DisplayArtist)
	assert.Equal(t, "elton john", hits[2].MainArtist)
	assert.Equal(t, "1", hits.Rows()[1][4], "is_feature column")
}

func TestCleanHits_FeatureNeedsWholeWord(t *testing.T) {
	cases := map[string]bool{
		"Feather":                  false,
		"Fthe band":                false,
		"Ftopia":                   false,
		"Nelly ft. Kelly Rowland":  true,
		"Nelly ft Kelly Rowland":   true,
		"Jay-Z feat. Beyoncé":      true,
		"Featuring Nobody":         true,
		"Artist: Remix":            true,
		"Crosby, Stills":           true,
		"Daft Punk":                false,
		"Afterhours feat Guest":    true,
		"Orchestral Manoeuvres":    false,
	}
	for credit, want := range cases {
		hits := CleanHits([]schema.Record{rec(2000, "rank", "1", "title", "x", "artist", credit)})
		require.Len(t, hits, 1)
		assert.Equal(t, want, hits[0].IsFeature, "credit %q", credit)
	}
}

func TestCleanChartAlbums(t *testing.T) {
	withDate := func(year int, date, album, artist, sales string) schema.Record {
		r := rec(year, "date", date, "album", album, "artist", artist, "sales", sales)
		if date == "" {
			r.Fields["date"] = grid.Null
		}
		return r
	}
	albums := CleanChartAlbums([]schema.Record{
		withDate(1985, "Jan 5", "Like a Virgin", "Madonna", "100,000"),
		withDate(1985, "Jan 12", "Like a Virgin", "Madonna", "90,000"),
		withDate(1985, "Jan 19", "Like a Virgin", "Madonna", ""),
		withDate(1985, "Feb 2", "Born in the U.S.A. †", "Bruce Springsteen", "50,000"),
		withDate(1985, "Mar 2", "No Jacket Required", "Phil Collins", "200,000"),
		withDate(1985, "Mar 9", "No Jacket Required", "Phil Collins", "x"),
		withDate(1986, "Jan 4", "Heart", "Heart", "10"),
		withDate(1986, "", "Heart", "Heart", "10"),
	})
	require.Len(t, albums, 4)

	first := albums[0]
	assert.Equal(t, "Born in the U.S.A.", first.Album, "dagger album ranks first")
	assert.Equal(t, 1, first.Rank)
	assert.True(t, first.Best)

	assert.Equal(t, "Like a Virgin", albums[1].Album)
	assert.Equal(t, 3, albums[1].WeeksAtOne)
	assert.Equal(t, 2, albums[1].Rank)
	assert.Equal(t, 100000.0, albums[1].MaxSales)

	assert.Equal(t, "No Jacket Required", albums[2].Album)
	assert.Equal(t, 200000.0, albums[2].MaxSales)
	assert.Equal(t, 3, albums[2].Rank)

	assert.Equal(t, 1986, albums[3].Year)
	assert.Equal(t, 1, albums[3].Rank)
	assert.Equal(t, 1, albums[3].WeeksAtOne)
}

func TestCleanAlbums(t *testing.T) {
	albums := CleanAlbums([]schema.Record{
		rec(1995, "rank", "2", "album", " Daydream ", "artist", "Mariah Carey"),
		rec(1995, "rank", "1", "album", "Jagged Little Pill", "artist", " Alanis Morissette"),
	})
	require.Len(t, albums, 2)
	assert.Equal(t, 1, albums[0].Rank)
	assert.Equal(t, "Alanis Morissette", albums[0].Artist)
	assert.Equal(t, "Daydream", albums[1].Album)
}
