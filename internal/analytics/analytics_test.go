package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/rewind/internal/clean"
)

func TestYearlyStats_OuterMerge(t *testing.T) {
	films := clean.Films{
		{Year: 1990, Rank: 1, Title: "A", Gross: 100},
		{Year: 1990, Rank: 2, Title: "B", Gross: 50},
		{Year: 1990, Rank: 3, Title: "C", Gross: math.NaN()},
		{Year: 1991, Rank: 1, Title: "D", Gross: math.NaN()},
	}
	hits := clean.Hits{
		{Year: 1990, Title: "Song"},
		{Year: 1990, Title: "Song"},
		{Year: 1990, Title: "Other"},
		{Year: 1992, Title: "Late"},
	}
	stats := YearlyStats(films, hits)
	require.Len(t, stats, 3)

	assert.Equal(t, 1990, stats[0].Year)
	assert.Equal(t, 150.0, stats[0].BoxOffice)
	assert.Equal(t, 75.0, stats[0].MeanGross)
	assert.Equal(t, 3, stats[0].Films)
	assert.Equal(t, 2, stats[0].UniqueSongs)

	assert.True(t, math.IsNaN(stats[1].BoxOffice), "no readable gross")
	assert.Equal(t, 0, stats[1].UniqueSongs)

	assert.Equal(t, 1992, stats[2].Year)
	assert.Equal(t, 0, stats[2].Films)
	assert.Equal(t, 1, stats[2].UniqueSongs)

	rows := stats.Rows()
	assert.Equal(t, []string{"1991", "", "", "1", "0"}, rows[1])
	assert.Len(t, stats.Header(), len(rows[0]))
}

func TestTopArtists(t *testing.T) {
	hits := clean.Hits{
		{Title: "a", MainArtist: "madonna", DisplayArtist: "Madonna"},
		{Title: "b", MainArtist: "madonna", DisplayArtist: "MADONNA"},
		{Title: "c", MainArtist: "madonna", DisplayArtist: "Madonna"},
		{Title: "d", MainArtist: "prince", DisplayArtist: "Prince"},
		{Title: "e", MainArtist: "prince", DisplayArtist: "PRINCE"},
		{Title: "f", MainArtist: "abba", DisplayArtist: "ABBA"},
		{Title: "g", MainArtist: "abba", DisplayArtist: "ABBA"},
		{Title: "", MainArtist: "ghost", DisplayArtist: "Ghost"},
	}
	top := TopArtists(hits, 2)
	require.Len(t, top, 2)
	assert.Equal(t, ArtistHits{MainArtist: "madonna", DisplayArtist: "Madonna", TotalHits: 3}, top[0])
	// Ties break on name.
	assert.Equal(t, "abba", top[1].MainArtist)

	all := TopArtists(hits, 0)
	require.Len(t, all, 3)
	// Spelling tie picks the alphabetically first.
	assert.Equal(t, "PRINCE", all[2].DisplayArtist)
}

func TestBestPictureList(t *testing.T) {
	awards := clean.Awards{
		{Year: 1991, Category: "best picture", Winner: "Silence"},
		{Year: 1990, Category: "best director", Winner: "Costner"},
		{Year: 1950, Category: "best motion picture", Winner: "Eve"},
		{Year: 1990, Category: "best film", Winner: "Dances"},
	}
	got := BestPictureList(awards)
	assert.Equal(t, BestPictures{
		{Year: 1950, Title: "Eve"},
		{Year: 1990, Title: "Dances"},
		{Year: 1991, Title: "Silence"},
	}, got)
	assert.Equal(t, []string{"1990", "Dances"}, got.Rows()[1])
}

func TestAlbumStats(t *testing.T) {
	us := clean.ChartAlbums{
		{Year: 1985, Album: "Like a Virgin", Artist: "Madonna", WeeksAtOne: 3},
		{Year: 1985, Album: "No Jacket", Artist: "Phil Collins", WeeksAtOne: 7},
		{Year: 1986, Album: "True Blue", Artist: "Madonna", WeeksAtOne: 5},
	}
	global := clean.Albums{
		{Year: 1995, Album: "Jagged", Artist: "Alanis"},
		{Year: 1996, Album: "Jagged", Artist: "Alanis"},
		{Year: 1996, Album: "Falling", Artist: "Celine"},
	}
	s := AlbumStats(us, global)

	require.Len(t, s.TopUSAlbums, 3)
	assert.Equal(t, "No Jacket", s.TopUSAlbums[0].Album)
	assert.Equal(t, "Like a Virgin", s.TopUSAlbums[2].Album)

	assert.Equal(t, ArtistWeeksRanking{
		{Artist: "Madonna", TotalWeeks: 8},
		{Artist: "Phil Collins", TotalWeeks: 7},
	}, s.TopUSArtists)
	assert.Equal(t, ArtistCountRanking{
		{Artist: "Alanis", Count: 2},
		{Artist: "Celine", Count: 1},
	}, s.TopGlobalArtists)

	// Input order is left untouched.
	assert.Equal(t, "Like a Virgin", us[0].Album)
}
