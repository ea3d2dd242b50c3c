// Package analytics aggregates cleaned tables into the summaries shown in
// reports: per-year totals, artist rankings and award timelines.
package analytics

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hyperifyio/rewind/internal/clean"
)

// YearStat merges box office and singles figures for one year.
type YearStat struct {
	Year int
	// BoxOffice and MeanGross are NaN when the year has no readable gross.
	BoxOffice   float64
	MeanGross   float64
	Films       int
	UniqueSongs int
}

// YearStats is the per-year summary table.
type YearStats []YearStat

// YearlyStats sums gross per year and counts distinct song titles per year,
// over the union of years present in either table.
func YearlyStats(films clean.Films, hits clean.Hits) YearStats {
	gross := map[int][]float64{}
	filmCount := map[int]int{}
	for _, f := range films {
		filmCount[f.Year]++
		if !math.IsNaN(f.Gross) {
			gross[f.Year] = append(gross[f.Year], f.Gross)
		}
	}
	songs := map[int]map[string]bool{}
	for _, h := range hits {
		if h.Title == "" {
			continue
		}
		if songs[h.Year] == nil {
			songs[h.Year] = map[string]bool{}
		}
		songs[h.Year][h.Title] = true
	}
	years := map[int]bool{}
	for y := range filmCount {
		years[y] = true
	}
	for _, h := range hits {
		years[h.Year] = true
	}
	out := make(YearStats, 0, len(years))
	for y := range years {
		s := YearStat{Year: y, BoxOffice: math.NaN(), MeanGross: math.NaN(), Films: filmCount[y], UniqueSongs: len(songs[y])}
		if g := gross[y]; len(g) > 0 {
			s.BoxOffice = floats.Sum(g)
			s.MeanGross = stat.Mean(g, nil)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func (YearStats) Header() []string {
	return []string{"year", "total_box_office", "mean_gross", "films", "unique_songs_charted"}
}

func (ys YearStats) Rows() [][]string {
	rows := make([][]string, len(ys))
	for i, y := range ys {
		rows[i] = []string{strconv.Itoa(y.Year), num(y.BoxOffice), num(y.MeanGross), strconv.Itoa(y.Films), strconv.Itoa(y.UniqueSongs)}
	}
	return rows
}

// ArtistHits counts charted singles per lead artist.
type ArtistHits struct {
	MainArtist    string
	DisplayArtist string
	TotalHits     int
}

// ArtistRanking is a top-N artist table.
type ArtistRanking []ArtistHits

// TopArtists returns the n artists with the most charted singles. The
// display name is the most frequent spelling, the alphabetically first on
// a tie.
func TopArtists(hits clean.Hits, n int) ArtistRanking {
	counts := map[string]int{}
	spellings := map[string]map[string]int{}
	for _, h := range hits {
		if h.Title == "" {
			continue
		}
		counts[h.MainArtist]++
		if spellings[h.MainArtist] == nil {
			spellings[h.MainArtist] = map[string]int{}
		}
		spellings[h.MainArtist][h.DisplayArtist]++
	}
	out := make(ArtistRanking, 0, len(counts))
	for artist, c := range counts {
		out = append(out, ArtistHits{MainArtist: artist, DisplayArtist: mode(spellings[artist]), TotalHits: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHits != out[j].TotalHits {
			return out[i].TotalHits > out[j].TotalHits
		}
		return out[i].MainArtist < out[j].MainArtist
	})
	return head(out, n)
}

func (ArtistRanking) Header() []string { return []string{"main_artist", "display_artist", "total_hits"} }

func (as ArtistRanking) Rows() [][]string {
	rows := make([][]string, len(as))
	for i, a := range as {
		rows[i] = []string{a.MainArtist, a.DisplayArtist, strconv.Itoa(a.TotalHits)}
	}
	return rows
}

// BestPictureCategories are the category names treated as the top award.
var BestPictureCategories = []string{"best film", "best picture", "best motion picture"}

// BestPicture is one year's top award winner.
type BestPicture struct {
	Year  int
	Title string
}

// BestPictures is the award timeline.
type BestPictures []BestPicture

// BestPictureList picks the top-award rows out of cleaned awards, ordered by
// year.
func BestPictureList(awards clean.Awards) BestPictures {
	want := map[string]bool{}
	for _, c := range BestPictureCategories {
		want[c] = true
	}
	var out BestPictures
	for _, a := range awards {
		if want[a.Category] {
			out = append(out, BestPicture{Year: a.Year, Title: a.Winner})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func (BestPictures) Header() []string { return []string{"year", "best_picture"} }

func (bs BestPictures) Rows() [][]string {
	rows := make([][]string, len(bs))
	for i, b := range bs {
		rows[i] = []string{strconv.Itoa(b.Year), b.Title}
	}
	return rows
}

func num(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func mode(counts map[string]int) string {
	best, bestN := "", -1
	for s, n := range counts {
		if n > bestN || (n == bestN && s < best) {
			best, bestN = s, n
		}
	}
	return best
}

func head[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
