package analytics

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/hyperifyio/rewind/internal/clean"
)

// ArtistWeeks totals weeks at number one per artist.
type ArtistWeeks struct {
	Artist     string
	TotalWeeks int
}

// ArtistWeeksRanking is a top-N table of ArtistWeeks.
type ArtistWeeksRanking []ArtistWeeks

func (ArtistWeeksRanking) Header() []string { return []string{"artist", "total_weeks_at_one"} }

func (as ArtistWeeksRanking) Rows() [][]string {
	rows := make([][]string, len(as))
	for i, a := range as {
		rows[i] = []string{a.Artist, strconv.Itoa(a.TotalWeeks)}
	}
	return rows
}

// ArtistCount counts appearances in best-of-year lists.
type ArtistCount struct {
	Artist string
	Count  int
}

// ArtistCountRanking is a top-N table of ArtistCount.
type ArtistCountRanking []ArtistCount

func (ArtistCountRanking) Header() []string { return []string{"artist", "count"} }

func (as ArtistCountRanking) Rows() [][]string {
	rows := make([][]string, len(as))
	for i, a := range as {
		rows[i] = []string{a.Artist, strconv.Itoa(a.Count)}
	}
	return rows
}

// AlbumSummary bundles the album rankings.
type AlbumSummary struct {
	// TopUSAlbums are the 20 longest runs at number one.
	TopUSAlbums clean.ChartAlbums
	// TopUSArtists are the 10 artists with most weeks at number one.
	TopUSArtists ArtistWeeksRanking
	// TopGlobalArtists are the 10 artists appearing most in best-selling lists.
	TopGlobalArtists ArtistCountRanking
}

// AlbumStats ranks albums and artists across all years.
func AlbumStats(us clean.ChartAlbums, global clean.Albums) AlbumSummary {
	var s AlbumSummary

	byWeeks := append(clean.ChartAlbums(nil), us...)
	sort.SliceStable(byWeeks, func(i, j int) bool { return byWeeks[i].WeeksAtOne > byWeeks[j].WeeksAtOne })
	s.TopUSAlbums = head(byWeeks, 20)

	weeks := map[string][]float64{}
	for _, a := range us {
		weeks[a.Artist] = append(weeks[a.Artist], float64(a.WeeksAtOne))
	}
	for artist, w := range weeks {
		s.TopUSArtists = append(s.TopUSArtists, ArtistWeeks{Artist: artist, TotalWeeks: int(floats.Sum(w))})
	}
	sort.Slice(s.TopUSArtists, func(i, j int) bool {
		a, b := s.TopUSArtists[i], s.TopUSArtists[j]
		if a.TotalWeeks != b.TotalWeeks {
			return a.TotalWeeks > b.TotalWeeks
		}
		return a.Artist < b.Artist
	})
	s.TopUSArtists = head(s.TopUSArtists, 10)

	counts := map[string]int{}
	for _, a := range global {
		counts[a.Artist]++
	}
	for artist, c := range counts {
		s.TopGlobalArtists = append(s.TopGlobalArtists, ArtistCount{Artist: artist, Count: c})
	}
	sort.Slice(s.TopGlobalArtists, func(i, j int) bool {
		a, b := s.TopGlobalArtists[i], s.TopGlobalArtists[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Artist < b.Artist
	})
	s.TopGlobalArtists = head(s.TopGlobalArtists, 10)
	return s
}
