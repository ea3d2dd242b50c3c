package clean

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/rewind/internal/schema"
)

// Credit separators, applied in order; the artist name is whatever precedes
// the first one found at each step.
var creditSplits = []*regexp.Regexp{
	regexp.MustCompile(`,`),
	regexp.MustCompile(`\s*&\s*`),
	regexp.MustCompile(`\bwith\b`),
	regexp.MustCompile(`\bfeaturing\b`),
	regexp.MustCompile(`\band\b`),
	regexp.MustCompile(`\bor\b`),
}

var featureRe = regexp.MustCompile(`(?::|&|,|\band\b|\bor\b|\bwith\b|\bfeaturing\b|\bfeat\.?\b|\bft\.?\b)`)

// LeadArtist strips collaborators from a credit line.
func LeadArtist(credit string) string {
	s := credit
	for _, re := range creditSplits {
		if loc := re.FindStringIndex(s); loc != nil {
			s = s[:loc[0]]
		}
	}
	return strings.TrimSpace(s)
}

// Hit is one year-end single.
type Hit struct {
	Year  int
	Rank  int
	Title string
	// MainArtist is the lower-cased lead artist used for grouping.
	MainArtist string
	// DisplayArtist keeps the original casing.
	DisplayArtist string
	IsFeature     bool
}

// Hits is a cleaned year-end singles table.
type Hits []Hit

// CleanHits removes quotes from titles, splits the lead artist out of the
// credit and flags collaborations.
func CleanHits(recs []schema.Record) Hits {
	out := make(Hits, 0, len(recs))
	for _, r := range recs {
		credit := get(r, "artist")
		lower := strings.ToLower(credit)
		out = append(out, Hit{
			Year:          r.Year,
			Rank:          Rank(get(r, "rank")),
			Title:         strings.ReplaceAll(r.Get("title").String(), `"`, ""),
			MainArtist:    LeadArtist(lower),
			DisplayArtist: LeadArtist(credit),
			IsFeature:     featureRe.MatchString(lower),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}

func (Hits) Header() []string {
	return []string{"rank", "title", "main_artist", "display_artist", "is_feature", "year"}
}

func (hs Hits) Rows() [][]string {
	rows := make([][]string, len(hs))
	for i, h := range hs {
		feature := "0"
		if h.IsFeature {
			feature = "1"
		}
		rows[i] = []string{strconv.Itoa(h.Rank), h.Title, h.MainArtist, h.DisplayArtist, feature, strconv.Itoa(h.Year)}
	}
	return rows
}

const dagger = "†"

// ChartAlbum is one album's run at number one during a year.
type ChartAlbum struct {
	Year       int
	Rank       int
	Album      string
	Artist     string
	WeeksAtOne int
	// Best marks the year's best-performing album (dagger in the source).
	Best     bool
	MaxSales float64
}

// ChartAlbums is a cleaned number-one albums table.
type ChartAlbums []ChartAlbum

// CleanChartAlbums groups weekly number-one entries by (year, album,
// artist). Weeks are counted from entries carrying a date. Within a year the
// dagger album ranks first, then more weeks, then higher sales.
func CleanChartAlbums(recs []schema.Record) ChartAlbums {
	type key struct {
		year          int
		album, artist string
	}
	index := map[key]int{}
	var out ChartAlbums
	for _, r := range recs {
		album := r.Get("album").String()
		best := strings.Contains(album, dagger)
		k := key{
			year:   r.Year,
			album:  strings.TrimSpace(strings.ReplaceAll(album, dagger, "")),
			artist: get(r, "artist"),
		}
		sales := chartSales(r.Get("sales").String())
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, ChartAlbum{Year: k.year, Album: k.album, Artist: k.artist, MaxSales: math.NaN()})
		}
		a := &out[i]
		if r.Get("date").Valid {
			a.WeeksAtOne++
		}
		a.Best = a.Best || best
		if !math.IsNaN(sales) && (math.IsNaN(a.MaxSales) || sales > a.MaxSales) {
			a.MaxSales = sales
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Best != b.Best {
			return a.Best
		}
		if a.WeeksAtOne != b.WeeksAtOne {
			return a.WeeksAtOne > b.WeeksAtOne
		}
		return salesKey(a.MaxSales) > salesKey(b.MaxSales)
	})
	rank, year := 0, 0
	for i := range out {
		if out[i].Year != year {
			year, rank = out[i].Year, 0
		}
		rank++
		out[i].Rank = rank
	}
	return out
}

// chartSales reads a sales figure; a missing figure counts as zero.
func chartSales(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// salesKey orders NaN last when sorting by descending sales.
func salesKey(f float64) float64 {
	if math.IsNaN(f) {
		return math.Inf(-1)
	}
	return f
}

func (ChartAlbums) Header() []string {
	return []string{"rank", "album", "artist", "year", "weeks_at_one"}
}

func (cs ChartAlbums) Rows() [][]string {
	rows := make([][]string, len(cs))
	for i, c := range cs {
		rows[i] = []string{strconv.Itoa(c.Rank), c.Album, c.Artist, strconv.Itoa(c.Year), strconv.Itoa(c.WeeksAtOne)}
	}
	return rows
}
