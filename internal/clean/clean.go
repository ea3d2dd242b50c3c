// Package clean turns raw canonical records into typed rows: numbers are
// parsed, decorations stripped and topic-specific filters applied. Values
// that cannot be parsed become NaN (or 0 for ranks) rather than errors.
package clean

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/rewind/internal/schema"
)

var (
	footnoteRe = regexp.MustCompile(`\[.*?\]`)
	leadingInt = regexp.MustCompile(`^\s*(\d+)`)
)

// Rank reads the leading integer of s ("1", "2=", "3[a]"); 0 when absent.
func Rank(s string) int {
	m := leadingInt.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Money parses a currency figure such as "$1,234,567[3]". It returns NaN
// when nothing numeric remains.
func Money(s string) float64 {
	s = footnoteRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func get(r schema.Record, f string) string {
	return strings.TrimSpace(r.Get(f).String())
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Film is one highest-grossing entry.
type Film struct {
	Year        int
	Rank        int
	Title       string
	Distributor string
	// Gross is NaN when the source figure could not be read.
	Gross float64
}

// Films is a cleaned box-office table.
type Films []Film

// CleanFilms parses gross figures and sorts by year then rank.
func CleanFilms(recs []schema.Record) Films {
	out := make(Films, 0, len(recs))
	for _, r := range recs {
		out = append(out, Film{
			Year:        r.Year,
			Rank:        Rank(get(r, "rank")),
			Title:       get(r, "title"),
			Distributor: get(r, "distributor"),
			Gross:       Money(r.Get("gross").String()),
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

func (Films) Header() []string { return []string{"rank", "title", "distributor", "gross", "year"} }

func (fs Films) Rows() [][]string {
	rows := make([][]string, len(fs))
	for i, f := range fs {
		rows[i] = []string{strconv.Itoa(f.Rank), f.Title, f.Distributor, formatFloat(f.Gross), strconv.Itoa(f.Year)}
	}
	return rows
}

// Award is one category winner.
type Award struct {
	Year     int
	Category string
	Winner   string
}

// Awards is a cleaned awards table.
type Awards []Award

// CleanAwards drops organisation header rows and rows without a winner,
// lower-cases categories and sorts by category then year.
func CleanAwards(recs []schema.Record) Awards {
	out := make(Awards, 0, len(recs))
	for _, r := range recs {
		category := get(r, "category")
		winner := r.Get("winner").String()
		if strings.Contains(strings.ToLower(category), "category/") || winner == "—" {
			continue
		}
		out = append(out, Award{Year: r.Year, Category: strings.ToLower(category), Winner: winner})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Year < out[j].Year
	})
	return out
}

func (Awards) Header() []string { return []string{"category", "year", "winner"} }

func (as Awards) Rows() [][]string {
	rows := make([][]string, len(as))
	for i, a := range as {
		rows[i] = []string{a.Category, strconv.Itoa(a.Year), a.Winner}
	}
	return rows
}

// Album is one entry of a best-selling albums list.
type Album struct {
	Year   int
	Rank   int
	Album  string
	Artist string
}

// Albums is a cleaned best-selling albums table.
type Albums []Album

// CleanAlbums trims names and sorts by year then rank.
func CleanAlbums(recs []schema.Record) Albums {
	out := make(Albums, 0, len(recs))
	for _, r := range recs {
		out = append(out, Album{Year: r.Year, Rank: Rank(get(r, "rank")), Album: get(r, "album"), Artist: get(r, "artist")})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}

func (Albums) Header() []string { return []string{"rank", "album", "artist", "year"} }

func (as Albums) Rows() [][]string {
	rows := make([][]string, len(as))
	for i, a := range as {
		rows[i] = []string{strconv.Itoa(a.Rank), a.Album, a.Artist, strconv.Itoa(a.Year)}
	}
	return rows
}
