package topics

const wikiBase = "https://en.wikipedia.org/wiki/"

// Built-in topic names.
const (
	FilmsGross      = "films-gross"
	Awards          = "awards"
	TopHits         = "top-hits"
	AlbumsWiki      = "albums-wiki"
	AlbumsBillboard = "albums-billboard"
)

// Builtin returns the default topic definitions.
func Builtin() []Topic {
	return []Topic{
		{
			Name:     FilmsGross,
			Page:     "in_film",
			URL:      wikiBase + "{year}_in_film",
			Keywords: []string{"highest-grossing"},
			Fields:   []string{"rank", "title", "distributor", "gross"},
			Rules: []Rule{
				{Field: "rank", Contains: []string{"rank"}},
				{Field: "title", Contains: []string{"title"}},
				{Field: "distributor", Contains: []string{"distributor", "studio"}},
				{Field: "gross", Contains: []string{"box", "gross"}},
			},
			Positional:  []string{"rank", "title", "distributor", "gross"},
			ForwardFill: []string{"rank", "title", "distributor", "gross"},
		},
		{
			Name:      Awards,
			Page:      "in_film",
			URL:       wikiBase + "{year}_in_film",
			Keywords:  []string{"awards"},
			Fields:    []string{"category", "winner"},
			LeadField: "category",
			Rules: []Rule{
				{Field: "winner", Contains: []string{"academy"}},
			},
			Require:     []string{"winner"},
			AllTables:   true,
			ForwardFill: []string{"category", "winner"},
		},
		{
			Name:     TopHits,
			Page:     "hot_100",
			URL:      wikiBase + "Billboard_Year-End_Hot_100_singles_of_{year}",
			Keywords: []string{"year-end list", "list"},
			Fields:   []string{"rank", "title", "artist"},
			Rules: []Rule{
				{Field: "rank", Contains: []string{"no.", "rank", "pos", "#"}},
				{Field: "title", Contains: []string{"title", "song", "single"}},
				{Field: "artist", Contains: []string{"artist"}},
			},
			Positional:  []string{"rank", "title", "artist"},
			ForwardFill: []string{"rank"},
		},
		{
			Name:     AlbumsWiki,
			Page:     "in_music",
			URL:      wikiBase + "{year}_in_music",
			Keywords: []string{"best-selling albums"},
			Fields:   []string{"rank", "album", "artist"},
			Rules: []Rule{
				{Field: "rank", Contains: []string{"rank", "no.", "pos"}},
				{Field: "album", Contains: []string{"album", "title"}},
				{Field: "artist", Contains: []string{"artist"}},
			},
			Positional:     []string{"rank", "album", "artist"},
			ListFallback:   true,
			ListRankField:  "rank",
			ListFields:     []string{"album", "artist"},
			ListSeparators: []string{"–", "—", " - "},
		},
		{
			Name:     AlbumsBillboard,
			Page:     "billboard_200",
			URL:      wikiBase + "List_of_Billboard_200_number-one_albums_of_{year}",
			Keywords: []string{"chart history", "number-one albums"},
			Fields:   []string{"date", "album", "artist", "sales"},
			Rules: []Rule{
				{Field: "date", Contains: []string{"date", "issue"}},
				{Field: "album", Contains: []string{"album"}},
				{Field: "artist", Contains: []string{"artist"}},
				{Field: "sales", Contains: []string{"sales"}},
			},
			Positional:  []string{"date", "album", "artist", "sales"},
			ForwardFill: []string{"album", "artist"},
		},
	}
}

// Defaults returns a registry holding the built-in topics.
func Defaults() *Registry {
	return NewRegistry(Builtin()...)
}
