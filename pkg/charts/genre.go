package charts

import "strings"

// Genre identifies one Shazam chart genre by its canonical value.
type Genre string

const (
	GenrePop              Genre = "pop"
	GenreHipHopRap        Genre = "hip-hop-rap"
	GenreDance            Genre = "dance"
	GenreElectronic       Genre = "electronic"
	GenreRnbSoul          Genre = "rnb-soul"
	GenreAlternative      Genre = "alternative"
	GenreRock             Genre = "rock"
	GenreLatin            Genre = "latin"
	GenreFilmTvStage      Genre = "film-tv-stage"
	GenreCountry          Genre = "country"
	GenreAfroBeats        Genre = "afro-beats"
	GenreWorldwide        Genre = "worldwide"
	GenreReggaeDanceHall  Genre = "reggae-dance-hall"
	GenreHouse            Genre = "house"
	GenreKPop             Genre = "k-pop"
	GenreFrenchPop        Genre = "french-pop"
	GenreSingerSongwriter Genre = "singer-songwriter"
	GenreRegionalMexicano Genre = "regional-mexicano"
)

// genres lists every chart genre in display order.
var genres = []Genre{
	GenrePop,
	GenreHipHopRap,
	GenreDance,
	GenreElectronic,
	GenreRnbSoul,
	GenreAlternative,
	GenreRock,
	GenreLatin,
	GenreFilmTvStage,
	GenreCountry,
	GenreAfroBeats,
	GenreWorldwide,
	GenreReggaeDanceHall,
	GenreHouse,
	GenreKPop,
	GenreFrenchPop,
	GenreSingerSongwriter,
	GenreRegionalMexicano,
}

// genresByName maps identifier spellings (upper case, underscores) to genres.
var genresByName = buildGenreNames()

// genresByValue maps canonical values to genres.
var genresByValue = buildGenreValues()

func buildGenreNames() map[string]Genre {
	byName := make(map[string]Genre, len(genres))
	for _, genre := range genres {
		byName[genre.Name()] = genre
	}
	return byName
}

func buildGenreValues() map[string]Genre {
	byValue := make(map[string]Genre, len(genres))
	for _, genre := range genres {
		byValue[string(genre)] = genre
	}
	return byValue
}

// Name returns the identifier spelling of the genre, for example
// HIP_HOP_RAP for hip-hop-rap.
func (g Genre) Name() string {
	return strings.ReplaceAll(strings.ToUpper(string(g)), "-", "_")
}

// Display returns the genre value with hyphens rendered as spaces, used in
// reply headers.
func (g Genre) Display() string {
	return strings.ReplaceAll(string(g), "-", " ")
}

// ResolveGenre resolves a raw user-supplied genre token to a known genre.
//
// The token is trimmed, upper-cased, and hyphens and spaces are replaced
// with underscores, then matched against identifier spellings. When that
// fails the normalized token is lowered with underscores turned back into
// hyphens and matched against canonical values. Both spellings of every
// genre are therefore accepted (hip-hop-rap, HIP_HOP_RAP, "hip hop rap").
func ResolveGenre(raw string) (Genre, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	if genre, ok := genresByName[normalized]; ok {
		return genre, true
	}

	value := strings.ReplaceAll(strings.ToLower(normalized), "_", "-")
	if genre, ok := genresByValue[value]; ok {
		return genre, true
	}

	return "", false
}

// GenreValues returns every canonical genre value joined with commas, used
// when reporting an unresolvable genre back to the user.
func GenreValues() string {
	values := make([]string, 0, len(genres))
	for _, genre := range genres {
		values = append(values, string(genre))
	}
	return strings.Join(values, ", ")
}
