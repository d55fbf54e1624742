package finn

import (
	"strings"
	"unicode"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

// bundleKeywords mark ads selling several games at once. Matching is on the
// space-padded lowercase title, so " spill " only hits the bare word.
var bundleKeywords = []string{
	"bundle",
	"collection",
	"samling",
	"pakke",
	"diverse",
	"flere",
	" spill ",
	"til salgs",
	"selges",
	"til sals",
}

var stopwords = map[string]struct{}{
	"the":  {},
	"of":   {},
	"and":  {},
	"for":  {},
	"with": {},
}

const minTitleLength = 10

// FilterListings drops bundles, titles too short to trust, and ads sharing
// no significant word with gameName. Input order is kept.
func FilterListings(listings []models.SearchResult, gameName string) []models.SearchResult {
	words := significantWords(gameName)

	out := make([]models.SearchResult, 0, len(listings))
	for _, l := range listings {
		title := strings.ToLower(strings.TrimSpace(l.DisplayName))
		if len([]rune(title)) < minTitleLength {
			continue
		}
		if isBundle(title) {
			continue
		}
		if len(words) > 0 && !mentionsAny(title, words) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func isBundle(title string) bool {
	padded := " " + title + " "
	for _, kw := range bundleKeywords {
		if strings.Contains(padded, kw) {
			return true
		}
	}
	return false
}

func significantWords(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, f := range fields {
		if len([]rune(f)) <= 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

func mentionsAny(title string, words []string) bool {
	for _, w := range words {
		if strings.Contains(title, w) {
			return true
		}
	}
	return false
}
