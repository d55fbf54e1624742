package finn

import (
	"net/url"
	"strings"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/taxonomy"
)

const searchPath = "/bap/forsale/search.html"

// BuildSearchQuery is the free-text query sent to the marketplace: the game
// name followed by the short platform token sellers use.
func BuildSearchQuery(q models.PriceQuery) string {
	name := strings.TrimSpace(q.GameName)
	term := taxonomy.FinnSearchTerm(q.Platform)
	if term == "" {
		return name
	}
	return name + " " + term
}

// BuildSearchURL returns the marketplace search URL for q.
func BuildSearchURL(baseURL string, q models.PriceQuery) string {
	v := url.Values{}
	v.Set("q", BuildSearchQuery(q))
	return strings.TrimRight(baseURL, "/") + searchPath + "?" + v.Encode()
}

// IsItemURL reports whether rawURL points at a single ad rather than a search.
func IsItemURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Query().Get("finnkode") != "" || strings.Contains(u.Path, "/item/")
}
