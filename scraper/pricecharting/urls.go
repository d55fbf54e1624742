package pricecharting

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/taxonomy"
)

// consoleRule maps a normalized platform onto a catalog console path. A rule
// applies when every match token is contained in the lowercase platform and
// no exclude token is.
type consoleRule struct {
	match   []string
	exclude []string
	path    string
}

func (r consoleRule) applies(platform string) bool {
	for _, m := range r.match {
		if !strings.Contains(platform, m) {
			return false
		}
	}
	for _, x := range r.exclude {
		if strings.Contains(platform, x) {
			return false
		}
	}
	return true
}

func rule(path string, match string, exclude ...string) consoleRule {
	return consoleRule{match: []string{match}, exclude: exclude, path: path}
}

// Rules are evaluated top to bottom and the first hit wins, so specific
// tokens must come before the generic ones they contain.
var palRules = []consoleRule{
	rule("pal-playstation-5", "playstation 5"),
	rule("pal-playstation-4", "playstation 4"),
	rule("pal-playstation-3", "playstation 3"),
	rule("pal-playstation-2", "playstation 2"),
	rule("pal-psp", "playstation portable"),
	rule("pal-playstation-vita", "playstation vita"),
	rule("pal-playstation", "playstation"),
	rule("pal-xbox-series-x", "xbox series"),
	rule("pal-xbox-one", "xbox one"),
	rule("pal-xbox-360", "xbox 360"),
	rule("pal-xbox", "xbox"),
	rule("pal-super-nintendo", "super nintendo"),
	rule("pal-nes", "nintendo entertainment system", "super"),
	rule("pal-nintendo-64", "nintendo 64"),
	rule("pal-gamecube", "gamecube"),
	rule("pal-wii-u", "wii u"),
	rule("pal-wii", "wii"),
	rule("pal-nintendo-switch", "switch"),
	rule("pal-gameboy-advance", "game boy advance"),
	rule("pal-gameboy-color", "game boy color"),
	rule("pal-gameboy", "game boy"),
	rule("pal-nintendo-3ds", "3ds"),
	rule("pal-nintendo-ds", "nintendo ds"),
	rule("pal-sega-mega-drive", "mega drive"),
	rule("pal-sega-mega-drive", "genesis"),
	rule("pal-sega-master-system", "master system"),
	rule("pal-sega-saturn", "saturn"),
	rule("pal-sega-dreamcast", "dreamcast"),
	rule("pal-sega-game-gear", "game gear"),
}

var jpRules = []consoleRule{
	rule("jp-playstation-5", "playstation 5"),
	rule("jp-playstation-4", "playstation 4"),
	rule("jp-playstation-3", "playstation 3"),
	rule("jp-playstation-2", "playstation 2"),
	rule("jp-psp", "playstation portable"),
	rule("jp-playstation-vita", "playstation vita"),
	rule("jp-playstation", "playstation"),
	rule("jp-xbox-360", "xbox 360"),
	rule("jp-super-famicom", "super nintendo"),
	rule("jp-famicom", "nintendo entertainment system", "super"),
	rule("jp-nintendo-64", "nintendo 64"),
	rule("jp-gamecube", "gamecube"),
	rule("jp-wii-u", "wii u"),
	rule("jp-wii", "wii"),
	rule("jp-nintendo-switch", "switch"),
	rule("jp-gameboy-advance", "game boy advance"),
	rule("jp-gameboy-color", "game boy color"),
	rule("jp-gameboy", "game boy"),
	rule("jp-nintendo-3ds", "3ds"),
	rule("jp-nintendo-ds", "nintendo ds"),
	rule("jp-sega-mega-drive", "mega drive"),
	rule("jp-sega-mega-drive", "genesis"),
	rule("jp-sega-saturn", "saturn"),
	rule("jp-sega-dreamcast", "dreamcast"),
}

var defaultRules = []consoleRule{
	rule("playstation-5", "playstation 5"),
	rule("playstation-4", "playstation 4"),
	rule("playstation-3", "playstation 3"),
	rule("playstation-2", "playstation 2"),
	rule("psp", "playstation portable"),
	rule("playstation-vita", "playstation vita"),
	rule("playstation", "playstation"),
	rule("xbox-series-x", "xbox series"),
	rule("xbox-one", "xbox one"),
	rule("xbox-360", "xbox 360"),
	rule("xbox", "xbox"),
	rule("super-nintendo", "super nintendo"),
	rule("nes", "nintendo entertainment system", "super"),
	rule("nintendo-64", "nintendo 64"),
	rule("gamecube", "gamecube"),
	rule("wii-u", "wii u"),
	rule("wii", "wii"),
	rule("nintendo-switch", "switch"),
	rule("gameboy-advance", "game boy advance"),
	rule("gameboy-color", "game boy color"),
	rule("gameboy", "game boy"),
	rule("nintendo-3ds", "3ds"),
	rule("nintendo-ds", "nintendo ds"),
	rule("sega-genesis", "genesis"),
	rule("sega-genesis", "mega drive"),
	rule("sega-master-system", "master system"),
	rule("sega-saturn", "saturn"),
	rule("sega-dreamcast", "dreamcast"),
	rule("sega-game-gear", "game gear"),
}

// BuildConsolePath resolves the catalog console path for a platform and
// region. Region-specific rules are tried first, then the default set.
// It returns "" when nothing matches.
func BuildConsolePath(platform string, region models.Region) string {
	p := strings.ToLower(taxonomy.NormalizePlatform(platform))
	if p == "" {
		return ""
	}

	var chain [][]consoleRule
	switch taxonomy.RegionPrefix(region) {
	case "PAL":
		chain = append(chain, palRules)
	case "JP":
		chain = append(chain, jpRules)
	}
	chain = append(chain, defaultRules)

	for _, rules := range chain {
		for _, r := range rules {
			if r.applies(p) {
				return r.path
			}
		}
	}
	return ""
}

var (
	slugPunctuation = regexp.MustCompile(`[:'.!?,()\[\]]`)
	slugWhitespace  = regexp.MustCompile(`\s+`)
	slugInvalid     = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes      = regexp.MustCompile(`-{2,}`)
)

// foldAccents turns "Pokémon" into "Pokemon".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// BuildGameSlug turns a game title into the catalog's URL slug. The catalog
// leaves out the article "the", so those tokens are dropped.
func BuildGameSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(foldAccents(name)))
	s = strings.ReplaceAll(s, "&", " and ")
	s = slugPunctuation.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	tokens := strings.Split(s, "-")
	kept := tokens[:0]
	for _, tok := range tokens {
		if tok != "the" {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		return s
	}
	return strings.Join(kept, "-")
}

// BuildDirectURL derives the product page URL, or "" when the console has no
// mapping or the name yields no slug.
func BuildDirectURL(baseURL, platform string, region models.Region, name string) string {
	path := BuildConsolePath(platform, region)
	slug := BuildGameSlug(name)
	if path == "" || slug == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/game/" + path + "/" + slug
}

// BuildSearchURL is the general search used when the direct URL fails.
func BuildSearchURL(baseURL string, q models.PriceQuery) string {
	parts := []string{strings.TrimSpace(q.GameName)}
	if prefix := taxonomy.RegionPrefix(q.Region); prefix != "" {
		parts = append(parts, prefix)
	}
	if platform := taxonomy.NormalizePlatform(q.Platform); platform != "" {
		parts = append(parts, platform)
	}

	v := url.Values{}
	v.Set("type", "prices")
	v.Set("q", strings.Join(parts, " "))
	return strings.TrimRight(baseURL, "/") + "/search-products?" + v.Encode()
}
