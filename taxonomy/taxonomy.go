// Package taxonomy maps free-text platform, region and condition values onto
// the vocabulary each pricing site expects. Nothing here fails: unknown input
// degrades to a best-effort default.
package taxonomy

import (
	"strings"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

// platformAliases maps lowercase user spellings to canonical platform labels.
var platformAliases = map[string]string{
	"ps1":         "PlayStation",
	"psx":         "PlayStation",
	"ps one":      "PlayStation",
	"psone":       "PlayStation",
	"playstation": "PlayStation",
	"ps2":         "PlayStation 2",
	"ps3":         "PlayStation 3",
	"ps4":         "PlayStation 4",
	"ps5":         "PlayStation 5",
	"psp":         "PlayStation Portable",
	"vita":        "PlayStation Vita",
	"ps vita":     "PlayStation Vita",
	"psvita":      "PlayStation Vita",

	"nes":               "Nintendo Entertainment System",
	"famicom":           "Nintendo Entertainment System",
	"snes":              "Super Nintendo Entertainment System",
	"super nintendo":    "Super Nintendo Entertainment System",
	"super famicom":     "Super Nintendo Entertainment System",
	"n64":               "Nintendo 64",
	"gc":                "GameCube",
	"ngc":               "GameCube",
	"gamecube":          "GameCube",
	"nintendo gamecube": "GameCube",
	"wii":               "Wii",
	"wiiu":              "Wii U",
	"wii u":             "Wii U",
	"switch":            "Nintendo Switch",
	"nsw":               "Nintendo Switch",
	"gb":                "Game Boy",
	"gameboy":           "Game Boy",
	"gbc":               "Game Boy Color",
	"gba":               "Game Boy Advance",
	"ds":                "Nintendo DS",
	"nds":               "Nintendo DS",
	"3ds":               "Nintendo 3DS",

	"xbox":          "Xbox",
	"original xbox": "Xbox",
	"xbox 360":      "Xbox 360",
	"x360":          "Xbox 360",
	"360":           "Xbox 360",
	"xbox one":      "Xbox One",
	"xb1":           "Xbox One",
	"xbone":         "Xbox One",
	"xbox series x": "Xbox Series X",
	"xbox series":   "Xbox Series X",
	"xsx":           "Xbox Series X",

	"genesis":       "Sega Genesis",
	"mega drive":    "Sega Mega Drive",
	"megadrive":     "Sega Mega Drive",
	"master system": "Sega Master System",
	"sms":           "Sega Master System",
	"saturn":        "Sega Saturn",
	"dreamcast":     "Sega Dreamcast",
	"dc":            "Sega Dreamcast",
	"game gear":     "Sega Game Gear",
}

// finnTerms are the short platform tokens sellers use in FINN ad titles.
var finnTerms = map[string]string{
	"PlayStation":                         "ps1",
	"PlayStation 2":                       "ps2",
	"PlayStation 3":                       "ps3",
	"PlayStation 4":                       "ps4",
	"PlayStation 5":                       "ps5",
	"PlayStation Portable":                "psp",
	"PlayStation Vita":                    "ps vita",
	"Nintendo Entertainment System":       "nes",
	"Super Nintendo Entertainment System": "snes",
	"Nintendo 64":                         "n64",
	"GameCube":                            "gamecube",
	"Wii":                                 "wii",
	"Wii U":                               "wii u",
	"Nintendo Switch":                     "switch",
	"Game Boy":                            "game boy",
	"Game Boy Color":                      "game boy color",
	"Game Boy Advance":                    "gba",
	"Nintendo DS":                         "nintendo ds",
	"Nintendo 3DS":                        "3ds",
	"Xbox":                                "xbox",
	"Xbox 360":                            "xbox 360",
	"Xbox One":                            "xbox one",
	"Xbox Series X":                       "xbox series x",
	"Sega Mega Drive":                     "mega drive",
	"Sega Genesis":                        "mega drive",
	"Sega Master System":                  "master system",
	"Sega Saturn":                         "saturn",
	"Sega Dreamcast":                      "dreamcast",
}

// NormalizePlatform returns the canonical label for raw, or raw unchanged
// (trimmed) when no alias is known. Callers must be ready for the result not
// to match any site vocabulary.
func NormalizePlatform(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := platformAliases[key]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// RegionPrefix is the catalog namespace prefix PriceCharting uses for a region.
// An empty prefix is the default (US) namespace.
func RegionPrefix(region models.Region) string {
	switch region {
	case models.RegionPAL:
		return "PAL"
	case models.RegionNTSCJ:
		return "JP"
	default:
		return ""
	}
}

// ConditionColumnLabel names the price column that holds a condition's value.
// Unknown or empty conditions fall back to Complete.
func ConditionColumnLabel(condition models.Condition) string {
	switch condition {
	case models.ConditionSealed:
		return "New"
	case models.ConditionCIB:
		return "Complete"
	case models.ConditionLoose:
		return "Loose"
	case models.ConditionBoxOnly:
		return "Box Only"
	case models.ConditionManualOnly:
		return "Manual Only"
	default:
		return "Complete"
	}
}

// FinnSearchTerm is the platform token appended to FINN search queries.
func FinnSearchTerm(platform string) string {
	canonical := NormalizePlatform(platform)
	if term, ok := finnTerms[canonical]; ok {
		return term
	}
	return strings.ToLower(canonical)
}

// ParseRegion maps loose user input onto a Region. Unknown input is RegionOther.
func ParseRegion(raw string) models.Region {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PAL", "EU", "EUR":
		return models.RegionPAL
	case "NTSC", "NTSC-U", "US", "USA":
		return models.RegionNTSC
	case "NTSC-J", "JP", "JPN", "JAPAN":
		return models.RegionNTSCJ
	case "", "NONE":
		return models.RegionNone
	default:
		return models.RegionOther
	}
}

// ParseCondition maps loose user input onto a Condition, defaulting to CIB.
func ParseCondition(raw string) models.Condition {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sealed", "new":
		return models.ConditionSealed
	case "loose", "cart", "disc only":
		return models.ConditionLoose
	case "box only", "boxonly":
		return models.ConditionBoxOnly
	case "manual only", "manualonly":
		return models.ConditionManualOnly
	default:
		return models.ConditionCIB
	}
}
