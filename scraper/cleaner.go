// Package scraper holds what both site scrapers share: price-text cleaning
// and the Harvest they hand back to the aggregator.
package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

var (
	// dollarRegexp captures the numeric token after a "$" marker
	dollarRegexp = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	// kroneRegexp captures "<number> kr". Thousands must come in groups of
	// three after a space, nbsp or dot.
	kroneRegexp = regexp.MustCompile(`(?i)\b(\d{1,3}(?:[ \x{00a0}\x{202f}.]\d{3})+|\d+)(?:,-)?\s*kr(?:oner)?\b`)
	// groupSepRegexp finds the first thousands separator of a grouped amount
	groupSepRegexp = regexp.MustCompile(`[ \x{00a0}\x{202f}.]`)
)

// priceLeadWords may directly precede an amount without being part of a title.
var priceLeadWords = map[string]struct{}{
	"pris": {}, "kun": {}, "for": {}, "nå": {}, "fastpris": {}, "selges": {}, "ca": {},
}

// MaxKronePrice bounds marketplace prices; anything at or above it is junk.
const MaxKronePrice = 100000

// Harvest is the raw outcome of one site fetch, before aggregation.
// Value is set when the page held a single exact price. Listings carries
// already-filtered candidates whose preview prices are to be reduced.
type Harvest struct {
	Source   models.Source
	URL      string
	Value    *float64
	Listings []models.SearchResult
}

// Empty reports whether the harvest holds nothing usable.
func (h Harvest) Empty() bool {
	if h.Value != nil {
		return false
	}
	for _, l := range h.Listings {
		if l.PreviewPrice != nil {
			return false
		}
	}
	return true
}

// ParseDollarPrice extracts the first "$1,234.56" style amount.
func ParseDollarPrice(raw string) (float64, bool) {
	match := dollarRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ParseKronePrice extracts the first "1 250 kr" style amount, rejecting
// values outside (0, MaxKronePrice). A grouped amount directly after a word,
// as in "Mario Kart 8 350 kr", is read as a title number followed by the price.
func ParseKronePrice(raw string) (float64, bool) {
	for _, loc := range kroneRegexp.FindAllStringSubmatchIndex(raw, -1) {
		number := raw[loc[2]:loc[3]]
		if sep := groupSepRegexp.FindStringIndex(number); sep != nil && followsTitleWord(raw[:loc[2]]) {
			number = number[sep[1]:]
		}
		v, err := strconv.ParseFloat(digitsOnly(number), 64)
		if err != nil {
			continue
		}
		if v > 0 && v < MaxKronePrice {
			return v, true
		}
	}
	return 0, false
}

// followsTitleWord reports whether prefix ends in an alphabetic word that is
// not one of priceLeadWords.
func followsTitleWord(prefix string) bool {
	fields := strings.Fields(prefix)
	if len(fields) == 0 || !unicode.IsSpace(lastRune(prefix)) {
		return false
	}
	word := strings.ToLower(fields[len(fields)-1])
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	_, lead := priceLeadWords[word]
	return !lead
}

func lastRune(s string) rune {
	r := []rune(s)
	return r[len(r)-1]
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// NormaliseText strips leading/trailing whitespace and collapses internal whitespace.
func NormaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
