package pricecharting

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper"
	"github.com/jumpingmushroom/FlipStash-sub000/taxonomy"
)

// PageKind is what a loaded catalog page turned out to be.
type PageKind int

const (
	PageEmpty PageKind = iota
	PageDetail
	PageListing
)

func (k PageKind) String() string {
	switch k {
	case PageDetail:
		return "detail"
	case PageListing:
		return "listing"
	default:
		return "empty"
	}
}

const gameLinkSelector = `a[href*="/game/"]`

// tableStrategy is one step of a selector cascade: the first selector whose
// match passes valid is used.
type tableStrategy struct {
	selector string
	valid    func(*goquery.Selection) bool
}

func hasHeader(t *goquery.Selection) bool {
	return t.Find("th").Length() > 0
}

func hasGameLink(t *goquery.Selection) bool {
	return t.Find(gameLinkSelector).Length() > 0
}

var priceTableStrategies = []tableStrategy{
	{"table#price_data", hasHeader},
	{"#price_data table", hasHeader},
	{"table#games_table", hasGameLink},
	{"table.hoverable-rows", hasGameLink},
	{"table", hasGameLink},
}

var listingTableStrategies = []tableStrategy{
	{"table#games_table", hasGameLink},
	{"table.hoverable-rows", hasGameLink},
	{"table", hasGameLink},
}

func findTable(doc *goquery.Document, strategies []tableStrategy) *goquery.Selection {
	for _, st := range strategies {
		var found *goquery.Selection
		doc.Find(st.selector).EachWithBreak(func(_ int, t *goquery.Selection) bool {
			if st.valid(t) {
				found = t
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// labelSynonyms widens a condition label to the short headers listing tables use.
var labelSynonyms = map[string][]string{
	"complete": {"complete", "cib"},
	"new":      {"new", "sealed"},
	"loose":    {"loose", "used"},
}

func headerCells(table *goquery.Selection) *goquery.Selection {
	if th := table.Find("thead tr").First().Children(); th.Length() > 0 {
		return th
	}
	return table.Find("tr").First().Children()
}

// headerIndex finds the column for label: exact match first, then substring,
// then any of the fallback words. It returns -1 when nothing matches.
func headerIndex(table *goquery.Selection, label string, fallbacks []string) int {
	var headers []string
	headerCells(table).Each(func(_ int, c *goquery.Selection) {
		headers = append(headers, strings.ToLower(scraper.NormaliseText(c.Text())))
	})

	want := strings.ToLower(label)
	for i, h := range headers {
		if h == want {
			return i
		}
	}
	terms := labelSynonyms[want]
	if len(terms) == 0 {
		terms = []string{want}
	}
	for _, term := range terms {
		for i, h := range headers {
			if strings.Contains(h, term) {
				return i
			}
		}
	}
	for _, fb := range fallbacks {
		for i, h := range headers {
			if strings.Contains(h, fb) {
				return i
			}
		}
	}
	return -1
}

func bodyRows(table *goquery.Selection) *goquery.Selection {
	if rows := table.Find("tbody tr"); rows.Length() > 0 {
		return rows
	}
	rows := table.Find("tr")
	if rows.Length() <= 1 {
		return rows.Slice(0, 0)
	}
	return rows.Slice(1, rows.Length())
}

func cellPrice(row *goquery.Selection, idx int) (float64, string, bool) {
	cells := row.Children().Filter("td,th")
	if idx < 0 || idx >= cells.Length() {
		return 0, "", false
	}
	raw := scraper.NormaliseText(cells.Eq(idx).Text())
	v, ok := scraper.ParseDollarPrice(raw)
	return v, raw, ok
}

// ExtractSingleValue returns the price for the condition column label from
// the first body row that has a parsable amount, in document order.
func ExtractSingleValue(doc *goquery.Document, label string) *float64 {
	table := findTable(doc, priceTableStrategies)
	if table == nil {
		return nil
	}
	idx := headerIndex(table, label, []string{"price", "value"})
	if idx < 0 {
		return nil
	}

	var found *float64
	bodyRows(table).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if v, _, ok := cellPrice(row, idx); ok {
			found = models.Float(v)
			return false
		}
		return true
	})
	return found
}

// ExtractListings reads every product row of a search result table.
// Rows without a parsable price are kept with a nil PreviewPrice.
func ExtractListings(doc *goquery.Document, label, baseURL string) []models.SearchResult {
	table := findTable(doc, listingTableStrategies)
	if table == nil {
		return nil
	}
	idx := headerIndex(table, label, []string{"loose", "complete", "price", "value"})

	var out []models.SearchResult
	seen := make(map[string]struct{})
	bodyRows(table).Each(func(_ int, row *goquery.Selection) {
		link := row.Find(gameLinkSelector).First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		abs := absoluteURL(baseURL, href)
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		res := models.SearchResult{
			Source:        models.SourcePriceCharting,
			DisplayName:   scraper.NormaliseText(link.Text()),
			PlatformLabel: scraper.NormaliseText(link.Closest("td").Next().Text()),
			SourceURL:     abs,
		}
		v, raw, ok := cellPrice(row, idx)
		res.RawPriceText = raw
		if ok {
			res.PreviewPrice = models.Float(v)
		}
		out = append(out, res)
	})
	return out
}

// ExtractDetailResult describes a product page as a single search result.
func ExtractDetailResult(doc *goquery.Document, label, pageURL string) models.SearchResult {
	title := doc.Find("h1#product_name").First()
	platform := scraper.NormaliseText(title.Find("a").First().Text())
	name := scraper.NormaliseText(title.Clone().Children().Remove().End().Text())
	if name == "" {
		name = scraper.NormaliseText(doc.Find("h1").First().Text())
	}
	return models.SearchResult{
		Source:        models.SourcePriceCharting,
		DisplayName:   name,
		PlatformLabel: platform,
		SourceURL:     pageURL,
		PreviewPrice:  ExtractSingleValue(doc, label),
	}
}

// ClassifyPage tells a product page from a search listing.
func ClassifyPage(doc *goquery.Document) PageKind {
	if doc.Find("h1#product_name").Length() > 0 || doc.Find("#price_data").Length() > 0 {
		return PageDetail
	}
	if t := findTable(doc, listingTableStrategies); t != nil && t.Find(gameLinkSelector).Length() > 0 {
		return PageListing
	}
	return PageEmpty
}

// BestMatch picks the listing row to follow for q: the highest
// platform+region score, ties going to the earlier row. When no row scores
// above the threshold the first row is used.
func BestMatch(results []models.SearchResult, q models.PriceQuery) int {
	if len(results) == 0 {
		return -1
	}

	prefix := strings.ToLower(taxonomy.RegionPrefix(q.Region))
	want := strings.ToLower(taxonomy.NormalizePlatform(q.Platform))
	if prefix != "" {
		want = prefix + " " + want
	}
	name := strings.ToLower(q.GameName)

	best, bestScore := 0, -1.0
	for i, r := range results {
		label := strings.ToLower(r.PlatformLabel)
		score := matchr.JaroWinkler(label, want, false)
		score += 0.25 * matchr.JaroWinkler(strings.ToLower(r.DisplayName), name, false)

		regional := strings.HasPrefix(label, "pal ") || strings.HasPrefix(label, "jp ")
		switch {
		case prefix != "" && strings.HasPrefix(label, prefix+" "):
			score += 0.5
		case prefix == "" && regional:
			score -= 0.5
		}

		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore < 0.8 {
		return 0
	}
	return best
}

func absoluteURL(baseURL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
