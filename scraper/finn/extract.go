package finn

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper"
	"github.com/jumpingmushroom/FlipStash-sub000/utils"
)

// cardStrategy is one container selector of the ad card cascade.
type cardStrategy struct {
	selector string
	valid    func(*goquery.Selection) bool
}

// isAdCard keeps elements that hold both a link and a "<n> kr" amount.
func isAdCard(s *goquery.Selection) bool {
	if s.Find("a[href]").Length() == 0 {
		return false
	}
	_, ok := scraper.ParseKronePrice(scraper.NormaliseText(s.Text()))
	return ok
}

var cardStrategies = []cardStrategy{
	{"article.sf-search-ad", isAdCard},
	{`article[class*="search-ad"]`, isAdCard},
	{`div[class*="ads__unit"]`, isAdCard},
	{`[data-testid*="search-ad"]`, isAdCard},
	{"article", isAdCard},
	{"li", isAdCard},
}

var titleSelectors = []string{
	"h2 a",
	"h2",
	"h3",
	".sf-search-ad-link",
	`[class*="title"]`,
}

var priceSelectors = []string{
	`[data-testid*="price"]`,
	`[class*="price"]`,
	".font-bold",
	"span",
	"div",
	"p",
}

var linkSelectors = []string{
	"a.sf-search-ad-link",
	`a[href*="finnkode"]`,
	`a[href*="/item/"]`,
	"a[href]",
}

func findCards(doc *goquery.Document) *goquery.Selection {
	for _, st := range cardStrategies {
		cards := doc.Find(st.selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return st.valid(s)
		})
		if cards.Length() > 0 {
			return cards
		}
	}
	return nil
}

func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := scraper.NormaliseText(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstPrice scans the price selectors in order. Within one selector the
// element with the shortest text wins, so a wrapper holding the title as
// well loses to the price element inside it. The card text, minus the title,
// is the last resort.
func firstPrice(s *goquery.Selection, title string, selectors []string) (float64, string, bool) {
	for _, sel := range selectors {
		var (
			best  float64
			raw   string
			found bool
		)
		s.Find(sel).Each(func(_ int, el *goquery.Selection) {
			text := scraper.NormaliseText(el.Text())
			if found && len(text) >= len(raw) {
				return
			}
			if v, ok := scraper.ParseKronePrice(text); ok {
				best, raw, found = v, text, true
			}
		})
		if found {
			return best, raw, true
		}
	}

	raw := scraper.NormaliseText(s.Text())
	if title != "" {
		if v, ok := scraper.ParseKronePrice(strings.Replace(raw, title, "", 1)); ok {
			return v, raw, true
		}
	}
	v, ok := scraper.ParseKronePrice(raw)
	return v, raw, ok
}

// ExtractListings reads every ad card on a search page. Cards without a
// title or a usable price are dropped, as are repeats of the same ad.
func ExtractListings(doc *goquery.Document, baseURL string) []models.SearchResult {
	cards := findCards(doc)
	if cards == nil {
		return nil
	}

	seen := utils.NewURLSet()
	var out []models.SearchResult
	cards.Each(func(_ int, card *goquery.Selection) {
		var href string
		for _, sel := range linkSelectors {
			if h, ok := card.Find(sel).First().Attr("href"); ok && strings.TrimSpace(h) != "" {
				href = h
				break
			}
		}
		if href == "" {
			return
		}
		link := absoluteURL(baseURL, href)
		if !seen.Add(link) {
			return
		}

		title := firstText(card, titleSelectors)
		if title == "" {
			title = scraper.NormaliseText(card.Find("a[href]").First().Text())
		}
		price, raw, ok := firstPrice(card, title, priceSelectors)
		if title == "" || !ok {
			return
		}

		out = append(out, models.SearchResult{
			Source:       models.SourceFinn,
			DisplayName:  title,
			SourceURL:    link,
			PreviewPrice: models.Float(price),
			RawPriceText: raw,
		})
	})
	return out
}

var itemPriceSelectors = []string{
	`[data-testid="price"]`,
	`[data-testid*="price"]`,
	`[class*="price"]`,
	".u-t3",
	"h2",
	"p",
}

// ExtractSingleValue returns the asking price of a single ad page.
func ExtractSingleValue(doc *goquery.Document) *float64 {
	main := doc.Find("main").First()
	if main.Length() == 0 {
		main = doc.Selection
	}
	for _, sel := range itemPriceSelectors {
		var found *float64
		main.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if v, ok := scraper.ParseKronePrice(scraper.NormaliseText(el.Text())); ok {
				found = models.Float(v)
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

// ExtractItemResult describes a single ad page as a search result.
func ExtractItemResult(doc *goquery.Document, pageURL string) models.SearchResult {
	return models.SearchResult{
		Source:       models.SourceFinn,
		DisplayName:  scraper.NormaliseText(doc.Find("h1").First().Text()),
		SourceURL:    pageURL,
		PreviewPrice: ExtractSingleValue(doc),
	}
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
