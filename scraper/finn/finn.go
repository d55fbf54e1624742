// Package finn scrapes asking prices from the Norwegian marketplace. A lookup
// reads the search page, filters out bundles and unrelated ads, and hands the
// surviving listings to the aggregator.
package finn

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jumpingmushroom/FlipStash-sub000/browser"
	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper"
	"github.com/jumpingmushroom/FlipStash-sub000/utils"
)

const hostToken = "finn"

type Scraper struct {
	fetcher *browser.Fetcher
	profile browser.Profile
	baseURL string
	logger  *utils.Logger
}

// New creates a Scraper for the marketplace at baseURL.
func New(f *browser.Fetcher, baseURL string, p browser.Profile, logger *utils.Logger) *Scraper {
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	return &Scraper{
		fetcher: f,
		profile: p,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (s *Scraper) Source() models.Source { return models.SourceFinn }

func (s *Scraper) Currency() string { return models.CurrencyNOK }

// Handles reports whether rawURL points at the marketplace.
func (s *Scraper) Handles(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	if strings.Contains(strings.ToLower(u.Host), hostToken) {
		return true
	}
	base, err := url.Parse(s.baseURL)
	return err == nil && strings.EqualFold(base.Host, u.Host)
}

// Lookup searches for q and returns the filtered listings.
func (s *Scraper) Lookup(ctx context.Context, q models.PriceQuery) (scraper.Harvest, error) {
	searchURL := BuildSearchURL(s.baseURL, q)
	listings, err := s.searchPage(ctx, searchURL, q)
	if err != nil {
		return scraper.Harvest{Source: models.SourceFinn, URL: searchURL}, err
	}
	return scraper.Harvest{Source: models.SourceFinn, URL: searchURL, Listings: listings}, nil
}

// Search returns the filtered listings for q. Bundles never reach the caller
// either, so a candidate picked from them prices the same as a lookup would.
func (s *Scraper) Search(ctx context.Context, q models.PriceQuery) ([]models.SearchResult, error) {
	return s.searchPage(ctx, BuildSearchURL(s.baseURL, q), q)
}

// FromURL reads a stored URL: a single ad yields its asking price, a saved
// search yields its filtered listings.
func (s *Scraper) FromURL(ctx context.Context, rawURL string, q models.PriceQuery) (scraper.Harvest, error) {
	h := scraper.Harvest{Source: models.SourceFinn, URL: rawURL}
	if !IsItemURL(rawURL) {
		listings, err := s.searchPage(ctx, rawURL, q)
		h.Listings = listings
		return h, err
	}

	doc, snap, err := s.load(ctx, rawURL)
	if err != nil {
		return h, err
	}
	h.URL = snap.URL
	h.Value = ExtractSingleValue(doc)
	if h.Value == nil {
		s.logger.Info("[finn] No price on ad page %s", snap.URL)
	}
	return h, nil
}

func (s *Scraper) searchPage(ctx context.Context, searchURL string, q models.PriceQuery) ([]models.SearchResult, error) {
	doc, _, err := s.load(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	raw := ExtractListings(doc, s.baseURL)
	name := q.GameName
	if name == "" {
		name = queryFromURL(searchURL)
	}
	kept := FilterListings(raw, name)
	s.logger.Debug("[finn] %s: %d ads, %d after filtering", searchURL, len(raw), len(kept))
	if len(kept) == 0 {
		s.logger.Info("[finn] No usable ads for %q at %s", name, searchURL)
	}
	return kept, nil
}

func (s *Scraper) load(ctx context.Context, rawURL string) (*goquery.Document, browser.Snapshot, error) {
	snap, err := s.fetcher.Fetch(ctx, s.profile, rawURL)
	if err != nil {
		return nil, snap, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, snap, fmt.Errorf("finn: parse %s: %w", snap.URL, err)
	}
	return doc, snap, nil
}

func queryFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("q")
}
