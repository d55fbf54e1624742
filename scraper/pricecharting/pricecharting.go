// Package pricecharting scrapes the USD price guide. Lookups try the derived
// product URL first and fall back to the site search.
package pricecharting

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jumpingmushroom/FlipStash-sub000/browser"
	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper"
	"github.com/jumpingmushroom/FlipStash-sub000/taxonomy"
	"github.com/jumpingmushroom/FlipStash-sub000/utils"
)

const hostToken = "pricecharting"

// Scraper reads prices from the catalog through a browser Fetcher.
type Scraper struct {
	fetcher *browser.Fetcher
	profile browser.Profile
	baseURL string
	logger  *utils.Logger
}

// New creates a Scraper for the catalog at baseURL.
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

func (s *Scraper) Source() models.Source { return models.SourcePriceCharting }

func (s *Scraper) Currency() string { return models.CurrencyUSD }

// Handles reports whether rawURL points at the catalog.
func (s *Scraper) Handles(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	if strings.Contains(host, hostToken) {
		return true
	}
	base, err := url.Parse(s.baseURL)
	return err == nil && strings.EqualFold(base.Host, u.Host)
}

// Lookup finds the price for q: the direct product URL when the console has
// a mapping, else the search page with the best row followed.
func (s *Scraper) Lookup(ctx context.Context, q models.PriceQuery) (scraper.Harvest, error) {
	label := taxonomy.ConditionColumnLabel(q.Condition)
	h := scraper.Harvest{Source: models.SourcePriceCharting}

	err := s.fetcher.Session(ctx, s.profile, func(sess *browser.Session) error {
		direct := BuildDirectURL(s.baseURL, q.Platform, q.Region, q.GameName)
		if direct == "" {
			s.logger.Info("[pricecharting] No console mapping for %q (%s), using search", q.Platform, q.Region)
		} else {
			doc, snap, err := s.load(ctx, sess, direct)
			switch {
			case errors.Is(err, browser.ErrNotFound):
				s.logger.Info("[pricecharting] Direct URL not found: %s", direct)
			case err != nil:
				return err
			case ClassifyPage(doc) == PageDetail:
				h.URL = snap.URL
				h.Value = ExtractSingleValue(doc, label)
				return nil
			default:
				s.logger.Info("[pricecharting] Direct URL is not a game page: %s", snap.URL)
			}
		}

		searchURL := BuildSearchURL(s.baseURL, q)
		doc, snap, err := s.load(ctx, sess, searchURL)
		if err != nil {
			return err
		}
		h, err = s.resolve(ctx, sess, doc, snap, q, label)
		return err
	})
	return h, err
}

// Search returns the candidates of the search page for q without following any.
func (s *Scraper) Search(ctx context.Context, q models.PriceQuery) ([]models.SearchResult, error) {
	label := taxonomy.ConditionColumnLabel(q.Condition)
	searchURL := BuildSearchURL(s.baseURL, q)

	snap, err := s.fetcher.Fetch(ctx, s.profile, searchURL)
	if err != nil {
		return nil, err
	}
	doc, err := parse(snap)
	if err != nil {
		return nil, err
	}

	switch ClassifyPage(doc) {
	case PageDetail:
		return []models.SearchResult{ExtractDetailResult(doc, label, snap.URL)}, nil
	case PageListing:
		return ExtractListings(doc, label, s.baseURL), nil
	default:
		s.logger.Info("[pricecharting] No results for %q at %s", q.GameName, searchURL)
		return nil, nil
	}
}

// FromURL reads the price from a URL chosen earlier. A listing page is
// resolved the same way a search is.
func (s *Scraper) FromURL(ctx context.Context, rawURL string, q models.PriceQuery) (scraper.Harvest, error) {
	label := taxonomy.ConditionColumnLabel(q.Condition)
	h := scraper.Harvest{Source: models.SourcePriceCharting}

	err := s.fetcher.Session(ctx, s.profile, func(sess *browser.Session) error {
		doc, snap, err := s.load(ctx, sess, rawURL)
		if err != nil {
			return err
		}
		h, err = s.resolve(ctx, sess, doc, snap, q, label)
		return err
	})
	return h, err
}

// resolve turns a loaded page into a harvest, following the best listing row
// when the page is a search result.
func (s *Scraper) resolve(ctx context.Context, sess *browser.Session, doc *goquery.Document,
	snap browser.Snapshot, q models.PriceQuery, label string) (scraper.Harvest, error) {
	h := scraper.Harvest{Source: models.SourcePriceCharting, URL: snap.URL}

	switch ClassifyPage(doc) {
	case PageDetail:
		h.Value = ExtractSingleValue(doc, label)
		return h, nil
	case PageEmpty:
		s.logger.Info("[pricecharting] Nothing usable at %s", snap.URL)
		return h, nil
	}

	results := ExtractListings(doc, label, s.baseURL)
	idx := BestMatch(results, q)
	if idx < 0 {
		return h, nil
	}
	pick := results[idx]
	s.logger.Debug("[pricecharting] %d results, following %q (%s)", len(results), pick.DisplayName, pick.PlatformLabel)

	detail, dsnap, err := s.load(ctx, sess, pick.SourceURL)
	if err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			h.Value = pick.PreviewPrice
			return h, nil
		}
		return h, err
	}
	h.URL = dsnap.URL
	h.Value = ExtractSingleValue(detail, label)
	if h.Value == nil {
		h.Value = pick.PreviewPrice
	}
	return h, nil
}

func (s *Scraper) load(ctx context.Context, sess *browser.Session, rawURL string) (*goquery.Document, browser.Snapshot, error) {
	snap, err := sess.Visit(ctx, rawURL)
	if err != nil {
		return nil, snap, err
	}
	doc, err := parse(snap)
	return doc, snap, err
}

func parse(snap browser.Snapshot) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, fmt.Errorf("pricecharting: parse %s: %w", snap.URL, err)
	}
	return doc, nil
}
