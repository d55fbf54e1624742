package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper"
	"github.com/jumpingmushroom/FlipStash-sub000/storage"
	"github.com/jumpingmushroom/FlipStash-sub000/utils"
)

// ErrUnknownSource is returned by PriceFromURL for a URL no scraper handles.
var ErrUnknownSource = errors.New("unknown price source")

// PriceSource is one pricing site as the MarketService sees it.
type PriceSource interface {
	Source() models.Source
	Currency() string
	Handles(rawURL string) bool
	Lookup(ctx context.Context, q models.PriceQuery) (scraper.Harvest, error)
	Search(ctx context.Context, q models.PriceQuery) ([]models.SearchResult, error)
	FromURL(ctx context.Context, rawURL string, q models.PriceQuery) (scraper.Harvest, error)
}

// MarketOptions wires the collaborators of a MarketService. Games and
// History are only needed for refreshes.
type MarketOptions struct {
	Markup        storage.MarkupSource
	Games         storage.GameStore
	History       storage.HistorySink
	DefaultMarkup float64
	Pacer         utils.Pacer
	Logger        *utils.Logger
}

// MarketService looks up market values across all configured sources.
type MarketService struct {
	sources       []PriceSource
	markup        storage.MarkupSource
	games         storage.GameStore
	history       storage.HistorySink
	defaultMarkup float64
	pacer         utils.Pacer
	logger        *utils.Logger
}

// NewMarketService creates a MarketService over sources.
func NewMarketService(sources []PriceSource, opts MarketOptions) *MarketService {
	if opts.DefaultMarkup <= 0 {
		opts.DefaultMarkup = 1.0
	}
	if opts.Pacer == nil {
		opts.Pacer = utils.NoPacer{}
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewDiscardLogger()
	}
	return &MarketService{
		sources:       sources,
		markup:        opts.Markup,
		games:         opts.Games,
		history:       opts.History,
		defaultMarkup: opts.DefaultMarkup,
		pacer:         opts.Pacer,
		logger:        opts.Logger,
	}
}

// GetMarketValue looks q up on every source concurrently and reconciles the
// observations. A source that fails or finds nothing contributes a nil value;
// only a cancelled context is returned as an error.
func (s *MarketService) GetMarketValue(ctx context.Context, q models.PriceQuery) (models.MarketValueResult, []models.SourceObservation, error) {
	obs := s.collect(ctx, func(src PriceSource) (scraper.Harvest, error) {
		return src.Lookup(ctx, q)
	})
	if err := ctx.Err(); err != nil {
		return models.MarketValueResult{}, obs, err
	}
	return s.reconcile(ctx, obs), obs, nil
}

// Search returns the candidates of every source without picking one. When
// exactly one candidate exists overall it is priced right away and returned
// as Resolved.
func (s *MarketService) Search(ctx context.Context, q models.PriceQuery) (models.MultiSearchResult, error) {
	lists := make([][]models.SearchResult, len(s.sources))
	fj := utils.NewForkJoin()
	for i, src := range s.sources {
		i, src := i, src
		fj.Go(string(src.Source()), func() error {
			res, err := src.Search(ctx, q)
			lists[i] = res
			return err
		})
	}
	for name, err := range fj.Wait() {
		s.logger.Warn("[market] %s search for %q: no data: %v", name, q.GameName, err)
	}
	if err := ctx.Err(); err != nil {
		return models.MultiSearchResult{}, err
	}

	var out models.MultiSearchResult
	for i, src := range s.sources {
		switch src.Source() {
		case models.SourcePriceCharting:
			out.PriceCharting = lists[i]
		case models.SourceFinn:
			out.Finn = lists[i]
		}
	}

	if out.Total() == 1 {
		only := append(append([]models.SearchResult(nil), out.PriceCharting...), out.Finn...)[0]
		res := s.resolveCandidate(ctx, only, q)
		out.Resolved = &res
	}
	return out, nil
}

// resolveCandidate prices a single search result by loading its page,
// falling back to the preview price the listing showed.
func (s *MarketService) resolveCandidate(ctx context.Context, c models.SearchResult, q models.PriceQuery) models.MarketValueResult {
	obs := models.SourceObservation{Source: c.Source, Currency: currencyOf(c.Source), URL: c.SourceURL}
	if src := s.source(c.Source); src != nil && c.SourceURL != "" {
		h, err := src.FromURL(ctx, c.SourceURL, q)
		if err != nil {
			s.logger.Warn("[market] %s: resolving %s: %v", c.Source, c.SourceURL, err)
		} else {
			obs = Observe(h)
		}
	}
	if !obs.Found() && c.PreviewPrice != nil {
		obs.Value = models.Float(roundFor(c.Source, *c.PreviewPrice))
	}
	return s.reconcile(ctx, []models.SourceObservation{obs})
}

// PriceFromURL reads the price behind a URL picked earlier. The URL's host
// decides which source reads it; an unrecognised host is an error.
func (s *MarketService) PriceFromURL(ctx context.Context, rawURL string, condition models.Condition) (models.SourceObservation, error) {
	src := s.sourceFor(rawURL)
	if src == nil {
		return models.SourceObservation{}, fmt.Errorf("%w: %s", ErrUnknownSource, rawURL)
	}

	h, err := src.FromURL(ctx, rawURL, models.PriceQuery{Condition: condition})
	if err != nil {
		s.logger.Warn("[market] %s: no data from %s: %v", src.Source(), rawURL, err)
		return models.SourceObservation{Source: src.Source(), Currency: src.Currency(), URL: rawURL}, nil
	}
	obs := Observe(h)
	if !obs.Found() {
		s.logger.Info("[market] %s: nothing usable at %s", src.Source(), rawURL)
	}
	return obs, nil
}

// RefreshGame looks up a stored game and saves what was found: the URLs that
// produced values, the market value and a history entry.
func (s *MarketService) RefreshGame(ctx context.Context, id int64) (models.MarketValueResult, error) {
	if s.games == nil {
		return models.MarketValueResult{}, errors.New("market: no game store configured")
	}
	g, err := s.games.LoadGame(ctx, id)
	if err != nil {
		return models.MarketValueResult{}, err
	}
	return s.refresh(ctx, g)
}

func (s *MarketService) refresh(ctx context.Context, g *models.Game) (models.MarketValueResult, error) {
	q := g.Query()
	obs := s.collect(ctx, func(src PriceSource) (scraper.Harvest, error) {
		if stored := storedURL(g, src.Source()); stored != "" {
			return src.FromURL(ctx, stored, q)
		}
		return src.Lookup(ctx, q)
	})
	if err := ctx.Err(); err != nil {
		return models.MarketValueResult{}, err
	}

	res := s.reconcile(ctx, obs)
	if err := s.save(ctx, g, obs, res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *MarketService) save(ctx context.Context, g *models.Game, obs []models.SourceObservation, res models.MarketValueResult) error {
	pcURL, finnURL := g.PriceChartingURL, g.FinnURL
	for _, o := range obs {
		if !o.Found() || o.URL == "" {
			continue
		}
		switch o.Source {
		case models.SourcePriceCharting:
			pcURL = o.URL
		case models.SourceFinn:
			finnURL = o.URL
		}
	}
	if pcURL != g.PriceChartingURL || finnURL != g.FinnURL {
		if err := s.games.PersistChosenURLs(ctx, g.ID, pcURL, finnURL); err != nil {
			return fmt.Errorf("market: persist urls for game %d: %w", g.ID, err)
		}
	}

	if !res.Found() {
		return nil
	}
	if err := s.games.PersistMarketValue(ctx, g.ID, res); err != nil {
		return fmt.Errorf("market: persist value for game %d: %w", g.ID, err)
	}
	if s.history != nil {
		if err := s.history.RecordObservation(ctx, g.ID, *res.MarketValue, *res.PrioritizedSource); err != nil {
			return fmt.Errorf("market: record history for game %d: %w", g.ID, err)
		}
	}
	return nil
}

// collect runs fetch against every source at once and waits for all of them.
// Failures become empty observations.
func (s *MarketService) collect(ctx context.Context, fetch func(PriceSource) (scraper.Harvest, error)) []models.SourceObservation {
	obs := make([]models.SourceObservation, len(s.sources))
	fj := utils.NewForkJoin()
	for i, src := range s.sources {
		i, src := i, src
		obs[i] = models.SourceObservation{Source: src.Source(), Currency: src.Currency()}
		fj.Go(string(src.Source()), func() error {
			h, err := fetch(src)
			if err != nil {
				obs[i].URL = h.URL
				return err
			}
			obs[i] = Observe(h)
			if !obs[i].Found() {
				s.logger.Info("[market] %s: no price found at %s", src.Source(), h.URL)
			}
			return nil
		})
	}
	for name, err := range fj.Wait() {
		s.logger.Warn("[market] %s: no data: %v", name, err)
	}
	return obs
}

func (s *MarketService) reconcile(ctx context.Context, obs []models.SourceObservation) models.MarketValueResult {
	var pc, finn *float64
	for _, o := range obs {
		switch o.Source {
		case models.SourcePriceCharting:
			pc = o.Value
		case models.SourceFinn:
			finn = o.Value
		}
	}
	return Reconcile(pc, finn, s.markupMultiplier(ctx))
}

// markupMultiplier reads the setting on every call, using the configured
// default when it is unset or unreadable.
func (s *MarketService) markupMultiplier(ctx context.Context) float64 {
	if s.markup == nil {
		return s.defaultMarkup
	}
	m, ok, err := s.markup.MarkupMultiplier(ctx)
	if err != nil {
		s.logger.Warn("[market] reading markup: %v, using default %.2f", err, s.defaultMarkup)
		return s.defaultMarkup
	}
	if !ok || m <= 0 {
		return s.defaultMarkup
	}
	return m
}

func (s *MarketService) source(src models.Source) PriceSource {
	for _, p := range s.sources {
		if p.Source() == src {
			return p
		}
	}
	return nil
}

func (s *MarketService) sourceFor(rawURL string) PriceSource {
	for _, p := range s.sources {
		if p.Handles(rawURL) {
			return p
		}
	}
	return nil
}

func storedURL(g *models.Game, src models.Source) string {
	switch src {
	case models.SourcePriceCharting:
		return g.PriceChartingURL
	case models.SourceFinn:
		return g.FinnURL
	}
	return ""
}
