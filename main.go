package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jumpingmushroom/FlipStash-sub000/browser"
	"github.com/jumpingmushroom/FlipStash-sub000/config"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper/finn"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper/pricecharting"
	"github.com/jumpingmushroom/FlipStash-sub000/services"
	"github.com/jumpingmushroom/FlipStash-sub000/storage"
	"github.com/jumpingmushroom/FlipStash-sub000/utils"
)

var rootCmd = &cobra.Command{
	Use:           "flipstash",
	Short:         "flipstash estimates what games in a collection are worth on the second-hand market.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app holds everything a command needs. store is nil when the database is
// unreachable and the command can do without it.
type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	launcher *browser.ChromeLauncher
	store    *storage.PostgresStore
	pacer    *utils.RandomPacer
	market   *services.MarketService
}

// newApp wires config, logging, the browser, both scrapers and the store.
// With requireStore unset a failed database connection only disables
// persistence and the stored markup.
func newApp(requireStore bool) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := utils.NewLoggerTo(os.Stderr, cfg.LogLevel)

	a := &app{cfg: cfg, logger: logger, pacer: utils.NewRandomPacer()}

	policy := storage.QuickPingPolicy
	if requireStore {
		policy = storage.DefaultPingPolicy
	}
	store, err := storage.OpenPostgresStore(cfg.DSN(), policy)
	if err != nil {
		if requireStore {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
			return nil, err
		}
		logger.Warn("PostgreSQL unavailable, using default markup %.2f: %v", cfg.DefaultMarkup, err)
	} else {
		a.store = store
	}

	a.launcher = browser.NewChromeLauncher(browser.ChromeOptions{ExecPath: cfg.ChromeBin, Headless: cfg.Headless})
	fetcher := browser.NewFetcher(a.launcher, browser.Options{
		Pacer:      a.pacer,
		PaceMin:    cfg.PaceMin,
		PaceMax:    cfg.PaceMax,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})

	sources := []services.PriceSource{
		pricecharting.New(fetcher, cfg.PriceChartingBaseURL, browser.EnglishProfile(cfg.NavTimeout), logger),
		finn.New(fetcher, cfg.FinnBaseURL, browser.NorwegianProfile(cfg.NavTimeout), logger),
	}

	opts := services.MarketOptions{
		DefaultMarkup: cfg.DefaultMarkup,
		Pacer:         a.pacer,
		Logger:        logger,
	}
	if a.store != nil {
		opts.Markup = a.store
		opts.Games = a.store
		opts.History = a.store
	}
	a.market = services.NewMarketService(sources, opts)
	return a, nil
}

func (a *app) Close() {
	a.launcher.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Closing PostgreSQL: %v", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
