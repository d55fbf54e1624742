package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/server"
	"github.com/jumpingmushroom/FlipStash-sub000/services"
	"github.com/jumpingmushroom/FlipStash-sub000/storage"
	"github.com/jumpingmushroom/FlipStash-sub000/taxonomy"
)

type queryFlags struct {
	name      string
	platform  string
	region    string
	condition string
}

func (f *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Game title")
	cmd.Flags().StringVar(&f.platform, "platform", "", "Platform, e.g. \"PlayStation 2\"")
	cmd.Flags().StringVar(&f.region, "region", "PAL", "Region: PAL, NTSC, NTSC-J")
	cmd.Flags().StringVar(&f.condition, "condition", "CIB", "Condition: Sealed, CIB, Loose, Box Only, Manual Only")
	_ = cmd.MarkFlagRequired("name")
}

func (f *queryFlags) query() models.PriceQuery {
	return models.PriceQuery{
		GameName:  f.name,
		Platform:  f.platform,
		Region:    taxonomy.ParseRegion(f.region),
		Condition: taxonomy.ParseCondition(f.condition),
	}
}

var (
	lookupFlags queryFlags
	searchFlags queryFlags
	addFlags    queryFlags

	fromURLCondition string
	refreshMode      string
	refreshAll       bool
	addPCURL         string
	addFinnURL       string
)

func init() {
	lookupFlags.bind(lookupCmd)
	searchFlags.bind(searchCmd)
	addFlags.bind(addCmd)
	addCmd.Flags().StringVar(&addPCURL, "pricecharting-url", "", "Chosen PriceCharting product URL")
	addCmd.Flags().StringVar(&addFinnURL, "finn-url", "", "Chosen FINN item or search URL")

	fromURLCmd.Flags().StringVar(&fromURLCondition, "condition", "CIB", "Condition column to read")

	refreshCmd.Flags().StringVar(&refreshMode, "mode", string(services.ModeStored), "stored | discover")
	refreshCmd.Flags().BoolVar(&refreshAll, "all", false, "Refresh every unsold game")

	markupCmd.AddCommand(markupSetCmd)
	rootCmd.AddCommand(lookupCmd, searchCmd, fromURLCmd, refreshCmd, serveCmd, addCmd, markupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup --name <title> [--platform p] [--region r] [--condition c]",
	Short: "Looks up the reconciled market value of one game.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		q := lookupFlags.query()
		res, obs, err := a.market.GetMarketValue(cmd.Context(), q)
		if err != nil {
			return err
		}
		services.NewReportPrinter(cmd.OutOrStdout()).PrintMarketValue(q, res, obs)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search --name <title> [--platform p] [--region r] [--condition c]",
	Short: "Lists candidate products on every site.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		q := searchFlags.query()
		q.WantMultipleResults = true
		multi, err := a.market.Search(cmd.Context(), q)
		if err != nil {
			return err
		}
		services.NewReportPrinter(cmd.OutOrStdout()).PrintSearch(q, multi)
		return nil
	},
}

var fromURLCmd = &cobra.Command{
	Use:   "from-url <url>",
	Short: "Prices a user-chosen product or listing page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		obs, err := a.market.PriceFromURL(cmd.Context(), args[0], taxonomy.ParseCondition(fromURLCondition))
		if err != nil {
			return err
		}
		services.NewReportPrinter(cmd.OutOrStdout()).PrintObservation(args[0], obs)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [--all | <id>...] [--mode stored|discover]",
	Short: "Refreshes stored games one by one with long random pauses, as a scheduled run would.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		if len(ids) == 0 && !refreshAll {
			return errors.New("name at least one game id or pass --all")
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if refreshAll {
			if ids, err = a.store.ListGameIDs(cmd.Context(), false); err != nil {
				return err
			}
		}

		report, err := storage.NewCSVReportWriter(a.cfg.ReportCSVPath)
		if err != nil {
			return err
		}
		defer report.Close()

		opts := services.BatchOptions{
			Mode:     services.ParseBatchMode(refreshMode),
			Shuffle:  true,
			DelayMin: a.cfg.BatchDelayMin,
			DelayMax: a.cfg.BatchDelayMax,
		}
		summary := a.market.RunBatch(cmd.Context(), ids, opts, func(ev models.ProgressEvent) error {
			switch ev.Type {
			case models.EventProgress:
				a.logger.Info("[refresh] %d/%d game %d: %s %s",
					ev.Completed, ev.Total, ev.Result.GameID, ev.Result.Status, ev.Result.Reason)
			case models.EventMultipleResults:
				a.logger.Info("[refresh] Game %d has several candidates; pick one with `flipstash search`", ev.GameID)
			case models.EventError:
				a.logger.Warn("[refresh] %s", ev.Message)
			}
			return nil
		})

		if err := report.WriteResults(summary.RunID, summary.Details); err != nil {
			a.logger.Error("CSV write failed: %v", err)
		} else {
			a.logger.Info("Run report appended to %s", a.cfg.ReportCSVPath)
		}
		services.NewReportPrinter(cmd.OutOrStdout()).PrintBatch(summary)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the HTTP API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.NewServer(a.cfg.HTTPAddr, a.market, server.Options{
			Lister:        a.store,
			Logger:        a.logger,
			BatchDelayMin: a.cfg.BatchDelayMin,
			BatchDelayMax: a.cfg.BatchDelayMax,
		})
		errc := make(chan error, 1)
		go func() { errc <- srv.Start() }()

		select {
		case err := <-errc:
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	},
}

var addCmd = &cobra.Command{
	Use:   "add --name <title> [--platform p] [--region r] [--condition c]",
	Short: "Adds a game to the collection.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		q := addFlags.query()
		id, err := a.store.AddGame(cmd.Context(), &models.Game{
			Name:             q.GameName,
			Platform:         q.Platform,
			Region:           q.Region,
			Condition:        q.Condition,
			PriceChartingURL: addPCURL,
			FinnURL:          addFinnURL,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added game %d\n", id)
		return nil
	},
}

var markupCmd = &cobra.Command{
	Use:   "markup",
	Short: "Manages the selling-value markup multiplier.",
}

var markupSetCmd = &cobra.Command{
	Use:   "set <multiplier>",
	Short: "Stores the markup multiplier used for selling values, e.g. 1.15.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := strconv.ParseFloat(args[0], 64)
		if err != nil || m <= 0 {
			return fmt.Errorf("invalid multiplier %q", args[0])
		}

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.store.SetMarkupMultiplier(cmd.Context(), m)
	},
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid game id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
