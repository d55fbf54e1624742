package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

// BatchMode selects how a batch treats games without stored source URLs.
type BatchMode string

const (
	// ModeStored refreshes only games with a stored URL and skips the rest.
	ModeStored BatchMode = "stored"
	// ModeDiscover searches for games without stored URLs and reports
	// ambiguous searches as multipleResults events.
	ModeDiscover BatchMode = "discover"
)

// ParseBatchMode maps user input onto a BatchMode, defaulting to ModeStored.
func ParseBatchMode(raw string) BatchMode {
	if BatchMode(raw) == ModeDiscover {
		return ModeDiscover
	}
	return ModeStored
}

// BatchOptions tune one RunBatch call. Scheduled runs shuffle the order and
// wait a long random delay between items that touched the network.
type BatchOptions struct {
	Mode     BatchMode
	Shuffle  bool
	DelayMin time.Duration
	DelayMax time.Duration
}

// Emitter receives batch events in order. An error means the consumer is
// gone: the item in flight is finished and nothing further is scheduled.
type Emitter func(models.ProgressEvent) error

type shuffler interface {
	Shuffle(ids []int64)
}

const (
	reasonSold         = "sold"
	reasonNoStoredURL  = "no stored source URL"
	reasonNoData       = "no market data found"
	reasonNeedsChoice  = "multiple results, awaiting selection"
	reasonStreamClosed = "stream closed"
	reasonCancelled    = "cancelled"
)

// RunBatch refreshes the given games one after another and reports progress
// through emit. Exactly one complete event is emitted, and the summary counts
// every id exactly once.
func (s *MarketService) RunBatch(ctx context.Context, ids []int64, opts BatchOptions, emit Emitter) models.BatchSummary {
	runID := uuid.NewString()
	order := append([]int64(nil), ids...)
	if opts.Shuffle {
		if sh, ok := s.pacer.(shuffler); ok {
			sh.Shuffle(order)
		}
	}

	summary := models.BatchSummary{RunID: runID, Total: len(order), Details: make([]models.BatchItemResult, 0, len(order))}
	var stats models.BatchStats
	record := func(item models.BatchItemResult) {
		switch item.Status {
		case models.StatusSucceeded:
			stats.Succeeded++
		case models.StatusFailed:
			stats.Failed++
		default:
			stats.Skipped++
		}
		summary.Details = append(summary.Details, item)
	}

	s.logger.Info("[batch] Run %s starting: %d games, mode %s", runID, len(order), opts.Mode)
	closed := emit(models.ProgressEvent{Type: models.EventStart, RunID: runID, Total: len(order)}) != nil

	touched := false
	for i, id := range order {
		if closed {
			record(models.BatchItemResult{GameID: id, Status: models.StatusSkipped, Reason: reasonStreamClosed})
			continue
		}
		if ctx.Err() == nil && touched && opts.DelayMax > 0 {
			_ = s.pacer.Pause(ctx, opts.DelayMin, opts.DelayMax)
		}
		if ctx.Err() != nil {
			record(models.BatchItemResult{GameID: id, Status: models.StatusSkipped, Reason: reasonCancelled})
			continue
		}

		item, network, err := s.processItem(ctx, id, opts.Mode, emit)
		touched = network
		record(item)
		if err != nil {
			closed = true
		}
		if item.Status == models.StatusFailed {
			s.logger.Warn("[batch] Game %d failed: %s", id, item.Reason)
		}

		st := stats
		if err := emit(models.ProgressEvent{
			Type:      models.EventProgress,
			RunID:     runID,
			Total:     len(order),
			Completed: i + 1,
			Current:   item.Name,
			Result:    &item,
			Stats:     &st,
		}); err != nil {
			closed = true
		}
	}

	summary.Succeeded, summary.Failed, summary.Skipped = stats.Succeeded, stats.Failed, stats.Skipped
	if err := ctx.Err(); err != nil && !closed {
		_ = emit(models.ProgressEvent{Type: models.EventError, RunID: runID, Message: err.Error()})
	}
	if err := emit(models.ProgressEvent{Type: models.EventComplete, RunID: runID, Total: summary.Total, Results: summary}); err != nil {
		s.logger.Debug("[batch] Run %s: complete event not delivered: %v", runID, err)
	}
	s.logger.Info("[batch] Run %s done: %d succeeded, %d failed, %d skipped",
		runID, summary.Succeeded, summary.Failed, summary.Skipped)
	return summary
}

// processItem handles one game. network reports whether any site was
// contacted; err is set only when emit failed.
func (s *MarketService) processItem(ctx context.Context, id int64, mode BatchMode, emit Emitter) (item models.BatchItemResult, network bool, err error) {
	item = models.BatchItemResult{GameID: id}
	if s.games == nil {
		item.Status, item.Reason = models.StatusFailed, "no game store configured"
		return item, false, nil
	}

	g, lerr := s.games.LoadGame(ctx, id)
	if lerr != nil {
		item.Status, item.Reason = models.StatusFailed, lerr.Error()
		return item, false, nil
	}
	item.Name = g.Name

	switch {
	case g.Sold:
		item.Status, item.Reason = models.StatusSkipped, reasonSold
		return item, false, nil
	case g.HasStoredURL():
		res, rerr := s.refresh(ctx, g)
		return finish(item, res, rerr), true, nil
	case mode != ModeDiscover:
		item.Status, item.Reason = models.StatusSkipped, reasonNoStoredURL
		return item, false, nil
	}

	multi, serr := s.Search(ctx, g.Query())
	if serr != nil {
		return finish(item, models.MarketValueResult{}, serr), true, nil
	}
	switch {
	case multi.Resolved != nil:
		only := append(append([]models.SearchResult(nil), multi.PriceCharting...), multi.Finn...)[0]
		obs := []models.SourceObservation{{Source: only.Source, Value: multi.Resolved.MarketValue, URL: only.SourceURL}}
		perr := s.save(ctx, g, obs, *multi.Resolved)
		return finish(item, *multi.Resolved, perr), true, nil
	case multi.Total() > 1:
		item.Status, item.Reason = models.StatusSkipped, reasonNeedsChoice
		err = emit(models.ProgressEvent{Type: models.EventMultipleResults, GameID: id, Results: multi})
		return item, true, err
	default:
		item.Status, item.Reason = models.StatusFailed, reasonNoData
		return item, true, nil
	}
}

func finish(item models.BatchItemResult, res models.MarketValueResult, err error) models.BatchItemResult {
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		item.Status, item.Reason = models.StatusSkipped, reasonCancelled
	case err != nil:
		item.Status, item.Reason = models.StatusFailed, err.Error()
	case !res.Found():
		item.Status, item.Reason = models.StatusFailed, reasonNoData
		item.Result = &res
	default:
		item.Status = models.StatusSucceeded
		item.Result = &res
	}
	return item
}
