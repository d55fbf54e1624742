package storage

import (
	"context"
	"errors"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

// ErrNotFound is returned when a game id is unknown.
var ErrNotFound = errors.New("storage: game not found")

// MarkupSource yields the current markup multiplier. ok is false when the
// setting has never been stored.
type MarkupSource interface {
	MarkupMultiplier(ctx context.Context) (markup float64, ok bool, err error)
}

// HistorySink appends a price observation for a game. The tag is one of the
// models.Tag* values.
type HistorySink interface {
	RecordObservation(ctx context.Context, gameID int64, value float64, tag string) error
}

// GameStore loads games and saves what a refresh found for them.
type GameStore interface {
	LoadGame(ctx context.Context, id int64) (*models.Game, error)
	PersistChosenURLs(ctx context.Context, id int64, pcURL, finnURL string) error
	PersistMarketValue(ctx context.Context, id int64, res models.MarketValueResult) error
}

// GameLister lists games eligible for a scheduled refresh.
type GameLister interface {
	ListGameIDs(ctx context.Context, includeSold bool) ([]int64, error)
}

// ReportWriter receives one row per processed batch item.
type ReportWriter interface {
	WriteResults(runID string, results []models.BatchItemResult) error
	Close() error
}
