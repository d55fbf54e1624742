package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

// MarkupSettingKey is the settings row holding the markup multiplier.
const MarkupSettingKey = "markup_multiplier"

var historyTags = map[string]struct{}{
	models.TagManual:        {},
	models.TagPriceCharting: {},
	models.TagFinn:          {},
	models.TagAverage:       {},
	models.TagImport:        {},
}

// PostgresStore keeps games, their price history and app settings in
// PostgreSQL. It implements every collaborator interface of this package.
type PostgresStore struct {
	db *sql.DB
}

// PingPolicy bounds how long opening a store waits for the server.
type PingPolicy struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

// DefaultPingPolicy waits up to about 20 seconds, enough for a database
// container that is still starting.
var DefaultPingPolicy = PingPolicy{Attempts: 10, Delay: 2 * time.Second, Timeout: 5 * time.Second}

// QuickPingPolicy tries once, for callers that can run without a store.
var QuickPingPolicy = PingPolicy{Attempts: 1, Timeout: 2 * time.Second}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	return OpenPostgresStore(dsn, DefaultPingPolicy)
}

// OpenPostgresStore is NewPostgresStore with an explicit ping budget.
func OpenPostgresStore(dsn string, policy PingPolicy) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	for i := 0; i < policy.Attempts; i++ {
		if i > 0 {
			time.Sleep(policy.Delay)
		}
		if err = ping(db, policy.Timeout); err == nil {
			break
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after %d attempts: %w", policy.Attempts, err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id                 SERIAL PRIMARY KEY,
			name               TEXT          NOT NULL,
			platform           TEXT          NOT NULL DEFAULT '',
			region             VARCHAR(10)   NOT NULL DEFAULT 'None',
			condition          VARCHAR(20)   NOT NULL DEFAULT 'CIB',
			pricecharting_url  TEXT          NOT NULL DEFAULT '',
			finn_url           TEXT          NOT NULL DEFAULT '',
			sold               BOOLEAN       NOT NULL DEFAULT FALSE,
			market_value       NUMERIC(12,2),
			selling_value      NUMERIC(12,2),
			currency           VARCHAR(3)    NOT NULL DEFAULT '',
			prioritized_source VARCHAR(20)   NOT NULL DEFAULT '',
			value_updated_at   TIMESTAMPTZ,
			created_at         TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS price_history (
			id          SERIAL PRIMARY KEY,
			game_id     INTEGER       NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			value       NUMERIC(12,2) NOT NULL,
			source      VARCHAR(20)   NOT NULL,
			recorded_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_games_sold           ON games(sold);
		CREATE INDEX IF NOT EXISTS idx_price_history_game   ON price_history(game_id);
		CREATE INDEX IF NOT EXISTS idx_price_history_source ON price_history(source);
	`)
	return err
}

func ping(db *sql.DB, timeout time.Duration) error {
	if timeout <= 0 {
		return db.Ping()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return db.PingContext(ctx)
}

// AddGame inserts g and returns its new id.
func (ps *PostgresStore) AddGame(ctx context.Context, g *models.Game) (int64, error) {
	var id int64
	err := ps.db.QueryRowContext(ctx, `
		INSERT INTO games (name, platform, region, condition, pricecharting_url, finn_url, sold)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, g.Name, g.Platform, string(g.Region), string(g.Condition), g.PriceChartingURL, g.FinnURL, g.Sold).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: add game: %w", err)
	}
	return id, nil
}

// LoadGame returns the game with the given id, or ErrNotFound.
func (ps *PostgresStore) LoadGame(ctx context.Context, id int64) (*models.Game, error) {
	var (
		g                  models.Game
		region, condition  string
		marketVal, sellVal sql.NullFloat64
		updatedAt          sql.NullTime
	)
	err := ps.db.QueryRowContext(ctx, `
		SELECT id, name, platform, region, condition, pricecharting_url, finn_url, sold,
		       market_value, selling_value, currency, prioritized_source, value_updated_at
		FROM games
		WHERE id = $1
	`, id).Scan(
		&g.ID, &g.Name, &g.Platform, &region, &condition, &g.PriceChartingURL, &g.FinnURL, &g.Sold,
		&marketVal, &sellVal, &g.Currency, &g.PrioritizedSource, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load game %d: %w", id, err)
	}

	g.Region = models.Region(region)
	g.Condition = models.Condition(condition)
	if marketVal.Valid {
		g.MarketValue = models.Float(marketVal.Float64)
	}
	if sellVal.Valid {
		g.SellingValue = models.Float(sellVal.Float64)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		g.ValueUpdatedAt = &t
	}
	return &g, nil
}

// PersistChosenURLs stores the source URLs a lookup settled on.
func (ps *PostgresStore) PersistChosenURLs(ctx context.Context, id int64, pcURL, finnURL string) error {
	return ps.updateOne(ctx, "persist urls", id, `
		UPDATE games SET pricecharting_url = $2, finn_url = $3 WHERE id = $1
	`, id, pcURL, finnURL)
}

// PersistMarketValue stores a reconciled value on the game.
func (ps *PostgresStore) PersistMarketValue(ctx context.Context, id int64, res models.MarketValueResult) error {
	source := ""
	if res.PrioritizedSource != nil {
		source = *res.PrioritizedSource
	}
	return ps.updateOne(ctx, "persist value", id, `
		UPDATE games
		SET market_value = $2, selling_value = $3, currency = $4, prioritized_source = $5, value_updated_at = NOW()
		WHERE id = $1
	`, id, nullable(res.MarketValue), nullable(res.SellingValue), res.Currency, source)
}

func (ps *PostgresStore) updateOne(ctx context.Context, op string, id int64, query string, args ...any) error {
	r, err := ps.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("postgres: %s: %w", op, err)
	}
	if n, err := r.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// RecordObservation appends a history row. Unknown tags are rejected.
func (ps *PostgresStore) RecordObservation(ctx context.Context, gameID int64, value float64, tag string) error {
	if _, ok := historyTags[tag]; !ok {
		return fmt.Errorf("postgres: unknown history source %q", tag)
	}
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO price_history (game_id, value, source) VALUES ($1, $2, $3)
	`, gameID, value, tag)
	if err != nil {
		return fmt.Errorf("postgres: record observation: %w", err)
	}
	return nil
}

// HistoryEntry is one stored observation.
type HistoryEntry struct {
	Value      float64
	Source     string
	RecordedAt time.Time
}

// History returns a game's observations, oldest first.
func (ps *PostgresStore) History(ctx context.Context, gameID int64) ([]HistoryEntry, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT value, source, recorded_at FROM price_history WHERE game_id = $1 ORDER BY id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("postgres: history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.Value, &h.Source, &h.RecordedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// MarkupMultiplier reads the stored multiplier. ok is false when unset.
func (ps *PostgresStore) MarkupMultiplier(ctx context.Context) (float64, bool, error) {
	var raw string
	err := ps.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, MarkupSettingKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("postgres: read markup: %w", err)
	}
	m, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("postgres: markup %q: %w", raw, err)
	}
	return m, true, nil
}

// SetMarkupMultiplier stores the multiplier used for selling values.
func (ps *PostgresStore) SetMarkupMultiplier(ctx context.Context, m float64) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, MarkupSettingKey, strconv.FormatFloat(m, 'f', -1, 64))
	if err != nil {
		return fmt.Errorf("postgres: set markup: %w", err)
	}
	return nil
}

// ListGameIDs returns game ids in insertion order.
func (ps *PostgresStore) ListGameIDs(ctx context.Context, includeSold bool) ([]int64, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT id FROM games WHERE $1 OR NOT sold ORDER BY id
	`, includeSold)
	if err != nil {
		return nil, fmt.Errorf("postgres: list games: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
