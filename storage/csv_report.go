package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

// CSVReportWriter appends batch item results to a CSV file, one row per
// game. It is safe for concurrent use.
type CSVReportWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	now    func() time.Time
}

var reportHeader = []string{
	"run_id", "game_id", "name", "status", "reason",
	"market_value", "selling_value", "currency", "source", "written_at",
}

// NewCSVReportWriter opens (or creates) the CSV file at path for appending.
// The header row is written only when the file is new or empty.
// Intermediate directories are created automatically.
func NewCSVReportWriter(path string) (*CSVReportWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: stat %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(reportHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVReportWriter{file: f, writer: w, now: time.Now}, nil
}

// WriteResults writes one row per result.
func (c *CSVReportWriter) WriteResults(runID string, results []models.BatchItemResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := c.now().UTC().Format(time.RFC3339)
	for _, r := range results {
		row := []string{
			runID,
			strconv.FormatInt(r.GameID, 10),
			r.Name,
			r.Status,
			r.Reason,
			"", "", "", "",
			stamp,
		}
		if res := r.Result; res != nil && res.Found() {
			row[5] = formatValue(res.MarketValue)
			row[6] = formatValue(res.SellingValue)
			row[7] = res.Currency
			row[8] = *res.PrioritizedSource
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVReportWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
