package models

// Event types emitted by the batch stream.
const (
	EventStart           = "start"
	EventProgress        = "progress"
	EventMultipleResults = "multipleResults"
	EventComplete        = "complete"
	EventError           = "error"
)

// Batch item statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// BatchStats are the running counters carried on every progress event.
type BatchStats struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// BatchItemResult records what happened to one game in a batch.
type BatchItemResult struct {
	GameID int64              `json:"gameId"`
	Name   string             `json:"name,omitempty"`
	Status string             `json:"status"`
	Reason string             `json:"reason,omitempty"`
	Result *MarketValueResult `json:"result,omitempty"`
}

// BatchSummary is the payload of the final complete event.
type BatchSummary struct {
	RunID     string            `json:"runId"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
	Details   []BatchItemResult `json:"details"`
}

// ProgressEvent is one message on the batch stream. Only the fields relevant
// to Type are populated.
type ProgressEvent struct {
	Type      string           `json:"type"`
	RunID     string           `json:"runId,omitempty"`
	Total     int              `json:"total"`
	Completed int              `json:"completed,omitempty"`
	Current   string           `json:"current,omitempty"`
	Result    *BatchItemResult `json:"result,omitempty"`
	Stats     *BatchStats      `json:"stats,omitempty"`
	GameID    int64            `json:"gameId,omitempty"`
	Results   any              `json:"results,omitempty"`
	Message   string           `json:"message,omitempty"`
}
