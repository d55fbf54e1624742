package models

// PriceQuery is the immutable input to one lookup.
type PriceQuery struct {
	GameName            string    `json:"gameName"`
	Platform            string    `json:"platform"`
	Region              Region    `json:"region"`
	Condition           Condition `json:"condition"`
	WantMultipleResults bool      `json:"wantMultipleResults"`
}

// SearchResult is one candidate found on a listing page. PreviewPrice is nil
// when the row had no parsable price; such rows are shown but never aggregated.
type SearchResult struct {
	Source        Source   `json:"source"`
	DisplayName   string   `json:"displayName"`
	PlatformLabel string   `json:"platformLabel"`
	SourceURL     string   `json:"sourceUrl"`
	PreviewPrice  *float64 `json:"previewPrice"`
	RawPriceText  string   `json:"rawPriceText,omitempty"`
}

// SourceObservation is what one site yielded for one lookup. A nil Value
// means nothing usable was found, which is not an error.
type SourceObservation struct {
	Source   Source   `json:"source"`
	Value    *float64 `json:"value"`
	Currency string   `json:"currency"`
	URL      string   `json:"url,omitempty"`
}

// Found reports whether the observation carries a value.
func (o SourceObservation) Found() bool {
	return o.Value != nil
}

// SourceBreakdown lists the raw value each site produced.
type SourceBreakdown struct {
	PriceCharting *float64 `json:"pricecharting"`
	Finn          *float64 `json:"finn"`
}

// MarketValueResult is the reconciled outcome of one lookup. Currency is
// always that of PrioritizedSource.
type MarketValueResult struct {
	MarketValue       *float64        `json:"marketValue"`
	SellingValue      *float64        `json:"sellingValue"`
	Currency          string          `json:"currency"`
	Sources           SourceBreakdown `json:"sources"`
	PrioritizedSource *string         `json:"prioritizedSource"`
}

// Found reports whether a market value was determined.
func (r MarketValueResult) Found() bool {
	return r.MarketValue != nil
}

// MultiSearchResult is returned when the caller asked for candidates instead
// of a single value. Resolved is set when exactly one candidate existed and it
// was looked up directly.
type MultiSearchResult struct {
	PriceCharting []SearchResult     `json:"pricecharting"`
	Finn          []SearchResult     `json:"finn"`
	Resolved      *MarketValueResult `json:"resolved,omitempty"`
}

// Total is the number of candidates across both sites.
func (m MultiSearchResult) Total() int {
	return len(m.PriceCharting) + len(m.Finn)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
