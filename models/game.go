package models

import "time"

// Region is the release-region variant of a game copy.
type Region string

const (
	RegionPAL   Region = "PAL"
	RegionNTSC  Region = "NTSC"
	RegionNTSCJ Region = "NTSC-J"
	RegionNone  Region = "None"
	RegionOther Region = "Other"
)

// Condition is the physical completeness grade of a game copy.
type Condition string

const (
	ConditionSealed     Condition = "Sealed"
	ConditionCIB        Condition = "CIB"
	ConditionLoose      Condition = "Loose"
	ConditionBoxOnly    Condition = "Box Only"
	ConditionManualOnly Condition = "Manual Only"
)

// Source identifies a pricing site. The values double as history source tags.
type Source string

const (
	SourcePriceCharting Source = "pricecharting"
	SourceFinn          Source = "finn"
)

// Currency codes used by the two sources.
const (
	CurrencyUSD = "USD"
	CurrencyNOK = "NOK"
)

// History source tags accepted by the observation sink.
const (
	TagManual        = "manual"
	TagPriceCharting = "pricecharting"
	TagFinn          = "finn"
	TagAverage       = "average"
	TagImport        = "import"
)

// Game is the stored collection entry as seen by the pricing pipeline.
type Game struct {
	ID               int64
	Name             string
	Platform         string
	Region           Region
	Condition        Condition
	PriceChartingURL string
	FinnURL          string
	Sold             bool

	MarketValue       *float64
	SellingValue      *float64
	Currency          string
	PrioritizedSource string
	ValueUpdatedAt    *time.Time
}

// Query builds the lookup input for this game.
func (g *Game) Query() PriceQuery {
	return PriceQuery{
		GameName:  g.Name,
		Platform:  g.Platform,
		Region:    g.Region,
		Condition: g.Condition,
	}
}

// HasStoredURL reports whether at least one source URL was chosen earlier.
func (g *Game) HasStoredURL() bool {
	return g.PriceChartingURL != "" || g.FinnURL != ""
}
