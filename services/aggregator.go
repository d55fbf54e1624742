package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper"
)

// Median returns the middle value of values, or the mean of the two middle
// values for an even count. It reports false for an empty slice.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// RoundUSD rounds to whole cents.
func RoundUSD(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// RoundNOK rounds to whole kroner.
func RoundNOK(v float64) float64 {
	return decimal.NewFromFloat(v).Round(0).InexactFloat64()
}

func roundFor(source models.Source, v float64) float64 {
	if source == models.SourceFinn {
		return RoundNOK(v)
	}
	return RoundUSD(v)
}

func currencyOf(source models.Source) string {
	if source == models.SourceFinn {
		return models.CurrencyNOK
	}
	return models.CurrencyUSD
}

// Observe reduces a harvest to the one value it stands for: the exact page
// price when there is one, else the median of the listing preview prices.
// Listings without a preview price never count.
func Observe(h scraper.Harvest) models.SourceObservation {
	obs := models.SourceObservation{
		Source:   h.Source,
		Currency: currencyOf(h.Source),
		URL:      h.URL,
	}

	if h.Value != nil {
		obs.Value = models.Float(roundFor(h.Source, *h.Value))
		return obs
	}

	prices := make([]float64, 0, len(h.Listings))
	for _, l := range h.Listings {
		if l.PreviewPrice != nil {
			prices = append(prices, *l.PreviewPrice)
		}
	}
	if m, ok := Median(prices); ok {
		obs.Value = models.Float(roundFor(h.Source, m))
	}
	return obs
}

// ComputeSelling applies the markup multiplier and rounds to two decimals.
func ComputeSelling(marketValue, markup float64) float64 {
	return decimal.NewFromFloat(marketValue).
		Mul(decimal.NewFromFloat(markup)).
		Round(2).
		InexactFloat64()
}

// Reconcile picks the market value from the two site values. The krone value
// wins whenever present so that the result never mixes currencies; the
// dollar value is used only when the marketplace had nothing. Both values
// are always reported in Sources.
func Reconcile(pcValue, finnValue *float64, markup float64) models.MarketValueResult {
	res := models.MarketValueResult{
		Sources: models.SourceBreakdown{
			PriceCharting: pcValue,
			Finn:          finnValue,
		},
	}

	var chosen models.Source
	switch {
	case finnValue != nil:
		chosen = models.SourceFinn
		res.MarketValue = models.Float(*finnValue)
	case pcValue != nil:
		chosen = models.SourcePriceCharting
		res.MarketValue = models.Float(*pcValue)
	default:
		return res
	}

	res.Currency = currencyOf(chosen)
	res.PrioritizedSource = models.String(string(chosen))
	res.SellingValue = models.Float(ComputeSelling(*res.MarketValue, markup))
	return res
}
