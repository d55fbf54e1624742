package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/scraper"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
		ok   bool
	}{
		{[]float64{100, 200, 300}, 200, true},
		{[]float64{100, 200}, 150, true},
		{[]float64{300, 100, 200}, 200, true},
		{[]float64{400, 100, 300, 200}, 250, true},
		{[]float64{42}, 42, true},
		{nil, 0, false},
		{[]float64{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := Median(tt.in)
		assert.Equal(t, tt.ok, ok, "Median(%v) ok", tt.in)
		assert.Equal(t, tt.want, got, "Median(%v)", tt.in)
	}
}

func TestMedianLeavesInputUntouched(t *testing.T) {
	in := []float64{3, 1, 2}
	_, _ = Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestComputeSelling(t *testing.T) {
	assert.Equal(t, 54.99, ComputeSelling(49.99, 1.10))
	assert.Equal(t, 715.0, ComputeSelling(650, 1.10))
	assert.Equal(t, 10.0, ComputeSelling(10, 1))
	assert.Equal(t, 0.33, ComputeSelling(0.333, 1))
}

func TestReconcile(t *testing.T) {
	t.Run("marketplace wins", func(t *testing.T) {
		res := Reconcile(models.Float(59.99), models.Float(650), 1.10)
		require.True(t, res.Found())
		assert.Equal(t, 650.0, *res.MarketValue)
		assert.Equal(t, models.CurrencyNOK, res.Currency)
		assert.Equal(t, "finn", *res.PrioritizedSource)
		assert.Equal(t, 715.0, *res.SellingValue)
		assert.Equal(t, 59.99, *res.Sources.PriceCharting)
		assert.Equal(t, 650.0, *res.Sources.Finn)
	})

	t.Run("catalog only", func(t *testing.T) {
		res := Reconcile(models.Float(59.99), nil, 1.10)
		require.True(t, res.Found())
		assert.Equal(t, 59.99, *res.MarketValue)
		assert.Equal(t, models.CurrencyUSD, res.Currency)
		assert.Equal(t, "pricecharting", *res.PrioritizedSource)
		assert.Equal(t, 65.99, *res.SellingValue)
		assert.Nil(t, res.Sources.Finn)
	})

	t.Run("nothing found", func(t *testing.T) {
		res := Reconcile(nil, nil, 1.10)
		assert.False(t, res.Found())
		assert.Nil(t, res.SellingValue)
		assert.Nil(t, res.PrioritizedSource)
		assert.Nil(t, res.Sources.PriceCharting)
		assert.Nil(t, res.Sources.Finn)
		assert.Empty(t, res.Currency)
	})
}

func TestObserve(t *testing.T) {
	t.Run("exact value", func(t *testing.T) {
		obs := Observe(scraper.Harvest{Source: models.SourcePriceCharting, URL: "u", Value: models.Float(12.345)})
		assert.Equal(t, models.Float(12.35), obs.Value)
		assert.Equal(t, models.CurrencyUSD, obs.Currency)
		assert.Equal(t, "u", obs.URL)
	})

	t.Run("median of listings rounded to whole kroner", func(t *testing.T) {
		obs := Observe(scraper.Harvest{Source: models.SourceFinn, Listings: []models.SearchResult{
			{PreviewPrice: models.Float(299)},
			{PreviewPrice: nil},
			{PreviewPrice: models.Float(350)},
		}})
		assert.Equal(t, models.Float(325), obs.Value)
		assert.Equal(t, models.CurrencyNOK, obs.Currency)
	})

	t.Run("no prices", func(t *testing.T) {
		obs := Observe(scraper.Harvest{Source: models.SourceFinn, Listings: []models.SearchResult{{DisplayName: "x"}}})
		assert.False(t, obs.Found())
		assert.Equal(t, models.SourceFinn, obs.Source)
	})
}
