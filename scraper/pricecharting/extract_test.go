package pricecharting

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

const detailPage = `<html><body>
<h1 id="product_name">Uncharted 4: A Thief's End <a href="/console/pal-playstation-4">PAL Playstation 4</a></h1>
<div id="price_data_wrapper">
<table id="price_data" class="info_box">
  <thead><tr><th>Loose Price</th><th>Complete Price</th><th>New Price</th><th>Box Only Price</th></tr></thead>
  <tbody>
    <tr>
      <td id="used_price"><span class="price js-price">$8.25</span></td>
      <td id="complete_price"><span class="price js-price">$12.40</span></td>
      <td id="new_price"><span class="price js-price">$1,024.99</span></td>
      <td id="box_only_price"><span class="price js-price">-</span></td>
    </tr>
    <tr>
      <td>$1.00</td><td>$2.00</td><td>$3.00</td><td>$4.00</td>
    </tr>
  </tbody>
</table>
</div>
</body></html>`

const listingPage = `<html><body>
<table id="games_table" class="hoverable-rows">
  <thead><tr><th>Title</th><th>Console</th><th>Loose</th><th>CIB</th><th>New</th></tr></thead>
  <tbody>
    <tr>
      <td class="title"><a href="/game/playstation-4/uncharted-4">Uncharted 4</a></td>
      <td class="console">Playstation 4</td>
      <td class="price">$9.00</td><td class="price">$14.50</td><td class="price">$30.00</td>
    </tr>
    <tr>
      <td class="title"><a href="/game/pal-playstation-4/uncharted-4">Uncharted 4</a></td>
      <td class="console">PAL Playstation 4</td>
      <td class="price">$7.00</td><td class="price">$11.00</td><td class="price">$25.00</td>
    </tr>
    <tr>
      <td class="title"><a href="https://www.pricecharting.com/game/jp-playstation-4/uncharted-4">Uncharted 4</a></td>
      <td class="console">JP Playstation 4</td>
      <td class="price">$6.00</td><td class="price">N/A</td><td class="price">$20.00</td>
    </tr>
    <tr>
      <td class="title"><a href="/game/pal-playstation-4/uncharted-4">Uncharted 4</a></td>
      <td class="console">PAL Playstation 4</td>
      <td class="price">$7.00</td><td class="price">$11.00</td><td class="price">$25.00</td>
    </tr>
  </tbody>
</table>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractSingleValue(t *testing.T) {
	doc := mustDoc(t, detailPage)

	tests := []struct {
		label string
		want  *float64
	}{
		{"Complete", models.Float(12.40)},
		{"Loose", models.Float(8.25)},
		{"New", models.Float(1024.99)},
		// first row has no amount, so the next row wins
		{"Box Only", models.Float(4.00)},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSingleValue(doc, tt.label))
		})
	}
}

func TestExtractSingleValueFallsBackToPriceHeader(t *testing.T) {
	doc := mustDoc(t, `<table id="price_data"><tr><th>Item</th><th>Price</th></tr>
		<tr><td>Game</td><td>$15.00</td></tr></table>`)
	assert.Equal(t, models.Float(15.00), ExtractSingleValue(doc, "Manual Only"))
}

func TestExtractSingleValueNoTable(t *testing.T) {
	assert.Nil(t, ExtractSingleValue(mustDoc(t, `<p>Nothing here</p>`), "Complete"))
	assert.Nil(t, ExtractSingleValue(mustDoc(t, `<table id="price_data"><tr><th>Name</th></tr><tr><td>x</td></tr></table>`), "Complete"))
}

func TestExtractListings(t *testing.T) {
	got := ExtractListings(mustDoc(t, listingPage), "Complete", base)

	require.Len(t, got, 3)
	assert.Equal(t, "Uncharted 4", got[0].DisplayName)
	assert.Equal(t, "Playstation 4", got[0].PlatformLabel)
	assert.Equal(t, base+"/game/playstation-4/uncharted-4", got[0].SourceURL)
	assert.Equal(t, models.Float(14.50), got[0].PreviewPrice)
	assert.Equal(t, "$14.50", got[0].RawPriceText)
	assert.Equal(t, models.SourcePriceCharting, got[0].Source)

	assert.Equal(t, "PAL Playstation 4", got[1].PlatformLabel)
	assert.Equal(t, models.Float(11.00), got[1].PreviewPrice)

	assert.Equal(t, base+"/game/jp-playstation-4/uncharted-4", got[2].SourceURL)
	assert.Nil(t, got[2].PreviewPrice)
	assert.Equal(t, "N/A", got[2].RawPriceText)
}

func TestExtractListingsGenericTable(t *testing.T) {
	doc := mustDoc(t, `<table><tr><td>ad</td></tr></table>
		<table><tr><th>Name</th><th>System</th><th>Loose Price</th></tr>
		<tr><td><a href="/game/gameboy/tetris">Tetris</a></td><td>GameBoy</td><td>$5.10</td></tr></table>`)

	got := ExtractListings(doc, "Sealed", base)
	require.Len(t, got, 1)
	assert.Equal(t, "GameBoy", got[0].PlatformLabel)
	assert.Equal(t, models.Float(5.10), got[0].PreviewPrice)
}

func TestExtractDetailResult(t *testing.T) {
	got := ExtractDetailResult(mustDoc(t, detailPage), "Complete", base+"/game/pal-playstation-4/uncharted-4")
	assert.Equal(t, "Uncharted 4: A Thief's End", got.DisplayName)
	assert.Equal(t, "PAL Playstation 4", got.PlatformLabel)
	assert.Equal(t, models.Float(12.40), got.PreviewPrice)
}

func TestClassifyPage(t *testing.T) {
	assert.Equal(t, PageDetail, ClassifyPage(mustDoc(t, detailPage)))
	assert.Equal(t, PageListing, ClassifyPage(mustDoc(t, listingPage)))
	assert.Equal(t, PageEmpty, ClassifyPage(mustDoc(t, `<h1>No results</h1>`)))
}

func TestBestMatch(t *testing.T) {
	results := ExtractListings(mustDoc(t, listingPage), "Complete", base)

	q := models.PriceQuery{GameName: "Uncharted 4", Platform: "ps4", Region: models.RegionPAL}
	assert.Equal(t, 1, BestMatch(results, q))

	q.Region = models.RegionNTSCJ
	assert.Equal(t, 2, BestMatch(results, q))

	q.Region = models.RegionNTSC
	assert.Equal(t, 0, BestMatch(results, q))

	assert.Equal(t, -1, BestMatch(nil, q))
}

func TestBestMatchFallsBackToFirstRow(t *testing.T) {
	results := []models.SearchResult{
		{DisplayName: "Pac-Man", PlatformLabel: "Atari 2600"},
		{DisplayName: "Pac-Man", PlatformLabel: "Arcade"},
	}
	q := models.PriceQuery{GameName: "Zelda", Platform: "Nintendo 3DS", Region: models.RegionPAL}
	assert.Equal(t, 0, BestMatch(results, q))
}
