package finn

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

const base = "https://www.finn.no"

const searchPage = `<html><body><main>
<div class="ads__unit__header">Annonse</div>
<article class="sf-search-ad relative">
  <h2 class="h4"><a class="sf-search-ad-link" href="/bap/forsale/ad.html?finnkode=111">Super Mario Odyssey Switch</a></h2>
  <div class="text-xs">Oslo</div>
  <div class="font-bold"><span>350 kr</span></div>
</article>
<article class="sf-search-ad relative">
  <h2 class="h4"><a class="sf-search-ad-link" href="https://www.finn.no/bap/forsale/ad.html?finnkode=222">Super Mario Odyssey PS4 nesten ny</a></h2>
  <div class="font-bold"><span>1&nbsp;250 kr</span></div>
</article>
<article class="sf-search-ad relative">
  <h2 class="h4"><a class="sf-search-ad-link" href="/bap/forsale/ad.html?finnkode=333">Gis bort: Mario Odyssey</a></h2>
  <div class="font-bold"><span>Gis bort</span></div>
</article>
<article class="sf-search-ad relative">
  <h2 class="h4"><a class="sf-search-ad-link" href="/bap/forsale/ad.html?finnkode=111#gallery">Super Mario Odyssey Switch</a></h2>
  <div class="font-bold"><span>350 kr</span></div>
</article>
<article class="sf-search-ad relative">
  <a class="sf-search-ad-link" href="/bap/forsale/ad.html?finnkode=444">Samling av 10 spill</a>
  <div class="font-bold"><span>1 500 kr</span></div>
</article>
</main></body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractListings(t *testing.T) {
	got := ExtractListings(mustDoc(t, searchPage), base)

	require.Len(t, got, 3)
	assert.Equal(t, "Super Mario Odyssey Switch", got[0].DisplayName)
	assert.Equal(t, base+"/bap/forsale/ad.html?finnkode=111", got[0].SourceURL)
	assert.Equal(t, models.Float(350), got[0].PreviewPrice)
	assert.Equal(t, models.SourceFinn, got[0].Source)

	assert.Equal(t, models.Float(1250), got[1].PreviewPrice)

	assert.Equal(t, "Samling av 10 spill", got[2].DisplayName)
	assert.Equal(t, models.Float(1500), got[2].PreviewPrice)
}

func TestExtractListingsGenericCards(t *testing.T) {
	doc := mustDoc(t, `<ul>
		<li><a href="/item/9"><h3>Halo 3 Xbox 360</h3></a><p>Pris 120 kr</p></li>
		<li><a href="/item/10">Halo Reach Xbox 360</a> <span>90,- kr</span></li>
		<li><a href="/help">Hjelp</a></li>
	</ul>`)

	got := ExtractListings(doc, base)
	require.Len(t, got, 2)
	assert.Equal(t, "Halo 3 Xbox 360", got[0].DisplayName)
	assert.Equal(t, models.Float(120), got[0].PreviewPrice)
	assert.Equal(t, base+"/item/9", got[0].SourceURL)
	assert.Equal(t, "Halo Reach Xbox 360", got[1].DisplayName)
	assert.Equal(t, models.Float(90), got[1].PreviewPrice)
}

func TestExtractListingsTitleEndingInNumber(t *testing.T) {
	doc := mustDoc(t, `<main>
		<article class="sf-search-ad"><a href="/item/2">Gran Turismo 7</a> 450 kr</article>
		<article class="sf-search-ad"><div><a href="/item/3">Mario Kart 8</a><div>350 kr</div></div></article>
		<article class="sf-search-ad"><a href="/item/4">Call of Duty Black Ops 3</a> 1 250 kr</article>
	</main>`)

	got := ExtractListings(doc, base)
	require.Len(t, got, 3)
	assert.Equal(t, models.Float(450), got[0].PreviewPrice)
	assert.Equal(t, models.Float(350), got[1].PreviewPrice)
	assert.Equal(t, "350 kr", got[1].RawPriceText)
	assert.Equal(t, models.Float(1250), got[2].PreviewPrice)
}

func TestExtractListingsNoCards(t *testing.T) {
	assert.Empty(t, ExtractListings(mustDoc(t, `<main><p>Ingen treff</p></main>`), base))
}

func TestExtractSingleValue(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<header><span>Varsler 3 kr</span></header>
		<main>
			<h1>Super Mario Odyssey</h1>
			<div data-testid="price"><p class="h2">450 kr</p></div>
		</main></body></html>`)
	assert.Equal(t, models.Float(450), ExtractSingleValue(doc))

	got := ExtractItemResult(doc, base+"/item/5")
	assert.Equal(t, "Super Mario Odyssey", got.DisplayName)
	assert.Equal(t, models.Float(450), got.PreviewPrice)

	assert.Nil(t, ExtractSingleValue(mustDoc(t, `<main><h1>Byttes</h1></main>`)))
}
