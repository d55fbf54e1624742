package finn

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

func TestBuildSearchURL(t *testing.T) {
	raw := BuildSearchURL(base+"/", models.PriceQuery{GameName: " Gran Turismo 4 ", Platform: "PlayStation 2"})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/bap/forsale/search.html", u.Path)
	assert.Equal(t, "Gran Turismo 4 ps2", u.Query().Get("q"))
}

func TestBuildSearchQueryUnknownPlatform(t *testing.T) {
	assert.Equal(t, "Alien vs Predator atari jaguar", BuildSearchQuery(models.PriceQuery{GameName: "Alien vs Predator", Platform: "Atari Jaguar"}))
	assert.Equal(t, "Tetris", BuildSearchQuery(models.PriceQuery{GameName: "Tetris"}))
}

func TestIsItemURL(t *testing.T) {
	assert.True(t, IsItemURL("https://www.finn.no/bap/forsale/ad.html?finnkode=123"))
	assert.True(t, IsItemURL("https://www.finn.no/recommerce/forsale/item/123"))
	assert.False(t, IsItemURL("https://www.finn.no/bap/forsale/search.html?q=halo"))
}
