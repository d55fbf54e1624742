package pricecharting

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

const base = "https://www.pricecharting.com"

func TestBuildConsolePath(t *testing.T) {
	tests := []struct {
		platform string
		region   models.Region
		want     string
	}{
		{"PlayStation 4", models.RegionPAL, "pal-playstation-4"},
		{"ps4", models.RegionPAL, "pal-playstation-4"},
		{"PS1", models.RegionNTSC, "playstation"},
		{"ps2", models.RegionNTSCJ, "jp-playstation-2"},
		{"snes", models.RegionPAL, "pal-super-nintendo"},
		{"nes", models.RegionPAL, "pal-nes"},
		{"snes", models.RegionNone, "super-nintendo"},
		{"nes", models.RegionNone, "nes"},
		{"xbox one", models.RegionNTSC, "xbox-one"},
		{"xbox 360", models.RegionPAL, "pal-xbox-360"},
		{"xsx", models.RegionPAL, "pal-xbox-series-x"},
		{"original xbox", models.RegionOther, "xbox"},
		{"3ds", models.RegionPAL, "pal-nintendo-3ds"},
		{"ds", models.RegionPAL, "pal-nintendo-ds"},
		{"wiiu", models.RegionNTSC, "wii-u"},
		{"wii", models.RegionNTSC, "wii"},
		{"gba", models.RegionNTSCJ, "jp-gameboy-advance"},
		{"gameboy", models.RegionNTSC, "gameboy"},
		{"PSP", models.RegionPAL, "pal-psp"},
		{"master system", models.RegionNTSCJ, "sega-master-system"},
		{"Atari Jaguar", models.RegionPAL, ""},
		{"", models.RegionPAL, ""},
	}

	for _, tt := range tests {
		t.Run(tt.platform+"/"+string(tt.region), func(t *testing.T) {
			assert.Equal(t, tt.want, BuildConsolePath(tt.platform, tt.region))
		})
	}
}

func TestBuildGameSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"The Legend of Zelda: Breath of the Wild", "legend-of-zelda-breath-of-wild"},
		{"Mario Kart 8", "mario-kart-8"},
		{"Ratchet & Clank", "ratchet-and-clank"},
		{"Uncharted 4: A Thief's End", "uncharted-4-a-thiefs-end"},
		{"  Pokémon   Sword!  ", "pokemon-sword"},
		{"Tom Clancy's Rainbow Six [Siege]", "tom-clancys-rainbow-six-siege"},
		{"Sonic - The Hedgehog", "sonic-hedgehog"},
		{"The", "the"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildGameSlug(tt.name))
		})
	}
}

func TestBuildDirectURL(t *testing.T) {
	got := BuildDirectURL(base+"/", "PlayStation 4", models.RegionPAL, "Uncharted 4")
	assert.Equal(t, base+"/game/pal-playstation-4/uncharted-4", got)

	assert.Empty(t, BuildDirectURL(base, "Atari Jaguar", models.RegionPAL, "Alien vs Predator"))
	assert.Empty(t, BuildDirectURL(base, "ps4", models.RegionPAL, "!!!"))
}

func TestBuildSearchURL(t *testing.T) {
	raw := BuildSearchURL(base, models.PriceQuery{
		GameName: "Gran Turismo",
		Platform: "ps2",
		Region:   models.RegionPAL,
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/search-products", u.Path)
	assert.Equal(t, "prices", u.Query().Get("type"))
	assert.Equal(t, "Gran Turismo PAL PlayStation 2", u.Query().Get("q"))

	u, err = url.Parse(BuildSearchURL(base, models.PriceQuery{GameName: "Tetris", Platform: "gb", Region: models.RegionNTSC}))
	require.NoError(t, err)
	assert.Equal(t, "Tetris Game Boy", u.Query().Get("q"))
}
