package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
)

func TestParseDollarPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"$59.99", 59.99, true},
		{" $1,200.50 ", 1200.50, true},
		{"Loose: $ 12", 12, true},
		{"-", 0, false},
		{"", 0, false},
		{"$0.00", 0, false},
		{"59.99", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDollarPrice(tt.raw)
		assert.Equal(t, tt.ok, ok, "ParseDollarPrice(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "ParseDollarPrice(%q)", tt.raw)
	}
}

func TestParseKronePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"650 kr", 650, true},
		{"1 250 kr", 1250, true},
		{"1\u00a0250 kr", 1250, true},
		{"1.250,- kr", 1250, true},
		{"Pris: 300 KR", 300, true},
		{"0 kr", 0, false},
		{"150 000 kr", 0, false},
		{"Gis bort", 0, false},
		{"2 stk 100 kr", 100, true},
		{"300 kroner", 300, true},
		{"FIFA 21 PS4 200 kr", 200, true},
		{"Mario Kart 8 350 kr", 350, true},
		{"Call of Duty Black Ops 3 1 250 kr", 1250, true},
		{"Gran Turismo 7 450 kr", 450, true},
		{"Pris 1 250 kr", 1250, true},
		{"1250 kr", 1250, true},
	}

	for _, tt := range tests {
		got, ok := ParseKronePrice(tt.raw)
		assert.Equal(t, tt.ok, ok, "ParseKronePrice(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "ParseKronePrice(%q)", tt.raw)
	}
}

func TestNormaliseText(t *testing.T) {
	assert.Equal(t, "Super Mario Odyssey", NormaliseText("  Super\n\tMario   Odyssey "))
	assert.Equal(t, "", NormaliseText(" \n "))
}

func TestHarvestEmpty(t *testing.T) {
	assert.True(t, Harvest{}.Empty())
	assert.True(t, Harvest{Listings: []models.SearchResult{{DisplayName: "x"}}}.Empty())
	assert.False(t, Harvest{Value: models.Float(1)}.Empty())
	assert.False(t, Harvest{Listings: []models.SearchResult{{PreviewPrice: models.Float(100)}}}.Empty())
}
