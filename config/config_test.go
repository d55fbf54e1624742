package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_MARKUP", "")
	t.Setenv("NAV_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, 1.10, cfg.DefaultMarkup)
	assert.Equal(t, 45*time.Second, cfg.NavTimeout)
	assert.Equal(t, "https://www.pricecharting.com", cfg.PriceChartingBaseURL)
	assert.True(t, cfg.Headless)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEFAULT_MARKUP", "1.25")
	t.Setenv("PACE_MIN", "1500")
	t.Setenv("PACE_MAX", "3s")
	t.Setenv("FINN_BASE_URL", "http://localhost:9999/")
	t.Setenv("HEADLESS", "false")

	cfg := Load()
	assert.Equal(t, 1.25, cfg.DefaultMarkup)
	assert.Equal(t, 1500*time.Millisecond, cfg.PaceMin)
	assert.Equal(t, 3*time.Second, cfg.PaceMax)
	assert.Equal(t, "http://localhost:9999", cfg.FinnBaseURL)
	assert.False(t, cfg.Headless)
}

func TestValidate(t *testing.T) {
	cfg := &Config{PostgresHost: "db", PostgresDB: "x", DefaultMarkup: 0, PaceMin: time.Second}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.DefaultMarkup)
	assert.Equal(t, time.Second, cfg.PaceMax)

	require.ErrorIs(t, (&Config{}).Validate(), ErrMissingSetting)
}
