package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSetting is returned when a required setting has no value and no default.
var ErrMissingSetting = errors.New("config: missing required setting")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ChromeBin  string
	Headless   bool
	NavTimeout time.Duration
	MaxRetries int

	PaceMin       time.Duration
	PaceMax       time.Duration
	BatchDelayMin time.Duration
	BatchDelayMax time.Duration

	DefaultMarkup float64

	PriceChartingBaseURL string
	FinnBaseURL          string

	HTTPAddr      string
	LogLevel      string
	ReportCSVPath string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "flipstash"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "flipstash"),
		PostgresDB:       getEnv("POSTGRES_DB", "flipstash"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ChromeBin:  getEnv("CHROME_BIN", ""),
		Headless:   getEnvBool("HEADLESS", true),
		NavTimeout: getEnvDuration("NAV_TIMEOUT", 45*time.Second),
		MaxRetries: getEnvInt("MAX_RETRIES", 2),

		PaceMin:       getEnvDuration("PACE_MIN", 1*time.Second),
		PaceMax:       getEnvDuration("PACE_MAX", 4*time.Second),
		BatchDelayMin: getEnvDuration("BATCH_DELAY_MIN", 20*time.Second),
		BatchDelayMax: getEnvDuration("BATCH_DELAY_MAX", 45*time.Second),

		DefaultMarkup: getEnvFloat("DEFAULT_MARKUP", 1.10),

		PriceChartingBaseURL: strings.TrimRight(getEnv("PRICECHARTING_BASE_URL", "https://www.pricecharting.com"), "/"),
		FinnBaseURL:          strings.TrimRight(getEnv("FINN_BASE_URL", "https://www.finn.no"), "/"),

		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ReportCSVPath: getEnv("REPORT_CSV_PATH", "./output/refresh_report.csv"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.PostgresHost == "" || c.PostgresDB == "" {
		return ErrMissingSetting
	}
	if c.DefaultMarkup <= 0 {
		c.DefaultMarkup = 1.0
	}
	if c.PaceMax < c.PaceMin {
		c.PaceMax = c.PaceMin
	}
	if c.BatchDelayMax < c.BatchDelayMin {
		c.BatchDelayMax = c.BatchDelayMin
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("30s") or bare milliseconds ("1500").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
