// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort  string
	BaseURL     string
	MetricsPort string
	TrustProxy  bool

	// CORS
	CORSAllowedOrigin string

	// Districts
	DistrictsGeoJSONPath string

	// Rate Limit（req/min/IP）
	RateLimitGeneral int
	RateLimitGeocode int

	// Photon
	PhotonURL      string
	GeocodeTimeout time.Duration

	// Kältehilfe scraper
	KaeltehilfeListURL       string
	KaeltehilfeOverridesPath string
	ScrapeInterval           time.Duration
	ScrapeTimeout            time.Duration
	ScrapePageSize           int
	ScrapeMaxPages           int
	ScrapeSleep              time.Duration
	ScrapeCommit             bool

	// Capacity expiry
	CapacityTTL time.Duration

	// Coordinate backfill
	BackfillInterval    time.Duration
	BackfillAPIInterval time.Duration
	BackfillMaxPerCycle int
	BackfillCommit      bool
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（既存の環境変数は上書きしない）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".envの読み込みに失敗しました", slog.String("error", err.Error()))
	}

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.TrustProxy = getEnvBool("TRUST_PROXY", false)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.DistrictsGeoJSONPath = getEnvString("DISTRICTS_GEOJSON_PATH", "bezirksgrenzen.geojson")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitGeocode = getEnvInt("RATE_LIMIT_GEOCODE", 30)
	cfg.PhotonURL = getEnvString("PHOTON_URL", "https://photon.komoot.io/api/")
	cfg.GeocodeTimeout = getEnvDuration("GEOCODE_TIMEOUT", 5*time.Second)

	cfg.KaeltehilfeListURL = getEnvString("KAELTEHILFE_LIST_URL", "https://kaeltehilfe-berlin.de/angebote/filter/1")
	cfg.KaeltehilfeOverridesPath = getEnvString("KAELTEHILFE_OVERRIDES_PATH", "")
	cfg.ScrapeInterval = getEnvDuration("SCRAPE_INTERVAL", 24*time.Hour)
	cfg.ScrapeTimeout = getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second)
	cfg.ScrapePageSize = getEnvInt("SCRAPE_PAGE_SIZE", 10)
	cfg.ScrapeMaxPages = getEnvInt("SCRAPE_MAX_PAGES", 200)
	cfg.ScrapeSleep = getEnvDuration("SCRAPE_SLEEP", 200*time.Millisecond)
	cfg.ScrapeCommit = getEnvBool("SCRAPE_COMMIT", false)

	cfg.CapacityTTL = getEnvDuration("CAPACITY_TTL", 48*time.Hour)

	cfg.BackfillInterval = getEnvDuration("BACKFILL_INTERVAL", 6*time.Hour)
	cfg.BackfillAPIInterval = getEnvDuration("BACKFILL_API_INTERVAL", 150*time.Millisecond)
	cfg.BackfillMaxPerCycle = getEnvInt("BACKFILL_MAX_PER_CYCLE", 200)
	cfg.BackfillCommit = getEnvBool("BACKFILL_COMMIT", false)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
