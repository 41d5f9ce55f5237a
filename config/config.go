package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"meli-trends/models"
	"meli-trends/services"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataDir string
	DocsDir string

	// Ranker policy.
	TopN                int
	PoolSize            int
	MaxClusters         int
	MaxFeatures         int
	ClusterSeed         uint64
	StopWords           []string
	WeightInquiries     float64
	WeightSales         float64
	WeightRating        float64
	WeightFreeShipping  float64
	WeightOfficialStore float64

	// Collector.
	SourceURL      string
	CollectorMode  string // "headless" or "static"
	Scrolls        int
	Pages          int
	RatePerSecond  float64
	MaxConcurrency int
	MaxRetries     int
	RespectRobots  bool
	ChromeBin      string
	UserAgent      string
	Screenshot     bool

	// Snapshot mirror.
	SnapshotMirror   string // "none", "sqlite" or "postgres"
	SQLitePath       string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MinifyReport bool
	Debug        bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	dataDir := getEnv("DATA_DIR", "data")
	return &Config{
		DataDir: dataDir,
		DocsDir: getEnv("DOCS_DIR", "docs"),

		TopN:                getEnvInt("TOP_N", 5),
		PoolSize:            getEnvInt("POOL_SIZE", 30),
		MaxClusters:         getEnvInt("MAX_CLUSTERS", 15),
		MaxFeatures:         getEnvInt("MAX_FEATURES", 500),
		ClusterSeed:         uint64(getEnvInt("CLUSTER_SEED", 42)),
		StopWords:           getEnvList("STOP_WORDS", services.DefaultStopWords),
		WeightInquiries:     getEnvFloat("WEIGHT_INQUIRIES", 0.8),
		WeightSales:         getEnvFloat("WEIGHT_SALES", 0.5),
		WeightRating:        getEnvFloat("WEIGHT_RATING", 20),
		WeightFreeShipping:  getEnvFloat("WEIGHT_FREE_SHIPPING", 15),
		WeightOfficialStore: getEnvFloat("WEIGHT_OFFICIAL_STORE", 10),

		SourceURL:      getEnv("SOURCE_URL", "https://listado.mercadolibre.com.ve/_OrderId_MSGS*"),
		CollectorMode:  getEnv("COLLECTOR_MODE", "headless"),
		Scrolls:        getEnvInt("SCROLLS", 5),
		Pages:          getEnvInt("PAGES", 1),
		RatePerSecond:  getEnvFloat("RATE_PER_SECOND", 1),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RespectRobots:  getEnvBool("RESPECT_ROBOTS", true),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
		Screenshot: getEnvBool("SCREENSHOT", false),

		SnapshotMirror:   getEnv("SNAPSHOT_MIRROR", "none"),
		SQLitePath:       getEnv("SQLITE_PATH", filepath.Join(dataDir, "snapshot.db")),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "meli_trends"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MinifyReport: getEnvBool("MINIFY_REPORT", true),
		Debug:        getEnvBool("LOG_DEBUG", false),
	}
}

// RankerConfig converts the ranking settings into the ranker's policy.
func (c *Config) RankerConfig() services.RankerConfig {
	return services.RankerConfig{
		TopN:        c.TopN,
		PoolSize:    c.PoolSize,
		MaxClusters: c.MaxClusters,
		MaxFeatures: c.MaxFeatures,
		Seed:        c.ClusterSeed,
		StopWords:   c.StopWords,
		Weights: services.Weights{
			Inquiries:     c.WeightInquiries,
			Sales:         c.WeightSales,
			Rating:        c.WeightRating,
			FreeShipping:  c.WeightFreeShipping,
			OfficialStore: c.WeightOfficialStore,
		},
		Defaults: models.DefaultFieldDefaults(),
	}
}

// RawPath is where the collector writes and the ranker reads.
func (c *Config) RawPath() string { return filepath.Join(c.DataDir, "raw.csv") }

// ProcessedPath is where the ranker writes and the renderer reads.
func (c *Config) ProcessedPath() string { return filepath.Join(c.DataDir, "processed.csv") }

// ReportPath is the rendered HTML document.
func (c *Config) ReportPath() string { return filepath.Join(c.DocsDir, "index.html") }

// ScreenshotPath is the optional debug screenshot taken by the headless collector.
func (c *Config) ScreenshotPath() string { return filepath.Join(c.DataDir, "screenshot.png") }

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
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

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
