package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Feed      FeedConfig
	Storage   StorageConfig
	Metrics   MetricsConfig
	App       AppConfig
	Simulator SimulatorConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// FeedConfig points the REST connector at the upstream source-data feed.
type FeedConfig struct {
	BaseURL        string
	Port           string
	TimeoutSeconds int
	// MissingDataAlertPct is the fraction of dropped feed rows above which
	// the connector escalates its data-quality warning to an error.
	MissingDataAlertPct float64
}

// StorageConfig holds the object storage connection for source workbooks.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MetricsConfig carries the classification thresholds and return-simulation
// probabilities injected into the metrics engine.
type MetricsConfig struct {
	LeadTimeExcellentDays int
	LeadTimeGoodDays      int
	MaxLeadTimeDays       int
	FillRateExcellent     float64
	FillRateGood          float64
	ReturnProbabilities   map[string]float64
	DefaultReturnProb     float64
}

type AppConfig struct {
	DataDir      string
	Source       string
	WorkbookPath string
	LogFile      string
}

type SimulatorConfig struct {
	Days       int
	OrderCount int
	Seed       int64
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "supply_chain_analytics")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 60)
		viper.SetDefault("FEED_BASE_URL", "http://localhost:5001")
		viper.SetDefault("FEED_PORT", "5001")
		viper.SetDefault("FEED_TIMEOUT_SECONDS", 30)
		viper.SetDefault("FEED_MISSING_DATA_ALERT_PCT", 0.05)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_BUCKET", "")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("LEAD_TIME_EXCELLENT_DAYS", 3)
		viper.SetDefault("LEAD_TIME_GOOD_DAYS", 7)
		viper.SetDefault("MAX_LEAD_TIME_DAYS", 30)
		viper.SetDefault("FILL_RATE_EXCELLENT", 0.95)
		viper.SetDefault("FILL_RATE_GOOD", 0.85)
		viper.SetDefault("DEFAULT_RETURN_PROBABILITY", 0.05)
		viper.SetDefault("APP_DATA_DIR", "./data")
		viper.SetDefault("APP_SOURCE", "demo")
		viper.SetDefault("APP_WORKBOOK_PATH", "./data/Global_Superstore.xlsx")
		viper.SetDefault("APP_LOG_FILE", "")
		viper.SetDefault("SIM_DAYS", 30)
		viper.SetDefault("SIM_ORDER_COUNT", 100)
		viper.SetDefault("SIM_SEED", 0)

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_DATA_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Feed: FeedConfig{
				BaseURL:             viper.GetString("FEED_BASE_URL"),
				Port:                viper.GetString("FEED_PORT"),
				TimeoutSeconds:      viper.GetInt("FEED_TIMEOUT_SECONDS"),
				MissingDataAlertPct: viper.GetFloat64("FEED_MISSING_DATA_ALERT_PCT"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Metrics: MetricsConfig{
				LeadTimeExcellentDays: viper.GetInt("LEAD_TIME_EXCELLENT_DAYS"),
				LeadTimeGoodDays:      viper.GetInt("LEAD_TIME_GOOD_DAYS"),
				MaxLeadTimeDays:       viper.GetInt("MAX_LEAD_TIME_DAYS"),
				FillRateExcellent:     viper.GetFloat64("FILL_RATE_EXCELLENT"),
				FillRateGood:          viper.GetFloat64("FILL_RATE_GOOD"),
				ReturnProbabilities:   defaultReturnProbabilities(),
				DefaultReturnProb:     viper.GetFloat64("DEFAULT_RETURN_PROBABILITY"),
			},
			App: AppConfig{
				DataDir:      viper.GetString("APP_DATA_DIR"),
				Source:       viper.GetString("APP_SOURCE"),
				WorkbookPath: viper.GetString("APP_WORKBOOK_PATH"),
				LogFile:      viper.GetString("APP_LOG_FILE"),
			},
			Simulator: SimulatorConfig{
				Days:       viper.GetInt("SIM_DAYS"),
				OrderCount: viper.GetInt("SIM_ORDER_COUNT"),
				Seed:       viper.GetInt64("SIM_SEED"),
			},
		}
	})

	return instance
}

// defaultReturnProbabilities holds per-category return rates used when no
// returns dataset is available.
func defaultReturnProbabilities() map[string]float64 {
	return map[string]float64{
		"Furniture":       0.15,
		"Office Supplies": 0.05,
		"Technology":      0.10,
	}
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
