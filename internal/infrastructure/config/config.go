package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Wikidata      WikidataConfig      `mapstructure:"wikidata"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	Image         ImageConfig         `mapstructure:"image"`
	Catalog       CatalogConfig       `mapstructure:"catalog"`
	Tipsiness     TipsinessConfig     `mapstructure:"tipsiness"`
	Persist       PersistConfig       `mapstructure:"persist"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	LogLevel      string              `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
	LogDir  string `mapstructure:"log_dir"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// WikidataConfig 知識圖譜查詢設定
type WikidataConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// OpenFoodFactsConfig 營養資料庫設定
type OpenFoodFactsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	PageSize          int           `mapstructure:"page_size"`
	BroadCategoryMax  int           `mapstructure:"broad_category_max"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Breaker           BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig 斷路器設定
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// ImageConfig 圖片資訊設定
type ImageConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIURL    string        `mapstructure:"api_url"`
	Width     int           `mapstructure:"width"`
	Height    int           `mapstructure:"height"`
	BatchSize int           `mapstructure:"batch_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CatalogConfig 目錄建立設定
type CatalogConfig struct {
	EnrichmentConcurrency int  `mapstructure:"enrichment_concurrency"`
	StrictEnrichment      bool `mapstructure:"strict_enrichment"`
	WarmOnStart           bool `mapstructure:"warm_on_start"`
}

// TipsinessConfig 酒精目標換算常數
type TipsinessConfig struct {
	BodyWaterFraction float64 `mapstructure:"body_water_fraction"`
	AlcoholGramToMl   float64 `mapstructure:"alcohol_gram_to_ml"`
}

// PersistConfig 持久化設定
type PersistConfig struct {
	Driver    string        `mapstructure:"driver"`
	DSN       string        `mapstructure:"dsn"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	TTL       time.Duration `mapstructure:"ttl"`
	MaxSize   int           `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// 持久化驅動
const (
	PersistNone     = "none"
	PersistMemory   = "memory"
	PersistRedis    = "redis"
	PersistSQLite   = "sqlite"
	PersistPostgres = "postgres"
)

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 為選用
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("persist.driver", "PERSIST_DRIVER")
	v.BindEnv("persist.dsn", "DATABASE_URL")
	v.BindEnv("persist.redis_addr", "REDIS_ADDR")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")

	// 設定設定檔名稱和路徑
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadDefaults 只使用預設值建立設定（測試用）
func LoadDefaults() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "cocktail-recommender")
	v.SetDefault("app.log_dir", "logs")
	v.SetDefault("log_level", "info")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Wikidata 設定
	v.SetDefault("wikidata.endpoint", "https://query.wikidata.org/sparql")
	v.SetDefault("wikidata.timeout", "60s")
	v.SetDefault("wikidata.user_agent", "GetMeDrunkEfficiently/0.0 (https://github.com/Quaffel/get-me-drunk-efficiently)")

	// Open Food Facts 設定
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.timeout", "20s")
	v.SetDefault("openfoodfacts.page_size", 50)
	v.SetDefault("openfoodfacts.broad_category_max", 1000)
	v.SetDefault("openfoodfacts.requests_per_second", 10)
	v.SetDefault("openfoodfacts.burst", 10)
	v.SetDefault("openfoodfacts.breaker.max_requests", 1)
	v.SetDefault("openfoodfacts.breaker.interval", "60s")
	v.SetDefault("openfoodfacts.breaker.timeout", "30s")
	v.SetDefault("openfoodfacts.breaker.failure_threshold", 5)

	// 圖片資訊設定
	v.SetDefault("image.enabled", false)
	v.SetDefault("image.api_url", "https://www.wikidata.org/w/api.php")
	v.SetDefault("image.width", 300)
	v.SetDefault("image.height", 300)
	v.SetDefault("image.batch_size", 50)
	v.SetDefault("image.timeout", "30s")

	// 目錄設定
	v.SetDefault("catalog.enrichment_concurrency", 8)
	v.SetDefault("catalog.strict_enrichment", false)
	v.SetDefault("catalog.warm_on_start", false)

	// 酒精換算常數
	v.SetDefault("tipsiness.body_water_fraction", 0.6)
	v.SetDefault("tipsiness.alcohol_gram_to_ml", 1.6)

	// 持久化設定
	v.SetDefault("persist.driver", PersistMemory)
	v.SetDefault("persist.dsn", "file:cocktails.db")
	v.SetDefault("persist.redis_addr", "localhost:6379")
	v.SetDefault("persist.redis_db", 0)
	v.SetDefault("persist.ttl", "24h")
	v.SetDefault("persist.max_size", 5000)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Wikidata.Endpoint == "" {
		return fmt.Errorf("wikidata endpoint is required")
	}
	if config.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("openfoodfacts base url is required")
	}
	if config.OpenFoodFacts.PageSize <= 0 {
		return fmt.Errorf("invalid openfoodfacts page size")
	}
	if config.OpenFoodFacts.RequestsPerSecond <= 0 {
		return fmt.Errorf("invalid openfoodfacts requests per second")
	}

	if config.Image.Enabled && (config.Image.BatchSize <= 0 || config.Image.BatchSize > 50) {
		return fmt.Errorf("image batch size must be within 1..50")
	}

	if config.Catalog.EnrichmentConcurrency <= 0 {
		return fmt.Errorf("invalid enrichment concurrency")
	}

	if config.Tipsiness.BodyWaterFraction <= 0 || config.Tipsiness.AlcoholGramToMl <= 0 {
		return fmt.Errorf("invalid tipsiness constants")
	}

	// 驗證持久化設定
	switch config.Persist.Driver {
	case PersistNone, PersistRedis, PersistSQLite, PersistPostgres:
	case PersistMemory:
		if config.Persist.MaxSize <= 0 {
			return fmt.Errorf("invalid persist max size")
		}
	default:
		return fmt.Errorf("unknown persist driver %q", config.Persist.Driver)
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit")
		}
	}

	return nil
}
