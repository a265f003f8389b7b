package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Stores  StoresConfig
	Cache   CacheConfig
	Search  SearchConfig
	Scoring ScoringConfig
	Lexicon LexiconConfig
	Intent  IntentConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreEntry describes one retailer the orchestrator fans out to.
// Adding a store means adding an entry here plus a fetcher for its kind;
// the pipeline itself never changes.
type StoreEntry struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	Kind    string `mapstructure:"kind"` // vtex | algolia | hiraoka | falabella
}

// AlgoliaConfig holds the Algolia search credentials used by the Inkafarma
// fetcher. The API key is the public frontend key, not a secret.
type AlgoliaConfig struct {
	AppID  string `mapstructure:"app_id"`
	APIKey string `mapstructure:"api_key"`
	Index  string `mapstructure:"index"`
}

// StoresConfig holds the fixed store table and fetch tuning
type StoresConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"` // per-store fetch timeout
	FetchLimit int           `mapstructure:"fetch_limit"`
	Entries    []StoreEntry  `mapstructure:"entries"`
	Algolia    AlgoliaConfig `mapstructure:"algolia"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SearchConfig holds result shaping limits
type SearchConfig struct {
	MaxResults         int `mapstructure:"max_results"` // 0 = unlimited
	MaxRecommendations int `mapstructure:"max_recommendations"`
}

// ScoringConfig holds the recommendation scoring weights and the
// trusted-store set
type ScoringConfig struct {
	BaseScore         float64  `mapstructure:"base_score"`
	GoodPriceBonus    float64  `mapstructure:"good_price_bonus"`
	GoodPriceRatio    float64  `mapstructure:"good_price_ratio"`
	TrustedStoreBonus float64  `mapstructure:"trusted_store_bonus"`
	RankBonus         float64  `mapstructure:"rank_bonus"`
	TrustedStores     []string `mapstructure:"trusted_stores"`
}

// LexiconConfig holds the correction vocabulary and the title stopword
/// table. Grouping carries the frequency weight: brands outweigh categories,
// categories outweigh model modifiers.
type LexiconConfig struct {
	Brands     []string `mapstructure:"brands"`
	Categories []string `mapstructure:"categories"`
	Modifiers  []string `mapstructure:"modifiers"`
	Stopwords  []string `mapstructure:"stopwords"`
}

// IntentConfig holds the keyword tables for intent classification.
// Evaluation order (price before premium before brand) is contractual and
// lives in the classifier, not here.
type IntentConfig struct {
	PriceWords   []string          `mapstructure:"price_words"`
	PremiumWords []string          `mapstructure:"premium_words"`
	Brands       map[string]string `mapstructure:"brands"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/buscaprecios/")

	v.SetEnvPrefix("BUSCAPRECIOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Store table defaults: the six supported retailers
	v.SetDefault("stores.timeout", "10s")
	v.SetDefault("stores.fetch_limit", 25)
	v.SetDefault("stores.entries", []map[string]interface{}{
		{"name": "Hiraoka Online", "base_url": "https://hiraoka.com.pe", "kind": "hiraoka"},
		{"name": "Falabella Online", "base_url": "https://www.falabella.com.pe", "kind": "falabella"},
		{"name": "Promart", "base_url": "https://www.promart.pe", "kind": "vtex"},
		{"name": "Oechsle", "base_url": "https://www.oechsle.pe", "kind": "vtex"},
		{"name": "PlazaVea", "base_url": "https://www.plazavea.com.pe", "kind": "vtex"},
		{"name": "Inkafarma Online", "base_url": "https://inkafarma.pe", "kind": "algolia"},
	})
	v.SetDefault("stores.algolia.app_id", "15W622LAQ4")
	v.SetDefault("stores.algolia.api_key", "eb3261874e9b933efab019b04acff834")
	v.SetDefault("stores.algolia.index", "products")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "10m")

	// Search defaults
	v.SetDefault("search.max_results", 50)
	v.SetDefault("search.max_recommendations", 10)

	// Scoring defaults
	v.SetDefault("scoring.base_score", 50.0)
	v.SetDefault("scoring.good_price_bonus", 20.0)
	v.SetDefault("scoring.good_price_ratio", 0.8)
	v.SetDefault("scoring.trusted_store_bonus", 15.0)
	v.SetDefault("scoring.rank_bonus", 10.0)
	v.SetDefault("scoring.trusted_stores", []string{"Hiraoka Online", "Falabella Online"})

	// Lexicon defaults: the domain vocabulary the corrector matches against
	v.SetDefault("lexicon.brands", []string{
		"iphone", "samsung", "huawei", "xiaomi", "motorola", "nokia",
		"sony", "lg", "panasonic", "tcl", "acer", "asus", "hp", "lenovo",
	})
	v.SetDefault("lexicon.categories", []string{
		"celular", "smartphone", "tablet", "laptop", "televisor", "tv",
		"auriculares", "headphones", "smartwatch", "watch", "mica",
		"protector", "cargador", "cable", "bateria", "funda", "case",
	})
	v.SetDefault("lexicon.modifiers", []string{
		"pura", "pro", "ultra", "max", "plus", "lite", "se",
	})
	v.SetDefault("lexicon.stopwords", []string{
		"nuevo", "nueva", "original", "oferta", "promocion", "promo",
		"descuento", "oficial", "garantia", "sellado", "gratis", "envio",
		"regalo", "liberado", "libre", "incluye", "soles", "sol", "pen",
		"precio",
	})

	// Intent keyword defaults
	v.SetDefault("intent.price_words", []string{
		"barato", "economico", "oferta", "descuento", "rebajado",
	})
	v.SetDefault("intent.premium_words", []string{
		"premium", "caro", "lujo", "top", "mejor",
	})
	v.SetDefault("intent.brands", map[string]string{
		"apple":   "Apple",
		"samsung": "Samsung",
		"huawei":  "Huawei",
		"xiaomi":  "Xiaomi",
		"sony":    "Sony",
	})
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if len(config.Stores.Entries) == 0 {
		return fmt.Errorf("at least one store entry is required")
	}
	for _, entry := range config.Stores.Entries {
		switch entry.Kind {
		case "vtex", "algolia", "hiraoka", "falabella":
		default:
			return fmt.Errorf("unknown store kind %q for store %q", entry.Kind, entry.Name)
		}
		if entry.Name == "" || entry.BaseURL == "" {
			return fmt.Errorf("store entries need both name and base_url")
		}
	}

	if config.Stores.Timeout <= 0 {
		return fmt.Errorf("store timeout must be positive")
	}

	if len(config.Lexicon.Brands)+len(config.Lexicon.Categories)+len(config.Lexicon.Modifiers) == 0 {
		return fmt.Errorf("lexicon vocabulary must not be empty")
	}

	if config.Scoring.GoodPriceRatio <= 0 || config.Scoring.GoodPriceRatio >= 1 {
		return fmt.Errorf("good_price_ratio must be between 0 and 1, got: %v", config.Scoring.GoodPriceRatio)
	}

	return nil
}
