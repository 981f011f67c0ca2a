package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"invoice-recon/internal/reconcile/model"
)

type Shopify struct {
	ShopURL     string
	AccessToken string
	APIVersion  string
}

func (s Shopify) Configured() bool { return s.ShopURL != "" && s.AccessToken != "" }

type Cin7 struct {
	BaseURL       string
	AccountID     string
	APIKey        string
	RatePerMinute int
	MaxRetries    int
}

func (c Cin7) Configured() bool { return c.AccountID != "" && c.APIKey != "" }

type Untappd struct {
	BaseURL  string
	APIToken string
}

func (u Untappd) Configured() bool { return u.APIToken != "" }

type OpenAI struct {
	APIKey string
	Model  string
	Rules  string // правила поставщиков для извлечения (текст или путь к файлу)
}

func (o OpenAI) Configured() bool { return o.APIKey != "" }

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	LookupFile   string
	LookupTTL    time.Duration
	RedisAddr    string
	MatchWorkers int

	LocationA model.Location
	LocationB model.Location

	Shopify Shopify
	Cin7    Cin7
	Untappd Untappd
	OpenAI  OpenAI
}

// Load: .env (если есть) → переменные окружения → дефолты.
func Load() Config {
	_ = godotenv.Load()

	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         atoi(getenv("PORT", "8082"), 8082),
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MaxUploadMB:  atoi(getenv("MAX_UPLOAD_MB", "64"), 64),
		LogFile:      getenv("LOG_FILE", "logs/invoice-recon.log"),

		LookupFile:   getenv("LOOKUP_FILE", "data/lookups.xlsx"),
		LookupTTL:    duration(getenv("LOOKUP_TTL", "1h"), time.Hour),
		RedisAddr:    getenv("REDIS_ADDR", ""),
		MatchWorkers: atoi(getenv("MATCH_WORKERS", "4"), 4),

		LocationA: model.Location{Prefix: getenv("LOCATION_A_PREFIX", "L-"), Name: getenv("LOCATION_A_NAME", "London")},
		LocationB: model.Location{Prefix: getenv("LOCATION_B_PREFIX", "G-"), Name: getenv("LOCATION_B_NAME", "Gloucester")},

		Shopify: Shopify{
			ShopURL:     getenv("SHOPIFY_SHOP_URL", ""),
			AccessToken: getenv("SHOPIFY_ACCESS_TOKEN", ""),
			APIVersion:  getenv("SHOPIFY_API_VERSION", "2024-04"),
		},
		Cin7: Cin7{
			BaseURL:       getenv("CIN7_BASE_URL", "https://inventory.dearsystems.com/ExternalApi/v2"),
			AccountID:     getenv("CIN7_ACCOUNT_ID", ""),
			APIKey:        getenv("CIN7_API_KEY", ""),
			RatePerMinute: atoi(getenv("CIN7_RATE_PER_MINUTE", "60"), 60),
			MaxRetries:    atoi(getenv("CIN7_MAX_RETRIES", "5"), 5),
		},
		Untappd: Untappd{
			BaseURL:  getenv("UNTAPPD_BASE_URL", "https://business.untappd.com/api/v1"),
			APIToken: getenv("UNTAPPD_API_TOKEN", ""),
		},
		OpenAI: OpenAI{
			APIKey: getenv("OPENAI_API_KEY", ""),
			Model:  getenv("OPENAI_MODEL", "gpt-4o"),
			Rules:  readRules(getenv("EXTRACT_RULES", "")),
		},
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) Locations() []model.Location { return []model.Location{c.LocationA, c.LocationB} }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// EXTRACT_RULES: путь к существующему файлу → его содержимое, иначе сам текст
func readRules(v string) string {
	if v == "" {
		return ""
	}
	if b, err := os.ReadFile(v); err == nil {
		return string(b)
	}
	return v
}
