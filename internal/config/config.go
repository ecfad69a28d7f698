package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultEndpoint is the Nutritionix natural-language nutrients endpoint.
const DefaultEndpoint = "https://trackapi.nutritionix.com/v2/natural/nutrients"

// DefaultStorageKey is the slot the daily log is persisted under.
const DefaultStorageKey = "calorieData"

// NutritionConfig holds the nutrition service settings.
type NutritionConfig struct {
	Endpoint  string
	AppID     string
	AppKey    string
	TimeoutMs int // 0 means no client-side timeout
}

// Config holds all runtime configuration.
type Config struct {
	Host       string
	Port       int
	DBPath     string
	StorageKey string
	LogCalls   bool
	Nutrition  NutritionConfig
}

// DefaultConfig returns a Config with sensible defaults. Credentials are
// empty; they must come from the environment.
func DefaultConfig() Config {
	dbPath := filepath.Join(".calorie-counter", "calorie.db")
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, dbPath)
	}

	return Config{
		Host:       "0.0.0.0",
		Port:       8011,
		DBPath:     dbPath,
		StorageKey: DefaultStorageKey,
		Nutrition: NutritionConfig{
			Endpoint: DefaultEndpoint,
		},
	}
}

// LoadConfig reads configuration from environment variables, after loading
// a .env file from the working directory if one exists. Unset or invalid
// values fall back to defaults.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if v := os.Getenv("CALORIE_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("CALORIE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.Port = n
		}
	}
	if v := os.Getenv("CALORIE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CALORIE_STORAGE_KEY"); v != "" {
		cfg.StorageKey = v
	}
	if v := os.Getenv("CALORIE_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}

	if v := os.Getenv("NUTRITIONIX_ENDPOINT"); v != "" {
		cfg.Nutrition.Endpoint = v
	}
	cfg.Nutrition.AppID = os.Getenv("NUTRITIONIX_APP_ID")
	cfg.Nutrition.AppKey = os.Getenv("NUTRITIONIX_APP_KEY")
	if v := os.Getenv("NUTRITIONIX_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Nutrition.TimeoutMs = n
		}
	}

	return cfg
}
