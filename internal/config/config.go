package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Oracle providers accepted by ORACLE_PROVIDER.
const (
	OracleORS  = "ors"
	OracleOSRM = "osrm"
	OracleNone = "none"
)

// Config holds the process settings read from the environment.
type Config struct {
	Port               string
	DBPath             string
	DatabaseURL        string
	SeedPath           string
	OracleProvider     string
	ORSAPIKey          string
	ORSBaseURL         string
	OSRMBaseURL        string
	OracleTimeout      time.Duration
	RedisURL           string
	OracleCacheTTL     time.Duration
	SessionTTL         time.Duration
	CORSAllowedOrigins []string
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Get returns the value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}

func GetBool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean: %w", key, v, err)
	}
	return b, nil
}

// GetDuration accepts Go durations ("5s", "1m30s") and plain integers as seconds.
func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s=%q must not be negative", key, v)
	}
	return d, nil
}

// Load reads Config from the environment. Call LoadDotEnv first to pick up a
// .env file.
func Load() (Config, error) {
	cfg := Config{
		Port:           Get("PORT", "8080"),
		DBPath:         Get("DB_PATH", "data/app.db"),
		DatabaseURL:    Get("DATABASE_URL", ""),
		SeedPath:       Get("SEED_PATH", "data/seeds/fleet.json"),
		OracleProvider: strings.ToLower(Get("ORACLE_PROVIDER", "")),
		ORSAPIKey:      Get("ORS_API_KEY", ""),
		ORSBaseURL:     Get("ORS_BASE_URL", ""),
		OSRMBaseURL:    Get("OSRM_BASE_URL", ""),
		RedisURL:       Get("REDIS_URL", ""),
	}

	// Default to ORS only when a key is available.
	if cfg.OracleProvider == "" {
		cfg.OracleProvider = OracleNone
		if cfg.ORSAPIKey != "" {
			cfg.OracleProvider = OracleORS
		}
	}
	switch cfg.OracleProvider {
	case OracleORS:
		if cfg.ORSAPIKey == "" {
			return Config{}, fmt.Errorf("config: ORS_API_KEY is required when ORACLE_PROVIDER=%s", OracleORS)
		}
	case OracleOSRM, OracleNone:
	default:
		return Config{}, fmt.Errorf("config: unknown ORACLE_PROVIDER %q (want ors, osrm or none)", cfg.OracleProvider)
	}

	var err error
	if cfg.OracleTimeout, err = GetDuration("ORACLE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.OracleTimeout == 0 {
		return Config{}, fmt.Errorf("config: ORACLE_TIMEOUT must be positive")
	}
	if cfg.OracleCacheTTL, err = GetDuration("ORACLE_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = GetDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}

	for _, o := range strings.Split(Get("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	return cfg, nil
}
