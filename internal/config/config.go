package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aTrapDeer/portfolio-backend/internal/logger"
)

type Config struct {
	Port    string
	LogMode string

	DBDriver    string // sqlite | postgres | mongo
	SQLitePath  string
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	CacheDriver string // memory | redis
	CacheTTL    time.Duration
	RedisAddr   string

	JWTSecret string
	JWTTTL    time.Duration

	FrontendURLs []string

	SiteOwnerEmail       string
	HomeTestimonialLimit int

	RevalidationURL    string
	RevalidationSecret string
}

// LoadDotEnv reads .env into the process environment if the file exists.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load builds a Config from the environment. Missing values fall back to
// development defaults and are reported through log.
func Load(log *logger.Logger) Config {
	cfg := Config{
		Port:    GetEnv("PORT", "8081", log),
		LogMode: GetEnv("LOG_MODE", "development", log),

		DBDriver:    strings.ToLower(GetEnv("DB_DRIVER", "sqlite", log)),
		SQLitePath:  GetEnv("SQLITE_PATH", "portfolio.db", log),
		DatabaseURL: GetEnv("DATABASE_URL", "", log),
		MongoURI:    GetEnv("MONGO_URI", "mongodb://localhost:27017", log),
		MongoDB:     GetEnv("MONGO_DB", "portfolio", log),

		CacheDriver: strings.ToLower(GetEnv("CACHE_DRIVER", "memory", log)),
		CacheTTL:    GetEnvAsDuration("CACHE_TTL", 5*time.Minute, log),
		RedisAddr:   GetEnv("REDIS_ADDR", "", log),

		JWTSecret: GetEnv("JWT_SECRET", "", log),
		JWTTTL:    GetEnvAsDuration("JWT_TTL", 24*time.Hour, log),

		SiteOwnerEmail:       strings.ToLower(GetEnv("SITE_OWNER_EMAIL", "", log)),
		HomeTestimonialLimit: GetEnvAsInt("HOME_TESTIMONIAL_LIMIT", 6, log),

		RevalidationURL:    GetEnv("NEXT_REVALIDATION_URL", "", log),
		RevalidationSecret: GetEnv("REVALIDATION_SECRET", "", log),
	}

	for _, key := range []string{"FRONTEND_URL", "FRONTEND_URL2"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			cfg.FrontendURLs = append(cfg.FrontendURLs, v)
		}
	}
	if len(cfg.FrontendURLs) == 0 {
		cfg.FrontendURLs = []string{"http://localhost:3000"}
	}
	if cfg.JWTSecret == "" && log != nil {
		log.Warn("JWT_SECRET is empty; admin tokens cannot be issued")
	}
	return cfg
}

func GetEnv(key, def string, log *logger.Logger) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		if log != nil && def != "" {
			log.Debug("env not set, using default", "key", key, "default", def)
		}
		return def
	}
	return v
}

func GetEnvAsInt(key string, def int, log *logger.Logger) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Warn("invalid integer env, using default", "key", key, "value", raw, "default", def)
		}
		return def
	}
	return v
}

// GetEnvAsDuration accepts Go duration strings ("15m") or plain seconds.
func GetEnvAsDuration(key string, def time.Duration, log *logger.Logger) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	if log != nil {
		log.Warn("invalid duration env, using default", "key", key, "value", raw, "default", def.String())
	}
	return def
}
