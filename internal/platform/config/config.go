package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	BackendVader = "vader"
	BackendHTTP  = "http"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	ClassifierBackend     string        `env:"CLASSIFIER_BACKEND" default:"vader"`
	ClassifierURL         string        `env:"CLASSIFIER_URL"`
	ClassifierAPIKey      string        `env:"CLASSIFIER_API_KEY"`
	ClassifierModel       string        `env:"CLASSIFIER_MODEL" default:"blanchefort/rubert-base-cased-sentiment"`
	ClassifierTimeout     time.Duration `env:"CLASSIFIER_TIMEOUT" default:"30s"`
	ClassifierRateLimit   float64       `env:"CLASSIFIER_RATE_LIMIT" default:"20"`
	ClassifierBurst       int           `env:"CLASSIFIER_BURST" default:"5"`
	ClassifierMaxAttempts int           `env:"CLASSIFIER_MAX_ATTEMPTS" default:"3"`

	ScoringWorkers           int     `env:"SCORING_WORKERS" default:"4"`
	SoftmaxTemperature       float64 `env:"SOFTMAX_TEMPERATURE" default:"1.0"`
	KeywordLimit             int     `env:"KEYWORD_LIMIT" default:"15"`
	KeywordLanguageStopwords bool    `env:"KEYWORD_LANGUAGE_STOPWORDS" default:"true"`

	VerdictCacheTTL       time.Duration `env:"VERDICT_CACHE_TTL" default:"24h"`
	VerdictMemoryCacheTTL time.Duration `env:"VERDICT_MEMORY_CACHE_TTL" default:"10m"`

	APIRateLimit    float64 `env:"API_RATE_LIMIT" default:"5"`
	APIBurst        int     `env:"API_BURST" default:"10"`
	MaxBatchReviews int     `env:"MAX_BATCH_REVIEWS" default:"1000"`
	FilmWorkers     int     `env:"FILM_WORKERS" default:"1"`

	ReviewsKey string `env:"REVIEWS_KEY" default:"Рецензии 100 зрителей"`
	ProfileKey string `env:"PROFILE_KEY" default:"Анализ_рецензий"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// StorageEnabled reports whether film storage is configured.
func (c *Config) StorageEnabled() bool { return c.DatabaseURL != "" }

// CacheEnabled reports whether the shared verdict cache is configured.
func (c *Config) CacheEnabled() bool { return c.RedisURL != "" }

func validate(cfg *Config) error {
	switch cfg.ClassifierBackend {
	case BackendVader:
	case BackendHTTP:
		if cfg.ClassifierURL == "" {
			return errors.New("CLASSIFIER_URL is required when CLASSIFIER_BACKEND=http")
		}
		if _, err := url.ParseRequestURI(cfg.ClassifierURL); err != nil {
			return fmt.Errorf("CLASSIFIER_URL is not a valid URL: %w", err)
		}
	default:
		return fmt.Errorf("CLASSIFIER_BACKEND must be %q or %q, got %q", BackendVader, BackendHTTP, cfg.ClassifierBackend)
	}

	if cfg.ClassifierMaxAttempts < 1 {
		return errors.New("CLASSIFIER_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.ClassifierRateLimit <= 0 {
		return errors.New("CLASSIFIER_RATE_LIMIT must be positive")
	}
	if cfg.ClassifierBurst < 1 {
		return errors.New("CLASSIFIER_BURST must be at least 1")
	}
	if cfg.ScoringWorkers < 1 {
		return errors.New("SCORING_WORKERS must be at least 1")
	}
	if cfg.SoftmaxTemperature <= 0 {
		return errors.New("SOFTMAX_TEMPERATURE must be positive")
	}
	if cfg.KeywordLimit < 1 {
		return errors.New("KEYWORD_LIMIT must be at least 1")
	}
	if cfg.FilmWorkers < 1 {
		return errors.New("FILM_WORKERS must be at least 1")
	}
	if cfg.APIRateLimit <= 0 || cfg.APIBurst < 1 {
		return errors.New("API_RATE_LIMIT must be positive and API_BURST at least 1")
	}
	if cfg.MaxBatchReviews < 1 {
		return errors.New("MAX_BATCH_REVIEWS must be at least 1")
	}
	if cfg.ReviewsKey == "" || cfg.ProfileKey == "" {
		return errors.New("REVIEWS_KEY and PROFILE_KEY must not be empty")
	}

	if cfg.AppEnv == "production" && cfg.DatabaseURL != "" {
		if err := validateSSLMode(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	return nil
}

func validateSSLMode(databaseURL string) error {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	switch u.Query().Get("sslmode") {
	case "disable", "allow":
		return errors.New("DATABASE_URL must not use sslmode=disable or sslmode=allow in production")
	}
	return nil
}
