package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/yanqian/docassist/pkg/errors"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Segment  SegmentConfig  `yaml:"segment"`
	Summary  SummaryConfig  `yaml:"summary"`
	Answer   AnswerConfig   `yaml:"answer"`
	LLM      LLMConfig      `yaml:"llm"`
	Session  SessionConfig  `yaml:"session"`
	Storage  StorageConfig  `yaml:"storage"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	MaxUploadBytes int64           `yaml:"maxUploadBytes"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for transient failures.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// SegmentConfig sets the chunk budgets, in characters, and fan-out.
type SegmentConfig struct {
	SummaryChunkChars int `yaml:"summaryChunkChars"`
	AnswerChunkChars  int `yaml:"answerChunkChars"`
	Concurrency       int `yaml:"concurrency"`
}

// SummaryConfig bounds per-chunk summaries.
type SummaryConfig struct {
	MinLength      int    `yaml:"minLength"`
	MaxLength      int    `yaml:"maxLength"`
	MaxInputTokens int    `yaml:"maxInputTokens"`
	Prompt         string `yaml:"prompt"`
}

// AnswerConfig tunes extractive question answering.
type AnswerConfig struct {
	Prompt string `yaml:"prompt"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	Encoding    string        `yaml:"encoding"`
}

// SessionConfig controls how long summarized documents are kept.
type SessionConfig struct {
	TTL   time.Duration `yaml:"ttl"`
	Redis RedisConfig   `yaml:"redis"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// StorageConfig configures the upload archive.
type StorageConfig struct {
	R2 R2Config `yaml:"r2"`
}

// R2Config holds S3-compatible credentials.
type R2Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setInt64(&cfg.HTTP.MaxUploadBytes, "HTTP_MAX_UPLOAD_BYTES")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")

	setInt(&cfg.Segment.SummaryChunkChars, "SEGMENT_SUMMARY_CHUNK_CHARS")
	setInt(&cfg.Segment.AnswerChunkChars, "SEGMENT_ANSWER_CHUNK_CHARS")
	setInt(&cfg.Segment.Concurrency, "SEGMENT_CONCURRENCY")

	setInt(&cfg.Summary.MinLength, "SUMMARY_MIN_LENGTH")
	setInt(&cfg.Summary.MaxLength, "SUMMARY_MAX_LENGTH")
	setInt(&cfg.Summary.MaxInputTokens, "SUMMARY_MAX_INPUT_TOKENS")
	setString(&cfg.Summary.Prompt, "SUMMARY_PROMPT")
	setString(&cfg.Answer.Prompt, "ANSWER_PROMPT")

	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setString(&cfg.LLM.Encoding, "LLM_ENCODING")
	setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	setDuration(&cfg.Session.TTL, "SESSION_TTL")
	setBool(&cfg.Session.Redis.Enabled, "SESSION_REDIS_ENABLED")
	setString(&cfg.Session.Redis.Addr, "SESSION_REDIS_ADDR")
	setString(&cfg.Session.Redis.Prefix, "SESSION_REDIS_PREFIX")

	setBool(&cfg.Storage.R2.Enabled, "R2_ENABLED")
	setString(&cfg.Storage.R2.Endpoint, "R2_ENDPOINT")
	setString(&cfg.Storage.R2.AccessKey, "R2_ACCESS_KEY")
	setString(&cfg.Storage.R2.SecretKey, "R2_SECRET_KEY")
	setString(&cfg.Storage.R2.Bucket, "R2_BUCKET")
	setString(&cfg.Storage.R2.Region, "R2_REGION")

	setString(&cfg.Postgres.DSN, "POSTGRES_DSN")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   120 * time.Second,
			MaxUploadBytes: 10 << 20,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 2,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/summaries/upload",
				},
			},
		},
		Segment: SegmentConfig{
			SummaryChunkChars: 1200,
			AnswerChunkChars:  2000,
			Concurrency:       1,
		},
		Summary: SummaryConfig{
			MinLength:      30,
			MaxLength:      150,
			MaxInputTokens: 1024,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			Timeout:     60 * time.Second,
			Encoding:    "cl100k_base",
		},
		Session: SessionConfig{
			TTL: 24 * time.Hour,
			Redis: RedisConfig{
				Prefix: "docassist",
			},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
	}
}

func invalid(format string, args ...any) error {
	return apperrors.Wrap(apperrors.CodeConfiguration, fmt.Sprintf(format, args...), nil)
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Address) == "" {
		return invalid("http.address cannot be empty")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return invalid("http.maxUploadBytes must be positive")
	}
	if c.Segment.SummaryChunkChars <= 0 {
		return invalid("segment.summaryChunkChars must be positive, got %d", c.Segment.SummaryChunkChars)
	}
	if c.Segment.AnswerChunkChars <= 0 {
		return invalid("segment.answerChunkChars must be positive, got %d", c.Segment.AnswerChunkChars)
	}
	if c.Segment.Concurrency < 0 {
		return invalid("segment.concurrency cannot be negative")
	}
	if c.Summary.MinLength < 0 || c.Summary.MaxLength <= 0 {
		return invalid("summary length bounds must be positive")
	}
	if c.Summary.MinLength > c.Summary.MaxLength {
		return invalid("summary.minLength (%d) exceeds summary.maxLength (%d)", c.Summary.MinLength, c.Summary.MaxLength)
	}
	if c.Summary.MaxInputTokens <= 0 {
		return invalid("summary.maxInputTokens must be positive")
	}
	if c.Session.TTL < 0 {
		return invalid("session.ttl cannot be negative")
	}
	if c.Session.Redis.Enabled && strings.TrimSpace(c.Session.Redis.Addr) == "" {
		return invalid("session.redis.addr cannot be empty when redis is enabled")
	}
	if c.Storage.R2.Enabled && strings.TrimSpace(c.Storage.R2.Bucket) == "" {
		return invalid("storage.r2.bucket cannot be empty when r2 is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return invalid("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return invalid("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return invalid("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return invalid("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
