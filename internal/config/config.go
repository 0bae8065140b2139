// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Citations CitationsConfig `mapstructure:"citations"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// RedisConfig locates the key-value store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPConfig configures fetcher timeout and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	MaxRetries        int    `mapstructure:"max_retries"`
	BackoffMinSeconds int    `mapstructure:"backoff_min_seconds"`
	BackoffMaxSeconds int    `mapstructure:"backoff_max_seconds"`
	UserAgent         string `mapstructure:"user_agent"`
}

// CacheConfig governs content cache TTL and compression.
type CacheConfig struct {
	TTLHours             int `mapstructure:"ttl_hours"`
	CompressionThreshold int `mapstructure:"compression_threshold"`
}

// ExtractorConfig sets the extraction quality bar.
type ExtractorConfig struct {
	MinContentLength int `mapstructure:"min_content_length"`
}

// CitationsConfig governs citation record TTL and excerpt size.
type CitationsConfig struct {
	TTLHours      int `mapstructure:"ttl_hours"`
	ExcerptLength int `mapstructure:"excerpt_length"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLIPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_min_seconds", 4)
	v.SetDefault("http.backoff_max_seconds", 10)
	v.SetDefault("http.user_agent", "clipper/1.0 (+https://github.com/foglio/clipper)")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.compression_threshold", 10*1024)
	v.SetDefault("extractor.min_content_length", 100)
	v.SetDefault("citations.ttl_hours", 24)
	v.SetDefault("citations.excerpt_length", 500)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.HTTP.BackoffMinSeconds > c.HTTP.BackoffMaxSeconds {
		return fmt.Errorf("http.backoff_min_seconds must be <= http.backoff_max_seconds")
	}
	if c.Extractor.MinContentLength <= 0 {
		return fmt.Errorf("extractor.min_content_length must be > 0")
	}
	if c.Citations.ExcerptLength <= 0 {
		return fmt.Errorf("citations.excerpt_length must be > 0")
	}
	return nil
}

// HTTPTimeout converts the configured timeout to a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL converts the configured cache TTL to a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// CitationTTL converts the configured citation TTL to a duration.
func (c Config) CitationTTL() time.Duration {
	return time.Duration(c.Citations.TTLHours) * time.Hour
}
