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
	Server     ServerConfig     `mapstructure:"server"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// VocabularyConfig points at the reference word list.
type VocabularyConfig struct {
	SourceURL      string `mapstructure:"source_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// FetchConfig configures per-URL fetch and retry behavior.
type FetchConfig struct {
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	MaxRetries      int    `mapstructure:"max_retries"`
	BackoffBaseSecs int    `mapstructure:"backoff_base_seconds"`
	UserAgent       string `mapstructure:"user_agent"`
}

// PipelineConfig governs batch scheduling and aggregation defaults.
type PipelineConfig struct {
	BatchSize       int `mapstructure:"batch_size"`
	Concurrency     int `mapstructure:"concurrency"`
	DefaultTopWords int `mapstructure:"default_top_words"`
	MaxURLs         int `mapstructure:"max_urls"`
}

// StorageConfig sets the paths of the two persisted JSON documents.
type StorageConfig struct {
	CachePath    string `mapstructure:"cache_path"`
	RegistryPath string `mapstructure:"registry_path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WORDFREQ")
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
	v.SetDefault("server.timeout_seconds", 60)
	v.SetDefault("vocabulary.source_url", "https://raw.githubusercontent.com/dwyl/english-words/master/words.txt")
	v.SetDefault("vocabulary.timeout_seconds", 30)
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.max_retries", 5)
	v.SetDefault("fetch.backoff_base_seconds", 2)
	v.SetDefault("fetch.user_agent", "essay-wordfreq/1.0")
	v.SetDefault("pipeline.batch_size", 1000)
	v.SetDefault("pipeline.concurrency", 10)
	v.SetDefault("pipeline.default_top_words", 10)
	v.SetDefault("pipeline.max_urls", 1000)
	v.SetDefault("storage.cache_path", "data/processed_links.json")
	v.SetDefault("storage.registry_path", "data/processed_files.json")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Vocabulary.SourceURL == "" {
		return fmt.Errorf("vocabulary.source_url must be set")
	}
	if c.Fetch.MaxRetries <= 0 {
		return fmt.Errorf("fetch.max_retries must be > 0")
	}
	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("pipeline.batch_size must be > 0")
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be > 0")
	}
	if c.Pipeline.DefaultTopWords <= 0 {
		return fmt.Errorf("pipeline.default_top_words must be > 0")
	}
	if c.Storage.CachePath == "" || c.Storage.RegistryPath == "" {
		return fmt.Errorf("storage paths must be set")
	}
	return nil
}

// FetchTimeout converts the fetch timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// VocabularyTimeout converts the vocabulary timeout config into a duration.
func (c Config) VocabularyTimeout() time.Duration {
	return time.Duration(c.Vocabulary.TimeoutSeconds) * time.Second
}

// BackoffBase converts the backoff base config into a duration.
func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.Fetch.BackoffBaseSecs) * time.Second
}
