// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Message codes shared by the workflow and the RPC layer.
const (
	CodeUnknownTrack         = "unknown_track"
	CodeNoRecommendations    = "no_recommendations"
	CodeMetadataFetchFailure = "metadata_fetch_failure"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Recommend RecommendConfig `yaml:"recommend"`
	Enrich    EnrichConfig    `yaml:"enrich"`
	Messages  MessagesConfig  `yaml:"messages"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// CatalogConfig locates the precomputed artifacts.
type CatalogConfig struct {
	TracksPath     string `yaml:"tracks_path" validate:"required"`
	SimilarityPath string `yaml:"similarity_path" validate:"required"`
}

// RecommendConfig represents recommendation engine configuration.
type RecommendConfig struct {
	Limit           int `yaml:"limit" default:"5" validate:"gte=1,lte=50"`
	SuggestionCount int `yaml:"suggestion_count" default:"3" validate:"gte=0,lte=20"`
}

// EnrichConfig represents metadata enrichment configuration.
type EnrichConfig struct {
	Timeout              time.Duration  `yaml:"timeout" default:"8s" validate:"gt=0"`
	Concurrency          int            `yaml:"concurrency" default:"5" validate:"gte=1,lte=32"`
	PlaceholderPosterURL string         `yaml:"placeholder_poster_url" default:"https://i.postimg.cc/0QNxYz4V/social.png" validate:"omitempty,url"`
	RateLimit            float64        `yaml:"rate_limit" default:"10" validate:"gte=0"`
	RateBurst            int            `yaml:"rate_burst" default:"5" validate:"gte=1"`
	Breaker              BreakerConfig  `yaml:"breaker"`
	Sources              []SourceConfig `yaml:"sources" validate:"required,min=1,dive"`
}

// BreakerConfig represents circuit breaker settings applied to every source.
type BreakerConfig struct {
	MaxRequests     uint32        `yaml:"max_requests" default:"1"`
	Interval        time.Duration `yaml:"interval" default:"1m"`
	Timeout         time.Duration `yaml:"timeout" default:"30s"`
	FailureRatio    float64       `yaml:"failure_ratio" default:"0.6" validate:"gt=0,lte=1"`
	MinimumRequests uint32        `yaml:"minimum_requests" default:"10"`
}

// SourceConfig represents a single metadata source configuration.
type SourceConfig struct {
	Type     string         `yaml:"type" validate:"required,oneof=saavn spotify"`
	Settings map[string]any `yaml:"settings"`
}

// MessagesConfig represents user-facing messages.
type MessagesConfig struct {
	UnknownTrack         string `yaml:"unknown_track" default:"The song is not in the catalog. Please select another song."`
	NoRecommendations    string `yaml:"no_recommendations" default:"No recommendations found for this song."`
	MetadataFetchFailure string `yaml:"metadata_fetch_failure" default:"Could not fetch poster or preview."`
	DefaultError         string `yaml:"default_error" default:"Something went wrong."`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	return Parse(data)
}

// Parse parses configuration from YAML bytes, applying env overrides, defaults and validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("STAIRWAY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STAIRWAY_TRACKS_PATH"); v != "" {
		c.Catalog.TracksPath = v
	}
	if v := os.Getenv("STAIRWAY_SIMILARITY_PATH"); v != "" {
		c.Catalog.SimilarityPath = v
	}
	c.setSourceSetting("saavn", "base_url", os.Getenv("SAAVN_BASE_URL"))
	c.setSourceSetting("spotify", "client_id", os.Getenv("SPOTIFY_CLIENT_ID"))
	c.setSourceSetting("spotify", "client_secret", os.Getenv("SPOTIFY_CLIENT_SECRET"))
}

// setSourceSetting sets a setting on the first source of the given type.
// Sources are never created from the environment; it reports whether a source was found.
func (c *Config) setSourceSetting(sourceType, key, value string) bool {
	if value == "" {
		return false
	}
	for i := range c.Enrich.Sources {
		if c.Enrich.Sources[i].Type == sourceType {
			if c.Enrich.Sources[i].Settings == nil {
				c.Enrich.Sources[i].Settings = make(map[string]any)
			}
			c.Enrich.Sources[i].Settings[key] = value
			return true
		}
	}
	zlog.Debug().Msgf("env override ignored, no %s source configured: setting=%s", sourceType, key)
	return false
}

// GetMessage returns the message for the given code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case CodeUnknownTrack:
		return c.Messages.UnknownTrack
	case CodeNoRecommendations:
		return c.Messages.NoRecommendations
	case CodeMetadataFetchFailure:
		return c.Messages.MetadataFetchFailure
	default:
		return c.Messages.DefaultError
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
