package enrich

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/stairway/internal/domain/track"
	"github.com/osa030/stairway/internal/infra/spotify"
)

// SpotifyClient defines the interface for Spotify operations.
type SpotifyClient interface {
	SearchTrack(ctx context.Context, query string) (*spotify.Match, error)
}

type SpotifySourceConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret" validate:"required"`
	Market       string `yaml:"market" mapstructure:"market" validate:"omitempty,len=2"`
}

// SpotifySource looks tracks up through the Spotify Web API search.
type SpotifySource struct {
	client SpotifyClient
}

// NewSpotifySource creates a new SpotifySource from provider settings.
func NewSpotifySource(ctx context.Context, opts ClientOptions, settings map[string]any) (*SpotifySource, error) {
	var config SpotifySourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	client, err := spotify.New(ctx, spotify.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Market:       config.Market,
		Timeout:      opts.Timeout,
		RateLimit:    opts.RateLimit,
		RateBurst:    opts.RateBurst,
		Breaker:      opts.Breaker,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create spotify client")
	}

	return &SpotifySource{client: client}, nil
}

// Lookup searches by track name and reads the album art and preview of the best match.
func (s *SpotifySource) Lookup(ctx context.Context, trackName string) (track.Preview, error) {
	match, err := s.client.SearchTrack(ctx, trackName)
	if err != nil {
		return track.Preview{}, err
	}
	if match.ImageURL == "" {
		return track.Preview{}, errors.Wrapf(ErrMissingPoster, "spotify track %s", match.ID)
	}
	return track.Preview{
		PosterURL:  match.ImageURL,
		PreviewURL: match.PreviewURL,
	}, nil
}

// Name returns the source type.
func (s *SpotifySource) Name() string {
	return "spotify"
}
