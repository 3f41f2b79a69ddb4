package enrich

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/stairway/internal/infra/breaker"
	"github.com/osa030/stairway/internal/infra/config"
)

// NewFromConfig creates an Enricher with the sources listed in configuration.
func NewFromConfig(ctx context.Context, cfg config.EnrichConfig) (*Enricher, error) {
	if len(cfg.Sources) == 0 {
		return nil, errors.New("no metadata sources configured")
	}

	opts := ClientOptions{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Breaker: breaker.Settings{
			MaxRequests:     cfg.Breaker.MaxRequests,
			Interval:        cfg.Breaker.Interval,
			Timeout:         cfg.Breaker.Timeout,
			FailureRatio:    cfg.Breaker.FailureRatio,
			MinimumRequests: cfg.Breaker.MinimumRequests,
		},
	}

	var sources []Source
	for i, scfg := range cfg.Sources {
		var source Source
		var err error
		zlog.Debug().Msgf("creating metadata source: index=%d type=%s", i+1, scfg.Type)
		switch scfg.Type {
		case "saavn":
			source, err = NewSaavnSource(opts, scfg.Settings)

		case "spotify":
			source, err = NewSpotifySource(ctx, opts, scfg.Settings)

		default:
			return nil, errors.Newf("unsupported source type: %s (source index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (index %d, type %s)", i, scfg.Type)
		}

		sources = append(sources, source)
		zlog.Info().Msgf("registered metadata source: index=%d type=%s", i+1, scfg.Type)
	}

	return NewEnricher(sources, Options{
		Timeout:              cfg.Timeout,
		Concurrency:          cfg.Concurrency,
		PlaceholderPosterURL: cfg.PlaceholderPosterURL,
	}), nil
}
