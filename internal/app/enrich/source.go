// Package enrich resolves poster and audio preview metadata for recommended tracks.
package enrich

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/stairway/internal/domain/track"
	"github.com/osa030/stairway/internal/infra/breaker"
)

// ErrMissingPoster is returned when a search hit carries no usable poster image.
var ErrMissingPoster = errors.New("poster image not found")

// Source is the interface for metadata sources.
// Different implementations look tracks up in different catalogs
// (e.g., JioSaavn search, Spotify search).
type Source interface {
	// Lookup resolves the presentation metadata of a track by name.
	Lookup(ctx context.Context, trackName string) (track.Preview, error)

	// Name returns the source type (used in config and metrics).
	Name() string
}

// ClientOptions holds the settings shared by every HTTP-backed source.
type ClientOptions struct {
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	Breaker   breaker.Settings
}
