package enrich

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/stairway/internal/domain/track"
	"github.com/osa030/stairway/internal/infra/breaker"
	"github.com/osa030/stairway/internal/infra/metrics"
)

const (
	defaultTimeout     = 8 * time.Second
	defaultConcurrency = 5
)

// Options configures an Enricher.
type Options struct {
	Timeout              time.Duration // Per-source lookup timeout
	Concurrency          int           // Lookups in flight for FetchAll
	PlaceholderPosterURL string        // Poster used when every source fails
}

// Enricher tries sources in order until one resolves the track.
// Failures never reach the caller: the fallback preview is returned instead.
type Enricher struct {
	sources     []Source
	timeout     time.Duration
	concurrency int
	placeholder string
}

// NewEnricher creates a new Enricher.
func NewEnricher(sources []Source, opts Options) *Enricher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.PlaceholderPosterURL == "" {
		opts.PlaceholderPosterURL = track.PlaceholderPosterURL
	}

	return &Enricher{
		sources:     sources,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		placeholder: opts.PlaceholderPosterURL,
	}
}

// Fetch returns the preview of the first source that resolves trackName,
// or the fallback preview when none does.
func (e *Enricher) Fetch(ctx context.Context, trackName string) track.Preview {
	for i, src := range e.sources {
		if ctx.Err() != nil {
			break
		}
		zlog.Debug().Msgf("trying source: index=%d total=%d source=%s track=%q",
			i+1, len(e.sources), src.Name(), trackName)

		preview, err := e.lookup(ctx, src, trackName)
		if err != nil {
			zlog.Warn().Msgf("metadata lookup failed, trying next: source=%s track=%q error=%v",
				src.Name(), trackName, err)
			continue
		}

		preview.Source = src.Name()
		return preview
	}

	zlog.Warn().Msgf("all metadata sources failed, using placeholder: track=%q", trackName)
	metrics.RecordFallback()
	return track.Fallback(e.placeholder)
}

func (e *Enricher) lookup(ctx context.Context, src Source, trackName string) (track.Preview, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	preview, err := src.Lookup(callCtx, trackName)

	outcome := "success"
	switch {
	case breaker.IsRejection(err):
		outcome = "rejected"
	case err != nil:
		outcome = "failure"
	}
	metrics.RecordLookup(src.Name(), outcome, time.Since(start))

	return preview, err
}

// FetchAll fetches previews for all names concurrently.
// The result has the same length and order as names.
func (e *Enricher) FetchAll(ctx context.Context, names []string) []track.Preview {
	previews := make([]track.Preview, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, name := range names {
		g.Go(func() error {
			previews[i] = e.Fetch(gctx, name)
			return nil
		})
	}
	_ = g.Wait()

	return previews
}

// Sources returns the configured source names in lookup order.
func (e *Enricher) Sources() []string {
	names := make([]string, len(e.sources))
	for i, src := range e.sources {
		names[i] = src.Name()
	}
	return names
}
