// Package workflow turns a track selection into enriched recommendations.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/stairway/internal/domain/track"
	"github.com/osa030/stairway/internal/infra/config"
	"github.com/osa030/stairway/internal/infra/metrics"
)

// Recommender ranks catalog tracks for a selection.
type Recommender interface {
	Recommend(name string) []string
	Contains(name string) bool
	Suggest(name string, n int) []string
	Tracks() []string
}

// Fetcher resolves presentation metadata; the result is index-aligned with names.
type Fetcher interface {
	FetchAll(ctx context.Context, names []string) []track.Preview
}

// Item is a single enriched recommendation.
type Item struct {
	Name    string
	Preview track.Preview
	Failed  bool // Metadata could not be fetched; Preview holds the fallback
}

// Warning is a user-facing condition attached to a result.
type Warning struct {
	Code        string
	Message     string
	Suggestions []string
}

// Result is the outcome of one recommendation request.
type Result struct {
	RequestID string
	Selected  string
	Items     []Item
	Warning   *Warning
}

// Service runs recommend-then-enrich requests.
type Service struct {
	config   *config.Config
	engine   Recommender
	enricher Fetcher
}

// NewService creates a new Service.
func NewService(cfg *config.Config, engine Recommender, enricher Fetcher) *Service {
	return &Service{
		config:   cfg,
		engine:   engine,
		enricher: enricher,
	}
}

// Tracks returns the selectable track names in catalog order.
func (s *Service) Tracks() []string {
	return s.engine.Tracks()
}

// Recommend returns enriched recommendations for the selected track.
// Items keep the engine's rank order. Conditions are reported through Result.Warning.
func (s *Service) Recommend(ctx context.Context, selected string) Result {
	start := time.Now()
	result := Result{
		RequestID: RequestIDFrom(ctx),
		Selected:  selected,
		Items:     []Item{},
	}

	outcome := s.recommend(ctx, &result)

	duration := time.Since(start)
	metrics.RecordRecommend(outcome, duration)
	zlog.Info().
		Str("request_id", result.RequestID).
		Str("track", selected).
		Str("outcome", outcome).
		Int("items", len(result.Items)).
		Dur("duration", duration).
		Msg("recommendation served")

	return result
}

func (s *Service) recommend(ctx context.Context, result *Result) string {
	if !s.engine.Contains(result.Selected) {
		suggestions := s.engine.Suggest(result.Selected, s.config.Recommend.SuggestionCount)
		result.Warning = s.warning(config.CodeUnknownTrack, suggestions)
		return config.CodeUnknownTrack
	}

	names := s.engine.Recommend(result.Selected)
	if len(names) == 0 {
		result.Warning = s.warning(config.CodeNoRecommendations, nil)
		return config.CodeNoRecommendations
	}

	previews := s.enricher.FetchAll(ctx, names)

	failed := 0
	result.Items = make([]Item, len(names))
	for i, name := range names {
		item := Item{Name: name, Preview: previews[i]}
		if item.Preview.IsFallback() {
			item.Failed = true
			failed++
		}
		result.Items[i] = item
	}

	if failed > 0 {
		zlog.Warn().Msgf("metadata unavailable for some recommendations: request_id=%s failed=%d total=%d",
			result.RequestID, failed, len(names))
		result.Warning = s.warning(config.CodeMetadataFetchFailure, nil)
		return "degraded"
	}
	return "ok"
}

func (s *Service) warning(code string, suggestions []string) *Warning {
	message := s.config.GetMessage(code)
	if len(suggestions) > 0 {
		message = fmt.Sprintf("%s Did you mean: %s?", message, strings.Join(suggestions, ", "))
	}
	return &Warning{
		Code:        code,
		Message:     message,
		Suggestions: suggestions,
	}
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID carried by ctx, or a new one.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
