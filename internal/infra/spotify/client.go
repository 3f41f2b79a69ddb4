// Package spotify provides a search client for the Spotify Web API.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/osa030/stairway/internal/infra/breaker"
)

// ErrNoResults is returned when a search matches no track.
var ErrNoResults = errors.New("no matching track")

// Client is a Spotify API client using the client credentials flow.
type Client struct {
	client     *spotify.Client
	market     string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*Match]
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string
	Timeout      time.Duration
	RateLimit    float64
	RateBurst    int
	Breaker      breaker.Settings
	BaseURL      string // Overrides the API base URL (tests)
	TokenURL     string // Overrides the token endpoint (tests)
}

// Match is the presentation metadata of the best search hit.
type Match struct {
	ID         string
	Name       string
	Artists    []string
	ImageURL   string
	PreviewURL string
}

// New creates a new Spotify client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client credentials are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	// Token requests reuse the bounded client; the returned client refreshes tokens on demand.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := creds.Client(ctx)
	httpClient.Timeout = timeout

	var opts []spotify.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		client:     spotify.New(httpClient, opts...),
		market:     cfg.Market,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker.New[*Match]("spotify-api", cfg.Breaker, countsAsSuccess),
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// SearchTrack returns the best track match for a free-text query.
func (c *Client) SearchTrack(ctx context.Context, query string) (*Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is required")
	}

	return c.breaker.Execute(func() (*Match, error) {
		return c.searchTrack(ctx, query)
	})
}

func (c *Client) searchTrack(ctx context.Context, query string) (*Match, error) {
	opts := []spotify.RequestOption{spotify.Limit(1)}
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}

	var result *spotify.SearchResult
	err := c.retry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		r, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, opts...)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search")
	}

	if result == nil || result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, ErrNoResults
	}

	match := convertTrack(&result.Tracks.Tracks[0])
	zlog.Debug().Msgf("spotify search: query=%q match=%q", query, match.Name)
	return match, nil
}

// convertTrack converts a Spotify FullTrack to a Match.
func convertTrack(t *spotify.FullTrack) *Match {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return &Match{
		ID:         string(t.ID),
		Name:       t.Name,
		Artists:    artists,
		ImageURL:   pickImage(t.Album.Images),
		PreviewURL: t.PreviewURL,
	}
}

// pickImage prefers the 300px album image, falling back to the largest.
// Spotify lists album images widest first.
func pickImage(images []spotify.Image) string {
	for _, img := range images {
		if img.Width == 300 {
			return img.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}

// retry retries an operation with linear backoff.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, ErrNoResults) || errors.Is(err, context.Canceled)
}
