// Package saavn provides a client for the JioSaavn song search API.
package saavn

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	zlog "github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/osa030/stairway/internal/infra/breaker"
)

// DefaultBaseURL is the public search API endpoint.
const DefaultBaseURL = "https://saavn.dev"

// searchPath is the song search endpoint relative to the base URL.
const searchPath = "/api/search/songs"

var (
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrNoResults is returned when the response carries no results.
	ErrNoResults = errors.New("no results found")
	// ErrMalformedResponse is returned when the response does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// Client is a JioSaavn API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]Song]
}

// Config represents JioSaavn client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // Requests per second; 0 disables limiting
	RateBurst int
	Breaker   breaker.Settings
}

// SearchResponse represents the response from the song search API.
type SearchResponse struct {
	Success bool        `json:"success"`
	Data    *SearchData `json:"data"`
}

// SearchData holds the raw results so that their shape can be checked before decoding.
type SearchData struct {
	Total   int             `json:"total"`
	Results json.RawMessage `json:"results"`
}

// Song represents a single search result.
// DownloadURL is nil when the key is absent or null, and empty when the song has no downloads.
type Song struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Image       []Link  `json:"image"`
	DownloadURL *[]Link `json:"downloadUrl"`
}

// Link is a quality-tagged URL, e.g. {"quality": "320kbps", "url": "..."}.
type Link struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

// New creates a new JioSaavn client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
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
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker.New[[]Song]("saavn-api", cfg.Breaker, countsAsSuccess),
	}, nil
}

// SearchSongs searches songs by name and returns the results in API order.
// It returns ErrNoResults when the result list is absent or empty.
func (c *Client) SearchSongs(ctx context.Context, query string) ([]Song, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is required")
	}

	return c.breaker.Execute(func() ([]Song, error) {
		return c.search(ctx, query)
	})
}

func (c *Client) search(ctx context.Context, query string) ([]Song, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait failed")
	}

	params := url.Values{}
	params.Set("query", query)
	reqURL := c.baseURL + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "status %d", resp.StatusCode)
	}

	songs, err := parseSearchResponse(body)
	if err != nil {
		return nil, err
	}

	zlog.Debug().Msgf("saavn search: query=%q results=%d", query, len(songs))
	return songs, nil
}

// parseSearchResponse decodes {"data": {"results": [...]}} and checks each level exists.
func parseSearchResponse(body []byte) ([]Song, error) {
	var response SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(ErrMalformedResponse, err.Error())
	}
	if response.Data == nil {
		return nil, errors.Wrap(ErrNoResults, "missing data")
	}

	raw := bytes.TrimSpace(response.Data.Results)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.Wrap(ErrNoResults, "missing results")
	}
	if raw[0] != '[' {
		return nil, errors.Wrap(ErrMalformedResponse, "results is not a list")
	}

	var songs []Song
	if err := json.Unmarshal(raw, &songs); err != nil {
		return nil, errors.Wrap(ErrMalformedResponse, err.Error())
	}
	if len(songs) == 0 {
		return nil, ErrNoResults
	}
	return songs, nil
}

// countsAsSuccess keeps well-formed "not found" answers from tripping the breaker.
func countsAsSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, ErrNoResults) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, context.Canceled)
}
