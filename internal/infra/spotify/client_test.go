package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

func newTestClient(t *testing.T, search http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		search(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := New(context.Background(), Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      2 * time.Second,
		BaseURL:      server.URL + "/v1",
		TokenURL:     server.URL + "/token",
	})
	require.NoError(t, err)
	client.retryDelay = time.Millisecond
	return client
}

func TestSearchTrack(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Song A", r.URL.Query().Get("q"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tracks": {"items": [{
			"id": "t1",
			"name": "Song A",
			"artists": [{"name": "Artist"}],
			"album": {"images": [
				{"url": "https://i/640.jpg", "width": 640, "height": 640},
				{"url": "https://i/300.jpg", "width": 300, "height": 300}
			]},
			"preview_url": "https://p/t1.mp3"
		}]}}`)
	})

	match, err := client.SearchTrack(context.Background(), "Song A")
	require.NoError(t, err)
	assert.Equal(t, "t1", match.ID)
	assert.Equal(t, []string{"Artist"}, match.Artists)
	assert.Equal(t, "https://i/300.jpg", match.ImageURL)
	assert.Equal(t, "https://p/t1.mp3", match.PreviewURL)
}

func TestSearchTrack_NoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tracks": {"items": []}}`)
	})

	_, err := client.SearchTrack(context.Background(), "nothing")
	assert.True(t, errors.Is(err, ErrNoResults))

	_, err = client.SearchTrack(context.Background(), " ")
	assert.Error(t, err)
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "id"})
	assert.Error(t, err)
}

func TestPickImage(t *testing.T) {
	tests := []struct {
		name     string
		images   []spotify.Image
		expected string
	}{
		{name: "none", images: nil, expected: ""},
		{name: "prefers 300", images: []spotify.Image{{URL: "a", Width: 640}, {URL: "b", Width: 300}, {URL: "c", Width: 64}}, expected: "b"},
		{name: "falls back to first", images: []spotify.Image{{URL: "a", Width: 640}, {URL: "c", Width: 64}}, expected: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pickImage(tt.images))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "rate limit error with 429",
			err:      errors.New("Error 429: rate limit exceeded"),
			expected: true,
		},
		{
			name:     "rate limit text",
			err:      errors.New("rate limit exceeded"),
			expected: true,
		},
		{
			name:     "server error 500",
			err:      errors.New("Error 500: internal server error"),
			expected: true,
		},
		{
			name:     "server error 502",
			err:      errors.New("502 Bad Gateway"),
			expected: true,
		},
		{
			name:     "server error 503",
			err:      errors.New("503 Service Unavailable"),
			expected: true,
		},
		{
			name:     "server error 504",
			err:      errors.New("504 Gateway Timeout"),
			expected: true,
		},
		{
			name:     "client error 400",
			err:      errors.New("400 Bad Request"),
			expected: false,
		},
		{
			name:     "not found error",
			err:      errors.New("404 not found"),
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryable(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
