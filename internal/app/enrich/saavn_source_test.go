package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/stairway/internal/domain/track"
	"github.com/osa030/stairway/internal/infra/saavn"
)

func newSaavnServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newSaavnEnricher(t *testing.T, server *httptest.Server) *Enricher {
	t.Helper()
	source, err := NewSaavnSource(ClientOptions{Timeout: time.Second}, map[string]any{"base_url": server.URL})
	require.NoError(t, err)
	return NewEnricher([]Source{source}, Options{Timeout: time.Second})
}

const songWithDownloads = `{"data": {"results": [{
	"name": "Song A",
	"image": [
		{"quality": "50x50", "url": "https://c/50.jpg"},
		{"quality": "150x150", "url": "https://c/150.jpg"},
		{"quality": "500x500", "url": "https://c/500.jpg"}
	],
	"downloadUrl": [
		{"quality": "96kbps", "url": "https://a/96.mp4"},
		{"quality": "320kbps", "url": "https://a/320.mp4"},
		{"quality": "160kbps", "url": "https://a/160.mp4"}
	]
}]}}`

func TestFetch_SaavnResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantPoster  string
		wantPreview string
		wantSource  string
	}{
		{
			name:        "highest bitrate wins",
			status:      http.StatusOK,
			body:        songWithDownloads,
			wantPoster:  "https://c/500.jpg",
			wantPreview: "https://a/320.mp4",
			wantSource:  "saavn",
		},
		{
			name:       "no downloads keeps poster",
			status:     http.StatusOK,
			body:       `{"data": {"results": [{"image": [{"url": "a"}, {"url": "b"}, {"url": "c"}], "downloadUrl": []}]}}`,
			wantPoster: "c",
			wantSource: "saavn",
		},
		{
			name:       "empty results",
			status:     http.StatusOK,
			body:       `{"data": {"results": []}}`,
			wantPoster: track.PlaceholderPosterURL,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantPoster: track.PlaceholderPosterURL,
		},
		{
			name:       "missing image tier",
			status:     http.StatusOK,
			body:       `{"data": {"results": [{"image": [{"url": "a"}], "downloadUrl": [{"quality": "320kbps", "url": "x"}]}]}}`,
			wantPoster: track.PlaceholderPosterURL,
		},
		{
			name:       "missing download list",
			status:     http.StatusOK,
			body:       `{"data": {"results": [{"image": [{"url": "a"}, {"url": "b"}, {"url": "c"}]}]}}`,
			wantPoster: track.PlaceholderPosterURL,
		},
		{
			name:       "null download list",
			status:     http.StatusOK,
			body:       `{"data": {"results": [{"image": [{"url": "a"}, {"url": "b"}, {"url": "c"}], "downloadUrl": null}]}}`,
			wantPoster: track.PlaceholderPosterURL,
		},
		{
			name:       "download list not a list",
			status:     http.StatusOK,
			body:       `{"data": {"results": [{"image": [{"url": "a"}, {"url": "b"}, {"url": "c"}], "downloadUrl": "x"}]}}`,
			wantPoster: track.PlaceholderPosterURL,
		},
		{
			name:       "results not a list",
			status:     http.StatusOK,
			body:       `{"data": {"results": "nope"}}`,
			wantPoster: track.PlaceholderPosterURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enricher := newSaavnEnricher(t, newSaavnServer(t, tt.status, tt.body))

			preview := enricher.Fetch(context.Background(), "Song A")
			assert.Equal(t, tt.wantPoster, preview.PosterURL)
			assert.Equal(t, tt.wantPreview, preview.PreviewURL)
			assert.Equal(t, tt.wantSource, preview.Source)
			assert.Equal(t, tt.wantPreview != "", preview.HasPreview())
		})
	}
}

func TestBestDownload(t *testing.T) {
	tests := []struct {
		name        string
		links       []saavn.Link
		wantURL     string
		wantBitrate int
	}{
		{name: "empty", links: nil, wantURL: "", wantBitrate: 0},
		{
			name:        "skips unparseable labels",
			links:       []saavn.Link{{Quality: "high", URL: "h"}, {Quality: "12kbps", URL: "l"}},
			wantURL:     "l",
			wantBitrate: 12,
		},
		{
			name:        "first wins on ties",
			links:       []saavn.Link{{Quality: "160kbps", URL: "a"}, {Quality: "160kbps", URL: "b"}},
			wantURL:     "a",
			wantBitrate: 160,
		},
		{
			name:        "skips entries without url",
			links:       []saavn.Link{{Quality: "320kbps"}, {Quality: "96kbps", URL: "x"}},
			wantURL:     "x",
			wantBitrate: 96,
		},
		{name: "only unparseable", links: []saavn.Link{{Quality: "lossless", URL: "z"}}, wantURL: "", wantBitrate: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, bitrate := bestDownload(tt.links)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, tt.wantBitrate, bitrate)
		})
	}
}

func TestPreviewFromSong_ImageTier(t *testing.T) {
	song := saavn.Song{Image: []saavn.Link{{URL: "small"}, {URL: "large"}}, DownloadURL: &[]saavn.Link{}}

	preview, err := previewFromSong(song, 1)
	require.NoError(t, err)
	assert.Equal(t, "large", preview.PosterURL)
	assert.False(t, preview.HasPreview())

	preview, err = previewFromSong(song, 0)
	require.NoError(t, err)
	assert.Equal(t, "small", preview.PosterURL)

	_, err = previewFromSong(song, 2)
	assert.True(t, errors.Is(err, ErrMissingPoster))
	_, err = previewFromSong(song, -1)
	assert.True(t, errors.Is(err, ErrMissingPoster))
}

func TestPreviewFromSong_MissingDownloads(t *testing.T) {
	song := saavn.Song{Name: "Song A", Image: []saavn.Link{{URL: "a"}, {URL: "b"}, {URL: "c"}}}

	_, err := previewFromSong(song, 2)
	assert.True(t, errors.Is(err, ErrMissingDownloads))
}

func TestDecodeSaavnSettings(t *testing.T) {
	config, err := decodeSaavnSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, saavn.DefaultBaseURL, config.BaseURL)
	assert.Nil(t, config.ImageTier)
	assert.Equal(t, 2, config.Tier())

	config, err = decodeSaavnSettings(map[string]any{"base_url": "http://localhost:3000", "image_tier": 1})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", config.BaseURL)
	assert.Equal(t, 1, config.Tier())

	config, err = decodeSaavnSettings(map[string]any{"image_tier": 0})
	require.NoError(t, err)
	assert.Equal(t, 0, config.Tier(), "an explicit tier 0 is kept")

	_, err = decodeSaavnSettings(map[string]any{"image_tier": -1})
	assert.Error(t, err)

	_, err = decodeSaavnSettings(map[string]any{"base_url": "not a url"})
	assert.Error(t, err)

	_, err = decodeSaavnSettings(map[string]any{"image_tier": "two"})
	assert.Error(t, err)
}
