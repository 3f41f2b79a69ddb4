package enrich

import (
	"context"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/stairway/internal/domain/track"
	"github.com/osa030/stairway/internal/infra/saavn"
)

// SaavnClient defines the interface for JioSaavn operations.
type SaavnClient interface {
	SearchSongs(ctx context.Context, query string) ([]saavn.Song, error)
}

// defaultImageTier is the image variant used as poster when image_tier is unset.
const defaultImageTier = 2

// ErrMissingDownloads is returned when a search hit has no download list at all.
// An empty list is valid and means the song has no preview.
var ErrMissingDownloads = errors.New("download list not found")

type SaavnSourceConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url" default:"https://saavn.dev" validate:"url"`
	ImageTier *int   `yaml:"image_tier" mapstructure:"image_tier" validate:"omitempty,gte=0"`
}

// Tier returns the configured image tier, or the default when unset.
func (c *SaavnSourceConfig) Tier() int {
	if c.ImageTier == nil {
		return defaultImageTier
	}
	return *c.ImageTier
}

// SaavnSource looks tracks up through the JioSaavn song search.
type SaavnSource struct {
	client SaavnClient
	config *SaavnSourceConfig
}

// bitratePattern extracts the number from quality labels such as "320kbps".
var bitratePattern = regexp.MustCompile(`\d+`)

// NewSaavnSource creates a new SaavnSource from provider settings.
func NewSaavnSource(opts ClientOptions, settings map[string]any) (*SaavnSource, error) {
	config, err := decodeSaavnSettings(settings)
	if err != nil {
		return nil, err
	}

	client, err := saavn.New(saavn.Config{
		BaseURL:   config.BaseURL,
		Timeout:   opts.Timeout,
		RateLimit: opts.RateLimit,
		RateBurst: opts.RateBurst,
		Breaker:   opts.Breaker,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create saavn client")
	}

	return newSaavnSource(client, config), nil
}

func newSaavnSource(client SaavnClient, config *SaavnSourceConfig) *SaavnSource {
	return &SaavnSource{client: client, config: config}
}

func decodeSaavnSettings(settings map[string]any) (*SaavnSourceConfig, error) {
	var config SaavnSourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	return &config, nil
}

// Lookup searches by track name and reads the first hit.
func (s *SaavnSource) Lookup(ctx context.Context, trackName string) (track.Preview, error) {
	songs, err := s.client.SearchSongs(ctx, trackName)
	if err != nil {
		return track.Preview{}, err
	}
	return previewFromSong(songs[0], s.config.Tier())
}

// Name returns the source type.
func (s *SaavnSource) Name() string {
	return "saavn"
}

// previewFromSong picks the poster at the given image tier and the highest bitrate download.
// A song with an empty download list still yields a poster; a missing list does not.
func previewFromSong(song saavn.Song, imageTier int) (track.Preview, error) {
	if imageTier < 0 || imageTier >= len(song.Image) || song.Image[imageTier].URL == "" {
		return track.Preview{}, errors.Wrapf(ErrMissingPoster, "image tier %d of %d", imageTier, len(song.Image))
	}
	if song.DownloadURL == nil {
		return track.Preview{}, errors.Wrapf(ErrMissingDownloads, "song %q", song.Name)
	}

	previewURL, bitrate := bestDownload(*song.DownloadURL)
	return track.Preview{
		PosterURL:  song.Image[imageTier].URL,
		PreviewURL: previewURL,
		Bitrate:    bitrate,
	}, nil
}

// bestDownload returns the download with the largest bitrate.
// Entries without a parseable bitrate or URL are skipped; the first wins on ties.
func bestDownload(links []saavn.Link) (string, int) {
	bestURL, best := "", -1
	for _, l := range links {
		kbps, ok := parseBitrate(l.Quality)
		if !ok || l.URL == "" {
			continue
		}
		if kbps > best {
			bestURL, best = l.URL, kbps
		}
	}
	if best < 0 {
		return "", 0
	}
	return bestURL, best
}

func parseBitrate(label string) (int, bool) {
	digits := bitratePattern.FindString(label)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
