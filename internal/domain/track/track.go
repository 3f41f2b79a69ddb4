// Package track provides the Track domain entity and per-track presentation metadata.
package track

// PlaceholderPosterURL is shown when no poster could be resolved for a track.
const PlaceholderPosterURL = "https://i.postimg.cc/0QNxYz4V/social.png"

// Track represents a catalog entry.
type Track struct {
	Index  int               // Position in the catalog (row/column of the similarity table)
	Name   string            // Track name, unique within the catalog
	Fields map[string]string // Other source columns, passed through untouched
}

// Neighbor is a ranked recommendation with its similarity score.
type Neighbor struct {
	Index int
	Name  string
	Score float64
}

// Preview represents the presentation metadata fetched for a track.
type Preview struct {
	PosterURL  string // Poster image URL (placeholder on failure)
	PreviewURL string // Audio preview URL (empty when absent)
	Bitrate    int    // Bitrate of the selected preview in kbps (0 when unknown)
	Source     string // Name of the source that answered (empty for fallback)
}

// Fallback returns the degraded preview used when every lookup failed.
func Fallback(placeholder string) Preview {
	if placeholder == "" {
		placeholder = PlaceholderPosterURL
	}
	return Preview{PosterURL: placeholder}
}

// HasPreview reports whether an audio preview is available.
func (p Preview) HasPreview() bool {
	return p.PreviewURL != ""
}

// IsFallback reports whether the preview came from no source.
func (p Preview) IsFallback() bool {
	return p.Source == ""
}
