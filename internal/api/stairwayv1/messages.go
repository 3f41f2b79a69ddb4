// Package stairwayv1 defines the messages of the stairway.v1 RPC API.
package stairwayv1

// ListTracksRequest asks for the selectable catalog.
type ListTracksRequest struct{}

// ListTracksResponse lists catalog track names in catalog order.
type ListTracksResponse struct {
	Tracks []string `json:"tracks"`
}

// RecommendRequest asks for recommendations for a catalog track.
type RecommendRequest struct {
	TrackName string `json:"track_name"`
}

// RecommendResponse carries ranked, enriched recommendations.
// WarningCode is empty when every item was resolved.
type RecommendResponse struct {
	RequestID      string               `json:"request_id"`
	Selected       string               `json:"selected"`
	Items          []RecommendationItem `json:"items"`
	WarningCode    string               `json:"warning_code,omitempty"`
	WarningMessage string               `json:"warning_message,omitempty"`
	Suggestions    []string             `json:"suggestions,omitempty"`
}

// RecommendationItem is a recommended track with its presentation metadata.
type RecommendationItem struct {
	Name       string `json:"name"`
	PosterURL  string `json:"poster_url"`
	PreviewURL string `json:"preview_url,omitempty"`
	HasPreview bool   `json:"has_preview"`
	Bitrate    int    `json:"bitrate,omitempty"`
	Source     string `json:"source,omitempty"`
	Failed     bool   `json:"failed"`
}
