// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	stairwayv1 "github.com/osa030/stairway/internal/api/stairwayv1"
	"github.com/osa030/stairway/internal/api/stairwayv1/stairwayv1connect"
	"github.com/osa030/stairway/internal/app/workflow"
)

// RecommendationService implements the RecommendationService RPC.
type RecommendationService struct {
	workflow *workflow.Service
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(wf *workflow.Service) *RecommendationService {
	return &RecommendationService{
		workflow: wf,
	}
}

// Ensure RecommendationService implements the interface.
var _ stairwayv1connect.RecommendationServiceHandler = (*RecommendationService)(nil)

// ListTracks returns the selectable catalog.
func (s *RecommendationService) ListTracks(
	ctx context.Context,
	req *connect.Request[stairwayv1.ListTracksRequest],
) (*connect.Response[stairwayv1.ListTracksResponse], error) {
	return connect.NewResponse(&stairwayv1.ListTracksResponse{
		Tracks: s.workflow.Tracks(),
	}), nil
}

// Recommend returns enriched recommendations for the requested track.
func (s *RecommendationService) Recommend(
	ctx context.Context,
	req *connect.Request[stairwayv1.RecommendRequest],
) (*connect.Response[stairwayv1.RecommendResponse], error) {
	if strings.TrimSpace(req.Msg.TrackName) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("track_name is required"))
	}

	result := s.workflow.Recommend(ctx, req.Msg.TrackName)

	resp := &stairwayv1.RecommendResponse{
		RequestID: result.RequestID,
		Selected:  result.Selected,
		Items:     make([]stairwayv1.RecommendationItem, len(result.Items)),
	}
	for i, item := range result.Items {
		resp.Items[i] = stairwayv1.RecommendationItem{
			Name:       item.Name,
			PosterURL:  item.Preview.PosterURL,
			PreviewURL: item.Preview.PreviewURL,
			HasPreview: item.Preview.HasPreview(),
			Bitrate:    item.Preview.Bitrate,
			Source:     item.Preview.Source,
			Failed:     item.Failed,
		}
	}
	if result.Warning != nil {
		resp.WarningCode = result.Warning.Code
		resp.WarningMessage = result.Warning.Message
		resp.Suggestions = result.Warning.Suggestions
	}

	return connect.NewResponse(resp), nil
}
