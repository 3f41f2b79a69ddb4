// Package stairwayv1connect wires the stairway.v1 messages to Connect handlers and clients.
package stairwayv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	stairwayv1 "github.com/osa030/stairway/internal/api/stairwayv1"
)

// RecommendationServiceName is the fully-qualified name of the RecommendationService service.
const RecommendationServiceName = "stairway.v1.RecommendationService"

// Procedure paths of the RecommendationService RPCs.
const (
	RecommendationServiceListTracksProcedure = "/stairway.v1.RecommendationService/ListTracks"
	RecommendationServiceRecommendProcedure  = "/stairway.v1.RecommendationService/Recommend"
)

// RecommendationServiceClient is a client for the stairway.v1.RecommendationService service.
type RecommendationServiceClient interface {
	ListTracks(context.Context, *connect.Request[stairwayv1.ListTracksRequest]) (*connect.Response[stairwayv1.ListTracksResponse], error)
	Recommend(context.Context, *connect.Request[stairwayv1.RecommendRequest]) (*connect.Response[stairwayv1.RecommendResponse], error)
}

// NewRecommendationServiceClient constructs a client for the stairway.v1.RecommendationService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewRecommendationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RecommendationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &recommendationServiceClient{
		listTracks: connect.NewClient[stairwayv1.ListTracksRequest, stairwayv1.ListTracksResponse](
			httpClient,
			baseURL+RecommendationServiceListTracksProcedure,
			opts...,
		),
		recommend: connect.NewClient[stairwayv1.RecommendRequest, stairwayv1.RecommendResponse](
			httpClient,
			baseURL+RecommendationServiceRecommendProcedure,
			opts...,
		),
	}
}

type recommendationServiceClient struct {
	listTracks *connect.Client[stairwayv1.ListTracksRequest, stairwayv1.ListTracksResponse]
	recommend  *connect.Client[stairwayv1.RecommendRequest, stairwayv1.RecommendResponse]
}

func (c *recommendationServiceClient) ListTracks(ctx context.Context, req *connect.Request[stairwayv1.ListTracksRequest]) (*connect.Response[stairwayv1.ListTracksResponse], error) {
	return c.listTracks.CallUnary(ctx, req)
}

func (c *recommendationServiceClient) Recommend(ctx context.Context, req *connect.Request[stairwayv1.RecommendRequest]) (*connect.Response[stairwayv1.RecommendResponse], error) {
	return c.recommend.CallUnary(ctx, req)
}

// RecommendationServiceHandler is implemented by the stairway.v1.RecommendationService server.
type RecommendationServiceHandler interface {
	ListTracks(context.Context, *connect.Request[stairwayv1.ListTracksRequest]) (*connect.Response[stairwayv1.ListTracksResponse], error)
	Recommend(context.Context, *connect.Request[stairwayv1.RecommendRequest]) (*connect.Response[stairwayv1.RecommendResponse], error)
}

// NewRecommendationServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewRecommendationServiceHandler(svc RecommendationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	listTracksHandler := connect.NewUnaryHandler(
		RecommendationServiceListTracksProcedure,
		svc.ListTracks,
		opts...,
	)
	recommendHandler := connect.NewUnaryHandler(
		RecommendationServiceRecommendProcedure,
		svc.Recommend,
		opts...,
	)
	return "/" + RecommendationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RecommendationServiceListTracksProcedure:
			listTracksHandler.ServeHTTP(w, r)
		case RecommendationServiceRecommendProcedure:
			recommendHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
