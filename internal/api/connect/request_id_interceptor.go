package connect

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/stairway/internal/app/workflow"
)

const (
	// RequestIDHeader is the header carrying the request ID in both directions.
	RequestIDHeader = "X-Request-Id"
)

// NewRequestIDInterceptor creates an interceptor that assigns a request ID
// (or keeps the caller's), echoes it back and logs each call.
func NewRequestIDInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				return next(ctx, req)
			}

			requestID := req.Header().Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx = workflow.WithRequestID(ctx, requestID)

			start := time.Now()
			res, err := next(ctx, req)
			duration := time.Since(start)

			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					connectErr.Meta().Set(RequestIDHeader, requestID)
				}
				zlog.Warn().
					Str("request_id", requestID).
					Str("procedure", req.Spec().Procedure).
					Str("code", connect.CodeOf(err).String()).
					Dur("duration", duration).
					Msgf("rpc failed: %v", err)
				return nil, err
			}

			res.Header().Set(RequestIDHeader, requestID)
			zlog.Info().
				Str("request_id", requestID).
				Str("procedure", req.Spec().Procedure).
				Dur("duration", duration).
				Msg("rpc completed")
			return res, nil
		}
	}
}
