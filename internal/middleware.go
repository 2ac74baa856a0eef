package internal

import (
	"context"
	"log/slog"
	"time"

	"github.com/frankli0324/go-hass/internal/http"
)

// Logging logs every request with its outcome. headers are never logged,
// they may carry the api password.
func Logging(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *http.PreparedRequest) (*http.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			attrs := []any{
				"method", req.Method,
				"host", req.Endpoint.Host,
				"path", "/" + req.Endpoint.Path,
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Warn("request failed", append(attrs, "error", err)...)
				return nil, err
			}
			logger.Debug("request sent", append(attrs, "status", resp.StatusCode)...)
			return resp, nil
		}
	}
}
