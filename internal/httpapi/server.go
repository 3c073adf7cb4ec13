package httpapi

import (
	"net/http"
	"time"

	"climate-server/internal/config"
)

// NewServer wraps mux in the middleware chain, outermost first:
// request id, request log, rate limit.
func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	var h http.Handler = mux
	if cfg.RateLimitRPS > 0 {
		h = rateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(h)
	}
	h = requestLogger(h)
	h = requestID(h)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
