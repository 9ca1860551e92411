package httpapi

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	sloghttp "github.com/samber/slog-http"

	"github.com/Overland-East-Bay/membership-tracker/internal/adapters/httpapi/ratelimit"
)

type RouterOptions struct {
	// MetricsHandler serves /metrics. Defaults to promhttp.Handler(); set
	// DisableMetrics to leave the route out.
	MetricsHandler http.Handler
	DisableMetrics bool

	// CORSAllowedOrigins enables CORS for the listed origins. Empty disables it.
	CORSAllowedOrigins []string

	// RateLimit throttles mutating requests per client when Enabled.
	RateLimit RateLimitOptions
}

type RateLimitOptions struct {
	Enabled           bool
	Interval          time.Duration
	Burst             int
	CacheSize         int
	TTL               time.Duration
	TrustProxyHeaders bool
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(sloghttp.NewWithConfig(s.Logger, sloghttp.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
	}))
	r.Use(middleware.Recoverer)
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: opts.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Idempotency-Key", "Accept-Language"},
			ExposedHeaders: []string{"Location", "Idempotent-Replayed", "Content-Language"},
			MaxAge:         600,
		}).Handler)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, codeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed", nil)
	})

	// Health endpoint (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if !opts.DisableMetrics {
		h := opts.MetricsHandler
		if h == nil {
			h = promhttp.Handler()
		}
		r.Method(http.MethodGet, "/metrics", h)
	}

	r.Route(routeMemberships, func(r chi.Router) {
		r.Get("/", s.ListMemberships)
		r.Get("/{membershipId}", s.GetMembership)

		r.Group(func(r chi.Router) {
			if opts.RateLimit.Enabled {
				r.Use(rateLimiter(opts.RateLimit))
			}
			r.Post("/", s.CreateMembership)
			r.Patch("/{membershipId}", s.UpdateMembership)
			r.Delete("/{membershipId}", s.DeleteMembership)
		})
	})
	r.Get("/labels", s.GetLabels)

	return r
}

func rateLimiter(o RateLimitOptions) func(http.Handler) http.Handler {
	return ratelimit.Middleware(ratelimit.Options{
		Interval:          o.Interval,
		Burst:             o.Burst,
		CacheSize:         o.CacheSize,
		TTL:               o.TTL,
		TrustProxyHeaders: o.TrustProxyHeaders,
		OnLimited: func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
			writeError(w, r, http.StatusTooManyRequests, codeRateLimited, "too many requests", map[string]any{
				"retryAfterSeconds": int(math.Ceil(retryAfter.Seconds())),
			})
		},
	})
}
