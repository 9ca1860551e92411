// Package ratelimit throttles HTTP requests per client address with a token
// bucket kept in an expiring LRU cache.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

type Options struct {
	// Interval is the time needed to earn back one request.
	Interval time.Duration
	// Burst is the number of requests a fresh client may issue at once.
	Burst     int
	CacheSize int
	TTL       time.Duration
	// TrustProxyHeaders keys clients by X-Forwarded-For / X-Real-Ip.
	TrustProxyHeaders bool

	// OnLimited writes the rejection. Defaults to a plain 429.
	OnLimited func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)
}

func Middleware(opts Options) func(http.Handler) http.Handler {
	cache := expirable.NewLRU[string, *rate.Limiter](opts.CacheSize, nil, opts.TTL)

	onLimited := opts.OnLimited
	if onLimited == nil {
		onLimited = func(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	getLimiter := func(remoteAddr string) *rate.Limiter {
		limiter, exists := cache.Get(remoteAddr)
		if !exists {
			limiter = rate.NewLimiter(rate.Every(opts.Interval), opts.Burst)
			cache.Add(remoteAddr, limiter)
		}
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := getLimiter(ClientAddr(r, opts.TrustProxyHeaders))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				onLimited(w, r, 0)
				return
			}
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				onLimited(w, r, delay)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(opts.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))

			next.ServeHTTP(w, r)
		})
	}
}

// ClientAddr returns the address used to key the limiter.
func ClientAddr(r *http.Request, trustHeaders bool) string {
	if trustHeaders {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := r.Header.Get("X-Real-Ip"); xri != "" {
			return xri
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
