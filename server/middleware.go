package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/giygas/druglabel-checker/config"
	"github.com/giygas/druglabel-checker/handlers"
	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/metrics"
	"github.com/juju/ratelimit"
)

// RealIPMiddleware replaces RemoteAddr with the client IP, without port. The
// first X-Forwarded-For entry is only honoured behind a trusted proxy.
func RealIPMiddleware(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if xff := r.Header.Get("X-Forwarded-For"); trustProxy && xff != "" {
				// Take the first IP from the comma-separated list
				if idx := strings.Index(xff, ","); idx != -1 {
					xff = xff[:idx]
				}
				r.RemoteAddr = strings.TrimSpace(xff)
			} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				r.RemoteAddr = host
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BlockDirectAccessMiddleware rejects requests that did not come through the
// reverse proxy, except from localhost.
func BlockDirectAccessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Real-IP") == "" && r.Header.Get("X-Forwarded-For") == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				// If we can't parse the host:port, try to use the whole RemoteAddr as host
				host = r.RemoteAddr
			}

			// Allow localhost access for development
			if host == "127.0.0.1" || host == "::1" || host == "localhost" {
				next.ServeHTTP(w, r)
				return
			}

			logging.Warn("Direct access blocked", "remote_addr", r.RemoteAddr, "user_agent", r.Header.Get("User-Agent"))
			respondWithError(w, http.StatusForbidden, "direct_access", "Direct access not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestSizeMiddleware limits the size of request headers and body
func RequestSizeMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check Content-Length header if present
			if contentLength := r.Header.Get("Content-Length"); contentLength != "" {
				if length, err := strconv.ParseInt(contentLength, 10, 64); err == nil && length > cfg.MaxRequestBody {
					logging.Warn("Request body too large",
						"content_length", length,
						"max_allowed", cfg.MaxRequestBody,
						"remote_addr", r.RemoteAddr,
						"user_agent", r.UserAgent())

					respondWithError(w, http.StatusRequestEntityTooLarge, "body_too_large",
						fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", cfg.MaxRequestBody))
					return
				}
			}

			// Check header size (rough estimate)
			headerSize := int64(0)
			for key, values := range r.Header {
				headerSize += int64(len(key))
				for _, value := range values {
					headerSize += int64(len(value))
				}
			}

			if headerSize > cfg.MaxHeaderSize {
				logging.Warn("Request headers too large",
					"header_size", headerSize,
					"max_allowed", cfg.MaxHeaderSize,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())

				respondWithError(w, http.StatusRequestHeaderFieldsTooLarge, "headers_too_large",
					fmt.Sprintf("Request headers too large. Maximum allowed size is %d bytes", cfg.MaxHeaderSize))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBody)
			next.ServeHTTP(w, r)
		})
	}
}

// Bucket parameters: tokens refilled per second and burst capacity.
const (
	rateLimitRate     = 3
	rateLimitCapacity = 1000
)

// RateLimiter manages per-client token buckets
type RateLimiter struct {
	clients  map[string]*ratelimit.Bucket
	mu       sync.RWMutex
	rate     float64
	capacity int64
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate float64, capacity int64) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*ratelimit.Bucket),
		rate:     rate,
		capacity: capacity,
	}
}

func (rl *RateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(rl.rate, rl.capacity)
			rl.clients[clientIP] = bucket
			metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
		}
		rl.mu.Unlock()
	}

	return bucket
}

// cleanupIdle removes clients whose buckets have refilled completely.
func (rl *RateLimiter) cleanupIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, ip)
			removed++
		}
	}
	metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
	return removed
}

// RunCleanup removes idle clients every interval until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := rl.cleanupIdle(); removed > 0 {
				logging.Debug("Rate limiter cleanup", "removed", removed)
			}
		}
	}
}

// getTokenCost prices a request by the upstream lookups it can trigger.
func getTokenCost(r *http.Request) int64 {
	path := r.URL.Path

	switch {
	case path == "/metrics":
		return 0
	case path == "/health":
		return 5
	case path == "/":
		// The form itself is free, a check runs two lookups
		if r.URL.Query().Get("drug_a") != "" && r.URL.Query().Get("drug_b") != "" {
			return 100
		}
		return 0
	case path == "/v1/interactions", path == "/v1/crosscheck":
		return 100
	case strings.HasPrefix(path, "/v1/labels/"):
		return 50
	}

	return 20
}

// Middleware applies the token bucket of the client. Expects RemoteAddr to be
// the bare client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket := rl.getBucket(r.RemoteAddr)
		tokenCost := getTokenCost(r)

		// Add rate limit headers before consuming tokens
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.capacity, 10))
		w.Header().Set("X-RateLimit-Rate", strconv.FormatFloat(rl.rate, 'f', -1, 64))

		if bucket.TakeAvailable(tokenCost) < tokenCost {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, "rate_limited",
				"Rate limit exceeded. Each check costs more than a single label lookup; please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}

// respondWithError writes the same error body as the API handlers.
func respondWithError(w http.ResponseWriter, code int, reason, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	body := handlers.ErrorResponse{
		Error:   http.StatusText(code),
		Reason:  reason,
		Message: message,
		Code:    code,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("Failed to encode JSON response", "error", err)
	}
}
