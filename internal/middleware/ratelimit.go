package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"intersect-backend/internal/cache"
)

const (
	signinLimit    = 10
	signinWindow   = time.Minute
	applyIPLimit   = 10
	applyIPWindow  = time.Minute
	applyKeyLimit  = 30
	applyKeyWindow = time.Hour
	keyPrefixLen   = 12
)

// RateLimitSignIn caps sign-in attempts per client IP.
func RateLimitSignIn(cacheClient cache.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			key := "rl:signin:" + ip
			count, err := cacheClient.IncrWithTTL(key, signinWindow)
			if err == nil && count > signinLimit {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitApply caps join applications per client IP. The key-prefix limit is
// enforced in the handler once the body has been decoded.
func RateLimitApply(cacheClient cache.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			key := "rl:apply:ip:" + ip
			count, err := cacheClient.IncrWithTTL(key, applyIPWindow)
			if err == nil && count > applyIPLimit {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ApplyKeyAllowed rate-limits guesses against a single organization key by its
// public prefix.
func ApplyKeyAllowed(cacheClient cache.Client, joinKey string) bool {
	if joinKey == "" {
		return true
	}

	prefix := joinKey
	if len(prefix) > keyPrefixLen {
		prefix = prefix[:keyPrefixLen]
	}
	count, err := cacheClient.IncrWithTTL("rl:apply:key:"+prefix, applyKeyWindow)
	if err != nil {
		return true
	}
	return count <= applyKeyLimit
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
