package handlers

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// RateLimiter is the minimal interface required to guard the endpoints
// that spend the upstream lookup quota.
type RateLimiter interface {
	Allow(key string) bool
}

// allowRequest checks the caller against the limiter. The scope keeps
// resolve and trending on separate quotas for the same IP.
func allowRequest(limiter RateLimiter, r *http.Request, scope string) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(rateLimitKey(r, scope))
}

func rateLimitKey(r *http.Request, scope string) string {
	ip := clientIP(r)
	if scope == "" {
		return ip
	}
	return fmt.Sprintf("%s:%s", scope, ip)
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		// First hop is the original client when behind a proxy.
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
