package handlers

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/vidtube/backend/internal/response"
)

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// allowRequest throttles unauthenticated endpoints per client address.
func allowRequest(limiter RateLimiter, r *http.Request, scope string) error {
	if limiter == nil || limiter.Allow(r.Context(), rateLimitKey(r, scope)) {
		return nil
	}
	return response.TooManyRequests("Too many requests, please try again later")
}

func rateLimitKey(r *http.Request, scope string) string {
	addr := clientAddr(r)
	if scope == "" {
		return addr
	}
	return scope + ":" + addr
}

// clientAddr prefers the first X-Forwarded-For hop and falls back to the
// connection's remote host.
func clientAddr(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return normalizeAddr(strings.TrimSpace(first))
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return normalizeAddr(host)
	}
	return normalizeAddr(remote)
}

func normalizeAddr(raw string) string {
	if ip, err := netip.ParseAddr(raw); err == nil {
		return ip.Unmap().String()
	}
	return raw
}
