package ratelimit

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/rs/zerolog"
)

// Middleware rejects requests over the limit with 429. Limiter errors let the
// request through. The key is the host of r.RemoteAddr, so RealIP must run
// first when the service sits behind a proxy.
func Middleware(limiter Limiter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := remoteHost(r.RemoteAddr)
			ok, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn().Err(err).Str("client_ip", ip).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				logger.Info().Str("client_ip", ip).Str("path", r.URL.Path).Msg("rate limited")
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests. Please wait a minute and try again.",
					"kind":  "rate_limited",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ParseTrustedProxies reads a comma-separated list of CIDRs or bare IPs.
func ParseTrustedProxies(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// RealIP rewrites r.RemoteAddr to ClientIP(r, trusted).
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.RemoteAddr = ClientIP(r, trusted)
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the connecting peer unless that peer is a trusted proxy.
// Then X-Forwarded-For is walked from the right and the first address that
// is not itself trusted wins.
func ClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := remoteHost(r.RemoteAddr)
	if !isTrusted(peer, trusted) {
		return peer
	}

	xf := r.Header.Values("X-Forwarded-For")
	var hops []string
	for _, line := range xf {
		hops = append(hops, strings.Split(line, ",")...)
	}

	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			break
		}
		client = hop
		if !isTrusted(hop, trusted) {
			break
		}
	}
	return client
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return remoteAddr
}
