package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP extracts the real client IP from X-Real-IP or X-Forwarded-For
// headers, but ONLY if the request comes from a trusted proxy CIDR.
// If no trusted proxies are configured or the request is not from a trusted
// proxy, the original RemoteAddr is used.
//
// This prevents IP spoofing attacks where untrusted clients send fake
// X-Real-IP headers to bypass rate limiting.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	// Parse trusted CIDRs once at startup
	trusted := parseTrusted(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remote, err := remoteAddr(r.RemoteAddr)

			// Only trust headers if request is from a trusted proxy
			if err == nil && isTrusted(remote, trusted) {
				if ip := headerIP(r); ip.IsValid() {
					r.RemoteAddr = ip.String()
				}
			}
			// Otherwise keep original RemoteAddr (don't trust headers)

			next.ServeHTTP(w, r)
		})
	}
}

// parseTrusted converts the configured CIDR strings into prefixes. Single
// IPs are accepted as full-length prefixes; invalid entries are skipped
// with a warning.
func parseTrusted(cidrs []string) []netip.Prefix {
	var trusted []netip.Prefix
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		if p, err := netip.ParsePrefix(cidr); err == nil {
			trusted = append(trusted, p)
			continue
		}
		if addr, err := netip.ParseAddr(cidr); err == nil {
			trusted = append(trusted, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		slog.Warn("realip: invalid trusted proxy CIDR, skipping", "cidr", cidr)
	}
	return trusted
}

// remoteAddr parses the connection source from a host:port string or a
// plain IP. 4-in-6 mapped addresses are unmapped so they match IPv4
// prefixes.
func remoteAddr(addr string) (netip.Addr, error) {
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap(), nil
	}
	a, err := netip.ParseAddr(addr)
	return a.Unmap(), err
}

// headerIP returns the first valid IP claimed by the proxy headers, or the
// zero Addr when neither header holds one. X-Real-IP wins over
// X-Forwarded-For; in X-Forwarded-For the first entry is the original
// client.
func headerIP(r *http.Request) netip.Addr {
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		if ip, err := netip.ParseAddr(strings.TrimSpace(rip)); err == nil {
			return ip
		}
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		candidate := xff
		if idx := strings.Index(xff, ","); idx > 0 {
			candidate = xff[:idx]
		}
		if ip, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
			return ip
		}
	}

	return netip.Addr{}
}

// isTrusted checks if an IP is within any of the trusted networks.
func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
