package http

import (
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"ledger/internal/resources"
)

// Networks allowed to set X-Forwarded-For and X-Real-IP.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
}

func isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// extractClientIP returns the address of the client. Forwarding headers are
// honoured only when the direct peer is a trusted proxy; X-Forwarded-For is
// read right to left, skipping the proxy hops.
func extractClientIP(r *http.Request) string {
	direct, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		host := r.RemoteAddr
		if addr, perr := netip.ParseAddr(host); perr == nil {
			return addr.String()
		}
		return host
	}
	peer := direct.Addr().Unmap()
	if !isTrustedProxy(peer) {
		return peer.String()
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !isTrustedProxy(addr) {
				return addr.Unmap().String()
			}
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return peer.String()
}

// Reasons reported by suspiciousReason, used as the metric label.
const (
	reasonProbe      = "probe"
	reasonAgent      = "agent"
	reasonMethod     = "method"
	reasonLongURL    = "long_url"
	reasonForwarded  = "forwarded_chain"
	reasonBadEntity  = "bad_entity_id"
	maxURLLength     = 2048
	maxForwardedHops = 6
)

var probePatterns = []string{
	"../", "..\\", ".env", ".git", ".ssh", "wp-admin", "phpmyadmin",
	".php", "etc/passwd", "cmd.exe", "<script", "javascript:",
	"union select", "eval(",
}

var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab",
}

// suspiciousReason classifies a request, returning "" when nothing stands
// out. Entity pages are expected at /<entity>/<numeric id>/<action>.
func suspiciousReason(r *http.Request) string {
	if len(r.URL.String()) > maxURLLength {
		return reasonLongURL
	}
	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", http.MethodConnect:
		return reasonMethod
	}

	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, p := range probePatterns {
		if strings.Contains(target, p) {
			return reasonProbe
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range scannerAgents {
		if strings.Contains(agent, a) {
			return reasonAgent
		}
	}

	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") >= maxForwardedHops {
		return reasonForwarded
	}

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) == 3 {
		if _, known := resources.Lookup(segments[0]); known {
			if _, err := strconv.ParseInt(segments[1], 10, 64); err != nil {
				return reasonBadEntity
			}
		}
	}
	return ""
}
