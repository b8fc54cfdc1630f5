package checker

import (
	"net"
	"net/url"
	"strings"
)

// Host derives the host part of a target: the text after the last "//" up to
// the next "/". A port, when present, is kept.
//
//	https://example.com:8443/a -> example.com:8443
//	example.com/path           -> example.com
func Host(target string) string {
	rest := target
	if i := strings.LastIndex(rest, "//"); i >= 0 {
		rest = rest[i+2:]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// Hostname strips a port from host. IPv6 literals lose their brackets.
func Hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

// NormalizeHTTPTarget returns target as a request URL, assuming http:// when
// no scheme is present.
func NormalizeHTTPTarget(target string) string {
	target = strings.TrimSpace(target)
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") || (parsed.Host == "" && parsed.Opaque != "") {
		return "http://" + strings.TrimPrefix(target, "//")
	}
	return target
}
