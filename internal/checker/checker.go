package checker

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// ResolveError is recorded when a host has no usable IPv4 address.
const ResolveError = "Error"

// HostResolver maps a host to its first IPv4 address, or ResolveError.
type HostResolver interface {
	Resolve(ctx context.Context, host string) string
}

// CertChecker reports "ok" or a diagnostic describing the host's certificate chain.
type CertChecker interface {
	Validate(ctx context.Context, host string) string
}

// Tracer renders the redirect chain of a URL.
type Tracer interface {
	Trace(ctx context.Context, target string) string
}

// Fetcher performs the final content request for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, target string) Response
}

// Response is the outcome of a content fetch. Failures carry a zero Code and
// ContentLength and an "Error: ..." Content.
type Response struct {
	Code          int
	ContentLength int
	Content       string
	// Truncated reports that the body exceeded the read cap and was cut.
	Truncated     bool
}

// NewLimiter returns a token bucket releasing one event per interval with a
// burst of one. A non-positive interval disables pacing.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
