package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
)

const defaultTraceTimeout = 10 * time.Second

// Hop is one entry of a redirect trace: either a response head or a message
// (the redirect-limit warning or a request failure).
type Hop struct {
	ProtoMajor int
	ProtoMinor int
	StatusCode int
	Reason     string
	Headers    *OrderedHeaders
	Message    string
}

// String renders the status line followed by one "name:value" line per header.
func (h Hop) String() string {
	if h.Message != "" {
		return h.Message
	}
	return fmt.Sprintf("HTTP/%d.%d %d %s\n", h.ProtoMajor, h.ProtoMinor, h.StatusCode, h.Reason) + h.Headers.String()
}

// FormatTrace joins hops with a blank line.
func FormatTrace(hops []Hop) string {
	parts := make([]string, len(hops))
	for i, hop := range hops {
		parts[i] = hop.String()
	}
	return strings.Join(parts, "\n\n")
}

// RedirectTracer follows redirects by hand with HEAD requests, recording each
// response head. Certificate verification is disabled.
type RedirectTracer struct {
	MaxHops int
	Timeout time.Duration // per request
}

// NewRedirectTracer creates a tracer recording at most maxHops hops.
func NewRedirectTracer(maxHops int, timeout time.Duration) *RedirectTracer {
	if maxHops <= 0 {
		maxHops = consts.DefaultMaxRedirects
	}
	if timeout <= 0 {
		timeout = defaultTraceTimeout
	}
	return &RedirectTracer{MaxHops: maxHops, Timeout: timeout}
}

// Trace returns the formatted redirect chain of target.
func (t *RedirectTracer) Trace(ctx context.Context, target string) string {
	return FormatTrace(t.Hops(ctx, target))
}

// Hops records the redirect chain of target. A redirect is a 3xx response with
// a Location header; its Location is resolved against the current URL. When
// MaxHops redirects have been followed a warning hop ends the trace, and a
// network failure ends it with a "Request failed" hop.
func (t *RedirectTracer) Hops(ctx context.Context, target string) []Hop {
	maxHops := t.MaxHops
	if maxHops <= 0 {
		maxHops = consts.DefaultMaxRedirects
	}

	sess := newWireSession(t.Timeout)
	defer sess.close()

	current := NormalizeHTTPTarget(target)
	hops := make([]Hop, 0, 2)
	for count := 0; count < maxHops; {
		hop, next, err := sess.head(ctx, current)
		if err != nil {
			return append(hops, Hop{Message: fmt.Sprintf("Request failed: %v", err)})
		}
		hops = append(hops, hop)
		if next == "" {
			return hops
		}
		current = next
		count++
	}
	return append(hops, Hop{Message: fmt.Sprintf("Warning: Reached maximum number of redirects (%d).", maxHops)})
}

// wireSession is an HTTP/1.1 client whose connections record the bytes they
// read. Keep-alives are off so every request gets its own connection, and no
// proxy is used so the recorded bytes are the target's own response.
type wireSession struct {
	client    *http.Client
	transport *http.Transport

	mu   sync.Mutex
	last *recordingConn
}

func newWireSession(timeout time.Duration) *wireSession {
	if timeout <= 0 {
		timeout = defaultTraceTimeout
	}
	s := &wireSession{}
	dialer := &net.Dialer{Timeout: timeout}

	s.transport = &http.Transport{
		DisableKeepAlives: true,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return s.record(conn), nil
		},
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			tlsConn := tls.Client(conn, &tls.Config{
				InsecureSkipVerify: true,
				ServerName:         Hostname(addr),
				NextProtos:         []string{"http/1.1"},
			})
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return s.record(tlsConn), nil
		},
	}
	s.client = &http.Client{
		Timeout:   timeout,
		Transport: s.transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return s
}

func (s *wireSession) record(conn net.Conn) net.Conn {
	rc := &recordingConn{Conn: conn}
	s.mu.Lock()
	s.last = rc
	s.mu.Unlock()
	return rc
}

func (s *wireSession) lastConn() *recordingConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *wireSession) close() {
	s.transport.CloseIdleConnections()
}

// head issues one HEAD request and returns the recorded hop and, for
// redirects, the absolute URL to follow.
func (s *wireSession) head(ctx context.Context, target string) (Hop, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return Hop{}, "", err
	}
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()

	resp, err := s.client.Do(req)
	if err != nil {
		return Hop{}, "", err
	}
	resp.Body.Close()

	var headers *OrderedHeaders
	if conn := s.lastConn(); conn != nil {
		if parsed, ok := parseResponseHead(conn.recorded(), resp.StatusCode); ok {
			headers = parsed
		}
	}
	if headers == nil {
		headers = headersFromMap(resp.Header)
	}

	hop := Hop{
		ProtoMajor: resp.ProtoMajor,
		ProtoMinor: resp.ProtoMinor,
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
		Headers:    headers,
	}

	if resp.StatusCode < 300 || resp.StatusCode > 399 {
		return hop, "", nil
	}
	loc, err := resp.Location()
	if err != nil {
		return hop, "", nil
	}
	return hop, loc.String(), nil
}

func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	return strings.TrimSpace(reason)
}
