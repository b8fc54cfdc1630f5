package checker

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
)

// DefaultMaxBodyBytes bounds how much of a page is read.
const DefaultMaxBodyBytes = 10 << 20

// ContentFetcher performs the final GET of a target. Redirects are followed
// and certificate verification is disabled. Like the redirect tracer it
// connects directly; proxy environment variables are ignored.
type ContentFetcher struct {
	Timeout      time.Duration
	// MaxBodyBytes caps the bytes read from a body. Non-positive means
	// DefaultMaxBodyBytes.
	MaxBodyBytes int64
	client       *http.Client
}

// NewContentFetcher creates a fetcher. A non-positive timeout means ten seconds.
func NewContentFetcher(timeout time.Duration) *ContentFetcher {
	if timeout <= 0 {
		timeout = consts.DefaultFetchTimeout
	}
	return &ContentFetcher{
		Timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// Fetch returns the status, the character count of the decoded body and the
// normalized body. Any failure yields {0, 0, "Error: ..."}. Only the first
// MaxBodyBytes bytes are read; a longer body is cut there, Truncated is set
// and ContentLength counts the characters that were kept.
func (f *ContentFetcher) Fetch(ctx context.Context, target string) Response {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, NormalizeHTTPTarget(target), nil)
	if err != nil {
		return failedResponse(err)
	}

	client := f.client
	if client == nil {
		client = NewContentFetcher(f.Timeout).client
	}
	resp, err := client.Do(req)
	if err != nil {
		return failedResponse(err)
	}
	defer resp.Body.Close()

	limit := f.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return failedResponse(fmt.Errorf("read body: %w", err))
	}
	truncated := int64(len(raw)) > limit
	if truncated {
		raw = raw[:limit]
	}

	body := decodeBody(raw, resp.Header.Get("Content-Type"))
	return Response{
		Code:          resp.StatusCode,
		ContentLength: utf8.RuneCountInString(body),
		Content:       Normalize(body),
		Truncated:     truncated,
	}
}

// decodeBody converts raw to UTF-8 using the declared or sniffed charset,
// falling back to the raw bytes.
func decodeBody(raw []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func failedResponse(err error) Response {
	return Response{Content: fmt.Sprintf("Error: %v", err)}
}
