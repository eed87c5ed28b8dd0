package source

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jacoelho/rowmap/internal/ratelimit"
	"github.com/jacoelho/rowmap/internal/value"
)

// DefaultMaxBodyBytes bounds a fetched document when no limit is configured.
const DefaultMaxBodyBytes int64 = 10 << 20

// NewHTTPClient creates a tuned HTTP client for document fetches.
func NewHTTPClient(tlsConfig *tls.Config, timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		DialContext:            dialer.DialContext,
		TLSClientConfig:        tlsConfig,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  15 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		IdleConnTimeout:        60 * time.Second,
		MaxIdleConns:           100,
		MaxIdleConnsPerHost:    10,
		MaxConnsPerHost:        20,
		MaxResponseHeaderBytes: 1 << 20,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// HTTPFetcher GETs a URL and decodes the JSON body.
type HTTPFetcher struct {
	client       *http.Client
	limiter      *ratelimit.Keyed
	maxBodyBytes int64
	userAgent    string
}

// NewHTTPFetcher throttles requests per upstream host with limiter, which may be nil.
func NewHTTPFetcher(client *http.Client, limiter *ratelimit.Keyed, maxBodyBytes int64) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if limiter == nil {
		limiter = ratelimit.NewKeyed(0, 0)
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &HTTPFetcher{
		client:       client,
		limiter:      limiter,
		maxBodyBytes: maxBodyBytes,
		userAgent:    "rowmap",
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (any, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: url scheme must be http or https, got %q", ErrInvalidSource, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: url %q has no host", ErrInvalidSource, rawURL)
	}

	if err := f.limiter.Wait(ctx, u.Host); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s returned %d", ErrNotFound, u.Redacted(), resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, u.Redacted(), resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetch, u.Redacted(), resp.StatusCode)
	}

	return readDocument(resp.Body, f.maxBodyBytes)
}

func readDocument(r io.Reader, limit int64) (any, error) {
	body, err := readBody(r, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return decodeDocument(body, limit)
}

func readBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit+1))
}

func decodeDocument(body []byte, limit int64) (any, error) {
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrFetch, limit)
	}

	doc, err := value.DecodeBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}
