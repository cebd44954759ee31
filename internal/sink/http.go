package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-tangra/go-tangra-hwreport/internal/convert"
)

var contentTypes = map[string]string{
	"json": "application/json",
	"yaml": "application/yaml",
	"cbor": "application/cbor",
}

// HTTPSink POSTs reports to the URL given as path.
type HTTPSink struct {
	client      *http.Client
	contentType string
	header      http.Header
}

// HTTPOption configures an HTTPSink.
type HTTPOption func(*HTTPSink)

// WithClient replaces the default client, which times out after 30s.
func WithClient(c *http.Client) HTTPOption {
	return func(s *HTTPSink) { s.client = c }
}

// WithHeader adds a request header, e.g. an API secret.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSink) { s.header.Add(key, value) }
}

// NewHTTPSink returns a sink posting reports serialized in format.
func NewHTTPSink(format string, opts ...HTTPOption) *HTTPSink {
	ct, ok := contentTypes[format]
	if !ok {
		ct = "application/octet-stream"
	}
	s := &HTTPSink{
		client:      &http.Client{Timeout: 30 * time.Second},
		contentType: ct,
		header:      make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write sends data in one request. Client errors (4xx) are permanent;
// transport errors and server errors may be retried.
func (s *HTTPSink) Write(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &SinkError{Path: url, Err: Permanent(fmt.Errorf("build request: %w", err))}
	}
	for k, v := range s.header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", s.contentType)
	req.Header.Set("X-Report-Digest", "blake3="+convert.Digest(data))

	resp, err := s.client.Do(req)
	if err != nil {
		return &SinkError{Path: url, Err: fmt.Errorf("post report: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		err = Permanent(err)
	}
	return &SinkError{Path: url, Err: err}
}
