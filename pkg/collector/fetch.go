package collector

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultFetchTimeout bounds a single image download.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxImageBytes caps a downloaded payload.
	DefaultMaxImageBytes = 20 << 20

	defaultUserAgent = "promptlens/1.0"
)

// Fetcher downloads remote image payloads.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// NewFetcher creates a fetcher. A nil client gets a client with
// DefaultFetchTimeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Fetcher{
		client:    client,
		maxBytes:  DefaultMaxImageBytes,
		userAgent: defaultUserAgent,
	}
}

// Fetch performs a GET and returns the payload with its media type. The type
// comes from Content-Type, or is sniffed from the payload when the header is
// missing or generic. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty response body")
	}

	return data, mediaType(resp.Header.Get("Content-Type"), data), nil
}

func mediaType(header string, data []byte) string {
	if header != "" {
		if parsed, _, err := mime.ParseMediaType(header); err == nil && parsed != "application/octet-stream" {
			return parsed
		}
	}
	sniffed, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return sniffed
}
