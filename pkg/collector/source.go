package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/entrhq/promptlens/pkg/document"
	"github.com/entrhq/promptlens/pkg/types"
)

// maxPageBytes caps a downloaded HTML page.
const maxPageBytes = 10 << 20

// DocumentSource lists the candidates of an already parsed page.
type DocumentSource struct {
	Document *document.Document
}

// Candidates returns the document's image candidates.
func (s DocumentSource) Candidates(ctx context.Context) ([]types.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Document == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	return s.Document.ImageCandidates(), nil
}

// HTTPPageSource downloads a page over HTTP and parses its static HTML.
// Sizes set only by CSS or scripts are unknown to it; such images are probed
// after download.
type HTTPPageSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPPageSource creates a source for url. A nil client uses
// http.DefaultClient.
func NewHTTPPageSource(url string, client *http.Client) *HTTPPageSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPPageSource{URL: url, Client: client}
}

// Load downloads and parses the page.
func (s *HTTPPageSource) Load(ctx context.Context) (*document.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("page request failed with status %d", resp.StatusCode)
	}

	// Relative sources resolve against the final URL after redirects
	return document.Parse(io.LimitReader(resp.Body, maxPageBytes), resp.Request.URL.String())
}

// Candidates downloads the page and lists its images.
func (s *HTTPPageSource) Candidates(ctx context.Context) ([]types.Candidate, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.ImageCandidates(), nil
}

// PageText downloads the page and returns up to maxLength runes of its text.
func (s *HTTPPageSource) PageText(ctx context.Context, maxLength int) (string, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	text, _ := doc.Text(maxLength)
	return text, nil
}
