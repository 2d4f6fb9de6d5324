package browser

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/entrhq/promptlens/pkg/types"
	"github.com/playwright-community/playwright-go"
)

// imageScript lists <img> elements under <main> (or <body>) with their
// resolved source and intrinsic size. Images not yet loaded report 0x0.
const imageScript = `() => {
  const root = document.querySelector('main') || document.body;
  if (!root) return [];
  return Array.from(root.querySelectorAll('img'))
    .filter((img) => img.getAttribute('src'))
    .map((img) => ({ src: img.src, width: img.naturalWidth, height: img.naturalHeight }));
}`

const textScript = `() => document.body ? document.body.innerText : ''`

// NewSession wraps an already open page.
func NewSession(name string, page Page) *Session {
	return &Session{Name: name, Page: page, CurrentURL: page.URL()}
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	waitUntil := opts.WaitUntil
	if waitUntil == "" {
		waitUntil = DefaultWaitUntil
	}
	state := playwright.WaitUntilState(waitUntil)
	playwrightOpts.WaitUntil = &state

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// ImageCandidates evaluates the image listing script on the current page.
func (s *Session) ImageCandidates() ([]types.Candidate, error) {
	raw, err := s.Page.Evaluate(imageScript)
	if err != nil {
		return nil, fmt.Errorf("image listing failed: %w", err)
	}
	return decodeCandidates(raw)
}

// Text returns the rendered text of the page body, whitespace collapsed and cut
// to maxLength runes when maxLength > 0.
func (s *Session) Text(maxLength int) (string, bool, error) {
	raw, err := s.Page.Evaluate(textScript)
	if err != nil {
		return "", false, fmt.Errorf("text extraction failed: %w", err)
	}

	str, _ := raw.(string)
	text := strings.Join(strings.Fields(str), " ")
	if maxLength > 0 {
		runes := []rune(text)
		if len(runes) > maxLength {
			return string(runes[:maxLength]), true, nil
		}
	}
	return text, false, nil
}

// Title returns the page title.
func (s *Session) Title() (string, error) {
	return s.Page.Title()
}

// Close releases the page and, when owned, its context and browser.
func (s *Session) Close() error {
	var errs []error
	if s.Page != nil {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing session %s: %v", s.Name, errs)
	}
	return nil
}

// PageSource lists image candidates of a URL rendered in a session.
type PageSource struct {
	session *Session
	url     string
	opts    NavigateOptions
}

// NewPageSource returns a source that navigates session to url before each
// listing. An empty url lists the page as it is.
func NewPageSource(session *Session, url string, opts NavigateOptions) *PageSource {
	return &PageSource{session: session, url: url, opts: opts}
}

// Candidates navigates (if configured) and lists the page's images.
func (p *PageSource) Candidates(ctx context.Context) ([]types.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.url != "" {
		if err := p.session.Navigate(p.url, p.opts); err != nil {
			return nil, err
		}
	}
	return p.session.ImageCandidates()
}

// PageText navigates (if configured) and returns the rendered body text.
func (p *PageSource) PageText(ctx context.Context, maxLength int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.url != "" {
		if err := p.session.Navigate(p.url, p.opts); err != nil {
			return "", err
		}
	}
	text, _, err := p.session.Text(maxLength)
	return text, err
}

func decodeCandidates(raw interface{}) ([]types.Candidate, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected image listing result %T", raw)
	}

	candidates := make([]types.Candidate, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		src, _ := fields["src"].(string)
		if src == "" {
			continue
		}
		candidates = append(candidates, types.Candidate{
			Src:    src,
			Width:  toInt(fields["width"]),
			Height: toInt(fields["height"]),
		})
	}
	return candidates, nil
}

// toInt converts a JS number as delivered by playwright (int or float64).
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}
