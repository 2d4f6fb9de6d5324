package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/entrhq/promptlens/pkg/types"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	url      string
	title    string
	gotoURLs []string
	gotoOpts []playwright.PageGotoOptions
	gotoErr  error
	results  map[string]interface{}
	evalErr  error
	closed   bool
}

func (f *fakePage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	if f.gotoErr != nil {
		return nil, f.gotoErr
	}
	f.gotoURLs = append(f.gotoURLs, url)
	f.gotoOpts = append(f.gotoOpts, options...)
	f.url = url
	return nil, nil
}

func (f *fakePage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return f.results[expression], nil
}

func (f *fakePage) URL() string            { return f.url }
func (f *fakePage) Title() (string, error) { return f.title, nil }
func (f *fakePage) Close(options ...playwright.PageCloseOptions) error {
	f.closed = true
	return nil
}

func TestSession_ImageCandidates(t *testing.T) {
	page := &fakePage{
		url: "https://example.test/",
		results: map[string]interface{}{
			imageScript: []interface{}{
				map[string]interface{}{"src": "https://example.test/a.png", "width": 640, "height": float64(480)},
				map[string]interface{}{"src": "", "width": 100, "height": 100},
				map[string]interface{}{"src": "https://example.test/b.png", "width": 12.7, "height": nil},
				"not an object",
			},
		},
	}

	candidates, err := NewSession("test", page).ImageCandidates()
	require.NoError(t, err)
	assert.Equal(t, []types.Candidate{
		{Src: "https://example.test/a.png", Width: 640, Height: 480},
		{Src: "https://example.test/b.png", Width: 12},
	}, candidates)
}

func TestSession_ImageCandidatesUnexpectedResult(t *testing.T) {
	page := &fakePage{results: map[string]interface{}{imageScript: "oops"}}

	_, err := NewSession("test", page).ImageCandidates()
	assert.Error(t, err)
}

func TestSession_Text(t *testing.T) {
	page := &fakePage{results: map[string]interface{}{textScript: "  Hello\n\n  rendered   world  "}}
	session := NewSession("test", page)

	text, truncated, err := session.Text(0)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, "Hello rendered world", text)

	text, truncated, err = session.Text(5)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, "Hello", text)
}

func TestSession_NavigateDefaultsToLoad(t *testing.T) {
	page := &fakePage{}
	session := NewSession("test", page)

	require.NoError(t, session.Navigate("https://example.test/gallery", NavigateOptions{Timeout: 5000}))
	assert.Equal(t, "https://example.test/gallery", session.CurrentURL)
	require.Len(t, page.gotoOpts, 1)
	require.NotNil(t, page.gotoOpts[0].WaitUntil)
	assert.Equal(t, playwright.WaitUntilState(DefaultWaitUntil), *page.gotoOpts[0].WaitUntil)
	assert.Equal(t, float64(5000), *page.gotoOpts[0].Timeout)
}

func TestPageSource(t *testing.T) {
	page := &fakePage{results: map[string]interface{}{
		imageScript: []interface{}{map[string]interface{}{"src": "https://example.test/a.png", "width": 80, "height": 80}},
		textScript:  "Page text",
	}}
	source := NewPageSource(NewSession("test", page), "https://example.test/", NavigateOptions{})

	candidates, err := source.Candidates(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 1)

	text, err := source.PageText(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "Page text", text)
	assert.Equal(t, []string{"https://example.test/", "https://example.test/"}, page.gotoURLs)
}

func TestPageSource_NavigationError(t *testing.T) {
	page := &fakePage{gotoErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	source := NewPageSource(NewSession("test", page), "https://nowhere.test/", NavigateOptions{})

	_, err := source.Candidates(context.Background())
	assert.ErrorContains(t, err, "navigation failed")
}

func TestPageSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := NewPageSource(NewSession("test", &fakePage{}), "https://example.test/", NavigateOptions{})
	_, err := source.Candidates(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_Close(t *testing.T) {
	page := &fakePage{}
	require.NoError(t, NewSession("test", page).Close())
	assert.True(t, page.closed)
}

func TestSessionManager_RequiresInitialize(t *testing.T) {
	manager := NewSessionManager(nil)
	_, err := manager.StartSession("scrape", SessionOptions{Headless: true})
	assert.ErrorContains(t, err, "not initialized")
	assert.Equal(t, 0, manager.SessionCount())
	assert.NoError(t, manager.Shutdown())
}
