package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	// DefaultViewportWidth and DefaultViewportHeight size new pages.
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// DefaultTimeout is the default operation timeout in milliseconds.
	DefaultTimeout = 30000

	// DefaultMaxSessions caps concurrently open sessions.
	DefaultMaxSessions = 3

	// DefaultWaitUntil waits for the load event so image sizes are known.
	DefaultWaitUntil = "load"
)

// Page is the subset of playwright.Page a Session drives.
type Page interface {
	Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error)
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
	URL() string
	Title() (string, error)
	Close(options ...playwright.PageCloseOptions) error
}

// Session is one rendered page with its browser resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance; nil for sessions built
	// around an existing page
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the current active page
	Page Page

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// CurrentURL is the URL of the current page
	CurrentURL string
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}
