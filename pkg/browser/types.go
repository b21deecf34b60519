package browser

import "time"

// Cookie is a browser cookie in transport-neutral form. It is what the
// session store persists and replays; the Playwright session converts to
// and from the driver's own cookie representation.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"http_only"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"same_site"`
}

// Element is a handle to a single DOM element.
//
// Lookup methods return (nil, nil) when nothing matches; a non-nil error
// means the query itself failed (detached handle, bad selector). Callers
// in this codebase treat both the same way: the element is absent.
type Element interface {
	// Text returns the element's visible text content.
	Text() (string, error)

	// Visible reports whether the element is currently displayed.
	Visible() (bool, error)

	// Enabled reports whether the element accepts interaction.
	Enabled() (bool, error)

	// Attribute returns the named attribute's value, or "" if unset.
	Attribute(name string) (string, error)

	// Attributes returns every attribute present on the element.
	Attributes() (map[string]string, error)

	// Markup returns the element's serialized outer HTML.
	Markup() (string, error)

	// Query finds the first descendant matching the selector. Selectors
	// prefixed with "xpath=" are evaluated as XPath, which also permits
	// ancestor axes.
	Query(selector string) (Element, error)

	// QueryAll finds every descendant matching the selector.
	QueryAll(selector string) ([]Element, error)

	// Click clicks the element.
	Click() error

	// Fill clears the element and types the given value into it.
	Fill(value string) error
}

// Session is one controllable browser tab plus its surrounding context
// (cookies, sibling tabs). Implementations are not safe for concurrent
// use; the whole system runs a single sequential flow of control.
//
// A Session is always borrowed. Nothing in this module closes or disposes
// the underlying browser.
type Session interface {
	// URL returns the active tab's current location.
	URL() string

	// Navigate loads the given URL in the active tab.
	Navigate(url string) error

	// Reload reloads the active tab.
	Reload() error

	// Back navigates the active tab one step back in history.
	Back() error

	// WaitFor blocks until the selector matches an element in the DOM or
	// the timeout elapses, whichever comes first.
	WaitFor(selector string, timeout time.Duration) error

	// Query finds the first element matching the selector, or (nil, nil).
	Query(selector string) (Element, error)

	// QueryAll finds every element matching the selector.
	QueryAll(selector string) ([]Element, error)

	// Evaluate runs a JavaScript expression in the active tab and returns
	// its result.
	Evaluate(script string) (any, error)

	// Cookies returns all cookies visible to the session's context.
	Cookies() ([]Cookie, error)

	// AddCookie installs a single cookie into the session's context. The
	// browser may reject individual cookies (cross-site attribute
	// mismatches are routine); callers skip rejected cookies and move on.
	AddCookie(c Cookie) error

	// PageCount returns the number of open tabs in the context.
	PageCount() int

	// SwitchToNewest makes the most recently opened tab the active one.
	SwitchToNewest() error

	// CloseActive closes the active tab and switches back to the first
	// remaining tab. It is a no-op when only one tab is open.
	CloseActive() error

	// Content returns the active tab's full page HTML.
	Content() (string, error)

	// Screenshot captures the active tab to the given file path.
	Screenshot(path string) error
}
