package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightSession implements Session on top of a Playwright browser
// context. The active tab is tracked explicitly so that sub-platform hops
// that open new tabs can be followed and unwound.
type PlaywrightSession struct {
	context playwright.BrowserContext
	page    playwright.Page
}

// NewPlaywrightSession wraps an existing context and page. The caller
// retains ownership of both.
func NewPlaywrightSession(context playwright.BrowserContext, page playwright.Page) *PlaywrightSession {
	return &PlaywrightSession{context: context, page: page}
}

// URL returns the active tab's current location.
func (s *PlaywrightSession) URL() string {
	return s.page.URL()
}

// Navigate loads the given URL in the active tab.
func (s *PlaywrightSession) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Reload reloads the active tab.
func (s *PlaywrightSession) Reload() error {
	if _, err := s.page.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

// Back navigates the active tab one step back in history.
func (s *PlaywrightSession) Back() error {
	if _, err := s.page.GoBack(); err != nil {
		return fmt.Errorf("history navigation failed: %w", err)
	}
	return nil
}

// WaitFor blocks until the selector is attached or the timeout elapses.
func (s *PlaywrightSession) WaitFor(selector string, timeout time.Duration) error {
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait for %q failed: %w", selector, err)
	}
	return nil
}

// Query finds the first element matching the selector, or (nil, nil).
func (s *PlaywrightSession) Query(selector string) (Element, error) {
	handle, err := s.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}
	return &playwrightElement{handle: handle}, nil
}

// QueryAll finds every element matching the selector.
func (s *PlaywrightSession) QueryAll(selector string) ([]Element, error) {
	handles, err := s.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(handles))
	for _, handle := range handles {
		elements = append(elements, &playwrightElement{handle: handle})
	}
	return elements, nil
}

// Evaluate runs a JavaScript expression in the active tab.
func (s *PlaywrightSession) Evaluate(script string) (any, error) {
	return s.page.Evaluate(script)
}

// Cookies returns all cookies visible to the session's context.
func (s *PlaywrightSession) Cookies() ([]Cookie, error) {
	raw, err := s.context.Cookies()
	if err != nil {
		return nil, fmt.Errorf("reading cookies failed: %w", err)
	}
	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookie := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			cookie.SameSite = string(*c.SameSite)
		}
		cookies = append(cookies, cookie)
	}
	return cookies, nil
}

// AddCookie installs a single cookie into the session's context.
func (s *PlaywrightSession) AddCookie(c Cookie) error {
	optional := playwright.OptionalCookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   playwright.String(c.Domain),
		Path:     playwright.String(c.Path),
		HttpOnly: playwright.Bool(c.HTTPOnly),
		Secure:   playwright.Bool(c.Secure),
	}
	if c.Expires > 0 {
		optional.Expires = playwright.Float(c.Expires)
	}
	if attr := sameSiteAttribute(c.SameSite); attr != nil {
		optional.SameSite = attr
	}
	return s.context.AddCookies([]playwright.OptionalCookie{optional})
}

func sameSiteAttribute(value string) *playwright.SameSiteAttribute {
	switch value {
	case "Strict":
		return playwright.SameSiteAttributeStrict
	case "Lax":
		return playwright.SameSiteAttributeLax
	case "None":
		return playwright.SameSiteAttributeNone
	}
	return nil
}

// PageCount returns the number of open tabs in the context.
func (s *PlaywrightSession) PageCount() int {
	return len(s.context.Pages())
}

// SwitchToNewest makes the most recently opened tab the active one.
func (s *PlaywrightSession) SwitchToNewest() error {
	pages := s.context.Pages()
	if len(pages) == 0 {
		return fmt.Errorf("context has no open pages")
	}
	s.page = pages[len(pages)-1]
	return nil
}

// CloseActive closes the active tab and switches back to the first
// remaining tab. With a single tab open it does nothing: the borrowed
// session must survive this call.
func (s *PlaywrightSession) CloseActive() error {
	pages := s.context.Pages()
	if len(pages) <= 1 {
		return nil
	}
	if err := s.page.Close(); err != nil {
		return fmt.Errorf("closing tab failed: %w", err)
	}
	remaining := s.context.Pages()
	if len(remaining) == 0 {
		return fmt.Errorf("context has no open pages after close")
	}
	s.page = remaining[0]
	return nil
}

// Content returns the active tab's full page HTML.
func (s *PlaywrightSession) Content() (string, error) {
	return s.page.Content()
}

// Screenshot captures the active tab to the given file path.
func (s *PlaywrightSession) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	return err
}

// playwrightElement adapts a Playwright element handle to Element.
type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) Text() (string, error) {
	return e.handle.TextContent()
}

func (e *playwrightElement) Visible() (bool, error) {
	return e.handle.IsVisible()
}

func (e *playwrightElement) Enabled() (bool, error) {
	return e.handle.IsEnabled()
}

func (e *playwrightElement) Attribute(name string) (string, error) {
	return e.handle.GetAttribute(name)
}

func (e *playwrightElement) Attributes() (map[string]string, error) {
	result, err := e.handle.Evaluate(`el => {
		const attrs = {};
		for (const attr of el.attributes) {
			attrs[attr.name] = attr.value;
		}
		return attrs;
	}`)
	if err != nil {
		return nil, err
	}
	raw, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected attribute payload %T", result)
	}
	attrs := make(map[string]string, len(raw))
	for name, value := range raw {
		if s, ok := value.(string); ok {
			attrs[name] = s
		}
	}
	return attrs, nil
}

func (e *playwrightElement) Markup() (string, error) {
	result, err := e.handle.Evaluate(`el => el.outerHTML`)
	if err != nil {
		return "", err
	}
	markup, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected markup payload %T", result)
	}
	return markup, nil
}

func (e *playwrightElement) Query(selector string) (Element, error) {
	handle, err := e.handle.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}
	return &playwrightElement{handle: handle}, nil
}

func (e *playwrightElement) QueryAll(selector string) ([]Element, error) {
	handles, err := e.handle.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(handles))
	for _, handle := range handles {
		elements = append(elements, &playwrightElement{handle: handle})
	}
	return elements, nil
}

func (e *playwrightElement) Click() error {
	return e.handle.Click()
}

func (e *playwrightElement) Fill(value string) error {
	return e.handle.Fill(value)
}
