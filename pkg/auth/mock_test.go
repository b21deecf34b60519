package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/ehubscan/pkg/browser"
)

// fakeElement implements browser.Element for tests.
type fakeElement struct {
	text    string
	textErr error
	visible bool
	enabled bool
	attrs   map[string]string
	onClick func()
	filled  []string
}

func (e *fakeElement) Text() (string, error) {
	return e.text, e.textErr
}

func (e *fakeElement) Visible() (bool, error) { return e.visible, nil }
func (e *fakeElement) Enabled() (bool, error) { return e.enabled, nil }

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Attributes() (map[string]string, error) {
	return e.attrs, nil
}

func (e *fakeElement) Markup() (string, error) { return "", nil }

func (e *fakeElement) Query(selector string) (browser.Element, error) {
	return nil, nil
}

func (e *fakeElement) QueryAll(selector string) ([]browser.Element, error) {
	return nil, nil
}

func (e *fakeElement) Click() error {
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) Fill(value string) error {
	e.filled = append(e.filled, value)
	return nil
}

// fakeSession implements browser.Session over a selector-keyed element
// map.
type fakeSession struct {
	url      string
	elements map[string][]browser.Element

	cookies     []browser.Cookie
	rejectNames map[string]bool
	added       []browser.Cookie

	navigated []string
	reloads   int
	backs     int
	content   string
}

func newFakeSession(url string) *fakeSession {
	return &fakeSession{
		url:      url,
		elements: make(map[string][]browser.Element),
	}
}

func (s *fakeSession) addElement(selector string, element *fakeElement) {
	s.elements[selector] = append(s.elements[selector], element)
}

func (s *fakeSession) URL() string { return s.url }

func (s *fakeSession) Navigate(url string) error {
	s.navigated = append(s.navigated, url)
	s.url = url
	return nil
}

func (s *fakeSession) Reload() error {
	s.reloads++
	return nil
}

func (s *fakeSession) Back() error {
	s.backs++
	return nil
}

func (s *fakeSession) WaitFor(selector string, timeout time.Duration) error {
	if len(s.elements[selector]) > 0 {
		return nil
	}
	return fmt.Errorf("timed out waiting for %q", selector)
}

func (s *fakeSession) Query(selector string) (browser.Element, error) {
	if matches := s.elements[selector]; len(matches) > 0 {
		return matches[0], nil
	}
	return nil, nil
}

func (s *fakeSession) QueryAll(selector string) ([]browser.Element, error) {
	return s.elements[selector], nil
}

func (s *fakeSession) Evaluate(script string) (any, error) {
	return nil, nil
}

func (s *fakeSession) Cookies() ([]browser.Cookie, error) {
	return s.cookies, nil
}

func (s *fakeSession) AddCookie(c browser.Cookie) error {
	if s.rejectNames[c.Name] {
		return fmt.Errorf("cookie %q rejected: SameSite mismatch", c.Name)
	}
	s.added = append(s.added, c)
	return nil
}

func (s *fakeSession) PageCount() int { return 1 }

func (s *fakeSession) SwitchToNewest() error { return nil }

func (s *fakeSession) CloseActive() error { return nil }

func (s *fakeSession) Content() (string, error) { return s.content, nil }

func (s *fakeSession) Screenshot(path string) error { return nil }

// hasNavigated reports whether any navigation targeted a URL containing
// the given fragment.
func (s *fakeSession) hasNavigated(fragment string) bool {
	for _, url := range s.navigated {
		if strings.Contains(url, fragment) {
			return true
		}
	}
	return false
}
