package courses

import (
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/ehubscan/pkg/browser"
)

// fakeElement implements browser.Element over a selector-keyed child map.
type fakeElement struct {
	text     string
	textErr  error
	visible  bool
	attrs    map[string]string
	markup   string
	children map[string][]browser.Element
	onClick  func()
}

func newFakeElement(text string) *fakeElement {
	return &fakeElement{
		text:     text,
		visible:  true,
		attrs:    map[string]string{},
		children: make(map[string][]browser.Element),
	}
}

func (e *fakeElement) addChild(selector string, child *fakeElement) *fakeElement {
	e.children[selector] = append(e.children[selector], child)
	return e
}

func (e *fakeElement) Text() (string, error)   { return e.text, e.textErr }
func (e *fakeElement) Visible() (bool, error)  { return e.visible, nil }
func (e *fakeElement) Enabled() (bool, error)  { return true, nil }
func (e *fakeElement) Markup() (string, error) { return e.markup, nil }
func (e *fakeElement) Fill(value string) error { return nil }

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Attributes() (map[string]string, error) {
	return e.attrs, nil
}

func (e *fakeElement) Query(selector string) (browser.Element, error) {
	if matches := e.children[selector]; len(matches) > 0 {
		return matches[0], nil
	}
	return nil, nil
}

func (e *fakeElement) QueryAll(selector string) ([]browser.Element, error) {
	return e.children[selector], nil
}

func (e *fakeElement) Click() error {
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

// fakeSession implements browser.Session for discovery tests.
type fakeSession struct {
	url      string
	elements map[string][]browser.Element

	navigated  []string
	evaluated  []string
	onEvaluate func(script string)
	pageCount  int
	switches   int
	closes     int
	content    string
}

func newFakeSession(url string) *fakeSession {
	return &fakeSession{
		url:       url,
		elements:  make(map[string][]browser.Element),
		pageCount: 1,
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

func (s *fakeSession) Reload() error { return nil }
func (s *fakeSession) Back() error   { return nil }

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
	s.evaluated = append(s.evaluated, script)
	if s.onEvaluate != nil {
		s.onEvaluate(script)
	}
	return nil, nil
}

func (s *fakeSession) Cookies() ([]browser.Cookie, error) { return nil, nil }
func (s *fakeSession) AddCookie(c browser.Cookie) error   { return nil }

func (s *fakeSession) PageCount() int { return s.pageCount }

func (s *fakeSession) SwitchToNewest() error {
	s.switches++
	return nil
}

func (s *fakeSession) CloseActive() error {
	s.closes++
	if s.pageCount > 1 {
		s.pageCount--
	}
	return nil
}

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
