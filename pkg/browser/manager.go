package browser

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"
)

// Default browser settings for scraping runs.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultTimeout        = 30000.0 // milliseconds
)

// Manager owns the Playwright process and the one browser it launches.
// It exists for the command shell; core packages never see it, they only
// receive the Session it produces.
type Manager struct {
	playwright *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
}

// NewManager creates an unstarted manager.
func NewManager() *Manager {
	return &Manager{}
}

// Start installs and boots Playwright, launches Chromium and returns a
// session over a fresh context with a single page. Driver output is
// discarded so it does not interfere with the terminal UI.
func (m *Manager) Start(headless bool) (*PlaywrightSession, error) {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	m.playwright = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		m.Shutdown()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	m.browser = browser

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
	})
	if err != nil {
		m.Shutdown()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	m.context = context

	page, err := context.NewPage()
	if err != nil {
		m.Shutdown()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(DefaultTimeout)
	m.page = page

	return NewPlaywrightSession(context, page), nil
}

// Shutdown closes the browser and stops Playwright. Safe to call after a
// partial Start.
func (m *Manager) Shutdown() error {
	if m.context != nil {
		_ = m.context.Close()
		m.context = nil
	}
	if m.browser != nil {
		_ = m.browser.Close()
		m.browser = nil
	}
	if m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.playwright = nil
	}
	return nil
}
