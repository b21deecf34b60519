// Package auth manages the authentication lifecycle against the eHub
// portal: restoring a persisted session, validating it live, falling back
// to an interactive credential login, and persisting the outcome.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/ehubscan/pkg/browser"
	"github.com/entrhq/ehubscan/pkg/config"
	"github.com/entrhq/ehubscan/pkg/logging"
)

// ErrMissingCredentials is returned when an identity or password is
// absent. This is a startup precondition, distinct from a login that the
// portal rejected.
var ErrMissingCredentials = errors.New("auth: identity and password must be provided")

// settleAfterNavigate is the fixed pause after loading the login page,
// before the form is inspected.
const settleAfterNavigate = 2 * time.Second

// Authenticator drives the login state machine for a single identity. It
// borrows the browsing session; it never closes it.
type Authenticator struct {
	session  browser.Session
	store    *Store
	cfg      *config.Config
	log      *logging.Logger
	identity string
	password string

	sleep func(time.Duration)
}

// NewAuthenticator validates credentials and builds an authenticator.
func NewAuthenticator(session browser.Session, store *Store, cfg *config.Config, log *logging.Logger, identity, password string) (*Authenticator, error) {
	if identity == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return &Authenticator{
		session:  session,
		store:    store,
		cfg:      cfg,
		log:      log,
		identity: identity,
		password: password,
		sleep:    time.Sleep,
	}, nil
}

// Identity returns the identity this authenticator operates on.
func (a *Authenticator) Identity() string {
	return a.identity
}

// EnsureLoggedIn runs the full state machine: try to restore a stored
// session, validate it live, and fall back to a fresh credential login.
// It always returns a typed Result; browsing faults never escape.
func (a *Authenticator) EnsureLoggedIn() Result {
	a.log.Infof("starting authentication for %s", a.identity)

	if record, ok := a.store.Load(a.session, a.identity); ok {
		a.log.Infof("session loaded for %s (created %s)", a.identity, record.CreatedAt.Format(time.RFC3339))

		if a.Probe() {
			return Result{
				Status:     StatusSessionRestored,
				Message:    fmt.Sprintf("session restored for %s", a.identity),
				Identity:   a.identity,
				SessionDir: a.store.IdentityDir(a.identity),
			}
		}

		a.log.Warnf("restored session for %s failed validation, clearing", a.identity)
		a.store.Invalidate(a.identity)
	}

	a.log.Infof("no valid session for %s, performing login", a.identity)
	return a.performLogin()
}

// performLogin executes a fresh credential login and persists the session
// on success.
func (a *Authenticator) performLogin() Result {
	loginURL := a.cfg.Auth.URLs.Login
	a.log.Infof("navigating to %s", loginURL)
	if err := a.session.Navigate(loginURL); err != nil {
		return a.loginFailed("could not reach login page: %v", err)
	}
	a.sleep(settleAfterNavigate)

	a.captureLoginPage()

	if !a.waitForLoginForm() {
		return a.loginFailed("login form not found")
	}
	if err := a.fillCredentials(); err != nil {
		return a.loginFailed("could not fill login form: %v", err)
	}
	if err := a.submitForm(); err != nil {
		return a.loginFailed("could not submit login form: %v", err)
	}

	a.sleep(a.cfg.Auth.Timeouts.PostLoginWait.Std())

	if !a.Probe() {
		return a.loginFailed("still not authenticated after login")
	}

	if _, err := a.store.Save(a.session, a.identity); err != nil {
		return a.loginFailed("login succeeded but session could not be persisted: %v", err)
	}

	a.log.Infof("login successful for %s", a.identity)
	return Result{
		Status:     StatusAuthenticated,
		Message:    fmt.Sprintf("login successful for %s", a.identity),
		Identity:   a.identity,
		SessionDir: a.store.IdentityDir(a.identity),
	}
}

func (a *Authenticator) loginFailed(format string, args ...any) Result {
	message := fmt.Sprintf(format, args...)
	a.log.Errorf("login failed for %s: %s", a.identity, message)
	return Result{Status: StatusLoginFailed, Message: message}
}

// waitForLoginForm waits for the login form, then for each fallback
// indicator, within the configured element wait. All indicators timing
// out means the form never appeared.
func (a *Authenticator) waitForLoginForm() bool {
	wait := a.cfg.Auth.Timeouts.ElementWait.Std()

	form := a.cfg.Auth.Selectors.LoginForm.Form
	if err := a.session.WaitFor(form, wait); err == nil {
		a.log.Debugf("login form found with selector %q", form)
		return true
	}

	for _, selector := range a.cfg.Auth.Selectors.LoginPageIndicators {
		if err := a.session.WaitFor(selector, wait); err == nil {
			a.log.Debugf("login form indicator found: %q", selector)
			return true
		}
	}
	return false
}

// fillCredentials locates the email and password fields, trying the
// primary locator then each fallback, and fills them. A field that cannot
// be located at all is fatal to the attempt.
func (a *Authenticator) fillCredentials() error {
	form := a.cfg.Auth.Selectors.LoginForm

	email := a.findVisible(form.Email, form.EmailFallbacks)
	if email == nil {
		return fmt.Errorf("email field not found")
	}
	if err := email.Fill(a.identity); err != nil {
		return fmt.Errorf("failed to fill email field: %w", err)
	}
	a.log.Debugf("email field filled")

	password := a.findVisible(form.Password, form.PasswordFallbacks)
	if password == nil {
		return fmt.Errorf("password field not found")
	}
	if err := password.Fill(a.password); err != nil {
		return fmt.Errorf("failed to fill password field: %w", err)
	}
	a.log.Debugf("password field filled")

	return nil
}

// submitForm locates the submit control and clicks it. A missing or
// disabled control fails the attempt.
func (a *Authenticator) submitForm() error {
	button := a.findVisible(a.cfg.Auth.Selectors.LoginForm.Submit, nil)
	if button == nil {
		button = a.findVisible("xpath=//button[contains(text(), 'Sign in')]", nil)
	}
	if button == nil {
		return fmt.Errorf("submit button not found")
	}

	enabled, err := button.Enabled()
	if err != nil || !enabled {
		return fmt.Errorf("submit button is disabled")
	}
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to click submit button: %w", err)
	}
	a.log.Debugf("login form submitted")
	return nil
}

// findVisible resolves the first visible element matching the selector
// (comma-separated alternatives supported) or any of the fallbacks, in
// order. Lookup faults read as "no match".
func (a *Authenticator) findVisible(selector string, fallbacks []string) browser.Element {
	candidates := append([]string{selector}, fallbacks...)
	for _, candidate := range candidates {
		for _, single := range strings.Split(candidate, ",") {
			single = strings.TrimSpace(single)
			if single == "" {
				continue
			}
			element, err := a.session.Query(single)
			if err != nil || element == nil {
				continue
			}
			if visible, err := element.Visible(); err == nil && visible {
				return element
			}
		}
	}
	return nil
}

// Logout clears the identity's stored session and, best effort, clicks
// the portal's logout link.
func (a *Authenticator) Logout() bool {
	cleared := a.store.Invalidate(a.identity)

	if link := a.findVisible(a.cfg.Auth.Selectors.LogoutLink, nil); link != nil {
		if err := link.Click(); err != nil {
			a.log.Debugf("logout link click failed: %v", err)
		}
	}

	a.log.Infof("logged out %s", a.identity)
	return cleared
}

// UserInfo scrapes best-effort profile details from the logged-in page:
// display name, points balance, profile image URL. Absent indicators are
// simply omitted.
func (a *Authenticator) UserInfo() map[string]string {
	info := make(map[string]string)
	selectors := a.cfg.Auth.Selectors

	if greeting := a.findVisible(selectors.Greeting, nil); greeting != nil {
		if text, err := greeting.Text(); err == nil && strings.Contains(text, selectors.GreetingMarker) {
			name := strings.ReplaceAll(text, selectors.GreetingMarker, "")
			name = strings.TrimSpace(strings.ReplaceAll(name, "!", ""))
			if name != "" {
				info["name"] = name
			}
		}
	}

	if points := a.findVisible(selectors.PointsBadge, nil); points != nil {
		if text, err := points.Text(); err == nil && isDigits(strings.TrimSpace(text)) {
			info["points"] = strings.TrimSpace(text)
		}
	}

	if photo := a.findVisible(selectors.ProfilePhoto, nil); photo != nil {
		if src, err := photo.Attribute("src"); err == nil && src != "" {
			info["profile_image"] = src
		}
	}

	return info
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
