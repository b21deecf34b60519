package auth

import "strings"

// indicator is one liveness check. Indicators are evaluated in priority
// order, strongest signal first, and the first match wins. A DOM lookup
// fault inside an indicator reads as "absent", never as a probe failure.
type indicator struct {
	name   string
	detect func() bool
}

// Probe heuristically determines whether the current page belongs to an
// authenticated session. Being on a login URL disqualifies everything
// else; otherwise the positive indicators are tried strongest-first, with
// "no login form present" as the weak fallback.
func (a *Authenticator) Probe() bool {
	url := strings.ToLower(a.session.URL())
	if strings.Contains(url, "login") || strings.Contains(url, "signin") {
		a.log.Debugf("on login page, not authenticated")
		return false
	}

	for _, ind := range a.indicators() {
		if ind.detect() {
			a.log.Debugf("authenticated: %s", ind.name)
			return true
		}
	}

	a.log.Debugf("no authentication indicators found")
	return false
}

func (a *Authenticator) indicators() []indicator {
	return []indicator{
		{"profile photo present", a.detectProfilePhoto},
		{"greeting present", a.detectGreeting},
		{"points badge present", a.detectPoints},
		{"notification badge present", a.detectNotification},
		{"login form absent", a.detectNoLoginForm},
	}
}

// detectProfilePhoto looks for the user's profile image, the strongest
// indicator the portal exposes.
func (a *Authenticator) detectProfilePhoto() bool {
	return a.findVisible(a.cfg.Auth.Selectors.ProfilePhoto, nil) != nil
}

// detectGreeting looks for the greeting banner containing the configured
// marker text.
func (a *Authenticator) detectGreeting() bool {
	element := a.findVisible(a.cfg.Auth.Selectors.Greeting, nil)
	if element == nil {
		return false
	}
	text, err := element.Text()
	return err == nil && strings.Contains(text, a.cfg.Auth.Selectors.GreetingMarker)
}

// detectPoints looks for a visible, purely numeric points badge.
func (a *Authenticator) detectPoints() bool {
	element := a.findVisible(a.cfg.Auth.Selectors.PointsBadge, nil)
	if element == nil {
		return false
	}
	text, err := element.Text()
	return err == nil && isDigits(strings.TrimSpace(text))
}

// detectNotification looks for the notification badge by its fill color.
// Presence alone counts; the badge is rendered invisible-by-geometry in
// some layouts.
func (a *Authenticator) detectNotification() bool {
	element, err := a.session.Query(a.cfg.Auth.Selectors.NotificationBadge)
	return err == nil && element != nil
}

// detectNoLoginForm is the weak fallback: not on a login URL and no login
// form anywhere in the page.
func (a *Authenticator) detectNoLoginForm() bool {
	element, err := a.session.Query(a.cfg.Auth.Selectors.LoginForm.Form)
	if err != nil {
		return false
	}
	return element == nil
}
