package auth

import (
	"os"
	"path/filepath"
	"time"
)

// captureLoginPage saves the login page's HTML and a screenshot for
// selector troubleshooting. Best effort, and a no-op unless debug
// artifacts are enabled.
func (a *Authenticator) captureLoginPage() {
	if !a.cfg.Debug.Enabled {
		return
	}

	dir := filepath.Join(a.cfg.Debug.Dir, "login_pages")
	if err := os.MkdirAll(dir, 0750); err != nil {
		a.log.Warnf("could not create login capture directory: %v", err)
		return
	}

	stamp := time.Now().Format("20060102_150405")

	if html, err := a.session.Content(); err == nil {
		htmlPath := filepath.Join(dir, "login_page_"+stamp+".html")
		if err := os.WriteFile(htmlPath, []byte(html), 0644); err == nil {
			a.log.Infof("login page HTML saved: %s", htmlPath)
		}
	}

	shotPath := filepath.Join(dir, "login_page_"+stamp+".png")
	if err := a.session.Screenshot(shotPath); err == nil {
		a.log.Infof("login page screenshot saved: %s", shotPath)
	}
}
