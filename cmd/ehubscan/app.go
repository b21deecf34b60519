package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/ehubscan/pkg/auth"
	"github.com/entrhq/ehubscan/pkg/browser"
	appconfig "github.com/entrhq/ehubscan/pkg/config"
	"github.com/entrhq/ehubscan/pkg/courses"
	"github.com/entrhq/ehubscan/pkg/logging"
)

// nowFunc is swappable in tests.
var nowFunc = time.Now

// app bundles the wired-up components a run needs. One app drives one
// browser session; nothing in it is safe for concurrent use.
type app struct {
	cfg           *appconfig.Config
	log           *logging.Logger
	session       browser.Session
	store         *auth.Store
	authenticator *auth.Authenticator
	finder        *courses.Finder

	output  string
	explore bool
}

// saveReport writes the discovery report, creating the output directory
// if needed.
func (a *app) saveReport(list *courses.CourseList) error {
	if dir := filepath.Dir(a.output); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return list.Save(a.output)
}

// summarize renders a human-readable digest of a discovery run.
func summarize(list *courses.CourseList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Discovered %d courses (%d accessible)\n",
		list.Len(), len(list.Accessible()))

	for _, platform := range []courses.Platform{
		courses.PlatformDashboard,
		courses.PlatformSavannah,
		courses.PlatformAthena,
	} {
		found := list.ByPlatform(platform)
		if len(found) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d):\n", platform, len(found))
		for _, course := range found {
			marker := " "
			if course.IsAccessible() {
				marker = "*"
			}
			fmt.Fprintf(&b, "  %s %-40s %s\n", marker, course.Name, course.Status)
		}
	}
	b.WriteString("\n* = accessible")
	return b.String()
}

// sessionLines renders the stored sessions for display.
func sessionLines(store *auth.Store) []string {
	records := store.List()
	if len(records) == 0 {
		return []string{"No stored sessions."}
	}
	lines := make([]string, 0, len(records))
	for _, record := range records {
		state := "valid"
		if record.Expired(nowFunc()) {
			state = "expired"
		}
		lines = append(lines, fmt.Sprintf("%s  id=%s  expires=%s  (%s)",
			record.Identity, record.DerivedID,
			record.ExpiresAt.Format("2006-01-02 15:04"), state))
	}
	return lines
}
