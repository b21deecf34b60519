package courses

import (
	"regexp"
	"strings"

	"github.com/entrhq/ehubscan/pkg/browser"
)

var (
	startDateRe = regexp.MustCompile(`(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})`)
	durationRe  = regexp.MustCompile(`(?i)(\d+\s+(?:week|month|year)s?)`)

	// onclick handlers that carry the destination URL inline: any quoted
	// root path or absolute URL, then explicit location assignments.
	onclickRes = []*regexp.Regexp{
		regexp.MustCompile(`['"](/[^'"]*)['"]`),
		regexp.MustCompile(`['"](https?://[^'"]*)['"]`),
		regexp.MustCompile(`window\.location[= ]+['"]([^'"]*)['"]`),
		regexp.MustCompile(`location\.href[= ]+['"]([^'"]*)['"]`),
	}
)

// nameBlocklist filters span texts that belong to badges and buttons, not
// course titles, when falling back to a generic span scan.
var nameBlocklist = []string{"completed", "continue", "start", "weeks", "months"}

// parseCourse extracts one course record from a dashboard container.
// Returns nil when no name can be found; a container without a name is
// decoration, not a course.
func (f *Finder) parseCourse(container browser.Element) *Course {
	name := f.extractName(container)
	if name == "" {
		return nil
	}

	course := &Course{
		Name:     name,
		Platform: PlatformDashboard,
		CourseID: DeriveCourseID(name),
		Metadata: map[string]string{},
	}

	course.Description = f.extractDescription(container)
	course.StartDate, course.Duration = f.extractDates(container)
	course.ButtonText, course.ButtonLink = f.extractButtonInfo(container)
	course.Status = f.extractStatus(container, course.ButtonText)
	course.IconMarkup = f.extractIcon(container)
	return course
}

// extractName tries the two layout-specific title selectors, then falls
// back to scanning spans for something title-shaped.
func (f *Finder) extractName(container browser.Element) string {
	for _, selector := range []string{f.cfg.Courses.Name.Primary, f.cfg.Courses.Name.Secondary} {
		if text := elementText(container, selector); text != "" {
			return text
		}
	}

	spans, err := container.QueryAll("span")
	if err != nil {
		return ""
	}
	for _, span := range spans {
		text, err := span.Text()
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if len(text) <= 3 || len(text) >= 50 {
			continue
		}
		if containsBlocked(text) {
			continue
		}
		return text
	}
	return ""
}

func containsBlocked(text string) bool {
	lower := strings.ToLower(text)
	for _, blocked := range nameBlocklist {
		if strings.Contains(lower, blocked) {
			return true
		}
	}
	return false
}

func (f *Finder) extractDescription(container browser.Element) string {
	return elementText(container, f.cfg.Courses.Description)
}

// extractDates pulls the start date and duration out of the metadata
// strip, which renders them as free text alongside icons.
func (f *Finder) extractDates(container browser.Element) (startDate, duration string) {
	text := elementText(container, f.cfg.Courses.MetadataContainer)
	if text == "" {
		return "", ""
	}
	if m := startDateRe.FindStringSubmatch(text); m != nil {
		startDate = m[1]
	}
	if m := durationRe.FindStringSubmatch(text); m != nil {
		duration = m[1]
	}
	return startDate, duration
}

// extractStatus reads the completion badge first, then infers from the
// action button's label.
func (f *Finder) extractStatus(container browser.Element, buttonText string) string {
	badge := f.cfg.Courses.StatusBadge
	if text := elementText(container, badge.Selector); text != "" {
		if strings.Contains(text, badge.CompletedText) {
			return StatusCompleted
		}
	}

	switch {
	case strings.Contains(strings.ToLower(buttonText), "continue"):
		return StatusInProgress
	case strings.Contains(strings.ToLower(buttonText), "start"):
		return StatusNotStarted
	}
	return StatusUnknown
}

// extractButtonInfo returns the action button's label and destination.
// Buttons on this dashboard hide the destination in different places
// depending on the course: a link-ish attribute, an inline onclick
// handler, or a wrapping anchor.
func (f *Finder) extractButtonInfo(container browser.Element) (text, link string) {
	button, err := container.Query(f.cfg.Courses.Button)
	if err != nil || button == nil {
		return "", ""
	}

	if t, err := button.Text(); err == nil {
		text = strings.TrimSpace(t)
	}

	if link = linkFromAttributes(button); link != "" {
		return text, link
	}
	if link = linkFromOnclick(button); link != "" {
		return text, link
	}
	if link = linkFromAncestorAnchor(button); link != "" {
		return text, link
	}
	return text, ""
}

// linkFromAttributes scans the button's attributes for a destination:
// either an attribute whose name suggests a URL, or any attribute whose
// value is shaped like a URL or path.
func linkFromAttributes(button browser.Element) string {
	attrs, err := button.Attributes()
	if err != nil {
		return ""
	}
	for name, value := range attrs {
		if value == "" {
			continue
		}
		lower := strings.ToLower(name)
		keyed := strings.Contains(lower, "url") ||
			strings.Contains(lower, "href") ||
			strings.Contains(lower, "link") ||
			strings.Contains(lower, "path") ||
			strings.Contains(lower, "redirect")
		if keyed && len(value) > 5 {
			return value
		}
		if strings.HasPrefix(value, "http") || strings.HasPrefix(value, "/") ||
			strings.HasPrefix(value, "./") || strings.HasPrefix(value, "../") {
			return value
		}
	}
	return ""
}

func linkFromOnclick(button browser.Element) string {
	onclick, err := button.Attribute("onclick")
	if err != nil || onclick == "" {
		return ""
	}
	for _, re := range onclickRes {
		if m := re.FindStringSubmatch(onclick); m != nil {
			return m[1]
		}
	}
	return ""
}

func linkFromAncestorAnchor(button browser.Element) string {
	anchor, err := button.Query("xpath=ancestor::a")
	if err != nil || anchor == nil {
		return ""
	}
	href, err := anchor.Attribute("href")
	if err != nil {
		return ""
	}
	if href == "#" || strings.Contains(href, "javascript:") {
		return ""
	}
	return href
}

// extractIcon captures the course's first visible SVG icon as sanitized
// markup so reports can reproduce it.
func (f *Finder) extractIcon(container browser.Element) string {
	icons, err := container.QueryAll("svg")
	if err != nil {
		return ""
	}
	for _, icon := range icons {
		visible, err := icon.Visible()
		if err != nil || !visible {
			continue
		}
		markup, err := icon.Markup()
		if err != nil || markup == "" {
			continue
		}
		return browser.SanitizeMarkup(markup)
	}
	return ""
}

// elementText returns the trimmed text of the first match for selector,
// or "" when the element is absent or unreadable.
func elementText(parent browser.Element, selector string) string {
	el, err := parent.Query(selector)
	if err != nil || el == nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
