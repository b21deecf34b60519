package courses

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/entrhq/ehubscan/pkg/browser"
)

var curriculumIDRe = regexp.MustCompile(`/curriculums/(\d+)/`)

// enterSavannah follows the entry course into the Savannah platform and
// extracts one record per curriculum from the curriculum switcher. The
// entry may open in a new tab or replace the current one; both are
// handled, and the session ends back on a single dashboard-owned tab.
func (f *Finder) enterSavannah(entry Course) ([]Course, error) {
	tabsBefore := f.session.PageCount()

	if err := f.openCourse(entry); err != nil {
		return nil, err
	}
	f.sleep(f.cfg.Courses.Page.ClickSettle.Std())

	openedNewTab := f.session.PageCount() > tabsBefore
	if openedNewTab {
		if err := f.session.SwitchToNewest(); err != nil {
			return nil, fmt.Errorf("failed to switch to savannah tab: %w", err)
		}
		defer func() {
			if err := f.session.CloseActive(); err != nil {
				f.log.Warnf("failed to close savannah tab: %v", err)
			}
		}()
	}

	if !strings.HasPrefix(f.session.URL(), f.cfg.Auth.URLs.SavannahBase) {
		return nil, fmt.Errorf("expected savannah page, landed on %s", f.session.URL())
	}
	f.capturePage("savannah")

	courses := f.parseSavannahCurricula(entry)
	f.log.Infof("extracted %d curricula from savannah", len(courses))
	return courses, nil
}

// parseSavannahCurricula reads the curriculum switcher: the currently
// active curriculum shown in the header, plus every entry in the
// switcher dropdown. Missing pieces degrade to fewer records, never to
// an error; the caller already holds the dashboard results.
func (f *Finder) parseSavannahCurricula(entry Course) []Course {
	var courses []Course
	seen := map[string]bool{}

	sel := f.cfg.Savannah
	if current := f.savannahCurrent(entry); current != nil {
		courses = append(courses, *current)
		seen[current.Name] = true
	}

	toggle, err := f.session.Query(sel.DropdownToggle)
	if err != nil || toggle == nil {
		f.log.Debugf("no curriculum switcher found on savannah page")
		return courses
	}
	if err := toggle.Click(); err != nil {
		f.log.Debugf("curriculum switcher did not open: %v", err)
		return courses
	}
	f.sleep(sel.DropdownSettle.Std())

	items, err := f.session.QueryAll(sel.DropdownItems)
	if err != nil {
		return courses
	}
	for _, item := range items {
		course := f.parseSavannahItem(item, entry.Name)
		if course == nil || seen[course.Name] {
			continue
		}
		seen[course.Name] = true
		courses = append(courses, *course)
	}

	f.closeDropdown()
	return courses
}

// closeDropdown dismisses the curriculum switcher by clicking away from
// it. Best effort; the page is left as found when it works.
func (f *Finder) closeDropdown() {
	body, err := f.session.Query("body")
	if err != nil || body == nil {
		return
	}
	if err := body.Click(); err != nil {
		f.log.Debugf("could not close curriculum dropdown: %v", err)
	}
}

// savannahCurrent builds a record for the curriculum the student is
// currently switched into, read from the page header.
func (f *Finder) savannahCurrent(entry Course) *Course {
	current, err := f.session.Query(f.cfg.Savannah.CurrentCurriculum)
	if err != nil || current == nil {
		return nil
	}
	name, err := current.Text()
	if err != nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	return &Course{
		Name:         name,
		Platform:     PlatformSavannah,
		Status:       StatusCurrent,
		ButtonText:   "View Course",
		ButtonLink:   f.session.URL(),
		CourseID:     DeriveCourseID(name),
		ParentCourse: entry.Name,
		Metadata:     map[string]string{},
	}
}

// parseSavannahItem extracts one curriculum record from a switcher
// dropdown row. Returns nil when the row carries no name.
func (f *Finder) parseSavannahItem(item browser.Element, parent string) *Course {
	sel := f.cfg.Savannah

	link, err := item.Query(sel.ItemLink)
	if err != nil || link == nil {
		return nil
	}

	name := ""
	if nameEl, err := link.Query(sel.ItemName); err == nil && nameEl != nil {
		if text, err := nameEl.Text(); err == nil {
			name = strings.TrimSpace(text)
		}
	}
	if name == "" {
		if text, err := link.Text(); err == nil {
			name = strings.TrimSpace(strings.Split(text, "\n")[0])
		}
	}
	if name == "" {
		return nil
	}

	course := &Course{
		Name:         name,
		Platform:     PlatformSavannah,
		Status:       StatusAvailable,
		ButtonText:   "View Course",
		CourseID:     DeriveCourseID(name),
		ParentCourse: parent,
		Metadata:     map[string]string{},
	}

	if href, err := link.Attribute("href"); err == nil && href != "" {
		course.ButtonLink = href
		if m := curriculumIDRe.FindStringSubmatch(href); m != nil {
			course.Metadata["curriculum_id"] = m[1]
		}
	}

	if avgEl, err := link.Query(sel.ItemAverage); err == nil && avgEl != nil {
		if avg, err := avgEl.Text(); err == nil && strings.TrimSpace(avg) != "" {
			course.Description = "Average: " + strings.TrimSpace(avg)
		}
	}

	// The active curriculum row carries a check mark.
	if check, err := item.Query(sel.ActiveCheck); err == nil && check != nil {
		course.Status = StatusCurrent
	}
	return course
}
