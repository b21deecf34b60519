package courses

import (
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/ehubscan/pkg/browser"
	"github.com/entrhq/ehubscan/pkg/config"
	"github.com/entrhq/ehubscan/pkg/logging"
)

// lazyLoadScroll forces below-the-fold content to render when the course
// grid is not present after the first wait.
const lazyLoadScroll = "window.scrollTo(0, document.body.scrollHeight);"

// Finder walks the dashboard and its sub-platforms collecting course
// records. It borrows an authenticated session and never closes it.
type Finder struct {
	session browser.Session
	cfg     *config.Config
	log     *logging.Logger

	// sleep is swappable so tests run without real delays.
	sleep func(time.Duration)
}

// NewFinder builds a Finder over an already authenticated session.
func NewFinder(session browser.Session, cfg *config.Config, log *logging.Logger) *Finder {
	return &Finder{
		session: session,
		cfg:     cfg,
		log:     log,
		sleep:   time.Sleep,
	}
}

// Discover collects every course visible on the dashboard and, when
// exploreSubPlatforms is set, follows the Savannah entry course and the
// known Athena courses into their platforms for additional records.
//
// A sub-platform failure never loses the dashboard results already
// collected; it is logged and discovery moves to the next course.
func (f *Finder) Discover(exploreSubPlatforms bool) (list *CourseList, err error) {
	defer func() {
		if r := recover(); r != nil {
			list = nil
			err = &DiscoveryError{Area: "discovery", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := f.ensureOnDashboard(); err != nil {
		return nil, &DiscoveryError{Area: "dashboard", Err: err}
	}
	f.waitForCourses()
	f.capturePage("dashboard")

	containers, err := f.session.QueryAll(f.cfg.Courses.Container)
	if err != nil {
		return nil, &DiscoveryError{Area: "dashboard", Err: err}
	}
	f.log.Infof("found %d course containers on dashboard", len(containers))

	var courses []Course
	for i, container := range containers {
		course := f.parseCourse(container)
		if course == nil {
			f.log.Debugf("skipping container %d: no course name found", i)
			continue
		}
		// Dashboard tiles front the sub-platforms: the Savannah entry
		// course is hosted on Savannah, everything else on Athena.
		if course.Name == f.cfg.Courses.SavannahEntryName {
			course.Platform = PlatformSavannah
		} else {
			course.Platform = PlatformAthena
		}
		f.log.Infof("discovered course: %s (platform=%s, status=%s, accessible=%t)",
			course.Name, course.Platform, course.Status, course.IsAccessible())
		courses = append(courses, *course)
	}

	if exploreSubPlatforms {
		courses = append(courses, f.exploreSubPlatforms(courses)...)
	}

	list = NewCourseList(courses)
	f.writeReport(list)
	return list, nil
}

// exploreSubPlatforms visits each known sub-platform entry found on the
// dashboard and collects the courses hosted there.
func (f *Finder) exploreSubPlatforms(dashboard []Course) []Course {
	var extra []Course
	for _, course := range dashboard {
		if !course.IsAccessible() {
			continue
		}
		switch {
		case course.Name == f.cfg.Courses.SavannahEntryName:
			found, err := f.enterSavannah(course)
			if err != nil {
				f.log.Warnf("savannah exploration failed for %s: %v", course.Name, err)
			}
			extra = append(extra, found...)
			f.returnToDashboard()
		case f.isAthenaCourse(course.Name):
			found, err := f.exploreAthena(course)
			if err != nil {
				f.log.Warnf("athena exploration failed for %s: %v", course.Name, err)
			}
			extra = append(extra, found...)
			f.returnToDashboard()
		}
	}
	return extra
}

func (f *Finder) isAthenaCourse(name string) bool {
	for _, candidate := range f.cfg.Courses.AthenaCourseNames {
		if candidate == name {
			return true
		}
	}
	return false
}

// ensureOnDashboard navigates to the dashboard unless the session is
// already there.
func (f *Finder) ensureOnDashboard() error {
	if strings.HasPrefix(f.session.URL(), f.cfg.Auth.URLs.Dashboard) &&
		!strings.Contains(f.session.URL(), "/login") {
		return nil
	}
	if err := f.session.Navigate(f.cfg.Auth.URLs.Dashboard); err != nil {
		return fmt.Errorf("failed to open dashboard: %w", err)
	}
	f.waitForPage()
	f.sleep(f.cfg.Courses.Page.Settle.Std())
	return nil
}

// waitForPage bounds a full page navigation: it waits for the document
// body to attach, up to the configured page-load timeout. Best effort.
func (f *Finder) waitForPage() {
	if err := f.session.WaitFor("body", f.cfg.Auth.Timeouts.PageLoad.Std()); err != nil {
		f.log.Debugf("page load wait: %v", err)
	}
}

// waitForCourses waits for the course grid. The grid lazy-loads below the
// fold, so a miss triggers one scroll to the bottom and a shorter retry.
// A student with no enrollments has no grid at all, so the final timeout
// is a warning and discovery proceeds with zero containers.
func (f *Finder) waitForCourses() {
	page := f.cfg.Courses.Page
	if err := f.session.WaitFor(page.WaitFor, page.Timeout.Std()); err == nil {
		return
	}

	f.log.Warnf("timed out waiting for course grid, scrolling to trigger lazy load")
	if _, err := f.session.Evaluate(lazyLoadScroll); err != nil {
		f.log.Debugf("scroll failed: %v", err)
	}
	f.sleep(page.Settle.Std())

	if err := f.session.WaitFor(page.WaitFor, page.RetryTimeout.Std()); err != nil {
		f.log.Warnf("course grid still absent after scrolling, continuing with zero containers")
	}
}

// returnToDashboard brings the session back to the dashboard after a
// sub-platform visit. Best effort: a failure here is logged and the next
// phase re-checks its own preconditions.
func (f *Finder) returnToDashboard() {
	if err := f.session.Navigate(f.cfg.Auth.URLs.Dashboard); err != nil {
		f.log.Warnf("failed to return to dashboard: %v", err)
		return
	}
	f.waitForPage()
	f.sleep(f.cfg.Courses.Page.Settle.Std())
	f.waitForCourses()
}

// openCourse enters a course the way a user would: it re-finds the
// course's container and clicks its button, falling back to direct
// navigation when the container can no longer be located.
func (f *Finder) openCourse(course Course) error {
	if container := f.findContainerByName(course.Name); container != nil {
		button, err := container.Query(f.cfg.Courses.Button)
		if err == nil && button != nil {
			if err := button.Click(); err == nil {
				return nil
			}
			f.log.Debugf("button click failed for %s, navigating directly", course.Name)
		}
	}

	if !course.IsAccessible() {
		return fmt.Errorf("course %s has no working link", course.Name)
	}
	if err := f.session.Navigate(course.FullURL()); err != nil {
		return fmt.Errorf("failed to open course %s: %w", course.Name, err)
	}
	return nil
}

// findContainerByName locates the dashboard container for a course by
// its extracted name. Returns nil when no container matches.
func (f *Finder) findContainerByName(name string) browser.Element {
	containers, err := f.session.QueryAll(f.cfg.Courses.Container)
	if err != nil {
		return nil
	}
	for _, container := range containers {
		if f.extractName(container) == name {
			return container
		}
	}
	return nil
}

// NavigateToCourse opens a single discovered course in the active tab,
// preferring the real dashboard button over direct navigation. Exposed
// for callers that want to land on a course page after discovery.
func (f *Finder) NavigateToCourse(course Course) error {
	if err := f.openCourse(course); err != nil {
		return err
	}
	f.sleep(f.cfg.Courses.Page.ClickSettle.Std())
	f.log.Infof("opened course %s, landed on %s", course.Name, f.session.URL())
	return nil
}
