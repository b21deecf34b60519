package courses

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/ehubscan/pkg/config"
	"github.com/entrhq/ehubscan/pkg/logging"
)

const (
	dashboardURL = "https://ehub.alxafrica.com"
	savannahURL  = "https://savannah.alxafrica.com/dashboard"

	gridSelector    = ".flex.gap-6.my-4"
	primaryName     = "span.text-lg.font-bold"
	descSelector    = "p.text-sm.text-popover-foreground"
	metaSelector    = ".flex.flex-wrap.gap-1.items-center"
	badgeSelector   = ".text-success"
	currentSelector = "#student-switch-curriculum .fs-4.fw-semibold"
	toggleSelector  = "#student-switch-curriculum .btn-group > div"
	itemsSelector   = ".dropdown-menu-400.fs-5.dropdown-menu li"
	itemLink        = "a.dropdown-item"
	itemName        = ".fs-4.fw-medium, span:first-child"
	itemAverage     = ".text-muted .fw-medium"
	activeCheck     = ".fa-check"
)

func newTestFinder(t *testing.T, session *fakeSession) *Finder {
	t.Helper()
	finder := NewFinder(session, config.Default(), logging.Discard())
	finder.sleep = func(time.Duration) {}
	return finder
}

// courseContainer builds a dashboard container carrying a titled course
// with the given action button.
func courseContainer(name string, button *fakeElement) *fakeElement {
	container := newFakeElement("")
	container.addChild(primaryName, newFakeElement(name))
	if button != nil {
		container.addChild("button", button)
	}
	return container
}

func linkButton(text, link string) *fakeElement {
	button := newFakeElement(text)
	button.attrs["data-course-url"] = link
	return button
}

func TestParseCourse_FullContainer(t *testing.T) {
	session := newFakeSession(dashboardURL)
	finder := newTestFinder(t, session)

	button := linkButton("Continue", "/courses/data-analytics")
	container := courseContainer("Data Analytics", button)
	container.addChild(descSelector, newFakeElement("Learn to analyze data."))
	container.addChild(metaSelector, newFakeElement("Starts 13 Jan 2025 • 8 months"))
	container.addChild(badgeSelector, newFakeElement("Completed"))
	icon := newFakeElement("")
	icon.markup = `<svg viewBox="0 0 24 24"><path d="M0 0h24"/></svg>`
	container.addChild("svg", icon)

	course := finder.parseCourse(container)
	require.NotNil(t, course)

	assert.Equal(t, "Data Analytics", course.Name)
	assert.Equal(t, "data_analytics", course.CourseID)
	assert.Equal(t, PlatformDashboard, course.Platform)
	assert.Equal(t, "Learn to analyze data.", course.Description)
	assert.Equal(t, "13 Jan 2025", course.StartDate)
	assert.Equal(t, "8 months", course.Duration)
	assert.Equal(t, StatusCompleted, course.Status)
	assert.Equal(t, "Continue", course.ButtonText)
	assert.Equal(t, "/courses/data-analytics", course.ButtonLink)
	assert.Contains(t, course.IconMarkup, "svg")
	assert.True(t, course.IsAccessible())
}

func TestParseCourse_NamelessContainerSkipped(t *testing.T) {
	finder := newTestFinder(t, newFakeSession(dashboardURL))

	container := newFakeElement("")
	container.addChild(descSelector, newFakeElement("orphan description"))

	assert.Nil(t, finder.parseCourse(container))
}

func TestExtractName_SpanFallback(t *testing.T) {
	finder := newTestFinder(t, newFakeSession(dashboardURL))

	container := newFakeElement("")
	container.addChild("span", newFakeElement("8 weeks"))
	container.addChild("span", newFakeElement("OK"))
	container.addChild("span", newFakeElement("Data Science Essentials"))

	assert.Equal(t, "Data Science Essentials", finder.extractName(container))
}

func TestExtractStatus_FromButtonText(t *testing.T) {
	finder := newTestFinder(t, newFakeSession(dashboardURL))
	container := newFakeElement("")

	assert.Equal(t, StatusInProgress, finder.extractStatus(container, "Continue Learning"))
	assert.Equal(t, StatusNotStarted, finder.extractStatus(container, "Start Course"))
	assert.Equal(t, StatusUnknown, finder.extractStatus(container, "Details"))
}

func TestExtractButtonInfo_Onclick(t *testing.T) {
	finder := newTestFinder(t, newFakeSession(dashboardURL))

	button := newFakeElement("Continue")
	button.attrs["onclick"] = `window.location.href='/courses/python'`
	container := newFakeElement("")
	container.addChild("button", button)

	text, link := finder.extractButtonInfo(container)
	assert.Equal(t, "Continue", text)
	assert.Equal(t, "/courses/python", link)
}

func TestExtractButtonInfo_ValueOnlyAttribute(t *testing.T) {
	finder := newTestFinder(t, newFakeSession(dashboardURL))

	// No URL-suggesting attribute name; the path-shaped value alone wins.
	button := newFakeElement("Enroll")
	button.attrs["formaction"] = "/go"
	container := newFakeElement("")
	container.addChild("button", button)

	_, link := finder.extractButtonInfo(container)
	assert.Equal(t, "/go", link)
}

func TestExtractButtonInfo_OnclickQuotedPath(t *testing.T) {
	finder := newTestFinder(t, newFakeSession(dashboardURL))

	// The handler aliases navigation behind a helper; any quoted root
	// path still counts as the destination.
	button := newFakeElement("Enroll")
	button.attrs["onclick"] = `enroll('/courses/x')`
	container := newFakeElement("")
	container.addChild("button", button)

	_, link := finder.extractButtonInfo(container)
	assert.Equal(t, "/courses/x", link)
}

func TestExtractButtonInfo_AncestorAnchor(t *testing.T) {
	finder := newTestFinder(t, newFakeSession(dashboardURL))

	anchor := newFakeElement("")
	anchor.attrs["href"] = "/courses/ml"
	button := newFakeElement("Start")
	button.addChild("xpath=ancestor::a", anchor)
	container := newFakeElement("")
	container.addChild("button", button)

	_, link := finder.extractButtonInfo(container)
	assert.Equal(t, "/courses/ml", link)
}

func TestExtractButtonInfo_PlaceholderAnchorRejected(t *testing.T) {
	finder := newTestFinder(t, newFakeSession(dashboardURL))

	anchor := newFakeElement("")
	anchor.attrs["href"] = "#"
	button := newFakeElement("Start")
	button.addChild("xpath=ancestor::a", anchor)
	container := newFakeElement("")
	container.addChild("button", button)

	_, link := finder.extractButtonInfo(container)
	assert.Equal(t, "", link)
}

func TestDiscover_DashboardOnly(t *testing.T) {
	session := newFakeSession(dashboardURL)
	session.addElement(gridSelector, courseContainer("Data Analytics", linkButton("Continue", "/courses/da")))
	session.addElement(gridSelector, courseContainer("Python", linkButton("Start", "/courses/py")))
	session.addElement(gridSelector, newFakeElement("")) // decoration, no name
	finder := newTestFinder(t, session)

	list, err := finder.Discover(false)
	require.NoError(t, err)

	assert.Equal(t, 2, list.Len())
	assert.Equal(t, StatusInProgress, list.Courses[0].Status)
	assert.Equal(t, StatusNotStarted, list.Courses[1].Status)
	assert.Equal(t, PlatformAthena, list.Courses[0].Platform)
	assert.Equal(t, PlatformAthena, list.Courses[1].Platform)
	assert.False(t, session.hasNavigated("savannah"))
}

func TestDiscover_TagsSavannahEntryPoint(t *testing.T) {
	session := newFakeSession(dashboardURL)
	session.addElement(gridSelector, courseContainer("Professional Foundations", linkButton("Continue", "/dashboard/my-courses")))
	session.addElement(gridSelector, courseContainer("Python", linkButton("Start", "/courses/py")))
	finder := newTestFinder(t, session)

	list, err := finder.Discover(false)
	require.NoError(t, err)
	require.Equal(t, 2, list.Len())

	entry := list.Courses[0]
	assert.Equal(t, PlatformSavannah, entry.Platform)
	assert.Equal(t, "https://savannah.alxafrica.com/dashboard/my-courses", entry.FullURL())

	athena := list.Courses[1]
	assert.Equal(t, PlatformAthena, athena.Platform)
	assert.Equal(t, "https://ehub.alxafrica.com/courses/py", athena.FullURL())
}

func TestDiscover_ScrollRetryRecoversGrid(t *testing.T) {
	session := newFakeSession(dashboardURL)
	session.onEvaluate = func(script string) {
		session.addElement(gridSelector, courseContainer("Python", linkButton("Start", "/courses/py")))
	}
	finder := newTestFinder(t, session)

	list, err := finder.Discover(false)
	require.NoError(t, err)

	assert.Equal(t, 1, list.Len())
	require.Len(t, session.evaluated, 1)
	assert.Contains(t, session.evaluated[0], "scrollTo")
}

func TestDiscover_MissingGridYieldsEmptyList(t *testing.T) {
	session := newFakeSession(dashboardURL)
	finder := newTestFinder(t, session)

	list, err := finder.Discover(false)
	require.NoError(t, err)

	assert.Equal(t, 0, list.Len())
	// The lazy-load scroll was still attempted before giving up.
	require.Len(t, session.evaluated, 1)
	assert.Contains(t, session.evaluated[0], "scrollTo")
}

func TestDiscoveryError_Unwrap(t *testing.T) {
	cause := errors.New("browser went away")
	err := &DiscoveryError{Area: "dashboard", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dashboard")
}

// savannahItem builds one switcher dropdown row.
func savannahItem(name, href, average string, active bool) *fakeElement {
	link := newFakeElement(name)
	link.attrs["href"] = href
	link.addChild(itemName, newFakeElement(name))
	if average != "" {
		link.addChild(itemAverage, newFakeElement(average))
	}
	item := newFakeElement("")
	item.addChild(itemLink, link)
	if active {
		item.addChild(activeCheck, newFakeElement(""))
	}
	return item
}

func installSavannahPage(session *fakeSession) *fakeElement {
	session.addElement(currentSelector, newFakeElement("Virtual Assistant"))
	session.addElement(toggleSelector, newFakeElement(""))
	session.addElement(itemsSelector, savannahItem("Virtual Assistant", "/curriculums/7/courses", "", true))
	session.addElement(itemsSelector, savannahItem("Data Engineering", "/curriculums/42/courses", "85%", false))
	body := newFakeElement("")
	session.addElement("body", body)
	return body
}

func TestDiscover_SavannahInPlace(t *testing.T) {
	session := newFakeSession(dashboardURL)
	var dropdownClosed bool
	entryButton := newFakeElement("Continue")
	entryButton.attrs["data-course-url"] = "/dashboard/my-courses"
	entryButton.onClick = func() {
		session.url = savannahURL
		body := installSavannahPage(session)
		body.onClick = func() { dropdownClosed = true }
	}
	session.addElement(gridSelector, courseContainer("Professional Foundations", entryButton))
	finder := newTestFinder(t, session)

	list, err := finder.Discover(true)
	require.NoError(t, err)

	require.Equal(t, 3, list.Len())

	// The entry course itself plus both curricula carry the Savannah tag.
	savannah := list.ByPlatform(PlatformSavannah)
	require.Len(t, savannah, 3)
	assert.Equal(t, "Professional Foundations", savannah[0].Name)
	assert.Empty(t, savannah[0].ParentCourse)

	current := savannah[1]
	assert.Equal(t, "Virtual Assistant", current.Name)
	assert.Equal(t, StatusCurrent, current.Status)
	assert.Equal(t, savannahURL, current.ButtonLink)
	assert.Equal(t, "Professional Foundations", current.ParentCourse)

	engineering := savannah[2]
	assert.Equal(t, "Data Engineering", engineering.Name)
	assert.Equal(t, StatusAvailable, engineering.Status)
	assert.Equal(t, "42", engineering.Metadata["curriculum_id"])
	assert.Equal(t, "Average: 85%", engineering.Description)
	assert.Equal(t, "/curriculums/42/courses", engineering.ButtonLink)

	assert.True(t, dropdownClosed)
	// Back on the dashboard after the sub-platform visit.
	assert.True(t, session.hasNavigated(dashboardURL))
}

func TestDiscover_SavannahNewTab(t *testing.T) {
	session := newFakeSession(dashboardURL)
	entryButton := newFakeElement("Continue")
	entryButton.attrs["data-course-url"] = "/dashboard/my-courses"
	entryButton.onClick = func() {
		session.pageCount = 2
		session.url = savannahURL
		installSavannahPage(session)
	}
	session.addElement(gridSelector, courseContainer("Professional Foundations", entryButton))
	finder := newTestFinder(t, session)

	list, err := finder.Discover(true)
	require.NoError(t, err)

	assert.Equal(t, 3, list.Len())
	assert.Equal(t, 1, session.switches)
	assert.Equal(t, 1, session.closes)
}

func TestDiscover_AthenaAddsNoRecords(t *testing.T) {
	session := newFakeSession(dashboardURL)
	entryButton := newFakeElement("Continue")
	entryButton.attrs["data-course-url"] = "https://athena.alxafrica.com/courses/python"
	entryButton.onClick = func() {
		session.url = "https://athena.alxafrica.com/courses/python"
	}
	session.addElement(gridSelector, courseContainer("Python", entryButton))
	finder := newTestFinder(t, session)

	list, err := finder.Discover(true)
	require.NoError(t, err)

	assert.Equal(t, 1, list.Len())
	assert.Equal(t, PlatformAthena, list.Courses[0].Platform)
	assert.True(t, session.hasNavigated(dashboardURL))
}

func TestDiscover_SubPlatformFailureKeepsDashboard(t *testing.T) {
	session := newFakeSession(dashboardURL)
	entryButton := newFakeElement("Continue")
	entryButton.attrs["data-course-url"] = "/dashboard/my-courses"
	// Click lands somewhere that is not savannah.
	entryButton.onClick = func() {
		session.url = dashboardURL + "/dashboard/my-courses"
	}
	session.addElement(gridSelector, courseContainer("Professional Foundations", entryButton))
	finder := newTestFinder(t, session)

	list, err := finder.Discover(true)
	require.NoError(t, err)

	// Only the dashboard entry itself; no curriculum records were added.
	assert.Equal(t, 1, list.Len())
	assert.Empty(t, list.Courses[0].ParentCourse)
}
