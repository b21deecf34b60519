// Package courses discovers and models course enrollments across the eHub
// dashboard and its linked sub-platforms.
package courses

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// Platform identifies which system a course record was discovered on.
type Platform string

const (
	PlatformDashboard Platform = "dashboard"
	PlatformAthena    Platform = "athena"
	PlatformSavannah  Platform = "savannah"
	PlatformUnknown   Platform = "unknown"
)

// Course statuses. Dashboard courses surface the first three; Savannah
// curricula use Current/Available.
const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In Progress"
	StatusNotStarted = "Not Started"
	StatusCurrent    = "Current"
	StatusAvailable  = "Available"
	StatusUnknown    = "Unknown"
)

// Base domains used to resolve root-relative course links.
const (
	mainBaseURL     = "https://ehub.alxafrica.com"
	savannahBaseURL = "https://savannah.alxafrica.com"
)

// Course is the normalized representation of one enrollment entry,
// wherever it was discovered.
type Course struct {
	Name         string            `json:"name"`
	Platform     Platform          `json:"platform"`
	Description  string            `json:"description,omitempty"`
	StartDate    string            `json:"start_date,omitempty"`
	Duration     string            `json:"duration,omitempty"`
	Status       string            `json:"status"`
	ButtonText   string            `json:"button_text,omitempty"`
	ButtonLink   string            `json:"button_link,omitempty"`
	IconMarkup   string            `json:"icon_markup,omitempty"`
	CourseID     string            `json:"course_id"`
	ParentCourse string            `json:"parent_course,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// DeriveCourseID produces the default course id for a name: lower-cased,
// with spaces and hyphens turned into underscores.
func DeriveCourseID(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "_")
	id = strings.ReplaceAll(id, "-", "_")
	return id
}

// IsAccessible reports whether the course has a working link: a button
// link that exists, is not the "#" placeholder and is not a script no-op.
func (c Course) IsAccessible() bool {
	return c.ButtonLink != "" &&
		c.ButtonLink != "#" &&
		!strings.Contains(c.ButtonLink, "javascript:void")
}

// FullURL resolves the button link to an absolute URL. Root-relative
// links get the platform-appropriate domain; absolute links and anything
// else pass through unchanged.
func (c Course) FullURL() string {
	switch {
	case c.ButtonLink == "":
		return ""
	case strings.HasPrefix(c.ButtonLink, "http"):
		return c.ButtonLink
	case strings.HasPrefix(c.ButtonLink, "/"):
		if c.Platform == PlatformSavannah {
			return savannahBaseURL + c.ButtonLink
		}
		return mainBaseURL + c.ButtonLink
	}
	return c.ButtonLink
}

// CourseList is an ordered collection of discovered courses with the
// capture timestamp.
type CourseList struct {
	Courses   []Course
	Timestamp time.Time
}

// NewCourseList wraps courses with a capture timestamp of now.
func NewCourseList(courses []Course) *CourseList {
	return &CourseList{Courses: courses, Timestamp: time.Now()}
}

// Len returns the number of courses in the list.
func (l *CourseList) Len() int {
	return len(l.Courses)
}

// ByPlatform returns the courses discovered on the given platform.
func (l *CourseList) ByPlatform(platform Platform) []Course {
	var matched []Course
	for _, course := range l.Courses {
		if course.Platform == platform {
			matched = append(matched, course)
		}
	}
	return matched
}

// ByStatus returns the courses with the given status.
func (l *CourseList) ByStatus(status string) []Course {
	var matched []Course
	for _, course := range l.Courses {
		if course.Status == status {
			matched = append(matched, course)
		}
	}
	return matched
}

// Accessible returns the courses with a working link.
func (l *CourseList) Accessible() []Course {
	var matched []Course
	for _, course := range l.Courses {
		if course.IsAccessible() {
			matched = append(matched, course)
		}
	}
	return matched
}

// MatchName returns the courses whose name matches the glob pattern,
// case-insensitively.
func (l *CourseList) MatchName(pattern string) ([]Course, error) {
	matcher, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}

	var matched []Course
	for _, course := range l.Courses {
		if matcher.Match(strings.ToLower(course.Name)) {
			matched = append(matched, course)
		}
	}
	return matched, nil
}

// Report is the serializable discovery report.
type Report struct {
	Timestamp         time.Time      `json:"timestamp"`
	TotalCourses      int            `json:"total_courses"`
	AccessibleCourses int            `json:"accessible_courses"`
	ByPlatform        map[string]int `json:"by_platform"`
	Courses           []ReportCourse `json:"courses"`
}

// ReportCourse is one course entry in a report, with the derived
// properties materialized.
type ReportCourse struct {
	Name         string            `json:"name"`
	Platform     Platform          `json:"platform"`
	Description  string            `json:"description,omitempty"`
	StartDate    string            `json:"start_date,omitempty"`
	Duration     string            `json:"duration,omitempty"`
	Status       string            `json:"status"`
	ButtonText   string            `json:"button_text,omitempty"`
	ButtonLink   string            `json:"button_link,omitempty"`
	FullURL      string            `json:"full_url,omitempty"`
	CourseID     string            `json:"course_id"`
	IsAccessible bool              `json:"is_accessible"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Report builds the discovery report for the list.
func (l *CourseList) Report() *Report {
	report := &Report{
		Timestamp:         l.Timestamp,
		TotalCourses:      len(l.Courses),
		AccessibleCourses: len(l.Accessible()),
		ByPlatform: map[string]int{
			string(PlatformDashboard): len(l.ByPlatform(PlatformDashboard)),
			string(PlatformAthena):    len(l.ByPlatform(PlatformAthena)),
			string(PlatformSavannah):  len(l.ByPlatform(PlatformSavannah)),
		},
		Courses: make([]ReportCourse, 0, len(l.Courses)),
	}

	for _, course := range l.Courses {
		report.Courses = append(report.Courses, ReportCourse{
			Name:         course.Name,
			Platform:     course.Platform,
			Description:  course.Description,
			StartDate:    course.StartDate,
			Duration:     course.Duration,
			Status:       course.Status,
			ButtonText:   course.ButtonText,
			ButtonLink:   course.ButtonLink,
			FullURL:      course.FullURL(),
			CourseID:     course.CourseID,
			IsAccessible: course.IsAccessible(),
			Metadata:     course.Metadata,
		})
	}
	return report
}

// Save writes the list's report as indented JSON to the given path.
func (l *CourseList) Save(path string) error {
	data, err := json.MarshalIndent(l.Report(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode course report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write course report: %w", err)
	}
	return nil
}
