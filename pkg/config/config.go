// Package config defines the scraper's configuration as explicit structs
// with documented defaults. A config file only ever overrides; every field
// left unset falls back to its default exactly once, at load time, so the
// rest of the codebase can read fields without defensive fallbacks.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration tree consumed by the scraper core.
type Config struct {
	Auth     AuthConfig     `yaml:"auth"`
	Courses  CoursesConfig  `yaml:"courses"`
	Savannah SavannahConfig `yaml:"savannah"`
	Debug    DebugConfig    `yaml:"debug"`
}

// AuthConfig configures the authenticator: how long to wait, where to log
// in, and which DOM hooks identify the login form and a logged-in page.
type AuthConfig struct {
	Timeouts  AuthTimeouts  `yaml:"timeouts"`
	URLs      AuthURLs      `yaml:"urls"`
	Selectors AuthSelectors `yaml:"selectors"`
}

// AuthTimeouts bounds the authenticator's waits.
type AuthTimeouts struct {
	// PageLoad bounds full page navigations.
	PageLoad Duration `yaml:"page_load"`
	// ElementWait bounds individual element waits.
	ElementWait Duration `yaml:"element_wait"`
	// PostLoginWait is the fixed settle delay after submitting the form.
	PostLoginWait Duration `yaml:"post_login_wait"`
}

// AuthURLs names the portal entry points.
type AuthURLs struct {
	Login        string `yaml:"login"`
	Dashboard    string `yaml:"dashboard"`
	SavannahBase string `yaml:"savannah_base"`
}

// AuthSelectors are the DOM hooks the authenticator depends on. The
// logged-in indicators are inherently site-coupled; when the portal's
// markup drifts, these are the knobs to adjust.
type AuthSelectors struct {
	LoginPageIndicators []string            `yaml:"login_page_indicators"`
	LoginForm           LoginFormSelectors  `yaml:"login_form"`
	ProfilePhoto        string              `yaml:"profile_photo"`
	Greeting            string              `yaml:"greeting"`
	GreetingMarker      string              `yaml:"greeting_marker"`
	PointsBadge         string              `yaml:"points_badge"`
	NotificationBadge   string              `yaml:"notification_badge"`
	LogoutLink          string              `yaml:"logout_link"`
}

// LoginFormSelectors locate the login form and its fields. Fallback lists
// are tried in order when the primary locator finds nothing.
type LoginFormSelectors struct {
	Form              string   `yaml:"form"`
	Email             string   `yaml:"email"`
	EmailFallbacks    []string `yaml:"email_fallbacks"`
	Password          string   `yaml:"password"`
	PasswordFallbacks []string `yaml:"password_fallbacks"`
	Submit            string   `yaml:"submit"`
}

// CoursesConfig configures dashboard course discovery.
type CoursesConfig struct {
	Container         string            `yaml:"container"`
	Name              NameSelectors     `yaml:"name"`
	Description       string            `yaml:"description"`
	MetadataContainer string            `yaml:"metadata_container"`
	StatusBadge       StatusBadgeConfig `yaml:"status_badge"`
	Button            string            `yaml:"button"`
	Page              CoursePageConfig  `yaml:"page"`
	// SavannahEntryName is the dashboard course that doubles as the
	// Savannah sub-platform entry point.
	SavannahEntryName string   `yaml:"savannah_entry_name"`
	AthenaCourseNames []string `yaml:"athena_course_names"`
}

// NameSelectors locate a course's name. Primary matches the mobile layout,
// Secondary the desktop one.
type NameSelectors struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

// StatusBadgeConfig locates the completion badge.
type StatusBadgeConfig struct {
	Selector      string `yaml:"selector"`
	CompletedText string `yaml:"completed_text"`
}

// CoursePageConfig bounds the waits around the course grid.
type CoursePageConfig struct {
	WaitFor string `yaml:"wait_for"`
	Timeout Duration `yaml:"timeout"`
	// RetryTimeout bounds the second wait after the lazy-load scroll.
	RetryTimeout Duration `yaml:"retry_timeout"`
	// Settle is the fixed delay after navigations.
	Settle Duration `yaml:"settle"`
	// ClickSettle is the fixed delay after entering a sub-platform.
	ClickSettle Duration `yaml:"click_settle"`
}

// SavannahConfig configures curriculum extraction inside Savannah.
type SavannahConfig struct {
	CurrentCurriculum string   `yaml:"current_curriculum"`
	DropdownToggle    string   `yaml:"dropdown_toggle"`
	DropdownItems     string   `yaml:"dropdown_items"`
	ItemLink          string   `yaml:"item_link"`
	ItemName          string   `yaml:"item_name"`
	ItemAverage       string   `yaml:"item_average"`
	ActiveCheck       string   `yaml:"active_check"`
	DropdownSettle    Duration `yaml:"dropdown_settle"`
}

// DebugConfig controls the diagnostic side channel (page snapshots,
// screenshots, discovery reports). Off by default.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Default returns the built-in configuration for the ALX eHub portal.
func Default() *Config {
	return &Config{
		Auth: AuthConfig{
			Timeouts: AuthTimeouts{
				PageLoad:      Duration(10 * time.Second),
				ElementWait:   Duration(10 * time.Second),
				PostLoginWait: Duration(3 * time.Second),
			},
			URLs: AuthURLs{
				Login:        "https://ehub.alxafrica.com/login",
				Dashboard:    "https://ehub.alxafrica.com",
				SavannahBase: "https://savannah.alxafrica.com",
			},
			Selectors: AuthSelectors{
				LoginPageIndicators: []string{
					"input[name='email']",
					"input[type='password']",
					"button[type='submit']",
				},
				LoginForm: LoginFormSelectors{
					Form:  "form.space-y-4",
					Email: "input[name='email']",
					EmailFallbacks: []string{
						"input[type='text'][placeholder*='email']",
						"input[type='email']",
					},
					Password: "input[name='password']",
					PasswordFallbacks: []string{
						"input[type='password']",
					},
					Submit: "button[type='submit']",
				},
				ProfilePhoto:      "img[src*='profilePhoto']",
				Greeting:          "p.flex.text-3xl.font-bold",
				GreetingMarker:    "Hello",
				PointsBadge:       "span.font-bold.text-sm.text-card-foreground",
				NotificationBadge: "svg circle[fill='#FF6B5E']",
				LogoutLink:        "a[href*='logout']",
			},
		},
		Courses: CoursesConfig{
			Container: ".flex.gap-6.my-4",
			Name: NameSelectors{
				Primary:   "span.text-lg.font-bold",
				Secondary: "p.text-xl.font-semibold",
			},
			Description:       "p.text-sm.text-popover-foreground",
			MetadataContainer: ".flex.flex-wrap.gap-1.items-center",
			StatusBadge: StatusBadgeConfig{
				Selector:      ".text-success",
				CompletedText: "Completed",
			},
			Button: "button",
			Page: CoursePageConfig{
				WaitFor:      ".flex.gap-6.my-4",
				Timeout:      Duration(10 * time.Second),
				RetryTimeout: Duration(5 * time.Second),
				Settle:       Duration(3 * time.Second),
				ClickSettle:  Duration(5 * time.Second),
			},
			SavannahEntryName: "Professional Foundations",
			AthenaCourseNames: []string{"Data Analytics", "Python", "Machine Learning"},
		},
		Savannah: SavannahConfig{
			CurrentCurriculum: "#student-switch-curriculum .fs-4.fw-semibold",
			DropdownToggle:    "#student-switch-curriculum .btn-group > div",
			DropdownItems:     ".dropdown-menu-400.fs-5.dropdown-menu li",
			ItemLink:          "a.dropdown-item",
			ItemName:          ".fs-4.fw-medium, span:first-child",
			ItemAverage:       ".text-muted .fw-medium",
			ActiveCheck:       ".fa-check",
			DropdownSettle:    Duration(2 * time.Second),
		},
		Debug: DebugConfig{
			Enabled: false,
			Dir:     "data",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; every field the file omits keeps its default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults restores any field an override file blanked out. YAML
// decoding into a populated struct keeps omitted fields, but explicit
// empty values would otherwise survive to use sites.
func (c *Config) applyDefaults() {
	def := Default()

	fallbackDuration(&c.Auth.Timeouts.PageLoad, def.Auth.Timeouts.PageLoad)
	fallbackDuration(&c.Auth.Timeouts.ElementWait, def.Auth.Timeouts.ElementWait)
	fallbackDuration(&c.Auth.Timeouts.PostLoginWait, def.Auth.Timeouts.PostLoginWait)
	fallbackString(&c.Auth.URLs.Login, def.Auth.URLs.Login)
	fallbackString(&c.Auth.URLs.Dashboard, def.Auth.URLs.Dashboard)
	fallbackString(&c.Auth.URLs.SavannahBase, def.Auth.URLs.SavannahBase)
	fallbackList(&c.Auth.Selectors.LoginPageIndicators, def.Auth.Selectors.LoginPageIndicators)
	fallbackString(&c.Auth.Selectors.LoginForm.Form, def.Auth.Selectors.LoginForm.Form)
	fallbackString(&c.Auth.Selectors.LoginForm.Email, def.Auth.Selectors.LoginForm.Email)
	fallbackList(&c.Auth.Selectors.LoginForm.EmailFallbacks, def.Auth.Selectors.LoginForm.EmailFallbacks)
	fallbackString(&c.Auth.Selectors.LoginForm.Password, def.Auth.Selectors.LoginForm.Password)
	fallbackList(&c.Auth.Selectors.LoginForm.PasswordFallbacks, def.Auth.Selectors.LoginForm.PasswordFallbacks)
	fallbackString(&c.Auth.Selectors.LoginForm.Submit, def.Auth.Selectors.LoginForm.Submit)
	fallbackString(&c.Auth.Selectors.ProfilePhoto, def.Auth.Selectors.ProfilePhoto)
	fallbackString(&c.Auth.Selectors.Greeting, def.Auth.Selectors.Greeting)
	fallbackString(&c.Auth.Selectors.GreetingMarker, def.Auth.Selectors.GreetingMarker)
	fallbackString(&c.Auth.Selectors.PointsBadge, def.Auth.Selectors.PointsBadge)
	fallbackString(&c.Auth.Selectors.NotificationBadge, def.Auth.Selectors.NotificationBadge)
	fallbackString(&c.Auth.Selectors.LogoutLink, def.Auth.Selectors.LogoutLink)

	fallbackString(&c.Courses.Container, def.Courses.Container)
	fallbackString(&c.Courses.Name.Primary, def.Courses.Name.Primary)
	fallbackString(&c.Courses.Name.Secondary, def.Courses.Name.Secondary)
	fallbackString(&c.Courses.Description, def.Courses.Description)
	fallbackString(&c.Courses.MetadataContainer, def.Courses.MetadataContainer)
	fallbackString(&c.Courses.StatusBadge.Selector, def.Courses.StatusBadge.Selector)
	fallbackString(&c.Courses.StatusBadge.CompletedText, def.Courses.StatusBadge.CompletedText)
	fallbackString(&c.Courses.Button, def.Courses.Button)
	fallbackString(&c.Courses.Page.WaitFor, def.Courses.Page.WaitFor)
	fallbackDuration(&c.Courses.Page.Timeout, def.Courses.Page.Timeout)
	fallbackDuration(&c.Courses.Page.RetryTimeout, def.Courses.Page.RetryTimeout)
	fallbackDuration(&c.Courses.Page.Settle, def.Courses.Page.Settle)
	fallbackDuration(&c.Courses.Page.ClickSettle, def.Courses.Page.ClickSettle)
	fallbackString(&c.Courses.SavannahEntryName, def.Courses.SavannahEntryName)
	fallbackList(&c.Courses.AthenaCourseNames, def.Courses.AthenaCourseNames)

	fallbackString(&c.Savannah.CurrentCurriculum, def.Savannah.CurrentCurriculum)
	fallbackString(&c.Savannah.DropdownToggle, def.Savannah.DropdownToggle)
	fallbackString(&c.Savannah.DropdownItems, def.Savannah.DropdownItems)
	fallbackString(&c.Savannah.ItemLink, def.Savannah.ItemLink)
	fallbackString(&c.Savannah.ItemName, def.Savannah.ItemName)
	fallbackString(&c.Savannah.ItemAverage, def.Savannah.ItemAverage)
	fallbackString(&c.Savannah.ActiveCheck, def.Savannah.ActiveCheck)
	fallbackDuration(&c.Savannah.DropdownSettle, def.Savannah.DropdownSettle)

	fallbackString(&c.Debug.Dir, def.Debug.Dir)
}

func fallbackString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func fallbackDuration(field *Duration, def Duration) {
	if *field <= 0 {
		*field = def
	}
}

func fallbackList(field *[]string, def []string) {
	if len(*field) == 0 {
		*field = def
	}
}
