// Package main provides the ehubscan command line application. It signs
// into the ALX eHub portal with a persisted browser session, discovers
// the courses visible on the dashboard and its linked sub-platforms, and
// writes a JSON discovery report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/ehubscan/pkg/auth"
	"github.com/entrhq/ehubscan/pkg/browser"
	appconfig "github.com/entrhq/ehubscan/pkg/config"
	"github.com/entrhq/ehubscan/pkg/courses"
	"github.com/entrhq/ehubscan/pkg/logging"
)

const (
	version = "0.1.0" // Version of the ehubscan scraper

	defaultOutput = "data/courses_report.json"
)

// Config holds the application configuration
type Config struct {
	Email       string
	Password    string
	ConfigPath  string
	Output      string
	SessionsDir string
	Headless    bool
	Explore     bool
	Debug       bool
	Interactive bool
	ShowVersion bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("ehubscan v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if runErr := run(ctx, config); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

// parseFlags parses command line flags and environment variables
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.Email, "email", os.Getenv("EHUB_EMAIL"), "Portal login email (or set EHUB_EMAIL env var)")
	flag.StringVar(&config.Password, "password", os.Getenv("EHUB_PASSWORD"), "Portal login password (or set EHUB_PASSWORD env var)")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to YAML config file overriding portal defaults (optional)")
	flag.StringVar(&config.Output, "output", defaultOutput, "Path for the JSON discovery report")
	flag.StringVar(&config.SessionsDir, "sessions-dir", auth.DefaultSessionsDir, "Directory holding persisted login sessions")
	flag.BoolVar(&config.Headless, "headless", true, "Run the browser without a visible window")
	flag.BoolVar(&config.Explore, "explore", true, "Follow sub-platform entry courses (Savannah, Athena)")
	flag.BoolVar(&config.Debug, "debug", false, "Save page snapshots and verbose logs")
	flag.BoolVar(&config.Interactive, "interactive", false, "Start the interactive menu instead of a one-shot scan")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ehubscan - ALX eHub course discovery\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ehubscan [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  EHUB_EMAIL       Portal login email\n")
		fmt.Fprintf(os.Stderr, "  EHUB_PASSWORD    Portal login password\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ehubscan                                 # One-shot scan with report\n")
		fmt.Fprintf(os.Stderr, "  ehubscan -headless=false -debug          # Watch the browser, keep snapshots\n")
		fmt.Fprintf(os.Stderr, "  ehubscan -explore=false -output out.json # Dashboard only\n")
		fmt.Fprintf(os.Stderr, "  ehubscan -interactive                    # Menu-driven session\n")
	}

	flag.Parse()
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	if c.Email == "" {
		return fmt.Errorf("login email is required. Set EHUB_EMAIL environment variable or use -email flag")
	}
	if c.Password == "" {
		return fmt.Errorf("login password is required. Set EHUB_PASSWORD environment variable or use -password flag")
	}
	return nil
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	cfg, err := appconfig.Load(config.ConfigPath)
	if err != nil {
		return err
	}
	if config.Debug {
		cfg.Debug.Enabled = true
	}

	logger, err := logging.New("ehubscan", config.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}
	defer logger.Close()
	logger.Infof("ehubscan v%s starting (run %s)", version, logging.RunID())

	manager := browser.NewManager()
	session, err := manager.Start(config.Headless)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}()

	store := auth.NewStore(config.SessionsDir, cfg.Auth.URLs.Dashboard, logger)
	authenticator, err := auth.NewAuthenticator(session, store, cfg, logger, config.Email, config.Password)
	if err != nil {
		return err
	}

	app := &app{
		cfg:           cfg,
		log:           logger,
		session:       session,
		store:         store,
		authenticator: authenticator,
		finder:        courses.NewFinder(session, cfg, logger),
		output:        config.Output,
		explore:       config.Explore,
	}

	if config.Interactive {
		return runMenu(ctx, app)
	}
	return app.scan(ctx)
}

// scan performs one authenticate-discover-report cycle.
func (a *app) scan(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result := a.authenticator.EnsureLoggedIn()
	if !result.OK() {
		return fmt.Errorf("authentication failed: %s", result.Message)
	}
	fmt.Printf("Signed in as %s (%s)\n", result.Identity, result.Status)

	if err := ctx.Err(); err != nil {
		return err
	}

	list, err := a.finder.Discover(a.explore)
	if err != nil {
		return err
	}
	fmt.Println(summarize(list))

	if err := a.saveReport(list); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", a.output)
	return nil
}
