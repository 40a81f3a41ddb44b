package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"facebook-extractor/internal/config"
	"facebook-extractor/internal/database"
	"facebook-extractor/internal/extraction"
	"facebook-extractor/internal/monitoring"
	"facebook-extractor/internal/scraper"
	"facebook-extractor/internal/utils"
)

var (
	configFile   string
	debug        bool
	save         bool
	minReactions int
	outputFile   string
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "scraper extracts Facebook posts and profiles into normalized records.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&save, "save", false, "Save extracted records to PostgreSQL")
	rootCmd.PersistentFlags().IntVar(&minReactions, "min-reactions", 0, "Drop posts with fewer total reactions")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write records to this file instead of stdout")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session holds everything a lookup command needs. close releases the
// browser, database and log file in reverse order.
type session struct {
	cfg     *config.Config
	logger  *logrus.Logger
	client  *scraper.Client
	monitor *monitoring.Monitor
	db      *database.DB
	closers []func()
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.File, debug)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, closers: []func(){closeLog}}

	if save {
		db, err := database.NewConnection(&cfg.Database, logger)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.closers = append(s.closers, func() { db.Close() })
		if err := db.RunMigrations(ctx); err != nil {
			s.close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		s.db = db
	}

	store, err := scraper.NewMediaStore(cfg.Media.TempDir)
	if err != nil {
		s.close()
		return nil, err
	}

	auth, err := scraper.NewAuthManager(cfg.Facebook.BaseURL, cfg.Facebook.Auth, logger)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to create auth manager: %w", err)
	}

	browser, err := scraper.NewBrowser(cfg.Facebook, auth, store, logger)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	s.closers = append(s.closers, func() { browser.Close() })

	if err := browser.Authenticate(ctx); err != nil {
		s.close()
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	engine := extraction.NewEngine(logger)
	media := scraper.NewMediaDownloader(cfg.Media, cfg.Facebook.Auth.UserAgent, store, logger)

	users := scraper.NewUserScraper(browser, engine, media, logger)
	authorLookup := users
	if cfg.Scraper.SkipUserLookup {
		authorLookup = nil
	}
	posts := scraper.NewPostScraper(browser, engine, media, authorLookup, scraper.ScreenshotOptions{
		Enabled:  !cfg.Screenshot.Disabled,
		Attempts: cfg.Screenshot.Attempts,
		Delay:    cfg.Screenshot.DelayDuration(),
	}, logger)

	s.monitor = monitoring.NewMonitor(logger, cfg.Monitoring.MetricsFile)
	limiter := scraper.NewLookupLimiter(cfg.Facebook.LookupInterval())
	s.client = scraper.NewClient(posts, users, limiter, s.monitor, logger)
	return s, nil
}
