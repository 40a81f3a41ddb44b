package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"facebook-extractor/internal/config"
)

const pageSettleDelay = 3 * time.Second

// Browser is an authenticated browsing session. Lookups visit one page at a
// time and close it before the next visit.
type Browser interface {
	Authenticate(ctx context.Context) error
	Visit(ctx context.Context, url string) (Page, error)
	Close() error
}

// Page is a rendered page, captured once on load.
type Page interface {
	URL() string
	Title() string
	HTML() string
	Screenshot(ctx context.Context) (string, error)
	Close() error
}

// MediaRetriever downloads a media URL and returns the local file path.
type MediaRetriever interface {
	Retrieve(ctx context.Context, url string) (string, error)
}

// Observer is told about every finished lookup.
type Observer interface {
	ObserveLookup(kind, sieve string, err error, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveLookup(string, string, error, time.Duration) {}

// NewBrowser starts the session backend named by cfg.Browser.
func NewBrowser(cfg config.FacebookConfig, auth *AuthManager, store *MediaStore, logger *logrus.Logger) (Browser, error) {
	switch strings.ToLower(cfg.Browser) {
	case "", "chrome", "chromium":
		return NewChromeBrowser(cfg, auth, store, logger)
	case "selenium", "firefox":
		return NewSeleniumBrowser(cfg, auth, store, logger)
	default:
		return nil, fmt.Errorf("unsupported browser %q", cfg.Browser)
	}
}

func isLoginTitle(title string) bool {
	return strings.Contains(strings.ToLower(title), "log in")
}
