package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"facebook-extractor/internal/extraction"
	"facebook-extractor/pkg/types"
)

const unhandledSampleKeys = 20

var supportedHosts = map[string]bool{
	"facebook.com":     true,
	"www.facebook.com": true,
	"m.facebook.com":   true,
	"web.facebook.com": true,
}

// ValidateURL checks that rawURL points at Facebook and returns the desktop
// form of it.
func ValidateURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidURL, rawURL)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidURL, rawURL)
	}
	host := strings.ToLower(u.Hostname())
	if !supportedHosts[host] {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidURL, rawURL)
	}
	if host == "m.facebook.com" || host == "facebook.com" {
		host = "www.facebook.com"
	}
	u.Scheme = "https"
	u.Host = host
	return u.String(), nil
}

type ScreenshotOptions struct {
	Enabled  bool
	Attempts int
	Delay    time.Duration
}

// PostScraper turns a post URL into a PostRecord.
type PostScraper struct {
	browser    Browser
	engine     *extraction.Engine
	media      MediaRetriever
	users      *UserScraper
	screenshot ScreenshotOptions
	logger     *logrus.Logger
	sleep      func(context.Context, time.Duration) error
}

// NewPostScraper wires the assembler. users may be nil to skip author lookups.
func NewPostScraper(browser Browser, engine *extraction.Engine, media MediaRetriever, users *UserScraper, screenshot ScreenshotOptions, logger *logrus.Logger) *PostScraper {
	if screenshot.Attempts < 1 {
		screenshot.Attempts = 1
	}
	return &PostScraper{
		browser:    browser,
		engine:     engine,
		media:      media,
		users:      users,
		screenshot: screenshot,
		logger:     logger,
		sleep:      sleepContext,
	}
}

func (ps *PostScraper) Parse(ctx context.Context, rawURL string) (*types.PostRecord, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	page, err := ps.browser.Visit(ctx, target)
	if err != nil {
		return nil, err
	}
	record, err := ps.assemble(ctx, page, rawURL)
	if closeErr := page.Close(); closeErr != nil {
		ps.logger.WithError(closeErr).Warn("Failed to close page")
	}
	if err != nil {
		return nil, err
	}

	if err := ps.lookupAuthor(ctx, record); err != nil {
		return nil, err
	}

	if err := record.Validate(); err != nil {
		return nil, &types.SieveError{Sieve: record.Sieve, Field: "record", Err: err}
	}

	ps.logger.WithFields(logrus.Fields{
		"url":   rawURL,
		"id":    record.ID,
		"shape": record.Shape,
		"sieve": record.Sieve,
	}).Info("Post extracted")
	return record, nil
}

func (ps *PostScraper) assemble(ctx context.Context, page Page, rawURL string) (*types.PostRecord, error) {
	html := page.HTML()
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}
	if err := CheckAvailability(doc); err != nil {
		return nil, err
	}

	result, err := ps.engine.Run(html)
	if err != nil {
		return nil, err
	}

	e := result.Extraction
	if e == nil && HasElementText(doc, "h1", "Watch") {
		e, err = extraction.ExtractWatchPage(result.Objects, extraction.WatchPage{
			URL:      page.URL(),
			NumViews: findViewCount(doc),
		})
		if err != nil {
			return nil, err
		}
	}
	if e == nil {
		unhandled := &types.UnhandledContentError{
			URL:       rawURL,
			Shape:     result.Shape.String(),
			Fragments: result.Fragments,
			Sample:    extraction.TopLevelKeys(result.Objects, unhandledSampleKeys),
		}
		ps.logger.WithFields(logrus.Fields{
			"url":       rawURL,
			"shape":     unhandled.Shape,
			"fragments": unhandled.Fragments,
			"keys":      strings.Join(unhandled.Sample, ","),
		}).Warn("No sieve matched the page")
		return nil, unhandled
	}

	record := e.Record(rawURL)
	if err := ps.retrieveMedia(ctx, record); err != nil {
		return nil, err
	}

	if ps.screenshot.Enabled {
		if record.ScreenshotFile, err = ps.captureScreenshot(ctx, page); err != nil {
			return nil, err
		}
	}
	return record, nil
}

func (ps *PostScraper) retrieveMedia(ctx context.Context, record *types.PostRecord) error {
	var err error
	if record.ImageFiles, err = ps.retrieveAll(ctx, record.ImageURLs); err != nil {
		return err
	}
	if record.VideoFiles, err = ps.retrieveAll(ctx, record.VideoURLs); err != nil {
		return err
	}
	if record.VideoPreviewImageFiles, err = ps.retrieveAll(ctx, record.VideoPreviewImageURLs); err != nil {
		return err
	}
	if record.GalleryImageFiles, err = ps.retrieveAll(ctx, record.GalleryImageURLs); err != nil {
		return err
	}
	record.ImageFile = first(record.ImageFiles)
	record.VideoFile = first(record.VideoFiles)
	record.VideoPreviewImageFile = first(record.VideoPreviewImageFiles)
	return nil
}

func (ps *PostScraper) retrieveAll(ctx context.Context, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	files := make([]string, 0, len(urls))
	for _, u := range urls {
		file, err := ps.media.Retrieve(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve media: %w", err)
		}
		files = append(files, file)
	}
	return files, nil
}

// captureScreenshot retries with a fixed delay; running out of attempts is
// reported as retryable.
func (ps *PostScraper) captureScreenshot(ctx context.Context, page Page) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= ps.screenshot.Attempts; attempt++ {
		file, err := page.Screenshot(ctx)
		if err == nil {
			return file, nil
		}
		lastErr = err
		ps.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err,
		}).Warn("Screenshot failed")

		if attempt < ps.screenshot.Attempts {
			if err := ps.sleep(ctx, ps.screenshot.Delay); err != nil {
				return "", err
			}
		}
	}
	return "", &types.RetryableError{Op: "screenshot", Err: lastErr}
}

// lookupAuthor attaches the author profile. Profiles that cannot be read
// leave User nil; session and transient failures fail the post.
func (ps *PostScraper) lookupAuthor(ctx context.Context, record *types.PostRecord) error {
	if ps.users == nil || record.ProfileLink == "" {
		return nil
	}

	user, err := ps.users.Parse(ctx, record.ProfileLink)
	switch {
	case err == nil:
		record.User = user
	case errors.Is(err, types.ErrContentUnavailable),
		errors.Is(err, types.ErrInvalidURL),
		errors.Is(err, types.ErrUnhandledContent):
		ps.logger.WithFields(logrus.Fields{
			"profile": record.ProfileLink,
			"error":   err,
		}).Warn("Author lookup failed, keeping post without user")
	default:
		return fmt.Errorf("failed to look up author: %w", err)
	}
	return nil
}

func first(files []string) string {
	if len(files) == 0 {
		return ""
	}
	return files[0]
}
