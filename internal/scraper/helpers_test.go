package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"facebook-extractor/internal/extraction"
	"facebook-extractor/pkg/types"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// pageHTML renders an extraction fixture the way Facebook embeds its data,
// followed by extra markup.
func pageHTML(t *testing.T, fixture, extra string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("<html><head><title>Facebook</title></head><body>")
	b.WriteString(extra)
	if fixture != "" {
		data, err := os.ReadFile(filepath.Join("..", "extraction", "testdata", fixture))
		require.NoError(t, err)
		for _, obj := range gjson.ParseBytes(data).Array() {
			b.WriteString(`<script type="application/json">{"require":[["ScheduledServerJS","handle",null,[{"__bbox":{"result":{"data":`)
			b.WriteString(obj.Raw)
			b.WriteString(`}}}]]]}</script>`)
		}
	}
	b.WriteString("</body></html>")
	return b.String()
}

type fakePage struct {
	url       string
	title     string
	html      string
	failShots int
	shots     int
	closed    bool
	browser   *fakeBrowser
}

func (p *fakePage) URL() string   { return p.url }
func (p *fakePage) Title() string { return p.title }
func (p *fakePage) HTML() string  { return p.html }

func (p *fakePage) Screenshot(ctx context.Context) (string, error) {
	p.shots++
	if p.shots <= p.failShots {
		return "", errors.New("capture timed out")
	}
	return "/tmp/forki/screenshot.png", nil
}

func (p *fakePage) Close() error {
	if !p.closed {
		p.closed = true
		p.browser.mu.Lock()
		p.browser.open--
		p.browser.mu.Unlock()
	}
	return nil
}

type fakeBrowser struct {
	mu      sync.Mutex
	pages   map[string]*fakePage
	errs    map[string]error
	visits  []string
	open    int
	maxOpen int
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{pages: map[string]*fakePage{}, errs: map[string]error{}}
}

func (b *fakeBrowser) add(url, html string) *fakePage {
	page := &fakePage{url: url, title: "Facebook", html: html, browser: b}
	b.pages[url] = page
	return page
}

func (b *fakeBrowser) Authenticate(ctx context.Context) error { return nil }

func (b *fakeBrowser) Visit(ctx context.Context, url string) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visits = append(b.visits, url)
	if err, ok := b.errs[url]; ok {
		return nil, err
	}
	page, ok := b.pages[url]
	if !ok {
		return nil, &types.RetryableError{Op: "load page", Err: fmt.Errorf("%s: navigation timed out", url)}
	}
	page.closed = false
	b.open++
	if b.open > b.maxOpen {
		b.maxOpen = b.open
	}
	return page, nil
}

func (b *fakeBrowser) Close() error { return nil }

type fakeMedia struct {
	retrieved []string
	err       error
}

func (m *fakeMedia) Retrieve(ctx context.Context, url string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.retrieved = append(m.retrieved, url)
	return "/tmp/forki/" + path.Base(url), nil
}

type lookupReport struct {
	kind  string
	sieve string
	err   error
}

type recordingObserver struct {
	reports []lookupReport
}

func (o *recordingObserver) ObserveLookup(kind, sieve string, err error, elapsed time.Duration) {
	o.reports = append(o.reports, lookupReport{kind: kind, sieve: sieve, err: err})
}

func newTestPostScraper(browser Browser, media MediaRetriever, withUsers bool) *PostScraper {
	engine := extraction.NewEngine(testLogger())
	var users *UserScraper
	if withUsers {
		users = NewUserScraper(browser, engine, media, testLogger())
	}
	ps := NewPostScraper(browser, engine, media, users, ScreenshotOptions{
		Enabled:  true,
		Attempts: 5,
		Delay:    5 * time.Second,
	}, testLogger())
	ps.sleep = func(context.Context, time.Duration) error { return nil }
	return ps
}

const unavailableMarkup = `<div><span>This Content Isn't Available Right Now</span></div>`
