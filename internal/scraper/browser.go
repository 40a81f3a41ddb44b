package scraper

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"facebook-extractor/internal/config"
	"facebook-extractor/pkg/types"
)

// ChromeBrowser drives a local Chrome through the DevTools protocol. Every
// visit gets its own tab.
type ChromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	auth        *AuthManager
	store       *MediaStore
	baseURL     string
	timeout     time.Duration
	logger      *logrus.Logger
}

func NewChromeBrowser(cfg config.FacebookConfig, auth *AuthManager, store *MediaStore, logger *logrus.Logger) (*ChromeBrowser, error) {
	if !isChromeAvailable() {
		return nil, fmt.Errorf("no suitable browser found for automation")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1366, 2048),
	)
	if cfg.Auth.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.Auth.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))

	// first Run starts the browser process
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	logger.Info("Using Chrome for browser automation")

	return &ChromeBrowser{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		auth:        auth,
		store:       store,
		baseURL:     cfg.BaseURL,
		timeout:     cfg.PageTimeout(),
		logger:      logger,
	}, nil
}

// newTab opens a tab that is closed when the returned func runs or ctx ends.
func (b *ChromeBrowser) newTab(ctx context.Context) (context.Context, context.CancelFunc) {
	tab, cancelTab := chromedp.NewContext(b.ctx)
	stop := context.AfterFunc(ctx, cancelTab)
	return tab, func() {
		stop()
		cancelTab()
	}
}

// Authenticate applies saved cookies and falls back to the credential login
// when Facebook still shows the login page.
func (b *ChromeBrowser) Authenticate(ctx context.Context) error {
	cookies, err := b.auth.LoadCookies()
	if err != nil {
		b.logger.WithError(err).Warn("Continuing without saved cookies")
	}

	tab, closeTab := b.newTab(ctx)
	defer closeTab()
	runCtx, cancel := context.WithTimeout(tab, b.timeout)
	defer cancel()

	var title string
	err = chromedp.Run(runCtx,
		chromedp.Navigate(b.baseURL),
		b.setCookies(cookies),
		chromedp.Reload(),
		chromedp.Title(&title),
	)
	if err != nil {
		return &types.RetryableError{Op: "authenticate", Err: err}
	}
	if !isLoginTitle(title) {
		b.logger.Info("Session cookies accepted")
		return nil
	}

	email, password, err := b.auth.Credentials()
	if err != nil {
		return err
	}
	b.logger.Info("Saved cookies rejected, logging in with credentials")

	err = chromedp.Run(runCtx,
		chromedp.WaitVisible(`input[name="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="email"]`, email, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="pass"]`, password, chromedp.ByQuery),
		chromedp.Click(`button[name="login"]`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
		chromedp.Title(&title),
	)
	if err != nil {
		return &types.RetryableError{Op: "log in", Err: err}
	}
	if isLoginTitle(title) {
		return fmt.Errorf("%w: login was rejected", types.ErrMissingCredentials)
	}

	var fresh []Cookie
	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		browserCookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		fresh = fromNetworkCookies(browserCookies)
		return nil
	}))
	if err != nil {
		return fmt.Errorf("failed to read session cookies: %w", err)
	}
	return b.auth.SaveCookies(fresh)
}

func (b *ChromeBrowser) setCookies(cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, cookie := range cookies {
			domain := cookie.Domain
			if domain == "" {
				domain = ".facebook.com"
			}
			path := cookie.Path
			if path == "" {
				path = "/"
			}
			err := network.SetCookie(cookie.Name, cookie.Value).
				WithDomain(domain).
				WithPath(path).
				WithSecure(cookie.Secure).
				WithHTTPOnly(cookie.HttpOnly).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to set cookie %s: %w", cookie.Name, err)
			}
		}
		return nil
	})
}

func fromNetworkCookies(cookies []*network.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if !strings.Contains(c.Domain, "facebook.com") {
			continue
		}
		cookie := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			cookie.Expires = time.Unix(int64(c.Expires), 0).UTC().Format(time.RFC3339)
		}
		out = append(out, cookie)
	}
	return out
}

func (b *ChromeBrowser) Visit(ctx context.Context, target string) (Page, error) {
	tab, closeTab := b.newTab(ctx)
	runCtx, cancel := context.WithTimeout(tab, b.timeout)
	defer cancel()

	var html, title, location string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(pageSettleDelay),
		chromedp.Location(&location),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		closeTab()
		return nil, &types.RetryableError{Op: "load page", Err: fmt.Errorf("%s: %w", target, err)}
	}

	b.logger.WithFields(logrus.Fields{"url": location, "bytes": len(html)}).Debug("Loaded page")
	return &chromePage{
		ctx:     tab,
		close:   closeTab,
		url:     location,
		title:   title,
		html:    html,
		store:   b.store,
		timeout: b.timeout,
	}, nil
}

func (b *ChromeBrowser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

type chromePage struct {
	ctx     context.Context
	close   context.CancelFunc
	url     string
	title   string
	html    string
	store   *MediaStore
	timeout time.Duration
}

func (p *chromePage) URL() string   { return p.url }
func (p *chromePage) Title() string { return p.title }
func (p *chromePage) HTML() string  { return p.html }

func (p *chromePage) Screenshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	runCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return p.store.Save(buf, ".png")
}

func (p *chromePage) Close() error {
	p.close()
	return nil
}

func isChromeAvailable() bool {
	paths := []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}
	for _, path := range paths {
		if _, err := exec.LookPath(path); err == nil {
			return true
		}
	}
	return false
}
