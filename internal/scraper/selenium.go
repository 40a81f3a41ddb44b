package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/firefox"

	"facebook-extractor/internal/config"
	"facebook-extractor/pkg/types"
)

// SeleniumBrowser drives Firefox through geckodriver. It holds a single
// window, so a page is reset to about:blank when it is closed.
type SeleniumBrowser struct {
	driver  selenium.WebDriver
	service *selenium.Service
	auth    *AuthManager
	store   *MediaStore
	baseURL string
	logger  *logrus.Logger
}

func NewSeleniumBrowser(cfg config.FacebookConfig, auth *AuthManager, store *MediaStore, logger *logrus.Logger) (*SeleniumBrowser, error) {
	caps := selenium.Capabilities{
		"browserName": "firefox",
	}

	args := []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-gpu"}
	if cfg.Headless {
		args = append(args, "--headless")
	}
	prefs := map[string]interface{}{
		"dom.webdriver.enabled":  false,
		"useAutomationExtension": false,
	}
	if cfg.Auth.UserAgent != "" {
		prefs["general.useragent.override"] = cfg.Auth.UserAgent
	}
	caps.AddFirefox(firefox.Capabilities{Args: args, Prefs: prefs})

	selenium.SetDebug(false)
	service, err := selenium.NewGeckoDriverService(cfg.DriverPath, cfg.SeleniumPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start GeckoDriver service: %w", err)
	}

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d", cfg.SeleniumPort))
	if err != nil {
		service.Stop()
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	if err := driver.SetPageLoadTimeout(cfg.PageTimeout()); err != nil {
		logger.Warnf("Failed to set page load timeout: %v", err)
	}
	logger.Info("Using Firefox (selenium) for browser automation")

	return &SeleniumBrowser{
		driver:  driver,
		service: service,
		auth:    auth,
		store:   store,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}, nil
}

func (b *SeleniumBrowser) Authenticate(ctx context.Context) error {
	cookies, err := b.auth.LoadCookies()
	if err != nil {
		b.logger.WithError(err).Warn("Continuing without saved cookies")
	}

	// cookies can only be set once the domain is loaded
	if err := b.driver.Get(b.baseURL); err != nil {
		return &types.RetryableError{Op: "authenticate", Err: err}
	}
	for _, cookie := range cookies {
		domain := cookie.Domain
		if domain == "" {
			domain = ".facebook.com"
		}
		if !strings.HasPrefix(domain, ".") && domain != "facebook.com" {
			domain = "." + domain
		}
		err := b.driver.AddCookie(&selenium.Cookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: domain,
			Path:   "/",
			Secure: cookie.Secure,
		})
		if err != nil {
			b.logger.Warnf("Failed to set cookie %s: %v", cookie.Name, err)
		}
	}
	if err := b.driver.Refresh(); err != nil {
		return &types.RetryableError{Op: "authenticate", Err: err}
	}

	title, err := b.driver.Title()
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
	if err := b.login(email, password); err != nil {
		return &types.RetryableError{Op: "log in", Err: err}
	}
	if err := sleepContext(ctx, 5*time.Second); err != nil {
		return err
	}

	if title, err = b.driver.Title(); err != nil {
		return &types.RetryableError{Op: "log in", Err: err}
	}
	if isLoginTitle(title) {
		return fmt.Errorf("%w: login was rejected", types.ErrMissingCredentials)
	}

	browserCookies, err := b.driver.GetCookies()
	if err != nil {
		return fmt.Errorf("failed to read session cookies: %w", err)
	}
	fresh := make([]Cookie, 0, len(browserCookies))
	for _, c := range browserCookies {
		cookie := Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path, Secure: c.Secure}
		if c.Expiry > 0 {
			cookie.Expires = time.Unix(int64(c.Expiry), 0).UTC().Format(time.RFC3339)
		}
		fresh = append(fresh, cookie)
	}
	return b.auth.SaveCookies(fresh)
}

func (b *SeleniumBrowser) login(email, password string) error {
	field, err := b.driver.FindElement(selenium.ByName, "email")
	if err != nil {
		return fmt.Errorf("email field not found: %w", err)
	}
	if err := field.SendKeys(email); err != nil {
		return err
	}
	if field, err = b.driver.FindElement(selenium.ByName, "pass"); err != nil {
		return fmt.Errorf("password field not found: %w", err)
	}
	if err := field.SendKeys(password); err != nil {
		return err
	}
	button, err := b.driver.FindElement(selenium.ByName, "login")
	if err != nil {
		return fmt.Errorf("login button not found: %w", err)
	}
	return button.Click()
}

func (b *SeleniumBrowser) Visit(ctx context.Context, target string) (Page, error) {
	if err := b.driver.Get(target); err != nil {
		return nil, &types.RetryableError{Op: "load page", Err: fmt.Errorf("%s: %w", target, err)}
	}
	if err := sleepContext(ctx, pageSettleDelay); err != nil {
		return nil, err
	}

	html, err := b.driver.PageSource()
	if err != nil {
		return nil, &types.RetryableError{Op: "load page", Err: fmt.Errorf("failed to get page source: %w", err)}
	}
	title, err := b.driver.Title()
	if err != nil {
		return nil, &types.RetryableError{Op: "load page", Err: err}
	}
	location, err := b.driver.CurrentURL()
	if err != nil {
		location = target
	}

	b.logger.WithFields(logrus.Fields{"url": location, "bytes": len(html)}).Debug("Loaded page")
	return &seleniumPage{driver: b.driver, store: b.store, url: location, title: title, html: html}, nil
}

func (b *SeleniumBrowser) Close() error {
	var err error
	if b.driver != nil {
		err = b.driver.Quit()
	}
	if b.service != nil {
		if stopErr := b.service.Stop(); err == nil {
			err = stopErr
		}
	}
	return err
}

type seleniumPage struct {
	driver selenium.WebDriver
	store  *MediaStore
	url    string
	title  string
	html   string
}

func (p *seleniumPage) URL() string   { return p.url }
func (p *seleniumPage) Title() string { return p.title }
func (p *seleniumPage) HTML() string  { return p.html }

func (p *seleniumPage) Screenshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	buf, err := p.driver.Screenshot()
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return p.store.Save(buf, ".png")
}

func (p *seleniumPage) Close() error {
	return p.driver.Get("about:blank")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
