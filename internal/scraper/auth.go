package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"facebook-extractor/internal/config"
)

const cookieStoreKey = "facebook.com"

type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HttpOnly bool   `json:"httpOnly"`
	Expires  string `json:"expires,omitempty"`
}

func (c Cookie) expiry() (time.Time, bool) {
	if c.Expires == "" {
		return time.Time{}, false
	}
	expires, err := time.Parse(time.RFC3339, c.Expires)
	if err != nil {
		return time.Time{}, false
	}
	return expires, true
}

// AuthManager owns the saved session cookies and the fallback login.
type AuthManager struct {
	client  *resty.Client
	jar     *cookiejar.Jar
	baseURL string
	auth    config.AuthConfig
	logger  *logrus.Logger
}

func NewAuthManager(baseURL string, auth config.AuthConfig, logger *logrus.Logger) (*AuthManager, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := resty.New().
		SetCookieJar(jar).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if auth.UserAgent != "" {
		client.SetHeader("User-Agent", auth.UserAgent)
	}

	return &AuthManager{
		client:  client,
		jar:     jar,
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
		logger:  logger,
	}, nil
}

// LoadCookies reads the cookie file and primes the validation client with it.
func (am *AuthManager) LoadCookies() ([]Cookie, error) {
	am.logger.Info("Loading cookies from file...")

	if _, err := os.Stat(am.auth.CookiesFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("cookies file not found: %s", am.auth.CookiesFile)
	}

	data, err := os.ReadFile(am.auth.CookiesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}

	var cookieStore map[string][]Cookie
	if err := json.Unmarshal(data, &cookieStore); err != nil {
		return nil, fmt.Errorf("failed to parse cookies file: %w", err)
	}

	cookies, exists := cookieStore[cookieStoreKey]
	if !exists {
		return nil, fmt.Errorf("no Facebook cookies found in cookies file")
	}

	siteURL, err := url.Parse(am.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	var httpCookies []*http.Cookie
	for _, cookie := range cookies {
		httpCookie := &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		}
		if expires, ok := cookie.expiry(); ok {
			httpCookie.Expires = expires
		}
		httpCookies = append(httpCookies, httpCookie)
	}
	am.jar.SetCookies(siteURL, httpCookies)

	am.logger.Infof("Loaded %d cookies for Facebook", len(cookies))
	return cookies, nil
}

// SaveCookies replaces the cookie file with the cookies of a fresh session.
func (am *AuthManager) SaveCookies(cookies []Cookie) error {
	data, err := json.MarshalIndent(map[string][]Cookie{cookieStoreKey: cookies}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	if dir := filepath.Dir(am.auth.CookiesFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cookies directory: %w", err)
		}
	}

	if err := os.WriteFile(am.auth.CookiesFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookies file: %w", err)
	}

	am.logger.Infof("Saved %d cookies to file", len(cookies))
	return nil
}

func (am *AuthManager) Credentials() (string, string, error) {
	return am.auth.Credentials()
}

// ValidateAuth requests the notifications page with the loaded cookies and
// reports whether Facebook served a logged-in page.
func (am *AuthManager) ValidateAuth(ctx context.Context) error {
	am.logger.Info("Validating Facebook authentication...")

	resp, err := am.client.R().SetContext(ctx).Get(am.baseURL + "/notifications")
	if err != nil {
		return fmt.Errorf("failed to validate authentication: %w", err)
	}

	finalURL := resp.Request.URL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}
	am.logger.Infof("Validation response: Status=%d, URL=%s", resp.StatusCode(), finalURL)

	body := resp.String()
	am.logger.Debugf("Response body length: %d", len(body))

	switch {
	case strings.Contains(body, "\"USER_ID\"") || strings.Contains(body, "\"viewer\""):
		am.logger.Info("Authentication validated successfully")
		return nil
	case strings.Contains(body, "checkpoint"):
		return fmt.Errorf("authentication failed: account requires checkpoint verification")
	case strings.Contains(body, "captcha"):
		return fmt.Errorf("authentication failed: captcha challenge required")
	case strings.Contains(finalURL, "login") || strings.Contains(body, "Log In"):
		return fmt.Errorf("authentication failed: redirected to login page")
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		am.logger.Info("Authentication validated successfully")
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("authentication failed: unauthorized (401) - invalid cookies")
	case http.StatusForbidden:
		return fmt.Errorf("authentication failed: forbidden (403) - account may be restricted")
	case http.StatusTooManyRequests:
		return fmt.Errorf("authentication failed: rate limited (429) - too many requests")
	default:
		return fmt.Errorf("authentication failed: status code %d", resp.StatusCode())
	}
}

// ExtractCookiesFromBrowser prints how to export session cookies by hand.
func ExtractCookiesFromBrowser() {
	fmt.Println(`
To extract cookies from your browser:

1. Open Facebook in your browser and log in
2. Open Developer Tools (F12)
3. Go to Application/Storage tab
4. Click on Cookies -> https://www.facebook.com
5. Copy the following cookie values:

Required cookies:
- c_user: Your user ID
- xs: Session token
- datr: Device authentication token

6. Save them to the cookies file as {"facebook.com": [{"name": ..., "value": ...}]}`)
}

// ValidateCookies checks that cookies carry a usable Facebook session.
func ValidateCookies(cookies []Cookie) error {
	requiredCookies := []string{"c_user", "xs", "datr"}
	cookieMap := make(map[string]Cookie)
	for _, cookie := range cookies {
		cookieMap[cookie.Name] = cookie
	}

	for _, required := range requiredCookies {
		cookie, exists := cookieMap[required]
		switch {
		case !exists:
			return fmt.Errorf("missing required cookie: %s", required)
		case cookie.Value == "":
			return fmt.Errorf("empty value for required cookie: %s", required)
		case required == "c_user" && !isNumeric(cookie.Value):
			return fmt.Errorf("c_user cookie should be numeric, got: %s", cookie.Value)
		}
		if expires, ok := cookie.expiry(); ok && expires.Before(time.Now()) {
			return fmt.Errorf("cookie %s expired at %s", required, cookie.Expires)
		}
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
