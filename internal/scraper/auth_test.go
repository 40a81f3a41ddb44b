package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facebook-extractor/internal/config"
	"facebook-extractor/pkg/types"
)

func sessionCookies() []Cookie {
	return []Cookie{
		{Name: "c_user", Value: "100001234", Domain: ".facebook.com", Path: "/", Secure: true},
		{Name: "xs", Value: "42%3Aabc", Domain: ".facebook.com", Path: "/", Secure: true, HttpOnly: true},
		{Name: "datr", Value: "d4tr", Domain: ".facebook.com", Path: "/"},
	}
}

func newTestAuthManager(t *testing.T, baseURL string, auth config.AuthConfig) *AuthManager {
	t.Helper()
	if auth.CookiesFile == "" {
		auth.CookiesFile = filepath.Join(t.TempDir(), "configs", "cookies.json")
	}
	am, err := NewAuthManager(baseURL, auth, testLogger())
	require.NoError(t, err)
	return am
}

func TestCookieRoundTrip(t *testing.T) {
	am := newTestAuthManager(t, "https://www.facebook.com", config.AuthConfig{})
	require.NoError(t, am.SaveCookies(sessionCookies()))

	info, err := os.Stat(am.auth.CookiesFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cookies, err := am.LoadCookies()
	require.NoError(t, err)
	assert.Equal(t, sessionCookies(), cookies)
	assert.NoError(t, ValidateCookies(cookies))
}

func TestLoadCookiesMissingFile(t *testing.T) {
	am := newTestAuthManager(t, "https://www.facebook.com", config.AuthConfig{})
	_, err := am.LoadCookies()
	assert.Error(t, err)
}

func TestValidateCookies(t *testing.T) {
	cookies := sessionCookies()
	assert.NoError(t, ValidateCookies(cookies))

	assert.ErrorContains(t, ValidateCookies(cookies[1:]), "c_user")

	badUser := sessionCookies()
	badUser[0].Value = "abc"
	assert.ErrorContains(t, ValidateCookies(badUser), "numeric")

	expired := sessionCookies()
	expired[1].Expires = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	assert.ErrorContains(t, ValidateCookies(expired), "expired")
}

func TestCredentials(t *testing.T) {
	am := newTestAuthManager(t, "https://www.facebook.com", config.AuthConfig{})
	_, _, err := am.Credentials()
	assert.ErrorIs(t, err, types.ErrMissingCredentials)

	am = newTestAuthManager(t, "https://www.facebook.com", config.AuthConfig{Email: "a@b.c", Password: "pw"})
	email, password, err := am.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", email)
	assert.Equal(t, "pw", password)
}

func TestValidateAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notifications":
			if r.Header.Get("User-Agent") == "logged-out" {
				http.Redirect(w, r, "/login/?next=notifications", http.StatusFound)
				return
			}
			w.Write([]byte(`<script>{"USER_ID":"100001234"}</script>`))
		case "/login/":
			w.Write([]byte(`<title>Log In</title>`))
		}
	}))
	defer server.Close()

	am := newTestAuthManager(t, server.URL, config.AuthConfig{UserAgent: "test-agent"})
	assert.NoError(t, am.ValidateAuth(context.Background()))

	am = newTestAuthManager(t, server.URL, config.AuthConfig{UserAgent: "logged-out"})
	assert.ErrorContains(t, am.ValidateAuth(context.Background()), "login")
}
