// Package browser loads cookies from locally installed browsers so that
// recipe sites gated behind a login (meal-kit services, paywalled food
// magazines) can still be fetched with the user's existing session.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register all browser readers
)

type Type string

const (
	Auto    Type = "auto"
	Chrome  Type = "chrome"
	Firefox Type = "firefox"
	Safari  Type = "safari"
)

// CookieLoader reads cookies for a target domain from one browser, or
// from any browser in preference order when Auto is selected.
type CookieLoader struct {
	browser     Type
	customPaths map[string]string
}

func NewCookieLoader(browser Type, customPaths map[string]string) *CookieLoader {
	return &CookieLoader{
		browser:     browser,
		customPaths: customPaths,
	}
}

// CookiesFor returns all cookies applicable to the target URL's host.
// An empty result is normal for sites the user never visited.
func (cl *CookieLoader) CookiesFor(ctx context.Context, targetURL string) ([]*http.Cookie, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	if cl.browser != Auto {
		return cl.load(ctx, cl.browser, parsed.Host)
	}

	for _, browser := range []Type{Chrome, Firefox, Safari} {
		if cookies, err := cl.load(ctx, browser, parsed.Host); err == nil && len(cookies) > 0 {
			return cookies, nil
		}
	}
	return nil, nil
}

func (cl *CookieLoader) load(ctx context.Context, browser Type, host string) ([]*http.Cookie, error) {
	var cookies []*http.Cookie

	// A configured profile path pins the browser to one cookie store
	customPath := expandPath(cl.customPaths[string(browser)])

	for cookie, err := range kooky.TraverseCookies(ctx) {
		if err != nil {
			continue
		}
		if !matchesBrowser(cookie.Browser, browser) || !matchesDomain(cookie.Domain, host) {
			continue
		}
		if !pathAllowed(cookie.Browser.FilePath(), customPath) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Domain:   cookie.Domain,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		})
	}

	return cookies, nil
}

func matchesBrowser(info kooky.BrowserInfo, browser Type) bool {
	if browser == Auto {
		return true
	}
	name := strings.ToLower(info.Browser())
	switch browser {
	case Chrome:
		return strings.Contains(name, "chrome") || strings.Contains(name, "chromium")
	case Firefox:
		return strings.Contains(name, "firefox")
	case Safari:
		return strings.Contains(name, "safari")
	}
	return false
}

func matchesDomain(cookieDomain, host string) bool {
	if cookieDomain == "" || host == "" {
		return false
	}
	cookieDomain = strings.TrimPrefix(cookieDomain, ".")
	return cookieDomain == host || strings.HasSuffix(host, "."+cookieDomain)
}

// pathAllowed reports whether a cookie store's file path falls under the
// user-configured profile path. An empty configuration allows every store.
func pathAllowed(storePath, customPath string) bool {
	if customPath == "" {
		return true
	}
	return strings.HasPrefix(storePath, customPath)
}

// expandPath resolves ~/ and Windows environment placeholders in
// configured profile paths.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	if strings.Contains(path, "%LOCALAPPDATA%") {
		return strings.Replace(path, "%LOCALAPPDATA%", os.Getenv("LOCALAPPDATA"), 1)
	}
	if strings.Contains(path, "%APPDATA%") {
		return strings.Replace(path, "%APPDATA%", os.Getenv("APPDATA"), 1)
	}
	return path
}
