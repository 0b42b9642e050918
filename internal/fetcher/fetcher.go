package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeStatic Mode = "static"
	ModeJS     Mode = "javascript"
)

type Options struct {
	Mode         Mode
	Timeout      time.Duration
	UserAgent    string
	BrowserAgent string
	Cookies      []*http.Cookie
}

type Result struct {
	HTML   string
	URL    string
	UsedJS bool
}

// Fetcher downloads recipe pages. Static HTTP is the fast path; pages
// that render their content client-side go through headless Chrome.
type Fetcher struct {
	client *http.Client
	agents *UserAgentSelector
}

func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		agents: NewUserAgentSelector(),
	}
}

// SetFollowRedirects disables or re-enables redirect following on the
// static client.
func (f *Fetcher) SetFollowRedirects(follow bool) {
	if follow {
		f.client.CheckRedirect = nil
		return
	}
	f.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string, opts Options) (*Result, error) {
	switch opts.Mode {
	case ModeStatic:
		return f.fetchStatic(ctx, url, opts)
	case ModeJS:
		return f.fetchWithJS(ctx, url, opts)
	}

	// Auto mode: try static first, render only when the page looks
	// JS-dependent.
	result, err := f.fetchStatic(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	if needsJSRendering(result.HTML) {
		return f.fetchWithJS(ctx, url, opts)
	}
	return result, nil
}

func (f *Fetcher) fetchStatic(ctx context.Context, url string, opts Options) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Custom user agent takes precedence, then the browser-agent pool
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = f.agents.GetUserAgent(opts.BrowserAgent)
	}
	req.Header.Set("User-Agent", userAgent)

	// Headers that make the request look like a real browser; recipe
	// sites are aggressive about blocking plain clients
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")

	for _, cookie := range opts.Cookies {
		req.AddCookie(cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Result{
		HTML: string(body),
		URL:  url,
	}, nil
}

func (f *Fetcher) fetchWithJS(ctx context.Context, url string, opts Options) (*Result, error) {
	chromeCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	if opts.Timeout > 0 {
		chromeCtx, cancel = context.WithTimeout(chromeCtx, opts.Timeout)
		defer cancel()
	}

	var html string
	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	}

	if err := chromedp.Run(chromeCtx, tasks...); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return &Result{
		HTML:   html,
		URL:    url,
		UsedJS: true,
	}, nil
}

// jsFrameworkMarkers hint that the page body is assembled client-side.
var jsFrameworkMarkers = []string{
	"data-reactroot", "ng-app", "v-app", "__NEXT_DATA__", "__NUXT__",
}

// needsJSRendering guesses whether a statically fetched page is an app
// shell rather than content. Pages carrying JSON-LD recipe data never
// need rendering regardless of framework markers.
func needsJSRendering(html string) bool {
	lower := strings.ToLower(html)

	if strings.Contains(lower, "application/ld+json") {
		return false
	}

	for _, marker := range jsFrameworkMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}

	// Script-heavy page with a near-empty body
	if strings.Count(lower, "<script") > 5 && len(strings.TrimSpace(bodyContent(html))) < 1000 {
		return true
	}

	return false
}

func bodyContent(html string) string {
	lower := strings.ToLower(html)
	start := strings.Index(lower, "<body")
	if start == -1 {
		return html
	}
	open := strings.Index(html[start:], ">")
	if open == -1 {
		return html
	}
	start += open + 1

	end := strings.Index(lower[start:], "</body>")
	if end == -1 {
		return html[start:]
	}
	return html[start : start+end]
}
