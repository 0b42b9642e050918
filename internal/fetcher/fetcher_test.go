package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchStatic(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>recipe content</body></html>"))
	}))
	defer server.Close()

	result, err := New().Fetch(context.Background(), server.URL, Options{Mode: ModeStatic})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(result.HTML, "recipe content") {
		t.Errorf("unexpected HTML: %q", result.HTML)
	}
	if result.UsedJS {
		t.Error("static fetch must not report JS use")
	}
	if gotAgent == "" {
		t.Error("request should carry a user agent")
	}
}

func TestFetchStatic_CustomUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	_, err := New().Fetch(context.Background(), server.URL, Options{
		Mode:      ModeStatic,
		UserAgent: "recipr-test/1.0",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotAgent != "recipr-test/1.0" {
		t.Errorf("user agent = %q, want override", gotAgent)
	}
}

func TestFetchStatic_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := New().Fetch(context.Background(), server.URL, Options{Mode: ModeStatic}); err == nil {
		t.Fatal("expected an error for a 403 response")
	}
}

func TestFetchStatic_SendsCookies(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	_, err := New().Fetch(context.Background(), server.URL, Options{
		Mode:    ModeStatic,
		Cookies: []*http.Cookie{{Name: "session", Value: "abc123"}},
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotCookie != "abc123" {
		t.Errorf("cookie = %q, want abc123", gotCookie)
	}
}

func TestSetFollowRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("final"))
	}))
	defer target.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusMovedPermanently)
	}))
	defer server.Close()

	f := New()
	result, err := f.Fetch(context.Background(), server.URL, Options{Mode: ModeStatic})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(result.HTML, "final") {
		t.Error("redirects should be followed by default")
	}

	f.SetFollowRedirects(false)
	result, err = f.Fetch(context.Background(), server.URL, Options{Mode: ModeStatic})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if strings.Contains(result.HTML, "final") {
		t.Error("redirect should not have been followed")
	}
}

func TestNeedsJSRendering(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			"plain content page",
			"<html><body><h1>Recipe</h1><p>" + strings.Repeat("text ", 300) + "</p></body></html>",
			false,
		},
		{
			"react shell",
			`<html><body><div id="root" data-reactroot></div></body></html>`,
			true,
		},
		{
			"next.js shell",
			`<html><body><script id="__NEXT_DATA__"></script></body></html>`,
			true,
		},
		{
			"json-ld overrides framework markers",
			`<html><head><script type="application/ld+json">{}</script></head><body><div data-reactroot></div></body></html>`,
			false,
		},
		{
			"script-heavy empty body",
			`<html><head><script></script><script></script><script></script><script></script><script></script><script></script></head><body></body></html>`,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsJSRendering(tt.html); got != tt.want {
				t.Errorf("needsJSRendering = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetUserAgent(t *testing.T) {
	s := NewUserAgentSelector()

	if ua := s.GetUserAgent("firefox"); !strings.Contains(ua, "Firefox") {
		t.Errorf("firefox pool returned %q", ua)
	}
	if ua := s.GetUserAgent("auto"); ua == "" {
		t.Error("auto should always return an agent")
	}
	if ua := s.GetUserAgent(""); ua == "" {
		t.Error("empty family should always return an agent")
	}
	// Unknown families are literal agent strings
	if ua := s.GetUserAgent("my-custom-agent/2.0"); ua != "my-custom-agent/2.0" {
		t.Errorf("literal agent = %q", ua)
	}
}
