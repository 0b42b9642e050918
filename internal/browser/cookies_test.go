package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMatchesDomain(t *testing.T) {
	tests := []struct {
		cookieDomain string
		host         string
		want         bool
	}{
		{"example.com", "example.com", true},
		{".example.com", "example.com", true},
		{"example.com", "www.example.com", true},
		{".example.com", "recipes.example.com", true},
		{"example.com", "notexample.com", false},
		{"other.com", "example.com", false},
		{"", "example.com", false},
		{"example.com", "", false},
	}

	for _, tt := range tests {
		if got := matchesDomain(tt.cookieDomain, tt.host); got != tt.want {
			t.Errorf("matchesDomain(%q, %q) = %v, want %v", tt.cookieDomain, tt.host, got, tt.want)
		}
	}
}

func TestPathAllowed(t *testing.T) {
	tests := []struct {
		storePath  string
		customPath string
		want       bool
	}{
		{"/home/u/.mozilla/firefox/abc/cookies.sqlite", "", true},
		{"/home/u/.mozilla/firefox/abc/cookies.sqlite", "/home/u/.mozilla/firefox", true},
		{"/home/u/.config/chromium/Default/Cookies", "/home/u/.mozilla/firefox", false},
		{"", "/home/u/.mozilla/firefox", false},
	}

	for _, tt := range tests {
		if got := pathAllowed(tt.storePath, tt.customPath); got != tt.want {
			t.Errorf("pathAllowed(%q, %q) = %v, want %v", tt.storePath, tt.customPath, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	if got := expandPath("~/.mozilla/firefox"); got != filepath.Join(home, ".mozilla/firefox") {
		t.Errorf("expandPath(~/...) = %q", got)
	}
	if got := expandPath("/absolute/path"); got != "/absolute/path" {
		t.Errorf("absolute path should pass through, got %q", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("empty path should stay empty, got %q", got)
	}

	t.Setenv("APPDATA", `C:\Users\u\AppData\Roaming`)
	if got := expandPath("%APPDATA%/Mozilla"); got != `C:\Users\u\AppData\Roaming/Mozilla` {
		t.Errorf("expandPath(%%APPDATA%%...) = %q", got)
	}
}

func TestCookiesFor_BadURL(t *testing.T) {
	cl := NewCookieLoader(Chrome, nil)
	if _, err := cl.CookiesFor(context.Background(), "://not a url"); err == nil {
		t.Error("expected an error for an unparseable URL")
	}
}
