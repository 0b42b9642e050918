// Package extract wires fetching, cookie injection and the recipe
// extraction engine into one call: URL in, normalized recipe out.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/platefork/recipr/internal/browser"
	"github.com/platefork/recipr/internal/config"
	"github.com/platefork/recipr/internal/fetcher"
	"github.com/platefork/recipr/internal/recipe"
)

type Options struct {
	// UseJS forces (true) or disables (false) JavaScript rendering;
	// nil lets the fetcher decide per page.
	UseJS   *bool
	Timeout time.Duration
}

type Result struct {
	URL            string
	Recipe         *recipe.Recipe
	UsedJavaScript bool
	ProcessingTime time.Duration
}

// Client is safe for concurrent use; the extraction engine holds no
// shared mutable state.
type Client struct {
	cfg       *config.Config
	fetcher   *fetcher.Fetcher
	cookies   *browser.CookieLoader
	extractor *recipe.Extractor
}

func New(cfg *config.Config) *Client {
	f := fetcher.New()
	f.SetFollowRedirects(cfg.Fetch.FollowRedirects)

	return &Client{
		cfg:       cfg,
		fetcher:   f,
		cookies:   browser.NewCookieLoader(browser.Type(cfg.Browser.Default), cfg.Browser.Paths),
		extractor: recipe.NewExtractor(imageFilter(cfg)),
	}
}

// Extract fetches and parses the page at url and runs the strategy
// chain over it. Fetch and parse failures are server-side faults; a
// page with no recognizable recipe returns recipe.ErrNoRecipe.
func (c *Client) Extract(ctx context.Context, url string, opts Options) (*Result, error) {
	start := time.Now()

	cookies, err := c.cookies.CookiesFor(ctx, url)
	if err != nil {
		// Cookie extraction failure is not fatal
		log.Debug().Err(err).Str("url", url).Msg("cookie extraction failed")
		cookies = nil
	}

	mode := fetcher.ModeAuto
	switch {
	case opts.UseJS != nil && *opts.UseJS:
		mode = fetcher.ModeJS
	case opts.UseJS != nil:
		mode = fetcher.ModeStatic
	case c.cfg.Fetch.JavaScript == "always":
		mode = fetcher.ModeJS
	case c.cfg.Fetch.JavaScript == "never":
		mode = fetcher.ModeStatic
	}

	fetchResult, err := c.fetcher.Fetch(ctx, url, fetcher.Options{
		Mode:         mode,
		Timeout:      opts.Timeout,
		UserAgent:    c.cfg.Fetch.UserAgent,
		BrowserAgent: c.cfg.Fetch.BrowserAgent,
		Cookies:      cookies,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fetchResult.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rec, err := c.extractor.Extract(doc, url)
	if err != nil {
		return nil, err
	}

	return &Result{
		URL:            url,
		Recipe:         rec,
		UsedJavaScript: fetchResult.UsedJS,
		ProcessingTime: time.Since(start),
	}, nil
}

// imageFilter merges the config's image heuristics over the engine
// defaults; config entries extend the stock tables rather than replace
// them.
func imageFilter(cfg *config.Config) recipe.ImageFilter {
	filter := recipe.DefaultImageFilter()
	if cfg.Images.MinWidth > 0 {
		filter.MinWidth = cfg.Images.MinWidth
	}
	if cfg.Images.MinHeight > 0 {
		filter.MinHeight = cfg.Images.MinHeight
	}
	filter.Blocklist = append(filter.Blocklist, cfg.Images.URLBlocklist...)
	filter.Markers = append(filter.Markers, cfg.Images.URLMarkers...)
	return filter
}
