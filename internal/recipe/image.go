package recipe

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// imageExtensions are file extensions accepted as recipe photos.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".svg"}

// ImageFilter decides whether a URL plausibly points at a recipe photo.
// The thresholds and substring tables are data so site-specific tuning
// does not require code changes.
type ImageFilter struct {
	// MinWidth/MinHeight reject images whose declared dimensions fall
	// below the threshold. Undeclared dimensions are not penalized.
	MinWidth  int
	MinHeight int
	// Blocklist marks URLs of site chrome (logos, social buttons).
	Blocklist []string
	// Markers are path and host fragments that count as "probably an
	// image" even without a recognizable file extension.
	Markers []string
}

// DefaultImageFilter returns the stock filter. It is deliberately
// permissive: a missing photo is a worse outcome than an occasional
// wrong one.
func DefaultImageFilter() ImageFilter {
	return ImageFilter{
		MinWidth:  200,
		MinHeight: 150,
		Blocklist: []string{"logo", "icon", "avatar", "button", "social", "sprite", "badge"},
		Markers: []string{
			"/images/", "/photos/", "/recipe",
			"/wp-content/uploads/",
			"cloudinary.com", "imgix.net", "images.unsplash.com",
		},
	}
}

// ValidURL reports whether raw looks like an image URL: either its path
// (query string and fragment ignored) ends in a known image extension,
// or the URL carries one of the filter's markers.
func (f ImageFilter) ValidURL(raw string) bool {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return false
	}
	path := u
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	for _, marker := range f.Markers {
		if strings.Contains(u, marker) {
			return true
		}
	}
	return false
}

// IsValidImageURL applies the default filter to a candidate URL.
func IsValidImageURL(raw string) bool {
	return DefaultImageFilter().ValidURL(raw)
}

// photoSelectors target common recipe-photo containers, in priority
// order. The first selector whose first element yields a valid URL wins.
var photoSelectors = []string{
	"article img",
	".recipe-photo img", ".recipe-photo",
	".recipe-image img", ".recipe-image",
	".featured-image img", ".featured-image",
	".post-thumbnail img",
	"picture img",
	"figure img",
}

// imageSourceAttrs are checked on each candidate element in priority
// order; srcset is consulted last via its first candidate.
var imageSourceAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

// genericFoodWords match alt text on pages where the recipe name itself
// never appears in an image description.
var genericFoodWords = []string{"recipe", "food", "dish", "meal", "dinner", "cooking", "baked", "plate"}

// ImageResolver finds the best recipe photo on a page through a fixed
// five-stage fallback chain: Open Graph meta, Twitter Card meta, known
// photo containers, alt-text matching, and finally any sufficiently
// large content image.
type ImageResolver struct {
	Filter ImageFilter
}

// Resolve returns the first URL accepted by the filter, or "" when no
// stage produces one. Callers treat a missing image as normal.
func (r *ImageResolver) Resolve(doc *goquery.Document, recipeName string) string {
	if url := r.fromMeta(doc, "og:image"); url != "" {
		return url
	}
	if url := r.fromMeta(doc, "twitter:image"); url != "" {
		return url
	}
	if url := r.fromPhotoContainers(doc); url != "" {
		return url
	}
	if url := r.fromAltText(doc, recipeName); url != "" {
		return url
	}
	return r.fromAnyImage(doc)
}

func (r *ImageResolver) fromMeta(doc *goquery.Document, key string) string {
	if url := metaContent(doc, key); url != "" && r.Filter.ValidURL(url) {
		return url
	}
	return ""
}

func (r *ImageResolver) fromPhotoContainers(doc *goquery.Document) string {
	for _, selector := range photoSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if url := r.sourceURL(sel); url != "" {
			return url
		}
	}
	return ""
}

func (r *ImageResolver) fromAltText(doc *goquery.Document, recipeName string) string {
	words := nameWords(recipeName)

	var nameMatch, genericMatch string
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		alt := strings.ToLower(strings.TrimSpace(sel.AttrOr("alt", "")))
		if alt == "" {
			return true
		}
		url := r.sourceURL(sel)
		if url == "" {
			return true
		}
		for _, w := range words {
			if strings.Contains(alt, w) {
				nameMatch = url
				return false
			}
		}
		if genericMatch == "" {
			for _, w := range genericFoodWords {
				if strings.Contains(alt, w) {
					genericMatch = url
					break
				}
			}
		}
		return true
	})

	if nameMatch != "" {
		return nameMatch
	}
	return genericMatch
}

func (r *ImageResolver) fromAnyImage(doc *goquery.Document) string {
	var found string
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		url := r.sourceURL(sel)
		if url == "" {
			return true
		}
		if w, ok := attrInt(sel, "width"); ok && w < r.Filter.MinWidth {
			return true
		}
		if h, ok := attrInt(sel, "height"); ok && h < r.Filter.MinHeight {
			return true
		}
		lower := strings.ToLower(url)
		for _, marker := range r.Filter.Blocklist {
			if strings.Contains(lower, marker) {
				return true
			}
		}
		found = url
		return false
	})
	return found
}

// sourceURL pulls the first filter-accepted URL from an element's source
// attributes, falling back to the first srcset candidate.
func (r *ImageResolver) sourceURL(sel *goquery.Selection) string {
	for _, attr := range imageSourceAttrs {
		if url := strings.TrimSpace(sel.AttrOr(attr, "")); url != "" && r.Filter.ValidURL(url) {
			return url
		}
	}
	if srcset := sel.AttrOr("srcset", ""); srcset != "" {
		first := strings.TrimSpace(strings.SplitN(srcset, ",", 2)[0])
		if fields := strings.Fields(first); len(fields) > 0 && r.Filter.ValidURL(fields[0]) {
			return fields[0]
		}
	}
	return ""
}

func nameWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		w = strings.Trim(w, ".,!?:;()")
		if len(w) > 3 {
			words = append(words, w)
		}
	}
	return words
}

func attrInt(sel *goquery.Selection, attr string) (int, bool) {
	raw := strings.TrimSpace(sel.AttrOr(attr, ""))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
