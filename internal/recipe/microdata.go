package recipe

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// microdataStrategy reads schema.org microdata attributes (itemtype /
// itemprop). Tried after JSON-LD because microdata markup is older and
// more often stale.
type microdataStrategy struct {
	images *ImageResolver
}

func (s *microdataStrategy) Name() string { return "microdata" }

func (s *microdataStrategy) Extract(doc *goquery.Document, pageURL string) *Recipe {
	scope := doc.Find(`[itemtype*='Recipe']`).First()
	if scope.Length() == 0 {
		return nil
	}

	name := strings.TrimSpace(scope.Find(`[itemprop='name']`).First().Text())
	if name == "" {
		return nil
	}

	r := &Recipe{
		Name:        name,
		Description: strings.TrimSpace(scope.Find(`[itemprop='description']`).First().Text()),
	}

	if m, ok := ParseTime(itempropValue(scope, "prepTime")); ok {
		r.PrepTime = m
	}
	if m, ok := ParseTime(itempropValue(scope, "cookTime")); ok {
		r.CookTime = m
	}
	if m, ok := ParseTime(itempropValue(scope, "totalTime")); ok {
		r.TotalTime = m
	}
	r.Servings = parseServings(itempropValue(scope, "recipeYield"))

	var lines []string
	scope.Find(`[itemprop='recipeIngredient']`).Each(func(_ int, sel *goquery.Selection) {
		lines = append(lines, sel.Text())
	})
	r.Ingredients = parseIngredients(lines)

	scope.Find(`[itemprop='recipeInstructions']`).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			r.Instructions = append(r.Instructions, text)
		}
	})

	r.ImageURL = s.imageFrom(scope)
	if r.ImageURL == "" {
		r.ImageURL = s.images.Resolve(doc, name)
	}
	return r
}

// imageFrom checks the itemprop=image element's src, data-src and
// content attributes, in that order.
func (s *microdataStrategy) imageFrom(scope *goquery.Selection) string {
	img := scope.Find(`[itemprop='image']`).First()
	if img.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"src", "data-src", "content"} {
		if url := strings.TrimSpace(img.AttrOr(attr, "")); url != "" {
			return url
		}
	}
	return ""
}

// itempropValue reads a microdata property, preferring machine-readable
// content/datetime attributes over element text.
func itempropValue(scope *goquery.Selection, prop string) string {
	sel := scope.Find(`[itemprop='` + prop + `']`).First()
	if sel.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"content", "datetime"} {
		if v := strings.TrimSpace(sel.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return strings.TrimSpace(sel.Text())
}
