package recipe

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// structuredDataStrategy reads schema.org Recipe objects embedded as
// JSON-LD. This is the highest-priority strategy: when a site publishes
// structured data it is almost always the most accurate source.
type structuredDataStrategy struct {
	images *ImageResolver
}

func (s *structuredDataStrategy) Name() string { return "jsonld" }

func (s *structuredDataStrategy) Extract(doc *goquery.Document, pageURL string) *Recipe {
	var node map[string]interface{}

	doc.Find(`script[type='application/ld+json']`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var parsed interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &parsed); err != nil {
			// Malformed blocks are common in the wild; skip and keep
			// scanning the remaining blocks.
			return true
		}
		for _, entry := range ldEntries(parsed) {
			if isRecipeType(entry["@type"]) {
				node = entry
				return false
			}
		}
		return true
	})

	if node == nil {
		return nil
	}
	return s.fromNode(node, doc)
}

func (s *structuredDataStrategy) fromNode(node map[string]interface{}, doc *goquery.Document) *Recipe {
	name := strings.TrimSpace(ldString(node["name"]))
	if name == "" {
		return nil
	}

	r := &Recipe{
		Name:        name,
		Description: strings.TrimSpace(ldString(node["description"])),
	}

	if m, ok := ParseTime(ldString(node["prepTime"])); ok {
		r.PrepTime = m
	}
	if m, ok := ParseTime(ldString(node["cookTime"])); ok {
		r.CookTime = m
	}
	if m, ok := ParseTime(ldString(node["totalTime"])); ok {
		r.TotalTime = m
	}
	r.Servings = parseServings(node["recipeYield"])

	r.Ingredients = parseIngredients(ldStrings(node["recipeIngredient"]))
	r.Instructions = ldInstructions(node["recipeInstructions"])

	r.ImageURL = ldImage(node["image"])
	if r.ImageURL == "" {
		r.ImageURL = s.images.Resolve(doc, name)
	}
	return r
}

// ldEntries normalizes a parsed JSON-LD value into a flat list of
// objects. Top-level values may be a single object, an array, or an
// @graph wrapper (the shape WordPress SEO plugins emit); @graph members
// are flattened alongside the wrapper itself.
func ldEntries(parsed interface{}) []map[string]interface{} {
	switch v := parsed.(type) {
	case map[string]interface{}:
		out := []map[string]interface{}{v}
		if graph, ok := v["@graph"].([]interface{}); ok {
			out = append(out, ldEntries(graph)...)
		}
		return out
	case []interface{}:
		var out []map[string]interface{}
		for _, item := range v {
			out = append(out, ldEntries(item)...)
		}
		return out
	}
	return nil
}

// isRecipeType accepts @type values of "Recipe" or arrays containing it.
func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func ldString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func ldStrings(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ldInstructions handles the common recipeInstructions shapes: a plain
// string, a list of strings, or a list of HowToStep objects carrying
// text or name fields.
func ldInstructions(v interface{}) []string {
	var out []string
	appendStep := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch steps := v.(type) {
	case string:
		appendStep(steps)
	case []interface{}:
		for _, step := range steps {
			switch s := step.(type) {
			case string:
				appendStep(s)
			case map[string]interface{}:
				if text := ldString(s["text"]); text != "" {
					appendStep(text)
				} else {
					appendStep(ldString(s["name"]))
				}
			}
		}
	}
	return out
}

// ldImage resolves the structured image field: a URL string, an array
// whose first element is a string or an object with a url, or a single
// object with a url.
func ldImage(v interface{}) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case []interface{}:
		if len(img) == 0 {
			return ""
		}
		switch first := img[0].(type) {
		case string:
			return strings.TrimSpace(first)
		case map[string]interface{}:
			return strings.TrimSpace(ldString(first["url"]))
		}
	case map[string]interface{}:
		return strings.TrimSpace(ldString(img["url"]))
	}
	return ""
}

var firstIntRe = regexp.MustCompile(`\d+`)

// parseServings pulls an integer servings count out of recipeYield,
// which sites publish as a number, a string like "4 servings", or an
// array of either.
func parseServings(v interface{}) int {
	switch y := v.(type) {
	case float64:
		return int(y)
	case string:
		if m := firstIntRe.FindString(y); m != "" {
			n, err := strconv.Atoi(m)
			if err == nil {
				return n
			}
		}
	case []interface{}:
		for _, item := range y {
			if n := parseServings(item); n > 0 {
				return n
			}
		}
	}
	return 0
}
