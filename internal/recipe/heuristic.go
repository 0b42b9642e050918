package recipe

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// titleSelectors are tried in order when the page has no structured
// data; h1 first, then common title-bearing classes.
var titleSelectors = []string{"h1", ".recipe-title", ".entry-title", ".post-title"}

// ingredientSelectors and instructionSelectors are candidate lists; the
// first selector yielding at least one non-empty element wins and the
// rest are not consulted. Results are never merged across selectors.
var ingredientSelectors = []string{
	".recipe-ingredients li",
	".ingredients li",
	"ul.ingredients li",
	".ingredient-list li",
	".ingredients p",
	".ingredient",
}

var instructionSelectors = []string{
	".recipe-instructions li",
	".instructions li",
	".directions li",
	".method li",
	".recipe-directions li",
	".steps li",
	".instructions p",
	".step",
}

// heuristicStrategy is the last-resort scan over common CSS class
// conventions. It fails (returns nil) whenever no title can be found;
// everything else degrades gracefully.
type heuristicStrategy struct {
	images *ImageResolver
}

func (s *heuristicStrategy) Name() string { return "heuristic" }

func (s *heuristicStrategy) Extract(doc *goquery.Document, pageURL string) *Recipe {
	name := firstText(doc, titleSelectors)
	if name == "" {
		return nil
	}

	r := &Recipe{
		Name:        name,
		Description: s.description(doc),
	}
	r.Ingredients = parseIngredients(selectorTexts(doc, ingredientSelectors))
	r.Instructions = selectorTexts(doc, instructionSelectors)
	r.ImageURL = s.images.Resolve(doc, name)
	return r
}

// description prefers the page's meta description and falls back to the
// readability excerpt of the main content.
func (s *heuristicStrategy) description(doc *goquery.Document) string {
	if desc := metaContent(doc, "og:description", "description"); desc != "" {
		return desc
	}
	html, err := doc.Html()
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Excerpt)
}

// firstText returns the first non-empty trimmed text among the given
// selectors.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// selectorTexts collects non-empty texts from the first selector in the
// candidate list that yields any.
func selectorTexts(doc *goquery.Document, selectors []string) []string {
	for _, selector := range selectors {
		var out []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				out = append(out, text)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
