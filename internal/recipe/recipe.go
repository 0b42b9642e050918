package recipe

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ErrNoRecipe is returned when every extraction strategy came up empty.
// It marks bad input (the page holds no recognizable recipe), not a fault.
var ErrNoRecipe = errors.New("no recipe found in document")

// Ingredient is a single normalized ingredient line. Amount and Unit are
// empty when the source text carried no recognizable quantity.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount,omitempty"`
	Unit   string `json:"unit,omitempty"`
}

// Recipe is the normalized result of one extraction pass. Name is always
// non-empty; every other field may be absent. Times are in minutes.
type Recipe struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	PrepTime     int          `json:"prepTime,omitempty"`
	CookTime     int          `json:"cookTime,omitempty"`
	TotalTime    int          `json:"totalTime,omitempty"`
	Servings     int          `json:"servings,omitempty"`
	ImageURL     string       `json:"imageUrl,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
}

// Strategy is one way of pulling a recipe out of a parsed page. Extract
// returns nil when the strategy cannot produce a recipe with a name, which
// tells the Extractor to fall through to the next strategy. pageURL is
// used for logging only.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, pageURL string) *Recipe
}

// Extractor runs strategies in a fixed priority order and returns the
// first hit. It holds no mutable state, so one Extractor may serve
// concurrent callers.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor builds the default strategy chain: JSON-LD structured data,
// then schema.org microdata, then CSS-selector heuristics.
func NewExtractor(filter ImageFilter) *Extractor {
	images := &ImageResolver{Filter: filter}
	return &Extractor{
		strategies: []Strategy{
			&structuredDataStrategy{images: images},
			&microdataStrategy{images: images},
			&heuristicStrategy{images: images},
		},
	}
}

// Extract tries each strategy in order and returns the first non-nil
// recipe. ErrNoRecipe means the page is not a recipe page.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) (*Recipe, error) {
	for _, s := range e.strategies {
		if r := s.Extract(doc, pageURL); r != nil {
			log.Debug().Str("strategy", s.Name()).Str("url", pageURL).Msg("recipe extracted")
			return r, nil
		}
		log.Debug().Str("strategy", s.Name()).Str("url", pageURL).Msg("strategy found nothing")
	}
	return nil, ErrNoRecipe
}

// parseIngredients runs raw ingredient lines through the amount/unit
// normalizer. Lines that normalize to nothing keep their original text.
func parseIngredients(lines []string) []Ingredient {
	var out []Ingredient
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		amount, _ := ExtractAmount(line)
		unit, _ := ExtractUnit(line)
		name := CleanIngredientName(line, amount, unit)
		if name == "" {
			name = line
		}
		out = append(out, Ingredient{Name: name, Amount: amount, Unit: unit})
	}
	return out
}

// metaContent returns the first non-empty content attribute among the
// given meta keys, checking both property= and name= forms.
func metaContent(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name"} {
			sel := "meta[" + attr + "='" + key + "']"
			if v := strings.TrimSpace(doc.Find(sel).AttrOr("content", "")); v != "" {
				return v
			}
		}
	}
	return ""
}
