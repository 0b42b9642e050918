package recipe

import "testing"

func newStructuredStrategy() *structuredDataStrategy {
	return &structuredDataStrategy{images: newTestResolver()}
}

func TestStructuredData_FullRecipe(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@type": "Recipe",
		"name": "Simple Pancakes",
		"description": "Fluffy weekend pancakes.",
		"prepTime": "PT15M",
		"cookTime": "PT20M",
		"totalTime": "PT35M",
		"recipeYield": "4 servings",
		"image": "https://example.com/pancakes.jpg",
		"recipeIngredient": ["2 cups flour", "1/2 tsp salt"],
		"recipeInstructions": [
			{"@type": "HowToStep", "text": "Mix the dry ingredients."},
			{"@type": "HowToStep", "text": "Fry until golden."}
		]
	}
	</script>
	</head><body></body></html>`)

	r := newStructuredStrategy().Extract(doc, "https://example.com/pancakes")
	if r == nil {
		t.Fatal("expected a recipe")
	}
	if r.Name != "Simple Pancakes" {
		t.Errorf("name = %q", r.Name)
	}
	if r.Description != "Fluffy weekend pancakes." {
		t.Errorf("description = %q", r.Description)
	}
	if r.PrepTime != 15 || r.CookTime != 20 || r.TotalTime != 35 {
		t.Errorf("times = %d/%d/%d, want 15/20/35", r.PrepTime, r.CookTime, r.TotalTime)
	}
	if r.Servings != 4 {
		t.Errorf("servings = %d, want 4", r.Servings)
	}
	if r.ImageURL != "https://example.com/pancakes.jpg" {
		t.Errorf("image = %q", r.ImageURL)
	}

	if len(r.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(r.Ingredients))
	}
	flour := r.Ingredients[0]
	if flour.Name != "flour" || flour.Amount != "2" || flour.Unit != "cups" {
		t.Errorf("first ingredient = %+v", flour)
	}
	salt := r.Ingredients[1]
	if salt.Name != "salt" || salt.Amount != "1/2" || salt.Unit != "tsp" {
		t.Errorf("second ingredient = %+v", salt)
	}

	if len(r.Instructions) != 2 || r.Instructions[0] != "Mix the dry ingredients." {
		t.Errorf("instructions = %v", r.Instructions)
	}
}

func TestStructuredData_MalformedBlockSkipped(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">{not valid json</script>
	<script type="application/ld+json">
	{"@type": "Recipe", "name": "Recovered Soup", "recipeIngredient": ["1 l stock"]}
	</script>
	</head><body></body></html>`)

	r := newStructuredStrategy().Extract(doc, "")
	if r == nil {
		t.Fatal("malformed block should not abort the strategy")
	}
	if r.Name != "Recovered Soup" {
		t.Errorf("name = %q", r.Name)
	}
}

func TestStructuredData_TypeArrayAndListWrapper(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">
	[
		{"@type": "WebSite", "name": "Food Blog"},
		{"@type": ["Thing", "Recipe"], "name": "Array Typed Stew"}
	]
	</script>
	</head><body></body></html>`)

	r := newStructuredStrategy().Extract(doc, "")
	if r == nil || r.Name != "Array Typed Stew" {
		t.Fatalf("expected recipe from @type array, got %+v", r)
	}
}

func TestStructuredData_GraphWrapper(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "WebPage", "name": "Some Page"},
			{"@type": "Recipe", "name": "Graph Wrapped Curry", "recipeIngredient": ["2 cups rice"]}
		]
	}
	</script>
	</head><body></body></html>`)

	r := newStructuredStrategy().Extract(doc, "")
	if r == nil {
		t.Fatal("expected a recipe inside the @graph wrapper")
	}
	if r.Name != "Graph Wrapped Curry" {
		t.Errorf("name = %q", r.Name)
	}
	if len(r.Ingredients) != 1 || r.Ingredients[0].Name != "rice" {
		t.Errorf("ingredients = %+v", r.Ingredients)
	}
}

func TestStructuredData_FirstRecipeWins(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">
	{"@type": "Recipe", "name": "First Recipe"}
	</script>
	<script type="application/ld+json">
	{"@type": "Recipe", "name": "Second Recipe"}
	</script>
	</head><body></body></html>`)

	r := newStructuredStrategy().Extract(doc, "")
	if r == nil || r.Name != "First Recipe" {
		t.Fatalf("first matching recipe should win, got %+v", r)
	}
}

func TestStructuredData_MissingNameYieldsNothing(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<script type="application/ld+json">
	{"@type": "Recipe", "recipeIngredient": ["2 cups flour"]}
	</script>
	</head><body></body></html>`)

	if r := newStructuredStrategy().Extract(doc, ""); r != nil {
		t.Errorf("recipe without a name must yield nothing, got %+v", r)
	}
}

func TestStructuredData_NoStructuredData(t *testing.T) {
	doc := mustDoc(t, `<html><body><h1>Just a page</h1></body></html>`)
	if r := newStructuredStrategy().Extract(doc, ""); r != nil {
		t.Errorf("expected nil, got %+v", r)
	}
}

func TestStructuredData_ImageForms(t *testing.T) {
	tests := []struct {
		name  string
		image string
		want  string
	}{
		{"string", `"image": "https://example.com/a.jpg"`, "https://example.com/a.jpg"},
		{"array of strings", `"image": ["https://example.com/b.jpg", "https://example.com/c.jpg"]`, "https://example.com/b.jpg"},
		{"array of objects", `"image": [{"@type": "ImageObject", "url": "https://example.com/d.jpg"}]`, "https://example.com/d.jpg"},
		{"object", `"image": {"@type": "ImageObject", "url": "https://example.com/e.jpg"}`, "https://example.com/e.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, `<html><head><script type="application/ld+json">
			{"@type": "Recipe", "name": "Image Forms", `+tt.image+`}
			</script></head><body></body></html>`)

			r := newStructuredStrategy().Extract(doc, "")
			if r == nil {
				t.Fatal("expected a recipe")
			}
			if r.ImageURL != tt.want {
				t.Errorf("image = %q, want %q", r.ImageURL, tt.want)
			}
		})
	}
}

func TestStructuredData_ImageFallsBackToResolver(t *testing.T) {
	doc := mustDoc(t, `<html><head>
	<meta property="og:image" content="https://example.com/og.jpg">
	<script type="application/ld+json">
	{"@type": "Recipe", "name": "No Image Field"}
	</script>
	</head><body></body></html>`)

	r := newStructuredStrategy().Extract(doc, "")
	if r == nil {
		t.Fatal("expected a recipe")
	}
	if r.ImageURL != "https://example.com/og.jpg" {
		t.Errorf("expected resolver fallback to og:image, got %q", r.ImageURL)
	}
}

func TestStructuredData_StringInstructions(t *testing.T) {
	doc := mustDoc(t, `<html><head><script type="application/ld+json">
	{"@type": "Recipe", "name": "Terse", "recipeInstructions": "Mix everything and bake."}
	</script></head><body></body></html>`)

	r := newStructuredStrategy().Extract(doc, "")
	if r == nil {
		t.Fatal("expected a recipe")
	}
	if len(r.Instructions) != 1 || r.Instructions[0] != "Mix everything and bake." {
		t.Errorf("instructions = %v", r.Instructions)
	}
}

func TestParseServings(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
	}{
		{float64(6), 6},
		{"4 servings", 4},
		{"Serves 8", 8},
		{[]interface{}{"4", "4 servings"}, 4},
		{"no number", 0},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := parseServings(tt.in); got != tt.want {
			t.Errorf("parseServings(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
