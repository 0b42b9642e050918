package recipe

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParsedAmount is the normalized form of an ingredient quantity. Value is
// always finite; text without a recognizable quantity parses to 1.
type ParsedAmount struct {
	Value    float64
	Unit     string
	Original string
}

// numberPattern matches a mixed number ("1 1/2"), a simple fraction
// ("1/2"), or an integer/decimal, in that order so the longest form wins.
const numberPattern = `\d+\s+\d+\s*/\s*\d+|\d+\s*/\s*\d+|\d+(?:\.\d+)?`

// amountRe matches a leading quantity, optionally a range joined by a
// hyphen or en-dash ("1-2", "1/2–3/4").
var amountRe = regexp.MustCompile(`^\s*(` + numberPattern + `)(?:\s*[-–]\s*(` + numberPattern + `))?`)

// unitTokens is the fixed table of cooking units the normalizer knows.
// Plural forms listed before their singulars so exact matches stay exact.
var unitTokens = []string{
	"cups", "cup",
	"tablespoons", "tablespoon", "tbsp",
	"teaspoons", "teaspoon", "tsp",
	"ounces", "ounce", "oz",
	"lbs", "lb",
	"ml", "l",
	"g", "kg",
	"cloves", "clove",
}

// qualifierPhrases are descriptive fragments stripped from ingredient
// names. Multi-word phrases come first so their words are not consumed
// piecemeal.
var qualifierPhrases = []string{
	"to taste", "plus more", "for serving", "for garnish", "if needed",
	"extra-large", "extra large",
	"fresh", "freshly", "finely", "roughly", "thinly", "coarsely",
	"chopped", "diced", "minced", "sliced", "grated", "shredded",
	"melted", "softened", "divided", "packed", "optional",
	"large", "medium", "small",
}

var qualifierRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(qualifierPhrases))
	for _, p := range qualifierPhrases {
		res = append(res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return res
}()

var (
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	multiPunctRe = regexp.MustCompile(`[,;.]{2,}`)
)

// ParseAmount parses quantity text such as "2", "1/2", "1 1/2 cups" or
// "1-2 cloves". Ranges collapse to the mean of their endpoints, a
// deliberate simplification for shopping-list aggregation. Empty or
// unparseable input yields value 1.
func ParseAmount(text string) ParsedAmount {
	trimmed := strings.TrimSpace(text)
	pa := ParsedAmount{Value: 1, Original: trimmed}
	if trimmed == "" {
		return pa
	}

	m := amountRe.FindStringSubmatch(trimmed)
	if m == nil {
		if unit, ok := ExtractUnit(trimmed); ok {
			pa.Unit = unit
		}
		return pa
	}

	value := parseNumber(m[1])
	if m[2] != "" {
		value = (value + parseNumber(m[2])) / 2
	}
	pa.Value = value

	rest := strings.TrimSpace(trimmed[len(m[0]):])
	if fields := strings.Fields(rest); len(fields) > 0 {
		if unit, ok := matchUnit(fields[0]); ok {
			pa.Unit = unit
		}
	}
	return pa
}

// ExtractAmount returns the leading quantity substring of text, including
// ranges. The second return is false when text does not start with a
// recognizable quantity.
func ExtractAmount(text string) (string, bool) {
	m := amountRe.FindString(strings.TrimSpace(text))
	if m == "" {
		return "", false
	}
	return strings.TrimSpace(m), true
}

// ExtractUnit returns the first known unit token found anywhere in text,
// lowercased. Matching is case-insensitive and tolerates a trailing
// plural s.
func ExtractUnit(text string) (string, bool) {
	for _, field := range strings.Fields(text) {
		if unit, ok := matchUnit(field); ok {
			return unit, true
		}
	}
	return "", false
}

func matchUnit(token string) (string, bool) {
	cleaned := strings.ToLower(strings.Trim(token, ".,;:()"))
	if cleaned == "" {
		return "", false
	}
	for _, u := range unitTokens {
		if cleaned == u {
			return cleaned, true
		}
	}
	if trimmed := strings.TrimSuffix(cleaned, "s"); trimmed != cleaned {
		for _, u := range unitTokens {
			if trimmed == u {
				return cleaned, true
			}
		}
	}
	return "", false
}

// CleanIngredientName strips the identified amount and unit substrings
// plus descriptive qualifiers from an ingredient line, then collapses
// leftover punctuation and whitespace. Empty input returns "".
func CleanIngredientName(text, amount, unit string) string {
	name := text
	if amount != "" {
		name = strings.Replace(name, amount, "", 1)
	}
	if unit != "" {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(unit) + `\b`)
		name = re.ReplaceAllString(name, "")
	}
	for _, re := range qualifierRes {
		name = re.ReplaceAllString(name, "")
	}
	name = multiPunctRe.ReplaceAllString(name, ",")
	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.Trim(name, " \t,.;:-")
	return strings.TrimSpace(name)
}

// commonFractions maps fractional parts to their canonical display form.
var commonFractions = []struct {
	value float64
	text  string
}{
	{1.0 / 4, "1/4"},
	{1.0 / 3, "1/3"},
	{1.0 / 2, "1/2"},
	{2.0 / 3, "2/3"},
	{3.0 / 4, "3/4"},
}

// FormatAmount renders a quantity for display. Whole numbers render as
// integers, common fractions as "1/2" style, mixed values as "1 1/2",
// anything else as a decimal. A falsy value with a unit renders the unit
// alone; this quirk is kept for output compatibility.
func FormatAmount(value float64, unit string) string {
	if value == 0 {
		if unit != "" {
			return unit
		}
		return "0"
	}

	whole := math.Floor(value)
	frac := value - whole

	var amount string
	switch {
	case frac < 0.01 || frac > 0.99:
		amount = strconv.Itoa(int(math.Round(value)))
	default:
		fracText := ""
		for _, cf := range commonFractions {
			if math.Abs(frac-cf.value) < 0.01 {
				fracText = cf.text
				break
			}
		}
		switch {
		case fracText == "":
			amount = strconv.FormatFloat(value, 'f', -1, 64)
		case whole == 0:
			amount = fracText
		default:
			amount = strconv.Itoa(int(whole)) + " " + fracText
		}
	}

	if unit != "" {
		return amount + " " + unit
	}
	return amount
}

// CombineAmounts adds two parsed amounts for list aggregation. The unit
// of the first operand wins when both carry one.
func CombineAmounts(a, b ParsedAmount) ParsedAmount {
	unit := a.Unit
	if unit == "" {
		unit = b.Unit
	}
	value := a.Value + b.Value
	return ParsedAmount{
		Value:    value,
		Unit:     unit,
		Original: FormatAmount(value, unit),
	}
}

func parseNumber(text string) float64 {
	text = strings.TrimSpace(text)

	// Mixed number: "1 1/2"
	if fields := strings.Fields(text); len(fields) == 2 && strings.Contains(fields[1], "/") {
		whole, err := strconv.ParseFloat(fields[0], 64)
		if err == nil {
			return whole + parseFraction(fields[1])
		}
	}

	if strings.Contains(text, "/") {
		return parseFraction(text)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 1
	}
	return v
}

func parseFraction(text string) float64 {
	parts := strings.SplitN(text, "/", 2)
	if len(parts) != 2 {
		return 1
	}
	num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 1
	}
	return num / den
}
