package recipe

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// isoDurationRe covers the PT(<H>H)?(<M>M)? shorthand that schema.org
	// recipe markup uses. Seconds are not part of the contract.
	isoDurationRe = regexp.MustCompile(`(?i)^PT(?:(\d+)H)?(?:(\d+)M)?`)

	// naturalTimeRe covers free-text phrasings such as "45 min" or
	// "1 hour". Longer unit words still match via their prefix.
	naturalTimeRe = regexp.MustCompile(`(?i)(\d+)\s*(min|minute|hour|hr)`)
)

// ParseTime converts an ISO-8601 duration or a natural-language time
// phrase into whole minutes. The second return is false when the text
// matches neither form; absent means unknown, not zero.
func ParseTime(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	if m := isoDurationRe.FindStringSubmatch(text); m != nil && (m[1] != "" || m[2] != "") {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		return hours*60 + minutes, true
	}

	if m := naturalTimeRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			n *= 60
		}
		return n, true
	}

	return 0, false
}
