package fetcher

import (
	"math/rand"
	"strings"
	"time"
)

// userAgents maps a browser family to a small pool of current agent
// strings. Rotating within a family keeps fetches from looking like a
// single scripted client.
var userAgents = map[string][]string{
	"chrome": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	},
	"firefox": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.1; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	},
	"safari": {
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_1_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
	},
	"edge": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	},
}

type UserAgentSelector struct {
	rng *rand.Rand
}

func NewUserAgentSelector() *UserAgentSelector {
	return &UserAgentSelector{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetUserAgent returns an agent string for the given browser family.
// "auto" or an unknown family picks from the whole pool; anything that
// is not a known family name is treated as a literal agent string.
func (s *UserAgentSelector) GetUserAgent(family string) string {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" || family == "auto" {
		return s.randomFromAll()
	}
	if agents, ok := userAgents[family]; ok {
		return agents[s.rng.Intn(len(agents))]
	}
	return family
}

func (s *UserAgentSelector) randomFromAll() string {
	var all []string
	for _, agents := range userAgents {
		all = append(all, agents...)
	}
	return all[s.rng.Intn(len(all))]
}
