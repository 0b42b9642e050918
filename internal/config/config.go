package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Struct fields carry both toml and mapstructure tags: toml documents
// the file format, mapstructure is what viper.Unmarshal actually decodes
// by. Without the latter, snake_case keys never reach their fields.
type Config struct {
	Browser BrowserConfig `toml:"browser" mapstructure:"browser"`
	Fetch   FetchConfig   `toml:"fetch" mapstructure:"fetch"`
	Images  ImagesConfig  `toml:"images" mapstructure:"images"`
	Output  OutputConfig  `toml:"output" mapstructure:"output"`
	Logging LoggingConfig `toml:"logging" mapstructure:"logging"`
}

type BrowserConfig struct {
	Default string            `toml:"default" mapstructure:"default"`
	Paths   map[string]string `toml:"paths" mapstructure:"paths"`
}

type FetchConfig struct {
	Timeout         int    `toml:"timeout" mapstructure:"timeout"`
	UserAgent       string `toml:"user_agent" mapstructure:"user_agent"`
	BrowserAgent    string `toml:"browser_agent" mapstructure:"browser_agent"`
	FollowRedirects bool   `toml:"follow_redirects" mapstructure:"follow_redirects"`
	JavaScript      string `toml:"javascript" mapstructure:"javascript"`
	JSTimeout       int    `toml:"js_timeout" mapstructure:"js_timeout"`
	Delay           int    `toml:"delay" mapstructure:"delay"`
}

// ImagesConfig tunes the photo-discovery heuristics. The thresholds and
// substring tables feed the extraction engine's image filter so per-site
// quirks can be handled without code changes.
type ImagesConfig struct {
	MinWidth     int      `toml:"min_width" mapstructure:"min_width"`
	MinHeight    int      `toml:"min_height" mapstructure:"min_height"`
	URLBlocklist []string `toml:"url_blocklist" mapstructure:"url_blocklist"`
	URLMarkers   []string `toml:"url_markers" mapstructure:"url_markers"`
}

type OutputConfig struct {
	DefaultFormat string `toml:"default_format" mapstructure:"default_format"`
	Pretty        bool   `toml:"pretty" mapstructure:"pretty"`
}

type LoggingConfig struct {
	Level string `toml:"level" mapstructure:"level"`
}

func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Default: "auto",
			Paths:   map[string]string{},
		},
		Fetch: FetchConfig{
			Timeout:         30,
			UserAgent:       "",
			BrowserAgent:    "auto",
			FollowRedirects: true,
			JavaScript:      "auto",
			JSTimeout:       15,
			Delay:           0,
		},
		Images: ImagesConfig{
			MinWidth:  200,
			MinHeight: 150,
		},
		Output: OutputConfig{
			DefaultFormat: "json",
			Pretty:        true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return cfg, fmt.Errorf("error finding home directory: %w", err)
			}
			configHome = filepath.Join(home, ".config")
		}

		configDir := filepath.Join(configHome, "recipr")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return cfg, fmt.Errorf("error creating config directory: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("RECIPR")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

func (c *Config) CreateExampleConfig(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	exampleContent := `# recipr configuration file

[browser]
# Browser for cookie extraction (used for recipe sites that sit behind
# a login)
default = "auto"  # auto, chrome, firefox, safari

# Specific browser profile paths (optional, auto-detected if empty)
[browser.paths]
chrome = ""
firefox = ""
safari = ""

[fetch]
timeout = 30              # seconds
user_agent = ""           # custom user agent (empty = browser-like default)
browser_agent = "auto"    # auto, chrome, firefox, safari, edge
follow_redirects = true

# JavaScript rendering for single-page recipe sites
javascript = "auto"       # auto, always, never
js_timeout = 15           # seconds to wait for JS execution

# Rate limiting
delay = 0                 # seconds between requests (for multiple URLs)

[images]
# Photo-discovery heuristics. Images declared smaller than the floor are
# skipped in the last-resort scan; blocklist entries mark site chrome.
min_width = 200
min_height = 150
url_blocklist = []        # extra substrings to reject (e.g. "masthead")
url_markers = []          # extra "probably an image" path/host fragments

[output]
default_format = "json"   # json, text, markdown
pretty = true             # indent JSON output

[logging]
level = "info"            # debug, info, warn, error
`

	return os.WriteFile(configPath, []byte(exampleContent), 0644)
}
