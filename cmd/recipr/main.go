package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/platefork/recipr/internal/config"
	"github.com/platefork/recipr/internal/recipe"
	"github.com/platefork/recipr/pkg/extract"
)

// Exit codes for granular error handling
const (
	ExitSuccess      = 0
	ExitNetworkError = 1
	ExitNoRecipe     = 2 // page fetched fine but holds no recipe
	ExitInvalidInput = 3
	ExitConfigError  = 4
	ExitFileIOError  = 5
	ExitPartialError = 6 // some URLs failed, some succeeded
)

var (
	cfgFile         string
	file            string
	outputFile      string
	outputFormat    string
	separator       string
	browserName     string
	browserAgent    string
	javascript      bool
	noJS            bool
	timeout         int
	userAgent       string
	continueOnError bool
	noFollow        bool
	delay           float64
	verbose         bool
	quiet           bool
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "recipr [urls...]",
	Short: "Extract normalized recipes from web pages",
	Long: `recipr pulls structured recipe data out of arbitrary recipe pages.
It tries JSON-LD structured data first, then schema.org microdata, then a
CSS-selector heuristic scan, and normalizes ingredient amounts, units and
cooking times into one record.`,
	Version:       version,
	RunE:          run,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitErr); ok {
			os.Exit(exitErr.code)
		}
		os.Exit(ExitInvalidInput)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/recipr/config.toml)")

	// Input/Output flags
	rootCmd.Flags().StringVarP(&file, "file", "f", "", "read URLs from file (one per line)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output to file or directory (default: stdout)")
	rootCmd.Flags().StringVar(&outputFormat, "format", "", "output format (json|text|markdown)")
	rootCmd.Flags().StringVar(&separator, "separator", "---", "output separator for multiple URLs")

	// Fetch flags
	rootCmd.Flags().StringVarP(&browserName, "browser", "b", "auto", "browser for cookie extraction (auto|chrome|firefox|safari)")
	rootCmd.Flags().BoolVar(&javascript, "javascript", false, "force JavaScript rendering")
	rootCmd.Flags().BoolVar(&noJS, "no-js", false, "disable JavaScript rendering")
	rootCmd.Flags().IntVar(&timeout, "timeout", 30, "request timeout in seconds")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "custom user agent string")
	rootCmd.Flags().StringVar(&browserAgent, "browser-agent", "", "browser agent type (auto|chrome|firefox|safari|edge)")
	rootCmd.Flags().BoolVar(&noFollow, "no-follow-redirects", false, "disable following HTTP redirects")

	// Pipeline flags
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "continue processing remaining URLs on error")
	rootCmd.Flags().Float64Var(&delay, "delay", 0, "delay in seconds between requests (rate limiting)")

	// System flags
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all non-content output")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		configHome = filepath.Join(home, ".config")
	}

	configDir := filepath.Join(configHome, "recipr")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("toml")
	viper.SetConfigName("config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Auto-create config on first run
			configPath := filepath.Join(configDir, "config.toml")
			cfg := config.Default()
			if createErr := cfg.CreateExampleConfig(configPath); createErr == nil {
				viper.ReadInConfig()
			}
		}
	}
}

func initLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil && cfg.Logging.Level != "" {
		level = parsed
	}
	switch {
	case quiet:
		level = zerolog.ErrorLevel
	case verbose:
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return exitError(ExitConfigError, "failed to load config: %v", err)
	}

	initLogging(cfg)

	// Apply config defaults where CLI flags were not explicitly set
	if !cmd.Flags().Changed("delay") && cfg.Fetch.Delay > 0 {
		delay = float64(cfg.Fetch.Delay)
	}
	if !cmd.Flags().Changed("no-follow-redirects") && !cfg.Fetch.FollowRedirects {
		noFollow = true
	}
	if outputFormat == "" {
		outputFormat = cfg.Output.DefaultFormat
	}
	if outputFormat == "" {
		outputFormat = "json"
	}
	if noFollow {
		cfg.Fetch.FollowRedirects = false
	}
	if browserName != "" {
		cfg.Browser.Default = browserName
	}
	if userAgent != "" {
		cfg.Fetch.UserAgent = userAgent
	}
	if browserAgent != "" {
		cfg.Fetch.BrowserAgent = browserAgent
	}

	urls, err := collectURLs(args)
	if err != nil {
		return exitError(ExitInvalidInput, "failed to collect URLs: %v", err)
	}
	if len(urls) == 0 {
		return exitError(ExitInvalidInput, "no URLs provided")
	}

	log.Debug().Int("count", len(urls)).Msg("processing URLs")

	var output io.Writer = os.Stdout
	var outputDir string

	if outputFile != "" {
		info, statErr := os.Stat(outputFile)
		if (statErr == nil && info.IsDir()) || strings.HasSuffix(outputFile, "/") {
			// Directory mode: each URL gets its own file
			outputDir = outputFile
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return exitError(ExitFileIOError, "failed to create output directory: %v", err)
			}
		} else {
			f, err := os.Create(outputFile)
			if err != nil {
				return exitError(ExitFileIOError, "failed to create output file %s: %v", outputFile, err)
			}
			defer f.Close()
			output = f
		}
	}

	client := extract.New(cfg)

	var useJS *bool
	if javascript {
		t := true
		useJS = &t
	} else if noJS {
		f := false
		useJS = &f
	}

	// Failure counts per class; the final exit code reflects the most
	// severe class when nothing succeeded.
	var networkFailures, noRecipeFailures, renderFailures, writeFailures int
	successCount := 0

	for i, url := range urls {
		log.Debug().Str("url", url).Int("index", i+1).Int("total", len(urls)).Msg("processing")

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
		result, err := client.Extract(ctx, url, extract.Options{
			UseJS:   useJS,
			Timeout: time.Duration(timeout) * time.Second,
		})
		cancel()

		if err != nil {
			if errors.Is(err, recipe.ErrNoRecipe) {
				noRecipeFailures++
				log.Warn().Str("url", url).Msg("no recipe found on page")
				if !continueOnError {
					return exitError(ExitNoRecipe, "")
				}
			} else {
				networkFailures++
				log.Error().Err(err).Str("url", url).Msg("extraction failed")
				if !continueOnError {
					return exitError(ExitNetworkError, "")
				}
			}
			continue
		}

		successCount++

		rendered, err := render(result, outputFormat, cfg.Output.Pretty)
		if err != nil {
			renderFailures++
			log.Error().Err(err).Str("url", url).Msg("render failed")
			if !continueOnError {
				return exitError(ExitInvalidInput, "")
			}
			continue
		}

		if outputDir != "" {
			filename := urlToFilename(url, outputFormat)
			filePath := filepath.Join(outputDir, filename)
			if err := os.WriteFile(filePath, []byte(rendered), 0644); err != nil {
				writeFailures++
				log.Error().Err(err).Str("path", filePath).Msg("write failed")
				if !continueOnError {
					return exitError(ExitFileIOError, "")
				}
				continue
			}
			log.Debug().Str("path", filePath).Msg("saved")
		} else {
			fmt.Fprint(output, rendered)
			if len(urls) > 1 && i < len(urls)-1 {
				fmt.Fprintf(output, "\n%s\n", separator)
			}
		}

		if delay > 0 && i < len(urls)-1 {
			time.Sleep(time.Duration(delay*1000) * time.Millisecond)
		}
	}

	if code := runExitCode(successCount, networkFailures, writeFailures, renderFailures, noRecipeFailures); code != ExitSuccess {
		return &exitErr{code: code}
	}
	return nil
}

// runExitCode picks the exit code for a finished multi-URL run. Any
// success alongside failures is a partial result; otherwise the most
// severe failure class decides: network, then file I/O, then render,
// then "no recipe found".
func runExitCode(succeeded, network, fileIO, render, noRecipe int) int {
	switch {
	case network+fileIO+render+noRecipe == 0:
		return ExitSuccess
	case succeeded > 0:
		return ExitPartialError
	case network > 0:
		return ExitNetworkError
	case fileIO > 0:
		return ExitFileIOError
	case render > 0:
		return ExitInvalidInput
	}
	return ExitNoRecipe
}

func render(result *extract.Result, format string, pretty bool) (string, error) {
	switch format {
	case "json":
		payload := struct {
			URL string `json:"url"`
			*recipe.Recipe
		}{URL: result.URL, Recipe: result.Recipe}
		var (
			data []byte
			err  error
		)
		if pretty {
			data, err = json.MarshalIndent(payload, "", "  ")
		} else {
			data, err = json.Marshal(payload)
		}
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "text":
		return renderText(result.Recipe), nil
	case "markdown":
		return renderMarkdown(result.Recipe), nil
	}
	return "", fmt.Errorf("unknown output format: %s (available: json, text, markdown)", format)
}

func renderText(r *recipe.Recipe) string {
	var b strings.Builder
	b.WriteString(r.Name + "\n")
	if r.Description != "" {
		b.WriteString(r.Description + "\n")
	}
	b.WriteString("\n")
	writeTimes(&b, r, "")
	if len(r.Ingredients) > 0 {
		b.WriteString("Ingredients:\n")
		for _, ing := range r.Ingredients {
			b.WriteString("  - " + ingredientLine(ing) + "\n")
		}
		b.WriteString("\n")
	}
	if len(r.Instructions) > 0 {
		b.WriteString("Instructions:\n")
		for i, step := range r.Instructions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}
	return b.String()
}

func renderMarkdown(r *recipe.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	if r.Description != "" {
		b.WriteString(r.Description + "\n\n")
	}
	if r.ImageURL != "" {
		fmt.Fprintf(&b, "![%s](%s)\n\n", r.Name, r.ImageURL)
	}
	writeTimes(&b, r, "**")
	if len(r.Ingredients) > 0 {
		b.WriteString("## Ingredients\n\n")
		for _, ing := range r.Ingredients {
			b.WriteString("- " + ingredientLine(ing) + "\n")
		}
		b.WriteString("\n")
	}
	if len(r.Instructions) > 0 {
		b.WriteString("## Instructions\n\n")
		for i, step := range r.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	return b.String()
}

func writeTimes(b *strings.Builder, r *recipe.Recipe, emph string) {
	wrote := false
	writeIf := func(label string, minutes int) {
		if minutes > 0 {
			fmt.Fprintf(b, "%s%s:%s %d min  ", emph, label, emph, minutes)
			wrote = true
		}
	}
	writeIf("Prep", r.PrepTime)
	writeIf("Cook", r.CookTime)
	writeIf("Total", r.TotalTime)
	if r.Servings > 0 {
		fmt.Fprintf(b, "%sServings:%s %d", emph, emph, r.Servings)
		wrote = true
	}
	if wrote {
		b.WriteString("\n\n")
	}
}

// ingredientLine renders one ingredient, re-parsing the amount so the
// display form uses canonical fractions.
func ingredientLine(ing recipe.Ingredient) string {
	if ing.Amount == "" {
		if ing.Unit != "" {
			return ing.Unit + " " + ing.Name
		}
		return ing.Name
	}
	parsed := recipe.ParseAmount(ing.Amount)
	return recipe.FormatAmount(parsed.Value, ing.Unit) + " " + ing.Name
}

func collectURLs(args []string) ([]string, error) {
	var urls []string
	urls = append(urls, args...)

	if file != "" {
		fileURLs, err := readURLsFromFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read URLs from file %s: %w", file, err)
		}
		urls = append(urls, fileURLs...)
	}

	if len(args) == 0 && file == "" {
		stdinURLs, err := readURLsFromStdin()
		if err != nil {
			return nil, fmt.Errorf("failed to read URLs from stdin: %w", err)
		}
		urls = append(urls, stdinURLs...)
	}

	var cleanURLs []string
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url != "" && isValidURL(url) {
			cleanURLs = append(cleanURLs, url)
		}
	}
	return cleanURLs, nil
}

func readURLsFromFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}

func readURLsFromStdin() ([]string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, nil
	}

	var urls []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}

func isValidURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// urlToFilename converts a URL to a safe filename
func urlToFilename(rawURL, format string) string {
	name := rawURL
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")

	replacer := strings.NewReplacer(
		"/", "_",
		"?", "_",
		"&", "_",
		"=", "_",
		":", "_",
		"#", "_",
		"%", "_",
	)
	name = replacer.Replace(name)
	name = strings.TrimRight(name, "_")

	ext := ".json"
	switch format {
	case "markdown":
		ext = ".md"
	case "text":
		ext = ".txt"
	}

	if len(name) > 200 {
		name = name[:200]
	}
	return name + ext
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string {
	return e.msg
}

func exitError(code int, format string, args ...interface{}) *exitErr {
	msg := fmt.Sprintf(format, args...)
	if msg != "" && !quiet {
		fmt.Fprintf(os.Stderr, "%s\n", msg)
	}
	return &exitErr{code: code, msg: msg}
}
