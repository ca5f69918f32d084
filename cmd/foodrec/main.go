// Package main is the foodrec CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hyperjump/foodrec/internal/cli"
	"github.com/hyperjump/foodrec/internal/config"
	"github.com/hyperjump/foodrec/internal/index"
	"github.com/hyperjump/foodrec/internal/models"
	"github.com/hyperjump/foodrec/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/foodrec/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory takes precedence if it exists. A missing default config is not an
// error: built-in defaults are used and the returned path is empty.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "search":
		runSearch()
	case "interactive":
		runSession("interactive", cli.InteractiveCollection, "Interactive food search collection",
			func(ctx context.Context, app *cli.App) error { return app.RunInteractive(ctx, os.Stdin, os.Stdout) })
	case "advanced":
		runSession("advanced", cli.AdvancedCollection, "Advanced food search with filtering capabilities",
			func(ctx context.Context, app *cli.App) error { return app.RunAdvanced(ctx, os.Stdin, os.Stdout) })
	case "calories":
		runSession("calories", cli.CalorieCollection, "Calorie checker collection",
			func(ctx context.Context, app *cli.App) error { return app.RunCalories(ctx, os.Stdin, os.Stdout) })
	case "chat":
		runSession("chat", cli.ChatCollection, "Food recommendation chat collection",
			func(ctx context.Context, app *cli.App) error { return app.RunChat(ctx, os.Stdin, os.Stdout) })
	case "limits":
		runSession("limits", cli.LimitsCollection, "Result limit comparison collection",
			func(ctx context.Context, app *cli.App) error { return app.RunLimits(ctx, os.Stdin, os.Stdout) })
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("foodrec version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config, creates the logger and builds the named collection.
// The returned cleanup closes the app and flushes the logger.
func setup(ctx context.Context, configPath string, debug bool, collection, description string) (*cli.App, func(), error) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolved),
		zap.String("catalog", cfg.Catalog.Path),
		zap.String("embedding", cfg.Embedding.Provider),
		zap.String("index", cfg.Index.Backend),
		zap.String("generation", cfg.Generation.Provider))

	app, err := cli.NewApp(ctx, cfg, cli.WithLogger(logger))
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	cleanup := func() {
		app.Close()
		_ = logger.Sync()
	}
	if err := app.Build(ctx, collection, description); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build collection: %w", err)
	}
	return app, cleanup, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSession(name, collection, description string, run func(context.Context, *cli.App) error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	ctx, stop := signalContext()
	defer stop()

	app, cleanup, err := setup(ctx, *configPath, *debug, collection, description)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	fmt.Printf("Loaded %d food items into '%s'\n", len(app.Records()), collection)

	if err := run(ctx, app); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", name, err)
		os.Exit(1)
	}
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: foodrec search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Filters are applied after retrieval, so a filtered search looks at a wider
pool of candidates than --limit before cutting the list down.
  • --cuisine matches the cuisine exactly, ignoring case.
  • --max-calories keeps foods at or under the given calories per serving.

Examples:
  foodrec search creamy pasta
  foodrec search --cuisine Italian "creamy pasta"
  foodrec search --max-calories 300 healthy meal
  foodrec search light fresh meal --cuisine Japanese --max-calories 250 --limit 3
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// searchQueryFromFlags builds the query for the search command. A negative
// maxCalories means no calorie filter.
func searchQueryFromFlags(query string, limit int, cuisine string, maxCalories int) *models.SearchQuery {
	q := &models.SearchQuery{Query: query, Limit: limit, Cuisine: cuisine}
	if maxCalories >= 0 {
		q.MaxCalories = models.IntPtr(maxCalories)
	}
	return q
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	limit := fs.Int("limit", models.DefaultLimit, "number of results")
	cuisine := fs.String("cuisine", "", "only return foods of this cuisine")
	maxCalories := fs.Int("max-calories", -1, "only return foods at or under this many calories per serving")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signalContext()
	defer stop()

	app, cleanup, err := setup(ctx, *configPath, *debug, cli.SearchCollection, "Food search collection")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	response, err := app.Search(ctx, searchQueryFromFlags(queryStr, *limit, *cuisine, *maxCalories))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	ctx, stop := signalContext()
	defer stop()

	app, cleanup, err := setup(ctx, *configPath, *debug, cli.SearchCollection, "Food search collection")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := writeStatus(os.Stdout, app.Health(ctx), *outputFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeStatus(w io.Writer, report *index.HealthReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("output failed: %w", err)
		}
	case "text":
		fmt.Fprintf(w, "collection:       %s\n", report.Collection)
		fmt.Fprintf(w, "backend:          %s\n", report.Backend)
		fmt.Fprintf(w, "healthy:          %t\n", report.IsHealthy)
		fmt.Fprintf(w, "items:            %d\n", report.ItemCount)
		fmt.Fprintf(w, "has_embeddings:   %t\n", report.HasEmbeddings)
		if len(report.MetadataFields) > 0 {
			fmt.Fprintf(w, "metadata_fields:  %s\n", strings.Join(report.MetadataFields, ", "))
		}
		for _, issue := range report.Issues {
			fmt.Fprintf(w, "issue:            %s\n", issue)
		}
	default:
		return fmt.Errorf("unknown output format %q; use text or json", format)
	}
	return nil
}

func printUsage() {
	fmt.Println(`foodrec - Food recommendations by similarity search

Usage:
  foodrec search [flags] <query>   Search the food catalog
  foodrec interactive [flags]      Free-text search session
  foodrec advanced [flags]         Menu-driven search with cuisine and calorie filters
  foodrec calories [flags]         Find foods that fit a calorie budget
  foodrec chat [flags]             Recommendation chat, with optional text generation
  foodrec limits [flags]           Compare similarity scores across result limits
  foodrec status [flags]           Show collection health
  foodrec version                  Show version
  foodrec help                     Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/foodrec/config.yaml,
                     or ./config.yaml when present)
  --debug            Enable debug logging

Search Flags:
  --limit int           Number of results (default: 5)
  --cuisine string      Only return foods of this cuisine (case-insensitive)
  --max-calories int    Only return foods at or under this many calories
  --output string       Output format: text, compact, or json (default: text)

Status Flags:
  --output string    Output format: text or json (default: text)

Examples:
  foodrec search "chocolate dessert"
  foodrec search --cuisine Italian --max-calories 400 pasta
  foodrec search --output json "spicy noodles"
  foodrec chat --config ./config.yaml
  foodrec status --output json`)
}
