package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/recast/internal/scrape"
	"github.com/cognicore/recast/pkg/recast"
	"github.com/cognicore/recast/pkg/recast/catalogue"
	"github.com/cognicore/recast/pkg/recast/config"
	"github.com/cognicore/recast/pkg/recast/oracle"
	"github.com/cognicore/recast/pkg/recast/oracle/conceptnet"
	"github.com/cognicore/recast/pkg/recast/recipe"
	"github.com/cognicore/recast/pkg/recast/store"
	"github.com/cognicore/recast/pkg/recast/store/sqlite"
)

func main() {
	var (
		settingsPath  = flag.String("config", "", "Settings YAML file (optional, env RECAST_* otherwise)")
		url           = flag.String("url", "", "Recipe page to scrape")
		htmlPath      = flag.String("html", "", "Saved recipe page to scrape")
		inputPath     = flag.String("input", "", "Recipe JSON file {name, ingredients, instructions}")
		mode          = flag.String("mode", "", `Transformation, e.g. "to vegetarian" or "to mexican" (prompted when empty)`)
		cataloguePath = flag.String("catalogue", "", "Replacement catalogue YAML (optional)")
		lexiconPath   = flag.String("lexicon", "", "Lexicon YAML (optional)")
		vocabPath     = flag.String("vocab", "", "Parser vocabulary YAML (optional)")
		conceptNetURL = flag.String("conceptnet", "", "ConceptNet API base URL (optional)")
		dbPath        = flag.String("db", "", "Database path for run history and oracle verdicts (optional)")
		seed          = flag.Int64("seed", 0, "Random seed for substitute choice (0 = clock)")
		concurrent    = flag.Bool("concurrent", true, "Extract sentences concurrently")
		verbose       = flag.Bool("v", false, "Log negative oracle answers")
		history       = flag.Int("history", 0, "List the N most recent runs and exit")
	)
	flag.Parse()

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "catalogue":
			settings.CataloguePath = *cataloguePath
		case "lexicon":
			settings.LexiconPath = *lexiconPath
		case "vocab":
			settings.VocabularyPath = *vocabPath
		case "conceptnet":
			settings.ConceptNetURL = *conceptNetURL
		case "db":
			settings.DBPath = *dbPath
		case "seed":
			settings.Seed = *seed
		case "concurrent":
			settings.Concurrent = *concurrent
		}
	})

	ctx := context.Background()
	logger := log.New(os.Stderr, "recast: ", log.LstdFlags)

	engine, cleanup, err := buildEngine(ctx, settings, logger, *verbose)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if *history > 0 {
		runs, err := engine.History(ctx, *history)
		if err != nil {
			log.Fatal(err)
		}
		printHistory(os.Stdout, runs)
		return
	}

	raw, source, err := loadRecipe(ctx, *url, *htmlPath, *inputPath)
	if err != nil {
		log.Fatal(err)
	}

	if *mode == "" {
		fmt.Printf("Loaded %q. Available styles: %s\n", raw.Name, strings.Join(engine.Catalogue().Styles(), ", "))
		fmt.Print("What transformation would you like? ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			log.Fatal("no transformation given")
		}
		*mode = strings.TrimSpace(scanner.Text())
	}

	res, err := engine.Transform(ctx, recast.Request{Recipe: raw, Mode: *mode, Source: source})
	if err != nil {
		log.Fatal(err)
	}
	printResult(os.Stdout, res)
}

func buildEngine(ctx context.Context, settings *config.Settings, logger *log.Logger, verbose bool) (*recast.Recast, func(), error) {
	loader := settings.Loader()
	components, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	stats := components.Lexicon.Stats()
	logger.Printf("lexicon: %d foods, %d verbs, %d tools; styles: %s",
		stats.Foods, stats.Verbs, stats.Tools, strings.Join(components.Catalogue.Styles(), ", "))

	var st store.Store
	if settings.DBPath != "" {
		st, err = sqlite.OpenSQLite(ctx, settings.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
	}

	orc, err := buildOracle(components, settings, st, logger)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}

	engine, err := recast.New(recast.Options{
		Parser:        components.Parser,
		Oracle:        orc,
		Catalogue:     components.Catalogue,
		Store:         st,
		OracleTimeout: settings.OracleTimeout,
		Seed:          settings.Seed,
		Concurrent:    settings.Concurrent,
		Logger:        logger,
		Verbose:       verbose,
	})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		if err := engine.Close(); err != nil {
			logger.Printf("close: %v", err)
		}
	}
	return engine, cleanup, nil
}

// buildOracle chains the catalogue and lexicon ahead of ConceptNet. Remote
// answers are memoized in process and, with a store, across runs.
func buildOracle(components *config.Components, settings *config.Settings, st store.Store, logger *log.Logger) (oracle.Oracle, error) {
	members := []oracle.Oracle{
		catalogue.NewClassifier(components.Catalogue),
		components.Lexicon,
	}
	if settings.ConceptNetURL != "" {
		var remote oracle.Oracle = &conceptnet.Client{
			BaseURL:    settings.ConceptNetURL,
			HTTPClient: &http.Client{Timeout: 10 * time.Second},
		}
		if st != nil {
			remote = oracle.NewPersistent(remote, st, logger)
		}
		cached, err := oracle.NewCached(remote, settings.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("oracle cache: %w", err)
		}
		members = append(members, cached)
	}
	return oracle.NewChain(members...), nil
}

// loadRecipe reads the recipe from exactly one of the three sources and
// returns it with a description of where it came from.
func loadRecipe(ctx context.Context, url, htmlPath, inputPath string) (recipe.RawRecipe, string, error) {
	set := 0
	for _, s := range []string{url, htmlPath, inputPath} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return recipe.RawRecipe{}, "", fmt.Errorf("exactly one of --url, --html or --input required")
	}

	switch {
	case url != "":
		raw, err := scrape.Fetch(ctx, nil, url)
		return raw, url, err
	case htmlPath != "":
		f, err := os.Open(htmlPath)
		if err != nil {
			return recipe.RawRecipe{}, "", err
		}
		defer f.Close()
		raw, err := scrape.Extract(f)
		if err != nil {
			return recipe.RawRecipe{}, "", fmt.Errorf("%s: %w", htmlPath, err)
		}
		return raw, htmlPath, nil
	default:
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return recipe.RawRecipe{}, "", err
		}
		var raw recipe.RawRecipe
		if err := json.Unmarshal(data, &raw); err != nil {
			return recipe.RawRecipe{}, "", fmt.Errorf("parse %s: %w", inputPath, err)
		}
		return raw, inputPath, nil
	}
}

func printResult(w io.Writer, res *recast.Result) {
	final := res.Recipe
	fmt.Fprintf(w, "=== %s (%s) ===\n\n", final.Name, res.Mode)

	fmt.Fprintln(w, "Your new ingredients are:")
	for _, ing := range final.Ingredients {
		fmt.Fprintln(w, "  -", ing)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Your new instructions are:")
	for i, inst := range final.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, inst)
	}

	if len(final.Substitutions) > 0 {
		fmt.Fprintln(w, "\nSubstitutions:")
		for _, sub := range final.Substitutions {
			fmt.Fprintf(w, "  %s -> %s\n", sub.Old, sub.New)
		}
	}
	if len(final.Notes) > 0 {
		fmt.Fprintln(w, "\nNotes:")
		for _, n := range final.Notes {
			fmt.Fprintln(w, "  *", n)
		}
	}
	if res.ID != "" {
		fmt.Fprintf(w, "\nRun %s\n", res.ID)
	}
}

func printHistory(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		subs := make([]string, len(r.Substitutions))
		for i, s := range r.Substitutions {
			subs[i] = s.Old + "->" + s.New
		}
		fmt.Fprintf(w, "%s  %s  %-16s %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Mode, strconv.Quote(r.Name))
		if len(subs) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(subs, ", "))
		}
	}
}
