package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/recast/pkg/recast"
	"github.com/cognicore/recast/pkg/recast/config"
	"github.com/cognicore/recast/pkg/recast/store/memstore"
)

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func writeRecipe(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipe.json")
	data := `{
  "name": "Beef Stock Soup",
  "ingredients": ["2 cups beef stock", "1 onion"],
  "instructions": ["Simmer the beef stock in a pot."]
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestCLIRunAndHistory runs one transformation against a sqlite store and
// reads it back as history.
func TestCLIRunAndHistory(t *testing.T) {
	ctx := context.Background()
	settings := &config.Settings{
		DBPath:     filepath.Join(t.TempDir(), "recast.db"),
		Seed:       1,
		Concurrent: true,
	}

	var logs bytes.Buffer
	engine, cleanup, err := buildEngine(ctx, settings, log.New(&logs, "", 0), false)
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	defer cleanup()
	if !strings.Contains(logs.String(), "lexicon: ") || !strings.Contains(logs.String(), "mexican") {
		t.Errorf("startup log missing lexicon summary: %q", logs.String())
	}

	input := writeRecipe(t)
	raw, source, err := loadRecipe(ctx, "", "", input)
	if err != nil {
		t.Fatalf("loadRecipe: %v", err)
	}
	if source != input {
		t.Errorf("source = %q", source)
	}

	res, err := engine.Transform(ctx, recast.Request{Recipe: raw, Mode: "to vegetarian", Source: source})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	var out bytes.Buffer
	printResult(&out, res)
	for _, want := range []string{
		"Your new ingredients are:",
		"  - 2 cups vegetable broth",
		"  1. Simmer the vegetable broth in a pot.",
		"beef stock -> vegetable broth",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	runs, err := engine.History(ctx, 5)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != res.ID {
		t.Fatalf("History = %+v", runs)
	}
	out.Reset()
	printHistory(&out, runs)
	if !strings.Contains(out.String(), "to vegetarian") || !strings.Contains(out.String(), `"Beef Stock Soup"`) {
		t.Errorf("history output:\n%s", out.String())
	}
}

func TestLoadRecipeFromHTML(t *testing.T) {
	path := filepath.Join("..", "..", "internal", "scrape", "testdata", "graph.html")
	raw, source, err := loadRecipe(context.Background(), "", path, "")
	if err != nil {
		t.Fatalf("loadRecipe: %v", err)
	}
	if source != path || raw.Name == "" || len(raw.Ingredients) == 0 || len(raw.Instructions) == 0 {
		t.Errorf("loadRecipe = %+v from %q", raw, source)
	}
}

func TestLoadRecipeNeedsOneSource(t *testing.T) {
	ctx := context.Background()
	if _, _, err := loadRecipe(ctx, "", "", ""); err == nil {
		t.Error("expected error with no source")
	}
	if _, _, err := loadRecipe(ctx, "http://example.com", "page.html", ""); err == nil {
		t.Error("expected error with two sources")
	}
	if _, _, err := loadRecipe(ctx, "", "", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuildEngineBadCatalogue(t *testing.T) {
	settings := &config.Settings{CataloguePath: filepath.Join(t.TempDir(), "nonexistent.yaml")}
	if _, _, err := buildEngine(context.Background(), settings, discard(), false); err == nil {
		t.Error("buildEngine should fail with a missing catalogue")
	}
}

func TestBuildOraclePersistsRemoteVerdicts(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"edges": []}`)
	}))
	defer srv.Close()

	loader := config.Loader{}
	components, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	st := memstore.New()
	settings := &config.Settings{ConceptNetURL: srv.URL, CacheSize: 16}

	orc, err := buildOracle(components, settings, st, discard())
	if err != nil {
		t.Fatalf("buildOracle: %v", err)
	}

	ctx := context.Background()
	if ok, err := orc.IsFood(ctx, "zorbleberry"); err != nil || ok {
		t.Fatalf("IsFood = %v, %v", ok, err)
	}
	if calls == 0 {
		t.Fatal("remote oracle was not queried")
	}
	if st.Verdicts() != 1 {
		t.Errorf("verdicts stored = %d, want 1", st.Verdicts())
	}

	// a fresh chain over the same store answers without the network
	before := calls
	again, err := buildOracle(components, settings, st, discard())
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := again.IsFood(ctx, "zorbleberry"); err != nil || ok {
		t.Fatalf("IsFood = %v, %v", ok, err)
	}
	if calls != before {
		t.Errorf("stored verdict not reused: %d calls", calls-before)
	}
}
