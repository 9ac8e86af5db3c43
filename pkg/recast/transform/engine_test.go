package transform

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/recast/pkg/recast/catalogue"
	"github.com/cognicore/recast/pkg/recast/depparse"
	"github.com/cognicore/recast/pkg/recast/extract"
	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/oracle"
	"github.com/cognicore/recast/pkg/recast/oracle/lexical"
	"github.com/cognicore/recast/pkg/recast/recipe"
)

var placeholders = []string{
	extract.PlaceholderIsa, extract.PlaceholderQuantity, extract.PlaceholderMeasurement,
	extract.PlaceholderMethod, extract.PlaceholderTool,
}

func extractRecipe(t *testing.T, ingredients, instructions []string) *extract.Result {
	t.Helper()
	p, err := extract.New(extract.Options{
		Parser: depparse.NewShallow(nil, nil),
		Oracle: oracle.NewChain(catalogue.NewClassifier(catalogue.Default()), lexical.Default()),
	})
	if err != nil {
		t.Fatalf("extract.New: %v", err)
	}
	res, err := p.Extract(context.Background(), recipe.RawRecipe{
		Name:         "Test",
		Ingredients:  ingredients,
		Instructions: instructions,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return res
}

func newEngine(t *testing.T, seed int64) *RuleEngine {
	t.Helper()
	e, err := New(Options{Catalogue: catalogue.Default(), Seed: seed})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func run(t *testing.T, e *RuleEngine, mode Mode, ingredients, instructions []string) *recipe.FinalRecipe {
	t.Helper()
	final, err := e.Transform(context.Background(), "Test", mode, extractRecipe(t, ingredients, instructions))
	if err != nil {
		t.Fatalf("Transform(%s): %v", mode, err)
	}
	return final
}

func assertResolved(t *testing.T, final *recipe.FinalRecipe) {
	t.Helper()
	for _, line := range append(append([]string(nil), final.Ingredients...), final.Instructions...) {
		for _, ph := range placeholders {
			if strings.Contains(line, ph) {
				t.Errorf("unresolved %s in %q", ph, line)
			}
		}
	}
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func TestToVegetarianBeefStock(t *testing.T) {
	e := newEngine(t, 1)
	final := run(t, e, Mode{Kind: ToVegetarian},
		[]string{"2 cups beef stock", "1 onion"},
		[]string{"Simmer the beef stock in a pot."})

	if want := []string{"2 cups vegetable broth", "1 onion"}; !reflect.DeepEqual(final.Ingredients, want) {
		t.Errorf("ingredients = %q, want %q", final.Ingredients, want)
	}
	if want := []string{"Simmer the vegetable broth in a pot."}; !reflect.DeepEqual(final.Instructions, want) {
		t.Errorf("instructions = %q, want %q", final.Instructions, want)
	}
	if want := []recipe.Substitution{{Old: "beef stock", New: "vegetable broth"}}; !reflect.DeepEqual(final.Substitutions, want) {
		t.Errorf("substitutions = %v, want %v", final.Substitutions, want)
	}
}

func TestToVegetarianMeatAndItsStock(t *testing.T) {
	e := newEngine(t, 1)
	final := run(t, e, Mode{Kind: ToVegetarian},
		[]string{"1 lb beef", "2 cups beef stock"},
		[]string{"Brown the beef.", "Add the beef stock to the pot."})

	if want := []string{"1 lb tofu", "2 cups vegetable broth"}; !reflect.DeepEqual(final.Ingredients, want) {
		t.Errorf("ingredients = %q, want %q", final.Ingredients, want)
	}
	if want := []string{"Brown the tofu.", "Add the vegetable broth to the pot."}; !reflect.DeepEqual(final.Instructions, want) {
		t.Errorf("instructions = %q, want %q", final.Instructions, want)
	}
}

func TestToVegetarianReplacesEveryMeat(t *testing.T) {
	e := newEngine(t, 1)
	final := run(t, e, Mode{Kind: ToVegetarian},
		[]string{"1 lb ground beef", "2 chicken breasts", "4 slices bacon", "1 cup soy milk"},
		[]string{"Brown the beef in a skillet.", "Fry the bacon and chicken."})

	meats := catalogue.Default().Terms(catalogue.MeatProtein)
	for _, line := range final.Ingredients[:3] {
		if !strings.Contains(line, "tofu") {
			t.Errorf("%q lacks the vegetable protein", line)
		}
		for _, w := range strings.Fields(line) {
			if oneOf(w, meats) {
				t.Errorf("%q still holds %q", line, w)
			}
		}
	}
	if got := final.Ingredients[3]; got != "1 cup soy milk" {
		t.Errorf("non-meat ingredient changed: %q", got)
	}
	if got := final.Instructions[0]; got != "Brown the tofu in a skillet." {
		t.Errorf("instruction = %q", got)
	}
	if got := final.Instructions[1]; got != "Fry the tofu and tofu." {
		t.Errorf("instruction = %q", got)
	}
	assertResolved(t, final)
}

func TestToVegetarianLiquids(t *testing.T) {
	tests := []struct {
		ingredient string
		want       string
	}{
		{"2 cups chicken broth", "2 cups vegetable broth"},
		{"1 cup stock", "1 cup vegetable broth"},
		{"2 tbsp fish sauce", "2 tbsp soy sauce"},
		{"1 cup vegetable broth", "1 cup vegetable broth"},
		{"1 lb pork tenderloin", "1 lb tofu"},
	}
	e := newEngine(t, 1)
	for _, tt := range tests {
		t.Run(tt.ingredient, func(t *testing.T) {
			final := run(t, e, Mode{Kind: ToVegetarian}, []string{tt.ingredient}, []string{"Stir."})
			if final.Ingredients[0] != tt.want {
				t.Errorf("got %q, want %q", final.Ingredients[0], tt.want)
			}
		})
	}
}

func TestToVegetarianDropsMeatWord(t *testing.T) {
	e := newEngine(t, 1)
	final := run(t, e, Mode{Kind: ToVegetarian},
		[]string{"1 lb ground beef"},
		[]string{"Cook the beef meat until done."})

	if got, want := final.Instructions[0], "Cook the tofu until done."; got != want {
		t.Errorf("instruction = %q, want %q", got, want)
	}
}

func TestFromVegetarian(t *testing.T) {
	e := newEngine(t, 1)
	final := run(t, e, Mode{Kind: FromVegetarian},
		[]string{"8 oz tofu", "1 onion"},
		[]string{"Fry the tofu in a skillet."})

	if got := final.Ingredients[0]; got != "8 oz chicken" {
		t.Errorf("ingredient = %q", got)
	}
	if got := final.Instructions[0]; got != "Fry the chicken in a skillet." {
		t.Errorf("instruction = %q", got)
	}
}

func TestToHealthyBacon(t *testing.T) {
	healthyMeat := catalogue.Default().Intersect(catalogue.MeatProtein, catalogue.Healthy)
	for seed := int64(1); seed <= 8; seed++ {
		e := newEngine(t, seed)
		final := run(t, e, Mode{Kind: ToHealthy},
			[]string{"1 lb bacon"},
			[]string{"Fry the bacon in a pan."})

		repl := strings.TrimPrefix(final.Ingredients[0], "1 lb ")
		if !oneOf(repl, healthyMeat) {
			t.Errorf("seed %d: %q not drawn from %v", seed, repl, healthyMeat)
		}
		if want := "Fry the " + repl + " in a pan."; final.Instructions[0] != want {
			t.Errorf("seed %d: instruction = %q, want %q", seed, final.Instructions[0], want)
		}
	}
}

func TestToHealthyFats(t *testing.T) {
	e := newEngine(t, 1)
	final := run(t, e, Mode{Kind: ToHealthy},
		[]string{"1 cup shortening", "2 tbsp olive oil"},
		[]string{"Melt the shortening in a pan."})

	if got := final.Ingredients[0]; got != "1 cup coconut oil" {
		t.Errorf("shortening -> %q", got)
	}
	if got := final.Ingredients[1]; got != "2 tbsp olive oil" {
		t.Errorf("healthy fat changed: %q", got)
	}
	if got := final.Instructions[0]; got != "Melt the coconut oil in a pan." {
		t.Errorf("instruction = %q", got)
	}
}

func TestFromHealthy(t *testing.T) {
	unhealthyMeat := catalogue.Default().Intersect(catalogue.MeatProtein, catalogue.Unhealthy)
	e := newEngine(t, 3)
	final := run(t, e, Mode{Kind: FromHealthy},
		[]string{"1 lb chicken", "2 tbsp olive oil"},
		[]string{"Grill the chicken."})

	repl := strings.TrimPrefix(final.Ingredients[0], "1 lb ")
	if !oneOf(repl, unhealthyMeat) {
		t.Errorf("%q not drawn from %v", repl, unhealthyMeat)
	}
	if got := final.Ingredients[1]; got != "2 tbsp olive oil" {
		t.Errorf("olive oil changed: %q", got)
	}
	found := false
	for _, n := range final.Notes {
		if errors.Is(n.Kind, internalerr.ErrNoKnownSubstitute) && strings.Contains(n.Text, "olive oil") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a no-known-substitute note, got %v", final.Notes)
	}
}

func TestToStyleMexicanCheese(t *testing.T) {
	e := newEngine(t, 1)
	final := run(t, e, Style("Mexican"),
		[]string{"shredded cheese", "1 onion"},
		[]string{"Melt the cheese in a pan."})

	guide, _ := catalogue.Default().Style("mexican")
	wantIngredients := []string{"shredded queso fresco", "1 onion"}
	wantInstructions := []string{"Melt the queso fresco in a pan."}
	for _, sp := range guide.Spices {
		wantIngredients = append(wantIngredients, strings.ToUpper(sp[:1])+sp[1:])
		wantInstructions = append(wantInstructions, "Toss in some "+sp+" also")
	}
	if !reflect.DeepEqual(final.Ingredients, wantIngredients) {
		t.Errorf("ingredients = %q, want %q", final.Ingredients, wantIngredients)
	}
	if !reflect.DeepEqual(final.Instructions, wantInstructions) {
		t.Errorf("instructions = %q, want %q", final.Instructions, wantInstructions)
	}
}

func TestToStyleSwapsDetectedSpice(t *testing.T) {
	guide, _ := catalogue.Default().Style("indian")
	for seed := int64(1); seed <= 5; seed++ {
		e := newEngine(t, seed)
		final := run(t, e, Style("indian"),
			[]string{"1 tsp paprika", "1 onion"},
			[]string{"Stir in the paprika."})

		spice := strings.TrimPrefix(final.Ingredients[0], "1 tsp ")
		if !oneOf(spice, guide.Spices) {
			t.Errorf("seed %d: %q not from pool %v", seed, spice, guide.Spices)
		}
		text := strings.Join(final.Instructions, " ")
		for _, sp := range guide.Spices {
			if !strings.Contains(text, sp) {
				t.Errorf("seed %d: spice %q missing from %q", seed, sp, text)
			}
		}
		if strings.Contains(text, "paprika") {
			t.Errorf("seed %d: paprika left in %q", seed, text)
		}
	}
}

func TestStyleAdditionsAreAppended(t *testing.T) {
	e := newEngine(t, 1)
	ingredients := []string{"2 cups rice", "1 onion", "1 tbsp butter"}
	instructions := []string{"Boil the rice.", "Melt the butter in a pan.", "Add the onion."}
	final := run(t, e, Style("chinese"), ingredients, instructions)

	if len(final.Ingredients) < len(ingredients) || len(final.Instructions) < len(instructions) {
		t.Fatalf("entries lost: %v / %v", final.Ingredients, final.Instructions)
	}
	for i, want := range []string{"2 cups jasmine rice", "1 onion", "1 tbsp sesame oil"} {
		if final.Ingredients[i] != want {
			t.Errorf("ingredient %d = %q, want %q", i, final.Ingredients[i], want)
		}
	}
	for _, extra := range final.Instructions[len(instructions):] {
		if !strings.HasPrefix(extra, "Toss in some ") {
			t.Errorf("unexpected appended step %q", extra)
		}
	}
	assertResolved(t, final)
}

func TestPlaceholdersResolvedInEveryMode(t *testing.T) {
	ingredients := []string{"2 cups beef stock", "1 lb ground beef", "8 oz tofu", "1 tsp cumin", "shredded cheese", "1 cup of flour"}
	instructions := []string{
		"In a large pot, heat the oil.",
		"Brown the ground beef in a skillet.",
		"Simmer the beef stock in a pot.",
		"Bake on a baking sheet.",
		"Enjoy the meal.",
	}
	modes := []Mode{{Kind: ToVegetarian}, {Kind: FromVegetarian}, {Kind: ToHealthy}, {Kind: FromHealthy}, Style("mexican"), Style("indian")}

	e := newEngine(t, 7)
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			final := run(t, e, mode, ingredients, instructions)
			assertResolved(t, final)
			if len(final.Ingredients) < len(ingredients) || len(final.Instructions) < len(instructions) {
				t.Errorf("entries lost in %s", mode)
			}
		})
	}
}

func TestSeedMakesRunsRepeatable(t *testing.T) {
	ingredients := []string{"1 lb bacon", "2 sausages", "1 lb steak"}
	instructions := []string{"Fry the bacon.", "Grill the steak."}
	res := extractRecipe(t, ingredients, instructions)

	e := newEngine(t, 42)
	first, err := e.Transform(context.Background(), "x", Mode{Kind: ToHealthy}, res)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Transform(context.Background(), "x", Mode{Kind: ToHealthy}, res)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed gave different runs:\n%v\n%v", first, second)
	}
}

func TestUnsupportedModeFailsFast(t *testing.T) {
	e := newEngine(t, 1)
	res := extractRecipe(t, []string{"1 onion"}, []string{"Stir."})

	for _, mode := range []Mode{Style("italian"), {Kind: Kind(99)}, {}} {
		final, err := e.Transform(context.Background(), "x", mode, res)
		if !errors.Is(err, internalerr.ErrUnsupportedMode) {
			t.Errorf("Transform(%s) err = %v, want ErrUnsupportedMode", mode, err)
		}
		if final != nil {
			t.Errorf("Transform(%s) returned partial output", mode)
		}
	}
}

func TestTransformRejectsEmptyResult(t *testing.T) {
	e := newEngine(t, 1)
	if _, err := e.Transform(context.Background(), "x", Mode{Kind: ToVegetarian}, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("nil result err = %v", err)
	}
	if _, err := e.Transform(context.Background(), "x", Mode{Kind: ToVegetarian}, &extract.Result{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("empty result err = %v", err)
	}
}

func TestNewRequiresCatalogue(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("New err = %v", err)
	}
}

func testSession(guard *oracle.Guard) *Session {
	return newSession(Mode{Kind: ToVegetarian}, catalogue.StyleGuide{}, nil, rand.New(rand.NewSource(1)), guard)
}

func TestPropagate(t *testing.T) {
	tests := []struct {
		name string
		subs []recipe.Substitution
		text string
		want string
	}{
		{
			name: "phrase pass",
			subs: []recipe.Substitution{{Old: "beef stock", New: "vegetable broth"}},
			text: "Pour in the Beef Stock.",
			want: "Pour in the vegetable broth.",
		},
		{
			name: "token pass skips modifiers",
			subs: []recipe.Substitution{{Old: "ground beef", New: "tofu"}},
			text: "Brown the beef, breaking up the ground bits.",
			want: "Brown the tofu, breaking up the ground bits.",
		},
		{
			name: "no cascade into own replacement",
			subs: []recipe.Substitution{{Old: "beef", New: "beef stir-fry"}},
			text: "Slice the beef.",
			want: "Slice the beef stir-fry.",
		},
		{
			name: "word already in replacement",
			subs: []recipe.Substitution{{Old: "ground beef", New: "beef crumbles"}},
			text: "Brown the beef.",
			want: "Brown the beef.",
		},
		{
			name: "longer term wins over its prefix",
			subs: []recipe.Substitution{{Old: "beef", New: "tofu"}, {Old: "beef stock", New: "vegetable broth"}},
			text: "Add the beef stock to the pot.",
			want: "Add the vegetable broth to the pot.",
		},
		{
			name: "both terms in one sentence",
			subs: []recipe.Substitution{{Old: "beef", New: "lamb"}, {Old: "beef broth", New: "vegetable broth"}},
			text: "Brown the beef, then add the beef broth.",
			want: "Brown the lamb, then add the vegetable broth.",
		},
		{
			name: "word pass leaves inserted text alone",
			subs: []recipe.Substitution{{Old: "chicken", New: "beef"}, {Old: "ground beef", New: "tofu"}},
			text: "Brown the chicken.",
			want: "Brown the beef.",
		},
		{
			name: "whole word only",
			subs: []recipe.Substitution{{Old: "ham", New: "tofu"}},
			text: "Add the ham to the hamper.",
			want: "Add the tofu to the hamper.",
		},
	}

	e := newEngine(t, 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSession(nil)
			for _, sub := range tt.subs {
				s.record(sub.Old, sub.New)
			}
			if got := e.propagate(context.Background(), s, tt.text); got != tt.want {
				t.Errorf("propagate = %q, want %q", got, tt.want)
			}
		})
	}
}

type downOracle struct{}

func (downOracle) IsFood(context.Context, string) (bool, error) { return false, errors.New("down") }
func (downOracle) IsCookingVerb(context.Context, string) (bool, error) {
	return false, errors.New("down")
}
func (downOracle) IsCookingTool(context.Context, string) (bool, error) {
	return false, errors.New("down")
}
func (downOracle) SenseLabel(context.Context, string) (string, error) { return "", errors.New("down") }

func TestPropagateOracleDownIsNegative(t *testing.T) {
	e := newEngine(t, 1)
	guard := oracle.NewGuard(downOracle{}, oracle.GuardOptions{})
	s := testSession(guard)
	s.record("smoked kielbasa", "tofu")

	if got, want := e.propagate(context.Background(), s, "Slice the kielbasa."), "Slice the kielbasa."; got != want {
		t.Errorf("propagate = %q, want %q", got, want)
	}
	if n := len(guard.Failures()); n == 0 {
		t.Error("expected recorded oracle failures")
	}
}

func TestSessionKeepsFirstReplacement(t *testing.T) {
	s := testSession(nil)
	s.record("Bacon", "turkey")
	s.record("bacon", "chicken")

	if got, _ := s.lookup("BACON"); got != "turkey" {
		t.Errorf("lookup = %q, want turkey", got)
	}
	if n := len(s.Substitutions()); n != 1 {
		t.Errorf("substitutions = %d, want 1", n)
	}
}
