package extract

import (
	"sort"
	"strings"

	"github.com/cognicore/recast/pkg/recast/recipe"
)

// Template placeholders.
const (
	PlaceholderIsa         = "{isa}"
	PlaceholderQuantity    = "{quantity}"
	PlaceholderMeasurement = "{measurement}"
	PlaceholderMethod      = "{method}"
	PlaceholderTool        = "{tool}"
)

// Key identifies a predicate: the resolved head plus the sentence's position,
// so repeated heads across a recipe stay distinct.
type Key struct {
	Head  string
	Index int
}

// IngredientPredicate is the structured form of one ingredient phrase.
// Template holds exactly one {isa}, and at most one each of {quantity} and
// {measurement}, present only when the matching field is set.
type IngredientPredicate struct {
	Key         Key
	Isa         string
	Quantity    string
	Measurement string
	Template    string
}

// InstructionPredicate is the structured form of one instruction sentence.
// Template holds exactly one {method} and a {tool} only when Tool is set.
type InstructionPredicate struct {
	Key      Key
	Method   string
	Tool     string
	Template string
}

// Result holds the predicates of one recipe in input order.
type Result struct {
	Ingredients  []IngredientPredicate
	Instructions []InstructionPredicate

	// terms classified with the spice sense
	spices map[string]struct{}

	Notes []recipe.Note
}

// Ingredient looks up an ingredient predicate by key.
func (r *Result) Ingredient(key Key) (IngredientPredicate, bool) {
	if key.Index < 0 || key.Index >= len(r.Ingredients) {
		return IngredientPredicate{}, false
	}
	pred := r.Ingredients[key.Index]
	return pred, pred.Key == key
}

// Instruction looks up an instruction predicate by key.
func (r *Result) Instruction(key Key) (InstructionPredicate, bool) {
	if key.Index < 0 || key.Index >= len(r.Instructions) {
		return InstructionPredicate{}, false
	}
	pred := r.Instructions[key.Index]
	return pred, pred.Key == key
}

// SpiceCandidates returns the detected spice terms, sorted.
func (r *Result) SpiceCandidates() []string {
	out := make([]string, 0, len(r.spices))
	for s := range r.spices {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsSpiceCandidate reports whether term was detected as a spice.
func (r *Result) IsSpiceCandidate(term string) bool {
	_, ok := r.spices[strings.ToLower(term)]
	return ok
}
