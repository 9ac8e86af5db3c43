// Package transform is the transformation stage: a rule-based substitution
// engine that rewrites extracted predicates for a goal such as "to vegetarian"
// or "to mexican" and renders the new ingredient and instruction text.
package transform

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/cognicore/recast/pkg/recast/catalogue"
	"github.com/cognicore/recast/pkg/recast/extract"
	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/oracle"
	"github.com/cognicore/recast/pkg/recast/phrase"
	"github.com/cognicore/recast/pkg/recast/recipe"
)

// StyleInstruction is the step appended for each missing style spice.
const StyleInstruction = "Toss in some %s also"

// Options configures a RuleEngine.
type Options struct {
	Catalogue *catalogue.Catalogue

	// Oracle is optional. When set, instruction propagation also replaces
	// words of a multi-word head that the oracle classifies as food.
	Oracle        oracle.Oracle
	OracleTimeout time.Duration

	// Seed fixes the random source used to pick among several valid
	// replacements. Zero seeds every run from the clock.
	Seed int64

	Logger *log.Logger
}

// RuleEngine is the transformation stage. It is read-only after New; every
// Transform call owns a fresh Session.
type RuleEngine struct {
	cat     *catalogue.Catalogue
	oracle  oracle.Oracle
	timeout time.Duration
	seed    int64
	logger  *log.Logger
}

// New creates a RuleEngine. Catalogue is required.
func New(opts Options) (*RuleEngine, error) {
	if opts.Catalogue == nil {
		return nil, fmt.Errorf("transform: catalogue required: %w", internalerr.ErrInvalidConfig)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RuleEngine{
		cat:     opts.Catalogue,
		oracle:  opts.Oracle,
		timeout: opts.OracleTimeout,
		seed:    opts.Seed,
		logger:  logger,
	}, nil
}

// Catalogue returns the catalogue the engine draws replacements from.
func (e *RuleEngine) Catalogue() *catalogue.Catalogue { return e.cat }

// Transform rewrites the predicates in res for mode and renders the final
// recipe. An unknown mode or cuisine fails before any output is built.
func (e *RuleEngine) Transform(ctx context.Context, name string, mode Mode, res *extract.Result) (*recipe.FinalRecipe, error) {
	if res == nil || len(res.Ingredients) == 0 || len(res.Instructions) == 0 {
		return nil, fmt.Errorf("transform: nothing to transform: %w", internalerr.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	apply, err := ruleFor(mode.Kind)
	if err != nil {
		return nil, err
	}
	var style catalogue.StyleGuide
	if mode.Kind == ToStyle {
		var ok bool
		if style, ok = e.cat.Style(mode.Cuisine); !ok {
			return nil, fmt.Errorf("no style guide for %q: %w", mode.Cuisine, internalerr.ErrUnsupportedMode)
		}
	}

	s := newSession(mode, style, res.SpiceCandidates(), e.newRand(), e.newGuard())

	final := &recipe.FinalRecipe{
		Name:         name,
		Ingredients:  make([]string, 0, len(res.Ingredients)),
		Instructions: make([]string, 0, len(res.Instructions)),
	}
	for _, pred := range res.Ingredients {
		final.Ingredients = append(final.Ingredients, e.ingredient(s, apply, pred))
	}
	for _, pred := range res.Instructions {
		final.Instructions = append(final.Instructions, e.instruction(ctx, s, pred))
	}
	if mode.Kind == ToStyle {
		addStyleSpices(s, final)
	}

	final.Substitutions = s.Substitutions()
	final.Notes = append(final.Notes, res.Notes...)
	final.Notes = append(final.Notes, s.notes...)
	if s.guard != nil {
		for _, failure := range s.guard.Failures() {
			final.Notes = append(final.Notes, recipe.Note{Kind: internalerr.ErrOracleUnavailable, Text: failure.Error()})
		}
	}
	for _, sub := range final.Substitutions {
		e.logger.Printf("%s: %q -> %q", mode, sub.Old, sub.New)
	}
	return final, nil
}

func (e *RuleEngine) newRand() *rand.Rand {
	seed := e.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (e *RuleEngine) newGuard() *oracle.Guard {
	if e.oracle == nil {
		return nil
	}
	return oracle.NewGuard(e.oracle, oracle.GuardOptions{Timeout: e.timeout, Logger: e.logger})
}

// ingredient picks the replacement for one head and resolves its template.
func (e *RuleEngine) ingredient(s *Session, apply rule, pred extract.IngredientPredicate) string {
	term := pred.Isa
	if repl, ok := s.lookup(term); ok {
		term = repl
	} else if repl, ok := apply(e.cat, s, term); ok && !strings.EqualFold(repl, term) {
		s.record(pred.Isa, repl)
		term = repl
	}
	return strings.NewReplacer(
		extract.PlaceholderIsa, term,
		extract.PlaceholderQuantity, pred.Quantity,
		extract.PlaceholderMeasurement, pred.Measurement,
	).Replace(pred.Template)
}

// instruction propagates the substitutions into one instruction template and
// resolves its method and tool placeholders.
func (e *RuleEngine) instruction(ctx context.Context, s *Session, pred extract.InstructionPredicate) string {
	text := e.propagate(ctx, s, pred.Template)
	if s.Mode.Kind == ToVegetarian {
		text, _ = phrase.ReplaceAll(text, "meat ", "")
	}
	return strings.NewReplacer(
		extract.PlaceholderMethod, pred.Method,
		extract.PlaceholderTool, pred.Tool,
	).Replace(text)
}

// propagate rewrites text with every substitution. Whole old terms are
// matched first in one leftmost-longest pass, so "beef stock" wins over
// "beef". Words of multi-word terms that matched nowhere are then replaced
// in the text between those matches. A word that occurs in its own
// replacement is left alone.
func (e *RuleEngine) propagate(ctx context.Context, s *Session, text string) string {
	olds := make([]string, len(s.subs))
	for i, sub := range s.subs {
		olds[i] = sub.Old
	}
	matches := phrase.FindAll(text, olds)
	matched := make([]bool, len(s.subs))
	for _, m := range matches {
		matched[m.Index] = true
	}
	words := e.wordPairs(ctx, s, text, matched)

	var b strings.Builder
	prev := 0
	for _, m := range matches {
		b.WriteString(replaceWords(text[prev:m.Start], words))
		b.WriteString(s.subs[m.Index].New)
		prev = m.End
	}
	b.WriteString(replaceWords(text[prev:], words))
	return b.String()
}

// wordPairs lists the word replacements for multi-word terms whose phrase
// did not match.
func (e *RuleEngine) wordPairs(ctx context.Context, s *Session, text string, matched []bool) []phrase.Pair {
	var pairs []phrase.Pair
	for i, sub := range s.subs {
		if matched[i] {
			continue
		}
		words := strings.Fields(sub.Old)
		if len(words) < 2 {
			continue
		}
		repl := strings.ToLower(sub.New)
		for _, w := range words {
			if strings.Contains(repl, strings.ToLower(w)) || !phrase.Contains(text, w) {
				continue
			}
			if !e.isFoodWord(ctx, s, w) {
				continue
			}
			pairs = append(pairs, phrase.Pair{Old: w, New: sub.New})
		}
	}
	return pairs
}

func replaceWords(segment string, pairs []phrase.Pair) string {
	if len(pairs) == 0 {
		return segment
	}
	out, _ := phrase.ReplacePairs(segment, pairs)
	return out
}

// isFoodWord keeps modifiers such as "ground" or "shredded" out of the word
// pass.
func (e *RuleEngine) isFoodWord(ctx context.Context, s *Session, w string) bool {
	if e.cat.Knows(w) {
		return true
	}
	return s.guard != nil && s.guard.IsFood(ctx, w)
}

// addStyleSpices appends an ingredient and a step for every spice of the
// style guide that no instruction mentions yet.
func addStyleSpices(s *Session, final *recipe.FinalRecipe) {
	text := strings.ToLower(strings.Join(final.Instructions, "\n"))
	for _, sp := range s.style.Spices {
		if strings.Contains(text, strings.ToLower(sp)) {
			continue
		}
		final.Ingredients = append(final.Ingredients, phrase.Capitalize(sp))
		final.Instructions = append(final.Instructions, fmt.Sprintf(StyleInstruction, sp))
	}
}
