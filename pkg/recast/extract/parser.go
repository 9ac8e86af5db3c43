// Package extract is the extraction stage: it turns raw ingredient and
// instruction sentences into predicates by combining a dependency parse with
// oracle classification.
package extract

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/recast/pkg/recast/depparse"
	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/oracle"
	"github.com/cognicore/recast/pkg/recast/recipe"
)

// DefaultPairedWords are bare modifier nouns merged with the word before them.
var DefaultPairedWords = []string{"stock", "broth", "sauce", "loin", "tenderloin", "sirloin"}

// Options configures a Parser.
type Options struct {
	Parser depparse.Parser
	Oracle oracle.Oracle

	// PairedWords overrides DefaultPairedWords when non-empty.
	PairedWords []string

	// OracleTimeout bounds each oracle call; a timeout counts as negative.
	OracleTimeout time.Duration

	// Concurrent extracts ingredients and instructions in parallel.
	Concurrent bool

	Logger  *log.Logger
	Verbose bool
}

// Parser is the extraction stage. It holds no per-recipe state, so one Parser
// can serve many recipes.
type Parser struct {
	parser     depparse.Parser
	oracle     oracle.Oracle
	paired     map[string]struct{}
	timeout    time.Duration
	concurrent bool
	logger     *log.Logger
	verbose    bool
}

// New creates a Parser. Parser and Oracle are required.
func New(opts Options) (*Parser, error) {
	if opts.Parser == nil {
		return nil, fmt.Errorf("extract: dependency parser required: %w", internalerr.ErrInvalidConfig)
	}
	if opts.Oracle == nil {
		return nil, fmt.Errorf("extract: oracle required: %w", internalerr.ErrInvalidConfig)
	}
	words := opts.PairedWords
	if len(words) == 0 {
		words = DefaultPairedWords
	}
	paired := make(map[string]struct{}, len(words))
	for _, w := range words {
		paired[strings.ToLower(w)] = struct{}{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Parser{
		parser:     opts.Parser,
		oracle:     opts.Oracle,
		paired:     paired,
		timeout:    opts.OracleTimeout,
		concurrent: opts.Concurrent,
		logger:     logger,
		verbose:    opts.Verbose,
	}, nil
}

// run is the state of one Extract call.
type run struct {
	*Parser
	guard *oracle.Guard
}

type stageOutput struct {
	notes  []recipe.Note
	spices map[string]struct{}
}

// Extract builds the predicates of raw. Both lists keep input order. A
// malformed sentence never aborts the run; it falls back to its literal text
// and leaves a note.
func (p *Parser) Extract(ctx context.Context, raw recipe.RawRecipe) (*Result, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		Parser: p,
		guard: oracle.NewGuard(p.oracle, oracle.GuardOptions{
			Timeout: p.timeout,
			Logger:  p.logger,
			Verbose: p.verbose,
		}),
	}

	res := &Result{
		Ingredients:  make([]IngredientPredicate, len(raw.Ingredients)),
		Instructions: make([]InstructionPredicate, len(raw.Instructions)),
		spices:       make(map[string]struct{}),
	}
	var ingOut, instOut stageOutput

	ingredients := func(ctx context.Context) error {
		out, err := r.ingredients(ctx, raw.Ingredients, res.Ingredients)
		ingOut = out
		return err
	}
	instructions := func(ctx context.Context) error {
		out, err := r.instructions(ctx, raw.Instructions, res.Instructions)
		instOut = out
		return err
	}

	if p.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return ingredients(gctx) })
		g.Go(func() error { return instructions(gctx) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := ingredients(ctx); err != nil {
			return nil, err
		}
		if err := instructions(ctx); err != nil {
			return nil, err
		}
	}

	res.Notes = append(res.Notes, ingOut.notes...)
	res.Notes = append(res.Notes, instOut.notes...)
	for s := range ingOut.spices {
		res.spices[s] = struct{}{}
	}
	for _, failure := range r.guard.Failures() {
		res.Notes = append(res.Notes, recipe.Note{Kind: internalerr.ErrOracleUnavailable, Text: failure.Error()})
	}
	return res, nil
}

// parse runs the dependency parser and picks the first root. A sentence with
// no root falls back to its first token; a sentence with no tokens returns a
// nil root.
func (r *run) parse(ctx context.Context, sentence string, out *stageOutput) ([]*depparse.Token, *depparse.Token, error) {
	tokens, err := r.parser.Parse(ctx, sentence)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		r.note(out, internalerr.ErrNoRootToken, "parse %q: %v", sentence, err)
		return nil, nil, nil
	}

	// Only the first root of a sentence counts; later clauses are ignored.
	root := depparse.FirstRoot(tokens)
	if root == nil {
		if len(tokens) == 0 {
			r.note(out, internalerr.ErrNoRootToken, "%q has no tokens", sentence)
			return nil, nil, nil
		}
		r.note(out, internalerr.ErrNoRootToken, "%q: using %q", sentence, tokens[0].Text)
		root = tokens[0]
	}
	return tokens, root, nil
}

func (r *run) note(out *stageOutput, kind error, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	r.logger.Printf("%v: %s", kind, text)
	out.notes = append(out.notes, recipe.Note{Kind: kind, Text: text})
}
