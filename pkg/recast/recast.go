package recast

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/recast/pkg/recast/catalogue"
	"github.com/cognicore/recast/pkg/recast/depparse"
	"github.com/cognicore/recast/pkg/recast/extract"
	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/oracle"
	"github.com/cognicore/recast/pkg/recast/oracle/lexical"
	"github.com/cognicore/recast/pkg/recast/recipe"
	"github.com/cognicore/recast/pkg/recast/store"
	"github.com/cognicore/recast/pkg/recast/transform"
)

// Recast is the recipe transformation facade: extraction followed by
// transformation, with optional run history.
type Recast struct {
	cat       *catalogue.Catalogue
	extractor *extract.Parser
	engine    *transform.RuleEngine
	store     store.Store
	logger    *log.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a Recast instance. Every field is optional.
type Options struct {
	// Parser defaults to the rule-based shallow parser.
	Parser depparse.Parser
	// Oracle defaults to the catalogue followed by the built-in lexicon.
	Oracle oracle.Oracle
	// Catalogue defaults to catalogue.Default().
	Catalogue *catalogue.Catalogue
	// Store keeps run history when set.
	Store store.Store

	OracleTimeout time.Duration
	Seed          int64
	Concurrent    bool
	Logger        *log.Logger
	Verbose       bool
}

// New creates a Recast instance with the given dependencies
func New(opts Options) (*Recast, error) {
	cat := opts.Catalogue
	if cat == nil {
		cat = catalogue.Default()
	}
	parser := opts.Parser
	if parser == nil {
		parser = depparse.NewShallow(nil, nil)
	}
	orc := opts.Oracle
	if orc == nil {
		orc = oracle.NewChain(catalogue.NewClassifier(cat), lexical.Default())
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	extractor, err := extract.New(extract.Options{
		Parser:        parser,
		Oracle:        orc,
		OracleTimeout: opts.OracleTimeout,
		Concurrent:    opts.Concurrent,
		Logger:        logger,
		Verbose:       opts.Verbose,
	})
	if err != nil {
		return nil, err
	}
	engine, err := transform.New(transform.Options{
		Catalogue:     cat,
		Oracle:        orc,
		OracleTimeout: opts.OracleTimeout,
		Seed:          opts.Seed,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	return &Recast{
		cat:       cat,
		extractor: extractor,
		engine:    engine,
		store:     opts.Store,
		logger:    logger,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close cleanly shuts down the Recast instance
func (r *Recast) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// Catalogue returns the replacement catalogue in use.
func (r *Recast) Catalogue() *catalogue.Catalogue { return r.cat }

// Request is one transformation to run.
type Request struct {
	Recipe recipe.RawRecipe
	// Mode is written as the user types it: "to vegetarian", "to mexican".
	Mode string
	// Source records where the recipe came from in the run history.
	Source string
}

// Result is the outcome of one run.
type Result struct {
	ID        string
	Mode      transform.Mode
	Recipe    *recipe.FinalRecipe
	CreatedAt time.Time
}

// Transform parses the mode, extracts predicates from the recipe, rewrites
// them and stores the run when a store is configured. A run that fails to
// save is still returned.
func (r *Recast) Transform(ctx context.Context, req Request) (*Result, error) {
	mode, err := transform.ParseMode(req.Mode, r.cat)
	if err != nil {
		return nil, err
	}
	return r.TransformMode(ctx, req, mode)
}

// TransformMode is Transform with an already parsed mode; req.Mode is ignored.
func (r *Recast) TransformMode(ctx context.Context, req Request, mode transform.Mode) (*Result, error) {
	res, err := r.extractor.Extract(ctx, req.Recipe)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", req.Recipe.Name, err)
	}
	final, err := r.engine.Transform(ctx, req.Recipe.Name, mode, res)
	if err != nil {
		return nil, fmt.Errorf("transform %q: %w", req.Recipe.Name, err)
	}

	out := &Result{
		ID:        r.newID(),
		Mode:      mode,
		Recipe:    final,
		CreatedAt: time.Now().UTC(),
	}
	if r.store != nil {
		if err := r.store.SaveRun(ctx, toRun(out, req.Source)); err != nil {
			r.logger.Printf("save run %s: %v", out.ID, err)
		}
	}
	return out, nil
}

// History returns the most recent stored runs, newest first.
func (r *Recast) History(ctx context.Context, limit int) ([]store.Run, error) {
	if r.store == nil {
		return nil, fmt.Errorf("history: no store configured: %w", internalerr.ErrStoreUnavailable)
	}
	return r.store.ListRuns(ctx, limit)
}

func (r *Recast) newID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Now(), r.entropy).String()
}

func toRun(res *Result, source string) store.Run {
	notes := make([]string, len(res.Recipe.Notes))
	for i, n := range res.Recipe.Notes {
		notes[i] = n.String()
	}
	return store.Run{
		ID:            res.ID,
		Name:          res.Recipe.Name,
		Mode:          res.Mode.String(),
		Source:        source,
		Ingredients:   res.Recipe.Ingredients,
		Instructions:  res.Recipe.Instructions,
		Substitutions: res.Recipe.Substitutions,
		Notes:         notes,
		CreatedAt:     res.CreatedAt,
	}
}
