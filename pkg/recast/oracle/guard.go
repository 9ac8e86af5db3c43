package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cognicore/recast/pkg/recast/internalerr"
)

// GuardOptions configures a Guard.
type GuardOptions struct {
	// Timeout bounds each call; zero means no per-call deadline.
	Timeout time.Duration
	Logger  *log.Logger
	// Verbose also logs negative answers.
	Verbose bool
}

// Guard makes an Oracle total for one pipeline run. A failed or timed-out
// call counts as a negative answer and is logged as unavailable. Every answer,
// including those from failures, is memoized for the life of the Guard, so
// repeated questions get the same answer. Safe for concurrent use.
type Guard struct {
	oracle  Oracle
	timeout time.Duration
	logger  *log.Logger
	verbose bool

	mu       sync.Mutex
	memo     map[cacheKey]Answer
	failures []error
}

// NewGuard wraps o for a single run.
func NewGuard(o Oracle, opts GuardOptions) *Guard {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Guard{
		oracle:  o,
		timeout: opts.Timeout,
		logger:  logger,
		verbose: opts.Verbose,
		memo:    make(map[cacheKey]Answer),
	}
}

func (g *Guard) ask(ctx context.Context, kind Kind, term string) Answer {
	key := cacheKey{kind: kind, term: Normalize(term)}
	g.mu.Lock()
	if ans, ok := g.memo[key]; ok {
		g.mu.Unlock()
		return ans
	}
	g.mu.Unlock()

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	ans, err := Ask(callCtx, g.oracle, kind, term)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", g.timeout, err)
		}
		g.logger.Printf("oracle unavailable: %s %q: %v", kind, term, err)
		ans = Answer{}
	} else if g.verbose && !ans.OK {
		g.logger.Printf("oracle: %s %q: negative", kind, term)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.memo[key]; ok {
		// a concurrent caller answered first; keep its answer
		return prev
	}
	if err != nil {
		g.failures = append(g.failures, fmt.Errorf("%s %q: %w: %w", kind, term, internalerr.ErrOracleUnavailable, err))
	}
	g.memo[key] = ans
	return ans
}

// IsFood reports whether term is a food.
func (g *Guard) IsFood(ctx context.Context, term string) bool {
	return g.ask(ctx, KindFood, term).OK
}

// IsCookingVerb reports whether term is a cooking action.
func (g *Guard) IsCookingVerb(ctx context.Context, term string) bool {
	return g.ask(ctx, KindVerb, term).OK
}

// IsCookingTool reports whether term is used for cooking.
func (g *Guard) IsCookingTool(ctx context.Context, term string) bool {
	return g.ask(ctx, KindTool, term).OK
}

// SenseLabel returns the sense of term, or "".
func (g *Guard) SenseLabel(ctx context.Context, term string) string {
	return g.ask(ctx, KindSense, term).Label
}

// Failures returns the calls that were answered negatively because the
// oracle failed. Each wraps internalerr.ErrOracleUnavailable.
func (g *Guard) Failures() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]error, len(g.failures))
	copy(out, g.failures)
	return out
}
