package store

import (
	"context"
	"time"

	"github.com/cognicore/recast/pkg/recast/recipe"
)

// Store persists transformation runs and oracle verdicts.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Oracle verdicts
	GetVerdict(ctx context.Context, kind, term string) (Verdict, bool, error)
	PutVerdict(ctx context.Context, v Verdict) error
}

// Run is one stored transformation.
type Run struct {
	ID            string
	Name          string
	Mode          string
	Source        string // URL or file the recipe came from
	Ingredients   []string
	Instructions  []string
	Substitutions []recipe.Substitution
	Notes         []string
	CreatedAt     time.Time
}

// Verdict is a definite oracle answer for one question.
type Verdict struct {
	Kind      string
	Term      string
	OK        bool
	Label     string
	UpdatedAt time.Time
}
