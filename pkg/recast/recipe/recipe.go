package recipe

import (
	"fmt"
	"strings"

	"github.com/cognicore/recast/pkg/recast/internalerr"
)

// RawRecipe is the plain record supplied by the recipe assembler.
type RawRecipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// Validate checks that the recipe has something to transform
func (r *RawRecipe) Validate() error {
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe %q has no ingredients: %w", r.Name, internalerr.ErrInvalidInput)
	}
	if len(r.Instructions) == 0 {
		return fmt.Errorf("recipe %q has no instructions: %w", r.Name, internalerr.ErrInvalidInput)
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing) == "" {
			return fmt.Errorf("ingredient %d is blank: %w", i, internalerr.ErrInvalidInput)
		}
	}
	for i, inst := range r.Instructions {
		if strings.TrimSpace(inst) == "" {
			return fmt.Errorf("instruction %d is blank: %w", i, internalerr.ErrInvalidInput)
		}
	}
	return nil
}

// Substitution records one ingredient replacement made during a run.
type Substitution struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Note is a non-fatal diagnostic produced while extracting or transforming.
// Kind is one of the internalerr sentinels.
type Note struct {
	Kind error  `json:"-"`
	Text string `json:"text"`
}

func (n Note) String() string {
	if n.Kind == nil {
		return n.Text
	}
	return n.Kind.Error() + ": " + n.Text
}

// FinalRecipe is the rendered output of a transformation run. Ingredient and
// instruction order follows the RawRecipe, with style additions appended.
type FinalRecipe struct {
	Name          string         `json:"name"`
	Ingredients   []string       `json:"ingredients"`
	Instructions  []string       `json:"instructions"`
	Substitutions []Substitution `json:"substitutions,omitempty"`
	Notes         []Note         `json:"notes,omitempty"`
}
