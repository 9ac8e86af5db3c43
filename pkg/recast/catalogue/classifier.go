package catalogue

import (
	"context"

	"github.com/cognicore/recast/pkg/recast/oracle"
)

// Classifier answers oracle questions from the catalogue alone: every
// catalogued term is a food, and catalogued spices carry the spice sense.
// It knows nothing about verbs or tools.
type Classifier struct {
	c *Catalogue
}

var _ oracle.Oracle = Classifier{}

// NewClassifier exposes c as an oracle.
func NewClassifier(c *Catalogue) Classifier {
	return Classifier{c: c}
}

func (cl Classifier) IsFood(_ context.Context, term string) (bool, error) {
	return cl.c.Knows(oracle.Normalize(term)), nil
}

func (cl Classifier) IsCookingVerb(context.Context, string) (bool, error) {
	return false, nil
}

func (cl Classifier) IsCookingTool(context.Context, string) (bool, error) {
	return false, nil
}

func (cl Classifier) SenseLabel(_ context.Context, term string) (string, error) {
	if cl.c.IsSpice(oracle.Normalize(term)) {
		return oracle.SenseSpice, nil
	}
	return "", nil
}
