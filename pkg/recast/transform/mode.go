package transform

import (
	"fmt"
	"strings"

	"github.com/cognicore/recast/pkg/recast/catalogue"
	"github.com/cognicore/recast/pkg/recast/internalerr"
)

// Kind selects the rule set a run applies.
type Kind int

const (
	ToVegetarian Kind = iota + 1
	FromVegetarian
	ToHealthy
	FromHealthy
	ToStyle
)

func (k Kind) String() string {
	switch k {
	case ToVegetarian:
		return "to vegetarian"
	case FromVegetarian:
		return "from vegetarian"
	case ToHealthy:
		return "to healthy"
	case FromHealthy:
		return "from healthy"
	case ToStyle:
		return "to style"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Mode is a transformation goal. Cuisine is set only for ToStyle.
type Mode struct {
	Kind    Kind
	Cuisine string
}

// Style returns the ToStyle mode for a cuisine.
func Style(cuisine string) Mode {
	return Mode{Kind: ToStyle, Cuisine: strings.ToLower(strings.TrimSpace(cuisine))}
}

func (m Mode) String() string {
	if m.Kind == ToStyle {
		return "to " + m.Cuisine
	}
	return m.Kind.String()
}

var fixedModes = map[string]Kind{
	"to vegetarian":   ToVegetarian,
	"from vegetarian": FromVegetarian,
	"to healthy":      ToHealthy,
	"from healthy":    FromHealthy,
}

// ParseMode reads a mode written the way users type it: "to vegetarian",
// "from healthy", "to mexican". Case and spacing are ignored. A cuisine must
// have a style guide in cat.
func ParseMode(s string, cat *catalogue.Catalogue) (Mode, error) {
	norm := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if kind, ok := fixedModes[norm]; ok {
		return Mode{Kind: kind}, nil
	}
	cuisine, ok := strings.CutPrefix(norm, "to ")
	if !ok || cuisine == "" {
		return Mode{}, fmt.Errorf("mode %q: %w", s, internalerr.ErrUnsupportedMode)
	}
	if cat == nil {
		return Mode{}, fmt.Errorf("mode %q: no catalogue: %w", s, internalerr.ErrUnsupportedMode)
	}
	if _, ok := cat.Style(cuisine); !ok {
		return Mode{}, fmt.Errorf("mode %q: no style guide for %q: %w", s, cuisine, internalerr.ErrUnsupportedMode)
	}
	return Style(cuisine), nil
}
