package transform

import (
	"fmt"
	"strings"

	"github.com/cognicore/recast/pkg/recast/catalogue"
	"github.com/cognicore/recast/pkg/recast/internalerr"
)

// rule returns the replacement for an ingredient head, or false to leave it
// unchanged. The first matching condition wins.
type rule func(cat *catalogue.Catalogue, s *Session, term string) (string, bool)

func ruleFor(k Kind) (rule, error) {
	switch k {
	case ToVegetarian:
		return toVegetarian, nil
	case FromVegetarian:
		return fromVegetarian, nil
	case ToHealthy:
		return toHealthy, nil
	case FromHealthy:
		return fromHealthy, nil
	case ToStyle:
		return toStyle, nil
	default:
		return nil, fmt.Errorf("%v: %w", k, internalerr.ErrUnsupportedMode)
	}
}

// toVegetarian swaps meat-based liquids for their meatless defaults and any
// other meat for the vegetable protein. The liquid check runs first so
// "beef stock" becomes a broth rather than tofu.
func toVegetarian(cat *catalogue.Catalogue, _ *Session, term string) (string, bool) {
	d := cat.Defaults()
	liquid := cat.ContainsAny(catalogue.LiquidBases, term)
	meat := cat.ContainsAny(catalogue.MeatProtein, term)
	bare := len(strings.Fields(term)) == 1

	if liquid && (meat || bare) {
		if strings.Contains(strings.ToLower(term), "sauce") {
			return d.MeatlessSauce, true
		}
		return d.VegetableBroth, true
	}
	if meat {
		return d.VegetableProtein, true
	}
	return "", false
}

func fromVegetarian(cat *catalogue.Catalogue, _ *Session, term string) (string, bool) {
	d := cat.Defaults()
	for _, w := range strings.Fields(normalize(term)) {
		if w == normalize(d.VegetableProtein) || cat.Contains(catalogue.VegProtein, w) {
			return d.MeatSubstitute, true
		}
	}
	return "", false
}

func toHealthy(cat *catalogue.Catalogue, s *Session, term string) (string, bool) {
	if cat.Contains(catalogue.Healthy, term) {
		// already healthy as a whole ("olive oil")
		return "", false
	}
	if !cat.ContainsAny(catalogue.Unhealthy, term) {
		return "", false
	}
	if !cat.ContainsAny(catalogue.MeatProtein, term) {
		return cat.Defaults().HealthyFat, true
	}
	choices := cat.Intersect(catalogue.MeatProtein, catalogue.Healthy)
	if len(choices) == 0 {
		s.note(internalerr.ErrNoKnownSubstitute, "%q: no healthy meat configured", term)
		return "", false
	}
	return s.pick(choices), true
}

func fromHealthy(cat *catalogue.Catalogue, s *Session, term string) (string, bool) {
	if !cat.ContainsAny(catalogue.Healthy, term) {
		return "", false
	}
	if !cat.ContainsAny(catalogue.MeatProtein, term) {
		s.note(internalerr.ErrNoKnownSubstitute, "%q: no unhealthy substitute for a non-meat ingredient", term)
		return "", false
	}
	choices := cat.Intersect(catalogue.MeatProtein, catalogue.Unhealthy)
	if len(choices) == 0 {
		s.note(internalerr.ErrNoKnownSubstitute, "%q: no unhealthy meat configured", term)
		return "", false
	}
	return s.pick(choices), true
}

// toStyle applies the style guide's direct substitution for the whole term or
// its first mapped word, then swaps detected spices for one from the pool.
func toStyle(_ *catalogue.Catalogue, s *Session, term string) (string, bool) {
	if repl, ok := s.style.Lookup(term); ok {
		return repl, true
	}
	words := strings.Fields(term)
	if len(words) > 1 {
		for _, w := range words {
			if repl, ok := s.style.Lookup(w); ok {
				return repl, true
			}
		}
	}

	spice := s.isSpice(term)
	for _, w := range words {
		spice = spice || s.isSpice(w)
	}
	if spice && len(s.style.Spices) > 0 {
		return s.pick(s.style.Spices), true
	}
	return "", false
}
