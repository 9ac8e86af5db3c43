// Package catalogue holds the read-only replacement tables the
// transformation stage draws from: category term lists and per-cuisine style
// guides. A Catalogue never changes after it is built.
package catalogue

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/recast/pkg/recast/internalerr"
)

//go:embed default.yaml
var defaultYAML []byte

// Category names used by the rule engine.
const (
	MeatProtein   = "meatProtein"
	VegProtein    = "vegProtein"
	PairedWords   = "pairedWords"
	LiquidBases   = "liquidBases"
	StandardDairy = "standardDairy"
	Healthy       = "healthy"
	Unhealthy     = "unhealthy"
	Spices        = "spices"
)

// Defaults are the fixed replacement terms.
type Defaults struct {
	VegetableProtein string `yaml:"vegetable_protein"`
	MeatSubstitute   string `yaml:"meat_substitute"`
	VegetableBroth   string `yaml:"vegetable_broth"`
	MeatlessSauce    string `yaml:"meatless_sauce"`
	HealthyFat       string `yaml:"healthy_fat"`
}

// StyleGuide is the configuration for one cuisine.
type StyleGuide struct {
	Name          string
	Substitutions map[string]string // word -> replacement
	Spices        []string          // ordered spice pool
}

// Lookup returns the direct substitution for a word or phrase.
func (g StyleGuide) Lookup(term string) (string, bool) {
	repl, ok := g.Substitutions[strings.ToLower(strings.TrimSpace(term))]
	return repl, ok
}

// File is the YAML shape of a catalogue.
type File struct {
	Defaults   Defaults            `yaml:"defaults"`
	Categories map[string][]string `yaml:"categories"`
	Styles     map[string]StyleFile `yaml:"styles"`
}

// StyleFile is the YAML shape of one style guide.
type StyleFile struct {
	Substitutions map[string]string `yaml:"substitutions"`
	Spices        []string          `yaml:"spices"`
}

// Catalogue is an immutable mapping category -> terms plus style guides.
type Catalogue struct {
	defaults   Defaults
	categories map[string]map[string]struct{}
	ordered    map[string][]string
	styles     map[string]StyleGuide
}

// Default returns the catalogue shipped with the package.
func Default() *Catalogue {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic("catalogue: embedded default invalid: " + err.Error())
	}
	return c
}

// Load reads a catalogue from a YAML file.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalogue %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalogue from YAML bytes.
func Parse(data []byte) (*Catalogue, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return New(f)
}

// New validates f and builds a catalogue from it.
func New(f File) (*Catalogue, error) {
	d := f.Defaults
	for name, v := range map[string]string{
		"vegetable_protein": d.VegetableProtein,
		"meat_substitute":   d.MeatSubstitute,
		"vegetable_broth":   d.VegetableBroth,
		"meatless_sauce":    d.MeatlessSauce,
		"healthy_fat":       d.HealthyFat,
	} {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: defaults.%s is required", internalerr.ErrInvalidConfig, name)
		}
	}

	c := &Catalogue{
		defaults:   d,
		categories: make(map[string]map[string]struct{}, len(f.Categories)),
		ordered:    make(map[string][]string, len(f.Categories)),
		styles:     make(map[string]StyleGuide, len(f.Styles)),
	}

	for name, terms := range f.Categories {
		members := make(map[string]struct{}, len(terms))
		ordered := make([]string, 0, len(terms))
		for _, term := range terms {
			term = normalize(term)
			if term == "" {
				continue
			}
			if _, dup := members[term]; dup {
				continue
			}
			members[term] = struct{}{}
			ordered = append(ordered, term)
		}
		c.categories[name] = members
		c.ordered[name] = ordered
	}

	for name, style := range f.Styles {
		key := normalize(name)
		if len(style.Spices) == 0 {
			return nil, fmt.Errorf("%w: style %q has no spices", internalerr.ErrInvalidConfig, name)
		}
		guide := StyleGuide{
			Name:          key,
			Substitutions: make(map[string]string, len(style.Substitutions)),
			Spices:        make([]string, 0, len(style.Spices)),
		}
		for from, to := range style.Substitutions {
			guide.Substitutions[normalize(from)] = strings.TrimSpace(to)
		}
		for _, s := range style.Spices {
			if s = normalize(s); s != "" {
				guide.Spices = append(guide.Spices, s)
			}
		}
		c.styles[key] = guide
	}

	return c, nil
}

// Defaults returns the fixed replacement terms.
func (c *Catalogue) Defaults() Defaults { return c.defaults }

// Contains reports whether term, as a whole, is a member of category.
func (c *Catalogue) Contains(category, term string) bool {
	_, ok := c.categories[category][normalize(term)]
	return ok
}

// ContainsAny reports whether term or any of its words is a member of
// category. This is how multi-word heads such as "beef stock" are matched.
func (c *Catalogue) ContainsAny(category, term string) bool {
	return len(c.MatchingWords(category, term)) > 0
}

// MatchingWords returns the members of category found in term: the whole term
// first (if it is a member), then each member word in order.
func (c *Catalogue) MatchingWords(category, term string) []string {
	members := c.categories[category]
	if len(members) == 0 {
		return nil
	}
	var out []string
	whole := normalize(term)
	if _, ok := members[whole]; ok {
		out = append(out, whole)
	}
	words := strings.Fields(whole)
	if len(words) < 2 {
		return out
	}
	for _, w := range words {
		if _, ok := members[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

// Terms returns the members of a category in configuration order.
func (c *Catalogue) Terms(category string) []string {
	out := make([]string, len(c.ordered[category]))
	copy(out, c.ordered[category])
	return out
}

// Intersect returns the terms in both categories, sorted.
func (c *Catalogue) Intersect(a, b string) []string {
	var out []string
	for term := range c.categories[a] {
		if _, ok := c.categories[b][term]; ok {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

// Categories returns the configured category names, sorted.
func (c *Catalogue) Categories() []string {
	out := make([]string, 0, len(c.categories))
	for name := range c.categories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Style returns the style guide for a cuisine.
func (c *Catalogue) Style(cuisine string) (StyleGuide, bool) {
	g, ok := c.styles[normalize(cuisine)]
	if !ok {
		return StyleGuide{}, false
	}
	subs := make(map[string]string, len(g.Substitutions))
	for k, v := range g.Substitutions {
		subs[k] = v
	}
	return StyleGuide{Name: g.Name, Substitutions: subs, Spices: append([]string(nil), g.Spices...)}, true
}

// Styles returns the configured cuisine names, sorted.
func (c *Catalogue) Styles() []string {
	out := make([]string, 0, len(c.styles))
	for name := range c.styles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Knows reports whether term, as a whole, appears anywhere in the catalogue:
// a category, a style substitution key or value, or a spice pool.
func (c *Catalogue) Knows(term string) bool {
	n := normalize(term)
	for _, members := range c.categories {
		if _, ok := members[n]; ok {
			return true
		}
	}
	for _, g := range c.styles {
		if _, ok := g.Substitutions[n]; ok {
			return true
		}
		for _, v := range g.Substitutions {
			if strings.EqualFold(v, n) {
				return true
			}
		}
		for _, s := range g.Spices {
			if s == n {
				return true
			}
		}
	}
	return false
}

// IsSpice reports whether term is a catalogued spice.
func (c *Catalogue) IsSpice(term string) bool {
	if c.Contains(Spices, term) {
		return true
	}
	n := normalize(term)
	for _, g := range c.styles {
		for _, s := range g.Spices {
			if s == n {
				return true
			}
		}
	}
	return false
}

func normalize(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}
