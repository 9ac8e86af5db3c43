package lexical

import (
	"context"
	_ "embed"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/recast/pkg/recast/oracle"
)

//go:embed default.yaml
var defaultYAML []byte

// Class is a lexical class a canonical term can belong to.
type Class string

const (
	ClassFood Class = "food"
	ClassVerb Class = "verb"
	ClassTool Class = "tool"
)

// Lexicon is a static classifier over curated cooking vocabulary:
// - Food groups: canonical name plus variants (tomato ↔ tomatoes ↔ roma tomato)
// - Senses: optional label per food canonical (cumin → spice)
// - Verbs and tools: plain word lists
//
// Lookups are case-insensitive and accept "_" or " " between phrase words.
// A term that is not listed is retried with a simple plural stripped.
type Lexicon struct {
	// canonical -> all variants (including canonical itself)
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string

	classes map[Class]map[string]struct{}
	senses  map[string]string
}

var _ oracle.Oracle = (*Lexicon)(nil)

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
		classes: map[Class]map[string]struct{}{
			ClassFood: {},
			ClassVerb: {},
			ClassTool: {},
		},
		senses: make(map[string]string),
	}
}

type fileFormat struct {
	Foods []struct {
		Canonical string   `yaml:"canonical"`
		Variants  []string `yaml:"variants"`
		Sense     string   `yaml:"sense"`
	} `yaml:"foods"`
	Verbs []string `yaml:"verbs"`
	Tools []string `yaml:"tools"`
}

// Default returns the lexicon shipped with the package.
func Default() *Lexicon {
	lex, err := Parse(defaultYAML)
	if err != nil {
		panic("lexical: embedded default lexicon invalid: " + err.Error())
	}
	return lex
}

// LoadFromYAML loads a lexicon from a YAML file.
//
// Expected format:
//
//	foods:
//	  - canonical: tomato
//	    variants: [tomatoes]
//	  - canonical: cumin
//	    sense: spice
//	verbs: [simmer, bake]
//	tools: [pot, skillet]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a lexicon from YAML bytes.
func Parse(data []byte) (*Lexicon, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range f.Foods {
		lex.Add(ClassFood, entry.Canonical, entry.Variants...)
		if entry.Sense != "" {
			lex.SetSense(entry.Canonical, entry.Sense)
		}
	}
	for _, v := range f.Verbs {
		lex.Add(ClassVerb, v)
	}
	for _, t := range f.Tools {
		lex.Add(ClassTool, t)
	}
	return lex, nil
}

// Add registers canonical (and its variants) under class.
func (l *Lexicon) Add(class Class, canonical string, variants ...string) {
	canonical = oracle.Normalize(canonical)
	if canonical == "" {
		return
	}
	if len(variants) > 0 || l.synonyms[canonical] == nil {
		l.AddSynonymGroup(canonical, append(l.synonyms[canonical], variants...))
	}
	if l.classes[class] == nil {
		l.classes[class] = make(map[string]struct{})
	}
	l.classes[class][canonical] = struct{}{}
}

// AddSynonymGroup adds a synonym group with a canonical form and its variants.
// The canonical form is always included as the first entry in the variants list.
// If the group already exists, old reverse index entries are cleaned up first.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = oracle.Normalize(canonical)

	if oldVariants, exists := l.synonyms[canonical]; exists {
		for _, oldV := range oldVariants {
			if l.reverseIndex[oldV] == canonical {
				delete(l.reverseIndex, oldV)
			}
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool)

	normalized = append(normalized, canonical)
	seen[canonical] = true

	for _, v := range variants {
		v = oracle.Normalize(v)
		if v != "" && !seen[v] {
			normalized = append(normalized, v)
			seen[v] = true
		}
	}

	l.synonyms[canonical] = normalized

	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// SetSense labels a canonical term with a sense (e.g. "spice").
func (l *Lexicon) SetSense(term, sense string) {
	l.senses[l.Normalize(term)] = strings.ToLower(sense)
}

// Normalize returns the canonical form of a term.
// If the term is not in the lexicon, returns the normalized term itself.
//
// Examples:
//   - Normalize("Tomatoes") -> "tomato"
//   - Normalize("chicken_broth") -> "chicken broth"
func (l *Lexicon) Normalize(term string) string {
	term = oracle.Normalize(term)
	if canonical, ok := l.reverseIndex[term]; ok {
		return canonical
	}
	for _, stem := range pluralStems(term) {
		if canonical, ok := l.reverseIndex[stem]; ok {
			return canonical
		}
	}
	return term
}

// variants returns all known variants of a term, canonical form first.
func (l *Lexicon) variants(term string) []string {
	canonical := l.Normalize(term)
	if variants, ok := l.synonyms[canonical]; ok {
		return variants
	}
	return []string{canonical}
}

// Has reports whether term belongs to class.
func (l *Lexicon) Has(class Class, term string) bool {
	_, ok := l.classes[class][l.Normalize(term)]
	return ok
}

// Terms returns the canonical terms of a class.
func (l *Lexicon) Terms(class Class) []string {
	out := make([]string, 0, len(l.classes[class]))
	for t := range l.classes[class] {
		out = append(out, t)
	}
	return out
}

// IsFood implements oracle.Oracle.
func (l *Lexicon) IsFood(_ context.Context, term string) (bool, error) {
	return l.Has(ClassFood, term), nil
}

// IsCookingVerb implements oracle.Oracle.
func (l *Lexicon) IsCookingVerb(_ context.Context, term string) (bool, error) {
	return l.Has(ClassVerb, term), nil
}

// IsCookingTool implements oracle.Oracle.
func (l *Lexicon) IsCookingTool(_ context.Context, term string) (bool, error) {
	return l.Has(ClassTool, term), nil
}

// SenseLabel implements oracle.Oracle.
func (l *Lexicon) SenseLabel(_ context.Context, term string) (string, error) {
	return l.senses[l.Normalize(term)], nil
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	totalVariants := 0
	for _, variants := range l.synonyms {
		totalVariants += len(variants)
	}
	return Stats{
		Foods:         len(l.classes[ClassFood]),
		Verbs:         len(l.classes[ClassVerb]),
		Tools:         len(l.classes[ClassTool]),
		TotalVariants: totalVariants,
		Senses:        len(l.senses),
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Foods         int
	Verbs         int
	Tools         int
	TotalVariants int
	Senses        int
}

// pluralStems returns candidate singular forms for the last word of term.
func pluralStems(term string) []string {
	idx := strings.LastIndex(term, " ")
	prefix, last := term[:idx+1], term[idx+1:]
	var out []string
	switch {
	case strings.HasSuffix(last, "ies") && len(last) > 4:
		out = append(out, prefix+strings.TrimSuffix(last, "ies")+"y")
	case strings.HasSuffix(last, "oes") && len(last) > 4:
		out = append(out, prefix+strings.TrimSuffix(last, "es"))
	}
	if strings.HasSuffix(last, "es") && len(last) > 3 {
		out = append(out, prefix+strings.TrimSuffix(last, "es"))
	}
	if strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "ss") && len(last) > 2 {
		out = append(out, prefix+strings.TrimSuffix(last, "s"))
	}
	return out
}
