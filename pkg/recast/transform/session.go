package transform

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/cognicore/recast/pkg/recast/catalogue"
	"github.com/cognicore/recast/pkg/recast/oracle"
	"github.com/cognicore/recast/pkg/recast/recipe"
)

// Session is the state of one transformation run. It is created fresh for
// every recipe and discarded afterwards.
type Session struct {
	Mode Mode

	style  catalogue.StyleGuide
	subs   []recipe.Substitution
	index  map[string]int // normalized old term -> position in subs
	spices map[string]struct{}
	rng    *rand.Rand
	guard  *oracle.Guard
	notes  []recipe.Note
}

func newSession(mode Mode, style catalogue.StyleGuide, spices []string, rng *rand.Rand, guard *oracle.Guard) *Session {
	s := &Session{
		Mode:   mode,
		style:  style,
		index:  make(map[string]int),
		spices: make(map[string]struct{}, len(spices)),
		rng:    rng,
		guard:  guard,
	}
	for _, sp := range spices {
		s.spices[strings.ToLower(sp)] = struct{}{}
	}
	return s
}

// record stores old -> repl. The first replacement chosen for a term is kept
// so repeated heads are substituted consistently.
func (s *Session) record(old, repl string) {
	key := normalize(old)
	if _, ok := s.index[key]; ok {
		return
	}
	s.index[key] = len(s.subs)
	s.subs = append(s.subs, recipe.Substitution{Old: old, New: repl})
}

func (s *Session) lookup(old string) (string, bool) {
	i, ok := s.index[normalize(old)]
	if !ok {
		return "", false
	}
	return s.subs[i].New, true
}

// Substitutions returns the substitution map in processing order.
func (s *Session) Substitutions() []recipe.Substitution {
	return append([]recipe.Substitution(nil), s.subs...)
}

// Notes returns the diagnostics raised so far.
func (s *Session) Notes() []recipe.Note {
	return append([]recipe.Note(nil), s.notes...)
}

func (s *Session) isSpice(term string) bool {
	_, ok := s.spices[strings.ToLower(term)]
	return ok
}

// pick draws uniformly from choices.
func (s *Session) pick(choices []string) string {
	return choices[s.rng.Intn(len(choices))]
}

func (s *Session) note(kind error, format string, args ...any) {
	s.notes = append(s.notes, recipe.Note{Kind: kind, Text: fmt.Sprintf(format, args...)})
}

func normalize(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}
