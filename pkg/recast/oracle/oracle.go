// Package oracle defines the lexical-classification capability used by the
// extraction and transformation stages, and the wrappers that make a
// best-effort remote classifier safe to call from a pipeline.
package oracle

import (
	"context"
	"errors"
	"strings"
)

// Oracle classifies single terms and two-word phrases. Implementations may be
// slow or fail; callers inside the pipeline go through a Guard.
type Oracle interface {
	IsFood(ctx context.Context, term string) (bool, error)
	IsCookingVerb(ctx context.Context, term string) (bool, error)
	IsCookingTool(ctx context.Context, term string) (bool, error)
	// SenseLabel returns a sense such as "spice", or "" when none applies.
	SenseLabel(ctx context.Context, term string) (string, error)
}

// Kind names one classification question.
type Kind string

const (
	KindFood  Kind = "food"
	KindVerb  Kind = "verb"
	KindTool  Kind = "tool"
	KindSense Kind = "sense"
)

// SenseSpice is the sense label that marks spice candidates.
const SenseSpice = "spice"

// Answer is the result of one classification question. Label is only set for
// KindSense.
type Answer struct {
	OK    bool
	Label string
}

// Ask dispatches a classification question to o.
func Ask(ctx context.Context, o Oracle, kind Kind, term string) (Answer, error) {
	switch kind {
	case KindFood:
		ok, err := o.IsFood(ctx, term)
		return Answer{OK: ok}, err
	case KindVerb:
		ok, err := o.IsCookingVerb(ctx, term)
		return Answer{OK: ok}, err
	case KindTool:
		ok, err := o.IsCookingTool(ctx, term)
		return Answer{OK: ok}, err
	case KindSense:
		label, err := o.SenseLabel(ctx, term)
		return Answer{OK: label != "", Label: label}, err
	}
	return Answer{}, errors.New("oracle: unknown kind " + string(kind))
}

// Normalize lowercases a term and joins phrase words with single spaces.
// Underscore-joined phrases ("chicken_broth") are accepted.
func Normalize(term string) string {
	term = strings.ReplaceAll(strings.ToLower(term), "_", " ")
	return strings.Join(strings.Fields(term), " ")
}

// Phrase builds the two-word query form "<modifier>_<head>".
func Phrase(modifier, head string) string {
	return strings.ToLower(modifier) + "_" + strings.ReplaceAll(strings.ToLower(head), " ", "_")
}
