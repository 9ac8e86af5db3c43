// Package depparse defines the dependency-parse contract consumed by the
// extraction stage, plus a small rule-based parser for recipe text.
package depparse

import "context"

// Dependency labels produced by the Shallow parser. Other Parser
// implementations may use any label set; the extraction stage only relies on
// IsRoot and Children.
const (
	DepRoot     = "ROOT"
	DepNumMod   = "nummod"
	DepCompound = "compound"
	DepDet      = "det"
	DepObj      = "dobj"
	DepPrep     = "prep"
	DepPObj     = "pobj"
	DepAppos    = "appos"
	DepConj     = "cc"
)

// Token is one word of a parsed sentence.
type Token struct {
	Text     string
	Index    int // position in the sentence, 0-based
	Dep      string
	IsRoot   bool
	Head     *Token
	Children []*Token
}

// Parser turns a sentence into tokens in sentence order. A sentence exposes at
// least one root token when it has any words; malformed input may expose more.
type Parser interface {
	Parse(ctx context.Context, sentence string) ([]*Token, error)
}

// FirstRoot returns the first root-marked token, or nil when there is none.
func FirstRoot(tokens []*Token) *Token {
	for _, tok := range tokens {
		if tok.IsRoot {
			return tok
		}
	}
	return nil
}

// Preceding returns the token immediately before tok in sentence order.
func Preceding(tokens []*Token, tok *Token) *Token {
	for i, t := range tokens {
		if t == tok && i > 0 {
			return tokens[i-1]
		}
	}
	return nil
}
