package depparse

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/cognicore/recast/pkg/recast/phrase"
)

// DefaultVerbs are imperative verbs that open an instruction clause.
var DefaultVerbs = []string{
	"add", "bake", "baste", "beat", "blend", "boil", "braise", "bring", "broil",
	"brown", "brush", "chill", "chop", "coat", "combine", "cook", "cool", "cover",
	"crack", "cream", "cut", "deglaze", "dice", "dip", "drain", "drizzle", "dust",
	"fill", "flip", "fold", "fry", "garnish", "grate", "grease", "grill", "heat",
	"knead", "layer", "let", "marinate", "mash", "melt", "microwave", "mince",
	"mix", "place", "poach", "pour", "preheat", "puree", "reduce", "refrigerate",
	"remove", "rinse", "roast", "roll", "saute", "sauté", "scatter", "sear",
	"season", "serve", "set", "shred", "sift", "simmer", "slice", "soak",
	"spoon", "spread", "sprinkle", "steam", "stir", "strain", "stuff", "toast",
	"top", "toss", "transfer", "turn", "whisk", "wrap",
}

// DefaultUnits are measurement words a leading numeral attaches to.
var DefaultUnits = []string{
	"bag", "bottle", "box", "bunch", "can", "clove", "cloves", "cup", "cups",
	"dash", "dashes", "envelope", "fillet", "fillets", "g", "gallon", "gram",
	"grams", "handful", "head", "inch", "jar", "kg", "kilogram", "l", "lb",
	"lbs", "liter", "liters", "litre", "ml", "ounce", "ounces", "oz", "package",
	"packages", "packet", "pinch", "pint", "pints", "pound", "pounds", "quart",
	"quarts", "slice", "slices", "sprig", "sprigs", "stalk", "stalks", "stick",
	"sticks", "tablespoon", "tablespoons", "tbsp", "teaspoon", "teaspoons", "tsp",
}

var (
	prepositions = set("about", "above", "across", "after", "at", "before", "below",
		"between", "by", "for", "from", "in", "inside", "into", "on", "onto", "over",
		"through", "to", "under", "until", "with", "within", "without")
	determiners = set("a", "an", "the", "some", "any", "each", "this", "that",
		"these", "those", "your", "all")
	clauseJoins = set("then", "and", "or")
)

// Shallow is a deterministic rule-based dependency parser for recipe text.
//
// Every clause yields one root. A clause whose first word is a known verb is
// headed by that verb, and each of its noun segments hangs off the verb.
// Any other clause is a noun phrase headed by its last word before a
// preposition. Numerals attach to a following unit word, otherwise to the
// phrase head. Parenthesised words attach to the clause root.
type Shallow struct {
	verbs map[string]struct{}
	units map[string]struct{}
}

// NewShallow creates a parser with the given verb and unit vocabularies.
// Empty lists fall back to DefaultVerbs and DefaultUnits.
func NewShallow(verbs, units []string) *Shallow {
	if len(verbs) == 0 {
		verbs = DefaultVerbs
	}
	if len(units) == 0 {
		units = DefaultUnits
	}
	return &Shallow{verbs: set(verbs...), units: set(units...)}
}

type clause struct {
	words  []*Token
	parens [][]*Token
}

// Parse implements Parser.
func (p *Shallow) Parse(ctx context.Context, sentence string) ([]*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens, clauses := p.split(sentence)
	for _, c := range clauses {
		p.attachClause(c)
	}
	for _, tok := range tokens {
		sort.Slice(tok.Children, func(i, j int) bool {
			return tok.Children[i].Index < tok.Children[j].Index
		})
	}
	return tokens, nil
}

// split scans the sentence into word tokens and groups them into clauses.
// Commas, semicolons and colons close a clause; "then" and "and"/"or" followed
// by a verb open a new one. Parentheses collect a side group.
func (p *Shallow) split(sentence string) ([]*Token, []*clause) {
	var (
		tokens  []*Token
		clauses []*clause
		current = &clause{}
		paren   []*Token
		inParen bool
		word    strings.Builder
	)

	runes := []rune(sentence)

	closeClause := func() {
		if len(current.words) > 0 || len(current.parens) > 0 {
			clauses = append(clauses, current)
		}
		current = &clause{}
	}

	flush := func() {
		if word.Len() == 0 {
			return
		}
		text := strings.Trim(word.String(), "-'/")
		word.Reset()
		if text == "" {
			return
		}
		tok := &Token{Text: text, Index: len(tokens)}
		tokens = append(tokens, tok)

		if inParen {
			paren = append(paren, tok)
			return
		}
		lower := strings.ToLower(text)
		if _, ok := clauseJoins[lower]; ok && len(current.words) > 0 {
			if lower == "then" {
				tok.Dep = DepConj
				closeClause()
				return
			}
		}
		if p.isVerb(lower) && len(current.words) > 0 {
			last := strings.ToLower(current.words[len(current.words)-1].Text)
			if _, ok := clauseJoins[last]; ok {
				// "... and stir": the conjunction closes the previous clause
				current.words[len(current.words)-1].Dep = DepConj
				current.words = current.words[:len(current.words)-1]
				closeClause()
			}
		}
		current.words = append(current.words, tok)
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' || r == '/':
			word.WriteRune(r)
		case r == '.' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			word.WriteRune(r)
		default:
			flush()
			switch r {
			case '(':
				inParen = true
			case ')':
				if inParen && len(paren) > 0 {
					current.parens = append(current.parens, paren)
				}
				paren = nil
				inParen = false
			case ',', ';', ':':
				if !inParen {
					closeClause()
				}
			}
		}
	}
	flush()
	if inParen && len(paren) > 0 {
		current.parens = append(current.parens, paren)
	}
	closeClause()

	return tokens, clauses
}

func (p *Shallow) attachClause(c *clause) {
	words := c.words
	if len(words) == 0 {
		// clause made only of a parenthetical: promote it
		if len(c.parens) == 0 {
			return
		}
		words = c.parens[0]
		c.parens = c.parens[1:]
	}

	var root *Token
	if p.isVerb(strings.ToLower(words[0].Text)) {
		root = words[0]
		for _, seg := range p.segments(words[1:]) {
			head := p.attachSegment(seg)
			if head == nil {
				continue
			}
			if head.Dep == "" {
				head.Dep = DepObj
			}
			link(root, head)
		}
	} else {
		segs := p.segments(words)
		root = p.attachSegment(segs[0])
		for _, seg := range segs[1:] {
			if head := p.attachSegment(seg); head != nil {
				link(root, head)
			}
		}
	}
	if root == nil {
		return
	}
	root.IsRoot = true
	root.Dep = DepRoot
	root.Head = nil

	for _, group := range c.parens {
		if head := p.attachSegment(group); head != nil {
			head.Dep = DepAppos
			link(root, head)
		}
	}
}

// segments splits words at prepositions other than "of", which stays inside
// its segment so "cup of flour" is headed by "flour".
func (p *Shallow) segments(words []*Token) [][]*Token {
	var segs [][]*Token
	var cur []*Token
	for _, w := range words {
		if _, ok := prepositions[strings.ToLower(w.Text)]; ok && len(cur) > 0 {
			segs = append(segs, cur)
			cur = nil
		}
		cur = append(cur, w)
	}
	if len(cur) > 0 || len(segs) == 0 {
		segs = append(segs, cur)
	}
	return segs
}

// attachSegment links the words of one segment to its head (the last word)
// and returns the head.
func (p *Shallow) attachSegment(seg []*Token) *Token {
	if len(seg) == 0 {
		return nil
	}
	head := seg[len(seg)-1]
	if leading := strings.ToLower(seg[0].Text); len(seg) > 1 {
		if _, ok := prepositions[leading]; ok {
			head.Dep = DepPObj
		}
	}

	for i, w := range seg[:len(seg)-1] {
		lower := strings.ToLower(w.Text)
		next := seg[i+1]
		switch {
		case phrase.IsNumeral(w.Text):
			w.Dep = DepNumMod
			if _, ok := p.units[strings.ToLower(next.Text)]; ok && next != head {
				link(next, w)
				continue
			}
			link(head, w)
		case isIn(prepositions, lower) || lower == "of":
			w.Dep = DepPrep
			link(head, w)
		case isIn(determiners, lower):
			w.Dep = DepDet
			link(head, w)
		default:
			w.Dep = DepCompound
			link(head, w)
		}
	}
	return head
}

func (p *Shallow) isVerb(lower string) bool {
	_, ok := p.verbs[lower]
	return ok
}

func link(head, child *Token) {
	child.Head = head
	head.Children = append(head.Children, child)
}

func isIn(s map[string]struct{}, w string) bool {
	_, ok := s[w]
	return ok
}

func set(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[strings.ToLower(w)] = struct{}{}
	}
	return out
}
