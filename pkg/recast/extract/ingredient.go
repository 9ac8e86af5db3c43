package extract

import (
	"context"
	"strings"

	"github.com/cognicore/recast/pkg/recast/depparse"
	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/oracle"
	"github.com/cognicore/recast/pkg/recast/phrase"
)

func (r *run) ingredients(ctx context.Context, sentences []string, dst []IngredientPredicate) (stageOutput, error) {
	out := stageOutput{spices: make(map[string]struct{})}
	for i, s := range sentences {
		pred, err := r.ingredient(ctx, i, strings.TrimSpace(s), &out)
		if err != nil {
			return out, err
		}
		dst[i] = pred
		r.detectSpices(ctx, pred.Isa, &out)
	}
	return out, nil
}

func (r *run) ingredient(ctx context.Context, index int, sentence string, out *stageOutput) (IngredientPredicate, error) {
	tokens, root, err := r.parse(ctx, sentence, out)
	if err != nil {
		return IngredientPredicate{}, err
	}
	if root == nil {
		return IngredientPredicate{
			Key:      Key{Head: sentence, Index: index},
			Isa:      sentence,
			Template: PlaceholderIsa,
		}, nil
	}

	head := r.resolveHead(ctx, tokens, root, sentence, out)
	isa := r.widenPaired(tokens, head, sentence)
	isa = r.widenCompound(ctx, root, isa, sentence)
	quantity, measurement := quantityOf(root)

	template, ok := phrase.ReplaceFirst(sentence, isa, PlaceholderIsa)
	if !ok {
		// parser heads always occur in the sentence
		template = sentence + " " + PlaceholderIsa
	}
	if quantity != "" {
		if template, ok = phrase.ReplaceFirst(template, quantity, PlaceholderQuantity); !ok {
			quantity, measurement = "", ""
		}
	}
	if measurement != "" {
		if template, ok = phrase.ReplaceFirst(template, measurement, PlaceholderMeasurement); !ok {
			measurement = ""
		}
	}

	return IngredientPredicate{
		Key:         Key{Head: isa, Index: index},
		Isa:         isa,
		Quantity:    quantity,
		Measurement: measurement,
		Template:    template,
	}, nil
}

// resolveHead prefers the root when it is a food, then the first food token
// left to right, then the root verbatim.
func (r *run) resolveHead(ctx context.Context, tokens []*depparse.Token, root *depparse.Token, sentence string, out *stageOutput) *depparse.Token {
	if r.guard.IsFood(ctx, root.Text) {
		return root
	}
	for _, tok := range tokens {
		if tok == root || phrase.IsNumeral(tok.Text) {
			continue
		}
		if r.guard.IsFood(ctx, tok.Text) {
			return tok
		}
	}
	r.note(out, internalerr.ErrUnresolvedHead, "%q: using %q", sentence, root.Text)
	return root
}

// widenPaired merges a bare modifier noun ("stock") with the word before it
// ("beef stock"). A numeral or a measurement word before it is not merged.
func (r *run) widenPaired(tokens []*depparse.Token, head *depparse.Token, sentence string) string {
	isa := head.Text
	if !r.isPaired(isa) {
		return isa
	}
	prev := depparse.Preceding(tokens, head)
	if prev == nil || phrase.IsNumeral(prev.Text) || hasNumeralChild(prev) {
		return isa
	}
	candidate := prev.Text + " " + isa
	if !phrase.Contains(sentence, candidate) {
		return isa
	}
	return candidate
}

func (r *run) isPaired(term string) bool {
	lower := strings.ToLower(term)
	if _, ok := r.paired[lower]; ok {
		return true
	}
	return strings.Contains(lower, "sirloin")
}

// widenCompound extends the head with root children whose "<child>_<head>"
// phrase is a food, nearest child first ("ground" + "beef").
func (r *run) widenCompound(ctx context.Context, root *depparse.Token, isa, sentence string) string {
	for i := len(root.Children) - 1; i >= 0; i-- {
		child := root.Children[i]
		if phrase.IsNumeral(child.Text) || hasNumeralChild(child) {
			continue
		}
		if phrase.Contains(isa, child.Text) {
			continue
		}
		candidate := child.Text + " " + isa
		if !phrase.Contains(sentence, candidate) {
			continue
		}
		if r.guard.IsFood(ctx, oracle.Phrase(child.Text, isa)) {
			isa = candidate
		}
	}
	return isa
}

// quantityOf finds the first root child that itself governs a numeral: the
// numeral is the quantity and the child is the measurement.
func quantityOf(root *depparse.Token) (quantity, measurement string) {
	for _, child := range root.Children {
		for _, grandchild := range child.Children {
			if phrase.IsNumeral(grandchild.Text) {
				return grandchild.Text, child.Text
			}
		}
	}
	return "", ""
}

func hasNumeralChild(tok *depparse.Token) bool {
	for _, c := range tok.Children {
		if phrase.IsNumeral(c.Text) {
			return true
		}
	}
	return false
}

// detectSpices records the head, and each of its words, that carry the spice
// sense.
func (r *run) detectSpices(ctx context.Context, isa string, out *stageOutput) {
	candidates := []string{isa}
	if words := strings.Fields(isa); len(words) > 1 {
		candidates = append(candidates, words...)
	}
	for _, c := range candidates {
		if r.guard.SenseLabel(ctx, c) == oracle.SenseSpice {
			out.spices[strings.ToLower(c)] = struct{}{}
		}
	}
}
