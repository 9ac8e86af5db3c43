package extract

import (
	"context"
	"strings"

	"github.com/cognicore/recast/pkg/recast/depparse"
	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/phrase"
)

func (r *run) instructions(ctx context.Context, sentences []string, dst []InstructionPredicate) (stageOutput, error) {
	var out stageOutput
	for i, s := range sentences {
		pred, err := r.instruction(ctx, i, strings.TrimSpace(s), &out)
		if err != nil {
			return out, err
		}
		dst[i] = pred
	}
	return out, nil
}

func (r *run) instruction(ctx context.Context, index int, sentence string, out *stageOutput) (InstructionPredicate, error) {
	tokens, root, err := r.parse(ctx, sentence, out)
	if err != nil {
		return InstructionPredicate{}, err
	}
	if root == nil {
		return InstructionPredicate{
			Key:      Key{Head: sentence, Index: index},
			Method:   sentence,
			Template: PlaceholderMethod,
		}, nil
	}

	method := r.resolveMethod(ctx, tokens, root, sentence, out)
	tool := r.resolveTool(ctx, tokens, root, method)

	template, ok := phrase.ReplaceFirst(sentence, method.Text, PlaceholderMethod)
	if !ok {
		template = PlaceholderMethod + " " + sentence
	}
	toolText := ""
	if tool != "" {
		if template, ok = phrase.ReplaceFirst(template, tool, PlaceholderTool); ok {
			toolText = tool
		}
	}

	return InstructionPredicate{
		Key:      Key{Head: method.Text, Index: index},
		Method:   method.Text,
		Tool:     toolText,
		Template: template,
	}, nil
}

// resolveMethod prefers the root when it is a cooking verb, then the first
// verb token left to right, then the root verbatim.
func (r *run) resolveMethod(ctx context.Context, tokens []*depparse.Token, root *depparse.Token, sentence string, out *stageOutput) *depparse.Token {
	if r.guard.IsCookingVerb(ctx, root.Text) {
		return root
	}
	for _, tok := range tokens {
		if tok == root {
			continue
		}
		if r.guard.IsCookingVerb(ctx, tok.Text) {
			return tok
		}
	}
	r.note(out, internalerr.ErrUnresolvedMethod, "%q: using %q", sentence, root.Text)
	return root
}

// resolveTool returns the first cooking tool among the root (when the method
// came from elsewhere) and the root's children. A tool preceded by its
// modifier ("baking sheet") is returned as the two-word phrase when that
// phrase is itself a tool.
func (r *run) resolveTool(ctx context.Context, tokens []*depparse.Token, root, method *depparse.Token) string {
	candidates := make([]*depparse.Token, 0, len(root.Children)+1)
	if root != method {
		candidates = append(candidates, root)
	}
	candidates = append(candidates, root.Children...)

	for _, c := range candidates {
		if c == method || len(c.Text) < 2 || phrase.IsNumeral(c.Text) {
			continue
		}
		if !r.guard.IsCookingTool(ctx, c.Text) {
			continue
		}
		if prev := depparse.Preceding(tokens, c); prev != nil && prev != method {
			wide := prev.Text + " " + c.Text
			if r.guard.IsCookingTool(ctx, wide) {
				return wide
			}
		}
		return c.Text
	}
	return ""
}
