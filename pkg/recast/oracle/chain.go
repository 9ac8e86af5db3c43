package oracle

import (
	"context"
	"errors"
)

// Chain consults oracles in order. A positive answer from any member wins;
// a member error only surfaces when no member answered positively.
type Chain []Oracle

// NewChain drops nil members.
func NewChain(members ...Oracle) Chain {
	out := make(Chain, 0, len(members))
	for _, m := range members {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (c Chain) ask(ctx context.Context, kind Kind, term string) (Answer, error) {
	var errs []error
	for _, o := range c {
		ans, err := Ask(ctx, o, kind, term)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ans.OK {
			return ans, nil
		}
	}
	return Answer{}, errors.Join(errs...)
}

func (c Chain) IsFood(ctx context.Context, term string) (bool, error) {
	ans, err := c.ask(ctx, KindFood, term)
	return ans.OK, err
}

func (c Chain) IsCookingVerb(ctx context.Context, term string) (bool, error) {
	ans, err := c.ask(ctx, KindVerb, term)
	return ans.OK, err
}

func (c Chain) IsCookingTool(ctx context.Context, term string) (bool, error) {
	ans, err := c.ask(ctx, KindTool, term)
	return ans.OK, err
}

func (c Chain) SenseLabel(ctx context.Context, term string) (string, error) {
	ans, err := c.ask(ctx, KindSense, term)
	return ans.Label, err
}
