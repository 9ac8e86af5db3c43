package oracle

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	kind Kind
	term string
}

// Cached memoizes definite answers from an underlying oracle. Failed lookups
// are not cached, so a later call may still succeed.
type Cached struct {
	next  Oracle
	cache *lru.Cache[cacheKey, Answer]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Oracle, size int) (*Cached, error) {
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New[cacheKey, Answer](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) ask(ctx context.Context, kind Kind, term string) (Answer, error) {
	key := cacheKey{kind: kind, term: Normalize(term)}
	if ans, ok := c.cache.Get(key); ok {
		return ans, nil
	}
	ans, err := Ask(ctx, c.next, kind, term)
	if err != nil {
		return Answer{}, err
	}
	c.cache.Add(key, ans)
	return ans, nil
}

// Len reports how many answers are cached.
func (c *Cached) Len() int { return c.cache.Len() }

func (c *Cached) IsFood(ctx context.Context, term string) (bool, error) {
	ans, err := c.ask(ctx, KindFood, term)
	return ans.OK, err
}

func (c *Cached) IsCookingVerb(ctx context.Context, term string) (bool, error) {
	ans, err := c.ask(ctx, KindVerb, term)
	return ans.OK, err
}

func (c *Cached) IsCookingTool(ctx context.Context, term string) (bool, error) {
	ans, err := c.ask(ctx, KindTool, term)
	return ans.OK, err
}

func (c *Cached) SenseLabel(ctx context.Context, term string) (string, error) {
	ans, err := c.ask(ctx, KindSense, term)
	return ans.Label, err
}
