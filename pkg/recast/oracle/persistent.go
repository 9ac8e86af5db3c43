package oracle

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/cognicore/recast/pkg/recast/store"
)

// VerdictStore is the part of store.Store that Persistent needs.
type VerdictStore interface {
	GetVerdict(ctx context.Context, kind, term string) (store.Verdict, bool, error)
	PutVerdict(ctx context.Context, v store.Verdict) error
}

// Persistent answers from stored verdicts and writes back every definite
// answer from next, so repeated runs skip remote lookups. Failed lookups are
// never stored. Store errors are logged and otherwise ignored.
type Persistent struct {
	next   Oracle
	st     VerdictStore
	logger *log.Logger
}

// NewPersistent wraps next with st.
func NewPersistent(next Oracle, st VerdictStore, logger *log.Logger) *Persistent {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Persistent{next: next, st: st, logger: logger}
}

func (p *Persistent) ask(ctx context.Context, kind Kind, term string) (Answer, error) {
	key := Normalize(term)
	v, ok, err := p.st.GetVerdict(ctx, string(kind), key)
	if err != nil {
		p.logger.Printf("verdict store: get %s %q: %v", kind, key, err)
	} else if ok {
		return Answer{OK: v.OK, Label: v.Label}, nil
	}

	ans, err := Ask(ctx, p.next, kind, term)
	if err != nil {
		return Answer{}, err
	}
	if err := p.st.PutVerdict(ctx, store.Verdict{
		Kind:      string(kind),
		Term:      key,
		OK:        ans.OK,
		Label:     ans.Label,
		UpdatedAt: time.Now(),
	}); err != nil {
		p.logger.Printf("verdict store: put %s %q: %v", kind, key, err)
	}
	return ans, nil
}

func (p *Persistent) IsFood(ctx context.Context, term string) (bool, error) {
	ans, err := p.ask(ctx, KindFood, term)
	return ans.OK, err
}

func (p *Persistent) IsCookingVerb(ctx context.Context, term string) (bool, error) {
	ans, err := p.ask(ctx, KindVerb, term)
	return ans.OK, err
}

func (p *Persistent) IsCookingTool(ctx context.Context, term string) (bool, error) {
	ans, err := p.ask(ctx, KindTool, term)
	return ans.OK, err
}

func (p *Persistent) SenseLabel(ctx context.Context, term string) (string, error) {
	ans, err := p.ask(ctx, KindSense, term)
	return ans.Label, err
}
