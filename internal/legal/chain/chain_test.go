package chain

import (
	"testing"

	"github.com/phosphorco/legalnlp/internal/legal/definedterm"
	"github.com/phosphorco/legalnlp/internal/legal/keyword"
	"github.com/phosphorco/legalnlp/internal/legal/pronoun"
	"github.com/phosphorco/legalnlp/internal/legal/termref"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
)

func run(t *testing.T, text string) *attrstore.Store {
	t.Helper()
	line := document.Tokenize(text)
	store := attrstore.New()
	sel := cursor.Whole(line, store)
	steps := []interface {
		Run(cursor.Selection) error
	}{
		keyword.Resolver{},
		definedterm.Resolver{},
		termref.Resolver{},
		pronoun.NewResolver(pronoun.DefaultConfig()),
		NewResolver(MinAttachmentConfidence),
	}
	for _, step := range steps {
		if err := step.Run(sel); err != nil {
			t.Fatalf("resolver error: %v", err)
		}
	}
	return store
}

func allChains(store *attrstore.Store) []scored.Scored[PronounChain] {
	typed := attrstore.For[scored.Scored[PronounChain]](store)
	var out []scored.Scored[PronounChain]
	for _, e := range typed.All() {
		out = append(out, e.Value)
	}
	return out
}

func TestChain_PronounAttachesToDefinedTerm(t *testing.T) {
	store := run(t, `ABC Corp (the "Company") exists. It shall deliver.`)
	chains := allChains(store)
	if len(chains) != 1 {
		t.Fatalf("expected 1 chain, got %d: %+v", len(chains), chains)
	}
	c := chains[0].Value
	if c.CanonicalName != "Company" || !c.IsDefinedTerm {
		t.Fatalf("unexpected chain: %+v", c)
	}
	if len(c.Mentions) != 2 {
		t.Fatalf("expected 2 mentions (defined term + pronoun), got %d: %+v", len(c.Mentions), c.Mentions)
	}
}

func TestChain_DiscardsSingleMentionChains(t *testing.T) {
	store := run(t, `"Company" means ABC Corp.`)
	chains := allChains(store)
	if len(chains) != 0 {
		t.Fatalf("expected chains with fewer than 2 mentions to be discarded, got %+v", chains)
	}
}

func TestChain_TermReferenceJoinsChain(t *testing.T) {
	store := run(t, `ABC Corp (the "Company") exists. The Company shall pay.`)
	chains := allChains(store)
	if len(chains) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(chains))
	}
	if len(chains[0].Value.Mentions) != 2 {
		t.Fatalf("expected defined term + term reference mentions, got %+v", chains[0].Value.Mentions)
	}
}
