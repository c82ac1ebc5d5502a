package obligation

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
		keyword.ProhibitionResolver{},
		definedterm.Resolver{},
		termref.Resolver{},
		pronoun.NewResolver(pronoun.DefaultConfig()),
		Resolver{},
	}
	for _, step := range steps {
		if err := step.Run(sel); err != nil {
			t.Fatalf("resolver error: %v", err)
		}
	}
	return store
}

func allObligations(store *attrstore.Store) []scored.Scored[ObligationPhrase] {
	typed := attrstore.For[scored.Scored[ObligationPhrase]](store)
	var out []scored.Scored[ObligationPhrase]
	for _, e := range typed.All() {
		out = append(out, e.Value)
	}
	return out
}

func TestObligation_Duty(t *testing.T) {
	store := run(t, `ABC Corp (the "Company") shall deliver.`)
	obs := allObligations(store)
	if len(obs) != 1 {
		t.Fatalf("expected 1 obligation, got %d: %+v", len(obs), obs)
	}
	ob := obs[0].Value
	if ob.Type != Duty {
		t.Fatalf("expected Duty, got %v", ob.Type)
	}
	if ob.Obligor.Name != "Company" {
		t.Fatalf("expected obligor Company, got %+v", ob.Obligor)
	}
}

func TestObligation_Prohibition_SpansShallAndNot(t *testing.T) {
	store := run(t, `Tenant shall not sublease.`)
	obs := allObligations(store)
	found := false
	for _, ob := range obs {
		if ob.Value.Type == Prohibition {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Prohibition obligation, got %+v", obs)
	}
}

func TestObligation_MissingObligor_SkipsEmission(t *testing.T) {
	store := run(t, `shall deliver promptly.`)
	obs := allObligations(store)
	if len(obs) != 0 {
		t.Fatalf("expected no obligation when no obligor precedes the modal, got %+v", obs)
	}
}

func TestObligation_ConditionNotCrossingSentences(t *testing.T) {
	store := run(t, `If approved, the fee applies. ABC Corp (the "Company") shall deliver.`)
	obs := allObligations(store)
	if len(obs) != 1 {
		t.Fatalf("expected 1 obligation, got %d", len(obs))
	}
	if len(obs[0].Value.Conditions) != 0 {
		t.Fatalf("expected no conditions attached across sentence boundary, got %+v", obs[0].Value.Conditions)
	}
}
