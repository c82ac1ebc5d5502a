package structure

import (
	"testing"

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
	if err := (Resolver{}).Run(sel); err != nil {
		t.Fatalf("resolver error: %v", err)
	}
	return store
}

func TestSectionHeader_NumberedSection(t *testing.T) {
	store := run(t, "Section 3.2 Termination Rights")
	headers := attrstore.For[scored.Scored[SectionHeader]](store)
	all := headers.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 header, got %d", len(all))
	}
	h := all[0].Value.Value
	if h.Number != "3.2" || h.Title != "Termination Rights" {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestSectionHeader_RomanArticle(t *testing.T) {
	store := run(t, "Article IV Indemnification")
	headers := attrstore.For[scored.Scored[SectionHeader]](store)
	all := headers.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 header, got %d", len(all))
	}
	if all[0].Value.Value.Number != "IV" {
		t.Fatalf("unexpected number: %+v", all[0].Value.Value)
	}
}

func TestSectionHeader_NoMatchForOrdinaryText(t *testing.T) {
	store := run(t, "The Tenant shall pay rent.")
	headers := attrstore.For[scored.Scored[SectionHeader]](store)
	if len(headers.All()) != 0 {
		t.Fatalf("expected no header, got %+v", headers.All())
	}
}

func TestSectionReference_Herein(t *testing.T) {
	store := run(t, "The terms used herein shall control.")
	refs := attrstore.For[scored.Scored[SectionReference]](store)
	all := refs.All()
	if len(all) != 1 || all[0].Value.Value.Kind != Herein {
		t.Fatalf("expected 1 Herein reference, got %+v", all)
	}
}

func TestSectionReference_Foregoing(t *testing.T) {
	store := run(t, "Subject to the foregoing, Tenant may sublease.")
	refs := attrstore.For[scored.Scored[SectionReference]](store)
	all := refs.All()
	found := false
	for _, r := range all {
		if r.Value.Value.Kind == Foregoing {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Foregoing reference, got %+v", all)
	}
}
