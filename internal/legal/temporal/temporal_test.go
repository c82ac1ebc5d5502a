package temporal

import (
	"testing"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
)

func run(t *testing.T, text string) []TemporalExpression {
	t.Helper()
	line := document.Tokenize(text)
	store := attrstore.New()
	sel := cursor.Whole(line, store)
	if err := (Resolver{}).Run(sel); err != nil {
		t.Fatalf("resolver error: %v", err)
	}
	typed := attrstore.For[scored.Scored[TemporalExpression]](store)
	var out []TemporalExpression
	for _, e := range typed.All() {
		out = append(out, e.Value.Value)
	}
	return out
}

func TestTemporal_BareDuration(t *testing.T) {
	got := run(t, "Tenant has 30 days to cure the default.")
	if len(got) != 1 || got[0].Kind != Duration || got[0].Days != 30 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestTemporal_SpelledDurationWithNumeral(t *testing.T) {
	got := run(t, "Landlord shall respond within thirty (30) days.")
	if len(got) != 1 || got[0].Kind != Duration || got[0].Days != 30 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestTemporal_AbsoluteDateWithYear(t *testing.T) {
	got := run(t, "This Agreement is effective January 1, 2026.")
	if len(got) != 1 || got[0].Kind != AbsoluteDate {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestTemporal_NoMatch(t *testing.T) {
	got := run(t, "The Tenant shall pay rent.")
	if len(got) != 0 {
		t.Fatalf("expected no temporal expressions, got %+v", got)
	}
}
