package pipeline

import (
	"testing"

	"github.com/phosphorco/legalnlp/internal/legal/accountability"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
)

func TestBuild_AllPresetsSatisfyDependencies(t *testing.T) {
	for _, name := range []string{StructureOnly, Fast, Standard} {
		if _, err := Build(name); err != nil {
			t.Fatalf("Build(%q): unexpected error: %v", name, err)
		}
	}
}

func TestBuild_UnknownPreset(t *testing.T) {
	if _, err := Build("nonexistent"); err == nil {
		t.Fatalf("expected an error for an unknown preset")
	}
}

func TestStandard_EndToEndProducesObligationNode(t *testing.T) {
	p, err := NewStandard()
	if err != nil {
		t.Fatalf("NewStandard: unexpected error: %v", err)
	}

	text := `ABC Corp (the "Company") exists. It shall deliver goods to Tenant.`
	line := document.Tokenize(text)
	store := attrstore.New()
	sel := cursor.Whole(line, store)

	if err := p.Run(sel); err != nil {
		t.Fatalf("pipeline run: unexpected error: %v", err)
	}

	nodes := attrstore.For[scored.Scored[accountability.ObligationNode]](store)
	var count int
	for range nodes.All() {
		count++
	}
	if count == 0 {
		t.Fatalf("expected at least one obligation node from the standard preset")
	}
}

func TestStandard_PreservesResolverOrder(t *testing.T) {
	p, err := NewStandard()
	if err != nil {
		t.Fatalf("NewStandard: unexpected error: %v", err)
	}
	resolvers := p.Resolvers()
	if len(resolvers) != 13 {
		t.Fatalf("expected 13 resolvers in the standard preset, got %d", len(resolvers))
	}
	last := resolvers[len(resolvers)-1]
	if last.Name() != "accountability" {
		t.Fatalf("expected accountability to run last, got %q", last.Name())
	}
}
