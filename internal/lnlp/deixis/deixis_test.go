package deixis

import (
	"testing"

	"github.com/phosphorco/legalnlp/internal/legal/definedterm"
	"github.com/phosphorco/legalnlp/internal/legal/keyword"
	"github.com/phosphorco/legalnlp/internal/legal/pronoun"
	"github.com/phosphorco/legalnlp/internal/legal/structure"
	"github.com/phosphorco/legalnlp/internal/legal/temporal"
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
		structure.Resolver{},
		keyword.Resolver{},
		keyword.ProhibitionResolver{},
		definedterm.Resolver{},
		termref.Resolver{},
		temporal.Resolver{},
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

func allRefs(store *attrstore.Store) []DeicticReference {
	typed := attrstore.For[scored.Scored[DeicticReference]](store)
	var out []DeicticReference
	for _, e := range typed.All() {
		out = append(out, e.Value.Value)
	}
	return out
}

func TestDeixis_ThirdSingularPronounMapsToPerson(t *testing.T) {
	store := run(t, `ABC Corp (the "Company") exists. It shall deliver.`)
	refs := allRefs(store)
	var found bool
	for _, r := range refs {
		if r.Category == CategoryPerson && r.Subcategory == SubcategoryPersonThirdSingular {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a PersonThirdSingular reference, got %+v", refs)
	}
}

func TestDeixis_DurationMapsToTime(t *testing.T) {
	store := run(t, "Tenant has 30 days to cure the default.")
	refs := allRefs(store)
	if len(refs) != 1 || refs[0].Category != CategoryTime || refs[0].Subcategory != SubcategoryTimeDuration {
		t.Fatalf("expected exactly one TimeDuration reference, got %+v", refs)
	}
}

func TestDeixis_AbsoluteDateIsSkipped(t *testing.T) {
	store := run(t, "This Agreement is effective January 1, 2026.")
	refs := allRefs(store)
	if len(refs) != 0 {
		t.Fatalf("expected absolute dates to be skipped, got %+v", refs)
	}
}

func TestDeixis_HereinMapsToThisDocument(t *testing.T) {
	store := run(t, "The terms used herein shall control.")
	refs := allRefs(store)
	if len(refs) != 1 || refs[0].Category != CategoryDiscourse || refs[0].Subcategory != SubcategoryDiscourseThisDoc {
		t.Fatalf("expected a DiscourseThisDocument reference, got %+v", refs)
	}
}

func TestDeixis_ForegoingMapsToAnaphoric(t *testing.T) {
	store := run(t, "The foregoing provisions shall survive termination.")
	refs := allRefs(store)
	if len(refs) != 1 || refs[0].Category != CategoryDiscourse || refs[0].Subcategory != SubcategoryDiscourseAnaphoric {
		t.Fatalf("expected a DiscourseAnaphoric reference, got %+v", refs)
	}
}
