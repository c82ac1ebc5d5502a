// Package deixis implements Component I: unification of pronoun, temporal,
// and section-reference attributes into one deictic-reference taxonomy.
package deixis

import (
	"reflect"

	"github.com/phosphorco/legalnlp/internal/legal/pronoun"
	"github.com/phosphorco/legalnlp/internal/legal/structure"
	"github.com/phosphorco/legalnlp/internal/legal/temporal"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
)

// Category is the top-level deixis taxonomy bucket.
type Category string

const (
	CategoryPerson    Category = "Person"
	CategoryTime      Category = "Time"
	CategoryDiscourse Category = "Discourse"
)

// Subcategory further refines Category, per spec.md §4.I's mapping table.
type Subcategory string

const (
	SubcategoryPersonThirdSingular Subcategory = "PersonThirdSingular"
	SubcategoryPersonThirdPlural   Subcategory = "PersonThirdPlural"
	SubcategoryPersonRelative      Subcategory = "PersonRelative"
	SubcategoryTimeDuration        Subcategory = "TimeDuration"
	SubcategoryDiscourseThisDoc    Subcategory = "DiscourseThisDocument"
	SubcategoryDiscourseAnaphoric  Subcategory = "DiscourseAnaphoric"
)

// DeicticReference is the attribute this resolver emits.
type DeicticReference struct {
	Category         Category
	Subcategory      Subcategory
	SurfaceText      string
	ResolvedReferent string
	HasReferent      bool
}

// Resolver is the deictic-unification resolver.
type Resolver struct{}

func (Resolver) Name() string { return "deixis" }
func (Resolver) Reads() []reflect.Type {
	return []reflect.Type{
		attrstore.TypeOf[scored.Scored[pronoun.PronounReference]](),
		attrstore.TypeOf[scored.Scored[temporal.TemporalExpression]](),
		attrstore.TypeOf[scored.Scored[structure.SectionReference]](),
	}
}
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[DeicticReference]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	line := sel.Line
	prons := attrstore.For[scored.Scored[pronoun.PronounReference]](sel.Store)
	temporals := attrstore.For[scored.Scored[temporal.TemporalExpression]](sel.Store)
	refs := attrstore.For[scored.Scored[structure.SectionReference]](sel.Store)
	out := attrstore.For[scored.Scored[DeicticReference]](sel.Store)

	for _, rng := range prons.Ranges() {
		for _, v := range prons.ValuesAt(rng) {
			sub, ok := pronounSubcategory(v.Value.Kind)
			if !ok {
				continue
			}
			dr := DeicticReference{Category: CategoryPerson, Subcategory: sub, SurfaceText: line.TextOf(rng)}
			if len(v.Value.Candidates) > 0 {
				dr.ResolvedReferent = v.Value.Candidates[0].Name
				dr.HasReferent = true
			}
			out.Insert(rng, scored.Derived(dr, v.Confidence), nil)
		}
	}

	for _, rng := range temporals.Ranges() {
		for _, v := range temporals.ValuesAt(rng) {
			if v.Value.Kind != temporal.Duration {
				continue // absolute dates are skipped — not deictic, per spec.md §4.I
			}
			dr := DeicticReference{Category: CategoryTime, Subcategory: SubcategoryTimeDuration, SurfaceText: v.Value.Text}
			out.Insert(rng, scored.Derived(dr, v.Confidence), nil)
		}
	}

	for _, rng := range refs.Ranges() {
		for _, v := range refs.ValuesAt(rng) {
			sub := SubcategoryDiscourseAnaphoric
			if v.Value.Kind == structure.Herein || v.Value.Kind == structure.Hereof {
				sub = SubcategoryDiscourseThisDoc
			}
			dr := DeicticReference{Category: CategoryDiscourse, Subcategory: sub, SurfaceText: line.TextOf(rng)}
			out.Insert(rng, scored.Derived(dr, v.Confidence), nil)
		}
	}
	return nil
}

func pronounSubcategory(kind pronoun.Kind) (Subcategory, bool) {
	switch kind {
	case pronoun.ThirdSingularNeuter, pronoun.ThirdSingularMasculine, pronoun.ThirdSingularFeminine:
		return SubcategoryPersonThirdSingular, true
	case pronoun.ThirdPlural:
		return SubcategoryPersonThirdPlural, true
	case pronoun.Relative:
		return SubcategoryPersonRelative, true
	default:
		return "", false
	}
}
