// Package obligation implements G5: obligation-phrase extraction around
// the modal keywords Shall, May, and ShallNot.
package obligation

import (
	"reflect"
	"strings"

	"github.com/phosphorco/legalnlp/internal/legal/keyword"
	"github.com/phosphorco/legalnlp/internal/legal/pronoun"
	"github.com/phosphorco/legalnlp/internal/legal/termref"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// Type classifies the obligation a modal keyword introduces.
type Type int

const (
	Duty Type = iota
	Permission
	Prohibition
)

func (t Type) String() string {
	switch t {
	case Duty:
		return "Duty"
	case Permission:
		return "Permission"
	case Prohibition:
		return "Prohibition"
	default:
		return "Unknown"
	}
}

// ObligorKind tags which candidate source an Obligor came from.
type ObligorKind int

const (
	ObligorTermRef ObligorKind = iota
	ObligorPronounRef
	ObligorNounPhrase
)

func (k ObligorKind) String() string {
	switch k {
	case ObligorTermRef:
		return "TermRef"
	case ObligorPronounRef:
		return "PronounRef"
	default:
		return "NounPhrase"
	}
}

// Obligor is the tagged-union obligor reference spec.md §4.G5 calls for.
type Obligor struct {
	Kind  ObligorKind
	Name  string
	Range token.Range
}

// Condition is one keyword-introduced sub-phrase attached to an obligation.
type Condition struct {
	Type         string
	Text         string
	KeywordRange token.Range
}

// ObligationPhrase is the attribute G5 emits.
type ObligationPhrase struct {
	Type       Type
	Obligor    Obligor
	Action     string
	Conditions []Condition
}

// Association labels used when attaching provenance edges to an emitted
// obligation span.
const (
	AssocObligorSource   = "obligor_source"
	AssocConditionSource = "condition_source"
)

var conditionKeywords = map[keyword.Kind]string{
	keyword.If:        "If",
	keyword.Unless:    "Unless",
	keyword.Provided:  "Provided",
	keyword.SubjectTo: "SubjectTo",
}

// Resolver is the G5 obligation-phrase resolver.
type Resolver struct{}

func (Resolver) Name() string { return "obligation" }
func (Resolver) Reads() []reflect.Type {
	return []reflect.Type{
		attrstore.TypeOf[keyword.Keyword](),
		attrstore.TypeOf[scored.Scored[termref.TermReference]](),
		attrstore.TypeOf[scored.Scored[pronoun.PronounReference]](),
	}
}
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[ObligationPhrase]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	line := sel.Line
	kws := attrstore.For[keyword.Keyword](sel.Store)
	refs := attrstore.For[scored.Scored[termref.TermReference]](sel.Store)
	prons := attrstore.For[scored.Scored[pronoun.PronounReference]](sel.Store)
	out := attrstore.For[scored.Scored[ObligationPhrase]](sel.Store)

	nounPhrases := pronoun.CapitalizedNounPhrases(line)

	for _, rng := range kws.Ranges() {
		for _, kw := range kws.ValuesAt(rng) {
			var obType Type
			switch kw.Kind {
			case keyword.Shall:
				obType = Duty
			case keyword.May:
				obType = Permission
			case keyword.ShallNot:
				obType = Prohibition
			default:
				continue
			}

			obligor, ok := findObligor(line, rng.Start, refs, prons, nounPhrases)
			if !ok {
				continue
			}

			action, _ := extractAction(line, rng.End, kws)
			conditions := findConditions(line, rng.Start, kws)

			phrase := ObligationPhrase{Type: obType, Obligor: obligor, Action: action, Conditions: conditions}

			var assocs []attrstore.Assoc
			assocs = append(assocs, attrstore.Assoc{Label: AssocObligorSource, Target: obligor.Range})
			for _, c := range conditions {
				assocs = append(assocs, attrstore.Assoc{Label: AssocConditionSource, Target: c.KeywordRange})
			}

			conf := 0.85
			if action == "" {
				conf -= 0.10
			}

			span := token.Range{Start: rng.Start, End: rng.End}
			out.Insert(span, scored.RuleBased(phrase, conf, "obligation"), assocs)
		}
	}
	return nil
}

func findObligor(
	line token.Line,
	modalStart int,
	refs attrstore.Typed[scored.Scored[termref.TermReference]],
	prons attrstore.Typed[scored.Scored[pronoun.PronounReference]],
	nounPhrases []pronoun.NounPhrase,
) (Obligor, bool) {
	bestIdx := -1
	var best Obligor
	consider := func(end int, ob Obligor) {
		if end >= modalStart {
			return
		}
		if !pronoun.SameSentence(line, end, modalStart) {
			return
		}
		if end > bestIdx {
			bestIdx = end
			best = ob
		}
	}

	for _, rng := range refs.Ranges() {
		for _, v := range refs.ValuesAt(rng) {
			consider(rng.End, Obligor{Kind: ObligorTermRef, Name: v.Value.Name, Range: rng})
		}
	}
	for _, rng := range prons.Ranges() {
		for _, v := range prons.ValuesAt(rng) {
			if len(v.Value.Candidates) == 0 {
				continue
			}
			consider(rng.End, Obligor{Kind: ObligorPronounRef, Name: v.Value.Candidates[0].Name, Range: rng})
		}
	}
	for _, np := range nounPhrases {
		consider(np.Range.End, Obligor{Kind: ObligorNounPhrase, Name: np.Text, Range: np.Range})
	}

	if bestIdx < 0 {
		return Obligor{}, false
	}
	return best, true
}

// extractAction walks forward from the modal collecting text until a
// sentence boundary, a condition keyword, or end of line.
func extractAction(line token.Line, from int, kws attrstore.Typed[keyword.Keyword]) (string, int) {
	conditionStarts := conditionKeywordStarts(kws)
	var words []string
	i := from + 1
	for i < line.Len() {
		tok := line.Token(i)
		if tok.Class == token.ClassPunctuation && (tok.Text == "." || tok.Text == "!" || tok.Text == "?") {
			return strings.TrimSpace(strings.Join(words, "")), i
		}
		if conditionStarts[i] {
			return strings.TrimSpace(strings.Join(words, "")), i
		}
		words = append(words, tok.Text)
		i++
	}
	return strings.TrimSpace(strings.Join(words, "")), i
}

func conditionKeywordStarts(kws attrstore.Typed[keyword.Keyword]) map[int]bool {
	starts := make(map[int]bool)
	for _, rng := range kws.Ranges() {
		for _, kw := range kws.ValuesAt(rng) {
			if _, ok := conditionKeywords[kw.Kind]; ok {
				starts[rng.Start] = true
			}
		}
	}
	return starts
}

// findConditions identifies keyword-introduced sub-phrases within the same
// sentence as the modal at modalStart, attaching a condition only when it
// precedes or co-occurs with modalStart and modalStart is the nearest such
// modal keyword for that condition — so a condition is not also attached to
// a different, later modal sharing the same sentence.
func findConditions(line token.Line, modalStart int, kws attrstore.Typed[keyword.Keyword]) []Condition {
	var out []Condition
	for _, rng := range kws.Ranges() {
		for _, kw := range kws.ValuesAt(rng) {
			label, ok := conditionKeywords[kw.Kind]
			if !ok {
				continue
			}
			if rng.Start > modalStart {
				continue
			}
			if !pronoun.SameSentence(line, modalStart, rng.Start) {
				continue
			}
			if nearestModalAtOrAfter(line, kws, rng.Start) != modalStart {
				continue
			}
			text := conditionText(line, rng.End)
			out = append(out, Condition{Type: label, Text: text, KeywordRange: rng})
		}
	}
	return out
}

// nearestModalAtOrAfter returns the start index of the modal keyword
// (Shall, May, ShallNot) nearest to, and at or after, idx within the same
// sentence, or -1 if none exists.
func nearestModalAtOrAfter(line token.Line, kws attrstore.Typed[keyword.Keyword], idx int) int {
	best := -1
	for _, rng := range kws.Ranges() {
		if rng.Start < idx {
			continue
		}
		for _, kw := range kws.ValuesAt(rng) {
			if kw.Kind != keyword.Shall && kw.Kind != keyword.May && kw.Kind != keyword.ShallNot {
				continue
			}
			if !pronoun.SameSentence(line, rng.Start, idx) {
				continue
			}
			if best < 0 || rng.Start < best {
				best = rng.Start
			}
		}
	}
	return best
}

func conditionText(line token.Line, from int) string {
	var words []string
	i := from + 1
	for i < line.Len() {
		tok := line.Token(i)
		if tok.Class == token.ClassPunctuation && (tok.Text == "." || tok.Text == "," || tok.Text == ";") {
			break
		}
		words = append(words, tok.Text)
		i++
	}
	return strings.TrimSpace(strings.Join(words, ""))
}
