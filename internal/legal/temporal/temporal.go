// Package temporal implements the temporal preset layer: durations
// ("thirty (30) days") and absolute dates ("January 1, 2026").
package temporal

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// Kind distinguishes a duration from an absolute date.
type Kind int

const (
	Duration Kind = iota
	AbsoluteDate
)

func (k Kind) String() string {
	if k == Duration {
		return "Duration"
	}
	return "AbsoluteDate"
}

// TemporalExpression is the attribute this resolver emits.
type TemporalExpression struct {
	Kind Kind
	Text string
	// Days is populated for Duration expressions whose unit is known.
	Days int
}

const confidence = 0.80

var durationUnits = map[string]int{
	"day": 1, "days": 1,
	"month": 30, "months": 30,
	"year": 365, "years": 365,
	"week": 7, "weeks": 7,
}

var months = map[string]bool{
	"january": true, "february": true, "march": true, "april": true, "may": true,
	"june": true, "july": true, "august": true, "september": true, "october": true,
	"november": true, "december": true,
}

// Resolver is the temporal-expression resolver.
type Resolver struct{}

func (Resolver) Name() string          { return "temporal" }
func (Resolver) Reads() []reflect.Type { return nil }
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[TemporalExpression]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	line := sel.Line
	out := attrstore.For[scored.Scored[TemporalExpression]](sel.Store)

	consumed := make(map[int]bool)
	for i := 0; i < line.Len(); i++ {
		if consumed[i] {
			continue
		}
		if rng, expr, ok := matchAbsoluteDate(line, i); ok {
			out.Insert(rng, scored.RuleBased(expr, confidence, "temporal-date"), nil)
			markConsumed(consumed, rng)
			continue
		}
		if rng, expr, ok := matchDuration(line, i); ok {
			out.Insert(rng, scored.RuleBased(expr, confidence, "temporal-duration"), nil)
			markConsumed(consumed, rng)
		}
	}
	return nil
}

func markConsumed(consumed map[int]bool, rng token.Range) {
	for i := rng.Start; i <= rng.End; i++ {
		consumed[i] = true
	}
}

// matchDuration recognizes NUMBER UNIT (e.g. "30 days"), optionally preceded
// by a spelled-out number sharing the same parenthetical numeral (e.g.
// "thirty (30) days" — the numeral itself anchors Days, the spelled word is
// included in the span but not re-parsed).
func matchDuration(line token.Line, i int) (token.Range, TemporalExpression, bool) {
	tok := line.Token(i)

	numIdx, unitSearchFrom, ok := durationNumeralAt(line, i, tok)
	if !ok {
		return token.Range{}, TemporalExpression{}, false
	}

	j := unitSearchFrom
	for j < line.Len() && line.Token(j).IsWhitespace() {
		j++
	}
	if j >= line.Len() || line.Token(j).Class != token.ClassWord {
		return token.Range{}, TemporalExpression{}, false
	}
	perUnit, ok := durationUnits[strings.ToLower(line.Token(j).Text)]
	if !ok {
		return token.Range{}, TemporalExpression{}, false
	}

	n, _ := strconv.Atoi(line.Token(numIdx).Text)
	rng := token.Range{Start: i, End: j}
	return rng, TemporalExpression{Kind: Duration, Text: line.TextOf(rng), Days: n * perUnit}, true
}

// durationNumeralAt locates the numeral anchoring a duration starting at i:
// either i itself (a bare "30"), or a parenthetical numeral following a
// spelled-out number at i (e.g. "thirty (30)"). Returns the numeral's token
// index and the index to resume scanning for the unit word from.
func durationNumeralAt(line token.Line, i int, tok token.Token) (numIdx int, resumeFrom int, ok bool) {
	if tok.Class == token.ClassNaturalNumber {
		return i, i + 1, true
	}
	if tok.Class != token.ClassWord {
		return 0, 0, false
	}
	j := i + 1
	for j < line.Len() && line.Token(j).IsWhitespace() {
		j++
	}
	if j >= line.Len() || line.Token(j).Class != token.ClassPunctuation || line.Token(j).Text != "(" {
		return 0, 0, false
	}
	k := j + 1
	if k >= line.Len() || line.Token(k).Class != token.ClassNaturalNumber {
		return 0, 0, false
	}
	closeIdx := k + 1
	if closeIdx >= line.Len() || line.Token(closeIdx).Class != token.ClassPunctuation || line.Token(closeIdx).Text != ")" {
		return 0, 0, false
	}
	return k, closeIdx + 1, true
}

// matchAbsoluteDate recognizes MONTH DAY[, YEAR], e.g. "January 1, 2026".
func matchAbsoluteDate(line token.Line, i int) (token.Range, TemporalExpression, bool) {
	tok := line.Token(i)
	if tok.Class != token.ClassWord || !months[strings.ToLower(tok.Text)] {
		return token.Range{}, TemporalExpression{}, false
	}
	j := i + 1
	for j < line.Len() && line.Token(j).IsWhitespace() {
		j++
	}
	if j >= line.Len() || line.Token(j).Class != token.ClassNaturalNumber {
		return token.Range{}, TemporalExpression{}, false
	}
	end := j
	k := j + 1
	if k < line.Len() && line.Token(k).Class == token.ClassPunctuation && line.Token(k).Text == "," {
		m := k + 1
		for m < line.Len() && line.Token(m).IsWhitespace() {
			m++
		}
		if m < line.Len() && line.Token(m).Class == token.ClassNaturalNumber {
			end = m
		}
	}
	rng := token.Range{Start: i, End: end}
	return rng, TemporalExpression{Kind: AbsoluteDate, Text: line.TextOf(rng)}, true
}
