// Package structure implements the structure-only preset layer: section
// headers and the discourse section references (herein/hereof/foregoing)
// spec.md's deixis table unifies.
package structure

import (
	"reflect"
	"strings"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// ReferenceKind classifies a discourse section reference.
type ReferenceKind int

const (
	Herein ReferenceKind = iota
	Hereof
	Foregoing
	Above
)

func (k ReferenceKind) String() string {
	switch k {
	case Herein:
		return "Herein"
	case Hereof:
		return "Hereof"
	case Foregoing:
		return "Foregoing"
	case Above:
		return "Above"
	default:
		return "Unknown"
	}
}

var referenceWords = map[string]ReferenceKind{
	"herein":    Herein,
	"hereof":    Hereof,
	"foregoing": Foregoing,
	"above":     Above,
}

// SectionReference is a discourse-anaphoric marker like "herein" or
// "the foregoing".
type SectionReference struct {
	Kind ReferenceKind
}

// headingWords introduces a section header line, per the contract-drafting
// convention of numbering sections/articles/schedules/exhibits.
var headingWords = map[string]bool{
	"section":  true,
	"article":  true,
	"schedule": true,
	"exhibit":  true,
	"appendix": true,
}

// SectionHeader is a detected heading like "Section 3.2 Termination".
type SectionHeader struct {
	Label  string
	Number string
	Title  string
}

const headerConfidence = 0.80
const referenceConfidence = 0.85

// Resolver is the structure-layer resolver: section headers + references.
type Resolver struct{}

func (Resolver) Name() string       { return "structure" }
func (Resolver) Reads() []reflect.Type { return nil }
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{
		attrstore.TypeOf[scored.Scored[SectionHeader]](),
		attrstore.TypeOf[scored.Scored[SectionReference]](),
	}
}

func (r Resolver) Run(sel cursor.Selection) error {
	line := sel.Line
	headers := attrstore.For[scored.Scored[SectionHeader]](sel.Store)
	refs := attrstore.For[scored.Scored[SectionReference]](sel.Store)

	if hdr, rng, ok := matchHeader(line); ok {
		headers.Insert(rng, scored.RuleBased(hdr, headerConfidence, "section-header"), nil)
	}

	for i := 0; i < line.Len(); i++ {
		tok := line.Token(i)
		if tok.Class != token.ClassWord {
			continue
		}
		kind, ok := referenceWords[strings.ToLower(tok.Text)]
		if !ok {
			continue
		}
		rng := token.Range{Start: i, End: i}
		refs.Insert(rng, scored.RuleBased(SectionReference{Kind: kind}, referenceConfidence, "section-reference"), nil)
	}
	return nil
}

// matchHeader recognizes a line that opens with a heading word followed by
// a number (digits or a bare roman-numeral word), e.g. "Section 3.2
// Termination" or "ARTICLE IV Indemnification".
func matchHeader(line token.Line) (SectionHeader, token.Range, bool) {
	i := 0
	for i < line.Len() && line.Token(i).IsWhitespace() {
		i++
	}
	if i >= line.Len() || line.Token(i).Class != token.ClassWord {
		return SectionHeader{}, token.Range{}, false
	}
	label := line.Token(i).Text
	if !headingWords[strings.ToLower(label)] {
		return SectionHeader{}, token.Range{}, false
	}
	numStart := i + 1
	j := numStart
	for j < line.Len() && line.Token(j).IsWhitespace() {
		j++
	}
	if j >= line.Len() {
		return SectionHeader{}, token.Range{}, false
	}
	numTok := line.Token(j)
	if numTok.Class != token.ClassNaturalNumber && !isRomanNumeral(numTok.Text) {
		return SectionHeader{}, token.Range{}, false
	}
	numberEnd := j
	// Allow a dotted subsection, e.g. "3.2".
	if numberEnd+2 < line.Len() {
		dot := line.Token(numberEnd + 1)
		next := line.Token(numberEnd + 2)
		if dot.Class == token.ClassPunctuation && dot.Text == "." && next.Class == token.ClassNaturalNumber {
			numberEnd += 2
		}
	}
	number := line.TextOf(token.Range{Start: j, End: numberEnd})

	titleStart := numberEnd + 1
	for titleStart < line.Len() && (line.Token(titleStart).IsWhitespace() ||
		(line.Token(titleStart).Class == token.ClassPunctuation && line.Token(titleStart).Text == ".")) {
		titleStart++
	}
	title := ""
	end := numberEnd
	if titleStart < line.Len() {
		title = strings.TrimSpace(line.TextOf(token.Range{Start: titleStart, End: line.Len() - 1}))
		end = line.Len() - 1
	}

	return SectionHeader{Label: label, Number: number, Title: title}, token.Range{Start: i, End: end}, true
}

func isRomanNumeral(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'I', 'V', 'X', 'L', 'C', 'D', 'M':
		default:
			return false
		}
	}
	return true
}
