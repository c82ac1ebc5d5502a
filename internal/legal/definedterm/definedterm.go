// Package definedterm implements G2: defined-term extraction via the three
// QuotedMeans / Parenthetical / Hereinafter patterns.
package definedterm

import (
	"reflect"
	"strings"

	"github.com/phosphorco/legalnlp/internal/legal/keyword"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// Kind distinguishes how a defined term was introduced.
type Kind int

const (
	QuotedMeans Kind = iota
	Parenthetical
	Hereinafter
)

func (k Kind) String() string {
	switch k {
	case QuotedMeans:
		return "QuotedMeans"
	case Parenthetical:
		return "Parenthetical"
	case Hereinafter:
		return "Hereinafter"
	default:
		return "Unknown"
	}
}

// DefinedTerm is the attribute value G2 emits.
type DefinedTerm struct {
	Name string
	Kind Kind
}

// Confidence constants, tunable per spec.md §6's "Defined terms: three
// base-confidence constants."
const (
	ConfidenceQuotedMeans   = 0.95
	ConfidenceParenthetical = 0.90
	ConfidenceHereinafter   = 0.90
)

const isQuote = `"`

// Resolver is the G2 defined-term resolver.
type Resolver struct{}

func (Resolver) Name() string { return "defined-term" }
func (Resolver) Reads() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[keyword.Keyword]()}
}
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[DefinedTerm]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	line := sel.Line
	kws := attrstore.For[keyword.Keyword](sel.Store)
	out := attrstore.For[scored.Scored[DefinedTerm]](sel.Store)

	for _, rng := range kws.Ranges() {
		for _, kw := range kws.ValuesAt(rng) {
			switch kw.Kind {
			case keyword.Means:
				if name, span, ok := quotedMeans(line, rng.Start); ok {
					out.Insert(span, scored.RuleBased(DefinedTerm{Name: name, Kind: QuotedMeans}, ConfidenceQuotedMeans, "quoted-means"), nil)
				}
			case keyword.Hereinafter:
				if name, span, ok := hereinafter(line, rng.End); ok {
					out.Insert(span, scored.RuleBased(DefinedTerm{Name: name, Kind: Hereinafter}, ConfidenceHereinafter, "hereinafter"), nil)
				}
			}
		}
	}

	for i := 0; i < line.Len(); i++ {
		tok := line.Token(i)
		if tok.Class != token.ClassPunctuation || tok.Text != "(" {
			continue
		}
		if name, span, ok := parenthetical(line, i); ok {
			out.Insert(span, scored.RuleBased(DefinedTerm{Name: name, Kind: Parenthetical}, ConfidenceParenthetical, "parenthetical"), nil)
		}
	}
	return nil
}

// quotedMeans scans backwards from the Means keyword over whitespace to a
// closing quote, then accumulates words backwards to the opening quote.
func quotedMeans(line token.Line, meansIdx int) (string, token.Range, bool) {
	i := prevNonWhitespace(line, meansIdx)
	if i < 0 || !isQuoteToken(line, i) {
		return "", token.Range{}, false
	}
	closeIdx := i
	words, openIdx, ok := accumulateBackwards(line, i-1)
	if !ok {
		return "", token.Range{}, false
	}
	return strings.Join(words, " "), token.Range{Start: openIdx, End: closeIdx}, true
}

// accumulateBackwards walks backward collecting word tokens until it finds
// an opening quote, skipping whitespace between words.
func accumulateBackwards(line token.Line, from int) ([]string, int, bool) {
	var words []string
	i := from
	for i >= 0 {
		tok := line.Token(i)
		if tok.Class == token.ClassWhitespace {
			i--
			continue
		}
		if isQuoteToken(line, i) {
			reversed := make([]string, len(words))
			for k, w := range words {
				reversed[len(words)-1-k] = w
			}
			return reversed, i, true
		}
		if tok.Class != token.ClassWord && tok.Class != token.ClassNaturalNumber {
			return nil, 0, false
		}
		words = append(words, tok.Text)
		i--
	}
	return nil, 0, false
}

// parenthetical matches "(" ["the"] '"' word+ '"' ")".
func parenthetical(line token.Line, openParenIdx int) (string, token.Range, bool) {
	i := nextNonWhitespace(line, openParenIdx)
	if i < 0 {
		return "", token.Range{}, false
	}
	if strings.EqualFold(line.Token(i).Text, "the") {
		next := nextNonWhitespace(line, i)
		if next < 0 {
			return "", token.Range{}, false
		}
		i = next
	}
	if !isQuoteToken(line, i) {
		return "", token.Range{}, false
	}
	words, closeIdx, ok := accumulateForwards(line, i+1)
	if !ok {
		return "", token.Range{}, false
	}
	closeParen := nextNonWhitespace(line, closeIdx)
	if closeParen < 0 || line.Token(closeParen).Class != token.ClassPunctuation || line.Token(closeParen).Text != ")" {
		return "", token.Range{}, false
	}
	return strings.Join(words, " "), token.Range{Start: openParenIdx, End: closeParen}, true
}

// hereinafter matches "Hereinafter" ["referred to as"] ["the"] '"' word+ '"'.
func hereinafter(line token.Line, afterIdx int) (string, token.Range, bool) {
	i := nextNonWhitespace(line, afterIdx)
	if i < 0 {
		return "", token.Range{}, false
	}
	if strings.EqualFold(line.Token(i).Text, "referred") {
		j := nextNonWhitespace(line, i)
		if j >= 0 && strings.EqualFold(line.Token(j).Text, "to") {
			k := nextNonWhitespace(line, j)
			if k >= 0 && strings.EqualFold(line.Token(k).Text, "as") {
				next := nextNonWhitespace(line, k)
				if next < 0 {
					return "", token.Range{}, false
				}
				i = next
			}
		}
	}
	if strings.EqualFold(line.Token(i).Text, "the") {
		next := nextNonWhitespace(line, i)
		if next < 0 {
			return "", token.Range{}, false
		}
		i = next
	}
	if !isQuoteToken(line, i) {
		return "", token.Range{}, false
	}
	words, closeIdx, ok := accumulateForwards(line, i+1)
	if !ok {
		return "", token.Range{}, false
	}
	return strings.Join(words, " "), token.Range{Start: afterIdx, End: closeIdx}, true
}

func accumulateForwards(line token.Line, from int) ([]string, int, bool) {
	var words []string
	i := from
	for i < line.Len() {
		tok := line.Token(i)
		if tok.Class == token.ClassWhitespace {
			i++
			continue
		}
		if isQuoteToken(line, i) {
			if len(words) == 0 {
				return nil, 0, false
			}
			return words, i, true
		}
		if tok.Class != token.ClassWord && tok.Class != token.ClassNaturalNumber {
			return nil, 0, false
		}
		words = append(words, tok.Text)
		i++
	}
	return nil, 0, false
}

func isQuoteToken(line token.Line, i int) bool {
	if i < 0 || i >= line.Len() {
		return false
	}
	tok := line.Token(i)
	return tok.Class == token.ClassPunctuation && tok.Text == isQuote
}

func prevNonWhitespace(line token.Line, from int) int {
	for i := from - 1; i >= 0; i-- {
		if line.Token(i).Class != token.ClassWhitespace {
			return i
		}
	}
	return -1
}

func nextNonWhitespace(line token.Line, from int) int {
	for i := from + 1; i < line.Len(); i++ {
		if line.Token(i).Class != token.ClassWhitespace {
			return i
		}
	}
	return -1
}
