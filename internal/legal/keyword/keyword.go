// Package keyword implements G1: contract keyword recognition and the
// follow-up ShallNot prohibition merge.
package keyword

import (
	"reflect"
	"strings"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// Kind enumerates the contract keyword vocabulary.
type Kind int

const (
	Shall Kind = iota
	May
	Means
	Includes
	Hereinafter
	If
	Unless
	Provided
	SubjectTo
	Party
	ShallNot
)

func (k Kind) String() string {
	switch k {
	case Shall:
		return "Shall"
	case May:
		return "May"
	case Means:
		return "Means"
	case Includes:
		return "Includes"
	case Hereinafter:
		return "Hereinafter"
	case If:
		return "If"
	case Unless:
		return "Unless"
	case Provided:
		return "Provided"
	case SubjectTo:
		return "SubjectTo"
	case Party:
		return "Party"
	case ShallNot:
		return "ShallNot"
	default:
		return "Unknown"
	}
}

// Keyword is the attribute emitted for a single recognized keyword.
type Keyword struct {
	Kind Kind
}

var singleWord = map[string]Kind{
	"shall":       Shall,
	"may":         May,
	"means":       Means,
	"includes":    Includes,
	"hereinafter": Hereinafter,
	"if":          If,
	"unless":      Unless,
	"provided":    Provided,
	"party":       Party,
}

// Resolver is the G1 contract-keyword resolver.
type Resolver struct{}

func (Resolver) Name() string            { return "keyword" }
func (Resolver) Reads() []reflect.Type   { return nil }
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[Keyword]()}
}

// Run scans every token for a single- or multi-word keyword match.
func (Resolver) Run(sel cursor.Selection) error {
	line := sel.Line
	typed := attrstore.For[Keyword](sel.Store)
	for i := 0; i < line.Len(); i++ {
		tok := line.Token(i)
		if tok.Class == token.ClassWhitespace {
			continue
		}
		lower := strings.ToLower(tok.Text)
		if lower == "subject" {
			if j, ok := nextNonWhitespace(line, i); ok && strings.EqualFold(line.Token(j).Text, "to") {
				typed.Insert(token.Range{Start: i, End: j}, Keyword{Kind: SubjectTo}, nil)
				continue
			}
		}
		if kind, ok := singleWord[lower]; ok {
			typed.Insert(token.Range{Start: i, End: i}, Keyword{Kind: kind}, nil)
		}
	}
	return nil
}

func nextNonWhitespace(line token.Line, from int) (int, bool) {
	for i := from + 1; i < line.Len(); i++ {
		if line.Token(i).Class != token.ClassWhitespace {
			return i, true
		}
	}
	return 0, false
}

// ProhibitionResolver reads every Shall keyword and, when the next
// non-whitespace token is "not", emits a ShallNot spanning both tokens.
type ProhibitionResolver struct{}

func (ProhibitionResolver) Name() string          { return "prohibition" }
func (ProhibitionResolver) Reads() []reflect.Type { return []reflect.Type{attrstore.TypeOf[Keyword]()} }
func (ProhibitionResolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[Keyword]()}
}

func (ProhibitionResolver) Run(sel cursor.Selection) error {
	line := sel.Line
	typed := attrstore.For[Keyword](sel.Store)
	for _, rng := range typed.Ranges() {
		for _, kw := range typed.ValuesAt(rng) {
			if kw.Kind != Shall {
				continue
			}
			j, ok := nextNonWhitespace(line, rng.End)
			if !ok || !strings.EqualFold(line.Token(j).Text, "not") {
				continue
			}
			typed.Insert(token.Range{Start: rng.Start, End: j}, Keyword{Kind: ShallNot}, nil)
		}
	}
	return nil
}
