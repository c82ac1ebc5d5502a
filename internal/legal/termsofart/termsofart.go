// Package termsofart implements the terms-of-art preset layer: recognition
// of standard legal-drafting phrases that carry fixed meaning independent of
// any contract-specific defined-term block.
package termsofart

import (
	"reflect"
	"strings"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// TermOfArt is a recognized standard legal phrase.
type TermOfArt struct {
	Phrase string
}

const confidence = 0.75

// phrases lists the recognized terms of art, each as its lowercase
// word sequence. Longer phrases are tried before shorter ones that share a
// first word.
var phrases = [][]string{
	{"time", "is", "of", "the", "essence"},
	{"force", "majeure"},
	{"liquidated", "damages"},
	{"sole", "discretion"},
	{"reasonable", "efforts"},
	{"best", "efforts"},
	{"governing", "law"},
	{"indemnification"},
	{"indemnify"},
	{"arbitration"},
	{"severability"},
	{"confidentiality"},
}

// Resolver is the terms-of-art resolver.
type Resolver struct{}

func (Resolver) Name() string          { return "terms-of-art" }
func (Resolver) Reads() []reflect.Type { return nil }
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[TermOfArt]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	line := sel.Line
	out := attrstore.For[scored.Scored[TermOfArt]](sel.Store)

	consumed := make(map[int]bool)
	for i := 0; i < line.Len(); i++ {
		if consumed[i] || line.Token(i).Class != token.ClassWord {
			continue
		}
		best := -1
		var bestPhrase string
		for _, phrase := range phrases {
			if end, ok := matchPhrase(line, i, phrase); ok && end > best {
				best = end
				bestPhrase = strings.Join(phrase, " ")
			}
		}
		if best < 0 {
			continue
		}
		rng := token.Range{Start: i, End: best}
		out.Insert(rng, scored.RuleBased(TermOfArt{Phrase: bestPhrase}, confidence, "terms-of-art"), nil)
		for k := i; k <= best; k++ {
			consumed[k] = true
		}
	}
	return nil
}

// matchPhrase reports whether line's word tokens starting at i spell out
// phrase (case-insensitively, skipping whitespace between words), returning
// the index of the phrase's last token.
func matchPhrase(line token.Line, i int, phrase []string) (int, bool) {
	idx := i
	for _, word := range phrase {
		for idx < line.Len() && line.Token(idx).IsWhitespace() {
			idx++
		}
		if idx >= line.Len() {
			return 0, false
		}
		tok := line.Token(idx)
		if tok.Class != token.ClassWord || !strings.EqualFold(tok.Text, word) {
			return 0, false
		}
		idx++
	}
	return idx - 1, true
}
