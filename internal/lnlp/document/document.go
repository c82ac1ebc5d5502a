// Package document implements the Document type: an ordered sequence of
// lines, each with its own attribute store, plus the span-ID registry that
// assigns deterministic IDs to spans once a pipeline has finished running.
package document

import (
	"sort"
	"strconv"
	"unicode"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// DocLine pairs one tokenized token.Line with the attrstore.Store that
// holds every attribute resolvers have inserted for it.
type DocLine struct {
	Line  token.Line
	Store *attrstore.Store
}

// Document is an ordered list of lines plus the span-ID registry described
// in spec.md's glossary. It owns its lines exclusively; callers that need
// concurrent access to the same document must synchronize externally (see
// spec.md §5's "Shared resources").
type Document struct {
	Lines []DocLine
	// id is the content-hash-derived identity described in SPEC_FULL.md's
	// "Document identity" section. It is computed once, at construction,
	// from the raw source text only — never from resolver output — so it
	// stays stable across repeated analyses of the same input.
	id uint64
}

// New builds a Document from already-tokenized lines, computing its
// content-hash ID from their raw text.
func New(lines []DocLine) (*Document, error) {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Line.Text()
	}
	id, err := hashstructure.Hash(texts, hashstructure.FormatV2, nil)
	if err != nil {
		return nil, err
	}
	return &Document{Lines: lines, id: id}, nil
}

// ID returns the document's content-hash identity, used as the snapshot
// cache key and the default telemetry run-id. It is never part of the
// snapshot's byte-stable serialization.
func (d *Document) ID() uint64 {
	return d.id
}

// FromText tokenizes raw contract text into a Document using the default
// tokenizer, splitting on newlines to produce one Line per line of input.
func FromText(text string) (*Document, error) {
	rawLines := splitLines(text)
	lines := make([]DocLine, 0, len(rawLines))
	for _, raw := range rawLines {
		lines = append(lines, DocLine{
			Line:  Tokenize(raw),
			Store: attrstore.New(),
		})
	}
	return New(lines)
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	start := 0
	for i, r := range text {
		if r == '\n' {
			out = append(out, text[start:i])
			start = i + 1
		}
	}
	out = append(out, text[start:])
	return out
}

// Tokenize builds a token.Line from raw text using the engine's default
// tokenizer: maximal runs of letters (ClassWord, with interior
// apostrophes kept as part of the word so "Tenant's" is one token), maximal
// runs of decimal digits (ClassNaturalNumber), maximal runs of whitespace
// (ClassWhitespace), and single-character ClassPunctuation/ClassSymbol
// tokens for everything else. Integrators may supply their own tokenizer as
// long as it preserves this class vocabulary.
func Tokenize(text string) token.Line {
	runes := []rune(text)
	var toks []token.Token
	idx := 0
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			toks = append(toks, newToken(runes, i, j, token.ClassWhitespace, idx))
			idx++
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			toks = append(toks, newToken(runes, i, j, token.ClassNaturalNumber, idx))
			idx++
			i = j
		case unicode.IsLetter(r):
			j := i + 1
			for j < len(runes) {
				if unicode.IsLetter(runes[j]) {
					j++
					continue
				}
				if runes[j] == '\'' && j+1 < len(runes) && unicode.IsLetter(runes[j+1]) {
					j += 2
					continue
				}
				break
			}
			toks = append(toks, newToken(runes, i, j, token.ClassWord, idx))
			idx++
			i = j
		case isPunct(r):
			toks = append(toks, newToken(runes, i, i+1, token.ClassPunctuation, idx))
			idx++
			i++
		default:
			toks = append(toks, newToken(runes, i, i+1, token.ClassSymbol, idx))
			idx++
			i++
		}
	}
	// Token offsets are UTF-16 code units (see token.Token): a rune outside
	// the Basic Multilingual Plane takes two.
	units := make([]int, len(runes)+1)
	for k, r := range runes {
		units[k+1] = units[k] + 1
		if r > 0xFFFF {
			units[k+1]++
		}
	}
	for k := range toks {
		toks[k].Start, toks[k].End = units[toks[k].Start], units[toks[k].End]
	}
	return token.NewLine(text, toks)
}

func newToken(runes []rune, start, end int, class token.Class, idx int) token.Token {
	return token.Token{
		Text:  string(runes[start:end]),
		Class: class,
		Start: start,
		End:   end,
		Index: idx,
	}
}

func isPunct(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '(', ')', '"', '\'', '-', '/':
		return true
	}
	return unicode.IsPunct(r)
}

// Registry assigns deterministic span IDs of the form "{prefix}-{n}" after
// sorting each attribute type's spans by (line, start-token, end-token),
// per spec.md's Document span definition.
type Registry struct {
	counters map[string]int
	ids      map[Key]string
}

// Key identifies one span by its position for registry lookups.
type Key struct {
	LineIndex int
	Range     token.Range
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]int), ids: make(map[Key]string)}
}

// Assign gives each of spans a deterministic ID with the given prefix,
// after sorting by position. Calling Assign twice with the same prefix and
// position set is idempotent: the second call returns the same IDs.
func (reg *Registry) Assign(prefix string, spans []Key) map[Key]string {
	sorted := make([]Key, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LineIndex != sorted[j].LineIndex {
			return sorted[i].LineIndex < sorted[j].LineIndex
		}
		return sorted[i].Range.Compare(sorted[j].Range) < 0
	})
	out := make(map[Key]string, len(sorted))
	for _, k := range sorted {
		if existing, ok := reg.ids[k]; ok {
			out[k] = existing
			continue
		}
		n := reg.counters[prefix]
		reg.counters[prefix] = n + 1
		id := idFor(prefix, n)
		reg.ids[k] = id
		out[k] = id
	}
	return out
}

func idFor(prefix string, n int) string {
	return prefix + "-" + strconv.Itoa(n)
}
