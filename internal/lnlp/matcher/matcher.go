// Package matcher implements Component C: composable predicates over
// tokens and attributes. Patterns are evaluated lazily against a single
// token.Range on a token.Line plus that line's attrstore.Store; they do not
// allocate unless a match occurs, mirroring the teacher corpus's
// closure-based StructuralCheck/IdiomaticCheck matcher style.
package matcher

import (
	"strings"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// Pattern is a predicate over a single-token range that optionally produces
// a payload of type T on success. A Pattern over a multi-token range is
// built by composing single-token patterns with Seq or All.
type Pattern[T any] struct {
	// Match is called once per candidate range. ok reports whether the
	// pattern matched; when ok is true, value is the pattern's payload.
	Match func(line token.Line, store *attrstore.Store, rng token.Range) (value T, ok bool)
	// Width is the number of tokens this pattern always consumes, used by
	// Seq to lay out consecutive sub-ranges. Width must be >= 1.
	Width int
}

// TokenText matches any token that has non-whitespace text and returns it.
func TokenText() Pattern[string] {
	return Pattern[string]{
		Width: 1,
		Match: func(line token.Line, _ *attrstore.Store, rng token.Range) (string, bool) {
			tok := line.Token(rng.Start)
			if tok.Class == token.ClassWhitespace {
				return "", false
			}
			return tok.Text, true
		},
	}
}

// Whitespace matches a single whitespace token.
func Whitespace() Pattern[struct{}] {
	return Pattern[struct{}]{
		Width: 1,
		Match: func(line token.Line, _ *attrstore.Store, rng token.Range) (struct{}, bool) {
			if line.Token(rng.Start).Class == token.ClassWhitespace {
				return struct{}{}, true
			}
			return struct{}{}, false
		},
	}
}

// TextEquals matches a single token whose literal text equals s, optionally
// case-insensitively.
func TextEquals(s string, caseInsensitive bool) Pattern[string] {
	return Pattern[string]{
		Width: 1,
		Match: func(line token.Line, _ *attrstore.Store, rng token.Range) (string, bool) {
			tok := line.Token(rng.Start)
			if caseInsensitive {
				if strings.EqualFold(tok.Text, s) {
					return tok.Text, true
				}
				return "", false
			}
			if tok.Text == s {
				return tok.Text, true
			}
			return "", false
		},
	}
}

// TokenHasAny matches a single punctuation/symbol token whose text is
// exactly one of the runes in set, and returns that rune.
func TokenHasAny(set []rune) Pattern[rune] {
	return Pattern[rune]{
		Width: 1,
		Match: func(line token.Line, _ *attrstore.Store, rng token.Range) (rune, bool) {
			tok := line.Token(rng.Start)
			if tok.Class != token.ClassPunctuation && tok.Class != token.ClassSymbol {
				return 0, false
			}
			runes := []rune(tok.Text)
			if len(runes) != 1 {
				return 0, false
			}
			for _, r := range set {
				if r == runes[0] {
					return runes[0], true
				}
			}
			return 0, false
		},
	}
}

// AttrEq matches when a precomputed value equal to v (by ==) is stored at
// this exact range for type T.
func AttrEq[T comparable](store *attrstore.Store, v T) Pattern[struct{}] {
	return Pattern[struct{}]{
		Width: 1,
		Match: func(_ token.Line, s *attrstore.Store, rng token.Range) (struct{}, bool) {
			typed := attrstore.For[T](s)
			for _, val := range typed.ValuesAt(rng) {
				if val == v {
					return struct{}{}, true
				}
			}
			return struct{}{}, false
		},
	}
}

// Attr matches when any attribute of type T is stored at this exact range,
// returning the first such value. Use ValuesAt directly when more than one
// competing value needs inspecting.
func Attr[T any]() Pattern[T] {
	return Pattern[T]{
		Width: 1,
		Match: func(_ token.Line, store *attrstore.Store, rng token.Range) (T, bool) {
			typed := attrstore.For[T](store)
			values := typed.ValuesAt(rng)
			var zero T
			if len(values) == 0 {
				return zero, false
			}
			return values[0], true
		},
	}
}

// Pair2 holds the payloads from a two-pattern All or Seq combination.
type Pair2[A, B any] struct {
	A A
	B B
}

// All2 matches when both p1 and p2 match the exact same range.
func All2[A, B any](p1 Pattern[A], p2 Pattern[B]) Pattern[Pair2[A, B]] {
	return Pattern[Pair2[A, B]]{
		Width: 1,
		Match: func(line token.Line, store *attrstore.Store, rng token.Range) (Pair2[A, B], bool) {
			a, ok := p1.Match(line, store, rng)
			if !ok {
				return Pair2[A, B]{}, false
			}
			b, ok := p2.Match(line, store, rng)
			if !ok {
				return Pair2[A, B]{}, false
			}
			return Pair2[A, B]{A: a, B: b}, true
		},
	}
}

// Seq2 matches p1 at rng.Start then p2 at the next consecutive range,
// producing both payloads. Width is the sum of the two sub-widths.
func Seq2[A, B any](p1 Pattern[A], p2 Pattern[B]) Pattern[Pair2[A, B]] {
	w1, w2 := maxInt(p1.Width, 1), maxInt(p2.Width, 1)
	return Pattern[Pair2[A, B]]{
		Width: w1 + w2,
		Match: func(line token.Line, store *attrstore.Store, rng token.Range) (Pair2[A, B], bool) {
			r1 := token.Range{Start: rng.Start, End: rng.Start + w1 - 1}
			r2 := token.Range{Start: r1.End + 1, End: r1.End + w2}
			if !line.InBounds(r1) || !line.InBounds(r2) {
				return Pair2[A, B]{}, false
			}
			a, ok := p1.Match(line, store, r1)
			if !ok {
				return Pair2[A, B]{}, false
			}
			b, ok := p2.Match(line, store, r2)
			if !ok {
				return Pair2[A, B]{}, false
			}
			return Pair2[A, B]{A: a, B: b}, true
		},
	}
}

// Not inverts a unit pattern: matches whenever p does not, discarding p's
// payload.
func Not[T any](p Pattern[T]) Pattern[struct{}] {
	return Pattern[struct{}]{
		Width: p.Width,
		Match: func(line token.Line, store *attrstore.Store, rng token.Range) (struct{}, bool) {
			_, ok := p.Match(line, store, rng)
			return struct{}{}, !ok
		},
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
