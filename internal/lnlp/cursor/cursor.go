// Package cursor implements Component B: the cursor/selection algebra.
//
// A Selection is a cheap value type — a token.Range plus a reference to the
// token.Line and attrstore.Store it was taken from. Resolvers build
// straight-line match/scan code against Selections instead of hand-rolled
// loops over token indices, matching spec.md §9's "no generators,
// callbacks, or coroutines" design note.
package cursor

import (
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/matcher"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// Selection is a contiguous token range anchored to one line.
type Selection struct {
	Line  token.Line
	Store *attrstore.Store
	Range token.Range
}

// Whole returns a Selection spanning every token of line.
func Whole(line token.Line, store *attrstore.Store) Selection {
	if line.Len() == 0 {
		return Selection{Line: line, Store: store, Range: token.Range{Start: 0, End: -1}}
	}
	return Selection{Line: line, Store: store, Range: token.Range{Start: 0, End: line.Len() - 1}}
}

// At returns a Selection covering exactly rng on the same line/store as s.
func (s Selection) At(rng token.Range) Selection {
	return Selection{Line: s.Line, Store: s.Store, Range: rng}
}

// Empty reports whether the selection covers zero tokens (End < Start).
func (s Selection) Empty() bool {
	return s.Range.End < s.Range.Start
}

// SameLine reports whether s and other were taken from the same line and
// store, by identity of their attribute store (each line has its own store;
// token.Line values are otherwise comparable only via their token slice).
func (s Selection) SameLine(other Selection) bool {
	return s.Store == other.Store
}

// Equal implements spec.md's "==" operator on selections: equal ranges on
// the same line.
func (s Selection) Equal(other Selection) bool {
	return s.SameLine(other) && s.Range == other.Range
}

// Match is one successful pattern application: the sub-range it matched and
// the pattern's payload.
type Match[T any] struct {
	Range token.Range
	Value T
}

// MatchFirstForwards scans from s.Range.End+1 to the end of the line,
// returning the first range (of pattern-defined width) that satisfies
// pattern, or ok=false if none does. The returned Selection spans only the
// matched tokens.
func MatchFirstForwards[T any](s Selection, pattern matcher.Pattern[T]) (Selection, T, bool) {
	width := pattern.Width
	if width < 1 {
		width = 1
	}
	var zero T
	start := s.Range.End + 1
	for i := start; i+width-1 <= s.Line.Len()-1; i++ {
		rng := token.Range{Start: i, End: i + width - 1}
		if val, ok := pattern.Match(s.Line, s.Store, rng); ok {
			return s.At(rng), val, true
		}
	}
	return Selection{}, zero, false
}

// MatchFirstBackwards is the symmetric counterpart of MatchFirstForwards,
// scanning from s.Range.Start-1 down to the start of the line.
func MatchFirstBackwards[T any](s Selection, pattern matcher.Pattern[T]) (Selection, T, bool) {
	width := pattern.Width
	if width < 1 {
		width = 1
	}
	var zero T
	start := s.Range.Start - 1
	for i := start; i-width+1 >= 0; i-- {
		rng := token.Range{Start: i - width + 1, End: i}
		if val, ok := pattern.Match(s.Line, s.Store, rng); ok {
			return s.At(rng), val, true
		}
	}
	return Selection{}, zero, false
}

// FindBy collects every non-overlapping match of pattern within s, scanning
// left to right. Once a match is consumed, scanning resumes immediately
// after it so matched regions never overlap within a single call.
func FindBy[T any](s Selection, pattern matcher.Pattern[T]) []Match[T] {
	width := pattern.Width
	if width < 1 {
		width = 1
	}
	var out []Match[T]
	i := s.Range.Start
	for i+width-1 <= s.Range.End {
		rng := token.Range{Start: i, End: i + width - 1}
		if val, ok := pattern.Match(s.Line, s.Store, rng); ok {
			out = append(out, Match[T]{Range: rng, Value: val})
			i += width
			continue
		}
		i++
	}
	return out
}

// FindFirstBy returns the first match of pattern within s, or ok=false.
func FindFirstBy[T any](s Selection, pattern matcher.Pattern[T]) (Match[T], bool) {
	matches := FindBy(s, pattern)
	if len(matches) == 0 {
		return Match[T]{}, false
	}
	return matches[0], true
}

// SplitResult holds the two (optional) sub-selections SplitWith produces.
type SplitResult struct {
	Before    Selection
	HasBefore bool
	After     Selection
	HasAfter  bool
}

// SplitWith returns the sub-selections of s strictly before and strictly
// after other's range. other must lie within s (spec.md §9 notes this
// containment check is a best-effort heuristic in the original; here it is
// an explicit precondition the caller is expected to have established, e.g.
// via Range.Contains, addressing the open question directly).
func SplitWith(s Selection, other Selection) SplitResult {
	var result SplitResult
	if other.Range.Start > s.Range.Start {
		result.Before = s.At(token.Range{Start: s.Range.Start, End: other.Range.Start - 1})
		result.HasBefore = true
	}
	if other.Range.End < s.Range.End {
		result.After = s.At(token.Range{Start: other.Range.End + 1, End: s.Range.End})
		result.HasAfter = true
	}
	return result
}

// Contains reports whether s's range fully contains other's range on the
// same line — the explicit containment primitive spec.md's open question
// asks for, in place of a SplitWith-based heuristic.
func (s Selection) Contains(other Selection) bool {
	return s.SameLine(other) && s.Range.Contains(other.Range)
}

// After returns the open-ended selection from immediately after s to the
// end of the line.
func (s Selection) After() Selection {
	if s.Range.End+1 > s.Line.Len()-1 {
		return s.At(token.Range{Start: s.Range.End + 1, End: s.Range.End})
	}
	return s.At(token.Range{Start: s.Range.End + 1, End: s.Line.Len() - 1})
}

// Before returns the open-ended selection from the start of the line up to
// immediately before s.
func (s Selection) Before() Selection {
	if s.Range.Start-1 < 0 {
		return s.At(token.Range{Start: 0, End: -1})
	}
	return s.At(token.Range{Start: 0, End: s.Range.Start - 1})
}
