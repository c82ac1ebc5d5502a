// Package termref implements G3: term references, matching later
// occurrences of a previously defined term's surface text.
package termref

import (
	"reflect"
	"strings"

	"github.com/phosphorco/legalnlp/internal/legal/definedterm"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// TermReference is the attribute G3 emits: a later mention of a term
// defined elsewhere in the document.
type TermReference struct {
	Name string // the defined term's canonical name
}

// Confidence table per spec.md §4.G3.
const (
	ConfidenceExactCaseUpper   = 0.90
	ConfidenceExactCaseLower   = 0.70
	ConfidenceFoldedCaseUpper  = 0.85
	ConfidenceFoldedCaseLower  = 0.65
	ArticleBonus               = 0.05
)

// Resolver is the G3 term-reference resolver.
type Resolver struct{}

func (Resolver) Name() string { return "term-reference" }
func (Resolver) Reads() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[definedterm.DefinedTerm]]()}
}
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[TermReference]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	line := sel.Line
	defined := attrstore.For[scored.Scored[definedterm.DefinedTerm]](sel.Store)
	out := attrstore.For[scored.Scored[TermReference]](sel.Store)

	definedRanges := defined.Ranges()
	covered := make([]token.Range, 0, len(definedRanges))
	byFirstWord := make(map[string][]string) // lower-cased first word -> candidate full names
	for _, rng := range definedRanges {
		covered = append(covered, rng)
		for _, val := range defined.ValuesAt(rng) {
			words := strings.Fields(val.Value.Name)
			if len(words) == 0 {
				continue
			}
			first := strings.ToLower(words[0])
			byFirstWord[first] = append(byFirstWord[first], val.Value.Name)
		}
	}
	if len(byFirstWord) == 0 {
		return nil
	}

	consumed := make(map[int]bool)

	for i := 0; i < line.Len(); i++ {
		tok := line.Token(i)
		if tok.Class != token.ClassWord || consumed[i] {
			continue
		}
		if withinAny(covered, i) {
			continue
		}
		candidates := byFirstWord[strings.ToLower(tok.Text)]
		if len(candidates) == 0 {
			continue
		}
		best, endIdx, ok := longestExtension(line, i, candidates)
		if !ok {
			continue
		}
		exactCase := surfaceMatchesCase(line, i, endIdx, best)
		initialUpper := isUpperInitial(tok.Text)
		conf := confidenceFor(exactCase, initialUpper)
		if j := prevNonWhitespaceIdx(line, i); j >= 0 {
			prevText := strings.ToLower(line.Token(j).Text)
			if prevText == "the" || prevText == "this" || prevText == "such" {
				conf += ArticleBonus
				if conf > 1.0 {
					conf = 1.0
				}
			}
		}
		rng := token.Range{Start: i, End: endIdx}
		out.Insert(rng, scored.RuleBased(TermReference{Name: best}, conf, "term-reference"), nil)
		for k := i; k <= endIdx; k++ {
			consumed[k] = true
		}
		i = endIdx
	}
	return nil
}

func withinAny(ranges []token.Range, idx int) bool {
	for _, r := range ranges {
		if idx >= r.Start && idx <= r.End {
			return true
		}
	}
	return false
}

// longestExtension tries to extend a match starting at startIdx across
// candidates (multi-word defined-term names sharing this first word),
// preferring the longest successful extension.
func longestExtension(line token.Line, startIdx int, candidates []string) (string, int, bool) {
	bestName := ""
	bestEnd := -1
	bestWordCount := 0
	for _, name := range candidates {
		words := strings.Fields(name)
		end, ok := matchWords(line, startIdx, words)
		if !ok {
			continue
		}
		if len(words) > bestWordCount {
			bestWordCount = len(words)
			bestEnd = end
			bestName = name
		}
	}
	if bestEnd < 0 {
		return "", 0, false
	}
	return bestName, bestEnd, true
}

func matchWords(line token.Line, startIdx int, words []string) (int, bool) {
	idx := startIdx
	for wi, w := range words {
		if idx >= line.Len() || line.Token(idx).Class != token.ClassWord {
			return 0, false
		}
		if !strings.EqualFold(line.Token(idx).Text, w) {
			return 0, false
		}
		if wi == len(words)-1 {
			return idx, true
		}
		next := nextNonWhitespaceIdx(line, idx)
		if next < 0 {
			return 0, false
		}
		idx = next
	}
	return 0, false
}

func surfaceMatchesCase(line token.Line, start, end int, name string) bool {
	words := strings.Fields(name)
	idx := start
	for _, w := range words {
		if line.Token(idx).Text != w {
			return false
		}
		idx = nextNonWhitespaceIdx(line, idx)
	}
	return true
}

func isUpperInitial(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return r >= 'A' && r <= 'Z'
}

func confidenceFor(exactCase, initialUpper bool) float64 {
	switch {
	case exactCase && initialUpper:
		return ConfidenceExactCaseUpper
	case exactCase && !initialUpper:
		return ConfidenceExactCaseLower
	case !exactCase && initialUpper:
		return ConfidenceFoldedCaseUpper
	default:
		return ConfidenceFoldedCaseLower
	}
}

func prevNonWhitespaceIdx(line token.Line, from int) int {
	for i := from - 1; i >= 0; i-- {
		if line.Token(i).Class != token.ClassWhitespace {
			return i
		}
	}
	return -1
}

func nextNonWhitespaceIdx(line token.Line, from int) int {
	for i := from + 1; i < line.Len(); i++ {
		if line.Token(i).Class != token.ClassWhitespace {
			return i
		}
	}
	return -1
}
