package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// RenderConfig is the snapshot config spec.md §6 names: which types to
// include, how verbose to be, and how many spans to show per group before
// eliding the rest.
type RenderConfig struct {
	IncludedTypes           []string // empty means every type in the snapshot
	Verbose                 bool
	MaxSpansPerGroup        int
	ShowLineNumbers         bool
	ShowReverseAssociations bool
	// ConfidenceThreshold: spans at or below this confidence print their
	// confidence inline even when Verbose is false. Zero disables this.
	ConfidenceThreshold float64
}

// DefaultRenderConfig matches the defaults used when nothing is configured.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{MaxSpansPerGroup: 20, ConfidenceThreshold: 0.5}
}

func (cfg RenderConfig) included(typeName string) bool {
	if len(cfg.IncludedTypes) == 0 {
		return true
	}
	for _, t := range cfg.IncludedTypes {
		if t == typeName {
			return true
		}
	}
	return false
}

// category buckets a type name into spec.md §4.H's semantic-view groups.
// Types not named in the table fall into "Other" — groups are never empty
// by omission, only by having no spans.
func category(reg Registry, typeName string) string {
	for _, info := range reg {
		if info.Name == typeName {
			if info.Category != "" {
				return info.Category
			}
			break
		}
	}
	return "Other"
}

var categoryOrder = []string{"Definitions", "References", "Obligations", "Structure", "Temporal", "Other"}

// SemanticView groups spans by semantic category, showing up to
// cfg.MaxSpansPerGroup per type with an "N more elided" line, printing
// confidence when it is at or below cfg.ConfidenceThreshold (or always
// when cfg.Verbose), and outgoing associations as "→[target-id]" suffixes.
func SemanticView(s *Snapshot, reg Registry, cfg RenderConfig) string {
	grouped := make(map[string][]string) // category -> type names
	for typeName := range s.Spans {
		if !cfg.included(typeName) {
			continue
		}
		cat := category(reg, typeName)
		grouped[cat] = append(grouped[cat], typeName)
	}
	for cat := range grouped {
		sort.Strings(grouped[cat])
	}

	var b strings.Builder
	for _, cat := range categoryOrder {
		typeNames, ok := grouped[cat]
		if !ok || len(typeNames) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, typeName := range typeNames {
			spans := s.Spans[typeName]
			fmt.Fprintf(&b, "  %s:\n", typeName)
			limit := len(spans)
			if cfg.MaxSpansPerGroup > 0 && limit > cfg.MaxSpansPerGroup {
				limit = cfg.MaxSpansPerGroup
			}
			for _, sd := range spans[:limit] {
				b.WriteString("    " + renderSpanLine(sd, cfg))
			}
			if elided := len(spans) - limit; elided > 0 {
				fmt.Fprintf(&b, "    ... %d more elided\n", elided)
			}
		}
	}
	return b.String()
}

func renderSpanLine(sd SpanData, cfg RenderConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s @ L%d[%d,%d]", sd.ID, sd.Position.Start.Line, sd.Position.Start.Token, sd.Position.End.Token)
	if sd.Confidence != nil && (cfg.Verbose || *sd.Confidence <= cfg.ConfidenceThreshold) {
		fmt.Fprintf(&b, " (confidence %.2f)", *sd.Confidence)
	}
	for _, a := range sd.Associations {
		fmt.Fprintf(&b, " →[%s]", a.Target)
	}
	b.WriteString("\n")
	return b.String()
}

// AnnotatedView prints each input line with ASCII underlines below spans
// that cover it, and association arrows below spans that declare outgoing
// edges. Target spans referenced by an included span receive short labels
// ([A], [B], ...), assigned in sorted target-ID order for determinism.
// Per spec.md's per-line Range invariant (a span never crosses lines),
// only single-line underlines are ever needed here — the multi-line
// bracket glyphs spec.md's rendering section describes do not arise.
func AnnotatedView(s *Snapshot, cfg RenderConfig) string {
	labels := assignLabels(s, cfg)

	lineSpans := make(map[int][]SpanData)
	for typeName, spans := range s.Spans {
		if !cfg.included(typeName) {
			continue
		}
		for _, sd := range spans {
			lineSpans[sd.Position.Start.Line] = append(lineSpans[sd.Position.Start.Line], sd)
		}
	}

	var lineNums []int
	for n := range lineSpans {
		lineNums = append(lineNums, n)
	}
	sort.Ints(lineNums)

	var b strings.Builder
	for _, n := range lineNums {
		spans := lineSpans[n]
		sort.Slice(spans, func(i, j int) bool {
			return spans[i].Position.Start.Token < spans[j].Position.Start.Token
		})
		var lineText string
		if n < len(s.Input.Inline) {
			lineText = s.Input.Inline[n]
		}
		if cfg.ShowLineNumbers {
			fmt.Fprintf(&b, "%d: %s\n", n, lineText)
		} else {
			fmt.Fprintf(&b, "%s\n", lineText)
		}
		tokenized := document.Tokenize(lineText)
		for _, sd := range spans {
			if underline := buildUnderline(tokenized, lineText, sd.Position); underline != "" {
				b.WriteString(underline + "\n")
			}
			marker := fmt.Sprintf("  %s", sd.TypeName)
			if label, ok := labels[sd.ID]; ok {
				marker += " " + label
			}
			fmt.Fprintf(&b, "%s [%d,%d]\n", marker, sd.Position.Start.Token, sd.Position.End.Token)
			for _, a := range sd.Associations {
				fmt.Fprintf(&b, "    -> %s (%s)\n", a.Target, a.Label)
			}
		}
	}
	return b.String()
}

// assignLabels assigns "[A]", "[B]", ... to every span ID that is the
// target of at least one association among the included spans, in sorted
// target-ID order.
func assignLabels(s *Snapshot, cfg RenderConfig) map[string]string {
	targetSet := make(map[string]bool)
	for typeName, spans := range s.Spans {
		if !cfg.included(typeName) {
			continue
		}
		for _, sd := range spans {
			for _, a := range sd.Associations {
				targetSet[a.Target] = true
			}
		}
	}
	var targets []string
	for t := range targetSet {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	labels := make(map[string]string, len(targets))
	for i, t := range targets {
		labels[t] = fmt.Sprintf("[%s]", label(i))
	}
	return labels
}

// buildUnderline renders an ASCII underline aligned to pos's token span
// within lineText, using go-runewidth to convert character offsets to
// terminal columns so the underline lines up even when the line contains
// wide (e.g. CJK) runes. Token offsets are UTF-16 code units (see
// token.Token); this assumes the text is within the Basic Multilingual
// Plane, true for the contract text this engine targets.
func buildUnderline(line token.Line, lineText string, pos SpanPosition) string {
	if !line.InBounds(token.Range{Start: pos.Start.Token, End: pos.End.Token}) {
		return ""
	}
	start := line.Token(pos.Start.Token).Start
	end := line.Token(pos.End.Token).End
	startCol := visualColumn(lineText, start)
	endCol := visualColumn(lineText, end)
	if endCol <= startCol {
		endCol = startCol + 1
	}
	return strings.Repeat(" ", startCol) + strings.Repeat("^", endCol-startCol)
}

// visualColumn converts a UTF-16 code-unit offset into lineText to a
// terminal column count.
func visualColumn(lineText string, utf16Offset int) int {
	runes := []rune(lineText)
	if utf16Offset > len(runes) {
		utf16Offset = len(runes)
	}
	if utf16Offset < 0 {
		utf16Offset = 0
	}
	return runewidth.StringWidth(string(runes[:utf16Offset]))
}

func label(i int) string {
	s := ""
	for {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	return s
}

// GraphView renders a compact directed-edge listing grouped by category,
// with reverse-reference indicators when cfg.ShowReverseAssociations is
// set.
func GraphView(s *Snapshot, reg Registry, cfg RenderConfig) string {
	reverse := make(map[string][]string) // target id -> source ids
	if cfg.ShowReverseAssociations {
		for typeName, spans := range s.Spans {
			if !cfg.included(typeName) {
				continue
			}
			for _, sd := range spans {
				for _, a := range sd.Associations {
					reverse[a.Target] = append(reverse[a.Target], sd.ID)
				}
			}
		}
		for t := range reverse {
			sort.Strings(reverse[t])
		}
	}

	grouped := make(map[string][]string)
	for typeName := range s.Spans {
		if !cfg.included(typeName) {
			continue
		}
		grouped[category(reg, typeName)] = append(grouped[category(reg, typeName)], typeName)
	}
	for cat := range grouped {
		sort.Strings(grouped[cat])
	}

	var b strings.Builder
	for _, cat := range categoryOrder {
		typeNames, ok := grouped[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, typeName := range typeNames {
			for _, sd := range s.Spans[typeName] {
				fmt.Fprintf(&b, "  %s", sd.ID)
				if len(sd.Associations) > 0 {
					var targets []string
					for _, a := range sd.Associations {
						targets = append(targets, a.Target)
					}
					fmt.Fprintf(&b, " -> %s", strings.Join(targets, ", "))
				}
				if cfg.ShowReverseAssociations {
					if incoming := reverse[sd.ID]; len(incoming) > 0 {
						fmt.Fprintf(&b, " <- %s", strings.Join(incoming, ", "))
					}
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
