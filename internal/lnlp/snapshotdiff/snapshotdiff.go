// Package snapshotdiff computes and renders differences between two
// Component H snapshots, used to review how a document's extracted
// attributes changed across resolver or input revisions.
package snapshotdiff

import (
	"fmt"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

// SpanDiff summarizes how one attribute type's spans changed between two
// snapshots, by span ID.
type SpanDiff struct {
	TypeName string
	Added    []string
	Removed  []string
	Changed  []string
}

// Result is a full snapshot comparison: the structured per-type span diff
// plus a human-readable unified diff of the two snapshots' canonical JSON.
type Result struct {
	Spans        []SpanDiff
	UnifiedFor   string // rendered unified diff text
	HunkCount    int
	LinesAdded   int
	LinesRemoved int
}

// Compare builds a Result from two snapshots. oldLabel/newLabel name the two
// sides in the unified diff header (e.g. "before.snapshot.json").
func Compare(oldSnap, newSnap *snapshot.Snapshot, oldLabel, newLabel string) (*Result, error) {
	spanDiffs := diffSpans(oldSnap, newSnap)

	oldBytes, err := snapshot.Serialize(oldSnap)
	if err != nil {
		return nil, fmt.Errorf("snapshotdiff: serializing old snapshot: %w", err)
	}
	newBytes, err := snapshot.Serialize(newSnap)
	if err != nil {
		return nil, fmt.Errorf("snapshotdiff: serializing new snapshot: %w", err)
	}

	unified := unifiedDiff(oldLabel, newLabel, string(oldBytes), string(newBytes))

	result := &Result{Spans: spanDiffs, UnifiedFor: unified}
	if unified != "" {
		fileDiffs, err := godiff.ParseMultiFileDiff([]byte(unified))
		if err != nil {
			return nil, fmt.Errorf("snapshotdiff: parsing generated unified diff: %w", err)
		}
		for _, fd := range fileDiffs {
			result.HunkCount += len(fd.Hunks)
			for _, h := range fd.Hunks {
				for _, line := range strings.Split(string(h.Body), "\n") {
					switch {
					case strings.HasPrefix(line, "+"):
						result.LinesAdded++
					case strings.HasPrefix(line, "-"):
						result.LinesRemoved++
					}
				}
			}
		}
	}
	return result, nil
}

// diffSpans compares span ID sets per type name. A span ID present in both
// snapshots but whose rendered value differs is reported as Changed rather
// than Added+Removed.
func diffSpans(oldSnap, newSnap *snapshot.Snapshot) []SpanDiff {
	typeNames := make(map[string]bool)
	for t := range oldSnap.Spans {
		typeNames[t] = true
	}
	for t := range newSnap.Spans {
		typeNames[t] = true
	}

	var names []string
	for t := range typeNames {
		names = append(names, t)
	}
	sort.Strings(names)

	var out []SpanDiff
	for _, name := range names {
		oldByID := indexByID(oldSnap.Spans[name])
		newByID := indexByID(newSnap.Spans[name])

		var sd SpanDiff
		sd.TypeName = name
		for id, oldSpan := range oldByID {
			newSpan, ok := newByID[id]
			if !ok {
				sd.Removed = append(sd.Removed, id)
				continue
			}
			if fmt.Sprint(oldSpan.Value) != fmt.Sprint(newSpan.Value) {
				sd.Changed = append(sd.Changed, id)
			}
		}
		for id := range newByID {
			if _, ok := oldByID[id]; !ok {
				sd.Added = append(sd.Added, id)
			}
		}
		if len(sd.Added) == 0 && len(sd.Removed) == 0 && len(sd.Changed) == 0 {
			continue
		}
		sort.Strings(sd.Added)
		sort.Strings(sd.Removed)
		sort.Strings(sd.Changed)
		out = append(out, sd)
	}
	return out
}

func indexByID(spans []snapshot.SpanData) map[string]snapshot.SpanData {
	m := make(map[string]snapshot.SpanData, len(spans))
	for _, sd := range spans {
		m[sd.ID] = sd
	}
	return m
}

// editKind is one line's fate in the old/new alignment.
type editKind int

const (
	editEqual editKind = iota
	editInsert
	editDelete
)

type editOp struct {
	kind            editKind
	oldLine, newLine int
	text            string
}

// unifiedDiff renders a full-context unified diff of oldText vs newText
// using an LCS-based line alignment, in the same shape the stdlib "diff"
// command produces and godiff.ParseMultiFileDiff consumes.
func unifiedDiff(oldLabel, newLabel, oldText, newText string) string {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)
	edits := computeEdits(oldLines, newLines)
	if len(edits) == 0 {
		return ""
	}

	oldCount, newCount := 0, 0
	changed := false
	for _, e := range edits {
		switch e.kind {
		case editEqual:
			oldCount++
			newCount++
		case editDelete:
			oldCount++
			changed = true
		case editInsert:
			newCount++
			changed = true
		}
	}
	if !changed {
		return ""
	}

	var body strings.Builder
	for _, e := range edits {
		switch e.kind {
		case editEqual:
			body.WriteString(" " + e.text + "\n")
		case editDelete:
			body.WriteString("-" + e.text + "\n")
		case editInsert:
			body.WriteString("+" + e.text + "\n")
		}
	}

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n", oldLabel)
	fmt.Fprintf(&out, "+++ %s\n", newLabel)
	fmt.Fprintf(&out, "@@ -1,%d +1,%d @@\n", oldCount, newCount)
	out.WriteString(body.String())
	return out.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// computeEdits aligns oldLines and newLines with a longest-common-subsequence
// line diff. Snapshots are bounded in size (one document's attribute
// spans), so the O(len(old)*len(new)) matrix is acceptable here.
func computeEdits(oldLines, newLines []string) []editOp {
	m, n := len(oldLines), len(newLines)
	if m == 0 && n == 0 {
		return nil
	}

	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var edits []editOp
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case oldLines[i] == newLines[j]:
			edits = append(edits, editOp{kind: editEqual, oldLine: i + 1, newLine: j + 1, text: oldLines[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			edits = append(edits, editOp{kind: editDelete, oldLine: i + 1, text: oldLines[i]})
			i++
		default:
			edits = append(edits, editOp{kind: editInsert, newLine: j + 1, text: newLines[j]})
			j++
		}
	}
	for ; i < m; i++ {
		edits = append(edits, editOp{kind: editDelete, oldLine: i + 1, text: oldLines[i]})
	}
	for ; j < n; j++ {
		edits = append(edits, editOp{kind: editInsert, newLine: j + 1, text: newLines[j]})
	}
	return edits
}
