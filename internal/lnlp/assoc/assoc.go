// Package assoc implements Component E: the typed association-edge model
// and its lazily-built, document-level reverse index.
//
// An Association is a directed edge from a source span to a target span,
// carried as part of the source span's attribute record in attrstore.Store
// (see Assoc there). This package adds the document-level index on top:
// given every span's outgoing edges, it builds outgoing/incoming lookup
// tables keyed by span ID rather than by token range, following the
// teacher's Graph type in services/trace/graph (forward edge list plus
// nodesByName-style secondary indexes, built once and queried many times).
package assoc

import "sort"

// SpanID identifies a span at the document level, stable across lines and
// independent of token range — the key the reverse index is built on.
type SpanID string

// Edge is one typed directed association between two document-level spans.
type Edge struct {
	Source SpanID
	Target SpanID
	Label  string
	Glyph  string
}

// Source describes one span's outgoing edges, as gathered from the
// attrstore.Assoc records attached to that span's attributes.
type Source struct {
	ID       SpanID
	Outgoing []Edge
}

// Index is the lazily-built reverse index: outgoing[id] and incoming[id]
// both resolve in O(1) after Build. It is a read-only snapshot; rebuild it
// after any pipeline step that adds spans.
type Index struct {
	outgoing map[SpanID][]Edge
	incoming map[SpanID][]Edge
}

// Build walks every source's outgoing edges once, producing both the
// outgoing and incoming maps in a single pass. Edges within each bucket are
// sorted by (Target, Label, Source) — or (Source, Label, Target) for
// incoming — so repeated Build calls over the same data always yield the
// same iteration order, matching the snapshot layer's determinism
// requirement.
func Build(sources []Source) *Index {
	idx := &Index{
		outgoing: make(map[SpanID][]Edge),
		incoming: make(map[SpanID][]Edge),
	}
	for _, src := range sources {
		for _, e := range src.Outgoing {
			idx.outgoing[src.ID] = append(idx.outgoing[src.ID], e)
			idx.incoming[e.Target] = append(idx.incoming[e.Target], e)
		}
	}
	for id := range idx.outgoing {
		edges := idx.outgoing[id]
		sort.Slice(edges, func(i, j int) bool { return edgeLess(edges[i], edges[j], true) })
	}
	for id := range idx.incoming {
		edges := idx.incoming[id]
		sort.Slice(edges, func(i, j int) bool { return edgeLess(edges[i], edges[j], false) })
	}
	return idx
}

// edgeLess orders edges deterministically. byTarget=true orders an
// outgoing bucket by (Target, Label, Source); false orders an incoming
// bucket by (Source, Label, Target).
func edgeLess(a, b Edge, byTarget bool) bool {
	if byTarget {
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Source < b.Source
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.Target < b.Target
}

// Outgoing returns id's outgoing edges in O(1), or nil if id has none.
func (idx *Index) Outgoing(id SpanID) []Edge {
	return idx.outgoing[id]
}

// Incoming returns id's incoming edges in O(1), or nil if id has none.
func (idx *Index) Incoming(id SpanID) []Edge {
	return idx.incoming[id]
}

// OutgoingByLabel filters Outgoing(id) to edges with the given label.
func (idx *Index) OutgoingByLabel(id SpanID, label string) []Edge {
	return filterLabel(idx.outgoing[id], label)
}

// IncomingByLabel filters Incoming(id) to edges with the given label.
func (idx *Index) IncomingByLabel(id SpanID, label string) []Edge {
	return filterLabel(idx.incoming[id], label)
}

func filterLabel(edges []Edge, label string) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}
