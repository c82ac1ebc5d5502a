// Package snapshot implements Component H: the canonical, serializable
// projection of a finished Document used as the engine's regression oracle
// and interchange format.
package snapshot

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// schemaVersion is the Snapshot.Version every Build call stamps. Bump this,
// not the struct tags, when the schema itself changes shape.
const schemaVersion = 1

// Redacted is the sentinel substituted for any source description removed
// by Redact.
const Redacted = "[redacted]"

// TypeInfo names one registered attribute type for snapshot purposes: the
// stable display name used as its key in Snapshot.Spans, the ID prefix
// assigned to its spans, and the semantic category its spans group under
// in the semantic and graph render views.
type TypeInfo struct {
	Name     string
	Prefix   string
	Category string
}

// Registry maps a runtime attribute type to its TypeInfo. Built once by the
// caller (see pipeline.SnapshotRegistry) from every attribute type the
// standard preset's resolvers may produce; Build only ever sees types it
// names here; anything else in the store is silently ignored, matching
// spec.md's "enumerate registered attribute types."
type Registry map[reflect.Type]TypeInfo

// Input is the Snapshot's input projection: either the tokenized lines
// inlined verbatim, or a reference to an external file they came from.
type Input struct {
	Inline    []string `json:"Inline,omitempty"`
	FileRef   string   `json:"FileRef,omitempty"`
	IsFileRef bool     `json:"-"`
}

// MarshalJSON renders Input as the tagged-union shape spec.md's schema
// names: {Inline: [...]} or {FileRef: path}, never both.
func (in Input) MarshalJSON() ([]byte, error) {
	if in.IsFileRef {
		return json.Marshal(struct {
			FileRef string `json:"FileRef"`
		}{in.FileRef})
	}
	return json.Marshal(struct {
		Inline []string `json:"Inline"`
	}{in.Inline})
}

func (in *Input) UnmarshalJSON(data []byte) error {
	var probe struct {
		Inline  []string `json:"Inline"`
		FileRef *string  `json:"FileRef"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.FileRef != nil {
		in.IsFileRef = true
		in.FileRef = *probe.FileRef
		return nil
	}
	in.Inline = probe.Inline
	return nil
}

// InlineInput builds an Input that carries the document's lines verbatim.
func InlineInput(lines []string) Input {
	return Input{Inline: lines}
}

// FileRefInput builds an Input that references an external file.
func FileRefInput(path string) Input {
	return Input{FileRef: path, IsFileRef: true}
}

// Position identifies one token within a document: its line index and its
// token index within that line.
type Position struct {
	Line  int `json:"line"`
	Token int `json:"token"`
}

// SpanPosition is the closed [Start, End] token range a span covers.
type SpanPosition struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// AssociationRef is one outgoing association, translated from a token-range
// target into the target span's assigned ID.
type AssociationRef struct {
	Label  string `json:"label"`
	Target string `json:"target"`
	Glyph  string `json:"glyph,omitempty"`
}

// SpanData is one attribute instance rendered into the canonical format.
type SpanData struct {
	ID           string           `json:"id"`
	Position     SpanPosition     `json:"position"`
	TypeName     string           `json:"type_name"`
	Value        any              `json:"value"`
	Confidence   *float64         `json:"confidence,omitempty"`
	Source       *string          `json:"source,omitempty"`
	Associations []AssociationRef `json:"associations"`
}

// Snapshot is the schema spec.md §6 names: a version, the input projection,
// spans grouped by type name, and an extensible auxiliary map.
type Snapshot struct {
	Version   int                   `json:"version"`
	Input     Input                 `json:"input"`
	Spans     map[string][]SpanData `json:"spans"`
	Auxiliary map[string]any        `json:"auxiliary,omitempty"`
}

// spanKey identifies one (type, line, range, value-index) instance during
// construction, before IDs are assigned.
type spanKey struct {
	typ        reflect.Type
	lineIndex  int
	rng        token.Range
	valueIndex int
}

// Build enumerates every type named in reg across every line of doc,
// gathers their spans, sorts each type's spans by position (line, then
// start-token, then end-token, then insertion order as a final tie-break
// for spans sharing a range), assigns sequential "{prefix}-{n}" IDs, and
// renders each value through the minimal structured format. Associations
// are resolved to target span IDs only when the target itself is a
// registered, gathered span on the same line; an association pointing at
// an ungathered range is dropped rather than left dangling.
func Build(doc *document.Document, reg Registry, input Input) (*Snapshot, error) {
	// First pass: collect every instance per type, and remember where to
	// find each one's associations.
	type instance struct {
		key    spanKey
		value  any
		assocs []attrstore.Assoc
	}
	byType := make(map[reflect.Type][]instance)

	for lineIdx, dl := range doc.Lines {
		for typ := range reg {
			for _, rng := range dl.Store.RangesOf(typ) {
				values := dl.Store.ValuesAt(typ, rng)
				for vi, v := range values {
					byType[typ] = append(byType[typ], instance{
						key:    spanKey{typ: typ, lineIndex: lineIdx, rng: rng, valueIndex: vi},
						value:  v,
						assocs: dl.Store.AssociationsAt(typ, rng, vi),
					})
				}
			}
		}
	}

	// Assign IDs in type-name order, so that rebuilding from identical
	// input always produces identical IDs regardless of map iteration order
	// above.
	ids := make(map[spanKey]string)
	var typeNames []string
	nameToType := make(map[string]reflect.Type)
	for typ, info := range reg {
		typeNames = append(typeNames, info.Name)
		nameToType[info.Name] = typ
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		typ := nameToType[name]
		instances := byType[typ]
		sort.SliceStable(instances, func(i, j int) bool {
			a, b := instances[i].key, instances[j].key
			if a.lineIndex != b.lineIndex {
				return a.lineIndex < b.lineIndex
			}
			if c := a.rng.Compare(b.rng); c != 0 {
				return c < 0
			}
			return a.valueIndex < b.valueIndex
		})
		prefix := reg[typ].Prefix
		for n, inst := range instances {
			ids[inst.key] = fmt.Sprintf("%s-%d", prefix, n)
		}
		byType[typ] = instances
	}

	spans := make(map[string][]SpanData, len(typeNames))
	for _, name := range typeNames {
		typ := nameToType[name]
		var out []SpanData
		for _, inst := range byType[typ] {
			sd, err := buildSpanData(inst.key, ids[inst.key], name, inst.value, inst.assocs, ids)
			if err != nil {
				return nil, fmt.Errorf("snapshot: building span for %s: %w", name, err)
			}
			out = append(out, sd)
		}
		spans[name] = out
	}

	return &Snapshot{
		Version: schemaVersion,
		Input:   input,
		Spans:   spans,
	}, nil
}

func buildSpanData(key spanKey, id, typeName string, value any, assocs []attrstore.Assoc, ids map[spanKey]string) (SpanData, error) {
	pos := SpanPosition{
		Start: Position{Line: key.lineIndex, Token: key.rng.Start},
		End:   Position{Line: key.lineIndex, Token: key.rng.End},
	}

	payload := value
	var confidence *float64
	var source *string
	if sv, ok := value.(scored.Any); ok {
		payload = sv.AnyValue()
		c := sv.AnyConfidence()
		confidence = &c
		s := sv.AnySource().String()
		source = &s
	}

	structured, err := toStructuredValue(payload)
	if err != nil {
		return SpanData{}, err
	}

	assocRefs := make([]AssociationRef, 0, len(assocs))
	for _, a := range assocs {
		targetKey := spanKey{typ: key.typ, lineIndex: key.lineIndex, rng: a.Target}
		target, ok := findTargetID(ids, targetKey)
		if !ok {
			continue
		}
		assocRefs = append(assocRefs, AssociationRef{Label: a.Label, Target: target, Glyph: a.Glyph})
	}

	return SpanData{
		ID:           id,
		Position:     pos,
		TypeName:     typeName,
		Value:        structured,
		Confidence:   confidence,
		Source:       source,
		Associations: assocRefs,
	}, nil
}

// findTargetID looks up an association target's span ID. Associations
// record only a target range, not the target's type, so this scans every
// assigned ID sharing that line and range across all types — association
// targets are rare enough per document that this linear scan is simpler
// than threading type identity through every association call site. When
// spans of several types share the range, the lexicographically smallest ID
// is returned, so the result does not depend on map iteration order.
func findTargetID(ids map[spanKey]string, partial spanKey) (string, bool) {
	best, found := "", false
	for k, id := range ids {
		if k.lineIndex == partial.lineIndex && k.rng == partial.rng {
			if !found || id < best {
				best, found = id, true
			}
		}
	}
	return best, found
}

// toStructuredValue converts an arbitrary attribute payload into the
// minimal structured format spec.md §6 names: strings, numbers, booleans,
// lists, and maps, with map keys in struct field-declaration order —
// encoding/json already preserves Go struct field order on Marshal (only
// map[string]T keys are alphabetized), which is what makes this
// byte-stable without any bespoke ordered-map type.
func toStructuredValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Redact returns a copy of s with every span's source description replaced
// by the sentinel and removed from any field that would otherwise leak a
// verifier or model-pass identity. It is pure: s itself is untouched.
func Redact(s *Snapshot) *Snapshot {
	out := &Snapshot{
		Version:   s.Version,
		Input:     s.Input,
		Spans:     make(map[string][]SpanData, len(s.Spans)),
		Auxiliary: s.Auxiliary,
	}
	for typeName, list := range s.Spans {
		redacted := make([]SpanData, len(list))
		for i, sd := range list {
			redacted[i] = sd
			if sd.Source != nil {
				sentinel := Redacted
				redacted[i].Source = &sentinel
			}
		}
		out.Spans[typeName] = redacted
	}
	return out
}

// Serialize renders s into its canonical byte form. Map keys (Spans,
// Auxiliary) come out alphabetically sorted because encoding/json sorts
// map[string]T keys on Marshal; combined with Build's deterministic ID
// assignment, two Build calls over identical input always Serialize to
// identical bytes.
func Serialize(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Parse is Serialize's inverse.
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
