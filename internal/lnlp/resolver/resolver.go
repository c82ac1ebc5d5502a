// Package resolver implements Component F: the resolver interface and the
// dependency-ordered pipeline that runs a fixed sequence of resolvers over a
// document's lines.
//
// Resolvers are pure, single-method values — closer to the teacher's
// Graph-building passes in services/trace/graph/builder.go (sequential,
// single-writer, phase-reported) than to any generic visitor framework.
// Dependency violations are caught once, at Build construction, the same
// place the teacher validates graph invariants in Graph.validateIndexes
// rather than at every call site.
package resolver

import (
	"fmt"
	"reflect"

	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
)

// Resolver is the single extension point every layer of the engine is built
// from. A Resolver reads the attribute types named by Reads (all produced
// by earlier layers) and, given a selection covering a full line, inserts
// whatever attributes of the types named by Produces it can extract —
// directly into sel.Store, via that resolver's own attrstore.Typed[T]
// wrappers.
//
// Idempotence & purity: running the same Resolver twice against the same
// inputs must insert the same attributes. A Resolver must not read
// attribute types it itself produces; it may only read earlier layers'
// output, never its own on the same line.
type Resolver interface {
	// Name identifies the resolver in pipeline-construction errors and
	// progress reporting.
	Name() string
	// Reads lists the attribute types this resolver consumes.
	Reads() []reflect.Type
	// Produces lists the attribute types this resolver may insert.
	Produces() []reflect.Type
	// Run executes the resolver against sel.
	Run(sel cursor.Selection) error
}

// DependencyError reports that a resolver was added to a Pipeline before
// any resolver producing one of its declared Reads types.
type DependencyError struct {
	Resolver string
	Missing  reflect.Type
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("resolver %q depends on attribute type %s, which no earlier resolver in the pipeline produces", e.Resolver, e.Missing)
}

// Pipeline is a fixed, topologically-ordered sequence of resolvers. The
// order is validated once at construction; nothing about it changes at run
// time, matching spec.md §4.F's "reordering is a breaking change, owned by
// the pipeline."
type Pipeline struct {
	name      string
	resolvers []Resolver
}

// Build validates that every resolver's declared Reads types are satisfied
// by an earlier resolver's Produces types, then returns the Pipeline in the
// given order. name is a human-readable preset identifier (e.g.
// "structure-only", "standard") used in logging and error messages.
func Build(name string, resolvers ...Resolver) (*Pipeline, error) {
	produced := make(map[reflect.Type]bool)
	for _, r := range resolvers {
		for _, need := range r.Reads() {
			if !produced[need] {
				return nil, &DependencyError{Resolver: r.Name(), Missing: need}
			}
		}
		for _, out := range r.Produces() {
			produced[out] = true
		}
	}
	return &Pipeline{name: name, resolvers: resolvers}, nil
}

// Name returns the pipeline's preset identifier.
func (p *Pipeline) Name() string {
	return p.name
}

// Resolvers returns the pipeline's resolvers in run order. Callers must not
// mutate the returned slice.
func (p *Pipeline) Resolvers() []Resolver {
	return p.resolvers
}

// Run executes every resolver in order against sel, stopping at the first
// error. Per spec.md §7, a resolver that cannot extract structure is
// expected to emit nothing and return a nil error rather than propagate a
// malformed-input condition; a non-nil error here signals a programmer-level
// failure (e.g. an out-of-bounds store insertion), not ordinary ambiguity.
func (p *Pipeline) Run(sel cursor.Selection) error {
	for _, r := range p.resolvers {
		if err := r.Run(sel); err != nil {
			return fmt.Errorf("resolver %q: %w", r.Name(), err)
		}
	}
	return nil
}
