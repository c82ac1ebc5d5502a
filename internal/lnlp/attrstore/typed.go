package attrstore

import (
	"reflect"

	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// TypeOf returns the reflect.Type key a Typed[T] wrapper would use for T.
// Exposed so packages that need to look up a type id without constructing
// a Typed value (e.g. the snapshot constructor enumerating registered
// types) can share the exact same key.
func TypeOf[T any]() reflect.Type {
	var zero T
	return reflect.TypeOf(zero)
}

// Typed is a thin generic wrapper that hides the reflect.Type key from
// resolver authors. Resolvers should construct one per attribute type they
// produce or consume rather than calling the untyped Store methods
// directly.
type Typed[T any] struct {
	store *Store
}

// For returns a Typed[T] view over store.
func For[T any](store *Store) Typed[T] {
	return Typed[T]{store: store}
}

// Insert stores value of type T at rng with the given associations.
func (t Typed[T]) Insert(rng token.Range, value T, assocs []Assoc) {
	t.store.Insert(TypeOf[T](), rng, value, assocs)
}

// ValuesAt returns every T stored at exactly rng, in insertion order.
func (t Typed[T]) ValuesAt(rng token.Range) []T {
	raw := t.store.ValuesAt(TypeOf[T](), rng)
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(T))
	}
	return out
}

// AssociationsAt returns the associations attached to the index-th T stored
// at rng.
func (t Typed[T]) AssociationsAt(rng token.Range, index int) []Assoc {
	return t.store.AssociationsAt(TypeOf[T](), rng, index)
}

// Ranges returns every range holding at least one T, in deterministic
// order.
func (t Typed[T]) Ranges() []token.Range {
	return t.store.RangesOf(TypeOf[T]())
}

// All returns every stored T across all ranges, paired with its range, in
// deterministic range order then insertion order.
func (t Typed[T]) All() []struct {
	Range token.Range
	Value T
} {
	var out []struct {
		Range token.Range
		Value T
	}
	for _, rng := range t.Ranges() {
		for _, v := range t.ValuesAt(rng) {
			out = append(out, struct {
				Range token.Range
				Value T
			}{Range: rng, Value: v})
		}
	}
	return out
}
