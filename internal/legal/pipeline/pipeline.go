// Package pipeline owns the fixed resolver orderings spec.md calls presets:
// structure-only, fast, and standard. Reordering a preset is a breaking
// change, so the orderings live here rather than with any one resolver.
package pipeline

import (
	"fmt"

	"github.com/phosphorco/legalnlp/internal/legal/accountability"
	"github.com/phosphorco/legalnlp/internal/legal/aggregate"
	"github.com/phosphorco/legalnlp/internal/legal/chain"
	"github.com/phosphorco/legalnlp/internal/legal/clause"
	"github.com/phosphorco/legalnlp/internal/legal/definedterm"
	"github.com/phosphorco/legalnlp/internal/legal/keyword"
	"github.com/phosphorco/legalnlp/internal/legal/obligation"
	"github.com/phosphorco/legalnlp/internal/legal/pronoun"
	"github.com/phosphorco/legalnlp/internal/legal/structure"
	"github.com/phosphorco/legalnlp/internal/legal/temporal"
	"github.com/phosphorco/legalnlp/internal/legal/termref"
	"github.com/phosphorco/legalnlp/internal/legal/termsofart"
	"github.com/phosphorco/legalnlp/internal/lnlp/resolver"
)

// Preset names, accepted by Build.
const (
	StructureOnly = "structure-only"
	Fast          = "fast"
	Standard      = "standard"
)

// NewStructureOnly builds the structure-only preset: section headers and
// section references only.
func NewStructureOnly() (*resolver.Pipeline, error) {
	return resolver.Build(StructureOnly,
		structure.Resolver{},
	)
}

// NewFast builds the fast preset: structure plus contract keywords, for
// callers that only need modal-keyword locations.
func NewFast() (*resolver.Pipeline, error) {
	return resolver.Build(Fast,
		structure.Resolver{},
		keyword.Resolver{},
		keyword.ProhibitionResolver{},
	)
}

// NewStandard builds the full standard preset: every resolver layer through
// the accountability graph, in spec.md §4.F's fixed order.
func NewStandard() (*resolver.Pipeline, error) {
	return resolver.Build(Standard,
		structure.Resolver{},
		keyword.Resolver{},
		keyword.ProhibitionResolver{},
		termsofart.Resolver{},
		definedterm.Resolver{},
		termref.Resolver{},
		temporal.Resolver{},
		pronoun.NewResolver(pronoun.DefaultConfig()),
		chain.NewResolver(chain.MinAttachmentConfidence),
		obligation.Resolver{},
		clause.Resolver{},
		aggregate.NewResolver(aggregate.MaxGapTokens),
		accountability.Resolver{},
	)
}

// Build constructs the named preset pipeline.
func Build(name string) (*resolver.Pipeline, error) {
	switch name {
	case StructureOnly:
		return NewStructureOnly()
	case Fast:
		return NewFast()
	case Standard:
		return NewStandard()
	default:
		return nil, fmt.Errorf("pipeline: unknown preset %q", name)
	}
}
