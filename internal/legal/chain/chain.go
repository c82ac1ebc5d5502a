// Package chain implements G6: pronoun/coreference chains built on top of
// defined terms, term references, and pronoun candidates.
package chain

import (
	"reflect"
	"sort"
	"strings"

	"github.com/phosphorco/legalnlp/internal/legal/definedterm"
	"github.com/phosphorco/legalnlp/internal/legal/pronoun"
	"github.com/phosphorco/legalnlp/internal/legal/termref"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// MinAttachmentConfidence is the default minimum candidate confidence a
// pronoun needs to attach to a chain (spec.md §4.G6, tunable).
const MinAttachmentConfidence = 0.40

// mentionKindDecayThreshold is the confidence below which a mention counts
// toward the chain-confidence decay term.
const mentionKindDecayThreshold = 0.7

const mentionDecayStep = 0.05

// MentionKind tags where a chain mention came from.
type MentionKind int

const (
	MentionDefinedTerm MentionKind = iota
	MentionTermReference
	MentionPronoun
)

// Mention is one occurrence attached to a chain.
type Mention struct {
	Range      token.Range
	Confidence float64
	Kind       MentionKind
}

// PronounChain is the attribute G6 emits.
type PronounChain struct {
	ChainID            int
	CanonicalName       string
	IsDefinedTerm       bool
	Mentions            []Mention // ordered by position
	HasVerifiedMention  bool
}

// Resolver is the G6 pronoun-chain resolver.
type Resolver struct {
	MinAttachmentConfidence float64
}

// NewResolver builds a Resolver using minAttachmentConfidence, or
// MinAttachmentConfidence if minAttachmentConfidence is non-positive.
func NewResolver(minAttachmentConfidence float64) Resolver {
	if minAttachmentConfidence <= 0 {
		minAttachmentConfidence = MinAttachmentConfidence
	}
	return Resolver{MinAttachmentConfidence: minAttachmentConfidence}
}

func (Resolver) Name() string { return "pronoun-chain" }
func (Resolver) Reads() []reflect.Type {
	return []reflect.Type{
		attrstore.TypeOf[scored.Scored[definedterm.DefinedTerm]](),
		attrstore.TypeOf[scored.Scored[termref.TermReference]](),
		attrstore.TypeOf[scored.Scored[pronoun.PronounReference]](),
	}
}
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[PronounChain]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	minConf := r.MinAttachmentConfidence
	if minConf <= 0 {
		minConf = MinAttachmentConfidence
	}

	defined := attrstore.For[scored.Scored[definedterm.DefinedTerm]](sel.Store)
	refs := attrstore.For[scored.Scored[termref.TermReference]](sel.Store)
	prons := attrstore.For[scored.Scored[pronoun.PronounReference]](sel.Store)
	out := attrstore.For[scored.Scored[PronounChain]](sel.Store)

	type building struct {
		chain    PronounChain
		firstRng token.Range
	}

	type definedSpan struct {
		rng token.Range
		val scored.Scored[definedterm.DefinedTerm]
	}
	var definedSpans []definedSpan
	for _, rng := range defined.Ranges() {
		for _, v := range defined.ValuesAt(rng) {
			definedSpans = append(definedSpans, definedSpan{rng: rng, val: v})
		}
	}
	sort.Slice(definedSpans, func(i, j int) bool { return definedSpans[i].rng.Compare(definedSpans[j].rng) < 0 })

	byName := make(map[string]*building)
	var order []string
	nextID := 1
	for _, ds := range definedSpans {
		key := normalize(ds.val.Value.Name)
		if _, exists := byName[key]; exists {
			continue
		}
		b := &building{
			chain: PronounChain{
				ChainID:       nextID,
				CanonicalName: ds.val.Value.Name,
				IsDefinedTerm: true,
				Mentions:      []Mention{{Range: ds.rng, Confidence: ds.val.Confidence, Kind: MentionDefinedTerm}},
			},
			firstRng: ds.rng,
		}
		if ds.val.IsVerified() {
			b.chain.HasVerifiedMention = true
		}
		byName[key] = b
		order = append(order, key)
		nextID++
	}

	for _, rng := range refs.Ranges() {
		for _, v := range refs.ValuesAt(rng) {
			key := normalize(v.Value.Name)
			b, ok := byName[key]
			if !ok {
				continue
			}
			b.chain.Mentions = append(b.chain.Mentions, Mention{Range: rng, Confidence: v.Confidence, Kind: MentionTermReference})
			if v.IsVerified() {
				b.chain.HasVerifiedMention = true
			}
		}
	}

	for _, rng := range prons.Ranges() {
		for _, v := range prons.ValuesAt(rng) {
			if len(v.Value.Candidates) == 0 {
				continue
			}
			best := v.Value.Candidates[0]
			if best.Score < minConf {
				continue
			}
			key := normalize(best.Name)
			b, ok := byName[key]
			if !ok {
				continue
			}
			b.chain.Mentions = append(b.chain.Mentions, Mention{Range: rng, Confidence: best.Score, Kind: MentionPronoun})
		}
	}

	for _, key := range order {
		b := byName[key]
		if len(b.chain.Mentions) < 2 {
			continue
		}
		sort.Slice(b.chain.Mentions, func(i, j int) bool {
			return b.chain.Mentions[i].Range.Compare(b.chain.Mentions[j].Range) < 0
		})
		conf := chainConfidence(b.chain.Mentions)
		out.Insert(b.firstRng, scored.Derived(b.chain, conf), nil)
	}
	return nil
}

func chainConfidence(mentions []Mention) float64 {
	best := 0.0
	lowCount := 0
	for _, m := range mentions {
		if m.Confidence > best {
			best = m.Confidence
		}
		if m.Confidence < mentionKindDecayThreshold {
			lowCount++
		}
	}
	conf := best - mentionDecayStep*float64(lowCount)
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
