// Package clause implements G7: one contract clause per obligation phrase,
// with obligor-party resolution against pronoun chains.
package clause

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/phosphorco/legalnlp/internal/legal/chain"
	"github.com/phosphorco/legalnlp/internal/legal/obligation"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
)

// knownEntityAllowList lists capitalized-looking tokens that are not
// flagged as "unknown entity" even without a matching chain, per spec.md
// §4.G7.
var knownEntityAllowList = map[string]bool{
	"agreement": true, "effective": true, "date": true, "section": true,
	"article": true, "schedule": true, "exhibit": true,
}

// Confidence adjustments, per spec.md §4.G7.
const (
	VerifiedChainBonus   = 0.05
	MissingActionPenalty = 0.10
	UnknownEntityPenalty = 0.15
)

// Party is the resolved obligor-party reference for a clause.
type Party struct {
	Name               string
	ChainID            int
	HasChainID         bool
	HasVerifiedMention bool
}

// Duty carries the clause's obligation type and action text.
type Duty struct {
	Type   obligation.Type
	Action string
}

// Condition is one clause-level condition, enriched with the
// unknown-entity flag G7 computes.
type Condition struct {
	Type                  string
	Text                  string
	MentionsUnknownEntity bool
}

// ContractClause is the attribute G7 emits.
type ContractClause struct {
	ClauseID   string
	Obligor    Party
	Duty       Duty
	Conditions []Condition
}

// Resolver is the G7 contract-clause resolver.
type Resolver struct{}

func (Resolver) Name() string { return "clause" }
func (Resolver) Reads() []reflect.Type {
	return []reflect.Type{
		attrstore.TypeOf[scored.Scored[obligation.ObligationPhrase]](),
		attrstore.TypeOf[scored.Scored[chain.PronounChain]](),
	}
}
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[ContractClause]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	obs := attrstore.For[scored.Scored[obligation.ObligationPhrase]](sel.Store)
	chains := attrstore.For[scored.Scored[chain.PronounChain]](sel.Store)
	out := attrstore.For[scored.Scored[ContractClause]](sel.Store)

	chainsByName := make(map[string]scored.Scored[chain.PronounChain])
	knownEntities := make(map[string]bool)
	for _, rng := range chains.Ranges() {
		for _, c := range chains.ValuesAt(rng) {
			key := normalize(c.Value.CanonicalName)
			chainsByName[key] = c
			knownEntities[key] = true
		}
	}

	clauseIdx := 0
	for _, rng := range obs.Ranges() {
		for _, ob := range obs.ValuesAt(rng) {
			party := resolveParty(ob.Value.Obligor.Name, chainsByName)

			conf := ob.Confidence
			if party.HasVerifiedMention {
				conf += VerifiedChainBonus
			}
			if ob.Value.Action == "" {
				conf -= MissingActionPenalty
			}

			conditions := make([]Condition, 0, len(ob.Value.Conditions))
			for _, c := range ob.Value.Conditions {
				unknown := mentionsUnknownEntity(c.Text, knownEntities)
				if unknown {
					conf -= UnknownEntityPenalty
				}
				conditions = append(conditions, Condition{Type: c.Type, Text: c.Text, MentionsUnknownEntity: unknown})
			}
			if conf < 0 {
				conf = 0
			}
			if conf > 1 {
				conf = 1
			}

			clauseID := "clause-" + strconv.Itoa(clauseIdx)
			clauseIdx++

			out.Insert(rng, scored.Derived(ContractClause{
				ClauseID: clauseID,
				Obligor:  party,
				Duty:     Duty{Type: ob.Value.Type, Action: ob.Value.Action},
				Conditions: conditions,
			}, conf), nil)
		}
	}
	return nil
}

func resolveParty(name string, chainsByName map[string]scored.Scored[chain.PronounChain]) Party {
	key := normalize(name)
	if c, ok := chainsByName[key]; ok {
		return Party{Name: name, ChainID: c.Value.ChainID, HasChainID: true, HasVerifiedMention: c.Value.HasVerifiedMention}
	}
	return Party{Name: name}
}

func mentionsUnknownEntity(text string, knownEntities map[string]bool) bool {
	for _, word := range strings.Fields(text) {
		clean := strings.Trim(word, ".,;:()\"")
		if clean == "" {
			continue
		}
		r := []rune(clean)[0]
		if r < 'A' || r > 'Z' {
			continue
		}
		lower := strings.ToLower(clean)
		if knownEntityAllowList[lower] {
			continue
		}
		if knownEntities[lower] {
			continue
		}
		return true
	}
	return false
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
