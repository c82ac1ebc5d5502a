// Package accountability implements G9: the accountability graph built on
// top of clause aggregates, plus the verification API that mutates nodes in
// place after human review.
package accountability

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/phosphorco/legalnlp/internal/legal/aggregate"
	"github.com/phosphorco/legalnlp/internal/legal/chain"
	"github.com/phosphorco/legalnlp/internal/legal/clause"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
)

// Confidence adjustments, per spec.md §4.G9.
const (
	NeedsVerificationPenalty = 0.10
	VerifiedChainBonus       = 0.05
)

var beneficiaryDelimiters = []string{",", ";", ".", ":", " and ", " or "}

// Beneficiary is one party a clause's action text names as a recipient.
type Beneficiary struct {
	ClauseID          string
	Name              string
	ChainID           int
	HasChainID        bool
	HasVerifiedChain  bool
	NeedsVerification bool
}

// ConditionLink is a node-level edge copied from a clause condition.
type ConditionLink struct {
	ClauseID              string
	Type                  string
	Text                  string
	MentionsUnknownEntity bool
}

// ObligationNode is the attribute G9 emits.
type ObligationNode struct {
	NodeID              string
	AggregateID         string
	Obligor             clause.Party
	Beneficiaries       []Beneficiary
	ConditionLinks      []ConditionLink
	Clauses             []clause.ContractClause
	VerificationNotes   []string
	ConfidenceBreakdown []string
}

// Resolver is the G9 accountability-graph resolver.
type Resolver struct{}

func (Resolver) Name() string { return "accountability" }
func (Resolver) Reads() []reflect.Type {
	return []reflect.Type{
		attrstore.TypeOf[scored.Scored[aggregate.ClauseAggregate]](),
		attrstore.TypeOf[scored.Scored[chain.PronounChain]](),
	}
}
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[ObligationNode]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	aggs := attrstore.For[scored.Scored[aggregate.ClauseAggregate]](sel.Store)
	chains := attrstore.For[scored.Scored[chain.PronounChain]](sel.Store)
	out := attrstore.For[scored.Scored[ObligationNode]](sel.Store)

	chainsByName := make(map[string]scored.Scored[chain.PronounChain])
	for _, rng := range chains.Ranges() {
		for _, c := range chains.ValuesAt(rng) {
			chainsByName[normalize(c.Value.CanonicalName)] = c
		}
	}

	nodeIdx := 0
	for _, rng := range aggs.Ranges() {
		for _, agg := range aggs.ValuesAt(rng) {
			breakdown := []string{fmt.Sprintf("start: aggregate confidence %.2f", agg.Confidence)}
			conf := agg.Confidence

			var beneficiaries []Beneficiary
			var links []ConditionLink
			anyNeedsVerification := false
			anyVerifiedChain := false

			for _, c := range agg.Value.Clauses {
				for _, name := range extractBeneficiaries(c.Duty.Action) {
					b := resolveBeneficiary(c.ClauseID, name, chainsByName)
					if b.NeedsVerification {
						anyNeedsVerification = true
					}
					if b.HasVerifiedChain {
						anyVerifiedChain = true
					}
					beneficiaries = append(beneficiaries, b)
				}
				for _, cond := range c.Conditions {
					links = append(links, ConditionLink{
						ClauseID:              c.ClauseID,
						Type:                  cond.Type,
						Text:                  cond.Text,
						MentionsUnknownEntity: cond.MentionsUnknownEntity,
					})
				}
			}

			if anyNeedsVerification {
				conf -= NeedsVerificationPenalty
				breakdown = append(breakdown, fmt.Sprintf("-%.2f: a beneficiary needs verification", NeedsVerificationPenalty))
			}
			if anyVerifiedChain {
				conf += VerifiedChainBonus
				breakdown = append(breakdown, fmt.Sprintf("+%.2f: a beneficiary maps to a verified chain", VerifiedChainBonus))
			}
			if conf < 0 {
				conf = 0
			}
			if conf > 1 {
				conf = 1
			}

			node := ObligationNode{
				NodeID:              "node-" + strconv.Itoa(nodeIdx),
				AggregateID:         agg.Value.AggregateID,
				Obligor:             agg.Value.Obligor,
				Beneficiaries:       beneficiaries,
				ConditionLinks:      links,
				Clauses:             agg.Value.Clauses,
				VerificationNotes:   nil,
				ConfidenceBreakdown: breakdown,
			}
			nodeIdx++

			out.Insert(rng, scored.Derived(node, conf), nil)
		}
	}
	return nil
}

func resolveBeneficiary(clauseID, name string, chainsByName map[string]scored.Scored[chain.PronounChain]) Beneficiary {
	key := normalize(name)
	if c, ok := chainsByName[key]; ok {
		return Beneficiary{
			ClauseID:         clauseID,
			Name:             name,
			ChainID:          c.Value.ChainID,
			HasChainID:       true,
			HasVerifiedChain: c.Value.HasVerifiedMention,
		}
	}
	return Beneficiary{ClauseID: clauseID, Name: name, NeedsVerification: true}
}

// extractBeneficiaries implements spec.md §4.G9's beneficiary-extraction
// rule: every case-insensitive occurrence of the literal " to " in text,
// the substring after it truncated at the next delimiter, kept only if it
// starts with an uppercase letter.
func extractBeneficiaries(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	searchFrom := 0
	for {
		idx := strings.Index(lower[searchFrom:], " to ")
		if idx < 0 {
			break
		}
		absIdx := searchFrom + idx
		rest := text[absIdx+len(" to "):]
		candidate := strings.TrimSpace(truncateAtDelimiter(rest))
		if candidate != "" && startsUpper(candidate) {
			out = append(out, candidate)
		}
		searchFrom = absIdx + len(" to ")
		if searchFrom >= len(lower) {
			break
		}
	}
	return out
}

func truncateAtDelimiter(s string) string {
	cut := len(s)
	for _, d := range beneficiaryDelimiters {
		if idx := strings.Index(s, d); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return s[:cut]
}

func startsUpper(s string) bool {
	r := []rune(s)
	if len(r) == 0 {
		return false
	}
	return r[0] >= 'A' && r[0] <= 'Z'
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
