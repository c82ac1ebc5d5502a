package accountability

import "github.com/phosphorco/legalnlp/internal/lnlp/scored"

// VerifyNode marks an entire node as human-verified: confidence goes to
// 1.0 with source HumanVerified, and a note is appended.
func VerifyNode(node *scored.Scored[ObligationNode], verifier, note string) {
	*node = node.WithConfidence(1.0)
	node.Source.Kind = scored.SourceHuman
	node.Source.Verifier = verifier
	if note != "" {
		node.Value.VerificationNotes = append(node.Value.VerificationNotes, note)
	}
}

// ResolveBeneficiary matches a beneficiary by (clause-id, normalized name)
// and applies an optional chain-ID override and display-text correction,
// clearing its needs_verification flag. Reports whether a match was found.
func ResolveBeneficiary(node *scored.Scored[ObligationNode], clauseID, normalizedName string, chainIDOverride *int, displayText *string, note string) bool {
	for i := range node.Value.Beneficiaries {
		b := &node.Value.Beneficiaries[i]
		if b.ClauseID != clauseID || normalize(b.Name) != normalizedName {
			continue
		}
		if chainIDOverride != nil {
			b.ChainID = *chainIDOverride
			b.HasChainID = true
		}
		if displayText != nil {
			b.Name = *displayText
		}
		b.NeedsVerification = false
		if note != "" {
			node.Value.VerificationNotes = append(node.Value.VerificationNotes, note)
		}
		return true
	}
	return false
}

// VerifyCondition clears the unknown-entity flag on the conditionIndex-th
// condition link belonging to clauseID. Reports whether a match was found.
func VerifyCondition(node *scored.Scored[ObligationNode], clauseID string, conditionIndex int, note string) bool {
	count := -1
	for i := range node.Value.ConditionLinks {
		link := &node.Value.ConditionLinks[i]
		if link.ClauseID != clauseID {
			continue
		}
		count++
		if count != conditionIndex {
			continue
		}
		link.MentionsUnknownEntity = false
		if note != "" {
			node.Value.VerificationNotes = append(node.Value.VerificationNotes, note)
		}
		return true
	}
	return false
}
