package pipeline

import (
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
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/deixis"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

// SnapshotRegistry builds the snapshot.Registry covering every attribute
// type the standard preset's resolvers may produce. It lives here, rather
// than in package snapshot itself, so the snapshot layer stays free of any
// knowledge of specific domain attribute types — this is the one place in
// the module that both knows every resolver and is allowed to import the
// snapshot package.
func SnapshotRegistry() snapshot.Registry {
	reg := snapshot.Registry{}

	reg[attrstore.TypeOf[keyword.Keyword]()] = snapshot.TypeInfo{Name: "Keyword", Prefix: "kw", Category: "Obligations"}
	reg[attrstore.TypeOf[scored.Scored[structure.SectionHeader]]()] = snapshot.TypeInfo{Name: "SectionHeader", Prefix: "hdr", Category: "Structure"}
	reg[attrstore.TypeOf[scored.Scored[structure.SectionReference]]()] = snapshot.TypeInfo{Name: "SectionReference", Prefix: "sref", Category: "References"}
	reg[attrstore.TypeOf[scored.Scored[termsofart.TermOfArt]]()] = snapshot.TypeInfo{Name: "TermOfArt", Prefix: "toa", Category: "Other"}
	reg[attrstore.TypeOf[scored.Scored[definedterm.DefinedTerm]]()] = snapshot.TypeInfo{Name: "DefinedTerm", Prefix: "term", Category: "Definitions"}
	reg[attrstore.TypeOf[scored.Scored[termref.TermReference]]()] = snapshot.TypeInfo{Name: "TermReference", Prefix: "ref", Category: "References"}
	reg[attrstore.TypeOf[scored.Scored[temporal.TemporalExpression]]()] = snapshot.TypeInfo{Name: "TemporalExpression", Prefix: "tmp", Category: "Temporal"}
	reg[attrstore.TypeOf[scored.Scored[pronoun.PronounReference]]()] = snapshot.TypeInfo{Name: "PronounReference", Prefix: "pron", Category: "References"}
	reg[attrstore.TypeOf[scored.Scored[chain.PronounChain]]()] = snapshot.TypeInfo{Name: "PronounChain", Prefix: "chain", Category: "References"}
	reg[attrstore.TypeOf[scored.Scored[obligation.ObligationPhrase]]()] = snapshot.TypeInfo{Name: "ObligationPhrase", Prefix: "obl", Category: "Obligations"}
	reg[attrstore.TypeOf[scored.Scored[clause.ContractClause]]()] = snapshot.TypeInfo{Name: "ContractClause", Prefix: "clause", Category: "Obligations"}
	reg[attrstore.TypeOf[scored.Scored[aggregate.ClauseAggregate]]()] = snapshot.TypeInfo{Name: "ClauseAggregate", Prefix: "agg", Category: "Obligations"}
	reg[attrstore.TypeOf[scored.Scored[accountability.ObligationNode]]()] = snapshot.TypeInfo{Name: "ObligationNode", Prefix: "node", Category: "Obligations"}
	reg[attrstore.TypeOf[scored.Scored[deixis.DeicticReference]]()] = snapshot.TypeInfo{Name: "DeicticReference", Prefix: "dx", Category: "Other"}

	return reg
}
