// Package pronoun implements G4: pronoun classification and antecedent
// scoring against defined terms, term references, and capitalized noun
// phrases within a configurable window.
package pronoun

import (
	"reflect"
	"strings"

	"github.com/phosphorco/legalnlp/internal/legal/definedterm"
	"github.com/phosphorco/legalnlp/internal/legal/termref"
	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/scored"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// Kind classifies a pronoun's person/number/gender.
type Kind int

const (
	ThirdSingularNeuter Kind = iota
	ThirdSingularMasculine
	ThirdSingularFeminine
	ThirdPlural
	Relative
	Other
)

func (k Kind) String() string {
	switch k {
	case ThirdSingularNeuter:
		return "ThirdSingularNeuter"
	case ThirdSingularMasculine:
		return "ThirdSingularMasculine"
	case ThirdSingularFeminine:
		return "ThirdSingularFeminine"
	case ThirdPlural:
		return "ThirdPlural"
	case Relative:
		return "Relative"
	default:
		return "Other"
	}
}

var vocabulary = map[string]Kind{
	"it": ThirdSingularNeuter, "its": ThirdSingularNeuter,
	"he": ThirdSingularMasculine, "him": ThirdSingularMasculine, "his": ThirdSingularMasculine,
	"she": ThirdSingularFeminine, "her": ThirdSingularFeminine, "hers": ThirdSingularFeminine,
	"they": ThirdPlural, "them": ThirdPlural, "their": ThirdPlural, "theirs": ThirdPlural,
	"which": Relative, "who": Relative, "whom": Relative, "that": Relative,
}

// Config exposes the tunables spec.md §6 calls for: window size, candidate
// source weights, and gender/number agreement bonuses.
type Config struct {
	WindowTokens       int
	DefinedTermWeight  float64
	TermRefWeight      float64
	NounPhraseWeight   float64
	SameSentenceBonus  float64
	AgreementBonus     float64
	DistanceFalloff    float64 // score subtracted per token of distance
}

// DefaultConfig returns the default tunables every preset uses; DESIGN.md
// records how the window width and agreement bonus were chosen.
func DefaultConfig() Config {
	return Config{
		WindowTokens:      60,
		DefinedTermWeight: 0.65,
		TermRefWeight:     0.45,
		NounPhraseWeight:  0.25,
		SameSentenceBonus: 0.10,
		AgreementBonus:    0.20,
		DistanceFalloff:   0.005,
	}
}

// Candidate is one antecedent candidate for a pronoun, with its final
// computed score.
type Candidate struct {
	Name          string
	Range         token.Range
	Score         float64
	IsDefinedTerm bool
}

// PronounReference is the attribute G4 emits.
type PronounReference struct {
	Kind       Kind
	Surface    string
	Candidates []Candidate // sorted descending by Score
}

// Resolver is the G4 pronoun resolver.
type Resolver struct {
	Config Config
}

// NewResolver builds a Resolver with cfg, or DefaultConfig if cfg is zero.
func NewResolver(cfg Config) Resolver {
	if cfg.WindowTokens == 0 {
		cfg = DefaultConfig()
	}
	return Resolver{Config: cfg}
}

func (Resolver) Name() string { return "pronoun" }
func (Resolver) Reads() []reflect.Type {
	return []reflect.Type{
		attrstore.TypeOf[scored.Scored[definedterm.DefinedTerm]](),
		attrstore.TypeOf[scored.Scored[termref.TermReference]](),
	}
}
func (Resolver) Produces() []reflect.Type {
	return []reflect.Type{attrstore.TypeOf[scored.Scored[PronounReference]]()}
}

func (r Resolver) Run(sel cursor.Selection) error {
	cfg := r.Config
	if cfg.WindowTokens == 0 {
		cfg = DefaultConfig()
	}
	line := sel.Line
	defined := attrstore.For[scored.Scored[definedterm.DefinedTerm]](sel.Store)
	refs := attrstore.For[scored.Scored[termref.TermReference]](sel.Store)
	out := attrstore.For[scored.Scored[PronounReference]](sel.Store)

	type source struct {
		rng           token.Range
		name          string
		isDefinedTerm bool
		weight        float64
	}
	var sources []source
	for _, rng := range defined.Ranges() {
		for _, v := range defined.ValuesAt(rng) {
			sources = append(sources, source{rng: rng, name: v.Value.Name, isDefinedTerm: true, weight: cfg.DefinedTermWeight})
		}
	}
	for _, rng := range refs.Ranges() {
		for _, v := range refs.ValuesAt(rng) {
			sources = append(sources, source{rng: rng, name: v.Value.Name, isDefinedTerm: false, weight: cfg.TermRefWeight})
		}
	}
	for _, np := range CapitalizedNounPhrases(line) {
		sources = append(sources, source{rng: np.Range, name: np.Text, isDefinedTerm: false, weight: cfg.NounPhraseWeight})
	}

	for i := 0; i < line.Len(); i++ {
		tok := line.Token(i)
		if tok.Class != token.ClassWord {
			continue
		}
		kind, ok := vocabulary[strings.ToLower(tok.Text)]
		if !ok {
			continue
		}

		var candidates []Candidate
		for _, src := range sources {
			if src.rng.End >= i {
				continue // candidate must precede the pronoun
			}
			distance := i - src.rng.End
			if distance > cfg.WindowTokens {
				continue
			}
			score := src.weight
			score -= float64(distance) * cfg.DistanceFalloff
			if SameSentence(line, src.rng.End, i) {
				score += cfg.SameSentenceBonus
			}
			if agrees(kind, src.name) {
				score += cfg.AgreementBonus
			}
			if score < 0 {
				score = 0
			}
			if score > 1 {
				score = 1
			}
			candidates = append(candidates, Candidate{Name: src.name, Range: src.rng, Score: score, IsDefinedTerm: src.isDefinedTerm})
		}
		if len(candidates) == 0 {
			continue
		}
		sortCandidatesDesc(candidates)
		best := candidates[0].Score
		out.Insert(token.Range{Start: i, End: i}, scored.RuleBased(PronounReference{Kind: kind, Surface: tok.Text, Candidates: candidates}, best, "pronoun"), nil)
	}
	return nil
}

func sortCandidatesDesc(cs []Candidate) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].Score > cs[j-1].Score; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// agrees applies the cheap gender/number heuristic spec.md §4.G4 specifies.
func agrees(kind Kind, name string) bool {
	lower := strings.ToLower(name)
	switch kind {
	case ThirdSingularNeuter:
		return containsAny(lower, "company", "corp", "inc")
	case ThirdSingularMasculine:
		return containsAny(lower, "john", "mr")
	case ThirdSingularFeminine:
		return containsAny(lower, "jane", "ms")
	case ThirdPlural:
		return containsAny(lower, "parties", "and")
	default:
		return false
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// SameSentence reports whether no sentence-terminating punctuation ('.',
// '!', '?') lies between indices a and b (exclusive). Exported for reuse by
// a later resolver layer (obligation phrases) that also needs to bound a
// search to the current sentence.
func SameSentence(line token.Line, a, b int) bool {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo + 1; i < hi; i++ {
		tok := line.Token(i)
		if tok.Class == token.ClassPunctuation && (tok.Text == "." || tok.Text == "!" || tok.Text == "?") {
			return false
		}
	}
	return true
}

// NounPhrase is a maximal run of adjacent capitalized-initial word tokens.
type NounPhrase struct {
	Range token.Range
	Text  string
}

// CapitalizedNounPhrases scans for maximal runs of adjacent
// capitalized-initial word tokens (single whitespace between them).
// Exported so other resolver layers (obligation phrases) can use the same
// "other capitalized noun phrases" antecedent/obligor candidate source
// spec.md §4.G4 and §4.G5 both call for.
func CapitalizedNounPhrases(line token.Line) []NounPhrase {
	var out []NounPhrase
	i := 0
	for i < line.Len() {
		tok := line.Token(i)
		if tok.Class != token.ClassWord || !startsUpper(tok.Text) {
			i++
			continue
		}
		start := i
		var words []string
		words = append(words, tok.Text)
		j := i + 1
		for {
			if j >= line.Len() || line.Token(j).Class != token.ClassWhitespace {
				break
			}
			k := j + 1
			if k >= line.Len() || line.Token(k).Class != token.ClassWord || !startsUpper(line.Token(k).Text) {
				break
			}
			words = append(words, line.Token(k).Text)
			j = k + 1
		}
		end := start
		for idx := start; idx < j; idx++ {
			if line.Token(idx).Class == token.ClassWord {
				end = idx
			}
		}
		out = append(out, NounPhrase{Range: token.Range{Start: start, End: end}, Text: strings.Join(words, " ")})
		i = j
	}
	return out
}

func startsUpper(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return r >= 'A' && r <= 'Z'
}
