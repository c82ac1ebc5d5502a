package scored

import "sort"

// AmbiguityFlag classifies why a ReviewableResult might need review. It is
// a pure function of the candidate set and a Config, per spec.md §4.D.
type AmbiguityFlag int

const (
	// AmbiguityNone indicates no ambiguity was detected.
	AmbiguityNone AmbiguityFlag = iota
	// AmbiguityLowConfidence indicates the best candidate fell below the
	// configured low-confidence threshold.
	AmbiguityLowConfidence
	// AmbiguityCompetingAlternatives indicates an alternative scored
	// within the configured margin of the best candidate.
	AmbiguityCompetingAlternatives
)

// String renders the flag name used in snapshot rendering and log output.
func (f AmbiguityFlag) String() string {
	switch f {
	case AmbiguityNone:
		return "none"
	case AmbiguityLowConfidence:
		return "low_confidence"
	case AmbiguityCompetingAlternatives:
		return "competing_alternatives"
	default:
		return "unknown"
	}
}

// Config parameterizes ReviewableResult construction. Each resolver that
// emits ReviewableResults owns its own Config value (spec.md §6 lists this
// as part of "configuration surface per resolver").
type Config struct {
	// NBest caps how many candidates survive truncation, including the
	// best one.
	NBest int
	// MinScore drops candidates below this confidence before sorting.
	MinScore float64
	// LowConfidence is the threshold below which the best candidate alone
	// triggers AmbiguityLowConfidence.
	LowConfidence float64
	// AmbiguityMargin is the gap under which an alternative is considered
	// "competing" with the best candidate.
	AmbiguityMargin float64
}

// DefaultConfig returns reasonable defaults matching the tunables listed in
// spec.md §6 for generic review-layer usage; domain resolvers typically
// supply their own.
func DefaultConfig() Config {
	return Config{
		NBest:           3,
		MinScore:        0.0,
		LowConfidence:   0.5,
		AmbiguityMargin: 0.1,
	}
}

// ReviewableResult wraps a best candidate plus sorted alternatives and a
// computed ambiguity flag, per spec.md §4.D.
type ReviewableResult[T any] struct {
	Best         Scored[T]
	Alternatives []Scored[T]
	Flag         AmbiguityFlag
	NeedsReview  bool
	Reason       string
}

// Build constructs a ReviewableResult from an unordered candidate slice and
// a Config, following the four steps spec.md §4.D specifies: drop below
// MinScore, sort descending, truncate to NBest, then compute the flag.
// Build returns false if every candidate was dropped by MinScore (callers
// should treat this as "no attribute emitted" rather than an empty-best
// ReviewableResult).
func Build[T any](candidates []Scored[T], cfg Config) (ReviewableResult[T], bool) {
	filtered := make([]Scored[T], 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence >= cfg.MinScore {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return ReviewableResult[T]{}, false
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})

	if cfg.NBest > 0 && len(filtered) > cfg.NBest {
		filtered = filtered[:cfg.NBest]
	}

	best := filtered[0]
	alts := filtered[1:]

	flag, reason := computeFlag(best, alts, cfg)

	return ReviewableResult[T]{
		Best:         best,
		Alternatives: alts,
		Flag:         flag,
		NeedsReview:  flag != AmbiguityNone,
		Reason:       reason,
	}, true
}

func computeFlag[T any](best Scored[T], alts []Scored[T], cfg Config) (AmbiguityFlag, string) {
	if best.Confidence < cfg.LowConfidence {
		return AmbiguityLowConfidence, "best candidate confidence below low-confidence threshold"
	}
	for _, alt := range alts {
		if alt.Confidence >= best.Confidence-cfg.AmbiguityMargin {
			return AmbiguityCompetingAlternatives, "an alternative scored within the ambiguity margin of the best candidate"
		}
	}
	return AmbiguityNone, ""
}
