package causality

import (
	"strings"

	"archlens/internal/model"
)

type CorrelationKind string

const (
	KindTemporal   CorrelationKind = "temporal"
	KindStructural CorrelationKind = "structural"
	KindFunctional CorrelationKind = "functional"
)

// CorrelationResult scores one correlation signal for a pair. Strength is
// symmetric: DetectCorrelation(a, b) and DetectCorrelation(b, a) agree.
type CorrelationResult struct {
	Pair     model.Pair      `json:"pair"`
	Kind     CorrelationKind `json:"kind"`
	Strength float64         `json:"strength"`
}

// Vocabulary is the immutable keyword table the analyzer matches component
// names against. Matching is case-insensitive substring: a heuristic event
// signal, not a timestamp comparison; no component carries real time data.
type Vocabulary struct {
	EmitterKeywords   []string
	ResponderKeywords []string
}

// DefaultVocabulary returns the built-in event vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		EmitterKeywords:   []string{"trigger", "event", "emit", "publish", "signal", "generate"},
		ResponderKeywords: []string{"listen", "respond", "handle", "consume", "subscribe", "receive"},
	}
}

// Analyzer computes pairwise correlation signals and causal hypotheses.
type Analyzer struct {
	vocab       Vocabulary
	minStrength float64
}

// NewAnalyzer builds an analyzer around a vocabulary and the minimum
// correlation strength a hypothesis requires.
func NewAnalyzer(vocab Vocabulary, minStrength float64) *Analyzer {
	if len(vocab.EmitterKeywords) == 0 && len(vocab.ResponderKeywords) == 0 {
		vocab = DefaultVocabulary()
	}
	return &Analyzer{vocab: vocab, minStrength: minStrength}
}

// DetectCorrelation always returns exactly three entries (temporal,
// structural, functional) so callers can index results by pair. Either side
// having zero components forces every strength to zero.
func (an *Analyzer) DetectCorrelation(a, b model.Architecture) []CorrelationResult {
	pair := model.NewPair(a.ID, b.ID)
	results := []CorrelationResult{
		{Pair: pair, Kind: KindTemporal},
		{Pair: pair, Kind: KindStructural},
		{Pair: pair, Kind: KindFunctional},
	}
	if len(a.Components) == 0 || len(b.Components) == 0 {
		return results
	}

	results[0].Strength = an.temporalStrength(a, b)
	results[1].Strength = structuralStrength(a, b)
	results[2].Strength = functionalStrength(a, b)
	return results
}

// temporalStrength: each side naming an emitter contributes 0.25; an emitter
// on one side paired with a responder on the other contributes 0.5.
func (an *Analyzer) temporalStrength(a, b model.Architecture) float64 {
	emitterA := hasAnyKeyword(a, an.vocab.EmitterKeywords)
	emitterB := hasAnyKeyword(b, an.vocab.EmitterKeywords)
	responderA := hasAnyKeyword(a, an.vocab.ResponderKeywords)
	responderB := hasAnyKeyword(b, an.vocab.ResponderKeywords)

	strength := 0.0
	if emitterA {
		strength += 0.25
	}
	if emitterB {
		strength += 0.25
	}
	if (emitterA && responderB) || (emitterB && responderA) {
		strength += 0.5
	}
	return clamp(strength, 0, 1)
}

// structuralStrength blends shared framework/domain tags with component-type
// distribution similarity.
func structuralStrength(a, b model.Architecture) float64 {
	strength := 0.0
	if tagsMatch(a.Framework, b.Framework) && !strings.EqualFold(a.Framework, model.DefaultFramework) {
		strength += 0.4
	}
	if tagsMatch(a.Domain, b.Domain) {
		strength += 0.2
	}
	strength += 0.4 * typeSimilarity(a.Components, b.Components)
	return clamp(strength, 0, 1)
}

// functionalStrength: shared component-name tokens normalized by the smaller
// token set.
func functionalStrength(a, b model.Architecture) float64 {
	tokensA := nameTokens(a.Components)
	tokensB := nameTokens(b.Components)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	shared := 0
	for tok := range tokensA {
		if tokensB[tok] {
			shared++
		}
	}
	smaller := len(tokensA)
	if len(tokensB) < smaller {
		smaller = len(tokensB)
	}
	return clamp(float64(shared)/float64(smaller), 0, 1)
}

// typeSimilarity is the multiset overlap of component types, normalized by
// the smaller component count so that growing one side never dilutes the
// overlap it already has.
func typeSimilarity(a, b []model.Component) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	countsA := typeCounts(a)
	countsB := typeCounts(b)

	overlap := 0
	for typ, nA := range countsA {
		if nB, ok := countsB[typ]; ok {
			if nB < nA {
				overlap += nB
			} else {
				overlap += nA
			}
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(overlap) / float64(smaller)
}

func typeCounts(comps []model.Component) map[string]int {
	counts := make(map[string]int, len(comps))
	for _, c := range comps {
		counts[strings.ToLower(c.Type)]++
	}
	return counts
}

func nameTokens(comps []model.Component) map[string]bool {
	tokens := make(map[string]bool)
	for _, c := range comps {
		for _, tok := range strings.Fields(strings.ToLower(c.Name)) {
			tokens[tok] = true
		}
	}
	return tokens
}

func hasAnyKeyword(a model.Architecture, keywords []string) bool {
	for _, c := range a.Components {
		name := strings.ToLower(c.Name)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

func tagsMatch(x, y string) bool {
	return x != "" && strings.EqualFold(x, y)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
