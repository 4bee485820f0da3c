package causality

import (
	"fmt"
	"sort"
	"strings"

	"archlens/internal/model"
)

type Relation string

const (
	RelationCausation        Relation = "causation"
	RelationReverseCausation Relation = "reverse_causation"
	RelationConfounding      Relation = "confounding"
	RelationNoCausation      Relation = "no_causation"
)

var relationOrder = []Relation{
	RelationCausation,
	RelationReverseCausation,
	RelationConfounding,
	RelationNoCausation,
}

// CausalHypothesis is a heuristic, confidence-scored reading of one
// correlation. Rationale, alternatives, and validation steps are fixed
// template text so runs are reproducible word for word.
type CausalHypothesis struct {
	Pair         model.Pair `json:"pair"`
	Relation     Relation   `json:"relation"`
	Confidence   float64    `json:"confidence"`
	Rationale    []string   `json:"rationale"`
	Alternatives []string   `json:"alternatives,omitempty"`
	Validation   []string   `json:"validation,omitempty"`
}

// GenerateHypotheses emits one hypothesis per relation kind for every
// correlation at or above the configured minimum strength. Confidence is a
// deterministic function of the correlation strength, the pair's structural
// strength, and directionality cues.
func (an *Analyzer) GenerateHypotheses(a, b model.Architecture, correlations []CorrelationResult) []CausalHypothesis {
	structural := 0.0
	for _, c := range correlations {
		if c.Kind == KindStructural {
			structural = c.Strength
		}
	}
	structuralStrong := structural >= 0.5
	cueAB := referencesDomain(a, b)
	cueBA := referencesDomain(b, a)

	var out []CausalHypothesis
	for _, corr := range correlations {
		if corr.Strength < an.minStrength {
			continue
		}
		for _, rel := range relationOrder {
			h := CausalHypothesis{
				Pair:         corr.Pair,
				Relation:     rel,
				Confidence:   relationConfidence(rel, corr.Strength, structuralStrong, cueAB, cueBA),
				Rationale:    buildRationale(rel, corr, a, b, structuralStrong, cueAB, cueBA),
				Alternatives: relationAlternatives(rel),
				Validation:   relationValidation(rel),
			}
			out = append(out, h)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].Relation != out[j].Relation {
			return out[i].Relation < out[j].Relation
		}
		return strings.Join(out[i].Rationale, "|") < strings.Join(out[j].Rationale, "|")
	})
	return out
}

// relationConfidence applies the fixed per-relation discount. Causation in
// either direction is rewarded only when structure is strong and a
// directional cue exists; otherwise confounding and no_causation dominate.
func relationConfidence(rel Relation, strength float64, structuralStrong, cueAB, cueBA bool) float64 {
	var c float64
	switch rel {
	case RelationCausation:
		if structuralStrong && cueAB {
			c = strength * 0.8
		} else {
			c = strength * 0.35
		}
	case RelationReverseCausation:
		if structuralStrong && cueBA {
			c = strength * 0.8
		} else {
			c = strength * 0.35
		}
	case RelationConfounding:
		c = strength * 0.55
		if !cueAB && !cueBA {
			c += 0.1
		}
	case RelationNoCausation:
		c = (1 - strength) * 0.6
	}
	return clamp(c, 0.05, 0.95)
}

// referencesDomain reports whether any component text in `from` mentions the
// domain or framework of `to`. An unknown framework conveys nothing.
func referencesDomain(from, to model.Architecture) bool {
	targets := make([]string, 0, 2)
	if to.Domain != "" {
		targets = append(targets, strings.ToLower(to.Domain))
	}
	if to.Framework != "" && !strings.EqualFold(to.Framework, model.DefaultFramework) {
		targets = append(targets, strings.ToLower(to.Framework))
	}
	if len(targets) == 0 {
		return false
	}

	for _, c := range from.Components {
		text := strings.ToLower(c.Name + " " + c.Type + " " + attributeText(c))
		for _, target := range targets {
			if strings.Contains(text, target) {
				return true
			}
		}
	}
	return false
}

func attributeText(c model.Component) string {
	if len(c.Attributes) == 0 {
		return ""
	}
	var sb strings.Builder
	keys := make([]string, 0, len(c.Attributes))
	for k := range c.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := c.Attributes[k].(type) {
		case string:
			sb.WriteString(v)
			sb.WriteString(" ")
		case []string:
			sb.WriteString(strings.Join(v, " "))
			sb.WriteString(" ")
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					sb.WriteString(s)
					sb.WriteString(" ")
				}
			}
		}
	}
	return sb.String()
}

func buildRationale(rel Relation, corr CorrelationResult, a, b model.Architecture, structuralStrong, cueAB, cueBA bool) []string {
	lines := []string{
		fmt.Sprintf("%s correlation strength %.2f links %s and %s", corr.Kind, corr.Strength, a.ID, b.ID),
	}
	switch rel {
	case RelationCausation:
		if cueAB {
			lines = append(lines, fmt.Sprintf("components in %s reference the domain of %s", a.ID, b.ID))
		}
		if structuralStrong {
			lines = append(lines, "structural correlation is strong enough to support a directional reading")
		} else {
			lines = append(lines, "directional evidence is weak; treat this as exploratory")
		}
	case RelationReverseCausation:
		if cueBA {
			lines = append(lines, fmt.Sprintf("components in %s reference the domain of %s", b.ID, a.ID))
		}
		if structuralStrong {
			lines = append(lines, "structural correlation is strong enough to support a directional reading")
		} else {
			lines = append(lines, "directional evidence is weak; treat this as exploratory")
		}
	case RelationConfounding:
		lines = append(lines, "a shared upstream system could produce both architectures' signals")
		if !cueAB && !cueBA {
			lines = append(lines, "no directional cue favors either architecture")
		}
	case RelationNoCausation:
		lines = append(lines, "the correlation may be coincidental at this strength")
	}
	return lines
}

func relationAlternatives(rel Relation) []string {
	switch rel {
	case RelationCausation:
		return []string{"reverse causation", "confounding variable", "coincidence"}
	case RelationReverseCausation:
		return []string{"forward causation", "confounding variable", "coincidence"}
	case RelationConfounding:
		return []string{"direct causation in either direction", "coincidence"}
	default:
		return []string{"hidden coupling below the component level"}
	}
}

func relationValidation(rel Relation) []string {
	switch rel {
	case RelationCausation, RelationReverseCausation:
		return []string{
			"check temporal precedence in deployment or change history",
			"trace interface calls between the two architectures",
			"remove the suspected cause in a sandbox and observe the effect",
		}
	case RelationConfounding:
		return []string{
			"search for a third architecture referenced by both",
			"compare change logs for a shared upstream driver",
		}
	default:
		return []string{"re-run correlation with stricter thresholds"}
	}
}
