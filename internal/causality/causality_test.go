package causality

import (
	"testing"

	"archlens/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArch(id, framework, domain string, componentNames ...string) model.Architecture {
	comps := make([]model.Component, 0, len(componentNames))
	for _, name := range componentNames {
		comps = append(comps, model.Component{Name: name, Type: model.DefaultComponentType})
	}
	return model.Architecture{
		ID:         id,
		Name:       id,
		Framework:  framework,
		Domain:     domain,
		Components: comps,
	}
}

func strengthByKind(results []CorrelationResult) map[CorrelationKind]float64 {
	out := make(map[CorrelationKind]float64, len(results))
	for _, r := range results {
		out[r.Kind] = r.Strength
	}
	return out
}

func TestDetectCorrelation_AlwaysThreeEntries(t *testing.T) {
	an := NewAnalyzer(DefaultVocabulary(), 0.3)

	t.Run("Zero components still yields indexed entries", func(t *testing.T) {
		a := testArch("a", "unknown", "software")
		b := testArch("b", "unknown", "software", "Worker")

		results := an.DetectCorrelation(a, b)
		require.Len(t, results, 3)
		for _, r := range results {
			assert.Equal(t, model.NewPair("a", "b"), r.Pair)
			assert.Zero(t, r.Strength)
		}
	})

	t.Run("Kinds are stable", func(t *testing.T) {
		a := testArch("a", "UAF", "software", "Core")
		b := testArch("b", "UAF", "software", "Core")
		results := an.DetectCorrelation(a, b)
		require.Len(t, results, 3)
		assert.Equal(t, KindTemporal, results[0].Kind)
		assert.Equal(t, KindStructural, results[1].Kind)
		assert.Equal(t, KindFunctional, results[2].Kind)
	})
}

func TestDetectCorrelation_TemporalScenario(t *testing.T) {
	an := NewAnalyzer(DefaultVocabulary(), 0.3)

	quiet := testArch("orders", "decision_flow", "software", "Catalog", "Warehouse")
	alsoQuiet := testArch("billing", "decision_flow", "software", "Ledger", "Invoicer")

	before := strengthByKind(an.DetectCorrelation(quiet, alsoQuiet))
	assert.Zero(t, before[KindTemporal], "no trigger/event names on either side")

	withTrigger := quiet
	withTrigger.Components = append([]model.Component{}, quiet.Components...)
	withTrigger.Components = append(withTrigger.Components, model.Component{Name: "OrderEventTrigger", Type: "component"})

	after := strengthByKind(an.DetectCorrelation(withTrigger, alsoQuiet))
	assert.Greater(t, after[KindTemporal], 0.0)
	assert.Equal(t, before[KindStructural], after[KindStructural], "structural score must not move")
	assert.Equal(t, before[KindFunctional], after[KindFunctional], "functional score must not move")
}

func TestDetectCorrelation_TemporalPairing(t *testing.T) {
	an := NewAnalyzer(DefaultVocabulary(), 0.3)

	emitter := testArch("a", "unknown", "software", "EventPublisher")
	responder := testArch("b", "unknown", "software", "OrderHandler")
	bystander := testArch("c", "unknown", "software", "Catalog")

	paired := strengthByKind(an.DetectCorrelation(emitter, responder))
	unpaired := strengthByKind(an.DetectCorrelation(emitter, bystander))
	assert.Greater(t, paired[KindTemporal], unpaired[KindTemporal],
		"an emitter facing a responder outranks an emitter alone")
}

func TestDetectCorrelation_Symmetry(t *testing.T) {
	an := NewAnalyzer(DefaultVocabulary(), 0.3)

	a := testArch("alpha", "UAF", "software", "Order Trigger", "Payment Gateway")
	b := testArch("beta", "UAF", "biological", "Signal Handler", "Payment Ledger")

	ab := strengthByKind(an.DetectCorrelation(a, b))
	ba := strengthByKind(an.DetectCorrelation(b, a))
	assert.Equal(t, ab, ba)
}

func TestDetectCorrelation_StructuralAndFunctional(t *testing.T) {
	an := NewAnalyzer(DefaultVocabulary(), 0.3)

	t.Run("Shared framework raises structural score", func(t *testing.T) {
		a := testArch("a", "UAF", "software", "Core")
		b := testArch("b", "UAF", "software", "Shell")
		c := testArch("c", "decision_flow", "software", "Shell")

		same := strengthByKind(an.DetectCorrelation(a, b))
		diff := strengthByKind(an.DetectCorrelation(a, c))
		assert.Greater(t, same[KindStructural], diff[KindStructural])
	})

	t.Run("Unknown frameworks never count as a match", func(t *testing.T) {
		a := testArch("a", "unknown", "software", "Core")
		b := testArch("b", "unknown", "software", "Shell")
		got := strengthByKind(an.DetectCorrelation(a, b))
		// domain match (0.2) plus full type similarity (0.4), no framework share
		assert.InDelta(t, 0.6, got[KindStructural], 1e-9)
	})

	t.Run("Token overlap normalized by smaller set", func(t *testing.T) {
		a := testArch("a", "unknown", "hardware", "payment gateway")
		b := testArch("b", "unknown", "biology", "payment ledger", "audit trail")
		got := strengthByKind(an.DetectCorrelation(a, b))
		// tokens a: {payment, gateway}; b: {payment, ledger, audit, trail}; shared 1 / min 2
		assert.InDelta(t, 0.5, got[KindFunctional], 1e-9)
	})
}

func TestDetectCorrelation_CapabilityComponentsFlowThrough(t *testing.T) {
	an := NewAnalyzer(DefaultVocabulary(), 0.3)

	a := model.Architecture{
		ID: "caps", Name: "caps", Framework: "unknown", Domain: "software",
		Components: []model.Component{
			{Name: "C01", Type: "capability"},
			{Name: "C07", Type: "capability"},
		},
	}
	b := testArch("plain", "unknown", "software", "C01 Processor")

	results := an.DetectCorrelation(a, b)
	require.Len(t, results, 3)
	hyps := an.GenerateHypotheses(a, b, results)
	for _, h := range hyps {
		assert.NotEmpty(t, h.Rationale)
	}
}

func TestGenerateHypotheses_ThresholdAndRanking(t *testing.T) {
	an := NewAnalyzer(DefaultVocabulary(), 0.3)

	t.Run("Below threshold emits nothing", func(t *testing.T) {
		a := model.Architecture{
			ID: "a", Name: "a", Framework: "unknown", Domain: "hardware",
			Components: []model.Component{{Name: "Gearbox", Type: "mechanism"}},
		}
		b := model.Architecture{
			ID: "b", Name: "b", Framework: "unknown", Domain: "biology",
			Components: []model.Component{{Name: "Ribosome", Type: "organelle"}},
		}
		results := an.DetectCorrelation(a, b)
		assert.Empty(t, an.GenerateHypotheses(a, b, results))
	})

	t.Run("Qualifying correlation emits one hypothesis per relation", func(t *testing.T) {
		a := testArch("a", "UAF", "software", "Core", "Shell")
		b := testArch("b", "UAF", "software", "Core", "Shell")
		results := an.DetectCorrelation(a, b)

		hyps := an.GenerateHypotheses(a, b, results)
		require.NotEmpty(t, hyps)
		assert.Zero(t, len(hyps)%len(relationOrder))

		for i := 1; i < len(hyps); i++ {
			assert.GreaterOrEqual(t, hyps[i-1].Confidence, hyps[i].Confidence, "ranked by confidence")
		}
		for _, h := range hyps {
			assert.GreaterOrEqual(t, h.Confidence, 0.05)
			assert.LessOrEqual(t, h.Confidence, 0.95)
			assert.NotEmpty(t, h.Rationale)
			assert.NotEmpty(t, h.Validation)
		}
	})

	t.Run("Directional cue with strong structure favors causation", func(t *testing.T) {
		a := testArch("a", "UAF", "software", "Core", "Biology Bridge")
		b := testArch("b", "UAF", "biology", "Core", "Membrane")
		results := an.DetectCorrelation(a, b)

		byRelation := make(map[Relation]float64)
		for _, h := range an.GenerateHypotheses(a, b, results) {
			if c, ok := byRelation[h.Relation]; !ok || h.Confidence > c {
				byRelation[h.Relation] = h.Confidence
			}
		}
		require.NotEmpty(t, byRelation)
		assert.Greater(t, byRelation[RelationCausation], byRelation[RelationReverseCausation],
			"only a references b's domain")
	})

	t.Run("Wording is reproducible across runs", func(t *testing.T) {
		a := testArch("a", "UAF", "software", "Core")
		b := testArch("b", "UAF", "software", "Core")
		results := an.DetectCorrelation(a, b)

		first := an.GenerateHypotheses(a, b, results)
		second := an.GenerateHypotheses(a, b, results)
		assert.Equal(t, first, second)
	})
}
