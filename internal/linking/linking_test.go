package linking

import (
	"strings"
	"testing"

	"archlens/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archWith(id, framework, domain string, comps ...model.Component) model.Architecture {
	return model.Architecture{
		ID: id, Name: id,
		Framework:  framework,
		Domain:     domain,
		Components: comps,
	}
}

func TestAssess(t *testing.T) {
	l := NewLinker(nil, 0)

	cases := []struct {
		name string
		a, b model.Architecture
		want string
	}{
		{
			name: "Shared domain aligns",
			a:    archWith("a", "unknown", "software"),
			b:    archWith("b", "unknown", "Software"),
			want: Aligned,
		},
		{
			name: "Shared known framework aligns across domains",
			a:    archWith("a", "UAF", "software"),
			b:    archWith("b", "uaf", "biological"),
			want: Aligned,
		},
		{
			name: "Unknown frameworks convey nothing",
			a:    archWith("a", "unknown", "software"),
			b:    archWith("b", "unknown", "biological"),
			want: Orthogonal,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l.Assess(tc.a, tc.b))
		})
	}
}

func TestLink_AlignedPairsStayEmpty(t *testing.T) {
	l := NewLinker(nil, 0)

	a := archWith("a", "unknown", "software",
		model.Component{Name: "Heart", Type: "circulatory pump"})
	b := archWith("b", "unknown", "software",
		model.Component{Name: "Event Bus", Type: "component"})

	opp := l.Link(a, b)
	assert.Equal(t, Aligned, opp.Orthogonality)
	assert.Empty(t, opp.Touchpoints, "aligned pairs are structural-analysis territory")
}

func TestProposeTouchpoints(t *testing.T) {
	l := NewLinker(nil, 0)

	t.Run("Typed role on both sides scores high", func(t *testing.T) {
		bio := archWith("cell", "unknown", "biological",
			model.Component{Name: "Cell Membrane", Type: "membrane"})
		app := archWith("app", "unknown", "software",
			model.Component{Name: "REST Gateway", Type: "gateway"})

		points := l.ProposeTouchpoints(bio, app)
		require.Len(t, points, 1)
		tp := points[0]
		assert.Equal(t, "interface", tp.Role)
		assert.InDelta(t, 0.6, tp.Confidence, 1e-9)
		assert.Contains(t, tp.Metaphor, "membrane exchange maps to an API boundary")
	})

	t.Run("Name-keyword fallback scores low", func(t *testing.T) {
		bio := archWith("body", "unknown", "biological",
			model.Component{Name: "Heart", Type: "circulatory pump"})
		app := archWith("app", "unknown", "software",
			model.Component{Name: "Message Queue", Type: "component"})

		points := l.ProposeTouchpoints(bio, app)
		require.Len(t, points, 1)
		assert.Equal(t, "transport", points[0].Role)
		assert.InDelta(t, 0.3, points[0].Confidence, 1e-9)
		assert.NotEmpty(t, points[0].Metaphor)
	})

	t.Run("Shared name tokens disqualify a pairing", func(t *testing.T) {
		a := archWith("a", "unknown", "mechanical",
			model.Component{Name: "Flow Control", Type: "regulator"})
		b := archWith("b", "unknown", "software",
			model.Component{Name: "Control Loop", Type: "controller"})

		assert.Empty(t, l.ProposeTouchpoints(a, b))
	})

	t.Run("Unmapped domain pairs fall back to a generic metaphor", func(t *testing.T) {
		a := archWith("a", "unknown", "chemical",
			model.Component{Name: "Buffer Tank", Type: "storage"})
		b := archWith("b", "unknown", "software",
			model.Component{Name: "Write Cache", Type: "cache"})

		points := l.ProposeTouchpoints(a, b)
		require.Len(t, points, 1)
		assert.Contains(t, points[0].Metaphor, "storage")
		assert.NotEmpty(t, points[0].Metaphor)
	})

	t.Run("Output is capped and ranked", func(t *testing.T) {
		capped := NewLinker(nil, 2)

		bio := archWith("body", "unknown", "biological",
			model.Component{Name: "Kidney", Type: "regulator"},
			model.Component{Name: "Vein", Type: "transport vessel"},
			model.Component{Name: "Liver", Type: "chemical processor"})
		app := archWith("app", "unknown", "software",
			model.Component{Name: "Rate Limiter", Type: "regulator"},
			model.Component{Name: "Queue", Type: "transport"},
			model.Component{Name: "ETL Job", Type: "processor"})

		points := capped.ProposeTouchpoints(bio, app)
		require.Len(t, points, 2)
		assert.GreaterOrEqual(t, points[0].Confidence, points[1].Confidence)
		for _, tp := range points {
			assert.NotEmpty(t, tp.Metaphor)
			assert.False(t, strings.EqualFold(tp.ComponentA, tp.ComponentB))
		}
	})
}
