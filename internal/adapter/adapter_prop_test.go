package adapter

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Every architecture the adapter emits must satisfy the structural component
// invariant, no matter how string-heavy the source shape is. This is the
// regression property for the bare-string component defect class.
func TestNormalize_ComponentInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	structurallyClosed := func(docs ...any) bool {
		for _, doc := range docs {
			archs, _, err := Normalize(doc, "prop.json")
			if err != nil {
				return false
			}
			for _, a := range archs {
				if a.ID == "" || a.Framework == "" || a.Domain == "" {
					return false
				}
				for _, c := range a.Components {
					if c.Name == "" || c.Type == "" {
						return false
					}
				}
			}
		}
		return true
	}

	properties.Property("capability label lists are always lifted", prop.ForAll(
		func(id string, labels []string) bool {
			caps := make([]any, 0, len(labels))
			for _, l := range labels {
				caps = append(caps, l)
			}
			doc := map[string]any{"id": id, "capabilities": caps}
			return structurallyClosed(doc)
		},
		gen.Identifier(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("bare graph nodes are always lifted", prop.ForAll(
		func(labels []string) bool {
			nodes := make([]any, 0, len(labels))
			for _, l := range labels {
				nodes = append(nodes, l)
			}
			doc := map[string]any{"nodes": nodes, "edges": []any{}}
			return structurallyClosed(doc)
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.Property("mixed component lists never leak raw strings", prop.ForAll(
		func(id string, names []string, labels []string) bool {
			comps := make([]any, 0, len(names)+len(labels))
			for _, n := range names {
				comps = append(comps, map[string]any{"name": n})
			}
			for _, l := range labels {
				comps = append(comps, l)
			}
			doc := map[string]any{"id": id, "components": comps}
			return structurallyClosed(doc)
		},
		gen.Identifier(),
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
