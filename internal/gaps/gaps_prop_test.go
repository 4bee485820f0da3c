package gaps

import (
	"fmt"
	"testing"

	"archlens/internal/model"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// Building the same inputs twice must mine the same gaps, whatever the edge
// soup looks like.
func TestDetect_DeterministicProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties := gopter.NewProperties(params)

	properties.Property("detection is deterministic and idempotent", prop.ForAll(
		func(sources, targets []int) bool {
			arch := model.Architecture{
				ID: "run", Name: "run",
				Framework: model.DefaultFramework,
				Domain:    model.DefaultDomain,
			}
			for i := 0; i <= 5; i++ {
				arch.Components = append(arch.Components, model.Component{
					Name: fmt.Sprintf("c%d", i), Type: model.DefaultComponentType,
				})
			}
			count := len(sources)
			if len(targets) < count {
				count = len(targets)
			}
			for i := 0; i < count; i++ {
				arch.Relationships = append(arch.Relationships, model.Relationship{
					Source: fmt.Sprintf("c%d", sources[i]),
					Target: fmt.Sprintf("c%d", targets[i]),
					Kind:   model.DefaultRelationKind,
				})
			}

			first, warnFirst := BuildMatrix([]model.Architecture{arch})
			second, warnSecond := BuildMatrix([]model.Architecture{arch})
			if !assert.ObjectsAreEqual(warnFirst, warnSecond) {
				return false
			}
			if !assert.ObjectsAreEqual(first.Nodes, second.Nodes) || !assert.ObjectsAreEqual(first.Edges, second.Edges) {
				return false
			}
			r1 := Detect(first)
			r2 := Detect(first)
			r3 := Detect(second)
			return assert.ObjectsAreEqual(r1, r2) && assert.ObjectsAreEqual(r1, r3)
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
