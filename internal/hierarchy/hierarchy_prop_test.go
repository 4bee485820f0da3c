package hierarchy

import (
	"fmt"
	"sort"
	"testing"

	"archlens/internal/model"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Peer groups must partition every run: reflexive, symmetric, transitive,
// with identical flags inside one group.
func TestClassify_PeerPartitionProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties := gopter.NewProperties(params)

	levelGen := gen.OneConstOf(LevelComponent, LevelSystem, LevelSystemOfSystems, "")

	properties.Property("peer-of is an equivalence relation", prop.ForAll(
		func(levels []string) bool {
			archs := make([]model.Architecture, len(levels))
			for i, declared := range levels {
				archs[i] = model.Architecture{
					ID:            fmt.Sprintf("arch-%02d", i),
					Name:          fmt.Sprintf("Arch %02d", i),
					Framework:     model.DefaultFramework,
					Domain:        model.DefaultDomain,
					DeclaredLevel: declared,
				}
			}

			out := NewClassifier(Profile{}).Classify(archs)
			if len(out) != len(archs) {
				return false
			}
			for i := range out {
				if !sort.StringsAreSorted(out[i].Peers) {
					return false
				}
				if !containsID(out[i].Peers, out[i].ArchitectureID) {
					return false
				}
				for j := range out {
					sameLevel := out[i].Level == out[j].Level
					if sameLevel != containsID(out[i].Peers, out[j].ArchitectureID) {
						return false
					}
					if sameLevel && out[i].MissingParent != out[j].MissingParent {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(levelGen),
	))

	properties.TestingRun(t)
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
