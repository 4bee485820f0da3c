// Package gaps merges a run's architectures into one directed adjacency
// matrix and mines it for orphans, cycles, interface coverage holes, and the
// profile of a system nobody modeled.
package gaps

import (
	"fmt"
	"sort"
	"strings"

	"archlens/internal/model"
)

// Edge is a resolved, directed relationship between two matrix nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// Matrix is the merged graph. Nodes are architecture ids plus qualified
// component ids ("archID/componentName"); both lists are sorted and deduped.
type Matrix struct {
	Nodes []string
	Edges []Edge

	out     map[string][]string
	in      map[string][]string
	archIDs []string
	archOf  map[string]string
	wired   map[string]bool
	comps   []matrixComponent
}

type matrixComponent struct {
	qid        string
	arch       string
	foldedName string
	foldedType string
	provides   []string
	requires   []string
}

// BuildMatrix merges all architectures into a single matrix. Relationship
// endpoints resolve through a fixed chain: exact architecture id, qualified
// component id inside the declaring architecture, then a component name that
// is unique across the run. Endpoints that resolve nowhere drop the edge with
// an edge_dropped warning; the matrix itself always builds.
func BuildMatrix(architectures []model.Architecture) (*Matrix, []model.Warning) {
	m := &Matrix{
		out:    make(map[string][]string),
		in:     make(map[string][]string),
		archOf: make(map[string]string),
		wired:  make(map[string]bool),
	}
	var warnings []model.Warning

	nodeSet := make(map[string]bool)
	archSet := make(map[string]bool)
	byName := make(map[string][]string)

	kept := architectures[:0:0]
	for _, arch := range architectures {
		if arch.ID == "" {
			warnings = append(warnings, model.NewWarning("architecture_skipped", "matrix", model.SeverityWarning,
				"architecture without an id cannot join the matrix", 0))
			continue
		}
		if archSet[arch.ID] {
			warnings = append(warnings, model.NewWarning("duplicate_architecture", arch.ID, model.SeverityWarning,
				fmt.Sprintf("architecture %q repeats an id already in the matrix; the later record is ignored", arch.ID), 0))
			continue
		}
		kept = append(kept, arch)
		archSet[arch.ID] = true
		m.archIDs = append(m.archIDs, arch.ID)
		nodeSet[arch.ID] = true
		for _, comp := range arch.Components {
			qid := arch.ID + "/" + comp.Name
			if nodeSet[qid] {
				continue
			}
			nodeSet[qid] = true
			m.archOf[qid] = arch.ID
			byName[foldName(comp.Name)] = append(byName[foldName(comp.Name)], qid)
			m.comps = append(m.comps, matrixComponent{
				qid:        qid,
				arch:       arch.ID,
				foldedName: foldName(comp.Name),
				foldedType: foldName(comp.Type),
				provides:   comp.Provides(),
				requires:   comp.Requires(),
			})
		}
	}

	edgeSet := make(map[string]bool)
	for _, arch := range kept {
		for _, rel := range arch.Relationships {
			source, okS := resolveEndpoint(rel.Source, arch.ID, archSet, nodeSet, byName)
			target, okT := resolveEndpoint(rel.Target, arch.ID, archSet, nodeSet, byName)
			if !okS || !okT {
				missing := rel.Source
				if okS {
					missing = rel.Target
				}
				warnings = append(warnings, model.NewWarning("edge_dropped", arch.ID, model.SeverityWarning,
					fmt.Sprintf("relationship %s -> %s references %q which resolves to no node", rel.Source, rel.Target, missing), 0))
				continue
			}
			if _, isComp := m.archOf[source]; isComp {
				m.wired[arch.ID] = true
			} else if _, isComp := m.archOf[target]; isComp {
				m.wired[arch.ID] = true
			}
			key := source + "\x00" + target
			if edgeSet[key] {
				continue
			}
			edgeSet[key] = true
			m.Edges = append(m.Edges, Edge{Source: source, Target: target, Kind: rel.Kind})
			m.out[source] = append(m.out[source], target)
			m.in[target] = append(m.in[target], source)
		}
	}

	for node := range nodeSet {
		m.Nodes = append(m.Nodes, node)
	}
	sort.Strings(m.Nodes)
	sort.Strings(m.archIDs)
	for node := range m.out {
		sort.Strings(m.out[node])
	}
	for node := range m.in {
		sort.Strings(m.in[node])
	}
	sort.Slice(m.Edges, func(i, j int) bool {
		if m.Edges[i].Source != m.Edges[j].Source {
			return m.Edges[i].Source < m.Edges[j].Source
		}
		return m.Edges[i].Target < m.Edges[j].Target
	})
	sort.Slice(m.comps, func(i, j int) bool { return m.comps[i].qid < m.comps[j].qid })
	return m, warnings
}

func resolveEndpoint(endpoint, owner string, archSet, nodeSet map[string]bool, byName map[string][]string) (string, bool) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false
	}
	if archSet[endpoint] {
		return endpoint, true
	}
	if qualified := owner + "/" + endpoint; nodeSet[qualified] {
		return qualified, true
	}
	if ids := byName[foldName(endpoint)]; len(ids) == 1 {
		return ids[0], true
	}
	return "", false
}

// ArchitectureCount reports how many architecture-level nodes the matrix
// holds.
func (m *Matrix) ArchitectureCount() int { return len(m.archIDs) }

// ownerOf maps any node to its architecture; architecture nodes own
// themselves.
func (m *Matrix) ownerOf(node string) string {
	if arch, ok := m.archOf[node]; ok {
		return arch
	}
	return node
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
