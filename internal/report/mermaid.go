package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"archlens/internal/causality"
	"archlens/internal/hierarchy"
	"archlens/internal/model"
)

// MermaidGenerator creates diagrams from analyzer outputs.
type MermaidGenerator struct{}

// GenerateCorrelationGraph draws architectures as nodes and their strongest
// correlation as a weighted edge. Edges are capped to keep the diagram
// readable.
func (m *MermaidGenerator) GenerateCorrelationGraph(correlations []causality.CorrelationResult) string {
	type pairEdge struct {
		pair     model.Pair
		strength float64
	}
	strongest := map[model.Pair]float64{}
	for _, c := range correlations {
		if c.Strength > strongest[c.Pair] {
			strongest[c.Pair] = c.Strength
		}
	}

	nodeSet := map[string]bool{}
	edges := make([]pairEdge, 0, len(strongest))
	for pair, strength := range strongest {
		nodeSet[pair.A] = true
		nodeSet[pair.B] = true
		if strength > 0 {
			edges = append(edges, pairEdge{pair: pair, strength: strength})
		}
	}
	nodes := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].strength != edges[j].strength {
			return edges[i].strength > edges[j].strength
		}
		if edges[i].pair.A != edges[j].pair.A {
			return edges[i].pair.A < edges[j].pair.A
		}
		return edges[i].pair.B < edges[j].pair.B
	})
	if len(edges) > 12 {
		edges = edges[:12]
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph LR\n")
	if len(nodes) == 0 {
		sb.WriteString("    none[\"no correlations\"]\n")
	}
	for _, n := range nodes {
		sb.WriteString(fmt.Sprintf("    %s[%q]\n", sanitizeMermaidID(n), n))
	}
	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("    %s ---|%.2f| %s\n",
			sanitizeMermaidID(e.pair.A), e.strength, sanitizeMermaidID(e.pair.B)))
	}
	sb.WriteString("```\n")
	return sb.String()
}

// GenerateHierarchyDiagram attaches each architecture to its abstraction
// level, widest level first, and marks levels whose parent nobody modeled.
func (m *MermaidGenerator) GenerateHierarchyDiagram(classifications []hierarchy.Classification) string {
	byLevel := map[string][]string{}
	missing := map[string]bool{}
	for _, cl := range classifications {
		byLevel[cl.Level] = append(byLevel[cl.Level], cl.ArchitectureID)
		if cl.MissingParent {
			missing[cl.Level] = true
		}
	}
	levelOrder := []string{
		hierarchy.LevelSystemOfSystems,
		hierarchy.LevelSystem,
		hierarchy.LevelComponent,
		hierarchy.LevelUnknown,
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph TD\n")
	drewMissing := false
	for _, level := range levelOrder {
		ids := byLevel[level]
		if len(ids) == 0 {
			continue
		}
		sort.Strings(ids)
		levelID := "lvl_" + sanitizeMermaidID(level)
		sb.WriteString(fmt.Sprintf("    %s[%q]\n", levelID, level))
		for _, id := range ids {
			sb.WriteString(fmt.Sprintf("    %s[%q] --> %s\n", sanitizeMermaidID(id), id, levelID))
		}
		if missing[level] {
			if !drewMissing {
				sb.WriteString("    missing((\"missing parent level\"))\n")
				drewMissing = true
			}
			sb.WriteString(fmt.Sprintf("    %s -.-> missing\n", levelID))
		}
	}
	if len(classifications) == 0 {
		sb.WriteString("    none[\"no architectures\"]\n")
	}
	sb.WriteString("```\n")
	return sb.String()
}

func sanitizeMermaidID(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return "node"
	}
	re := regexp.MustCompile(`[^a-z0-9_]`)
	v = re.ReplaceAllString(strings.ReplaceAll(v, "-", "_"), "_")
	if v == "" {
		return "node"
	}
	if v[0] >= '0' && v[0] <= '9' {
		v = "n_" + v
	}
	return v
}
