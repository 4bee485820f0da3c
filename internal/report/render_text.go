package report

import (
	"fmt"
	"sort"
	"strings"

	"archlens/internal/causality"
)

const renderTopN = 10

// RenderText writes the report as a plain terminal summary.
func RenderText(r *RunReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "archlens run %s (%s)\n", r.RunID, r.Mode)
	fmt.Fprintf(&sb, "generated: %s\n", r.GeneratedAt)
	fmt.Fprintf(&sb, "inputs: %d file(s), %d architecture(s)\n", len(r.Inputs), len(r.Architectures))

	if len(r.Architectures) > 0 {
		sb.WriteString("\nARCHITECTURES\n")
		for _, a := range r.Architectures {
			fmt.Fprintf(&sb, "  %-24s %-18s level=%s (%.2f) domain=%s framework=%s components=%d\n",
				a.ID, a.Name, a.Level, a.LevelConfidence, a.Domain, a.Framework, a.ComponentCount)
		}
	}

	if correlations := topCorrelations(r.Correlations, renderTopN); len(correlations) > 0 {
		sb.WriteString("\nCORRELATIONS\n")
		for _, c := range correlations {
			fmt.Fprintf(&sb, "  %s <-> %s  %-10s strength=%.2f\n", c.Pair.A, c.Pair.B, c.Kind, c.Strength)
		}
	}

	if len(r.Hypotheses) > 0 {
		sb.WriteString("\nCAUSAL HYPOTHESES\n")
		limit := len(r.Hypotheses)
		if limit > renderTopN {
			limit = renderTopN
		}
		for _, h := range r.Hypotheses[:limit] {
			fmt.Fprintf(&sb, "  %s / %s  %-17s confidence=%.2f\n", h.Pair.A, h.Pair.B, h.Relation, h.Confidence)
			for _, line := range h.Rationale {
				fmt.Fprintf(&sb, "      - %s\n", line)
			}
		}
	}

	if len(r.Hierarchy) > 0 {
		sb.WriteString("\nHIERARCHY\n")
		for _, cl := range r.Hierarchy {
			flag := ""
			if cl.MissingParent {
				flag = "  [missing parent]"
			}
			fmt.Fprintf(&sb, "  %-24s %s (%.2f) peers=%s%s\n",
				cl.ArchitectureID, cl.Level, cl.Confidence, strings.Join(cl.Peers, ","), flag)
		}
	}

	sb.WriteString("\nGAPS\n")
	if len(r.Gaps.Orphans) > 0 {
		fmt.Fprintf(&sb, "  orphans: %s\n", strings.Join(r.Gaps.Orphans, ", "))
	}
	for _, cycle := range r.Gaps.Cycles {
		fmt.Fprintf(&sb, "  cycle: %s\n", strings.Join(cycle, " -> "))
	}
	for _, gap := range r.Gaps.InterfaceGaps {
		fmt.Fprintf(&sb, "  interface %q has no provider (required by %s)\n", gap.Interface, gap.RequiredBy)
	}
	if p := r.Gaps.MissingSystemProfile; p != nil {
		fmt.Fprintf(&sb, "  missing system profile: %s (confidence %.2f)\n", strings.Join(p.Tags, ", "), p.Confidence)
		for _, indicator := range p.Indicators {
			fmt.Fprintf(&sb, "      - %s\n", indicator)
		}
	}
	if len(r.Gaps.Orphans) == 0 && len(r.Gaps.Cycles) == 0 && len(r.Gaps.InterfaceGaps) == 0 && r.Gaps.MissingSystemProfile == nil {
		sb.WriteString("  none detected\n")
	}

	if len(r.Links) > 0 {
		sb.WriteString("\nCREATIVE LINKS\n")
		for _, link := range r.Links {
			fmt.Fprintf(&sb, "  %s / %s  %s\n", link.Pair.A, link.Pair.B, link.Orthogonality)
			for _, tp := range link.Touchpoints {
				fmt.Fprintf(&sb, "      - %s ~ %s (%s, %.2f): %s\n",
					tp.ComponentA, tp.ComponentB, tp.Role, tp.Confidence, tp.Metaphor)
			}
		}
	}

	if len(r.Signals) > 0 {
		sb.WriteString("\nSIGNALS\n")
		for _, s := range r.Signals {
			fmt.Fprintf(&sb, "  [%s] %s %s: %s\n", s.Severity, s.Code, s.Source, s.Message)
		}
	}

	if r.Narrative != "" {
		sb.WriteString("\nNARRATIVE\n")
		sb.WriteString(indentBlock(r.Narrative, "  "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// topCorrelations returns the strongest non-zero correlations, at most n,
// without mutating the input.
func topCorrelations(correlations []causality.CorrelationResult, n int) []causality.CorrelationResult {
	filtered := make([]causality.CorrelationResult, 0, len(correlations))
	for _, c := range correlations {
		if c.Strength > 0 {
			filtered = append(filtered, c)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Strength > filtered[j].Strength })
	if len(filtered) > n {
		filtered = filtered[:n]
	}
	return filtered
}

func indentBlock(text, prefix string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
