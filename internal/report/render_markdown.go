package report

import (
	"fmt"
	"strings"
)

// RenderMarkdown writes the report as a markdown document with mermaid
// diagrams for the correlation graph and the hierarchy.
func RenderMarkdown(r *RunReport) string {
	mermaid := &MermaidGenerator{}
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Architecture Analysis Report\n\n")
	fmt.Fprintf(&sb, "Run `%s` (%s), generated %s.\n\n", r.RunID, r.Mode, r.GeneratedAt)
	sb.WriteString("Auto-generated by `archlens`.\n\n")

	sb.WriteString("## Architectures\n\n")
	if len(r.Architectures) == 0 {
		sb.WriteString("No architectures were loaded.\n\n")
	} else {
		sb.WriteString("| ID | Name | Level | Confidence | Domain | Framework | Components |\n")
		sb.WriteString("|---|---|---|---|---|---|---|\n")
		for _, a := range r.Architectures {
			fmt.Fprintf(&sb, "| %s | %s | %s | %.2f | %s | %s | %d |\n",
				a.ID, a.Name, a.Level, a.LevelConfidence, a.Domain, a.Framework, a.ComponentCount)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Correlations\n\n")
	sb.WriteString(mermaid.GenerateCorrelationGraph(r.Correlations))
	sb.WriteString("\n")
	if correlations := topCorrelations(r.Correlations, renderTopN); len(correlations) > 0 {
		sb.WriteString("| Pair | Kind | Strength |\n|---|---|---|\n")
		for _, c := range correlations {
			fmt.Fprintf(&sb, "| %s / %s | %s | %.2f |\n", c.Pair.A, c.Pair.B, c.Kind, c.Strength)
		}
		sb.WriteString("\n")
	}

	if len(r.Hypotheses) > 0 {
		sb.WriteString("## Causal Hypotheses\n\n")
		limit := len(r.Hypotheses)
		if limit > renderTopN {
			limit = renderTopN
		}
		for _, h := range r.Hypotheses[:limit] {
			fmt.Fprintf(&sb, "### %s / %s: %s (%.2f)\n\n", h.Pair.A, h.Pair.B, h.Relation, h.Confidence)
			for _, line := range h.Rationale {
				fmt.Fprintf(&sb, "- %s\n", line)
			}
			if len(h.Validation) > 0 {
				sb.WriteString("\nSuggested validation:\n")
				for _, step := range h.Validation {
					fmt.Fprintf(&sb, "- %s\n", step)
				}
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("## Hierarchy\n\n")
	sb.WriteString(mermaid.GenerateHierarchyDiagram(r.Hierarchy))
	sb.WriteString("\n")
	for _, cl := range r.Hierarchy {
		flag := ""
		if cl.MissingParent {
			flag = " (missing parent level)"
		}
		fmt.Fprintf(&sb, "- **%s**: %s (%.2f)%s\n", cl.ArchitectureID, cl.Level, cl.Confidence, flag)
	}
	if len(r.Hierarchy) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("## Gaps\n\n")
	wroteGap := false
	if len(r.Gaps.Orphans) > 0 {
		fmt.Fprintf(&sb, "- Orphans: %s\n", strings.Join(r.Gaps.Orphans, ", "))
		wroteGap = true
	}
	for _, cycle := range r.Gaps.Cycles {
		fmt.Fprintf(&sb, "- Cycle: `%s`\n", strings.Join(cycle, " -> "))
		wroteGap = true
	}
	for _, gap := range r.Gaps.InterfaceGaps {
		fmt.Fprintf(&sb, "- Interface `%s` has no provider (required by `%s`)\n", gap.Interface, gap.RequiredBy)
		wroteGap = true
	}
	if p := r.Gaps.MissingSystemProfile; p != nil {
		fmt.Fprintf(&sb, "- Missing system profile: **%s** (confidence %.2f)\n", strings.Join(p.Tags, ", "), p.Confidence)
		for _, indicator := range p.Indicators {
			fmt.Fprintf(&sb, "  - %s\n", indicator)
		}
		wroteGap = true
	}
	if !wroteGap {
		sb.WriteString("None detected.\n")
	}
	sb.WriteString("\n")

	if len(r.Links) > 0 {
		sb.WriteString("## Creative Links\n\n")
		for _, link := range r.Links {
			fmt.Fprintf(&sb, "### %s / %s (%s)\n\n", link.Pair.A, link.Pair.B, link.Orthogonality)
			if len(link.Touchpoints) == 0 {
				sb.WriteString("No touchpoints proposed.\n\n")
				continue
			}
			for _, tp := range link.Touchpoints {
				fmt.Fprintf(&sb, "- **%s** ~ **%s** (%s, %.2f): %s\n",
					tp.ComponentA, tp.ComponentB, tp.Role, tp.Confidence, tp.Metaphor)
			}
			sb.WriteString("\n")
		}
	}

	if len(r.Signals) > 0 {
		sb.WriteString("## Signals\n\n")
		for _, s := range r.Signals {
			fmt.Fprintf(&sb, "- `[%s]` **%s** (%s): %s\n", s.Severity, s.Code, s.Source, s.Message)
		}
		sb.WriteString("\n")
	}

	if r.Narrative != "" {
		sb.WriteString("## Narrative\n\n")
		sb.WriteString(strings.TrimSpace(r.Narrative))
		sb.WriteString("\n")
	}
	return sb.String()
}
