package narrate

import (
	"fmt"
	"sort"
	"strings"

	"archlens/internal/causality"
	"archlens/internal/report"
)

// PromptBuilder constructs the narration prompt from report highlights.
type PromptBuilder struct{}

const promptTopFindings = 8

func (pb *PromptBuilder) BuildNarrativePrompt(r *report.RunReport) string {
	var sb strings.Builder
	sb.WriteString("Role: Systems Analyst. Task: Narrate the findings of a cross-architecture analysis run for an engineering audience.\n")

	if len(r.Architectures) > 0 {
		sb.WriteString("\nArchitectures:\n")
		for _, a := range r.Architectures {
			fmt.Fprintf(&sb, "- %s (%s, domain %s, framework %s): %d components, level %s\n",
				a.ID, a.Name, a.Domain, a.Framework, a.ComponentCount, a.Level)
		}
	}

	if correlations := strongestCorrelations(r, promptTopFindings); len(correlations) > 0 {
		sb.WriteString("\nStrongest correlations:\n")
		for _, c := range correlations {
			fmt.Fprintf(&sb, "- %s and %s: %s strength %.2f\n", c.Pair.A, c.Pair.B, c.Kind, c.Strength)
		}
	}

	if len(r.Hypotheses) > 0 {
		sb.WriteString("\nCausal hypotheses:\n")
		limit := len(r.Hypotheses)
		if limit > promptTopFindings {
			limit = promptTopFindings
		}
		for _, h := range r.Hypotheses[:limit] {
			fmt.Fprintf(&sb, "- %s vs %s: %s (confidence %.2f): %s\n",
				h.Pair.A, h.Pair.B, h.Relation, h.Confidence, strings.Join(h.Rationale, "; "))
		}
	}

	if len(r.Gaps.Orphans) > 0 || len(r.Gaps.Cycles) > 0 || len(r.Gaps.InterfaceGaps) > 0 {
		sb.WriteString("\nStructural gaps:\n")
		if len(r.Gaps.Orphans) > 0 {
			fmt.Fprintf(&sb, "- orphaned nodes: %s\n", strings.Join(r.Gaps.Orphans, ", "))
		}
		for _, cycle := range r.Gaps.Cycles {
			fmt.Fprintf(&sb, "- dependency cycle: %s\n", strings.Join(cycle, " -> "))
		}
		for _, gap := range r.Gaps.InterfaceGaps {
			fmt.Fprintf(&sb, "- interface %q required by %s has no provider\n", gap.Interface, gap.RequiredBy)
		}
	}
	if p := r.Gaps.MissingSystemProfile; p != nil {
		fmt.Fprintf(&sb, "- missing system indicators (%s) with confidence %.2f\n",
			strings.Join(p.Tags, ", "), p.Confidence)
	}

	for _, link := range r.Links {
		if len(link.Touchpoints) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\nCreative touchpoints between %s and %s:\n", link.Pair.A, link.Pair.B)
		for _, tp := range link.Touchpoints {
			fmt.Fprintf(&sb, "- %s ~ %s (%s role): %s\n", tp.ComponentA, tp.ComponentB, tp.Role, tp.Metaphor)
		}
	}

	sb.WriteString("\n**INSTRUCTION**:\n")
	sb.WriteString("Write 2-3 plain paragraphs. Lead with the strongest correlation and its most likely causal reading, then cover the structural risks (cycles, orphans, unprovided interfaces), and close with the most promising creative link. No headings, no bullet lists. Never invent findings that are not in the data above.\n")
	return sb.String()
}

func strongestCorrelations(r *report.RunReport, n int) []causality.CorrelationResult {
	filtered := make([]causality.CorrelationResult, 0, len(r.Correlations))
	for _, c := range r.Correlations {
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
