// Package report assembles analyzer outputs into the persistent run artifact
// and renders it for humans.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"archlens/internal/causality"
	"archlens/internal/gaps"
	"archlens/internal/hierarchy"
	"archlens/internal/linking"
	"archlens/internal/model"
)

// InputFile records one analyzed source file.
type InputFile struct {
	Path          string `json:"path"`
	Architectures int    `json:"architectures"`
}

// ArchitectureSummary is the per-architecture header row of a report.
type ArchitectureSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Domain          string  `json:"domain"`
	Framework       string  `json:"framework"`
	Level           string  `json:"level"`
	LevelConfidence float64 `json:"level_confidence"`
	ComponentCount  int     `json:"component_count"`
}

// Summary aggregates counts and mean confidences over the whole run.
type Summary struct {
	ArchitectureCount        int            `json:"architecture_count"`
	PairCount                int            `json:"pair_count"`
	CorrelationCount         int            `json:"correlation_count"`
	HypothesisCount          int            `json:"hypothesis_count"`
	OrphanCount              int            `json:"orphan_count"`
	CycleCount               int            `json:"cycle_count"`
	InterfaceGapCount        int            `json:"interface_gap_count"`
	TouchpointCount          int            `json:"touchpoint_count"`
	MeanHypothesisConfidence float64        `json:"mean_hypothesis_confidence"`
	MeanLevelConfidence      float64        `json:"mean_level_confidence"`
	SignalsBySeverity        map[string]int `json:"signals_by_severity"`
}

// RunReport is the complete artifact for one analysis run.
type RunReport struct {
	Version       string                        `json:"version"`
	RunID         string                        `json:"run_id"`
	Mode          string                        `json:"mode"`
	GeneratedAt   string                        `json:"generated_at"`
	Inputs        []InputFile                   `json:"inputs"`
	Architectures []ArchitectureSummary         `json:"architectures"`
	Correlations  []causality.CorrelationResult `json:"correlations"`
	Hypotheses    []causality.CausalHypothesis  `json:"hypotheses"`
	Hierarchy     []hierarchy.Classification    `json:"hierarchy"`
	Gaps          gaps.GapReport                `json:"gaps"`
	Links         []linking.LinkingOpportunity  `json:"links"`
	Signals       []model.Warning               `json:"signals"`
	Narrative     string                        `json:"narrative,omitempty"`
	Summary       Summary                       `json:"summary"`
}

// NewRunReport starts an empty report with a fresh run id.
func NewRunReport(mode string) *RunReport {
	return &RunReport{
		Version:       "v1",
		RunID:         uuid.NewString(),
		Mode:          mode,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Inputs:        []InputFile{},
		Architectures: []ArchitectureSummary{},
		Correlations:  []causality.CorrelationResult{},
		Hypotheses:    []causality.CausalHypothesis{},
		Hierarchy:     []hierarchy.Classification{},
		Gaps: gaps.GapReport{
			Orphans:       []string{},
			Cycles:        [][]string{},
			InterfaceGaps: []gaps.InterfaceGap{},
		},
		Links:   []linking.LinkingOpportunity{},
		Signals: []model.Warning{},
	}
}

// AttachInputs records the analyzed files.
func (r *RunReport) AttachInputs(inputs []InputFile) {
	if r == nil {
		return
	}
	r.Inputs = append(r.Inputs, inputs...)
}

// AttachArchitectures builds the summary rows, pulling each architecture's
// level from its classification when one exists.
func (r *RunReport) AttachArchitectures(architectures []model.Architecture, classifications []hierarchy.Classification) {
	if r == nil {
		return
	}
	levels := make(map[string]hierarchy.Classification, len(classifications))
	for _, cl := range classifications {
		levels[cl.ArchitectureID] = cl
	}
	for _, arch := range architectures {
		summary := ArchitectureSummary{
			ID:             arch.ID,
			Name:           arch.Name,
			Domain:         arch.Domain,
			Framework:      arch.Framework,
			Level:          hierarchy.LevelUnknown,
			ComponentCount: len(arch.Components),
		}
		if cl, ok := levels[arch.ID]; ok {
			summary.Level = cl.Level
			summary.LevelConfidence = cl.Confidence
		}
		r.Architectures = append(r.Architectures, summary)
	}
}

// AttachCorrelations adds pairwise correlation results.
func (r *RunReport) AttachCorrelations(correlations []causality.CorrelationResult) {
	if r == nil {
		return
	}
	r.Correlations = append(r.Correlations, correlations...)
}

// AttachHypotheses adds causal hypotheses.
func (r *RunReport) AttachHypotheses(hypotheses []causality.CausalHypothesis) {
	if r == nil {
		return
	}
	r.Hypotheses = append(r.Hypotheses, hypotheses...)
}

// AttachHierarchy adds level classifications.
func (r *RunReport) AttachHierarchy(classifications []hierarchy.Classification) {
	if r == nil {
		return
	}
	r.Hierarchy = append(r.Hierarchy, classifications...)
}

// AttachGaps sets the gap report.
func (r *RunReport) AttachGaps(gapReport gaps.GapReport) {
	if r == nil {
		return
	}
	r.Gaps = gapReport
}

// AttachLinks adds linking opportunities.
func (r *RunReport) AttachLinks(links []linking.LinkingOpportunity) {
	if r == nil {
		return
	}
	r.Links = append(r.Links, links...)
}

// AttachSignals adds run warnings; malformed entries are dropped.
func (r *RunReport) AttachSignals(signals []model.Warning) {
	if r == nil {
		return
	}
	for _, s := range signals {
		if s.Code == "" || s.Source == "" || s.Message == "" {
			continue
		}
		r.Signals = append(r.Signals, s)
	}
}

// Finalize sorts signals by severity, refreshes the timestamp, and computes
// the summary block.
func (r *RunReport) Finalize() {
	if r == nil {
		return
	}
	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	model.SortWarnings(r.Signals)

	severityCount := map[string]int{
		model.SeverityCritical: 0,
		model.SeverityWarning:  0,
		model.SeverityInfo:     0,
	}
	for _, s := range r.Signals {
		severityCount[s.Severity]++
	}

	touchpoints := 0
	for _, link := range r.Links {
		touchpoints += len(link.Touchpoints)
	}

	meanHypothesis := 0.0
	if len(r.Hypotheses) > 0 {
		total := 0.0
		for _, h := range r.Hypotheses {
			total += h.Confidence
		}
		meanHypothesis = total / float64(len(r.Hypotheses))
	}
	meanLevel := 0.0
	if len(r.Hierarchy) > 0 {
		total := 0.0
		for _, cl := range r.Hierarchy {
			total += cl.Confidence
		}
		meanLevel = total / float64(len(r.Hierarchy))
	}

	r.Summary = Summary{
		ArchitectureCount:        len(r.Architectures),
		PairCount:                len(r.Links),
		CorrelationCount:         len(r.Correlations),
		HypothesisCount:          len(r.Hypotheses),
		OrphanCount:              len(r.Gaps.Orphans),
		CycleCount:               len(r.Gaps.Cycles),
		InterfaceGapCount:        len(r.Gaps.InterfaceGaps),
		TouchpointCount:          touchpoints,
		MeanHypothesisConfidence: meanHypothesis,
		MeanLevelConfidence:      meanLevel,
		SignalsBySeverity:        severityCount,
	}
}

// Save finalizes, validates against the report schema when one is
// resolvable, and writes the artifact as indented JSON.
func (r *RunReport) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := validateReportWithSchema(path, r); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}
