// Package analysis orchestrates every analyzer over one set of normalized
// architectures and collects their outputs into a single result.
package analysis

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"archlens/internal/causality"
	"archlens/internal/gaps"
	"archlens/internal/hierarchy"
	"archlens/internal/linking"
	"archlens/internal/model"
)

// EmptyInputError reports a run that produced nothing to analyze.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "no usable architectures were produced from the inputs"
}

// Result holds every analyzer's output for one run.
type Result struct {
	Correlations []causality.CorrelationResult
	Hypotheses   []causality.CausalHypothesis
	Hierarchy    []hierarchy.Classification
	Gaps         gaps.GapReport
	Links        []linking.LinkingOpportunity
	Warnings     []model.Warning
}

// Runner wires configured analyzer instances together. Analyzers never see
// each other's output.
type Runner struct {
	causality   *causality.Analyzer
	classifier  *hierarchy.Classifier
	linker      *linking.Linker
	parallelism int
}

// NewRunner builds a runner. A non-positive parallelism means one worker per
// CPU; 1 runs the pairwise work serially.
func NewRunner(an *causality.Analyzer, classifier *hierarchy.Classifier, linker *linking.Linker, parallelism int) *Runner {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &Runner{
		causality:   an,
		classifier:  classifier,
		linker:      linker,
		parallelism: parallelism,
	}
}

type pairJob struct {
	a model.Architecture
	b model.Architecture
}

// Run executes hierarchy and gap analysis over the whole set, then fans the
// pairwise analyzers out across a bounded worker pool. Output order is the
// lexicographic architecture-id pair order regardless of scheduling.
func (r *Runner) Run(ctx context.Context, architectures []model.Architecture, inputWarnings []model.Warning) (*Result, error) {
	if len(architectures) == 0 {
		return nil, &EmptyInputError{}
	}

	result := &Result{Warnings: append([]model.Warning{}, inputWarnings...)}
	result.Hierarchy = r.classifier.Classify(architectures)

	matrix, matrixWarnings := gaps.BuildMatrix(architectures)
	result.Warnings = append(result.Warnings, matrixWarnings...)
	result.Gaps = gaps.Detect(matrix)

	if len(architectures) < 2 {
		result.Warnings = append(result.Warnings, model.NewWarning(
			"insufficient_pairs", "runner", model.SeverityInfo,
			"only one architecture was loaded; pairwise analyzers were skipped", 1))
		return result, nil
	}

	ordered := append([]model.Architecture{}, architectures...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var jobs []pairJob
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			jobs = append(jobs, pairJob{a: ordered[i], b: ordered[j]})
		}
	}

	correlationSlots := make([][]causality.CorrelationResult, len(jobs))
	hypothesisSlots := make([][]causality.CausalHypothesis, len(jobs))
	linkSlots := make([]linking.LinkingOpportunity, len(jobs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(r.parallelism)
	for k := range jobs {
		group.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			job := jobs[k]
			correlations := r.causality.DetectCorrelation(job.a, job.b)
			correlationSlots[k] = correlations
			hypothesisSlots[k] = r.causality.GenerateHypotheses(job.a, job.b, correlations)
			linkSlots[k] = r.linker.Link(job.a, job.b)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("pairwise analysis: %w", err)
	}

	for k := range jobs {
		result.Correlations = append(result.Correlations, correlationSlots[k]...)
		result.Hypotheses = append(result.Hypotheses, hypothesisSlots[k]...)
		result.Links = append(result.Links, linkSlots[k])
	}
	return result, nil
}
