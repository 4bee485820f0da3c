package main

import (
	"context"
	"fmt"
	"log"

	"archlens/internal/analysis"
	"archlens/internal/causality"
	"archlens/internal/config"
	"archlens/internal/hierarchy"
	"archlens/internal/linking"
	"archlens/internal/loader"
	"archlens/internal/report"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Load and normalize the input documents
	fmt.Printf("🚀 Loading architecture descriptions from %v...\n", cfg.Inputs.Paths)
	res, err := loader.NewLoader().Load(cfg.Inputs.Paths)
	if err != nil {
		log.Fatalf("Failed to load inputs: %v", err)
	}
	fmt.Printf("✅ Normalized %d architecture(s) from %d file(s)\n", len(res.Architectures), len(res.Inputs))

	// 3. Build the analyzers from config
	vocab := causality.Vocabulary{
		EmitterKeywords:   cfg.Analysis.EmitterKeywords,
		ResponderKeywords: cfg.Analysis.ResponderKeywords,
	}
	runner := analysis.NewRunner(
		causality.NewAnalyzer(vocab, cfg.Analysis.MinStrength),
		hierarchy.NewClassifier(hierarchy.DefaultProfile()),
		linking.NewLinker(linking.DefaultRoleRules(), cfg.Analysis.MaxTouchpoints),
		cfg.Analysis.Parallelism,
	)

	// 4. Run every analyzer
	fmt.Println("🔗 Analyzing correlations, hierarchy, gaps, and creative links...")
	out, err := runner.Run(ctx, res.Architectures, res.Warnings)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	// 5. Assemble and render the report
	r := report.NewRunReport("demo")
	inputs := make([]report.InputFile, 0, len(res.Inputs))
	for _, in := range res.Inputs {
		inputs = append(inputs, report.InputFile{Path: in.Path, Architectures: in.Architectures})
	}
	r.AttachInputs(inputs)
	r.AttachArchitectures(res.Architectures, out.Hierarchy)
	r.AttachCorrelations(out.Correlations)
	r.AttachHypotheses(out.Hypotheses)
	r.AttachHierarchy(out.Hierarchy)
	r.AttachGaps(out.Gaps)
	r.AttachLinks(out.Links)
	r.AttachSignals(out.Warnings)
	r.Finalize()

	fmt.Print(report.RenderText(r))
	fmt.Println("✨ Done. Use the archlens CLI for markdown/JSON output and run history.")
}
