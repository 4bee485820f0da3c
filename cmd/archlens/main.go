package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"archlens/internal/analysis"
	"archlens/internal/causality"
	"archlens/internal/config"
	"archlens/internal/hierarchy"
	"archlens/internal/linking"
	"archlens/internal/loader"
	"archlens/internal/narrate"
	"archlens/internal/report"
	"archlens/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "archlens",
		Short: "Cross-architecture correlation and gap analysis",
	}
	configPath string
	dbPath     string

	outPath     string
	format      string
	minStrength float64
	parallel    int
	force       bool
	noStore     bool
	narrateRun  bool

	runsLimit int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the run history database (SQLite), overrides config")

	analyzeCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JSON report artifact to this path")
	analyzeCmd.Flags().StringVar(&format, "format", "text", "Stdout rendering: text, markdown, or json")
	analyzeCmd.Flags().Float64Var(&minStrength, "min-strength", 0, "Minimum correlation strength for causal hypotheses (overrides config)")
	analyzeCmd.Flags().IntVar(&parallel, "parallel", 0, "Concurrent pair workers (overrides config)")
	analyzeCmd.Flags().BoolVar(&force, "force", false, "Analyze even when the inputs match a stored run")
	analyzeCmd.Flags().BoolVar(&noStore, "no-store", false, "Skip recording the run in the database")
	analyzeCmd.Flags().BoolVar(&narrateRun, "narrate", false, "Ask the configured AI provider for a prose narrative")

	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum number of runs to list")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(hierarchyCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadRunConfig layers the config file under the command line overrides.
func loadRunConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return cfg
}

func loadInputs(cfg *config.Config, args []string) *loader.Result {
	paths := cfg.Inputs.Paths
	if len(args) > 0 {
		paths = args
	}
	res, err := loader.NewLoader().Load(paths)
	if err != nil {
		log.Fatalf("Failed to load inputs: %v", err)
	}
	return res
}

func buildRunner(cfg *config.Config) *analysis.Runner {
	threshold := cfg.Analysis.MinStrength
	if minStrength > 0 {
		threshold = minStrength
	}
	workers := cfg.Analysis.Parallelism
	if parallel > 0 {
		workers = parallel
	}

	vocab := causality.Vocabulary{
		EmitterKeywords:   cfg.Analysis.EmitterKeywords,
		ResponderKeywords: cfg.Analysis.ResponderKeywords,
	}
	an := causality.NewAnalyzer(vocab, threshold)
	classifier := hierarchy.NewClassifier(hierarchy.DefaultProfile())
	linker := linking.NewLinker(linking.DefaultRoleRules(), cfg.Analysis.MaxTouchpoints)
	return analysis.NewRunner(an, classifier, linker, workers)
}

func runPipeline(ctx context.Context, cfg *config.Config, res *loader.Result) *analysis.Result {
	out, err := buildRunner(cfg).Run(ctx, res.Architectures, res.Warnings)
	var empty *analysis.EmptyInputError
	if errors.As(err, &empty) {
		log.Fatalf("No architectures found in the inputs. Check the paths in %s or pass them as arguments.", configPath)
	}
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	return out
}

func buildReport(mode string, res *loader.Result, out *analysis.Result) *report.RunReport {
	r := report.NewRunReport(mode)
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
	return r
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Run the full analysis pipeline and report the findings",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadRunConfig()

		// 1. Load and normalize the inputs
		res := loadInputs(cfg, args)
		fmt.Printf("📂 Loaded %d file(s), %d architecture(s)\n", len(res.Inputs), len(res.Architectures))

		fingerprint := storage.Fingerprint(res.FileContents())

		// 2. Skip unchanged inputs unless forced
		var store *storage.SQLiteStore
		if !noStore {
			var err error
			store, err = storage.NewSQLiteStore(cfg.Storage.Path)
			if err != nil {
				log.Fatalf("Failed to open run database: %v", err)
			}
			defer store.Close()

			if !force {
				prev, err := store.FindByFingerprint(ctx, fingerprint)
				if err != nil {
					log.Fatalf("Failed to check run history: %v", err)
				}
				if prev != nil {
					fmt.Printf("✅ Inputs unchanged since run %s (%s). Use --force to re-analyze.\n",
						prev.ID, prev.CreatedAt.Format(time.RFC3339))
					return
				}
			}
		}

		// 3. Analyze
		fmt.Println("🚀 Analyzing architecture pairs...")
		start := time.Now()
		out := runPipeline(ctx, cfg, res)
		fmt.Printf("✅ Analysis finished in %v\n", time.Since(start))

		r := buildReport("analyze", res, out)

		// 4. Optional narration
		if narrateRun {
			narrator, err := narrate.NewNarrator(ctx, narrate.Options{
				Provider: cfg.AI.Provider,
				APIKey:   cfg.AI.APIKey,
				Model:    cfg.AI.Model,
			})
			if err != nil {
				log.Fatalf("Failed to set up narration: %v", err)
			}
			if narrator == nil {
				fmt.Println("⚠️  Narration disabled: set ARCHLENS_API_KEY and an AI provider in the config.")
			} else {
				fmt.Println("🧠 Narrating findings...")
				text, err := narrator.NarrateReport(ctx, r)
				if err != nil {
					log.Printf("Warning: narration failed: %v", err)
				} else {
					r.Narrative = text
				}
			}
		}

		// 5. Persist
		if outPath != "" {
			if err := r.Save(outPath); err != nil {
				log.Fatalf("Failed to save report: %v", err)
			}
			fmt.Printf("💾 Report written to %s\n", outPath)
		}
		if store != nil {
			if err := store.SaveRun(ctx, fingerprint, r); err != nil {
				log.Fatalf("Failed to record the run: %v", err)
			}
		}

		// 6. Render
		switch strings.ToLower(format) {
		case "markdown":
			fmt.Print(report.RenderMarkdown(r))
		case "json":
			data, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				log.Fatalf("Failed to marshal report: %v", err)
			}
			fmt.Println(string(data))
		default:
			fmt.Print(report.RenderText(r))
		}
	},
}

var correlateCmd = &cobra.Command{
	Use:   "correlate [paths...]",
	Short: "Score pairwise correlations and rank causal hypotheses",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadRunConfig()
		res := loadInputs(cfg, args)
		out := runPipeline(context.Background(), cfg, res)

		fmt.Printf("🔗 Correlations across %d architecture(s):\n", len(res.Architectures))
		for _, c := range out.Correlations {
			if c.Strength == 0 {
				continue
			}
			fmt.Printf("  %s <-> %s  %-10s strength=%.2f\n", c.Pair.A, c.Pair.B, c.Kind, c.Strength)
		}

		fmt.Println("\n🧠 Causal hypotheses:")
		if len(out.Hypotheses) == 0 {
			fmt.Println("  none above the configured strength threshold")
		}
		for _, h := range out.Hypotheses {
			fmt.Printf("  %s / %s  %-17s confidence=%.2f\n", h.Pair.A, h.Pair.B, h.Relation, h.Confidence)
			for _, line := range h.Rationale {
				fmt.Printf("      - %s\n", line)
			}
		}
	},
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy [paths...]",
	Short: "Classify each architecture's abstraction level",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadRunConfig()
		res := loadInputs(cfg, args)
		out := runPipeline(context.Background(), cfg, res)

		fmt.Printf("🏗️  Hierarchy of %d architecture(s):\n", len(out.Hierarchy))
		for _, cl := range out.Hierarchy {
			marker := ""
			if cl.MissingParent {
				marker = "  ⚠️ no parent level modeled"
			}
			fmt.Printf("  %-24s %-18s confidence=%.2f%s\n", cl.ArchitectureID, cl.Level, cl.Confidence, marker)
			for _, ev := range cl.Evidence {
				fmt.Printf("      - %s\n", ev)
			}
		}
	},
}

var gapsCmd = &cobra.Command{
	Use:   "gaps [paths...]",
	Short: "Detect orphans, cycles, and unprovided interfaces",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadRunConfig()
		res := loadInputs(cfg, args)
		out := runPipeline(context.Background(), cfg, res)

		g := out.Gaps
		if len(g.Orphans) == 0 && len(g.Cycles) == 0 && len(g.InterfaceGaps) == 0 && g.MissingSystemProfile == nil {
			fmt.Println("✅ No gaps detected.")
			return
		}

		for _, orphan := range g.Orphans {
			fmt.Printf("🔍 orphan: %s\n", orphan)
		}
		for _, cycle := range g.Cycles {
			fmt.Printf("🔁 cycle: %s\n", strings.Join(cycle, " -> "))
		}
		for _, gap := range g.InterfaceGaps {
			fmt.Printf("🔌 interface %q has no provider (required by %s)\n", gap.Interface, gap.RequiredBy)
		}
		if p := g.MissingSystemProfile; p != nil {
			fmt.Printf("🧩 missing system profile: %s (confidence %.2f)\n", strings.Join(p.Tags, ", "), p.Confidence)
			for _, indicator := range p.Indicators {
				fmt.Printf("      - %s\n", indicator)
			}
		}
	},
}

var linkCmd = &cobra.Command{
	Use:   "link [paths...]",
	Short: "Propose creative touchpoints between orthogonal architectures",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadRunConfig()
		res := loadInputs(cfg, args)
		out := runPipeline(context.Background(), cfg, res)

		if len(out.Links) == 0 {
			fmt.Println("⚠️  Linking needs at least two architectures.")
			return
		}
		for _, link := range out.Links {
			fmt.Printf("🔀 %s / %s (%s)\n", link.Pair.A, link.Pair.B, link.Orthogonality)
			if len(link.Touchpoints) == 0 {
				fmt.Println("      no touchpoints proposed")
				continue
			}
			for _, tp := range link.Touchpoints {
				fmt.Printf("      %s ~ %s (%s, %.2f): %s\n",
					tp.ComponentA, tp.ComponentB, tp.Role, tp.Confidence, tp.Metaphor)
			}
		}
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded analysis runs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadRunConfig()
		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open run database: %v", err)
		}
		defer store.Close()

		runs, err := store.ListRuns(context.Background(), runsLimit)
		if err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return
		}

		fmt.Printf("%-36s  %-20s  %-8s  %5s  %7s\n", "RUN", "CREATED", "DIGEST", "ARCHS", "SIGNALS")
		for _, run := range runs {
			digest := run.Fingerprint
			if len(digest) > 8 {
				digest = digest[:8]
			}
			fmt.Printf("%-36s  %-20s  %-8s  %5d  %7d\n",
				run.ID, run.CreatedAt.Format(time.RFC3339), digest, run.ArchCount, run.SignalCount)
		}
	},
}
