// Command eval replays the golden prompt set against a fully in-memory
// pipeline and writes a JSON report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/wismo-agent/server/internal/agent/graph"
	"github.com/wismo-agent/server/internal/agent/intent"
	"github.com/wismo-agent/server/internal/agent/repo"
	"github.com/wismo-agent/server/internal/core"
	"github.com/wismo-agent/server/internal/eval"
	"github.com/wismo-agent/server/internal/seed"
	logx "github.com/wismo-agent/server/pkg/logger"
)

func main() {
	promptsPath := flag.String("prompts", "", "path to a JSONL prompt set (default: embedded golden set)")
	reportPath := flag.String("report", "eval_report.json", "where to write the JSON report")
	seedCount := flag.Int("n", 200, "number of generated demo orders")
	flag.Parse()

	// Quiet structured logs so the report summary stays readable.
	logx.Init(logx.LoggerOpts{Environment: core.Production})

	ctx := context.Background()

	cases := eval.DefaultCases()
	if *promptsPath != "" {
		f, err := os.Open(*promptsPath)
		if err != nil {
			log.Fatalf("Failed to open prompts: %v", err)
		}
		cases, err = eval.LoadCases(f)
		f.Close()
		if err != nil {
			log.Fatalf("Failed to parse prompts: %v", err)
		}
	}

	orders := repo.NewMemoryOrders()
	shipments := repo.NewMemoryShipments()

	// Fixed seed: the generated orders stay out of the golden set, but a
	// deterministic dataset keeps debugging sane.
	rng := rand.New(rand.NewSource(42))
	records := seed.Dataset(*seedCount, time.Now().UTC(), rng)
	if err := seed.Apply(ctx, records, orders, shipments); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	runner, err := graph.BuildChatGraph(ctx, graph.Config{
		Extractor: intent.NewRuleExtractor(nil),
		Orders:    orders,
		Shipments: shipments,
		Sessions:  repo.NewMemorySessions(),
		Cases:     repo.NewMemoryCases(),
		Logs:      repo.NewMemoryActionLogs(),
	})
	if err != nil {
		log.Fatalf("Failed to build chat graph: %v", err)
	}

	report := eval.Run(ctx, runner, cases, eval.Options{Mode: "rules"})
	printReport(report)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal report: %v", err)
	}
	if err := os.WriteFile(*reportPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	fmt.Printf("Saved: %s\n", *reportPath)
}

func printReport(r *eval.Report) {
	o := r.Overall
	fmt.Println("\n=== WISMO Eval Report (ALL) ===")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d | Pass rate: %.2f%%\n\n", o.Total, o.Passed, o.Failed, o.PassRate)

	if len(o.Failures) > 0 {
		fmt.Println("--- Top failures (up to 10) ---")
		for i, f := range o.Failures {
			if i == 10 {
				break
			}
			fmt.Printf("[%s] session=%s\n", f.ID, f.SessionID)
			for _, reason := range f.Reasons {
				fmt.Printf("  - %s\n", reason)
			}
		}
		fmt.Println()
	}

	if o.Metrics.Intent != nil {
		fmt.Println("=== Metrics (ALL) ===")
		fmt.Printf("Intent accuracy: %v\n", o.Metrics.Intent.Accuracy)
		fmt.Printf("Intent macro F1: %v\n", o.Metrics.Intent.MacroF1)
		if o.Metrics.FollowupAccuracy != nil {
			fmt.Printf("Follow-up accuracy: %v\n", *o.Metrics.FollowupAccuracy)
		}
		if o.Metrics.CaseCreatedAccuracy != nil {
			fmt.Printf("Case-created accuracy: %v\n", *o.Metrics.CaseCreatedAccuracy)
		}
		if o.Metrics.ReuseCaseAccuracy != nil {
			fmt.Printf("Reuse-case accuracy: %v\n", *o.Metrics.ReuseCaseAccuracy)
		}
		fmt.Println()
	}

	names := make([]string, 0, len(r.Suites))
	for name := range r.Suites {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.Suites[name]
		fmt.Printf("=== Suite: %s ===\n", name)
		fmt.Printf("Total: %d | Passed: %d | Failed: %d | Pass rate: %.2f%%\n", s.Total, s.Passed, s.Failed, s.PassRate)
		if s.Metrics.Intent != nil {
			fmt.Printf("  Intent acc: %v | macro F1: %v\n", s.Metrics.Intent.Accuracy, s.Metrics.Intent.MacroF1)
		}
		fmt.Println()
	}
}
