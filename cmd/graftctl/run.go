package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ramsey-B/graft/pkg/matching"
	"github.com/Ramsey-B/graft/pkg/scenario"
)

var scenarioFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a YAML match scenario locally",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&scenarioFile, "file", "f", "", "path to the scenario YAML file")
	_ = runCmd.MarkFlagRequired("file")
}

func run() {
	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	s, err := scenario.Load(scenarioFile)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}

	logger.Info("running scenario",
		zap.String("name", s.Name),
		zap.String("algorithm", s.Algorithm),
		zap.Int("entities_a", len(s.EntitiesA)),
		zap.Int("entities_b", len(s.EntitiesB)),
	)

	engine := matching.NewEngine(zapadapter.NewZapEctoLogger(logger, nil), matching.DefaultConfig())
	runner := scenario.NewRunner(engine)

	report, err := runner.Run(context.Background(), s)
	if err != nil {
		logger.Fatal("scenario failed to run", zap.Error(err))
	}

	printReport(report)

	if !report.Passed() {
		for _, failure := range report.Failures {
			logger.Error("unmet expectation", zap.String("expectation", failure))
		}
		os.Exit(1)
	}
}

func printReport(report *scenario.Report) {
	result := report.Result
	stats := result.Statistics()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY A\tENTITY B\tSCORE")
	for _, m := range result.Matches {
		fmt.Fprintf(w, "%s\t%s\t%.4f\n", m.EntityAID, m.EntityBID, m.Score)
	}
	w.Flush()

	fmt.Printf("\nalgorithm: %s\n", result.Algorithm)
	fmt.Printf("matches: %d  unmatched: %d\n", stats.TotalMatches, stats.UnmatchedCount)
	fmt.Printf("total score: %.4f  average score: %.4f\n", stats.TotalScore, stats.AverageScore)
	fmt.Printf("execution time: %.6fs\n", stats.ExecutionTimeSeconds)
	if len(result.UnmatchedEntities) > 0 {
		fmt.Printf("unmatched entities: %s\n", strings.Join(result.UnmatchedEntities, ", "))
	}
}
