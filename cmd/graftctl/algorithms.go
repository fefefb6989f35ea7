package main

import (
	"fmt"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ramsey-B/graft/pkg/matching"
	"github.com/Ramsey-B/graft/pkg/models"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available matching algorithms",
	Run: func(_ *cobra.Command, _ []string) {
		engine := matching.NewEngine(zapadapter.NewZapEctoLogger(zap.NewNop(), nil), matching.DefaultConfig())
		for _, name := range engine.Algorithms() {
			marker := " "
			if name == models.DefaultAlgorithm {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		fmt.Println("\n* default")
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}
