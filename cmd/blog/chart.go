package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/sigillum/internal/chart"
	"github.com/kingrea/sigillum/internal/logging"
)

func newChartCmd() *cobra.Command {
	var (
		out     string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the ruleset initialization chart (test.png, test.svg)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.Console(verbose)
			defer func() { _ = logger.Sync() }()
			paths, err := chart.SaveRulesetInit(out)
			if err != nil {
				return fmt.Errorf("render chart: %w", err)
			}
			logger.Info("chart written", zap.Strings("files", paths))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", ".", "Directory the images are written to")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}
