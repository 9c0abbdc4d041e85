// cmd/ruleset-chart/main.go
//
// Draws the ruleset initialization benchmark (Chrome vs Firefox) as a
// grouped bar chart and writes test.png and test.svg to the working
// directory. It takes no arguments.

package main

import (
	"go.uber.org/zap"

	"github.com/kingrea/sigillum/internal/chart"
	"github.com/kingrea/sigillum/internal/logging"
)

func main() {
	logger := logging.Console(false)
	defer func() { _ = logger.Sync() }()

	paths, err := chart.SaveRulesetInit(".")
	if err != nil {
		logger.Fatal("render ruleset chart", zap.Error(err))
	}
	logger.Info("chart written", zap.Strings("files", paths))
}
