// cmd/blog/main.go
//
// Entry point for the blog tooling. `blog` builds the site once, then serves
// and rebuilds it on every post edit until interrupted. `blog --ci` builds and
// exits. `blog chart` renders the ruleset benchmark chart.

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
