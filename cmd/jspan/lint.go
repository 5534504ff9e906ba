package main

import (
	"fmt"
	"os"

	"github.com/jinjaspan/jinjaspan"
	"github.com/jinjaspan/jinjaspan/inference"
	"github.com/jinjaspan/jinjaspan/lint"
	"github.com/spf13/cobra"
)

var cmdLint = &cobra.Command{
	Use:   "lint [file|glob ...]",
	Short: "run the structural/stylistic rule catalog over one or more templates",
	Run: func(cmd *cobra.Command, args []string) {
		paths, err := expandPaths(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(exitUsage)
		}
		if len(paths) == 0 {
			paths = []string{""}
		}

		env := buildEnvironment()
		rules := lint.DefaultRules()
		var allDiags []jinjaspan.Diagnostic

		for _, path := range paths {
			src, err := readSource(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(exitInternal)
			}

			name := sourceName(path)
			tpl, sink := jinjaspan.Parse(name, src, env)
			idx := inference.Build(name, 0, tpl, nil)

			f := &lint.File{Template: tpl, Index: idx, Env: env}
			diags := lint.Run(f, rules)

			fileDiags := append(sink.All(), diags...)
			jinjaspan.SortDiagnostics(fileDiags)
			allDiags = append(allDiags, fileDiags...)
		}

		if argsRoot.json {
			emitJSON(allDiags, "")
		} else {
			emitText(allDiags)
		}
		os.Exit(exitCodeForDiagnostics(allDiags))
	},
}
