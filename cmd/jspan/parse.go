package main

import (
	"fmt"
	"os"

	"github.com/jinjaspan/jinjaspan"
	"github.com/spf13/cobra"
)

var cmdParse = &cobra.Command{
	Use:   "parse [file]",
	Short: "parse a template and report diagnostics",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		src, err := readSource(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(exitUsage)
		}

		env := buildEnvironment()
		tpl, sink := jinjaspan.Parse(sourceName(path), src, env)
		diags := sink.All()

		if argsRoot.json {
			emitJSON(diags, fmt.Sprintf("%d top-level nodes", len(tpl.Body)))
		} else {
			fmt.Printf("parsed %q: %d top-level nodes\n", sourceName(path), len(tpl.Body))
			emitText(diags)
		}

		os.Exit(exitCodeForDiagnostics(diags))
	},
}
