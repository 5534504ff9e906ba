package main

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jinjaspan/jinjaspan"
	"github.com/spf13/cobra"
)

var argsFormat struct {
	write bool
}

var cmdFormat = &cobra.Command{
	Use:   "format [file|glob ...]",
	Short: "reformat one or more templates (to stdout, or in place with --write)",
	Run: func(cmd *cobra.Command, args []string) {
		paths, err := expandPaths(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(exitUsage)
		}
		if len(paths) == 0 {
			paths = []string{""} // stdin
		}

		env := buildEnvironment()
		var allDiags []jinjaspan.Diagnostic
		for _, path := range paths {
			src, err := readSource(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(exitInternal)
			}

			formatted, diags := jinjaspan.Format(sourceName(path), src, env)
			allDiags = append(allDiags, diags...)

			reformatted, _ := jinjaspan.Format(sourceName(path), formatted, env)
			if reformatted != formatted {
				allDiags = append(allDiags, jinjaspan.Diagnostic{
					Category: jinjaspan.CatFormatterNonIdempotent,
					Severity: jinjaspan.SeverityWarning,
					Message:  fmt.Sprintf("%s: formatting is not idempotent", sourceName(path)),
				})
			}

			switch {
			case argsFormat.write && path != "" && path != "-":
				if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					os.Exit(exitInternal)
				}
			default:
				fmt.Print(formatted)
			}
		}

		if argsRoot.json {
			emitJSON(allDiags, "")
		} else {
			emitText(allDiags)
		}
		os.Exit(exitCodeForDiagnostics(allDiags))
	},
}

func init() {
	cmdFormat.Flags().BoolVar(&argsFormat.write, "write", false, "write the reformatted output back to each file")
}

// expandPaths resolves each arg as a doublestar glob (so `jspan format
// templates/**/*.html` works), deduplicating and preserving first-seen
// order.
func expandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
