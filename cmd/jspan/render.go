package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jinjaspan/jinjaspan"
	"github.com/spf13/cobra"
)

var argsRender struct {
	contextPath string
}

var cmdRender = &cobra.Command{
	Use:   "render [file]",
	Short: "render a template against a JSON context",
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

		ctx := jinjaspan.Context{}
		if argsRender.contextPath != "" {
			data, err := os.ReadFile(argsRender.contextPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: --context: %v\n", err)
				os.Exit(exitUsage)
			}
			if err := json.Unmarshal(data, &ctx); err != nil {
				fmt.Fprintf(os.Stderr, "error: --context: invalid JSON: %v\n", err)
				os.Exit(exitUsage)
			}
		}

		env := buildEnvironment()
		output, diags := jinjaspan.Render(env, sourceName(path), src, ctx)

		if argsRoot.json {
			emitJSON(diags, output)
		} else {
			fmt.Print(output)
			emitText(diags)
		}

		os.Exit(exitCodeForDiagnostics(diags))
	},
}

func init() {
	cmdRender.Flags().StringVar(&argsRender.contextPath, "context", "", "path to a JSON file providing the render context")
}
