// Command jspan is a thin CLI shell over the jinjaspan core: lex, parse,
// render, format and lint subcommands, each reading a file path or stdin
// and emitting text or JSON, per spec §6's external-interfaces contract.
// Grounded on playbymail-ottomap's main.go/cobra-root-command shape.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jinjaspan/jinjaspan"
	"github.com/spf13/cobra"
)

// Exit codes, per spec §6: 0 clean, 1 diagnostics at error severity (or
// --strict triggered), 2 usage, 3 internal.
const (
	exitClean    = 0
	exitDiag     = 1
	exitUsage    = 2
	exitInternal = 3
)

var argsRoot struct {
	json          bool
	strict        bool
	templatesDir  string
}

var cmdRoot = &cobra.Command{
	Use:   "jspan",
	Short: "jinjaspan: a fault-tolerant Jinja2-compatible analysis pipeline",
	Long:  `Lex, parse, render, format and lint Jinja2-style templates.`,
}

func main() {
	cmdRoot.PersistentFlags().BoolVar(&argsRoot.json, "json", false, "emit JSON instead of text")
	cmdRoot.PersistentFlags().BoolVar(&argsRoot.strict, "strict", false, "promote warnings to errors for exit-code purposes")
	cmdRoot.PersistentFlags().StringVar(&argsRoot.templatesDir, "templates-dir", "", "base directory for extends/include/import resolution")

	cmdRoot.AddCommand(cmdLex)
	cmdRoot.AddCommand(cmdParse)
	cmdRoot.AddCommand(cmdRender)
	cmdRoot.AddCommand(cmdFormat)
	cmdRoot.AddCommand(cmdLint)
	cmdRoot.AddCommand(cmdVersion)

	if err := cmdRoot.Execute(); err != nil {
		log.SetFlags(0)
		log.Println(err)
		os.Exit(exitUsage)
	}
}

var cmdVersion = &cobra.Command{
	Use:   "version",
	Short: "print the engine version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(jinjaspan.Version.String())
	},
}

// buildEnvironment wires a FilesystemLoader when --templates-dir is set, so
// extends/include/import resolve against real files; otherwise the
// Environment has no loader and cross-template tags report
// Renderer/TemplateNotFound.
func buildEnvironment() *jinjaspan.Environment {
	opts := []jinjaspan.EnvOption{jinjaspan.WithStrictUndefined(false)}
	if argsRoot.templatesDir != "" {
		loader, err := jinjaspan.NewFilesystemLoader(argsRoot.templatesDir)
		if err != nil {
			log.Fatalf("error: --templates-dir: %v\n", err)
		}
		opts = append(opts, jinjaspan.WithLoader(loader))
	}
	return jinjaspan.NewEnvironment(opts...)
}
