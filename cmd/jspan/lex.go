package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jinjaspan/jinjaspan"
	"github.com/spf13/cobra"
)

var cmdLex = &cobra.Command{
	Use:   "lex [file]",
	Short: "lex a template into its token stream",
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

		tokens, sink := jinjaspan.Lex(sourceName(path), src)
		diags := sink.All()

		if argsRoot.json {
			type jsonToken struct {
				Kind   string   `json:"kind"`
				Lexeme string   `json:"lexeme"`
				Span   jsonSpan `json:"span"`
			}
			out := make([]jsonToken, 0, len(tokens))
			for _, t := range tokens {
				out = append(out, jsonToken{
					Kind:   t.Kind.String(),
					Lexeme: t.Lexeme,
					Span: jsonSpan{
						Start: jsonPosition{Offset: t.Span.Start.Offset, Line: t.Span.Start.Line, Column: t.Span.Start.Column},
						End:   jsonPosition{Offset: t.Span.End.Offset, Line: t.Span.End.Line, Column: t.Span.End.Column},
					},
				})
			}
			result := struct {
				RequestID   string           `json:"request_id"`
				Tokens      []jsonToken      `json:"tokens"`
				Diagnostics []jsonDiagnostic `json:"diagnostics"`
			}{
				RequestID:   uuid.New().String(),
				Tokens:      out,
				Diagnostics: toJSONDiagnostics(diags),
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(result)
		} else {
			for _, t := range tokens {
				fmt.Printf("%-12s %-20q %s\n", t.Kind, t.Lexeme, t.Span)
			}
			emitText(diags)
		}

		os.Exit(exitCodeForDiagnostics(diags))
	},
}
