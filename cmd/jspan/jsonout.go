package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jinjaspan/jinjaspan"
)

// jsonPosition/jsonSpan/jsonDiagnostic mirror spec §6's Diagnostic JSON
// shape: {id, severity, message, span:{start:{offset,line,column}, end:{…}}}.
type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonDiagnostic struct {
	ID       string   `json:"id"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Span     jsonSpan `json:"span"`
}

// jsonResult wraps every --json subcommand's payload with a correlation ID,
// so a CLI caller can thread one invocation's output through logs without
// inventing its own ID (grounded on playbymail-ottomap's google/uuid use
// for stable IDs).
type jsonResult struct {
	RequestID   string           `json:"request_id"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Output      string           `json:"output,omitempty"`
}

func toJSONDiagnostics(diags []jinjaspan.Diagnostic) []jsonDiagnostic {
	out := make([]jsonDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, jsonDiagnostic{
			ID:       string(d.Category),
			Severity: d.Severity.String(),
			Message:  d.Message,
			Span: jsonSpan{
				Start: jsonPosition{Offset: d.Span.Start.Offset, Line: d.Span.Start.Line, Column: d.Span.Start.Column},
				End:   jsonPosition{Offset: d.Span.End.Offset, Line: d.Span.End.Line, Column: d.Span.End.Column},
			},
		})
	}
	return out
}

func emitJSON(diags []jinjaspan.Diagnostic, output string) {
	result := jsonResult{
		RequestID:   uuid.New().String(),
		Diagnostics: toJSONDiagnostics(diags),
		Output:      output,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func emitText(diags []jinjaspan.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s: %s: %s (%s)\n", d.Severity, d.Span.Start, d.Message, d.Category)
	}
}

// exitCodeForDiagnostics applies spec §6's exit-code contract: 1 when any
// diagnostic is at error severity, or (with --strict) at warning severity
// or worse.
func exitCodeForDiagnostics(diags []jinjaspan.Diagnostic) int {
	for _, d := range diags {
		if d.Severity == jinjaspan.SeverityError {
			return exitDiag
		}
		if argsRoot.strict && d.Severity == jinjaspan.SeverityWarning {
			return exitDiag
		}
	}
	return exitClean
}
