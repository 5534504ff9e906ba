package lsp

import (
	"unicode/utf8"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
)

// spanToRange converts a jinjaspan.Span (1-based line/column) into an LSP
// protocol.Range (0-based line/character), grounded on rlch-scaf/lsp's
// util.go spanToRange.
func spanToRange(span jinjaspan.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max0(span.Start.Line - 1)),
			Character: uint32(max0(span.Start.Column - 1)),
		},
		End: protocol.Position{
			Line:      uint32(max0(span.End.Line - 1)),
			Character: uint32(max0(span.End.Column - 1)),
		},
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func rangePtr(r protocol.Range) *protocol.Range {
	return &r
}

// positionToOffset converts an LSP (0-based line, character) position into
// a jinjaspan.Position with a resolved byte Offset, by scanning content's
// lines. Mirrors rlch-scaf's PositionToLexer in spirit, simplified since
// jinjaspan counts columns in Unicode scalars rather than UTF-16 units.
func positionToOffset(content string, pos protocol.Position) jinjaspan.Position {
	line, col := 0, 0
	offset := 0
	for offset < len(content) {
		if line == int(pos.Line) && col == int(pos.Character) {
			break
		}
		r, w := utf8.DecodeRuneInString(content[offset:])
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		offset += w
	}
	return jinjaspan.Position{Offset: offset, Line: line + 1, Column: col + 1}
}

// convertSeverity maps a jinjaspan.Severity onto its LSP counterpart.
func convertSeverity(sev jinjaspan.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case jinjaspan.SeverityError:
		return protocol.DiagnosticSeverityError
	case jinjaspan.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case jinjaspan.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case jinjaspan.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

// convertDiagnostic converts one jinjaspan.Diagnostic into its LSP form.
func convertDiagnostic(d jinjaspan.Diagnostic) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    spanToRange(d.Span),
		Severity: convertSeverity(d.Severity),
		Code:     string(d.Category),
		Source:   "jspan",
		Message:  d.Message,
	}
}

func toProtocolDiagnostics(diags []jinjaspan.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, convertDiagnostic(d))
	}
	return out
}
