package lint

import (
	"strings"

	"github.com/jinjaspan/jinjaspan"
)

// ----------------------------------------------------------------------------
// Rule: trailing-whitespace / mixed-indentation / excessive-blank-lines
// ----------------------------------------------------------------------------

// These three operate on the template's raw Text node contents rather than
// the AST shape, since they are about source formatting, not semantics —
// matching spec §4.5's separation of Lint/* (semantic) from Style/* (purely
// textual) categories.

var trailingWhitespaceRule = &Rule{
	Name:     "trailing-whitespace",
	Doc:      "Reports a line ending in trailing spaces or tabs.",
	Severity: jinjaspan.SeverityHint,
	Run:      checkTrailingWhitespace,
}

func checkTrailingWhitespace(f *File) {
	forEachTextNode(f.Template.Body, func(t *jinjaspan.Text) {
		lineStart := t.Span().Start.Line
		for i, line := range strings.Split(t.Value, "\n") {
			trimmed := strings.TrimRight(line, " \t")
			if trimmed != line && trimmed != "" || (trimmed == "" && line != "") {
				span := jinjaspan.Span{
					Start: jinjaspan.Position{Line: lineStart + i},
					End:   jinjaspan.Position{Line: lineStart + i},
				}
				f.report(jinjaspan.CatStyleTrailingWhitespace, jinjaspan.SeverityHint, span,
					"trailing whitespace")
			}
		}
	})
}

var mixedIndentationRule = &Rule{
	Name:     "mixed-indentation",
	Doc:      "Reports a line whose leading whitespace mixes tabs and spaces.",
	Severity: jinjaspan.SeverityHint,
	Run:      checkMixedIndentation,
}

func checkMixedIndentation(f *File) {
	forEachTextNode(f.Template.Body, func(t *jinjaspan.Text) {
		lineStart := t.Span().Start.Line
		for i, line := range strings.Split(t.Value, "\n") {
			leading := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			if strings.Contains(leading, " ") && strings.Contains(leading, "\t") {
				span := jinjaspan.Span{
					Start: jinjaspan.Position{Line: lineStart + i},
					End:   jinjaspan.Position{Line: lineStart + i},
				}
				f.report(jinjaspan.CatStyleMixedIndentation, jinjaspan.SeverityHint, span,
					"line mixes tabs and spaces for indentation")
			}
		}
	})
}

var excessiveBlankLinesRule = &Rule{
	Name:     "excessive-blank-lines",
	Doc:      "Reports 3 or more consecutive blank lines.",
	Severity: jinjaspan.SeverityHint,
	Run:      checkExcessiveBlankLines,
}

const maxConsecutiveBlankLines = 2

func checkExcessiveBlankLines(f *File) {
	forEachTextNode(f.Template.Body, func(t *jinjaspan.Text) {
		lineStart := t.Span().Start.Line
		lines := strings.Split(t.Value, "\n")
		run := 0
		for i, line := range lines {
			if strings.TrimSpace(line) == "" {
				run++
			} else {
				run = 0
				continue
			}
			if run == maxConsecutiveBlankLines+1 {
				span := jinjaspan.Span{
					Start: jinjaspan.Position{Line: lineStart + i},
					End:   jinjaspan.Position{Line: lineStart + i},
				}
				f.report(jinjaspan.CatStyleExcessiveBlankLines, jinjaspan.SeverityHint, span,
					"more than %d consecutive blank lines", maxConsecutiveBlankLines)
			}
		}
	})
}

// forEachTextNode walks body and invokes fn on every *jinjaspan.Text node,
// including those nested inside control-flow bodies (If/For/Block/etc.),
// since style checks apply to raw template text wherever it appears.
func forEachTextNode(body []jinjaspan.Node, fn func(*jinjaspan.Text)) {
	jinjaspan.Walk(body, visitFunc(func(n jinjaspan.Node) bool {
		if t, ok := n.(*jinjaspan.Text); ok {
			fn(t)
		}
		return true
	}), nil)
}
