package lsp

import (
	"context"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
)

// Formatting handles textDocument/formatting: runs the AST-based formatter
// and, if it changed anything, returns a single whole-document replace edit
// — matching rlch-scaf/lsp/formatting.go's diff-the-whole-buffer approach
// rather than computing a minimal line-level diff.
func (s *Server) Formatting(_ context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	formatted, _ := jinjaspan.Format(string(doc.URI), doc.Content, s.env)
	if formatted == doc.Content {
		return []protocol.TextEdit{}, nil
	}

	return []protocol.TextEdit{
		{
			Range:   wholeDocumentRange(doc.Content),
			NewText: formatted,
		},
	}, nil
}

func wholeDocumentRange(content string) protocol.Range {
	lines := strings.Split(content, "\n")
	lastLine := len(lines) - 1
	if lastLine < 0 {
		lastLine = 0
	}
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: uint32(lastLine), Character: uint32(len(lines[lastLine]))},
	}
}
