package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
	"github.com/jinjaspan/jinjaspan/inference"
)

// Hover handles textDocument/hover requests: variable source/type, macro
// signature or block name, resolved from the document's Inference Index.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Index == nil {
		return nil, nil //nolint:nilnil
	}

	pos := positionToOffset(doc.Content, params.Position)

	if vars := doc.Index.VariableAt(pos); len(vars) > 0 {
		v := vars[0]
		return &protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: hoverVariable(v)},
			Range:    rangePtr(spanToRange(v.Span)),
		}, nil
	}

	name := wordAt(doc.Content, pos)
	if name == "" {
		return nil, nil //nolint:nilnil
	}
	if m, ok := doc.Index.FindMacro(name); ok {
		return &protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: hoverMacro(m)},
			Range:    rangePtr(spanToRange(m.Span)),
		}, nil
	}
	if b, ok := doc.Index.FindBlock(name); ok {
		return &protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: fmt.Sprintf("**block** `%s`", b.Name)},
			Range:    rangePtr(spanToRange(b.Span)),
		}, nil
	}
	return nil, nil //nolint:nilnil
}

func hoverVariable(v inference.Variable) string {
	return fmt.Sprintf("**%s**: `%s`\n\nbound by %s", v.Name, v.Type, v.Source)
}

func hoverMacro(m inference.MacroSymbol) string {
	return fmt.Sprintf("```jinja\n%s\n```", m.Signature)
}

// wordAt extracts the identifier run touching pos.Offset in src, used when
// hovering over a Name read that the Inference Index doesn't track as a
// binding (macro calls, block references).
func wordAt(src string, pos jinjaspan.Position) string {
	if pos.Offset < 0 || pos.Offset > len(src) {
		return ""
	}
	isIdent := func(r byte) bool {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	}
	start, end := pos.Offset, pos.Offset
	for start > 0 && isIdent(src[start-1]) {
		start--
	}
	for end < len(src) && isIdent(src[end]) {
		end++
	}
	return strings.TrimSpace(src[start:end])
}
