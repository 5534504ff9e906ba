package lsp

import (
	"context"

	"go.lsp.dev/protocol"
)

// Definition handles textDocument/definition: macro and block name
// references resolve to their defining {% macro %}/{% block %} span in the
// same document (cross-file resolution is out of scope — spec's Non-goals
// exclude a workspace-wide symbol index beyond the current buffer's
// extends/import chain).
func (s *Server) Definition(_ context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Index == nil {
		return nil, nil
	}
	pos := positionToOffset(doc.Content, params.Position)
	name := wordAt(doc.Content, pos)
	if name == "" {
		return nil, nil
	}
	if m, ok := doc.Index.FindMacro(name); ok {
		return []protocol.Location{{URI: params.TextDocument.URI, Range: spanToRange(m.Span)}}, nil
	}
	if b, ok := doc.Index.FindBlock(name); ok {
		return []protocol.Location{{URI: params.TextDocument.URI, Range: spanToRange(b.Span)}}, nil
	}
	return nil, nil
}
