package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
)

// PrepareRename handles textDocument/prepareRename: valid only on an
// identifier, returning its current span as the rename range.
func (s *Server) PrepareRename(_ context.Context, params *protocol.PrepareRenameParams) (*protocol.Range, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	pos := positionToOffset(doc.Content, params.Position)
	name := wordAt(doc.Content, pos)
	if name == "" {
		return nil, fmt.Errorf("no renameable symbol at this position")
	}
	// Walk back to the identifier's first byte; identifiers are ASCII, so
	// offset and column move together.
	start := pos
	for start.Offset > 0 {
		c := doc.Content[start.Offset-1]
		if c != '_' && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			break
		}
		start.Offset--
		start.Column--
	}
	end := start
	end.Offset += len(name)
	end.Column += len(name)
	rng := spanToRange(jinjaspan.Span{Start: start, End: end})
	return &rng, nil
}

// Rename handles textDocument/rename: renames every Name expression whose
// identifier matches the one under the cursor, across this whole document.
// Scope is not considered: a same-named binding in another scope, such as a
// for-loop variable, is renamed along with the one under the cursor.
func (s *Server) Rename(ctx context.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Template == nil {
		return nil, nil
	}
	pos := positionToOffset(doc.Content, params.Position)
	name := wordAt(doc.Content, pos)
	if name == "" {
		return nil, fmt.Errorf("no renameable symbol at this position")
	}

	var edits []protocol.TextEdit
	jinjaspan.Walk(doc.Template.AST.Body, refVisitor(func(n jinjaspan.Name) {
		if n.Ident == name {
			edits = append(edits, protocol.TextEdit{Range: spanToRange(n.Span()), NewText: params.NewName})
		}
	}), nil)

	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentURI][]protocol.TextEdit{params.TextDocument.URI: edits},
	}, nil
}
