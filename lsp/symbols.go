package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
)

// DocumentSymbol handles textDocument/documentSymbol: one entry per macro
// and block defined in the document, for the editor's outline view.
func (s *Server) DocumentSymbol(_ context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Index == nil {
		return nil, nil
	}

	var out []interface{}
	for _, m := range doc.Index.Macros {
		rng := spanToRange(m.Span)
		out = append(out, protocol.DocumentSymbol{
			Name:           m.Name,
			Detail:         m.Signature,
			Kind:           protocol.SymbolKindFunction,
			Range:          rng,
			SelectionRange: rng,
		})
	}
	for _, b := range doc.Index.Blocks {
		rng := spanToRange(b.Span)
		out = append(out, protocol.DocumentSymbol{
			Name:           fmt.Sprintf("block %s", b.Name),
			Kind:           protocol.SymbolKindNamespace,
			Range:          rng,
			SelectionRange: rng,
		})
	}
	return out, nil
}

// WorkspaceSymbol handles workspace/symbol: a query-filtered scan of every
// open document's macros and blocks (cross-file, on-disk symbol indexing
// is out of scope — spec's Non-goals exclude a persistent workspace index).
func (s *Server) WorkspaceSymbol(_ context.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []protocol.SymbolInformation
	for uri, doc := range s.documents {
		if doc.Index == nil {
			continue
		}
		for _, m := range doc.Index.Macros {
			if !matchesQuery(m.Name, params.Query) {
				continue
			}
			out = append(out, protocol.SymbolInformation{
				Name:     m.Name,
				Kind:     protocol.SymbolKindFunction,
				Location: protocol.Location{URI: uri, Range: spanToRange(m.Span)},
			})
		}
		for _, b := range doc.Index.Blocks {
			if !matchesQuery(b.Name, params.Query) {
				continue
			}
			out = append(out, protocol.SymbolInformation{
				Name:     b.Name,
				Kind:     protocol.SymbolKindNamespace,
				Location: protocol.Location{URI: uri, Range: spanToRange(b.Span)},
			})
		}
	}
	return out, nil
}

func matchesQuery(name, query string) bool {
	if query == "" {
		return true
	}
	for i := range name {
		if len(name[i:]) >= len(query) && name[i:i+len(query)] == query {
			return true
		}
	}
	return false
}
