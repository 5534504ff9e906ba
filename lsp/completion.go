package lsp

import (
	"context"

	"go.lsp.dev/protocol"
)

// Completion handles textDocument/completion: registered filters, tests,
// functions and this document's macros/block names/context variables, all
// unfiltered by prefix — narrowing by the client's own fuzzy matcher is
// standard LSP client behavior, matching rlch-scaf/lsp's completion.go
// approach of returning the full candidate set per trigger character.
func (s *Server) Completion(_ context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return &protocol.CompletionList{}, nil
	}

	var items []protocol.CompletionItem
	for _, name := range s.env.FilterNames() {
		items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionItemKindFunction, Detail: "filter"})
	}
	for _, name := range s.env.TestNames() {
		items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionItemKindFunction, Detail: "test"})
	}
	for _, name := range s.env.FunctionNames() {
		items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionItemKindFunction, Detail: "function"})
	}

	if doc.Index != nil {
		for _, m := range doc.Index.Macros {
			items = append(items, protocol.CompletionItem{Label: m.Name, Kind: protocol.CompletionItemKindFunction, Detail: m.Signature})
		}
		for _, b := range doc.Index.Blocks {
			items = append(items, protocol.CompletionItem{Label: b.Name, Kind: protocol.CompletionItemKindClass, Detail: "block"})
		}
		for _, ref := range doc.Index.ReferencedNames {
			items = append(items, protocol.CompletionItem{Label: ref, Kind: protocol.CompletionItemKindVariable, Detail: "context variable"})
		}
	}

	return &protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}
