package lsp

import (
	"context"

	"go.lsp.dev/protocol"
)

// InlayHint is this module's own shape for a type-annotation hint, since
// go.lsp.dev/protocol v0.12.0 (the version pinned for this corpus, same as
// rlch-scaf/lsp's) predates the LSP 3.17 protocol.InlayHint type. A client
// wired through a newer transport can adapt these 1:1 into the real
// protocol type; this server's capability advertisement omits
// InlayHintProvider accordingly (see server.go).
type InlayHint struct {
	Position protocol.Position
	Label    string
}

// InlayHints annotates for-loop and macro-parameter bindings with their
// inferred type, e.g. `for x /*: int*/ in [1, 2, 3]`.
func (s *Server) InlayHints(_ context.Context, uri protocol.DocumentURI) ([]InlayHint, error) {
	doc, ok := s.getDocument(uri)
	if !ok || doc.Index == nil {
		return nil, nil
	}

	var hints []InlayHint
	for _, v := range doc.Index.Variables {
		if v.Type == "" || v.Type == "any" {
			continue
		}
		hints = append(hints, InlayHint{
			Position: spanToRange(v.Span).End,
			Label:    ": " + v.Type,
		})
	}
	return hints, nil
}
