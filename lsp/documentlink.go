package lsp

import (
	"context"

	"go.lsp.dev/protocol"
)

// DocumentLink handles textDocument/documentLink: makes each {% import %}
// and {% from ... import %} statement clickable when the Environment's
// loader chain can load its template, linking to "file://" plus the name as
// written. Extends and include statements are not linked.
func (s *Server) DocumentLink(_ context.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Index == nil {
		return nil, nil
	}

	// Only imports carry a span in the Inference Index (Index.Extends is a
	// bare string); extends links are therefore left for a future pass that
	// records the {% extends %} statement's own span.
	var links []protocol.DocumentLink
	for _, imp := range doc.Index.Imports {
		if imp.Source == "" {
			continue
		}
		if _, ok := s.env.Load(imp.Source); !ok {
			continue
		}
		links = append(links, protocol.DocumentLink{
			Range:  spanToRange(imp.Span),
			Target: protocol.DocumentURI("file://" + imp.Source),
		})
	}
	return links, nil
}
