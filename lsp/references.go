package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
)

// References handles textDocument/references: every Name read/binding of
// the identifier under the cursor within this document. Whole-document
// AST walk over Name expressions since the Inference Index tracks binding sites but not
// every individual read's span.
func (s *Server) References(_ context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Template == nil {
		return nil, nil
	}
	pos := positionToOffset(doc.Content, params.Position)
	name := wordAt(doc.Content, pos)
	if name == "" {
		return nil, nil
	}

	var locs []protocol.Location
	jinjaspan.Walk(doc.Template.AST.Body, refVisitor(func(n jinjaspan.Name) {
		if n.Ident == name {
			locs = append(locs, protocol.Location{URI: params.TextDocument.URI, Range: spanToRange(n.Span())})
		}
	}), nil)
	return locs, nil
}

type refVisitor func(jinjaspan.Name)

func (v refVisitor) VisitNode(jinjaspan.Node) bool { return true }
func (v refVisitor) VisitExpr(e jinjaspan.Expr) bool {
	if n, ok := e.(*jinjaspan.Name); ok {
		v(*n)
	}
	return true
}
