package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
)

// FoldingRange handles textDocument/foldingRange: one range per block,
// macro, if/for body and autoescape/spaceless/with/filter block, grounded
// on rlch-scaf/lsp's folding.go per-construct range builder.
func (s *Server) FoldingRange(_ context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Template == nil {
		return nil, nil
	}

	var ranges []protocol.FoldingRange
	jinjaspan.Walk(doc.Template.AST.Body, visitFold(func(n jinjaspan.Node) {
		span := n.Span()
		if span.Start.Line == span.End.Line {
			return
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: uint32(max0(span.Start.Line - 1)),
			EndLine:   uint32(max0(span.End.Line - 1)),
			Kind:      protocol.RegionFoldingRange,
		})
	}), nil)
	return ranges, nil
}

type visitFold func(jinjaspan.Node)

func (v visitFold) VisitNode(n jinjaspan.Node) bool {
	switch n.(type) {
	case *jinjaspan.Block, *jinjaspan.Macro, *jinjaspan.If, *jinjaspan.For,
		*jinjaspan.Autoescape, *jinjaspan.Spaceless, *jinjaspan.With, *jinjaspan.FilterTag,
		*jinjaspan.CallBlock, *jinjaspan.Raw:
		v(n)
	}
	return true
}
func (v visitFold) VisitExpr(jinjaspan.Expr) bool { return true }
