package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
)

// CodeAction handles textDocument/codeAction: for each unknown
// filter/test/function diagnostic it returns one QuickFix entry titled
// "Ignore (no registered fix available)". The action carries no edit and no
// command, so choosing it changes nothing.
func (s *Server) CodeAction(_ context.Context, params *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	var actions []protocol.CodeAction
	for _, diag := range params.Context.Diagnostics {
		code, ok := diag.Code.(string)
		if !ok {
			continue
		}
		switch jinjaspan.Category(code) {
		case jinjaspan.CatLintUnknownFilter, jinjaspan.CatLintUnknownTest, jinjaspan.CatLintUnknownFunction:
			actions = append(actions, protocol.CodeAction{
				Title:       "Ignore (no registered fix available)",
				Kind:        protocol.QuickFix,
				Diagnostics: []protocol.Diagnostic{diag},
			})
		}
	}
	return actions, nil
}
