package lsp

import (
	"context"
	"testing"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormattingReturnsWholeDocumentEdit(t *testing.T) {
	s := newTestServer()
	uri := protocol.DocumentURI("file:///t.html")
	require.NoError(t, s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Version: 1, Text: `{%if x%}y{%endif%}`},
	}))

	edits, err := s.Formatting(context.Background(), &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, `{% if x %}y{% endif %}`, edits[0].NewText)
}

func TestFormattingReturnsEmptyWhenAlreadyFormatted(t *testing.T) {
	s := newTestServer()
	uri := protocol.DocumentURI("file:///t.html")
	formatted, diags := jinjaspan.Format("t.html", `{%if x%}y{%endif%}`, s.env)
	require.Empty(t, diags)

	require.NoError(t, s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Version: 1, Text: formatted},
	}))

	edits, err := s.Formatting(context.Background(), &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestFormattingUnknownDocumentReturnsNil(t *testing.T) {
	s := newTestServer()
	edits, err := s.Formatting(context.Background(), &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.html"},
	})
	require.NoError(t, err)
	assert.Nil(t, edits)
}
