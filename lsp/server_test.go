package lsp

import (
	"context"
	"testing"

	"go.lsp.dev/protocol"

	"github.com/jinjaspan/jinjaspan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(nil, nil, jinjaspan.NewEnvironment(), 16)
}

func TestDidOpenAnalyzesAndCachesDocument(t *testing.T) {
	s := newTestServer()
	uri := protocol.DocumentURI("file:///t.html")
	err := s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Version: 1, Text: `{{ x | upper }}`},
	})
	require.NoError(t, err)

	doc, ok := s.getDocument(uri)
	require.True(t, ok)
	assert.NotNil(t, doc.Template)
	assert.NotNil(t, doc.Index)
}

func TestDidOpenReportsUnknownFilterLint(t *testing.T) {
	s := newTestServer()
	uri := protocol.DocumentURI("file:///t.html")
	err := s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Version: 1, Text: `{{ x | nosuchfilter }}`},
	})
	require.NoError(t, err)

	doc, _ := s.getDocument(uri)
	var found bool
	for _, d := range doc.Diagnostics {
		if d.Category == jinjaspan.CatLintUnknownFilter {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDidChangeReanalyzesDocument(t *testing.T) {
	s := newTestServer()
	uri := protocol.DocumentURI("file:///t.html")
	require.NoError(t, s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Version: 1, Text: `{{ 1 }}`},
	}))

	require.NoError(t, s.DidChange(context.Background(), &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: `{{ 2 }}`}},
	}))

	doc, ok := s.getDocument(uri)
	require.True(t, ok)
	assert.Equal(t, `{{ 2 }}`, doc.Content)
	assert.Equal(t, int32(2), doc.Version)
}

func TestDidCloseDropsDocument(t *testing.T) {
	s := newTestServer()
	uri := protocol.DocumentURI("file:///t.html")
	require.NoError(t, s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Version: 1, Text: `hi`},
	}))
	require.NoError(t, s.DidClose(context.Background(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	_, ok := s.getDocument(uri)
	assert.False(t, ok)
}

func TestInitializeAdvertisesFormattingCapability(t *testing.T) {
	s := newTestServer()
	result, err := s.Initialize(context.Background(), &protocol.InitializeParams{})
	require.NoError(t, err)
	assert.Equal(t, true, result.Capabilities.DocumentFormattingProvider)
}
