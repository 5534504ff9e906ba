// Package lsp implements a Language Server Protocol server over jinjaspan,
// providing the read-only analysis surface described in spec §4.6: hover,
// definition, references, document/workspace symbols, folding, rename,
// completion, code actions, inlay hints and document links. Grounded on
// rlch-scaf/lsp's Server{documents,analyzer} shape and protocol.Client
// wiring.
package lsp

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/jinjaspan/jinjaspan"
	"github.com/jinjaspan/jinjaspan/inference"
	"github.com/jinjaspan/jinjaspan/lint"
)

// Server implements protocol.Server for jinjaspan templates.
type Server struct {
	client protocol.Client
	logger *zap.Logger
	env    *jinjaspan.Environment
	store  *inference.Store
	rules  []*lint.Rule

	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// Document is one open buffer plus its most recent parse/index/lint
// results, re-derived on every DidOpen/DidChange.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string

	Template    *jinjaspan.CompiledTemplate
	Index       *inference.Index
	Diagnostics []jinjaspan.Diagnostic
}

// NewServer creates a Server bound to env (providing the filter/test/
// function/tag registrations used for unknown-* lint checks and rendering
// preview) and a document-store capacity bound for the Inference Index
// cache.
func NewServer(client protocol.Client, logger *zap.Logger, env *jinjaspan.Environment, storeCapacity int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if env == nil {
		env = jinjaspan.NewEnvironment()
	}
	return &Server{
		client:    client,
		logger:    logger,
		env:       env,
		store:     inference.NewStore(storeCapacity),
		rules:     lint.DefaultRules(),
		documents: make(map[protocol.DocumentURI]*Document),
	}
}

// Initialize handles the initialize request, advertising the capability
// set this server actually implements.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("initialize")
	if params.RootURI != "" {
		s.workspaceRoot = string(params.RootURI)
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			HoverProvider:             true,
			DefinitionProvider:        true,
			ReferencesProvider:        true,
			DocumentSymbolProvider:    true,
			WorkspaceSymbolProvider:   true,
			FoldingRangeProvider:      true,
			DocumentLinkProvider:      &protocol.DocumentLinkOptions{},
			DocumentFormattingProvider: true,
			RenameProvider:            &protocol.RenameOptions{PrepareProvider: true},
			CodeActionProvider:        &protocol.CodeActionOptions{CodeActionKinds: []protocol.CodeActionKind{protocol.QuickFix}},
			CompletionProvider: &protocol.CompletionOptions{TriggerCharacters: []string{".", "|", "%", "{"}},
			// inlayHint is implemented as a provider method (InlayHints in
			// inlayhint.go) but not advertised here: go.lsp.dev/protocol
			// v0.12.0 (the version this module's corpus also pins) predates
			// the LSP 3.17 capability type for it. semanticTokens is not
			// implemented.
		},
		ServerInfo: &protocol.ServerInfo{Name: "jspan", Version: jinjaspan.Version.String()},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.initialized = true
	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.shutdown = true
	return nil
}

// Exit handles the exit notification; the transport loop exits the process.
func (s *Server) Exit(_ context.Context) error {
	return nil
}

// DidOpen handles textDocument/didOpen: parses, indexes, lints and
// publishes diagnostics for the new buffer.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}
	s.analyze(doc)
	s.documents[doc.URI] = doc
	s.publishDiagnostics(ctx, doc)
	return nil
}

// DidChange handles textDocument/didChange (full-document sync only).
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		doc = &Document{URI: params.TextDocument.URI}
		s.documents[doc.URI] = doc
	}
	doc.Version = params.TextDocument.Version
	for _, change := range params.ContentChanges {
		doc.Content = change.Text
	}
	s.analyze(doc)
	s.publishDiagnostics(ctx, doc)
	return nil
}

// DidClose handles textDocument/didClose, dropping the buffer (but leaving
// its last Inference Index cached in the Store for on-disk dependents).
func (s *Server) DidClose(_ context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, params.TextDocument.URI)
	return nil
}

// analyze re-parses and re-indexes doc in place, running the lint catalog
// against the fresh Inference Index.
func (s *Server) analyze(doc *Document) {
	uri := string(doc.URI)
	tpl := jinjaspan.Compile(uri, doc.Content, s.env)
	doc.Template = tpl
	doc.Index = s.store.Get(uri, int(doc.Version), tpl.AST, nil)

	f := &lint.File{Template: tpl.AST, Index: doc.Index, Env: s.env}
	diags := lint.Run(f, s.rules)

	all := make([]jinjaspan.Diagnostic, 0, len(tpl.Diagnostics)+len(diags))
	all = append(all, tpl.Diagnostics...)
	all = append(all, diags...)
	jinjaspan.SortDiagnostics(all)
	doc.Diagnostics = all
}

func (s *Server) publishDiagnostics(ctx context.Context, doc *Document) {
	if s.client == nil {
		return
	}
	params := &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     uint32(doc.Version),
		Diagnostics: toProtocolDiagnostics(doc.Diagnostics),
	}
	if err := s.client.PublishDiagnostics(ctx, params); err != nil {
		s.logger.Warn("publish diagnostics failed", zap.Error(err))
	}
}

func (s *Server) getDocument(uri protocol.DocumentURI) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[uri]
	return doc, ok
}
