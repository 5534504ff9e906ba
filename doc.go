// Package jinjaspan implements a fault-tolerant, Jinja2-compatible template
// analysis pipeline: a lexer, a recursive-descent/Pratt parser with error
// recovery, a typed AST, an AST-walking renderer with scoped evaluation and
// template inheritance, and the registries (filters, tests, functions, tag
// extensions, loaders) that back them.
//
// Every stage shares one diagnostic model (Diagnostic) and one span model
// (Span): nothing in the core panics or returns a fatal error for malformed
// template source. Lexing, parsing and rendering always terminate and
// always produce a best-effort result alongside any diagnostics collected
// along the way. The cross-file Inference Index (package
// github.com/jinjaspan/jinjaspan/inference), linter (package .../lint) and
// LSP providers (package .../lsp) are built on top of this pipeline.
package jinjaspan
