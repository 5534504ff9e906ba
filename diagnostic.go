package jinjaspan

import (
	"fmt"
	"sort"

	"github.com/tidwall/btree"
)

// Severity ranks how serious a Diagnostic is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// String renders the severity the way CLI/LSP output expects it.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Category is a diagnostic's closed-set classification, always of the
// form "Group/Name" (e.g. "Lexer/UnterminatedString"). Categories never
// cross group boundaries: Lexer/*, Parser/*, Renderer/*, Formatter/*,
// Lint/*, Style/*, Naming/*.
type Category string

// Lexer categories.
const (
	CatLexerUnterminatedComment    Category = "Lexer/UnterminatedComment"
	CatLexerUnterminatedString     Category = "Lexer/UnterminatedString"
	CatLexerUnterminatedExpression Category = "Lexer/UnterminatedExpression"
	CatLexerUnexpectedChar         Category = "Lexer/UnexpectedChar"
)

// Parser categories.
const (
	CatParserUnexpectedToken       Category = "Parser/UnexpectedToken"
	CatParserExpectedExpression    Category = "Parser/ExpectedExpression"
	CatParserUnknownTag            Category = "Parser/UnknownTag"
	CatParserMissingEndTag         Category = "Parser/MissingEndTag"
	CatParserUnexpectedEndTag      Category = "Parser/UnexpectedEndTag"
	CatParserMismatchedBlockName   Category = "Parser/MismatchedBlockName"
	CatParserExpectedToken         Category = "Parser/ExpectedToken"
)

// Renderer categories.
const (
	CatRendererUnknownVariable        Category = "Renderer/UnknownVariable"
	CatRendererUnknownFilter          Category = "Renderer/UnknownFilter"
	CatRendererUnknownTest            Category = "Renderer/UnknownTest"
	CatRendererUnknownFunction        Category = "Renderer/UnknownFunction"
	CatRendererUnknownMacro           Category = "Renderer/UnknownMacro"
	CatRendererInvalidOperand         Category = "Renderer/InvalidOperand"
	CatRendererNotIterable            Category = "Renderer/NotIterable"
	CatRendererTemplateNotFound       Category = "Renderer/TemplateNotFound"
	CatRendererTemplateCycle          Category = "Renderer/TemplateCycle"
	CatRendererUnsupportedNode        Category = "Renderer/UnsupportedNode"
	CatRendererMissingRequiredArg     Category = "Renderer/MissingRequiredArgument"
	CatRendererTypeMismatch           Category = "Renderer/TypeMismatch"
	CatRendererUnknownTagRenderer     Category = "Renderer/UnknownTagRenderer"
	CatRendererStrictUndefined        Category = "Renderer/StrictUndefined"
)

// Formatter categories.
const (
	CatFormatterNonIdempotent Category = "Formatter/NonIdempotent"
)

// Lint categories.
const (
	CatLintMultipleExtends Category = "Lint/MultipleExtends"
	CatLintExtendsNotFirst Category = "Lint/ExtendsNotFirst"
	CatLintDuplicateBlock  Category = "Lint/DuplicateBlock"
	CatLintDuplicateMacro  Category = "Lint/DuplicateMacro"
	CatLintUnusedMacro     Category = "Lint/UnusedMacro"
	CatLintUnknownFilter   Category = "Lint/UnknownFilter"
	CatLintUnknownTest     Category = "Lint/UnknownTest"
	CatLintUnknownFunction Category = "Lint/UnknownFunction"
	CatLintMissingEndTag   Category = "Lint/MissingEndTag"
)

// Style categories.
const (
	CatStyleTrailingWhitespace   Category = "Style/TrailingWhitespace"
	CatStyleMixedIndentation     Category = "Style/MixedIndentation"
	CatStyleExcessiveBlankLines  Category = "Style/ExcessiveBlankLines"
)

// Naming categories.
const (
	CatNamingNonSnakeCaseMacro    Category = "Naming/NonSnakeCaseMacro"
	CatNamingNonSnakeCaseVariable Category = "Naming/NonSnakeCaseVariable"
)

// Diagnostic is the single sum type every pass in the pipeline reports
// through. It never escapes as a Go error from lex/parse/render.
type Diagnostic struct {
	Category Category
	Severity Severity
	Message  string
	Span     Span
}

// lessDiagnostic orders diagnostics by span start offset, then category,
// matching the "stable in ordering (by span start, then category)"
// invariant from the data model. Two diagnostics that tie on both fields
// are not the same diagnostic, so callers that need a total order (the
// Sink's b-tree) must break the tie on something else — see sinkItem.
func lessDiagnostic(a, b Diagnostic) bool {
	if a.Span.Start.Offset != b.Span.Start.Offset {
		return a.Span.Start.Offset < b.Span.Start.Offset
	}
	return a.Category < b.Category
}

// sinkItem wraps a Diagnostic with its insertion sequence so the b-tree
// orders by (span start, category, seq). btree.BTreeG.Set replaces any
// item comparing equal under its less function, so without the seq
// tiebreaker two diagnostics sharing a span and category (e.g. two
// missing-required-argument diagnostics for the same macro call) would
// clobber each other and only the last would survive.
type sinkItem struct {
	d   Diagnostic
	seq uint64
}

func lessSinkItem(a, b sinkItem) bool {
	if lessDiagnostic(a.d, b.d) {
		return true
	}
	if lessDiagnostic(b.d, a.d) {
		return false
	}
	return a.seq < b.seq
}

// Sink accumulates diagnostics from one or more passes and keeps them in
// stable span order. Backed by a b-tree (rather than a sorted slice with
// re-sort-on-read) so incremental re-analysis in the LSP host can keep
// emitting diagnostics from multiple passes without re-sorting the whole
// set each time. The b-tree key includes an insertion sequence so it
// behaves as an ordered multiset, not a deduplicating Set keyed on
// (span, category).
type Sink struct {
	tree *btree.BTreeG[sinkItem]
	next uint64
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{
		tree: btree.NewBTreeG(lessSinkItem),
	}
}

// Add appends one diagnostic.
func (s *Sink) Add(d Diagnostic) {
	s.tree.Set(sinkItem{d: d, seq: s.next})
	s.next++
}

// Addf is a convenience for Add with a formatted message.
func (s *Sink) Addf(cat Category, sev Severity, span Span, format string, args ...any) {
	s.Add(Diagnostic{Category: cat, Severity: sev, Span: span, Message: fmt.Sprintf(format, args...)})
}

// All returns every diagnostic in stable span order.
func (s *Sink) All() []Diagnostic {
	out := make([]Diagnostic, 0, s.tree.Len())
	s.tree.Scan(func(it sinkItem) bool {
		out = append(out, it.d)
		return true
	})
	return out
}

// Len reports how many diagnostics have been recorded.
func (s *Sink) Len() int {
	return s.tree.Len()
}

// HasErrors reports whether any diagnostic is at Error severity.
func (s *Sink) HasErrors() bool {
	found := false
	s.tree.Scan(func(it sinkItem) bool {
		if it.d.Severity == SeverityError {
			found = true
			return false
		}
		return true
	})
	return found
}

// Merge appends every diagnostic from other into s, preserving order.
func (s *Sink) Merge(other *Sink) {
	if other == nil {
		return
	}
	other.tree.Scan(func(it sinkItem) bool {
		s.Add(it.d)
		return true
	})
}

// SortDiagnostics sorts an arbitrary slice the same way the Sink orders
// its contents; used by callers that collect diagnostics from multiple
// sinks (e.g. lexer + parser + linter) and need one unified order. Ties
// on span+category keep their relative input order (sort.SliceStable).
func SortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		return lessDiagnostic(ds[i], ds[j])
	})
}
