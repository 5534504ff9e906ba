// Package lint implements the static rule catalog from spec §4.5: a set of
// Rule values, each a pure function over one template's AST plus its
// Inference Index, producing Diagnostics. Grounded on
// rlch-scaf/analysis/rules.go's Rule{Name,Doc,Severity,Run} pattern and
// DefaultRules() catalog-by-severity shape.
package lint

import (
	"fmt"
	"strings"

	"github.com/jinjaspan/jinjaspan"
	"github.com/jinjaspan/jinjaspan/inference"
)

// File bundles what a Rule needs to inspect: the parsed template, its
// Inference Index, and the Environment it will render against (for
// filter/test/function existence checks).
type File struct {
	Template *jinjaspan.Template
	Index    *inference.Index
	Env      *jinjaspan.Environment

	Diagnostics []jinjaspan.Diagnostic
}

func (f *File) report(cat jinjaspan.Category, sev jinjaspan.Severity, span jinjaspan.Span, format string, args ...any) {
	f.Diagnostics = append(f.Diagnostics, jinjaspan.Diagnostic{
		Category: cat, Severity: sev, Span: span,
		Message: fmt.Sprintf(format, args...),
	})
}

// Rule is one semantic lint check, analogous to go/analysis.Analyzer.
type Rule struct {
	Name     string
	Doc      string
	Severity jinjaspan.Severity
	Run      func(f *File)
}

// DefaultRules returns every built-in rule named in spec §4.5, grouped by
// severity the way the teacher's catalog is.
func DefaultRules() []*Rule {
	return []*Rule{
		// Error-level checks.
		multipleExtendsRule,
		extendsNotFirstRule,
		duplicateBlockRule,
		duplicateMacroRule,

		// Warning-level checks.
		unusedMacroRule,
		unknownFilterRule,
		unknownTestRule,
		unknownFunctionRule,
		missingEndTagRule,

		// Hint/style-level checks.
		trailingWhitespaceRule,
		mixedIndentationRule,
		excessiveBlankLinesRule,
	}
}

// Run executes every rule against f and returns the accumulated
// diagnostics, sorted the way the Sink orders them.
func Run(f *File, rules []*Rule) []jinjaspan.Diagnostic {
	for _, r := range rules {
		r.Run(f)
	}
	jinjaspan.SortDiagnostics(f.Diagnostics)
	return f.Diagnostics
}

// ----------------------------------------------------------------------------
// Rule: multiple-extends / extends-not-first
// ----------------------------------------------------------------------------

var multipleExtendsRule = &Rule{
	Name:     "multiple-extends",
	Doc:      "Reports a template with more than one {% extends %} statement.",
	Severity: jinjaspan.SeverityError,
	Run:      checkMultipleExtends,
}

func checkMultipleExtends(f *File) {
	var extends []*jinjaspan.Extends
	jinjaspan.Walk(f.Template.Body, visitFunc(func(n jinjaspan.Node) bool {
		if e, ok := n.(*jinjaspan.Extends); ok {
			extends = append(extends, e)
		}
		return true
	}), nil)
	if len(extends) == 0 {
		return
	}
	for _, e := range extends[1:] {
		f.report(jinjaspan.CatLintMultipleExtends, jinjaspan.SeverityError, e.Span(),
			"template has more than one {%% extends %%} statement")
	}
}

var extendsNotFirstRule = &Rule{
	Name:     "extends-not-first",
	Doc:      "Reports {% extends %} appearing after other top-level statements.",
	Severity: jinjaspan.SeverityError,
	Run:      checkExtendsNotFirst,
}

func checkExtendsNotFirst(f *File) {
	for i, n := range f.Template.Body {
		if e, ok := n.(*jinjaspan.Extends); ok && i > 0 {
			if leadingTextOnly(f.Template.Body[:i]) {
				continue
			}
			f.report(jinjaspan.CatLintExtendsNotFirst, jinjaspan.SeverityError, e.Span(),
				"{%% extends %%} must be the first statement in the template")
		}
	}
}

// leadingTextOnly allows whitespace-only Text nodes before extends, since
// those come from formatting around the tag rather than real content.
func leadingTextOnly(nodes []jinjaspan.Node) bool {
	for _, n := range nodes {
		t, ok := n.(*jinjaspan.Text)
		if !ok || strings.TrimSpace(t.Value) != "" {
			return false
		}
	}
	return true
}

// ----------------------------------------------------------------------------
// Rule: duplicate-block / duplicate-macro
// ----------------------------------------------------------------------------

var duplicateBlockRule = &Rule{
	Name:     "duplicate-block",
	Doc:      "Reports two {% block %} definitions with the same name in one template.",
	Severity: jinjaspan.SeverityError,
	Run:      checkDuplicateBlock,
}

func checkDuplicateBlock(f *File) {
	seen := map[string]jinjaspan.Span{}
	for _, b := range f.Index.Blocks {
		if first, ok := seen[b.Name]; ok {
			_ = first
			f.report(jinjaspan.CatLintDuplicateBlock, jinjaspan.SeverityError, b.Span,
				"duplicate block %q", b.Name)
			continue
		}
		seen[b.Name] = b.Span
	}
}

var duplicateMacroRule = &Rule{
	Name:     "duplicate-macro",
	Doc:      "Reports two {% macro %} definitions with the same name in one template.",
	Severity: jinjaspan.SeverityError,
	Run:      checkDuplicateMacro,
}

func checkDuplicateMacro(f *File) {
	seen := map[string]bool{}
	for _, m := range f.Index.Macros {
		if seen[m.Name] {
			f.report(jinjaspan.CatLintDuplicateMacro, jinjaspan.SeverityError, m.Span,
				"duplicate macro %q", m.Name)
			continue
		}
		seen[m.Name] = true
	}
}

// ----------------------------------------------------------------------------
// Rule: unused-macro
// ----------------------------------------------------------------------------

var unusedMacroRule = &Rule{
	Name:     "unused-macro",
	Doc:      "Reports a macro defined but never called within its own template.",
	Severity: jinjaspan.SeverityWarning,
	Run:      checkUnusedMacro,
}

func checkUnusedMacro(f *File) {
	called := map[string]bool{}
	jinjaspan.Walk(f.Template.Body, visitExprFunc(func(e jinjaspan.Expr) bool {
		if call, ok := e.(*jinjaspan.Call); ok {
			if name, ok := call.Callee.(*jinjaspan.Name); ok {
				called[name.Ident] = true
			}
		}
		return true
	}), nil)
	for _, m := range f.Index.Macros {
		if !called[m.Name] {
			f.report(jinjaspan.CatLintUnusedMacro, jinjaspan.SeverityWarning, m.Span,
				"macro %q is never called in this template", m.Name)
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: unknown-filter / unknown-test / unknown-function
// ----------------------------------------------------------------------------

var unknownFilterRule = &Rule{
	Name:     "unknown-filter",
	Doc:      "Reports a filter name the Environment has no registration for.",
	Severity: jinjaspan.SeverityWarning,
	Run:      checkUnknownFilter,
}

func checkUnknownFilter(f *File) {
	if f.Env == nil {
		return
	}
	jinjaspan.Walk(f.Template.Body, visitExprFunc(func(e jinjaspan.Expr) bool {
		if flt, ok := e.(*jinjaspan.Filter); ok {
			if !f.Env.HasFilter(flt.Name) {
				f.report(jinjaspan.CatLintUnknownFilter, jinjaspan.SeverityWarning, flt.Span(),
					"unknown filter %q", flt.Name)
			}
		}
		return true
	}), nil)
}

var unknownTestRule = &Rule{
	Name:     "unknown-test",
	Doc:      "Reports a test name the Environment has no registration for.",
	Severity: jinjaspan.SeverityWarning,
	Run:      checkUnknownTest,
}

func checkUnknownTest(f *File) {
	if f.Env == nil {
		return
	}
	jinjaspan.Walk(f.Template.Body, visitExprFunc(func(e jinjaspan.Expr) bool {
		if t, ok := e.(*jinjaspan.Test); ok {
			if !f.Env.HasTest(t.Name) {
				f.report(jinjaspan.CatLintUnknownTest, jinjaspan.SeverityWarning, t.Span(),
					"unknown test %q", t.Name)
			}
		}
		return true
	}), nil)
}

// unknownFunctionRule reports a call to a bare name that is neither a
// registered Environment function nor a macro defined/imported in this
// template (macro-suppression per spec §4.5: macros are never flagged here).
var unknownFunctionRule = &Rule{
	Name:     "unknown-function",
	Doc:      "Reports a call to a name that is not a registered function, macro, import or context variable.",
	Severity: jinjaspan.SeverityWarning,
	Run:      checkUnknownFunction,
}

func checkUnknownFunction(f *File) {
	if f.Env == nil {
		return
	}
	knownMacro := map[string]bool{}
	for _, m := range f.Index.Macros {
		knownMacro[m.Name] = true
	}
	for _, imp := range f.Index.Imports {
		if imp.Alias != "" {
			continue // namespace import: calls go through attribute access, not a bare Name
		}
		for _, n := range imp.Names {
			bound := n.Name
			if n.Alias != "" {
				bound = n.Alias
			}
			knownMacro[bound] = true
		}
	}

	jinjaspan.Walk(f.Template.Body, visitExprFunc(func(e jinjaspan.Expr) bool {
		call, ok := e.(*jinjaspan.Call)
		if !ok {
			return true
		}
		name, ok := call.Callee.(*jinjaspan.Name)
		if !ok {
			return true
		}
		if f.Env.HasFunction(name.Ident) || knownMacro[name.Ident] {
			return true
		}
		for _, ref := range f.Index.ReferencedNames {
			if ref == name.Ident {
				return true // bound from context, e.g. a callable passed in
			}
		}
		f.report(jinjaspan.CatLintUnknownFunction, jinjaspan.SeverityWarning, call.Span(),
			"call to unknown function %q", name.Ident)
		return true
	}), nil)
}

// ----------------------------------------------------------------------------
// Rule: missing-end-tag
// ----------------------------------------------------------------------------

// missingEndTagRule holds the missing-end-tag slot in the catalog, but its
// Run reports nothing: File carries no parse diagnostics, so a block tag
// with no matching end tag is reported only by the parser, as
// Parser/MissingEndTag, and never as Lint/MissingEndTag.
var missingEndTagRule = &Rule{
	Name:     "missing-end-tag",
	Doc:      "Reports nothing; a block tag with no matching end tag is reported by the parser as Parser/MissingEndTag.",
	Severity: jinjaspan.SeverityWarning,
	Run:      func(f *File) {},
}

// ----------------------------------------------------------------------------
// helpers
// ----------------------------------------------------------------------------

type visitFunc func(jinjaspan.Node) bool

func (v visitFunc) VisitNode(n jinjaspan.Node) bool { return v(n) }
func (v visitFunc) VisitExpr(jinjaspan.Expr) bool   { return true }

type visitExprFunc func(jinjaspan.Expr) bool

func (v visitExprFunc) VisitNode(jinjaspan.Node) bool { return true }
func (v visitExprFunc) VisitExpr(e jinjaspan.Expr) bool { return v(e) }
