// Package inference builds the per-document Inference Index (spec §4.4):
// variables, macros, blocks, imports and the extends chain of one parsed
// template, derived from its AST via jinjaspan.Walk. The index is advisory
// — it drives linting and LSP completions/hovers, never render correctness.
package inference

import (
	"github.com/jinjaspan/jinjaspan"
)

// VariableSource classifies where a tracked variable name was bound.
type VariableSource int

const (
	SourceSet VariableSource = iota
	SourceForLoop
	SourceMacroParam
	SourceContext
)

func (s VariableSource) String() string {
	switch s {
	case SourceSet:
		return "set"
	case SourceForLoop:
		return "for"
	case SourceMacroParam:
		return "macro-param"
	case SourceContext:
		return "context"
	default:
		return "unknown"
	}
}

// Variable is one binding the index tracked, with a shallow inferred type
// tag (spec §4.4: "literal values get their literal type; for x in expr
// gives x an element-of hint; everything else is Any").
type Variable struct {
	Name string
	Source VariableSource
	Span   jinjaspan.Span // zero if the binding has no single definition site (e.g. Context)
	Type   string
}

// MacroSymbol is one top-level macro definition.
type MacroSymbol struct {
	Name      string
	Params    []string
	Defaults  []bool
	Signature string
	Span      jinjaspan.Span
}

// BlockSymbol is one named inheritance block definition.
type BlockSymbol struct {
	Name string
	Span jinjaspan.Span
	URI  string
}

// ImportedName is one `name [as alias]` entry from a from-import.
type ImportedName struct {
	Name  string
	Alias string
}

// ImportSymbol is one import/from-import statement.
type ImportSymbol struct {
	Source      string
	Alias       string // set for `import ... as alias`, empty for from-import
	Names       []ImportedName
	WithContext bool
	Span        jinjaspan.Span
}

// Index is the per-URI analysis cache described in spec §4.4.
type Index struct {
	URI     string
	Version int

	Variables []Variable
	Macros    []MacroSymbol
	Blocks    []BlockSymbol
	Imports   []ImportSymbol
	Extends   string // "" if the template has no {% extends %}

	// ReferencedNames lists Name reads that were never bound by Set, For,
	// MacroParam or With within this document — candidates for "context
	// variable" hover per spec §4.4.
	ReferencedNames []string
}

// Build walks tpl and produces its Index. cancel is polled between node
// visits (spec §5); a canceled build returns whatever was collected so far.
func Build(uri string, version int, tpl *jinjaspan.Template, cancel jinjaspan.CancelFunc) *Index {
	b := &builder{
		idx:      &Index{URI: uri, Version: version},
		defined:  map[string]bool{"loop": true, "caller": true},
		callSkip: map[jinjaspan.Expr]bool{},
	}
	jinjaspan.Walk(tpl.Body, b, cancel)
	b.finish()
	return b.idx
}

// builder implements jinjaspan.Visitor, accumulating symbols in one pass.
type builder struct {
	idx     *Index
	defined map[string]bool
	reads   []jinjaspan.Expr // *jinjaspan.Name reads seen, resolved at finish()
	// callSkip marks a Call's Callee expr so the Name visit it triggers
	// isn't recorded as a context read — unknownFunctionRule treats anything
	// in ReferencedNames as "bound from context" (e.g. a callable passed in),
	// which a call's own callee name is not.
	callSkip map[jinjaspan.Expr]bool
}

func (b *builder) VisitNode(n jinjaspan.Node) bool {
	switch t := n.(type) {
	case *jinjaspan.Set:
		typ := literalTypeOf(t.Value)
		for _, name := range forTargetNames(t.Target) {
			b.defined[name] = true
			b.idx.Variables = append(b.idx.Variables, Variable{
				Name: name, Source: SourceSet, Span: t.Span(), Type: typ,
			})
		}
	case *jinjaspan.SetBlock:
		if name, ok := t.Target.(*jinjaspan.Name); ok {
			b.defined[name.Ident] = true
			b.idx.Variables = append(b.idx.Variables, Variable{
				Name: name.Ident, Source: SourceSet, Span: t.Span(), Type: "string",
			})
		}
	case *jinjaspan.For:
		for _, name := range forTargetNames(t.Target) {
			b.defined[name] = true
			b.idx.Variables = append(b.idx.Variables, Variable{
				Name: name, Source: SourceForLoop, Span: t.Span(), Type: elementTypeOf(t.Iter),
			})
		}
	case *jinjaspan.With:
		for _, kw := range t.Bindings {
			b.defined[kw.Name] = true
			b.idx.Variables = append(b.idx.Variables, Variable{
				Name: kw.Name, Source: SourceSet, Span: t.Span(), Type: literalTypeOf(kw.Value),
			})
		}
	case *jinjaspan.Macro:
		b.defined[t.Name] = true
		params := make([]string, len(t.Params))
		defaults := make([]bool, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.Name
			defaults[i] = p.Default != nil
			b.defined[p.Name] = true
			b.idx.Variables = append(b.idx.Variables, Variable{
				Name: p.Name, Source: SourceMacroParam, Span: t.Span(), Type: "any",
			})
		}
		b.idx.Macros = append(b.idx.Macros, MacroSymbol{
			Name: t.Name, Params: params, Defaults: defaults,
			Signature: macroSignature(t.Name, t.Params), Span: t.Span(),
		})
	case *jinjaspan.Block:
		b.idx.Blocks = append(b.idx.Blocks, BlockSymbol{Name: t.Name, Span: t.Span(), URI: b.idx.URI})
	case *jinjaspan.Extends:
		if lit, ok := t.TemplateExpr.(*jinjaspan.Literal); ok && lit.Kind == jinjaspan.LiteralString {
			if b.idx.Extends == "" {
				b.idx.Extends = lit.Str
			}
		}
	case *jinjaspan.Import:
		src := literalStringOf(t.TemplateExpr)
		b.defined[t.Alias] = true
		b.idx.Imports = append(b.idx.Imports, ImportSymbol{Source: src, Alias: t.Alias, Span: t.Span()})
	case *jinjaspan.FromImport:
		src := literalStringOf(t.TemplateExpr)
		names := make([]ImportedName, len(t.Names))
		for i, n := range t.Names {
			names[i] = ImportedName{Name: n.Name, Alias: n.Alias}
			bound := n.Name
			if n.Alias != "" {
				bound = n.Alias
			}
			b.defined[bound] = true
		}
		b.idx.Imports = append(b.idx.Imports, ImportSymbol{
			Source: src, Names: names, WithContext: t.WithContext, Span: t.Span(),
		})
	}
	return true
}

func (b *builder) VisitExpr(e jinjaspan.Expr) bool {
	if call, ok := e.(*jinjaspan.Call); ok {
		b.callSkip[call.Callee] = true
		return true
	}
	if name, ok := e.(*jinjaspan.Name); ok {
		if !b.callSkip[e] {
			b.reads = append(b.reads, name)
		}
	}
	return true
}

// finish resolves ReferencedNames: every Name read whose identifier never
// appeared in b.defined, deduplicated and in first-seen order.
func (b *builder) finish() {
	seen := map[string]bool{}
	for _, e := range b.reads {
		name := e.(*jinjaspan.Name).Ident
		if b.defined[name] || seen[name] {
			continue
		}
		seen[name] = true
		b.idx.ReferencedNames = append(b.idx.ReferencedNames, name)
	}
}

func forTargetNames(t jinjaspan.Target) []string {
	if tup, ok := t.(*jinjaspan.TupleLiteral); ok {
		names := make([]string, 0, len(tup.Items))
		for _, it := range tup.Items {
			if n, ok := it.(*jinjaspan.Name); ok {
				names = append(names, n.Ident)
			}
		}
		return names
	}
	if n, ok := t.(*jinjaspan.Name); ok {
		return []string{n.Ident}
	}
	return nil
}

func literalTypeOf(e jinjaspan.Expr) string {
	lit, ok := e.(*jinjaspan.Literal)
	if !ok {
		return "any"
	}
	switch lit.Kind {
	case jinjaspan.LiteralString:
		return "string"
	case jinjaspan.LiteralInt:
		return "int"
	case jinjaspan.LiteralFloat:
		return "float"
	case jinjaspan.LiteralBool:
		return "bool"
	case jinjaspan.LiteralNull:
		return "null"
	default:
		return "any"
	}
}

// elementTypeOf gives a `for x in expr` target its element-of hint when
// expr is itself a list literal of same-kind literals; otherwise Any.
func elementTypeOf(iter jinjaspan.Expr) string {
	list, ok := iter.(*jinjaspan.ListLiteral)
	if !ok || len(list.Items) == 0 {
		return "any"
	}
	first := literalTypeOf(list.Items[0])
	for _, it := range list.Items[1:] {
		if literalTypeOf(it) != first {
			return "any"
		}
	}
	return first
}

func literalStringOf(e jinjaspan.Expr) string {
	if lit, ok := e.(*jinjaspan.Literal); ok && lit.Kind == jinjaspan.LiteralString {
		return lit.Str
	}
	return ""
}

func macroSignature(name string, params []jinjaspan.MacroParam) string {
	out := name + "("
	for i, p := range params {
		if i > 0 {
			out += ", "
		}
		out += p.Name
		if p.Default != nil {
			out += "=" + literalTypeOf(p.Default)
		}
	}
	return out + ")"
}

// FindMacro looks up a macro by name.
func (idx *Index) FindMacro(name string) (MacroSymbol, bool) {
	for _, m := range idx.Macros {
		if m.Name == name {
			return m, true
		}
	}
	return MacroSymbol{}, false
}

// FindBlock looks up a block by name.
func (idx *Index) FindBlock(name string) (BlockSymbol, bool) {
	for _, b := range idx.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return BlockSymbol{}, false
}

// VariableAt returns every Variable binding whose span contains pos —
// innermost (latest-collected) first, used by hover/definition providers.
func (idx *Index) VariableAt(pos jinjaspan.Position) []Variable {
	var out []Variable
	for i := len(idx.Variables) - 1; i >= 0; i-- {
		if idx.Variables[i].Span.Contains(pos) {
			out = append(out, idx.Variables[i])
		}
	}
	return out
}
