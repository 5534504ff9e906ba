package jinjaspan

import (
	"sort"
	"strconv"
	"strings"
)

// Format re-serializes src's AST into a canonical textual form: delimiter
// and operator spacing is normalized ({%if x%} -> {% if x %}), while every
// Text node's raw content is copied through untouched. This is the
// formatter's whole scope — template prose and indentation are the
// author's, not the tool's, to reflow (spec §8's "external collaborator"
// framing for an HTML-aware token producer describes a deeper formatter
// than this one; this is the AST-level core that backs the idempotence
// property and the `jspan format` subcommand).
//
// Format is idempotent: formatting already-canonical output reproduces it
// exactly, since the only thing the formatter ever emits from non-Text
// nodes is a deterministic function of the parsed AST.
func Format(name, src string, env *Environment) (string, []Diagnostic) {
	if env == nil {
		env = NewEnvironment()
	}
	tpl, sink := Parse(name, src, env)
	var b strings.Builder
	formatNodes(&b, tpl.Body)
	return b.String(), sink.All()
}

func formatNodes(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		formatNode(b, n)
	}
}

func formatNode(b *strings.Builder, n Node) {
	switch t := n.(type) {
	case *Text:
		b.WriteString(t.Value)
	case *Comment:
		b.WriteString("{# ")
		b.WriteString(strings.TrimSpace(t.Value))
		b.WriteString(" #}")
	case *Output:
		b.WriteString("{{ ")
		b.WriteString(exprString(t.Expr))
		b.WriteString(" }}")
	case *If:
		formatIf(b, t)
	case *For:
		b.WriteString("{% for ")
		b.WriteString(exprString(t.Target))
		b.WriteString(" in ")
		b.WriteString(exprString(t.Iter))
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		if len(t.ElseBody) > 0 {
			b.WriteString("{% else %}")
			formatNodes(b, t.ElseBody)
		}
		b.WriteString("{% endfor %}")
	case *Set:
		b.WriteString("{% set ")
		b.WriteString(exprString(t.Target))
		b.WriteString(" = ")
		b.WriteString(exprString(t.Value))
		b.WriteString(" %}")
	case *SetBlock:
		b.WriteString("{% set ")
		b.WriteString(exprString(t.Target))
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endset %}")
	case *Block:
		b.WriteString("{% block ")
		b.WriteString(t.Name)
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endblock ")
		b.WriteString(t.Name)
		b.WriteString(" %}")
	case *Extends:
		b.WriteString("{% extends ")
		b.WriteString(exprString(t.TemplateExpr))
		b.WriteString(" %}")
	case *Include:
		b.WriteString("{% include ")
		b.WriteString(exprString(t.TemplateExpr))
		if t.WithContext {
			b.WriteString(" with context")
		}
		if t.WithoutContext {
			b.WriteString(" without context")
		}
		if t.IgnoreMissing {
			b.WriteString(" ignore missing")
		}
		b.WriteString(" %}")
	case *Import:
		b.WriteString("{% import ")
		b.WriteString(exprString(t.TemplateExpr))
		b.WriteString(" as ")
		b.WriteString(t.Alias)
		b.WriteString(" %}")
	case *FromImport:
		b.WriteString("{% from ")
		b.WriteString(exprString(t.TemplateExpr))
		b.WriteString(" import ")
		for i, n := range t.Names {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n.Name)
			if n.Alias != "" {
				b.WriteString(" as ")
				b.WriteString(n.Alias)
			}
		}
		if t.WithContext {
			b.WriteString(" with context")
		}
		b.WriteString(" %}")
	case *Macro:
		b.WriteString("{% macro ")
		b.WriteString(t.Name)
		b.WriteString("(")
		for i, p := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			if p.Default != nil {
				b.WriteString("=")
				b.WriteString(exprString(p.Default))
			}
		}
		b.WriteString(") %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endmacro %}")
	case *CallBlock:
		b.WriteString("{% call ")
		b.WriteString(callSignature(t.Callee, t.Args, t.Kwargs))
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endcall %}")
	case *Raw:
		b.WriteString("{% raw %}")
		b.WriteString(t.Text)
		b.WriteString("{% endraw %}")
	case *Autoescape:
		b.WriteString("{% autoescape ")
		if t.On {
			b.WriteString("on")
		} else {
			b.WriteString("off")
		}
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endautoescape %}")
	case *Spaceless:
		b.WriteString("{% spaceless %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endspaceless %}")
	case *With:
		b.WriteString("{% with ")
		for i, kw := range t.Bindings {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(kw.Name)
			b.WriteString("=")
			b.WriteString(exprString(kw.Value))
		}
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endwith %}")
	case *FilterTag:
		b.WriteString("{% filter ")
		b.WriteString(t.Name)
		if len(t.Args) > 0 || len(t.Kwargs) > 0 {
			b.WriteString("(")
			first := true
			for _, a := range t.Args {
				if !first {
					b.WriteString(", ")
				}
				first = false
				b.WriteString(exprString(a))
			}
			for _, name := range sortedKeys(t.Kwargs) {
				if !first {
					b.WriteString(", ")
				}
				first = false
				b.WriteString(name)
				b.WriteString("=")
				b.WriteString(exprString(t.Kwargs[name]))
			}
			b.WriteString(")")
		}
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endfilter %}")
	case *Cycle:
		b.WriteString("{% cycle ")
		for i, v := range t.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(exprString(v))
		}
		if t.As != "" {
			b.WriteString(" as ")
			b.WriteString(t.As)
		}
		if t.Silent {
			b.WriteString(" silent")
		}
		b.WriteString(" %}")
	case *IfChanged:
		b.WriteString("{% ifchanged")
		for _, v := range t.Values {
			b.WriteString(" ")
			b.WriteString(exprString(v))
		}
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		b.WriteString("{% endifchanged %}")
	case *FirstOf:
		b.WriteString("{% firstof ")
		for i, v := range t.Values {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(exprString(v))
		}
		b.WriteString(" %}")
	case *WidthRatio:
		b.WriteString("{% widthratio ")
		b.WriteString(exprString(t.Value))
		b.WriteString(" ")
		b.WriteString(exprString(t.MaxValue))
		b.WriteString(" ")
		b.WriteString(exprString(t.MaxWidth))
		b.WriteString(" %}")
	case *Lorem:
		b.WriteString("{% lorem")
		if t.Count != nil {
			b.WriteString(" ")
			b.WriteString(exprString(t.Count))
		}
		if t.Method != "" {
			b.WriteString(" ")
			b.WriteString(t.Method)
		}
		if t.Random {
			b.WriteString(" random")
		}
		b.WriteString(" %}")
	case *Now:
		b.WriteString("{% now ")
		b.WriteString(exprString(t.Format))
		b.WriteString(" %}")
	case *TemplateTag:
		b.WriteString("{% templatetag ")
		b.WriteString(t.Name)
		b.WriteString(" %}")
	case *CustomTag:
		b.WriteString("{% ")
		b.WriteString(t.Name)
		if len(t.Args) > 0 || len(t.Kwargs) > 0 {
			b.WriteString(" ")
			first := true
			for _, a := range t.Args {
				if !first {
					b.WriteString(" ")
				}
				first = false
				b.WriteString(exprString(a))
			}
			for _, kw := range t.Kwargs {
				if !first {
					b.WriteString(" ")
				}
				first = false
				b.WriteString(kw.Name)
				b.WriteString("=")
				b.WriteString(exprString(kw.Value))
			}
		}
		b.WriteString(" %}")
		formatNodes(b, t.Body)
		if len(t.Body) > 0 {
			b.WriteString("{% end")
			b.WriteString(t.Name)
			b.WriteString(" %}")
		}
	}
}

func formatIf(b *strings.Builder, n *If) {
	b.WriteString("{% if ")
	b.WriteString(exprString(n.Test))
	b.WriteString(" %}")
	formatNodes(b, n.Body)
	for _, elseNode := range n.ElseBody {
		if elif, ok := elseNode.(*If); ok && elif.IsElif {
			b.WriteString("{% elif ")
			b.WriteString(exprString(elif.Test))
			b.WriteString(" %}")
			formatNodes(b, elif.Body)
			if len(elif.ElseBody) > 0 {
				formatElseChain(b, elif.ElseBody)
			}
			b.WriteString("{% endif %}")
			return
		}
	}
	if len(n.ElseBody) > 0 {
		b.WriteString("{% else %}")
		formatNodes(b, n.ElseBody)
	}
	b.WriteString("{% endif %}")
}

// formatElseChain renders a nested elif's own ElseBody without emitting a
// second {% endif %} — the outer formatIf call owns that closing tag.
func formatElseChain(b *strings.Builder, body []Node) {
	for _, n := range body {
		if elif, ok := n.(*If); ok && elif.IsElif {
			b.WriteString("{% elif ")
			b.WriteString(exprString(elif.Test))
			b.WriteString(" %}")
			formatNodes(b, elif.Body)
			formatElseChain(b, elif.ElseBody)
			return
		}
	}
	if len(body) > 0 {
		b.WriteString("{% else %}")
		formatNodes(b, body)
	}
}

func callSignature(callee Expr, args []Expr, kwargs []KwArg) string {
	var b strings.Builder
	b.WriteString(exprString(callee))
	b.WriteString("(")
	writeArgs(&b, args, kwargs)
	b.WriteString(")")
	return b.String()
}

func writeArgs(b *strings.Builder, args []Expr, kwargs []KwArg) {
	first := true
	for _, a := range args {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(exprString(a))
	}
	for _, kw := range kwargs {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(kw.Name)
		b.WriteString("=")
		b.WriteString(exprString(kw.Value))
	}
}

func exprString(e Expr) string {
	switch t := e.(type) {
	case nil:
		return ""
	case *Name:
		return t.Ident
	case *Literal:
		return literalString(t)
	case *Unary:
		return unaryOpString(t.Op) + exprString(t.Operand)
	case *Binary:
		return exprString(t.Left) + " " + binaryOpString(t.Op) + " " + exprString(t.Right)
	case *Group:
		return "(" + exprString(t.Inner) + ")"
	case *Call:
		return callSignature(t.Callee, t.Args, t.Kwargs)
	case *Filter:
		var b strings.Builder
		b.WriteString(exprString(t.Target))
		b.WriteString(" | ")
		b.WriteString(t.Name)
		if len(t.Args) > 0 || len(t.Kwargs) > 0 {
			b.WriteString("(")
			writeArgs(&b, t.Args, t.Kwargs)
			b.WriteString(")")
		}
		return b.String()
	case *Test:
		var b strings.Builder
		b.WriteString(exprString(t.Target))
		b.WriteString(" is ")
		if t.Negated {
			b.WriteString("not ")
		}
		b.WriteString(t.Name)
		if len(t.Args) > 0 || len(t.Kwargs) > 0 {
			b.WriteString("(")
			writeArgs(&b, t.Args, t.Kwargs)
			b.WriteString(")")
		}
		return b.String()
	case *GetAttr:
		return exprString(t.Target) + "." + t.Name
	case *GetItem:
		return exprString(t.Target) + "[" + exprString(t.Index) + "]"
	case *ListLiteral:
		var b strings.Builder
		b.WriteString("[")
		for i, it := range t.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(exprString(it))
		}
		b.WriteString("]")
		return b.String()
	case *TupleLiteral:
		var b strings.Builder
		for i, it := range t.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(exprString(it))
		}
		return b.String()
	case *DictLiteral:
		var b strings.Builder
		b.WriteString("{")
		for i, p := range t.Pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(exprString(p.Key))
			b.WriteString(": ")
			b.WriteString(exprString(p.Value))
		}
		b.WriteString("}")
		return b.String()
	default:
		return ""
	}
}

func literalString(l *Literal) string {
	switch l.Kind {
	case LiteralString:
		return "\"" + strings.ReplaceAll(l.Str, "\"", "\\\"") + "\""
	case LiteralInt:
		return strconv.FormatInt(l.Int, 10)
	case LiteralFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LiteralBool:
		if l.Bool {
			return "true"
		}
		return "false"
	case LiteralNull:
		return "null"
	default:
		return ""
	}
}

func unaryOpString(op UnaryOp) string {
	switch op {
	case UnaryNot:
		return "not "
	case UnaryNeg:
		return "-"
	case UnaryPos:
		return "+"
	default:
		return ""
	}
}

// sortedKeys returns m's keys in sorted order, so formatting a FilterTag's
// keyword-argument map is deterministic across repeated Format calls (map
// iteration order is randomized per Go runtime, which would otherwise break
// idempotence).
func sortedKeys(m map[string]Expr) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func binaryOpString(op BinaryOp) string {
	switch op {
	case BinOpOr:
		return "or"
	case BinOpAnd:
		return "and"
	case BinOpEq:
		return "=="
	case BinOpNe:
		return "!="
	case BinOpLt:
		return "<"
	case BinOpLe:
		return "<="
	case BinOpGt:
		return ">"
	case BinOpGe:
		return ">="
	case BinOpIn:
		return "in"
	case BinOpNotIn:
		return "not in"
	case BinOpAdd:
		return "+"
	case BinOpSub:
		return "-"
	case BinOpConcat:
		return "~"
	case BinOpMul:
		return "*"
	case BinOpDiv:
		return "/"
	case BinOpFloorDiv:
		return "//"
	case BinOpMod:
		return "%"
	case BinOpPow:
		return "**"
	default:
		return ""
	}
}
