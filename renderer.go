package jinjaspan

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"
)

// renderer walks a Template's AST against an ExecutionContext, accumulating
// output into a string builder. It is the single AST-walking evaluator from
// spec §4.3; inference/lint/lsp consume the same AST through Walk instead,
// so rendering semantics live only here.
type renderer struct {
	ctx *ExecutionContext
	out *strings.Builder
}

// render is the package-private entry point CompiledTemplate.Execute calls.
func render(env *Environment, tpl *CompiledTemplate, globals Context, cancel CancelFunc) (string, *Sink) {
	sink := NewSink()
	ctx := newExecutionContext(env, tpl.AST, globals, sink, cancel)
	r := &renderer{ctx: ctx, out: &strings.Builder{}}
	r.renderTemplate(tpl)
	return r.out.String(), sink
}

// renderTemplate implements template inheritance (spec §4.3): it collects
// this template's block overrides before recursing into a parent named by
// a leading {% extends %}, so a child's blocks always win over an
// ancestor's — and only the root ancestor's body is ever actually emitted.
func (r *renderer) renderTemplate(tpl *CompiledTemplate) {
	if r.ctx.loadStack[tpl.Name] {
		r.ctx.sink.Addf(CatRendererTemplateCycle, SeverityError, tpl.AST.Span(), "template inheritance cycle at %q", tpl.Name)
		return
	}
	r.ctx.loadStack[tpl.Name] = true
	defer delete(r.ctx.loadStack, tpl.Name)

	r.collectBlocks(tpl.AST.Body)

	var parentExpr Expr
	for _, n := range tpl.AST.Body {
		if e, ok := n.(*Extends); ok {
			parentExpr = e.TemplateExpr
			break
		}
	}
	if parentExpr != nil {
		name := r.eval(parentExpr).String()
		parentSrc, ok := r.ctx.env.Load(name)
		if !ok {
			r.ctx.sink.Addf(CatRendererTemplateNotFound, SeverityError, parentExpr.Span(), "template %q not found", name)
			return
		}
		parentAST, parseSink := Parse(name, parentSrc, r.ctx.env)
		r.ctx.sink.Merge(parseSink)
		r.renderTemplate(&CompiledTemplate{Name: name, AST: parentAST, env: r.ctx.env})
		return
	}

	r.execNodes(tpl.AST.Body)
}

// collectBlocks registers this template's top-level {% block %} bodies as
// overrides, without overwriting one a more-derived template already set.
func (r *renderer) collectBlocks(nodes []Node) {
	for _, n := range nodes {
		if b, ok := n.(*Block); ok {
			if _, exists := r.ctx.blockOverrides[b.Name]; !exists {
				r.ctx.blockOverrides[b.Name] = b.Body
			}
		}
	}
}

// --- statement execution -------------------------------------------------

func (r *renderer) execNodes(nodes []Node) {
	for _, n := range nodes {
		if r.ctx.canceled() {
			return
		}
		r.execNode(n)
	}
}

func (r *renderer) execNode(n Node) {
	switch t := n.(type) {
	case *Text:
		r.out.WriteString(t.Value)
	case *Comment:
		// renders nothing
	case *Output:
		r.writeValue(r.eval(t.Expr))
	case *If:
		if r.eval(t.Test).IsTrue() {
			r.execNodes(t.Body)
		} else {
			r.execNodes(t.ElseBody)
		}
	case *For:
		r.execFor(t)
	case *Set:
		r.assignTarget(t.Target, r.eval(t.Value))
	case *SetBlock:
		sub := r.subRender(t.Body)
		r.assignTarget(t.Target, Safe(sub))
	case *Block:
		body := t.Body
		if override, ok := r.ctx.blockOverrides[t.Name]; ok {
			body = override
		}
		r.execNodes(body)
	case *Extends:
		// handled by renderTemplate before the body walk; nothing to do here.
	case *Include:
		r.execInclude(t)
	case *Import:
		r.execImport(t)
	case *FromImport:
		r.execFromImport(t)
	case *Macro:
		r.ctx.macros[t.Name] = t
	case *CallBlock:
		r.execCallBlock(t)
	case *Raw:
		r.out.WriteString(t.Text)
	case *Autoescape:
		prev := r.ctx.autoescape
		r.ctx.autoescape = t.On
		r.execNodes(t.Body)
		r.ctx.autoescape = prev
	case *Spaceless:
		sub := r.subRender(t.Body)
		r.out.WriteString(collapseSpaceless(sub))
	case *With:
		r.ctx.pushScope()
		for _, kw := range t.Bindings {
			r.ctx.assign(kw.Name, r.eval(kw.Value))
		}
		r.execNodes(t.Body)
		r.ctx.popScope()
	case *FilterTag:
		sub := r.subRender(t.Body)
		args := make([]*Value, len(t.Args))
		for i, a := range t.Args {
			args[i] = r.eval(a)
		}
		kwargs := make(map[string]*Value, len(t.Kwargs))
		for k, a := range t.Kwargs {
			kwargs[k] = r.eval(a)
		}
		out, err := r.applyFilter(t.Name, String(sub), args, kwargs, t.Span())
		if err == nil {
			r.writeValue(out)
		}
	case *Cycle:
		r.execCycle(t)
	case *IfChanged:
		r.execIfChanged(t)
	case *FirstOf:
		for _, v := range t.Values {
			val := r.eval(v)
			if val.IsTrue() {
				r.writeValue(val)
				return
			}
		}
	case *WidthRatio:
		r.execWidthRatio(t)
	case *Lorem:
		r.out.WriteString(lorem(t, r))
	case *Now:
		r.out.WriteString(nowFormat(r.eval(t.Format).String()))
	case *TemplateTag:
		r.out.WriteString(templateTagLiteral(t.Name))
	case *CustomTag:
		r.ctx.sink.Addf(CatRendererUnknownTagRenderer, SeverityWarning, t.Span(), "tag %q has no renderer", t.Name)
		r.execNodes(t.Body)
	default:
		r.ctx.sink.Addf(CatRendererUnsupportedNode, SeverityError, n.Span(), "renderer: unsupported node %T", n)
	}
}

// writeValue applies the ambient autoescape policy (spec §4.3) and writes
// v's stringification to the output buffer.
func (r *renderer) writeValue(v *Value) {
	s := v.String()
	if r.ctx.autoescape && v.Kind() == KindString {
		s = html.EscapeString(s)
	}
	r.out.WriteString(s)
}

// subRender executes nodes into a fresh buffer (for {% set %} block form,
// {% spaceless %}, {% filter %}, and the {% call %} body) without
// disturbing the parent output.
func (r *renderer) subRender(nodes []Node) string {
	saved := r.out
	r.out = &strings.Builder{}
	r.execNodes(nodes)
	s := r.out.String()
	r.out = saved
	return s
}

// nameOfTarget resolves a Target's bare name, used for `for` loop targets
// (spec §4.3 restricts `for` targets to Name/TupleLiteral-of-Name, unlike
// `set`, which also permits GetAttr/GetItem targets — see assignTarget).
func nameOfTarget(t Target) string {
	if n, ok := t.(*Name); ok {
		return n.Ident
	}
	return ""
}

// assignTarget implements the full `set`/`set`-block assignment contract
// from spec §3: Target is Name, GetAttr, GetItem, or a TupleLiteral of
// targets. GetAttr/GetItem assign into the evaluated container in place
// (StringDict's backing map, or a List's backing slice) so aliases of the
// container observe the write, matching how GetAttr/GetItem read it.
func (r *renderer) assignTarget(t Target, v *Value) {
	switch target := t.(type) {
	case *Name:
		r.ctx.assign(target.Ident, v)
	case *GetAttr:
		container := r.eval(target.Target)
		if container.Kind() != KindStringDict {
			r.ctx.sink.Addf(CatRendererTypeMismatch, SeverityError, target.Span(),
				"cannot assign %q: target is not a dict", target.Name)
			return
		}
		if _, ok := container.sdict[target.Name]; !ok {
			container.sorder = append(container.sorder, target.Name)
		}
		container.sdict[target.Name] = v
	case *GetItem:
		container := r.eval(target.Target)
		index := r.eval(target.Index)
		switch container.Kind() {
		case KindList:
			i := int(index.Int64())
			if i < 0 {
				i += len(container.list)
			}
			if i < 0 || i >= len(container.list) {
				r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityInfo, target.Span(),
					"index %s out of range for assignment", index.String())
				return
			}
			container.list[i] = v
		case KindStringDict:
			key := index.String()
			if _, ok := container.sdict[key]; !ok {
				container.sorder = append(container.sorder, key)
			}
			container.sdict[key] = v
		default:
			r.ctx.sink.Addf(CatRendererTypeMismatch, SeverityError, target.Span(),
				"cannot assign item: target is not a list or dict")
		}
	case *TupleLiteral:
		if v.IsList() && v.Len() == len(target.Items) {
			items := v.Items()
			for i, item := range target.Items {
				r.assignTarget(item, items[i])
			}
			return
		}
		r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityInfo, t.Span(),
			"tuple target arity %d does not match value of length %d", len(target.Items), v.Len())
		for _, item := range target.Items {
			if n, ok := item.(*Name); ok {
				r.ctx.assign(n.Ident, Undefined(n.Ident))
			}
		}
	default:
		r.ctx.sink.Addf(CatRendererUnsupportedNode, SeverityError, t.Span(),
			"unsupported assignment target %T", t)
	}
}

func (r *renderer) execFor(f *For) {
	iter := r.eval(f.Iter)
	if !iter.IsList() && !iter.IsDict() {
		r.ctx.sink.Addf(CatRendererNotIterable, SeverityError, f.Iter.Span(), "value is not iterable")
		r.execNodes(f.ElseBody)
		return
	}
	names := targetNames(f.Target)
	isDict := iter.IsDict()
	r.ctx.pushScope()
	defer r.ctx.popScope()

	iter.Iterate(func(index int, key, value *Value) bool {
		if r.ctx.canceled() {
			return false
		}
		bindLoopTargets(r.ctx, names, key, value, isDict, f.Iter.Span())
		r.ctx.assign("loop", loopValue(index, iter.Len()))
		r.execNodes(f.Body)
		return true
	}, func() {
		r.execNodes(f.ElseBody)
	})
}

// targetNames flattens a Target into its component bare names, in order;
// a single Name yields one entry, a TupleLiteral (e.g. `for k, v in ...`)
// yields one per element.
func targetNames(t Target) []string {
	if tup, ok := t.(*TupleLiteral); ok {
		names := make([]string, len(tup.Items))
		for i, it := range tup.Items {
			names[i] = nameOfTarget(it)
		}
		return names
	}
	return []string{nameOfTarget(t)}
}

// bindLoopTargets assigns key/value to the loop's target name(s). A single
// name binds to value directly. Two names over a dict are the idiomatic
// `for k, v in d` form: key is the dict key and value is the dict value,
// always well-defined regardless of value's shape, so no arity check
// applies there. Two or more names over a list destructure a
// matching-length list out of each element (`for a, b in pairs`-style);
// per spec §4.3, a list element that isn't a matching-arity list renders
// empty (all names bound to Undefined) and emits Renderer/InvalidOperand,
// rather than silently falling back to the iteration's own key/value pair.
func bindLoopTargets(ctx *ExecutionContext, names []string, key, value *Value, isDict bool, span Span) {
	if len(names) <= 1 {
		if len(names) == 1 {
			ctx.assign(names[0], value)
		}
		return
	}
	if isDict {
		if len(names) == 2 {
			ctx.assign(names[0], key)
			ctx.assign(names[1], value)
			return
		}
		ctx.sink.Addf(CatRendererInvalidOperand, SeverityInfo, span,
			"tuple target arity %d does not match dict iteration's key/value pair", len(names))
		ctx.assign(names[0], key)
		ctx.assign(names[1], value)
		for _, name := range names[2:] {
			ctx.assign(name, Undefined(name))
		}
		return
	}
	if value.IsList() && value.Len() == len(names) {
		items := value.Items()
		for i, name := range names {
			ctx.assign(name, items[i])
		}
		return
	}
	ctx.sink.Addf(CatRendererInvalidOperand, SeverityInfo, span,
		"tuple target arity %d does not match value of length %d", len(names), value.Len())
	for _, name := range names {
		ctx.assign(name, Undefined(name))
	}
}

func loopValue(index, length int) *Value {
	entries := map[string]*Value{
		"index":     Int(int64(index + 1)),
		"index0":    Int(int64(index)),
		"revindex":  Int(int64(length - index)),
		"revindex0": Int(int64(length - index - 1)),
		"first":     Bool(index == 0),
		"last":      Bool(index == length-1),
		"length":    Int(int64(length)),
	}
	order := []string{"index", "index0", "revindex", "revindex0", "first", "last", "length"}
	return StringDict(entries, order)
}

func collapseSpaceless(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '>' {
			b.WriteRune(r)
			j := i + 1
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\n' || runes[j] == '\t' || runes[j] == '\r') {
				j++
			}
			if j < len(runes) && runes[j] == '<' {
				i = j - 1
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// --- includes / imports ---------------------------------------------------

func (r *renderer) execInclude(n *Include) {
	name := r.eval(n.TemplateExpr).String()
	src, ok := r.ctx.env.Load(name)
	if !ok {
		if !n.IgnoreMissing {
			r.ctx.sink.Addf(CatRendererTemplateNotFound, SeverityError, n.Span(), "template %q not found", name)
		}
		return
	}
	ast, sink := Parse(name, src, r.ctx.env)
	r.ctx.sink.Merge(sink)

	if n.WithoutContext {
		sub := &renderer{ctx: newExecutionContext(r.ctx.env, ast, nil, r.ctx.sink, r.ctx.cancel), out: &strings.Builder{}}
		sub.execNodes(ast.Body)
		r.out.WriteString(sub.out.String())
		return
	}
	r.ctx.pushScope()
	r.execNodes(ast.Body)
	r.ctx.popScope()
}

// loadMacros parses name under the renderer's environment and collects its
// top-level macro definitions, used by {% import %}/{% from %}.
func (r *renderer) loadMacros(name string, span Span) (map[string]*Macro, bool) {
	if r.ctx.loadStack[name] {
		r.ctx.sink.Addf(CatRendererTemplateCycle, SeverityError, span, "import cycle at %q", name)
		return nil, false
	}
	src, ok := r.ctx.env.Load(name)
	if !ok {
		r.ctx.sink.Addf(CatRendererTemplateNotFound, SeverityError, span, "template %q not found", name)
		return nil, false
	}
	ast, sink := Parse(name, src, r.ctx.env)
	r.ctx.sink.Merge(sink)

	r.ctx.loadStack[name] = true
	defer delete(r.ctx.loadStack, name)

	macros := make(map[string]*Macro)
	for _, n := range ast.Body {
		if m, ok := n.(*Macro); ok {
			macros[m.Name] = m
		}
	}
	return macros, true
}

func (r *renderer) execImport(n *Import) {
	name := r.eval(n.TemplateExpr).String()
	macros, ok := r.loadMacros(name, n.Span())
	if !ok {
		return
	}
	r.ctx.macroNamespaces[n.Alias] = macros
	entries := make(map[string]*Value, len(macros))
	order := make([]string, 0, len(macros))
	for mname := range macros {
		order = append(order, mname)
	}
	sort.Strings(order)
	for _, mname := range order {
		m := macros[mname]
		entries[mname] = CallableValue(func(args []*Value, kwargs map[string]*Value, ctx *ExecutionContext) (*Value, error) {
			return r.callMacro(m, args, kwargs)
		})
	}
	r.ctx.assign(n.Alias, StringDict(entries, order))
}

func (r *renderer) execFromImport(n *FromImport) {
	name := r.eval(n.TemplateExpr).String()
	macros, ok := r.loadMacros(name, n.Span())
	if !ok {
		return
	}
	for _, entry := range n.Names {
		m, ok := macros[entry.Name]
		if !ok {
			r.ctx.sink.Addf(CatRendererUnknownMacro, SeverityError, n.Span(), "template %q has no macro %q", name, entry.Name)
			continue
		}
		bindName := entry.Name
		if entry.Alias != "" {
			bindName = entry.Alias
		}
		r.ctx.macros[bindName] = m
		boundMacro := m
		r.ctx.assign(bindName, CallableValue(func(args []*Value, kwargs map[string]*Value, ctx *ExecutionContext) (*Value, error) {
			return r.callMacro(boundMacro, args, kwargs)
		}))
	}
}

// --- macros / call blocks --------------------------------------------------

func (r *renderer) callMacro(m *Macro, args []*Value, kwargs map[string]*Value) (*Value, error) {
	if r.ctx.macroDepth >= r.ctx.env.MaxMacroDepth {
		r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, m.Span(), "macro %q exceeded max call depth", m.Name)
		return Safe(""), nil
	}
	r.ctx.macroDepth++
	defer func() { r.ctx.macroDepth-- }()

	r.ctx.pushScope()
	for i, param := range m.Params {
		switch {
		case i < len(args):
			r.ctx.assign(param.Name, args[i])
		case kwargs != nil && kwargs[param.Name] != nil:
			r.ctx.assign(param.Name, kwargs[param.Name])
		case param.Default != nil:
			r.ctx.assign(param.Name, r.eval(param.Default))
		default:
			r.ctx.sink.Addf(CatRendererMissingRequiredArg, SeverityError, m.Span(), "macro %q missing argument %q", m.Name, param.Name)
			r.ctx.assign(param.Name, Undefined(param.Name))
		}
	}
	out := r.subRender(m.Body)
	r.ctx.popScope()
	return Safe(out), nil
}

func (r *renderer) execCallBlock(n *CallBlock) {
	m, ok := r.resolveMacro(n.Callee)
	if !ok {
		r.ctx.sink.Addf(CatRendererUnknownMacro, SeverityError, n.Span(), "call: unknown macro")
		return
	}
	callerBody := r.subRender(n.Body)
	r.ctx.pushCaller(callerBody)
	args, kwargs := r.evalArgs(n.Args, n.Kwargs)
	result, _ := r.callMacro(m, args, kwargs)
	r.ctx.popCaller()
	r.writeValue(result)
}

// resolveMacro resolves a callee expression (Name or ns.Name) to a
// registered macro definition.
func (r *renderer) resolveMacro(e Expr) (*Macro, bool) {
	switch t := e.(type) {
	case *Name:
		m, ok := r.ctx.macros[t.Ident]
		return m, ok
	case *GetAttr:
		if nsName, ok := t.Target.(*Name); ok {
			if ns, ok := r.ctx.macroNamespaces[nsName.Ident]; ok {
				m, ok := ns[t.Name]
				return m, ok
			}
		}
	}
	return nil, false
}

// --- expression evaluation -------------------------------------------------

func (r *renderer) eval(e Expr) *Value {
	if e == nil {
		return Null()
	}
	switch t := e.(type) {
	case *Name:
		if t.Ident == "caller" {
			if v, ok := r.ctx.topCaller(); ok {
				return v
			}
		}
		return r.ctx.resolveName(t.Ident, t.Span())
	case *Literal:
		return r.evalLiteral(t)
	case *Unary:
		return r.evalUnary(t)
	case *Binary:
		return r.evalBinary(t)
	case *Group:
		return r.eval(t.Inner)
	case *Call:
		return r.evalCall(t)
	case *Filter:
		return r.evalFilterExpr(t)
	case *Test:
		return r.evalTest(t)
	case *GetAttr:
		target := r.eval(t.Target)
		v := target.GetAttr(t.Name)
		if r.ctx.env.StrictUndefined && v.IsUndefined() && !target.IsUndefined() {
			r.ctx.sink.Addf(CatRendererStrictUndefined, SeverityError, t.Span(), "undefined attribute %q", t.Name)
		}
		return v
	case *GetItem:
		index := r.eval(t.Index)
		v, found := r.eval(t.Target).GetItem(index)
		if !found {
			r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityInfo, t.Span(),
				"index %s not found", index.String())
		}
		return v
	case *ListLiteral:
		items := make([]*Value, len(t.Items))
		for i, it := range t.Items {
			items[i] = r.eval(it)
		}
		return List(items)
	case *TupleLiteral:
		items := make([]*Value, len(t.Items))
		for i, it := range t.Items {
			items[i] = r.eval(it)
		}
		return List(items)
	case *DictLiteral:
		return r.evalDict(t)
	default:
		r.ctx.sink.Addf(CatRendererUnsupportedNode, SeverityError, e.Span(), "renderer: unsupported expression %T", e)
		return Null()
	}
}

func (r *renderer) evalLiteral(l *Literal) *Value {
	switch l.Kind {
	case LiteralString:
		return String(l.Str)
	case LiteralInt:
		return Int(l.Int)
	case LiteralFloat:
		return Float(l.Float)
	case LiteralBool:
		return Bool(l.Bool)
	default:
		return Null()
	}
}

func (r *renderer) evalUnary(u *Unary) *Value {
	switch u.Op {
	case UnaryNot:
		return Bool(!r.eval(u.Operand).IsTrue())
	case UnaryNeg:
		v := r.eval(u.Operand)
		if v.IsFloat() {
			return Float(-v.Float64())
		}
		return Int(-v.Int64())
	case UnaryPos:
		return r.eval(u.Operand)
	default:
		return Null()
	}
}

func (r *renderer) evalBinary(b *Binary) *Value {
	switch b.Op {
	case BinOpOr:
		l := r.eval(b.Left)
		if l.IsTrue() {
			return l
		}
		return r.eval(b.Right)
	case BinOpAnd:
		l := r.eval(b.Left)
		if !l.IsTrue() {
			return l
		}
		return r.eval(b.Right)
	}

	left := r.eval(b.Left)
	right := r.eval(b.Right)
	switch b.Op {
	case BinOpEq:
		return Bool(left.EqualValueTo(right))
	case BinOpNe:
		return Bool(!left.EqualValueTo(right))
	case BinOpLt, BinOpLe, BinOpGt, BinOpGe:
		return r.evalCompare(b.Op, left, right, b.Span())
	case BinOpIn:
		return Bool(right.Contains(left))
	case BinOpNotIn:
		return Bool(!right.Contains(left))
	case BinOpConcat:
		return String(left.String() + right.String())
	case BinOpAdd, BinOpSub, BinOpMul, BinOpDiv, BinOpFloorDiv, BinOpMod, BinOpPow:
		return r.evalArith(b.Op, left, right, b.Span())
	default:
		return Null()
	}
}

func (r *renderer) evalCompare(op BinaryOp, left, right *Value, span Span) *Value {
	var cmp int
	switch {
	case left.IsNumber() && right.IsNumber():
		lf, rf := left.Float64(), right.Float64()
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	case left.IsString() && right.IsString():
		cmp = strings.Compare(left.RawString(), right.RawString())
	default:
		r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, span, "cannot compare incompatible types")
		return Bool(false)
	}
	switch op {
	case BinOpLt:
		return Bool(cmp < 0)
	case BinOpLe:
		return Bool(cmp <= 0)
	case BinOpGt:
		return Bool(cmp > 0)
	case BinOpGe:
		return Bool(cmp >= 0)
	default:
		return Bool(false)
	}
}

func (r *renderer) evalArith(op BinaryOp, left, right *Value, span Span) *Value {
	if !left.IsNumber() || !right.IsNumber() {
		r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, span, "arithmetic on non-numeric operand")
		return Undefined("")
	}
	useFloat := left.IsFloat() || right.IsFloat() || op == BinOpDiv || op == BinOpPow
	if useFloat {
		lf, rf := left.Float64(), right.Float64()
		switch op {
		case BinOpAdd:
			return Float(lf + rf)
		case BinOpSub:
			return Float(lf - rf)
		case BinOpMul:
			return Float(lf * rf)
		case BinOpDiv:
			if rf == 0 {
				r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, span, "division by zero")
				return Undefined("")
			}
			return Float(lf / rf)
		case BinOpFloorDiv:
			if rf == 0 {
				r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, span, "division by zero")
				return Undefined("")
			}
			return Float(math.Floor(lf / rf))
		case BinOpMod:
			if rf == 0 {
				r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, span, "modulo by zero")
				return Undefined("")
			}
			return Float(lf - rf*math.Floor(lf/rf))
		case BinOpPow:
			return Float(math.Pow(lf, rf))
		}
	}
	li, ri := left.Int64(), right.Int64()
	switch op {
	case BinOpAdd:
		return Int(li + ri)
	case BinOpSub:
		return Int(li - ri)
	case BinOpMul:
		return Int(li * ri)
	case BinOpFloorDiv:
		if ri == 0 {
			r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, span, "division by zero")
			return Undefined("")
		}
		return Int(floorDivInt(li, ri))
	case BinOpMod:
		if ri == 0 {
			r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, span, "modulo by zero")
			return Undefined("")
		}
		return Int(((li % ri) + ri) % ri)
	}
	return Undefined("")
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (r *renderer) evalDict(d *DictLiteral) *Value {
	allStringKeys := true
	for _, p := range d.Pairs {
		if _, ok := p.Key.(*Literal); !ok {
			allStringKeys = false
			break
		}
		if lit := p.Key.(*Literal); lit.Kind != LiteralString {
			allStringKeys = false
			break
		}
	}
	if allStringKeys {
		m := make(map[string]*Value, len(d.Pairs))
		order := make([]string, 0, len(d.Pairs))
		for _, p := range d.Pairs {
			k := p.Key.(*Literal).Str
			if _, exists := m[k]; !exists {
				order = append(order, k)
			}
			m[k] = r.eval(p.Value)
		}
		return StringDict(m, order)
	}
	entries := make([]DictEntry, len(d.Pairs))
	for i, p := range d.Pairs {
		entries[i] = DictEntry{Key: r.eval(p.Key), Value: r.eval(p.Value)}
	}
	return ValueDict(entries)
}

// --- calls / filters / tests -----------------------------------------------

func (r *renderer) evalCall(c *Call) *Value {
	if name, ok := c.Callee.(*Name); ok {
		if name.Ident == "caller" {
			if v, ok := r.ctx.topCaller(); ok {
				return v
			}
			r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityInfo, c.Span(),
				"caller() used outside a call block")
			return Undefined("caller")
		}
		args, kwargs := r.evalArgs(c.Args, c.Kwargs)
		if m, ok := r.ctx.macros[name.Ident]; ok {
			v, _ := r.callMacro(m, args, kwargs)
			return v
		}
		if fn, ok := r.ctx.env.function(name.Ident); ok {
			v, err := fn(args, kwargs, r.ctx)
			if err != nil {
				r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, c.Span(), "function %q: %v", name.Ident, err)
				return Undefined(name.Ident)
			}
			return v
		}
		// name.Ident is being called, not read as a plain variable: look it up
		// quietly (no UnknownVariable diagnostic) so a context-bound Callable
		// (spec.md's tagged-union Callable kind) still works, but report
		// Renderer/UnknownFunction — not a second, contradictory
		// UnknownVariable — when it isn't bound to anything callable at all.
		if v, ok := r.ctx.lookup(name.Ident); ok {
			if fn, ok := v.AsCallable(); ok {
				result, err := fn(args, kwargs, r.ctx)
				if err != nil {
					r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, c.Span(), "call failed: %v", err)
					return Undefined(name.Ident)
				}
				return result
			}
			r.ctx.sink.Addf(CatRendererUnknownFunction, SeverityError, c.Span(), "value %q is not callable", name.Ident)
			return Undefined(name.Ident)
		}
		r.ctx.sink.Addf(CatRendererUnknownFunction, SeverityError, c.Span(), "unknown function %q", name.Ident)
		return Undefined(name.Ident)
	}
	if m, ok := r.resolveMacro(c.Callee); ok {
		args, kwargs := r.evalArgs(c.Args, c.Kwargs)
		v, _ := r.callMacro(m, args, kwargs)
		return v
	}
	callee := r.eval(c.Callee)
	if fn, ok := callee.AsCallable(); ok {
		args, kwargs := r.evalArgs(c.Args, c.Kwargs)
		v, err := fn(args, kwargs, r.ctx)
		if err != nil {
			r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, c.Span(), "call failed: %v", err)
			return Undefined("")
		}
		return v
	}
	r.ctx.sink.Addf(CatRendererUnknownFunction, SeverityError, c.Span(), "value is not callable")
	return Undefined("")
}

func (r *renderer) evalArgs(argExprs []Expr, kwargExprs []KwArg) ([]*Value, map[string]*Value) {
	args := make([]*Value, len(argExprs))
	for i, a := range argExprs {
		args[i] = r.eval(a)
	}
	kwargs := make(map[string]*Value, len(kwargExprs))
	for _, kw := range kwargExprs {
		kwargs[kw.Name] = r.eval(kw.Value)
	}
	return args, kwargs
}

// evalQuiet evaluates a bare Name the same way eval does but without
// resolveName's UnknownVariable/StrictUndefined diagnostic: used by the
// handful of consumers (default/default_if_none, the defined/undefined
// tests) whose entire purpose is to probe for an undefined value, so the
// diagnostic they'd trigger would just double-report what they themselves
// already handle. Non-Name targets (e.g. a GetAttr chain) still eval
// normally, since those diagnostics come from elsewhere in the chain.
func (r *renderer) evalQuiet(e Expr) *Value {
	name, ok := e.(*Name)
	if !ok {
		return r.eval(e)
	}
	if name.Ident == "caller" {
		if v, ok := r.ctx.topCaller(); ok {
			return v
		}
	}
	if v, ok := r.ctx.lookup(name.Ident); ok {
		return v
	}
	return Undefined(name.Ident)
}

func (r *renderer) evalFilterExpr(f *Filter) *Value {
	var in *Value
	if f.Name == "default" || f.Name == "default_if_none" {
		in = r.evalQuiet(f.Target)
	} else {
		in = r.eval(f.Target)
	}
	args, kwargs := r.evalArgs(f.Args, f.Kwargs)
	v, err := r.applyFilter(f.Name, in, args, kwargs, f.Span())
	if err != nil {
		return Undefined("")
	}
	return v
}

func (r *renderer) applyFilter(name string, in *Value, args []*Value, kwargs map[string]*Value, span Span) (*Value, error) {
	fn, ok := r.ctx.env.filter(name)
	if !ok {
		r.ctx.sink.Addf(CatRendererUnknownFilter, SeverityError, span, "unknown filter %q", name)
		return Undefined(""), fmt.Errorf("unknown filter %q", name)
	}
	v, err := fn(in, args, kwargs, r.ctx)
	if err != nil {
		r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, span, "filter %q: %v", name, err)
		return Undefined(""), err
	}
	return v, nil
}

func (r *renderer) evalTest(t *Test) *Value {
	var in *Value
	if t.Name == "defined" || t.Name == "undefined" {
		in = r.evalQuiet(t.Target)
	} else {
		in = r.eval(t.Target)
	}
	fn, ok := r.ctx.env.test(t.Name)
	if !ok {
		r.ctx.sink.Addf(CatRendererUnknownTest, SeverityError, t.Span(), "unknown test %q", t.Name)
		return Bool(false)
	}
	args, kwargs := r.evalArgs(t.Args, t.Kwargs)
	ok2, err := fn(in, args, kwargs, r.ctx)
	if err != nil {
		r.ctx.sink.Addf(CatRendererInvalidOperand, SeverityError, t.Span(), "test %q: %v", t.Name, err)
		return Bool(false)
	}
	if t.Negated {
		return Bool(!ok2)
	}
	return Bool(ok2)
}
