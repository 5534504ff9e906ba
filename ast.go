package jinjaspan

// Node is implemented by every statement-level AST node. Grounded on the
// teacher's INode/nodes.go shape, generalized to carry a span and accept a
// cancellable Visitor instead of executing directly against a writer (that
// lives in renderer.go now, keeping the AST a pure data structure).
type Node interface {
	Span() Span
	Accept(v Visitor) bool
}

// Expr is implemented by every expression-level AST node.
type Expr interface {
	Span() Span
	Accept(v Visitor) bool
}

// Target is the subset of Expr permitted on the left of set/for: Name,
// GetAttr, GetItem, or a TupleLiteral of targets.
type Target = Expr

// baseSpan is embedded by every node/expr to provide Span() without
// repeating the field + method everywhere.
type baseSpan struct{ span Span }

func (b baseSpan) Span() Span { return b.span }

// ---- Statements -------------------------------------------------------

// Template is the root of a parsed document.
type Template struct {
	baseSpan
	Body []Node
}

// Text is verbatim source text outside any delimiter.
type Text struct {
	baseSpan
	Value string
}

// Comment is a {# ... #} block; it renders nothing.
type Comment struct {
	baseSpan
	Value string
}

// Output is {{ expr }}, optionally carrying trim flags from its delimiters.
type Output struct {
	baseSpan
	Expr      Expr
	TrimLeft  bool
	TrimRight bool
}

// If is {% if test %}body{% else %}elseBody{% endif %}. An "elif" is
// represented as a nested *If stored as the sole element of ElseBody, with
// IsElif set so pretty-printers can tell the two apart.
type If struct {
	baseSpan
	Test      Expr
	Body      []Node
	ElseBody  []Node
	IsElif    bool
}

// For is {% for target in iter %}body{% else %}elseBody{% endfor %}.
type For struct {
	baseSpan
	Target   Target
	Iter     Expr
	Body     []Node
	ElseBody []Node
}

// Set is the single-line form: {% set target = value %}.
type Set struct {
	baseSpan
	Target Target
	Value  Expr
}

// SetBlock is the block form: {% set target %}body{% endset %}; the
// rendered body text becomes target's value.
type SetBlock struct {
	baseSpan
	Target Target
	Body   []Node
}

// Block is a named, overridable inheritance region.
type Block struct {
	baseSpan
	Name string
	Body []Node
}

// Extends names the parent template to inherit from.
type Extends struct {
	baseSpan
	TemplateExpr Expr
}

// Include renders another template inline.
type Include struct {
	baseSpan
	TemplateExpr  Expr
	WithContext   bool
	WithoutContext bool
	IgnoreMissing bool
}

// Import loads another template's macros under a single alias namespace.
type Import struct {
	baseSpan
	TemplateExpr Expr
	Alias        string
}

// FromImportName is one `name [as alias]` entry in a from-import list.
type FromImportName struct {
	Name  string
	Alias string
}

// FromImport loads specific macros from another template.
type FromImport struct {
	baseSpan
	TemplateExpr Expr
	Names        []FromImportName
	WithContext  bool
}

// MacroParam is one parameter in a macro's signature, with an optional
// default expression.
type MacroParam struct {
	Name    string
	Default Expr // nil if no default
}

// Macro defines a named, callable template fragment.
type Macro struct {
	baseSpan
	Name   string
	Params []MacroParam
	Body   []Node
}

// CallBlock is {% call callee(args) %}body{% endcall %}; body becomes the
// result of caller() inside callee if callee is a macro.
type CallBlock struct {
	baseSpan
	Callee Expr
	Args   []Expr
	Kwargs []KwArg
	Body   []Node
}

// Raw is {% raw %}...{% endraw %}: its Text is a verbatim concatenation of
// inner token lexemes with no interpretation.
type Raw struct {
	baseSpan
	Text string
}

// Autoescape is {% autoescape on|off %}body{% endautoescape %} — overrides
// the ambient escaping policy for its body (SPEC_FULL.md §12).
type Autoescape struct {
	baseSpan
	On   bool
	Body []Node
}

// Spaceless is {% spaceless %}body{% endspaceless %}: collapses whitespace
// between HTML tags in its rendered body.
type Spaceless struct {
	baseSpan
	Body []Node
}

// With is {% with name=expr, ... %}body{% endwith %}: opens a scope with
// the given bindings for the duration of its body.
type With struct {
	baseSpan
	Bindings []KwArg
	Body     []Node
}

// FilterTag is {% filter name(args) %}body{% endfilter %}: pipes its
// rendered body text through one named filter.
type FilterTag struct {
	baseSpan
	Name   string
	Args   []Expr
	Kwargs map[string]Expr
	Body   []Node
}

// Cycle is {% cycle a, b, c %} or {% cycle a, b, c as name %}: yields the
// next value in sequence on each visit, keyed by position or by name.
type Cycle struct {
	baseSpan
	Values []Expr
	As     string
	Silent bool
}

// IfChanged is {% ifchanged %}body{% endifchanged %} or the value form
// {% ifchanged val1 val2 %}: renders only when its value differs from the
// last time this tag instance rendered.
type IfChanged struct {
	baseSpan
	Values []Expr
	Body   []Node
}

// FirstOf is {% firstof a b c "default" %}: outputs the first truthy
// argument, unescaped.
type FirstOf struct {
	baseSpan
	Values []Expr
}

// WidthRatio is {% widthratio value max_value max_width %}.
type WidthRatio struct {
	baseSpan
	Value    Expr
	MaxValue Expr
	MaxWidth Expr
}

// Lorem is {% lorem [count] [method] [random] %} placeholder-text generator.
type Lorem struct {
	baseSpan
	Count  Expr
	Method string // "w" words, "p" paragraphs, "b" bytes
	Random bool
}

// Now is {% now "format" %}: outputs the current time formatted per the
// given (strftime-like) layout string.
type Now struct {
	baseSpan
	Format Expr
}

// TemplateTag is {% templatetag name %}: outputs one of the literal
// delimiter sequences ("openblock", "closevariable", ...) that would
// otherwise need escaping to appear in a template's own output.
type TemplateTag struct {
	baseSpan
	Name string
}

// CustomTag is a placeholder node for a tag the Environment registered via
// register_tag but whose handler declined to build its own node (or for an
// end-tag-bearing tag whose handler returned "no node"). It carries the
// tag name, whatever args/kwargs the handler parsed (possibly none), and
// its body so that downstream consumers (renderer, linter, LSP) always see
// a valid, spanned node.
type CustomTag struct {
	baseSpan
	Name   string
	Args   []Expr
	Kwargs []KwArg
	Body   []Node
}

// ---- Expressions --------------------------------------------------------

// Name is a bare identifier reference.
type Name struct {
	baseSpan
	Ident string
}

// LiteralKind tags which Go type a Literal expression's Value holds.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralBool
	LiteralNull
)

// Literal is a constant value written directly in source.
type Literal struct {
	baseSpan
	Kind  LiteralKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// UnaryOp enumerates unary expression operators.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryPos
)

// Unary is a prefix operator applied to one operand.
type Unary struct {
	baseSpan
	Op      UnaryOp
	Operand Expr
}

// BinaryOp enumerates binary expression operators, covering the full
// precedence table from spec §4.2.
type BinaryOp int

const (
	BinOpOr BinaryOp = iota
	BinOpAnd
	BinOpEq
	BinOpNe
	BinOpLt
	BinOpLe
	BinOpGt
	BinOpGe
	BinOpIn
	BinOpNotIn
	BinOpAdd
	BinOpSub
	BinOpConcat // ~
	BinOpMul
	BinOpDiv
	BinOpFloorDiv // //
	BinOpMod
	BinOpPow // **
)

// Binary is a two-operand operator expression.
type Binary struct {
	baseSpan
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Group is a parenthesized single expression, distinct from a one-element
// tuple (Jinja2/this language requires a trailing comma for a 1-tuple).
type Group struct {
	baseSpan
	Inner Expr
}

// KwArg is one `name=value` keyword argument in a Call/Filter/Test/CallBlock.
type KwArg struct {
	Name  string
	Value Expr
}

// Call is a function or macro invocation: callee(args, kwargs).
type Call struct {
	baseSpan
	Callee Expr
	Args   []Expr
	Kwargs []KwArg
}

// Filter is `expr | name(args, kwargs)`.
type Filter struct {
	baseSpan
	Target Expr
	Name   string
	Args   []Expr
	Kwargs []KwArg
}

// Test is `expr is [not] name(args, kwargs)`.
type Test struct {
	baseSpan
	Target  Expr
	Name    string
	Args    []Expr
	Kwargs  []KwArg
	Negated bool
}

// GetAttr is `target.name`.
type GetAttr struct {
	baseSpan
	Target Expr
	Name   string
}

// GetItem is `target[index]`.
type GetItem struct {
	baseSpan
	Target Expr
	Index  Expr
}

// ListLiteral is `[a, b, c]`.
type ListLiteral struct {
	baseSpan
	Items []Expr
}

// TupleLiteral is `(a, b, c)`; the same node also serves as a
// tuple-of-targets on the left of set/for (e.g. `for k, v in items`).
type TupleLiteral struct {
	baseSpan
	Items []Expr
}

// DictPair is one `key: value` entry in a DictLiteral.
type DictPair struct {
	Key   Expr
	Value Expr
}

// DictLiteral is `{k: v, ...}`.
type DictLiteral struct {
	baseSpan
	Pairs []DictPair
}

// ---- Visitor --------------------------------------------------------

// Visitor is implemented by callers that want to walk an AST (renderer,
// inference index, linter, formatter). Each Visit* method returns false to
// request early termination (cooperative cancellation, see spec §5);
// returning true continues the walk. VisitNode/VisitExpr are the single
// entry points Walk uses; a Visitor that only cares about a few node types
// can type-switch on n/e itself.
type Visitor interface {
	VisitNode(n Node) bool
	VisitExpr(e Expr) bool
}

// CancelFunc is polled between node visits by Walk; when it returns true
// the walk stops early and Walk returns false.
type CancelFunc func() bool

// Walk performs a depth-first traversal of nodes, calling v.VisitNode on
// each node and recursing into structural children. It is the single
// traversal every consumer (renderer for side-effect-free passes, index
// builder, linter) shares, so cancellation and ordering stay consistent.
func Walk(nodes []Node, v Visitor, cancel CancelFunc) bool {
	for _, n := range nodes {
		if cancel != nil && cancel() {
			return false
		}
		if !walkNode(n, v, cancel) {
			return false
		}
	}
	return true
}

func walkNode(n Node, v Visitor, cancel CancelFunc) bool {
	if !v.VisitNode(n) {
		return false
	}
	switch t := n.(type) {
	case *Template:
		return Walk(t.Body, v, cancel)
	case *Output:
		return walkExpr(t.Expr, v, cancel)
	case *If:
		if !walkExpr(t.Test, v, cancel) {
			return false
		}
		if !Walk(t.Body, v, cancel) {
			return false
		}
		return Walk(t.ElseBody, v, cancel)
	case *For:
		if !walkExpr(t.Target, v, cancel) {
			return false
		}
		if !walkExpr(t.Iter, v, cancel) {
			return false
		}
		if !Walk(t.Body, v, cancel) {
			return false
		}
		return Walk(t.ElseBody, v, cancel)
	case *Set:
		if !walkExpr(t.Target, v, cancel) {
			return false
		}
		return walkExpr(t.Value, v, cancel)
	case *SetBlock:
		if !walkExpr(t.Target, v, cancel) {
			return false
		}
		return Walk(t.Body, v, cancel)
	case *Block:
		return Walk(t.Body, v, cancel)
	case *Extends:
		return walkExpr(t.TemplateExpr, v, cancel)
	case *Include:
		return walkExpr(t.TemplateExpr, v, cancel)
	case *Import:
		return walkExpr(t.TemplateExpr, v, cancel)
	case *FromImport:
		return walkExpr(t.TemplateExpr, v, cancel)
	case *Macro:
		for _, p := range t.Params {
			if p.Default != nil && !walkExpr(p.Default, v, cancel) {
				return false
			}
		}
		return Walk(t.Body, v, cancel)
	case *CallBlock:
		if !walkExpr(t.Callee, v, cancel) {
			return false
		}
		for _, a := range t.Args {
			if !walkExpr(a, v, cancel) {
				return false
			}
		}
		for _, kw := range t.Kwargs {
			if !walkExpr(kw.Value, v, cancel) {
				return false
			}
		}
		return Walk(t.Body, v, cancel)
	case *CustomTag:
		for _, a := range t.Args {
			if !walkExpr(a, v, cancel) {
				return false
			}
		}
		return Walk(t.Body, v, cancel)
	case *Autoescape:
		return Walk(t.Body, v, cancel)
	case *Spaceless:
		return Walk(t.Body, v, cancel)
	case *With:
		for _, kw := range t.Bindings {
			if !walkExpr(kw.Value, v, cancel) {
				return false
			}
		}
		return Walk(t.Body, v, cancel)
	case *FilterTag:
		for _, a := range t.Args {
			if !walkExpr(a, v, cancel) {
				return false
			}
		}
		for _, a := range t.Kwargs {
			if !walkExpr(a, v, cancel) {
				return false
			}
		}
		return Walk(t.Body, v, cancel)
	case *Cycle:
		for _, val := range t.Values {
			if !walkExpr(val, v, cancel) {
				return false
			}
		}
		return true
	case *IfChanged:
		for _, val := range t.Values {
			if !walkExpr(val, v, cancel) {
				return false
			}
		}
		return Walk(t.Body, v, cancel)
	case *FirstOf:
		for _, val := range t.Values {
			if !walkExpr(val, v, cancel) {
				return false
			}
		}
		return true
	case *WidthRatio:
		if !walkExpr(t.Value, v, cancel) {
			return false
		}
		if !walkExpr(t.MaxValue, v, cancel) {
			return false
		}
		return walkExpr(t.MaxWidth, v, cancel)
	case *Lorem:
		return walkExpr(t.Count, v, cancel)
	case *Now:
		return walkExpr(t.Format, v, cancel)
	case *TemplateTag:
		return true
	case *Raw, *Text, *Comment:
		return true
	default:
		return true
	}
}

func walkExpr(e Expr, v Visitor, cancel CancelFunc) bool {
	if e == nil {
		return true
	}
	if cancel != nil && cancel() {
		return false
	}
	if !v.VisitExpr(e) {
		return false
	}
	switch t := e.(type) {
	case *Unary:
		return walkExpr(t.Operand, v, cancel)
	case *Binary:
		if !walkExpr(t.Left, v, cancel) {
			return false
		}
		return walkExpr(t.Right, v, cancel)
	case *Group:
		return walkExpr(t.Inner, v, cancel)
	case *Call:
		if !walkExpr(t.Callee, v, cancel) {
			return false
		}
		for _, a := range t.Args {
			if !walkExpr(a, v, cancel) {
				return false
			}
		}
		for _, kw := range t.Kwargs {
			if !walkExpr(kw.Value, v, cancel) {
				return false
			}
		}
		return true
	case *Filter:
		if !walkExpr(t.Target, v, cancel) {
			return false
		}
		for _, a := range t.Args {
			if !walkExpr(a, v, cancel) {
				return false
			}
		}
		for _, kw := range t.Kwargs {
			if !walkExpr(kw.Value, v, cancel) {
				return false
			}
		}
		return true
	case *Test:
		if !walkExpr(t.Target, v, cancel) {
			return false
		}
		for _, a := range t.Args {
			if !walkExpr(a, v, cancel) {
				return false
			}
		}
		return true
	case *GetAttr:
		return walkExpr(t.Target, v, cancel)
	case *GetItem:
		if !walkExpr(t.Target, v, cancel) {
			return false
		}
		return walkExpr(t.Index, v, cancel)
	case *ListLiteral:
		for _, it := range t.Items {
			if !walkExpr(it, v, cancel) {
				return false
			}
		}
		return true
	case *TupleLiteral:
		for _, it := range t.Items {
			if !walkExpr(it, v, cancel) {
				return false
			}
		}
		return true
	case *DictLiteral:
		for _, p := range t.Pairs {
			if !walkExpr(p.Key, v, cancel) {
				return false
			}
			if !walkExpr(p.Value, v, cancel) {
				return false
			}
		}
		return true
	default:
		// Name, Literal: leaves.
		return true
	}
}

// Accept implementations: each node/expr type just forwards to Visitor.

func (t *Template) Accept(v Visitor) bool     { return v.VisitNode(t) }
func (t *Text) Accept(v Visitor) bool         { return v.VisitNode(t) }
func (t *Comment) Accept(v Visitor) bool      { return v.VisitNode(t) }
func (t *Output) Accept(v Visitor) bool       { return v.VisitNode(t) }
func (t *If) Accept(v Visitor) bool           { return v.VisitNode(t) }
func (t *For) Accept(v Visitor) bool          { return v.VisitNode(t) }
func (t *Set) Accept(v Visitor) bool          { return v.VisitNode(t) }
func (t *SetBlock) Accept(v Visitor) bool     { return v.VisitNode(t) }
func (t *Block) Accept(v Visitor) bool        { return v.VisitNode(t) }
func (t *Extends) Accept(v Visitor) bool      { return v.VisitNode(t) }
func (t *Include) Accept(v Visitor) bool      { return v.VisitNode(t) }
func (t *Import) Accept(v Visitor) bool       { return v.VisitNode(t) }
func (t *FromImport) Accept(v Visitor) bool   { return v.VisitNode(t) }
func (t *Macro) Accept(v Visitor) bool        { return v.VisitNode(t) }
func (t *CallBlock) Accept(v Visitor) bool    { return v.VisitNode(t) }
func (t *Raw) Accept(v Visitor) bool          { return v.VisitNode(t) }
func (t *CustomTag) Accept(v Visitor) bool    { return v.VisitNode(t) }
func (t *Autoescape) Accept(v Visitor) bool   { return v.VisitNode(t) }
func (t *Spaceless) Accept(v Visitor) bool    { return v.VisitNode(t) }
func (t *With) Accept(v Visitor) bool         { return v.VisitNode(t) }
func (t *FilterTag) Accept(v Visitor) bool    { return v.VisitNode(t) }
func (t *Cycle) Accept(v Visitor) bool        { return v.VisitNode(t) }
func (t *IfChanged) Accept(v Visitor) bool    { return v.VisitNode(t) }
func (t *FirstOf) Accept(v Visitor) bool      { return v.VisitNode(t) }
func (t *WidthRatio) Accept(v Visitor) bool   { return v.VisitNode(t) }
func (t *Lorem) Accept(v Visitor) bool        { return v.VisitNode(t) }
func (t *Now) Accept(v Visitor) bool          { return v.VisitNode(t) }
func (t *TemplateTag) Accept(v Visitor) bool  { return v.VisitNode(t) }

func (e *Name) Accept(v Visitor) bool         { return v.VisitExpr(e) }
func (e *Literal) Accept(v Visitor) bool      { return v.VisitExpr(e) }
func (e *Unary) Accept(v Visitor) bool        { return v.VisitExpr(e) }
func (e *Binary) Accept(v Visitor) bool       { return v.VisitExpr(e) }
func (e *Group) Accept(v Visitor) bool        { return v.VisitExpr(e) }
func (e *Call) Accept(v Visitor) bool         { return v.VisitExpr(e) }
func (e *Filter) Accept(v Visitor) bool       { return v.VisitExpr(e) }
func (e *Test) Accept(v Visitor) bool         { return v.VisitExpr(e) }
func (e *GetAttr) Accept(v Visitor) bool      { return v.VisitExpr(e) }
func (e *GetItem) Accept(v Visitor) bool      { return v.VisitExpr(e) }
func (e *ListLiteral) Accept(v Visitor) bool  { return v.VisitExpr(e) }
func (e *TupleLiteral) Accept(v Visitor) bool { return v.VisitExpr(e) }
func (e *DictLiteral) Accept(v Visitor) bool  { return v.VisitExpr(e) }
