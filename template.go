package jinjaspan

// CompiledTemplate is a parsed template bound to the Environment it was
// compiled against, grounded on the teacher's template.go (name/tpl/root
// triple), generalized so AST + diagnostics are first-class and the render
// entry point matches spec §6: render(template, context) -> (string,
// []Diagnostic).
type CompiledTemplate struct {
	Name string
	AST  *Template
	env  *Environment

	// Diagnostics collected while parsing this template (lexer + parser).
	Diagnostics []Diagnostic
}

// Compile lexes and parses src under env (or a default Environment if nil),
// returning a CompiledTemplate that is ready to Execute. Parse diagnostics
// are attached to the result rather than failing the call — per spec §7,
// nothing in the core raises for malformed template source.
func Compile(name, src string, env *Environment) *CompiledTemplate {
	if env == nil {
		env = NewEnvironment()
	}
	ast, sink := Parse(name, src, env)
	return &CompiledTemplate{Name: name, AST: ast, env: env, Diagnostics: sink.All()}
}

// Execute renders the template against ctx, returning the output text and
// every diagnostic accumulated across parsing and rendering (spec §6's
// render entry point). cancel, if non-nil, is polled between node visits
// for cooperative cancellation (spec §5).
func (tpl *CompiledTemplate) Execute(ctx Context, cancel CancelFunc) (string, []Diagnostic) {
	out, sink := render(tpl.env, tpl, ctx, cancel)
	all := make([]Diagnostic, 0, len(tpl.Diagnostics)+sink.Len())
	all = append(all, tpl.Diagnostics...)
	all = append(all, sink.All()...)
	SortDiagnostics(all)
	return out, all
}

// Render is the single-call convenience form of Compile+Execute, matching
// spec §6's `render(template, context) -> (String, [Diagnostic])` exactly:
// the caller never sees parse and render as separate steps unless they
// want the CompiledTemplate for reuse (e.g. the LSP document store).
func Render(env *Environment, name, src string, ctx Context) (string, []Diagnostic) {
	tpl := Compile(name, src, env)
	return tpl.Execute(ctx, nil)
}
