package jinjaspan

import (
	"fmt"

	"github.com/maloquacious/semver"
	"go.uber.org/zap"
)

// Version is the engine's own version, exposed to templates through the
// `jinjaspan` meta context key (`{{ jinjaspan.version }}`), grounded on the
// teacher's `{{ pongo2.version }}` meta-context convention.
var Version = semver.Version{Major: 0, Minor: 1, Patch: 0}

// FilterFunc is the registration contract from spec §6:
// (Value, args, kwargs, ctx) -> (Value, error).
type FilterFunc func(in *Value, args []*Value, kwargs map[string]*Value, ctx *ExecutionContext) (*Value, error)

// TestFunc is the registration contract for `is` tests.
type TestFunc func(in *Value, args []*Value, kwargs map[string]*Value, ctx *ExecutionContext) (bool, error)

// FunctionFunc is the registration contract for global callables.
type FunctionFunc func(args []*Value, kwargs map[string]*Value, ctx *ExecutionContext) (*Value, error)

// TagHandler is invoked once the parser has consumed `{% name`. It
// receives a capability surface (ParserHandle) rather than the raw
// *Parser, per the "parser re-entrancy for extensions" design note: tag
// authors can peek/advance/parse expressions/consume bodies, but cannot
// reach into parser internals. Returning (nil, nil) signals "no custom
// node" — if the tag declared end tags, the parser falls back to consuming
// the body into a CustomTag placeholder (see parser.go).
type TagHandler func(p *ParserHandle, start Token) (Node, error)

// tagExtension is one entry in the Environment's tag-extension table.
type tagExtension struct {
	name     string
	endTags  []string
	override bool
	handler  TagHandler
}

// Loader resolves a template name to source text. Loader is the *only*
// I/O touchpoint of the core (spec §5) and must be idempotent; the
// filesystem/baked-template implementations are external collaborators
// (cmd/jspan wires a thin file-based one).
type Loader interface {
	Load(name string) (src string, ok bool)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(name string) (string, bool)

func (f LoaderFunc) Load(name string) (string, bool) { return f(name) }

// MapLoader is a trivial in-memory Loader, handy for tests and for
// composing a loader chain (teacher's template_sets.go loader-search
// idiom, generalized in Environment.loaders below).
type MapLoader map[string]string

func (m MapLoader) Load(name string) (string, bool) {
	s, ok := m[name]
	return s, ok
}

// Environment owns every registry the parser and renderer consult: it is
// populated before parsing/rendering and is read-only thereafter, safe for
// concurrent use by multiple in-flight renders (spec §5).
type Environment struct {
	filters map[string]FilterFunc
	tests   map[string]TestFunc
	funcs   map[string]FunctionFunc
	tags    map[string]*tagExtension

	// loaders is an ordered chain: the first loader to resolve a name wins,
	// generalizing the teacher's template_sets.go multi-loader search to a
	// single Loader interface per spec §6 while keeping the chaining
	// behavior (see SPEC_FULL.md §12).
	loaders []Loader

	StrictUndefined bool
	Autoescape      bool
	MaxMacroDepth   int

	Logger *zap.Logger
}

// EnvOption configures an Environment, following the teacher's
// pongo2_options.go functional-option pattern.
type EnvOption func(*Environment)

// WithLoader appends a Loader to the environment's search chain.
func WithLoader(l Loader) EnvOption {
	return func(e *Environment) { e.loaders = append(e.loaders, l) }
}

// WithStrictUndefined makes every variable/attribute miss a hard
// Renderer/StrictUndefined diagnostic at Error severity instead of a
// silently-empty Undefined.
func WithStrictUndefined(strict bool) EnvOption {
	return func(e *Environment) { e.StrictUndefined = strict }
}

// WithAutoescape sets the default HTML-escaping behavior for {{ output }}.
func WithAutoescape(on bool) EnvOption {
	return func(e *Environment) { e.Autoescape = on }
}

// WithLogger installs a structured logger; defaults to zap.NewNop().
func WithLogger(l *zap.Logger) EnvOption {
	return func(e *Environment) { e.Logger = l }
}

// NewEnvironment builds an Environment with the built-in filters, tests,
// functions and tags registered, then applies opts.
func NewEnvironment(opts ...EnvOption) *Environment {
	e := &Environment{
		filters:       make(map[string]FilterFunc),
		tests:         make(map[string]TestFunc),
		funcs:         make(map[string]FunctionFunc),
		tags:          make(map[string]*tagExtension),
		MaxMacroDepth: 200,
		Logger:        zap.NewNop(),
	}
	registerBuiltinFilters(e)
	registerBuiltinTests(e)
	registerBuiltinFunctions(e)
	registerBuiltinTags(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterFilter installs a filter under name, overwriting any previous
// registration (including built-ins) — this mirrors Jinja2/pongo2's
// "last registration wins" convention for user overrides.
func (e *Environment) RegisterFilter(name string, fn FilterFunc) {
	e.filters[name] = fn
}

// RegisterTest installs an `is` test under name.
func (e *Environment) RegisterTest(name string, fn TestFunc) {
	e.tests[name] = fn
}

// RegisterFunction installs a global callable under name.
func (e *Environment) RegisterFunction(name string, fn FunctionFunc) {
	e.funcs[name] = fn
}

// RegisterTag installs a custom block tag. endTags lists the tag names
// that close this tag's body (e.g. ["endmy", "else"]); override allows
// replacing a previously registered tag of the same name (built-in tags
// cannot be overridden this way — register under a different name).
func (e *Environment) RegisterTag(name string, endTags []string, override bool, handler TagHandler) error {
	if existing, ok := e.tags[name]; ok && !existing.override && !override {
		return fmt.Errorf("tag %q already registered", name)
	}
	e.tags[name] = &tagExtension{name: name, endTags: endTags, override: override, handler: handler}
	return nil
}

// SetLoader replaces the loader chain with a single loader. Use WithLoader
// (or AddLoader) to compose a chain instead.
func (e *Environment) SetLoader(l Loader) {
	e.loaders = []Loader{l}
}

// AddLoader appends a loader to the search chain.
func (e *Environment) AddLoader(l Loader) {
	e.loaders = append(e.loaders, l)
}

// Load resolves name against the loader chain, first match wins.
func (e *Environment) Load(name string) (string, bool) {
	for _, l := range e.loaders {
		if src, ok := l.Load(name); ok {
			return src, ok
		}
	}
	return "", false
}

// FilterNames lists every registered filter name, for completion providers.
func (e *Environment) FilterNames() []string {
	names := make([]string, 0, len(e.filters))
	for name := range e.filters {
		names = append(names, name)
	}
	return names
}

// TestNames lists every registered test name, for completion providers.
func (e *Environment) TestNames() []string {
	names := make([]string, 0, len(e.tests))
	for name := range e.tests {
		names = append(names, name)
	}
	return names
}

// FunctionNames lists every registered function name, for completion
// providers.
func (e *Environment) FunctionNames() []string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	return names
}

// HasFilter reports whether name is registered, for lint's unknown-filter
// check.
func (e *Environment) HasFilter(name string) bool {
	_, ok := e.filters[name]
	return ok
}

// HasTest reports whether name is registered, for lint's unknown-test check.
func (e *Environment) HasTest(name string) bool {
	_, ok := e.tests[name]
	return ok
}

// HasFunction reports whether name is registered, for lint's
// unknown-function check.
func (e *Environment) HasFunction(name string) bool {
	_, ok := e.funcs[name]
	return ok
}

func (e *Environment) filter(name string) (FilterFunc, bool) {
	f, ok := e.filters[name]
	return f, ok
}

func (e *Environment) test(name string) (TestFunc, bool) {
	t, ok := e.tests[name]
	return t, ok
}

func (e *Environment) function(name string) (FunctionFunc, bool) {
	f, ok := e.funcs[name]
	return f, ok
}

func (e *Environment) tag(name string) (*tagExtension, bool) {
	t, ok := e.tags[name]
	return t, ok
}

func (e *Environment) logf(format string, args ...any) {
	e.Logger.Sugar().Debugf(format, args...)
}
