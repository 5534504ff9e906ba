package jinjaspan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderScenarios exercises every concrete end-to-end scenario from
// spec §8, each a fixed input/context/output triple.
func TestRenderScenarios(t *testing.T) {
	env := NewEnvironment()

	t.Run("conditional with else", func(t *testing.T) {
		src := `{% if user %}hi {{ user.name }}{% else %}bye{% endif %}`
		out, _ := Render(env, "t", src, Context{"user": Context{"name": "Ada"}})
		assert.Equal(t, "hi Ada", out)

		out, _ = Render(env, "t", src, Context{"user": nil})
		assert.Equal(t, "bye", out)
	})

	t.Run("for loop with else on empty", func(t *testing.T) {
		src := `{% for x in xs %}{{ x }}|{% else %}none{% endfor %}`
		out, _ := Render(env, "t", src, Context{"xs": []any{1, 2, 3}})
		assert.Equal(t, "1|2|3|", out)

		out, _ = Render(env, "t", src, Context{"xs": []any{}})
		assert.Equal(t, "none", out)
	})

	t.Run("filter chain", func(t *testing.T) {
		out, diags := Render(env, "t", `{{ "Hello" | upper | length }}`, Context{})
		assert.Empty(t, diags)
		assert.Equal(t, "5", out)
	})

	t.Run("inheritance", func(t *testing.T) {
		loader := MapLoader{"p": `[{% block a %}P{% endblock %}]`}
		childEnv := NewEnvironment(WithLoader(loader))
		out, _ := Render(childEnv, "child", `{% extends "p" %}{% block a %}C{% endblock %}`, Context{})
		assert.Equal(t, "[C]", out)
	})

	t.Run("error recovery", func(t *testing.T) {
		out, diags := Render(env, "t", `{{ 1 + * 2 }}`, Context{})
		require.Len(t, diags, 1)
		assert.Equal(t, CatParserUnexpectedToken, diags[0].Category)
		assert.Equal(t, "3", out)
	})

	t.Run("unterminated expression", func(t *testing.T) {
		out, diags := Render(env, "t", `Hello {{ name`, Context{})
		require.Len(t, diags, 1)
		assert.Equal(t, CatLexerUnterminatedExpression, diags[0].Category)
		assert.Equal(t, "Hello ", out)
	})
}

func TestForLoopDoesNotLeakBinding(t *testing.T) {
	env := NewEnvironment()
	src := `{% set x = 1 %}{{ x }}{% for x in xs %}{{ x }}{% endfor %}{{ x }}`
	out, diags := Render(env, "t", src, Context{"xs": []any{9}})
	assert.Empty(t, diags)
	assert.Equal(t, "191", out)
}

func TestMacroMissingTwoRequiredArgsReportsBothDiagnostics(t *testing.T) {
	env := NewEnvironment()
	src := `{% macro m(a, b) %}{{ a }}{{ b }}{% endmacro %}{{ m() }}`
	_, diags := Render(env, "t", src, Context{})

	var missing int
	for _, d := range diags {
		if d.Category == CatRendererMissingRequiredArg {
			missing++
		}
	}
	assert.Equal(t, 2, missing, "both missing-argument diagnostics must survive, not just the last one")
}

func TestGetItemOutOfRangeReportsDiagnostic(t *testing.T) {
	env := NewEnvironment()
	out, diags := Render(env, "t", `{{ xs[5] }}`, Context{"xs": []any{1, 2}})
	assert.Equal(t, "", out)
	require.Len(t, diags, 1)
	assert.Equal(t, CatRendererInvalidOperand, diags[0].Category)
}

func TestGetItemMissingDictKeyReportsDiagnostic(t *testing.T) {
	env := NewEnvironment()
	out, diags := Render(env, "t", `{{ d["nope"] }}`, Context{"d": Context{"a": 1}})
	assert.Equal(t, "", out)
	require.Len(t, diags, 1)
	assert.Equal(t, CatRendererInvalidOperand, diags[0].Category)
}

func TestSetAssignsThroughGetAttrTarget(t *testing.T) {
	env := NewEnvironment()
	src := `{% set d = dict(a=1) %}{% set d.b = 2 %}{{ d.a }}{{ d.b }}`
	out, diags := Render(env, "t", src, Context{})
	assert.Empty(t, diags)
	assert.Equal(t, "12", out)
}

func TestSetAssignsThroughGetItemTarget(t *testing.T) {
	env := NewEnvironment()
	src := `{% set xs = [1, 2, 3] %}{% set xs[1] = 9 %}{{ xs | join(",") }}`
	out, diags := Render(env, "t", src, Context{})
	assert.Empty(t, diags)
	assert.Equal(t, "1,9,3", out)
}

func TestSetAssignsThroughTupleTarget(t *testing.T) {
	env := NewEnvironment()
	src := `{% set a, b = [1, 2] %}{{ a }}{{ b }}`
	out, diags := Render(env, "t", src, Context{})
	assert.Empty(t, diags)
	assert.Equal(t, "12", out)
}

func TestSetTupleArityMismatchReportsDiagnostic(t *testing.T) {
	env := NewEnvironment()
	src := `{% set a, b = [1] %}{{ a is undefined }}{{ b is undefined }}`
	out, diags := Render(env, "t", src, Context{})
	require.Len(t, diags, 1)
	assert.Equal(t, CatRendererInvalidOperand, diags[0].Category)
	assert.Equal(t, "truetrue", out)
}

func TestForLoopTwoNamesOverDictBindsKeyAndValue(t *testing.T) {
	env := NewEnvironment()
	src := `{% for k, v in d %}{{ k }}={{ v }};{% endfor %}`
	dict := StringDict(map[string]*Value{"a": Int(1), "b": Int(2)}, []string{"a", "b"})
	out, diags := Render(env, "t", src, Context{"d": dict})
	assert.Empty(t, diags)
	assert.Equal(t, "a=1;b=2;", out)
}

func TestCallingContextBoundCallableInvokesIt(t *testing.T) {
	env := NewEnvironment()
	greet := CallableValue(func(args []*Value, kwargs map[string]*Value, ctx *ExecutionContext) (*Value, error) {
		return String("hi"), nil
	})
	out, diags := Render(env, "t", `{{ greet() }}`, Context{"greet": greet})
	require.Empty(t, diags)
	assert.Equal(t, "hi", out)
}

func TestForLoopThreeNamesOverDictReportsDiagnostic(t *testing.T) {
	env := NewEnvironment()
	src := `{% for k, v, extra in d %}{{ k }}={{ v }}{{ extra }};{% endfor %}`
	dict := StringDict(map[string]*Value{"a": Int(1)}, []string{"a"})
	out, diags := Render(env, "t", src, Context{"d": dict})
	require.Len(t, diags, 1, "a third loop-target name over a dict has no matching value and must be reported, not silently dropped")
	assert.Equal(t, CatRendererInvalidOperand, diags[0].Category)
	assert.Equal(t, "a=1;", out)
}

func TestDefaultFilterOnUndefinedReportsNoDiagnostic(t *testing.T) {
	env := NewEnvironment()
	out, diags := Render(env, "t", `{{ missing | default("fallback") }}`, Context{})
	require.Empty(t, diags, "default() exists specifically to handle an undefined variable and must not also trigger an UnknownVariable diagnostic")
	assert.Equal(t, "fallback", out)
}

func TestIsDefinedOnMissingVariableReportsNoDiagnostic(t *testing.T) {
	env := NewEnvironment()
	out, diags := Render(env, "t", `{{ missing is defined }}`, Context{})
	require.Empty(t, diags, "is defined exists specifically to probe for an undefined variable and must not also trigger an UnknownVariable diagnostic")
	assert.Equal(t, "false", out)
}

func TestForLoopTupleArityMismatchReportsDiagnosticAndRendersEmpty(t *testing.T) {
	env := NewEnvironment()
	src := `{% for k, v in items %}[{{ k }}{{ v }}]{% endfor %}`
	out, diags := Render(env, "t", src, Context{"items": []any{[]any{1, 2, 3}}})
	require.Len(t, diags, 1)
	assert.Equal(t, CatRendererInvalidOperand, diags[0].Category)
	assert.Equal(t, "[]", out)
}

func TestFloatFloorDivAndModMatchFloorSemantics(t *testing.T) {
	env := NewEnvironment()

	out, diags := Render(env, "t", `{{ -7.0 // 3.0 }}`, Context{})
	assert.Empty(t, diags)
	assert.Equal(t, "-3", out)

	out, diags = Render(env, "t", `{{ -7.0 % 3.0 }}`, Context{})
	assert.Empty(t, diags)
	assert.Equal(t, "2", out)

	intOut, _ := Render(env, "t", `{{ -7 % 3 }}`, Context{})
	assert.Equal(t, intOut, out, "float and int mod must agree on sign (floor semantics)")
}

func TestPowerOperatorSupportsFractionalExponent(t *testing.T) {
	env := NewEnvironment()
	out, diags := Render(env, "t", `{{ 9 ** 0.5 }}`, Context{})
	assert.Empty(t, diags)
	assert.Equal(t, "3", out)
}

func TestTemplateCycleProducesOneDiagnostic(t *testing.T) {
	loader := MapLoader{
		"a": `{% extends "b" %}{% block x %}A{% endblock %}`,
		"b": `{% extends "a" %}{% block x %}B{% endblock %}`,
	}
	env := NewEnvironment(WithLoader(loader))
	_, diags := Render(env, "a", loader["a"], Context{})
	var cycles int
	for _, d := range diags {
		if d.Category == CatRendererTemplateCycle {
			cycles++
		}
	}
	assert.Equal(t, 1, cycles)
}
