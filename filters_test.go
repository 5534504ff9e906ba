package jinjaspan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderFilter(t *testing.T, env *Environment, src string, ctx Context) string {
	t.Helper()
	out, diags := Render(env, "t", src, ctx)
	require.Empty(t, diags)
	return out
}

func TestBuiltinFilters(t *testing.T) {
	env := NewEnvironment()

	cases := []struct {
		name string
		src  string
		ctx  Context
		want string
	}{
		{"default on undefined", `{{ missing | default("fallback") }}`, Context{}, "fallback"},
		{"default_if_none passes through falsy non-null", `{{ 0 | default_if_none("fallback") }}`, Context{}, "0"},
		{"length", `{{ "hello" | length }}`, Context{}, "5"},
		{"upper", `{{ "abc" | upper }}`, Context{}, "ABC"},
		{"lower", `{{ "ABC" | lower }}`, Context{}, "abc"},
		{"capfirst", `{{ "hello world" | capfirst }}`, Context{}, "Hello world"},
		{"truncatechars short leaves untouched", `{{ "hi" | truncatechars(10) }}`, Context{}, "hi"},
		{"truncatechars long adds ellipsis", `{{ "hello world" | truncatechars(6) }}`, Context{}, "hel..."},
		{"truncatewords", `{{ "the quick brown fox" | truncatewords(2) }}`, Context{}, "the quick ..."},
		{"join", `{{ items | join(", ") }}`, Context{"items": []any{"a", "b", "c"}}, "a, b, c"},
		{"first", `{{ items | first }}`, Context{"items": []any{1, 2, 3}}, "1"},
		{"last", `{{ items | last }}`, Context{"items": []any{1, 2, 3}}, "3"},
		{"slice", `{{ items | slice(1, 3) | join(",") }}`, Context{"items": []any{1, 2, 3, 4}}, "2,3"},
		{"striptags", `{{ "<b>hi</b>" | safe | striptags }}`, Context{}, "hi"},
		{"add", `{{ 1 | add(2) }}`, Context{}, "3"},
		{"subtract", `{{ 5 | subtract(2) }}`, Context{}, "3"},
		{"divisibleby true", `{{ 10 | divisibleby(5) }}`, Context{}, "true"},
		{"yesno true", `{{ true | yesno("yes", "no") }}`, Context{}, "yes"},
		{"yesno false", `{{ false | yesno("yes", "no") }}`, Context{}, "no"},
		{"center", `{{ "x" | center(5) }}`, Context{}, "  x  "},
		{"ljust", `{{ "x" | ljust(3) }}`, Context{}, "x  "},
		{"rjust", `{{ "x" | rjust(3) }}`, Context{}, "  x"},
		{"cut", `{{ "a-b-c" | cut("-") }}`, Context{}, "abc"},
		{"make_list then length", `{{ "abc" | make_list | length }}`, Context{}, "3"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, renderFilter(t, env, c.src, c.ctx))
		})
	}
}

func TestFilterChainApplicationOrder(t *testing.T) {
	env := NewEnvironment()
	out := renderFilter(t, env, `{{ "  Hello World  " | lower | truncatewords(1) }}`, Context{})
	assert.Equal(t, "hello ...", out)
}

func TestUnknownFilterReportsDiagnostic(t *testing.T) {
	env := NewEnvironment()
	_, diags := Render(env, "t", `{{ x | nosuchfilter }}`, Context{})
	require.NotEmpty(t, diags)
	assert.Equal(t, CatRendererUnknownFilter, diags[0].Category)
}
