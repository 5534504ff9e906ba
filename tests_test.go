package jinjaspan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTests(t *testing.T) {
	env := NewEnvironment()

	cases := []struct {
		name string
		src  string
		ctx  Context
		want string
	}{
		{"defined on existing", `{{ x is defined }}`, Context{"x": 1}, "true"},
		{"defined on missing", `{{ missing is defined }}`, Context{}, "false"},
		{"undefined on missing", `{{ missing is undefined }}`, Context{}, "true"},
		{"even", `{{ 4 is even }}`, Context{}, "true"},
		{"odd", `{{ 3 is odd }}`, Context{}, "true"},
		{"divisibleby", `{{ 9 is divisibleby(3) }}`, Context{}, "true"},
		{"in", `{{ "b" is in(list) }}`, Context{"list": []any{"a", "b", "c"}}, "true"},
		{"string", `{{ "x" is string }}`, Context{}, "true"},
		{"number", `{{ 1 is number }}`, Context{}, "true"},
		{"sequence list", `{{ list is sequence }}`, Context{"list": []any{1}}, "true"},
		{"eq", `{{ 1 is eq(1) }}`, Context{}, "true"},
		{"ne", `{{ 1 is ne(2) }}`, Context{}, "true"},
		{"lt", `{{ 1 is lt(2) }}`, Context{}, "true"},
		{"gt", `{{ 2 is gt(1) }}`, Context{}, "true"},
		{"negated test", `{{ 1 is not even }}`, Context{}, "true"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, diags := Render(env, "t", c.src, c.ctx)
			require.Empty(t, diags)
			assert.Equal(t, c.want, out)
		})
	}
}

func TestUnknownTestReportsDiagnostic(t *testing.T) {
	env := NewEnvironment()
	_, diags := Render(env, "t", `{{ 1 is nosuchtest }}`, Context{})
	require.NotEmpty(t, diags)
	assert.Equal(t, CatRendererUnknownTest, diags[0].Category)
}
