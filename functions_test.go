package jinjaspan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncRange(t *testing.T) {
	env := NewEnvironment()

	cases := []struct {
		name string
		src  string
		want string
	}{
		{"stop only", `{% for i in range(3) %}{{ i }}{% endfor %}`, "012"},
		{"start and stop", `{% for i in range(2, 5) %}{{ i }}{% endfor %}`, "234"},
		{"with step", `{% for i in range(0, 10, 2) %}{{ i }}{% endfor %}`, "02468"},
		{"negative step", `{% for i in range(5, 0, -1) %}{{ i }}{% endfor %}`, "54321"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, diags := Render(env, "t", c.src, Context{})
			require.Empty(t, diags)
			assert.Equal(t, c.want, out)
		})
	}
}

func TestFuncDictBuildsStringDict(t *testing.T) {
	env := NewEnvironment()
	out, diags := Render(env, "t", `{{ dict(b=2, a=1).a }}{{ dict(b=2, a=1).b }}`, Context{})
	require.Empty(t, diags)
	assert.Equal(t, "12", out)
}

func TestFuncLipsumProducesParagraphs(t *testing.T) {
	env := NewEnvironment()
	out, diags := Render(env, "t", `{{ lipsum(2) }}`, Context{})
	require.Empty(t, diags)
	assert.Contains(t, out, "<p>")
	assert.Contains(t, out, "</p>\n\n<p>")
}

func TestFuncNowReturnsTimeValue(t *testing.T) {
	env := NewEnvironment()
	out, diags := Render(env, "t", `{{ now() is defined }}`, Context{})
	require.Empty(t, diags)
	assert.Equal(t, "true", out)
}

func TestUnknownFunctionReportsDiagnostic(t *testing.T) {
	env := NewEnvironment()
	_, diags := Render(env, "t", `{{ nosuchfunc() }}`, Context{})
	require.Len(t, diags, 1, "calling an unresolved name must report it as an unknown function once, not also as an unknown variable")
	assert.Equal(t, CatRendererUnknownFunction, diags[0].Category)
}
