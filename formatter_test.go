package jinjaspan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFormatIdempotent checks spec §8's format(format(s)) == format(s)
// property across a representative slice of tag/expression shapes.
func TestFormatIdempotent(t *testing.T) {
	env := NewEnvironment()
	inputs := []string{
		`{{1+2}}`,
		`{%if x%}a{%else%}b{%endif%}`,
		`{%if x%}a{%elif y%}b{%else%}c{%endif%}`,
		`{%for x in xs%}{{x}}{%else%}none{%endfor%}`,
		`{%set x=1%}`,
		`{%block a%}body{%endblock%}`,
		`{{ "Hello" | upper | truncatechars(3) }}`,
		`{{ x is defined }}`,
		`{%macro greet(name, greeting="hi")%}{{greeting}} {{name}}{%endmacro%}`,
		`{{ [1, 2, 3] }}`,
		`{{ {"a": 1, "b": 2} }}`,
	}
	for _, in := range inputs {
		once, diags := Format("t", in, env)
		require.Empty(t, diags, "input %q should parse cleanly", in)
		twice, _ := Format("t", once, env)
		assert.Equal(t, once, twice, "format must be idempotent for %q", in)
	}
}

func TestFormatNormalizesDelimiterSpacing(t *testing.T) {
	env := NewEnvironment()
	out, diags := Format("t", `{%if x%}y{%endif%}`, env)
	require.Empty(t, diags)
	assert.Equal(t, `{% if x %}y{% endif %}`, out)
}

func TestFormatPreservesTextVerbatim(t *testing.T) {
	env := NewEnvironment()
	src := "line one\n\nline two with  double  spaces\n"
	out, _ := Format("t", src, env)
	if diff := cmp.Diff(src, out); diff != "" {
		t.Errorf("Text content must survive formatting unchanged (-want +got):\n%s", diff)
	}
}
