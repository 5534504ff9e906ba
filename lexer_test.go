package jinjaspan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexConcatenationReproducesInput(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"{{ name }}",
		"{%- if x -%}y{% endif %}",
		"{# a comment #}tail",
		"Hello {{ name",
		"{{ 1 + * 2 }}",
		"{{ \"str\\\"ing\" }}",
	}
	for _, in := range inputs {
		tokens, _ := Lex("t", in)
		var b strings.Builder
		for _, tok := range tokens {
			b.WriteString(tok.Lexeme)
		}
		assert.Equal(t, in, b.String(), "lexeme concatenation must reproduce input for %q", in)
		require.Equal(t, TokenEOF, tokens[len(tokens)-1].Kind, "last token must be EOF for %q", in)
	}
}

func TestLexUnterminatedExpression(t *testing.T) {
	tokens, sink := Lex("t", "Hello {{ name")
	diags := sink.All()
	require.Len(t, diags, 1)
	assert.Equal(t, CatLexerUnterminatedExpression, diags[0].Category)
	assert.Equal(t, SeverityError, diags[0].Severity)

	var texts []string
	for _, tok := range tokens {
		if tok.Kind == TokenText {
			texts = append(texts, tok.Lexeme)
		}
	}
	require.Len(t, texts, 1)
	assert.Equal(t, "Hello ", texts[0])
}

func TestLexUnterminatedComment(t *testing.T) {
	_, sink := Lex("t", "before {# never closes")
	diags := sink.All()
	require.Len(t, diags, 1)
	assert.Equal(t, CatLexerUnterminatedComment, diags[0].Category)
}

func TestLexWhitespaceTrimMarkers(t *testing.T) {
	tokens, sink := Lex("t", "{{- x -}}")
	require.Empty(t, sink.All())
	require.True(t, tokens[0].TrimLeft, "opening delimiter should carry TrimLeft")
	var end Token
	for _, tok := range tokens {
		if tok.Kind == TokenVarEnd {
			end = tok
		}
	}
	assert.True(t, end.TrimRight, "closing delimiter should carry TrimRight")
}

func TestLexNeverPanics(t *testing.T) {
	inputs := []string{
		"{{", "}}", "{%", "%}", "{#", "#}",
		"{{ }}", "{%%}", "{# #}",
		"{{ 9999999999999999999999999 }}",
		"{{ .5 }}", "{{ a.5 }}",
		"你好 {{ var }} 世界",
		"{{ \"unterminated",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			Lex("t", in)
		}, "lex must never panic on %q", in)
	}
}

func FuzzLex(f *testing.F) {
	seeds := []string{
		"{{ variable }}", "{% tag %}", "{# comment #}", "plain text", "",
		"{{- x -}}", "{%- y -%}", "{{ \"str\" }}", "{{ 'str' }}",
		"{{ 1 + 2 }}", "{{ a.b.c }}", "{{ a[0] }}", "{{ a|filter(1,2) }}",
		"{{", "}}", "{%", "%}", "{#", "#}",
		strings.Repeat("{{ x }}", 50),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		tokens, _ := Lex("fuzz", input)
		require.NotEmpty(t, tokens)
		assert.Equal(t, TokenEOF, tokens[len(tokens)-1].Kind)
	})
}
