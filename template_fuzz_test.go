package jinjaspan

import "testing"

// FuzzRenderTemplate fuzzes the whole lex->parse->render pipeline with
// arbitrary template source, grounded on the teacher's
// template_fuzz_test.go end-to-end style: no input may panic the renderer,
// regardless of how malformed.
func FuzzRenderTemplate(f *testing.F) {
	seeds := []string{
		`{% if x %}a{% else %}b{% endif %}`,
		`{% for x in xs %}{{ x }}{% else %}none{% endfor %}`,
		`{% extends "base" %}{% block a %}x{% endblock %}`,
		`{% macro m(a, b=1) %}{{ a }}{{ b }}{% endmacro %}{{ m(1) }}`,
		`{{ 1 + * 2 }}`,
		`{{ name`,
		`{# unterminated`,
		`{% set x = 1 %}{{ x }}`,
		`{{ x | upper | truncatechars(3) }}`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	env := NewEnvironment()
	f.Fuzz(func(t *testing.T, src string) {
		_, _ = Render(env, "fuzz", src, Context{"x": 1, "xs": []any{1, 2, 3}, "name": "n"})
	})
}
