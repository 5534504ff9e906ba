package lint

import (
	"testing"

	"github.com/jinjaspan/jinjaspan"
	"github.com/jinjaspan/jinjaspan/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseForStyle(t *testing.T, src string) *File {
	t.Helper()
	env := jinjaspan.NewEnvironment()
	tpl, sink := jinjaspan.Parse("t", src, env)
	require.Empty(t, sink.All())
	idx := inference.Build("t", 1, tpl, nil)
	return &File{Template: tpl, Index: idx, Env: env}
}

func TestTrailingWhitespaceRule(t *testing.T) {
	f := parseForStyle(t, "line one   \nline two")
	checkTrailingWhitespace(f)
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, jinjaspan.CatStyleTrailingWhitespace, f.Diagnostics[0].Category)
}

func TestTrailingWhitespaceCleanTextNotFlagged(t *testing.T) {
	f := parseForStyle(t, "clean line\nanother clean line")
	checkTrailingWhitespace(f)
	assert.Empty(t, f.Diagnostics)
}

func TestMixedIndentationRule(t *testing.T) {
	f := parseForStyle(t, "line one\n \tmixed indent\nline three")
	checkMixedIndentation(f)
	require.Len(t, f.Diagnostics, 1)
	assert.Equal(t, jinjaspan.CatStyleMixedIndentation, f.Diagnostics[0].Category)
}

func TestExcessiveBlankLinesRule(t *testing.T) {
	f := parseForStyle(t, "a\n\n\n\nb")
	checkExcessiveBlankLines(f)
	assert.NotEmpty(t, f.Diagnostics)
	for _, d := range f.Diagnostics {
		assert.Equal(t, jinjaspan.CatStyleExcessiveBlankLines, d.Category)
	}
}

func TestTwoBlankLinesIsFine(t *testing.T) {
	f := parseForStyle(t, "a\n\n\nb")
	checkExcessiveBlankLines(f)
	assert.Empty(t, f.Diagnostics)
}
