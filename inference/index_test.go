package inference

import (
	"testing"

	"github.com/jinjaspan/jinjaspan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *jinjaspan.Template {
	t.Helper()
	env := jinjaspan.NewEnvironment()
	tpl, sink := jinjaspan.Parse("t", src, env)
	require.Empty(t, sink.All())
	return tpl
}

func TestBuildTracksSetVariable(t *testing.T) {
	tpl := parse(t, `{% set total = 42 %}`)
	idx := Build("t", 1, tpl, nil)
	require.Len(t, idx.Variables, 1)
	assert.Equal(t, "total", idx.Variables[0].Name)
	assert.Equal(t, SourceSet, idx.Variables[0].Source)
	assert.Equal(t, "int", idx.Variables[0].Type)
}

func TestBuildTracksTupleSetTarget(t *testing.T) {
	tpl := parse(t, `{% set a, b = [1, 2] %}`)
	idx := Build("t", 1, tpl, nil)
	require.Len(t, idx.Variables, 2)
	assert.Equal(t, "a", idx.Variables[0].Name)
	assert.Equal(t, SourceSet, idx.Variables[0].Source)
	assert.Equal(t, "b", idx.Variables[1].Name)
	assert.Equal(t, SourceSet, idx.Variables[1].Source)
}

func TestBuildTracksForLoopElementType(t *testing.T) {
	tpl := parse(t, `{% for x in [1, 2, 3] %}{{ x }}{% endfor %}`)
	idx := Build("t", 1, tpl, nil)
	require.Len(t, idx.Variables, 1)
	assert.Equal(t, "x", idx.Variables[0].Name)
	assert.Equal(t, SourceForLoop, idx.Variables[0].Source)
	assert.Equal(t, "int", idx.Variables[0].Type)
}

func TestBuildTracksTupleForTarget(t *testing.T) {
	tpl := parse(t, `{% for k, v in items %}{{ k }}{{ v }}{% endfor %}`)
	idx := Build("t", 1, tpl, nil)
	require.Len(t, idx.Variables, 2)
	assert.Equal(t, "k", idx.Variables[0].Name)
	assert.Equal(t, "v", idx.Variables[1].Name)
}

func TestBuildTracksMacroSignature(t *testing.T) {
	tpl := parse(t, `{% macro greet(name, greeting="hi") %}{{ greeting }}{% endmacro %}`)
	idx := Build("t", 1, tpl, nil)
	require.Len(t, idx.Macros, 1)
	assert.Equal(t, "greet", idx.Macros[0].Name)
	assert.Equal(t, []string{"name", "greeting"}, idx.Macros[0].Params)
	assert.Equal(t, []bool{false, true}, idx.Macros[0].Defaults)
}

func TestBuildTracksBlocksAndExtends(t *testing.T) {
	tpl := parse(t, `{% extends "base.html" %}{% block content %}hi{% endblock %}`)
	idx := Build("t", 1, tpl, nil)
	assert.Equal(t, "base.html", idx.Extends)
	require.Len(t, idx.Blocks, 1)
	assert.Equal(t, "content", idx.Blocks[0].Name)
}

func TestBuildTracksImportAndFromImport(t *testing.T) {
	tpl := parse(t, `{% import "lib.html" as lib %}{% from "lib.html" import helper as h %}`)
	idx := Build("t", 1, tpl, nil)
	require.Len(t, idx.Imports, 2)
	assert.Equal(t, "lib.html", idx.Imports[0].Source)
	assert.Equal(t, "lib", idx.Imports[0].Alias)
	require.Len(t, idx.Imports[1].Names, 1)
	assert.Equal(t, "helper", idx.Imports[1].Names[0].Name)
	assert.Equal(t, "h", idx.Imports[1].Names[0].Alias)
}

func TestBuildReferencedNamesExcludesBoundNames(t *testing.T) {
	tpl := parse(t, `{% set x = 1 %}{{ x }}{{ y }}{{ z }}{{ y }}`)
	idx := Build("t", 1, tpl, nil)
	assert.Equal(t, []string{"y", "z"}, idx.ReferencedNames)
}

func TestBuildDoesNotFlagLoopOrCallerAsReferenced(t *testing.T) {
	tpl := parse(t, `{% for x in xs %}{{ loop.index }}{% endfor %}`)
	idx := Build("t", 1, tpl, nil)
	assert.NotContains(t, idx.ReferencedNames, "loop")
	assert.Contains(t, idx.ReferencedNames, "xs")
}
