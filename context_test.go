package jinjaspan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionContextScopeShadowing(t *testing.T) {
	env := NewEnvironment()
	sink := NewSink()
	ctx := newExecutionContext(env, nil, Context{"x": 1}, sink, nil)

	v, ok := ctx.lookup("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int64())

	ctx.pushScope()
	ctx.assign("x", Int(2))
	v, ok = ctx.lookup("x")
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Int64())

	ctx.popScope()
	v, ok = ctx.lookup("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int64(), "popScope must restore the outer binding")
}

func TestExecutionContextResolveNameUndefined(t *testing.T) {
	env := NewEnvironment()
	sink := NewSink()
	ctx := newExecutionContext(env, nil, Context{}, sink, nil)

	v := ctx.resolveName("missing", Span{})
	assert.True(t, v.IsUndefined())
	require.Len(t, sink.All(), 1)
	assert.Equal(t, CatRendererUnknownVariable, sink.All()[0].Category)
	assert.Equal(t, SeverityInfo, sink.All()[0].Severity)
}

func TestExecutionContextResolveNameStrict(t *testing.T) {
	env := NewEnvironment(WithStrictUndefined(true))
	sink := NewSink()
	ctx := newExecutionContext(env, nil, Context{}, sink, nil)

	ctx.resolveName("missing", Span{})
	require.Len(t, sink.All(), 1)
	assert.Equal(t, CatRendererStrictUndefined, sink.All()[0].Category)
	assert.Equal(t, SeverityError, sink.All()[0].Severity)
}

func TestExecutionContextCallerStack(t *testing.T) {
	env := NewEnvironment()
	ctx := newExecutionContext(env, nil, Context{}, NewSink(), nil)

	_, ok := ctx.topCaller()
	assert.False(t, ok)

	ctx.pushCaller("body text")
	v, ok := ctx.topCaller()
	require.True(t, ok)
	assert.Equal(t, "body text", v.String())

	ctx.popCaller()
	_, ok = ctx.topCaller()
	assert.False(t, ok)
}

func TestExecutionContextMetaVersion(t *testing.T) {
	env := NewEnvironment()
	ctx := newExecutionContext(env, nil, Context{}, NewSink(), nil)
	v, ok := ctx.lookup("jinjaspan")
	require.True(t, ok)
	assert.Equal(t, Version.String(), v.GetAttr("version").String())
}

func TestExecutionContextCanceled(t *testing.T) {
	env := NewEnvironment()
	ctx := newExecutionContext(env, nil, Context{}, NewSink(), nil)
	assert.False(t, ctx.canceled())

	ctx2 := newExecutionContext(env, nil, Context{}, NewSink(), func() bool { return true })
	assert.True(t, ctx2.canceled())
}
