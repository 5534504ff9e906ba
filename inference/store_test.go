package inference

import (
	"context"
	"testing"

	"github.com/jinjaspan/jinjaspan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetCachesUntilVersionChanges(t *testing.T) {
	store := NewStore(8)
	env := jinjaspan.NewEnvironment()
	tpl, _ := jinjaspan.Parse("t", `{% set x = 1 %}`, env)

	idx1 := store.Get("t", 1, tpl, nil)
	idx2 := store.Get("t", 1, tpl, nil)
	assert.Same(t, idx1, idx2, "same version should return the cached Index")

	tpl2, _ := jinjaspan.Parse("t", `{% set y = 2 %}`, env)
	idx3 := store.Get("t", 2, tpl2, nil)
	assert.NotSame(t, idx1, idx3)
	assert.Equal(t, "y", idx3.Variables[0].Name)
}

func TestStorePeek(t *testing.T) {
	store := NewStore(8)
	_, ok := store.Peek("missing")
	assert.False(t, ok)

	env := jinjaspan.NewEnvironment()
	tpl, _ := jinjaspan.Parse("t", `hi`, env)
	store.Get("t", 1, tpl, nil)

	idx, ok := store.Peek("t")
	require.True(t, ok)
	assert.NotNil(t, idx)
}

func TestStoreInvalidateCascadesToDependents(t *testing.T) {
	store := NewStore(8)
	env := jinjaspan.NewEnvironment()

	base, _ := jinjaspan.Parse("base", `{% block a %}{% endblock %}`, env)
	store.Get("base", 1, base, nil)

	child, _ := jinjaspan.Parse("child", `{% extends "base" %}`, env)
	store.Get("child", 1, child, nil)

	store.Invalidate("base")

	_, ok := store.Peek("base")
	assert.False(t, ok)
	_, ok = store.Peek("child")
	assert.False(t, ok, "invalidating base must cascade to its dependent child")
}

func TestStoreRebuildAll(t *testing.T) {
	store := NewStore(8)
	env := jinjaspan.NewEnvironment()
	sources := []RebuildSource{
		{URI: "a", Version: 1, Source: `{% set x = 1 %}`},
		{URI: "b", Version: 1, Source: `{% set y = 2 %}`},
	}
	require.NoError(t, store.RebuildAll(context.Background(), env, sources, 2))

	idxA, ok := store.Peek("a")
	require.True(t, ok)
	assert.Equal(t, "x", idxA.Variables[0].Name)

	idxB, ok := store.Peek("b")
	require.True(t, ok)
	assert.Equal(t, "y", idxB.Variables[0].Name)
}
