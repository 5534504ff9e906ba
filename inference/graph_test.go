package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphSetDepsAndDependents(t *testing.T) {
	g := NewGraph()
	g.SetDeps("child", []string{"base"})
	assert.Equal(t, []string{"base"}, g.Dependencies("child"))
	assert.Equal(t, []string{"child"}, g.Dependents("base"))
}

func TestGraphSetDepsReplacesOldEdges(t *testing.T) {
	g := NewGraph()
	g.SetDeps("child", []string{"base1"})
	g.SetDeps("child", []string{"base2"})
	assert.Equal(t, []string{"base2"}, g.Dependencies("child"))
	assert.Empty(t, g.Dependents("base1"))
	assert.Equal(t, []string{"child"}, g.Dependents("base2"))
}

func TestGraphHasCycle(t *testing.T) {
	g := NewGraph()
	g.SetDeps("a", []string{"b"})
	g.SetDeps("b", []string{"a"})
	assert.True(t, g.HasCycle("a"))
}

func TestGraphNoCycle(t *testing.T) {
	g := NewGraph()
	g.SetDeps("child", []string{"base"})
	assert.False(t, g.HasCycle("child"))
}

func TestGraphSetDepsDeduplicatesDependents(t *testing.T) {
	g := NewGraph()
	g.SetDeps("a", []string{"base"})
	g.SetDeps("b", []string{"base"})
	g.SetDeps("a", []string{"base"})
	assert.ElementsMatch(t, []string{"a", "b"}, g.Dependents("base"))
}
