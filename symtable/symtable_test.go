package symtable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apex-lang/apex/symtable"
	"github.com/apex-lang/apex/value"
)

func TestGlobalSetGet(t *testing.T) {
	g := symtable.NewGlobal()
	_, ok := g.Get("x")
	assert.False(t, ok)

	g.Set("x", value.NewInt(5))
	v, ok := g.Get("x")
	assert.True(t, ok)
	assert.Equal(t, int64(5), v.Int())
}

func TestGlobalSetOverwrites(t *testing.T) {
	g := symtable.NewGlobal()
	g.Set("x", value.NewInt(1))
	g.Set("x", value.NewInt(2))
	v, ok := g.Get("x")
	assert.True(t, ok)
	assert.Equal(t, int64(2), v.Int())
}

func TestScopeStackPushTopSetGet(t *testing.T) {
	s := symtable.NewScopeStack()
	assert.Equal(t, 0, s.Depth())
	assert.Nil(t, s.Top())

	scope := s.Push()
	assert.Equal(t, 1, s.Depth())
	scope.Set("a", value.NewInt(7))

	top := s.Top()
	v, ok := top.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v.Int())
}

func TestScopeStackIsolatesNestedCalls(t *testing.T) {
	s := symtable.NewScopeStack()
	outer := s.Push()
	outer.Set("a", value.NewInt(1))

	inner := s.Push()
	_, ok := inner.Get("a")
	assert.False(t, ok, "inner call frame cannot see outer's locals")

	inner.Set("b", value.NewInt(2))
	s.Pop()

	assert.Equal(t, 1, s.Depth())
	_, ok = s.Top().Get("b")
	assert.False(t, ok, "popped frame's locals are gone")
}

func TestScopeStackPopOnEmptyIsNoop(t *testing.T) {
	s := symtable.NewScopeStack()
	assert.NotPanics(t, func() { s.Pop() })
	assert.Equal(t, 0, s.Depth())
}
