package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apex-lang/apex/intern"
	"github.com/apex-lang/apex/stdlib"
	"github.com/apex-lang/apex/symtable"
	"github.com/apex-lang/apex/value"
)

func callGlobal(t *testing.T, name string, args []value.Value) value.Value {
	t.Helper()
	g, ok := stdlib.Globals()[name]
	require.True(t, ok, "global %q is not registered", name)
	require.Equal(t, value.CFn, g.Kind())
	result, err := g.CFn().Fn(args)
	require.NoError(t, err)
	return result
}

func TestSeedGlobalsInstallsAllBuiltins(t *testing.T) {
	g := symtable.NewGlobal()
	stdlib.SeedGlobals(g)

	for _, name := range []string{"write", "print", "read", "int", "flt", "dbl", "str", "bool", "len"} {
		v, ok := g.Get(name)
		assert.True(t, ok, "global %q should be seeded", name)
		assert.Equal(t, value.CFn, v.Kind())
	}
}

func TestGlobalLenOnStringAndArray(t *testing.T) {
	s := value.NewStr(intern.Default.Intern("hello"))
	assert.Equal(t, int64(5), callGlobal(t, "len", []value.Value{s}).Int())

	arr := value.NewArray()
	arr.Push(value.NewInt(1))
	arr.Push(value.NewInt(2))
	assert.Equal(t, int64(2), callGlobal(t, "len", []value.Value{value.NewArr(arr)}).Int())
}

func TestGlobalIntConvertsFromStringFloatAndBool(t *testing.T) {
	assert.Equal(t, int64(42), callGlobal(t, "int", []value.Value{value.NewStr(intern.Default.Intern("42"))}).Int())
	assert.Equal(t, int64(3), callGlobal(t, "int", []value.Value{value.NewFlt(3.9)}).Int())
	assert.Equal(t, int64(1), callGlobal(t, "int", []value.Value{value.NewBool(true)}).Int())
}

func TestGlobalIntRejectsUnparsableString(t *testing.T) {
	g, ok := stdlib.Globals()["int"]
	require.True(t, ok)
	_, err := g.CFn().Fn([]value.Value{value.NewStr(intern.Default.Intern("nope"))})
	assert.Error(t, err)
}

func TestGlobalStrFormatsAnyKind(t *testing.T) {
	assert.Equal(t, "7", callGlobal(t, "str", []value.Value{value.NewInt(7)}).Str().Value)
	assert.Equal(t, "true", callGlobal(t, "str", []value.Value{value.NewBool(true)}).Str().Value)
}

func TestGlobalBoolTruthiness(t *testing.T) {
	assert.True(t, callGlobal(t, "bool", []value.Value{value.NewInt(1)}).Bool())
	assert.False(t, callGlobal(t, "bool", []value.Value{value.NewNull()}).Bool())
}

func TestGlobalFltAndDblConvertFromInt(t *testing.T) {
	assert.Equal(t, float32(5), callGlobal(t, "flt", []value.Value{value.NewInt(5)}).Flt())
	assert.Equal(t, float64(5), callGlobal(t, "dbl", []value.Value{value.NewInt(5)}).Dbl())
}
