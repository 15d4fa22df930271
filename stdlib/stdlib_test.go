package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apex-lang/apex/intern"
	"github.com/apex-lang/apex/nativelib"
	"github.com/apex-lang/apex/stdlib"
	"github.com/apex-lang/apex/value"
)

func registry(t *testing.T) *nativelib.Registry {
	t.Helper()
	reg := nativelib.New()
	stdlib.Register(reg)
	return reg
}

func TestStdLen(t *testing.T) {
	reg := registry(t)
	result, err := reg.Call("std", "len", []value.Value{value.NewStr(intern.Default.Intern("hello"))})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Int())
}

func TestStrUpperLower(t *testing.T) {
	reg := registry(t)
	upper, err := reg.Call("str", "upper", []value.Value{value.NewStr(intern.Default.Intern("abc"))})
	require.NoError(t, err)
	assert.Equal(t, "ABC", upper.ToString())

	lower, err := reg.Call("str", "lower", []value.Value{value.NewStr(intern.Default.Intern("ABC"))})
	require.NoError(t, err)
	assert.Equal(t, "abc", lower.ToString())
}

func TestArrayPushFirstLastRest(t *testing.T) {
	reg := registry(t)
	arr := value.NewArray()
	arr.Push(value.NewInt(1))
	arr.Push(value.NewInt(2))
	arr.Push(value.NewInt(3))
	arrVal := value.NewArr(arr)

	pushed, err := reg.Call("array", "push", []value.Value{arrVal, value.NewInt(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, pushed.Arr().Len())

	first, err := reg.Call("array", "first", []value.Value{arrVal})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Int())

	last, err := reg.Call("array", "last", []value.Value{arrVal})
	require.NoError(t, err)
	assert.Equal(t, int64(3), last.Int())

	rest, err := reg.Call("array", "rest", []value.Value{arrVal})
	require.NoError(t, err)
	assert.Equal(t, 2, rest.Arr().Len())
}

func TestMathSqrtAbs(t *testing.T) {
	reg := registry(t)
	sq, err := reg.Call("math", "sqrt", []value.Value{value.NewInt(16)})
	require.NoError(t, err)
	assert.Equal(t, float64(4), sq.Dbl())

	abs, err := reg.Call("math", "abs", []value.Value{value.NewInt(-5)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), abs.Int())
}

func TestJSONEncodeDecodeRoundTrip(t *testing.T) {
	reg := registry(t)
	arr := value.NewArray()
	arr.Push(value.NewInt(1))
	arr.Push(value.NewInt(2))

	encoded, err := reg.Call("json", "encode", []value.Value{value.NewArr(arr)})
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", encoded.ToString())

	decoded, err := reg.Call("json", "decode", []value.Value{encoded})
	require.NoError(t, err)
	require.Equal(t, value.Arr, decoded.Kind())
	assert.Equal(t, 2, decoded.Arr().Len())
}

func TestStdID(t *testing.T) {
	reg := registry(t)
	result, err := reg.Call("std", "id", nil)
	require.NoError(t, err)
	assert.Equal(t, value.Ptr, result.Kind())
	assert.NotEmpty(t, result.Ptr().ID)
}
