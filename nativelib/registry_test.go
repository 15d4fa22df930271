package nativelib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apex-lang/apex/nativelib"
	"github.com/apex-lang/apex/value"
)

func TestCallDispatchesRegisteredFunction(t *testing.T) {
	reg := nativelib.New()
	reg.AddFunc("math", "double", 1, func(args []value.Value) (value.Value, error) {
		return value.NewInt(args[0].Int() * 2), nil
	})

	result, err := reg.Call("math", "double", []value.Value{value.NewInt(21)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.Int())
}

func TestCallRejectsWrongArgc(t *testing.T) {
	reg := nativelib.New()
	reg.AddFunc("math", "double", 1, func(args []value.Value) (value.Value, error) {
		return value.NewInt(args[0].Int() * 2), nil
	})

	_, err := reg.Call("math", "double", []value.Value{value.NewInt(1), value.NewInt(2)})
	assert.Error(t, err)
}

func TestCallUnknownLibraryOrFunctionIsError(t *testing.T) {
	reg := nativelib.New()
	_, err := reg.Call("nope", "fn", nil)
	assert.Error(t, err)

	reg.AddFunc("math", "double", 1, func(args []value.Value) (value.Value, error) {
		return value.NewNull(), nil
	})
	_, err = reg.Call("math", "nope", nil)
	assert.Error(t, err)
}

func TestMemberLooksUpRegisteredVariable(t *testing.T) {
	reg := nativelib.New()
	reg.AddVar("math", "pi", value.NewDbl(3.14159))

	result, err := reg.Member("math", "pi")
	require.NoError(t, err)
	assert.Equal(t, 3.14159, result.Dbl())

	_, err = reg.Member("math", "nope")
	assert.Error(t, err)
}

func TestLoadPathIgnoresEmptyPath(t *testing.T) {
	reg := nativelib.New()
	assert.NoError(t, reg.LoadPath(""))
}
