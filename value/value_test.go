package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apex-lang/apex/intern"
	"github.com/apex-lang/apex/value"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "int", value.Int.String())
	assert.Equal(t, "str", value.Str.String())
	assert.Equal(t, "type", value.TypeVal.String())
}

func TestNewObjDistinguishesTypeFromInstance(t *testing.T) {
	typ := value.NewObj(value.NewObject("Point", true))
	assert.Equal(t, value.TypeVal, typ.Kind())

	inst := value.NewObj(value.NewObject("Point", false))
	assert.Equal(t, value.Obj, inst.Kind())
}

func TestToBoolTruthiness(t *testing.T) {
	assert.False(t, value.NewInt(0).ToBool())
	assert.True(t, value.NewInt(1).ToBool())
	assert.False(t, value.NewDbl(0).ToBool())
	assert.True(t, value.NewDbl(0.5).ToBool())
	assert.False(t, value.NewNull().ToBool())
	assert.True(t, value.NewBool(true).ToBool())
	assert.False(t, value.NewBool(false).ToBool())

	arr := value.NewArr(value.NewArray())
	assert.True(t, arr.ToBool(), "an empty array is still truthy")
}

func TestToStringFormatsPerKind(t *testing.T) {
	assert.Equal(t, "42", value.NewInt(42).ToString())
	assert.Equal(t, "true", value.NewBool(true).ToString())
	assert.Equal(t, "null", value.NewNull().ToString())
	assert.Equal(t, "hi", value.NewStr(intern.Default.Intern("hi")).ToString())
}

func TestEqualsDifferentKindsNeverEqual(t *testing.T) {
	assert.False(t, value.Equals(value.NewInt(1), value.NewDbl(1)))
}

func TestEqualsScalars(t *testing.T) {
	assert.True(t, value.Equals(value.NewInt(5), value.NewInt(5)))
	assert.False(t, value.Equals(value.NewInt(5), value.NewInt(6)))
	assert.True(t, value.Equals(value.NewNull(), value.NewNull()))
}

func TestEqualsStrIsIdentityViaIntern(t *testing.T) {
	a := value.NewStr(intern.Default.Intern("shared"))
	b := value.NewStr(intern.Default.Intern("shared"))
	assert.True(t, value.Equals(a, b))
}

func TestEqualsHeapKindsOtherThanStrAreNeverEqual(t *testing.T) {
	a := value.NewArr(value.NewArray())
	b := value.NewArr(value.NewArray())
	assert.False(t, value.Equals(a, b), "no default structural equality for Arr")
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, value.NewInt(1).IsNumeric())
	assert.True(t, value.NewFlt(1).IsNumeric())
	assert.True(t, value.NewDbl(1).IsNumeric())
	assert.False(t, value.NewBool(true).IsNumeric())
	assert.False(t, value.NewStr(intern.Default.Intern("x")).IsNumeric())
}
