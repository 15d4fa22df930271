// Package value implements Apex's runtime value model.
//
// Values are a tagged struct (not a Go interface-per-type, per spec.md's
// §9 design note): scalar kinds (Int, Flt, Dbl, Bool, Null) live entirely
// in the struct with no heap allocation, while heap kinds (Str, Arr, Obj,
// Type, Fn, CFn, Ptr) hold a pointer to a reference-counted payload. This
// mirrors the original apex implementation's ApexValue tagged union
// (apexVal.h) more directly than the teacher's Object-interface design.
package value

import (
	"fmt"
	"strconv"

	"github.com/apex-lang/apex/intern"
)

// Kind identifies the runtime type carried by a Value.
type Kind uint8

const (
	Int Kind = iota
	Flt
	Dbl
	Bool
	Null
	Str
	Arr
	Obj
	TypeVal // a Type (class): an Object with IsType set
	Fn
	CFn
	Ptr
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Flt:
		return "flt"
	case Dbl:
		return "dbl"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case Str:
		return "str"
	case Arr:
		return "arr"
	case Obj:
		return "obj"
	case TypeVal:
		return "type"
	case Fn:
		return "fn"
	case CFn:
		return "cfn"
	case Ptr:
		return "ptr"
	default:
		return "unknown"
	}
}

// Value is a single Apex runtime value.
type Value struct {
	kind Kind

	i int64
	f float32
	d float64
	b bool

	s   *intern.Interned
	arr *Array
	obj *Object
	fn  *Function
	cfn *NativeFunction
	ptr *PtrHandle
}

// Kind returns the value's runtime type tag.
func (v Value) Kind() Kind { return v.kind }

func NewInt(i int64) Value   { return Value{kind: Int, i: i} }
func NewFlt(f float32) Value { return Value{kind: Flt, f: f} }
func NewDbl(d float64) Value { return Value{kind: Dbl, d: d} }
func NewBool(b bool) Value   { return Value{kind: Bool, b: b} }
func NewNull() Value         { return Value{kind: Null} }
func NewStr(s *intern.Interned) Value { return Value{kind: Str, s: s} }
func NewArr(a *Array) Value  { return Value{kind: Arr, arr: a} }
func NewObj(o *Object) Value {
	k := Obj
	if o.IsType {
		k = TypeVal
	}
	return Value{kind: k, obj: o}
}
func NewFn(f *Function) Value           { return Value{kind: Fn, fn: f} }
func NewCFn(c *NativeFunction) Value    { return Value{kind: CFn, cfn: c} }
func NewPtr(p *PtrHandle) Value         { return Value{kind: Ptr, ptr: p} }

func (v Value) Int() int64               { return v.i }
func (v Value) Flt() float32             { return v.f }
func (v Value) Dbl() float64             { return v.d }
func (v Value) Bool() bool               { return v.b }
func (v Value) Str() *intern.Interned    { return v.s }
func (v Value) Arr() *Array              { return v.arr }
func (v Value) Obj() *Object             { return v.obj }
func (v Value) Fn() *Function            { return v.fn }
func (v Value) CFn() *NativeFunction     { return v.cfn }
func (v Value) Ptr() *PtrHandle          { return v.ptr }

// IsNumeric reports whether v is one of Int, Flt, Dbl.
func (v Value) IsNumeric() bool {
	return v.kind == Int || v.kind == Flt || v.kind == Dbl
}

// ToBool converts a value to its truthiness, following apexVal_tobool:
// zero numbers and null are false, everything else (including empty
// strings/arrays) is true except a nil string pointer.
func (v Value) ToBool() bool {
	switch v.kind {
	case Int:
		return v.i != 0
	case Flt:
		return v.f != 0
	case Dbl:
		return v.d != 0
	case Bool:
		return v.b
	case Str:
		return v.s != nil
	case Null:
		return false
	default:
		return true
	}
}

// ToString renders a value the way the original apexVal_tostr does:
// integers in decimal, Flt with %.8g-equivalent and Dbl with %.17g-
// equivalent, strings verbatim, and a bracketed description for the
// other heap kinds.
func (v Value) ToString() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Flt:
		return strconv.FormatFloat(float64(v.f), 'g', 8, 32)
	case Dbl:
		return strconv.FormatFloat(v.d, 'g', 17, 64)
	case Str:
		return v.s.Value
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Null:
		return "null"
	case Fn:
		return fmt.Sprintf("[function %s at addr %d]", v.fn.Name, v.fn.Addr)
	case CFn:
		return fmt.Sprintf("[cfunction %s]", v.cfn.Name)
	case Arr:
		return v.arr.String()
	case TypeVal:
		return fmt.Sprintf("[type %s]", v.obj.Name)
	case Obj:
		return fmt.Sprintf("[instance of %s]", v.obj.Name)
	case Ptr:
		return fmt.Sprintf("[pointer %s]", v.ptr.ID)
	default:
		return "null"
	}
}

// Equals compares two values for equality, following apexVal.c's
// value_equals: different kinds are never equal, Str compares by
// pointer identity (interned), heap kinds other than Str are not
// comparable with == and always return false (a.k.a "no default
// equality for Arr/Obj/Fn").
func Equals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Int:
		return a.i == b.i
	case Flt:
		return a.f == b.f
	case Dbl:
		return a.d == b.d
	case Bool:
		return a.b == b.b
	case Str:
		return a.s == b.s
	case Null:
		return true
	default:
		return false
	}
}

// Retain increments the refcount of a's heap payload, if any. Called
// whenever a value is stored into a variable, array, object field, or
// passed/returned across a call boundary.
func Retain(v Value) {
	switch v.kind {
	case Arr:
		v.arr.refcount++
	case Fn:
		v.fn.refcount++
	case Obj, TypeVal:
		v.obj.refcount++
	}
}

// Release decrements the refcount of v's heap payload, freeing it once
// it reaches zero.
func Release(v Value) {
	switch v.kind {
	case Arr:
		v.arr.refcount--
		if v.arr.refcount <= 0 {
			v.arr.free()
		}
	case Fn:
		v.fn.refcount--
	case Obj, TypeVal:
		v.obj.refcount--
		if v.obj.refcount <= 0 {
			v.obj.free()
		}
	}
}
