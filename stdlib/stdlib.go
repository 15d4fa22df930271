// Package stdlib registers Apex's small set of built-in native libraries
// directly into a nativelib.Registry, without going through the plugin
// loader — the in-process equivalent of apex's statically linked
// register_<libname> callbacks (apexLib.h), covering std, str, array,
// math, os, and json.
//
// This is intentionally a minimal demonstration of the native-library ABI
// end to end, not a full port of apex's historical io/str/math/array/
// crypt/os C libraries.
package stdlib

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-faster/jx"
	"github.com/google/uuid"

	"github.com/apex-lang/apex/intern"
	"github.com/apex-lang/apex/nativelib"
	"github.com/apex-lang/apex/value"
)

// Register installs std, str, array, math, os, and json into reg.
func Register(reg *nativelib.Registry) {
	registerStd(reg)
	registerStr(reg)
	registerArray(reg)
	registerMath(reg)
	registerOS(reg)
	registerJSON(reg)
}

func registerStd(reg *nativelib.Registry) {
	reg.AddFunc("std", "len", 1, func(args []value.Value) (value.Value, error) {
		switch args[0].Kind() {
		case value.Str:
			return value.NewInt(int64(len(args[0].Str().Value))), nil
		case value.Arr:
			return value.NewInt(int64(args[0].Arr().Len())), nil
		default:
			return value.Value{}, fmt.Errorf("std:len expects a string or array, got %s", args[0].Kind())
		}
	})
	// std:id mints an opaque, UUID-tagged handle, the same Ptr value kind a
	// future io:open file handle would return.
	reg.AddFunc("std", "id", 0, func(args []value.Value) (value.Value, error) {
		return newPtrHandle(nil), nil
	})
}

func registerStr(reg *nativelib.Registry) {
	reg.AddFunc("str", "upper", 1, func(args []value.Value) (value.Value, error) {
		s, err := argStr(args, 0, "str:upper")
		if err != nil {
			return value.Value{}, err
		}
		return value.NewStr(intern.Default.Intern(strings.ToUpper(s))), nil
	})
	reg.AddFunc("str", "lower", 1, func(args []value.Value) (value.Value, error) {
		s, err := argStr(args, 0, "str:lower")
		if err != nil {
			return value.Value{}, err
		}
		return value.NewStr(intern.Default.Intern(strings.ToLower(s))), nil
	})
}

func registerArray(reg *nativelib.Registry) {
	reg.AddFunc("array", "push", 2, func(args []value.Value) (value.Value, error) {
		arr, err := argArr(args, 0, "array:push")
		if err != nil {
			return value.Value{}, err
		}
		arr.Push(args[1])
		return value.NewArr(arr), nil
	})
	reg.AddFunc("array", "first", 1, func(args []value.Value) (value.Value, error) {
		arr, err := argArr(args, 0, "array:first")
		if err != nil {
			return value.Value{}, err
		}
		entries := arr.Iter()
		if len(entries) == 0 {
			return value.Value{}, fmt.Errorf("array:first called on an empty array")
		}
		return entries[0].Val, nil
	})
	reg.AddFunc("array", "last", 1, func(args []value.Value) (value.Value, error) {
		arr, err := argArr(args, 0, "array:last")
		if err != nil {
			return value.Value{}, err
		}
		entries := arr.Iter()
		if len(entries) == 0 {
			return value.Value{}, fmt.Errorf("array:last called on an empty array")
		}
		return entries[len(entries)-1].Val, nil
	})
	reg.AddFunc("array", "rest", 1, func(args []value.Value) (value.Value, error) {
		arr, err := argArr(args, 0, "array:rest")
		if err != nil {
			return value.Value{}, err
		}
		entries := arr.Iter()
		rest := value.NewArray()
		for _, e := range entries[min(1, len(entries)):] {
			rest.Push(e.Val)
		}
		return value.NewArr(rest), nil
	})
}

func registerMath(reg *nativelib.Registry) {
	reg.AddFunc("math", "sqrt", 1, func(args []value.Value) (value.Value, error) {
		x, err := argNum(args, 0, "math:sqrt")
		if err != nil {
			return value.Value{}, err
		}
		if x < 0 {
			return value.Value{}, fmt.Errorf("math:sqrt expects a non-negative argument")
		}
		return value.NewDbl(math.Sqrt(x)), nil
	})
	reg.AddFunc("math", "abs", 1, func(args []value.Value) (value.Value, error) {
		switch args[0].Kind() {
		case value.Int:
			i := args[0].Int()
			if i < 0 {
				i = -i
			}
			return value.NewInt(i), nil
		case value.Flt, value.Dbl:
			x, _ := argNum(args, 0, "math:abs")
			if x < 0 {
				x = -x
			}
			return value.NewDbl(x), nil
		default:
			return value.Value{}, fmt.Errorf("math:abs expects a numeric argument, got %s", args[0].Kind())
		}
	})
}

func registerOS(reg *nativelib.Registry) {
	reg.AddFunc("os", "exit", 1, func(args []value.Value) (value.Value, error) {
		code, err := argInt(args, 0, "os:exit")
		if err != nil {
			return value.Value{}, err
		}
		os.Exit(int(code))
		return value.NewNull(), nil
	})
}

func registerJSON(reg *nativelib.Registry) {
	reg.AddFunc("json", "encode", 1, func(args []value.Value) (value.Value, error) {
		enc := &jx.Encoder{}
		if err := encodeJSON(enc, args[0]); err != nil {
			return value.Value{}, err
		}
		return value.NewStr(intern.Default.Intern(string(enc.Bytes()))), nil
	})
	reg.AddFunc("json", "decode", 1, func(args []value.Value) (value.Value, error) {
		s, err := argStr(args, 0, "json:decode")
		if err != nil {
			return value.Value{}, err
		}
		dec := jx.DecodeStr(s)
		return decodeJSON(dec)
	})
}

func encodeJSON(enc *jx.Encoder, v value.Value) error {
	switch v.Kind() {
	case value.Null:
		enc.Null()
	case value.Bool:
		enc.Bool(v.Bool())
	case value.Int:
		enc.Int64(v.Int())
	case value.Flt:
		enc.Float64(float64(v.Flt()))
	case value.Dbl:
		enc.Float64(v.Dbl())
	case value.Str:
		enc.Str(v.Str().Value)
	case value.Arr:
		entries := v.Arr().Iter()
		isList := true
		for i, e := range entries {
			if e.Key.Kind() != value.Int || e.Key.Int() != int64(i) {
				isList = false
				break
			}
		}
		if isList {
			enc.ArrStart()
			for _, e := range entries {
				if err := encodeJSON(enc, e.Val); err != nil {
					return err
				}
			}
			enc.ArrEnd()
		} else {
			enc.ObjStart()
			for _, e := range entries {
				enc.FieldStart(e.Key.ToString())
				if err := encodeJSON(enc, e.Val); err != nil {
					return err
				}
			}
			enc.ObjEnd()
		}
	default:
		return fmt.Errorf("json:encode cannot represent a value of kind %s", v.Kind())
	}
	return nil
}

func decodeJSON(dec *jx.Decoder) (value.Value, error) {
	switch dec.Next() {
	case jx.Null:
		return value.NewNull(), dec.Null()
	case jx.Bool:
		b, err := dec.Bool()
		return value.NewBool(b), err
	case jx.Number:
		num, err := dec.Num()
		if err != nil {
			return value.Value{}, err
		}
		if num.IsInt() {
			i, err := num.Int64()
			return value.NewInt(i), err
		}
		f, err := num.Float64()
		return value.NewDbl(f), err
	case jx.String:
		s, err := dec.Str()
		return value.NewStr(intern.Default.Intern(s)), err
	case jx.Array:
		arr := value.NewArray()
		err := dec.Arr(func(d *jx.Decoder) error {
			elem, err := decodeJSON(d)
			if err != nil {
				return err
			}
			arr.Push(elem)
			return nil
		})
		return value.NewArr(arr), err
	case jx.Object:
		obj := value.NewArray()
		err := dec.Obj(func(d *jx.Decoder, key string) error {
			elem, err := decodeJSON(d)
			if err != nil {
				return err
			}
			obj.Set(value.NewStr(intern.Default.Intern(key)), elem)
			return nil
		})
		return value.NewArr(obj), err
	default:
		return value.Value{}, fmt.Errorf("json:decode encountered an unsupported JSON value")
	}
}

// newPtrHandle tags an opaque host value with a UUID so the VM can print
// and compare handles (e.g. a future io:open file handle) without
// dereferencing the underlying value, per apex's Ptr value kind.
func newPtrHandle(v any) value.Value {
	return value.NewPtr(&value.PtrHandle{ID: uuid.NewString(), Ptr: v})
}

func argStr(args []value.Value, i int, fn string) (string, error) {
	if args[i].Kind() != value.Str {
		return "", fmt.Errorf("%s expects argument %d to be a string, got %s", fn, i+1, args[i].Kind())
	}
	return args[i].Str().Value, nil
}

func argArr(args []value.Value, i int, fn string) (*value.Array, error) {
	if args[i].Kind() != value.Arr {
		return nil, fmt.Errorf("%s expects argument %d to be an array, got %s", fn, i+1, args[i].Kind())
	}
	return args[i].Arr(), nil
}

func argInt(args []value.Value, i int, fn string) (int64, error) {
	if args[i].Kind() != value.Int {
		return 0, fmt.Errorf("%s expects argument %d to be an int, got %s", fn, i+1, args[i].Kind())
	}
	return args[i].Int(), nil
}

func argNum(args []value.Value, i int, fn string) (float64, error) {
	switch args[i].Kind() {
	case value.Int:
		return float64(args[i].Int()), nil
	case value.Flt:
		return float64(args[i].Flt()), nil
	case value.Dbl:
		return args[i].Dbl(), nil
	default:
		return 0, fmt.Errorf("%s expects argument %d to be numeric, got %s", fn, i+1, args[i].Kind())
	}
}

