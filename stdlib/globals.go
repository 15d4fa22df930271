package stdlib

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex-lang/apex/intern"
	"github.com/apex-lang/apex/symtable"
	"github.com/apex-lang/apex/value"
)

// stdinReader is shared across calls to builtinRead so repeated reads
// advance through the same buffered stream rather than re-wrapping
// os.Stdin (and losing already-buffered bytes) on every call.
var stdinReader = bufio.NewReader(os.Stdin)

// Globals returns apex's small set of global builtin functions: write,
// print, read, int, flt, dbl, str, bool, len. These are installed directly
// into the VM's global table as plain callable names, distinct from the
// namespaced std:/str:/... native libraries Register wires up — mirroring
// apex_stdlib's StdLib table (stdlib.c), which links write/print/read/
// int/flt/dbl/str/bool/len in as bare global names rather than members of
// a named library.
func Globals() map[string]value.Value {
	return map[string]value.Value{
		"write": globalFn("write", 1, builtinWrite),
		"print": globalFn("print", 1, builtinPrint),
		"read":  globalFn("read", 0, builtinRead),
		"int":   globalFn("int", 1, builtinInt),
		"flt":   globalFn("flt", 1, builtinFlt),
		"dbl":   globalFn("dbl", 1, builtinDbl),
		"str":   globalFn("str", 1, builtinStr),
		"bool":  globalFn("bool", 1, builtinBool),
		"len":   globalFn("len", 1, builtinLen),
	}
}

// SeedGlobals installs Globals into globals, the in-process equivalent of
// apex_stdlib being linked into every VM at startup.
func SeedGlobals(globals *symtable.Global) {
	for name, v := range Globals() {
		globals.Set(name, v)
	}
}

func globalFn(name string, argc int, fn value.NativeFn) value.Value {
	return value.NewCFn(&value.NativeFunction{Name: name, Argc: argc, Fn: fn})
}

func builtinWrite(args []value.Value) (value.Value, error) {
	fmt.Print(args[0].ToString())
	return value.NewNull(), nil
}

func builtinPrint(args []value.Value) (value.Value, error) {
	fmt.Println(args[0].ToString())
	return value.NewNull(), nil
}

func builtinRead(args []value.Value) (value.Value, error) {
	line, err := stdinReader.ReadString('\n')
	if err != nil && line == "" {
		return value.Value{}, fmt.Errorf("read: %s", err)
	}
	line = strings.TrimRight(line, "\r\n")
	return value.NewStr(intern.Default.Intern(line)), nil
}

func builtinInt(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.Bool:
		if v.Bool() {
			return value.NewInt(1), nil
		}
		return value.NewInt(0), nil
	case value.Int:
		return v, nil
	case value.Flt:
		return value.NewInt(int64(v.Flt())), nil
	case value.Dbl:
		return value.NewInt(int64(v.Dbl())), nil
	case value.Str:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Str().Value), 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("cannot convert string %q to int", v.Str().Value)
		}
		return value.NewInt(i), nil
	default:
		return value.Value{}, fmt.Errorf("cannot convert %s to int", v.Kind())
	}
}

func builtinFlt(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.Bool:
		if v.Bool() {
			return value.NewFlt(1), nil
		}
		return value.NewFlt(0), nil
	case value.Int:
		return value.NewFlt(float32(v.Int())), nil
	case value.Flt:
		return v, nil
	case value.Dbl:
		return value.NewFlt(float32(v.Dbl())), nil
	case value.Str:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str().Value), 32)
		if err != nil {
			return value.Value{}, fmt.Errorf("cannot convert string %q to flt", v.Str().Value)
		}
		return value.NewFlt(float32(f)), nil
	default:
		return value.Value{}, fmt.Errorf("cannot convert %s to flt", v.Kind())
	}
}

func builtinDbl(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.Bool:
		if v.Bool() {
			return value.NewDbl(1), nil
		}
		return value.NewDbl(0), nil
	case value.Int:
		return value.NewDbl(float64(v.Int())), nil
	case value.Flt:
		return value.NewDbl(float64(v.Flt())), nil
	case value.Dbl:
		return v, nil
	case value.Str:
		d, err := strconv.ParseFloat(strings.TrimSpace(v.Str().Value), 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("cannot convert string %q to dbl", v.Str().Value)
		}
		return value.NewDbl(d), nil
	default:
		return value.Value{}, fmt.Errorf("cannot convert %s to dbl", v.Kind())
	}
}

func builtinStr(args []value.Value) (value.Value, error) {
	return value.NewStr(intern.Default.Intern(args[0].ToString())), nil
}

func builtinBool(args []value.Value) (value.Value, error) {
	return value.NewBool(args[0].ToBool()), nil
}

func builtinLen(args []value.Value) (value.Value, error) {
	switch args[0].Kind() {
	case value.Arr:
		return value.NewInt(int64(args[0].Arr().Len())), nil
	case value.Str:
		return value.NewInt(int64(len(args[0].Str().Value))), nil
	default:
		return value.Value{}, fmt.Errorf("cannot get length of %s", args[0].Kind())
	}
}
