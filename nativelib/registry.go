// Package nativelib implements Apex's native-library ABI: a process-wide
// registry mapping (libName, fnName) to a callable, plus a loader that
// pulls in native libraries built as Go plugins, found via the APEX_PATH
// environment variable.
//
// Grounded on apexLib.h's apex_reglib/apex_regfn/apexLib_add/apexLib_get
// convention. Go's plugin package is the closest analogue to dlopen plus a
// well-known symbol lookup; a plugin exports a `Register` function taking
// a *Registry, the equivalent of apex_reglib's generated
// apex_register_<libname> function.
package nativelib

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"

	"github.com/apex-lang/apex/value"
)

// library is one named collection of native functions and variables
// (constants like math:pi), mirroring apexLib.h's per-libname ApexLibFn
// table plus apex_regvar's variable entries.
type library struct {
	fns  map[string]*value.NativeFunction
	vars map[string]value.Value
}

// Registry is the process-wide (libName, fnName) -> CFn table, analogous
// to apexLib_add/apexLib_get's global table.
type Registry struct {
	libs map[string]*library
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{libs: make(map[string]*library)}
}

func (r *Registry) lib(name string) *library {
	lib, ok := r.libs[name]
	if !ok {
		lib = &library{fns: make(map[string]*value.NativeFunction), vars: make(map[string]value.Value)}
		r.libs[name] = lib
	}
	return lib
}

// AddFunc registers a native function under libName:fnName, mirroring
// apex_regfn. argc of -1 marks a variadic native function.
func (r *Registry) AddFunc(libName, fnName string, argc int, fn value.NativeFn) {
	r.lib(libName).fns[fnName] = &value.NativeFunction{Name: libName + ":" + fnName, Argc: argc, Fn: fn}
}

// AddVar registers a constant member under libName:varName, mirroring
// apex_regvar (e.g. math:pi).
func (r *Registry) AddVar(libName, varName string, v value.Value) {
	r.lib(libName).vars[varName] = v
}

// Call dispatches CALL_LIB, implementing vm.LibResolver.
func (r *Registry) Call(lib, fn string, args []value.Value) (value.Value, error) {
	l, ok := r.libs[lib]
	if !ok {
		return value.Value{}, fmt.Errorf("no such native library '%s'", lib)
	}
	nf, ok := l.fns[fn]
	if !ok {
		return value.Value{}, fmt.Errorf("no such function '%s:%s'", lib, fn)
	}
	if nf.Argc >= 0 && len(args) != nf.Argc {
		return value.Value{}, fmt.Errorf("'%s:%s' expects %d argument(s), got %d", lib, fn, nf.Argc, len(args))
	}
	return nf.Fn(args)
}

// Member dispatches GET_LIB_MEMBER, implementing vm.LibResolver.
func (r *Registry) Member(lib, name string) (value.Value, error) {
	l, ok := r.libs[lib]
	if !ok {
		return value.Value{}, fmt.Errorf("no such native library '%s'", lib)
	}
	v, ok := l.vars[name]
	if !ok {
		return value.Value{}, fmt.Errorf("no such member '%s:%s'", lib, name)
	}
	return v, nil
}

// LoadPath scans every directory in an APEX_PATH-style colon-separated
// path list for *.so files built with `go build -buildmode=plugin`, opens
// each, and invokes its exported `Register(*Registry) error` symbol.
func (r *Registry) LoadPath(apexPath string) error {
	if apexPath == "" {
		return nil
	}
	for _, dir := range strings.Split(apexPath, string(os.PathListSeparator)) {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.so"))
		if err != nil {
			return fmt.Errorf("scanning %s for native libraries: %w", dir, err)
		}
		for _, so := range matches {
			if err := r.loadPlugin(so); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) loadPlugin(path string) error {
	p, err := plugin.Open(path)
	if err != nil {
		return fmt.Errorf("opening native library %s: %w", path, err)
	}
	sym, err := p.Lookup("Register")
	if err != nil {
		return fmt.Errorf("native library %s has no Register symbol: %w", path, err)
	}
	register, ok := sym.(func(*Registry) error)
	if !ok {
		return fmt.Errorf("native library %s's Register has the wrong signature", path)
	}
	return register(r)
}
