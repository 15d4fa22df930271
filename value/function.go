package value

// Function is a user-defined Apex function: a name, its declared
// parameters, an entry address in the compiled instruction chunk, and
// whether its last parameter is variadic. Mirrors apexVal.h's Fn.
type Function struct {
	Name     string
	Params   []string
	Variadic bool
	Addr     int
	refcount int
}

// NativeFn is the Go-side signature of a native ("C") function callable
// from Apex via CALL_LIB: it receives the evaluated argument values and
// returns a result or an error. This stands in for apexVal.h's ApexCfn
// function-pointer field; keeping the signature in terms of []Value
// (rather than a VM handle) lets the nativelib/stdlib packages depend
// only on value, not on vm, avoiding an import cycle.
type NativeFn func(args []Value) (Value, error)

// NativeFunction is a registered native ("C") function, addressable by
// name from Apex's CALL_LIB instruction.
type NativeFunction struct {
	Name string
	Argc int // -1 means variadic
	Fn   NativeFn
}

// PtrHandle is an opaque handle a native function can return to Apex code,
// tagged with a UUID so the VM can print and compare it without
// dereferencing the underlying host value.
type PtrHandle struct {
	ID  string
	Ptr any
}
