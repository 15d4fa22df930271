package vm

import (
	"fmt"

	"github.com/apex-lang/apex/code"
	"github.com/apex-lang/apex/intern"
	"github.com/apex-lang/apex/value"
)

// numKind picks the promoted numeric kind for a binary op, following
// spec.md's rule: Int with Flt -> Flt; Int/Flt with Dbl -> Dbl.
func numKind(a, b value.Value) (value.Kind, bool) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return 0, false
	}
	if a.Kind() == value.Dbl || b.Kind() == value.Dbl {
		return value.Dbl, true
	}
	if a.Kind() == value.Flt || b.Kind() == value.Flt {
		return value.Flt, true
	}
	return value.Int, true
}

func asFloat64(v value.Value) float64 {
	switch v.Kind() {
	case value.Int:
		return float64(v.Int())
	case value.Flt:
		return float64(v.Flt())
	case value.Dbl:
		return v.Dbl()
	default:
		return 0
	}
}

func (vm *VM) execArith(op code.Opcode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}

	if op == code.ADD && a.Kind() == value.Str && b.Kind() == value.Str {
		return vm.push(value.NewStr(intern.Default.Cat(a.Str(), b.Str())))
	}

	kind, ok := numKind(a, b)
	if !ok {
		return vm.runtimeErr("cannot apply %s to %s and %s", op, a.Kind(), b.Kind())
	}

	if op == code.DIV || op == code.MOD {
		if asFloat64(b) == 0 {
			return vm.runtimeErr("division or modulus by zero")
		}
	}

	var result value.Value
	switch kind {
	case value.Int:
		x, y := a.Int(), b.Int()
		switch op {
		case code.ADD:
			result = value.NewInt(x + y)
		case code.SUB:
			result = value.NewInt(x - y)
		case code.MUL:
			result = value.NewInt(x * y)
		case code.DIV:
			result = value.NewInt(x / y)
		case code.MOD:
			result = value.NewInt(x % y)
		}
	case value.Flt:
		x, y := float32(asFloat64(a)), float32(asFloat64(b))
		result = arithFlt(op, x, y)
	case value.Dbl:
		x, y := asFloat64(a), asFloat64(b)
		result = arithDbl(op, x, y)
	}
	return vm.push(result)
}

func arithFlt(op code.Opcode, x, y float32) value.Value {
	switch op {
	case code.ADD:
		return value.NewFlt(x + y)
	case code.SUB:
		return value.NewFlt(x - y)
	case code.MUL:
		return value.NewFlt(x * y)
	case code.DIV:
		return value.NewFlt(x / y)
	default: // MOD on floating point: apply fmod semantics via float64
		return value.NewFlt(float32(fmod(float64(x), float64(y))))
	}
}

func arithDbl(op code.Opcode, x, y float64) value.Value {
	switch op {
	case code.ADD:
		return value.NewDbl(x + y)
	case code.SUB:
		return value.NewDbl(x - y)
	case code.MUL:
		return value.NewDbl(x * y)
	case code.DIV:
		return value.NewDbl(x / y)
	default:
		return value.NewDbl(fmod(x, y))
	}
}

func fmod(x, y float64) float64 {
	q := int64(x / y)
	return x - float64(q)*y
}

func negate(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.Int:
		return value.NewInt(-v.Int()), nil
	case value.Flt:
		return value.NewFlt(-v.Flt()), nil
	case value.Dbl:
		return value.NewDbl(-v.Dbl()), nil
	default:
		return value.Value{}, fmt.Errorf("unary '-' requires a numeric operand, got %s", v.Kind())
	}
}

func (vm *VM) execCompare(op code.Opcode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}

	if op == code.EQ {
		return vm.push(value.NewBool(value.Equals(a, b)))
	}
	if op == code.NE {
		return vm.push(value.NewBool(!value.Equals(a, b)))
	}

	if !a.IsNumeric() || !b.IsNumeric() {
		return vm.runtimeErr("ordered comparison requires numeric operands, got %s and %s", a.Kind(), b.Kind())
	}
	x, y := asFloat64(a), asFloat64(b)
	var result bool
	switch op {
	case code.LT:
		result = x < y
	case code.LE:
		result = x <= y
	case code.GT:
		result = x > y
	case code.GE:
		result = x >= y
	}
	return vm.push(value.NewBool(result))
}

func addDelta(v value.Value, delta int64) (value.Value, error) {
	switch v.Kind() {
	case value.Int:
		return value.NewInt(v.Int() + delta), nil
	case value.Flt:
		return value.NewFlt(v.Flt() + float32(delta)), nil
	case value.Dbl:
		return value.NewDbl(v.Dbl() + float64(delta)), nil
	default:
		return value.Value{}, fmt.Errorf("'++'/'--' requires a numeric operand, got %s", v.Kind())
	}
}

func (vm *VM) execIncDecLocal(ins code.Instruction) error {
	name := ins.Operand.Str().Value
	scope := vm.scopes.Top()
	if scope == nil {
		return vm.runtimeErr("'%s' referenced outside of a function call", name)
	}
	cur, ok := scope.Get(name)
	if !ok {
		return vm.runtimeErr("undefined name '%s'", name)
	}
	delta := incDecDelta(ins.Op)
	next, err := addDelta(cur, delta)
	if err != nil {
		return vm.runtimeErr("%s", err)
	}
	scope.Set(name, next)
	if isPost(ins.Op) {
		return vm.push(cur)
	}
	return vm.push(next)
}

func (vm *VM) execIncDecGlobal(ins code.Instruction) error {
	name := ins.Operand.Str().Value
	cur, ok := vm.globals.Get(name)
	if !ok {
		return vm.runtimeErr("undefined name '%s'", name)
	}
	delta := incDecDelta(ins.Op)
	next, err := addDelta(cur, delta)
	if err != nil {
		return vm.runtimeErr("%s", err)
	}
	vm.globals.Set(name, next)
	if isPost(ins.Op) {
		return vm.push(cur)
	}
	return vm.push(next)
}

func incDecDelta(op code.Opcode) int64 {
	switch op {
	case code.PRE_INC_LOCAL, code.POST_INC_LOCAL, code.PRE_INC_GLOBAL, code.POST_INC_GLOBAL:
		return 1
	default:
		return -1
	}
}

func isPost(op code.Opcode) bool {
	return op == code.POST_INC_LOCAL || op == code.POST_INC_GLOBAL ||
		op == code.POST_DEC_LOCAL || op == code.POST_DEC_GLOBAL
}

func (vm *VM) execCreateArray(ins code.Instruction) error {
	n := int(ins.Operand.Int())
	values, err := vm.popN(n * 2)
	if err != nil {
		return err
	}
	arr := value.NewArray()
	for i := 0; i < n; i++ {
		key := values[2*i]
		val := values[2*i+1]
		if key.Kind() == value.Null {
			arr.Push(val)
		} else {
			arr.Set(key, val)
		}
	}
	return vm.push(value.NewArr(arr))
}

func (vm *VM) execGetElement() error {
	idx, err := vm.pop()
	if err != nil {
		return err
	}
	container, err := vm.pop()
	if err != nil {
		return err
	}
	switch container.Kind() {
	case value.Arr:
		v, ok := container.Arr().Get(idx)
		if !ok {
			return vm.runtimeErr("no such key %s in array", idx.ToString())
		}
		return vm.push(v)
	case value.Str:
		if idx.Kind() != value.Int {
			return vm.runtimeErr("string index must be an integer")
		}
		s := container.Str().Value
		i := idx.Int()
		if i < 0 || i >= int64(len(s)) {
			return vm.runtimeErr("string index %d out of range", i)
		}
		return vm.push(value.NewStr(intern.Default.Intern(string(s[i]))))
	default:
		return vm.runtimeErr("cannot index into %s", container.Kind())
	}
}

func (vm *VM) execSetElement() error {
	idx, err := vm.pop()
	if err != nil {
		return err
	}
	container, err := vm.pop()
	if err != nil {
		return err
	}
	val, err := vm.pop()
	if err != nil {
		return err
	}
	if container.Kind() != value.Arr {
		return vm.runtimeErr("cannot index-assign into %s", container.Kind())
	}
	container.Arr().Set(idx, val)
	return nil
}

func (vm *VM) execGetMember(ins code.Instruction) error {
	name := ins.Operand.Str().Value
	obj, err := vm.pop()
	if err != nil {
		return err
	}
	if obj.Kind() != value.Obj && obj.Kind() != value.TypeVal {
		return vm.runtimeErr("cannot read member '%s' of a non-object value (%s)", name, obj.Kind())
	}
	v, ok := obj.Obj().Get(name)
	if !ok {
		return vm.runtimeErr("no such member '%s'", name)
	}
	return vm.push(v)
}

func (vm *VM) execSetMember(ins code.Instruction) error {
	name := ins.Operand.Str().Value
	obj, err := vm.pop()
	if err != nil {
		return err
	}
	val, err := vm.pop()
	if err != nil {
		return err
	}
	if obj.Kind() != value.Obj && obj.Kind() != value.TypeVal {
		return vm.runtimeErr("cannot set member '%s' of a non-object value (%s)", name, obj.Kind())
	}
	obj.Obj().Set(name, val)
	return nil
}

func (vm *VM) execCreateObject(ins code.Instruction) error {
	n := int(ins.Operand.Int())
	nameVal, err := vm.pop()
	if err != nil {
		return err
	}
	name := nameVal.Str().Value
	typeVal, ok := vm.globals.Get(name)
	if !ok || typeVal.Kind() != value.TypeVal {
		return vm.runtimeErr("'%s' is not a declared type", name)
	}
	obj := typeVal.Obj()
	for i := 0; i < n; i++ {
		val, err := vm.pop()
		if err != nil {
			return err
		}
		key, err := vm.pop()
		if err != nil {
			return err
		}
		obj.Set(key.Str().Value, val)
	}
	return nil
}

func (vm *VM) execCallLib() error {
	libVal, err := vm.pop()
	if err != nil {
		return err
	}
	fnVal, err := vm.pop()
	if err != nil {
		return err
	}
	argcVal, err := vm.pop()
	if err != nil {
		return err
	}
	argc := int(argcVal.Int())
	args, err := vm.popN(argc)
	if err != nil {
		return err
	}
	if vm.libs == nil {
		return vm.runtimeErr("no native library registry configured")
	}
	result, err := vm.libs.Call(libVal.Str().Value, fnVal.Str().Value, args)
	if err != nil {
		return vm.runtimeErr("%s", err)
	}
	return vm.push(result)
}

func (vm *VM) execGetLibMember(ins code.Instruction) error {
	lib, err := vm.pop()
	if err != nil {
		return err
	}
	if vm.libs == nil {
		return vm.runtimeErr("no native library registry configured")
	}
	name := ins.Operand.Str().Value
	v, err := vm.libs.Member(lib.Str().Value, name)
	if err != nil {
		return vm.runtimeErr("%s", err)
	}
	return vm.push(v)
}

func (vm *VM) execIterStart() error {
	iterable, err := vm.pop()
	if err != nil {
		return err
	}
	if iterable.Kind() != value.Arr {
		return vm.runtimeErr("foreach requires an array, got %s", iterable.Kind())
	}
	if err := vm.push(value.NewInt(0)); err != nil {
		return err
	}
	return vm.push(iterable)
}

func (vm *VM) execIterNext() error {
	iterable, err := vm.pop()
	if err != nil {
		return err
	}
	idxVal, err := vm.pop()
	if err != nil {
		return err
	}
	entries := iterable.Arr().Iter()
	idx := idxVal.Int()
	if idx >= int64(len(entries)) {
		if err := vm.push(iterable); err != nil {
			return err
		}
		return vm.push(value.NewBool(false))
	}
	e := entries[idx]
	if err := vm.push(value.NewInt(idx + 1)); err != nil {
		return err
	}
	if err := vm.push(iterable); err != nil {
		return err
	}
	if err := vm.push(e.Val); err != nil {
		return err
	}
	if err := vm.push(e.Key); err != nil {
		return err
	}
	return vm.push(value.NewBool(true))
}
