package vm

import (
	"github.com/apex-lang/apex/code"
	"github.com/apex-lang/apex/value"
)

// callFunction pushes a new call frame and local scope for fn, binds its
// parameters from argc values already on the stack, and jumps execution to
// the function's body. Shared by CALL, CALL_MEMBER, and NEW.
func (vm *VM) callFunction(fn *value.Function, argc int, objContext value.Value, hasContext bool) error {
	if len(vm.callFrames) >= CallStackMax {
		return vm.runtimeErr("call stack overflow")
	}

	nparams := len(fn.Params)
	if fn.Variadic {
		if argc < nparams-1 {
			return vm.runtimeErr("'%s' expects at least %d argument(s), got %d", fn.Name, nparams-1, argc)
		}
	} else if argc != nparams {
		return vm.runtimeErr("'%s' expects %d argument(s), got %d", fn.Name, nparams, argc)
	}

	args, err := vm.popN(argc)
	if err != nil {
		return err
	}

	vm.callFrames = append(vm.callFrames, callFrame{
		fnName:         fn.Name,
		returnAddr:     vm.ip + 1,
		prevObjContext: vm.objContext,
		prevHasContext: vm.hasContext,
		stackBase:      len(vm.stack),
	})
	vm.objContext = objContext
	vm.hasContext = hasContext

	scope := vm.scopes.Push()
	if fn.Variadic {
		fixed := nparams - 1
		for i := 0; i < fixed; i++ {
			scope.Set(fn.Params[i], args[i])
		}
		rest := value.NewArray()
		for i := fixed; i < len(args); i++ {
			rest.Push(args[i])
		}
		scope.Set(fn.Params[fixed], value.NewArr(rest))
	} else {
		for i, p := range fn.Params {
			scope.Set(p, args[i])
		}
	}

	vm.ip = fn.Addr
	return nil
}

// execCall handles plain CALL argc: argc is the instruction's own operand.
// A plain call resets object context, since a top-level function invoked
// from inside a method body has no business inheriting the caller's this.
func (vm *VM) execCall(ins code.Instruction) (bool, error) {
	argc := int(ins.Operand.Int())
	callee, err := vm.pop()
	if err != nil {
		return false, err
	}

	switch callee.Kind() {
	case value.CFn:
		cfn := callee.CFn()
		if cfn.Argc >= 0 && argc != cfn.Argc {
			return false, vm.runtimeErr("'%s' expects %d argument(s), got %d", cfn.Name, cfn.Argc, argc)
		}
		args, err := vm.popN(argc)
		if err != nil {
			return false, err
		}
		result, err := cfn.Fn(args)
		if err != nil {
			return false, vm.runtimeErr("%s", err)
		}
		if err := vm.push(result); err != nil {
			return false, err
		}
		return false, nil

	case value.Fn:
		if err := vm.callFunction(callee.Fn(), argc, value.NewNull(), false); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, vm.runtimeErr("value of kind %s is not callable", callee.Kind())
	}
}

// execCallMember handles CALL_MEMBER name: argc is popped off the stack
// (pushed by the compiler just before this instruction) rather than carried
// as the instruction's own operand, and the receiver is peeked until the
// callee's kind is known.
func (vm *VM) execCallMember(ins code.Instruction) (bool, error) {
	argcVal, err := vm.pop()
	if err != nil {
		return false, err
	}
	argc := int(argcVal.Int())

	receiver, err := vm.peek()
	if err != nil {
		return false, err
	}
	if receiver.Kind() != value.Obj && receiver.Kind() != value.TypeVal {
		return false, vm.runtimeErr("cannot call member '%s' on a non-object value (%s)", ins.Operand.Str().Value, receiver.Kind())
	}

	name := ins.Operand.Str().Value
	member, ok := receiver.Obj().Get(name)
	if !ok {
		return false, vm.runtimeErr("no such member function '%s'", name)
	}

	switch member.Kind() {
	case value.CFn:
		if _, err := vm.pop(); err != nil { // drop the receiver
			return false, err
		}
		cfn := member.CFn()
		if cfn.Argc >= 0 && argc != cfn.Argc {
			return false, vm.runtimeErr("'%s' expects %d argument(s), got %d", cfn.Name, cfn.Argc, argc)
		}
		args, err := vm.popN(argc)
		if err != nil {
			return false, err
		}
		result, err := cfn.Fn(args)
		if err != nil {
			return false, vm.runtimeErr("%s", err)
		}
		if err := vm.push(result); err != nil {
			return false, err
		}
		return false, nil

	case value.Fn:
		if _, err := vm.pop(); err != nil { // drop the receiver
			return false, err
		}
		if err := vm.callFunction(member.Fn(), argc, receiver, true); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, vm.runtimeErr("member '%s' is not callable", name)
	}
}

// execNew handles NEW argc: the Type is popped first, deep-copied into a
// fresh instance, and a method literally named "new" (if present) is
// dispatched as the constructor.
func (vm *VM) execNew(ins code.Instruction) (bool, error) {
	argc := int(ins.Operand.Int())
	typeVal, err := vm.pop()
	if err != nil {
		return false, err
	}
	if typeVal.Kind() != value.TypeVal {
		return false, vm.runtimeErr("'new' requires a declared type, got %s", typeVal.Kind())
	}

	instance := typeVal.Obj().Copy()
	instanceVal := value.NewObj(instance)

	ctor, ok := instance.Get("new")
	if !ok || ctor.Kind() != value.Fn {
		if argc != 0 {
			return false, vm.runtimeErr("constructor arguments given but '%s' has no constructor", typeVal.Obj().Name)
		}
		if err := vm.push(instanceVal); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := vm.callFunction(ctor.Fn(), argc, instanceVal, true); err != nil {
		return false, err
	}
	return true, nil
}

// execReturn pops the frame pushed by callFunction, restores the caller's
// object context, and substitutes the constructed instance as the result
// when the returning frame was a "new" constructor. The value stack is
// truncated back to the frame's entry depth before the result is pushed,
// so a return from inside a foreach (which keeps its index/iterable
// resident on the stack across the body) can't leak those slots into the
// caller.
func (vm *VM) execReturn() (bool, error) {
	result, err := vm.pop()
	if err != nil {
		return false, err
	}

	if len(vm.callFrames) == 0 {
		// A bare top-level return; nothing to unwind to, so just stop.
		if err := vm.push(result); err != nil {
			return false, err
		}
		return true, nil
	}

	n := len(vm.callFrames) - 1
	frame := vm.callFrames[n]
	vm.callFrames = vm.callFrames[:n]

	if frame.fnName == "new" && vm.hasContext && vm.objContext.Kind() == value.Obj {
		result = vm.objContext
	}

	vm.scopes.Pop()
	vm.objContext = frame.prevObjContext
	vm.hasContext = frame.prevHasContext
	vm.ip = frame.returnAddr

	if frame.stackBase < len(vm.stack) {
		vm.stack = vm.stack[:frame.stackBase]
	}

	if err := vm.push(result); err != nil {
		return false, err
	}
	return true, nil
}
