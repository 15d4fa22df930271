// Package compiler translates an Apex abstract syntax tree into a flat
// bytecode [code.Chunk].
//
// The compiler is a single pass over the AST, grounded on the teacher's
// jump-patching idiom (emit a placeholder jump, remember its position,
// patch the operand once the target address is known) generalized from
// Monkey's constant-pool byte-packed instructions to Apex's
// operand-carrying Instruction structs. Unlike the teacher, there is no
// closure/free-variable machinery: functions are compiled inline into the
// single chunk (guarded by FUNCTION_START/FUNCTION_END markers so that
// normal top-to-bottom execution skips over a function body it isn't
// calling into) and variables resolve to exactly one of two scopes, global
// or local-to-the-current-call, per [github.com/apex-lang/apex/symtable]'s
// two-tier model. Jump targets are absolute instruction addresses rather
// than the relative offsets apexVM.c uses, which is simpler to get right
// when compiler and VM are written together from scratch.
package compiler

import (
	"fmt"

	"github.com/apex-lang/apex/apexerr"
	"github.com/apex-lang/apex/ast"
	"github.com/apex-lang/apex/code"
	"github.com/apex-lang/apex/intern"
	"github.com/apex-lang/apex/token"
	"github.com/apex-lang/apex/value"
)

// loopKind distinguishes a foreach loop (which leaves iterator bookkeeping
// on the stack between iterations) from a while/for loop, since break
// needs to clean up that extra stack state.
type loopKind int

const (
	loopWhile loopKind = iota
	loopFor
	loopForeach
)

type loopCtx struct {
	kind          loopKind
	continueJumps []int // JUMP positions to patch once the continue target is known
	continueTo    int   // known immediately for while/foreach; -1 until the for-loop's post is compiled
	breakJumps    []int // JUMP positions to patch to the loop's end
}

// Compiler compiles one Apex source file (or REPL entry) into a Chunk.
type Compiler struct {
	Chunk *code.Chunk

	// locals is non-nil while compiling a function body; it holds the flat
	// set of names bound as parameters or assigned-to within that single
	// call frame. nil at top level, where every assignment is global.
	locals map[string]bool

	loops []*loopCtx

	switchCounter int

	errors []string
}

// New creates a Compiler with an empty chunk.
func New() *Compiler {
	return &Compiler{Chunk: &code.Chunk{}}
}

// Errors returns the compile-time errors accumulated so far.
func (c *Compiler) Errors() []string { return c.errors }

func (c *Compiler) errorf(loc token.SrcLoc, format string, args ...any) {
	c.errors = append(c.errors, apexerr.NewSyntax(loc, format, args...).Error())
}

func strVal(s string) value.Value { return value.NewStr(intern.Default.Intern(s)) }

// Compile walks node, emitting instructions into c.Chunk.
func (c *Compiler) Compile(node ast.Node) error {
	switch n := node.(type) {

	case *ast.Program:
		for _, s := range n.Statements {
			if err := c.Compile(s); err != nil {
				return err
			}
		}

	case *ast.ExpressionStatement:
		if err := c.Compile(n.Expression); err != nil {
			return err
		}
		c.emit(code.POP, value.NewNull(), n.Tok.Loc)

	case *ast.BlockStatement:
		for _, s := range n.Statements {
			if err := c.Compile(s); err != nil {
				return err
			}
		}

	case *ast.ReturnStatement:
		if n.ReturnValue != nil {
			if err := c.Compile(n.ReturnValue); err != nil {
				return err
			}
		} else {
			c.emit(code.PUSH_NULL, value.NewNull(), n.Tok.Loc)
		}
		c.emit(code.RETURN, value.NewNull(), n.Tok.Loc)

	case *ast.BreakStatement:
		return c.compileBreak(n.Tok.Loc)

	case *ast.ContinueStatement:
		return c.compileContinue(n.Tok.Loc)

	case *ast.IfStatement:
		return c.compileIf(n)

	case *ast.WhileStatement:
		return c.compileWhile(n)

	case *ast.ForStatement:
		return c.compileFor(n)

	case *ast.ForeachStatement:
		return c.compileForeach(n)

	case *ast.SwitchStatement:
		return c.compileSwitch(n)

	case *ast.FunctionStatement:
		fn, err := c.compileFunctionValue(n.Function)
		if err != nil {
			return err
		}
		c.emit(code.PUSH_FN, fn, n.Tok.Loc)
		if n.TypeName == "" {
			c.emitSet(n.Function.Name, n.Tok.Loc)
			break
		}
		// A member-function declaration installs fn onto the already
		// registered Type's entries under its member name, rather than
		// binding a new global — Type declarations must precede method
		// additions in source order so the Type exists by this point.
		c.emitGet(n.TypeName, n.Tok.Loc)
		c.emit(code.SET_MEMBER, strVal(n.Function.Name), n.Tok.Loc)

	case *ast.TypeStatement:
		return c.compileType(n.Type)

	case *ast.IncludeStatement:
		// include statements emit no code: the named file is not read,
		// parsed, or compiled, so its declarations are not available to
		// the including program.
		return nil

	case *ast.Identifier:
		c.emitGet(n.Value, n.Tok.Loc)

	case *ast.ThisExpression:
		c.emit(code.GET_THIS, value.NewNull(), n.Tok.Loc)

	case *ast.IntegerLiteral:
		c.emit(code.PUSH_INT, value.NewInt(n.Value), n.Tok.Loc)

	case *ast.FloatLiteral:
		c.emit(code.PUSH_FLT, value.NewFlt(n.Value), n.Tok.Loc)

	case *ast.DoubleLiteral:
		c.emit(code.PUSH_DBL, value.NewDbl(n.Value), n.Tok.Loc)

	case *ast.StringLiteral:
		c.emit(code.PUSH_STR, strVal(n.Value), n.Tok.Loc)

	case *ast.BooleanLiteral:
		c.emit(code.PUSH_BOOL, value.NewBool(n.Value), n.Tok.Loc)

	case *ast.NullLiteral:
		c.emit(code.PUSH_NULL, value.NewNull(), n.Tok.Loc)

	case *ast.ArrayLiteral:
		return c.compileArrayLiteral(n)

	case *ast.FunctionLiteral:
		fn, err := c.compileFunctionValue(n)
		if err != nil {
			return err
		}
		c.emit(code.PUSH_FN, fn, n.Tok.Loc)

	case *ast.NewExpression:
		return c.compileNew(n)

	case *ast.PrefixExpression:
		if err := c.Compile(n.Right); err != nil {
			return err
		}
		switch n.Operator {
		case "!":
			c.emit(code.NOT, value.NewNull(), n.Tok.Loc)
		case "-":
			c.emit(code.NEGATE, value.NewNull(), n.Tok.Loc)
		case "+":
			c.emit(code.POSITIVE, value.NewNull(), n.Tok.Loc)
		default:
			c.errorf(n.Tok.Loc, "unknown prefix operator %s", n.Operator)
		}

	case *ast.InfixExpression:
		return c.compileInfix(n)

	case *ast.IncDecExpression:
		return c.compileIncDec(n)

	case *ast.AssignExpression:
		return c.compileAssign(n)

	case *ast.IndexExpression:
		if err := c.Compile(n.Left); err != nil {
			return err
		}
		if err := c.Compile(n.Index); err != nil {
			return err
		}
		c.emit(code.GET_ELEMENT, value.NewNull(), n.Tok.Loc)

	case *ast.MemberExpression:
		if err := c.Compile(n.Object); err != nil {
			return err
		}
		c.emit(code.GET_MEMBER, strVal(n.Member), n.Tok.Loc)

	case *ast.CallExpression:
		return c.compileCall(n)

	case *ast.LibCallExpression:
		for _, a := range n.Arguments {
			if err := c.Compile(a); err != nil {
				return err
			}
		}
		c.emit(code.PUSH_INT, value.NewInt(int64(len(n.Arguments))), n.Tok.Loc)
		c.emit(code.PUSH_STR, strVal(n.Fn), n.Tok.Loc)
		c.emit(code.PUSH_STR, strVal(n.Lib), n.Tok.Loc)
		c.emit(code.CALL_LIB, value.NewNull(), n.Tok.Loc)

	default:
		return fmt.Errorf("compiler: unsupported node type %T", node)
	}
	return nil
}

func (c *Compiler) emit(op code.Opcode, operand value.Value, loc token.SrcLoc) int {
	return c.Chunk.Emit(op, operand, loc)
}

func (c *Compiler) emitGet(name string, loc token.SrcLoc) {
	if c.locals != nil && c.locals[name] {
		c.emit(code.GET_LOCAL, strVal(name), loc)
	} else {
		c.emit(code.GET_GLOBAL, strVal(name), loc)
	}
}

func (c *Compiler) emitSet(name string, loc token.SrcLoc) {
	if c.locals != nil {
		c.locals[name] = true
		c.emit(code.SET_LOCAL, strVal(name), loc)
	} else {
		c.emit(code.SET_GLOBAL, strVal(name), loc)
	}
}

func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteral) error {
	for _, el := range n.Elements {
		if el.Key != nil {
			if err := c.Compile(el.Key); err != nil {
				return err
			}
		} else {
			c.emit(code.PUSH_NULL, value.NewNull(), n.Tok.Loc)
		}
		if err := c.Compile(el.Value); err != nil {
			return err
		}
	}
	c.emit(code.CREATE_ARRAY, value.NewInt(int64(len(n.Elements))), n.Tok.Loc)
	return nil
}

func (c *Compiler) compileInfix(n *ast.InfixExpression) error {
	switch n.Operator {
	case "&&":
		return c.compileAnd(n)
	case "||":
		return c.compileOr(n)
	}

	if err := c.Compile(n.Left); err != nil {
		return err
	}
	if err := c.Compile(n.Right); err != nil {
		return err
	}
	switch n.Operator {
	case "+":
		c.emit(code.ADD, value.NewNull(), n.Tok.Loc)
	case "-":
		c.emit(code.SUB, value.NewNull(), n.Tok.Loc)
	case "*":
		c.emit(code.MUL, value.NewNull(), n.Tok.Loc)
	case "/":
		c.emit(code.DIV, value.NewNull(), n.Tok.Loc)
	case "%":
		c.emit(code.MOD, value.NewNull(), n.Tok.Loc)
	case "==":
		c.emit(code.EQ, value.NewNull(), n.Tok.Loc)
	case "!=":
		c.emit(code.NE, value.NewNull(), n.Tok.Loc)
	case "<":
		c.emit(code.LT, value.NewNull(), n.Tok.Loc)
	case "<=":
		c.emit(code.LE, value.NewNull(), n.Tok.Loc)
	case ">":
		c.emit(code.GT, value.NewNull(), n.Tok.Loc)
	case ">=":
		c.emit(code.GE, value.NewNull(), n.Tok.Loc)
	default:
		c.errorf(n.Tok.Loc, "unknown infix operator %s", n.Operator)
	}
	return nil
}

// compileAnd lowers `a && b` to a boolean result without ever evaluating b
// when a is falsy.
func (c *Compiler) compileAnd(n *ast.InfixExpression) error {
	if err := c.Compile(n.Left); err != nil {
		return err
	}
	j1 := c.emit(code.JUMP_IF_FALSE, value.NewInt(-1), n.Tok.Loc)
	if err := c.Compile(n.Right); err != nil {
		return err
	}
	j2 := c.emit(code.JUMP_IF_FALSE, value.NewInt(-1), n.Tok.Loc)
	c.emit(code.PUSH_BOOL, value.NewBool(true), n.Tok.Loc)
	jend := c.emit(code.JUMP, value.NewInt(-1), n.Tok.Loc)
	falseLabel := c.Chunk.Len()
	c.emit(code.PUSH_BOOL, value.NewBool(false), n.Tok.Loc)
	end := c.Chunk.Len()
	c.patch(j1, falseLabel)
	c.patch(j2, falseLabel)
	c.patch(jend, end)
	return nil
}

// compileOr lowers `a || b` to a boolean result without ever evaluating b
// when a is truthy.
func (c *Compiler) compileOr(n *ast.InfixExpression) error {
	if err := c.Compile(n.Left); err != nil {
		return err
	}
	jTestB := c.emit(code.JUMP_IF_FALSE, value.NewInt(-1), n.Tok.Loc)
	c.emit(code.PUSH_BOOL, value.NewBool(true), n.Tok.Loc)
	jEnd1 := c.emit(code.JUMP, value.NewInt(-1), n.Tok.Loc)
	testB := c.Chunk.Len()
	c.patch(jTestB, testB)
	if err := c.Compile(n.Right); err != nil {
		return err
	}
	jFalse := c.emit(code.JUMP_IF_FALSE, value.NewInt(-1), n.Tok.Loc)
	c.emit(code.PUSH_BOOL, value.NewBool(true), n.Tok.Loc)
	jEnd2 := c.emit(code.JUMP, value.NewInt(-1), n.Tok.Loc)
	falseLabel := c.Chunk.Len()
	c.emit(code.PUSH_BOOL, value.NewBool(false), n.Tok.Loc)
	end := c.Chunk.Len()
	c.patch(jEnd1, end)
	c.patch(jEnd2, end)
	c.patch(jFalse, falseLabel)
	return nil
}

func (c *Compiler) patch(pos, target int) {
	c.Chunk.PatchOperand(pos, value.NewInt(int64(target)))
}

func (c *Compiler) compileIf(n *ast.IfStatement) error {
	var endJumps []int
	nextJump := -1

	for _, branch := range n.Branches {
		if nextJump != -1 {
			c.patch(nextJump, c.Chunk.Len())
		}
		if err := c.Compile(branch.Condition); err != nil {
			return err
		}
		nextJump = c.emit(code.JUMP_IF_FALSE, value.NewInt(-1), n.Tok.Loc)
		if err := c.Compile(branch.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emit(code.JUMP, value.NewInt(-1), n.Tok.Loc))
	}

	if nextJump != -1 {
		c.patch(nextJump, c.Chunk.Len())
	}
	if n.Else != nil {
		if err := c.Compile(n.Else); err != nil {
			return err
		}
	}
	end := c.Chunk.Len()
	for _, j := range endJumps {
		c.patch(j, end)
	}
	return nil
}

func (c *Compiler) compileWhile(n *ast.WhileStatement) error {
	loopStart := c.Chunk.Len()
	if err := c.Compile(n.Condition); err != nil {
		return err
	}
	exitJump := c.emit(code.JUMP_IF_FALSE, value.NewInt(-1), n.Tok.Loc)

	c.loops = append(c.loops, &loopCtx{kind: loopWhile, continueTo: loopStart})
	if err := c.Compile(n.Body); err != nil {
		return err
	}
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	c.emit(code.JUMP, value.NewInt(int64(loopStart)), n.Tok.Loc)
	end := c.Chunk.Len()
	c.patch(exitJump, end)
	for _, j := range loop.continueJumps {
		c.patch(j, loopStart)
	}
	for _, j := range loop.breakJumps {
		c.patch(j, end)
	}
	return nil
}

func (c *Compiler) compileFor(n *ast.ForStatement) error {
	if n.Init != nil {
		if err := c.Compile(n.Init); err != nil {
			return err
		}
	}
	condPos := c.Chunk.Len()
	exitJump := -1
	if n.Condition != nil {
		if err := c.Compile(n.Condition); err != nil {
			return err
		}
		exitJump = c.emit(code.JUMP_IF_FALSE, value.NewInt(-1), n.Tok.Loc)
	}

	c.loops = append(c.loops, &loopCtx{kind: loopFor, continueTo: -1})
	if err := c.Compile(n.Body); err != nil {
		return err
	}
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	postPos := c.Chunk.Len()
	if n.Post != nil {
		if err := c.Compile(n.Post); err != nil {
			return err
		}
		c.emit(code.POP, value.NewNull(), n.Tok.Loc)
	}
	c.emit(code.JUMP, value.NewInt(int64(condPos)), n.Tok.Loc)
	end := c.Chunk.Len()
	if exitJump != -1 {
		c.patch(exitJump, end)
	}
	for _, j := range loop.continueJumps {
		c.patch(j, postPos)
	}
	for _, j := range loop.breakJumps {
		c.patch(j, end)
	}
	return nil
}

func (c *Compiler) compileForeach(n *ast.ForeachStatement) error {
	if err := c.Compile(n.Iterable); err != nil {
		return err
	}
	c.emit(code.ITER_START, value.NewNull(), n.Tok.Loc)

	loopStart := c.Chunk.Len()
	c.emit(code.ITER_NEXT, value.NewNull(), n.Tok.Loc)
	doneJump := c.emit(code.JUMP_IF_DONE, value.NewInt(-1), n.Tok.Loc)

	c.emitSet(n.KeyName, n.Tok.Loc)
	c.emitSet(n.ValueName, n.Tok.Loc)

	c.loops = append(c.loops, &loopCtx{kind: loopForeach, continueTo: loopStart})
	if err := c.Compile(n.Body); err != nil {
		return err
	}
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	c.emit(code.JUMP, value.NewInt(int64(loopStart)), n.Tok.Loc)
	end := c.Chunk.Len()
	c.patch(doneJump, end)
	for _, j := range loop.continueJumps {
		c.patch(j, loopStart)
	}
	for _, j := range loop.breakJumps {
		c.patch(j, end)
	}
	return nil
}

// compileBreak cleans up any iterator bookkeeping a foreach left on the
// stack before jumping to the loop's end, since the loop's own exit path
// (JUMP_IF_DONE) already does that cleanup on the normal exit route.
func (c *Compiler) compileBreak(loc token.SrcLoc) error {
	if len(c.loops) == 0 {
		c.errorf(loc, "'break' outside of a loop")
		return nil
	}
	loop := c.loops[len(c.loops)-1]
	if loop.kind == loopForeach {
		c.emit(code.POP, value.NewNull(), loc)
		c.emit(code.POP, value.NewNull(), loc)
	}
	loop.breakJumps = append(loop.breakJumps, c.emit(code.JUMP, value.NewInt(-1), loc))
	return nil
}

func (c *Compiler) compileContinue(loc token.SrcLoc) error {
	if len(c.loops) == 0 {
		c.errorf(loc, "'continue' outside of a loop")
		return nil
	}
	loop := c.loops[len(c.loops)-1]
	if loop.continueTo >= 0 {
		c.emit(code.JUMP, value.NewInt(int64(loop.continueTo)), loc)
	} else {
		loop.continueJumps = append(loop.continueJumps, c.emit(code.JUMP, value.NewInt(-1), loc))
	}
	return nil
}

func (c *Compiler) compileSwitch(n *ast.SwitchStatement) error {
	tempName := fmt.Sprintf("$switch%d", c.switchCounter)
	c.switchCounter++
	if err := c.Compile(n.Value); err != nil {
		return err
	}
	c.emitSet(tempName, n.Tok.Loc)

	var endJumps []int
	nextCaseJump := -1
	var defaultCase *ast.SwitchCase

	for i := range n.Cases {
		cs := &n.Cases[i]
		if cs.IsDefault {
			defaultCase = cs
			continue
		}
		if nextCaseJump != -1 {
			c.patch(nextCaseJump, c.Chunk.Len())
		}

		var matchJumps []int
		for _, valExpr := range cs.Values {
			c.emitGet(tempName, n.Tok.Loc)
			if err := c.Compile(valExpr); err != nil {
				return err
			}
			c.emit(code.EQ, value.NewNull(), n.Tok.Loc)
			c.emit(code.NOT, value.NewNull(), n.Tok.Loc)
			matchJumps = append(matchJumps, c.emit(code.JUMP_IF_FALSE, value.NewInt(-1), n.Tok.Loc))
		}
		nextCaseJump = c.emit(code.JUMP, value.NewInt(-1), n.Tok.Loc)

		bodyStart := c.Chunk.Len()
		for _, j := range matchJumps {
			c.patch(j, bodyStart)
		}
		for _, s := range cs.Body {
			if err := c.Compile(s); err != nil {
				return err
			}
		}
		endJumps = append(endJumps, c.emit(code.JUMP, value.NewInt(-1), n.Tok.Loc))
	}

	if defaultCase != nil {
		defaultStart := c.Chunk.Len()
		if nextCaseJump != -1 {
			c.patch(nextCaseJump, defaultStart)
		}
		for _, s := range defaultCase.Body {
			if err := c.Compile(s); err != nil {
				return err
			}
		}
	} else if nextCaseJump != -1 {
		c.patch(nextCaseJump, c.Chunk.Len())
	}

	end := c.Chunk.Len()
	for _, j := range endJumps {
		c.patch(j, end)
	}
	return nil
}

// compileFunctionValue compiles fn's body inline into the current chunk,
// guarded by FUNCTION_START/FUNCTION_END so straight-line execution skips
// it, and returns the function value (carrying its body's start address)
// ready to be pushed or bound to a name.
func (c *Compiler) compileFunctionValue(fn *ast.FunctionLiteral) (value.Value, error) {
	startPos := c.emit(code.FUNCTION_START, value.NewNull(), fn.Tok.Loc)

	outerLocals := c.locals
	c.locals = make(map[string]bool)
	for _, p := range fn.Parameters {
		c.locals[p.Value] = true
	}
	if fn.Variadic != nil {
		c.locals[fn.Variadic.Value] = true
	}

	addr := c.Chunk.Len()
	if err := c.Compile(fn.Body); err != nil {
		c.locals = outerLocals
		return value.Value{}, err
	}
	c.emit(code.PUSH_NULL, value.NewNull(), fn.Tok.Loc)
	c.emit(code.RETURN, value.NewNull(), fn.Tok.Loc)
	c.locals = outerLocals

	c.emit(code.FUNCTION_END, value.NewNull(), fn.Tok.Loc)
	// FUNCTION_START's operand is the address just past FUNCTION_END, so
	// straight-line execution (reaching this function's declaration
	// without having CALLed into it) skips the whole body in one jump.
	c.patch(startPos, c.Chunk.Len())

	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = p.Value
	}
	variadic := fn.Variadic != nil
	if variadic {
		params = append(params, fn.Variadic.Value)
	}
	f := &value.Function{Name: fn.Name, Params: params, Variadic: variadic, Addr: addr}
	return value.NewFn(f), nil
}

func (c *Compiler) compileType(t *ast.TypeLiteral) error {
	c.emit(code.PUSH_STR, strVal(t.Name), t.Tok.Loc)
	c.emit(code.NEW_TYPE, value.NewNull(), t.Tok.Loc)
	c.emitSet(t.Name, t.Tok.Loc)

	for _, f := range t.Fields {
		c.emit(code.PUSH_STR, strVal(f.Name), t.Tok.Loc)
		if err := c.Compile(f.Value); err != nil {
			return err
		}
	}
	c.emit(code.PUSH_STR, strVal(t.Name), t.Tok.Loc)
	c.emit(code.CREATE_OBJECT, value.NewInt(int64(len(t.Fields))), t.Tok.Loc)
	return nil
}

func (c *Compiler) compileNew(n *ast.NewExpression) error {
	for _, a := range n.Arguments {
		if err := c.Compile(a); err != nil {
			return err
		}
	}
	c.emitGet(n.TypeName, n.Tok.Loc)
	c.emit(code.NEW, value.NewInt(int64(len(n.Arguments))), n.Tok.Loc)
	return nil
}

func (c *Compiler) compileCall(n *ast.CallExpression) error {
	if n.Receiver != nil {
		ident, ok := n.Function.(*ast.Identifier)
		if !ok {
			return fmt.Errorf("compiler: invalid member call target")
		}
		for _, a := range n.Arguments {
			if err := c.Compile(a); err != nil {
				return err
			}
		}
		if err := c.Compile(n.Receiver); err != nil {
			return err
		}
		c.emit(code.PUSH_INT, value.NewInt(int64(len(n.Arguments))), n.Tok.Loc)
		c.emit(code.CALL_MEMBER, strVal(ident.Value), n.Tok.Loc)
		return nil
	}

	for _, a := range n.Arguments {
		if err := c.Compile(a); err != nil {
			return err
		}
	}
	if err := c.Compile(n.Function); err != nil {
		return err
	}
	c.emit(code.CALL,value.NewInt(int64(len(n.Arguments))), n.Tok.Loc)
	return nil
}

// compileIncDec desugars ++/-- on every lvalue shape to an equivalent
// get/add-or-subtract-one/set sequence, except the plain-identifier case,
// which uses the dedicated PRE/POST_INC/DEC opcodes for fidelity with the
// original VM's fast path.
func (c *Compiler) compileIncDec(n *ast.IncDecExpression) error {
	delta := int64(1)
	if n.Operator == "--" {
		delta = -1
	}

	if ident, ok := n.Target.(*ast.Identifier); ok {
		var op code.Opcode
		isLocal := c.locals != nil && c.locals[ident.Value]
		switch {
		case n.Operator == "++" && !n.Postfix && isLocal:
			op = code.PRE_INC_LOCAL
		case n.Operator == "++" && n.Postfix && isLocal:
			op = code.POST_INC_LOCAL
		case n.Operator == "++" && !n.Postfix && !isLocal:
			op = code.PRE_INC_GLOBAL
		case n.Operator == "++" && n.Postfix && !isLocal:
			op = code.POST_INC_GLOBAL
		case n.Operator == "--" && !n.Postfix && isLocal:
			op = code.PRE_DEC_LOCAL
		case n.Operator == "--" && n.Postfix && isLocal:
			op = code.POST_DEC_LOCAL
		case n.Operator == "--" && !n.Postfix && !isLocal:
			op = code.PRE_DEC_GLOBAL
		default:
			op = code.POST_DEC_GLOBAL
		}
		if isLocal {
			c.locals[ident.Value] = true
		}
		c.emit(op, strVal(ident.Value), n.Tok.Loc)
		return nil
	}

	// Index/member targets: desugar, recomputing the target's address
	// expressions to read, write, and re-read the updated value (a postfix
	// form then subtracts the delta back out to yield the old value). This
	// re-evaluates Left/Object if they have side effects, a documented
	// simplification given there is no stack DUP.
	switch t := n.Target.(type) {
	case *ast.IndexExpression:
		if err := c.Compile(t.Left); err != nil {
			return err
		}
		if err := c.Compile(t.Index); err != nil {
			return err
		}
		c.emit(code.GET_ELEMENT, value.NewNull(), n.Tok.Loc)
		c.emit(code.PUSH_INT, value.NewInt(delta), n.Tok.Loc)
		c.emit(code.ADD, value.NewNull(), n.Tok.Loc)
		if err := c.Compile(t.Left); err != nil {
			return err
		}
		if err := c.Compile(t.Index); err != nil {
			return err
		}
		c.emit(code.SET_ELEMENT, value.NewNull(), n.Tok.Loc)
		if err := c.Compile(t.Left); err != nil {
			return err
		}
		if err := c.Compile(t.Index); err != nil {
			return err
		}
		c.emit(code.GET_ELEMENT, value.NewNull(), n.Tok.Loc)
	case *ast.MemberExpression:
		if err := c.Compile(t.Object); err != nil {
			return err
		}
		c.emit(code.GET_MEMBER, strVal(t.Member), n.Tok.Loc)
		c.emit(code.PUSH_INT, value.NewInt(delta), n.Tok.Loc)
		c.emit(code.ADD, value.NewNull(), n.Tok.Loc)
		if err := c.Compile(t.Object); err != nil {
			return err
		}
		c.emit(code.SET_MEMBER, strVal(t.Member), n.Tok.Loc)
		if err := c.Compile(t.Object); err != nil {
			return err
		}
		c.emit(code.GET_MEMBER, strVal(t.Member), n.Tok.Loc)
	default:
		return fmt.Errorf("compiler: invalid ++/-- target")
	}
	if n.Postfix {
		c.emit(code.PUSH_INT, value.NewInt(-delta), n.Tok.Loc)
		c.emit(code.ADD, value.NewNull(), n.Tok.Loc)
	}
	return nil
}

func (c *Compiler) compileAssign(n *ast.AssignExpression) error {
	op := n.Operator
	binOp := map[string]code.Opcode{
		"+=": code.ADD, "-=": code.SUB, "*=": code.MUL, "/=": code.DIV, "%=": code.MOD,
	}

	switch target := n.Target.(type) {
	case *ast.Identifier:
		if op != "=" {
			c.emitGet(target.Value, n.Tok.Loc)
		}
		if err := c.Compile(n.Value); err != nil {
			return err
		}
		if bo, ok := binOp[op]; ok {
			c.emit(bo, value.NewNull(), n.Tok.Loc)
		}
		c.emitSet(target.Value, n.Tok.Loc)
		c.emitGet(target.Value, n.Tok.Loc)
		return nil

	case *ast.IndexExpression:
		if op != "=" {
			if err := c.Compile(target.Left); err != nil {
				return err
			}
			if err := c.Compile(target.Index); err != nil {
				return err
			}
			c.emit(code.GET_ELEMENT, value.NewNull(), n.Tok.Loc)
		}
		if err := c.Compile(n.Value); err != nil {
			return err
		}
		if bo, ok := binOp[op]; ok {
			c.emit(bo, value.NewNull(), n.Tok.Loc)
		}
		if err := c.Compile(target.Left); err != nil {
			return err
		}
		if err := c.Compile(target.Index); err != nil {
			return err
		}
		c.emit(code.SET_ELEMENT, value.NewNull(), n.Tok.Loc)
		if err := c.Compile(target.Left); err != nil {
			return err
		}
		if err := c.Compile(target.Index); err != nil {
			return err
		}
		c.emit(code.GET_ELEMENT, value.NewNull(), n.Tok.Loc)
		return nil

	case *ast.MemberExpression:
		if op != "=" {
			if err := c.Compile(target.Object); err != nil {
				return err
			}
			c.emit(code.GET_MEMBER, strVal(target.Member), n.Tok.Loc)
		}
		if err := c.Compile(n.Value); err != nil {
			return err
		}
		if bo, ok := binOp[op]; ok {
			c.emit(bo, value.NewNull(), n.Tok.Loc)
		}
		if err := c.Compile(target.Object); err != nil {
			return err
		}
		c.emit(code.SET_MEMBER, strVal(target.Member), n.Tok.Loc)
		if err := c.Compile(target.Object); err != nil {
			return err
		}
		c.emit(code.GET_MEMBER, strVal(target.Member), n.Tok.Loc)
		return nil

	default:
		return fmt.Errorf("compiler: invalid assignment target")
	}
}
