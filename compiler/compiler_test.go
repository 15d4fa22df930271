package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apex-lang/apex/code"
	"github.com/apex-lang/apex/lexer"
	"github.com/apex-lang/apex/parser"
)

func compileProgram(t *testing.T, input string) *code.Chunk {
	t.Helper()
	l := lexer.New("test.apex", input)
	p := parser.New(l)
	program := p.ParseProgram()
	require.Empty(t, p.Errors())
	require.NotNil(t, program)

	c := New()
	err := c.Compile(program)
	require.NoError(t, err)
	require.Empty(t, c.Errors())
	return c.Chunk
}

func opcodes(chunk *code.Chunk) []code.Opcode {
	ops := make([]code.Opcode, len(chunk.Instructions))
	for i, ins := range chunk.Instructions {
		ops[i] = ins.Op
	}
	return ops
}

func TestCompileArithmeticEmitsPostfixOps(t *testing.T) {
	chunk := compileProgram(t, `1 + 2 * 3;`)
	assert.Equal(t, []code.Opcode{
		code.PUSH_INT, code.PUSH_INT, code.PUSH_INT, code.MUL, code.ADD, code.POP,
	}, opcodes(chunk))
}

func TestCompileGlobalAssignAndRead(t *testing.T) {
	chunk := compileProgram(t, `x = 1; y = x + 1;`)
	assert.Equal(t, []code.Opcode{
		code.PUSH_INT, code.SET_GLOBAL, code.GET_GLOBAL, code.POP,
		code.GET_GLOBAL, code.PUSH_INT, code.ADD, code.SET_GLOBAL, code.GET_GLOBAL, code.POP,
	}, opcodes(chunk))
}

func TestCompileIfElseJumpsPatched(t *testing.T) {
	chunk := compileProgram(t, `if (x < 1) { y = 1; } else { y = 2; }`)
	for _, ins := range chunk.Instructions {
		if ins.Op == code.JUMP || ins.Op == code.JUMP_IF_FALSE {
			target := ins.Operand.Int()
			assert.GreaterOrEqual(t, target, int64(0))
			assert.LessOrEqual(t, target, int64(len(chunk.Instructions)))
		}
	}
	ops := opcodes(chunk)
	require.Contains(t, ops, code.JUMP_IF_FALSE)
	require.Contains(t, ops, code.JUMP)
}

func TestCompileWhileLoopBackJump(t *testing.T) {
	chunk := compileProgram(t, `while (x < 10) { x = x + 1; }`)
	ops := opcodes(chunk)
	require.Contains(t, ops, code.JUMP_IF_FALSE)

	var backJump *int
	for i, ins := range chunk.Instructions {
		if ins.Op == code.JUMP {
			pos := ins.Operand.Int()
			if int(pos) < i {
				idx := i
				backJump = &idx
			}
		}
	}
	require.NotNil(t, backJump, "expected a backward JUMP closing the loop")
}

func TestCompileForeachLowersToIteratorOpcodes(t *testing.T) {
	chunk := compileProgram(t, `foreach (k, v in arr) { print(v); }`)
	ops := opcodes(chunk)
	require.Contains(t, ops, code.ITER_START)
	require.Contains(t, ops, code.ITER_NEXT)
	require.Contains(t, ops, code.JUMP_IF_DONE)
}

func TestCompileBreakInsideForeachCleansStack(t *testing.T) {
	chunk := compileProgram(t, `foreach (v in arr) { if (v == 1) { break; } }`)
	foundBreakCleanup := false
	for i := 0; i < len(chunk.Instructions)-2; i++ {
		if chunk.Instructions[i].Op == code.POP && chunk.Instructions[i+1].Op == code.POP &&
			chunk.Instructions[i+2].Op == code.JUMP {
			foundBreakCleanup = true
		}
	}
	assert.True(t, foundBreakCleanup, "expected POP,POP,JUMP cleanup sequence before a foreach break")
}

func TestCompileFunctionDeclarationInline(t *testing.T) {
	chunk := compileProgram(t, `fn add(a, b) { return a + b; }`)
	ops := opcodes(chunk)
	require.Equal(t, code.FUNCTION_START, ops[0])
	require.Contains(t, ops, code.FUNCTION_END)
	require.Contains(t, ops, code.PUSH_FN)
	require.Contains(t, ops, code.SET_GLOBAL)
	require.Contains(t, ops, code.RETURN)
}

func TestCompileFunctionLocalsUseLocalOpcodes(t *testing.T) {
	chunk := compileProgram(t, `fn add(a, b) { c = a + b; return c; }`)
	ops := opcodes(chunk)
	assert.Contains(t, ops, code.GET_LOCAL)
	assert.Contains(t, ops, code.SET_LOCAL)
	assert.NotContains(t, ops, code.GET_GLOBAL)
}

func TestCompileCallEmitsArgcOperand(t *testing.T) {
	chunk := compileProgram(t, `fn f(a) { return a; } f(1);`)
	var callIns *code.Instruction
	for i := range chunk.Instructions {
		if chunk.Instructions[i].Op == code.CALL {
			callIns = &chunk.Instructions[i]
		}
	}
	require.NotNil(t, callIns)
	assert.Equal(t, int64(1), callIns.Operand.Int())
}

func TestCompileMemberCallPushesArgcThenCallMember(t *testing.T) {
	chunk := compileProgram(t, `p.sum(1, 2);`)
	ops := opcodes(chunk)
	var argcPos, callPos int = -1, -1
	for i, op := range ops {
		if op == code.CALL_MEMBER {
			callPos = i
		}
	}
	require.NotEqual(t, -1, callPos)
	for i := callPos - 1; i >= 0; i-- {
		if ops[i] == code.PUSH_INT {
			argcPos = i
			break
		}
	}
	require.NotEqual(t, -1, argcPos)
	assert.Equal(t, int64(2), chunk.Instructions[argcPos].Operand.Int())
	assert.Equal(t, "sum", chunk.Instructions[callPos].Operand.ToString())
}

func TestCompileNewEmitsTypeGetThenNew(t *testing.T) {
	chunk := compileProgram(t, `p = Point.new(1, 2);`)
	ops := opcodes(chunk)
	newIdx := -1
	for i, op := range ops {
		if op == code.NEW {
			newIdx = i
		}
	}
	require.NotEqual(t, -1, newIdx)
	assert.Equal(t, code.GET_GLOBAL, ops[newIdx-1])
	assert.Equal(t, int64(2), chunk.Instructions[newIdx].Operand.Int())
}

func TestCompileTypeDeclarationCreatesObjectWithFields(t *testing.T) {
	chunk := compileProgram(t, `Point { x = 0, y = 0 }`)
	ops := opcodes(chunk)
	require.Contains(t, ops, code.NEW_TYPE)
	require.Contains(t, ops, code.CREATE_OBJECT)

	var createIdx int = -1
	for i, op := range ops {
		if op == code.CREATE_OBJECT {
			createIdx = i
		}
	}
	require.NotEqual(t, -1, createIdx)
	assert.Equal(t, int64(2), chunk.Instructions[createIdx].Operand.Int())
}

func TestCompileMemberFunctionInstallsOntoTypeViaSetMember(t *testing.T) {
	chunk := compileProgram(t, `
Point { x = 0, y = 0 }
fn Point.norm2() { return this.x*this.x + this.y*this.y; }
`)
	ops := opcodes(chunk)
	require.Contains(t, ops, code.PUSH_FN)
	require.Contains(t, ops, code.GET_THIS)

	setIdx := -1
	for i, op := range ops {
		if op == code.SET_MEMBER {
			setIdx = i
		}
	}
	require.NotEqual(t, -1, setIdx)
	assert.Equal(t, "norm2", chunk.Instructions[setIdx].Operand.ToString())
	assert.Equal(t, code.PUSH_FN, ops[setIdx-2])
	assert.Equal(t, code.GET_GLOBAL, ops[setIdx-1])
}

func TestCompileAndOrShortCircuit(t *testing.T) {
	chunkAnd := compileProgram(t, `a && b;`)
	opsAnd := opcodes(chunkAnd)
	assert.Contains(t, opsAnd, code.JUMP_IF_FALSE)
	assert.Contains(t, opsAnd, code.PUSH_BOOL)

	chunkOr := compileProgram(t, `a || b;`)
	opsOr := opcodes(chunkOr)
	assert.Contains(t, opsOr, code.JUMP_IF_FALSE)
	assert.Contains(t, opsOr, code.PUSH_BOOL)
}

func TestCompileSwitchNoFallthrough(t *testing.T) {
	chunk := compileProgram(t, `
switch (x) {
case 1, 2:
    y = 1;
default:
    y = 2;
}
`)
	ops := opcodes(chunk)
	assert.Contains(t, ops, code.EQ)
	assert.Contains(t, ops, code.NOT)
	// Every case body must end in an unconditional JUMP to the switch's
	// end rather than falling into the next case/default.
	jumpCount := 0
	for _, op := range ops {
		if op == code.JUMP {
			jumpCount++
		}
	}
	assert.GreaterOrEqual(t, jumpCount, 2)
}

func TestCompileIndexIncDecDesugars(t *testing.T) {
	chunk := compileProgram(t, `arr[0]++;`)
	ops := opcodes(chunk)
	assert.Contains(t, ops, code.GET_ELEMENT)
	assert.Contains(t, ops, code.SET_ELEMENT)
	assert.NotContains(t, ops, code.POST_INC_LOCAL)
	assert.NotContains(t, ops, code.POST_INC_GLOBAL)
}

func TestCompileIdentifierIncDecUsesDedicatedOpcode(t *testing.T) {
	chunk := compileProgram(t, `x++;`)
	ops := opcodes(chunk)
	assert.Contains(t, ops, code.POST_INC_GLOBAL)
}

func TestCompileBreakOutsideLoopIsError(t *testing.T) {
	l := lexer.New("test.apex", `break;`)
	p := parser.New(l)
	program := p.ParseProgram()
	require.NotNil(t, program)

	c := New()
	err := c.Compile(program)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Errors())
}
