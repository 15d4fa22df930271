package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apex-lang/apex/compiler"
	"github.com/apex-lang/apex/lexer"
	"github.com/apex-lang/apex/parser"
	"github.com/apex-lang/apex/value"
	"github.com/apex-lang/apex/vm"
)

type stubLibs struct {
	calls map[string]func(args []value.Value) (value.Value, error)
}

func (s *stubLibs) Call(lib, fn string, args []value.Value) (value.Value, error) {
	if f, ok := s.calls[lib+":"+fn]; ok {
		return f(args)
	}
	return value.Value{}, errUndefinedLib(lib, fn)
}

func (s *stubLibs) Member(lib, name string) (value.Value, error) {
	return value.NewNull(), nil
}

func errUndefinedLib(lib, fn string) error {
	return &libErr{lib: lib, fn: fn}
}

type libErr struct {
	lib, fn string
}

func (e *libErr) Error() string { return "no such native function " + e.lib + ":" + e.fn }

func run(t *testing.T, input string) (value.Value, *vm.VM) {
	t.Helper()
	l := lexer.New("test.apex", input)
	p := parser.New(l)
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	c := compiler.New()
	require.NoError(t, c.Compile(program))
	require.Empty(t, c.Errors())

	machine := vm.New(c.Chunk, &stubLibs{calls: map[string]func(args []value.Value) (value.Value, error){
		"math:sqrt": func(args []value.Value) (value.Value, error) {
			return value.NewDbl(2), nil
		},
	}})
	result, err := machine.Run()
	require.NoError(t, err)
	return result, machine
}

func TestArithmeticPromotion(t *testing.T) {
	result, _ := run(t, `1 + 2 * 3;`)
	assert.Equal(t, int64(7), result.Int())

	result, _ = run(t, `1 + 2.5;`)
	assert.Equal(t, value.Dbl, result.Kind())
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	l := lexer.New("test.apex", `1 / 0;`)
	p := parser.New(l)
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	c := compiler.New()
	require.NoError(t, c.Compile(program))

	machine := vm.New(c.Chunk, nil)
	_, err := machine.Run()
	assert.Error(t, err)
}

func TestGlobalVariableRoundTrip(t *testing.T) {
	result, _ := run(t, `x = 5; x = x + 1; x;`)
	assert.Equal(t, int64(6), result.Int())
}

func TestIfElseBranching(t *testing.T) {
	result, _ := run(t, `x = 10; if (x > 5) { y = 1; } else { y = 2; } y;`)
	assert.Equal(t, int64(1), result.Int())

	result, _ = run(t, `x = 1; if (x > 5) { y = 1; } else { y = 2; } y;`)
	assert.Equal(t, int64(2), result.Int())
}

func TestWhileLoopAccumulates(t *testing.T) {
	result, _ := run(t, `i = 0; sum = 0; while (i < 5) { sum = sum + i; i = i + 1; } sum;`)
	assert.Equal(t, int64(10), result.Int())
}

func TestForLoopAccumulates(t *testing.T) {
	result, _ := run(t, `sum = 0; for (i = 0; i < 5; i++) { sum = sum + i; } sum;`)
	assert.Equal(t, int64(10), result.Int())
}

func TestForeachOverArray(t *testing.T) {
	result, _ := run(t, `arr = [10, 20, 30]; sum = 0; foreach (v in arr) { sum = sum + v; } sum;`)
	assert.Equal(t, int64(60), result.Int())
}

func TestForeachBreak(t *testing.T) {
	result, _ := run(t, `arr = [1, 2, 3, 4]; sum = 0; foreach (v in arr) { if (v == 3) { break; } sum = sum + v; } sum;`)
	assert.Equal(t, int64(3), result.Int())
}

func TestPlainFunctionCall(t *testing.T) {
	result, _ := run(t, `fn add(a, b) { return a + b; } add(2, 3);`)
	assert.Equal(t, int64(5), result.Int())
}

func TestVariadicFunctionCall(t *testing.T) {
	result, _ := run(t, `
fn sum(first, *rest) {
    total = first;
    foreach (v in rest) { total = total + v; }
    return total;
}
sum(1, 2, 3, 4);
`)
	assert.Equal(t, int64(10), result.Int())
}

func TestTypeConstructorAndMemberCall(t *testing.T) {
	result, _ := run(t, `
Point { x = 0, y = 0 }
fn Point.new(a, b) {
    this.x = a;
    this.y = b;
}
fn Point.sum() {
    return this.x + this.y;
}
p = Point.new(3, 4);
p.sum();
`)
	assert.Equal(t, int64(7), result.Int())
}

func TestTypeConstructionDoesNotAliasTypeFields(t *testing.T) {
	result, _ := run(t, `
Point { x = 0, y = 0 }
fn Point.new(a, b) {
    this.x = a;
    this.y = b;
}
p = Point.new(3, 4);
p.x = 99;
q = Point.new(1, 1);
q.x;
`)
	assert.Equal(t, int64(1), result.Int(), "mutating one instance must not alter a type's own fields or other instances")
}

func TestReturnInsideForeachDoesNotLeakIteratorStack(t *testing.T) {
	result, _ := run(t, `
fn find(a, target) {
    foreach (v in a) {
        if (v == target) { return v; }
    }
    return -1;
}
x = find([1, 2, 3, 4], 3);
y = x + 1;
y;
`)
	assert.Equal(t, int64(4), result.Int())
}

func TestReturnInsideNestedForeachLeavesStackClean(t *testing.T) {
	result, _ := run(t, `
fn first(a) {
    foreach (row in a) {
        foreach (v in row) {
            return v;
        }
    }
    return -1;
}
x = first([[1, 2], [3, 4]]);
y = x + 1;
y;
`)
	assert.Equal(t, int64(2), result.Int())
}

func TestThisOutsideMethodIsError(t *testing.T) {
	l := lexer.New("test.apex", `this;`)
	p := parser.New(l)
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	c := compiler.New()
	require.NoError(t, c.Compile(program))

	machine := vm.New(c.Chunk, nil)
	_, err := machine.Run()
	assert.Error(t, err)
}

func TestArrayIndexGetSet(t *testing.T) {
	result, _ := run(t, `arr = [1, 2, 3]; arr[1] = 99; arr[1];`)
	assert.Equal(t, int64(99), result.Int())
}

func TestCallLibDispatchesToResolver(t *testing.T) {
	result, _ := run(t, `math:sqrt(4);`)
	assert.Equal(t, value.Dbl, result.Kind())
	assert.Equal(t, float64(2), result.Dbl())
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	l := lexer.New("test.apex", `y;`)
	p := parser.New(l)
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	c := compiler.New()
	require.NoError(t, c.Compile(program))

	machine := vm.New(c.Chunk, nil)
	_, err := machine.Run()
	assert.Error(t, err)
}

func TestRunFromSharesStateAcrossCalls(t *testing.T) {
	l := lexer.New("test.apex", `x = 1;`)
	p := parser.New(l)
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	c := compiler.New()
	require.NoError(t, c.Compile(program))

	machine := vm.New(c.Chunk, nil)
	_, err := machine.Run()
	require.NoError(t, err)

	l2 := lexer.New("test.apex", `x = x + 1; x;`)
	p2 := parser.New(l2)
	program2 := p2.ParseProgram()
	require.Empty(t, p2.Errors())

	prevLen := c.Chunk.Len()
	c2 := compiler.New()
	c2.Chunk = c.Chunk
	require.NoError(t, c2.Compile(program2))

	result, err := machine.RunFrom(prevLen)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Int())
}
