package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apex-lang/apex/code"
	"github.com/apex-lang/apex/nativelib"
	"github.com/apex-lang/apex/symtable"
)

func newState() *state {
	return &state{
		chunk:   &code.Chunk{},
		globals: symtable.NewGlobal(),
		scopes:  symtable.NewScopeStack(),
		libs:    nativelib.New(),
	}
}

func eval(t *testing.T, st *state, input string) evalResultMsg {
	t.Helper()
	msg := evalCmd(input, st, false)()
	result, ok := msg.(evalResultMsg)
	require.True(t, ok)
	return result
}

func TestIsBalanced(t *testing.T) {
	assert.True(t, isBalanced("fn f(a, b) { return a + b; }"))
	assert.False(t, isBalanced("fn f(a, b) { return a + b;"))
	assert.False(t, isBalanced("[1, 2"))
	assert.True(t, isBalanced(""))
}

func TestParseIsIncompleteDetectsOpenBlock(t *testing.T) {
	assert.True(t, parseIsIncomplete("if (true) {"))
	assert.False(t, parseIsIncomplete("if (true) { 1; }"))
	assert.False(t, parseIsIncomplete("x = 5;"))
}

func TestEvalCmdPersistsGlobalsAcrossEntries(t *testing.T) {
	st := newState()

	first := eval(t, st, "x = 21;")
	assert.False(t, first.isError)

	second := eval(t, st, "x * 2;")
	assert.False(t, second.isError)
	assert.Equal(t, "42", second.output)
}

func TestEvalCmdReportsParseError(t *testing.T) {
	st := newState()
	result := eval(t, st, "x = ;")
	assert.True(t, result.isError)
	assert.Equal(t, ParseError, result.errorType)
}

func TestEvalCmdReportsRuntimeError(t *testing.T) {
	st := newState()
	result := eval(t, st, "1 / 0;")
	assert.True(t, result.isError)
	assert.Equal(t, RuntimeError, result.errorType)
}

func TestEvalCmdFunctionSurvivesAcrossEntries(t *testing.T) {
	st := newState()

	defineFn := eval(t, st, "fn double(n) { return n * 2; }")
	assert.False(t, defineFn.isError)

	call := eval(t, st, "double(21);")
	assert.False(t, call.isError)
	assert.Equal(t, "42", call.output)
}

func TestHighlightCodeNoColorRoundTripsTokens(t *testing.T) {
	m := model{options: Options{NoColor: true}}
	out := m.highlightCode("x = 1 + 2;")
	assert.Contains(t, out, "x")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "2")
}
