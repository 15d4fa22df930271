package code_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apex-lang/apex/code"
	"github.com/apex-lang/apex/token"
	"github.com/apex-lang/apex/value"
)

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "ADD", code.ADD.String())
	assert.Equal(t, "HALT", code.HALT.String())
	assert.Equal(t, "OP(255)", code.Opcode(255).String())
}

func TestChunkEmitAndLen(t *testing.T) {
	c := &code.Chunk{}
	assert.Equal(t, 0, c.Len())

	pos := c.Emit(code.PUSH_INT, value.NewInt(1), token.SrcLoc{Line: 1})
	assert.Equal(t, 0, pos)
	assert.Equal(t, 1, c.Len())

	c.Emit(code.HALT, value.NewNull(), token.SrcLoc{Line: 2})
	assert.Equal(t, 2, c.Len())
}

func TestChunkPatchOperand(t *testing.T) {
	c := &code.Chunk{}
	pos := c.Emit(code.JUMP, value.NewInt(-1), token.SrcLoc{})
	c.PatchOperand(pos, value.NewInt(42))
	assert.Equal(t, int64(42), c.Instructions[pos].Operand.Int())
}

func TestChunkStringDisassembles(t *testing.T) {
	c := &code.Chunk{}
	c.Emit(code.PUSH_INT, value.NewInt(7), token.SrcLoc{})
	c.Emit(code.HALT, value.NewNull(), token.SrcLoc{})

	out := c.String()
	assert.Contains(t, out, "PUSH_INT")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "HALT")
}
