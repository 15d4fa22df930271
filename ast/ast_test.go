package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apex-lang/apex/ast"
	"github.com/apex-lang/apex/token"
)

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Tok: token.Token{Type: token.IDENT, Literal: name}, Value: name}
}

func TestProgramStringConcatenatesStatements(t *testing.T) {
	program := &ast.Program{
		Statements: []ast.Statement{
			&ast.ExpressionStatement{Tok: token.Token{Literal: "x"}, Expression: ident("x")},
		},
	}
	assert.Equal(t, "x", program.String())
}

func TestProgramTokenLiteralEmptyWhenNoStatements(t *testing.T) {
	program := &ast.Program{}
	assert.Equal(t, "", program.TokenLiteral())
}

func TestInfixExpressionString(t *testing.T) {
	expr := &ast.InfixExpression{
		Tok:      token.Token{Type: token.PLUS, Literal: "+"},
		Left:     ident("a"),
		Operator: "+",
		Right:    ident("b"),
	}
	assert.Equal(t, "(a + b)", expr.String())
}

func TestPrefixExpressionString(t *testing.T) {
	expr := &ast.PrefixExpression{
		Tok:      token.Token{Type: token.BANG, Literal: "!"},
		Operator: "!",
		Right:    ident("ok"),
	}
	assert.Equal(t, "(!ok)", expr.String())
}

func TestArrayLiteralStringWithAndWithoutKeys(t *testing.T) {
	arr := &ast.ArrayLiteral{
		Elements: []ast.ArrayElement{
			{Value: &ast.IntegerLiteral{Tok: token.Token{Literal: "1"}, Value: 1}},
			{Key: &ast.IntegerLiteral{Tok: token.Token{Literal: "2"}, Value: 2}, Value: ident("x")},
		},
	}
	assert.Equal(t, "[1, 2 => x]", arr.String())
}

func TestNewExpressionString(t *testing.T) {
	n := &ast.NewExpression{
		TypeName:  "Point",
		Arguments: []ast.Expression{ident("a"), ident("b")},
	}
	assert.Equal(t, "new Point(a, b)", n.String())
}

func TestTypeLiteralString(t *testing.T) {
	typ := &ast.TypeLiteral{Name: "Point"}
	assert.Equal(t, "type Point", typ.String())
}

func TestThisExpressionString(t *testing.T) {
	this := &ast.ThisExpression{}
	assert.Equal(t, "this", this.String())
}
