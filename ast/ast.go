// Package ast defines the abstract syntax tree produced by the Apex
// parser.
//
// The node interfaces and the TokenLiteral/String contract follow the
// teacher's ast package shape; the node set itself is Apex's, per spec.md
// §4.1: statements (if/elif/else, while, for, foreach, switch, break,
// continue, return, function/type declarations, include, expression
// statements) and expressions (literals for every Value scalar kind,
// arithmetic/comparison/logical/unary operators, plain and compound
// assignment, member access, index access, calls including member- and
// library-qualified calls, array/object literals, and `this`).
package ast

import (
	"strings"

	"github.com/apex-lang/apex/token"
)

// Node is any AST node.
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is a node that appears as a top-level or block element.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that yields a value.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every parsed Apex source file.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// ---- Identifiers and literals ----

type Identifier struct {
	Tok   token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Tok.Literal }
func (i *Identifier) String() string       { return i.Value }

type ThisExpression struct {
	Tok token.Token
}

func (t *ThisExpression) expressionNode()      {}
func (t *ThisExpression) TokenLiteral() string { return t.Tok.Literal }
func (t *ThisExpression) String() string       { return "this" }

type IntegerLiteral struct {
	Tok   token.Token
	Value int64
}

func (i *IntegerLiteral) expressionNode()      {}
func (i *IntegerLiteral) TokenLiteral() string { return i.Tok.Literal }
func (i *IntegerLiteral) String() string       { return i.Tok.Literal }

type FloatLiteral struct {
	Tok   token.Token
	Value float32
}

func (f *FloatLiteral) expressionNode()      {}
func (f *FloatLiteral) TokenLiteral() string { return f.Tok.Literal }
func (f *FloatLiteral) String() string       { return f.Tok.Literal }

type DoubleLiteral struct {
	Tok   token.Token
	Value float64
}

func (d *DoubleLiteral) expressionNode()      {}
func (d *DoubleLiteral) TokenLiteral() string { return d.Tok.Literal }
func (d *DoubleLiteral) String() string       { return d.Tok.Literal }

type StringLiteral struct {
	Tok   token.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Tok.Literal }
func (s *StringLiteral) String() string       { return s.Tok.Literal }

type BooleanLiteral struct {
	Tok   token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Tok.Literal }
func (b *BooleanLiteral) String() string       { return b.Tok.Literal }

type NullLiteral struct {
	Tok token.Token
}

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return n.Tok.Literal }
func (n *NullLiteral) String() string       { return "null" }

// ArrayElement is one element of an ArrayLiteral: either a bare value
// (Key == nil, implicit auto-incrementing integer key) or an explicit
// `key => value` pair.
type ArrayElement struct {
	Key   Expression // nil for bare elements
	Value Expression
}

type ArrayLiteral struct {
	Tok      token.Token
	Elements []ArrayElement
}

func (a *ArrayLiteral) expressionNode()      {}
func (a *ArrayLiteral) TokenLiteral() string { return a.Tok.Literal }
func (a *ArrayLiteral) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range a.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		if e.Key != nil {
			sb.WriteString(e.Key.String())
			sb.WriteString(" => ")
		}
		sb.WriteString(e.Value.String())
	}
	sb.WriteString("]")
	return sb.String()
}

// ObjectField is one `name = value` field of a TypeLiteral. Methods are
// not declared inline; they're installed separately by a member-function
// FunctionStatement (`fn T.m(...) { ... }`).
type ObjectField struct {
	Name  string
	Value Expression
}

// TypeLiteral declares a new type (class): a named bundle of fields and
// member functions, instantiated with NEW.
type TypeLiteral struct {
	Tok    token.Token
	Name   string
	Fields []ObjectField
}

func (t *TypeLiteral) expressionNode()      {}
func (t *TypeLiteral) TokenLiteral() string { return t.Tok.Literal }
func (t *TypeLiteral) String() string       { return "type " + t.Name }

// NewExpression constructs an instance of a named type: `Name.new(args)`.
type NewExpression struct {
	Tok       token.Token
	TypeName  string
	Arguments []Expression
}

func (n *NewExpression) expressionNode()      {}
func (n *NewExpression) TokenLiteral() string { return n.Tok.Literal }
func (n *NewExpression) String() string {
	var args []string
	for _, a := range n.Arguments {
		args = append(args, a.String())
	}
	return "new " + n.TypeName + "(" + strings.Join(args, ", ") + ")"
}

// ---- Operators ----

type PrefixExpression struct {
	Tok      token.Token
	Operator string
	Right    Expression
}

func (p *PrefixExpression) expressionNode()      {}
func (p *PrefixExpression) TokenLiteral() string { return p.Tok.Literal }
func (p *PrefixExpression) String() string {
	return "(" + p.Operator + p.Right.String() + ")"
}

type InfixExpression struct {
	Tok      token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (i *InfixExpression) expressionNode()      {}
func (i *InfixExpression) TokenLiteral() string { return i.Tok.Literal }
func (i *InfixExpression) String() string {
	return "(" + i.Left.String() + " " + i.Operator + " " + i.Right.String() + ")"
}

// IncDecExpression models `++x`/`x++`/`--x`/`x--` on an lvalue Target
// (Identifier, IndexExpression, or MemberExpression).
type IncDecExpression struct {
	Tok      token.Token
	Operator string // "++" or "--"
	Target   Expression
	Postfix  bool
}

func (e *IncDecExpression) expressionNode()      {}
func (e *IncDecExpression) TokenLiteral() string { return e.Tok.Literal }
func (e *IncDecExpression) String() string {
	if e.Postfix {
		return e.Target.String() + e.Operator
	}
	return e.Operator + e.Target.String()
}

// AssignExpression models `target = value` or a compound form
// (`+=`,`-=`,`*=`,`/=`,`%=`).
type AssignExpression struct {
	Tok      token.Token
	Target   Expression
	Operator string // "=", "+=", "-=", "*=", "/=", "%="
	Value    Expression
}

func (a *AssignExpression) expressionNode()      {}
func (a *AssignExpression) TokenLiteral() string { return a.Tok.Literal }
func (a *AssignExpression) String() string {
	return a.Target.String() + " " + a.Operator + " " + a.Value.String()
}

type IndexExpression struct {
	Tok   token.Token
	Left  Expression
	Index Expression
}

func (i *IndexExpression) expressionNode()      {}
func (i *IndexExpression) TokenLiteral() string { return i.Tok.Literal }
func (i *IndexExpression) String() string {
	return "(" + i.Left.String() + "[" + i.Index.String() + "])"
}

// MemberExpression models `obj.field` access.
type MemberExpression struct {
	Tok    token.Token
	Object Expression
	Member string
}

func (m *MemberExpression) expressionNode()      {}
func (m *MemberExpression) TokenLiteral() string { return m.Tok.Literal }
func (m *MemberExpression) String() string {
	return m.Object.String() + "." + m.Member
}

// CallExpression models a plain call `fn(args)` or a member call
// `obj.method(args)` when Receiver is non-nil.
type CallExpression struct {
	Tok       token.Token
	Receiver  Expression // non-nil for obj.method(...)
	Function  Expression // the callee; an Identifier, or the member name for a receiver call
	Arguments []Expression
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return c.Tok.Literal }
func (c *CallExpression) String() string {
	var args []string
	for _, a := range c.Arguments {
		args = append(args, a.String())
	}
	return c.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

// LibCallExpression models `lib:fn(args)` native-library calls.
type LibCallExpression struct {
	Tok       token.Token
	Lib       string
	Fn        string
	Arguments []Expression
}

func (l *LibCallExpression) expressionNode()      {}
func (l *LibCallExpression) TokenLiteral() string { return l.Tok.Literal }
func (l *LibCallExpression) String() string {
	var args []string
	for _, a := range l.Arguments {
		args = append(args, a.String())
	}
	return l.Lib + ":" + l.Fn + "(" + strings.Join(args, ", ") + ")"
}

// FunctionLiteral declares a function: parameters, an optional variadic
// trailing parameter, and a body. Name is set for `fn name(...) {}`
// declarations and member functions; empty for anonymous function values.
type FunctionLiteral struct {
	Tok        token.Token
	Name       string
	Parameters []*Identifier
	Variadic   *Identifier // non-nil if the last parameter is `*name`
	Body       *BlockStatement
}

func (f *FunctionLiteral) expressionNode()      {}
func (f *FunctionLiteral) TokenLiteral() string { return f.Tok.Literal }
func (f *FunctionLiteral) String() string {
	var params []string
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}
	if f.Variadic != nil {
		params = append(params, "*"+f.Variadic.String())
	}
	return "fn " + f.Name + "(" + strings.Join(params, ", ") + ") " + f.Body.String()
}

// ---- Statements ----

type ExpressionStatement struct {
	Tok        token.Token
	Expression Expression
}

func (e *ExpressionStatement) statementNode()       {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Tok.Literal }
func (e *ExpressionStatement) String() string {
	if e.Expression != nil {
		return e.Expression.String()
	}
	return ""
}

type BlockStatement struct {
	Tok        token.Token
	Statements []Statement
}

func (b *BlockStatement) statementNode()       {}
func (b *BlockStatement) TokenLiteral() string { return b.Tok.Literal }
func (b *BlockStatement) String() string {
	var sb strings.Builder
	for _, s := range b.Statements {
		sb.WriteString(s.String())
	}
	return sb.String()
}

type ReturnStatement struct {
	Tok         token.Token
	ReturnValue Expression // nil for a bare `return;`
}

func (r *ReturnStatement) statementNode()       {}
func (r *ReturnStatement) TokenLiteral() string { return r.Tok.Literal }
func (r *ReturnStatement) String() string {
	if r.ReturnValue != nil {
		return "return " + r.ReturnValue.String() + ";"
	}
	return "return;"
}

type BreakStatement struct{ Tok token.Token }

func (b *BreakStatement) statementNode()       {}
func (b *BreakStatement) TokenLiteral() string { return b.Tok.Literal }
func (b *BreakStatement) String() string       { return "break;" }

type ContinueStatement struct{ Tok token.Token }

func (c *ContinueStatement) statementNode()       {}
func (c *ContinueStatement) TokenLiteral() string { return c.Tok.Literal }
func (c *ContinueStatement) String() string       { return "continue;" }

// IfBranch is one `if`/`elif` condition-body pair.
type IfBranch struct {
	Condition Expression
	Body      *BlockStatement
}

type IfStatement struct {
	Tok      token.Token
	Branches []IfBranch // branches[0] is the `if`, rest are `elif`
	Else     *BlockStatement
}

func (i *IfStatement) statementNode()       {}
func (i *IfStatement) TokenLiteral() string { return i.Tok.Literal }
func (i *IfStatement) String() string {
	var sb strings.Builder
	for idx, b := range i.Branches {
		if idx == 0 {
			sb.WriteString("if (")
		} else {
			sb.WriteString("elif (")
		}
		sb.WriteString(b.Condition.String())
		sb.WriteString(") ")
		sb.WriteString(b.Body.String())
	}
	if i.Else != nil {
		sb.WriteString("else ")
		sb.WriteString(i.Else.String())
	}
	return sb.String()
}

type WhileStatement struct {
	Tok       token.Token
	Condition Expression
	Body      *BlockStatement
}

func (w *WhileStatement) statementNode()       {}
func (w *WhileStatement) TokenLiteral() string { return w.Tok.Literal }
func (w *WhileStatement) String() string {
	return "while (" + w.Condition.String() + ") " + w.Body.String()
}

// ForStatement is a classic C-style `for (init; cond; post) body`. Any of
// Init/Condition/Post may be nil.
type ForStatement struct {
	Tok       token.Token
	Init      Statement
	Condition Expression
	Post      Expression
	Body      *BlockStatement
}

func (f *ForStatement) statementNode()       {}
func (f *ForStatement) TokenLiteral() string { return f.Tok.Literal }
func (f *ForStatement) String() string {
	return "for (...) " + f.Body.String()
}

// ForeachStatement iterates an array's key/value pairs in insertion
// order: `foreach (key, value in iterable) body`.
type ForeachStatement struct {
	Tok       token.Token
	KeyName   string
	ValueName string
	Iterable  Expression
	Body      *BlockStatement
}

func (f *ForeachStatement) statementNode()       {}
func (f *ForeachStatement) TokenLiteral() string { return f.Tok.Literal }
func (f *ForeachStatement) String() string {
	return "foreach (" + f.KeyName + ", " + f.ValueName + " in " + f.Iterable.String() + ") " + f.Body.String()
}

// SwitchCase is one `case value:` arm, or the `default:` arm when Values
// is empty and IsDefault is true.
type SwitchCase struct {
	Values    []Expression
	IsDefault bool
	Body      []Statement
}

type SwitchStatement struct {
	Tok   token.Token
	Value Expression
	Cases []SwitchCase
}

func (s *SwitchStatement) statementNode()       {}
func (s *SwitchStatement) TokenLiteral() string { return s.Tok.Literal }
func (s *SwitchStatement) String() string {
	return "switch (" + s.Value.String() + ") { ... }"
}

// IncludeStatement is an `include "path";` statement naming another Apex
// source file. The compiler emits no code for it; the file is not loaded.
type IncludeStatement struct {
	Tok  token.Token
	Path string
}

func (i *IncludeStatement) statementNode()       {}
func (i *IncludeStatement) TokenLiteral() string { return i.Tok.Literal }
func (i *IncludeStatement) String() string       { return "include \"" + i.Path + "\";" }

// FunctionStatement is a top-level `fn name(...) { ... }` declaration, or
// a member-function declaration `fn Type.name(...) { ... }` (TypeName set)
// that installs Function onto the named Type's entries, including the
// constructor form `fn Type.new(...) { ... }`.
type FunctionStatement struct {
	Tok      token.Token
	TypeName string // non-empty for `fn Type.name(...)`
	Function *FunctionLiteral
}

func (f *FunctionStatement) statementNode()       {}
func (f *FunctionStatement) TokenLiteral() string { return f.Tok.Literal }
func (f *FunctionStatement) String() string {
	if f.TypeName == "" {
		return f.Function.String()
	}
	return "fn " + f.TypeName + "." + f.Function.String()[len("fn "):]
}

// TypeStatement is a top-level `Name { ... }` declaration.
type TypeStatement struct {
	Tok  token.Token
	Type *TypeLiteral
}

func (t *TypeStatement) statementNode()       {}
func (t *TypeStatement) TokenLiteral() string { return t.Tok.Literal }
func (t *TypeStatement) String() string       { return t.Type.String() }
