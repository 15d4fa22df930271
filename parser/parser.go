// Package parser implements the syntactic analyzer for the Apex
// programming language.
//
// The parser takes a stream of tokens from the lexer and constructs an
// Abstract Syntax Tree (AST) that represents the structure of the
// program. It implements a recursive descent parser with Pratt parsing
// (precedence climbing) for expressions, following the teacher's parser
// shape (prefix/infix function tables keyed by token type, a precedence
// table, expectPeek-style token consumption) generalized to Apex's
// grammar: statements for if/elif/else, while, for, foreach, switch,
// break/continue, function and type declarations, include, plain and
// compound assignment, member access and calls, and `new` construction.
//
// The main entry point is [New], which creates a new [Parser], and
// [Parser.ParseProgram], which parses a complete Apex program and returns
// its AST. [Parser.ParseProgram] also supports a REPL-incomplete mode: if
// the input ends mid-construct (an unexpected EOF where a closing token
// was expected), ParseProgram returns nil and [Parser.Incomplete] reports
// true, so the caller can keep accumulating input rather than reporting a
// syntax error.
package parser

import (
	"fmt"
	"strconv"

	"github.com/apex-lang/apex/ast"
	"github.com/apex-lang/apex/lexer"
	"github.com/apex-lang/apex/token"
)

const (
	_ int = iota
	Lowest
	Assign      // = += -= *= /= %=
	Or          // ||
	And         // &&
	Equals      // == !=
	LessGreater // < > <= >=
	Sum         // + -
	Product     // * / %
	Prefix      // -x !x +x ++x --x
	Call        // f(), a.b, a.b(), a[i], x++, x--
)

var precedences = map[token.Type]int{
	token.ASSIGN:      Assign,
	token.PLUS_EQ:     Assign,
	token.MINUS_EQ:    Assign,
	token.ASTERISK_EQ: Assign,
	token.SLASH_EQ:    Assign,
	token.PERCENT_EQ:  Assign,
	token.OR:          Or,
	token.AND:         And,
	token.EQ:          Equals,
	token.NOT_EQ:      Equals,
	token.LT:          LessGreater,
	token.LT_EQ:       LessGreater,
	token.GT:          LessGreater,
	token.GT_EQ:       LessGreater,
	token.PLUS:        Sum,
	token.MINUS:       Sum,
	token.SLASH:       Product,
	token.ASTERISK:    Product,
	token.PERCENT:     Product,
	token.LPAREN:      Call,
	token.LBRACKET:    Call,
	token.DOT:         Call,
	token.PLUS_PLUS:   Call,
	token.MINUS_MINUS: Call,
}

var assignOps = map[token.Type]bool{
	token.ASSIGN: true, token.PLUS_EQ: true, token.MINUS_EQ: true,
	token.ASTERISK_EQ: true, token.SLASH_EQ: true, token.PERCENT_EQ: true,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser is a recursive-descent/Pratt parser for Apex source.
type Parser struct {
	l      *lexer.Lexer
	errors []string

	// incomplete is set when the parser hit EOF looking for a closing
	// token, signaling the REPL should keep reading more input instead
	// of reporting a syntax error.
	incomplete bool

	currentToken token.Token
	peekToken    token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a new Parser over l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []string{}}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.THIS, p.parseThis)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLT, p.parseFloatLiteral)
	p.registerPrefix(token.DBL, p.parseDoubleLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS_PLUS, p.parsePrefixIncDec)
	p.registerPrefix(token.MINUS_MINUS, p.parsePrefixIncDec)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	for t := range precedences {
		switch t {
		case token.LPAREN:
			p.registerInfix(t, p.parseCallExpression)
		case token.LBRACKET:
			p.registerInfix(t, p.parseIndexExpression)
		case token.DOT:
			p.registerInfix(t, p.parseDotExpression)
		case token.PLUS_PLUS, token.MINUS_MINUS:
			p.registerInfix(t, p.parsePostfixIncDec)
		case token.ASSIGN, token.PLUS_EQ, token.MINUS_EQ, token.ASTERISK_EQ, token.SLASH_EQ, token.PERCENT_EQ:
			p.registerInfix(t, p.parseAssignExpression)
		default:
			p.registerInfix(t, p.parseInfixExpression)
		}
	}

	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

// Errors returns the syntax errors encountered during parsing.
func (p *Parser) Errors() []string { return p.errors }

// Incomplete reports whether the most recent ParseProgram call failed
// because the input ended mid-construct, rather than due to a genuine
// syntax error — the signal the REPL uses to keep accumulating lines.
func (p *Parser) Incomplete() bool { return p.incomplete }

func (p *Parser) peekError(t token.Type) {
	if p.peekTokenIs(token.EOF) {
		p.incomplete = true
		return
	}
	msg := fmt.Sprintf("%s: expected next token to be %s, got %s instead",
		p.peekToken.Loc, t, p.peekToken.Type)
	p.errors = append(p.errors, msg)
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.currentToken.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses a complete Apex program. Check [Parser.Errors]
// (genuine syntax errors) and [Parser.Incomplete] (the input ended
// mid-construct) afterward.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.currentTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if p.incomplete {
			return nil
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.currentToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.FOREACH:
		return p.parseForeachStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.INCLUDE:
		return p.parseIncludeStatement()
	case token.FUNCTION:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
		return p.parseExpressionStatement()
	case token.IDENT:
		if p.peekTokenIs(token.LBRACE) {
			return p.parseTypeStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) currentTokenIs(t token.Type) bool { return p.currentToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool    { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// ---- simple statements ----

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Tok: p.currentToken}
	stmt.Expression = p.parseExpression(Lowest)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Tok: p.currentToken}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.ReturnValue = p.parseExpression(Lowest)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	stmt := &ast.BreakStatement{Tok: p.currentToken}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	stmt := &ast.ContinueStatement{Tok: p.currentToken}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseIncludeStatement() *ast.IncludeStatement {
	stmt := &ast.IncludeStatement{Tok: p.currentToken}
	if !p.expectPeek(token.STRING) {
		return nil
	}
	stmt.Path = p.currentToken.Literal
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Tok: p.currentToken}
	p.nextToken()
	for !p.currentTokenIs(token.RBRACE) && !p.currentTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if p.incomplete {
			return block
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	if p.currentTokenIs(token.EOF) {
		p.incomplete = true
	}
	return block
}

// ---- control flow ----

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Tok: p.currentToken}

	branch, ok := p.parseCondAndBody()
	if !ok {
		return nil
	}
	stmt.Branches = append(stmt.Branches, branch)

	for p.peekTokenIs(token.ELIF) {
		p.nextToken()
		branch, ok := p.parseCondAndBody()
		if !ok {
			return nil
		}
		stmt.Branches = append(stmt.Branches, branch)
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Else = p.parseBlockStatement()
	}
	return stmt
}

func (p *Parser) parseCondAndBody() (ast.IfBranch, bool) {
	if !p.expectPeek(token.LPAREN) {
		return ast.IfBranch{}, false
	}
	p.nextToken()
	cond := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return ast.IfBranch{}, false
	}
	if !p.expectPeek(token.LBRACE) {
		return ast.IfBranch{}, false
	}
	body := p.parseBlockStatement()
	return ast.IfBranch{Condition: cond, Body: body}, true
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Tok: p.currentToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseForStatement() *ast.ForStatement {
	stmt := &ast.ForStatement{Tok: p.currentToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	if !p.currentTokenIs(token.SEMICOLON) {
		stmt.Init = p.parseExpressionStatement()
	} else {
		p.nextToken()
	}
	if p.currentTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	if !p.currentTokenIs(token.SEMICOLON) {
		stmt.Condition = p.parseExpression(Lowest)
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}

	p.nextToken()
	if !p.currentTokenIs(token.RPAREN) {
		stmt.Post = p.parseExpression(Lowest)
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseForeachStatement() *ast.ForeachStatement {
	stmt := &ast.ForeachStatement{Tok: p.currentToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	first := p.currentToken.Literal

	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.KeyName = first
		stmt.ValueName = p.currentToken.Literal
	} else {
		stmt.KeyName = "_"
		stmt.ValueName = first
	}

	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iterable = p.parseExpression(Lowest)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	stmt := &ast.SwitchStatement{Tok: p.currentToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.currentTokenIs(token.RBRACE) && !p.currentTokenIs(token.EOF) {
		var c ast.SwitchCase
		if p.currentTokenIs(token.CASE) {
			p.nextToken()
			c.Values = append(c.Values, p.parseExpression(Lowest))
			for p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				c.Values = append(c.Values, p.parseExpression(Lowest))
			}
		} else if p.currentTokenIs(token.DEFAULT) {
			c.IsDefault = true
		} else {
			p.errors = append(p.errors, fmt.Sprintf("%s: expected case or default, got %s",
				p.currentToken.Loc, p.currentToken.Type))
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		for !p.currentTokenIs(token.CASE) && !p.currentTokenIs(token.DEFAULT) &&
			!p.currentTokenIs(token.RBRACE) && !p.currentTokenIs(token.EOF) {
			s := p.parseStatement()
			if s != nil {
				c.Body = append(c.Body, s)
			}
			p.nextToken()
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	if p.currentTokenIs(token.EOF) {
		p.incomplete = true
		return nil
	}
	return stmt
}

// ---- declarations ----

// parseFunctionStatement parses a top-level function declaration
// `fn name(...) { ... }`, or a member-function/constructor declaration
// `fn Type.name(...) { ... }` / `fn Type.new(...) { ... }`.
func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	tok := p.currentToken

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.currentToken.Literal
	typeName := ""

	if p.peekTokenIs(token.DOT) {
		p.nextToken() // consume the '.'
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		typeName = name
		name = p.currentToken.Literal
	}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, variadic, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	lit := &ast.FunctionLiteral{Tok: tok, Name: name, Parameters: params, Variadic: variadic}
	lit.Body = p.parseBlockStatement()

	return &ast.FunctionStatement{Tok: tok, TypeName: typeName, Function: lit}
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := p.parseFunctionLiteralNamed()
	if lit == nil {
		return nil
	}
	return lit
}

// parseFunctionLiteralNamed parses `fn [name](params) { body }`; the name
// is present for declarations and absent for anonymous function values.
func (p *Parser) parseFunctionLiteralNamed() *ast.FunctionLiteral {
	lit := &ast.FunctionLiteral{Tok: p.currentToken}

	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		lit.Name = p.currentToken.Literal
	}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params, variadic, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	lit.Parameters = params
	lit.Variadic = variadic

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockStatement()
	return lit
}

// parseFunctionParameters parses a parameter list, allowing at most one
// trailing variadic `*name` parameter — a non-variadic parameter after a
// `*name` one is a syntax error, resolving spec.md's variadic-parameter
// Open Question.
func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, *ast.Identifier, bool) {
	var params []*ast.Identifier
	var variadic *ast.Identifier

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, variadic, true
	}
	p.nextToken()

	parseOne := func() bool {
		if p.currentTokenIs(token.ASTERISK) {
			if variadic != nil {
				p.errors = append(p.errors, fmt.Sprintf(
					"%s: only one variadic parameter is allowed", p.currentToken.Loc))
				return false
			}
			p.nextToken()
			if !p.currentTokenIs(token.IDENT) {
				p.errors = append(p.errors, fmt.Sprintf(
					"%s: expected parameter name after '*'", p.currentToken.Loc))
				return false
			}
			variadic = &ast.Identifier{Tok: p.currentToken, Value: p.currentToken.Literal}
			return true
		}
		if variadic != nil {
			p.errors = append(p.errors, fmt.Sprintf(
				"%s: variadic parameter must be last", p.currentToken.Loc))
			return false
		}
		params = append(params, &ast.Identifier{Tok: p.currentToken, Value: p.currentToken.Literal})
		return true
	}

	if !parseOne() {
		return nil, nil, false
	}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		if !parseOne() {
			return nil, nil, false
		}
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, nil, false
	}
	return params, variadic, true
}

// parseTypeStatement parses a type declaration `Name { field = expr, ... }`.
// Member functions are installed separately by `fn Name.method(...) { ... }`
// declarations (see parseFunctionStatement), not declared inline here.
func (p *Parser) parseTypeStatement() *ast.TypeStatement {
	tok := p.currentToken
	lit := &ast.TypeLiteral{Tok: tok, Name: p.currentToken.Literal}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.currentTokenIs(token.RBRACE) {
		if p.currentTokenIs(token.EOF) {
			p.incomplete = true
			return nil
		}
		if !p.currentTokenIs(token.IDENT) {
			p.errors = append(p.errors, fmt.Sprintf(
				"%s: expected field name in type body, got %s", p.currentToken.Loc, p.currentToken.Type))
			return nil
		}
		name := p.currentToken.Literal
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		val := p.parseExpression(Lowest)
		lit.Fields = append(lit.Fields, ast.ObjectField{Name: name, Value: val})

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(token.RBRACE) {
			p.errors = append(p.errors, fmt.Sprintf(
				"%s: expected ',' or '}' in type body", p.peekToken.Loc))
			return nil
		}
		p.nextToken()
	}
	return &ast.TypeStatement{Tok: tok, Type: lit}
}

// ---- expressions ----

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.currentToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.currentToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) noPrefixParseFnError(t token.Type) {
	if t == token.EOF {
		p.incomplete = true
		return
	}
	p.errors = append(p.errors, fmt.Sprintf("%s: no prefix parse function for %s found",
		p.currentToken.Loc, t))
}

// parseIdentifier parses a bare identifier, except when it's immediately
// followed by `:ident(`, which is a native-library call `lib:fn(args)`.
func (p *Parser) parseIdentifier() ast.Expression {
	if p.peekTokenIs(token.COLON) {
		tok := p.currentToken
		lib := p.currentToken.Literal
		p.nextToken() // consume ':'
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		fn := p.currentToken.Literal
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		call := &ast.LibCallExpression{Tok: tok, Lib: lib, Fn: fn}
		call.Arguments = p.parseExpressionList(token.RPAREN)
		return call
	}
	return &ast.Identifier{Tok: p.currentToken, Value: p.currentToken.Literal}
}

func (p *Parser) parseThis() ast.Expression {
	return &ast.ThisExpression{Tok: p.currentToken}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Tok: p.currentToken}
	v, err := strconv.ParseInt(p.currentToken.Literal, 10, 64)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: could not parse %q as integer",
			p.currentToken.Loc, p.currentToken.Literal))
		return nil
	}
	lit.Value = v
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Tok: p.currentToken}
	v, err := strconv.ParseFloat(p.currentToken.Literal, 32)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: could not parse %q as flt",
			p.currentToken.Loc, p.currentToken.Literal))
		return nil
	}
	lit.Value = float32(v)
	return lit
}

func (p *Parser) parseDoubleLiteral() ast.Expression {
	lit := &ast.DoubleLiteral{Tok: p.currentToken}
	v, err := strconv.ParseFloat(p.currentToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: could not parse %q as dbl",
			p.currentToken.Loc, p.currentToken.Literal))
		return nil
	}
	lit.Value = v
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Tok: p.currentToken, Value: p.currentToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Tok: p.currentToken, Value: p.currentTokenIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Tok: p.currentToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Tok: p.currentToken, Operator: p.currentToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(Prefix)
	return expr
}

func (p *Parser) parsePrefixIncDec() ast.Expression {
	expr := &ast.IncDecExpression{Tok: p.currentToken, Operator: p.currentToken.Literal}
	p.nextToken()
	expr.Target = p.parseExpression(Prefix)
	return expr
}

func (p *Parser) parsePostfixIncDec(left ast.Expression) ast.Expression {
	return &ast.IncDecExpression{
		Tok: p.currentToken, Operator: p.currentToken.Literal, Target: left, Postfix: true,
	}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{Tok: p.currentToken, Operator: p.currentToken.Literal, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	expr := &ast.AssignExpression{Tok: p.currentToken, Operator: p.currentToken.Literal, Target: left}
	if !assignOps[p.currentToken.Type] {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid assignment target", p.currentToken.Loc))
		return nil
	}
	// right-associative: same precedence on the right-hand recursive call
	p.nextToken()
	expr.Value = p.parseExpression(Assign - 1)
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	lit := &ast.ArrayLiteral{Tok: p.currentToken}

	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return lit
	}

	p.nextToken()
	for {
		el := p.parseArrayElement()
		lit.Elements = append(lit.Elements, el)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return lit
}

// parseArrayElement consumes exactly one child per call — a bare
// expression, or a `key => value` pair — resolving spec.md's
// array-literal-parsing Open Question.
func (p *Parser) parseArrayElement() ast.ArrayElement {
	first := p.parseExpression(Lowest)
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		val := p.parseExpression(Lowest)
		return ast.ArrayElement{Key: first, Value: val}
	}
	return ast.ArrayElement{Value: first}
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(Lowest))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(Lowest))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Tok: p.currentToken, Left: left}
	p.nextToken()
	expr.Index = p.parseExpression(Lowest)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expr
}

// parseDotExpression handles `obj.field` member access, `obj.method(args)`
// member calls, and `obj.new(args)` construction — the last parsed as a
// New node rather than a generic member call, matching `new`'s special
// status as the member name reserved for constructors.
func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	member := p.currentToken.Literal

	if member == "new" && p.peekTokenIs(token.LPAREN) {
		ident, ok := left.(*ast.Identifier)
		if !ok {
			p.errors = append(p.errors, fmt.Sprintf("%s: 'new' can only be used on a named type", tok.Loc))
			return nil
		}
		p.nextToken()
		args := p.parseExpressionList(token.RPAREN)
		return &ast.NewExpression{Tok: tok, TypeName: ident.Value, Arguments: args}
	}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		call := &ast.CallExpression{Tok: tok, Receiver: left, Function: &ast.Identifier{Tok: p.currentToken, Value: member}}
		call.Arguments = p.parseExpressionList(token.RPAREN)
		return call
	}
	return &ast.MemberExpression{Tok: tok, Object: left, Member: member}
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	expr := &ast.CallExpression{Tok: p.currentToken, Function: function}
	expr.Arguments = p.parseExpressionList(token.RPAREN)
	return expr
}

