// Package parser builds an *ast.Function list from a token stream,
// resolving every identifier and checking every expression's type as it
// goes. Parsing stops at the first error: there is no error recovery or
// synchronization, matching the compiler's "report and abort" policy.
package parser

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/musinux/intech/internal/ast"
	"github.com/musinux/intech/internal/diag"
	"github.com/musinux/intech/internal/lexer"
	"github.com/musinux/intech/internal/symtab"
	"github.com/musinux/intech/internal/token"
)

// Parser turns a token stream into a checked AST.
type Parser struct {
	lex *lexer.Lexer

	cur  token.Token
	peek token.Token

	global *symtab.Table

	log *zap.SugaredLogger
}

// New creates a Parser reading tokens from lex.
func New(lex *lexer.Lexer) *Parser {
	p := &Parser{lex: lex, global: symtab.New()}
	p.cur = p.fetch(token.Token{})
	p.peek = p.fetch(p.cur)
	return p
}

// SetLogger attaches a logger used for per-function trace lines. A nil
// logger (the default) disables tracing.
func (p *Parser) SetLogger(log *zap.SugaredLogger) {
	p.log = log
}

func (p *Parser) fetch(prev token.Token) token.Token {
	return p.lex.NextToken(token.IsValueContext(prev.Type))
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.fetch(p.cur)
}

func (p *Parser) errorf(kind diag.Kind, format string, args ...interface{}) error {
	return diag.New(kind, p.cur.Pos, p.lex.Snapshot(), format, args...)
}

func (p *Parser) expectSemicolon() error {
	if p.cur.Type != token.SEMICOLON {
		return p.errorf(diag.Syntax, "expected ';', got %q", p.cur.Literal)
	}
	p.advance()
	return nil
}

// Parse consumes the whole token stream and returns every function it
// defines, along with the global function table they were registered
// into.
func (p *Parser) Parse() ([]*ast.Function, *symtab.Table, error) {
	var fns []*ast.Function
	for p.cur.Type != token.EOF {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, nil, err
		}
		fns = append(fns, fn)
	}
	if len(fns) == 0 {
		return nil, nil, p.errorf(diag.Syntax, "source defines no functions")
	}
	return fns, p.global, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	if p.cur.Type != token.FUNCTION {
		return nil, p.errorf(diag.Syntax, "expected 'fonction', got %q", p.cur.Literal)
	}
	p.advance()

	if p.cur.Type != token.IDENT {
		return nil, p.errorf(diag.Syntax, "expected a function name")
	}
	name := p.cur.Literal
	pos := p.cur.Pos
	p.advance()

	if p.cur.Type != token.LPAREN {
		return nil, p.errorf(diag.Syntax, "expected '(' after %q", name)
	}
	p.advance()

	ftab := symtab.New()
	var params []*ast.VariableRef
	if p.cur.Type != token.RPAREN {
		for {
			typ, err := p.parseType(false)
			if err != nil {
				return nil, err
			}
			if p.cur.Type != token.IDENT {
				return nil, p.errorf(diag.Syntax, "expected a parameter name")
			}
			pname, ppos := p.cur.Literal, p.cur.Pos
			p.advance()

			ref := &ast.VariableRef{Name: pname, Typ: typ}
			if err := ftab.Insert(&symtab.Symbol{Name: pname, Kind: symtab.KindParam, Attributes: ref}); err != nil {
				return nil, diag.New(diag.Name, ppos, p.lex.Snapshot(), "%s", err)
			}
			params = append(params, ref)

			if p.cur.Type != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if p.cur.Type != token.RPAREN {
		return nil, p.errorf(diag.Syntax, "expected ')' after parameter list")
	}
	p.advance()

	if p.cur.Type != token.COLON {
		return nil, p.errorf(diag.Syntax, "expected ':' before return type")
	}
	p.advance()

	retType, err := p.parseType(true)
	if err != nil {
		return nil, err
	}

	fn := &ast.Function{Name: name, ReturnType: retType, Params: params}
	if err := p.global.Insert(&symtab.Symbol{Name: name, Kind: symtab.KindFunction, Attributes: fn, FuncTable: ftab}); err != nil {
		return nil, diag.New(diag.Name, pos, p.lex.Snapshot(), "%s", err)
	}

	if p.log != nil {
		p.log.Debugw("parsing function body", "function", name)
	}

	body, err := p.parseBlock(ftab, fn)
	if err != nil {
		return nil, err
	}
	fn.Body = body

	if retType == ast.Integer && !stmtsAlwaysReturn(body) {
		return nil, diag.New(diag.Type, pos, p.lex.Snapshot(),
			"function %q must return a value of type %s on every path", name, retType)
	}

	return fn, nil
}

// parseType parses a type name. allowVoid controls whether 'rien' is
// accepted here: it is only a legal return type, never a parameter or
// local variable type.
func (p *Parser) parseType(allowVoid bool) (ast.Type, error) {
	switch p.cur.Type {
	case token.INTEGER:
		p.advance()
		return ast.Integer, nil
	case token.VOID:
		if !allowVoid {
			return 0, p.errorf(diag.Type, "'rien' cannot be used as a variable or parameter type")
		}
		p.advance()
		return ast.Void, nil
	default:
		return 0, p.errorf(diag.Syntax, "expected a type, got %q", p.cur.Literal)
	}
}

func (p *Parser) parseBlock(ftab *symtab.Table, fn *ast.Function) ([]ast.Node, error) {
	if p.cur.Type != token.LBRACE {
		return nil, p.errorf(diag.Syntax, "expected '{'")
	}
	p.advance()

	var stmts []ast.Node
	for p.cur.Type != token.RBRACE {
		if p.cur.Type == token.EOF {
			return nil, p.errorf(diag.Syntax, "unexpected end of input, expected '}'")
		}
		stmt, err := p.parseStatement(ftab, fn)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	return stmts, nil
}

func (p *Parser) parseStatement(ftab *symtab.Table, fn *ast.Function) (ast.Node, error) {
	switch p.cur.Type {
	case token.LBRACE:
		stmts, err := p.parseBlock(ftab, fn)
		if err != nil {
			return nil, err
		}
		return &ast.CompoundStmt{Stmts: stmts}, nil

	case token.INTEGER:
		return p.parseDeclaration(ftab)

	case token.IF:
		return p.parseIf(ftab, fn)

	case token.WHILE:
		return p.parseWhile(ftab, fn)

	case token.RETURN:
		return p.parseReturn(ftab, fn)

	case token.IDENT:
		if p.peek.Type == token.ASSIGN {
			return p.parseAssignment(ftab)
		}
		return p.parseExpressionStatement(ftab)

	default:
		return p.parseExpressionStatement(ftab)
	}
}

func (p *Parser) parseExpressionStatement(ftab *symtab.Table) (ast.Node, error) {
	expr, err := p.parseExpression(ftab)
	if err != nil {
		return nil, err
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseDeclaration(ftab *symtab.Table) (ast.Node, error) {
	typ, err := p.parseType(false)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.IDENT {
		return nil, p.errorf(diag.Syntax, "expected a variable name")
	}
	name, pos := p.cur.Literal, p.cur.Pos
	p.advance()

	ref := &ast.VariableRef{Name: name, Typ: typ}
	if err := ftab.Insert(&symtab.Symbol{Name: name, Kind: symtab.KindVar, Attributes: ref}); err != nil {
		return nil, diag.New(diag.Name, pos, p.lex.Snapshot(), "%s", err)
	}

	var rvalue ast.Node
	if p.cur.Type == token.ASSIGN {
		p.advance()
		rvalue, err = p.parseExpression(ftab)
		if err != nil {
			return nil, err
		}
		rt, err := p.typeOf(rvalue)
		if err != nil {
			return nil, err
		}
		if rt != typ {
			return nil, diag.New(diag.Type, pos, p.lex.Snapshot(),
				"cannot initialize %q of type %s with a value of type %s", name, typ, rt)
		}
	}

	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return &ast.Declaration{LValue: ref, RValue: rvalue}, nil
}

func (p *Parser) parseAssignment(ftab *symtab.Table) (ast.Node, error) {
	pos := p.cur.Pos
	ref, err := p.resolveVariable(ftab, p.cur.Literal)
	if err != nil {
		return nil, err
	}
	p.advance() // IDENT
	p.advance() // '='

	rvalue, err := p.parseExpression(ftab)
	if err != nil {
		return nil, err
	}
	rt, err := p.typeOf(rvalue)
	if err != nil {
		return nil, err
	}
	if rt != ref.Typ {
		return nil, diag.New(diag.Type, pos, p.lex.Snapshot(),
			"cannot assign a value of type %s to %q of type %s", rt, ref.Name, ref.Typ)
	}

	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return &ast.Assignment{LValue: ref, RValue: rvalue}, nil
}

func (p *Parser) parseIf(ftab *symtab.Table, fn *ast.Function) (ast.Node, error) {
	p.advance() // 'si'
	if p.cur.Type != token.LPAREN {
		return nil, p.errorf(diag.Syntax, "expected '(' after 'si'")
	}
	p.advance()

	cond, err := p.parseExpression(ftab)
	if err != nil {
		return nil, err
	}
	ct, err := p.typeOf(cond)
	if err != nil {
		return nil, err
	}
	if ct != ast.Boolean {
		return nil, p.errorf(diag.Type, "condition of 'si' must be a boolean expression, got %s", ct)
	}

	if p.cur.Type != token.RPAREN {
		return nil, p.errorf(diag.Syntax, "expected ')' after condition")
	}
	p.advance()

	valid, err := p.parseStatement(ftab, fn)
	if err != nil {
		return nil, err
	}

	var invalid ast.Node
	if p.cur.Type == token.ELSE {
		p.advance()
		if p.cur.Type == token.IF {
			invalid, err = p.parseIf(ftab, fn)
		} else {
			invalid, err = p.parseStatement(ftab, fn)
		}
		if err != nil {
			return nil, err
		}
	}

	return &ast.Branch{Condition: cond, Valid: valid, Invalid: invalid}, nil
}

func (p *Parser) parseWhile(ftab *symtab.Table, fn *ast.Function) (ast.Node, error) {
	p.advance() // 'tantque'
	if p.cur.Type != token.LPAREN {
		return nil, p.errorf(diag.Syntax, "expected '(' after 'tantque'")
	}
	p.advance()

	cond, err := p.parseExpression(ftab)
	if err != nil {
		return nil, err
	}
	ct, err := p.typeOf(cond)
	if err != nil {
		return nil, err
	}
	if ct != ast.Boolean {
		return nil, p.errorf(diag.Type, "condition of 'tantque' must be a boolean expression, got %s", ct)
	}

	if p.cur.Type != token.RPAREN {
		return nil, p.errorf(diag.Syntax, "expected ')' after condition")
	}
	p.advance()

	body, err := p.parseStatement(ftab, fn)
	if err != nil {
		return nil, err
	}
	return &ast.Loop{Condition: cond, Body: body}, nil
}

func (p *Parser) parseReturn(ftab *symtab.Table, fn *ast.Function) (ast.Node, error) {
	pos := p.cur.Pos
	p.advance() // 'retourner'

	if p.cur.Type == token.SEMICOLON {
		p.advance()
		if fn.ReturnType != ast.Void {
			return nil, diag.New(diag.Type, pos, p.lex.Snapshot(),
				"function %q must return a value of type %s", fn.Name, fn.ReturnType)
		}
		return &ast.Return{}, nil
	}

	if fn.ReturnType == ast.Void {
		return nil, diag.New(diag.Type, pos, p.lex.Snapshot(),
			"function %q returns 'rien' and cannot return a value", fn.Name)
	}

	expr, err := p.parseExpression(ftab)
	if err != nil {
		return nil, err
	}
	et, err := p.typeOf(expr)
	if err != nil {
		return nil, err
	}
	if et != fn.ReturnType {
		return nil, diag.New(diag.Type, pos, p.lex.Snapshot(),
			"function %q returns %s, got %s", fn.Name, fn.ReturnType, et)
	}

	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return &ast.Return{Expr: expr}, nil
}

// resolveVariable looks a bare identifier up as a variable: the function
// table first, then the global table as a diagnostic fallback (a hit
// there means the name is a function being used where a value is
// expected).
func (p *Parser) resolveVariable(ftab *symtab.Table, name string) (*ast.VariableRef, error) {
	if sym, ok := ftab.Lookup(name); ok {
		return sym.Attributes.(*ast.VariableRef), nil
	}
	if _, ok := p.global.Lookup(name); ok {
		return nil, p.errorf(diag.Name, "%q is a function, not a value", name)
	}
	return nil, p.errorf(diag.Name, "use of undeclared identifier %q", name)
}

func (p *Parser) parseCall(ftab *symtab.Table) (ast.Node, error) {
	name, pos := p.cur.Literal, p.cur.Pos
	p.advance() // IDENT
	p.advance() // '('

	var args []ast.Node
	if p.cur.Type != token.RPAREN {
		for {
			arg, err := p.parseExpression(ftab)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.Type != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if p.cur.Type != token.RPAREN {
		return nil, p.errorf(diag.Syntax, "expected ')' to close call to %q", name)
	}
	p.advance()

	sym, ok := p.global.Lookup(name)
	if !ok || sym.Kind != symtab.KindFunction {
		return nil, diag.New(diag.Name, pos, p.lex.Snapshot(), "call to undeclared function %q", name)
	}
	callee := sym.Attributes.(*ast.Function)

	if len(args) != len(callee.Params) {
		return nil, diag.New(diag.Type, pos, p.lex.Snapshot(),
			"%q expects %d argument(s), got %d", name, len(callee.Params), len(args))
	}
	for i, arg := range args {
		at, err := p.typeOf(arg)
		if err != nil {
			return nil, err
		}
		if at != callee.Params[i].Typ {
			return nil, diag.New(diag.Type, pos, p.lex.Snapshot(),
				"argument %d to %q has type %s, want %s", i+1, name, at, callee.Params[i].Typ)
		}
	}

	return &ast.FnCall{Name: name, Args: args, ResultType: callee.ReturnType}, nil
}

// parseExpression runs the shunting-yard algorithm over the token stream
// until it reaches one of the expression terminators (';', ')', ',' or
// EOF), then materializes the resulting postfix stack into a tree.
func (p *Parser) parseExpression(ftab *symtab.Table) (ast.Node, error) {
	var opStack []ast.BinOp
	var output []ast.Node

	popOperator := func() {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		output = append(output, &ast.Binary{Op: top})
	}

	pushOperator := func(op ast.BinOp) {
		for len(opStack) > 0 && precedenceOf(opStack[len(opStack)-1]) >= precedenceOf(op) {
			popOperator()
		}
		opStack = append(opStack, op)
	}

	for !isExprEnd(p.cur.Type) {
		switch {
		case p.cur.Type == token.NUMBER:
			v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
			if err != nil {
				return nil, p.errorf(diag.Syntax, "invalid integer literal %q", p.cur.Literal)
			}
			output = append(output, &ast.IntegerLit{Value: v})
			p.advance()

		case p.cur.Type == token.IDENT:
			if p.peek.Type == token.LPAREN {
				call, err := p.parseCall(ftab)
				if err != nil {
					return nil, err
				}
				output = append(output, call)
			} else {
				ref, err := p.resolveVariable(ftab, p.cur.Literal)
				if err != nil {
					return nil, err
				}
				output = append(output, ref)
				p.advance()
			}

		case p.cur.Type == token.LPAREN:
			p.advance()
			inner, err := p.parseExpression(ftab)
			if err != nil {
				return nil, err
			}
			if p.cur.Type != token.RPAREN {
				return nil, p.errorf(diag.Syntax, "expected ')'")
			}
			p.advance()
			output = append(output, &ast.Paren{Inner: inner})

		case token.IsBinaryOperator(p.cur.Type):
			pushOperator(tokenToBinOp(p.cur.Type))
			p.advance()

		default:
			return nil, p.errorf(diag.Syntax, "unexpected token %q in expression", p.cur.Literal)
		}
	}

	for len(opStack) > 0 {
		popOperator()
	}

	if len(output) == 0 {
		return nil, p.errorf(diag.Syntax, "expected an expression")
	}

	tree, rest, err := materialize(output)
	if err != nil {
		return nil, p.errorf(diag.Syntax, "malformed expression: %s", err)
	}
	if len(rest) != 0 {
		return nil, p.errorf(diag.Syntax, "malformed expression")
	}
	return tree, nil
}

// materialize pops the postfix output stack into a tree: an operand pops
// as a leaf, an operator pops its right operand before its left (mirroring
// the order the operands were pushed).
func materialize(stack []ast.Node) (ast.Node, []ast.Node, error) {
	if len(stack) == 0 {
		return nil, nil, errStackUnderflow
	}
	top := stack[len(stack)-1]
	rest := stack[:len(stack)-1]

	bin, ok := top.(*ast.Binary)
	if !ok {
		return top, rest, nil
	}

	right, rest, err := materialize(rest)
	if err != nil {
		return nil, nil, err
	}
	left, rest, err := materialize(rest)
	if err != nil {
		return nil, nil, err
	}
	bin.Right, bin.Left = right, left
	return bin, rest, nil
}

func isExprEnd(tt token.Type) bool {
	switch tt {
	case token.SEMICOLON, token.RPAREN, token.COMMA, token.EOF:
		return true
	}
	return false
}

func tokenToBinOp(tt token.Type) ast.BinOp {
	switch tt {
	case token.PLUS:
		return ast.Add
	case token.MINUS:
		return ast.Sub
	case token.ASTERISK:
		return ast.Mul
	case token.SLASH:
		return ast.Div
	case token.AND:
		return ast.And
	case token.OR:
		return ast.Or
	case token.LT:
		return ast.Lt
	case token.LTE:
		return ast.Lte
	case token.GT:
		return ast.Gt
	case token.GTE:
		return ast.Gte
	case token.EQ:
		return ast.Eq
	case token.NEQ:
		return ast.Neq
	default:
		panic("tokenToBinOp: not a binary operator token: " + tt)
	}
}

// precedenceOf ranks operators from loosest (ET/OU) to tightest (*, /),
// matching the language's precedence ladder. Ties bind left, which the
// >= comparison in pushOperator implements.
func precedenceOf(op ast.BinOp) int {
	switch {
	case op == ast.And || op == ast.Or:
		return 10
	case op.IsComparison():
		return 20
	case op == ast.Add || op == ast.Sub:
		return 30
	default: // Mul, Div
		return 40
	}
}
