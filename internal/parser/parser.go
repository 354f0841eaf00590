// Package parser turns a token stream into an AST by recursive descent with
// operator-precedence climbing and panic-mode synchronisation.
package parser

import (
	"fmt"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/token"
)

const maxArgs = 255

// Parser consumes a finite token stream (terminated by EOF) and produces a
// list of statements. It is single-use: construct one per Run, parse once.
type Parser struct {
	tokens  []token.Token
	current int
	sink    *diagnostics.Sink

	nextExprID int
	loopDepth  int
}

// New creates a Parser over tokens, reporting syntax errors to sink.
func New(tokens []token.Token, sink *diagnostics.Sink) *Parser {
	return &Parser{tokens: tokens, sink: sink}
}

// parseError unwinds the recursive-descent call stack to the nearest
// synchronisation point. It is never returned to callers of Parse.
type parseError struct{}

func (parseError) Error() string { return "parse error" }

// Parse parses the whole token stream into a program (a list of
// declarations). Parse errors are reported to the sink and recovered from at
// statement boundaries; Parse never panics out to the caller.
func (p *Parser) Parse() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atEnd() {
		if d := p.declaration(); d != nil {
			stmts = append(stmts, d)
		}
	}
	return stmts
}

// ParseExpression parses a single bare expression rather than a full
// statement. On a syntax error it reports to the sink and returns nil.
func (p *Parser) ParseExpression() ast.Expr {
	defer p.recoverParseError()
	return p.expression()
}

func (p *Parser) recoverParseError() {
	if r := recover(); r != nil {
		if _, ok := r.(parseError); !ok {
			panic(r)
		}
	}
}

// ---------------------------------------------------------------- Declarations

func (p *Parser) declaration() (stmt ast.Stmt) {
	start := p.current
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			stmt = nil
			if p.current > start {
				switch p.peek().Type {
				case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
					token.WHILE, token.PRINT, token.RETURN:
					// The token that triggered the error already opens the
					// next statement: resume there instead of discarding it.
					return
				}
			}
			p.synchronize()
		}
	}()

	switch {
	case p.match(token.CLASS):
		return p.classDecl()
	case p.match(token.FUN):
		return p.function("function")
	case p.match(token.VAR):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "Expect superclass name.")
		superclass = ast.NewVariable(p.newExprID(), p.previous())
	}

	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")

	var methods []*ast.Function
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		methods = append(methods, p.function("method").(*ast.Function))
	}

	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")

	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) function(kind string) ast.Stmt {
	name := p.consume(token.IDENTIFIER, fmt.Sprintf("Expect %s name.", kind))
	p.consume(token.LEFT_PAREN, fmt.Sprintf("Expect '(' after %s name.", kind))

	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")

	p.consume(token.LEFT_BRACE, fmt.Sprintf("Expect '{' before %s body.", kind))

	// A function body starts a fresh loop-nesting context: break/continue
	// inside it can't reach through to an enclosing loop in the caller.
	savedDepth := p.loopDepth
	p.loopDepth = 0
	body := p.block()
	p.loopDepth = savedDepth

	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect variable name.")

	var initializer ast.Expr
	if p.match(token.EQUAL) {
		initializer = p.expression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: initializer}
}

// ---------------------------------------------------------------- Statements

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.BREAK):
		return p.breakStmt()
	case p.match(token.CONTINUE):
		return p.continueStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.LEFT_BRACE):
		return &ast.Block{Statements: p.block()}
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.Expression{Expression: expr}
}

func (p *Parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	return &ast.Print{Expression: expr}
}

func (p *Parser) returnStmt() ast.Stmt {
	keyword := p.previous()

	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: value}
}

func (p *Parser) breakStmt() ast.Stmt {
	keyword := p.previous()
	if p.loopDepth == 0 {
		p.errorAt(keyword, "Must be inside a loop to use 'break'.")
	}
	p.consume(token.SEMICOLON, "Expect ';' after 'break'.")
	return &ast.Break{Keyword: keyword}
}

func (p *Parser) continueStmt() ast.Stmt {
	keyword := p.previous()
	if p.loopDepth == 0 {
		p.errorAt(keyword, "Must be inside a loop to use 'continue'.")
	}
	p.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
	return &ast.Continue{Keyword: keyword}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after if condition.")

	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}

	return &ast.If{Condition: cond, Then: thenBranch, Else: elseBranch}
}

func (p *Parser) whileStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	body := p.loopBody()

	return &ast.While{Condition: cond, Body: body}
}

// loopBody parses a while/for body with loopDepth incremented, restoring it
// on the way out even if a synchronised parse error unwinds through here.
func (p *Parser) loopBody() ast.Stmt {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.statement()
}

// forStmt desugars C-style for into Block[initializer?, While(cond, body,
// increment)] — the While node keeps the increment separate so it still
// runs after an iteration cut short by continue.
func (p *Parser) forStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		initializer = nil
	case p.match(token.VAR):
		initializer = p.varDecl()
	default:
		initializer = p.exprStmt()
	}

	var condition ast.Expr
	if !p.check(token.SEMICOLON) {
		condition = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		increment = p.expression()
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

	body := p.loopBody()

	if condition == nil {
		condition = ast.NewLiteral(p.newExprID(), true)
	}
	whileStmt := &ast.While{Condition: condition, Body: body, Increment: increment}

	if initializer == nil {
		return whileStmt
	}
	return &ast.Block{Statements: []ast.Stmt{initializer, whileStmt}}
}

func (p *Parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		if d := p.declaration(); d != nil {
			stmts = append(stmts, d)
		}
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

// ---------------------------------------------------------------- Expressions

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return ast.NewAssign(p.newExprID(), target.Name, value)
		case *ast.Get:
			return ast.NewSet(p.newExprID(), target.Object, target.Name, value)
		default:
			p.errorAt(equals, "Invalid assignment target.")
			return expr
		}
	}

	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.OR) {
		op := p.previous()
		right := p.logicAnd()
		expr = ast.NewLogical(p.newExprID(), expr, op, right)
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = ast.NewLogical(p.newExprID(), expr, op, right)
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BANG_EQUAL, token.EQUAL_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = ast.NewBinary(p.newExprID(), expr, op, right)
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = ast.NewBinary(p.newExprID(), expr, op, right)
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.MINUS, token.PLUS) {
		op := p.previous()
		right := p.factor()
		expr = ast.NewBinary(p.newExprID(), expr, op, right)
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.SLASH, token.STAR) {
		op := p.previous()
		right := p.unary()
		expr = ast.NewBinary(p.newExprID(), expr, op, right)
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return ast.NewUnary(p.newExprID(), op, right)
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.LEFT_PAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
			expr = ast.NewGet(p.newExprID(), expr, name)
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.errorAtCurrent("Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	paren := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return ast.NewCall(p.newExprID(), callee, paren, args)
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		return ast.NewLiteral(p.newExprID(), false)
	case p.match(token.TRUE):
		return ast.NewLiteral(p.newExprID(), true)
	case p.match(token.NIL):
		return ast.NewLiteral(p.newExprID(), nil)
	case p.match(token.NUMBER, token.STRING):
		return ast.NewLiteral(p.newExprID(), p.previous().Literal)
	case p.match(token.SUPER):
		keyword := p.previous()
		p.consume(token.DOT, "Expect '.' after 'super'.")
		method := p.consume(token.IDENTIFIER, "Expect superclass method name.")
		return ast.NewSuper(p.newExprID(), keyword, method)
	case p.match(token.THIS):
		return ast.NewThis(p.newExprID(), p.previous())
	case p.match(token.IDENTIFIER):
		return ast.NewVariable(p.newExprID(), p.previous())
	case p.match(token.LEFT_PAREN):
		expr := p.expression()
		p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
		return ast.NewGrouping(p.newExprID(), expr)
	default:
		p.errorAtCurrent("Expect expression.")
		panic(parseError{})
	}
}

// ---------------------------------------------------------------- Helpers

func (p *Parser) newExprID() int {
	id := p.nextExprID
	p.nextExprID++
	return id
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t token.Type) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) atEnd() bool { return p.peek().Type == token.EOF }

func (p *Parser) peek() token.Token { return p.tokens[p.current] }

func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }

func (p *Parser) consume(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	panic(parseError{})
}

func (p *Parser) errorAtCurrent(message string) {
	p.errorAt(p.peek(), message)
}

func (p *Parser) errorAt(tok token.Token, message string) {
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = " at end"
	}
	p.sink.StaticError(tok.Line, where, message)
}

// synchronize discards tokens until it sees a statement boundary, so a
// single panic emits exactly one diagnostic and parsing can resume.
func (p *Parser) synchronize() {
	p.advance()

	for !p.atEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}

		switch p.peek().Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}

		p.advance()
	}
}
