// File: parser.go
// Title: RCL Recursive Descent Parser
// Description: Converts RCL token streams into an abstract syntax tree.
//              Statements are parsed by recursive descent, expressions by
//              precedence climbing. Parsing stops at the first unexpected
//              token; there is no error recovery.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial parser implementation

package parser

import (
	"fmt"

	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/foundation/rcl/ast"
)

// Binding powers, lowest to highest
const (
	precLowest      = iota
	precTruth       // MXTRUE, MXFALSE
	precMajority    // e MXEQ ... e MXGTE
	precElementwise // ELEQ ... ELGTE
	precAnd         // AND
	precSum         // + -
	precProduct     // * /
	precNot         // NOT
	precNegate      // unary -
)

// Parser implements recursive descent parsing for RCL
type Parser struct {
	tokens  []Token
	pos     int
	current Token
	arity   map[string]int
	logger  *mdwlog.Logger
	options Options
}

// Options configures parser behavior
type Options struct {
	Logger         *mdwlog.Logger
	MaxInputLength int
}

// ParseError represents a parsing error with position information
type ParseError struct {
	Message string
	Line    int
	Column  int
	Token   Token
}

func (pe *ParseError) Error() string {
	near := pe.Token.Value
	if near == "" {
		near = pe.Token.String()
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s (near '%s')",
		pe.Line, pe.Column, pe.Message, near)
}

// New creates a new RCL parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = 1 << 20
	}

	return &Parser{
		logger:  opts.Logger.WithField("component", "rcl-parser"),
		options: opts,
	}
}

// Parse parses RCL source text into a program
func Parse(input string) (*ast.Program, error) {
	return New(Options{Logger: mdwlog.Discard()}).Parse(input)
}

// Parse parses RCL source text into a program. Lexical failures are
// returned as *LexError, grammar failures as *ParseError.
func (p *Parser) Parse(input string) (*ast.Program, error) {
	if len(input) > p.options.MaxInputLength {
		return nil, fmt.Errorf("input exceeds maximum length: %d > %d",
			len(input), p.options.MaxInputLength)
	}

	tokens, err := Tokenize(input)
	if err != nil {
		p.logger.Debug("RCL lexing failed", mdwlog.Fields{"error": err.Error()})
		return nil, err
	}

	p.tokens = tokens
	p.pos = 0
	p.current = tokens[0]
	p.arity = make(map[string]int)

	p.logger.Debug("Starting RCL parsing", mdwlog.Fields{
		"tokens": len(tokens),
		"length": len(input),
	})

	prog, err := p.parseProgram()
	if err != nil {
		p.logger.Debug("RCL parsing failed", mdwlog.Fields{"error": err.Error()})
		return nil, err
	}

	p.logger.Debug("RCL parsing completed", mdwlog.Fields{
		"statements": len(prog.Statements),
		"tasks":      len(prog.Tasks()),
	})
	return prog, nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	if p.current.Type == TokenEOF {
		return nil, p.errorf("empty program")
	}

	prog := &ast.Program{}
	for p.current.Type != TokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.current.Type {
	case TokenVar:
		return p.parseVarDecl()
	case TokenFor:
		return p.parseFor()
	case TokenSwitch:
		return p.parseSwitch()
	case TokenTask:
		return p.parseTask()
	case TokenDo:
		return p.parseCall()
	case TokenResult:
		pos := p.position()
		p.advance()
		value, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		return &ast.Result{Position: pos, Value: value}, nil
	case TokenMove:
		pos := p.position()
		p.advance()
		return &ast.Move{Position: pos}, nil
	case TokenRotate:
		return p.parseRotate()
	case TokenReduce, TokenExtend:
		return p.parseResize()
	case TokenLeftParen:
		return p.parseBlock()
	case TokenIdentifier:
		if p.peek().Type == TokenAssign {
			return p.parseAssign()
		}
	}

	if !p.startsExpression(p.current) {
		return nil, p.errorf("unexpected token %s at start of statement", p.current.Type)
	}
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: expr}, nil
}

func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	decl := &ast.VarDecl{Position: p.position()}
	p.advance() // VAR

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	decl.Name = name

	if p.current.Type == TokenLeftBracket {
		if decl.Dims, err = p.parseBracketList(); err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenAssign); err != nil {
		return nil, err
	}

	if decl.Value, err = p.parseExpression(precLowest); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseAssign() (ast.Stmt, error) {
	stmt := &ast.Assign{Position: p.position(), Name: p.current.Value}
	p.advance() // name
	p.advance() // =

	value, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	loop := &ast.ForLoop{Position: p.position()}
	p.advance() // FOR

	var err error
	if loop.Counter, err = p.expectIdent(); err != nil {
		return nil, err
	}
	if err = p.expect(TokenBoundary); err != nil {
		return nil, err
	}
	if loop.Boundary, err = p.parseExpression(precLowest); err != nil {
		return nil, err
	}
	if err = p.expect(TokenStep); err != nil {
		return nil, err
	}
	if loop.Step, err = p.parseExpression(precLowest); err != nil {
		return nil, err
	}
	if loop.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return loop, nil
}

func (p *Parser) parseSwitch() (ast.Stmt, error) {
	sw := &ast.Switch{Position: p.position()}
	p.advance() // SWITCH

	var err error
	if sw.Cond, err = p.parseExpression(precLowest); err != nil {
		return nil, err
	}

	if p.current.Type != TokenBool {
		return nil, p.errorf("expected TRUE or FALSE after SWITCH condition, got %s", p.current.Type)
	}
	sw.Then.Literal = p.current.Bool
	p.advance()
	if sw.Then.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}

	if p.current.Type == TokenBool {
		arm := &ast.SwitchArm{Literal: p.current.Bool}
		p.advance()
		if arm.Body, err = p.parseBlock(); err != nil {
			return nil, err
		}
		sw.Else = arm
	}
	return sw, nil
}

func (p *Parser) parseTask() (ast.Stmt, error) {
	task := &ast.TaskDecl{Position: p.position()}
	p.advance() // TASK

	var err error
	if task.Name, err = p.expectIdent(); err != nil {
		return nil, err
	}
	if err = p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	if p.current.Type != TokenRightParen {
		for {
			param, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			task.Params = append(task.Params, param)
			if p.current.Type != TokenComma {
				break
			}
			p.advance()
		}
	}
	if err = p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	// registered before the body so recursive calls know the arity
	if _, seen := p.arity[task.Name]; !seen {
		p.arity[task.Name] = len(task.Params)
	}

	if task.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return task, nil
}

// parseCall parses `DO name args...`. Arguments are juxtaposed expressions;
// for a task already declared exactly its arity is consumed, otherwise
// arguments are read while the next token can start an expression.
func (p *Parser) parseCall() (ast.Stmt, error) {
	call := &ast.Call{Position: p.position()}
	p.advance() // DO

	var err error
	if call.Name, err = p.expectIdent(); err != nil {
		return nil, err
	}

	arity, known := p.arity[call.Name]
	for p.startsArgument() {
		if known && len(call.Args) == arity {
			break
		}
		arg, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

func (p *Parser) startsArgument() bool {
	if p.current.Type == TokenIdentifier && p.peek().Type == TokenAssign {
		return false
	}
	return p.startsExpression(p.current)
}

func (p *Parser) parseRotate() (ast.Stmt, error) {
	rot := &ast.Rotate{Position: p.position()}
	p.advance() // ROTATE

	switch p.current.Type {
	case TokenLeft:
		rot.Dir = ast.DirLeft
	case TokenRight:
		rot.Dir = ast.DirRight
	default:
		return nil, p.errorf("expected LEFT or RIGHT after ROTATE, got %s", p.current.Type)
	}
	p.advance()
	return rot, nil
}

func (p *Parser) parseResize() (ast.Stmt, error) {
	rs := &ast.Resize{Position: p.position(), Op: ast.ResizeReduce}
	if p.current.Type == TokenExtend {
		rs.Op = ast.ResizeExtend
	}
	p.advance()

	var err error
	if rs.Name, err = p.expectIdent(); err != nil {
		return nil, err
	}
	if p.current.Type == TokenLeftBracket {
		if rs.Dims, err = p.parseBracketList(); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	block := &ast.Block{Position: p.position()}
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	for p.current.Type != TokenRightParen {
		if p.current.Type == TokenEOF {
			return nil, p.errorf("unexpected end of input, expected ')'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if len(block.Statements) == 0 {
		return nil, p.errorf("empty block")
	}
	p.advance() // )
	return block, nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) parseExpression(minPrec int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	return p.parseInfix(left, minPrec)
}

func (p *Parser) parseInfix(left ast.Expr, minPrec int) (ast.Expr, error) {
	for {
		tok := p.current

		if op, ok := postfixMajority[tok.Type]; ok {
			if precMajority < minPrec {
				return left, nil
			}
			p.advance()
			left = &ast.Majority{Position: positionOf(tok), Op: op, Operand: left}
			continue
		}

		op, prec, ok := binaryOperator(tok.Type)
		if !ok || prec < minPrec {
			return left, nil
		}
		p.advance()

		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Position: positionOf(tok), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parsePrefix() (ast.Expr, error) {
	tok := p.current
	pos := positionOf(tok)

	switch tok.Type {
	case TokenInt:
		p.advance()
		return &ast.IntLit{Position: pos, Value: tok.Int, Base: tok.Base, Raw: tok.Value}, nil

	case TokenBool:
		p.advance()
		return &ast.BoolLit{Position: pos, Value: tok.Bool}, nil

	case TokenIdentifier:
		p.advance()
		if p.current.Type == TokenLeftBracket {
			indices, err := p.parseBracketList()
			if err != nil {
				return nil, err
			}
			return &ast.Index{Position: pos, Name: tok.Value, Indices: indices}, nil
		}
		return &ast.Ident{Position: pos, Name: tok.Value}, nil

	case TokenLeftBracket:
		return p.parseArrayLiteral()

	case TokenLeftParen:
		return p.parseGroup()

	case TokenMinus:
		p.advance()
		operand, err := p.parseExpression(precNegate)
		if err != nil {
			return nil, err
		}
		return &ast.Neg{Position: pos, Operand: operand}, nil

	case TokenNot:
		p.advance()
		operand, err := p.parseExpression(precNot)
		if err != nil {
			return nil, err
		}
		return &ast.Not{Position: pos, Operand: operand}, nil

	case TokenMxTrue, TokenMxFalse:
		p.advance()
		operand, err := p.parseExpression(precMajority)
		if err != nil {
			return nil, err
		}
		op := ast.MajTrue
		if tok.Type == TokenMxFalse {
			op = ast.MajFalse
		}
		return &ast.Majority{Position: pos, Op: op, Operand: operand}, nil

	case TokenMxEq, TokenMxLt, TokenMxGt, TokenMxLte, TokenMxGte:
		p.advance()
		if p.current.Type != TokenLeftParen {
			return nil, p.errorf("expected '(' after prefix %s", tok.Type)
		}
		operand, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		return &ast.Majority{Position: pos, Op: postfixMajority[tok.Type], Operand: operand}, nil

	case TokenElEq, TokenElLt, TokenElGt, TokenElLte, TokenElGte:
		return p.parseElementwise()

	case TokenSize:
		p.advance()
		if err := p.expect(TokenLeftParen); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return &ast.Size{Position: pos, Name: name}, nil

	case TokenLogitize, TokenDigitize:
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		op := ast.CastLogitize
		if tok.Type == TokenDigitize {
			op = ast.CastDigitize
		}
		return &ast.Cast{Position: pos, Op: op, Name: name}, nil

	case TokenGet:
		p.advance()
		if p.current.Type == TokenEnvironment {
			p.advance()
			return &ast.GetEnv{Position: pos}, nil
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.GetResult{Position: pos, Name: name}, nil

	case TokenEOF:
		return nil, p.errorf("unexpected end of input, expected expression")
	}

	return nil, p.errorf("unexpected token %s, expected expression", tok.Type)
}

// parseElementwise handles `ELxx e`, `ELxx(e)` and `ELxx(a)(b)`
func (p *Parser) parseElementwise() (ast.Expr, error) {
	tok := p.current
	node := &ast.Elementwise{Position: positionOf(tok), Op: elementwiseOps[tok.Type]}
	p.advance()

	if p.current.Type != TokenLeftParen {
		operand, err := p.parseExpression(precElementwise)
		if err != nil {
			return nil, err
		}
		node.Left = operand
		return node, nil
	}

	first, err := p.parseGroup()
	if err != nil {
		return nil, err
	}

	if p.current.Type == TokenLeftParen {
		second, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		node.Left, node.Right = first, second
		return node, nil
	}

	// `ELxx (a) + b` keeps the unparenthesised reading
	operand, err := p.parseInfix(first, precElementwise)
	if err != nil {
		return nil, err
	}
	node.Left = operand
	return node, nil
}

func (p *Parser) parseGroup() (ast.Expr, error) {
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	lit := &ast.ArrayLit{Position: p.position()}
	p.advance() // [

	if p.current.Type == TokenRightBracket {
		p.advance()
		return lit, nil
	}

	for {
		elem, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, elem)
		if p.current.Type != TokenComma {
			break
		}
		p.advance()
	}

	if err := p.expect(TokenRightBracket); err != nil {
		return nil, err
	}
	return lit, nil
}

// parseBracketList parses `[e1, e2, ...]` with at least one element
func (p *Parser) parseBracketList() ([]ast.Expr, error) {
	if err := p.expect(TokenLeftBracket); err != nil {
		return nil, err
	}

	var exprs []ast.Expr
	for {
		e, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.current.Type != TokenComma {
			break
		}
		p.advance()
	}

	if err := p.expect(TokenRightBracket); err != nil {
		return nil, err
	}
	return exprs, nil
}

var postfixMajority = map[TokenType]ast.MajorityOp{
	TokenMxEq:  ast.MajEQ,
	TokenMxLt:  ast.MajLT,
	TokenMxGt:  ast.MajGT,
	TokenMxLte: ast.MajLTE,
	TokenMxGte: ast.MajGTE,
}

var elementwiseOps = map[TokenType]ast.Comparison{
	TokenElEq:  ast.CmpEQ,
	TokenElLt:  ast.CmpLT,
	TokenElGt:  ast.CmpGT,
	TokenElLte: ast.CmpLTE,
	TokenElGte: ast.CmpGTE,
}

func binaryOperator(tt TokenType) (ast.BinaryOp, int, bool) {
	switch tt {
	case TokenAnd:
		return ast.OpAnd, precAnd, true
	case TokenPlus:
		return ast.OpAdd, precSum, true
	case TokenMinus:
		return ast.OpSub, precSum, true
	case TokenStar:
		return ast.OpMul, precProduct, true
	case TokenSlash:
		return ast.OpDiv, precProduct, true
	default:
		return 0, 0, false
	}
}

func (p *Parser) startsExpression(tok Token) bool {
	switch tok.Type {
	case TokenInt, TokenBool, TokenIdentifier, TokenLeftBracket, TokenLeftParen,
		TokenMinus, TokenNot, TokenMxTrue, TokenMxFalse,
		TokenMxEq, TokenMxLt, TokenMxGt, TokenMxLte, TokenMxGte,
		TokenElEq, TokenElLt, TokenElGt, TokenElLte, TokenElGte,
		TokenSize, TokenLogitize, TokenDigitize, TokenGet:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.current = p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		if p.current.Type == TokenEOF {
			return p.errorf("unexpected end of input, expected %s", tt)
		}
		return p.errorf("expected %s, got %s", tt, p.current.Type)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.current.Type != TokenIdentifier {
		return "", p.errorf("expected identifier, got %s", p.current.Type)
	}
	name := p.current.Value
	p.advance()
	return name, nil
}

func (p *Parser) position() ast.Position {
	return positionOf(p.current)
}

func positionOf(tok Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    p.current.Line,
		Column:  p.current.Column,
		Token:   p.current,
	}
}
