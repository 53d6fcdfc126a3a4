// File: lexer.go
// Title: RCL Lexical Analyzer (Tokenizer)
// Description: Implements the lexical analysis phase of RCL parsing.
//              Converts program text into a stream of tokens with line and
//              column information. Keywords are recognized by upper-casing
//              identifiers, so `move` and `Move` are both the MOVE keyword.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial lexer implementation

package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota

	// Identifiers and literals
	TokenIdentifier // robot, counter_1
	TokenInt        // 12, 014, 0o14, 0xC
	TokenBool       // TRUE, false

	// Punctuation
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenAssign       // =
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenComma        // ,

	// Keywords
	TokenVar
	TokenTask
	TokenFor
	TokenBoundary
	TokenStep
	TokenSwitch
	TokenResult
	TokenMove
	TokenRotate
	TokenLeft
	TokenRight
	TokenGet
	TokenEnvironment
	TokenSize
	TokenLogitize
	TokenDigitize
	TokenReduce
	TokenExtend
	TokenDo
	TokenAnd
	TokenNot
	TokenMxEq
	TokenMxLt
	TokenMxGt
	TokenMxLte
	TokenMxGte
	TokenElEq
	TokenElLt
	TokenElGt
	TokenElLte
	TokenElGte
	TokenMxTrue
	TokenMxFalse
)

var keywords = map[string]TokenType{
	"VAR":         TokenVar,
	"TASK":        TokenTask,
	"FOR":         TokenFor,
	"BOUNDARY":    TokenBoundary,
	"STEP":        TokenStep,
	"SWITCH":      TokenSwitch,
	"RESULT":      TokenResult,
	"MOVE":        TokenMove,
	"ROTATE":      TokenRotate,
	"LEFT":        TokenLeft,
	"RIGHT":       TokenRight,
	"GET":         TokenGet,
	"ENVIRONMENT": TokenEnvironment,
	"SIZE":        TokenSize,
	"LOGITIZE":    TokenLogitize,
	"DIGITIZE":    TokenDigitize,
	"REDUCE":      TokenReduce,
	"EXTEND":      TokenExtend,
	"DO":          TokenDo,
	"AND":         TokenAnd,
	"NOT":         TokenNot,
	"MXEQ":        TokenMxEq,
	"MXLT":        TokenMxLt,
	"MXGT":        TokenMxGt,
	"MXLTE":       TokenMxLte,
	"MXGTE":       TokenMxGte,
	"ELEQ":        TokenElEq,
	"ELLT":        TokenElLt,
	"ELGT":        TokenElGt,
	"ELLTE":       TokenElLte,
	"ELGTE":       TokenElGte,
	"MXTRUE":      TokenMxTrue,
	"MXFALSE":     TokenMxFalse,
}

var punctuation = map[byte]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'=': TokenAssign,
	'[': TokenLeftBracket,
	']': TokenRightBracket,
	'(': TokenLeftParen,
	')': TokenRightParen,
	',': TokenComma,
}

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenIdentifier:   "IDENTIFIER",
	TokenInt:          "INT",
	TokenBool:         "BOOL",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenStar:         "STAR",
	TokenSlash:        "SLASH",
	TokenAssign:       "ASSIGN",
	TokenLeftBracket:  "LEFT_BRACKET",
	TokenRightBracket: "RIGHT_BRACKET",
	TokenLeftParen:    "LEFT_PAREN",
	TokenRightParen:   "RIGHT_PAREN",
	TokenComma:        "COMMA",
}

func init() {
	for word, tt := range keywords {
		tokenNames[tt] = word
	}
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword reports whether tt is a reserved word
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenVar
}

// LookupIdent returns the keyword token type for ident, or TokenIdentifier.
// The lookup is case-insensitive; TRUE and FALSE yield TokenBool.
func LookupIdent(ident string) TokenType {
	upper := strings.ToUpper(ident)
	if upper == "TRUE" || upper == "FALSE" {
		return TokenBool
	}
	if tt, ok := keywords[upper]; ok {
		return tt
	}
	return TokenIdentifier
}

// Token represents a lexical token with position information
type Token struct {
	Type   TokenType // Token type
	Value  string    // Token text as written
	Int    int       // Decoded value of TokenInt
	Base   int       // Numeral base of TokenInt (8, 10 or 16)
	Bool   bool      // Decoded value of TokenBool
	Line   int       // Line number (1-based)
	Column int       // Column number (1-based)
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenInt:
		return fmt.Sprintf("INT(%d)", t.Int)
	case TokenBool:
		return fmt.Sprintf("BOOL(%t)", t.Bool)
	case TokenIdentifier:
		return fmt.Sprintf("IDENTIFIER(%s)", t.Value)
	default:
		return t.Type.String()
	}
}

// LexError reports a character no lexical rule accepts
type LexError struct {
	Char    string
	Message string
	Line    int
	Column  int
}

func (e *LexError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lex error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("lex error at line %d, column %d: unexpected character %q", e.Line, e.Column, e.Char)
}

// Lexer performs lexical analysis of RCL source text
type Lexer struct {
	input   string
	pos     int // current position in input (points to current char)
	readPos int // reading position (after current char)
	ch      byte
	line    int
	column  int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The returned slice always ends with
// a TokenEOF on success.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	line, column := l.line, l.column

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Line: line, Column: column}, nil
	case isLetter(l.ch):
		word := l.readIdentifier()
		tok := Token{Type: LookupIdent(word), Value: word, Line: line, Column: column}
		if tok.Type == TokenBool {
			tok.Bool = strings.EqualFold(word, "TRUE")
		}
		return tok, nil
	case isDigit(l.ch):
		return l.readNumber(line, column)
	}

	if tt, ok := punctuation[l.ch]; ok {
		tok := Token{Type: tt, Value: string(l.ch), Line: line, Column: column}
		l.readChar()
		return tok, nil
	}

	return Token{}, &LexError{Char: string(l.ch), Line: line, Column: column}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads 0x1F (hex), 017 or 0o17 (octal) and 17 (decimal)
func (l *Lexer) readNumber(line, column int) (Token, error) {
	start := l.pos
	base := 10
	digitsFrom := start

	if l.ch == '0' {
		switch next := l.peekChar(); {
		case next == 'x' || next == 'X':
			base = 16
			l.readChar()
			l.readChar()
			digitsFrom = l.pos
			for isHexDigit(l.ch) {
				l.readChar()
			}
		case next == 'o' || next == 'O':
			base = 8
			l.readChar()
			l.readChar()
			digitsFrom = l.pos
			for isDigit(l.ch) {
				l.readChar()
			}
		case isDigit(next):
			base = 8
			l.readChar()
			digitsFrom = l.pos
			for isDigit(l.ch) {
				l.readChar()
			}
		default:
			l.readChar()
		}
	} else {
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	raw := l.input[start:l.pos]
	digits := l.input[digitsFrom:l.pos]
	if digits == "" {
		return Token{}, &LexError{Char: raw, Message: fmt.Sprintf("malformed integer literal %q", raw), Line: line, Column: column}
	}

	value, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		msg := fmt.Sprintf("invalid integer literal %q", raw)
		if base == 8 {
			msg = fmt.Sprintf("invalid octal literal %q", raw)
		}
		return Token{}, &LexError{Char: raw, Message: msg, Line: line, Column: column}
	}
	if value > int64(maxInt) {
		return Token{}, &LexError{Char: raw, Message: fmt.Sprintf("integer literal %q out of range", raw), Line: line, Column: column}
	}

	return Token{Type: TokenInt, Value: raw, Int: int(value), Base: base, Line: line, Column: column}, nil
}

const maxInt = int(^uint(0) >> 1)

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
