// Package lexer turns intech source text into a stream of tokens.
//
// It is built in two layers, mirroring the split the original C sources
// kept between a character-buffer and the lexer primitives built on top of
// it: Buffer owns lookahead and rollback over the rune stream, and Lexer
// owns token extraction (identifiers, numbers, operators, keywords).
package lexer

import (
	"fmt"
	"strings"

	"github.com/musinux/intech/internal/token"
)

// Buffer is a character-level reader with one-position lookahead and the
// ability to roll back to a previously marked position. It knows nothing
// about tokens.
type Buffer struct {
	runes []rune
	pos   int
	mark  int
}

// NewBuffer wraps src for character-at-a-time scanning.
func NewBuffer(src string) *Buffer {
	return &Buffer{runes: []rune(src)}
}

// Peek returns the rune at the current position without consuming it, or
// rune(0) at end of input.
func (b *Buffer) Peek() rune {
	return b.PeekAt(0)
}

// PeekAt returns the rune offset positions ahead of the current position,
// or rune(0) if that position is past the end of input.
func (b *Buffer) PeekAt(offset int) rune {
	i := b.pos + offset
	if i < 0 || i >= len(b.runes) {
		return rune(0)
	}
	return b.runes[i]
}

// Next consumes and returns the rune at the current position, advancing
// past it. It returns rune(0) at end of input without advancing further.
func (b *Buffer) Next() rune {
	ch := b.Peek()
	if ch != rune(0) {
		b.pos++
	}
	return ch
}

// Mark records the current position so a later Rollback can return here.
func (b *Buffer) Mark() {
	b.mark = b.pos
}

// Rollback resets the position to the last Mark.
func (b *Buffer) Rollback() {
	b.pos = b.mark
}

// Pos returns the current byte-ish (rune) offset, used for diagnostics.
func (b *Buffer) Pos() int {
	return b.pos
}

// Snapshot returns a short window of source text centered on the current
// position, for one-line diagnostic messages.
func (b *Buffer) Snapshot(width int) string {
	start := b.pos - width
	if start < 0 {
		start = 0
	}
	end := b.pos + width
	if end > len(b.runes) {
		end = len(b.runes)
	}
	before := string(b.runes[start:b.pos])
	after := string(b.runes[b.pos:end])
	return fmt.Sprintf("%s<<HERE>>%s", before, after)
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphanum(ch rune) bool {
	return isAlpha(ch) || isDigit(ch)
}

// Lexer scans a Buffer into a stream of token.Token values.
type Lexer struct {
	buf *Buffer
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{buf: NewBuffer(src)}
}

// Pos returns the lexer's current position in the source, for diagnostics.
func (l *Lexer) Pos() int {
	return l.buf.Pos()
}

// Snapshot returns a short window of source around the current position.
func (l *Lexer) Snapshot() string {
	return l.buf.Snapshot(20)
}

func (l *Lexer) skipBlanks() {
	for isWhitespace(l.buf.Peek()) {
		l.buf.Next()
	}
}

// NextToken scans and returns the next token.
//
// valueContext tells the lexer whether a leading '-' should be folded into
// a numeric literal (true, a value is expected here) or scanned as the
// binary minus operator (false). The parser derives this from the type of
// the previously scanned token; see token.IsValueContext.
func (l *Lexer) NextToken(valueContext bool) token.Token {
	l.skipBlanks()

	pos := l.buf.Pos()
	ch := l.buf.Peek()

	switch {
	case ch == rune(0):
		return token.Token{Type: token.EOF, Pos: pos}

	case ch == '-' && valueContext && isDigit(l.buf.PeekAt(1)):
		return l.readNumber(pos)

	case isDigit(ch):
		return l.readNumber(pos)

	case isAlpha(ch):
		ident := l.readIdentifier()
		return token.Token{Type: token.LookupIdentifier(ident), Literal: ident, Pos: pos}

	default:
		return l.readOperator(pos)
	}
}

func (l *Lexer) readDigits() string {
	var sb strings.Builder
	for isDigit(l.buf.Peek()) {
		sb.WriteRune(l.buf.Next())
	}
	return sb.String()
}

// readNumber scans an (optionally negative) sequence of digits. The
// language has no floating point, so there is no fractional part.
func (l *Lexer) readNumber(pos int) token.Token {
	var sb strings.Builder
	if l.buf.Peek() == '-' {
		sb.WriteRune(l.buf.Next())
	}
	sb.WriteString(l.readDigits())
	return token.Token{Type: token.NUMBER, Literal: sb.String(), Pos: pos}
}

func (l *Lexer) readIdentifier() string {
	var sb strings.Builder
	for isAlphanum(l.buf.Peek()) {
		sb.WriteRune(l.buf.Next())
	}
	return sb.String()
}

func (l *Lexer) readOperator(pos int) token.Token {
	ch := l.buf.Next()

	two := func(second rune, twoType, oneType token.Type) token.Token {
		if l.buf.Peek() == second {
			l.buf.Next()
			return token.Token{Type: twoType, Literal: string(ch) + string(second), Pos: pos}
		}
		return token.Token{Type: oneType, Literal: string(ch), Pos: pos}
	}

	switch ch {
	case '+':
		return token.Token{Type: token.PLUS, Literal: "+", Pos: pos}
	case '-':
		return token.Token{Type: token.MINUS, Literal: "-", Pos: pos}
	case '*':
		return token.Token{Type: token.ASTERISK, Literal: "*", Pos: pos}
	case '/':
		return token.Token{Type: token.SLASH, Literal: "/", Pos: pos}
	case '(':
		return token.Token{Type: token.LPAREN, Literal: "(", Pos: pos}
	case ')':
		return token.Token{Type: token.RPAREN, Literal: ")", Pos: pos}
	case '{':
		return token.Token{Type: token.LBRACE, Literal: "{", Pos: pos}
	case '}':
		return token.Token{Type: token.RBRACE, Literal: "}", Pos: pos}
	case ',':
		return token.Token{Type: token.COMMA, Literal: ",", Pos: pos}
	case ';':
		return token.Token{Type: token.SEMICOLON, Literal: ";", Pos: pos}
	case ':':
		return token.Token{Type: token.COLON, Literal: ":", Pos: pos}
	case '<':
		return two('=', token.LTE, token.LT)
	case '>':
		return two('=', token.GTE, token.GT)
	case '=':
		return two('=', token.EQ, token.ASSIGN)
	case '!':
		if l.buf.Peek() == '=' {
			l.buf.Next()
			return token.Token{Type: token.NEQ, Literal: "!=", Pos: pos}
		}
		return token.Token{Type: token.ILLEGAL, Literal: "!", Pos: pos}
	default:
		return token.Token{Type: token.ILLEGAL, Literal: string(ch), Pos: pos}
	}
}
