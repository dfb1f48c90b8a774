package lexer

import (
	"testing"

	"github.com/musinux/intech/internal/token"
)

// fetch scans the whole input, threading IsValueContext the way the
// parser does, and returns the resulting tokens.
func fetch(src string) []token.Token {
	l := New(src)
	var out []token.Token
	prev := token.Token{}
	for {
		tok := l.NextToken(token.IsValueContext(prev.Type))
		out = append(out, tok)
		if tok.Type == token.EOF {
			return out
		}
		prev = tok
	}
}

func TestNumbersAndLeadingMinus(t *testing.T) {
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.NUMBER, "-3"},
		{token.MINUS, "-"},
		{token.NUMBER, "17"},
		{token.MINUS, "-"},
		{token.NUMBER, "-3"},
		{token.EOF, ""},
	}

	// A '-' folds into the literal only where a value is expected: at the
	// start and right after an operator, but not right after a number.
	toks := fetch(`-3 -17 - -3`)
	if len(toks) != len(tests) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(tests))
	}
	for i, tt := range tests {
		if toks[i].Type != tt.expectedType {
			t.Errorf("tests[%d]: type = %q, want %q", i, toks[i].Type, tt.expectedType)
		}
		if toks[i].Literal != tt.expectedLiteral {
			t.Errorf("tests[%d]: literal = %q, want %q", i, toks[i].Literal, tt.expectedLiteral)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / ( ) { } , ; : < <= > >= == !=`

	tests := []token.Type{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH,
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.COMMA, token.SEMICOLON, token.COLON,
		token.LT, token.LTE, token.GT, token.GTE, token.EQ, token.NEQ,
		token.EOF,
	}

	toks := fetch(input)
	if len(toks) != len(tests) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(tests))
	}
	for i, want := range tests {
		if toks[i].Type != want {
			t.Errorf("tests[%d]: type = %q, want %q", i, toks[i].Type, want)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := `fonction entier rien si sinon tantque retourner ET OU compte_1`

	tests := []token.Type{
		token.FUNCTION, token.INTEGER, token.VOID, token.IF, token.ELSE,
		token.WHILE, token.RETURN, token.AND, token.OR, token.IDENT,
		token.EOF,
	}

	toks := fetch(input)
	if len(toks) != len(tests) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(tests))
	}
	for i, want := range tests {
		if toks[i].Type != want {
			t.Errorf("tests[%d]: type = %q, want %q", i, toks[i].Type, want)
		}
	}
}

func TestSnapshotMarksPosition(t *testing.T) {
	l := New(`entier x = 3;`)
	l.NextToken(true)
	snap := l.Snapshot()
	if snap == "" {
		t.Fatalf("Snapshot() returned empty string")
	}
}
