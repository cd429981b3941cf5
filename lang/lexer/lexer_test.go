package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hinton-lang/hinton/lang/token"
)

func kinds(t *testing.T, list *token.List) []token.Kind {
	t.Helper()
	out := make([]token.Kind, list.Len())
	for i := 0; i < list.Len(); i++ {
		out[i] = list.Get(token.Idx(i)).Kind
	}
	return out
}

func TestLexPunctuationAndKeywords(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		want []token.Kind
	}{
		{"let decl", "let x = 12;", []token.Kind{token.LET, token.IDENTIFIER, token.ASSIGN, token.INT_LIT, token.SEMI, token.EOF}},
		{"two-char operators", "<= >= == != && || ?? << >>", []token.Kind{
			token.LE, token.GE, token.EQEQ, token.NE, token.ANDAND, token.OROR,
			token.QUESTIONQUESTION, token.SHL, token.SHR, token.EOF,
		}},
		{"range operators", "0..10 0..=10", []token.Kind{
			token.INT_LIT, token.DOTDOT, token.INT_LIT,
			token.INT_LIT, token.DOTDOTEQ, token.INT_LIT, token.EOF,
		}},
		{"comment skipped", "let x = 1 # trailing comment\n", []token.Kind{token.LET, token.IDENTIFIER, token.ASSIGN, token.INT_LIT, token.EOF}},
		{"keywords", "func return if else while loop for in break continue class new", []token.Kind{
			token.FUNC, token.RETURN, token.IF, token.ELSE, token.WHILE, token.LOOP,
			token.FOR, token.IN, token.BREAK, token.CONTINUE, token.CLASS, token.NEW, token.EOF,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			got := kinds(t, Lex([]byte(tc.src)))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestLexNumericLiterals(t *testing.T) {
	cases := []struct {
		desc, src string
		want      token.Kind
	}{
		{"decimal int", "123", token.INT_LIT},
		{"decimal float", "1.5", token.FLOAT_LIT},
		{"hex", "0xFF", token.INT_LIT},
		{"octal", "0o17", token.INT_LIT},
		{"binary", "0b1010", token.INT_LIT},
		{"scientific", "1e10", token.FLOAT_LIT},
		{"scientific with sign", "1.2e-3", token.FLOAT_LIT},
		{"int with underscore separators", "1_000_000", token.INT_LIT},
		{"trailing dot not a float", "1.toString", token.INT_LIT},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			list := Lex([]byte(tc.src))
			require.Equal(t, tc.want, list.Get(0).Kind)
		})
	}
}

func TestLexPlainString(t *testing.T) {
	list := Lex([]byte(`"hello world"`))
	require.Equal(t, []token.Kind{token.STR_LIT, token.EOF}, kinds(t, list))
	require.Equal(t, "hello world", token.Unquote(list.Lexeme(0)))
}

func TestLexInterpolatedString(t *testing.T) {
	list := Lex([]byte(`"a${b}c"`))
	want := []token.Kind{
		token.START_INTERPOL_STR,
		token.STR_LIT,
		token.START_INTERPOL_EXPR,
		token.IDENTIFIER,
		token.END_INTERPOL_EXPR,
		token.STR_LIT,
		token.END_INTERPOL_STR,
		token.EOF,
	}
	require.Equal(t, want, kinds(t, list))
}

func TestLexInterpolatedStringWithNestedBraces(t *testing.T) {
	list := Lex([]byte(`"x=${ {1: 2}[1] }"`))
	got := kinds(t, list)
	require.Equal(t, token.START_INTERPOL_STR, got[0])
	require.Contains(t, got, token.LBRACE)
	require.Contains(t, got, token.RBRACE)
	require.Equal(t, token.EOF, got[len(got)-1])
}

func TestLexLineTracking(t *testing.T) {
	list := Lex([]byte("let x = 1\nlet y = 2\n"))
	loc := list.Loc(token.Idx(5)) // the "y" identifier on the second line
	require.Equal(t, 2, loc.Line)
}
