package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := EOF; k <= NEW; k++ {
		if k.String() == "" {
			t.Errorf("missing string representation of kind %d", k)
		}
	}
}

func TestKeywordsRoundTrip(t *testing.T) {
	for lexeme, kind := range Keywords {
		require.Equal(t, lexeme, names[kind], "keyword lexeme should match its Kind's display name")
	}
}

func TestListLexemeAndLoc(t *testing.T) {
	src := []byte("let x = 12\n")
	list := &List{
		Src: src,
		Toks: []Token{
			{Kind: LET, Span: Span{0, 3}, Line: 1, LineStart: 0},
			{Kind: IDENTIFIER, Span: Span{4, 5}, Line: 1, LineStart: 0},
			{Kind: ASSIGN, Span: Span{6, 7}, Line: 1, LineStart: 0},
			{Kind: INT_LIT, Span: Span{8, 10}, Line: 1, LineStart: 0},
			{Kind: EOF, Span: Span{11, 11}, Line: 2, LineStart: 11},
		},
	}

	require.Equal(t, 5, list.Len())
	require.Equal(t, "let", list.Lexeme(0))
	require.Equal(t, "x", list.Lexeme(1))
	require.Equal(t, "12", list.Lexeme(3))
	require.Equal(t, "\x00", list.Lexeme(4))

	loc := list.Loc(1)
	require.Equal(t, Loc{Line: 1, ColStart: 5, ColEnd: 6}, loc)
}

func TestUnquote(t *testing.T) {
	cases := []struct {
		desc, in, want string
	}{
		{"plain quoted", `"hello"`, "hello"},
		{"newline escape", `"a\nb"`, "a\nb"},
		{"tab escape", `"a\tb"`, "a\tb"},
		{"escaped quote", `"say \"hi\""`, `say "hi"`},
		{"escaped backslash", `"a\\b"`, `a\b`},
		{"bare lexeme no quotes", `abc`, "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.want, Unquote(tc.in))
		})
	}
}
