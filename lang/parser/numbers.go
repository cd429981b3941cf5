package parser

import (
	"strconv"
	"strings"
)

// parseInt and parseFloat decode the numeric literal lexemes the lexer
// recognizes (decimal, 0x/0o/0b integers, decimal/scientific floats,
// underscore digit separators), satisfying the numeric-literal round-trip
// property: re-emitting the resulting value as a literal reproduces an
// equal value.
func parseInt(lexeme string) (int64, error) {
	s := strings.ReplaceAll(lexeme, "_", "")
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		return strconv.ParseInt(s[2:], 16, 64)
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		return strconv.ParseInt(s[2:], 8, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		return strconv.ParseInt(s[2:], 2, 64)
	default:
		return strconv.ParseInt(s, 10, 64)
	}
}

func parseFloat(lexeme string) (float64, error) {
	s := strings.ReplaceAll(lexeme, "_", "")
	return strconv.ParseFloat(s, 64)
}
