package jafscanner

import (
	"strconv"
	"strings"

	"github.com/mna/ain-tools/internal/jaftoken"
)

// number scans an integer or float literal starting at the current
// character, matching JAF's C-style literal grammar: decimal, 0x/0X hex,
// 0o/0O octal, 0b/0B binary integers, and decimal floats with an optional
// exponent. There is no digit-separator syntax in JAF, unlike the teacher's
// Lua-like numbers.
func (s *Scanner) number() (tok jaftoken.Token, lit string) {
	start := s.off
	tok = jaftoken.INTLIT

	if s.cur == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.advance()
		s.advance()
		s.digits(isHexDigit)
		return tok, string(s.src[start:s.off])
	}
	if s.cur == '0' && (s.peek() == 'o' || s.peek() == 'O') {
		s.advance()
		s.advance()
		s.digits(isOctalDigit)
		return tok, string(s.src[start:s.off])
	}
	if s.cur == '0' && (s.peek() == 'b' || s.peek() == 'B') {
		s.advance()
		s.advance()
		s.digits(isBinaryDigit)
		return tok, string(s.src[start:s.off])
	}

	s.digits(isDecimalDigit)
	if s.cur == '.' {
		tok = jaftoken.FLOATLIT
		s.advance()
		s.digits(isDecimalDigit)
	}
	if s.cur == 'e' || s.cur == 'E' {
		tok = jaftoken.FLOATLIT
		s.advance()
		if s.cur == '+' || s.cur == '-' {
			s.advance()
		}
		s.digits(isDecimalDigit)
	}
	return tok, string(s.src[start:s.off])
}

func (s *Scanner) digits(match func(rune) bool) {
	for match(s.cur) {
		s.advance()
	}
}

func isDecimalDigit(r rune) bool { return r >= '0' && r <= '9' }
func isOctalDigit(r rune) bool   { return r >= '0' && r <= '7' }
func isBinaryDigit(r rune) bool  { return r == '0' || r == '1' }
func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

// numberToInt converts a scanned integer literal (with its C-style prefix,
// if any) to an int64.
func numberToInt(lit string) (int64, error) {
	base := 10
	digits := lit
	switch {
	case strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X"):
		base, digits = 16, lit[2:]
	case strings.HasPrefix(lit, "0o") || strings.HasPrefix(lit, "0O"):
		base, digits = 8, lit[2:]
	case strings.HasPrefix(lit, "0b") || strings.HasPrefix(lit, "0B"):
		base, digits = 2, lit[2:]
	}
	return strconv.ParseInt(digits, base, 64)
}

// numberToFloat converts a scanned float literal to a float64.
func numberToFloat(lit string) (float64, error) {
	return strconv.ParseFloat(lit, 64)
}
