package typesystem

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/smasher164/xid"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIllegal
	tokIdent
	tokNumber
	tokString
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokColon
	tokPipe
	tokStar
	tokDot
	tokAssign
)

var tokenNames = map[tokenType]string{
	tokEOF:      "end of input",
	tokIllegal:  "illegal token",
	tokIdent:    "identifier",
	tokNumber:   "number",
	tokString:   "string",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokComma:    "','",
	tokColon:    "':'",
	tokPipe:     "'|'",
	tokStar:     "'*'",
	tokDot:      "'.'",
	tokAssign:   "'='",
}

func (t tokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

var punctuation = map[rune]tokenType{
	'(': tokLParen, ')': tokRParen, '[': tokLBracket, ']': tokRBracket,
	',': tokComma, ':': tokColon, '|': tokPipe, '*': tokStar, '.': tokDot, '=': tokAssign,
}

type token struct {
	Type tokenType
	Pos  int // byte offset
	Data string
}

// lexer splits an annotation into tokens. Identifiers follow Unicode XID rules.
type lexer struct {
	src string
	pos int
}

const eof = -1

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) peekRune() (rune, int) {
	if l.pos >= len(l.src) {
		return eof, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func isIdentStart(ch rune) bool {
	return ch == '_' || xid.Start(ch)
}

func isDecimal(ch rune) bool { return '0' <= ch && ch <= '9' }

func (l *lexer) next() token {
	for {
		ch, w := l.peekRune()
		if ch == eof || !unicode.IsSpace(ch) {
			break
		}
		l.pos += w
	}

	start := l.pos
	ch, w := l.peekRune()
	if ch == eof {
		return token{Type: tokEOF, Pos: start}
	}

	if tt, ok := punctuation[ch]; ok {
		l.pos += w
		return token{Type: tt, Pos: start, Data: string(ch)}
	}

	switch {
	case isIdentStart(ch):
		l.pos += w
		for {
			c, cw := l.peekRune()
			if c == eof || !xid.Continue(c) {
				break
			}
			l.pos += cw
		}
		return token{Type: tokIdent, Pos: start, Data: l.src[start:l.pos]}
	case isDecimal(ch) || ch == '-' || ch == '+':
		return l.lexNumber(start)
	case ch == '"' || ch == '\'':
		return l.lexString(start, ch)
	}

	l.pos += w
	return token{Type: tokIllegal, Pos: start, Data: fmt.Sprintf("unexpected character %q", ch)}
}

func (l *lexer) lexNumber(start int) token {
	if c := l.src[l.pos]; c == '-' || c == '+' {
		l.pos++
	}
	digits := 0
scan:
	for l.pos < len(l.src) {
		c := rune(l.src[l.pos])
		switch {
		case isDecimal(c):
			digits++
		case c == '.' || c == 'e' || c == 'E' || c == '_':
		case (c == '-' || c == '+') && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'):
		default:
			break scan
		}
		l.pos++
	}
	if digits == 0 {
		return token{Type: tokIllegal, Pos: start, Data: "no digits in number"}
	}
	return token{Type: tokNumber, Pos: start, Data: l.src[start:l.pos]}
}

func (l *lexer) lexString(start int, quote rune) token {
	l.pos++
	escaped := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case rune(c) == quote:
			return token{Type: tokString, Pos: start, Data: l.src[start:l.pos]}
		}
	}
	return token{Type: tokIllegal, Pos: start, Data: "string literal not terminated"}
}
