package interpreter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type TokenType string

type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT = "IDENT" // t, name, str, ...
	INT   = "INT"   // 1343456, -7
	ALL   = "*"

	// Comparison operators share one token type, the literal tells them apart.
	OPERATOR = "OPERATOR"

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	LPAREN    = "("
	RPAREN    = ")"

	// Keywords of a select clause
	FROM  = "FROM"
	WHERE = "WHERE"
)

// Lexer reads the command stream. It never backtracks further than the
// byte it is looking at.
type Lexer struct {
	r    *bufio.Reader
	line int
	err  error
}

func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r), line: 1}
}

// Line is the 1-based line the cursor is on.
func (l *Lexer) Line() int {
	return l.line
}

func (l *Lexer) peekChar() (byte, bool) {
	b, err := l.r.Peek(1)
	if err != nil || len(b) == 0 {
		l.setErr(err)
		return 0, false
	}
	return b[0], true
}

func (l *Lexer) readChar() (byte, bool) {
	ch, err := l.r.ReadByte()
	if err != nil {
		l.setErr(err)
		return 0, false
	}
	if ch == '\n' {
		l.line++
	}
	return ch, true
}

func (l *Lexer) setErr(err error) {
	if err != nil && !errors.Is(err, io.EOF) && l.err == nil {
		l.err = err
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		ch, ok := l.peekChar()
		if !ok || !isSpace(ch) {
			return
		}
		l.readChar()
	}
}

// skipBlanks skips whitespace without crossing a newline.
func (l *Lexer) skipBlanks() {
	for {
		ch, ok := l.peekChar()
		if !ok || !isBlank(ch) {
			return
		}
		l.readChar()
	}
}

// NextWord returns the next maximal run of non-whitespace characters. It
// returns io.EOF once the input is exhausted.
func (l *Lexer) NextWord() (string, error) {
	l.skipWhitespace()

	var sb strings.Builder
	for {
		ch, ok := l.peekChar()
		if !ok || isSpace(ch) {
			break
		}
		l.readChar()
		sb.WriteByte(ch)
	}

	if sb.Len() == 0 {
		if l.err != nil {
			return "", l.err
		}
		return "", io.EOF
	}
	return sb.String(), nil
}

// SkipLine discards everything up to and including the next newline and
// returns what it discarded, without the newline.
func (l *Lexer) SkipLine() string {
	var sb strings.Builder
	for {
		ch, ok := l.readChar()
		if !ok || ch == '\n' {
			break
		}
		sb.WriteByte(ch)
	}
	return strings.TrimRight(sb.String(), "\r")
}

// ReadUntil returns the raw text up to delim and consumes delim. The bool
// is false when the input ended first.
func (l *Lexer) ReadUntil(delim byte) (string, bool) {
	var sb strings.Builder
	for {
		ch, ok := l.readChar()
		if !ok {
			return sb.String(), false
		}
		if ch == delim {
			return sb.String(), true
		}
		sb.WriteByte(ch)
	}
}

// AtLineEnd skips blanks and reports whether the current line has no more
// characters.
func (l *Lexer) AtLineEnd() bool {
	l.skipBlanks()
	ch, ok := l.peekChar()
	return !ok || ch == '\n' || ch == '\r'
}

// SkipSeparator consumes one sep on the current line, if present.
func (l *Lexer) SkipSeparator(sep byte) bool {
	l.skipBlanks()
	if ch, ok := l.peekChar(); ok && ch == sep {
		l.readChar()
		return true
	}
	return false
}

// Next returns the next punctuation-aware token: parentheses, commas and
// semicolons are tokens of their own, everything else is a word.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch, ok := l.peekChar()
	if !ok {
		return Token{Type: EOF}
	}

	switch ch {
	case '(':
		l.readChar()
		return Token{Type: LPAREN, Literal: "("}
	case ')':
		l.readChar()
		return Token{Type: RPAREN, Literal: ")"}
	case ',':
		l.readChar()
		return Token{Type: COMMA, Literal: ","}
	case ';':
		l.readChar()
		return Token{Type: SEMICOLON, Literal: ";"}
	}

	var sb strings.Builder
	for {
		ch, ok := l.peekChar()
		if !ok || isSpace(ch) || isPunct(ch) {
			break
		}
		l.readChar()
		sb.WriteByte(ch)
	}

	word := sb.String()
	if isInteger(word) {
		return Token{Type: INT, Literal: word}
	}
	return Token{Type: IDENT, Literal: word}
}

// ReadValue reads one string value of a value list. A value opened by a
// quote runs to the matching quote and may contain blanks. Otherwise it is
// the next word with trailing ',', ')' and ';' removed, though never its
// first character. The removed suffix is returned as well, so the caller
// can tell whether a separator or the end of the list followed the value.
func (l *Lexer) ReadValue() (value, trimmed string, err error) {
	l.skipBlanks()

	ch, ok := l.peekChar()
	if !ok || ch == '\n' {
		return "", "", fmt.Errorf("%w: missing value", ErrSyntax)
	}

	if ch == '"' || ch == '\'' {
		quote := ch
		l.readChar()
		var sb strings.Builder
		for {
			c, ok := l.peekChar()
			if !ok || c == '\n' {
				return "", "", fmt.Errorf("%w: unterminated string %c%s", ErrSyntax, quote, sb.String())
			}
			l.readChar()
			if c == quote {
				return sb.String(), "", nil
			}
			sb.WriteByte(c)
		}
	}

	var sb strings.Builder
	for {
		c, ok := l.peekChar()
		if !ok || isSpace(c) {
			break
		}
		l.readChar()
		sb.WriteByte(c)
	}

	word := sb.String()
	end := len(word)
	for end > 1 && isValueEnd(word[end-1]) {
		end--
	}
	return word[:end], word[end:], nil
}

// AtListEnd skips blanks and reports whether a value list is closed at the
// cursor.
func (l *Lexer) AtListEnd() bool {
	l.skipBlanks()
	ch, ok := l.peekChar()
	return ok && (ch == ')' || ch == ';')
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isValueEnd(ch byte) bool {
	return ch == ',' || ch == ')' || ch == ';'
}

func isPunct(ch byte) bool {
	return ch == '(' || ch == ')' || ch == ',' || ch == ';'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

// isInteger accepts an optional sign followed by at least one digit.
func isInteger(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
