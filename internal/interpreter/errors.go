package interpreter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyntax        = errors.New("syntax error")
	ErrNotSupported  = errors.New("not supported")
	ErrTooManyTokens = errors.New("too many substrings")
	ErrNoDatabase    = errors.New("no database open")
)

// FatalError ends the session. Everything else is reported and the session
// goes on with the next command.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatalf(format string, v ...any) error {
	return &FatalError{Err: fmt.Errorf(format, v...)}
}

// syntaxError discards the rest of the line and reports it along with the
// offending text.
func syntaxError(l *Lexer, near string) error {
	rest := strings.TrimSpace(l.SkipLine())
	if rest == "" {
		return fmt.Errorf("%w near >>>%s<<<", ErrSyntax, near)
	}
	return fmt.Errorf("%w near >>>%s<<< %s", ErrSyntax, near, rest)
}
