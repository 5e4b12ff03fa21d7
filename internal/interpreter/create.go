package interpreter

import (
	"fmt"
	"strconv"

	"FrontDb/internal/storage"
)

const (
	typeInt = "int"
	typeStr = "str"
)

const maxStrLength = 1<<16 - 1

// ParseCreate parses "table <name> ( <field> <int|str(<len>)> , ... )"
// after the create keyword. exists reports whether a table name is taken.
// On any error the rest of the line is discarded and no schema is
// returned, so a half built schema can never be registered.
func ParseCreate(l *Lexer, exists func(name string) bool) (*storage.Schema, error) {
	if tok := l.Next(); tok.Type != IDENT || tok.Literal != "table" {
		l.SkipLine()
		return nil, fmt.Errorf("do not know what to create: %q", tok.Literal)
	}

	nameTok := l.Next()
	if nameTok.Type != IDENT {
		l.SkipLine()
		return nil, fmt.Errorf("do not know what to create: table %q", nameTok.Literal)
	}
	name := nameTok.Literal

	if exists(name) {
		l.SkipLine()
		return nil, fmt.Errorf("table %q: %w", name, storage.ErrTableExists)
	}

	if tok := l.Next(); tok.Type != LPAREN {
		return nil, syntaxError(l, name+" "+tok.Literal)
	}

	sch := storage.NewSchema(name)
	for {
		field := l.Next()
		if field.Type != IDENT {
			return nil, syntaxError(l, field.Literal)
		}

		kind := l.Next()
		switch {
		case kind.Type == IDENT && kind.Literal == typeInt:
			sch.AddInt(field.Literal)
		case kind.Type == IDENT && kind.Literal == typeStr:
			length, err := parseLength(l)
			if err != nil {
				return nil, syntaxError(l, field.Literal+" "+typeStr+err.Error())
			}
			sch.AddStr(field.Literal, length)
		default:
			return nil, syntaxError(l, field.Literal+" "+kind.Literal)
		}

		sep := l.Next()
		if sep.Type == RPAREN {
			l.SkipLine()
			return sch, nil
		}
		if sep.Type != COMMA {
			return nil, syntaxError(l, sep.Literal)
		}
	}
}

// parseLength reads "( <positive int> )". The error text is the part that
// was read, for the syntax error report.
func parseLength(l *Lexer) (uint16, error) {
	if tok := l.Next(); tok.Type != LPAREN {
		return 0, fmt.Errorf(" %s", tok.Literal)
	}

	tok := l.Next()
	n, err := strconv.Atoi(tok.Literal)
	if tok.Type != INT || err != nil || n <= 0 || n > maxStrLength {
		return 0, fmt.Errorf("(%s", tok.Literal)
	}

	if end := l.Next(); end.Type != RPAREN {
		return 0, fmt.Errorf("(%d%s", n, end.Literal)
	}
	return uint16(n), nil
}
