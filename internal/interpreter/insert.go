package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"FrontDb/internal/storage"
)

// ParseInsert parses "into <name> values ( <value> , ... ) ;" after the
// insert keyword, reading one value per schema field in field order. The
// rest of the line is always consumed.
func ParseInsert(l *Lexer, lookup func(name string) (*storage.Schema, bool)) (string, storage.Record, error) {
	if tok := l.Next(); tok.Type != IDENT || tok.Literal != "into" {
		return "", nil, syntaxError(l, "insert "+tok.Literal)
	}

	nameTok := l.Next()
	if nameTok.Type != IDENT {
		return "", nil, syntaxError(l, "insert into "+nameTok.Literal)
	}
	name := nameTok.Literal

	sch, ok := lookup(name)
	if !ok {
		l.SkipLine()
		return "", nil, fmt.Errorf("schema %q: %w", name, storage.ErrTableNotFound)
	}

	if tok := l.Next(); tok.Type != IDENT || tok.Literal != "values" {
		return "", nil, syntaxError(l, name+" "+tok.Literal)
	}
	if tok := l.Next(); tok.Type != LPAREN {
		return "", nil, syntaxError(l, "values "+tok.Literal)
	}

	rec := make(storage.Record, 0, len(sch.Columns))
	// sep is set while the list is open right after '(' or a ','. Only
	// then may the values go on at the next line.
	sep := true
	for i, col := range sch.Columns {
		if i > 0 && !sep {
			sep = l.SkipSeparator(',')
		}

		if l.AtLineEnd() {
			if !sep {
				l.SkipLine()
				return "", nil, tooFewValues(name, len(sch.Columns), i)
			}
			l.skipWhitespace()
		}
		if l.AtListEnd() {
			l.SkipLine()
			return "", nil, tooFewValues(name, len(sch.Columns), i)
		}

		switch col.DataType {
		case storage.TypeInt:
			tok := l.Next()
			v, err := strconv.ParseInt(tok.Literal, 10, 64)
			if tok.Type != INT || err != nil {
				return "", nil, syntaxError(l, col.Name+" "+tok.Literal)
			}
			rec = append(rec, v)
			sep = false
		case storage.TypeStr:
			v, trimmed, err := l.ReadValue()
			if err != nil {
				l.SkipLine()
				return "", nil, fmt.Errorf("field %s: %w", col.Name, err)
			}
			rec = append(rec, v)

			closed := strings.ContainsAny(trimmed, ");")
			if closed && i < len(sch.Columns)-1 {
				l.SkipLine()
				return "", nil, tooFewValues(name, len(sch.Columns), i+1)
			}
			sep = strings.HasPrefix(trimmed, ",")
		}
	}

	if rest := strings.TrimRight(l.SkipLine(), "); \t"); strings.TrimSpace(rest) != "" {
		rest = strings.TrimSpace(rest)
		return "", nil, fmt.Errorf("%w: %s expects %d values, extra input %q", ErrSyntax, name, len(sch.Columns), rest)
	}

	return name, rec, nil
}

func tooFewValues(name string, want, got int) error {
	return fmt.Errorf("%w: %s expects %d values, got %d", ErrSyntax, name, want, got)
}
