package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"FrontDb/internal/storage"
)

// MaxTargets bounds the attribute list of a select.
const MaxTargets = 10

const Wildcard = "*"

type Query struct {
	Targets []string
	Source  string
	Where   *storage.Predicate
}

func (q *Query) IsWildcard() bool {
	return len(q.Targets) > 0 && q.Targets[0] == Wildcard
}

// ParseQuery parses the clause read between select and the closing ';':
// "<targets> from <table> [where <attr> <op> <int>]".
func ParseQuery(clause string) (*Query, error) {
	toks := NewClauseLexer(clause).Tokens()

	from := -1
	for i, tok := range toks {
		if tok.Type == FROM {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, fmt.Errorf("select %s: from which table to select?", strings.TrimSpace(clause))
	}

	source := toks[from+1]
	if source.Type != IDENT {
		return nil, fmt.Errorf("select from what?")
	}

	targets, err := Split(clause[:toks[from].Pos], ',', MaxTargets)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", source.Literal, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("select from %s: select what?", source.Literal)
	}

	q := &Query{Targets: targets, Source: source.Literal}

	rest := toks[from+2:]
	if rest[0].Type == EOF {
		return q, nil
	}

	tail := strings.TrimSpace(clause[rest[0].Pos:])
	if rest[0].Type != WHERE {
		return nil, fmt.Errorf("query %q is %w", tail, ErrNotSupported)
	}

	where := strings.TrimSpace(clause[rest[1].Pos:])
	pred, err := parsePredicate(rest[1:])
	if err != nil {
		return nil, fmt.Errorf("query %q is %w", where, ErrNotSupported)
	}
	q.Where = pred

	return q, nil
}

// parsePredicate accepts exactly "<attr> <op> <int>", three tokens apart
// from each other.
func parsePredicate(toks []Token) (*storage.Predicate, error) {
	if len(toks) != 4 || toks[3].Type != EOF {
		return nil, ErrNotSupported
	}

	attr, op, lit := toks[0], toks[1], toks[2]
	if attr.Type != IDENT || op.Type != OPERATOR || lit.Type != INT {
		return nil, ErrNotSupported
	}
	if adjacent(attr, op) || adjacent(op, lit) {
		return nil, ErrNotSupported
	}

	operator, err := storage.ParseOperator(op.Literal)
	if err != nil {
		return nil, err
	}

	value, err := strconv.ParseInt(lit.Literal, 10, 64)
	if err != nil {
		return nil, err
	}

	return &storage.Predicate{Attr: attr.Literal, Op: operator, Value: value}, nil
}

// adjacent reports whether b starts right where a ends.
func adjacent(a, b Token) bool {
	return a.Pos+len(a.Literal) == b.Pos
}
