package storage

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TypeInt ColumnType = iota
	TypeStr
)

const MagicNumber uint32 = 0x46524E54
const CurrentVersion uint16 = 1

const (
	DatabaseDir   = "db"
	FileExtension = ".tbl"
	ViewPrefix    = "tmp_"
)

var (
	ErrClosed         = errors.New("database is closed")
	ErrInvalidSchema  = errors.New("invalid schema")
	ErrTableExists    = errors.New("table already exists")
	ErrTableNotFound  = errors.New("table does not exist")
	ErrColumnNotFound = errors.New("column does not exist")
	ErrTypeMismatch   = errors.New("data type mismatch")
	ErrStringTooLong  = errors.New("string too long")
	ErrCorruptFile    = errors.New("corrupt table file")
	ErrBadOperator    = errors.New("unknown comparison operator")
)

type ColumnType int8

// Column describes one field of a schema. Length only applies to TypeStr.
type Column struct {
	Name     string
	DataType ColumnType
	Length   uint16
}

type Schema struct {
	Name    string
	Columns []Column
}

// Record holds one value per schema column: int64 for TypeInt, string for
// TypeStr.
type Record []any

type Table struct {
	Schema    *Schema
	Rows      []Record
	Transient bool
}

func (t *Table) Name() string {
	return t.Schema.Name
}

func NewSchema(name string) *Schema {
	return &Schema{Name: name}
}

func (s *Schema) AddInt(name string) {
	s.Columns = append(s.Columns, Column{Name: name, DataType: TypeInt})
}

func (s *Schema) AddStr(name string, length uint16) {
	s.Columns = append(s.Columns, Column{Name: name, DataType: TypeStr, Length: length})
}

func (s *Schema) ColumnIndex(name string) (int, bool) {
	for i, col := range s.Columns {
		if col.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (s *Schema) Validate() error {
	if !validTableName(s.Name) {
		return fmt.Errorf("%w: bad table name %q", ErrInvalidSchema, s.Name)
	}

	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: table %s must have at least one column", ErrInvalidSchema, s.Name)
	}

	for i, col := range s.Columns {
		if col.Name == "" {
			return fmt.Errorf("%w: column name cannot be empty", ErrInvalidSchema)
		}

		if col.DataType == TypeStr && col.Length == 0 {
			return fmt.Errorf("%w: string column %s length cannot be zero", ErrInvalidSchema, col.Name)
		}

		for j := i + 1; j < len(s.Columns); j++ {
			if col.Name == s.Columns[j].Name {
				return fmt.Errorf("%w: duplicate column name %s", ErrInvalidSchema, col.Name)
			}
		}
	}

	return nil
}

// String renders the schema the way it is declared in a create command.
func (s *Schema) String() string {
	fields := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		fields[i] = col.Name + " " + col.TypeString()
	}
	return s.Name + " (" + strings.Join(fields, ", ") + ")"
}

func (c Column) TypeString() string {
	if c.DataType == TypeStr {
		return fmt.Sprintf("str(%d)", c.Length)
	}
	return c.DataType.String()
}

func (c ColumnType) String() string {
	switch c {
	case TypeInt:
		return "int"
	case TypeStr:
		return "str"
	default:
		return "unknown"
	}
}

// Check verifies that a record conforms to the schema.
func (s *Schema) Check(rec Record) error {
	if len(rec) != len(s.Columns) {
		return fmt.Errorf("%w: table %s expects %d values, got %d", ErrTypeMismatch, s.Name, len(s.Columns), len(rec))
	}

	for i, col := range s.Columns {
		switch v := rec[i].(type) {
		case int64:
			if col.DataType != TypeInt {
				return fmt.Errorf("%w for column %s", ErrTypeMismatch, col.Name)
			}
		case string:
			if col.DataType != TypeStr {
				return fmt.Errorf("%w for column %s", ErrTypeMismatch, col.Name)
			}
			if len(v) > int(col.Length) {
				return fmt.Errorf("%w for column %s: %d > %d", ErrStringTooLong, col.Name, len(v), col.Length)
			}
		default:
			return fmt.Errorf("%w: unsupported value %T for column %s", ErrTypeMismatch, v, col.Name)
		}
	}

	return nil
}

func validTableName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if !('a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || '0' <= ch && ch <= '9' || ch == '_') {
			return false
		}
	}
	return true
}

type Operator string

const (
	OpEq        Operator = "="
	OpNotEq     Operator = "!="
	OpLessGreat Operator = "<>"
	OpLess      Operator = "<"
	OpLessEq    Operator = "<="
	OpGreat     Operator = ">"
	OpGreatEq   Operator = ">="
)

func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case OpEq, OpNotEq, OpLessGreat, OpLess, OpLessEq, OpGreat, OpGreatEq:
		return op, nil
	}
	return "", fmt.Errorf("%w %q", ErrBadOperator, s)
}

// Predicate is a single attribute/operator/integer comparison.
type Predicate struct {
	Attr  string
	Op    Operator
	Value int64
}

func (p Predicate) Matches(v int64) bool {
	switch p.Op {
	case OpEq:
		return v == p.Value
	case OpNotEq, OpLessGreat:
		return v != p.Value
	case OpLess:
		return v < p.Value
	case OpLessEq:
		return v <= p.Value
	case OpGreat:
		return v > p.Value
	case OpGreatEq:
		return v >= p.Value
	}
	return false
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %d", p.Attr, p.Op, p.Value)
}
