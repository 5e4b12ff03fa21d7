package interpreter

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"FrontDb/internal/storage"
)

func noTables(string) bool { return false }

func TestParseCreate(t *testing.T) {
	l := NewLexer(strings.NewReader(" table people ( id int, name str(10) , age int )\nnext"))

	sch, err := ParseCreate(l, noTables)
	if err != nil {
		t.Fatalf("ParseCreate failed: %v", err)
	}

	expected := []storage.Column{
		{Name: "id", DataType: storage.TypeInt},
		{Name: "name", DataType: storage.TypeStr, Length: 10},
		{Name: "age", DataType: storage.TypeInt},
	}
	if sch.Name != "people" {
		t.Errorf("expected table people, got %q", sch.Name)
	}
	if !reflect.DeepEqual(sch.Columns, expected) {
		t.Errorf("expected columns %+v, got %+v", expected, sch.Columns)
	}

	if word, _ := l.NextWord(); word != "next" {
		t.Errorf("expected the line to be consumed, next word is %q", word)
	}
}

func TestParseCreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
	}{
		{"NotTable", " index i (a int)", nil},
		{"NoParen", " table t a int)", ErrSyntax},
		{"BadType", " table t (a float)", ErrSyntax},
		{"MissingLength", " table t (a str)", ErrSyntax},
		{"ZeroLength", " table t (a str(0))", ErrSyntax},
		{"HugeLength", " table t (a str(70000))", ErrSyntax},
		{"MissingSeparator", " table t (a int b int)", ErrSyntax},
		{"MissingType", " table t (a int, b)", ErrSyntax},
		{"Exists", " table taken (a int)", storage.ErrTableExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(strings.NewReader(tt.input + "\nnext"))

			sch, err := ParseCreate(l, func(name string) bool { return name == "taken" })
			if err == nil {
				t.Fatalf("expected an error, got schema %s", sch)
			}
			if sch != nil {
				t.Errorf("expected no schema on error, got %s", sch)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}

			if word, _ := l.NextWord(); word != "next" {
				t.Errorf("expected the bad line to be discarded, next word is %q", word)
			}
		})
	}
}

func TestParseInsert(t *testing.T) {
	sch := storage.NewSchema("people")
	sch.AddInt("id")
	sch.AddStr("name", 20)
	sch.AddInt("age")

	lookup := func(name string) (*storage.Schema, bool) {
		if name == sch.Name {
			return sch, true
		}
		return nil, false
	}

	tests := []struct {
		name     string
		input    string
		expected storage.Record
	}{
		{"Plain", " into people values (1, bob, 30);", storage.Record{int64(1), "bob", int64(30)}},
		{"Tight", " into people values(2,ann, -4)", storage.Record{int64(2), "ann", int64(-4)}},
		{"InnerComma", " into people values (4, x,y, 5);", storage.Record{int64(4), "x,y", int64(5)}},
		{"InnerParen", " into people values (5, ab(c, 6);", storage.Record{int64(5), "ab(c", int64(6)}},
		{"Wrapped", " into people values (6,\n  'ann lee',\n  7);", storage.Record{int64(6), "ann lee", int64(7)}},
		{"OpenParenWrapped", " into people values (\n8, bo, 9)", storage.Record{int64(8), "bo", int64(9)}},
		{"Quoted", " into people values ( 3 , 'bob smith' , 41 ) ;", storage.Record{int64(3), "bob smith", int64(41)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(strings.NewReader(tt.input + "\nnext"))

			name, rec, err := ParseInsert(l, lookup)
			if err != nil {
				t.Fatalf("ParseInsert failed: %v", err)
			}
			if name != "people" {
				t.Errorf("expected people, got %q", name)
			}
			if !reflect.DeepEqual(rec, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, rec)
			}
			if word, _ := l.NextWord(); word != "next" {
				t.Errorf("expected the line to be consumed, next word is %q", word)
			}
		})
	}
}

func TestParseInsertErrors(t *testing.T) {
	sch := storage.NewSchema("t")
	sch.AddInt("a")
	sch.AddStr("b", 5)

	lookup := func(name string) (*storage.Schema, bool) {
		if name == sch.Name {
			return sch, true
		}
		return nil, false
	}

	tests := []struct {
		name   string
		input  string
		target error
	}{
		{"NoInto", " t values (1, x);", ErrSyntax},
		{"UnknownTable", " into u values (1, x);", storage.ErrTableNotFound},
		{"NoValues", " into t (1, x);", ErrSyntax},
		{"NotAnInteger", " into t values (x, y);", ErrSyntax},
		{"TooFew", " into t values (1", ErrSyntax},
		{"TooMany", " into t values (1, x, 3);", ErrSyntax},
		{"ClosedEarly", " into t values (1);", ErrSyntax},
		{"Unterminated", " into t values (1, 'x);", ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(strings.NewReader(tt.input + "\nnext"))

			_, rec, err := ParseInsert(l, lookup)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v (record %v)", tt.target, err, rec)
			}
			if word, _ := l.NextWord(); word != "next" {
				t.Errorf("expected the bad line to be discarded, next word is %q", word)
			}
		})
	}
}
