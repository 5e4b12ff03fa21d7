package interpreter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"FrontDb/internal/storage"
)

type Command int

const (
	SyntaxErrorCmd Command = iota
	QuitCmd
	HelpCmd
	SetDatabaseCmd
	ShowDatabaseCmd
	PrintCmd
	CreateTableCmd
	DropTableCmd
	InsertCmd
	SelectCmd
	CommentCmd
)

var commands = map[string]Command{
	"quit":     QuitCmd,
	"help":     HelpCmd,
	"database": SetDatabaseCmd,
	"show":     ShowDatabaseCmd,
	"print":    PrintCmd,
	"create":   CreateTableCmd,
	"drop":     DropTableCmd,
	"insert":   InsertCmd,
	"select":   SelectCmd,
}

// LookupCommand maps the leading word of a command. Keywords are case
// sensitive; a word starting with '#' opens a comment.
func LookupCommand(word string) Command {
	if strings.HasPrefix(word, "#") {
		return CommentCmd
	}
	if cmd, ok := commands[word]; ok {
		return cmd
	}
	return SyntaxErrorCmd
}

func (c Command) String() string {
	switch c {
	case QuitCmd:
		return "quit"
	case HelpCmd:
		return "help"
	case SetDatabaseCmd:
		return "database"
	case ShowDatabaseCmd:
		return "show"
	case PrintCmd:
		return "print"
	case CreateTableCmd:
		return "create"
	case DropTableCmd:
		return "drop"
	case InsertCmd:
		return "insert"
	case SelectCmd:
		return "select"
	case CommentCmd:
		return "#"
	default:
		return "syntax error"
	}
}

// dispatch runs the handler of one command. Quit is handled by the loop.
func (s *Session) dispatch(cmd Command, word string) error {
	switch cmd {
	case CommentCmd:
		s.in.SkipLine()
		return nil
	case HelpCmd:
		s.showHelp()
		return nil
	case SetDatabaseCmd:
		return s.setDatabase()
	case ShowDatabaseCmd:
		return s.showDatabase()
	case PrintCmd:
		s.log.Force("%s", strings.TrimSpace(s.in.SkipLine()))
		return nil
	case CreateTableCmd:
		return s.createTable()
	case DropTableCmd:
		return s.dropTable()
	case InsertCmd:
		return s.insertRow()
	case SelectCmd:
		return s.selectRows()
	default:
		return syntaxError(s.in, word)
	}
}

const helpText = `You can run the following commands:
 - help
 - quit
 - # some comments in the rest of a line
 - print text
 - database /the/place/of/yourdb
 - show database
 - create table table_name ( field_name field_type, ... )
     field_type is int or str(length)
 - drop table table_name ;  (CAUTION: the file will be deleted!!!)
 - insert into table_name values ( value_1, value_2, ... ) ;
 - select attr_1, attr_2, ... from table_name [where attr op integer] ;
     select * from table_name selects every field
     op is one of = != <> < <= > >=
`

func (s *Session) showHelp() {
	fmt.Fprint(s.out, helpText)
}

func (s *Session) requireDB() (Backend, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return s.db, nil
}

// setDatabase closes the open database before opening the one named on the
// command line. Both a missing path and a failed open end the session.
func (s *Session) setDatabase() error {
	if s.in.AtLineEnd() {
		s.in.SkipLine()
		return fatalf("no database provided")
	}

	path, err := s.in.NextWord()
	if err != nil {
		return fatalf("no database provided")
	}
	s.log.Debug("database at: %q", path)

	return s.openDatabase(path)
}

func (s *Session) openDatabase(path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.startDir, path)
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("closing database at %s: %v", s.db.Dir(), err)
		}
		s.db = nil
	}

	db, err := s.open(path)
	if err != nil {
		return fatalf("cannot set database at %q: %w", path, err)
	}
	s.db = db
	s.log.Debug("database %s is open", path)
	return nil
}

func (s *Session) showDatabase() error {
	if s.in.AtLineEnd() {
		s.in.SkipLine()
		return errors.New("show what?")
	}

	what, err := s.in.NextWord()
	if err != nil {
		return errors.New("show what?")
	}
	if what != "database" {
		return fmt.Errorf("cannot show %q", what)
	}

	db, err := s.requireDB()
	if err != nil {
		return err
	}
	return db.Describe(s.out)
}

func (s *Session) createTable() error {
	db, err := s.requireDB()
	if err != nil {
		s.in.SkipLine()
		return err
	}

	sch, err := ParseCreate(s.in, func(name string) bool {
		_, ok := db.Schema(name)
		return ok
	})
	if err != nil {
		return err
	}

	s.log.Debug("table name: %q, schema %s", sch.Name, sch)
	return db.CreateSchema(sch)
}

func (s *Session) dropTable() error {
	db, err := s.requireDB()
	if err != nil {
		s.in.SkipLine()
		return err
	}

	if tok := s.in.Next(); tok.Type != IDENT || tok.Literal != "table" {
		return syntaxError(s.in, "drop "+tok.Literal)
	}

	name := s.in.Next()
	if name.Type != IDENT {
		return syntaxError(s.in, "drop table "+name.Literal)
	}
	s.in.SkipLine()

	return db.DropTable(name.Literal)
}

func (s *Session) insertRow() error {
	db, err := s.requireDB()
	if err != nil {
		s.in.SkipLine()
		return err
	}

	name, rec, err := ParseInsert(s.in, db.Schema)
	if err != nil {
		return err
	}

	s.log.Debug("insert into %s: %v", name, rec)
	return db.Append(name, rec)
}

// selectRows runs one query. Every transient view it obtains is released
// before it returns, whichever way it returns.
func (s *Session) selectRows() error {
	clause, _ := s.in.ReadUntil(';')

	q, err := ParseQuery(clause)
	if err != nil {
		return err
	}

	db, err := s.requireDB()
	if err != nil {
		return err
	}

	s.log.Debug("from: %q, where: %v", q.Source, q.Where)

	from, ok := db.Table(q.Source)
	if !ok {
		return fmt.Errorf("select: table %q: %w", q.Source, storage.ErrTableNotFound)
	}

	var where, res *storage.Table
	defer func() {
		db.Release(where)
		db.Release(res)
	}()

	src := from
	if q.Where != nil {
		where, err = db.Search(from, *q.Where)
		if err != nil {
			return err
		}
		if where == nil {
			s.log.Debug("no row of %s matches %s", q.Source, q.Where)
			return nil
		}
		src = where
	}

	if q.IsWildcard() {
		return db.Display(s.out, src)
	}

	res, err = db.Project(src, q.Targets)
	if err != nil {
		return err
	}
	return db.Display(s.out, res)
}
