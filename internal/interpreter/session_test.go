package interpreter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FrontDb/internal/logger"
	"FrontDb/internal/storage"
)

// checkedDB fails the test when a transient view outlives the session.
type checkedDB struct {
	*storage.Database
	t *testing.T
}

func (c checkedDB) Close() error {
	if n := c.Views(); n != 0 {
		c.t.Errorf("%d transient views were not released", n)
	}
	return c.Database.Close()
}

// runSession runs input against the database in dir and returns the
// combined command and error output.
func runSession(t *testing.T, dir, input string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	s, err := NewSession(Config{
		Stdin:       strings.NewReader(input),
		Out:         &out,
		DatabaseDir: dir,
		StartDir:    dir,
		Logger:      newTestLogger(t, &out),
		Open: func(dir string) (Backend, error) {
			db, err := storage.Open(dir)
			if err != nil {
				return nil, err
			}
			return checkedDB{Database: db, t: t}, nil
		},
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	err = s.Run()
	return strings.TrimPrefix(out.String(), welcome()), err
}

func newTestLogger(t *testing.T, out *bytes.Buffer) *logger.Logger {
	logger.ResetRegistry()
	t.Cleanup(logger.ResetRegistry)
	return logger.New(t.Name(), out, logger.ERROR)
}

func welcome() string {
	var buf bytes.Buffer
	(&Session{out: &buf}).Welcome()
	return buf.String()
}

func openDB(t *testing.T, dir string) *storage.Database {
	t.Helper()
	db, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateThenSelectEmpty(t *testing.T) {
	dir := t.TempDir()

	out, err := runSession(t, dir, "create table t (a int, b str(5))\nselect * from t;\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "Empty set\n" {
		t.Errorf("expected an empty set, got %q", out)
	}

	sch, ok := openDB(t, dir).Schema("t")
	if !ok || len(sch.Columns) != 2 {
		t.Fatalf("expected table t with 2 fields, got %v", sch)
	}
}

func TestDuplicateCreate(t *testing.T) {
	dir := t.TempDir()

	input := "create table t (a int, b str(5))\n" +
		"create table t (x int)\n"
	out, err := runSession(t, dir, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out, "ERROR: ") || !strings.Contains(out, storage.ErrTableExists.Error()) {
		t.Errorf("expected a table exists error, got %q", out)
	}

	sch, _ := openDB(t, dir).Schema("t")
	if len(sch.Columns) != 2 {
		t.Errorf("duplicate create changed the field count to %d", len(sch.Columns))
	}
}

func TestInsertThenSelect(t *testing.T) {
	dir := t.TempDir()

	input := "create table t (a int, b str(5))\n" +
		"insert into t values (7, abc);\n" +
		"select * from t;\n"
	out, err := runSession(t, dir, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, want := range []string{"| 7 | abc |", "1 row(s) in set"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	tbl, _ := openDB(t, dir).Table("t")
	if len(tbl.Rows) != 1 || tbl.Rows[0][0] != int64(7) || tbl.Rows[0][1] != "abc" {
		t.Errorf("unexpected stored rows %v", tbl.Rows)
	}
}

func TestInsertPunctuatedValues(t *testing.T) {
	dir := t.TempDir()

	input := "create table t (a int, b str(9), c int)\n" +
		"insert into t values (1, x,y, 3);\n" +
		"insert into t values (2, ab(c);\n" +
		"insert into t values (4,\n  zz, 5);\n"
	out, err := runSession(t, dir, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := strings.Count(out, "ERROR: "); n != 1 {
		t.Errorf("expected only the short insert to fail, got:\n%s", out)
	}

	tbl, _ := openDB(t, dir).Table("t")
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %v", tbl.Rows)
	}
	if tbl.Rows[0][1] != "x,y" || tbl.Rows[1][1] != "zz" {
		t.Errorf("unexpected stored rows %v", tbl.Rows)
	}
}

func TestSelectWhereProjection(t *testing.T) {
	dir := t.TempDir()

	input := "create table t (a int, b str(5), c int)\n" +
		"insert into t values (1, xx, 10);\n" +
		"insert into t values (5, yy, 50);\n" +
		"insert into t values (9, zz, 90);\n" +
		"select c, b from t where a >= 5;\n"
	out, err := runSession(t, dir, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, want := range []string{"| 50 | yy |", "| 90 | zz |", "2 row(s) in set"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "xx") {
		t.Errorf("filtered row in output:\n%s", out)
	}
}

func TestSelectWhereNoMatch(t *testing.T) {
	dir := t.TempDir()

	input := "create table t (a int)\n" +
		"insert into t values (1);\n" +
		"select a from t where a > 100;\n" +
		"select * from t where a < 0;\n"
	out, err := runSession(t, dir, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected no output for an empty match, got %q", out)
	}
}

func TestSelectErrors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"MissingFrom", "select a t;", "from which table to select?"},
		{"UnknownTable", "select a from u;", storage.ErrTableNotFound.Error()},
		{"UnknownField", "select z from t;", storage.ErrColumnNotFound.Error()},
		{"UnknownWhereField", "select * from t where z = 1;", storage.ErrColumnNotFound.Error()},
		{"StringWhereField", "select * from t where b = 1;", storage.ErrTypeMismatch.Error()},
		{"UnsupportedTail", "select * from t order by a;", "is not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			input := "create table t (a int, b str(3))\n" +
				"insert into t values (1, q);\n" +
				tt.query + "\n" +
				"print still running\n"
			out, err := runSession(t, dir, input)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if !strings.Contains(out, "ERROR: ") || !strings.Contains(out, tt.message) {
				t.Errorf("expected an error with %q, got %q", tt.message, out)
			}
			if !strings.HasSuffix(out, "still running\n") {
				t.Errorf("session did not go on after the error: %q", out)
			}
		})
	}
}

func TestInsertErrors(t *testing.T) {
	dir := t.TempDir()

	input := "create table t (a int, b str(3))\n" +
		"insert into t values (1);\n" +
		"insert into t values (1, q, 2);\n" +
		"insert into t values (1, toolong);\n" +
		"insert into u values (1, q);\n"
	out, err := runSession(t, dir, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := strings.Count(out, "ERROR: "); n != 4 {
		t.Errorf("expected 4 errors, got %d:\n%s", n, out)
	}

	tbl, _ := openDB(t, dir).Table("t")
	if len(tbl.Rows) != 0 {
		t.Errorf("bad inserts stored rows %v", tbl.Rows)
	}
}

func TestDropTable(t *testing.T) {
	dir := t.TempDir()

	input := "create table t (a int)\n" +
		"drop table t ;\n" +
		"drop table t ;\n"
	out, err := runSession(t, dir, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out, storage.ErrTableNotFound.Error()) {
		t.Errorf("expected the second drop to fail, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "t"+storage.FileExtension)); !os.IsNotExist(err) {
		t.Errorf("table file still exists: %v", err)
	}
}

func TestHelpLeavesStateAlone(t *testing.T) {
	dir := t.TempDir()

	out, err := runSession(t, dir, "create table t (a int)\nhelp\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != helpText {
		t.Errorf("unexpected help output %q", out)
	}

	tables := openDB(t, dir).Tables()
	if len(tables) != 1 || tables[0].Name() != "t" {
		t.Errorf("help changed the tables: %v", tables)
	}
}

func TestPrintAndComment(t *testing.T) {
	dir := t.TempDir()

	input := "print   hello  world  \n" +
		"# create table x (a int)\n" +
		"#create table y (a int)\n"
	out, err := runSession(t, dir, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "hello  world\n" {
		t.Errorf("unexpected print output %q", out)
	}
	if n := len(openDB(t, dir).Tables()); n != 0 {
		t.Errorf("comments created %d tables", n)
	}
}

func TestQuitAndEndOfInput(t *testing.T) {
	dir := t.TempDir()

	out, err := runSession(t, dir, "print before\nquit\nprint after\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "before\n" {
		t.Errorf("commands after quit ran: %q", out)
	}

	out, err = runSession(t, dir, "print only")
	if err != nil || out != "only\n" {
		t.Errorf("end of input: %q, %v", out, err)
	}
}

func TestUnknownCommand(t *testing.T) {
	out, err := runSession(t, t.TempDir(), "frobnicate the table\nprint ok\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out, "ERROR: syntax error near >>>frobnicate<<< the table") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.HasSuffix(out, "ok\n") {
		t.Errorf("session did not go on: %q", out)
	}
}

func TestShowDatabase(t *testing.T) {
	dir := t.TempDir()

	out, err := runSession(t, dir, "create table people (id int, name str(8))\nshow database\nshow tables\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, want := range []string{"Database at " + dir, "people", "id int, name str(8)", `cannot show "tables"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSwitchDatabase(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "other")

	input := "create table t (a int)\n" +
		"database other\n" +
		"create table u (a int)\n"
	if _, err := runSession(t, dir, input); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, ok := openDB(t, dir).Schema("u"); ok {
		t.Errorf("table u was created in the first database")
	}
	if _, ok := openDB(t, other).Schema("u"); !ok {
		t.Errorf("table u is missing from %s", other)
	}
}

func TestFatalErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"NoDatabasePath", "database\nprint after\n"},
		{"DatabaseOnFile", "database file\nprint after\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runSession(t, dir, tt.input)

			var fatal *FatalError
			if !errors.As(err, &fatal) {
				t.Fatalf("expected a fatal error, got %v", err)
			}
			if !strings.Contains(out, "FATAL: ") {
				t.Errorf("expected a FATAL message, got %q", out)
			}
			if strings.Contains(out, "after") {
				t.Errorf("session went on after a fatal error: %q", out)
			}
		})
	}
}

func TestNoDatabase(t *testing.T) {
	var out bytes.Buffer
	s, err := NewSession(Config{
		Stdin:    strings.NewReader("create table t (a int)\nselect * from t;\nprint ok\n"),
		Out:      &out,
		StartDir: t.TempDir(),
		Logger:   newTestLogger(t, &out),
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := strings.Count(out.String(), ErrNoDatabase.Error()); n != 2 {
		t.Errorf("expected 2 no database errors, got %d:\n%s", n, out.String())
	}
	if !strings.HasSuffix(out.String(), "ok\n") {
		t.Errorf("session did not go on: %q", out.String())
	}
}

func TestDefaultLoggerUsesSessionOutput(t *testing.T) {
	logger.ResetRegistry()
	t.Cleanup(logger.ResetRegistry)

	var other bytes.Buffer
	logger.New("front", &other, logger.ERROR)

	var out bytes.Buffer
	s, err := NewSession(Config{
		Stdin:    strings.NewReader("frobnicate\n"),
		Out:      &out,
		StartDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "ERROR: syntax error near >>>frobnicate<<<") {
		t.Errorf("error missing from the session output: %q", out.String())
	}
	if other.Len() != 0 {
		t.Errorf("session wrote to a registered logger: %q", other.String())
	}
}

func TestCommandFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "commands.txt")
	if err := os.WriteFile(file, []byte("create table t (a int)\ninsert into t values (3);\nselect a from t;\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	s, err := NewSession(Config{
		CommandFile: file,
		Out:         &out,
		DatabaseDir: "db",
		StartDir:    dir,
		Logger:      newTestLogger(t, &out),
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if s.Interactive() {
		t.Errorf("a command file session is not interactive")
	}

	if err := s.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.Contains(out.String(), "Welcome") {
		t.Errorf("banner printed for a command file")
	}
	if !strings.Contains(out.String(), "| 3 |") {
		t.Errorf("unexpected output %q", out.String())
	}
	if _, ok := openDB(t, filepath.Join(dir, "db")).Schema("t"); !ok {
		t.Errorf("relative database path was not resolved against the start directory")
	}
}

func TestMissingCommandFile(t *testing.T) {
	var out bytes.Buffer
	_, err := NewSession(Config{
		CommandFile: filepath.Join(t.TempDir(), "missing.txt"),
		Out:         &out,
		Logger:      newTestLogger(t, &out),
	})

	var fatal *FatalError
	if !errors.As(err, &fatal) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a fatal not exist error, got %v", err)
	}
}

func TestExec(t *testing.T) {
	dir := t.TempDir()

	var console bytes.Buffer
	s, err := NewSession(Config{
		Stdin:       strings.NewReader(""),
		Out:         &console,
		DatabaseDir: dir,
		StartDir:    dir,
		Logger:      newTestLogger(t, &console),
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	var out bytes.Buffer
	quit, err := s.Exec(strings.NewReader("create table t (a int)\ninsert into t values (4);\nselect * from t;\nselect x;\n"), &out)
	if err != nil || quit {
		t.Fatalf("Exec = %v, %v", quit, err)
	}
	if !strings.Contains(out.String(), "| 4 |") || !strings.Contains(out.String(), "ERROR: ") {
		t.Errorf("unexpected Exec output %q", out.String())
	}
	if console.Len() != 0 {
		t.Errorf("Exec wrote to the session console: %q", console.String())
	}

	// the database stays open between batches
	out.Reset()
	quit, err = s.Exec(strings.NewReader("select * from t;\nquit\nprint after\n"), &out)
	if err != nil || !quit {
		t.Fatalf("Exec = %v, %v", quit, err)
	}
	if !strings.Contains(out.String(), "1 row(s) in set") || strings.Contains(out.String(), "after") {
		t.Errorf("unexpected Exec output %q", out.String())
	}
	if n := s.Database().(*storage.Database).Views(); n != 0 {
		t.Errorf("%d transient views were not released", n)
	}
}
