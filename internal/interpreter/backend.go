package interpreter

import (
	"io"

	"FrontDb/internal/storage"
)

// Backend is the storage engine a session drives.
type Backend interface {
	Dir() string
	Close() error

	Schema(name string) (*storage.Schema, bool)
	CreateSchema(s *storage.Schema) error
	Table(name string) (*storage.Table, bool)
	DropTable(name string) error
	Append(name string, rec storage.Record) error

	// Search returns nil when no row matches.
	Search(t *storage.Table, p storage.Predicate) (*storage.Table, error)
	Project(t *storage.Table, attrs []string) (*storage.Table, error)
	Release(t *storage.Table)

	Display(w io.Writer, t *storage.Table) error
	Describe(w io.Writer) error
}

// Opener opens the database found in dir.
type Opener func(dir string) (Backend, error)

func OpenStorage(dir string) (Backend, error) {
	db, err := storage.Open(dir)
	if err != nil {
		return nil, err
	}
	return db, nil
}
