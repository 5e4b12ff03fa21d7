package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Database is one open database directory. Every table lives in its own
// file and is cached in memory while the database is open. Transient views
// produced by Search and Project exist only in memory until released.
type Database struct {
	dir        string
	tables     map[string]*Table
	offsets    map[string]uint32
	views      map[string]*Table
	serializer BinarySerializer
	closed     bool
}

// Open loads every table file found in dir, creating the directory when it
// does not exist.
func Open(dir string) (*Database, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	d := &Database{
		dir:     dir,
		tables:  map[string]*Table{},
		offsets: map[string]uint32{},
		views:   map[string]*Table{},
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*"+FileExtension))
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read table file %s: %w", path, err)
		}

		table, metadata, err := d.serializer.DeserializeTable(data)
		if err != nil {
			return nil, fmt.Errorf("failed to load table file %s: %w", path, err)
		}

		d.tables[table.Name()] = table
		d.offsets[table.Name()] = metadata.DataOffset
	}

	return d, nil
}

func (d *Database) Dir() string {
	return d.dir
}

// Close releases every live view. Table data is written through on every
// change, so nothing is flushed here.
func (d *Database) Close() error {
	if d.closed {
		return nil
	}
	d.views = map[string]*Table{}
	d.closed = true
	return nil
}

func (d *Database) tablePath(name string) string {
	return filepath.Join(d.dir, name+FileExtension)
}

func (d *Database) Schema(name string) (*Schema, bool) {
	t, ok := d.Table(name)
	if !ok {
		return nil, false
	}
	return t.Schema, true
}

func (d *Database) Table(name string) (*Table, bool) {
	if d.closed {
		return nil, false
	}
	t, ok := d.tables[name]
	return t, ok
}

// Tables returns the persistent tables ordered by name.
func (d *Database) Tables() []*Table {
	tables := make([]*Table, 0, len(d.tables))
	for _, t := range d.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name() < tables[j].Name() })
	return tables
}

// CreateSchema registers the schema and writes an empty table file. Nothing
// is registered when the schema is invalid or already exists.
func (d *Database) CreateSchema(s *Schema) error {
	if d.closed {
		return ErrClosed
	}

	if err := s.Validate(); err != nil {
		return err
	}

	if strings.HasPrefix(s.Name, ViewPrefix) {
		return fmt.Errorf("%w: table names starting with %s are reserved", ErrInvalidSchema, ViewPrefix)
	}

	if _, exists := d.tables[s.Name]; exists {
		return fmt.Errorf("%w: %s", ErrTableExists, s.Name)
	}

	columns := make([]Column, len(s.Columns))
	copy(columns, s.Columns)
	table := &Table{Schema: &Schema{Name: s.Name, Columns: columns}, Rows: []Record{}}

	data, err := d.serializer.SerializeTable(table)
	if err != nil {
		return err
	}

	if err := os.WriteFile(d.tablePath(s.Name), data, 0644); err != nil {
		return fmt.Errorf("failed to write table file for %s: %w", s.Name, err)
	}

	d.tables[s.Name] = table
	d.offsets[s.Name] = dataOffset(data)
	return nil
}

// DropTable removes the schema, its rows and the table file.
func (d *Database) DropTable(name string) error {
	if d.closed {
		return ErrClosed
	}

	if _, ok := d.tables[name]; !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	if err := os.Remove(d.tablePath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}

	delete(d.tables, name)
	delete(d.offsets, name)
	return nil
}

// Append validates rec against the table schema, appends it to the table
// file and updates the stored row count.
func (d *Database) Append(name string, rec Record) error {
	if d.closed {
		return ErrClosed
	}

	table, ok := d.tables[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	if err := table.Schema.Check(rec); err != nil {
		return err
	}

	rowBytes, err := d.serializer.SerializeRow(rec, table.Schema.Columns)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.tablePath(name), os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open table file for %s: %w", name, err)
	}
	defer f.Close()

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}

	if _, err := f.WriteAt(rowBytes, end); err != nil {
		return fmt.Errorf("failed to append row to %s: %w", name, err)
	}

	count := new(bytes.Buffer)
	if err := binary.Write(count, binary.LittleEndian, int64(len(table.Rows)+1)); err != nil {
		return err
	}

	countOffset := int64(d.offsets[name]) - rowCountTail
	if _, err := f.WriteAt(count.Bytes(), countOffset); err != nil {
		if truncErr := f.Truncate(end); truncErr != nil {
			return fmt.Errorf("failed to update row count for %s: %v (truncate: %v)", name, err, truncErr)
		}
		return fmt.Errorf("failed to update row count for %s: %w", name, err)
	}

	row := make(Record, len(rec))
	copy(row, rec)
	table.Rows = append(table.Rows, row)
	return nil
}

// Search returns a transient view holding the rows whose integer attribute
// satisfies p, or nil when no row matches.
func (d *Database) Search(t *Table, p Predicate) (*Table, error) {
	if d.closed {
		return nil, ErrClosed
	}

	idx, ok := t.Schema.ColumnIndex(p.Attr)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrColumnNotFound, p.Attr, t.Name())
	}

	if t.Schema.Columns[idx].DataType != TypeInt {
		return nil, fmt.Errorf("%w: %s is not an int field", ErrTypeMismatch, p.Attr)
	}

	var rows []Record
	for _, row := range t.Rows {
		if p.Matches(row[idx].(int64)) {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return d.newView(t.Schema.Columns, rows), nil
}

// Project returns a transient view with the requested columns, in the
// requested order.
func (d *Database) Project(t *Table, attrs []string) (*Table, error) {
	if d.closed {
		return nil, ErrClosed
	}

	indexes := make([]int, len(attrs))
	columns := make([]Column, len(attrs))
	for i, attr := range attrs {
		idx, ok := t.Schema.ColumnIndex(attr)
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrColumnNotFound, attr, t.Name())
		}
		indexes[i] = idx
		columns[i] = t.Schema.Columns[idx]
	}

	rows := make([]Record, len(t.Rows))
	for r, row := range t.Rows {
		projected := make(Record, len(indexes))
		for i, idx := range indexes {
			projected[i] = row[idx]
		}
		rows[r] = projected
	}

	return d.newView(columns, rows), nil
}

func (d *Database) newView(columns []Column, rows []Record) *Table {
	name := ViewPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	view := &Table{
		Schema:    &Schema{Name: name, Columns: columns},
		Rows:      rows,
		Transient: true,
	}
	d.views[name] = view
	return view
}

// Release drops a transient view. Nil and persistent tables are ignored.
func (d *Database) Release(t *Table) {
	if t == nil || !t.Transient {
		return
	}
	delete(d.views, t.Name())
}

// Views reports how many transient views are still live.
func (d *Database) Views() int {
	return len(d.views)
}

func dataOffset(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[6:headerLength]) + headerLength
}
