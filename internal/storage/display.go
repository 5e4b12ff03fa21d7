package storage

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

func newTableWriter(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// Display renders every row of t followed by a row count. An empty table
// renders as "Empty set".
func (d *Database) Display(w io.Writer, t *Table) error {
	if t == nil {
		return nil
	}

	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "Empty set")
		return err
	}

	header := make([]string, len(t.Schema.Columns))
	for i, col := range t.Schema.Columns {
		header[i] = col.Name
	}

	table := newTableWriter(w, header)
	for _, row := range t.Rows {
		table.Append(formatRow(row))
	}
	table.Render()

	_, err := fmt.Fprintf(w, "%d row(s) in set\n", len(t.Rows))
	return err
}

// Describe lists the database directory and every table with its schema
// and row count.
func (d *Database) Describe(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Database at %s\n", d.dir); err != nil {
		return err
	}

	tables := d.Tables()
	if len(tables) == 0 {
		_, err := fmt.Fprintln(w, "No tables")
		return err
	}

	table := newTableWriter(w, []string{"Table", "Fields", "Rows"})
	for _, t := range tables {
		fields := ""
		for i, col := range t.Schema.Columns {
			if i > 0 {
				fields += ", "
			}
			fields += col.Name + " " + col.TypeString()
		}
		table.Append([]string{t.Name(), fields, strconv.Itoa(len(t.Rows))})
	}
	table.Render()
	return nil
}

func formatRow(row Record) []string {
	cells := make([]string, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case int64:
			cells[i] = strconv.FormatInt(val, 10)
		case string:
			cells[i] = val
		default:
			cells[i] = fmt.Sprintf("%v", val)
		}
	}
	return cells
}
