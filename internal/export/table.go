package export

import (
	"io"

	"github.com/pterm/pterm"

	"github.com/plumber-cd/ez-masters/internal/domain"
)

// TableData lays out records as a header row followed by one row per record,
// using the definition's table columns.
func TableData(def *domain.FormDefinition, records []domain.Record) pterm.TableData {
	columns := def.TableColumns()
	header := make([]string, 0, len(columns))
	for _, key := range columns {
		header = append(header, def.ColumnLabel(key))
	}
	data := pterm.TableData{header}
	for _, rec := range records {
		row := make([]string, 0, len(columns))
		for _, key := range columns {
			row = append(row, rec[key])
		}
		data = append(data, row)
	}
	return data
}

// RenderTable prints records as a boxed terminal table.
func RenderTable(w io.Writer, def *domain.FormDefinition, records []domain.Record) error {
	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(TableData(def, records)).
		WithWriter(w).
		Render()
}

// RenderRows prints an arbitrary header plus rows, e.g. the forms summary.
func RenderRows(w io.Writer, header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.
		WithHasHeader().
		WithData(data).
		WithWriter(w).
		Render()
}
