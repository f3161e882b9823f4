package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

// DefaultFileName is the spreadsheet name used when a request gives none
const DefaultFileName = "Extracao.xlsx"

// maxSheetName is the sheet title limit of the xlsx format
const maxSheetName = 31

// Table is the writer's input: ordered columns and normalized rows.
type Table struct {
	Model   string
	Columns []string
	Rows    []model.GenericRecord
}

// Columns orders output columns: id first when included, then the requested
// fields in request order, then any extra columns such as a join target.
func Columns(fields []string, includeID bool, extra ...string) []string {
	seen := make(map[string]bool, len(fields)+len(extra)+1)
	var cols []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	if includeID {
		add("id")
	}
	for _, f := range fields {
		add(f)
	}
	for _, e := range extra {
		add(e)
	}
	return cols
}

// WriteTable writes the table to path, picking the format from the extension
// (.xlsx, .csv or .json; anything else is written as xlsx). The file appears
// atomically: on any error nothing is left at path.
func WriteTable(path string, table Table) (int, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var write func(io.Writer) error
	switch ext {
	case ".csv":
		write = func(w io.Writer) error { return writeCSV(w, table) }
	case ".json":
		write = func(w io.Writer) error { return writeJSON(w, table) }
	default:
		write = func(w io.Writer) error { return writeXLSX(w, table) }
	}

	if err := writeAtomic(path, write); err != nil {
		fmt.Printf("❌ Export to file failed: %v\n", err)
		return 0, exporterrors.Wrap(exporterrors.Export, fmt.Sprintf("write %s", filepath.Base(path)), err)
	}

	fmt.Printf("✅ Export to file successful: %d records exported to %s\n", len(table.Rows), path)
	return len(table.Rows), nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it into place.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// writeXLSX streams rows into a single sheet with a bold header row. A value
// longer than an xlsx cell can hold fails the write instead of being cut.
func writeXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(table.Model)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range table.Rows {
		row := make([]interface{}, len(table.Columns))
		for j, c := range table.Columns {
			v := cellValue(rec[c])
			if text, ok := v.(string); ok && utf8.RuneCountInString(text) > excelize.TotalCellChars {
				return fmt.Errorf("record %v field %q has %d characters, over the xlsx cell limit of %d; export as .csv or .json instead",
					formatValue(rec["id"]), c, utf8.RuneCountInString(text), excelize.TotalCellChars)
			}
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(w)
}

// cellValue keeps numbers and booleans native so the spreadsheet can sort
// and sum them.
func cellValue(v interface{}) interface{} {
	switch v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64:
		return v
	default:
		return formatValue(v)
	}
}

func sheetName(modelName string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, modelName)
	if name == "" {
		return "Sheet1"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// writeCSV exports rows to CSV format
func writeCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(table.Columns))
	for _, rec := range table.Rows {
		for j, c := range table.Columns {
			row[j] = formatValue(rec[c])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeJSON exports rows as {"export_info": ..., "data": [...]}
func writeJSON(w io.Writer, table Table) error {
	data := make([]map[string]interface{}, len(table.Rows))
	for i, rec := range table.Rows {
		row := make(map[string]interface{}, len(table.Columns))
		for _, c := range table.Columns {
			row[c] = rec[c]
		}
		data[i] = row
	}

	payload := map[string]interface{}{
		"export_info": map[string]interface{}{
			"model":        table.Model,
			"exported_at":  time.Now().UTC().Format(time.RFC3339),
			"record_count": len(table.Rows),
			"columns":      table.Columns,
			"export_type":  "normalized_records",
		},
		"data": data,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func formatValue(value interface{}) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		return v.String()
	case float32, float64, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%v", v)
	case []byte:
		return string(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
