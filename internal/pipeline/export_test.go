package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

func sampleTable() Table {
	return Table{
		Model:   caseModel,
		Columns: Columns([]string{"processo", "fase_id", "id"}, true, "caso_relacionado"),
		Rows: []model.GenericRecord{
			{"id": int64(1), "processo": "0001", "fase_id": "Inicial", "caso_relacionado": "Outro"},
			{"id": int64(2), "processo": "0002", "fase_id": false},
		},
	}
}

func TestColumnsOrder(t *testing.T) {
	got := strings.Join(sampleTable().Columns, ",")
	if got != "id,processo,fase_id,caso_relacionado" {
		t.Fatalf("unexpected columns %s", got)
	}
	if got := strings.Join(Columns([]string{"a"}, false), ","); got != "a" {
		t.Fatalf("unexpected columns without id: %s", got)
	}
}

func TestWriteTableXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Extracao.xlsx")
	n, err := WriteTable(path, sampleTable())
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows written, got %d", n)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(caseModel)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "id,processo,fase_id,caso_relacionado" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "0001" || rows[1][2] != "Inicial" || rows[1][3] != "Outro" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][2] != "FALSE" {
		t.Fatalf("expected boolean cell, got %q", rows[2][2])
	}
}

func TestWriteTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if _, err := WriteTable(path, sampleTable()); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "id,processo,fase_id,caso_relacionado\n1,0001,Inicial,Outro\n2,0002,false,\n"
	if string(data) != want {
		t.Fatalf("csv =\n%s\nwant\n%s", data, want)
	}
}

func TestWriteTableJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if _, err := WriteTable(path, sampleTable()); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var payload struct {
		ExportInfo map[string]interface{}   `json:"export_info"`
		Data       []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.ExportInfo["record_count"] != float64(2) || len(payload.Data) != 2 {
		t.Fatalf("unexpected payload %s", data)
	}
}

func TestWriteAtomicLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Extracao.xlsx")

	err := writeAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("disk full")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty directory, found %d entries", len(entries))
	}
}

func TestWriteTableReportsExportKind(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := WriteTable(filepath.Join(blocker, "out.xlsx"), sampleTable())
	if !exporterrors.Is(err, exporterrors.Export) {
		t.Fatalf("expected export error, got %v", err)
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{int64(42), "42"},
		{1.5, "1.5"},
		{[]interface{}{int64(1), "a"}, `[1,"a"]`},
	}
	for _, c := range cases {
		if got := formatValue(c.in); got != c.want {
			t.Fatalf("formatValue(%#v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWriteTableXLSXRejectsOversizedCell(t *testing.T) {
	long := strings.Repeat("a", excelize.TotalCellChars+1)
	table := Table{
		Model:   caseModel,
		Columns: []string{"id", "descricao"},
		Rows: []model.GenericRecord{
			{"id": int64(1), "descricao": "short"},
			{"id": int64(42), "descricao": long},
		},
	}

	dir := t.TempDir()
	_, err := WriteTable(filepath.Join(dir, "Extracao.xlsx"), table)
	if !exporterrors.Is(err, exporterrors.Export) {
		t.Fatalf("expected export error, got %v", err)
	}
	if !strings.Contains(err.Error(), `record 42 field "descricao"`) || !strings.Contains(err.Error(), ".csv") {
		t.Fatalf("error should name the cell and suggest csv: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("no file expected after a rejected write, found %d entries", len(entries))
	}

	// the same value fits a csv export untouched
	path := filepath.Join(dir, "Extracao.csv")
	if _, err := WriteTable(path, table); err != nil {
		t.Fatalf("WriteTable csv: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.Contains(string(data), long) {
		t.Fatalf("csv value was shortened")
	}
}

func TestWriteTableXLSXKeepsCellAtLimit(t *testing.T) {
	exact := strings.Repeat("é", excelize.TotalCellChars)
	path := filepath.Join(t.TempDir(), "Extracao.xlsx")
	table := Table{Model: caseModel, Columns: []string{"id", "descricao"},
		Rows: []model.GenericRecord{{"id": int64(1), "descricao": exact}}}
	if _, err := WriteTable(path, table); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	got, err := f.GetCellValue(caseModel, "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if utf8.RuneCountInString(got) != excelize.TotalCellChars {
		t.Fatalf("cell has %d characters, want %d", utf8.RuneCountInString(got), excelize.TotalCellChars)
	}
}
