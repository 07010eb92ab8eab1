package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gpp-archive/autharch/internal/logger"
)

// table is one sheet of tabular input, with rows keyed by canonical column
// name. A CSV file yields one table; an XLSX file yields one per sheet.
type table struct {
	path    string
	sheet   string
	columns map[string]bool
	rows    []map[string]string
}

func (t *table) location() string {
	if t.sheet == "" {
		return fmt.Sprintf("%q", t.path)
	}
	return fmt.Sprintf("%q (sheet %q)", t.path, t.sheet)
}

// The source spreadsheets are inconsistent with each other about column
// naming. Known variants are folded onto canonical names here; yes, one of
// them really does have two spaces in it.
var columnAliases = map[string]string{
	"Serial  No.":    "ID",
	"Serial No.":     "ID",
	"Serial Number":  "ID",
	"Id":             "ID",
	"Respository":    "Repository",
	"CALM Reference": "CALM_reference",
	"Calm_Reference": "CALM_reference",
	"RA Reference":   "RA_Reference",
}

var requiredColumns = []string{"ID", "CALM_reference", "Repository"}

var optionalColumns = []string{
	"Admin History", "Addressee", "Arrangement", "Date", "Description",
	"Extent", "Notes", "Publication Status", "Publications", "RA_Reference",
	"Title", "Writer",
}

// readTables loads the tabular data at path, canonicalising column names
// and dropping fully empty rows.
func readTables(path string, log *logger.Logger) ([]*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		tbl, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		if err := checkColumns(tbl, log); err != nil {
			return nil, err
		}
		return []*table{tbl}, nil
	case ".xlsx":
		tables, err := readXLSX(path)
		if err != nil {
			return nil, err
		}
		for _, tbl := range tables {
			if err := checkColumns(tbl, log); err != nil {
				return nil, err
			}
		}
		return tables, nil
	}
	return nil, fmt.Errorf("invalid file type for %q; please provide a .csv or .xlsx file", path)
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	if len(records) == 0 {
		return &table{path: path, columns: map[string]bool{}}, nil
	}
	return buildTable(path, "", records), nil
}

func readXLSX(path string) ([]*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	var tables []*table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q of %q: %w", sheet, path, err)
		}
		if len(rows) == 0 {
			continue
		}
		tables = append(tables, buildTable(path, sheet, rows))
	}
	return tables, nil
}

func buildTable(path, sheet string, records [][]string) *table {
	header := make([]string, len(records[0]))
	columns := map[string]bool{}
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if canonical, ok := columnAliases[name]; ok && !columns[canonical] {
			name = canonical
		}
		header[i] = name
		columns[name] = true
	}

	tbl := &table{path: path, sheet: sheet, columns: columns}
	for _, cells := range records[1:] {
		row := map[string]string{}
		empty := true
		for i, name := range header {
			value := ""
			if i < len(cells) {
				value = strings.TrimSpace(cells[i])
			}
			if value != "" {
				empty = false
			}
			row[name] = value
		}
		if !empty {
			tbl.rows = append(tbl.rows, row)
		}
	}
	return tbl
}

func checkColumns(tbl *table, log *logger.Logger) error {
	for _, column := range requiredColumns {
		if !tbl.columns[column] {
			return fmt.Errorf("data at %s does not include the required %q column", tbl.location(), column)
		}
	}
	if !tbl.columns["Repository Code"] {
		log.Info("No Repository Code column; using default code for known repositories",
			"location", tbl.location())
	}
	for _, column := range optionalColumns {
		if !tbl.columns[column] {
			log.Info("Optional column not present", "location", tbl.location(), "column", column)
		}
	}
	return nil
}
