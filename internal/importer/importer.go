// Package importer reads catalog documents kept as spreadsheets. It
// supports CSV with automatic delimiter detection and the first sheet of
// an Excel workbook, mapping columns by case-insensitive header names.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/FrameCalc/internal/model"
)

// ProductImport holds the results of importing a products table.
type ProductImport struct {
	Products []model.Product
	Errors   []string
	Warnings []string
}

// Err joins the import errors, or returns nil when there are none.
func (r ProductImport) Err() error {
	return joinErrors(r.Errors)
}

// RuleImport holds the results of importing a rules table.
type RuleImport struct {
	Rules    []model.CalculationRule
	Errors   []string
	Warnings []string
}

// Err joins the import errors, or returns nil when there are none.
func (r RuleImport) Err() error {
	return joinErrors(r.Errors)
}

func joinErrors(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ColumnMapping maps canonical column names to their indices in the data.
type ColumnMapping map[string]int

// Index returns the column of role, or -1 when it is not mapped.
func (m ColumnMapping) Index(role string) int {
	if i, ok := m[role]; ok {
		return i
	}
	return -1
}

// Columns in positional order, used when a table has no header row.
var (
	productColumns = []string{"type", "name", "material", "unit", "width", "price"}
	ruleColumns    = []string{"type", "key", "name", "min", "max", "step", "value"}
)

// productAliases maps canonical column names to their accepted aliases (all lowercase).
var productAliases = map[string][]string{
	"type":     {"type", "category", "kind"},
	"name":     {"name", "title", "product", "description"},
	"material": {"material", "mat"},
	"unit":     {"unit", "uom", "units"},
	"width":    {"width", "w", "size"},
	"price":    {"price", "cost", "unit price"},
}

var ruleAliases = map[string][]string{
	"type":  {"type", "category", "kind"},
	"key":   {"key", "code", "id"},
	"name":  {"name", "title", "label"},
	"min":   {"min", "minimum", "from"},
	"max":   {"max", "maximum", "to"},
	"step":  {"step", "pitch"},
	"value": {"value", "density", "screws per m2"},
}

// IsTabular reports whether path names a CSV or Excel file.
func IsTabular(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx", ".xls":
		return true
	default:
		return false
	}
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row against aliases. It returns the
// mapping and true if a header was detected, or a positional mapping over
// order and false if not.
func DetectColumns(row []string, aliases map[string][]string, order []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{}
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, names := range aliases {
			if _, taken := mapping[role]; taken {
				continue
			}
			for _, alias := range names {
				if normalized == alias {
					mapping[role] = i
					break
				}
			}
		}
	}

	if len(mapping) == 0 {
		positional := ColumnMapping{}
		for i, role := range order {
			positional[role] = i
		}
		return positional, false
	}
	return mapping, true
}

// ReadRows loads all rows of a CSV file or of the first sheet of a workbook.
func ReadRows(path string) ([][]string, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err := readExcel(path)
		return rows, nil, err
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([][]string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, errors.New("file is empty")
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, warnings, fmt.Errorf("cannot read CSV: %w", err)
	}
	return records, warnings, nil
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read Excel data: %w", err)
	}
	return rows, nil
}

// ImportProducts reads a products table from path.
func ImportProducts(path string) ProductImport {
	rows, warnings, err := ReadRows(path)
	if err != nil {
		return ProductImport{Errors: []string{err.Error()}, Warnings: warnings}
	}
	result := ProductsFromRows(rows)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportRules reads a rules table from path.
func ImportRules(path string) RuleImport {
	rows, warnings, err := ReadRows(path)
	if err != nil {
		return RuleImport{Errors: []string{err.Error()}, Warnings: warnings}
	}
	result := RulesFromRows(rows)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ProductsFromRows parses product rows. Type, name and price are required.
func ProductsFromRows(rows [][]string) ProductImport {
	result := ProductImport{Products: []model.Product{}}
	mapping, start, warnings := prepare(rows, productAliases, productColumns)
	result.Warnings = append(result.Warnings, warnings...)

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("Row %d", i+1)

		p := model.Product{
			Type: model.ObjectType(strings.ToUpper(getCell(row, mapping.Index("type")))),
			Name: getCell(row, mapping.Index("name")),
			Unit: getCell(row, mapping.Index("unit")),
		}
		if p.Type == "" || p.Name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: type and name are required", rowLabel))
			continue
		}
		if m := getCell(row, mapping.Index("material")); m != "" {
			p.Material = model.StringPtr(m)
		}

		width, err := parseOptionalFloat(getCell(row, mapping.Index("width")))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: invalid width: %v", rowLabel, err))
			continue
		}
		p.Width = width

		price, err := parseOptionalFloat(getCell(row, mapping.Index("price")))
		if err != nil || price == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: invalid price %q", rowLabel, getCell(row, mapping.Index("price"))))
			continue
		}
		p.Price = *price

		result.Products = append(result.Products, p)
	}
	return result
}

// RulesFromRows parses rule rows. Type and key are required.
func RulesFromRows(rows [][]string) RuleImport {
	result := RuleImport{Rules: []model.CalculationRule{}}
	mapping, start, warnings := prepare(rows, ruleAliases, ruleColumns)
	result.Warnings = append(result.Warnings, warnings...)

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("Row %d", i+1)

		r := model.CalculationRule{
			Type: model.ObjectType(strings.ToUpper(getCell(row, mapping.Index("type")))),
			Key:  getCell(row, mapping.Index("key")),
			Name: getCell(row, mapping.Index("name")),
		}
		if r.Type == "" || r.Key == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: type and key are required", rowLabel))
			continue
		}

		var bad string
		for _, f := range []struct {
			role string
			dst  **float64
		}{
			{"min", &r.Min},
			{"max", &r.Max},
			{"step", &r.Step},
			{"value", &r.Value},
		} {
			v, err := parseOptionalFloat(getCell(row, mapping.Index(f.role)))
			if err != nil {
				bad = f.role
				break
			}
			*f.dst = v
		}
		if bad != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: invalid %s %q", rowLabel, bad, getCell(row, mapping.Index(bad))))
			continue
		}

		result.Rules = append(result.Rules, r)
	}
	return result
}

// prepare detects the header and returns the mapping and first data row.
func prepare(rows [][]string, aliases map[string][]string, order []string) (ColumnMapping, int, []string) {
	if len(rows) == 0 {
		return ColumnMapping{}, 0, nil
	}
	mapping, hasHeader := DetectColumns(rows[0], aliases, order)
	if hasHeader {
		return mapping, 1, []string{"Detected header row, skipping"}
	}
	return mapping, 0, nil
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseOptionalFloat returns nil for an empty cell. A decimal comma is accepted.
func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
