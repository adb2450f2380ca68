package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mlstudio/adapters/datareadiness/coercer"
	"mlstudio/domain/dataset"
	"mlstudio/internal"
	"mlstudio/ports"
)

// File types understood by the reader
const (
	TypeCSV  = "csv"
	TypeTSV  = "tsv"
	TypeXLSX = "xlsx"
	TypeJSON = "json"
)

// DataReader reads CSV, TSV, XLSX and JSON sources into rows
type DataReader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewDataReader creates a reader with the given config
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logger.With("data_reader"),
	}
}

var _ ports.DatasetLoader = (*DataReader)(nil)

// DetectFileType maps a file name to one of the supported types
func DetectFileType(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return TypeCSV, nil
	case ".tsv":
		return TypeTSV, nil
	case ".xlsx", ".xlsm":
		return TypeXLSX, nil
	case ".json":
		return TypeJSON, nil
	}
	return "", fmt.Errorf("unsupported file type: %q", filepath.Ext(name))
}

// ReadFile reads a file from disk
func (r *DataReader) ReadFile(ctx context.Context, path string) (*ports.LoadResult, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.ReadBytes(ctx, filepath.Base(path), data)
}

// ReadBytes parses an uploaded payload; name selects the format
func (r *DataReader) ReadBytes(ctx context.Context, name string, data []byte) (*ports.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fileType, err := DetectFileType(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var result *ports.LoadResult
	switch fileType {
	case TypeCSV:
		result, err = r.readDelimited(data, ',')
	case TypeTSV:
		result, err = r.readDelimited(data, '\t')
	case TypeXLSX:
		result, err = r.readExcel(data)
	case TypeJSON:
		result, err = r.readJSON(data)
	}
	if err != nil {
		return nil, err
	}

	result.Source = name
	r.logger.Info("%s file %s processed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(fileType), name, float64(time.Since(start).Nanoseconds())/1e6,
		len(result.Headers), len(result.Rows))
	return result, nil
}

// readDelimited parses CSV/TSV text, typing cells dynamically
func (r *DataReader) readDelimited(data []byte, comma rune) (*ports.LoadResult, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("file must have a header row")
	}

	headers := normalizeHeaders(records[0])
	return r.processRows(headers, records[1:], func(_, _ int, raw string) dataset.Value {
		return r.coercer.CoerceCell(raw)
	}), nil
}

// readExcel reads the configured sheet, using excelize cell types as tags
func (r *DataReader) readExcel(data []byte) (*ports.LoadResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %s must have a header row", sheet)
	}

	headers := normalizeHeaders(rows[0])
	return r.processRows(headers, rows[1:], func(row, col int, raw string) dataset.Value {
		// +2: one header row, and excelize coordinates are 1-based
		ref, err := excelize.CoordinatesToCellName(col+1, row+2)
		if err != nil {
			return r.coercer.CoerceCell(raw)
		}
		cellType, err := f.GetCellType(sheet, ref)
		if err != nil {
			return r.coercer.CoerceCell(raw)
		}
		return r.typedCell(cellType, raw)
	}), nil
}

// typedCell converts a raw cell using its Excel type
func (r *DataReader) typedCell(cellType excelize.CellType, raw string) dataset.Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dataset.Text("")
	}
	switch cellType {
	case excelize.CellTypeBool:
		return dataset.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, ok := coercer.ParseTimestamp(raw); ok {
			return dataset.Datetime(t)
		}
		return dataset.Text(raw)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return dataset.Text(raw)
	}
	return r.coercer.CoerceCell(raw)
}

// readJSON accepts an array of flat objects, keeping key order
func (r *DataReader) readJSON(data []byte) (*ports.LoadResult, error) {
	var rows []dataset.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("JSON source must be an array of objects: %w", err)
	}
	if r.config.MaxRows > 0 && len(rows) > r.config.MaxRows {
		rows = rows[:r.config.MaxRows]
	}

	var headers []string
	seen := make(map[string]bool)
	kept := rows[:0]
	for _, row := range rows {
		if allMissing(row) {
			continue
		}
		kept = append(kept, row)
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	return &ports.LoadResult{Headers: headers, Rows: kept}, nil
}

// processRows builds rows from records, skipping rows whose every cell is missing
func (r *DataReader) processRows(headers []string, records [][]string, cell func(row, col int, raw string) dataset.Value) *ports.LoadResult {
	rows := make([]dataset.Row, 0, len(records))
	for i, record := range records {
		if r.config.MaxRows > 0 && len(rows) >= r.config.MaxRows {
			break
		}
		values := make([]dataset.Value, len(headers))
		for j := range headers {
			if j < len(record) {
				values[j] = cell(i, j, record[j])
			} else {
				values[j] = dataset.Text("")
			}
		}
		row := dataset.NewRow(headers, values)
		if allMissing(row) {
			continue
		}
		rows = append(rows, row)
	}
	return &ports.LoadResult{Headers: headers, Rows: rows}
}

func allMissing(row dataset.Row) bool {
	for _, k := range row.Keys() {
		if !row.Value(k).IsMissing() {
			return false
		}
	}
	return true
}

// normalizeHeaders trims names, fills blanks and suffixes duplicates
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]int)
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := used[name]; dup {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		}
		used[name]++
		headers[i] = name
	}
	return headers
}
