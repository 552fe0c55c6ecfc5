package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"goanalytics/internal"
)

// sheet is one header-plus-rows table read from a workbook or CSV file
type sheet struct {
	name    string
	headers []string
	rows    [][]string
}

// column returns the trimmed cells of column i, padding short rows with blanks
func (s sheet) column(i int) []string {
	out := make([]string, len(s.rows))
	for r, row := range s.rows {
		if i < len(row) {
			out[r] = strings.TrimSpace(row[i])
		}
	}
	return out
}

// DataReader reads Excel workbooks and CSV files as tables
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewDataReader creates a reader; the file type is chosen by extension
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &DataReader{filePath: filePath, fileType: fileType, log: logger.With("DataReader")}
}

func (r *DataReader) readSheets() ([]sheet, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	default:
		return r.readWorkbook()
	}
}

// readWorkbook reads every sheet; sheets without a header row are skipped
func (r *DataReader) readWorkbook() ([]sheet, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	var sheets []sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		s, ok := toSheet(name, rows)
		if !ok {
			r.log.Debug("sheet %s has no header row, skipping", name)
			continue
		}
		sheets = append(sheets, s)
	}
	r.log.Debug("workbook %s read in %.2fms (%d sheets)", r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(sheets))
	return sheets, nil
}

func (r *DataReader) readCSV() ([]sheet, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	s, ok := toSheet(name, rows)
	if !ok {
		return nil, fmt.Errorf("CSV file must have a header row")
	}
	return []sheet{s}, nil
}

// toSheet splits off the header row and drops blank data rows
func toSheet(name string, rows [][]string) (sheet, bool) {
	if len(rows) == 0 {
		return sheet{}, false
	}
	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}
	if strings.Join(headers, "") == "" {
		return sheet{}, false
	}

	s := sheet{name: name, headers: headers}
	for _, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		s.rows = append(s.rows, row)
	}
	return s, true
}
