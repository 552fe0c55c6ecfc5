// Package excel serves datasets from a spreadsheet: every sheet of a workbook
// (or a single CSV file) is one dataset.
package excel

import (
	"context"

	"goanalytics/domain/analysis"
	"goanalytics/internal"
	apperrors "goanalytics/internal/errors"
	"goanalytics/internal/profiling"
)

// Catalog implements ports.DatasetCatalog over a spreadsheet file
type Catalog struct {
	reader *DataReader
	log    *internal.Logger
}

// NewCatalog creates a catalog over the file at path
func NewCatalog(path string, logger *internal.Logger) *Catalog {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Catalog{reader: NewDataReader(path, logger), log: logger.With("ExcelCatalog")}
}

// ListDatasets re-reads the file on every call so edits show up on refresh
func (c *Catalog) ListDatasets(ctx context.Context) ([]analysis.DatasetDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheets, err := c.reader.readSheets()
	if err != nil {
		return nil, apperrors.CatalogError("spreadsheet", err)
	}

	datasets := make([]analysis.DatasetDescriptor, 0, len(sheets))
	for _, s := range sheets {
		datasets = append(datasets, c.describe(s))
	}
	c.log.Info("loaded %d datasets from %s", len(datasets), c.reader.filePath)
	return datasets, nil
}

func (c *Catalog) describe(s sheet) analysis.DatasetDescriptor {
	ds := analysis.DatasetDescriptor{
		Name:          s.name,
		DocumentCount: len(s.rows),
		NumericFields: []string{},
		SampleFields:  []string{},
		Profiles:      map[string]analysis.FieldProfile{},
	}

	seen := make(map[string]bool, len(s.headers))
	for i, header := range s.headers {
		if header == "" || seen[header] {
			continue
		}
		seen[header] = true
		ds.SampleFields = append(ds.SampleFields, header)

		values, numeric := profiling.NumericValues(s.column(i))
		if !numeric {
			continue
		}
		ds.NumericFields = append(ds.NumericFields, header)
		profile, err := profiling.ProfileColumn(values)
		if err != nil {
			c.log.Debug("%s.%s: %v", s.name, header, err)
			continue
		}
		ds.Profiles[header] = profile
	}
	return ds
}
