// Package tabular reads and writes the spreadsheet formats the pipeline
// consumes. The core pipeline itself is format-agnostic; this package is
// its boundary collaborator.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nikora-inc/promo-engine/pkg/apperrors"
	"github.com/nikora-inc/promo-engine/pkg/models"
)

// ReadTable parses an uploaded file into a Dataset, dispatching on the
// file name's extension. The first row is the header; every following row
// becomes a data row, short rows padded with blank cells to the header
// width. Only the first sheet of a workbook is read.
func ReadTable(name string, r io.Reader) (*models.Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, re-save %q as .xlsx", apperrors.ErrUnsupported, name)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupported, name)
	}
}

// ReadTableFile reads a local .csv or .xlsx file into a Dataset.
func ReadTableFile(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(path, f)
}

func readCSV(r io.Reader) (*models.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, apperrors.ErrEmptyDataset
	}
	return fromRecords(records)
}

func readXLSX(r io.Reader) (*models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ErrEmptyDataset
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, apperrors.ErrEmptyDataset
	}
	return fromRecords(records)
}

// fromRecords builds a Dataset from raw records: header first, data after.
// Header cells are trimmed; blank or duplicate headers are rejected since
// column names must be unique within a dataset.
func fromRecords(records [][]string) (*models.Dataset, error) {
	header := records[0]
	seen := make(map[string]struct{}, len(header))
	columns := make([]string, 0, len(header))
	for i, c := range header {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("blank header in column %d", i+1)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = struct{}{}
		columns = append(columns, c)
	}

	ds := models.NewDataset(columns)
	for _, rec := range records[1:] {
		row := make(models.Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		ds.Append(row)
	}
	return ds, nil
}
