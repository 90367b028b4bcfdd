package core

import (
	"RandomWalkService/internal/model"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportSheet is the sheet name used for xlsx exports
const ExportSheet = "Series"

// WriteCSV writes the series with a Time,Price header. Prices keep full precision
// so the file parses back to the same series.
func WriteCSV(w io.Writer, series model.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{TimeColumn, PriceColumn}); err != nil {
		return fmt.Errorf("cannot write csv header: %w", err)
	}
	for _, p := range series {
		record := []string{
			strconv.FormatInt(p.Time, 10),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write csv row for time %d: %w", p.Time, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the series to a single sheet workbook
func WriteXLSX(w io.Writer, series model.Series) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("cannot name sheet: %w", err)
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &[]interface{}{TimeColumn, PriceColumn}); err != nil {
		return fmt.Errorf("cannot write xlsx header: %w", err)
	}
	for i, p := range series {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExportSheet, cellRef, &[]interface{}{p.Time, p.Price}); err != nil {
			return fmt.Errorf("cannot write xlsx row for time %d: %w", p.Time, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write xlsx: %w", err)
	}
	return nil
}

// Export writes the series in the requested format
func Export(w io.Writer, series model.Series, format string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, series)
	case FormatXLSX:
		return WriteXLSX(w, series)
	default:
		return fileFormatError(fmt.Sprintf("unsupported export format %q", format), nil)
	}
}
