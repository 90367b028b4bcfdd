package core

import (
	"RandomWalkService/internal/model"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names of a series table
const (
	TimeColumn  = "Time"
	PriceColumn = "Price"
)

// DefaultMaxUploadBytes caps the size of an uploaded file
const DefaultMaxUploadBytes = 10 << 20

// Upload is a parsed file: the series and the header it was read from
type Upload struct {
	Series  model.Series
	Columns []string
}

// SeriesIngestionService turns uploaded files and edited tables into validated series
type SeriesIngestionService struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewSeriesIngestionService creates an ingestion service. maxBytes <= 0 uses DefaultMaxUploadBytes.
func NewSeriesIngestionService(maxBytes int64, logger *slog.Logger) *SeriesIngestionService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesIngestionService{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// SupportedExtensions lists the accepted upload extensions
func SupportedExtensions() []string {
	return []string{".csv", ".xlsx", ".xls"}
}

// ParseUpload reads a CSV or Excel file. The first row is the header; columns
// named Time and Price are used, otherwise the first two columns.
func (s *SeriesIngestionService) ParseUpload(filename string, r io.Reader) (Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var reader func([]byte) ([][]string, error)
	switch ext {
	case ".csv":
		reader = readCSV
	case ".xlsx", ".xls":
		reader = readExcel
	default:
		return Upload{}, fileFormatError(
			fmt.Sprintf("unsupported file extension %q, expected one of %s", ext, strings.Join(SupportedExtensions(), ", ")), nil)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Upload{}, fileFormatError("cannot read uploaded file", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Upload{}, fileFormatError(fmt.Sprintf("file exceeds the %d byte upload limit", s.maxBytes), nil)
	}

	records, err := reader(data)
	if err != nil {
		return Upload{}, err
	}

	upload, err := s.parseRecords(records, false)
	if err != nil {
		s.logger.Warn("rejected upload",
			"file", filename,
			"kind", string(KindOf(err)),
			"error", err)
		return Upload{}, err
	}

	s.logger.Info("parsed upload",
		"file", filename,
		"rows", len(upload.Series),
		"columns", upload.Columns)
	return upload, nil
}

// ParseTable validates the rows of the edited grid. Both slices hold the raw
// cell text of the Time and Price columns, row by row.
func (s *SeriesIngestionService) ParseTable(times, prices []string) (model.Series, error) {
	if len(times) != len(prices) {
		return nil, schemaError(0, fmt.Sprintf("table has %d time cells but %d price cells", len(times), len(prices)))
	}

	records := make([][]string, 0, len(times)+1)
	records = append(records, []string{TimeColumn, PriceColumn})
	for i := range times {
		records = append(records, []string{times[i], prices[i]})
	}

	upload, err := s.parseRecords(records, true)
	if err != nil {
		var ie *IngestError
		if errors.As(err, &ie) {
			ie.Table = true
		}
		return nil, err
	}
	return upload.Series, nil
}

// parseRecords converts a header row and data rows into a series. Data rows
// are numbered from 2 in a file (after the header) and from 1 in a table.
func (s *SeriesIngestionService) parseRecords(records [][]string, table bool) (Upload, error) {
	if len(records) == 0 {
		return Upload{}, schemaError(0, "file is empty")
	}
	firstRow, noRows := 2, "file has no data rows"
	if table {
		firstRow, noRows = 1, "table has no rows"
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	timeIdx, priceIdx, err := selectColumns(header)
	if err != nil {
		return Upload{}, err
	}

	series := make(model.Series, 0, len(records)-1)
	for i, record := range records[1:] {
		row := i + firstRow
		if blankRecord(record) {
			continue
		}

		t, err := parseTime(cell(record, timeIdx))
		if err != nil {
			return Upload{}, parseError(row, TimeColumn, err.Error())
		}
		p, err := parsePrice(cell(record, priceIdx))
		if err != nil {
			return Upload{}, parseError(row, PriceColumn, err.Error())
		}

		if n := len(series); n > 0 && t <= series[n-1].Time {
			return Upload{}, schemaError(row, fmt.Sprintf("time %d is not greater than previous time %d; times must be unique and ascending", t, series[n-1].Time))
		}
		series = append(series, model.Point{Time: t, Price: p})
	}

	if len(series) == 0 {
		return Upload{}, schemaError(0, noRows)
	}

	return Upload{Series: series, Columns: header}, nil
}

// selectColumns resolves the Time and Price column indexes from the header
func selectColumns(header []string) (int, int, error) {
	timeIdx, priceIdx := -1, -1
	for i, h := range header {
		switch {
		case strings.EqualFold(h, TimeColumn) && timeIdx < 0:
			timeIdx = i
		case strings.EqualFold(h, PriceColumn) && priceIdx < 0:
			priceIdx = i
		}
	}

	switch {
	case timeIdx >= 0 && priceIdx >= 0:
		return timeIdx, priceIdx, nil
	case timeIdx >= 0:
		return 0, 0, schemaError(0, fmt.Sprintf("missing %q column", PriceColumn))
	case priceIdx >= 0:
		return 0, 0, schemaError(0, fmt.Sprintf("missing %q column", TimeColumn))
	case len(header) < 2:
		return 0, 0, schemaError(0, "file must have at least 2 columns")
	}
	return 0, 1, nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fileFormatError("cannot parse CSV", err)
	}
	return records, nil
}

func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fileFormatError("cannot open spreadsheet (only Office Open XML workbooks are supported)", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, schemaError(0, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fileFormatError(fmt.Sprintf("cannot read sheet %q", sheets[0]), err)
	}
	return rows, nil
}

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func blankRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseTime(v string) (int64, error) {
	if v == "" {
		return 0, fmt.Errorf("empty value")
	}
	if t, err := strconv.ParseInt(v, 10, 64); err == nil {
		return t, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not an integer", v)
	}
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%q is not an integer", v)
	}
	return int64(f), nil
}

func parsePrice(v string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("empty value")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", v)
	}
	return f, nil
}
