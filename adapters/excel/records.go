package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gokaizen/domain/study"
	"gokaizen/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DateLayout is the fecha column format
const DateLayout = "2006-01-02"

// Sheet is the worksheet records are written to and read from
const Sheet = "Sheet1"

// Supported file formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Headers are the export columns, in order
var Headers = []string{"fecha", "periodo", "tiempo_atencion_min", "franja_horaria", "dia_semana", "servidor"}

// FormatFromPath picks the file format from an extension
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(path)))
	}
}

// SortedByDate returns a copy of records ordered by date, keeping the
// original order for equal dates.
func SortedByDate(records []study.Record) []study.Record {
	out := make([]study.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Write exports records in the given format, sorted by date
func Write(w io.Writer, format string, records []study.Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatXLSX:
		return WriteXLSX(w, records)
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
	}
}

// WriteFile exports records to path, choosing the format from its extension
func WriteFile(path string, records []study.Record) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	if err := Write(f, format, records); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes a header row and one row per record
func WriteCSV(w io.Writer, records []study.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Headers); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, r := range SortedByDate(records) {
		if err := cw.Write(recordRow(r)); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes records to Sheet1 of a new workbook
func WriteXLSX(w io.Writer, records []study.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(Sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write XLSX header")
	}

	for i, r := range SortedByDate(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "invalid XLSX cell")
		}
		row := []interface{}{
			r.Date.Format(DateLayout), string(r.Period), r.ServiceMin,
			r.TimeSlot, r.Weekday, r.Server,
		}
		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			return errors.Wrap(err, "failed to write XLSX row")
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write XLSX workbook")
	}
	return nil
}

func recordRow(r study.Record) []string {
	return []string{
		r.Date.Format(DateLayout),
		string(r.Period),
		strconv.FormatFloat(r.ServiceMin, 'f', -1, 64),
		r.TimeSlot,
		r.Weekday,
		r.Server,
	}
}

// ReadFile loads records from a .csv or .xlsx file
func ReadFile(path string) ([]study.Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	if format == FormatCSV {
		return ReadCSV(f)
	}
	return ReadXLSX(f)
}

// ReadCSV parses records written by WriteCSV or any CSV with the same headers
func ReadCSV(r io.Reader) ([]study.Record, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.InvalidInput("failed to read CSV: " + err.Error())
	}
	return parseRows(rows)
}

// ReadXLSX parses records from Sheet1 of a workbook
func ReadXLSX(r io.Reader) ([]study.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.InvalidInput("failed to open XLSX: " + err.Error())
	}
	defer f.Close()

	rows, err := f.GetRows(Sheet)
	if err != nil {
		return nil, errors.InvalidInput("failed to read " + Sheet + ": " + err.Error())
	}
	return parseRows(rows)
}

// parseRows maps header names to columns. periodo and tiempo_atencion_min
// are required; the remaining columns are optional.
func parseRows(rows [][]string) ([]study.Record, error) {
	if len(rows) < 2 {
		return nil, errors.InvalidInput("file must have a header row and at least one data row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, required := range []string{"periodo", "tiempo_atencion_min"} {
		if _, ok := index[required]; !ok {
			return nil, errors.InvalidInput("missing required column " + required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]study.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if len(row) == 0 {
			continue
		}

		period := study.Group(strings.ToLower(cell(row, "periodo")))
		if period != study.GroupBefore && period != study.GroupAfter {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: periodo must be %q or %q", line, study.GroupBefore, study.GroupAfter))
		}

		value, err := strconv.ParseFloat(cell(row, "tiempo_atencion_min"), 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: tiempo_atencion_min is not a number", line))
		}

		rec := study.Record{
			Period:     period,
			ServiceMin: value,
			TimeSlot:   cell(row, "franja_horaria"),
			Weekday:    cell(row, "dia_semana"),
			Server:     cell(row, "servidor"),
		}
		if raw := cell(row, "fecha"); raw != "" {
			date, err := time.Parse(DateLayout, raw)
			if err != nil {
				return nil, errors.InvalidInput(fmt.Sprintf("row %d: fecha must be YYYY-MM-DD", line))
			}
			rec.Date = date
			if rec.Weekday == "" {
				rec.Weekday = date.Weekday().String()
			}
		}
		records = append(records, rec)
	}

	return records, nil
}
