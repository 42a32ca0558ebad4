// Package frame holds materialized table partitions in memory and derives new columns
// from them: sums, ratios and relative standard errors, with margins of error
// propagated per the ACS handbook.
package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-sif/acs/errors"
	"github.com/go-sif/acs/schema"
	"github.com/go-sif/acs/transform"
)

// Frame is a set of equal-length columns. Numeric columns are Series; all other columns
// are kept as text.
type Frame struct {
	table  *schema.Table
	rows   int
	order  []string
	text   map[string][]string
	series map[string]*Series
}

// CreateFrame returns an empty Frame with the given number of rows. The table may be
// nil, in which case DimColumns is unavailable.
func CreateFrame(table *schema.Table, rows int) *Frame {
	return &Frame{
		table:  table,
		rows:   rows,
		text:   make(map[string][]string),
		series: make(map[string]*Series),
	}
}

// FromRecords builds a Frame with the columns of table from transformed Records
func FromRecords(table *schema.Table, records []transform.Record) (*Frame, error) {
	f := CreateFrame(table, len(records))
	cols := table.Columns()
	preamble := table.NumPreambleColumns()
	for _, col := range cols {
		if col.Kind() == schema.Float {
			f.series[col.Name()] = &Series{Name: col.Name(), data: make([]float64, len(records)), frame: f}
		} else {
			f.text[col.Name()] = make([]string, len(records))
		}
		f.order = append(f.order, col.Name())
	}
	for i, rec := range records {
		values := rec.Strings()
		if len(values) != len(cols) {
			return nil, errors.IncompatibleRecordError{Want: len(cols), Got: len(values)}
		}
		for j, col := range cols {
			if col.Kind() == schema.Float {
				f.series[col.Name()].data[i] = rec.Cells[j-preamble]
			} else {
				f.text[col.Name()][i] = values[j]
			}
		}
	}
	return f, nil
}

// ReadCSV reads a Frame from CSV with a header row. Columns the table declares as Float
// are parsed as numbers; columns unknown to the table are numeric when every non-empty
// value parses as a number. Empty values are null.
func ReadCSV(table *schema.Table, r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns := make([][]string, len(header))
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		for i, v := range rec {
			columns[i] = append(columns[i], v)
		}
	}
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0])
	}
	f := CreateFrame(table, rows)
	for i, name := range header {
		numeric := isNumeric(columns[i])
		if table != nil {
			if col, err := table.GetColumn(name); err == nil {
				numeric = col.Kind() == schema.Float
			}
		}
		if !numeric {
			if err := f.SetText(name, columns[i]); err != nil {
				return nil, err
			}
			continue
		}
		data := make([]float64, rows)
		for j, v := range columns[i] {
			if data[j], err = parseCell(v); err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", name, j+1, err)
			}
		}
		if err := f.SetSeries(name, data); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parseCell(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(v, 64)
}

func isNumeric(values []string) bool {
	seen := false
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// WriteCSV writes this Frame as CSV with a header row. Nulls are written as empty values.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.order); err != nil {
		return err
	}
	rec := make([]string, len(f.order))
	for i := 0; i < f.rows; i++ {
		for j, name := range f.order {
			if s, ok := f.series[name]; ok {
				rec[j] = transform.FormatCell(s.data[i])
			} else {
				rec[j] = f.text[name][i]
			}
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Table returns the table this Frame was built from, which may be nil
func (f *Frame) Table() *schema.Table {
	return f.table
}

// Len returns the number of rows in this Frame
func (f *Frame) Len() int {
	return f.rows
}

// Columns returns the names of the columns in this Frame, in order
func (f *Frame) Columns() []string {
	res := make([]string, len(f.order))
	copy(res, f.order)
	return res
}

// Column returns the numeric column with the given name
func (f *Frame) Column(name string) (*Series, error) {
	s, ok := f.series[name]
	if !ok {
		return nil, errors.LookupError{Kind: "column", Key: name}
	}
	return s, nil
}

// Text returns the text column with the given name
func (f *Frame) Text(name string) ([]string, error) {
	t, ok := f.text[name]
	if !ok {
		return nil, errors.LookupError{Kind: "column", Key: name}
	}
	res := make([]string, len(t))
	copy(res, t)
	return res, nil
}

// SetSeries adds a numeric column, or replaces the column with the same name
func (f *Frame) SetSeries(name string, data []float64) error {
	if len(data) != f.rows {
		return fmt.Errorf("column %s has %d values, frame has %d rows", name, len(data), f.rows)
	}
	f.register(name)
	delete(f.text, name)
	f.series[name] = &Series{Name: name, data: data, frame: f}
	return nil
}

// SetText adds a text column, or replaces the column with the same name
func (f *Frame) SetText(name string, values []string) error {
	if len(values) != f.rows {
		return fmt.Errorf("column %s has %d values, frame has %d rows", name, len(values), f.rows)
	}
	f.register(name)
	delete(f.series, name)
	f.text[name] = values
	return nil
}

func (f *Frame) register(name string) {
	_, isText := f.text[name]
	_, isSeries := f.series[name]
	if !isText && !isSeries {
		f.order = append(f.order, name)
	}
}
