// Package transform converts assembled rows into typed records of a table: header fields
// are parsed by datatype, the row is joined to its geography, and every cell is parsed
// as a number with placeholder values recorded in jam_flags.
package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
	"github.com/go-sif/acs/jam"
	"github.com/go-sif/acs/moe"
	"github.com/go-sif/acs/schema"
)

// Record is one transformed row of a table
type Record struct {
	ID       int64
	Header   []interface{} // Header holds string or int values, in header column order
	Geo      acs.Geography
	JamFlags string // JamFlags is empty when every cell converted
	Cells    []float64 // Cells holds estimate0, margin0, estimate1, margin1, ...; NaN is null
}

// HasJams returns true iff a cell of this Record held a placeholder value
func (r Record) HasJams() bool {
	return r.JamFlags != ""
}

// Operands returns the (estimate, margin) pairs of this Record
func (r Record) Operands() []moe.Operand {
	res := make([]moe.Operand, len(r.Cells)/2)
	for i := range res {
		res[i] = moe.Operand{Value: r.Cells[2*i], M90: r.Cells[2*i+1]}
	}
	return res
}

// Strings formats this Record in table column order. Nulls are empty strings.
func (r Record) Strings() []string {
	out := make([]string, 0, len(r.Header)+5+len(r.Cells))
	out = append(out, strconv.FormatInt(r.ID, 10))
	for _, h := range r.Header {
		out = append(out, fmt.Sprint(h))
	}
	out = append(out, r.Geo.GeoID, r.Geo.GVid, strconv.Itoa(r.Geo.SumLevel), r.JamFlags)
	for _, c := range r.Cells {
		out = append(out, FormatCell(c))
	}
	return out
}

// FormatCell formats a numeric cell, with NaN as the empty string
func FormatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Transformer converts Rows into Records
type Transformer struct {
	table       *schema.Table
	header      []acs.HeaderColumn
	geo         acs.GeographyLookup
	encoder     *jam.Encoder
	cells       int
	stusabIdx   int
	logrecnoIdx int
	nextID      int64
}

// CreateTransformer is a factory for Transformers. A nil GeographyLookup leaves the
// geography columns empty; a nil jam.Map selects jam.DefaultMap.
func CreateTransformer(table *schema.Table, header []acs.HeaderColumn, geo acs.GeographyLookup, jams jam.Map) (*Transformer, error) {
	if header == nil {
		header = acs.DefaultHeaderColumns
	}
	t := &Transformer{
		table:       table,
		header:      header,
		geo:         geo,
		encoder:     jam.CreateEncoder(jams),
		cells:       2 * len(table.EstimateColumns()),
		stusabIdx:   -1,
		logrecnoIdx: -1,
	}
	for i, h := range header {
		switch schema.MangleName(h.Name) {
		case "stusab":
			t.stusabIdx = i
		case "logrecno":
			t.logrecnoIdx = i
		}
	}
	if geo != nil && (t.stusabIdx < 0 || t.logrecnoIdx < 0 || header[t.logrecnoIdx].Datatype != acs.IntType) {
		return nil, errors.ConfigurationMismatchError{Table: table.ID, Reason: "geography join requires STUSAB and an integer LOGRECNO header column"}
	}
	return t, nil
}

// Transform converts one Row. A cell which is neither a number nor a known placeholder,
// and a row without a geography, are errors.
func (t *Transformer) Transform(row acs.Row) (Record, error) {
	if len(row.Header) != len(t.header) {
		return Record{}, errors.IncompatibleRecordError{Want: len(t.header), Got: len(row.Header)}
	}
	if len(row.Cells) != t.cells {
		return Record{}, errors.ConfigurationMismatchError{
			Table:  t.table.ID,
			Reason: fmt.Sprintf("row has %d cells, table declares %d", len(row.Cells), t.cells),
		}
	}
	rec := Record{
		ID:     atomic.AddInt64(&t.nextID, 1),
		Header: make([]interface{}, len(t.header)),
		Cells:  make([]float64, len(row.Cells)),
	}
	for i, h := range t.header {
		raw := strings.TrimSpace(row.Header[i])
		if h.Datatype != acs.IntType {
			rec.Header[i] = raw
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Record{}, fmt.Errorf("header column %s: %w", h.Name, err)
		}
		rec.Header[i] = v
	}
	if t.geo != nil {
		g, err := t.geo.Lookup(fmt.Sprint(rec.Header[t.stusabIdx]), rec.Header[t.logrecnoIdx].(int))
		if err != nil {
			return Record{}, err
		}
		rec.Geo = g
	}
	var flags jam.Flags
	for i, raw := range row.Cells {
		v, code, err := t.encoder.EncodeCell(raw)
		if cme, ok := err.(errors.ConfigurationMismatchError); ok {
			cme.Table = t.table.ID
			return Record{}, cme
		} else if err != nil {
			return Record{}, err
		}
		rec.Cells[i] = v
		flags.Add(code)
	}
	rec.JamFlags, _ = flags.Finalize()
	return rec, nil
}
