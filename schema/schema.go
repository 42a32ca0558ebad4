// Package schema describes the layout of an assembled ACS table: a fixed preamble of
// identification, geography and jam_flags columns, followed by an estimate column and a
// margin of error column for every data cell.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
)

// Kind is the value type of a Column
type Kind int

const (
	// Text columns hold strings
	Text Kind = iota
	// Integer columns hold whole numbers
	Integer
	// Float columns hold estimates and margins; NaN represents null
	Float
)

// Role is the part a Column plays in a Table
type Role int

const (
	// Preamble columns precede the data
	Preamble Role = iota
	// Estimate columns hold estimates
	Estimate
	// Margin columns hold 90% margins of error
	Margin
)

// MarginSuffix is appended to an estimate column's name to name its margin column
const MarginSuffix = "_m90"

// Synthetic preamble column names
const (
	IDColumn       = "id"
	GeoIDColumn    = "geoid"
	GVidColumn     = "gvid"
	SumLevelColumn = "sumlevel"
	JamFlagsColumn = "jam_flags"
)

// Column describes one column of a Table
type Column struct {
	idx         int
	name        string
	description string
	kind        Kind
	role        Role
}

// Index returns the index of this Column within a Table
func (c *Column) Index() int {
	return c.idx
}

// Name returns the name of this Column
func (c *Column) Name() string {
	return c.name
}

// Description returns the description of this Column
func (c *Column) Description() string {
	return c.description
}

// Kind returns the value type of this Column
func (c *Column) Kind() Kind {
	return c.kind
}

// Role returns the Role of this Column
func (c *Column) Role() Role {
	return c.role
}

// DataColumn names and describes one data cell of a table
type DataColumn struct {
	Name        string
	Description string
}

// Table is a mapping from column names to Columns, in index order
type Table struct {
	ID          string
	Description string
	Universe    string
	Sequence    int
	Start       int
	Length      int
	columns     map[string]*Column
	order       []*Column
	preamble    int
}

// CreateEmptyTable is a factory for Tables without any columns
func CreateEmptyTable(id string) *Table {
	return &Table{
		ID:      id,
		columns: make(map[string]*Column),
	}
}

// CreateTable builds the standard layout of a table: id, the header columns, geoid,
// gvid, sumlevel and jam_flags, then NAME and NAME_m90 for every data column.
func CreateTable(id string, header []acs.HeaderColumn, data []DataColumn) (*Table, error) {
	t := CreateEmptyTable(id)
	if err := t.CreateColumn(IDColumn, Integer, Preamble, "Row id"); err != nil {
		return nil, err
	}
	for _, h := range header {
		kind := Text
		if h.Datatype == acs.IntType {
			kind = Integer
		}
		if err := t.CreateColumn(MangleName(h.Name), kind, Preamble, h.Description); err != nil {
			return nil, err
		}
	}
	synthetic := []struct {
		name string
		kind Kind
		desc string
	}{
		{GeoIDColumn, Text, "Geoid from geofile"},
		{GVidColumn, Text, "GVid from geoid"},
		{SumLevelColumn, Integer, "Summary Level"},
		{JamFlagsColumn, Text, "Flags for converted Jam values"},
	}
	for _, s := range synthetic {
		if err := t.CreateColumn(s.name, s.kind, Preamble, s.desc); err != nil {
			return nil, err
		}
	}
	for _, d := range data {
		if err := t.AddDataColumn(d.Name, d.Description); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// CreateColumn appends a Column to this Table. Preamble columns may not follow data
// columns, and duplicate names are a ConfigurationMismatchError.
func (t *Table) CreateColumn(name string, kind Kind, role Role, description string) error {
	if _, exists := t.columns[name]; exists {
		return errors.ConfigurationMismatchError{Table: t.ID, Reason: fmt.Sprintf("duplicate column %s", name)}
	}
	if role == Preamble && len(t.order) > t.preamble {
		return errors.ConfigurationMismatchError{Table: t.ID, Reason: fmt.Sprintf("preamble column %s follows data columns", name)}
	}
	col := &Column{idx: len(t.order), name: name, description: description, kind: kind, role: role}
	t.columns[name] = col
	t.order = append(t.order, col)
	if role == Preamble {
		t.preamble++
	}
	return nil
}

// AddDataColumn appends an estimate column and its margin column
func (t *Table) AddDataColumn(name string, description string) error {
	name = MangleName(name)
	if err := t.CreateColumn(name, Float, Estimate, description); err != nil {
		return err
	}
	return t.CreateColumn(name+MarginSuffix, Float, Margin, "Margin of error for: "+name)
}

// GetColumn returns the Column with the given name
func (t *Table) GetColumn(name string) (*Column, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, errors.LookupError{Kind: "column", Key: name}
	}
	return col, nil
}

// HasColumn returns true iff this Table has a Column with the given name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// NumColumns returns the number of Columns in this Table
func (t *Table) NumColumns() int {
	return len(t.order)
}

// NumPreambleColumns returns the number of Columns which precede the data
func (t *Table) NumPreambleColumns() int {
	return t.preamble
}

// Columns returns the Columns of this Table, in index order
func (t *Table) Columns() []*Column {
	res := make([]*Column, len(t.order))
	copy(res, t.order)
	return res
}

// ColumnNames returns the names in this Table, in index order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.order))
	for i, c := range t.order {
		names[i] = c.name
	}
	return names
}

// EstimateColumns returns the estimate Columns of this Table, in index order
func (t *Table) EstimateColumns() []*Column {
	var res []*Column
	for _, c := range t.order {
		if c.role == Estimate {
			res = append(res, c)
		}
	}
	return res
}

// ForEachColumn iterates over the Columns in this Table, in index order
func (t *Table) ForEachColumn(fn func(col *Column) error) error {
	for _, c := range t.order {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// Spec returns the TableSpec used to assemble this Table
func (t *Table) Spec() acs.TableSpec {
	return acs.TableSpec{
		ID:          t.ID,
		Description: t.Description,
		Universe:    t.Universe,
		Sequence:    t.Sequence,
		Start:       t.Start,
		Length:      t.Length,
		Columns:     t.ColumnNames(),
	}
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9_]+`)

// MangleName normalizes a column name: lower case, with runs of anything other than
// letters, digits and underscores replaced by an underscore
func MangleName(name string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_"), "_")
}
