package geo

import (
	"io"
	"testing"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
	"github.com/stretchr/testify/require"
)

type sliceIterator struct {
	records [][]string
	closed  bool
}

func (it *sliceIterator) Next() ([]string, error) {
	if len(it.records) == 0 {
		return nil, io.EOF
	}
	rec := it.records[0]
	it.records = it.records[1:]
	return rec, nil
}

func (it *sliceIterator) Close() error {
	it.closed = true
	return nil
}

func TestLoadAndLookup(t *testing.T) {
	it := &sliceIterator{records: [][]string{
		{"ACSSF", "ak", "040", "00", "0000001", "04000US02", "0O0P"},
		{"ACSSF", "ak", "050", "00", "0000002", "05000US02013", "0O0P01"},
	}}
	l := CreateLookup()
	n, err := l.Load(it, Columns{StusAb: 1, SumLevel: 2, LogRecNo: 4, GeoID: 5, GVid: 6})
	require.Nil(t, err)
	require.Equal(t, 2, n)
	require.True(t, it.closed)

	g, err := l.Lookup("AK", 2)
	require.Nil(t, err)
	require.Equal(t, acs.Geography{GeoID: "05000US02013", GVid: "0O0P01", SumLevel: 50}, g)

	_, err = l.Lookup("AK", 3)
	require.ErrorAs(t, err, &errors.LookupError{})
	_, err = l.Lookup("AL", 1)
	require.ErrorAs(t, err, &errors.LookupError{})
}

func TestLoadNarrowRecord(t *testing.T) {
	it := &sliceIterator{records: [][]string{{"ACSSF", "ak", "040"}}}
	_, err := CreateLookup().Load(it, DefaultColumns)
	require.ErrorAs(t, err, &errors.IncompatibleRecordError{})
}

func TestLoadBadLogrecno(t *testing.T) {
	it := &sliceIterator{records: [][]string{{"ACSSF", "ak", "040", "00", "x", "04000US02"}}}
	_, err := CreateLookup().Load(it, Columns{StusAb: 1, SumLevel: 2, LogRecNo: 4, GeoID: 5, GVid: -1})
	require.Error(t, err)
}
