// Package geo joins summary file records to their geographies. Records carry only a
// state abbreviation and a logical record number; the geofile of each state maps those
// to a geoid and summary level.
package geo

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
)

// Columns locates the join fields within geofile records. A negative index marks a
// field the geofile does not have.
type Columns struct {
	StusAb   int
	SumLevel int
	LogRecNo int
	GeoID    int
	GVid     int
}

// DefaultColumns matches the comma-separated ACS geofiles
var DefaultColumns = Columns{StusAb: 1, SumLevel: 2, LogRecNo: 4, GeoID: 48, GVid: -1}

type key struct {
	stusab   string
	logrecno int
}

// Lookup maps (state abbreviation, logical record number) to a Geography
type Lookup struct {
	entries map[key]acs.Geography
}

// CreateLookup returns an empty Lookup
func CreateLookup() *Lookup {
	return &Lookup{entries: make(map[key]acs.Geography)}
}

// Add registers a Geography. Abbreviations are case-insensitive.
func (l *Lookup) Add(stusab string, logrecno int, g acs.Geography) {
	l.entries[key{strings.ToUpper(stusab), logrecno}] = g
}

// Len returns the number of geographies in this Lookup
func (l *Lookup) Len() int {
	return len(l.entries)
}

// Lookup returns the Geography of a record, or a LookupError
func (l *Lookup) Lookup(stusab string, logrecno int) (acs.Geography, error) {
	g, ok := l.entries[key{strings.ToUpper(stusab), logrecno}]
	if !ok {
		return acs.Geography{}, errors.LookupError{Kind: "geography", Key: fmt.Sprintf("%s/%d", strings.ToUpper(stusab), logrecno)}
	}
	return g, nil
}

// Load adds every record of a geofile to this Lookup, closing the iterator when done
func (l *Lookup) Load(it acs.RecordIterator, cols Columns) (int, error) {
	defer it.Close()
	width := 0
	for _, i := range []int{cols.StusAb, cols.SumLevel, cols.LogRecNo, cols.GeoID, cols.GVid} {
		if i+1 > width {
			width = i + 1
		}
	}
	if cols.StusAb < 0 || cols.LogRecNo < 0 || cols.GeoID < 0 {
		return 0, fmt.Errorf("geofile columns must include stusab, logrecno and geoid")
	}
	n := 0
	for {
		rec, err := it.Next()
		if err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, err
		}
		if len(rec) < width {
			return n, errors.IncompatibleRecordError{Want: width, Got: len(rec)}
		}
		logrecno, err := strconv.Atoi(strings.TrimSpace(rec[cols.LogRecNo]))
		if err != nil {
			return n, fmt.Errorf("geofile record %d: invalid logrecno %q", n+1, rec[cols.LogRecNo])
		}
		g := acs.Geography{GeoID: strings.TrimSpace(rec[cols.GeoID])}
		if cols.SumLevel >= 0 {
			if g.SumLevel, err = strconv.Atoi(strings.TrimSpace(rec[cols.SumLevel])); err != nil {
				return n, fmt.Errorf("geofile record %d: invalid sumlevel %q", n+1, rec[cols.SumLevel])
			}
		}
		if cols.GVid >= 0 {
			g.GVid = strings.TrimSpace(rec[cols.GVid])
		}
		l.Add(strings.TrimSpace(rec[cols.StusAb]), logrecno, g)
		n++
	}
}
