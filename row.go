package acs

// Row is one assembled table row: the header fields sliced from the estimate record,
// followed by interleaved (estimate, margin) cells for every data field of the table.
// Cells are raw text; numeric interpretation happens downstream of assembly.
type Row struct {
	Jurisdiction string   // Jurisdiction is the abbreviation of the file pair this row was read from
	Header       []string // Header holds the header column values, in HeaderColumn order
	Cells        []string // Cells holds estimate0, margin0, estimate1, margin1, ...
}

// NumPairs returns the number of (estimate, margin) pairs in this Row
func (r Row) NumPairs() int {
	return len(r.Cells) / 2
}

// Pair returns the i-th (estimate, margin) pair of this Row
func (r Row) Pair(i int) (estimate string, margin string) {
	return r.Cells[2*i], r.Cells[2*i+1]
}

// Values returns the header values followed by the cells, as a single record
func (r Row) Values() []string {
	out := make([]string, 0, len(r.Header)+len(r.Cells))
	out = append(out, r.Header...)
	return append(out, r.Cells...)
}

// Geography is the result of joining a record to the geofile
type Geography struct {
	GeoID    string
	GVid     string
	SumLevel int
}
