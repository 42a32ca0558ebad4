// Package assemble produces the rows of an ACS table from per-jurisdiction estimate and
// margin of error files. Each output row joins one estimate record with the margin record
// at the same position of the matching file, carrying the header fields of the estimate
// record followed by interleaved (estimate, margin) cells.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
	"github.com/go-sif/acs/logging"
	"github.com/go-sif/acs/schema"
	"github.com/go-sif/acs/slicer"
	"github.com/go-sif/acs/source"
)

// Config configures an Assembler
type Config struct {
	Header               []acs.HeaderColumn // Header columns of every record. Defaults to acs.DefaultHeaderColumns.
	Source               source.Config      // Source locates the archives for each jurisdiction
	LimitedRun           bool               // LimitedRun caps output for fast iteration during development
	RowCap               int                // RowCap is the total row limit of a limited run. Defaults to 10000.
	LimitedJurisdictions int                // LimitedJurisdictions is the number of jurisdictions read in a limited run. Defaults to 3.
	Workers              int                // Workers bounds the jurisdictions assembled concurrently by Run. Defaults to 4.
	FailFast             bool               // FailFast aborts on the first jurisdiction which cannot be read
	Logger               *slog.Logger
}

func (c *Config) defaults() {
	if c.Header == nil {
		c.Header = acs.DefaultHeaderColumns
	}
	if c.RowCap <= 0 {
		c.RowCap = 10000
	}
	if c.LimitedJurisdictions <= 0 {
		c.LimitedJurisdictions = 3
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// Assembler produces the rows of tables
type Assembler struct {
	conf          Config
	jurisdictions acs.JurisdictionSource
	fetcher       acs.Fetcher
	opener        acs.RecordOpener
	logger        *slog.Logger
	headerSlicer  *slicer.Slicer
}

// CreateAssembler is a factory for Assemblers
func CreateAssembler(conf Config, jurisdictions acs.JurisdictionSource, fetcher acs.Fetcher, opener acs.RecordOpener) (*Assembler, error) {
	conf.defaults()
	if err := acs.ValidateHeaderColumns(conf.Header); err != nil {
		return nil, err
	}
	if err := conf.Source.Validate(); err != nil {
		return nil, err
	}
	positions := make([]int, len(conf.Header))
	for i, h := range conf.Header {
		positions[i] = h.Position
	}
	headerSlicer, err := slicer.Positions(positions...)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		conf:          conf,
		jurisdictions: jurisdictions,
		fetcher:       fetcher,
		opener:        opener,
		logger:        logging.OrDefault(conf.Logger).With("component", "assemble"),
		headerSlicer:  headerSlicer,
	}, nil
}

// Header validates a table's declared columns against its byte offsets, and returns the
// names of the output columns: the header column names followed by NAME and NAME_m90 for
// every data cell.
func (a *Assembler) Header(table acs.TableSpec) ([]string, error) {
	_, err := a.slicers(table)
	if err != nil {
		return nil, err
	}
	mismatch := func(format string, args ...interface{}) error {
		return errors.ConfigurationMismatchError{Table: table.ID, Reason: fmt.Sprintf(format, args...)}
	}
	// id, header columns, geoid, gvid, sumlevel, jam_flags
	preambleLen := len(a.conf.Header) + 5
	if len(table.Columns) < preambleLen+2 {
		return nil, mismatch("declares %d columns, expected at least %d", len(table.Columns), preambleLen+2)
	}
	if last := table.Columns[preambleLen-1]; last != schema.JamFlagsColumn {
		return nil, mismatch("last preamble column is %q, expected %q", last, schema.JamFlagsColumn)
	}
	data := table.Columns[preambleLen:]
	if !strings.HasSuffix(data[0], "001") {
		return nil, mismatch("first data column %q is not the first estimate", data[0])
	}
	if !strings.HasSuffix(data[1], "m90") {
		return nil, mismatch("second data column %q is not a margin of error", data[1])
	}
	if len(data) != 2*table.Length {
		return nil, mismatch("declares %d data columns, but its byte range holds %d cells", len(data), 2*table.Length)
	}
	names := make([]string, 0, len(a.conf.Header)+len(data))
	for _, h := range a.conf.Header {
		names = append(names, schema.MangleName(h.Name))
	}
	return append(names, data...), nil
}

// HeaderColumns returns the header columns of this Assembler
func (a *Assembler) HeaderColumns() []acs.HeaderColumn {
	res := make([]acs.HeaderColumn, len(a.conf.Header))
	copy(res, a.conf.Header)
	return res
}

type tableSlicers struct {
	header *slicer.Slicer
	data   *slicer.Slicer
}

func (a *Assembler) slicers(table acs.TableSpec) (*tableSlicers, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.ConfigurationMismatchError{Table: table.ID, Reason: err.Error()}
	}
	data, err := slicer.Range(table.Start, table.Length)
	if err != nil {
		return nil, errors.ConfigurationMismatchError{Table: table.ID, Reason: err.Error()}
	}
	if combined := slicer.Concat(a.headerSlicer, data); combined.Len() != len(a.conf.Header)+table.Length {
		return nil, errors.ConfigurationMismatchError{Table: table.ID, Reason: fmt.Sprintf("slices %s select %d fields", combined, combined.Len())}
	}
	if a.headerSlicer.Width() > table.Start-1 {
		return nil, errors.ConfigurationMismatchError{Table: table.ID, Reason: fmt.Sprintf("data starting at %d overlaps the header columns", table.Start)}
	}
	return &tableSlicers{header: a.headerSlicer, data: data}, nil
}

// pairMap lists the jurisdictions to read, limited in a limited run, and generates
// their FilePairs
func (a *Assembler) pairMap(ctx context.Context, table acs.TableSpec) (*source.PairMap, error) {
	js, err := a.jurisdictions.Jurisdictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jurisdictions: %w", err)
	}
	if a.conf.LimitedRun && len(js) > a.conf.LimitedJurisdictions {
		js = js[:a.conf.LimitedJurisdictions]
	}
	return source.Generate(a.conf.Source, table, js), nil
}
