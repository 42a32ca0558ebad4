package assemble

import (
	"context"
	goerrors "errors"
	"io"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
	"github.com/go-sif/acs/source"
)

// RowIterator lazily produces the rows of a table, one file pair at a time, in the
// order the file pairs are generated
type RowIterator struct {
	a        *Assembler
	ctx      context.Context
	table    acs.TableSpec
	slicers  *tableSlicers
	pairs    *source.PairMap
	current  *pairReader
	next     *acs.Row
	emitted  int
	err      error
	done     bool
	failures map[string]error
}

// Rows returns an iterator over the rows of table. Calling Rows again starts a fresh
// iteration. Configuration mismatches are reported immediately.
func (a *Assembler) Rows(ctx context.Context, table acs.TableSpec) (*RowIterator, error) {
	if _, err := a.Header(table); err != nil {
		return nil, err
	}
	slicers, err := a.slicers(table)
	if err != nil {
		return nil, err
	}
	pairs, err := a.pairMap(ctx, table)
	if err != nil {
		return nil, err
	}
	return &RowIterator{
		a:        a,
		ctx:      ctx,
		table:    table,
		slicers:  slicers,
		pairs:    pairs,
		failures: make(map[string]error),
	}, nil
}

// HasNext returns true iff there is another Row remaining
func (it *RowIterator) HasNext() bool {
	if it.next == nil && !it.done {
		it.advance()
	}
	return it.next != nil
}

// Next returns the next Row, or a NoMoreRowsError
func (it *RowIterator) Next() (acs.Row, error) {
	if !it.HasNext() {
		if it.err != nil {
			return acs.Row{}, it.err
		}
		return acs.Row{}, errors.NoMoreRowsError{}
	}
	row := *it.next
	it.next = nil
	it.emitted++
	return row, nil
}

// Err returns the error which ended iteration early, if any. Per-jurisdiction failures
// are reported by Failures instead, unless the Assembler is configured to fail fast.
func (it *RowIterator) Err() error {
	return it.err
}

// Failures returns the file pairs which could not be read, by jurisdiction
func (it *RowIterator) Failures() map[string]error {
	res := make(map[string]error, len(it.failures))
	for k, v := range it.failures {
		res[k] = v
	}
	return res
}

// Close releases any open files. It is safe to call Close more than once.
func (it *RowIterator) Close() error {
	it.done = true
	it.next = nil
	if it.current != nil {
		err := it.current.Close()
		it.current = nil
		return err
	}
	return nil
}

func (it *RowIterator) stop(err error) {
	it.err = err
	it.Close()
}

func (it *RowIterator) advance() {
	conf := it.a.conf
	for {
		if conf.LimitedRun && it.emitted >= conf.RowCap {
			it.Close()
			return
		}
		if err := it.ctx.Err(); err != nil {
			it.stop(err)
			return
		}
		if it.current == nil {
			if !it.pairs.HasNext() {
				it.Close()
				return
			}
			pair := it.pairs.Next()
			abbr := pair.Jurisdiction.Abbreviation
			if _, failed := it.failures[abbr]; failed {
				continue
			}
			reader, err := it.a.openPair(it.ctx, pair, it.slicers)
			if err != nil {
				if it.fail(abbr, err) {
					return
				}
				continue
			}
			it.current = reader
		}
		row, err := it.current.next()
		if err == io.EOF {
			it.current.Close()
			it.current = nil
			continue
		} else if err != nil {
			abbr := it.current.pair.Jurisdiction.Abbreviation
			it.current.Close()
			it.current = nil
			if isFatal(err) || it.fail(abbr, err) {
				it.stop(err)
				return
			}
			continue
		}
		it.next = &row
		return
	}
}

// fail records a jurisdiction failure, returning true if iteration must stop
func (it *RowIterator) fail(abbr string, err error) bool {
	it.a.logger.Warn("jurisdiction failed", "jurisdiction", abbr, "table", it.table.ID, "error", err)
	it.failures[abbr] = err
	if it.a.conf.FailFast {
		it.stop(err)
		return true
	}
	return false
}

// isFatal reports whether err invalidates the whole table rather than one jurisdiction
func isFatal(err error) bool {
	return goerrors.As(err, &errors.IncompatibleRecordError{}) ||
		goerrors.As(err, &errors.ConfigurationMismatchError{}) ||
		goerrors.Is(err, context.Canceled) ||
		goerrors.Is(err, context.DeadlineExceeded)
}
