package assemble

import (
	"context"
	goerrors "errors"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
	"github.com/go-sif/acs/internal/stats"
	"github.com/gofrs/uuid"
	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// EmitFunc receives assembled rows. Calls are never concurrent. Returning an error
// aborts the run.
type EmitFunc func(row acs.Row) error

// BatchResult describes the outcome of a Run
type BatchResult struct {
	RunID     uuid.UUID
	Header    []string
	Rows      int64                 // Rows is the number of rows emitted
	Truncated bool                  // Truncated is true when a limited run reached its row cap
	Failures  map[string]error      // Failures holds the jurisdictions which could not be read
	Stats     acs.RuntimeStatistics // Stats holds timings and row counts
}

// Err combines the jurisdiction failures of a BatchResult, in jurisdiction order. It is
// nil if every jurisdiction was assembled.
func (b *BatchResult) Err() error {
	keys := make([]string, 0, len(b.Failures))
	for k := range b.Failures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var multierr *multierror.Error
	for _, k := range keys {
		multierr = multierror.Append(multierr, b.Failures[k])
	}
	return multierr.ErrorOrNil()
}

var errCapReached = goerrors.New("row cap reached")

// emitError carries an error returned by an EmitFunc, which aborts the whole run
type emitError struct {
	err error
}

func (e *emitError) Error() string {
	return e.err.Error()
}

// Run assembles every jurisdiction of table on a pool of workers, passing each row to
// emit. Every distinct archive is fetched once before assembly begins. Rows of one
// jurisdiction are emitted in file order; rows of different jurisdictions may
// interleave. A jurisdiction which cannot be read is recorded in the BatchResult and
// the rest continue, unless the Assembler is configured to fail fast.
func (a *Assembler) Run(ctx context.Context, table acs.TableSpec, emit EmitFunc) (*BatchResult, error) {
	header, err := a.Header(table)
	if err != nil {
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
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	rs := &stats.RunStatistics{}
	rs.Start()
	defer rs.Finish()
	res := &BatchResult{
		RunID:    id,
		Header:   header,
		Failures: make(map[string]error),
		Stats:    rs,
	}
	logger := a.logger.With("run", id.String(), "table", table.ID)
	logger.Info("starting assembly", "jurisdictions", len(pairs.Jurisdictions()), "pairs", pairs.Len())

	var failLock sync.Mutex
	fail := func(abbr string, err error) error {
		logger.Warn("jurisdiction failed", "jurisdiction", abbr, "error", err)
		failLock.Lock()
		res.Failures[abbr] = err
		failLock.Unlock()
		if a.conf.FailFast {
			return err
		}
		return nil
	}

	failedURLs, err := a.prefetch(ctx, pairs.URLs())
	if err != nil {
		return res, err
	}

	var emitLock sync.Mutex
	var capped int32
	emitRow := func(row acs.Row) error {
		emitLock.Lock()
		defer emitLock.Unlock()
		if a.conf.LimitedRun && res.Rows >= int64(a.conf.RowCap) {
			atomic.StoreInt32(&capped, 1)
			return errCapReached
		}
		if err := emit(row); err != nil {
			return &emitError{err: err}
		}
		atomic.AddInt64(&res.Rows, 1)
		rs.AddRows(row.Jurisdiction, 1)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.conf.Workers)
	for _, j := range pairs.Jurisdictions() {
		j := j
		if atomic.LoadInt32(&capped) == 1 {
			break
		}
		g.Go(func() error {
			rs.StartJurisdiction(j.Abbreviation)
			defer rs.EndJurisdiction(j.Abbreviation)
			for _, pair := range pairs.ForJurisdiction(j) {
				if err, ok := failedURLs[pair.Estimate.URL]; ok {
					return fail(j.Abbreviation, errors.FetchError{Jurisdiction: j.Abbreviation, URL: pair.Estimate.URL, Err: err})
				}
				err := a.assemblePair(gctx, pair, slicers, emitRow)
				rs.EndFilePair()
				var ee *emitError
				if err == errCapReached {
					return nil
				} else if goerrors.As(err, &ee) {
					return ee.err
				} else if err != nil && isFatal(err) {
					return err
				} else if err != nil {
					return fail(j.Abbreviation, err)
				}
			}
			return nil
		})
	}
	err = g.Wait()
	res.Truncated = atomic.LoadInt32(&capped) == 1
	if err != nil {
		return res, err
	}
	logger.Info("finished assembly", "rows", res.Rows, "failures", len(res.Failures), "truncated", res.Truncated)
	return res, nil
}

func (a *Assembler) assemblePair(ctx context.Context, pair acs.FilePair, slicers *tableSlicers, emit func(acs.Row) error) error {
	reader, err := a.openPair(ctx, pair, slicers)
	if err != nil {
		return err
	}
	defer reader.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := emit(row); err != nil {
			return err
		}
	}
}

// prefetch fetches each distinct URL once, returning the URLs which failed
func (a *Assembler) prefetch(ctx context.Context, urls []string) (map[string]error, error) {
	failed := make(map[string]error)
	var lock sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.conf.Workers)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			_, err := a.fetcher.Fetch(gctx, u)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err != nil {
				lock.Lock()
				failed[u] = err
				lock.Unlock()
			}
			return nil
		})
	}
	return failed, g.Wait()
}
