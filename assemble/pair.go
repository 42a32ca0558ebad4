package assemble

import (
	"context"
	"io"
	"log/slog"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
)

// pairReader zips the records of an estimate file and its margin file
type pairReader struct {
	pair    acs.FilePair
	est     acs.RecordIterator
	mar     acs.RecordIterator
	slicers *tableSlicers
	logger  *slog.Logger
	read    int
}

func (a *Assembler) openPair(ctx context.Context, pair acs.FilePair, slicers *tableSlicers) (*pairReader, error) {
	abbr := pair.Jurisdiction.Abbreviation
	open := func(spec acs.SourceSpec) (acs.RecordIterator, error) {
		local, err := a.fetcher.Fetch(ctx, spec.URL)
		if err != nil {
			return nil, errors.FetchError{Jurisdiction: abbr, URL: spec.URL, Err: err}
		}
		it, err := a.opener.Open(local, spec.Member)
		if err != nil {
			return nil, errors.FetchError{Jurisdiction: abbr, URL: spec.URL + "#" + spec.Member, Err: err}
		}
		return it, nil
	}
	est, err := open(pair.Estimate)
	if err != nil {
		return nil, err
	}
	mar, err := open(pair.Margin)
	if err != nil {
		est.Close()
		return nil, err
	}
	return &pairReader{pair: pair, est: est, mar: mar, slicers: slicers, logger: a.logger}, nil
}

// next returns the next Row, or io.EOF once either file is exhausted
func (p *pairReader) next() (acs.Row, error) {
	abbr := p.pair.Jurisdiction.Abbreviation
	estRec, err := p.est.Next()
	if err == io.EOF {
		if _, merr := p.mar.Next(); merr != io.EOF {
			p.logger.Warn("margin file is longer than estimate file", "jurisdiction", abbr, "member", p.pair.Margin.Member, "records", p.read)
		}
		return acs.Row{}, io.EOF
	} else if err != nil {
		return acs.Row{}, errors.FetchError{Jurisdiction: abbr, URL: p.pair.Estimate.URL + "#" + p.pair.Estimate.Member, Err: err}
	}
	marRec, err := p.mar.Next()
	if err == io.EOF {
		p.logger.Warn("estimate file is longer than margin file", "jurisdiction", abbr, "member", p.pair.Estimate.Member, "records", p.read)
		return acs.Row{}, io.EOF
	} else if err != nil {
		return acs.Row{}, errors.FetchError{Jurisdiction: abbr, URL: p.pair.Margin.URL + "#" + p.pair.Margin.Member, Err: err}
	}
	p.read++
	header, err := p.slicers.header.Slice(estRec)
	if err != nil {
		return acs.Row{}, err
	}
	estCells, err := p.slicers.data.Slice(estRec)
	if err != nil {
		return acs.Row{}, err
	}
	marCells, err := p.slicers.data.Slice(marRec)
	if err != nil {
		return acs.Row{}, err
	}
	cells := make([]string, 2*len(estCells))
	for i := range estCells {
		cells[2*i] = estCells[i]
		cells[2*i+1] = marCells[i]
	}
	return acs.Row{Jurisdiction: abbr, Header: header, Cells: cells}, nil
}

func (p *pairReader) Close() error {
	err := p.est.Close()
	if merr := p.mar.Close(); err == nil {
		err = merr
	}
	return err
}
