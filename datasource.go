package acs

import "context"

// JurisdictionSource lists the jurisdictions for which files are assembled. Implementations
// may memoize; the order they return is the order in which file pairs are generated.
type JurisdictionSource interface {
	Jurisdictions(ctx context.Context) ([]JurisdictionRef, error)
}

// Fetcher makes a remote resource available locally. Fetch must be idempotent, and safe
// to call concurrently for the same URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (localPath string, err error)
}

// RecordIterator yields parsed text records in file order. Next returns io.EOF once the
// records are exhausted.
type RecordIterator interface {
	Next() ([]string, error)
	Close() error
}

// RecordOpener opens a member of a local archive as a stream of records. Two iterators
// opened over the same archive must be independent of each other.
type RecordOpener interface {
	Open(localPath string, member string) (RecordIterator, error)
}

// GeographyLookup joins a record to its geography via state abbreviation and logical
// record number
type GeographyLookup interface {
	Lookup(stusab string, logrecno int) (Geography, error)
}
