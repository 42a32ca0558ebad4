package fetch

import (
	"context"
	"sort"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// PrefetchResult records the outcome of fetching a set of URLs
type PrefetchResult struct {
	Paths    map[string]string // Paths maps each successfully fetched URL to its local path
	Failures map[string]error  // Failures maps each URL which could not be fetched to its error
}

// Err combines the failures of a PrefetchResult, in URL order. It is nil if every URL
// was fetched.
func (r *PrefetchResult) Err() error {
	urls := make([]string, 0, len(r.Failures))
	for u := range r.Failures {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	var errs *multierror.Error
	for _, u := range urls {
		errs = multierror.Append(errs, r.Failures[u])
	}
	return errs.ErrorOrNil()
}

// Prefetch fetches every URL on a pool of Concurrency workers. A failed URL does not
// stop the others; only cancellation of ctx ends a Prefetch early.
func (c *Cache) Prefetch(ctx context.Context, urls []string) (*PrefetchResult, error) {
	res := &PrefetchResult{
		Paths:    make(map[string]string),
		Failures: make(map[string]error),
	}
	var lock sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.conf.Concurrency)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			p, err := c.Fetch(gctx, u)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			lock.Lock()
			defer lock.Unlock()
			if err != nil {
				c.logger.Warn("prefetch failed", "url", u, "error", err)
				res.Failures[u] = err
			} else {
				res.Paths[u] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}
