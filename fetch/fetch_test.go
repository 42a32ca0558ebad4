package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testServer(hits *int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		if r.URL.Path == "/missing.zip" {
			http.NotFound(w, r)
			return
		}
		// give concurrent callers a chance to pile up
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte("archive:" + r.URL.Path))
	}))
}

func testCache(t *testing.T) *Cache {
	c, err := New(Config{Dir: t.TempDir(), RequestsPerSecond: 1000, Burst: 100})
	require.Nil(t, err)
	return c
}

func TestFetchCachesDownloads(t *testing.T) {
	var hits int64
	srv := testServer(&hits)
	defer srv.Close()
	c := testCache(t)

	p, err := c.Fetch(context.Background(), srv.URL+"/Alaska.zip")
	require.Nil(t, err)
	data, err := os.ReadFile(p)
	require.Nil(t, err)
	require.Equal(t, "archive:/Alaska.zip", string(data))
	require.Equal(t, c.Path(srv.URL+"/Alaska.zip"), p)

	again, err := c.Fetch(context.Background(), srv.URL+"/Alaska.zip")
	require.Nil(t, err)
	require.Equal(t, p, again)
	require.Equal(t, int64(1), atomic.LoadInt64(&hits))
	require.Equal(t, int64(1), c.Downloads())
}

func TestFetchConcurrentSameURL(t *testing.T) {
	var hits int64
	srv := testServer(&hits)
	defer srv.Close()
	c := testCache(t)

	var wg sync.WaitGroup
	paths := make([]string, 10)
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = c.Fetch(context.Background(), srv.URL+"/Texas.zip")
		}(i)
	}
	wg.Wait()
	require.Equal(t, int64(1), atomic.LoadInt64(&hits))
	for i, p := range paths {
		require.Nil(t, errs[i])
		require.Equal(t, paths[0], p)
	}
}

func TestFetchFailureLeavesNoFile(t *testing.T) {
	var hits int64
	srv := testServer(&hits)
	defer srv.Close()
	c := testCache(t)

	_, err := c.Fetch(context.Background(), srv.URL+"/missing.zip")
	require.Error(t, err)
	entries, err := os.ReadDir(c.conf.Dir)
	require.Nil(t, err)
	require.Len(t, entries, 0)
}

func TestFetchLocalPath(t *testing.T) {
	c := testCache(t)
	p := filepath.Join(t.TempDir(), "local.zip")
	require.Nil(t, os.WriteFile(p, []byte("x"), 0o644))

	got, err := c.Fetch(context.Background(), p)
	require.Nil(t, err)
	require.Equal(t, p, got)
	got, err = c.Fetch(context.Background(), "file://"+p)
	require.Nil(t, err)
	require.Equal(t, p, got)
	_, err = c.Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.zip"))
	require.Error(t, err)
}

func TestPrefetchPartialFailure(t *testing.T) {
	var hits int64
	srv := testServer(&hits)
	defer srv.Close()
	c := testCache(t)

	urls := []string{srv.URL + "/a.zip", srv.URL + "/missing.zip", srv.URL + "/b.zip", srv.URL + "/a.zip"}
	res, err := c.Prefetch(context.Background(), urls)
	require.Nil(t, err)
	require.Len(t, res.Paths, 2)
	require.Len(t, res.Failures, 1)
	require.Contains(t, res.Failures, srv.URL+"/missing.zip")
	require.Error(t, res.Err())
	require.Equal(t, int64(2), c.Downloads())
}

func TestPrefetchCancelled(t *testing.T) {
	var hits int64
	srv := testServer(&hits)
	defer srv.Close()
	c := testCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Prefetch(ctx, []string{srv.URL + "/a.zip"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
