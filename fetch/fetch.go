// Package fetch makes remote summary file archives available on local disk. Downloads
// are cached by URL, so fetching the same archive again, or concurrently from several
// workers, transfers it at most once.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/docker/docker/pkg/locker"
	"github.com/go-sif/acs/logging"
	"golang.org/x/time/rate"
)

// Config configures a Cache
type Config struct {
	Dir               string        // Dir holds downloaded archives. Required.
	Timeout           time.Duration // Timeout bounds a single download. Default: 10m.
	UserAgent         string        // UserAgent sent with requests. Default: acs-assembler/1.0.
	RequestsPerSecond float64       // RequestsPerSecond limits the download start rate. Default: 2.
	Burst             int           // Burst is the number of downloads which may start at once. Default: 1.
	Concurrency       int           // Concurrency bounds the downloads in flight during Prefetch. Default: 4.
	Client            *http.Client  // Client performs requests. Default: a client with Timeout.
	Logger            *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Minute
	}
	if c.UserAgent == "" {
		c.UserAgent = "acs-assembler/1.0"
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 2
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
}

// Cache downloads archives into a directory, at most once per URL
type Cache struct {
	conf      Config
	limiter   *rate.Limiter
	locks     *locker.Locker
	logger    *slog.Logger
	downloads int64
}

// New creates a Cache, creating its directory if necessary
func New(conf Config) (*Cache, error) {
	if conf.Dir == "" {
		return nil, fmt.Errorf("fetch: no cache directory configured")
	}
	conf.defaults()
	if err := os.MkdirAll(conf.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("fetch: creating cache directory: %w", err)
	}
	return &Cache{
		conf:    conf,
		limiter: rate.NewLimiter(rate.Limit(conf.RequestsPerSecond), conf.Burst),
		locks:   locker.New(),
		logger:  logging.OrDefault(conf.Logger).With("component", "fetch"),
	}, nil
}

// Path returns the local path at which the archive for rawURL is cached
func (c *Cache) Path(rawURL string) string {
	base := "archive"
	if u, err := url.Parse(rawURL); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
		base = path.Base(u.Path)
	}
	return filepath.Join(c.conf.Dir, fmt.Sprintf("%016x-%s", xxhash.Sum64String(rawURL), base))
}

// Downloads returns the number of transfers this Cache has completed
func (c *Cache) Downloads() int64 {
	return atomic.LoadInt64(&c.downloads)
}

// Fetch returns the local path of the archive at rawURL, downloading it if it is not
// already cached. Concurrent calls for the same URL wait for a single transfer. URLs
// without an http or https scheme name local files, which are returned as they are.
func (c *Cache) Fetch(ctx context.Context, rawURL string) (string, error) {
	if local, ok := localPath(rawURL); ok {
		if _, err := os.Stat(local); err != nil {
			return "", err
		}
		return local, nil
	}
	dest := c.Path(rawURL)
	c.locks.Lock(rawURL)
	defer c.locks.Unlock(rawURL)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	start := time.Now()
	n, err := c.download(ctx, rawURL, dest)
	if err != nil {
		return "", err
	}
	atomic.AddInt64(&c.downloads, 1)
	c.logger.Info("downloaded archive", "url", rawURL, "bytes", n, "duration", time.Since(start))
	return dest, nil
}

func (c *Cache) download(ctx context.Context, rawURL string, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.conf.UserAgent)
	resp, err := c.conf.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("http %d", resp.StatusCode)
	}
	tmp, err := os.CreateTemp(c.conf.Dir, ".part-*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("read body: %w", err)
	}
	// a partial transfer never becomes visible under dest
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

func localPath(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// single letter schemes are windows drive letters
		return rawURL, true
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return "", false
	case "file":
		return u.Path, true
	}
	return rawURL, true
}
