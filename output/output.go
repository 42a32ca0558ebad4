// Package output materializes assembled tables as CSV partitions, optionally compressed
// with lz4 or zstd.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-sif/acs/transform"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// Compression selects how a partition is compressed
type Compression int

const (
	// None writes plain CSV
	None Compression = iota
	// LZ4 compresses CSV with the lz4 frame format
	LZ4
	// Zstd compresses CSV with zstandard, trading speed for smaller partitions
	Zstd
)

const (
	// LZ4Extension marks lz4 partition files
	LZ4Extension = ".lz4"
	// ZstdExtension marks zstd partition files
	ZstdExtension = ".zst"
)

// CompressionFor returns the Compression implied by a file name
func CompressionFor(path string) Compression {
	switch {
	case strings.HasSuffix(path, LZ4Extension):
		return LZ4
	case strings.HasSuffix(path, ZstdExtension):
		return Zstd
	}
	return None
}

// Writer writes the rows of a partition
type Writer struct {
	csv     *csv.Writer
	lz      *lz4.Writer
	zs      *zstd.Encoder
	file    *os.File
	columns int
	rows    int
}

// CreateWriter starts a partition on w, writing the header row. Close must be called to
// flush the partition; it does not close w.
func CreateWriter(w io.Writer, header []string, compression Compression) (*Writer, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("partition has no columns")
	}
	pw := &Writer{columns: len(header)}
	switch compression {
	case LZ4:
		pw.lz = lz4.NewWriter(w)
		w = pw.lz
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		pw.zs = enc
		w = enc
	}
	pw.csv = csv.NewWriter(w)
	if err := pw.csv.Write(header); err != nil {
		return nil, err
	}
	return pw, nil
}

// Create starts a partition file at path. Paths ending in .lz4 or .zst are compressed.
func Create(path string, header []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	pw, err := CreateWriter(f, header, CompressionFor(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	pw.file = f
	return pw, nil
}

// Write writes one row
func (w *Writer) Write(values []string) error {
	if len(values) != w.columns {
		return fmt.Errorf("row has %d values, partition has %d columns", len(values), w.columns)
	}
	if err := w.csv.Write(values); err != nil {
		return err
	}
	w.rows++
	return nil
}

// WriteRecord writes a transformed Record
func (w *Writer) WriteRecord(rec transform.Record) error {
	return w.Write(rec.Strings())
}

// Rows returns the number of rows written, excluding the header
func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes the partition, and closes its file if the Writer created it
func (w *Writer) Close() error {
	w.csv.Flush()
	err := w.csv.Error()
	if w.lz != nil {
		if cerr := w.lz.Close(); err == nil {
			err = cerr
		}
	}
	if w.zs != nil {
		if cerr := w.zs.Close(); err == nil {
			err = cerr
		}
	}
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		if cerr := c(); err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens a partition file for reading, decompressing it according to its name
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, CompressionFor(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	res := readCloser{Reader: r}
	if d, ok := r.(*zstd.Decoder); ok {
		res.closers = append(res.closers, func() error { d.Close(); return nil })
	}
	res.closers = append(res.closers, f.Close)
	return res, nil
}

// NewReader decompresses a partition stream. A zstd stream holds decoder goroutines
// until the returned reader is closed via zstd.Decoder.Close.
func NewReader(r io.Reader, compression Compression) (io.Reader, error) {
	switch compression {
	case LZ4:
		return lz4.NewReader(r), nil
	case Zstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return r, nil
}
