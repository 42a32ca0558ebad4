// Package record opens summary files, either directly on disk or as members of a zip
// archive, and parses them into text records. Every call to Open produces an independent
// iterator with its own file handles.
package record

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
	"golang.org/x/text/encoding/charmap"
)

// Format selects how lines are split into fields
type Format int

const (
	// Delimited records separate fields with a delimiter character
	Delimited Format = iota
	// FixedWidth records assign each field a fixed number of characters
	FixedWidth
)

// ParserConf configures an Opener
type ParserConf struct {
	Format      Format // Defaults to Delimited
	HeaderLines int    // The number of lines to ignore from the beginning of each file. Defaults to 0.
	Delimiter   rune   // The delimiter separating fields in Delimited files. Defaults to ,
	Comment     rune   // Lines beginning with the comment character are ignored. Defaults to no comment character.
	Widths      []int  // Field widths, in characters, for FixedWidth files
	TrimSpace   bool   // Remove surrounding whitespace from FixedWidth fields
	Latin1      bool   // Decode the file from ISO-8859-1, as used by geofiles
}

// Opener opens record files according to a ParserConf
type Opener struct {
	conf *ParserConf
}

// CreateOpener returns a new Opener
func CreateOpener(conf *ParserConf) (*Opener, error) {
	if conf == nil {
		conf = &ParserConf{}
	}
	if conf.Delimiter == 0 {
		conf.Delimiter = ','
	}
	if conf.Comment != 0 && conf.Comment == conf.Delimiter {
		return nil, fmt.Errorf("comment character cannot equal the delimiter")
	}
	if conf.Format == FixedWidth {
		if len(conf.Widths) == 0 {
			return nil, fmt.Errorf("fixed width format requires field widths")
		}
		for _, w := range conf.Widths {
			if w <= 0 {
				return nil, fmt.Errorf("invalid field width %d", w)
			}
		}
	}
	return &Opener{conf: conf}, nil
}

// Open returns an iterator over the records of member within the archive at localPath.
// An empty member opens localPath itself. When localPath is a directory, member names a
// file within it.
func (o *Opener) Open(localPath string, member string) (acs.RecordIterator, error) {
	r, closers, err := openStream(localPath, member)
	if err != nil {
		return nil, err
	}
	if o.conf.Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}
	var it lineIterator
	switch o.conf.Format {
	case FixedWidth:
		it = newFixedWidthIterator(r, o.conf)
	default:
		it = newDelimitedIterator(r, o.conf)
	}
	for i := 0; i < o.conf.HeaderLines; i++ {
		if _, err := it.read(); err != nil {
			closeAll(closers)
			if err == io.EOF {
				return nil, fmt.Errorf("%s: fewer than %d header lines", describe(localPath, member), o.conf.HeaderLines)
			}
			return nil, err
		}
	}
	return &iterator{lines: it, closers: closers}, nil
}

func describe(localPath string, member string) string {
	if member == "" {
		return localPath
	}
	return localPath + "#" + member
}

func openStream(localPath string, member string) (io.Reader, []io.Closer, error) {
	if member == "" {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, nil, err
		}
		return f, []io.Closer{f}, nil
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		f, err := os.Open(filepath.Join(localPath, member))
		if err != nil {
			return nil, nil, err
		}
		return f, []io.Closer{f}, nil
	}
	zr, err := zip.OpenReader(localPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive %s: %w", localPath, err)
	}
	for _, f := range zr.File {
		if f.Name == member || path.Base(f.Name) == member {
			rc, err := f.Open()
			if err != nil {
				zr.Close()
				return nil, nil, err
			}
			return rc, []io.Closer{rc, zr}, nil
		}
	}
	zr.Close()
	return nil, nil, errors.LookupError{Kind: "archive member", Key: describe(localPath, member)}
}

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type lineIterator interface {
	read() ([]string, error)
}

type iterator struct {
	lines   lineIterator
	closers []io.Closer
	closed  bool
}

// Next returns the next record, or io.EOF
func (it *iterator) Next() ([]string, error) {
	if it.closed {
		return nil, io.EOF
	}
	return it.lines.read()
}

// Close releases the files held by this iterator
func (it *iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return closeAll(it.closers)
}

// trimCR removes a trailing carriage return, for files with DOS line endings
func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}
