package record

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"
)

type delimitedIterator struct {
	reader *csv.Reader
}

func newDelimitedIterator(r io.Reader, conf *ParserConf) *delimitedIterator {
	reader := csv.NewReader(r)
	reader.Comma = conf.Delimiter
	reader.Comment = conf.Comment
	// summary files vary in width across sequences
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return &delimitedIterator{reader: reader}
}

func (d *delimitedIterator) read() ([]string, error) {
	return d.reader.Read()
}

type fixedWidthIterator struct {
	scanner *bufio.Scanner
	conf    *ParserConf
}

func newFixedWidthIterator(r io.Reader, conf *ParserConf) *fixedWidthIterator {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &fixedWidthIterator{scanner: scanner, conf: conf}
}

func (f *fixedWidthIterator) read() ([]string, error) {
	for f.scanner.Scan() {
		line := trimCR(f.scanner.Text())
		if f.conf.Comment != 0 && strings.HasPrefix(line, string(f.conf.Comment)) {
			continue
		}
		return splitFixed(line, f.conf.Widths, f.conf.TrimSpace), nil
	}
	if err := f.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// splitFixed cuts line into fields of the given widths, counted in characters. Fields
// beyond the end of a short line are empty.
func splitFixed(line string, widths []int, trim bool) []string {
	fields := make([]string, len(widths))
	rest := line
	for i, w := range widths {
		end := 0
		for n := 0; n < w && end < len(rest); n++ {
			_, size := utf8.DecodeRuneInString(rest[end:])
			end += size
		}
		field := rest[:end]
		rest = rest[end:]
		if trim {
			field = strings.TrimSpace(field)
		}
		fields[i] = field
	}
	return fields
}
