package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SequenceConf configures ParseSequence
type SequenceConf struct {
	Year       int                // Only rows for this year are used, when the file has a year column. 0 disables the filter.
	Release    int                // Only rows for this release are used, when the file has a release column. 0 disables the filter.
	Header     []acs.HeaderColumn // Header columns of every table. Defaults to acs.DefaultHeaderColumns.
	LimitedRun bool               // Stop after the first 1000 relevant rows, for fast iteration
}

var titleCaser = cases.Title(language.English)

// limitedRunRows bounds the rows read from a sequence file in a limited run
const limitedRunRows = 1000

var sequenceAliases = map[string]string{
	"table_id":             "table_id",
	"sequence_number":      "sequence_number",
	"line":                 "line",
	"line_number":          "line",
	"start":                "start",
	"start_position":       "start",
	"table_cells":          "table_cells",
	"total_cells_in_table": "table_cells",
	"title":                "title",
	"table_title":          "title",
	"is_column":            "is_column",
	"year":                 "year",
	"release":              "release",
}

type tableBuilder struct {
	table   *Table
	data    []DataColumn
	seen    map[string]bool
	ordinal int
}

// ParseSequence reads the Census table/sequence lookup file, which lists each table's
// sequence, start position and cell count, followed by one line per data cell. It
// returns the described Tables sorted by ID. Tables declared more than once are ignored,
// as are sequences beyond acs.MaxSequence.
func ParseSequence(r io.Reader, conf SequenceConf) ([]*Table, error) {
	if conf.Header == nil {
		conf.Header = acs.DefaultHeaderColumns
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading sequence header: %w", err)
	}
	idx := make(map[string]int)
	for i, h := range header {
		if alias, ok := sequenceAliases[MangleName(h)]; ok {
			idx[alias] = i
		}
	}
	for _, required := range []string{"table_id", "sequence_number", "line", "start", "table_cells", "title"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("sequence file has no %s column", required)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	builders := make(map[string]*tableBuilder)
	ignore := make(map[string]bool)
	rows := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if conf.Year != 0 && field(rec, "year") != "" && atoi(field(rec, "year")) != conf.Year {
			continue
		}
		if conf.Release != 0 && field(rec, "release") != "" && atoi(field(rec, "release")) != conf.Release {
			continue
		}
		tableID := field(rec, "table_id")
		if ignore[tableID] {
			continue
		}
		sequence := atoi(field(rec, "sequence_number"))
		if sequence > acs.MaxSequence {
			continue
		}
		rows++
		title := field(rec, "title")
		switch {
		case field(rec, "start") != "":
			// stopping here ensures all columns of the previous table were read
			if conf.LimitedRun && rows > limitedRunRows {
				return finish(builders, conf.Header)
			}
			if _, seen := builders[tableID]; seen {
				ignore[tableID] = true
				delete(builders, tableID)
				continue
			}
			start, err := strconv.ParseFloat(field(rec, "start"), 64)
			if err != nil {
				return nil, fmt.Errorf("table %s: invalid start %q", tableID, field(rec, "start"))
			}
			t := CreateEmptyTable(tableID)
			t.Description = titleCaser.String(strings.ToLower(title))
			t.Sequence = sequence
			t.Start = int(start)
			t.Length = leadingInt(field(rec, "table_cells"))
			builders[tableID] = &tableBuilder{table: t, seen: make(map[string]bool)}
		case strings.Contains(title, "Universe"):
			if b, ok := builders[tableID]; ok {
				b.table.Universe = strings.TrimSpace(strings.Replace(title, "Universe: ", "", 1))
			}
		case isColumn(field(rec, "is_column"), field(rec, "line"), idx):
			b, ok := builders[tableID]
			if !ok {
				continue
			}
			line, err := strconv.ParseFloat(field(rec, "line"), 64)
			if err != nil {
				return nil, fmt.Errorf("table %s: invalid line %q", tableID, field(rec, "line"))
			}
			name := fmt.Sprintf("%s%03d", tableID, int(line))
			if b.seen[name] {
				return nil, errors.ConfigurationMismatchError{Table: tableID, Reason: fmt.Sprintf("column %s declared twice", name)}
			}
			b.seen[name] = true
			b.data = append(b.data, DataColumn{Name: name, Description: title})
		}
	}
	return finish(builders, conf.Header)
}

func isColumn(flag string, line string, idx map[string]int) bool {
	if _, ok := idx["is_column"]; ok {
		return flag == "Y"
	}
	// without an explicit flag, header lines have fractional or missing line numbers
	n, err := strconv.Atoi(line)
	return err == nil && n > 0
}

func finish(builders map[string]*tableBuilder, header []acs.HeaderColumn) ([]*Table, error) {
	res := make([]*Table, 0, len(builders))
	for id, b := range builders {
		t, err := CreateTable(id, header, b.data)
		if err != nil {
			return nil, err
		}
		t.Description = b.table.Description
		t.Universe = b.table.Universe
		t.Sequence = b.table.Sequence
		t.Start = b.table.Start
		t.Length = b.table.Length
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// leadingInt parses cell counts such as "49" or "49 CELLS"
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return atoi(s[:end])
}
