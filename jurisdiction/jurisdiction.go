// Package jurisdiction provides the lists of states and territories for which tables
// are assembled.
package jurisdiction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	acs "github.com/go-sif/acs"
	"github.com/tidwall/gjson"
)

// Static is a fixed list of jurisdictions
type Static []acs.JurisdictionRef

// Jurisdictions returns the list
func (s Static) Jurisdictions(ctx context.Context) ([]acs.JurisdictionRef, error) {
	res := make([]acs.JurisdictionRef, len(s))
	copy(res, s)
	return res, nil
}

// JSONLConf configures the parsing of a JSON lines states file. Fields are gjson paths.
type JSONLConf struct {
	AbbreviationField string // Defaults to stusab
	IDField           string // Defaults to state
	NameField         string // Defaults to name
	FilterField       string // Rows are kept only when this field equals FilterValue. Defaults to component.
	FilterValue       string // Defaults to 00, selecting whole states rather than their components.
	Comment           rune   // Lines beginning with the comment character are ignored
	MaxBufferSize     int    // Maximum size in bytes of a line. Defaults to bufio.MaxScanTokenSize.
}

func (c *JSONLConf) defaults() {
	if c.AbbreviationField == "" {
		c.AbbreviationField = "stusab"
	}
	if c.IDField == "" {
		c.IDField = "state"
	}
	if c.NameField == "" {
		c.NameField = "name"
	}
	if c.FilterField == "" {
		c.FilterField = "component"
	}
	if c.FilterValue == "" {
		c.FilterValue = "00"
	}
	if c.MaxBufferSize == 0 {
		c.MaxBufferSize = bufio.MaxScanTokenSize
	}
}

// ParseJSONL reads jurisdictions from JSON lines, in file order. Rows which lack the
// filter field are kept.
func ParseJSONL(r io.Reader, conf JSONLConf) ([]acs.JurisdictionRef, error) {
	conf.defaults()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), conf.MaxBufferSize)
	var res []acs.JurisdictionRef
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || (conf.Comment != 0 && strings.HasPrefix(text, string(conf.Comment))) {
			continue
		}
		if !gjson.Valid(text) {
			return nil, fmt.Errorf("line %d: invalid JSON", line)
		}
		row := gjson.Parse(text)
		if f := row.Get(conf.FilterField); f.Exists() && f.String() != conf.FilterValue {
			continue
		}
		abbr := row.Get(conf.AbbreviationField)
		if !abbr.Exists() || abbr.String() == "" {
			return nil, fmt.Errorf("line %d: no %s", line, conf.AbbreviationField)
		}
		res = append(res, acs.JurisdictionRef{
			Abbreviation: abbr.String(),
			ID:           row.Get(conf.IDField).String(),
			Name:         row.Get(conf.NameField).String(),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// JSONLFile reads jurisdictions from a JSON lines file each time it is asked
type JSONLFile struct {
	Path string
	Conf JSONLConf
}

// Jurisdictions parses the file
func (f JSONLFile) Jurisdictions(ctx context.Context) ([]acs.JurisdictionRef, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseJSONL(file, f.Conf)
}

// Cached memoizes another JurisdictionSource. The first successful result is kept for
// the life of the Cached and never invalidated; failures are retried.
type Cached struct {
	source acs.JurisdictionSource
	lock   sync.Mutex
	refs   []acs.JurisdictionRef
	loaded bool
}

// CreateCached wraps source in a memoizing JurisdictionSource
func CreateCached(source acs.JurisdictionSource) *Cached {
	return &Cached{source: source}
}

// Jurisdictions returns the memoized list, loading it on first use
func (c *Cached) Jurisdictions(ctx context.Context) ([]acs.JurisdictionRef, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.loaded {
		refs, err := c.source.Jurisdictions(ctx)
		if err != nil {
			return nil, err
		}
		c.refs = refs
		c.loaded = true
	}
	res := make([]acs.JurisdictionRef, len(c.refs))
	copy(res, c.refs)
	return res, nil
}
