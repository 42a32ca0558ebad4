package source

import (
	"fmt"
	"strings"

	acs "github.com/go-sif/acs"
)

// Config locates summary file archives
type Config struct {
	Year         int    // Year is the final year of the release, e.g. 2014
	Release      int    // Release is 1, 3 or 5
	Root         string // Root is substituted for {root} in URL templates
	SmallAreaURL string // SmallAreaURL is the archive template for tracts and block groups. Empty to skip.
	LargeAreaURL string // LargeAreaURL is the archive template for all other geographies. Empty to skip.
}

// Validate checks that a Config can generate file pairs
func (c Config) Validate() error {
	if c.Year <= 0 {
		return fmt.Errorf("invalid year %d", c.Year)
	}
	if c.Release <= 0 {
		return fmt.Errorf("invalid release %d", c.Release)
	}
	if c.SmallAreaURL == "" && c.LargeAreaURL == "" {
		return fmt.Errorf("no URL templates configured")
	}
	return nil
}

type template struct {
	size acs.AreaSize
	url  string
}

func (c Config) templates() []template {
	var res []template
	if c.SmallAreaURL != "" {
		res = append(res, template{acs.SmallArea, c.SmallAreaURL})
	}
	if c.LargeAreaURL != "" {
		res = append(res, template{acs.LargeArea, c.LargeAreaURL})
	}
	return res
}

// Resolve fills in the {root} and {state_name} placeholders of a URL template. Spaces
// are removed from the result, so "New Mexico" resolves to "NewMexico".
func Resolve(tmpl string, root string, stateName string) string {
	url := strings.NewReplacer("{root}", root, "{state_name}", stateName).Replace(tmpl)
	return strings.ReplaceAll(url, " ", "")
}

// FileName returns the base name of the record file for a jurisdiction and sequence.
// The estimate and margin members prefix it with "e" and "m".
func FileName(year int, release int, stusab string, sequence int) string {
	return fmt.Sprintf("%d%d%s%04d000.txt", year, release, strings.ToLower(stusab), sequence)
}
