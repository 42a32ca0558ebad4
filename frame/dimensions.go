package frame

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sif/acs/schema"
)

// Classification describes the population a data column counts
type Classification struct {
	Sex     string // male, female or na
	Age     string // e.g. 0-4, 5-9, 85+, or na
	RaceEth string // all, or the race iteration of the table, e.g. white or hisp
	ColNum  int    // ColNum is the number in the last three digits of the column name
}

// Classifier derives a Classification for a column of a table
type Classifier func(table *schema.Table, col *schema.Column) Classification

var raceIterations = map[byte]string{
	'A': "white",
	'B': "black",
	'C': "aian",
	'D': "asian",
	'E': "nhopi",
	'F': "other",
	'G': "many",
	'H': "nhwhite",
	'I': "hisp",
}

var (
	ageRange = regexp.MustCompile(`(?i)(\d+)\s+(?:to|and)\s+(\d+)\s+years`)
	ageUnder = regexp.MustCompile(`(?i)under\s+(\d+)\s+years`)
	ageOver  = regexp.MustCompile(`(?i)(\d+)\s+years\s+and\s+over`)
	ageOne   = regexp.MustCompile(`(?i)(\d+)\s+years`)
	female   = regexp.MustCompile(`(?i)\bfemale\b`)
	male     = regexp.MustCompile(`(?i)\bmale\b`)
)

// DefaultClassifier classifies columns from their descriptions, and the race
// iteration letter which ends the ids of iterated tables such as B01001A
func DefaultClassifier(table *schema.Table, col *schema.Column) Classification {
	c := Classification{Sex: "na", Age: "na", RaceEth: "all"}
	if id := table.ID; len(id) > 6 {
		if r, ok := raceIterations[id[len(id)-1]]; ok {
			c.RaceEth = r
		}
	}
	desc := col.Description()
	switch {
	case female.MatchString(desc):
		c.Sex = "female"
	case male.MatchString(desc):
		c.Sex = "male"
	}
	if m := ageRange.FindStringSubmatch(desc); m != nil {
		c.Age = m[1] + "-" + m[2]
	} else if m := ageUnder.FindStringSubmatch(desc); m != nil {
		n, _ := strconv.Atoi(m[1])
		c.Age = fmt.Sprintf("0-%d", n-1)
	} else if m := ageOver.FindStringSubmatch(desc); m != nil {
		c.Age = m[1] + "+"
	} else if m := ageOne.FindStringSubmatch(desc); m != nil {
		c.Age = m[1]
	}
	return c
}

// DimColumns returns the names of the estimate columns whose Classification satisfies
// pred. A nil classifier selects DefaultClassifier.
func (f *Frame) DimColumns(pred func(Classification) bool, classifier Classifier) ([]string, error) {
	if f.table == nil {
		return nil, fmt.Errorf("frame has no table to classify")
	}
	if classifier == nil {
		classifier = DefaultClassifier
	}
	var res []string
	for i, col := range f.table.Columns() {
		if i < f.table.NumPreambleColumns() || strings.HasSuffix(col.Name(), schema.MarginSuffix) {
			continue
		}
		name := col.Name()
		if len(name) < 3 {
			continue
		}
		n, err := strconv.Atoi(name[len(name)-3:])
		if err != nil {
			continue
		}
		c := classifier(f.table, col)
		c.ColNum = n
		if pred(c) {
			res = append(res, name)
		}
	}
	return res, nil
}
