// Package jam converts raw summary-file cells to numbers, recording why a cell could not
// be converted. Census files use placeholder ("jam") values for suppressed or absent
// estimates; each failed cell contributes a one-character code, and the codes for a row
// are run-length encoded into that row's jam_flags column.
package jam

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-sif/acs/errors"
)

// Code records why a cell failed numeric conversion. The zero Code means the cell converted.
type Code byte

const (
	// None indicates a cell holding a valid number
	None Code = 0
	// Missing marks a suppressed or missing value, published as "."
	Missing Code = 'm'
	// Gap marks a blank-gap value, published as " "
	Gap Code = 'g'
	// Null marks an empty value
	Null Code = 'N'
)

// Map maps placeholder values to Codes
type Map map[string]Code

// DefaultMap is the placeholder mapping used by ACS summary files
var DefaultMap = Map{
	".": Missing,
	" ": Gap,
	"":  Null,
}

// Encoder converts raw cells according to a placeholder Map
type Encoder struct {
	jams Map
}

// CreateEncoder returns a new Encoder. A nil Map selects DefaultMap.
func CreateEncoder(jams Map) *Encoder {
	if jams == nil {
		jams = DefaultMap
	}
	return &Encoder{jams: jams}
}

// EncodeCell parses raw as a number. On failure, it returns NaN and the Code for the
// placeholder. A value which is neither a number nor a known placeholder is a
// ConfigurationMismatchError: data must never be dropped silently.
func (e *Encoder) EncodeCell(raw string) (float64, Code, error) {
	if code, ok := e.jams[raw]; ok {
		return math.NaN(), code, nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		// whitespace of any width is a gap
		if code, ok := e.jams[" "]; ok {
			return math.NaN(), code, nil
		}
	} else if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v, None, nil
	} else if code, ok := e.jams[trimmed]; ok {
		return math.NaN(), code, nil
	}
	return math.NaN(), None, errors.ConfigurationMismatchError{
		Reason: fmt.Sprintf("unrecognized placeholder value %q", raw),
	}
}

// EncodeCell encodes raw with DefaultMap
func EncodeCell(raw string) (float64, Code, error) {
	return defaultEncoder.EncodeCell(raw)
}

var defaultEncoder = CreateEncoder(nil)

// Flags accumulates the Codes of the failed cells in one row, in cell order
type Flags struct {
	codes []Code
}

// Add records the Code of a cell. None is ignored.
func (f *Flags) Add(code Code) {
	if code != None {
		f.codes = append(f.codes, code)
	}
}

// Len returns the number of failed cells recorded
func (f *Flags) Len() int {
	return len(f.codes)
}

// Reset clears the recorded Codes, so the Flags can be reused for another row
func (f *Flags) Reset() {
	f.codes = f.codes[:0]
}

// Finalize returns the run-length encoding of the recorded Codes as <count><code> pairs,
// e.g. "3m1N". The boolean is false when no cell failed, in which case the row's
// jam_flags value is null.
func (f *Flags) Finalize() (string, bool) {
	return Encode(f.codes)
}

// Encode run-length encodes a sequence of Codes
func Encode(codes []Code) (string, bool) {
	if len(codes) == 0 {
		return "", false
	}
	var res strings.Builder
	run := 1
	for i := 1; i <= len(codes); i++ {
		if i < len(codes) && codes[i] == codes[i-1] {
			run++
			continue
		}
		res.WriteString(strconv.Itoa(run))
		res.WriteByte(byte(codes[i-1]))
		run = 1
	}
	return res.String(), true
}

// Decode expands a run-length encoded flag string back into its Codes
func Decode(flags string) ([]Code, error) {
	var res []Code
	count := 0
	digits := 0
	for i := 0; i < len(flags); i++ {
		c := flags[i]
		if c >= '0' && c <= '9' {
			count = count*10 + int(c-'0')
			digits++
			continue
		}
		if digits == 0 || count == 0 {
			return nil, fmt.Errorf("jam flags %q: code %q at %d has no run length", flags, c, i)
		}
		for j := 0; j < count; j++ {
			res = append(res, Code(c))
		}
		count, digits = 0, 0
	}
	if digits > 0 {
		return nil, fmt.Errorf("jam flags %q: trailing run length without a code", flags)
	}
	return res, nil
}
