package acs

import "fmt"

// MaxSequence is the highest sequence number distributed in the per-state summary files
const MaxSequence = 117

// TableSpec identifies one output table and locates its data cells within the
// per-state files of a sequence.
type TableSpec struct {
	ID          string   // ID is the Census table identifier, e.g. B01001
	Description string   // Description is the table title
	Universe    string   // Universe describes the population the table covers
	Sequence    int      // Sequence selects the file group which contains this table
	Start       int      // Start is the 1-based position of the first data cell within a record
	Length      int      // Length is the number of data cells (estimates) in the table
	Columns     []string // Columns are the declared destination column names, in order
}

// Validate checks the invariants of a TableSpec
func (t TableSpec) Validate() error {
	if t.Start < 1 {
		return fmt.Errorf("table %s: start %d must be >= 1", t.ID, t.Start)
	}
	if t.Length < 1 {
		return fmt.Errorf("table %s: length %d must be >= 1", t.ID, t.Length)
	}
	if t.Sequence < 1 || t.Sequence > MaxSequence {
		return fmt.Errorf("table %s: sequence %d must be in [1,%d]", t.ID, t.Sequence, MaxSequence)
	}
	return nil
}

// Datatype names the type of a header column
type Datatype string

const (
	// StringType is a textual header column
	StringType Datatype = "str"
	// IntType is an integer header column
	IntType Datatype = "int"
)

// HeaderColumn describes one of the fixed leading columns common to every record.
// Position is the 0-based field index within a record; positions 0 and 1 hold the
// file identification and file type fields, which are not carried into output.
type HeaderColumn struct {
	Name        string
	Description string
	Width       int
	Datatype    Datatype
	Position    int
}

// DefaultHeaderColumns are the leading columns of ACS estimate and margin records
var DefaultHeaderColumns = []HeaderColumn{
	{Name: "STUSAB", Description: "State/U.S.-Abbreviation (USPS)", Width: 2, Datatype: StringType, Position: 2},
	{Name: "CHARITER", Description: "Character Iteration", Width: 3, Datatype: StringType, Position: 3},
	{Name: "SEQUENCE", Description: "Sequence Number", Width: 4, Datatype: IntType, Position: 4},
	{Name: "LOGRECNO", Description: "Logical Record Number", Width: 7, Datatype: IntType, Position: 5},
}

// ValidateHeaderColumns checks that header positions are strictly increasing and
// never address the reserved leading field
func ValidateHeaderColumns(cols []HeaderColumn) error {
	if len(cols) == 0 {
		return fmt.Errorf("no header columns defined")
	}
	prev := 0
	for _, c := range cols {
		if c.Position <= 1 {
			return fmt.Errorf("header column %s: position %d is reserved", c.Name, c.Position)
		}
		if c.Position <= prev {
			return fmt.Errorf("header column %s: position %d is not increasing", c.Name, c.Position)
		}
		prev = c.Position
	}
	return nil
}

// JurisdictionRef identifies a state or territory
type JurisdictionRef struct {
	Abbreviation string // Abbreviation is the 2-letter USPS code
	ID           string // ID is the numeric state FIPS code
	Name         string // Name is the display name, used in download URLs
}

// AreaSize distinguishes the two archive variants distributed for a jurisdiction
type AreaSize byte

const (
	// SmallArea archives hold tracts and block groups
	SmallArea AreaSize = 's'
	// LargeArea archives hold all other geographies
	LargeArea AreaSize = 'l'
)

// FileKind distinguishes estimate files from margin of error files
type FileKind byte

const (
	// EstimateFile holds estimates
	EstimateFile FileKind = 'e'
	// MarginFile holds 90% margins of error
	MarginFile FileKind = 'm'
)

// SourceSpec addresses one member file inside a remote archive
type SourceSpec struct {
	URL    string   // URL of the archive
	Member string   // Member is the file name within the archive
	Kind   FileKind // Kind is either EstimateFile or MarginFile
}

// FilePair is the estimate and margin file for one jurisdiction, sequence and area size
type FilePair struct {
	Jurisdiction JurisdictionRef
	Size         AreaSize
	Estimate     SourceSpec
	Margin       SourceSpec
}
