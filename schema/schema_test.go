package schema

import (
	"strings"
	"testing"

	acs "github.com/go-sif/acs"
	"github.com/go-sif/acs/errors"
	"github.com/stretchr/testify/require"
)

func TestCreateTable(t *testing.T) {
	table, err := CreateTable("B01001", acs.DefaultHeaderColumns, []DataColumn{
		{Name: "B01001001", Description: "Total:"},
		{Name: "B01001002", Description: "Male:"},
	})
	require.Nil(t, err)
	require.Equal(t, []string{
		"id", "stusab", "chariter", "sequence", "logrecno",
		"geoid", "gvid", "sumlevel", "jam_flags",
		"b01001001", "b01001001_m90", "b01001002", "b01001002_m90",
	}, table.ColumnNames())
	require.Equal(t, 9, table.NumPreambleColumns())
	require.Equal(t, 13, table.NumColumns())

	col, err := table.GetColumn("b01001002_m90")
	require.Nil(t, err)
	require.Equal(t, 12, col.Index())
	require.Equal(t, Margin, col.Role())
	require.Equal(t, Float, col.Kind())
	require.Equal(t, "Margin of error for: b01001002", col.Description())

	col, err = table.GetColumn("logrecno")
	require.Nil(t, err)
	require.Equal(t, Integer, col.Kind())

	require.Len(t, table.EstimateColumns(), 2)
	_, err = table.GetColumn("nope")
	require.ErrorAs(t, err, &errors.LookupError{})
}

func TestCreateColumnRejectsDuplicates(t *testing.T) {
	table := CreateEmptyTable("B01001")
	require.Nil(t, table.AddDataColumn("B01001001", "Total:"))
	err := table.AddDataColumn("b01001001", "Total:")
	require.ErrorAs(t, err, &errors.ConfigurationMismatchError{})
	err = table.CreateColumn("late", Text, Preamble, "")
	require.ErrorAs(t, err, &errors.ConfigurationMismatchError{})
}

func TestMangleName(t *testing.T) {
	require.Equal(t, "stusab", MangleName("STUSAB"))
	require.Equal(t, "b01001001", MangleName("B01001001"))
	require.Equal(t, "total_cells_in_table", MangleName("Total Cells in Table"))
	require.Equal(t, "a_b", MangleName(" (A) -- B "))
}

const sequenceCSV = `year,release,table_id,sequence_number,line,start,table_cells,title,is_column
2014,5,B01001,2,,7,3,SEX BY AGE,
2014,5,B01001,2,,,,Universe:  Total population,
2014,5,B01001,2,1,,,Total:,Y
2014,5,B01001,2,2,,,Male:,Y
2014,5,B01001,2,3,,,Female:,Y
2014,5,B01003,2,,10,1,TOTAL POPULATION,
2014,5,B01003,2,1,,,Total,Y
2013,5,B99999,2,,7,1,WRONG YEAR,
2014,5,C99999,200,,7,1,BEYOND SEQUENCES,
2014,5,B02001,3,,7,1,FIRST,
2014,5,B02001,3,,9,1,SECOND,
`

func TestParseSequence(t *testing.T) {
	tables, err := ParseSequence(strings.NewReader(sequenceCSV), SequenceConf{Year: 2014, Release: 5})
	require.Nil(t, err)
	require.Len(t, tables, 2)

	b01001 := tables[0]
	require.Equal(t, "B01001", b01001.ID)
	require.Equal(t, "Sex By Age", b01001.Description)
	require.Equal(t, "Total population", b01001.Universe)
	require.Equal(t, 2, b01001.Sequence)
	require.Equal(t, 7, b01001.Start)
	require.Equal(t, 3, b01001.Length)
	spec := b01001.Spec()
	require.Nil(t, spec.Validate())
	require.Equal(t, "b01001001", spec.Columns[9])
	require.Equal(t, "b01001003_m90", spec.Columns[len(spec.Columns)-1])

	require.Equal(t, "B01003", tables[1].ID)
	require.Equal(t, 1, len(tables[1].EstimateColumns()))
}

func TestParseSequenceCensusLayout(t *testing.T) {
	data := `File ID,Table ID,Sequence Number,Line Number,Start Position,Total Cells in Table,Total Cells in Sequence,Table Title,Subject Area
ACSSF,B01003,0002,,7,1 CELL,,TOTAL POPULATION,Age-Sex
ACSSF,B01003,0002,,,,,Universe:  Total population,
ACSSF,B01003,0002,0.5,,,,Header line,
ACSSF,B01003,0002,1,,,,Total,
`
	tables, err := ParseSequence(strings.NewReader(data), SequenceConf{})
	require.Nil(t, err)
	require.Len(t, tables, 1)
	require.Equal(t, 1, tables[0].Length)
	require.Equal(t, []string{"b01003001", "b01003001_m90"}, tables[0].ColumnNames()[9:])
}

func TestParseSequenceDuplicateColumn(t *testing.T) {
	data := `table_id,sequence_number,line,start,table_cells,title,is_column
B01003,2,,7,1,TOTAL POPULATION,
B01003,2,1,,,Total,Y
B01003,2,1,,,Total,Y
`
	_, err := ParseSequence(strings.NewReader(data), SequenceConf{})
	require.ErrorAs(t, err, &errors.ConfigurationMismatchError{})
}

func TestParseSequenceMissingColumn(t *testing.T) {
	_, err := ParseSequence(strings.NewReader("table_id,title\n"), SequenceConf{})
	require.Error(t, err)
}
