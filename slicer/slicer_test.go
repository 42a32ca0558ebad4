package slicer

import (
	"fmt"
	"testing"

	"github.com/go-sif/acs/errors"
	"github.com/stretchr/testify/require"
)

func record(width int) []string {
	res := make([]string, width)
	for i := range res {
		res[i] = fmt.Sprintf("f%d", i)
	}
	return res
}

func TestParseSinglePositions(t *testing.T) {
	s, err := Parse("2,3,4,7")
	require.Nil(t, err)
	require.Equal(t, 4, s.Len())
	require.Equal(t, 8, s.Width())
	res, err := s.Slice(record(10))
	require.Nil(t, err)
	require.Equal(t, []string{"f2", "f3", "f4", "f7"}, res)
}

func TestParseRangeIsEndExclusive(t *testing.T) {
	s, err := Parse("10:25")
	require.Nil(t, err)
	require.Equal(t, 15, s.Len())
	res, err := s.Slice(record(25))
	require.Nil(t, err)
	require.Equal(t, "f10", res[0])
	require.Equal(t, "f24", res[14])
}

func TestParsePreservesSpecOrder(t *testing.T) {
	s, err := Parse("5,1:3,0")
	require.Nil(t, err)
	require.Equal(t, []int{5, 1, 2, 0}, s.Positions())
	res, err := s.Slice(record(6))
	require.Nil(t, err)
	require.Equal(t, []string{"f5", "f1", "f2", "f0"}, res)
}

func TestParseErrors(t *testing.T) {
	for _, spec := range []string{"", "1,,2", "a", "-1", "5:2", "3:3", "1:x"} {
		_, err := Parse(spec)
		require.NotNil(t, err, "spec %q should fail", spec)
	}
}

func TestRange(t *testing.T) {
	s, err := Range(7, 3)
	require.Nil(t, err)
	require.Equal(t, "6:9", s.String())
	require.Equal(t, []int{6, 7, 8}, s.Positions())
	_, err = Range(0, 3)
	require.NotNil(t, err)
}

func TestSliceNarrowRecord(t *testing.T) {
	s := MustParse("2,3,4,5")
	_, err := s.Slice(record(5))
	require.NotNil(t, err)
	var incompatible errors.IncompatibleRecordError
	require.ErrorAs(t, err, &incompatible)
	require.Equal(t, 6, incompatible.Want)
	require.Equal(t, 5, incompatible.Got)
}

func TestConcatLengthsAdd(t *testing.T) {
	header := MustParse("2,3,4,5")
	data, err := Range(7, 10)
	require.Nil(t, err)
	both := Concat(header, data)
	require.Equal(t, header.Len()+data.Len(), both.Len())
	res, err := both.Slice(record(20))
	require.Nil(t, err)
	require.Equal(t, "f2", res[0])
	require.Equal(t, "f6", res[4])
	require.Equal(t, "f15", res[13])
}

func TestPositions(t *testing.T) {
	s, err := Positions(2, 3, 4, 5)
	require.Nil(t, err)
	require.Equal(t, "2,3,4,5", s.String())
}
