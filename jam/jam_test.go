package jam

import (
	"math"
	"testing"

	"github.com/go-sif/acs/errors"
	"github.com/stretchr/testify/require"
)

func TestEncodeCell(t *testing.T) {
	v, code, err := EncodeCell("42.5")
	require.Nil(t, err)
	require.Equal(t, None, code)
	require.Equal(t, 42.5, v)

	for raw, want := range map[string]Code{".": Missing, " ": Gap, "": Null, "   ": Gap} {
		v, code, err := EncodeCell(raw)
		require.Nil(t, err)
		require.Equal(t, want, code, "raw %q", raw)
		require.True(t, math.IsNaN(v))
	}
}

func TestEncodeCellTrimsNumbers(t *testing.T) {
	v, code, err := EncodeCell(" 17 ")
	require.Nil(t, err)
	require.Equal(t, None, code)
	require.Equal(t, 17.0, v)
}

func TestEncodeCellUnknownPlaceholder(t *testing.T) {
	_, _, err := EncodeCell("**")
	require.NotNil(t, err)
	var mismatch errors.ConfigurationMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestCustomMap(t *testing.T) {
	enc := CreateEncoder(Map{"*": Missing})
	_, code, err := enc.EncodeCell("*")
	require.Nil(t, err)
	require.Equal(t, Missing, code)
	_, _, err = enc.EncodeCell(".")
	require.NotNil(t, err)
}

func TestFinalize(t *testing.T) {
	var flags Flags
	_, ok := flags.Finalize()
	require.False(t, ok)

	for _, c := range []Code{Missing, None, Missing, Missing, Null} {
		flags.Add(c)
	}
	res, ok := flags.Finalize()
	require.True(t, ok)
	require.Equal(t, "3m1N", res)
	require.Equal(t, 4, flags.Len())

	flags.Reset()
	_, ok = flags.Finalize()
	require.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	cases := [][]Code{
		{Missing, Missing, Missing, Null},
		{Gap},
		{Null, Gap, Null, Null, Missing},
		make([]Code, 0),
	}
	long := make([]Code, 12)
	for i := range long {
		long[i] = Gap
	}
	cases = append(cases, long)
	for _, codes := range cases {
		enc, _ := Encode(codes)
		dec, err := Decode(enc)
		require.Nil(t, err)
		require.Equal(t, len(codes), len(dec))
		for i := range codes {
			require.Equal(t, codes[i], dec[i])
		}
	}
	enc, _ := Encode(long)
	require.Equal(t, "12g", enc)
}

func TestDecodeErrors(t *testing.T) {
	for _, s := range []string{"m", "3", "0m", "2m4"} {
		_, err := Decode(s)
		require.NotNil(t, err, "flags %q", s)
	}
}
