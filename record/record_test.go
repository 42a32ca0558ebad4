package record

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sif/acs/errors"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, members map[string][]byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(p)
	require.Nil(t, err)
	zw := zip.NewWriter(f)
	for name, data := range members {
		w, err := zw.Create(name)
		require.Nil(t, err)
		_, err = w.Write(data)
		require.Nil(t, err)
	}
	require.Nil(t, zw.Close())
	require.Nil(t, f.Close())
	return p
}

func readAll(t *testing.T, it interface {
	Next() ([]string, error)
}) [][]string {
	t.Helper()
	var res [][]string
	for {
		rec, err := it.Next()
		if err == io.EOF {
			return res
		}
		require.Nil(t, err)
		res = append(res, rec)
	}
}

func TestOpenZipMember(t *testing.T) {
	p := writeZip(t, map[string][]byte{
		"e20145ak0002000.txt": []byte("ACSSF,2014e5,ak,000,0002,0000001,1,2\nACSSF,2014e5,ak,000,0002,0000002,3,.\n"),
		"m20145ak0002000.txt": []byte("ACSSF,2014m5,ak,000,0002,0000001,4,5\n"),
	})
	opener, err := CreateOpener(nil)
	require.Nil(t, err)

	est, err := opener.Open(p, "e20145ak0002000.txt")
	require.Nil(t, err)
	defer est.Close()
	mar, err := opener.Open(p, "m20145ak0002000.txt")
	require.Nil(t, err)
	defer mar.Close()

	first, err := est.Next()
	require.Nil(t, err)
	require.Equal(t, "0000001", first[5])
	// reading the margin member does not disturb the estimate member
	require.Len(t, readAll(t, mar), 1)
	rest := readAll(t, est)
	require.Len(t, rest, 1)
	require.Equal(t, ".", rest[0][7])

	require.Nil(t, est.Close())
	_, err = est.Next()
	require.Equal(t, io.EOF, err)
}

func TestOpenMissingMember(t *testing.T) {
	p := writeZip(t, map[string][]byte{"a.txt": []byte("x\n")})
	opener, err := CreateOpener(&ParserConf{})
	require.Nil(t, err)
	_, err = opener.Open(p, "b.txt")
	require.ErrorAs(t, err, &errors.LookupError{})
}

func TestOpenNestedMember(t *testing.T) {
	p := writeZip(t, map[string][]byte{"tab4/sumfile/e.txt": []byte("1,2\n")})
	opener, err := CreateOpener(nil)
	require.Nil(t, err)
	it, err := opener.Open(p, "e.txt")
	require.Nil(t, err)
	defer it.Close()
	require.Equal(t, [][]string{{"1", "2"}}, readAll(t, it))
}

func TestOpenPlainFileWithHeader(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "g20145ak.csv")
	require.Nil(t, os.WriteFile(p, []byte("H1|H2\n# note\na|b\n"), 0o644))
	opener, err := CreateOpener(&ParserConf{Delimiter: '|', Comment: '#', HeaderLines: 1})
	require.Nil(t, err)
	it, err := opener.Open(p, "")
	require.Nil(t, err)
	defer it.Close()
	require.Equal(t, [][]string{{"a", "b"}}, readAll(t, it))

	// a directory is treated as an unpacked archive
	it2, err := opener.Open(dir, "g20145ak.csv")
	require.Nil(t, err)
	defer it2.Close()
	require.Len(t, readAll(t, it2), 1)
}

func TestOpenLatin1(t *testing.T) {
	p := filepath.Join(t.TempDir(), "geo.csv")
	require.Nil(t, os.WriteFile(p, []byte("PR,Pe\xf1uelas\n"), 0o644))
	opener, err := CreateOpener(&ParserConf{Latin1: true})
	require.Nil(t, err)
	it, err := opener.Open(p, "")
	require.Nil(t, err)
	defer it.Close()
	require.Equal(t, [][]string{{"PR", "Peñuelas"}}, readAll(t, it))
}

func TestFixedWidth(t *testing.T) {
	p := filepath.Join(t.TempDir(), "geo.txt")
	require.Nil(t, os.WriteFile(p, []byte("AK040 0000001\r\nAK05  00002\n"), 0o644))
	opener, err := CreateOpener(&ParserConf{Format: FixedWidth, Widths: []int{2, 3, 1, 7}, TrimSpace: true})
	require.Nil(t, err)
	it, err := opener.Open(p, "")
	require.Nil(t, err)
	defer it.Close()
	require.Equal(t, [][]string{
		{"AK", "040", "", "0000001"},
		{"AK", "05", "", "00002"},
	}, readAll(t, it))
}

func TestSplitFixedCountsCharacters(t *testing.T) {
	require.Equal(t, []string{"ñu", "el", ""}, splitFixed("ñuel", []int{2, 2, 3}, false))
}

func TestCreateOpenerValidation(t *testing.T) {
	_, err := CreateOpener(&ParserConf{Format: FixedWidth})
	require.Error(t, err)
	_, err = CreateOpener(&ParserConf{Delimiter: ';', Comment: ';'})
	require.Error(t, err)
}
