package jurisdiction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	acs "github.com/go-sif/acs"
	"github.com/stretchr/testify/require"
)

const statesJSONL = `{"stusab": "AK", "state": "02", "name": "Alaska", "component": "00"}
{"stusab": "AK", "state": "02", "name": "Alaska Urban", "component": "01"}
# territories follow
{"stusab": "PR", "state": "72", "name": "Puerto Rico", "component": "00"}

{"stusab": "NM", "state": "35", "name": "New Mexico"}
`

func TestParseJSONL(t *testing.T) {
	refs, err := ParseJSONL(strings.NewReader(statesJSONL), JSONLConf{Comment: '#'})
	require.Nil(t, err)
	require.Equal(t, []acs.JurisdictionRef{
		{Abbreviation: "AK", ID: "02", Name: "Alaska"},
		{Abbreviation: "PR", ID: "72", Name: "Puerto Rico"},
		{Abbreviation: "NM", ID: "35", Name: "New Mexico"},
	}, refs)
}

func TestParseJSONLErrors(t *testing.T) {
	_, err := ParseJSONL(strings.NewReader("{not json\n"), JSONLConf{})
	require.Error(t, err)
	_, err = ParseJSONL(strings.NewReader(`{"state": "02"}`+"\n"), JSONLConf{})
	require.Error(t, err)
}

func TestJSONLFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "states.jsonl")
	require.Nil(t, os.WriteFile(p, []byte(`{"abbr": "DC", "fips": "11", "title": "District of Columbia"}`+"\n"), 0o644))
	src := JSONLFile{Path: p, Conf: JSONLConf{AbbreviationField: "abbr", IDField: "fips", NameField: "title"}}
	refs, err := src.Jurisdictions(context.Background())
	require.Nil(t, err)
	require.Equal(t, []acs.JurisdictionRef{{Abbreviation: "DC", ID: "11", Name: "District of Columbia"}}, refs)
}

type countingSource struct {
	calls int
	fail  bool
}

func (c *countingSource) Jurisdictions(ctx context.Context) ([]acs.JurisdictionRef, error) {
	c.calls++
	if c.fail {
		return nil, fmt.Errorf("unavailable")
	}
	return []acs.JurisdictionRef{{Abbreviation: "AK"}}, nil
}

func TestCached(t *testing.T) {
	src := &countingSource{fail: true}
	cached := CreateCached(src)
	_, err := cached.Jurisdictions(context.Background())
	require.Error(t, err)

	src.fail = false
	for i := 0; i < 3; i++ {
		refs, err := cached.Jurisdictions(context.Background())
		require.Nil(t, err)
		require.Len(t, refs, 1)
		// callers cannot modify the memoized list
		refs[0].Abbreviation = "XX"
	}
	require.Equal(t, 2, src.calls)
	refs, _ := cached.Jurisdictions(context.Background())
	require.Equal(t, "AK", refs[0].Abbreviation)
}

func TestStatic(t *testing.T) {
	s := Static{{Abbreviation: "AK"}, {Abbreviation: "AL"}}
	refs, err := s.Jurisdictions(context.Background())
	require.Nil(t, err)
	require.Len(t, refs, 2)
}
