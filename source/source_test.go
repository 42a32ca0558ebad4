package source

import (
	"testing"

	acs "github.com/go-sif/acs"
	"github.com/stretchr/testify/require"
)

var testConf = Config{
	Year:         2014,
	Release:      5,
	Root:         "http://example.org/acs",
	SmallAreaURL: "{root}/{state_name}_Tracts_Block_Groups_Only.zip",
	LargeAreaURL: "{root}/{state_name}_All_Geographies_Not_Tracts_Block_Groups.zip",
}

func TestResolve(t *testing.T) {
	require.Equal(t, "http://x/NewMexico_Tracts.zip", Resolve("{root}/{state_name}_Tracts.zip", "http://x", "New Mexico"))
	require.Equal(t, "static", Resolve("static", "r", "s"))
}

func TestFileName(t *testing.T) {
	require.Equal(t, "20145ak0002000.txt", FileName(2014, 5, "AK", 2))
	require.Equal(t, "20091us0117000.txt", FileName(2009, 1, "us", 117))
}

func TestGenerateOrder(t *testing.T) {
	js := []acs.JurisdictionRef{
		{Abbreviation: "AK", ID: "02", Name: "Alaska"},
		{Abbreviation: "NM", ID: "35", Name: "New Mexico"},
	}
	pm := Generate(testConf, acs.TableSpec{ID: "B01001", Sequence: 2, Start: 7, Length: 49}, js)
	require.Equal(t, 4, pm.Len())

	var pairs []acs.FilePair
	for pm.HasNext() {
		pairs = append(pairs, pm.Next())
	}
	require.Len(t, pairs, 4)
	require.Equal(t, "AK", pairs[0].Jurisdiction.Abbreviation)
	require.Equal(t, acs.SmallArea, pairs[0].Size)
	require.Equal(t, acs.LargeArea, pairs[1].Size)
	require.Equal(t, "NM", pairs[2].Jurisdiction.Abbreviation)
	require.Equal(t, "http://example.org/acs/NewMexico_Tracts_Block_Groups_Only.zip", pairs[2].Estimate.URL)
	require.Equal(t, "e20145nm0002000.txt", pairs[2].Estimate.Member)
	require.Equal(t, "m20145nm0002000.txt", pairs[2].Margin.Member)
	require.Equal(t, acs.MarginFile, pairs[2].Margin.Kind)
	require.Equal(t, pairs[2].Estimate.URL, pairs[2].Margin.URL)

	pm.Reset()
	require.True(t, pm.HasNext())
	require.Equal(t, pairs[0], pm.Next())
	require.Equal(t, pairs[2:], pm.ForJurisdiction(js[1]))
}

func TestGenerateSameURL(t *testing.T) {
	conf := testConf
	conf.SmallAreaURL = "{root}/{state_name}.zip"
	conf.LargeAreaURL = "{root}/{state_name}.zip"
	pm := Generate(conf, acs.TableSpec{Sequence: 1}, []acs.JurisdictionRef{{Abbreviation: "AK", Name: "Alaska"}})
	require.Equal(t, 2, pm.Len())
	require.Equal(t, []string{"http://example.org/acs/Alaska.zip"}, pm.URLs())
}

func TestGenerateSingleTemplate(t *testing.T) {
	conf := testConf
	conf.SmallAreaURL = ""
	pm := Generate(conf, acs.TableSpec{Sequence: 1}, []acs.JurisdictionRef{{Abbreviation: "AK", Name: "Alaska"}})
	require.Equal(t, 1, pm.Len())
	require.Equal(t, acs.LargeArea, pm.Next().Size)
	require.False(t, pm.HasNext())
}

func TestConfigValidate(t *testing.T) {
	require.Nil(t, testConf.Validate())
	bad := testConf
	bad.Year = 0
	require.Error(t, bad.Validate())
	bad = testConf
	bad.SmallAreaURL, bad.LargeAreaURL = "", ""
	require.Error(t, bad.Validate())
}
