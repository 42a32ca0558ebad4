package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testYAML = `
btime: P5YE2014
sources:
  root: http://example.org/acs
  small_area_url: "{root}/{state_name}_Tracts_Block_Groups_Only.zip"
  large_area_url: "{root}/{state_name}_All_Geographies_Not_Tracts_Block_Groups.zip"
  states: states.jsonl
  sequence: seq.csv
  geofile: "{root}/g{year}{release}{stusab}.csv"
fetch:
  dir: /tmp/acs
  timeout: 5m
  requests_per_second: 1.5
assembly:
  limited_run: true
  workers: 8
logging:
  level: debug
  format: json
`

func writeConfig(t *testing.T, body string) string {
	p := filepath.Join(t.TempDir(), "acs.yaml")
	require.Nil(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.Nil(t, err)
	require.Equal(t, 2014, cfg.Year)
	require.Equal(t, 5, cfg.Release)
	require.Equal(t, 5*time.Minute, cfg.Fetch.Timeout)
	require.Equal(t, 1.5, cfg.Fetch.RequestsPerSecond)
	require.True(t, cfg.Assembly.LimitedRun)
	require.Equal(t, 10000, cfg.Assembly.RowCap)
	require.Equal(t, 3, cfg.Assembly.LimitedJurisdictions)
	require.Equal(t, "json", cfg.Logging.Format)

	sc := cfg.SourceConfig()
	require.Nil(t, sc.Validate())
	require.Equal(t, "http://example.org/acs", sc.Root)
	require.Equal(t, "http://example.org/acs/g20145ak.csv", cfg.GeofileURL("AK"))

	ac := cfg.AssembleConfig(nil)
	require.Equal(t, 8, ac.Workers)
	require.True(t, ac.LimitedRun)
	require.Equal(t, "/tmp/acs", cfg.FetchConfig(nil).Dir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ACS_FETCH_DIR", "/var/cache/acs")
	t.Setenv("ACS_ASSEMBLY_WORKERS", "2")
	t.Setenv("ACS_YEAR", "2013")
	cfg, err := Load(writeConfig(t, testYAML))
	require.Nil(t, err)
	require.Equal(t, "/var/cache/acs", cfg.Fetch.Dir)
	require.Equal(t, 2, cfg.Assembly.Workers)
	// an explicit year wins over btime
	require.Equal(t, 2013, cfg.Year)
	require.Equal(t, 5, cfg.Release)
	// values not overridden keep the file's settings
	require.Equal(t, 5*time.Minute, cfg.Fetch.Timeout)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, "btime: P4YE2014\nsources: {states: s, sequence: q, small_area_url: x}\nfetch: {dir: d}\n"))
	require.Error(t, err)
	_, err = Load(writeConfig(t, "year: 2014\nrelease: 5\nsources: {states: s, sequence: q}\nfetch: {dir: d}\n"))
	require.Error(t, err)
	_, err = Load(writeConfig(t, "year: 2014\nrelease: 5\nunknown: 1\n"))
	require.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseBTime(t *testing.T) {
	year, release, err := ParseBTime("P5YE2014")
	require.Nil(t, err)
	require.Equal(t, 2014, year)
	require.Equal(t, 5, release)
	year, release, err = ParseBTime("p1ye2009")
	require.Nil(t, err)
	require.Equal(t, 2009, year)
	require.Equal(t, 1, release)
	_, _, err = ParseBTime("2014")
	require.Error(t, err)
}
