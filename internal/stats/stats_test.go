package stats

import (
	"sync"
	"testing"

	acs "github.com/go-sif/acs"
	"github.com/stretchr/testify/require"
)

func TestRunStatistics(t *testing.T) {
	var rs RunStatistics
	var _ acs.RuntimeStatistics = &rs
	rs.Start()
	var wg sync.WaitGroup
	for _, abbr := range []string{"AK", "AL", "AZ"} {
		wg.Add(1)
		go func(abbr string) {
			defer wg.Done()
			rs.StartJurisdiction(abbr)
			for i := 0; i < 10; i++ {
				rs.AddRows(abbr, 1)
			}
			rs.EndFilePair()
			rs.EndJurisdiction(abbr)
		}(abbr)
	}
	wg.Wait()
	rs.Finish()

	require.Equal(t, int64(30), rs.GetTotalRowsAssembled())
	require.Equal(t, int64(10), rs.GetNumRowsAssembled()["AZ"])
	require.Equal(t, int64(3), rs.GetNumFilePairsProcessed())
	require.Len(t, rs.GetJurisdictionRuntimes(), 3)
	require.Equal(t, rs.GetRuntime(), rs.GetRuntime())
	require.False(t, rs.GetStartTime().IsZero())
}
