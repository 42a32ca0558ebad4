package acs

import "time"

// RuntimeStatistics facilitates the retrieval of statistics about an assembly run
type RuntimeStatistics interface {
	// GetStartTime returns the start time of the run
	GetStartTime() time.Time
	// GetRuntime returns the running time of the run, or its total runtime once finished
	GetRuntime() time.Duration
	// GetNumRowsAssembled returns the number of Rows emitted so far, counted by jurisdiction
	GetNumRowsAssembled() map[string]int64
	// GetTotalRowsAssembled returns the number of Rows emitted so far
	GetTotalRowsAssembled() int64
	// GetNumFilePairsProcessed returns the number of FilePairs read so far
	GetNumFilePairsProcessed() int64
	// GetJurisdictionRuntimes returns the runtime of each finished jurisdiction
	GetJurisdictionRuntimes() map[string]time.Duration
	// GetCurrentJurisdictionProcessingTime returns a rolling average of jurisdiction processing time
	GetCurrentJurisdictionProcessingTime() time.Duration
}
