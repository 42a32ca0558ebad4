package stats

import (
	"sync"
	"time"
)

const statisticRollingWindows = 5

// RunStatistics contains statistics about a running assembly. It is safe for use by
// concurrent workers.
type RunStatistics struct {
	lock                           sync.Mutex
	started                        bool
	finished                       bool
	startTime                      time.Time
	totalRuntime                   time.Duration
	rowsAssembled                  map[string]int64
	filePairsProcessed             int64
	jurisdictionRuntimes           map[string]time.Duration
	recentJurisdictionRuntimes     []time.Duration // for rolling average of recent jurisdiction processing times
	recentJurisdictionRuntimesHead int
	jurisdictionStartTimes         map[string]time.Time
}

// Start triggers statistics tracking, if it hasn't been started already
func (rs *RunStatistics) Start() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		rs.started = true
		rs.startTime = time.Now()
		rs.rowsAssembled = make(map[string]int64)
		rs.jurisdictionRuntimes = make(map[string]time.Duration)
		rs.recentJurisdictionRuntimes = make([]time.Duration, statisticRollingWindows)
		rs.jurisdictionStartTimes = make(map[string]time.Time)
	}
}

// Finish completes statistics tracking
func (rs *RunStatistics) Finish() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.finished {
		rs.finished = true
		rs.totalRuntime = time.Since(rs.startTime)
	}
}

// StartJurisdiction tracks the beginning of the processing of a jurisdiction
func (rs *RunStatistics) StartJurisdiction(abbr string) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.jurisdictionStartTimes[abbr] = time.Now()
}

// EndJurisdiction tracks the end of the processing of a jurisdiction
func (rs *RunStatistics) EndJurisdiction(abbr string) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	start, ok := rs.jurisdictionStartTimes[abbr]
	if !ok {
		return
	}
	delete(rs.jurisdictionStartTimes, abbr)
	d := time.Since(start)
	rs.jurisdictionRuntimes[abbr] = d
	rs.recentJurisdictionRuntimes[rs.recentJurisdictionRuntimesHead] = d
	rs.recentJurisdictionRuntimesHead = (rs.recentJurisdictionRuntimesHead + 1) % len(rs.recentJurisdictionRuntimes)
}

// EndFilePair tracks the end of the processing of a FilePair
func (rs *RunStatistics) EndFilePair() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.filePairsProcessed++
}

// AddRows tracks Rows emitted for a jurisdiction
func (rs *RunStatistics) AddRows(abbr string, n int) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.rowsAssembled[abbr] += int64(n)
}

// GetStartTime returns the start time of the run
func (rs *RunStatistics) GetStartTime() time.Time {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.startTime
}

// GetRuntime returns the running time of the run
func (rs *RunStatistics) GetRuntime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.finished {
		return rs.totalRuntime
	}
	return time.Since(rs.startTime)
}

// GetNumRowsAssembled returns the number of Rows emitted so far, counted by jurisdiction
func (rs *RunStatistics) GetNumRowsAssembled() map[string]int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	res := make(map[string]int64, len(rs.rowsAssembled))
	for k, v := range rs.rowsAssembled {
		res[k] = v
	}
	return res
}

// GetTotalRowsAssembled returns the number of Rows emitted so far
func (rs *RunStatistics) GetTotalRowsAssembled() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	var total int64
	for _, v := range rs.rowsAssembled {
		total += v
	}
	return total
}

// GetNumFilePairsProcessed returns the number of FilePairs read so far
func (rs *RunStatistics) GetNumFilePairsProcessed() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.filePairsProcessed
}

// GetJurisdictionRuntimes returns the runtime of each finished jurisdiction
func (rs *RunStatistics) GetJurisdictionRuntimes() map[string]time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	res := make(map[string]time.Duration, len(rs.jurisdictionRuntimes))
	for k, v := range rs.jurisdictionRuntimes {
		res[k] = v
	}
	return res
}

// GetCurrentJurisdictionProcessingTime returns a rolling average of jurisdiction processing time
func (rs *RunStatistics) GetCurrentJurisdictionProcessingTime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	var total time.Duration
	for _, d := range rs.recentJurisdictionRuntimes {
		total += d
	}
	return total / statisticRollingWindows
}
