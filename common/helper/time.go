package helper

import "time"

// CalcElapsedTime is the time since start in whole milliseconds, at least 1 once
// any time has passed so sub-millisecond streams do not log as zero.
func CalcElapsedTime(start time.Time) int64 {
	elapsed := time.Since(start)
	if ms := elapsed.Milliseconds(); ms > 0 || elapsed <= 0 {
		return ms
	}
	return 1
}
