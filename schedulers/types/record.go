package types

import (
	"time"
)

// Record is emitted every time a job leaves a server, finished or interrupted.
type Record struct {
	JobID     JobID
	ServerID  ServerID
	Arrival   Time
	Start     Time
	End       Time
	Frequency Frequency
	Period    Duration
	Finished  bool
}

type SchedulerRecord struct {
	DoScheduleRecords []*DoScheduleCallRecord
	// Extra holds policy specific details, e.g. the waves or chains a dependency-aware policy computed.
	Extra interface{}
}

// DoScheduleCallRecord is the wall time spent inside one policy call.
type DoScheduleCallRecord struct {
	Duration time.Duration
}
