package simulator

import (
	"fmt"

	"github.com/iscas-system/powersched/schedulers/types"
)

// JobSpec is one line of a job file: the immutable description a Job instance is built from.
type JobSpec struct {
	ID       types.JobID
	Arrival  types.Time
	Duration types.Duration
	// Deadline is relative to the arrival of each instance.
	Deadline types.Duration
	// Period of zero means the job is aperiodic.
	Period types.Duration
}

func NewJobSpec(id types.JobID, arrival types.Time, duration, deadline, period types.Duration) JobSpec {
	return JobSpec{
		ID:       id,
		Arrival:  arrival,
		Duration: duration,
		Deadline: deadline,
		Period:   period,
	}
}

func (m JobSpec) Periodic() bool {
	return m.Period > 0
}

func (m JobSpec) String() string {
	return fmt.Sprintf("job=[ID=%d, arrival=%d, duration=%d, deadline=+%d, period=%d]",
		m.ID, m.Arrival, m.Duration, m.Deadline, m.Period)
}
