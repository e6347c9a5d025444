package simulator

import (
	"github.com/iscas-system/powersched/schedulers/types"
)

// Summary is the outcome of one run.
type Summary struct {
	Policy     string
	Admitted   int
	Fulfilled  int
	Missed     int
	Energy     types.Energy
	PeakPower  types.Power
	Makespan   types.Time
	Ticks      types.Time
	HaltReason HaltReason

	Preemptions int
	// AvgResponse is the mean of first start minus arrival over finished instances.
	AvgResponse float64
	// AvgTurnaround is the mean of completion minus arrival over finished instances.
	AvgTurnaround float64
}

func (s *Summary) Halted() bool {
	return s.HaltReason != NotHalted
}

func (s *Simulator) summarize() *Summary {
	c := s.cluster
	finished := make([]*Job, 0, c.arena.Len())
	for _, job := range c.arena.Jobs() {
		if job.Admitted() && job.IsFinished() {
			finished = append(finished, job)
		}
	}
	return &Summary{
		Policy:        s.scheduler.Name(),
		Admitted:      c.admitted,
		Fulfilled:     c.admitted - c.missed,
		Missed:        c.missed,
		Energy:        c.consumed,
		PeakPower:     PeakPower(c.powerHistory),
		Makespan:      c.now - 1,
		Ticks:         c.now,
		HaltReason:    c.halt,
		Preemptions:   c.preemptions,
		AvgResponse:   AvgResponse(finished),
		AvgTurnaround: AvgTurnaround(finished),
	}
}

// AvgResponse averages how long each job waited for its first dispatch.
func AvgResponse(jobs []*Job) float64 {
	if len(jobs) == 0 {
		return 0
	}
	sum := 0.
	for _, job := range jobs {
		sum += float64(job.FirstStart() - job.Arrival())
	}
	return sum / float64(len(jobs))
}

// AvgTurnaround averages the time from arrival to completion.
func AvgTurnaround(jobs []*Job) float64 {
	if len(jobs) == 0 {
		return 0
	}
	sum := 0.
	for _, job := range jobs {
		sum += float64(job.End() - job.Arrival())
	}
	return sum / float64(len(jobs))
}

func PeakPower(history []types.Power) types.Power {
	peak := types.Power(0)
	for _, p := range history {
		if p > peak {
			peak = p
		}
	}
	return peak
}
