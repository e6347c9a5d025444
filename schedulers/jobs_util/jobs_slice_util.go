package jobs_util

import (
	"golang.org/x/exp/slices"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

type JobsSliceUtil struct{}

func GetJobsSliceUtil() JobsSliceUtil {
	return JobsSliceUtil{}
}

// Best returns the first job no other job is better than, so ties keep slice order. Nil on an empty slice.
func (u JobsSliceUtil) Best(jobs []*simulator.Job, better func(a, b *simulator.Job) bool) *simulator.Job {
	var best *simulator.Job
	for _, j := range jobs {
		if best == nil || better(j, best) {
			best = j
		}
	}
	return best
}

// EarlierDeadline orders jobs by absolute deadline.
func (u JobsSliceUtil) EarlierDeadline(a, b *simulator.Job) bool {
	return a.Deadline() < b.Deadline()
}

// HigherRate orders jobs by rate-monotonic priority.
func (u JobsSliceUtil) HigherRate(a, b *simulator.Job) bool {
	return a.Priority() > b.Priority()
}

// QueuedInstance finds the oldest queued instance of id that has never been dispatched.
func (u JobsSliceUtil) QueuedInstance(cluster *simulator.Cluster, id types.JobID) (simulator.JobHandle, bool) {
	for _, j := range cluster.QueuedJobs() {
		if j.ID() == id && j.FirstStart() == types.NoTime {
			return j.Handle(), true
		}
	}
	return simulator.NoJob, false
}

func (u JobsSliceUtil) IDs(jobs []*simulator.Job) []types.JobID {
	ids := make([]types.JobID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID())
	}
	return ids
}

// InputIDs lists every distinct job id known to the cluster, ascending.
func (u JobsSliceUtil) InputIDs(cluster *simulator.Cluster) []types.JobID {
	ids := u.IDs(cluster.Arena().Jobs())
	slices.Sort(ids)
	return slices.Compact(ids)
}
