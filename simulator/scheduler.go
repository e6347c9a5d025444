package simulator

import "github.com/iscas-system/powersched/schedulers/types"

type Scheduler interface {
	// Schedule makes at most one dispatch decision. The simulator calls it once per job waiting in
	// the ready queue at the start of a tick, and stops calling once the run is halted.
	Schedule()

	// SetCluster
	// The simulator injects the cluster before the first tick.
	SetCluster(cluster *Cluster)

	// Name identifies the policy in logs and reports.
	Name() string

	// Record returns the per call timings of Schedule, plus policy specific details.
	Record() *types.SchedulerRecord
}
