package schedulers

import (
	"fmt"

	"github.com/iscas-system/powersched/schedulers/dag"
	"github.com/iscas-system/powersched/schedulers/jobs_util"
	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

// WavefrontScheduler runs the dependency graph wave by wave. The current wave is the first one with
// a job id not yet dispatched. The job at slot i of a wave is pinned to server i mod n and waits until
// every predecessor has finished.
type WavefrontScheduler struct {
	*SchedulerTemplate
	analyzer *dag.Analyzer
}

func NewWavefrontScheduler() *WavefrontScheduler {
	template := NewSchedulerTemplate()
	w := &WavefrontScheduler{
		SchedulerTemplate: template,
	}
	template.impl = w
	return w
}

func (s *WavefrontScheduler) SetCluster(cluster *simulator.Cluster) {
	s.SchedulerTemplate.SetCluster(cluster)
	s.analyzer = dag.NewAnalyzer(jobs_util.GetJobsSliceUtil().InputIDs(cluster), cluster.Dependencies())
}

func (s *WavefrontScheduler) currentWave() []types.JobID {
	for _, wave := range s.analyzer.Waves() {
		for _, id := range wave {
			if known(s.cluster, id) && !s.cluster.IDDispatched(id) {
				return wave
			}
		}
	}
	return nil
}

func (s *WavefrontScheduler) doSchedule() {
	wave := s.currentWave()
	servers := s.cluster.Servers()
	for slot, id := range wave {
		if s.cluster.IDDispatched(id) {
			continue
		}
		h, ok := jobs_util.GetJobsSliceUtil().QueuedInstance(s.cluster, id)
		if !ok || !s.cluster.Eligible(id) {
			continue
		}
		server := servers[slot%len(servers)]
		if !server.IsIdle() {
			continue
		}
		s.dispatch(server, h, false)
		return
	}
}

// known filters out ids the dependency set names but the workload does not have.
func known(cluster *simulator.Cluster, id types.JobID) bool {
	return len(cluster.Arena().InstancesOf(id)) > 0
}

func (s *WavefrontScheduler) extra() interface{} {
	return map[string]interface{}{"waves": s.analyzer.Waves()}
}

func (s *WavefrontScheduler) Name() string {
	return fmt.Sprintf("WavefrontScheduler")
}
