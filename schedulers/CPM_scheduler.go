package schedulers

import (
	"fmt"

	"github.com/iscas-system/powersched/schedulers/dag"
	"github.com/iscas-system/powersched/schedulers/jobs_util"
	"github.com/iscas-system/powersched/simulator"
)

// CPMScheduler follows the critical path method. Chain k of the analyzer, longest first, is pinned to
// server k mod n, and a chain releases its jobs in order: the next job not yet dispatched goes out
// once it has arrived, its predecessors have finished and its server is idle.
type CPMScheduler struct {
	*SchedulerTemplate
	analyzer *dag.Analyzer
}

func NewCPMScheduler() *CPMScheduler {
	template := NewSchedulerTemplate()
	cpm := &CPMScheduler{
		SchedulerTemplate: template,
	}
	template.impl = cpm
	return cpm
}

func (s *CPMScheduler) SetCluster(cluster *simulator.Cluster) {
	s.SchedulerTemplate.SetCluster(cluster)
	s.analyzer = dag.NewAnalyzer(jobs_util.GetJobsSliceUtil().InputIDs(cluster), cluster.Dependencies())
}

func (s *CPMScheduler) doSchedule() {
	servers := s.cluster.Servers()
	for k, chain := range s.analyzer.Chains() {
		server := servers[k%len(servers)]
		if !server.IsIdle() {
			continue
		}
		for _, id := range chain {
			if !known(s.cluster, id) || s.cluster.IDDispatched(id) {
				continue
			}
			h, ok := jobs_util.GetJobsSliceUtil().QueuedInstance(s.cluster, id)
			if ok && s.cluster.Eligible(id) {
				s.dispatch(server, h, false)
				return
			}
			break
		}
	}
}

func (s *CPMScheduler) extra() interface{} {
	return map[string]interface{}{"chains": s.analyzer.Chains()}
}

func (s *CPMScheduler) Name() string {
	return fmt.Sprintf("CPMScheduler")
}
