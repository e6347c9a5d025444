package schedulers

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

// SchedulerTemplate times every Schedule call and hands the decision itself to impl.
type SchedulerTemplate struct {
	cluster *simulator.Cluster

	DoScheduleCalls []*types.DoScheduleCallRecord
	impl            policy
}

type policy interface {
	simulator.Scheduler
	doSchedule()
	// extra is the policy specific part of the record, nil when there is none.
	extra() interface{}
}

func NewSchedulerTemplate() *SchedulerTemplate {
	return &SchedulerTemplate{
		DoScheduleCalls: make([]*types.DoScheduleCallRecord, 0),
	}
}

func (s *SchedulerTemplate) Schedule() {
	start := time.Now()
	s.impl.doSchedule()
	duration := time.Since(start)
	s.DoScheduleCalls = append(s.DoScheduleCalls, &types.DoScheduleCallRecord{Duration: duration})
}

func (s *SchedulerTemplate) SetCluster(cluster *simulator.Cluster) {
	s.cluster = cluster
}

func (s *SchedulerTemplate) extra() interface{} {
	return nil
}

func (s *SchedulerTemplate) Record() *types.SchedulerRecord {
	return &types.SchedulerRecord{
		DoScheduleRecords: s.DoScheduleCalls,
		Extra:             s.impl.extra(),
	}
}

// dispatch places h on server, at the top frequency when energyAware is set.
func (s *SchedulerTemplate) dispatch(server *simulator.Server, h simulator.JobHandle, energyAware bool) bool {
	if energyAware {
		return s.cluster.DispatchEnergyAware(server, h)
	}
	return s.cluster.Dispatch(server, h)
}

// admissible applies the caps to job on server. An energy failure latches the run as halted.
func (s *SchedulerTemplate) admissible(job *simulator.Job, server *simulator.Server) bool {
	if s.cluster.EnergyCapExceeded(job, server) {
		s.cluster.HaltOnEnergy(job)
		return false
	}
	if s.cluster.PowerCapExceeded(server) {
		s.cluster.Logger().WithFields(log.Fields{
			"tick":   s.cluster.Now(),
			"job":    job.ID(),
			"server": server.ID(),
		}).Warn("power cap exceeded, server skipped")
		return false
	}
	return true
}
