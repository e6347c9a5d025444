package schedulers

import (
	"math"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/iscas-system/powersched/schedulers/jobs_util"
	"github.com/iscas-system/powersched/simulator"
)

// PreemptiveSchedulerTemplate is shared by the priority driven policies, EDF and RMS. Each call picks
// the most urgent queued job and places it on an idle server; with every server busy it takes the
// server whose running job is least urgent, but only when that job is strictly less urgent.
type PreemptiveSchedulerTemplate struct {
	*SchedulerTemplate
	// capped ranks idle servers by speed, applies the power and energy caps, and dispatches at the top
	// frequency.
	capped bool
	// better reports whether a is strictly more urgent than b.
	better func(a, b *simulator.Job) bool
}

func NewPreemptiveSchedulerTemplate(capped bool, better func(a, b *simulator.Job) bool) *PreemptiveSchedulerTemplate {
	return &PreemptiveSchedulerTemplate{
		SchedulerTemplate: NewSchedulerTemplate(),
		capped:            capped,
		better:            better,
	}
}

func (s *PreemptiveSchedulerTemplate) doSchedule() {
	target := s.pickTarget()
	if target == nil {
		return
	}
	if s.placeOnIdle(target) || s.cluster.Halted() {
		return
	}
	s.preempt(target)
}

func (s *PreemptiveSchedulerTemplate) pickTarget() *simulator.Job {
	return jobs_util.GetJobsSliceUtil().Best(s.cluster.QueuedJobs(), s.better)
}

func (s *PreemptiveSchedulerTemplate) placeOnIdle(target *simulator.Job) bool {
	idle := s.cluster.IdleServers()
	if !s.capped {
		if len(idle) == 0 {
			return false
		}
		return s.dispatch(idle[0], target.Handle(), false)
	}
	reference := float64(s.cluster.Options().SpeedReference())
	slices.SortStableFunc(idle, func(a, b *simulator.Server) bool {
		return serverSpeed(a, reference) > serverSpeed(b, reference)
	})
	for _, server := range idle {
		if !s.admissible(target, server) {
			if s.cluster.Halted() {
				return false
			}
			continue
		}
		return s.dispatch(server, target.Handle(), true)
	}
	return false
}

// victim is the server running the least urgent job, nil when no server is busy.
func (s *PreemptiveSchedulerTemplate) victim() *simulator.Server {
	var victim *simulator.Server
	for _, server := range s.cluster.Servers() {
		running := server.RunningJob()
		if running == nil {
			continue
		}
		if victim == nil || s.better(victim.RunningJob(), running) {
			victim = server
		}
	}
	return victim
}

func (s *PreemptiveSchedulerTemplate) preempt(target *simulator.Job) {
	server := s.victim()
	if server == nil {
		return
	}
	running := server.RunningJob()
	if !s.better(target, running) {
		return
	}
	if s.capped && (s.cluster.EnergyCapExceeded(target, server) || s.cluster.PowerCapExceeded(server)) {
		return
	}
	s.cluster.Logger().WithFields(log.Fields{
		"tick":   s.cluster.Now(),
		"job":    target.ID(),
		"victim": running.ID(),
		"server": server.ID(),
	}).Info("job preempted")
	s.cluster.Preempt(server)
	s.dispatch(server, target.Handle(), s.capped)
}

// serverSpeed ranks servers by the cube root of their power rating over reference.
func serverSpeed(server *simulator.Server, reference float64) float64 {
	return math.Cbrt(float64(server.MaxPower()) / reference)
}
