package schedulers

import (
	"fmt"
)

// FIFOScheduler dispatches the head of the ready queue. The plain variant only ever uses the first
// server. The capped variant walks the servers in order and takes the first idle one the power and
// energy caps admit, halting the run when the energy cap refuses.
type FIFOScheduler struct {
	*SchedulerTemplate
	capped bool
}

func NewFIFOScheduler(capped bool) *FIFOScheduler {
	template := NewSchedulerTemplate()
	fifo := &FIFOScheduler{
		SchedulerTemplate: template,
		capped:            capped,
	}
	template.impl = fifo
	return fifo
}

func (s *FIFOScheduler) doSchedule() {
	head, ok := s.cluster.Queue().Head()
	if !ok {
		return
	}
	if !s.capped {
		if server := s.cluster.Servers()[0]; server.IsIdle() {
			s.dispatch(server, head, false)
		}
		return
	}
	job := s.cluster.Job(head)
	for _, server := range s.cluster.Servers() {
		if !server.IsIdle() {
			continue
		}
		if !s.admissible(job, server) {
			if s.cluster.Halted() {
				return
			}
			continue
		}
		s.dispatch(server, head, true)
		return
	}
}

func (s *FIFOScheduler) Name() string {
	if s.capped {
		return fmt.Sprintf("FIFOScheduler[capped]")
	}
	return fmt.Sprintf("FIFOScheduler")
}
