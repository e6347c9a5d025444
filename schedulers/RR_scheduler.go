package schedulers

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// RRScheduler time-slices the first server. A job that has held it for a full quantum goes back to
// the tail of the ready queue when someone else is waiting.
type RRScheduler struct {
	*SchedulerTemplate
}

func NewRRScheduler() *RRScheduler {
	template := NewSchedulerTemplate()
	rr := &RRScheduler{template}
	template.impl = rr
	return rr
}

func (s *RRScheduler) doSchedule() {
	head, ok := s.cluster.Queue().Head()
	if !ok {
		return
	}
	server := s.cluster.Servers()[0]
	if running := server.RunningJob(); running != nil {
		quantum := s.cluster.Options().Quantum()
		if running.Quantum() < quantum {
			return
		}
		s.cluster.Logger().WithFields(log.Fields{
			"tick":    s.cluster.Now(),
			"job":     running.ID(),
			"quantum": quantum,
		}).Debug("quantum expired")
		s.cluster.Preempt(server)
	}
	s.dispatch(server, head, false)
}

func (s *RRScheduler) Name() string {
	return fmt.Sprintf("RRScheduler")
}
