package schedulers

import (
	"fmt"

	"github.com/iscas-system/powersched/schedulers/jobs_util"
)

// EDFScheduler runs the job with the earliest absolute deadline first. Equal deadlines keep queue
// order. The capped variant prefers the fastest idle server the caps admit, and only preempts where
// the caps admit the incoming job.
type EDFScheduler struct {
	*PreemptiveSchedulerTemplate
}

func NewEDFScheduler(capped bool) *EDFScheduler {
	template := NewPreemptiveSchedulerTemplate(capped, jobs_util.GetJobsSliceUtil().EarlierDeadline)
	edf := &EDFScheduler{
		template,
	}
	template.impl = edf
	return edf
}

func (s *EDFScheduler) Name() string {
	if s.capped {
		return fmt.Sprintf("EDFScheduler[capped]")
	}
	return fmt.Sprintf("EDFScheduler")
}
