package schedulers

import (
	"fmt"

	"github.com/iscas-system/powersched/schedulers/jobs_util"
)

// RMSScheduler is rate monotonic: the shorter the period, the higher the priority. Aperiodic jobs
// have the lowest priority of all.
type RMSScheduler struct {
	*PreemptiveSchedulerTemplate
}

func NewRMSScheduler() *RMSScheduler {
	template := NewPreemptiveSchedulerTemplate(false, jobs_util.GetJobsSliceUtil().HigherRate)
	rms := &RMSScheduler{
		template,
	}
	template.impl = rms
	return rms
}

func (s *RMSScheduler) Name() string {
	return fmt.Sprintf("RMSScheduler")
}
