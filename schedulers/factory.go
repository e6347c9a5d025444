package schedulers

import (
	"fmt"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

// New builds the scheduler of a policy. The switch covers every PolicyKind.
func New(kind types.PolicyKind) (simulator.Scheduler, error) {
	switch kind {
	case types.FIFO:
		return NewFIFOScheduler(false), nil
	case types.FIFOCapped:
		return NewFIFOScheduler(true), nil
	case types.RoundRobin:
		return NewRRScheduler(), nil
	case types.EDF:
		return NewEDFScheduler(false), nil
	case types.EDFCapped:
		return NewEDFScheduler(true), nil
	case types.RMS:
		return NewRMSScheduler(), nil
	case types.Wavefront:
		return NewWavefrontScheduler(), nil
	case types.CPM:
		return NewCPMScheduler(), nil
	}
	return nil, fmt.Errorf("no scheduler for policy %s", kind)
}
