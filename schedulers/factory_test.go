package schedulers

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

func TestNew(t *testing.T) {
	names := make(map[string]bool)
	for _, kind := range types.PolicyKinds() {
		scheduler, err := New(kind)
		require.NoError(t, err, kind.String())
		require.NotNil(t, scheduler)
		names[scheduler.Name()] = true
	}
	assert.Len(t, names, len(types.PolicyKinds()), "every policy has its own name")

	_, err := New(types.PolicyKind(42))
	assert.Error(t, err)
}

func TestSchedulers_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	for _, kind := range types.PolicyKinds() {
		kind := kind
		properties.Property(kind.String()+" conserves jobs and never overlaps on a server", prop.ForAll(
			func(w *simulator.Workload) bool {
				scheduler, err := New(kind)
				if err != nil {
					return false
				}
				records := simulator.NewRecordBuffer()
				sim := simulator.NewSimulator(scheduler, w.Jobs, w.Servers,
					simulator.WithOptionLogger(quietLogger()),
					simulator.WithOptionRecordSink(records),
					simulator.WithOptionRepeat(2),
					simulator.WithOptionPowerCap(300),
					simulator.WithOptionEnergyCap(800),
					simulator.WithOptionDependencies(w.Dependencies))
				summary, err := sim.Run(context.Background())
				if err != nil {
					return false
				}
				if summary.Fulfilled+summary.Missed != summary.Admitted {
					return false
				}
				if len(records.Finished()) > summary.Admitted {
					return false
				}
				lastEnd := make(map[types.ServerID]types.Time)
				for _, r := range records.Records() {
					if end, ok := lastEnd[r.ServerID]; ok && r.Start < end {
						return false
					}
					lastEnd[r.ServerID] = r.End
				}
				return kind.Preemptive() || summary.Preemptions == 0
			},
			simulator.GenWorkload(8, 3, true),
		))
	}

	properties.TestingRun(t)
}
