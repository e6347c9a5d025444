package schedulers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

func deps(pairs ...[2]types.JobID) []types.Dependency {
	res := make([]types.Dependency, 0, len(pairs))
	for _, p := range pairs {
		res = append(res, types.Dependency{Predecessor: p[0], Successor: p[1]})
	}
	return res
}

func unitJobs(ids ...types.JobID) []simulator.JobSpec {
	res := make([]simulator.JobSpec, 0, len(ids))
	for _, id := range ids {
		res = append(res, simulator.NewJobSpec(id, 0, 1, 10, 0))
	}
	return res
}

func TestWavefrontScheduler_Waves(t *testing.T) {
	wavefront := NewWavefrontScheduler()
	r := runScheduler(t, wavefront, unitJobs(0, 1, 2, 3), servers(2, 1),
		simulator.WithOptionDependencies(deps([2]types.JobID{0, 1}, [2]types.JobID{0, 2}, [2]types.JobID{1, 3})))

	assert.Equal(t, []types.Record{
		record(0, "s1", 0, 0, 1, true),
		record(1, "s1", 0, 1, 2, true),
		record(2, "s2", 0, 1, 2, true),
		record(3, "s1", 0, 2, 3, true),
	}, r.records.Records())
	assert.Zero(t, r.summary.Missed)
	assert.Equal(t, types.Time(3), r.summary.Makespan)

	extra, ok := wavefront.Record().Extra.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, [][]types.JobID{{0}, {1, 2}, {3}}, extra["waves"])
}

func TestWavefrontScheduler_WaitsForWholeWave(t *testing.T) {
	// job 2 sits in wave 0 but only arrives at tick 3, holding back wave 1 although job 1 is
	// eligible from tick 1
	jobs := []simulator.JobSpec{
		simulator.NewJobSpec(0, 0, 1, 10, 0),
		simulator.NewJobSpec(1, 0, 1, 10, 0),
		simulator.NewJobSpec(2, 3, 1, 10, 0),
	}
	r := runScheduler(t, NewWavefrontScheduler(), jobs, servers(2, 1),
		simulator.WithOptionDependencies(deps([2]types.JobID{0, 1})))

	assert.Equal(t, []types.Record{
		record(0, "s1", 0, 0, 1, true),
		record(1, "s1", 0, 3, 4, true),
		record(2, "s2", 3, 3, 4, true),
	}, r.records.Records())
}

func TestWavefrontScheduler_IgnoresUnknownIDs(t *testing.T) {
	r := runScheduler(t, NewWavefrontScheduler(), unitJobs(0, 1), servers(1, 1),
		simulator.WithOptionDependencies(deps([2]types.JobID{0, 1}, [2]types.JobID{7, 8})))

	assert.False(t, r.summary.Halted())
	assert.Equal(t, 2, r.summary.Fulfilled)
}
