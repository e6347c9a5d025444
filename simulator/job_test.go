package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscas-system/powersched/schedulers/types"
)

func TestNewJob(t *testing.T) {
	j := NewJob(NewJobSpec(3, 2, 5, 10, 4))
	assert.Equal(t, NoJob, j.Handle())
	assert.Equal(t, types.JobID(3), j.ID())
	assert.Equal(t, types.Duration(5), j.Remaining())
	assert.Equal(t, types.NoTime, j.Start())
	assert.Equal(t, types.NoTime, j.FirstStart())
	assert.Equal(t, types.NoTime, j.End())
	assert.False(t, j.IsFinished())
	assert.True(t, j.Periodic())
	assert.InDelta(t, 0.25, j.Priority(), 1e-9)

	j.admit(2)
	assert.True(t, j.Admitted())
	assert.Equal(t, types.Time(12), j.Deadline())
	assert.Equal(t, types.Duration(10), j.DeadlineOffset())
}

func TestJob_AperiodicPriority(t *testing.T) {
	j := NewJob(NewJobSpec(1, 0, 1, 1, 0))
	assert.False(t, j.Periodic())
	assert.Zero(t, j.Priority())
}

func TestJob_ExecutesFor(t *testing.T) {
	j := NewJob(NewJobSpec(1, 0, 2, 5, 0))
	j.dispatch(4)
	j.executesFor()
	assert.Equal(t, types.Duration(1), j.Remaining())
	assert.Equal(t, types.Duration(1), j.Quantum())
	assert.Equal(t, types.Duration(1), j.Elapsed())
	j.dispatch(7)
	assert.Equal(t, types.Time(7), j.Start())
	assert.Equal(t, types.Time(4), j.FirstStart())
	j.executesFor()
	assert.True(t, j.IsFinished())
	assert.Panics(t, j.executesFor)
}

func TestJob_NextInstance(t *testing.T) {
	j := NewJob(NewJobSpec(1, 0, 3, 4, 6))
	j.admit(0)
	j.executesFor()
	copied := j.nextInstance(6)
	assert.Equal(t, j.ID(), copied.ID())
	assert.Equal(t, types.Time(6), copied.Arrival())
	assert.Equal(t, types.Duration(3), copied.Remaining())
	assert.Equal(t, types.Duration(4), copied.DeadlineOffset())
	assert.False(t, copied.Admitted())
	copied.admit(6)
	assert.Equal(t, types.Time(10), copied.Deadline())
}

func TestJobArena(t *testing.T) {
	a := NewJobArena()
	first := NewJob(NewJobSpec(1, 0, 1, 1, 2))
	second := NewJob(NewJobSpec(2, 0, 1, 1, 0))
	h1 := a.Add(first)
	h2 := a.Add(second)
	h3 := a.Add(first.nextInstance(2))
	require.Equal(t, 3, a.Len())
	assert.Equal(t, JobHandle(0), h1)
	assert.Same(t, second, a.Get(h2))
	assert.Equal(t, []JobHandle{h1, h3}, a.InstancesOf(1))
	assert.Nil(t, a.Get(NoJob))
	assert.Nil(t, a.Get(JobHandle(3)))
	assert.Panics(t, func() { a.Add(first) })
}
