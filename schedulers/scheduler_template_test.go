package schedulers

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

type run struct {
	sim     *simulator.Simulator
	summary *simulator.Summary
	records *simulator.RecordBuffer
}

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return log.NewEntry(logger)
}

func runScheduler(t *testing.T, scheduler simulator.Scheduler, jobs []simulator.JobSpec, servers []simulator.ServerSpec,
	setOpts ...simulator.SetOption) *run {
	t.Helper()
	records := simulator.NewRecordBuffer()
	setOpts = append([]simulator.SetOption{
		simulator.WithOptionLogger(quietLogger()),
		simulator.WithOptionRecordSink(records),
	}, setOpts...)
	sim := simulator.NewSimulator(scheduler, jobs, servers, setOpts...)
	summary, err := sim.Run(context.Background())
	require.NoError(t, err)
	return &run{sim: sim, summary: summary, records: records}
}

func servers(n int, freqs ...types.Frequency) []simulator.ServerSpec {
	names := []types.ServerID{"s1", "s2", "s3", "s4"}
	res := make([]simulator.ServerSpec, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, simulator.ServerSpec{ID: names[i], Frequencies: freqs})
	}
	return res
}

func record(id types.JobID, server types.ServerID, arrival, start, end types.Time, finished bool) types.Record {
	return types.Record{
		JobID:     id,
		ServerID:  server,
		Arrival:   arrival,
		Start:     start,
		End:       end,
		Frequency: 1,
		Finished:  finished,
	}
}

func TestSchedulerTemplate_Record(t *testing.T) {
	fifo := NewFIFOScheduler(false)
	runScheduler(t, fifo, []simulator.JobSpec{
		simulator.NewJobSpec(1, 0, 3, 10, 0),
		simulator.NewJobSpec(2, 0, 1, 10, 0),
	}, servers(1, 1))

	rec := fifo.Record()
	// two calls at tick 0, then one call per tick while job 2 waits for the server
	assert.Len(t, rec.DoScheduleRecords, 5)
	for _, call := range rec.DoScheduleRecords {
		assert.GreaterOrEqual(t, int64(call.Duration), int64(0))
	}
	assert.Nil(t, rec.Extra)
}
