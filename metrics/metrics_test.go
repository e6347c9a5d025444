package metrics

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscas-system/powersched/schedulers"
	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return log.NewEntry(logger)
}

var testServers = []simulator.ServerSpec{{ID: "s1", Frequencies: []types.Frequency{1}, MaxPower: 100}}

// preempting runs an EDF workload where job 2 preempts job 1 once.
func preempting(t *testing.T, setOpts ...simulator.SetOption) (*simulator.Simulator, *simulator.Summary, simulator.Scheduler) {
	t.Helper()
	scheduler, err := schedulers.New(types.EDF)
	require.NoError(t, err)
	setOpts = append(setOpts, simulator.WithOptionLogger(quietLogger()))
	sim := simulator.NewSimulator(scheduler, []simulator.JobSpec{
		simulator.NewJobSpec(1, 0, 4, 20, 0),
		simulator.NewJobSpec(2, 1, 1, 2, 0),
	}, testServers, setOpts...)
	summary, err := sim.Run(context.Background())
	require.NoError(t, err)
	return sim, summary, scheduler
}

func TestPackJobs(t *testing.T) {
	jobs := packJobs([]types.Record{
		{JobID: 2, ServerID: "s1", Arrival: 1, Start: 1, End: 2, Frequency: 1, Finished: true},
		{JobID: 1, ServerID: "s1", Arrival: 0, Start: 0, End: 1, Frequency: 1},
		{JobID: 1, ServerID: "s2", Arrival: 0, Start: 2, End: 5, Frequency: 2, Finished: true},
		{JobID: 1, ServerID: "s1", Arrival: 6, Start: 6, End: 7, Frequency: 1},
	})
	require.Len(t, jobs, 3)
	assert.Equal(t, 1, jobs[0].ID)
	assert.Equal(t, 0, jobs[0].Arrival)
	assert.True(t, jobs[0].Finished)
	assert.Equal(t, 5, jobs[0].FinishedTime)
	assert.Equal(t, 5, jobs[0].Turnaround)
	assert.Equal(t, []*JobExecutionRange{
		{Server: "s1", StartTime: 0, End: 1, Runtime: 1, Frequency: 1},
		{Server: "s2", StartTime: 2, End: 5, Runtime: 3, Frequency: 2},
	}, jobs[0].ExecutionRanges)

	assert.Equal(t, 6, jobs[1].Arrival)
	assert.False(t, jobs[1].Finished)
	assert.Equal(t, -1, jobs[1].FinishedTime)
	assert.Equal(t, 2, jobs[2].ID)
}

func TestReport(t *testing.T) {
	records := simulator.NewRecordBuffer()
	sim, summary, scheduler := preempting(t, simulator.WithOptionRecordSink(records))

	report := GenerateSingleSimulationReport(summary, scheduler.Record(), records.Records())
	assert.Equal(t, "EDFScheduler", report.SchedulerName)
	assert.Equal(t, 2, report.Execution.Fulfilled)
	assert.Equal(t, 1, report.Execution.Preemptions)
	assert.Equal(t, len(scheduler.Record().DoScheduleRecords), report.Execution.DoScheduleCount)
	assert.Equal(t, simulator.NotHalted.String(), report.Execution.Halt)
	require.Len(t, report.Jobs, 2)
	assert.Len(t, report.Jobs[0].ExecutionRanges, 2)

	dir := t.TempDir()
	path, err := SaveSimulationReport(dir, map[string]*Report{"edf": report}, &SimulationMetaConfig{
		CaseFileName: "/tmp/cases/case1.toml",
		Servers:      sim.Cluster().Servers(),
	})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	loaded := &Reports{}
	require.NoError(t, json.Unmarshal(bs, loaded))
	assert.Equal(t, "case1", loaded.CaseName)
	assert.Len(t, loaded.RunID, 36)
	require.Contains(t, loaded.Reports, "edf")
	assert.Equal(t, []*Server{{ID: "s1", Frequencies: []int{1}, MaxPower: 100}}, loaded.Reports["edf"].ClusterConfig.Servers)
	assert.Equal(t, report.Execution.Makespan, loaded.Reports["edf"].Execution.Makespan)
}

func TestReport_NoScheduleCalls(t *testing.T) {
	report := GenerateSingleSimulationReport(&simulator.Summary{Policy: "idle"}, &types.SchedulerRecord{}, nil)
	assert.Zero(t, report.Execution.DoScheduleCount)
	assert.Zero(t, report.Execution.MaxDoScheduleDurationUs)
	assert.Empty(t, report.Jobs)
	assert.Equal(t, []time.Duration{}, doScheduleDurations(&types.SchedulerRecord{}))
}

func TestParquetSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.parquet")
	sink, err := NewParquetSink(path, "edf")
	require.NoError(t, err)
	_, summary, _ := preempting(t, simulator.WithOptionRecordSink(sink))
	require.NoError(t, sink.Close())
	assert.Equal(t, 2, summary.Fulfilled)

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(bs), 8)
	assert.Equal(t, "PAR1", string(bs[:4]))
	assert.Equal(t, "PAR1", string(bs[len(bs)-4:]))

	_, err = NewParquetSink(filepath.Join(t.TempDir(), "missing", "records.parquet"), "edf")
	assert.Error(t, err)
}

func TestCollector(t *testing.T) {
	collector := NewCollector()
	_, summary, _ := preempting(t, simulator.WithOptionObserver(collector.Observer("case1", "edf")))

	assert.Equal(t, 2., testutil.ToFloat64(collector.arrived.WithLabelValues("case1", "edf")))
	assert.Equal(t, 2., testutil.ToFloat64(collector.left.WithLabelValues("case1", "edf", "true")))
	assert.Equal(t, 1., testutil.ToFloat64(collector.left.WithLabelValues("case1", "edf", "false")))
	assert.Equal(t, 1., testutil.ToFloat64(collector.preemptions.WithLabelValues("case1", "edf")))
	assert.Zero(t, testutil.ToFloat64(collector.missed.WithLabelValues("case1", "edf")))
	assert.Equal(t, float64(summary.Ticks-1), testutil.ToFloat64(collector.tick.WithLabelValues("case1", "edf")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.turnaround))
	count, err := testutil.GatherAndCount(collector.Registry(), "powersched_jobs_left_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "finished and interrupted series")

	path := filepath.Join(t.TempDir(), "powersched.prom")
	require.NoError(t, collector.WriteToTextfile(path))
	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(bs), `powersched_jobs_admitted_total{policy="edf",scenario="case1"} 2`)
}

func TestCollector_Halt(t *testing.T) {
	collector := NewCollector()
	scheduler, err := schedulers.New(types.FIFOCapped)
	require.NoError(t, err)
	_, err = simulator.NewSimulator(scheduler, []simulator.JobSpec{simulator.NewJobSpec(1, 0, 10, 20, 0)}, testServers,
		simulator.WithOptionLogger(quietLogger()),
		simulator.WithOptionEnergyCap(10),
		simulator.WithOptionObserver(collector.Observer("case1", "fifo_capped"))).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1., testutil.ToFloat64(collector.halted.WithLabelValues("case1", "fifo_capped", simulator.HaltedEnergy.String())))
	assert.Equal(t, 1., testutil.ToFloat64(collector.missed.WithLabelValues("case1", "fifo_capped")))
}
