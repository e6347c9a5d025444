package metrics

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/iscas-system/powersched/schedulers/types"
)

func doScheduleDurations(record *types.SchedulerRecord) []time.Duration {
	if record == nil {
		return nil
	}
	res := make([]time.Duration, 0, len(record.DoScheduleRecords))
	for _, r := range record.DoScheduleRecords {
		res = append(res, r.Duration)
	}
	return res
}

type instanceKey struct {
	id      types.JobID
	arrival types.Time
}

// packJobs folds the records into one entry per job instance, keyed by id and arrival, in order of
// id then arrival. Every record of an instance becomes one execution range.
func packJobs(records []types.Record) []*Job {
	jobs := make(map[instanceKey]*Job)
	keys := make([]instanceKey, 0)
	for _, r := range records {
		key := instanceKey{id: r.JobID, arrival: r.Arrival}
		job, ok := jobs[key]
		if !ok {
			job = &Job{
				ID:              int(r.JobID),
				Arrival:         int(r.Arrival),
				FinishedTime:    int(types.NoTime),
				ExecutionRanges: make([]*JobExecutionRange, 0, 1),
			}
			jobs[key] = job
			keys = append(keys, key)
		}
		job.ExecutionRanges = append(job.ExecutionRanges, &JobExecutionRange{
			Server:    string(r.ServerID),
			StartTime: int(r.Start),
			End:       int(r.End),
			Runtime:   int(r.End - r.Start),
			Frequency: int(r.Frequency),
		})
		if r.Finished {
			job.Finished = true
			job.FinishedTime = int(r.End)
			job.Turnaround = int(r.End - r.Arrival)
		}
	}
	slices.SortStableFunc(keys, func(a, b instanceKey) bool {
		if a.id != b.id {
			return a.id < b.id
		}
		return a.arrival < b.arrival
	})
	res := make([]*Job, 0, len(keys))
	for _, key := range keys {
		res = append(res, jobs[key])
	}
	return res
}
