package simulator

import (
	"fmt"

	"github.com/iscas-system/powersched/schedulers/types"
)

// JobHandle is a stable index into a JobArena.
type JobHandle int

// NoJob is the handle of an idle slot.
const NoJob = JobHandle(-1)

type Job struct {
	handle JobHandle

	id       types.JobID
	arrival  types.Time
	duration types.Duration
	// remaining is decremented once per tick while the job holds a server.
	remaining      types.Duration
	deadlineOffset types.Duration
	deadline       types.Time
	period         types.Duration

	start      types.Time
	firstStart types.Time
	end        types.Time
	quantum    types.Duration
	// instances counts the periodic copies materialised from this job.
	instances int

	admitted bool
	missed   bool
}

func NewJob(spec JobSpec) *Job {
	return &Job{
		handle:         NoJob,
		id:             spec.ID,
		arrival:        spec.Arrival,
		duration:       spec.Duration,
		remaining:      spec.Duration,
		deadlineOffset: spec.Deadline,
		deadline:       types.Time(spec.Deadline),
		period:         spec.Period,
		start:          types.NoTime,
		firstStart:     types.NoTime,
		end:            types.NoTime,
	}
}

// nextInstance materialises the periodic copy anchored at now.
func (j *Job) nextInstance(now types.Time) *Job {
	return NewJob(NewJobSpec(j.id, now, j.duration, j.deadlineOffset, j.period))
}

func (j *Job) Handle() JobHandle {
	return j.handle
}

func (j *Job) ID() types.JobID {
	return j.id
}

func (j *Job) Arrival() types.Time {
	return j.arrival
}

func (j *Job) Duration() types.Duration {
	return j.duration
}

func (j *Job) Remaining() types.Duration {
	return j.remaining
}

// Deadline is absolute once the job has been admitted, and still the offset before that.
func (j *Job) Deadline() types.Time {
	return j.deadline
}

func (j *Job) DeadlineOffset() types.Duration {
	return j.deadlineOffset
}

func (j *Job) Period() types.Duration {
	return j.period
}

func (j *Job) Periodic() bool {
	return j.period > 0
}

// Priority is the rate-monotonic priority 1/period. Aperiodic jobs have the lowest priority, 0.
func (j *Job) Priority() float64 {
	if j.period <= 0 {
		return 0
	}
	return 1. / float64(j.period)
}

func (j *Job) Start() types.Time {
	return j.start
}

func (j *Job) FirstStart() types.Time {
	return j.firstStart
}

func (j *Job) End() types.Time {
	return j.end
}

func (j *Job) Quantum() types.Duration {
	return j.quantum
}

func (j *Job) Instances() int {
	return j.instances
}

func (j *Job) Admitted() bool {
	return j.admitted
}

func (j *Job) Missed() bool {
	return j.missed
}

func (j *Job) IsFinished() bool {
	return j.remaining <= 0
}

// Elapsed is the work already executed.
func (j *Job) Elapsed() types.Duration {
	return j.duration - j.remaining
}

func (j *Job) admit(now types.Time) {
	j.deadline = now + types.Time(j.deadlineOffset)
	j.admitted = true
}

func (j *Job) dispatch(now types.Time) {
	j.start = now
	if j.firstStart == types.NoTime {
		j.firstStart = now
	}
}

// executesFor runs the job for one tick.
func (j *Job) executesFor() {
	if j.remaining <= 0 {
		panic(fmt.Sprintf("executesFor called on finished job %d", j.id))
	}
	j.remaining--
	j.quantum++
}

func (j *Job) PrettyExpose() interface{} {
	return struct {
		ID        types.JobID
		Remaining types.Duration
		Deadline  types.Time
		Period    types.Duration
	}{j.id, j.remaining, j.deadline, j.period}
}

func (j *Job) String() string {
	return fmt.Sprintf("job=[ID=%d, handle=%d, remaining=%d/%d, deadline=%d, start=%d, end=%d]",
		j.id, j.handle, j.remaining, j.duration, j.deadline, j.start, j.end)
}

// JobArena owns every job instance of a run.
type JobArena struct {
	jobs []*Job
	byID map[types.JobID][]JobHandle
}

func NewJobArena() *JobArena {
	return &JobArena{
		jobs: make([]*Job, 0),
		byID: make(map[types.JobID][]JobHandle),
	}
}

func (a *JobArena) Add(job *Job) JobHandle {
	if job.handle != NoJob {
		panic(fmt.Sprintf("JobArena Add job %d already has handle %d", job.id, job.handle))
	}
	h := JobHandle(len(a.jobs))
	job.handle = h
	a.jobs = append(a.jobs, job)
	a.byID[job.id] = append(a.byID[job.id], h)
	return h
}

func (a *JobArena) Get(h JobHandle) *Job {
	if h < 0 || int(h) >= len(a.jobs) {
		return nil
	}
	return a.jobs[h]
}

func (a *JobArena) Len() int {
	return len(a.jobs)
}

// InstancesOf returns the handles of every instance sharing id, in creation order.
func (a *JobArena) InstancesOf(id types.JobID) []JobHandle {
	return a.byID[id]
}

func (a *JobArena) Jobs() []*Job {
	return a.jobs
}
