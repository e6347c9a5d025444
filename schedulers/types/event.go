package types

type ScheduleEventType int

const (
	TickPassed   = ScheduleEventType(0)
	JobsArrived  = ScheduleEventType(1)
	JobLeft      = ScheduleEventType(2)
	DeadlineMiss = ScheduleEventType(3)
	RunHalted    = ScheduleEventType(4)
)

type ScheduleEvent interface {
	GetEventType() ScheduleEventType
}

// ScheduleEventTickPassed carries the total power drawn during a tick.
type ScheduleEventTickPassed struct {
	tick  Time
	power Power
}

func (s *ScheduleEventTickPassed) Tick() Time {
	return s.tick
}

func (s *ScheduleEventTickPassed) Power() Power {
	return s.power
}

func NewScheduleEventTickPassed(tick Time, power Power) *ScheduleEventTickPassed {
	return &ScheduleEventTickPassed{tick: tick, power: power}
}

func (s *ScheduleEventTickPassed) GetEventType() ScheduleEventType {
	return TickPassed
}

type ScheduleEventJobsArrived struct {
	tick   Time
	jobIDs []JobID
}

func (s *ScheduleEventJobsArrived) JobIDs() []JobID {
	return s.jobIDs
}

func (s *ScheduleEventJobsArrived) Tick() Time {
	return s.tick
}

func NewScheduleEventJobsArrived(tick Time, jobIDs []JobID) *ScheduleEventJobsArrived {
	return &ScheduleEventJobsArrived{tick: tick, jobIDs: jobIDs}
}

func (s *ScheduleEventJobsArrived) GetEventType() ScheduleEventType {
	return JobsArrived
}

// ScheduleEventJobLeft is emitted when a job leaves a server, finished or preempted.
type ScheduleEventJobLeft struct {
	record Record
}

func (s *ScheduleEventJobLeft) Record() Record {
	return s.record
}

func NewScheduleEventJobLeft(record Record) *ScheduleEventJobLeft {
	return &ScheduleEventJobLeft{record: record}
}

func (s *ScheduleEventJobLeft) GetEventType() ScheduleEventType {
	return JobLeft
}

type ScheduleEventDeadlineMiss struct {
	tick  Time
	jobID JobID
}

func (s *ScheduleEventDeadlineMiss) JobID() JobID {
	return s.jobID
}

func (s *ScheduleEventDeadlineMiss) Tick() Time {
	return s.tick
}

func NewScheduleEventDeadlineMiss(tick Time, jobID JobID) *ScheduleEventDeadlineMiss {
	return &ScheduleEventDeadlineMiss{tick: tick, jobID: jobID}
}

func (s *ScheduleEventDeadlineMiss) GetEventType() ScheduleEventType {
	return DeadlineMiss
}

type ScheduleEventRunHalted struct {
	tick   Time
	reason string
}

func (s *ScheduleEventRunHalted) Reason() string {
	return s.reason
}

func (s *ScheduleEventRunHalted) Tick() Time {
	return s.tick
}

func NewScheduleEventRunHalted(tick Time, reason string) *ScheduleEventRunHalted {
	return &ScheduleEventRunHalted{tick: tick, reason: reason}
}

func (s *ScheduleEventRunHalted) GetEventType() ScheduleEventType {
	return RunHalted
}
