package simulator

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/iscas-system/powersched/schedulers/types"
)

// DefaultMaxPower is the rating of a server whose spec does not name one.
const DefaultMaxPower = types.Power(200)

// ServerSpec is one line of a server file.
type ServerSpec struct {
	ID          types.ServerID
	Frequencies []types.Frequency
	MaxPower    types.Power
}

// Server runs at most one job at a time. It only reaches its jobs through the arena it is bound to.
type Server struct {
	id          types.ServerID
	frequencies []types.Frequency
	maxPower    types.Power

	job     JobHandle
	history []JobHandle
	power   types.Power
	speed   float64

	arena  *JobArena
	sink   RecordSink
	logger *log.Entry
}

func NewServer(spec ServerSpec) *Server {
	if len(spec.Frequencies) == 0 {
		panic(fmt.Sprintf("server %s has no frequency", spec.ID))
	}
	maxPower := spec.MaxPower
	if maxPower <= 0 {
		maxPower = DefaultMaxPower
	}
	freqs := make([]types.Frequency, len(spec.Frequencies))
	copy(freqs, spec.Frequencies)
	return &Server{
		id:          spec.ID,
		frequencies: freqs,
		maxPower:    maxPower,
		job:         NoJob,
		history:     make([]JobHandle, 0),
		speed:       1,
		sink:        DiscardSink,
		logger:      log.NewEntry(log.StandardLogger()),
	}
}

func (s *Server) bind(arena *JobArena, sink RecordSink, logger *log.Entry) {
	s.arena = arena
	s.sink = sink
	s.logger = logger.WithField("server", s.id)
}

func (s *Server) ID() types.ServerID {
	return s.id
}

func (s *Server) Frequencies() []types.Frequency {
	return s.frequencies
}

// TopFrequency is the last declared frequency, the only one the policies use.
func (s *Server) TopFrequency() types.Frequency {
	return s.frequencies[len(s.frequencies)-1]
}

func (s *Server) MaxFrequency() types.Frequency {
	max := s.frequencies[0]
	for _, f := range s.frequencies[1:] {
		if f > max {
			max = f
		}
	}
	return max
}

func (s *Server) MaxPower() types.Power {
	return s.maxPower
}

func (s *Server) Power() types.Power {
	return s.power
}

func (s *Server) Speed() float64 {
	return s.speed
}

// Job returns the handle of the running job, NoJob when idle.
func (s *Server) Job() JobHandle {
	return s.job
}

// RunningJob resolves the running job through the arena, nil when idle.
func (s *Server) RunningJob() *Job {
	if s.job == NoJob || s.arena == nil {
		return nil
	}
	return s.arena.Get(s.job)
}

func (s *Server) IsIdle() bool {
	return s.job == NoJob
}

// History lists every job the server has hosted, one entry per dispatch.
func (s *Server) History() []JobHandle {
	return s.history
}

// topSpeed is the speed ratio the server runs at on its top frequency.
func (s *Server) topSpeed() float64 {
	return float64(s.TopFrequency()) / float64(s.MaxFrequency())
}

// DrawFor is the power the server draws while running a job at its top frequency.
func (s *Server) DrawFor() types.Power {
	speed := s.topSpeed()
	return s.maxPower * types.Power(speed*speed)
}

// DurationOn is the time the job needs at the top frequency, rounded to one decimal.
func (s *Server) DurationOn(job *Job) float64 {
	return roundTo(float64(job.Remaining())/float64(s.TopFrequency()), 1)
}

func (s *Server) attach(now types.Time, job *Job) bool {
	if !s.IsIdle() {
		s.logger.WithField("job", job.ID()).Warn("server is busy, job not scheduled")
		return false
	}
	if s.arena == nil || s.arena.Get(job.Handle()) != job {
		panic(fmt.Sprintf("server %s schedule job %d not owned by its arena", s.id, job.ID()))
	}
	s.job = job.Handle()
	s.history = append(s.history, job.Handle())
	job.dispatch(now)
	return true
}

// Schedule attaches job without any power bookkeeping.
func (s *Server) Schedule(now types.Time, job *Job) bool {
	if !s.attach(now, job) {
		return false
	}
	job.end = now + types.Time(job.Remaining())
	s.logger.WithFields(log.Fields{"tick": now, "job": job.ID()}).Info("job scheduled")
	return true
}

// ScheduleEnergyAware attaches job at the top frequency and starts drawing power.
func (s *Server) ScheduleEnergyAware(now types.Time, job *Job) bool {
	duration := s.DurationOn(job)
	if !s.attach(now, job) {
		return false
	}
	s.speed = s.topSpeed()
	s.power = s.maxPower * types.Power(s.speed*s.speed)
	job.end = types.Time(math.RoundToEven(float64(now) + duration))
	s.logger.WithFields(log.Fields{
		"tick":  now,
		"job":   job.ID(),
		"power": s.power,
		"end":   job.end,
	}).Info("job scheduled energy aware")
	return true
}

// Shutdown takes the running job off the server and returns its handle so the caller can requeue
// it. A finished job gets its end fixed to now; an interrupted one keeps its remaining work.
func (s *Server) Shutdown(now types.Time) (JobHandle, bool) {
	if s.IsIdle() {
		return NoJob, false
	}
	h := s.job
	job := s.arena.Get(h)
	job.quantum = 0
	finished := job.IsFinished()
	fields := log.Fields{"tick": now, "job": job.ID(), "remaining": job.Remaining()}
	if finished {
		job.end = now
		s.logger.WithFields(fields).Info("job finished")
	} else {
		s.logger.WithFields(fields).Info("job interrupted")
	}
	s.sink.Record(types.Record{
		JobID:     job.ID(),
		ServerID:  s.id,
		Arrival:   job.Arrival(),
		Start:     job.Start(),
		End:       now,
		Frequency: s.TopFrequency(),
		Period:    job.Period(),
		Finished:  finished,
	})
	if !finished {
		job.end = types.NoTime
	}
	s.job = NoJob
	s.power = 0
	return h, true
}

func (s *Server) String() string {
	return fmt.Sprintf("server=[ID=%s, frequencies=%v, job=%d, power=%s]", s.id, s.frequencies, s.job, s.power)
}

func roundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*p) / p
}
