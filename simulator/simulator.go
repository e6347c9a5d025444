package simulator

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/util"
)

type Simulator struct {
	opts      *Options
	scheduler Scheduler
	cluster   *Cluster
	// inputs are the jobs of the job file, each one the first instance of its id.
	inputs []*Job
	logger *log.Entry
}

func NewSimulator(scheduler Scheduler, jobs []JobSpec, servers []ServerSpec, setOpts ...SetOption) *Simulator {
	opts := *defaultOptions
	for _, setOpt := range setOpts {
		setOpt(&opts)
	}
	if opts.logger == nil {
		opts.logger = log.NewEntry(log.StandardLogger())
	}
	opts.logger = opts.logger.WithField("policy", scheduler.Name())

	cluster := NewCluster(servers, &opts)
	inputs := make([]*Job, 0, len(jobs))
	for _, spec := range jobs {
		job := NewJob(spec)
		cluster.arena.Add(job)
		inputs = append(inputs, job)
	}
	return &Simulator{
		opts:      &opts,
		scheduler: scheduler,
		cluster:   cluster,
		inputs:    inputs,
		logger:    opts.logger,
	}
}

func (s *Simulator) Cluster() *Cluster {
	return s.cluster
}

// Run drives the tick loop until every job has drained or the run halts.
func (s *Simulator) Run(ctx context.Context) (*Summary, error) {
	c := s.cluster
	s.scheduler.SetCluster(c)
	horizon := s.horizon()
	s.logger.WithFields(log.Fields{
		"jobs":       len(s.inputs),
		"servers":    len(c.servers),
		"power_cap":  c.powerCap,
		"energy_cap": c.energyCap,
		"horizon":    horizon,
	}).Info("simulation started")

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "simulation interrupted at tick %d", c.now)
		}
		s.tick()
		c.now++
		if c.Halted() || s.drained() {
			break
		}
		if c.now >= horizon {
			c.setHalt(HaltedHorizon, log.Fields{"horizon": horizon})
			break
		}
	}
	s.settle()
	summary := s.summarize()
	s.logger.WithFields(log.Fields{
		"fulfilled": summary.Fulfilled,
		"missed":    summary.Missed,
		"energy":    summary.Energy,
		"makespan":  summary.Makespan,
		"halt":      summary.HaltReason,
	}).Info("simulation completed")
	return summary, nil
}

func (s *Simulator) tick() {
	c := s.cluster
	now := c.now
	if arrived := s.admit(now); len(arrived) > 0 {
		ids := make([]types.JobID, 0, len(arrived))
		for _, h := range arrived {
			ids = append(ids, c.arena.Get(h).ID())
		}
		c.emit(types.NewScheduleEventJobsArrived(now, ids))
	}
	running := s.sweep(now)

	power := c.TotalPower()
	c.powerHistory = append(c.powerHistory, power)
	c.consumed += types.Energy(power)
	c.emit(types.NewScheduleEventTickPassed(now, power))

	s.checkDeadlines(now)

	calls := c.queue.Len()
	for i := 0; i < calls && !c.Halted(); i++ {
		s.scheduler.Schedule()
	}
	if s.logger.Logger.IsLevelEnabled(log.DebugLevel) {
		s.logger.WithFields(log.Fields{
			"tick":    now,
			"running": running,
			"queued":  c.queue.Len(),
			"power":   power,
		}).Debugf("tick passed, %s", util.PrettySlice(c.QueuedJobs()))
	}
}

// admit queues the jobs arriving at now, and the periodic copies due at now.
func (s *Simulator) admit(now types.Time) []JobHandle {
	c := s.cluster
	arrived := make([]JobHandle, 0)
	for _, job := range s.inputs {
		switch {
		case job.Arrival() == now:
		case job.Periodic() && now > job.Arrival() && job.instances < s.opts.repeat &&
			(now-job.Arrival())%types.Time(job.Period()) == 0:
			job.instances++
			job = job.nextInstance(now)
			c.arena.Add(job)
		default:
			continue
		}
		job.admit(now)
		c.queue.Push(job.Handle())
		c.admitted++
		arrived = append(arrived, job.Handle())
		s.logger.WithFields(log.Fields{"tick": now, "job": job.ID(), "deadline": job.Deadline()}).Debug("job admitted")
	}
	return arrived
}

// sweep runs every busy server for one tick, shutting down the jobs that complete, and returns
// how many jobs are still running.
func (s *Simulator) sweep(now types.Time) int {
	running := 0
	for _, server := range s.cluster.servers {
		job := server.RunningJob()
		if job == nil {
			continue
		}
		job.executesFor()
		if job.IsFinished() {
			server.Shutdown(now)
			continue
		}
		running++
	}
	return running
}

func (s *Simulator) checkDeadlines(now types.Time) {
	c := s.cluster
	for _, job := range c.QueuedJobs() {
		if job.missed {
			continue
		}
		var miss bool
		switch s.opts.deadlineCheck {
		case DeadlineExact:
			miss = job.Deadline() == now
		case DeadlinePassed:
			miss = job.Deadline() <= now
		}
		if miss {
			s.markMissed(job, now)
		}
	}
}

func (s *Simulator) markMissed(job *Job, now types.Time) {
	job.missed = true
	s.cluster.missed++
	s.logger.WithFields(log.Fields{"tick": now, "job": job.ID(), "deadline": job.Deadline()}).Info("job missed its deadline")
	s.cluster.emit(types.NewScheduleEventDeadlineMiss(now, job.ID()))
}

// drained reports whether nothing is left to run: no busy server, no queued job, and every input job
// finished with its periodic copies all released.
func (s *Simulator) drained() bool {
	c := s.cluster
	if c.BusyServers() > 0 || !c.queue.Empty() {
		return false
	}
	for _, job := range s.inputs {
		if !job.IsFinished() {
			return false
		}
		if job.Periodic() && job.instances < s.opts.repeat {
			return false
		}
	}
	return true
}

// settle counts the admitted instances a halted run left unfinished as missed.
func (s *Simulator) settle() {
	for _, job := range s.cluster.arena.Jobs() {
		if job.Admitted() && !job.IsFinished() && !job.missed {
			s.markMissed(job, s.cluster.now)
		}
	}
}

// horizon is the tick a run is halted at if it has not drained. Unless set explicitly it is the
// last release of any job plus the whole workload run back to back.
func (s *Simulator) horizon() types.Time {
	if s.opts.maxTicks > 0 {
		return s.opts.maxTicks
	}
	lastRelease := types.Time(0)
	work := types.Duration(0)
	for _, job := range s.inputs {
		release := job.Arrival()
		instances := types.Duration(1)
		if job.Periodic() {
			release += types.Time(job.Period()) * types.Time(s.opts.repeat)
			instances += types.Duration(s.opts.repeat)
		}
		if release > lastRelease {
			lastRelease = release
		}
		work += job.Duration() * instances
	}
	return lastRelease + types.Time(work) + 2
}
