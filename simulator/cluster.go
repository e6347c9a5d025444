package simulator

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/iscas-system/powersched/schedulers/types"
)

// Observer is told about everything that happens during a run.
type Observer interface {
	OnScheduleEvent(event types.ScheduleEvent)
}

type HaltReason int

const (
	NotHalted     = HaltReason(0)
	HaltedEnergy  = HaltReason(1)
	HaltedHorizon = HaltReason(2)
)

func (r HaltReason) String() string {
	switch r {
	case NotHalted:
		return "running"
	case HaltedEnergy:
		return "energy cap reached"
	case HaltedHorizon:
		return "tick horizon reached"
	default:
		return fmt.Sprintf("HaltReason(%d)", int(r))
	}
}

// Cluster is the state a policy works on: the servers, every job instance and the ready queue,
// plus the power and energy accounting of the run.
type Cluster struct {
	servers []*Server
	arena   *JobArena
	queue   *ReadyQueue
	now     types.Time

	powerCap     types.Power
	energyCap    types.Energy
	consumed     types.Energy
	powerHistory []types.Power

	admitted    int
	missed      int
	preemptions int
	halt        HaltReason

	dispatched   []JobHandle
	dependencies []types.Dependency

	opts      *Options
	sinks     []RecordSink
	observers []Observer
	logger    *log.Entry
}

func NewCluster(servers []ServerSpec, opts *Options) *Cluster {
	logger := opts.logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	c := &Cluster{
		servers:      make([]*Server, 0, len(servers)),
		arena:        NewJobArena(),
		queue:        NewReadyQueue(),
		powerCap:     opts.powerCap,
		energyCap:    opts.energyCap,
		powerHistory: make([]types.Power, 0),
		dispatched:   make([]JobHandle, 0),
		dependencies: opts.dependencies,
		opts:         opts,
		sinks:        opts.sinks,
		observers:    opts.observers,
		logger:       logger,
	}
	for _, spec := range servers {
		server := NewServer(spec)
		server.bind(c.arena, c, logger)
		c.servers = append(c.servers, server)
	}
	return c
}

func (c *Cluster) Now() types.Time {
	return c.now
}

func (c *Cluster) Servers() []*Server {
	return c.servers
}

func (c *Cluster) Arena() *JobArena {
	return c.arena
}

func (c *Cluster) Queue() *ReadyQueue {
	return c.queue
}

func (c *Cluster) Options() *Options {
	return c.opts
}

func (c *Cluster) Logger() *log.Entry {
	return c.logger
}

func (c *Cluster) Job(h JobHandle) *Job {
	return c.arena.Get(h)
}

// QueuedJobs resolves the ready queue in queue order.
func (c *Cluster) QueuedJobs() []*Job {
	handles := c.queue.Handles()
	jobs := make([]*Job, 0, len(handles))
	for _, h := range handles {
		jobs = append(jobs, c.arena.Get(h))
	}
	return jobs
}

func (c *Cluster) IdleServers() []*Server {
	res := make([]*Server, 0, len(c.servers))
	for _, s := range c.servers {
		if s.IsIdle() {
			res = append(res, s)
		}
	}
	return res
}

func (c *Cluster) BusyServers() int {
	busy := 0
	for _, s := range c.servers {
		if !s.IsIdle() {
			busy++
		}
	}
	return busy
}

func (c *Cluster) Dependencies() []types.Dependency {
	return c.dependencies
}

func (c *Cluster) PowerCap() types.Power {
	return c.powerCap
}

func (c *Cluster) EnergyCap() types.Energy {
	return c.energyCap
}

func (c *Cluster) ConsumedEnergy() types.Energy {
	return c.consumed
}

func (c *Cluster) PowerHistory() []types.Power {
	return c.powerHistory
}

func (c *Cluster) Admitted() int {
	return c.admitted
}

func (c *Cluster) Missed() int {
	return c.missed
}

func (c *Cluster) Preemptions() int {
	return c.preemptions
}

// Dispatched lists the handle of every dispatch, in dispatch order.
func (c *Cluster) Dispatched() []JobHandle {
	return c.dispatched
}

// BusyPower sums the draw of every busy server except the given one, which may be nil.
func (c *Cluster) BusyPower(except *Server) types.Power {
	total := types.Power(0)
	for _, s := range c.servers {
		if s == except {
			continue
		}
		total += s.Power()
	}
	return total
}

func (c *Cluster) TotalPower() types.Power {
	return c.BusyPower(nil)
}

func (c *Cluster) EnergyCapExceeded(job *Job, server *Server) bool {
	return EnergyCapExceeded(c.consumed, c.energyCap, EnergyCost(job, server))
}

// PowerCapExceeded checks server against the power cap, ignoring the server's own current draw.
func (c *Cluster) PowerCapExceeded(server *Server) bool {
	return PowerCapExceeded(c.BusyPower(server), c.powerCap, server)
}

func (c *Cluster) Halted() bool {
	return c.halt != NotHalted
}

func (c *Cluster) HaltReason() HaltReason {
	return c.halt
}

// HaltOnEnergy latches the run as out of energy. The current tick completes but no later tick runs.
func (c *Cluster) HaltOnEnergy(job *Job) {
	c.setHalt(HaltedEnergy, log.Fields{"job": job.ID(), "consumed": c.consumed, "energy_cap": c.energyCap})
}

func (c *Cluster) setHalt(reason HaltReason, fields log.Fields) {
	if c.Halted() {
		return
	}
	c.halt = reason
	c.logger.WithFields(fields).WithField("tick", c.now).Warnf("run halted, %s", reason)
	c.emit(types.NewScheduleEventRunHalted(c.now, reason.String()))
}

// Dispatch moves a queued job onto an idle server without power bookkeeping.
func (c *Cluster) Dispatch(server *Server, h JobHandle) bool {
	return c.dispatch(server, h, server.Schedule)
}

// DispatchEnergyAware moves a queued job onto an idle server at its top frequency.
func (c *Cluster) DispatchEnergyAware(server *Server, h JobHandle) bool {
	return c.dispatch(server, h, server.ScheduleEnergyAware)
}

func (c *Cluster) dispatch(server *Server, h JobHandle, schedule func(types.Time, *Job) bool) bool {
	if !c.queue.Contains(h) {
		panic(fmt.Sprintf("Cluster dispatch job handle %d is not queued", h))
	}
	if !schedule(c.now, c.arena.Get(h)) {
		return false
	}
	c.queue.Remove(h)
	c.dispatched = append(c.dispatched, h)
	return true
}

// Preempt interrupts the job running on server and puts it back at the tail of the ready queue.
func (c *Cluster) Preempt(server *Server) JobHandle {
	h, ok := server.Shutdown(c.now)
	if !ok {
		return NoJob
	}
	if !c.arena.Get(h).IsFinished() {
		c.queue.Push(h)
		c.preemptions++
	}
	return h
}

// IDDispatched reports whether every known instance of id was admitted and dispatched at least once.
func (c *Cluster) IDDispatched(id types.JobID) bool {
	handles := c.arena.InstancesOf(id)
	if len(handles) == 0 {
		return false
	}
	for _, h := range handles {
		job := c.arena.Get(h)
		if !job.Admitted() || job.FirstStart() == types.NoTime {
			return false
		}
	}
	return true
}

// IDFinished reports whether every known instance of id has completed. Unknown ids count as finished.
func (c *Cluster) IDFinished(id types.JobID) bool {
	for _, h := range c.arena.InstancesOf(id) {
		if !c.arena.Get(h).IsFinished() {
			return false
		}
	}
	return true
}

// Eligible reports whether every predecessor of id has finished.
func (c *Cluster) Eligible(id types.JobID) bool {
	for _, dep := range c.dependencies {
		if dep.Successor == id && !c.IDFinished(dep.Predecessor) {
			return false
		}
	}
	return true
}

// Record implements RecordSink for the servers of the cluster and forwards to the run's sinks.
func (c *Cluster) Record(record types.Record) {
	for _, sink := range c.sinks {
		sink.Record(record)
	}
	c.emit(types.NewScheduleEventJobLeft(record))
}

func (c *Cluster) emit(event types.ScheduleEvent) {
	for _, o := range c.observers {
		o.OnScheduleEvent(event)
	}
}

func (c *Cluster) String() string {
	return fmt.Sprintf("cluster=[now=%d, servers=%d, queued=%d, consumed=%s, halt=%s]",
		c.now, len(c.servers), c.queue.Len(), c.consumed, c.halt)
}
