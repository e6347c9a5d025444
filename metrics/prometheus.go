package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iscas-system/powersched/schedulers/types"
)

const namespace = "powersched"

// Collector turns the schedule events of runs into prometheus metrics on its own registry. Every
// series carries the scenario and policy labels, so one collector can watch concurrent runs.
type Collector struct {
	registry *prometheus.Registry

	tick        *prometheus.GaugeVec
	power       *prometheus.GaugeVec
	energy      *prometheus.CounterVec
	arrived     *prometheus.CounterVec
	left        *prometheus.CounterVec
	missed      *prometheus.CounterVec
	halted      *prometheus.CounterVec
	turnaround  *prometheus.HistogramVec
	preemptions *prometheus.CounterVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Collector{
		registry: registry,
		tick: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick",
			Help:      "Last simulated tick.",
		}, []string{"scenario", "policy"}),
		power: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "power_draw_watts",
			Help:      "Power drawn by all busy servers during the last tick.",
		}, []string{"scenario", "policy"}),
		energy: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "energy_consumed_total",
			Help:      "Energy consumed, summed over the power samples of every tick.",
		}, []string{"scenario", "policy"}),
		arrived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_admitted_total",
			Help:      "Job instances admitted to the ready queue.",
		}, []string{"scenario", "policy"}),
		left: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_left_total",
			Help:      "Job instances taken off a server, split by whether they finished.",
		}, []string{"scenario", "policy", "finished"}),
		missed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deadline_misses_total",
			Help:      "Job instances counted as missing their deadline.",
		}, []string{"scenario", "policy"}),
		halted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_halted_total",
			Help:      "Runs halted before draining, by reason.",
		}, []string{"scenario", "policy", "reason"}),
		turnaround: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_turnaround_ticks",
			Help:      "Ticks from arrival to completion of finished job instances.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"scenario", "policy"}),
		preemptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preemptions_total",
			Help:      "Running jobs taken off their server before finishing.",
		}, []string{"scenario", "policy"}),
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observer returns the observer feeding the metrics of one run.
func (c *Collector) Observer(scenario, policy string) *RunObserver {
	return &RunObserver{collector: c, scenario: scenario, policy: policy}
}

// WriteToTextfile dumps the registry in the text exposition format, for the node exporter
// textfile collector.
func (c *Collector) WriteToTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, c.registry), "write metrics to %s", path)
}

type RunObserver struct {
	collector *Collector
	scenario  string
	policy    string
}

func (o *RunObserver) OnScheduleEvent(event types.ScheduleEvent) {
	c := o.collector
	switch e := event.(type) {
	case *types.ScheduleEventTickPassed:
		c.tick.WithLabelValues(o.scenario, o.policy).Set(float64(e.Tick()))
		c.power.WithLabelValues(o.scenario, o.policy).Set(float64(e.Power()))
		c.energy.WithLabelValues(o.scenario, o.policy).Add(float64(e.Power()))
	case *types.ScheduleEventJobsArrived:
		c.arrived.WithLabelValues(o.scenario, o.policy).Add(float64(len(e.JobIDs())))
	case *types.ScheduleEventJobLeft:
		r := e.Record()
		if r.Finished {
			c.left.WithLabelValues(o.scenario, o.policy, "true").Inc()
			c.turnaround.WithLabelValues(o.scenario, o.policy).Observe(float64(r.End - r.Arrival))
			return
		}
		c.left.WithLabelValues(o.scenario, o.policy, "false").Inc()
		c.preemptions.WithLabelValues(o.scenario, o.policy).Inc()
	case *types.ScheduleEventDeadlineMiss:
		c.missed.WithLabelValues(o.scenario, o.policy).Inc()
	case *types.ScheduleEventRunHalted:
		c.halted.WithLabelValues(o.scenario, o.policy, e.Reason()).Inc()
	}
}
