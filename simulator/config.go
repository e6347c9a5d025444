package simulator

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/iscas-system/powersched/schedulers/types"
)

// DeadlineCheck selects how a queued job is found to have missed its deadline.
type DeadlineCheck int

const (
	// DeadlineExact counts a miss when the deadline equals the current tick.
	DeadlineExact = DeadlineCheck(0)
	// DeadlinePassed counts a miss once the deadline is at or before the current tick.
	DeadlinePassed = DeadlineCheck(1)
)

func (d DeadlineCheck) String() string {
	switch d {
	case DeadlineExact:
		return "exact"
	case DeadlinePassed:
		return "passed"
	default:
		return fmt.Sprintf("DeadlineCheck(%d)", int(d))
	}
}

func ParseDeadlineCheck(s string) (DeadlineCheck, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return DeadlineExact, nil
	case "passed":
		return DeadlinePassed, nil
	}
	return DeadlineExact, fmt.Errorf("unknown deadline check %q", s)
}

const (
	DefaultQuantum        = types.Duration(2)
	DefaultSpeedReference = DefaultMaxPower
)

type Options struct {
	powerCap       types.Power
	energyCap      types.Energy
	repeat         int
	quantum        types.Duration
	deadlineCheck  DeadlineCheck
	maxTicks       types.Time
	speedReference types.Power
	dependencies   []types.Dependency
	sinks          []RecordSink
	observers      []Observer
	logger         *log.Entry
}

var defaultOptions = &Options{
	powerCap:       0,
	energyCap:      0,
	repeat:         0,
	quantum:        DefaultQuantum,
	deadlineCheck:  DeadlineExact,
	maxTicks:       0,
	speedReference: DefaultSpeedReference,
}

type SetOption func(options *Options)

// WithOptionPowerCap bounds the summed draw of all busy servers. Zero is unlimited.
func WithOptionPowerCap(powerCap types.Power) SetOption {
	return func(options *Options) {
		options.powerCap = powerCap
	}
}

// WithOptionEnergyCap bounds the energy of the whole run. Zero is unlimited.
func WithOptionEnergyCap(energyCap types.Energy) SetOption {
	return func(options *Options) {
		options.energyCap = energyCap
	}
}

// WithOptionRepeat bounds how many periodic copies each periodic job produces after its first instance.
func WithOptionRepeat(repeat int) SetOption {
	return func(options *Options) {
		options.repeat = repeat
	}
}

func WithOptionQuantum(quantum types.Duration) SetOption {
	return func(options *Options) {
		options.quantum = quantum
	}
}

func WithOptionDeadlineCheck(check DeadlineCheck) SetOption {
	return func(options *Options) {
		options.deadlineCheck = check
	}
}

// WithOptionMaxTicks halts a run that has not drained after maxTicks. Zero derives a horizon from the workload.
func WithOptionMaxTicks(maxTicks types.Time) SetOption {
	return func(options *Options) {
		options.maxTicks = maxTicks
	}
}

// WithOptionSpeedReference sets the power the capped EDF policy divides by when it ranks servers by speed.
func WithOptionSpeedReference(reference types.Power) SetOption {
	return func(options *Options) {
		options.speedReference = reference
	}
}

func WithOptionDependencies(dependencies []types.Dependency) SetOption {
	return func(options *Options) {
		options.dependencies = dependencies
	}
}

// WithOptionRecordSink adds a consumer of the records emitted when jobs leave servers.
func WithOptionRecordSink(sink RecordSink) SetOption {
	return func(options *Options) {
		options.sinks = append(options.sinks, sink)
	}
}

func WithOptionObserver(observer Observer) SetOption {
	return func(options *Options) {
		options.observers = append(options.observers, observer)
	}
}

func WithOptionLogger(logger *log.Entry) SetOption {
	return func(options *Options) {
		options.logger = logger
	}
}

func (o *Options) Quantum() types.Duration {
	return o.quantum
}

func (o *Options) SpeedReference() types.Power {
	return o.speedReference
}

func (o *Options) Repeat() int {
	return o.repeat
}
