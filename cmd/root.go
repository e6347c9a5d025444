package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-zglob"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iscas-system/powersched/metrics"
	"github.com/iscas-system/powersched/schedulers"
	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
)

// allPolicies runs every policy on each scenario.
const allPolicies = "all"

type params struct {
	policy        string
	scenarios     string
	out           string
	parquet       bool
	metricsFile   string
	reportDir     string
	logLevel      string
	quantum       int
	deadlineCheck string
	maxTicks      int
}

// RootCmd is the command called from the main func.
func RootCmd() *cobra.Command {
	p := &params{}
	cmd := &cobra.Command{
		Use:   "powersched [policy] [scenario-glob]",
		Short: "Simulate job scheduling on frequency scalable servers under power and energy caps.",
		Long: `powersched replays the workload of each scenario file tick by tick under a scheduling policy.

A scenario file holds key = value pairs:
job_file = "jobs.txt"
server_file = "servers.txt"
dependency_file = "deps.txt"
power_cap = 400
energy_cap = 10000
repeat = 2

Policies: fifo, fifo_capped, rr, edf, edf_capped, rms, wavefront, cpm, or all.`,
		Args: cobra.MaximumNArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(p.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			if len(args) > 0 {
				p.policy = args[0]
			}
			if len(args) > 1 {
				p.scenarios = args[1]
			}
			if p.scenarios == "" {
				return errors.New("no scenario glob given")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulations(cmd, p)
		},
	}
	cmd.Flags().StringVar(&p.policy, "policy", "", "Scheduling policy, overriding the policy of each scenario. Use all to run every policy.")
	cmd.Flags().StringVar(&p.scenarios, "scenarios", "", "Glob pattern of the scenario files to simulate, ** matches nested directories.")
	cmd.Flags().StringVar(&p.out, "out", ".", "Directory the results and power trace files are written to.")
	cmd.Flags().BoolVar(&p.parquet, "parquet", false, "Also write the records of each run as a parquet file.")
	cmd.Flags().StringVar(&p.metricsFile, "metrics-file", "", "Write prometheus metrics of all runs to this textfile.")
	cmd.Flags().StringVar(&p.reportDir, "report-dir", "", "Write a json report per scenario to this directory.")
	cmd.Flags().StringVar(&p.logLevel, "log-level", "info", "Log everything at this level and above (error|warn|info|debug).")
	cmd.Flags().IntVar(&p.quantum, "quantum", 0, "Round robin quantum in ticks, overriding the scenarios.")
	cmd.Flags().StringVar(&p.deadlineCheck, "deadline-check", "", "Deadline check mode, exact or passed, overriding the scenarios.")
	cmd.Flags().IntVar(&p.maxTicks, "max-ticks", 0, "Tick horizon, overriding the scenarios.")
	return cmd
}

func runSimulations(cmd *cobra.Command, p *params) error {
	overrides, err := p.overrides()
	if err != nil {
		return err
	}
	files, err := zglob.Glob(p.scenarios)
	if err != nil {
		return errors.Wrapf(err, "expand scenario glob %s", p.scenarios)
	}
	if len(files) == 0 {
		return errors.Errorf("no scenario file matches %s", p.scenarios)
	}
	for _, dir := range []string{p.out, p.reportDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WithStack(err)
		}
	}

	var collector *metrics.Collector
	if p.metricsFile != "" {
		collector = metrics.NewCollector()
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		g.Go(func() error {
			return runScenario(ctx, file, p, overrides, collector)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if collector != nil {
		return collector.WriteToTextfile(p.metricsFile)
	}
	return nil
}

// overrides turns the flags set on the command line into options applied after each scenario's own.
func (p *params) overrides() ([]simulator.SetOption, error) {
	res := make([]simulator.SetOption, 0)
	if p.quantum < 0 || p.maxTicks < 0 {
		return nil, errors.New("quantum and max-ticks must not be negative")
	}
	if p.quantum > 0 {
		res = append(res, simulator.WithOptionQuantum(types.Duration(p.quantum)))
	}
	if p.maxTicks > 0 {
		res = append(res, simulator.WithOptionMaxTicks(types.Time(p.maxTicks)))
	}
	if p.deadlineCheck != "" {
		check, err := simulator.ParseDeadlineCheck(p.deadlineCheck)
		if err != nil {
			return nil, err
		}
		res = append(res, simulator.WithOptionDeadlineCheck(check))
	}
	return res, nil
}

func (p *params) policies(sc *simulator.Scenario) ([]types.PolicyKind, error) {
	switch p.policy {
	case "":
		return []types.PolicyKind{sc.Policy}, nil
	case allPolicies:
		return types.PolicyKinds(), nil
	}
	kind, err := types.ParsePolicyKind(p.policy)
	if err != nil {
		return nil, err
	}
	return []types.PolicyKind{kind}, nil
}

func runScenario(ctx context.Context, file string, p *params, overrides []simulator.SetOption, collector *metrics.Collector) error {
	sc, err := simulator.ScenarioFromFilePath(file)
	if err != nil {
		return err
	}
	workload, err := sc.Load()
	if err != nil {
		return err
	}
	kinds, err := p.policies(sc)
	if err != nil {
		return err
	}

	reports := make(map[string]*metrics.Report, len(kinds))
	var servers []*simulator.Server
	for _, kind := range kinds {
		sim, report, err := runPolicy(ctx, sc, workload, kind, p, overrides, collector)
		if err != nil {
			return errors.WithMessagef(err, "scenario %s policy %s", sc.Name, kind)
		}
		reports[kind.String()] = report
		servers = sim.Cluster().Servers()
	}
	if p.reportDir == "" {
		return nil
	}
	_, err = metrics.SaveSimulationReport(p.reportDir, reports, &metrics.SimulationMetaConfig{
		CaseFileName: file,
		Servers:      servers,
		PowerCap:     sc.PowerCap,
		EnergyCap:    sc.EnergyCap,
	})
	return err
}

func runPolicy(ctx context.Context, sc *simulator.Scenario, workload *simulator.Workload, kind types.PolicyKind, p *params,
	overrides []simulator.SetOption, collector *metrics.Collector) (sim *simulator.Simulator, report *metrics.Report, err error) {
	scheduler, err := schedulers.New(kind)
	if err != nil {
		return nil, nil, err
	}
	logger := log.WithFields(log.Fields{"run": uuid.NewString(), "scenario": sc.Name})
	if kind.DependencyAware() && len(workload.Dependencies) == 0 {
		logger.WithField("policy", kind.String()).Warn("no dependencies given, every job is independent")
	}
	records := simulator.NewRecordBuffer()
	setOpts := append(sc.Options(),
		simulator.WithOptionDependencies(workload.Dependencies),
		simulator.WithOptionRecordSink(records),
		simulator.WithOptionLogger(logger))
	setOpts = append(setOpts, overrides...)
	if collector != nil {
		setOpts = append(setOpts, simulator.WithOptionObserver(collector.Observer(sc.Name, kind.String())))
	}
	prefix := filepath.Join(p.out, fmt.Sprintf("%s_%s", sc.Name, kind))
	if p.parquet {
		sink, sinkErr := metrics.NewParquetSink(prefix+".parquet", kind.String())
		if sinkErr != nil {
			return nil, nil, sinkErr
		}
		defer func() {
			if closeErr := sink.Close(); closeErr != nil {
				err = multierror.Append(err, closeErr)
			}
		}()
		setOpts = append(setOpts, simulator.WithOptionRecordSink(sink))
	}

	sim = simulator.NewSimulator(scheduler, workload.Jobs, workload.Servers, setOpts...)
	summary, err := sim.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := simulator.WriteResultsFile(prefix+"_results.txt", records.Records()); err != nil {
		return nil, nil, err
	}
	if err := simulator.WritePowerTraceFile(prefix+"_power.txt", sim.Cluster().PowerHistory()); err != nil {
		return nil, nil, err
	}
	logger.WithFields(log.Fields{
		"policy":      kind.String(),
		"admitted":    summary.Admitted,
		"fulfilled":   summary.Fulfilled,
		"missed":      summary.Missed,
		"energy":      summary.Energy,
		"peak_power":  summary.PeakPower,
		"makespan":    summary.Makespan,
		"preemptions": summary.Preemptions,
		"halt":        summary.HaltReason,
	}).Info("run summary")
	return sim, metrics.GenerateSingleSimulationReport(summary, scheduler.Record(), records.Records()), nil
}
