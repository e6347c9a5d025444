package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/iscas-system/powersched/schedulers/types"
	"github.com/iscas-system/powersched/simulator"
	"github.com/iscas-system/powersched/util"
)

type Reports struct {
	RunID    string             `json:"run_id"`
	CaseName string             `json:"case_name"`
	Reports  map[string]*Report `json:"reports"`
}

type Report struct {
	SchedulerName string         `json:"scheduler_name"`
	ClusterConfig *ClusterConfig `json:"cluster_config"`
	Execution     *Execution     `json:"execution"`
	Jobs          []*Job         `json:"jobs"`
}

type ClusterConfig struct {
	Servers   []*Server `json:"servers"`
	PowerCap  float64   `json:"power_cap"`
	EnergyCap float64   `json:"energy_cap"`
}

type Server struct {
	ID          string  `json:"id"`
	Frequencies []int   `json:"frequencies"`
	MaxPower    float64 `json:"max_power"`
}

type Job struct {
	ID              int                  `json:"id"`
	Arrival         int                  `json:"arrival"`
	FinishedTime    int                  `json:"finished_time"`
	Turnaround      int                  `json:"turnaround"`
	Finished        bool                 `json:"finished"`
	ExecutionRanges []*JobExecutionRange `json:"execution_ranges"`
}

type JobExecutionRange struct {
	Server    string `json:"server"`
	StartTime int    `json:"start_time"`
	End       int    `json:"end"`
	Runtime   int    `json:"runtime"`
	Frequency int    `json:"frequency"`
}

type Execution struct {
	Admitted                      int         `json:"admitted"`
	Fulfilled                     int         `json:"fulfilled"`
	Missed                        int         `json:"missed"`
	EnergyConsumed                float64     `json:"energy_consumed"`
	PeakPower                     float64     `json:"peak_power"`
	Makespan                      int         `json:"makespan"`
	Ticks                         int         `json:"ticks"`
	Halt                          string      `json:"halt"`
	Preemptions                   int         `json:"preemptions"`
	AverageResponseTicks          float64     `json:"average_response_ticks"`
	AverageTurnaroundTicks        float64     `json:"average_turnaround_ticks"`
	DoScheduleCount               int         `json:"do_schedule_count"`
	AverageDoScheduleDurationUs   int64       `json:"average_do_schedule_duration_us"`
	MaxDoScheduleDurationUs       int64       `json:"max_do_schedule_duration_us"`
	SchedulerExecutionRecordExtra interface{} `json:"scheduler_execution_record_extra"`
}

// SimulationMetaConfig describes the scenario a set of reports belongs to.
type SimulationMetaConfig struct {
	CaseFileName string
	Servers      []*simulator.Server
	PowerCap     types.Power
	EnergyCap    types.Energy
}

func transformClusterConfig(config *SimulationMetaConfig) *ClusterConfig {
	servers := make([]*Server, 0, len(config.Servers))
	for _, s := range config.Servers {
		freqs := make([]int, 0, len(s.Frequencies()))
		for _, f := range s.Frequencies() {
			freqs = append(freqs, int(f))
		}
		servers = append(servers, &Server{
			ID:          string(s.ID()),
			Frequencies: freqs,
			MaxPower:    float64(s.MaxPower()),
		})
	}
	return &ClusterConfig{
		Servers:   servers,
		PowerCap:  float64(config.PowerCap),
		EnergyCap: float64(config.EnergyCap),
	}
}

// SaveSimulationReport writes every report of one scenario into a single json file under folder
// and returns its path.
func SaveSimulationReport(folder string, policy2Report map[string]*Report, config *SimulationMetaConfig) (string, error) {
	caseName := strings.TrimSuffix(filepath.Base(config.CaseFileName), filepath.Ext(config.CaseFileName))
	reports := &Reports{
		RunID:    uuid.NewString(),
		CaseName: caseName,
		Reports:  make(map[string]*Report, len(policy2Report)),
	}
	clusterConfig := transformClusterConfig(config)
	for policy, r := range policy2Report {
		r.ClusterConfig = clusterConfig
		reports.Reports[policy] = r
	}
	filePath := filepath.Join(folder, generateFileName(reports))
	bs, err := json.MarshalIndent(reports, "", "\t")
	if err != nil {
		return "", errors.Wrap(err, "marshal report")
	}
	if err := os.WriteFile(filePath, bs, 0644); err != nil {
		return "", errors.Wrapf(err, "write report %s", filePath)
	}
	log.WithFields(log.Fields{"case": caseName, "path": filePath}).Info("report generated")
	return filePath, nil
}

func generateFileName(reports *Reports) string {
	datetime := time.Now().Format("01-02_15-04-05")
	policies := maps.Keys(reports.Reports)
	slices.Sort(policies)
	return fmt.Sprintf("%s_%s_%s_%s.json",
		util.StringSliceJoinWith(policies, "_"),
		reports.CaseName,
		datetime,
		reports.RunID[:8])
}

func GenerateSingleSimulationReport(summary *simulator.Summary, schedulerRecord *types.SchedulerRecord, records []types.Record) *Report {
	calls := doScheduleDurations(schedulerRecord)
	execution := &Execution{
		Admitted:                      summary.Admitted,
		Fulfilled:                     summary.Fulfilled,
		Missed:                        summary.Missed,
		EnergyConsumed:                float64(summary.Energy),
		PeakPower:                     float64(summary.PeakPower),
		Makespan:                      int(summary.Makespan),
		Ticks:                         int(summary.Ticks),
		Halt:                          summary.HaltReason.String(),
		Preemptions:                   summary.Preemptions,
		AverageResponseTicks:          summary.AvgResponse,
		AverageTurnaroundTicks:        summary.AvgTurnaround,
		DoScheduleCount:               len(calls),
		AverageDoScheduleDurationUs:   util.AvgDuration(calls...).Microseconds(),
		MaxDoScheduleDurationUs:       util.MaxDuration(calls...).Microseconds(),
		SchedulerExecutionRecordExtra: schedulerRecord.Extra,
	}
	return &Report{
		SchedulerName: summary.Policy,
		Execution:     execution,
		Jobs:          packJobs(records),
	}
}
