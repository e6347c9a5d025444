package simulator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"github.com/iscas-system/powersched/schedulers/dag"
	"github.com/iscas-system/powersched/schedulers/types"
)

// Scenario is one test file: where the workload lives and how the run is configured.
type Scenario struct {
	Name string `mapstructure:"name"`
	// Dir is the directory of the scenario file, relative input paths resolve against it.
	Dir string `mapstructure:"-"`

	JobFile        string `mapstructure:"job_file"`
	ServerFile     string `mapstructure:"server_file"`
	DependencyFile string `mapstructure:"dependency_file"`

	PowerCap       types.Power      `mapstructure:"power_cap"`
	EnergyCap      types.Energy     `mapstructure:"energy_cap"`
	Repeat         int              `mapstructure:"repeat"`
	Policy         types.PolicyKind `mapstructure:"policy"`
	Quantum        types.Duration   `mapstructure:"quantum"`
	DeadlineCheck  DeadlineCheck    `mapstructure:"deadline_check"`
	MaxTicks       types.Time       `mapstructure:"max_ticks"`
	SpeedReference types.Power      `mapstructure:"speed_reference"`
	MaxPower       types.Power      `mapstructure:"max_power"`
}

// Workload is the parsed input of a scenario.
type Workload struct {
	Jobs         []JobSpec
	Servers      []ServerSpec
	Dependencies []types.Dependency
}

func (w *Workload) JobIDs() []types.JobID {
	ids := make([]types.JobID, 0, len(w.Jobs))
	for _, j := range w.Jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

var ScenarioDecodeHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		PolicyKindDecodeHook(),
		DeadlineCheckDecodeHook(),
	)),
}

func PolicyKindDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(types.FIFO) {
			return data, nil
		}
		return types.ParsePolicyKind(data.(string))
	}
}

func DeadlineCheckDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(DeadlineExact) {
			return data, nil
		}
		return ParseDeadlineCheck(data.(string))
	}
}

// ScenarioFromFilePath reads a scenario file. Files without a known config extension are read as TOML,
// which covers the key = "value" test files.
func ScenarioFromFilePath(filePath string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(filePath)
	if ext := strings.TrimPrefix(filepath.Ext(filePath), "."); !slices.Contains(viper.SupportedExts, ext) {
		v.SetConfigType("toml")
	}
	v.SetDefault("policy", types.FIFO.String())
	v.SetDefault("quantum", int(DefaultQuantum))
	v.SetDefault("deadline_check", DeadlineExact.String())
	v.SetDefault("speed_reference", float64(DefaultSpeedReference))
	v.SetDefault("max_power", float64(DefaultMaxPower))
	if err := v.ReadInConfig(); err != nil {
		err = errors.WithMessagef(err, "failed to read in scenario %s", filePath)
		return nil, errors.WithStack(err)
	}
	sc := &Scenario{}
	if err := v.Unmarshal(sc, ScenarioDecodeHooks...); err != nil {
		err = errors.WithMessagef(err, "failed to unmarshal scenario %s", filePath)
		return nil, errors.WithStack(err)
	}
	if sc.Name == "" {
		fileName := filepath.Base(filePath)
		sc.Name = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}
	sc.Dir = filepath.Dir(filePath)
	if err := sc.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid scenario %s", filePath)
	}
	return sc, nil
}

func (sc *Scenario) Validate() error {
	var result *multierror.Error
	if sc.JobFile == "" {
		result = multierror.Append(result, errors.New("job_file is required"))
	}
	if sc.ServerFile == "" {
		result = multierror.Append(result, errors.New("server_file is required"))
	}
	if sc.PowerCap < 0 {
		result = multierror.Append(result, errors.Errorf("power_cap %v is negative", sc.PowerCap))
	}
	if sc.EnergyCap < 0 {
		result = multierror.Append(result, errors.Errorf("energy_cap %v is negative", sc.EnergyCap))
	}
	if sc.Repeat < 0 {
		result = multierror.Append(result, errors.Errorf("repeat %d is negative", sc.Repeat))
	}
	if sc.Quantum <= 0 {
		result = multierror.Append(result, errors.Errorf("quantum %d must be positive", sc.Quantum))
	}
	if sc.MaxTicks < 0 {
		result = multierror.Append(result, errors.Errorf("max_ticks %d is negative", sc.MaxTicks))
	}
	if sc.SpeedReference <= 0 {
		result = multierror.Append(result, errors.Errorf("speed_reference %v must be positive", sc.SpeedReference))
	}
	return result.ErrorOrNil()
}

func (sc *Scenario) resolve(path string) string {
	if filepath.IsAbs(path) || sc.Dir == "" {
		return path
	}
	return filepath.Join(sc.Dir, path)
}

// Load parses the job, server and dependency files of the scenario and checks them against each other.
func (sc *Scenario) Load() (*Workload, error) {
	w := &Workload{}
	var err error
	if w.Jobs, err = parseFile(sc.resolve(sc.JobFile), ParseJobs); err != nil {
		return nil, err
	}
	if w.Servers, err = parseFile(sc.resolve(sc.ServerFile), func(r io.Reader) ([]ServerSpec, error) {
		return ParseServers(r, sc.MaxPower)
	}); err != nil {
		return nil, err
	}
	if sc.DependencyFile != "" {
		if w.Dependencies, err = parseFile(sc.resolve(sc.DependencyFile), ParseDependencies); err != nil {
			return nil, err
		}
	}
	var result *multierror.Error
	if len(w.Servers) == 0 {
		result = multierror.Append(result, errors.Errorf("server file %s lists no server", sc.ServerFile))
	}
	if err := dag.Validate(w.JobIDs(), w.Dependencies); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, errors.WithMessagef(err, "scenario %s", sc.Name)
	}
	return w, nil
}

// Options turns the run configuration of the scenario into simulator options.
func (sc *Scenario) Options() []SetOption {
	return []SetOption{
		WithOptionPowerCap(sc.PowerCap),
		WithOptionEnergyCap(sc.EnergyCap),
		WithOptionRepeat(sc.Repeat),
		WithOptionQuantum(sc.Quantum),
		WithOptionDeadlineCheck(sc.DeadlineCheck),
		WithOptionMaxTicks(sc.MaxTicks),
		WithOptionSpeedReference(sc.SpeedReference),
	}
}

func parseFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer fp.Close()
	res, err := parse(fp)
	if err != nil {
		return nil, errors.WithMessagef(err, "parse %s", path)
	}
	return res, nil
}

// scanLines calls f with every line that is neither blank nor a # comment.
func scanLines(r io.Reader, f func(lineNo int, line string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := f(lineNo, line); err != nil {
			return err
		}
	}
	return errors.WithStack(scanner.Err())
}

// ParseJobs reads "id arrival duration deadline period" lines.
func ParseJobs(r io.Reader) ([]JobSpec, error) {
	jobs := make([]JobSpec, 0)
	seen := make(map[types.JobID]bool)
	err := scanLines(r, func(lineNo int, line string) error {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return errors.Errorf("line %d: want 5 fields id arrival duration deadline period, got %q", lineNo, line)
		}
		values := make([]int, 5)
		for i, field := range fields[:5] {
			v, err := strconv.Atoi(field)
			if err != nil {
				return errors.Wrapf(err, "line %d", lineNo)
			}
			values[i] = v
		}
		spec := NewJobSpec(types.JobID(values[0]), types.Time(values[1]),
			types.Duration(values[2]), types.Duration(values[3]), types.Duration(values[4]))
		if err := validateJobSpec(spec); err != nil {
			return errors.WithMessagef(err, "line %d", lineNo)
		}
		if seen[spec.ID] {
			return errors.Errorf("line %d: duplicate job id %d", lineNo, spec.ID)
		}
		seen[spec.ID] = true
		jobs = append(jobs, spec)
		return nil
	})
	return jobs, err
}

func validateJobSpec(spec JobSpec) error {
	switch {
	case spec.Arrival < 0:
		return fmt.Errorf("job %d: negative arrival %d", spec.ID, spec.Arrival)
	case spec.Duration <= 0:
		return fmt.Errorf("job %d: duration %d must be positive", spec.ID, spec.Duration)
	case spec.Deadline < 0:
		return fmt.Errorf("job %d: negative deadline %d", spec.ID, spec.Deadline)
	case spec.Period < 0:
		return fmt.Errorf("job %d: negative period %d", spec.ID, spec.Period)
	}
	return nil
}

// ParseServers reads "id (f1 f2 ... fn)" lines. Every server gets maxPower as its rating.
func ParseServers(r io.Reader, maxPower types.Power) ([]ServerSpec, error) {
	servers := make([]ServerSpec, 0)
	err := scanLines(r, func(lineNo int, line string) error {
		lo, hi := strings.Index(line, "("), strings.LastIndex(line, ")")
		if lo == -1 || hi < lo {
			return errors.Errorf("line %d: want id (f1 f2 ... fn), got %q", lineNo, line)
		}
		id := strings.TrimSpace(line[:lo])
		if id == "" {
			return errors.Errorf("line %d: missing server id", lineNo)
		}
		freqFields := strings.Fields(line[lo+1 : hi])
		if len(freqFields) == 0 {
			return errors.Errorf("line %d: server %s has no frequency", lineNo, id)
		}
		freqs := make([]types.Frequency, 0, len(freqFields))
		for _, field := range freqFields {
			f, err := strconv.Atoi(field)
			if err != nil {
				return errors.Wrapf(err, "line %d", lineNo)
			}
			if f <= 0 {
				return errors.Errorf("line %d: server %s frequency %d must be positive", lineNo, id, f)
			}
			freqs = append(freqs, types.Frequency(f))
		}
		servers = append(servers, ServerSpec{ID: types.ServerID(id), Frequencies: freqs, MaxPower: maxPower})
		return nil
	})
	return servers, err
}

// ParseDependencies reads "a - b" lines, b depending on a. Lines without a dash are skipped.
func ParseDependencies(r io.Reader) ([]types.Dependency, error) {
	dependencies := make([]types.Dependency, 0)
	err := scanLines(r, func(lineNo int, line string) error {
		pair := strings.SplitN(line, "-", 2)
		if len(pair) != 2 {
			return nil
		}
		a, err := strconv.Atoi(strings.TrimSpace(pair[0]))
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
		b, err := strconv.Atoi(strings.TrimSpace(pair[1]))
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
		dependencies = append(dependencies, types.Dependency{Predecessor: types.JobID(a), Successor: types.JobID(b)})
		return nil
	})
	return dependencies, err
}
