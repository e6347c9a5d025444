package simulator

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/iscas-system/powersched/schedulers/types"
)

//go:generate mockgen -source=logger.go -package=simulator -destination=logger_mock.go

// RecordSink receives one record every time a job leaves a server.
type RecordSink interface {
	Record(record types.Record)
}

type RecordSinkFunc func(record types.Record)

func (f RecordSinkFunc) Record(record types.Record) {
	f(record)
}

var DiscardSink RecordSink = RecordSinkFunc(func(types.Record) {})

// RecordBuffer keeps every record in emission order.
type RecordBuffer struct {
	records []types.Record
}

func NewRecordBuffer() *RecordBuffer {
	return &RecordBuffer{records: make([]types.Record, 0)}
}

func (b *RecordBuffer) Record(record types.Record) {
	b.records = append(b.records, record)
}

func (b *RecordBuffer) Records() []types.Record {
	return b.records
}

// Finished filters the records of completed instances.
func (b *RecordBuffer) Finished() []types.Record {
	res := make([]types.Record, 0, len(b.records))
	for _, r := range b.records {
		if r.Finished {
			res = append(res, r)
		}
	}
	return res
}

const resultsHeader = "#jobID serverID starting_time ending_time frequency_used"

// WriteResults writes one line per record, ordered by job id. Records of the same job keep their
// emission order.
func WriteResults(w io.Writer, records []types.Record) error {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b types.Record) bool {
		return a.JobID < b.JobID
	})
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, resultsHeader); err != nil {
		return errors.WithStack(err)
	}
	for _, r := range sorted {
		if _, err := fmt.Fprintf(bw, "%d %s %d %d %d\n", r.JobID, r.ServerID, r.Start, r.End, r.Frequency); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(bw.Flush())
}

func WriteResultsFile(path string, records []types.Record) error {
	fp, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create results file %s", path)
	}
	defer fp.Close()
	return errors.WithMessagef(WriteResults(fp, records), "write results file %s", path)
}

// WritePowerTrace writes the power drawn during every tick, one "tick power" line each.
func WritePowerTrace(w io.Writer, history []types.Power) error {
	bw := bufio.NewWriter(w)
	for tick, p := range history {
		if _, err := fmt.Fprintf(bw, "%d %.1f\n", tick, float64(p)); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(bw.Flush())
}

func WritePowerTraceFile(path string, history []types.Power) error {
	fp, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create power trace file %s", path)
	}
	defer fp.Close()
	return errors.WithMessagef(WritePowerTrace(fp, history), "write power trace file %s", path)
}
