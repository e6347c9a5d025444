package metrics

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	parquetWriter "github.com/xitongsys/parquet-go/writer"

	"github.com/iscas-system/powersched/schedulers/types"
)

type RecordRow struct {
	Policy    string `parquet:"name=policy, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	JobID     int64  `parquet:"name=job_id, type=INT64"`
	ServerID  string `parquet:"name=server_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Arrival   int64  `parquet:"name=arrival, type=INT64"`
	Start     int64  `parquet:"name=start, type=INT64"`
	End       int64  `parquet:"name=end, type=INT64"`
	Frequency int32  `parquet:"name=frequency, type=INT32"`
	Period    int64  `parquet:"name=period, type=INT64"`
	Finished  bool   `parquet:"name=finished, type=BOOLEAN"`
}

// ParquetSink writes every record of a run as a row of a parquet file. Write errors are kept and
// returned by Close.
type ParquetSink struct {
	policy string
	file   *os.File
	writer *parquetWriter.ParquetWriter

	mu  sync.Mutex
	err error
}

func NewParquetSink(path string, policy string) (*ParquetSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create parquet file %s", path)
	}
	pw, err := parquetWriter.NewParquetWriterFromWriter(file, new(RecordRow), 1)
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "parquet writer for %s", path)
	}
	return &ParquetSink{
		policy: policy,
		file:   file,
		writer: pw,
	}, nil
}

func (p *ParquetSink) Record(record types.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	row := RecordRow{
		Policy:    p.policy,
		JobID:     int64(record.JobID),
		ServerID:  string(record.ServerID),
		Arrival:   int64(record.Arrival),
		Start:     int64(record.Start),
		End:       int64(record.End),
		Frequency: int32(record.Frequency),
		Period:    int64(record.Period),
		Finished:  record.Finished,
	}
	if err := p.writer.Write(row); err != nil {
		p.err = errors.Wrapf(err, "write record of job %d", record.JobID)
		log.WithError(p.err).Warn("parquet sink stopped")
	}
}

func (p *ParquetSink) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.writer.WriteStop(); err != nil && p.err == nil {
		p.err = errors.Wrap(err, "finish parquet file")
	}
	if err := p.file.Close(); err != nil && p.err == nil {
		p.err = errors.WithStack(err)
	}
	return p.err
}
