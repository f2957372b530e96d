package sustain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/emissions.report/internal/fsutil"
)

// logHeader is the fixed column set of the per-vehicle log. Consumers
// (the analysis tooling, external notebooks) key on these names.
var logHeader = []string{
	"timestamp", "x", "y", "speed_m_s", "long_accel_m_s2", "jerk", "power_w",
	"dt_s", "cumulative_energy_j", "cumulative_co2_g", "regen_j", "eco_score",
}

// logRow is one sampled entry in a vehicle's log.
type logRow struct {
	Timestamp float64
	X, Y      float64
	SpeedMPS  float64
	LongAccel float64
	Jerk      float64
	PowerW    float64
	DtS       float64
	EnergyJ   float64
	CO2Grams  float64
	RegenJ    float64
	EcoScore  float64
}

// csvSink is the durable per-vehicle log sink: opened at tracker
// construction, flushed on every sampled row, released by close. It is
// a scoped resource; close is idempotent.
type csvSink struct {
	path   string
	file   io.WriteCloser
	w      *csv.Writer
	closed bool
}

// newCSVSink creates (or truncates) the log file and writes the header.
func newCSVSink(fs fsutil.FileSystem, path string) (*csvSink, error) {
	file, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log sink %s: %w", path, err)
	}

	s := &csvSink{path: path, file: file, w: csv.NewWriter(file)}
	if err := s.w.Write(logHeader); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write log header %s: %w", path, err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("flush log header %s: %w", path, err)
	}

	return s, nil
}

// writeRow appends one sampled row and flushes it to the sink.
func (s *csvSink) writeRow(r logRow) error {
	if s == nil || s.closed {
		return nil
	}

	record := []string{
		fmtFloat(r.Timestamp, 3),
		fmtFloat(r.X, 3),
		fmtFloat(r.Y, 3),
		fmtFloat(r.SpeedMPS, 3),
		fmtFloat(r.LongAccel, 3),
		fmtFloat(r.Jerk, 3),
		fmtFloat(r.PowerW, 3),
		fmtFloat(r.DtS, 4),
		fmtFloat(r.EnergyJ, 3),
		fmtFloat(r.CO2Grams, 3),
		fmtFloat(r.RegenJ, 3),
		fmtFloat(r.EcoScore, 2),
	}

	if err := s.w.Write(record); err != nil {
		return fmt.Errorf("write log row %s: %w", s.path, err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush log row %s: %w", s.path, err)
	}
	return nil
}

// close flushes and releases the sink. Safe to call more than once and
// on a nil sink.
func (s *csvSink) close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	s.w.Flush()
	flushErr := s.w.Error()
	closeErr := s.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func fmtFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
