// internal/diag/diag.go
// Package diag writes the pipeline's diagnostic rows as semicolon-separated
// CSV files, matching the reference log formats: a report log, a detailed
// per-frame BPM log, and per-window signal and spectrum dumps.
package diag

import (
	"fmt"
	"os"

	"github.com/2samgu2/heartbeat-android/internal/rppg"
)

// Recorder implements rppg.Tracer on top of a set of CSV files sharing a
// base path. Not safe for concurrent use; driven from the single-threaded
// frame path.
type Recorder struct {
	base     string
	bpm      *os.File
	detailed *os.File
}

// New opens the report and detailed logs under the given base path
// (<base>_bpm.csv and <base>_bpmDetailed.csv), writing one header row each.
func New(base string) (*Recorder, error) {
	bpm, err := os.Create(base + "_bpm.csv")
	if err != nil {
		return nil, fmt.Errorf("create bpm log: %w", err)
	}
	if _, err := bpm.WriteString("time;mean;min;max\n"); err != nil {
		bpm.Close()
		return nil, fmt.Errorf("write bpm header: %w", err)
	}

	detailed, err := os.Create(base + "_bpmDetailed.csv")
	if err != nil {
		bpm.Close()
		return nil, fmt.Errorf("create detailed log: %w", err)
	}
	if _, err := detailed.WriteString("time;bpm\n"); err != nil {
		bpm.Close()
		detailed.Close()
		return nil, fmt.Errorf("write detailed header: %w", err)
	}

	return &Recorder{base: base, bpm: bpm, detailed: detailed}, nil
}

// TraceReport appends one row to the report log.
func (r *Recorder) TraceReport(rep rppg.Report) {
	fmt.Fprintf(r.bpm, "%d;%v;%v;%v\n", rep.Timestamp, rep.Mean, rep.Min, rep.Max)
}

// TraceEstimate appends one row to the detailed log.
func (r *Recorder) TraceEstimate(e rppg.Estimate) {
	fmt.Fprintf(r.detailed, "%d;%v\n", e.Timestamp, e.BPM)
}

// TraceSignal dumps the filter stages of one window to
// <base>_signal_<time>.csv, one row per window position.
func (r *Recorder) TraceSignal(time int64, raw, denoised, detrended, smoothed []float64) {
	f, err := os.Create(fmt.Sprintf("%s_signal_%d.csv", r.base, time))
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprint(f, "g;g_den;g_detr;g_avg\n")
	for i := range raw {
		fmt.Fprintf(f, "%v;%v;%v;%v\n", raw[i], denoised[i], detrended[i], smoothed[i])
	}
}

// TraceSpectrum dumps the in-band power spectrum of one window to
// <base>_estimation_<time>.csv.
func (r *Recorder) TraceSpectrum(time int64, low, high int, mags []float64) {
	f, err := os.Create(fmt.Sprintf("%s_estimation_%d.csv", r.base, time))
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprint(f, "i;powerSpectrum\n")
	for i := low; i < high && i < len(mags); i++ {
		fmt.Fprintf(f, "%d;%v\n", i, mags[i])
	}
}

// Close flushes and closes the long-lived logs.
func (r *Recorder) Close() error {
	err1 := r.bpm.Close()
	err2 := r.detailed.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
