// Package waveform handles full-resolution ECG traces: assembling them from
// raw per-segment recordings, persisting them as binary arrays, and deriving
// decimated display series.
package waveform

import (
	"fmt"

	"github.com/trifetch/trifetch/internal/common"
)

// Spec describes the shape of the recorded data. It is threaded explicitly
// into every component that touches samples so that test and production
// configurations can coexist in one process.
type Spec struct {
	// SampleRate is the source sampling rate in samples per second.
	SampleRate int
	// SegmentCount is the number of raw segment files per event.
	SegmentCount int
	// SegmentSamples is the number of samples in each raw segment.
	SegmentSamples int
	// Channels is the number of leads recorded in parallel.
	Channels int
}

// DefaultSpec matches the observed dataset: three 6000-sample dual-lead
// segments at 200 Hz, 90 seconds per event.
func DefaultSpec() Spec {
	return Spec{
		SampleRate:     200,
		SegmentCount:   3,
		SegmentSamples: 6000,
		Channels:       2,
	}
}

// TotalSamples returns the per-channel length of an assembled trace.
func (s Spec) TotalSamples() int {
	return s.SegmentCount * s.SegmentSamples
}

// Duration returns the trace duration in seconds.
func (s Spec) Duration() float64 {
	return float64(s.TotalSamples()) / float64(s.SampleRate)
}

// Validate checks that every dimension is positive.
func (s Spec) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", common.ErrInvalidConfig, s.SampleRate)
	}
	if s.SegmentCount <= 0 {
		return fmt.Errorf("%w: segment count must be positive, got %d", common.ErrInvalidConfig, s.SegmentCount)
	}
	if s.SegmentSamples <= 0 {
		return fmt.Errorf("%w: segment samples must be positive, got %d", common.ErrInvalidConfig, s.SegmentSamples)
	}
	if s.Channels <= 0 {
		return fmt.Errorf("%w: channels must be positive, got %d", common.ErrInvalidConfig, s.Channels)
	}
	return nil
}
