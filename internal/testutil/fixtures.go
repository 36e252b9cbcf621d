package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trifetch/trifetch/internal/waveform"
)

// MakeSegment generates a deterministic synthetic segment: each channel is a
// phase-shifted sine with a per-segment offset, so concatenation order and
// channel identity are both observable in the values.
func MakeSegment(spec waveform.Spec, index int) waveform.Segment {
	seg := make(waveform.Segment, spec.SegmentSamples)
	for i := range seg {
		row := make([]float64, spec.Channels)
		for c := range row {
			phase := float64(index*spec.SegmentSamples+i) / float64(spec.SampleRate)
			row[c] = math.Round(1000 * math.Sin(2*math.Pi*(phase+float64(c)/4)))
		}
		seg[i] = row
	}
	return seg
}

// MakeTrace assembles spec.SegmentCount synthetic segments into a trace.
func MakeTrace(t *testing.T, spec waveform.Spec) waveform.Trace {
	t.Helper()

	segments := make([]waveform.Segment, spec.SegmentCount)
	for i := range segments {
		segments[i] = MakeSegment(spec, i)
	}

	trace, err := waveform.Assemble(segments, spec)
	if err != nil {
		t.Fatalf("failed to assemble synthetic trace: %v", err)
	}
	return trace
}

// WriteRawEvent lays out one raw event directory under root: numbered
// segment .txt files plus an event metadata JSON record, mirroring the
// dataset layout the preprocessing batch consumes.
func WriteRawEvent(t *testing.T, root, eventID string, spec waveform.Spec, metadata string) string {
	t.Helper()

	dir := filepath.Join(root, eventID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("failed to create event dir: %v", err)
	}

	for s := 0; s < spec.SegmentCount; s++ {
		seg := MakeSegment(spec, s)
		var b strings.Builder
		for _, row := range seg {
			for c, v := range row {
				if c > 0 {
					b.WriteByte(',')
				}
				fmt.Fprintf(&b, "%d", int(v))
			}
			b.WriteByte('\n')
		}
		name := filepath.Join(dir, fmt.Sprintf("segment_%02d.txt", s))
		if err := os.WriteFile(name, []byte(b.String()), 0o600); err != nil {
			t.Fatalf("failed to write segment file: %v", err)
		}
	}

	metaPath := filepath.Join(dir, fmt.Sprintf("event_%s.json", eventID))
	if err := os.WriteFile(metaPath, []byte(metadata), 0o600); err != nil {
		t.Fatalf("failed to write metadata file: %v", err)
	}

	return metaPath
}
