package waveform

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/trifetch/trifetch/internal/common"
)

// Segment is one raw recording chunk: SegmentSamples rows of Channels
// amplitudes.
type Segment [][]float64

// ReadSegment parses one raw segment from r. Each line holds one sample as
// comma-separated amplitudes, one value per channel. The segment must contain
// exactly spec.SegmentSamples rows of spec.Channels values.
func ReadSegment(r io.Reader, spec Spec) (Segment, error) {
	rows := make([][]float64, 0, spec.SegmentSamples)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != spec.Channels {
			return nil, fmt.Errorf("%w: row %d has %d channels, want %d",
				common.ErrShapeMismatch, len(rows), len(fields), spec.Channels)
		}

		row := make([]float64, len(fields))
		for c, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d channel %d: %v",
					common.ErrShapeMismatch, len(rows), c, err)
			}
			row[c] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segment: %w", err)
	}

	if len(rows) != spec.SegmentSamples {
		return nil, fmt.Errorf("%w: segment has %d samples, want %d",
			common.ErrShapeMismatch, len(rows), spec.SegmentSamples)
	}

	return rows, nil
}

// Assemble concatenates an event's raw segments, in the order given, into one
// continuous trace. The order is temporal and must be preserved by the caller.
// It fails with common.ErrMissingSegment when the segment count is wrong and
// common.ErrShapeMismatch when any segment's dimensions disagree with spec.
func Assemble(segments []Segment, spec Spec) (Trace, error) {
	if len(segments) != spec.SegmentCount {
		return Trace{}, fmt.Errorf("%w: found %d segments, want %d",
			common.ErrMissingSegment, len(segments), spec.SegmentCount)
	}

	data := make([][]float64, 0, spec.TotalSamples())
	for i, seg := range segments {
		if len(seg) != spec.SegmentSamples {
			return Trace{}, fmt.Errorf("%w: segment %d has %d samples, want %d",
				common.ErrShapeMismatch, i, len(seg), spec.SegmentSamples)
		}
		for r, row := range seg {
			if len(row) != spec.Channels {
				return Trace{}, fmt.Errorf("%w: segment %d row %d has %d channels, want %d",
					common.ErrShapeMismatch, i, r, len(row), spec.Channels)
			}
		}
		data = append(data, seg...)
	}

	return NewTrace(data, spec.SampleRate), nil
}
