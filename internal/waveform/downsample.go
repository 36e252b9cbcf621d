package waveform

import "github.com/trifetch/trifetch/internal/model"

// Downsample derives a display series from a full-resolution trace by simple
// stride selection: every factor-th sample per channel, no averaging or
// filtering. The time axis carries each retained sample's original position,
// t[k] = k*factor/rate, and the event-start offset is rescaled with the same
// integer division so the marker stays aligned with the decimated series.
//
// A factor of 1 or less returns the trace unchanged. Pure function of its
// inputs: identical arguments always produce identical output.
func Downsample(t Trace, factor, startSample int) model.DisplaySeries {
	if factor < 1 {
		factor = 1
	}

	n := t.Len()
	channels := t.Channels()
	count := (n + factor - 1) / factor

	amplitudes := make([][]float64, 0, count)
	times := make([]float64, 0, count)
	for k := 0; k < count; k++ {
		i := k * factor
		row := make([]float64, channels)
		for c := 0; c < channels; c++ {
			row[c] = t.At(i, c)
		}
		amplitudes = append(amplitudes, row)
		times = append(times, float64(i)/float64(t.SampleRate()))
	}

	return model.DisplaySeries{
		Amplitudes:  amplitudes,
		TimeSeconds: times,
		Factor:      factor,
		StartIndex:  startSample / factor,
	}
}
