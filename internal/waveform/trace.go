package waveform

// Trace is a full-resolution, immutable multi-channel waveform for one event.
// Samples are stored row-major: one row per sample, one column per channel.
type Trace struct {
	data       [][]float64
	sampleRate int
}

// NewTrace wraps amplitude rows and their sampling rate as a Trace. The rows
// are used as-is; callers must not mutate them afterwards.
func NewTrace(data [][]float64, sampleRate int) Trace {
	return Trace{data: data, sampleRate: sampleRate}
}

// Len returns the per-channel sample count.
func (t Trace) Len() int {
	return len(t.data)
}

// Channels returns the number of leads.
func (t Trace) Channels() int {
	if len(t.data) == 0 {
		return 0
	}
	return len(t.data[0])
}

// SampleRate returns the source sampling rate in samples per second.
func (t Trace) SampleRate() int {
	return t.sampleRate
}

// At returns the amplitude of the given sample on the given channel.
func (t Trace) At(sample, channel int) float64 {
	return t.data[sample][channel]
}
