package model

// DisplaySeries is a decimated view of a full-resolution trace, recomputed per
// request and never persisted. Amplitudes holds one [channels]float64 row per
// retained sample; TimeSeconds is the parallel time axis in seconds.
type DisplaySeries struct {
	Amplitudes  [][]float64
	TimeSeconds []float64
	Factor      int
	StartIndex  int
}

// Len returns the number of retained samples.
func (s DisplaySeries) Len() int {
	return len(s.Amplitudes)
}
