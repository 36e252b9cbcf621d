package model

// ClassificationSource indicates how a classification result was produced.
type ClassificationSource string

// Classification source constants.
const (
	SourceVision   ClassificationSource = "VISION"
	SourceFallback ClassificationSource = "FALLBACK"
	SourceCache    ClassificationSource = "CACHE"
)

// Classification is the terminal outcome of one classification attempt. The
// caller always receives a usable label/confidence pair; a fallback source
// marks the degraded mode where the event's own ground truth was substituted.
type Classification struct {
	Predicted  Label
	Source     ClassificationSource
	Confidence float64
}

// EventDetail is the combined payload for the event-detail view: metadata,
// the downsampled display series, and the classification result.
type EventDetail struct {
	Event          Event
	Series         DisplaySeries
	Classification Classification
}
