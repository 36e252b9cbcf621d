package model

import "time"

// Event is one clinically flagged episode belonging to a patient. Events are
// created once by the preprocessing batch and never mutated afterwards.
type Event struct {
	CreatedAt   time.Time
	ID          string
	PatientID   string
	GroundTruth Label
	WaveformRef string
	StartSample int
	IsRejected  bool
}

// PatientSummary is a patient row for the top-level browsing tier. Patients
// have no persisted attributes of their own beyond a derived episode count.
type PatientSummary struct {
	PatientID    string `json:"patient_id"`
	EpisodeCount int    `json:"episode_count"`
}

// EpisodeSummary is one event row in a patient's episode listing.
type EpisodeSummary struct {
	EventID     string `json:"event_id"`
	EventName   Label  `json:"event_name"`
	StartSample int    `json:"start_sample"`
	IsRejected  bool   `json:"is_rejected"`
}
