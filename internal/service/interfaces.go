// Package service defines the interfaces between components, allowing each
// concern to be swapped or mocked independently.
package service

import (
	"context"

	"github.com/trifetch/trifetch/internal/model"
)

// Store is the event metadata manifest consumed by the preprocessing batch
// and the request-handling layer.
type Store interface {
	// SaveEvent records an event's manifest row. Saving an event that already
	// exists is a no-op, which keeps batch re-runs idempotent.
	SaveEvent(ctx context.Context, event model.Event) error

	// ReplaceEvent records an event's manifest row, overwriting any existing
	// row for the same event ID.
	ReplaceEvent(ctx context.Context, event model.Event) error

	// GetEvent returns the event with the given ID, or common.ErrNotFound.
	GetEvent(ctx context.Context, eventID string) (*model.Event, error)

	// HasEvent reports whether a manifest row exists for the given ID.
	HasEvent(ctx context.Context, eventID string) (bool, error)

	// ListPatients returns all patients with their derived episode counts,
	// ordered by patient ID.
	ListPatients(ctx context.Context) ([]model.PatientSummary, error)

	// ListEpisodes returns all episodes for a patient ordered by event ID.
	// An unknown patient yields an empty list, not an error.
	ListEpisodes(ctx context.Context, patientID string) ([]model.EpisodeSummary, error)

	// Close releases the underlying storage resources.
	Close() error
}

// Prediction is a raw vision-service response before vocabulary
// normalization. Confidence is 0 when the service reported none.
type Prediction struct {
	Label      string
	Confidence float64
}

// VisionClient abstracts the external vision-classification service so the
// fallback policy and tests are independent of the concrete provider.
type VisionClient interface {
	// Predict submits a rendered chart image with an instruction prompt and
	// returns the service's raw response.
	Predict(ctx context.Context, image []byte, prompt string) (Prediction, error)
}
