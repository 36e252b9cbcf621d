package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trifetch/trifetch/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidEvent = errors.New("invalid event")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateEvent validates an event before it is written to the manifest.
func validateEvent(event *model.Event) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidEvent)
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("%w: missing event ID", ErrInvalidEvent)
	}
	if strings.TrimSpace(event.WaveformRef) == "" {
		return fmt.Errorf("%w: missing waveform reference", ErrInvalidEvent)
	}
	if event.StartSample < 0 {
		return fmt.Errorf("%w: negative start sample %d", ErrInvalidEvent, event.StartSample)
	}
	return nil
}
