// Package engine orchestrates the per-request event-detail pipeline:
// manifest lookup, trace load, decimation, chart rendering, and
// classification.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trifetch/trifetch/internal/model"
	"github.com/trifetch/trifetch/internal/render"
	"github.com/trifetch/trifetch/internal/service"
	"github.com/trifetch/trifetch/internal/vision"
	"github.com/trifetch/trifetch/internal/waveform"
)

// Engine composes the pipeline components. It holds no mutable state, so any
// number of requests may run through it concurrently.
type Engine struct {
	store      service.Store
	files      *waveform.FileStore
	renderer   *render.Renderer
	classifier *vision.Classifier
	logger     *slog.Logger
	spec       waveform.Spec
	factor     int
}

// New creates an engine over the given components.
func New(spec waveform.Spec, factor int, store service.Store, files *waveform.FileStore, renderer *render.Renderer, classifier *vision.Classifier, logger *slog.Logger) (*Engine, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if factor < 1 {
		factor = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		spec:       spec,
		factor:     factor,
		store:      store,
		files:      files,
		renderer:   renderer,
		classifier: classifier,
		logger:     logger,
	}, nil
}

// GetEventDetail resolves the full event-detail payload for one event.
// Unknown events surface common.ErrNotFound; a missing or corrupt trace file
// surfaces common.ErrTraceLoad (a preprocessing/storage inconsistency).
// Classification failures never surface: the classifier degrades internally.
func (e *Engine) GetEventDetail(ctx context.Context, eventID string) (*model.EventDetail, error) {
	event, err := e.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	trace, err := e.files.Load(event.WaveformRef, e.spec.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}

	series := waveform.Downsample(trace, e.factor, event.StartSample)

	var classification model.Classification
	image, err := e.renderer.Render(trace, event.StartSample)
	if err != nil {
		// Without a chart there is nothing to submit; degrade the same way
		// a failed service call would.
		e.logger.Warn("chart rendering failed, using ground-truth fallback",
			"event_id", eventID,
			"error", err)
		classification = e.classifier.Fallback(event.GroundTruth)
	} else {
		classification = e.classifier.Classify(ctx, eventID, image, event.GroundTruth)
	}

	return &model.EventDetail{
		Event:          *event,
		Series:         series,
		Classification: classification,
	}, nil
}
