// Package preprocess implements the offline batch job that assembles raw
// per-segment ECG recordings into per-event traces and records their
// metadata in the manifest store.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/trifetch/trifetch/internal/model"
	"github.com/trifetch/trifetch/internal/service"
	"github.com/trifetch/trifetch/internal/waveform"
)

// Job processes a raw dataset directory tree into the trace file store and
// the event manifest. Events are independent; the job runs them across a
// bounded worker pool with no shared mutable state beyond summary counters.
type Job struct {
	store   service.Store
	files   *waveform.FileStore
	logger  *slog.Logger
	spec    waveform.Spec
	workers int
	rebuild bool
}

// Summary reports the outcome of one batch run.
type Summary struct {
	Processed int64
	Skipped   int64
	Failed    int64
}

// Option configures a Job.
type Option func(*Job)

// WithWorkers sets the number of concurrent event workers.
func WithWorkers(n int) Option {
	return func(j *Job) {
		if n > 0 {
			j.workers = n
		}
	}
}

// WithRebuild forces already-processed events to be assembled again.
func WithRebuild(rebuild bool) Option {
	return func(j *Job) {
		j.rebuild = rebuild
	}
}

// NewJob creates a preprocessing job.
func NewJob(spec waveform.Spec, store service.Store, files *waveform.FileStore, logger *slog.Logger, opts ...Option) (*Job, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &Job{
		spec:    spec,
		store:   store,
		files:   files,
		logger:  logger,
		workers: 4,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Run walks rawRoot for event metadata files and processes each event.
// Per-event failures are logged and counted but never abort the batch;
// the returned error is non-nil only for walk errors or cancellation.
func (j *Job) Run(ctx context.Context, rawRoot string) (Summary, error) {
	metaFiles, err := findMetadataFiles(rawRoot)
	if err != nil {
		return Summary{}, err
	}

	j.logger.Info("starting preprocessing batch",
		"raw_root", rawRoot,
		"events", len(metaFiles),
		"workers", j.workers)

	var summary Summary

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)

	for _, metaPath := range metaFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			switch err := j.processEvent(ctx, metaPath); {
			case err == nil:
				atomic.AddInt64(&summary.Processed, 1)
			case errors.Is(err, errAlreadyProcessed):
				atomic.AddInt64(&summary.Skipped, 1)
			default:
				atomic.AddInt64(&summary.Failed, 1)
				j.logger.Error("event preprocessing failed",
					"event_id", filepath.Base(filepath.Dir(metaPath)),
					"error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	j.logger.Info("preprocessing batch complete",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

// errAlreadyProcessed marks an event skipped by the restartability check.
var errAlreadyProcessed = errors.New("event already processed")

// processEvent assembles and persists a single event. The trace file is
// written and renamed into place before the manifest row is inserted, so a
// crash in between leaves an orphan file rather than a manifest row pointing
// at nothing.
func (j *Job) processEvent(ctx context.Context, metaPath string) error {
	eventDir := filepath.Dir(metaPath)
	eventID := filepath.Base(eventDir)

	if !j.rebuild {
		exists, err := j.store.HasEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to check manifest: %w", err)
		}
		if exists && j.files.Exists(eventID) {
			return errAlreadyProcessed
		}
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	meta, err := parseMetadata(data)
	if err != nil {
		return err
	}

	startSample, err := meta.startSample(j.spec.SampleRate)
	if err != nil {
		return err
	}

	trace, err := j.assembleSegments(eventDir)
	if err != nil {
		return err
	}

	// The onset offset only positions a marker; out-of-range values from
	// sloppy exports are clamped into the trace rather than rejected.
	if clamped := clamp(startSample, 0, trace.Len()-1); clamped != startSample {
		j.logger.Warn("start sample out of range, clamping",
			"event_id", eventID,
			"start_sample", startSample,
			"trace_length", trace.Len())
		startSample = clamped
	}

	path, err := j.files.Save(eventID, trace)
	if err != nil {
		return err
	}

	event := model.Event{
		ID:          eventID,
		PatientID:   meta.PatientID,
		GroundTruth: meta.groundTruth(),
		IsRejected:  meta.rejected(),
		StartSample: startSample,
		WaveformRef: path,
	}
	// A rebuild must overwrite the stored row so corrected raw metadata
	// reaches the manifest, not just the trace file.
	save := j.store.SaveEvent
	if j.rebuild {
		save = j.store.ReplaceEvent
	}
	if err := save(ctx, event); err != nil {
		return err
	}

	j.logger.Debug("event processed",
		"event_id", eventID,
		"patient_id", event.PatientID,
		"start_sample", startSample,
		"label", event.GroundTruth)

	return nil
}

// assembleSegments reads the event's raw segment files in lexical filename
// order, which is the temporal recording order in this dataset.
func (j *Job) assembleSegments(eventDir string) (waveform.Trace, error) {
	paths, err := filepath.Glob(filepath.Join(eventDir, "*.txt"))
	if err != nil {
		return waveform.Trace{}, fmt.Errorf("failed to list segments: %w", err)
	}
	sort.Strings(paths)

	segments := make([]waveform.Segment, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return waveform.Trace{}, fmt.Errorf("failed to open segment %s: %w", filepath.Base(p), err)
		}

		seg, err := waveform.ReadSegment(f, j.spec)
		_ = f.Close()
		if err != nil {
			return waveform.Trace{}, fmt.Errorf("segment %s: %w", filepath.Base(p), err)
		}
		segments = append(segments, seg)
	}

	return waveform.Assemble(segments, j.spec)
}

func findMetadataFiles(rawRoot string) ([]string, error) {
	var metaFiles []string
	err := filepath.WalkDir(rawRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if matched, _ := filepath.Match("event_*.json", d.Name()); matched {
			metaFiles = append(metaFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk raw dataset: %w", err)
	}
	sort.Strings(metaFiles)
	return metaFiles, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
