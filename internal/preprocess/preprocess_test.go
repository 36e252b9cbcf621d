package preprocess

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trifetch/trifetch/internal/model"
	"github.com/trifetch/trifetch/internal/testutil"
	"github.com/trifetch/trifetch/internal/waveform"
)

func testSpec() waveform.Spec {
	return waveform.Spec{
		SampleRate:     200,
		SegmentCount:   3,
		SegmentSamples: 8,
		Channels:       2,
	}
}

func metadataJSON(label string, startSample int) string {
	return fmt.Sprintf(`{
		"Event_Name": %q,
		"Patient_IR_ID": "pat-1",
		"IsRejected": "0",
		"EventIndex": "%d"
	}`, label, startSample)
}

func setupJob(t *testing.T, opts ...Option) (*Job, *waveform.FileStore, string) {
	t.Helper()

	spec := testSpec()
	store := testutil.SetupTestDB(t)
	files, err := waveform.NewFileStore(t.TempDir())
	require.NoError(t, err)

	job, err := NewJob(spec, store, files, nil, opts...)
	require.NoError(t, err)

	return job, files, t.TempDir()
}

func TestJob_Run(t *testing.T) {
	job, files, rawRoot := setupJob(t)
	spec := testSpec()

	testutil.WriteRawEvent(t, rawRoot, "evt-001", spec, metadataJSON("AFIB", 5))
	testutil.WriteRawEvent(t, rawRoot, "evt-002", spec, metadataJSON("SVT", 11))

	summary, err := job.Run(context.Background(), rawRoot)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Processed)
	assert.EqualValues(t, 0, summary.Skipped)
	assert.EqualValues(t, 0, summary.Failed)

	event, err := job.store.GetEvent(context.Background(), "evt-001")
	require.NoError(t, err)
	assert.Equal(t, model.LabelAFib, event.GroundTruth)
	assert.Equal(t, "pat-1", event.PatientID)
	assert.Equal(t, 5, event.StartSample)
	assert.Equal(t, files.Path("evt-001"), event.WaveformRef)

	trace, err := files.Load(event.WaveformRef, spec.SampleRate)
	require.NoError(t, err)
	assert.Equal(t, spec.TotalSamples(), trace.Len())
	assert.Equal(t, spec.Channels, trace.Channels())
}

func TestJob_RerunIsIdempotent(t *testing.T) {
	job, files, rawRoot := setupJob(t)
	spec := testSpec()

	testutil.WriteRawEvent(t, rawRoot, "evt-001", spec, metadataJSON("AFIB", 5))

	_, err := job.Run(context.Background(), rawRoot)
	require.NoError(t, err)

	before, err := os.ReadFile(files.Path("evt-001"))
	require.NoError(t, err)

	summary, err := job.Run(context.Background(), rawRoot)
	require.NoError(t, err)
	assert.EqualValues(t, 0, summary.Processed)
	assert.EqualValues(t, 1, summary.Skipped)

	after, err := os.ReadFile(files.Path("evt-001"))
	require.NoError(t, err)
	assert.Equal(t, before, after, "re-run must leave the trace file byte-for-byte unchanged")
}

func TestJob_PerEventFailureDoesNotAbortBatch(t *testing.T) {
	job, _, rawRoot := setupJob(t)
	spec := testSpec()

	testutil.WriteRawEvent(t, rawRoot, "evt-good", spec, metadataJSON("NORMAL", 0))
	metaPath := testutil.WriteRawEvent(t, rawRoot, "evt-bad", spec, metadataJSON("AFIB", 3))

	// Drop one segment so evt-bad fails the segment-count check.
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(metaPath), "segment_00.txt")))

	summary, err := job.Run(context.Background(), rawRoot)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Processed)
	assert.EqualValues(t, 1, summary.Failed)

	exists, err := job.store.HasEvent(context.Background(), "evt-bad")
	require.NoError(t, err)
	assert.False(t, exists, "failed event must not get a manifest row")

	exists, err = job.store.HasEvent(context.Background(), "evt-good")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestJob_RebuildReprocesses(t *testing.T) {
	spec := testSpec()
	store := testutil.SetupTestDB(t)
	files, err := waveform.NewFileStore(t.TempDir())
	require.NoError(t, err)
	rawRoot := t.TempDir()

	testutil.WriteRawEvent(t, rawRoot, "evt-001", spec, metadataJSON("AFIB", 5))

	job, err := NewJob(spec, store, files, nil)
	require.NoError(t, err)
	_, err = job.Run(context.Background(), rawRoot)
	require.NoError(t, err)

	// The raw metadata gets corrected between runs; the rebuild must carry
	// the new values into the manifest, not just rewrite the trace file.
	testutil.WriteRawEvent(t, rawRoot, "evt-001", spec, metadataJSON("SVT", 11))

	rebuildJob, err := NewJob(spec, store, files, nil, WithRebuild(true))
	require.NoError(t, err)
	summary, err := rebuildJob.Run(context.Background(), rawRoot)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Processed)
	assert.EqualValues(t, 0, summary.Skipped)

	event, err := store.GetEvent(context.Background(), "evt-001")
	require.NoError(t, err)
	assert.Equal(t, model.LabelSVT, event.GroundTruth)
	assert.Equal(t, 11, event.StartSample)
}

func TestJob_ClampsOutOfRangeStartSample(t *testing.T) {
	job, _, rawRoot := setupJob(t)
	spec := testSpec()

	testutil.WriteRawEvent(t, rawRoot, "evt-001", spec, metadataJSON("AFIB", 99999))

	_, err := job.Run(context.Background(), rawRoot)
	require.NoError(t, err)

	event, err := job.store.GetEvent(context.Background(), "evt-001")
	require.NoError(t, err)
	assert.Equal(t, spec.TotalSamples()-1, event.StartSample)
}
