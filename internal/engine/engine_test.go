package engine

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trifetch/trifetch/internal/common"
	"github.com/trifetch/trifetch/internal/model"
	"github.com/trifetch/trifetch/internal/render"
	"github.com/trifetch/trifetch/internal/testutil"
	"github.com/trifetch/trifetch/internal/vision"
	"github.com/trifetch/trifetch/internal/waveform"
)

func engineSpec() waveform.Spec {
	return waveform.Spec{
		SampleRate:     200,
		SegmentCount:   3,
		SegmentSamples: 40,
		Channels:       2,
	}
}

type fixture struct {
	engine *Engine
	files  *waveform.FileStore
	mock   *vision.Mock
}

func setupEngine(t *testing.T, seeded ...model.Event) fixture {
	t.Helper()

	spec := engineSpec()
	store := testutil.SetupTestDB(t)
	files, err := waveform.NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, ev := range seeded {
		trace := testutil.MakeTrace(t, spec)
		path, err := files.Save(ev.ID, trace)
		require.NoError(t, err)
		ev.WaveformRef = path
		testutil.SeedEvents(t, store, ev)
	}

	mock := vision.NewMock("AFIB")
	classifier := vision.NewClassifier(mock, vision.Config{Timeout: time.Second}, "classify", nil)

	eng, err := New(spec, 4, store, files, render.NewRenderer(render.DefaultStyle()), classifier, nil)
	require.NoError(t, err)

	return fixture{engine: eng, files: files, mock: mock}
}

func TestGetEventDetail(t *testing.T) {
	fx := setupEngine(t, model.Event{
		ID:          "evt-001",
		PatientID:   "pat-1",
		GroundTruth: model.LabelSVT,
		StartSample: 50,
	})

	detail, err := fx.engine.GetEventDetail(context.Background(), "evt-001")
	require.NoError(t, err)

	assert.Equal(t, "evt-001", detail.Event.ID)
	assert.Equal(t, model.LabelSVT, detail.Event.GroundTruth)

	// 120 samples decimated by 4.
	spec := engineSpec()
	assert.Equal(t, spec.TotalSamples()/4, detail.Series.Len())
	assert.Equal(t, 50/4, detail.Series.StartIndex)

	assert.Equal(t, model.LabelAFib, detail.Classification.Predicted)
	assert.Equal(t, model.SourceVision, detail.Classification.Source)
	assert.Equal(t, 1, fx.mock.Calls())
}

func TestGetEventDetail_NotFound(t *testing.T) {
	fx := setupEngine(t)

	_, err := fx.engine.GetEventDetail(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Zero(t, fx.mock.Calls())
}

func TestGetEventDetail_MissingTraceFile(t *testing.T) {
	fx := setupEngine(t, model.Event{
		ID:          "evt-001",
		PatientID:   "pat-1",
		GroundTruth: model.LabelAFib,
	})

	require.NoError(t, os.Remove(fx.files.Path("evt-001")))

	_, err := fx.engine.GetEventDetail(context.Background(), "evt-001")
	assert.ErrorIs(t, err, common.ErrTraceLoad)
}

func TestGetEventDetail_ClassifierFailureDegrades(t *testing.T) {
	spec := engineSpec()
	store := testutil.SetupTestDB(t)
	files, err := waveform.NewFileStore(t.TempDir())
	require.NoError(t, err)

	trace := testutil.MakeTrace(t, spec)
	path, err := files.Save("evt-001", trace)
	require.NoError(t, err)
	testutil.SeedEvents(t, store, model.Event{
		ID:          "evt-001",
		PatientID:   "pat-1",
		GroundTruth: model.LabelPause,
		WaveformRef: path,
	})

	failing := vision.NewMockError(errors.New("service down"))
	classifier := vision.NewClassifier(failing, vision.Config{Timeout: time.Second}, "classify", nil)
	eng, err := New(spec, 4, store, files, render.NewRenderer(render.DefaultStyle()), classifier, nil)
	require.NoError(t, err)

	detail, err := eng.GetEventDetail(context.Background(), "evt-001")
	require.NoError(t, err, "classification failures must not fail the request")

	assert.Equal(t, model.LabelPause, detail.Classification.Predicted)
	assert.Equal(t, model.SourceFallback, detail.Classification.Source)
	assert.Equal(t, vision.DefaultFallbackConfidence, detail.Classification.Confidence)
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New(waveform.Spec{}, 4, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
