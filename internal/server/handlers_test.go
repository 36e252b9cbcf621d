package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trifetch/trifetch/internal/engine"
	"github.com/trifetch/trifetch/internal/model"
	"github.com/trifetch/trifetch/internal/render"
	"github.com/trifetch/trifetch/internal/testutil"
	"github.com/trifetch/trifetch/internal/vision"
	"github.com/trifetch/trifetch/internal/waveform"
)

func serverSpec() waveform.Spec {
	return waveform.Spec{
		SampleRate:     200,
		SegmentCount:   3,
		SegmentSamples: 40,
		Channels:       2,
	}
}

func setupServer(t *testing.T) *Server {
	t.Helper()

	spec := serverSpec()
	store := testutil.SetupTestDB(t)
	files, err := waveform.NewFileStore(t.TempDir())
	require.NoError(t, err)

	events := []model.Event{
		{ID: "evt-001", PatientID: "pat-a", GroundTruth: model.LabelAFib, StartSample: 50},
		{ID: "evt-002", PatientID: "pat-a", GroundTruth: model.LabelSVT, IsRejected: true},
		{ID: "evt-003", PatientID: "pat-b", GroundTruth: model.LabelNormal},
	}
	for _, ev := range events {
		path, err := files.Save(ev.ID, testutil.MakeTrace(t, spec))
		require.NoError(t, err)
		ev.WaveformRef = path
		testutil.SeedEvents(t, store, ev)
	}

	classifier := vision.NewClassifier(vision.NewMock("AFIB"), vision.Config{Timeout: time.Second}, "classify", nil)
	eng, err := engine.New(spec, 4, store, files, render.NewRenderer(render.DefaultStyle()), classifier, nil)
	require.NoError(t, err)

	return New(store, eng, nil)
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestListPatients(t *testing.T) {
	s := setupServer(t)

	rec := doRequest(t, s, "/patients")
	require.Equal(t, http.StatusOK, rec.Code)

	var patients []model.PatientSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patients))

	assert.Equal(t, []model.PatientSummary{
		{PatientID: "pat-a", EpisodeCount: 2},
		{PatientID: "pat-b", EpisodeCount: 1},
	}, patients)
}

func TestListEpisodes(t *testing.T) {
	s := setupServer(t)

	rec := doRequest(t, s, "/patient/pat-a/episodes")
	require.Equal(t, http.StatusOK, rec.Code)

	var episodes []model.EpisodeSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &episodes))

	require.Len(t, episodes, 2)
	assert.Equal(t, "evt-001", episodes[0].EventID)
	assert.Equal(t, "evt-002", episodes[1].EventID)
	assert.True(t, episodes[1].IsRejected)
}

func TestListEpisodes_UnknownPatient(t *testing.T) {
	s := setupServer(t)

	rec := doRequest(t, s, "/patient/nobody/episodes")
	require.Equal(t, http.StatusOK, rec.Code)

	var episodes []model.EpisodeSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &episodes))
	assert.Empty(t, episodes)
}

func TestGetEvent(t *testing.T) {
	s := setupServer(t)

	rec := doRequest(t, s, "/event/evt-001")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail eventDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))

	assert.Equal(t, "evt-001", detail.EventID)
	assert.Equal(t, "pat-a", detail.PatientID)
	assert.Equal(t, model.LabelAFib, detail.GroundTruth)
	assert.Equal(t, model.LabelAFib, detail.Predicted)
	assert.False(t, detail.IsRejected)

	spec := serverSpec()
	assert.Len(t, detail.ECG, spec.TotalSamples()/4)
	assert.Len(t, detail.TimeSeconds, spec.TotalSamples()/4)
	assert.Equal(t, 50/4, detail.StartSampleDisplay)
	assert.Greater(t, detail.Confidence, 0.0)
}

func TestGetEvent_NotFound(t *testing.T) {
	s := setupServer(t)

	rec := doRequest(t, s, "/event/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "event not found", body.Error)
}

func TestHealthz(t *testing.T) {
	s := setupServer(t)

	rec := doRequest(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupServer(t)

	rec := doRequest(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}
