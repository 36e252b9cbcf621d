package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trifetch/trifetch/internal/common"
	"github.com/trifetch/trifetch/internal/model"
)

// eventDetailResponse is the wire shape of the event-detail payload. Field
// names match what the viewer consumes.
type eventDetailResponse struct {
	EventID            string      `json:"event_id"`
	PatientID          string      `json:"patient_id"`
	GroundTruth        model.Label `json:"ground_truth"`
	Predicted          model.Label `json:"predicted"`
	ECG                [][]float64 `json:"ecg"`
	TimeSeconds        []float64   `json:"time_seconds"`
	StartSampleDisplay int         `json:"start_sample_display"`
	Confidence         float64     `json:"confidence"`
	IsRejected         bool        `json:"is_rejected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListPatients(c echo.Context) error {
	patients, err := s.store.ListPatients(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to list patients", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list patients"})
	}
	return c.JSON(http.StatusOK, patients)
}

func (s *Server) handleListEpisodes(c echo.Context) error {
	patientID := c.Param("patient_id")

	episodes, err := s.store.ListEpisodes(c.Request().Context(), patientID)
	if err != nil {
		s.logger.Error("failed to list episodes", "patient_id", patientID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list episodes"})
	}
	return c.JSON(http.StatusOK, episodes)
}

func (s *Server) handleGetEvent(c echo.Context) error {
	eventID := c.Param("event_id")

	detail, err := s.engine.GetEventDetail(c.Request().Context(), eventID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "event not found"})
	case errors.Is(err, common.ErrTraceLoad):
		s.logger.Error("trace load failure", "event_id", eventID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "waveform data unavailable"})
	case err != nil:
		s.logger.Error("failed to resolve event detail", "event_id", eventID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, eventDetailResponse{
		EventID:            detail.Event.ID,
		PatientID:          detail.Event.PatientID,
		GroundTruth:        detail.Event.GroundTruth,
		IsRejected:         detail.Event.IsRejected,
		ECG:                detail.Series.Amplitudes,
		TimeSeconds:        detail.Series.TimeSeconds,
		StartSampleDisplay: detail.Series.StartIndex,
		Predicted:          detail.Classification.Predicted,
		Confidence:         detail.Classification.Confidence,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
