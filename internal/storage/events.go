package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trifetch/trifetch/internal/common"
	"github.com/trifetch/trifetch/internal/model"
)

// SaveEvent inserts an event's manifest row. Inserting an event that already
// exists leaves the stored row untouched, which keeps batch re-runs
// idempotent.
func (s *SQLiteStorage) SaveEvent(ctx context.Context, event model.Event) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEvent(&event); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO events (
			event_id, patient_id, event_name, is_rejected, start_sample, ecg_path
		) VALUES (?, ?, ?, ?, ?, ?)
	`, event.ID, event.PatientID, string(event.GroundTruth), boolToInt(event.IsRejected), event.StartSample, event.WaveformRef)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	return nil
}

// ReplaceEvent inserts an event's manifest row, overwriting any existing row
// for the same event ID. Rebuild runs use this so corrected raw metadata
// (onset, label, rejection flag) wins over what an earlier batch recorded.
func (s *SQLiteStorage) ReplaceEvent(ctx context.Context, event model.Event) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEvent(&event); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (
			event_id, patient_id, event_name, is_rejected, start_sample, ecg_path
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			patient_id = excluded.patient_id,
			event_name = excluded.event_name,
			is_rejected = excluded.is_rejected,
			start_sample = excluded.start_sample,
			ecg_path = excluded.ecg_path
	`, event.ID, event.PatientID, string(event.GroundTruth), boolToInt(event.IsRejected), event.StartSample, event.WaveformRef)
	if err != nil {
		return fmt.Errorf("failed to replace event: %w", err)
	}

	return nil
}

// GetEvent returns the event with the given ID, or common.ErrNotFound.
func (s *SQLiteStorage) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(eventID, "eventID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT event_id, patient_id, event_name, is_rejected, start_sample, ecg_path, created_at
		FROM events
		WHERE event_id = ?
	`, eventID)

	var (
		event      model.Event
		eventName  string
		isRejected int
	)
	err := row.Scan(&event.ID, &event.PatientID, &eventName, &isRejected,
		&event.StartSample, &event.WaveformRef, &event.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", eventID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	event.GroundTruth = model.Label(eventName)
	event.IsRejected = isRejected != 0

	return &event, nil
}

// HasEvent reports whether a manifest row exists for the given ID.
func (s *SQLiteStorage) HasEvent(ctx context.Context, eventID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(eventID, "eventID"); err != nil {
		return false, err
	}

	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE event_id = ?`, eventID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check event: %w", err)
	}

	return true, nil
}

// ListPatients returns all patients with their derived episode counts,
// ordered by patient ID.
func (s *SQLiteStorage) ListPatients(ctx context.Context) ([]model.PatientSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT patient_id, COUNT(*) AS episode_count
		FROM events
		GROUP BY patient_id
		ORDER BY patient_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	patients := make([]model.PatientSummary, 0)
	for rows.Next() {
		var p model.PatientSummary
		if err := rows.Scan(&p.PatientID, &p.EpisodeCount); err != nil {
			return nil, fmt.Errorf("failed to scan patient row: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}

	return patients, nil
}

// ListEpisodes returns all episodes for a patient ordered by event ID. An
// unknown patient yields an empty list.
func (s *SQLiteStorage) ListEpisodes(ctx context.Context, patientID string) ([]model.EpisodeSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(patientID, "patientID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, event_name, is_rejected, start_sample
		FROM events
		WHERE patient_id = ?
		ORDER BY event_id
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	episodes := make([]model.EpisodeSummary, 0)
	for rows.Next() {
		var (
			e          model.EpisodeSummary
			eventName  string
			isRejected int
		)
		if err := rows.Scan(&e.EventID, &eventName, &isRejected, &e.StartSample); err != nil {
			return nil, fmt.Errorf("failed to scan episode row: %w", err)
		}
		e.EventName = model.Label(eventName)
		e.IsRejected = isRejected != 0
		episodes = append(episodes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate episodes: %w", err)
	}

	return episodes, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
