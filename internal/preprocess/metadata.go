package preprocess

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/trifetch/trifetch/internal/model"
)

// eventMetadata mirrors the dataset's per-event JSON record. Historical
// exports are inconsistent about field types (numbers appear both quoted and
// bare) and carry the event onset in one of two forms, so the flexible
// wrappers below absorb the variance here and nothing past this package
// sees it.
type eventMetadata struct {
	EventName        string     `json:"Event_Name"`
	PatientID        string     `json:"Patient_IR_ID"`
	EventOccuredTime string     `json:"EventOccuredTime"`
	EventIndex       flexString `json:"EventIndex"`
	IsRejected       flexString `json:"IsRejected"`
}

// flexString accepts a JSON string, number, boolean, or null and normalizes
// it to its string form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(trimmed)
	return nil
}

func parseMetadata(data []byte) (*eventMetadata, error) {
	var meta eventMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse event metadata: %w", err)
	}
	return &meta, nil
}

// groundTruth returns the dataset label, defaulting to UNKNOWN when the
// record has none.
func (m *eventMetadata) groundTruth() model.Label {
	name := strings.TrimSpace(m.EventName)
	if name == "" {
		return model.LabelUnknown
	}
	return model.Label(strings.ToUpper(name))
}

func (m *eventMetadata) rejected() bool {
	switch strings.ToLower(string(m.IsRejected)) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}

// startSample normalizes the two historical onset formats into a single
// sample offset: EventIndex when present, otherwise the time-of-day portion
// of EventOccuredTime converted at the source sample rate.
func (m *eventMetadata) startSample(sampleRate int) (int, error) {
	if m.EventIndex != "" && m.EventIndex != "null" {
		idx, err := strconv.Atoi(string(m.EventIndex))
		if err != nil {
			return 0, fmt.Errorf("invalid EventIndex %q: %w", m.EventIndex, err)
		}
		return idx, nil
	}

	fields := strings.Fields(m.EventOccuredTime)
	if len(fields) < 2 {
		return 0, fmt.Errorf("invalid EventOccuredTime %q", m.EventOccuredTime)
	}

	// Time of day, e.g. "15:42:21.203"
	parts := strings.Split(fields[1], ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid EventOccuredTime %q", m.EventOccuredTime)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in EventOccuredTime %q: %w", m.EventOccuredTime, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in EventOccuredTime %q: %w", m.EventOccuredTime, err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid second in EventOccuredTime %q: %w", m.EventOccuredTime, err)
	}

	total := float64(hours*3600+minutes*60) + seconds
	return int(total * float64(sampleRate)), nil
}
