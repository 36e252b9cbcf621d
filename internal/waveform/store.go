package waveform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/trifetch/trifetch/internal/common"
)

// FileStore persists full-resolution traces as NumPy .npy arrays keyed by
// event ID, one file per event with shape (samples, channels).
type FileStore struct {
	dir string
}

// NewFileStore creates the trace directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the storage key for an event's trace file.
func (s *FileStore) Path(eventID string) string {
	return filepath.Join(s.dir, eventID+".npy")
}

// Exists reports whether a trace file is present for the event.
func (s *FileStore) Exists(eventID string) bool {
	_, err := os.Stat(s.Path(eventID))
	return err == nil
}

// Save writes a trace to a temporary file and renames it into place, so a
// crash mid-write never leaves a partial file under the final key. Returns
// the final path.
func (s *FileStore) Save(eventID string, t Trace) (string, error) {
	rows, cols := t.Len(), t.Channels()
	flat := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for c := 0; c < cols; c++ {
			flat = append(flat, t.At(i, c))
		}
	}
	dense := mat.NewDense(rows, cols, flat)

	tmp, err := os.CreateTemp(s.dir, eventID+".npy.tmp*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp trace file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := npyio.Write(tmp, dense); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write trace array: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to sync trace file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close trace file: %w", err)
	}

	final := s.Path(eventID)
	if err := os.Rename(tmpPath, final); err != nil {
		return "", fmt.Errorf("failed to move trace file into place: %w", err)
	}
	return final, nil
}

// Load reads a persisted trace back. A missing or unreadable file is a
// storage inconsistency and surfaces as common.ErrTraceLoad.
func (s *FileStore) Load(path string, sampleRate int) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, fmt.Errorf("%w: %v", common.ErrTraceLoad, err)
	}
	defer func() { _ = f.Close() }()

	var dense mat.Dense
	if err := npyio.Read(f, &dense); err != nil {
		return Trace{}, fmt.Errorf("%w: %v", common.ErrTraceLoad, err)
	}

	rows, cols := dense.Dims()
	data := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for c := 0; c < cols; c++ {
			row[c] = dense.At(i, c)
		}
		data[i] = row
	}

	return NewTrace(data, sampleRate), nil
}
