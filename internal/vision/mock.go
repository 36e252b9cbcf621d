package vision

import (
	"context"
	"errors"
	"sync"

	"github.com/trifetch/trifetch/internal/service"
)

// Mock is a deterministic VisionClient for tests. Responses and errors are
// scripted up front and returned in order; the final entry repeats once the
// script is exhausted.
type Mock struct {
	mu        sync.Mutex
	responses []service.Prediction
	errs      []error
	calls     int
}

// NewMock creates a mock that always answers with the given label.
func NewMock(label string) *Mock {
	return &Mock{
		responses: []service.Prediction{{Label: label}},
		errs:      []error{nil},
	}
}

// NewMockError creates a mock whose every call fails with err.
func NewMockError(err error) *Mock {
	return &Mock{
		responses: []service.Prediction{{}},
		errs:      []error{err},
	}
}

// Script appends a response/error pair to the call script.
func (m *Mock) Script(p service.Prediction, err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, p)
	m.errs = append(m.errs, err)
	return m
}

// Predict returns the next scripted response.
func (m *Mock) Predict(_ context.Context, _ []byte, _ string) (service.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if len(m.responses) == 0 {
		return service.Prediction{}, errors.New("mock has no scripted responses")
	}

	idx := m.calls - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}

	return m.responses[idx], m.errs[idx]
}

// Calls returns how many times Predict was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
