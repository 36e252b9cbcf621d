// Package vision classifies rendered ECG charts through an external
// vision-model service, with a deliberate degraded-mode fallback when the
// service is unavailable.
package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trifetch/trifetch/internal/service"
)

// Config holds configuration for the vision classifier.
type Config struct {
	Provider           string
	APIKey             string
	Model              string
	Endpoint           string
	Timeout            time.Duration
	FallbackConfidence float64
	Temperature        float64
	MaxTokens          int
	CacheEnabled       bool
}

// NewClient creates a vision client for the configured provider.
func NewClient(cfg Config) (service.VisionClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "groq", "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", cfg.Provider)
	}
}

// Unavailable is a VisionClient whose calls always fail with Reason. It lets
// an unconfigured deployment run with every request taking the fallback path
// instead of refusing to start.
type Unavailable struct {
	Reason error
}

// Predict always fails.
func (u Unavailable) Predict(context.Context, []byte, string) (service.Prediction, error) {
	return service.Prediction{}, u.Reason
}
