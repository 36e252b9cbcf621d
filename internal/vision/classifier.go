package vision

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/trifetch/trifetch/internal/model"
	"github.com/trifetch/trifetch/internal/service"
)

// Confidence policy constants.
const (
	// DefaultFallbackConfidence is returned with the ground-truth label when
	// the service call fails. The value 0.7 is a fixed operational constant;
	// do not rederive it.
	DefaultFallbackConfidence = 0.7

	// unknownPenalty scales confidence down when the service answers with
	// text outside the vocabulary.
	unknownPenalty = 0.5

	// Heuristic confidences used when the service reports none: a prediction
	// agreeing with the dataset label is unsurprising, a disagreement is the
	// model asserting itself.
	agreeConfidence    = 0.85
	disagreeConfidence = 0.99
)

// Classifier turns rendered chart images into label/confidence pairs. Every
// call has exactly two terminal outcomes: a service-backed classification or
// the ground-truth fallback. Failures never propagate to the caller.
type Classifier struct {
	client             service.VisionClient
	cache              *gocache.Cache
	logger             *slog.Logger
	prompt             string
	timeout            time.Duration
	fallbackConfidence float64
}

// NewClassifier creates a classifier around the given client. The memo cache
// is optional; traces are immutable, so cached entries never need
// invalidation.
func NewClassifier(client service.VisionClient, cfg Config, prompt string, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	fallback := cfg.FallbackConfidence
	if fallback == 0 {
		fallback = DefaultFallbackConfidence
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	var memo *gocache.Cache
	if cfg.CacheEnabled {
		memo = gocache.New(gocache.NoExpiration, 0)
	}

	return &Classifier{
		client:             client,
		cache:              memo,
		logger:             logger,
		prompt:             prompt,
		timeout:            timeout,
		fallbackConfidence: fallback,
	}
}

// Classify submits the rendered chart and returns a usable classification.
// At most one service call is made; any failure (network, timeout, bad
// status, malformed response) degrades to the event's own ground truth at
// the fixed fallback confidence.
func (c *Classifier) Classify(ctx context.Context, eventID string, image []byte, groundTruth model.Label) model.Classification {
	if c.cache != nil {
		if cached, found := c.cache.Get(eventID); found {
			if result, ok := cached.(model.Classification); ok {
				c.logger.Debug("classification cache hit", "event_id", eventID)
				result.Source = model.SourceCache
				classificationsTotal.WithLabelValues(outcomeCache).Inc()
				return result
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prediction, err := c.client.Predict(callCtx, image, c.prompt)
	if err != nil {
		c.logger.Warn("vision classification failed, using ground-truth fallback",
			"event_id", eventID,
			"ground_truth", groundTruth,
			"error", err)
		classificationsTotal.WithLabelValues(outcomeFallback).Inc()
		return c.Fallback(groundTruth)
	}

	result := c.normalize(prediction, groundTruth)

	if result.Predicted == model.LabelUnknown {
		classificationsTotal.WithLabelValues(outcomeUnknown).Inc()
	} else {
		classificationsTotal.WithLabelValues(outcomeOK).Inc()
	}

	// Fallbacks are never cached so a recovered service gets asked again;
	// successful answers are safe to memoize forever.
	if c.cache != nil {
		c.cache.Set(eventID, result, gocache.NoExpiration)
	}

	c.logger.Info("event classified",
		"event_id", eventID,
		"predicted", result.Predicted,
		"confidence", result.Confidence)

	return result
}

// Fallback returns the degraded-mode result for an event: its own ground
// truth at the fixed reduced confidence.
func (c *Classifier) Fallback(groundTruth model.Label) model.Classification {
	return model.Classification{
		Predicted:  groundTruth,
		Confidence: c.fallbackConfidence,
		Source:     model.SourceFallback,
	}
}

// normalize maps a raw service response into the vocabulary. Unrecognized
// text becomes UNKNOWN at reduced confidence.
func (c *Classifier) normalize(p service.Prediction, groundTruth model.Label) model.Classification {
	label, ok := model.ParseLabel(p.Label)

	confidence := clampConfidence(p.Confidence)
	if confidence == 0 {
		if label == groundTruth {
			confidence = agreeConfidence
		} else {
			confidence = disagreeConfidence
		}
	}
	if !ok {
		confidence *= unknownPenalty
	}

	return model.Classification{
		Predicted:  label,
		Confidence: confidence,
		Source:     model.SourceVision,
	}
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
