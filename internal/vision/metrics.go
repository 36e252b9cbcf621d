package vision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classification outcome label values.
const (
	outcomeOK       = "ok"
	outcomeFallback = "fallback"
	outcomeUnknown  = "unknown"
	outcomeCache    = "cache"
)

var classificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "trifetch",
		Name:      "classifications_total",
		Help:      "Classification attempts by terminal outcome.",
	},
	[]string{"outcome"},
)
