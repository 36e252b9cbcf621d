package vision

import (
	"fmt"
	"strings"

	"github.com/trifetch/trifetch/internal/model"
)

// BuildPrompt returns the fixed instruction prompt for chart classification.
// It constrains the answer to the label vocabulary so the response can be
// parsed as a single word.
func BuildPrompt(duration float64) string {
	vocab := model.Vocabulary()
	words := make([]string, len(vocab))
	for i, l := range vocab {
		words[i] = string(l)
	}

	return fmt.Sprintf(
		"You are a world-class cardiologist. This is a %.0f-second dual-lead ECG "+
			"(Lead I top, Lead II bottom). The red vertical line marks where the monitor "+
			"flagged an event. What arrhythmia is this? Answer with exactly one word: %s or %s.",
		duration,
		strings.Join(words[:len(words)-1], ", "),
		words[len(words)-1],
	)
}
