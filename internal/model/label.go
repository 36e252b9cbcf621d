// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Label is an arrhythmia classification label.
type Label string

// The fixed arrhythmia vocabulary. Every classification result, ground-truth
// annotation, and vision-model response resolves to one of these.
const (
	LabelAFib    Label = "AFIB"
	LabelVTach   Label = "VTACH"
	LabelPause   Label = "PAUSE"
	LabelSVT     Label = "SVT"
	LabelNormal  Label = "NORMAL"
	LabelPVC     Label = "PVC"
	LabelUnknown Label = "UNKNOWN"
)

// Vocabulary returns the allowed labels in presentation order.
func Vocabulary() []Label {
	return []Label{
		LabelAFib,
		LabelVTach,
		LabelPause,
		LabelSVT,
		LabelNormal,
		LabelPVC,
		LabelUnknown,
	}
}

// ParseLabel matches s against the vocabulary, ignoring case and surrounding
// whitespace. Unrecognized text maps to LabelUnknown with ok=false.
func ParseLabel(s string) (label Label, ok bool) {
	candidate := Label(strings.ToUpper(strings.TrimSpace(s)))
	for _, l := range Vocabulary() {
		if candidate == l {
			return l, true
		}
	}
	return LabelUnknown, false
}
