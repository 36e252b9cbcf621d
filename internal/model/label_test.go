package model

import "testing"

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Label
		wantOK bool
	}{
		{
			name:   "exact match",
			input:  "AFIB",
			want:   LabelAFib,
			wantOK: true,
		},
		{
			name:   "lowercase",
			input:  "afib",
			want:   LabelAFib,
			wantOK: true,
		},
		{
			name:   "mixed case with whitespace",
			input:  "  Svt \n",
			want:   LabelSVT,
			wantOK: true,
		},
		{
			name:   "explicit unknown",
			input:  "UNKNOWN",
			want:   LabelUnknown,
			wantOK: true,
		},
		{
			name:   "outside vocabulary",
			input:  "Tachycardia",
			want:   LabelUnknown,
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			want:   LabelUnknown,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLabel(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLabel(%q) = (%v, %v), want (%v, %v)",
					tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestVocabularyContainsSevenLabels(t *testing.T) {
	vocab := Vocabulary()
	if len(vocab) != 7 {
		t.Fatalf("vocabulary has %d labels, want 7", len(vocab))
	}
	if vocab[len(vocab)-1] != LabelUnknown {
		t.Errorf("UNKNOWN should close the vocabulary, got %v", vocab[len(vocab)-1])
	}
}
