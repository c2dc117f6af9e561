// file: internal/models/signals.go
// version: 1.2.0
// guid: 1c78854a-a190-468e-917c-13c4b1e924e5

package models

import "fmt"

// RecognizedText is a single text fragment produced by the external
// image/text recognizer. Confidence is in [0, 1]. The bounding region
// reported by the recognizer is dropped before signals reach this core.
type RecognizedText struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// QuerySignals bundles the heterogeneous evidence captured for one
// identification attempt. Signals are request-scoped: they are never
// persisted and exist only for the duration of one identify call.
type QuerySignals struct {
	Texts        []RecognizedText `json:"texts,omitempty"`
	Labels       []string         `json:"labels,omitempty"`
	Color        string           `json:"color,omitempty"`
	Shape        string           `json:"shape,omitempty"`
	ExternalCode string           `json:"external_code,omitempty"`
	AITerms      []string         `json:"ai_terms,omitempty"`
}

// Validate rejects contract violations at the boundary so they never
// reach scoring logic. Empty signal bundles are valid.
func (s QuerySignals) Validate() error {
	for i, t := range s.Texts {
		if t.Confidence < 0 {
			return fmt.Errorf("texts[%d]: negative confidence %v", i, t.Confidence)
		}
		if t.Confidence > 1 {
			return fmt.Errorf("texts[%d]: confidence %v exceeds 1.0", i, t.Confidence)
		}
	}
	return nil
}

// Empty reports whether the bundle carries no usable evidence at all.
func (s QuerySignals) Empty() bool {
	return len(s.Texts) == 0 && len(s.Labels) == 0 && len(s.AITerms) == 0 &&
		s.Color == "" && s.Shape == "" && s.ExternalCode == ""
}

// ScoredRecord pairs a record with its relevance score in [0, 1]. It
// exists only inside the ranking pipeline and in API responses.
type ScoredRecord struct {
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
}
