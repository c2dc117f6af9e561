// file: internal/matcher/aggregate_test.go
// version: 1.0.0
// guid: ee66913a-3722-4340-8ecc-982d7575065c

package matcher

import (
	"reflect"
	"testing"

	"github.com/jdfalk/medication-identifier/internal/models"
)

func TestAggregateSignalsMergesAllSources(t *testing.T) {
	signals := models.QuerySignals{
		Texts: []models.RecognizedText{
			{Text: "Aspirin", Confidence: 0.95},
			{Text: "500 mg", Confidence: 0.8},
		},
		Labels:  []string{"Pill", "Medicine"},
		AITerms: []string{"acetylsalicylic acid"},
		Color:   "White",
		Shape:   "Round",
	}
	got := AggregateSignals(signals, 0)
	want := []string{"aspirin", "500 mg", "pill", "medicine", "acetylsalicylic acid", "white", "round"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AggregateSignals = %v, want %v", got, want)
	}
}

func TestAggregateSignalsDeduplicates(t *testing.T) {
	signals := models.QuerySignals{
		Texts:   []models.RecognizedText{{Text: "ASPIRIN", Confidence: 0.9}, {Text: " aspirin ", Confidence: 0.7}},
		Labels:  []string{"aspirin"},
		AITerms: []string{"Aspirin"},
	}
	got := AggregateSignals(signals, 0)
	want := []string{"aspirin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AggregateSignals = %v, want %v", got, want)
	}
}

func TestAggregateSignalsConfidenceFilter(t *testing.T) {
	signals := models.QuerySignals{
		Texts: []models.RecognizedText{
			{Text: "aspirin", Confidence: 0.9},
			{Text: "blurry", Confidence: 0.2},
		},
	}
	got := AggregateSignals(signals, 0.5)
	want := []string{"aspirin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AggregateSignals = %v, want %v", got, want)
	}

	// Default threshold accepts everything.
	got = AggregateSignals(signals, 0)
	if len(got) != 2 {
		t.Errorf("default threshold: got %d terms, want 2", len(got))
	}
}

func TestAggregateSignalsExternalCodeIsNotATerm(t *testing.T) {
	signals := models.QuerySignals{
		ExternalCode: "8600097010115",
		Labels:       []string{"pill"},
	}
	got := AggregateSignals(signals, 0)
	want := []string{"pill"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AggregateSignals = %v, want %v", got, want)
	}
}

func TestAggregateSignalsEmpty(t *testing.T) {
	got := AggregateSignals(models.QuerySignals{}, 0)
	if len(got) != 0 {
		t.Errorf("empty signals produced terms: %v", got)
	}
}

func TestAggregateSignalsNormalizesOCRArtifacts(t *testing.T) {
	signals := models.QuerySignals{
		Texts: []models.RecognizedText{{Text: "ＡＳＰＩＲＩＮ", Confidence: 0.6}},
	}
	got := AggregateSignals(signals, 0)
	want := []string{"aspirin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AggregateSignals = %v, want %v", got, want)
	}
}
