// file: internal/matcher/engine_test.go
// version: 1.0.0
// guid: cddc9615-3dc6-42f5-8bc9-3b3ba11ef118

package matcher

import (
	"testing"
	"time"

	"github.com/jdfalk/medication-identifier/internal/models"
)

func testCandidates() []models.Record {
	return []models.Record{
		{ID: "01", Name: "Aspirin", Metadata: &models.RecordMetadata{
			GenericName:  "Acetylsalicylic Acid",
			BrandNames:   []string{"Bayer"},
			ExternalCode: "8600097010115",
		}},
		{ID: "02", Name: "Ibuprofen", Metadata: &models.RecordMetadata{
			BrandNames: []string{"Advil", "Nurofen"},
		}},
		{ID: "03", Name: "Acetaminophen", Metadata: &models.RecordMetadata{
			BrandNames: []string{"Tylenol"},
		}},
	}
}

func TestIdentifySingleExactName(t *testing.T) {
	e := New(DefaultParams())
	signals := models.QuerySignals{
		Texts: []models.RecognizedText{{Text: "aspirin", Confidence: 0.9}},
	}
	got := e.Identify(signals, testCandidates())
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Record.Name != "Aspirin" {
		t.Errorf("top result = %s, want Aspirin", got[0].Record.Name)
	}
}

func TestIdentifyBrandNameMatch(t *testing.T) {
	e := New(DefaultParams())
	signals := models.QuerySignals{
		Texts: []models.RecognizedText{{Text: "advil", Confidence: 0.9}},
	}
	got := e.Identify(signals, testCandidates())
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Record.Name != "Ibuprofen" {
		t.Errorf("top result = %s, want Ibuprofen", got[0].Record.Name)
	}
	if got[0].Score <= 0.5 {
		t.Errorf("brand exact match score = %v, want > 0.5", got[0].Score)
	}
}

func TestIdentifyBarcodeShortcut(t *testing.T) {
	e := New(DefaultParams())
	signals := models.QuerySignals{
		ExternalCode: "8600097010115",
		// Contradictory text evidence must be ignored when the code hits.
		Texts: []models.RecognizedText{{Text: "tylenol", Confidence: 0.99}},
	}
	got := e.Identify(signals, testCandidates())
	if len(got) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(got))
	}
	if got[0].Record.Name != "Aspirin" {
		t.Errorf("shortcut result = %s, want Aspirin", got[0].Record.Name)
	}
	if got[0].Score != 1.0 {
		t.Errorf("shortcut score = %v, want 1.0", got[0].Score)
	}
}

func TestIdentifyBarcodeMissFallsThrough(t *testing.T) {
	e := New(DefaultParams())
	signals := models.QuerySignals{
		ExternalCode: "0000000000000",
		Texts:        []models.RecognizedText{{Text: "tylenol", Confidence: 0.9}},
	}
	got := e.Identify(signals, testCandidates())
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Record.Name != "Acetaminophen" {
		t.Errorf("fallthrough result = %s, want Acetaminophen", got[0].Record.Name)
	}
}

func TestIdentifyTypoTolerance(t *testing.T) {
	e := New(DefaultParams())
	signals := models.QuerySignals{
		Texts: []models.RecognizedText{{Text: "asprin", Confidence: 0.9}},
	}
	got := e.Identify(signals, testCandidates())
	if len(got) == 0 {
		t.Fatal("typo query returned no results")
	}
	if got[0].Record.Name != "Aspirin" {
		t.Errorf("top result = %s, want Aspirin", got[0].Record.Name)
	}
	if got[0].Score < 0.3 {
		t.Errorf("typo score = %v, want >= 0.3", got[0].Score)
	}
}

func TestIdentifyEmptyInputs(t *testing.T) {
	e := New(DefaultParams())
	if got := e.Identify(models.QuerySignals{}, testCandidates()); len(got) != 0 {
		t.Errorf("signals with no terms: got %d results, want 0", len(got))
	}
	signals := models.QuerySignals{Texts: []models.RecognizedText{{Text: "aspirin", Confidence: 0.9}}}
	if got := e.Identify(signals, nil); len(got) != 0 {
		t.Errorf("empty candidates: got %d results, want 0", len(got))
	}
}

func TestIdentifyResultLengthInvariant(t *testing.T) {
	p := DefaultParams()
	p.MinRelevance = 0
	e := New(p)
	signals := models.QuerySignals{
		Texts: []models.RecognizedText{{Text: "aspirin", Confidence: 0.9}},
		Color: "white",
	}
	var candidates []models.Record
	for i := 0; i < 30; i++ {
		candidates = append(candidates, models.Record{
			Name:     "Aspirin",
			Metadata: &models.RecordMetadata{Color: "white"},
		})
	}
	got := e.Identify(signals, candidates)
	if len(got) > p.MaxResults {
		t.Errorf("got %d results, want <= %d", len(got), p.MaxResults)
	}
	if len(got) > len(candidates) {
		t.Errorf("got %d results from %d candidates", len(got), len(candidates))
	}
}

func TestEngineScore(t *testing.T) {
	e := New(DefaultParams())
	rec := models.Record{Name: "Aspirin", Metadata: &models.RecordMetadata{BrandNames: []string{"Bayer"}}}

	if got := e.Score([]string{"aspirin"}, rec); !almostEqual(got, 1.0) {
		t.Errorf("Score = %v, want 1.0", got)
	}
	// Raw input is normalized before comparison.
	if got := e.Score([]string{"  ASPIRIN  "}, rec); !almostEqual(got, 1.0) {
		t.Errorf("Score with unnormalized input = %v, want 1.0", got)
	}
	if got := e.Score(nil, rec); got != 0 {
		t.Errorf("Score with no terms = %v, want 0", got)
	}
}

func TestEngineTermCacheTracksUpdates(t *testing.T) {
	e := New(DefaultParams())
	rec := models.Record{ID: "rec-1", Name: "Aspirin", UpdatedAt: time.Now()}

	if got := e.Score([]string{"aspirin"}, rec); !almostEqual(got, 1.0) {
		t.Fatalf("initial score = %v, want 1.0", got)
	}

	// A metadata edit bumps UpdatedAt, which must invalidate the cached
	// term set.
	rec.Name = "Ibuprofen"
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Second)
	if got := e.Score([]string{"aspirin"}, rec); got >= 1.0 {
		t.Errorf("score after rename = %v, want stale terms discarded", got)
	}
}
