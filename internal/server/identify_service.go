// file: internal/server/identify_service.go
// version: 1.1.0
// guid: f24a5d91-02a9-49ab-abe4-915dbb04de3b

package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/medication-identifier/internal/database"
	"github.com/jdfalk/medication-identifier/internal/matcher"
	"github.com/jdfalk/medication-identifier/internal/metrics"
	"github.com/jdfalk/medication-identifier/internal/models"
)

// IdentifyRequest is the body for POST /api/identify.
type IdentifyRequest struct {
	Signals models.QuerySignals `json:"signals"`
	// CandidateIDs restricts matching to the named records. When empty
	// the whole store is considered.
	CandidateIDs []string `json:"candidate_ids,omitempty"`
	// UseAI asks the server to run raw text fragments through the
	// OpenAI suggester before matching. Ignored when AI is disabled.
	UseAI bool `json:"use_ai,omitempty"`
}

// ScoreRequest is the body for POST /api/score.
type ScoreRequest struct {
	RecordID string   `json:"record_id"`
	Terms    []string `json:"terms"`
}

// identify runs the full identification pipeline over the store, or
// over an explicit candidate set when the request names one.
func (s *Server) identify(c *gin.Context) {
	var req IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := ValidateSignals(req.Signals); err != nil {
		RespondWithValidationError(c, "signals", err.Error())
		return
	}

	start := time.Now()

	if req.UseAI && s.suggester.IsEnabled() && len(req.Signals.Texts) > 0 {
		s.enrichWithAITerms(c.Request.Context(), &req.Signals)
	}

	if req.Signals.Empty() {
		metrics.IncIdentify("empty")
		c.JSON(http.StatusOK, IdentifyResponse{Results: []models.ScoredRecord{}})
		return
	}

	var candidates []models.Record
	if len(req.CandidateIDs) > 0 {
		for _, id := range req.CandidateIDs {
			if err := ValidateRecordID(id); err != nil {
				RespondWithValidationError(c, "candidate_ids", err.Error())
				return
			}
			rec, err := database.GlobalStore.GetRecordByID(id)
			if err != nil {
				if err == database.ErrNotFound {
					RespondWithNotFound(c, "record", id)
					return
				}
				metrics.IncIdentify("error")
				RespondWithInternalError(c, "failed to load candidate records")
				return
			}
			candidates = append(candidates, *rec)
		}
	} else {
		all, err := database.GlobalStore.GetAllRecords(0, 0)
		if err != nil {
			metrics.IncIdentify("error")
			RespondWithInternalError(c, "failed to load candidate records")
			return
		}
		candidates = all
	}

	results := s.engine.Identify(req.Signals, candidates)
	barcode := len(results) == 1 && results[0].Score == 1.0 &&
		matcher.NormalizeTerm(req.Signals.ExternalCode) != "" &&
		matcher.NormalizeTerm(results[0].Record.ExternalCode()) == matcher.NormalizeTerm(req.Signals.ExternalCode)

	outcome := "matched"
	switch {
	case barcode:
		outcome = "barcode"
	case len(results) == 0:
		outcome = "empty"
	}
	metrics.IncIdentify(outcome)
	metrics.AddCandidatesScored(len(candidates))
	metrics.ObserveIdentifyDuration(outcome, time.Since(start))

	c.JSON(http.StatusOK, IdentifyResponse{Results: results, Barcode: barcode})
}

// scoreRecord scores one stored record against raw query terms.
func (s *Server) scoreRecord(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := ValidateRecordID(req.RecordID); err != nil {
		RespondWithValidationError(c, "record_id", err.Error())
		return
	}

	rec, err := database.GlobalStore.GetRecordByID(req.RecordID)
	if err != nil {
		if err == database.ErrNotFound {
			RespondWithNotFound(c, "record", req.RecordID)
			return
		}
		RespondWithInternalError(c, "failed to load record")
		return
	}

	score := s.engine.Score(req.Terms, *rec)
	c.JSON(http.StatusOK, ScoreResponse{RecordID: rec.ID, Score: score})
}

// enrichWithAITerms asks the OpenAI suggester to clean up raw OCR
// fragments; failures degrade to matching without AI terms.
func (s *Server) enrichWithAITerms(ctx context.Context, signals *models.QuerySignals) {
	fragments := make([]string, 0, len(signals.Texts))
	for _, t := range signals.Texts {
		fragments = append(fragments, t.Text)
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	suggested, err := s.suggester.SuggestTerms(ctx, fragments)
	if err != nil {
		metrics.IncAISuggestion("error")
		log.Printf("[WARN] AI term suggestion failed: %v", err)
		return
	}
	metrics.IncAISuggestion("ok")
	signals.AITerms = append(signals.AITerms, suggested.Terms...)
}
