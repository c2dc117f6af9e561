// file: internal/server/session_service.go
// version: 1.1.0
// guid: 564217e1-570f-4fdf-8b58-93ab9f623cf4

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/medication-identifier/internal/database"
	"github.com/jdfalk/medication-identifier/internal/metrics"
	"github.com/jdfalk/medication-identifier/internal/models"
	"github.com/jdfalk/medication-identifier/internal/session"
)

// SessionEventRequest is the body for POST /api/sessions/:id/events.
type SessionEventRequest struct {
	Event string `json:"event"`
}

// createSession handles POST /api/sessions.
func (s *Server) createSession(c *gin.Context) {
	sess, err := s.sessions.Create()
	if err != nil {
		RespondWithInternalError(c, "failed to create session")
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{ID: sess.ID, State: string(sess.State())})
}

// getSession handles GET /api/sessions/:id.
func (s *Server) getSession(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		RespondWithNotFound(c, "session", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: sess.ID, State: string(sess.State())})
}

// sessionEvent handles POST /api/sessions/:id/events.
func (s *Server) sessionEvent(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		RespondWithNotFound(c, "session", c.Param("id"))
		return
	}

	var req SessionEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := sess.Apply(session.Event(req.Event)); err != nil {
		if errors.Is(err, session.ErrInvalidTransition) {
			RespondWithConflict(c, err.Error())
			return
		}
		RespondWithInternalError(c, "failed to apply event")
		return
	}

	s.sessions.Touch(sess.ID)
	c.JSON(http.StatusOK, SessionResponse{ID: sess.ID, State: string(sess.State())})
}

// sessionSignals handles POST /api/sessions/:id/signals. Signals
// accumulate on the session while it is capturing.
func (s *Server) sessionSignals(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		RespondWithNotFound(c, "session", c.Param("id"))
		return
	}

	var signals models.QuerySignals
	if err := c.ShouldBindJSON(&signals); err != nil {
		RespondWithBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := sess.AddSignals(signals); err != nil {
		if errors.Is(err, session.ErrInvalidTransition) {
			RespondWithConflict(c, err.Error())
			return
		}
		RespondWithValidationError(c, "signals", err.Error())
		return
	}

	s.sessions.Touch(sess.ID)
	c.JSON(http.StatusOK, SessionResponse{ID: sess.ID, State: string(sess.State())})
}

// sessionIdentify handles POST /api/sessions/:id/identify: stops the
// session, runs identification over its accumulated signals, and
// discards the session. Signals never outlive the attempt.
func (s *Server) sessionIdentify(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		RespondWithNotFound(c, "session", c.Param("id"))
		return
	}

	if sess.State() != session.StateStopped {
		if err := sess.Apply(session.EventStop); err != nil {
			RespondWithConflict(c, err.Error())
			return
		}
	}

	signals := sess.Signals()
	s.sessions.Remove(sess.ID)

	if signals.Empty() {
		metrics.IncIdentify("empty")
		c.JSON(http.StatusOK, IdentifyResponse{Results: []models.ScoredRecord{}})
		return
	}

	start := time.Now()
	candidates, err := database.GlobalStore.GetAllRecords(0, 0)
	if err != nil {
		metrics.IncIdentify("error")
		RespondWithInternalError(c, "failed to load candidate records")
		return
	}

	results := s.engine.Identify(signals, candidates)
	outcome := "matched"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.IncIdentify(outcome)
	metrics.AddCandidatesScored(len(candidates))
	metrics.ObserveIdentifyDuration(outcome, time.Since(start))

	c.JSON(http.StatusOK, IdentifyResponse{Results: results})
}
