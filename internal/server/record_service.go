// file: internal/server/record_service.go
// version: 1.1.0
// guid: 8950d313-55f5-4b5f-bdd4-d86059f04984

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/medication-identifier/internal/database"
	"github.com/jdfalk/medication-identifier/internal/metrics"
	"github.com/jdfalk/medication-identifier/internal/models"
)

// listRecords handles GET /api/records with pagination and search.
func (s *Server) listRecords(c *gin.Context) {
	params := ParsePaginationParams(c)

	var (
		records []models.Record
		err     error
	)
	if params.Search != "" {
		records, err = database.GlobalStore.SearchRecords(params.Search, params.Limit, params.Offset)
	} else {
		records, err = database.GlobalStore.GetAllRecords(params.Limit, params.Offset)
	}
	if err != nil {
		RespondWithInternalError(c, "failed to list records")
		return
	}

	total, err := database.GlobalStore.CountRecords()
	if err != nil {
		RespondWithInternalError(c, "failed to count records")
		return
	}

	c.JSON(http.StatusOK, NewListResponseWithTotal(records, len(records), params.Limit, params.Offset, total))
}

// getRecord handles GET /api/records/:id. A 13-or-more digit id is
// treated as an external code first, so scanners can resolve barcodes
// directly.
func (s *Server) getRecord(c *gin.Context) {
	id := c.Param("id")

	if ValidateRecordID(id) != nil {
		// Not a ULID; try external code lookup.
		rec, err := database.GlobalStore.GetRecordByCode(id)
		if err == nil {
			c.JSON(http.StatusOK, rec)
			return
		}
		RespondWithNotFound(c, "record", id)
		return
	}

	rec, err := database.GlobalStore.GetRecordByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "record", id)
			return
		}
		RespondWithInternalError(c, "failed to load record")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// createRecord handles POST /api/records.
func (s *Server) createRecord(c *gin.Context) {
	var rec models.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		RespondWithBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := ValidateRecordPayload(&rec); err != nil {
		RespondWithValidationError(c, "record", err.Error())
		return
	}

	created, err := database.GlobalStore.CreateRecord(&rec)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicateCode):
			RespondWithConflict(c, err.Error())
		case errors.Is(err, database.ErrInvalidRecord):
			RespondWithValidationError(c, "record", err.Error())
		default:
			RespondWithInternalError(c, "failed to create record")
		}
		return
	}

	if count, err := database.GlobalStore.CountRecords(); err == nil {
		metrics.SetRecords(count)
	}
	c.JSON(http.StatusCreated, created)
}

// updateRecord handles PUT /api/records/:id.
func (s *Server) updateRecord(c *gin.Context) {
	id := c.Param("id")
	if err := ValidateRecordID(id); err != nil {
		RespondWithValidationError(c, "id", err.Error())
		return
	}

	var rec models.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		RespondWithBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := ValidateRecordPayload(&rec); err != nil {
		RespondWithValidationError(c, "record", err.Error())
		return
	}

	updated, err := database.GlobalStore.UpdateRecord(id, &rec)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			RespondWithNotFound(c, "record", id)
		case errors.Is(err, database.ErrDuplicateCode):
			RespondWithConflict(c, err.Error())
		case errors.Is(err, database.ErrInvalidRecord):
			RespondWithValidationError(c, "record", err.Error())
		default:
			RespondWithInternalError(c, "failed to update record")
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// deleteRecord handles DELETE /api/records/:id.
func (s *Server) deleteRecord(c *gin.Context) {
	id := c.Param("id")
	if err := ValidateRecordID(id); err != nil {
		RespondWithValidationError(c, "id", err.Error())
		return
	}

	if err := database.GlobalStore.DeleteRecord(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "record", id)
			return
		}
		RespondWithInternalError(c, "failed to delete record")
		return
	}

	if count, err := database.GlobalStore.CountRecords(); err == nil {
		metrics.SetRecords(count)
	}
	c.JSON(http.StatusOK, DeleteResponse{Deleted: true, ID: id})
}

// suggestNames handles GET /api/suggest?q=.
func (s *Server) suggestNames(c *gin.Context) {
	query := c.Query("q")
	limit := ParseQueryInt(c, "limit", 0)

	names, err := s.completer.Suggest(query, limit)
	if err != nil {
		RespondWithInternalError(c, "failed to compute suggestions")
		return
	}
	c.JSON(http.StatusOK, SuggestResponse{Query: query, Suggestions: names})
}
