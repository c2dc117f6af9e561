// file: internal/server/response_types.go
// version: 1.1.0
// guid: 25e5bed1-0288-4e09-9942-25999ca44a08

package server

import "github.com/jdfalk/medication-identifier/internal/models"

// ListResponse provides a consistent format for paginated list responses
type ListResponse struct {
	Items  any `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// MessageResponse provides a consistent format for status messages
type MessageResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// DeleteResponse provides a consistent format for deletion responses
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// HealthResponse provides a consistent format for health check responses
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// IdentifyResponse carries ranked matches for one identification attempt
type IdentifyResponse struct {
	Results []models.ScoredRecord `json:"results"`
	// Barcode is true when an exact external-code match short-circuited
	// the ranking pipeline.
	Barcode bool `json:"barcode"`
}

// ScoreResponse carries the raw relevance of one record
type ScoreResponse struct {
	RecordID string  `json:"record_id"`
	Score    float64 `json:"score"`
}

// SuggestResponse carries typeahead completions
type SuggestResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

// SessionResponse describes a capture session
type SessionResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// PaginationParams holds common pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
	Search string
}

// NewListResponse creates a new ListResponse with pagination info
func NewListResponse(items any, count int, limit int, offset int) *ListResponse {
	return &ListResponse{
		Items:  items,
		Count:  count,
		Limit:  limit,
		Offset: offset,
		Total:  count,
	}
}

// NewListResponseWithTotal creates a new ListResponse with a distinct total
func NewListResponseWithTotal(items any, count int, limit int, offset int, total int) *ListResponse {
	return &ListResponse{
		Items:  items,
		Count:  count,
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}
}
