// file: internal/models/record.go
// version: 1.1.0
// guid: 3fcbb2cf-3fa6-408b-b234-01ecb39c7a2f

package models

import "time"

// Record represents a stored medication with optional rich metadata.
// The ID is a ULID string assigned by the store and never changes for
// the lifetime of the record. Searchable terms are derived from the
// metadata on demand and never persisted.
type Record struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Metadata  *RecordMetadata `json:"metadata,omitempty" db:"-"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// RecordMetadata holds the optional structured fields of a medication.
// Absent fields are empty strings / nil slices and contribute nothing
// to the derived term set.
type RecordMetadata struct {
	GenericName      string   `json:"generic_name,omitempty" db:"generic_name"`
	BrandNames       []string `json:"brand_names,omitempty" db:"brand_names"`
	ActiveIngredient string   `json:"active_ingredient,omitempty" db:"active_ingredient"`
	Dosage           string   `json:"dosage,omitempty" db:"dosage"`
	Color            string   `json:"color,omitempty" db:"color"`
	Shape            string   `json:"shape,omitempty" db:"shape"`
	ExternalCode     string   `json:"external_code,omitempty" db:"external_code"`
	Notes            string   `json:"notes,omitempty" db:"notes"`
}

// Empty reports whether the metadata carries no information at all.
func (m RecordMetadata) Empty() bool {
	return m.GenericName == "" && len(m.BrandNames) == 0 &&
		m.ActiveIngredient == "" && m.Dosage == "" &&
		m.Color == "" && m.Shape == "" &&
		m.ExternalCode == "" && m.Notes == ""
}

// ExternalCode returns the record's external identifier (e.g. a barcode
// payload) or "" when no metadata is attached.
func (r *Record) ExternalCode() string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata.ExternalCode
}

// RecordListRequest represents pagination and filtering for record lists.
type RecordListRequest struct {
	Page   int    `json:"page" form:"page"`
	Limit  int    `json:"limit" form:"limit"`
	Search string `json:"search" form:"search"`
}

// RecordListResponse represents a paginated record list response.
type RecordListResponse struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Pages   int      `json:"pages"`
}
