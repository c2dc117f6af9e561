// file: internal/server/validators.go
// version: 1.1.0
// guid: 1dd73263-e530-4569-a35b-9a2b0e6ebfa3

package server

import (
	"fmt"
	"strings"

	ulid "github.com/oklog/ulid/v2"

	"github.com/jdfalk/medication-identifier/internal/models"
)

// ValidateRecordID rejects IDs that are not well-formed ULIDs before
// they reach the store.
func ValidateRecordID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("record id is required")
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		return fmt.Errorf("record id %q is not a valid ULID", id)
	}
	return nil
}

// ValidateRecordPayload enforces the record contract at the API
// boundary: non-empty display name, trimmed fields.
func ValidateRecordPayload(rec *models.Record) error {
	if rec == nil {
		return fmt.Errorf("record body is required")
	}
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return fmt.Errorf("name is required")
	}
	if rec.Metadata != nil {
		rec.Metadata.ExternalCode = strings.TrimSpace(rec.Metadata.ExternalCode)
	}
	return nil
}

// ValidateSignals rejects malformed signal bundles (confidence outside
// [0, 1]) before they reach the matcher.
func ValidateSignals(signals models.QuerySignals) error {
	return signals.Validate()
}
