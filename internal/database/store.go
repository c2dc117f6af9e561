// file: internal/database/store.go
// version: 1.2.0
// guid: 271fc122-0133-4572-ad8b-870f9835e26c

package database

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"github.com/jdfalk/medication-identifier/internal/models"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrDuplicateCode = errors.New("external code already in use")
)

// Store defines the interface for medication record persistence.
// This abstraction allows us to support both PebbleDB (default) and
// SQLite3 (opt-in).
type Store interface {
	// Lifecycle
	Close() error
	Reset() error

	// Records
	GetAllRecords(limit, offset int) ([]models.Record, error)
	GetRecordByID(id string) (*models.Record, error) // ID is ULID string
	GetRecordByCode(code string) (*models.Record, error)
	CreateRecord(rec *models.Record) (*models.Record, error) // Generates ULID if ID is empty
	UpdateRecord(id string, rec *models.Record) (*models.Record, error)
	DeleteRecord(id string) error
	SearchRecords(query string, limit, offset int) ([]models.Record, error)
	CountRecords() (int, error)
}

// GlobalStore is the active store instance, set by InitializeStore.
var GlobalStore Store

// InitializeStore opens the configured store implementation and assigns
// it to GlobalStore. SQLite requires the explicit safety flag.
func InitializeStore(dbType, dbPath string, enableSQLite bool) error {
	switch dbType {
	case "sqlite", "sqlite3":
		if !enableSQLite {
			return fmt.Errorf("SQLite support requires --enable-sqlite3-i-know-the-risks")
		}
		store, err := NewSQLiteStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open SQLite store: %w", err)
		}
		GlobalStore = store
	case "", "pebble":
		store, err := NewPebbleStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open Pebble store: %w", err)
		}
		GlobalStore = store
	default:
		return fmt.Errorf("unknown database type %q", dbType)
	}
	return nil
}

// CloseStore closes GlobalStore if one is open.
func CloseStore() {
	if GlobalStore == nil {
		return
	}
	if err := GlobalStore.Close(); err != nil {
		log.Printf("[WARN] error closing store: %v", err)
	}
	GlobalStore = nil
}

// newULID returns a fresh ULID string for record IDs.
func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// validateRecord enforces the boundary contract before anything is
// persisted: a record must have a non-empty display name, since the
// derived term set must never be empty.
func validateRecord(rec *models.Record) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("%w: display name is required", ErrInvalidRecord)
	}
	return nil
}

// matchesSearch reports whether a record matches a case-insensitive
// substring query over its name, generic name, and brand names.
func matchesSearch(rec models.Record, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Name), q) {
		return true
	}
	if rec.Metadata == nil {
		return false
	}
	if strings.Contains(strings.ToLower(rec.Metadata.GenericName), q) {
		return true
	}
	for _, b := range rec.Metadata.BrandNames {
		if strings.Contains(strings.ToLower(b), q) {
			return true
		}
	}
	return false
}
