// file: internal/database/pebble_store_test.go
// version: 1.1.0
// guid: 33407f66-3660-4377-a62f-1cbb6d8cacc8

package database

import (
	"errors"
	"testing"

	"github.com/jdfalk/medication-identifier/internal/models"
)

// setupPebbleTestDB creates a temporary PebbleDB store for testing
func setupPebbleTestDB(t *testing.T) Store {
	t.Helper()
	store, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create test Pebble database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(name, code string) *models.Record {
	return &models.Record{
		Name: name,
		Metadata: &models.RecordMetadata{
			GenericName:  "acetylsalicylic acid",
			BrandNames:   []string{"Bayer"},
			Dosage:       "500mg",
			Color:        "white",
			Shape:        "round",
			ExternalCode: code,
		},
	}
}

// TestNewPebbleStore tests Pebble store creation
func TestNewPebbleStore(t *testing.T) {
	store := setupPebbleTestDB(t)
	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

// TestPebbleCreateAndGetRecord tests basic record CRUD operations
func TestPebbleCreateAndGetRecord(t *testing.T) {
	store := setupPebbleTestDB(t)

	created, err := store.CreateRecord(testRecord("Aspirin", "8600097010115"))
	if err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected generated ULID for record ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set on create")
	}

	got, err := store.GetRecordByID(created.ID)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if got.Name != "Aspirin" {
		t.Errorf("Expected name 'Aspirin', got '%s'", got.Name)
	}
	if got.Metadata == nil || got.Metadata.GenericName != "acetylsalicylic acid" {
		t.Error("Expected metadata to round-trip")
	}
}

// TestPebbleGetRecordByCode tests the external code index
func TestPebbleGetRecordByCode(t *testing.T) {
	store := setupPebbleTestDB(t)

	created, err := store.CreateRecord(testRecord("Aspirin", "8600097010115"))
	if err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}

	got, err := store.GetRecordByCode("8600097010115")
	if err != nil {
		t.Fatalf("Failed to get record by code: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Expected record %s, got %s", created.ID, got.ID)
	}

	// Lookup is case-insensitive and trimmed.
	if _, err := store.GetRecordByCode("  8600097010115  "); err != nil {
		t.Errorf("Expected trimmed lookup to succeed, got %v", err)
	}

	if _, err := store.GetRecordByCode("0000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown code, got %v", err)
	}
	if _, err := store.GetRecordByCode(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for empty code, got %v", err)
	}
}

// TestPebbleDuplicateCode tests that external codes stay unique
func TestPebbleDuplicateCode(t *testing.T) {
	store := setupPebbleTestDB(t)

	if _, err := store.CreateRecord(testRecord("Aspirin", "8600097010115")); err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	_, err := store.CreateRecord(testRecord("Counterfeit", "8600097010115"))
	if !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("Expected ErrDuplicateCode, got %v", err)
	}
}

// TestPebbleUpdateRecord tests updates including code index maintenance
func TestPebbleUpdateRecord(t *testing.T) {
	store := setupPebbleTestDB(t)

	created, err := store.CreateRecord(testRecord("Aspirin", "8600097010115"))
	if err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}

	updated, err := store.UpdateRecord(created.ID, testRecord("Aspirin Forte", "1111111111111"))
	if err != nil {
		t.Fatalf("Failed to update record: %v", err)
	}
	if updated.Name != "Aspirin Forte" {
		t.Errorf("Expected updated name, got '%s'", updated.Name)
	}
	if updated.ID != created.ID {
		t.Error("Update must not change the record ID")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("Update must preserve CreatedAt")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Error("Update must refresh UpdatedAt")
	}

	// Old code index entry should be gone, new one present.
	if _, err := store.GetRecordByCode("8600097010115"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected old code index entry removed, got %v", err)
	}
	got, err := store.GetRecordByCode("1111111111111")
	if err != nil {
		t.Fatalf("Failed to get record by new code: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("New code points at record %s, want %s", got.ID, created.ID)
	}
}

// TestPebbleUpdateRecordDuplicateCode tests code collisions on update
func TestPebbleUpdateRecordDuplicateCode(t *testing.T) {
	store := setupPebbleTestDB(t)

	if _, err := store.CreateRecord(testRecord("Aspirin", "8600097010115")); err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	other, err := store.CreateRecord(testRecord("Ibuprofen", "2222222222222"))
	if err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}

	_, err = store.UpdateRecord(other.ID, testRecord("Ibuprofen", "8600097010115"))
	if !errors.Is(err, ErrDuplicateCode) {
		t.Errorf("Expected ErrDuplicateCode on update, got %v", err)
	}
}

// TestPebbleDeleteRecord tests deletion and index cleanup
func TestPebbleDeleteRecord(t *testing.T) {
	store := setupPebbleTestDB(t)

	created, err := store.CreateRecord(testRecord("Aspirin", "8600097010115"))
	if err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}

	if err := store.DeleteRecord(created.ID); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}
	if _, err := store.GetRecordByID(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if _, err := store.GetRecordByCode("8600097010115"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected code index cleared after delete, got %v", err)
	}

	if err := store.DeleteRecord(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

// TestPebbleGetAllRecords tests listing with pagination
func TestPebbleGetAllRecords(t *testing.T) {
	store := setupPebbleTestDB(t)

	names := []string{"Aspirin", "Ibuprofen", "Acetaminophen", "Amoxicillin"}
	for _, name := range names {
		if _, err := store.CreateRecord(&models.Record{Name: name}); err != nil {
			t.Fatalf("Failed to create record %s: %v", name, err)
		}
	}

	all, err := store.GetAllRecords(0, 0)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(all) != len(names) {
		t.Fatalf("Expected %d records, got %d", len(names), len(all))
	}

	page, err := store.GetAllRecords(2, 1)
	if err != nil {
		t.Fatalf("Failed to paginate records: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected page of 2, got %d", len(page))
	}
	// ULID order is creation order, so the page starts at the second record.
	if page[0].ID != all[1].ID {
		t.Errorf("Expected page to start at %s, got %s", all[1].ID, page[0].ID)
	}

	count, err := store.CountRecords()
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != len(names) {
		t.Errorf("Expected count %d, got %d", len(names), count)
	}
}

// TestPebbleCodeIndexExcludedFromScans tests that code index keys never
// leak into record listings
func TestPebbleCodeIndexExcludedFromScans(t *testing.T) {
	store := setupPebbleTestDB(t)

	if _, err := store.CreateRecord(testRecord("Aspirin", "8600097010115")); err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}

	all, err := store.GetAllRecords(0, 0)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected exactly 1 record in scan, got %d", len(all))
	}
	count, err := store.CountRecords()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}
}

// TestPebbleSearchRecords tests substring search over names and brands
func TestPebbleSearchRecords(t *testing.T) {
	store := setupPebbleTestDB(t)

	records := []*models.Record{
		{Name: "Aspirin", Metadata: &models.RecordMetadata{BrandNames: []string{"Bayer"}}},
		{Name: "Ibuprofen", Metadata: &models.RecordMetadata{BrandNames: []string{"Advil", "Nurofen"}}},
		{Name: "Acetaminophen", Metadata: &models.RecordMetadata{GenericName: "paracetamol"}},
	}
	for _, rec := range records {
		if _, err := store.CreateRecord(rec); err != nil {
			t.Fatalf("Failed to create record: %v", err)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"aspirin", 1},
		{"ASPIRIN", 1},
		{"advil", 1},
		{"paracetamol", 1},
		{"a", 3},
		{"xyz", 0},
		{"", 3},
	}
	for _, tc := range tests {
		got, err := store.SearchRecords(tc.query, 0, 0)
		if err != nil {
			t.Fatalf("Search %q failed: %v", tc.query, err)
		}
		if len(got) != tc.want {
			t.Errorf("Search %q: expected %d results, got %d", tc.query, tc.want, len(got))
		}
	}
}

// TestPebbleValidateRecord tests rejection of invalid records
func TestPebbleValidateRecord(t *testing.T) {
	store := setupPebbleTestDB(t)

	if _, err := store.CreateRecord(nil); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Expected ErrInvalidRecord for nil record, got %v", err)
	}
	if _, err := store.CreateRecord(&models.Record{Name: "   "}); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Expected ErrInvalidRecord for blank name, got %v", err)
	}
}

// TestPebbleReset tests wiping the store
func TestPebbleReset(t *testing.T) {
	store := setupPebbleTestDB(t)

	if _, err := store.CreateRecord(testRecord("Aspirin", "8600097010115")); err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("Failed to reset store: %v", err)
	}
	count, err := store.CountRecords()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty store after reset, got %d records", count)
	}
	if _, err := store.GetRecordByCode("8600097010115"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected code index cleared after reset, got %v", err)
	}
}
