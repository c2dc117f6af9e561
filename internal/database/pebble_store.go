// file: internal/database/pebble_store.go
// version: 1.1.0
// guid: 7e37b273-7898-4906-936a-194dd32d56e1

package database

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble/v2"

	"github.com/jdfalk/medication-identifier/internal/models"
)

// PebbleStore implements the Store interface using PebbleDB (LSM
// key-value store).
//
// Key Schema:
// - record:<ulid>       -> Record JSON
// - record:code:<code>  -> record_id (external code lookup index)
//
// ULIDs contain only digits and uppercase letters, so entity keys sort
// strictly below the "record:code:" index keys and range scans can
// exclude the index by upper bound alone.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore creates a new PebbleDB store.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the database.
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

// Reset removes every record and index entry.
func (p *PebbleStore) Reset() error {
	return p.db.DeleteRange([]byte("record:"), []byte("record;"), pebble.Sync)
}

func recordKey(id string) []byte {
	return []byte("record:" + id)
}

func codeKey(code string) []byte {
	return []byte("record:code:" + strings.ToLower(strings.TrimSpace(code)))
}

// recordBounds covers entity keys only: '[' is the byte after 'Z', so
// "record:code:..." falls outside the range.
func recordBounds() *pebble.IterOptions {
	return &pebble.IterOptions{
		LowerBound: []byte("record:0"),
		UpperBound: []byte("record:["),
	}
}

func (p *PebbleStore) getRecord(id string) (*models.Record, error) {
	value, closer, err := p.db.Get(recordKey(id))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var rec models.Record
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetAllRecords returns records in ULID (creation) order.
func (p *PebbleStore) GetAllRecords(limit, offset int) ([]models.Record, error) {
	iter, err := p.db.NewIter(recordBounds())
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	records := []models.Record{}
	skipped := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(records) >= limit {
			break
		}
		var rec models.Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}

func (p *PebbleStore) GetRecordByID(id string) (*models.Record, error) {
	return p.getRecord(id)
}

func (p *PebbleStore) GetRecordByCode(code string) (*models.Record, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrNotFound
	}
	value, closer, err := p.db.Get(codeKey(code))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	id := string(value)
	closer.Close()
	return p.getRecord(id)
}

func (p *PebbleStore) CreateRecord(rec *models.Record) (*models.Record, error) {
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	created := *rec
	if created.ID == "" {
		id, err := newULID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate record ID: %w", err)
		}
		created.ID = id
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if code := created.ExternalCode(); code != "" {
		if existing, err := p.GetRecordByCode(code); err == nil && existing.ID != created.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
	}

	data, err := json.Marshal(created)
	if err != nil {
		return nil, err
	}
	batch := p.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(recordKey(created.ID), data, nil); err != nil {
		return nil, err
	}
	if code := created.ExternalCode(); code != "" {
		if err := batch.Set(codeKey(code), []byte(created.ID), nil); err != nil {
			return nil, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *PebbleStore) UpdateRecord(id string, rec *models.Record) (*models.Record, error) {
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	existing, err := p.getRecord(id)
	if err != nil {
		return nil, err
	}

	updated := *rec
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	newCode := updated.ExternalCode()
	if newCode != "" {
		if other, err := p.GetRecordByCode(newCode); err == nil && other.ID != id {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, newCode)
		}
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return nil, err
	}
	batch := p.db.NewBatch()
	defer batch.Close()
	if oldCode := existing.ExternalCode(); oldCode != "" && oldCode != newCode {
		if err := batch.Delete(codeKey(oldCode), nil); err != nil {
			return nil, err
		}
	}
	if err := batch.Set(recordKey(id), data, nil); err != nil {
		return nil, err
	}
	if newCode != "" {
		if err := batch.Set(codeKey(newCode), []byte(id), nil); err != nil {
			return nil, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (p *PebbleStore) DeleteRecord(id string) error {
	existing, err := p.getRecord(id)
	if err != nil {
		return err
	}
	batch := p.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(recordKey(id), nil); err != nil {
		return err
	}
	if code := existing.ExternalCode(); code != "" {
		if err := batch.Delete(codeKey(code), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (p *PebbleStore) SearchRecords(query string, limit, offset int) ([]models.Record, error) {
	iter, err := p.db.NewIter(recordBounds())
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	records := []models.Record{}
	skipped := 0
	for iter.First(); iter.Valid(); iter.Next() {
		var rec models.Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, err
		}
		if !matchesSearch(rec, query) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(records) >= limit {
			break
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}

func (p *PebbleStore) CountRecords() (int, error) {
	iter, err := p.db.NewIter(recordBounds())
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	return count, iter.Error()
}
