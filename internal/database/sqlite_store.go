// file: internal/database/sqlite_store.go
// version: 1.1.0
// guid: 453a5f3b-8a07-49c3-a80b-ef489620942c

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jdfalk/medication-identifier/internal/models"
)

// SQLiteStore implements the Store interface using SQLite3. It is
// opt-in: cgo makes cross-compilation painful, so PebbleDB is the
// default and this backend sits behind a safety flag.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) a SQLite store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) createTables() error {
	// Brand names are stored as a JSON array; everything else is flat.
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS records (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            generic_name TEXT NOT NULL DEFAULT '',
            brand_names TEXT NOT NULL DEFAULT '[]',
            active_ingredient TEXT NOT NULL DEFAULT '',
            dosage TEXT NOT NULL DEFAULT '',
            color TEXT NOT NULL DEFAULT '',
            shape TEXT NOT NULL DEFAULT '',
            external_code TEXT NOT NULL DEFAULT '',
            notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )
    `)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_records_external_code
        ON records(external_code) WHERE external_code != ''
    `)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Reset removes all records.
func (s *SQLiteStore) Reset() error {
	_, err := s.db.Exec(`DELETE FROM records`)
	return err
}

const recordColumns = `id, name, generic_name, brand_names, active_ingredient,
	dosage, color, shape, external_code, notes, created_at, updated_at`

func scanRecord(row interface{ Scan(dest ...any) error }) (*models.Record, error) {
	var rec models.Record
	var md models.RecordMetadata
	var brands string
	err := row.Scan(&rec.ID, &rec.Name, &md.GenericName, &brands, &md.ActiveIngredient,
		&md.Dosage, &md.Color, &md.Shape, &md.ExternalCode, &md.Notes,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if brands != "" && brands != "[]" {
		if err := json.Unmarshal([]byte(brands), &md.BrandNames); err != nil {
			return nil, fmt.Errorf("corrupt brand_names for record %s: %w", rec.ID, err)
		}
	}
	if !md.Empty() {
		mdCopy := md
		rec.Metadata = &mdCopy
	}
	return &rec, nil
}

func metadataFields(rec *models.Record) (models.RecordMetadata, string, error) {
	md := models.RecordMetadata{}
	if rec.Metadata != nil {
		md = *rec.Metadata
	}
	brands := "[]"
	if len(md.BrandNames) > 0 {
		b, err := json.Marshal(md.BrandNames)
		if err != nil {
			return md, "", err
		}
		brands = string(b)
	}
	return md, brands, nil
}

func (s *SQLiteStore) GetAllRecords(limit, offset int) ([]models.Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.Query(
		`SELECT `+recordColumns+` FROM records ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]models.Record, error) {
	records := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) GetRecordByID(id string) (*models.Record, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

func (s *SQLiteStore) GetRecordByCode(code string) (*models.Record, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRow(
		`SELECT `+recordColumns+` FROM records WHERE LOWER(external_code) = ?`, code,
	)
	return scanRecord(row)
}

func (s *SQLiteStore) CreateRecord(rec *models.Record) (*models.Record, error) {
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

	md, brands, err := metadataFields(&created)
	if err != nil {
		return nil, err
	}
	if md.ExternalCode != "" {
		if existing, err := s.GetRecordByCode(md.ExternalCode); err == nil && existing.ID != created.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, md.ExternalCode)
		}
	}

	_, err = s.db.Exec(
		`INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.Name, md.GenericName, brands, md.ActiveIngredient,
		md.Dosage, md.Color, md.Shape, md.ExternalCode, md.Notes,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *SQLiteStore) UpdateRecord(id string, rec *models.Record) (*models.Record, error) {
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	existing, err := s.GetRecordByID(id)
	if err != nil {
		return nil, err
	}

	updated := *rec
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	md, brands, err := metadataFields(&updated)
	if err != nil {
		return nil, err
	}
	if md.ExternalCode != "" {
		if other, err := s.GetRecordByCode(md.ExternalCode); err == nil && other.ID != id {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, md.ExternalCode)
		}
	}

	_, err = s.db.Exec(
		`UPDATE records SET name = ?, generic_name = ?, brand_names = ?,
			active_ingredient = ?, dosage = ?, color = ?, shape = ?,
			external_code = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		updated.Name, md.GenericName, brands, md.ActiveIngredient,
		md.Dosage, md.Color, md.Shape, md.ExternalCode, md.Notes,
		updated.UpdatedAt, id,
	)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *SQLiteStore) DeleteRecord(id string) error {
	res, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SearchRecords(query string, limit, offset int) ([]models.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	// brand_names is a JSON array; LIKE over its text form is good
	// enough for a substring search.
	q := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := s.db.Query(
		`SELECT `+recordColumns+` FROM records
		 WHERE LOWER(name) LIKE ? OR LOWER(generic_name) LIKE ? OR LOWER(brand_names) LIKE ?
		 ORDER BY id LIMIT ? OFFSET ?`,
		q, q, q, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *SQLiteStore) CountRecords() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&count)
	return count, err
}
