// file: internal/database/mock_store.go
// version: 1.1.0
// guid: 9e0ac079-2cc1-4686-841d-fb25d87de89f

package database

import (
	"github.com/jdfalk/medication-identifier/internal/models"
)

// MockStore is a simple mock implementation for testing services.
// Unset funcs fall back to ErrNotFound / empty results.
type MockStore struct {
	GetAllRecordsFunc   func(limit, offset int) ([]models.Record, error)
	GetRecordByIDFunc   func(id string) (*models.Record, error)
	GetRecordByCodeFunc func(code string) (*models.Record, error)
	CreateRecordFunc    func(rec *models.Record) (*models.Record, error)
	UpdateRecordFunc    func(id string, rec *models.Record) (*models.Record, error)
	DeleteRecordFunc    func(id string) error
	SearchRecordsFunc   func(query string, limit, offset int) ([]models.Record, error)
	CountRecordsFunc    func() (int, error)

	// Lifecycle
	CloseFunc func() error
	ResetFunc func() error
}

func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockStore) Reset() error {
	if m.ResetFunc != nil {
		return m.ResetFunc()
	}
	return nil
}

func (m *MockStore) GetAllRecords(limit, offset int) ([]models.Record, error) {
	if m.GetAllRecordsFunc != nil {
		return m.GetAllRecordsFunc(limit, offset)
	}
	return []models.Record{}, nil
}

func (m *MockStore) GetRecordByID(id string) (*models.Record, error) {
	if m.GetRecordByIDFunc != nil {
		return m.GetRecordByIDFunc(id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetRecordByCode(code string) (*models.Record, error) {
	if m.GetRecordByCodeFunc != nil {
		return m.GetRecordByCodeFunc(code)
	}
	return nil, ErrNotFound
}

func (m *MockStore) CreateRecord(rec *models.Record) (*models.Record, error) {
	if m.CreateRecordFunc != nil {
		return m.CreateRecordFunc(rec)
	}
	return rec, nil
}

func (m *MockStore) UpdateRecord(id string, rec *models.Record) (*models.Record, error) {
	if m.UpdateRecordFunc != nil {
		return m.UpdateRecordFunc(id, rec)
	}
	return rec, nil
}

func (m *MockStore) DeleteRecord(id string) error {
	if m.DeleteRecordFunc != nil {
		return m.DeleteRecordFunc(id)
	}
	return nil
}

func (m *MockStore) SearchRecords(query string, limit, offset int) ([]models.Record, error) {
	if m.SearchRecordsFunc != nil {
		return m.SearchRecordsFunc(query, limit, offset)
	}
	return []models.Record{}, nil
}

func (m *MockStore) CountRecords() (int, error) {
	if m.CountRecordsFunc != nil {
		return m.CountRecordsFunc()
	}
	return 0, nil
}
