package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"patient-record-service/internal/core/domain"
	"patient-record-service/internal/core/ports"

	"github.com/google/uuid"
)

// Compile-time check to ensure MockPatientRepository implements the port.
var _ ports.PatientRepository = (*MockPatientRepository)(nil)

// MockPatientRepository is a func-field mock of ports.PatientRepository.
type MockPatientRepository struct {
	CreateFunc     func(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Patient, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.Patient, error)
	ListFunc       func(ctx context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error)
	UpdateFunc     func(ctx context.Context, id uuid.UUID, cmd *domain.UpdatePatientCommand) (*domain.Patient, error)
	DeleteFunc     func(ctx context.Context, id uuid.UUID) (bool, error)
	AllFunc        func(ctx context.Context) ([]*domain.Patient, error)
	StatsFunc      func(ctx context.Context) (*domain.AgeGroupStats, error)

	GetByIDCallCount int32
	ListCallCount    int32
	StatsCallCount   int32
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, patient)
	}
	return nil, errors.New("CreateFunc not implemented in mock")
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Patient, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented in mock")
}

func (m *MockPatientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockPatientRepository) List(ctx context.Context, opts domain.ListPatientsOptions) (*domain.PagedPatients, error) {
	atomic.AddInt32(&m.ListCallCount, 1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, opts)
	}
	return nil, errors.New("ListFunc not implemented in mock")
}

func (m *MockPatientRepository) Update(ctx context.Context, id uuid.UUID, cmd *domain.UpdatePatientCommand) (*domain.Patient, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, cmd)
	}
	return nil, errors.New("UpdateFunc not implemented in mock")
}

func (m *MockPatientRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, errors.New("DeleteFunc not implemented in mock")
}

func (m *MockPatientRepository) All(ctx context.Context) ([]*domain.Patient, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	return nil, errors.New("AllFunc not implemented in mock")
}

func (m *MockPatientRepository) Stats(ctx context.Context) (*domain.AgeGroupStats, error) {
	atomic.AddInt32(&m.StatsCallCount, 1)
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return nil, errors.New("StatsFunc not implemented in mock")
}

var errCacheMiss = errors.New("cache miss")

// fakeCache is an in-memory CachePort substitute. TTLs are ignored; tests
// exercise key presence and invalidation, not expiry timing.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	if !ok {
		return nil, errCacheMiss
	}
	return value, nil
}

func (f *fakeCache) Set(key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) DeleteByPrefix(prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

var _ ports.CachePort = (*fakeCache)(nil)

// failingCache simulates a cache outage: every operation errors.
type failingCache struct{}

func (failingCache) Get(string) ([]byte, error)              { return nil, errors.New("connection refused") }
func (failingCache) Set(string, []byte, time.Duration) error { return errors.New("connection refused") }
func (failingCache) Delete(string) error                     { return errors.New("connection refused") }
func (failingCache) DeleteByPrefix(string) error             { return errors.New("connection refused") }

var _ ports.CachePort = failingCache{}

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{})  {}

var _ ports.LoggerPort = nopLogger{}
