package businessflow_test

import (
	"context"
	"sync"

	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	"github.com/amirphl/dispupr-numbering/repository"
	testingutil "github.com/amirphl/dispupr-numbering/testing"
)

type flows struct {
	counters repository.CounterRepository
	bast     businessflow.BastFlow
	contract businessflow.ContractFlow
	counter  businessflow.CounterFlow
}

func newFlows(testDB *testingutil.TestDB, store businessflow.IdempotencyStore) flows {
	counterRepo := repository.NewCounterRepository(testDB.DB)
	generator := businessflow.NewGenerator(counterRepo)
	return flows{
		counters: counterRepo,
		bast:     businessflow.NewBastFlow(repository.NewBastRecordRepository(testDB.DB), generator, store, testDB.DB),
		contract: businessflow.NewContractFlow(repository.NewContractRecordRepository(testDB.DB), generator, store, testDB.DB),
		counter:  businessflow.NewCounterFlow(counterRepo),
	}
}

// memoryIdempotencyStore mirrors the redis store semantics in process
type memoryIdempotencyStore struct {
	mu      sync.Mutex
	locks   map[string]bool
	results map[string][]byte
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{
		locks:   make(map[string]bool),
		results: make(map[string][]byte),
	}
}

func (s *memoryIdempotencyStore) Begin(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bs, ok := s.results[key]; ok {
		return bs, false, nil
	}
	if s.locks[key] {
		return nil, false, nil
	}
	s.locks[key] = true
	return nil, true, nil
}

func (s *memoryIdempotencyStore) Complete(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = payload
	delete(s.locks, key)
	return nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

func (s *memoryIdempotencyStore) hold(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[key] = true
}
