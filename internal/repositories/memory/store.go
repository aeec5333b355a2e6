// Package memory is an in-process implementation of every repository port.
// It backs the service tests and STORAGE_DRIVER=memory for local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
)

type sourceKey struct {
	sourceType domain.SourceType
	sourceID   string
}

// Store keeps all ledger state in maps guarded by a single RWMutex.
// Values are copied on the way in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	accounts       map[string]domain.Account // by code
	accountIDs     map[string]string         // id -> code
	entries        map[string]domain.JournalEntry
	entryBySource  map[sourceKey]string
	outbox         map[string]domain.OutboxItem
	outboxBySource map[sourceKey]string
	sources        map[sourceKey]any
}

func New() *Store {
	return &Store{
		accounts:       make(map[string]domain.Account),
		accountIDs:     make(map[string]string),
		entries:        make(map[string]domain.JournalEntry),
		entryBySource:  make(map[sourceKey]string),
		outbox:         make(map[string]domain.OutboxItem),
		outboxBySource: make(map[sourceKey]string),
		sources:        make(map[sourceKey]any),
	}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.OutboxRepositoryFacade  = (*Store)(nil)
	_ portsrepo.ReportingRepository     = (*Store)(nil)
	_ portsrepo.SourceLoader            = (*Store)(nil)
)

// NewRepositoryProvider wires one Store behind every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   store,
		JournalRepo:   store,
		OutboxRepo:    store,
		ReportingRepo: store,
		SourceLoader:  store,
	}
}

// PutSource records an origin row, standing in for the producer-owned tables.
func (s *Store) PutSource(sourceType domain.SourceType, sourceID string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[sourceKey{sourceType, sourceID}] = payload
}

// DeleteSource removes an origin row.
func (s *Store) DeleteSource(sourceType domain.SourceType, sourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, sourceKey{sourceType, sourceID})
}

func (s *Store) LoadSource(_ context.Context, sourceType domain.SourceType, sourceID string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.sources[sourceKey{sourceType, sourceID}]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", sourceType, sourceID))
	}
	return payload, nil
}
