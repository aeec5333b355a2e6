package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
)

func (s *Store) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[code]
	if !ok {
		return nil, apperrors.NewNotFoundError("account " + code + " not found")
	}
	return &acc, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Code]; exists {
		return fmt.Errorf("account %s: %w", account.Code, apperrors.ErrDuplicate)
	}
	s.accounts[account.Code] = account
	s.accountIDs[account.AccountID] = account.Code
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[account.Code]
	if !ok {
		return apperrors.NewNotFoundError("account " + account.Code + " not found")
	}
	existing.Name = account.Name
	existing.IsActive = account.IsActive
	existing.LastUpdatedAt = account.LastUpdatedAt
	existing.LastUpdatedBy = account.LastUpdatedBy
	s.accounts[account.Code] = existing
	return nil
}
