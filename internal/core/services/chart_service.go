package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/dto"
	"github.com/google/uuid"
)

type chartService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewChartService creates the chart-of-accounts service.
func NewChartService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.ChartSvcFacade {
	return &chartService{accountRepo: accountRepo}
}

var _ portssvc.ChartSvcFacade = (*chartService)(nil)

func (s *chartService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to get account", slog.String("code", code))
		return nil, fmt.Errorf("failed to get account %s: %w", code, err)
	}
	return account, nil
}

func (s *chartService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *chartService) Snapshot(ctx context.Context) (domain.Chart, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewChart(accounts), nil
}

// SeedChart creates missing accounts. Existing codes are left untouched, so it is safe
// to run on every deploy.
func (s *chartService) SeedChart(ctx context.Context, accounts []domain.Account, actor string) (int, error) {
	now := time.Now().UTC()
	created := 0

	for _, acc := range accounts {
		if acc.Code == "" || strings.TrimSpace(acc.Name) == "" {
			return created, apperrors.NewValidationError("account code and name are required")
		}
		if !acc.AccountType.Valid() {
			return created, apperrors.NewValidationError(fmt.Sprintf("account %s has invalid type %q", acc.Code, acc.AccountType))
		}

		_, err := s.accountRepo.FindAccountByCode(ctx, acc.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return created, fmt.Errorf("failed to check account %s: %w", acc.Code, err)
		}

		acc.AccountID = uuid.NewString()
		acc.NormalBalance = domain.NormalBalanceFor(acc.AccountType)
		acc.IsActive = true
		acc.AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		}

		if err := s.accountRepo.SaveAccount(ctx, acc); err != nil {
			// another process seeded the same code first
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			s.LogError(ctx, err, "Failed to seed account", slog.String("code", acc.Code))
			return created, fmt.Errorf("failed to seed account %s: %w", acc.Code, err)
		}
		created++
	}

	s.LogInfo(ctx, "Chart of accounts seeded", slog.Int("created", created), slog.Int("requested", len(accounts)))
	return created, nil
}

func (s *chartService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, code)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("account name must not be empty")
		}
		account.Name = name
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = actor

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("code", code))
		return nil, fmt.Errorf("failed to update account %s: %w", code, err)
	}

	s.LogInfo(ctx, "Account updated",
		slog.String("code", code),
		slog.Bool("is_active", account.IsActive),
		slog.String("actor", actor))
	return account, nil
}
