package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/autoledger/internal/apperrors"
	"github.com/SscSPs/autoledger/internal/core/domain"
	portsrepo "github.com/SscSPs/autoledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SourceLoader ---
type MockSourceLoader struct {
	mock.Mock
}

var _ portsrepo.SourceLoader = (*MockSourceLoader)(nil)

func (m *MockSourceLoader) LoadSource(ctx context.Context, sourceType domain.SourceType, sourceID string) (any, error) {
	args := m.Called(ctx, sourceType, sourceID)
	return args.Get(0), args.Error(1)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Test Suite Setup ---
type OutboxServiceTestSuite struct {
	suite.Suite
	env    *ledgerEnv
	clock  *testClock
	outbox portssvc.OutboxSvcFacade
	ctx    context.Context
}

func (s *OutboxServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.env = newLedgerEnv(s.T())
	s.clock = &testClock{now: time.Date(2025, 11, 15, 8, 0, 0, 0, time.UTC)}
	s.outbox = s.newOutbox(s.env.store)
}

func (s *OutboxServiceTestSuite) newOutbox(loader portsrepo.SourceLoader) portssvc.OutboxSvcFacade {
	return services.NewOutboxService(s.env.store, loader, s.env.poster,
		services.WithOutboxClock(s.clock.Now),
		services.WithOutboxConfig(services.OutboxConfig{MaxAttempts: 3, ProcessingTimeout: time.Minute}),
	)
}

func TestOutboxServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OutboxServiceTestSuite))
}

func (s *OutboxServiceTestSuite) item(sourceType domain.SourceType, sourceID string) domain.OutboxItem {
	items, _, err := s.outbox.ListItems(s.ctx, domain.OutboxFilter{SourceType: sourceType})
	s.Require().NoError(err)
	for _, it := range items {
		if it.SourceID == sourceID {
			return it
		}
	}
	s.FailNow("outbox item not found", "%s %s", sourceType, sourceID)
	return domain.OutboxItem{}
}

// --- Test Cases ---

func (s *OutboxServiceTestSuite) TestEnqueue_Idempotent() {
	first, err := s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")
	s.Require().NoError(err)
	s.Equal(domain.OutboxPending, first.Status)

	again, err := s.outbox.Enqueue(s.ctx, domain.SourcePosSale, " S-1 ")
	s.Require().NoError(err)
	s.Equal(first.ItemID, again.ItemID)

	stats, err := s.outbox.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats[domain.OutboxPending])

	// enqueueing never posts
	_, err = s.env.ledger.FindEntryBySource(s.ctx, domain.SourcePosSale, "S-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *OutboxServiceTestSuite) TestEnqueue_Rejects() {
	_, err := s.outbox.Enqueue(s.ctx, "invoice", "X")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.outbox.Enqueue(s.ctx, domain.SourceReversal, "E-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "  ")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *OutboxServiceTestSuite) TestRunQueueSync_SaleAndRefund() {
	s.env.store.PutSource(domain.SourcePosSale, "S-1", cashSale("S-1"))
	s.env.store.PutSource(domain.SourcePosRefund, "R-1", cashRefund("R-1", "S-1"))
	_, err := s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")
	s.Require().NoError(err)
	s.clock.Advance(time.Second)
	_, err = s.outbox.Enqueue(s.ctx, domain.SourcePosRefund, "R-1")
	s.Require().NoError(err)

	res, err := s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(2, res.Claimed)
	s.Equal(2, res.Synced)
	s.Empty(res.Errors)

	sale := s.item(domain.SourcePosSale, "S-1")
	s.Equal(domain.OutboxSynced, sale.Status)
	s.NotNil(sale.SyncedAt)

	refund, err := s.env.ledger.FindEntryBySource(s.ctx, domain.SourcePosRefund, "R-1")
	s.Require().NoError(err)
	s.Equal("manager-1", refund.CreatedBy)

	// nothing left to claim
	res, err = s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Zero(res.Claimed)

	report, err := s.env.recon.TrialBalance(s.ctx, s.clock.Now())
	s.Require().NoError(err)
	s.True(report.Balanced)
}

func (s *OutboxServiceTestSuite) TestRunQueueSync_FiltersByKind() {
	s.env.store.PutSource(domain.SourcePosSale, "S-1", cashSale("S-1"))
	s.env.store.PutSource(domain.SourcePosRefund, "R-1", cashRefund("R-1", "S-1"))
	_, _ = s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")
	_, _ = s.outbox.Enqueue(s.ctx, domain.SourcePosRefund, "R-1")

	res, err := s.outbox.RunQueueSync(s.ctx, 10, domain.SourcePosRefund)
	s.Require().NoError(err)
	s.Equal(1, res.Claimed)
	s.Equal(domain.OutboxPending, s.item(domain.SourcePosSale, "S-1").Status)

	_, err = s.outbox.RunQueueSync(s.ctx, 10, "invoice")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *OutboxServiceTestSuite) TestRunQueueSync_AlreadyPostedIsSynced() {
	// the ledger committed but the worker died before marking the item
	posted, err := s.env.poster.Post(s.ctx, domain.SourcePosSale, "S-1", cashSale("S-1"), "")
	s.Require().NoError(err)
	s.env.store.PutSource(domain.SourcePosSale, "S-1", cashSale("S-1"))
	_, err = s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")
	s.Require().NoError(err)

	res, err := s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(1, res.Synced)

	entry, err := s.env.ledger.FindEntryBySource(s.ctx, domain.SourcePosSale, "S-1")
	s.Require().NoError(err)
	s.Equal(posted.Entry.EntryID, entry.EntryID)
}

func (s *OutboxServiceTestSuite) TestRunQueueSync_PermanentFailures() {
	// missing source row
	_, _ = s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-404")
	// inconsistent totals
	bad := cashSale("S-2")
	bad.Total = dec("90")
	s.env.store.PutSource(domain.SourcePosSale, "S-2", bad)
	_, _ = s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-2")
	// healthy item in the same batch
	s.env.store.PutSource(domain.SourcePosSale, "S-3", cashSale("S-3"))
	_, _ = s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-3")

	res, err := s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(3, res.Claimed)
	s.Equal(1, res.Synced)
	s.Equal(2, res.Failed)
	s.Len(res.Errors, 2)

	for _, id := range []string{"S-404", "S-2"} {
		it := s.item(domain.SourcePosSale, id)
		s.Equal(domain.OutboxError, it.Status, id)
		s.Equal(1, it.Attempts)
		s.Require().NotNil(it.LastError)
	}

	unreconciled, err := s.env.recon.Unreconciled(s.ctx, domain.SourcePosSale, 0)
	s.Require().NoError(err)
	s.Len(unreconciled, 2)
}

func (s *OutboxServiceTestSuite) TestRunQueueSync_TransientFailureRetriesUntilMaxAttempts() {
	loader := new(MockSourceLoader)
	loader.On("LoadSource", mock.Anything, domain.SourcePosSale, "S-1").Return(nil, errors.New("connection refused"))
	outbox := s.newOutbox(loader)
	_, err := outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")
	s.Require().NoError(err)

	for attempt := 1; attempt <= 2; attempt++ {
		res, err := outbox.RunQueueSync(s.ctx, 0, "")
		s.Require().NoError(err)
		s.Equal(1, res.Retrying, "attempt %d", attempt)
		it := s.item(domain.SourcePosSale, "S-1")
		s.Equal(domain.OutboxPending, it.Status)
		s.Equal(attempt, it.Attempts)
	}

	res, err := outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(1, res.Failed)
	s.Equal(domain.OutboxError, res.Errors[0].Status)
	s.Equal(3, res.Errors[0].Attempts)

	// operator fixes the cause and retries
	s.env.store.PutSource(domain.SourcePosSale, "S-1", cashSale("S-1"))
	retried, err := s.outbox.RetryItem(s.ctx, res.Errors[0].ItemID)
	s.Require().NoError(err)
	s.Equal(domain.OutboxPending, retried.Status)
	s.Equal(3, retried.Attempts)

	res, err = s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(1, res.Synced)
}

func (s *OutboxServiceTestSuite) TestRunQueueSync_RefundWaitsForPendingSale() {
	s.env.store.PutSource(domain.SourcePosSale, "S-1", cashSale("S-1"))
	s.env.store.PutSource(domain.SourcePosRefund, "R-1", cashRefund("R-1", "S-1"))
	_, err := s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")
	s.Require().NoError(err)
	s.clock.Advance(time.Second)
	_, err = s.outbox.Enqueue(s.ctx, domain.SourcePosRefund, "R-1")
	s.Require().NoError(err)

	// only refunds are synced, so the sale is still pending
	res, err := s.outbox.RunQueueSync(s.ctx, 0, domain.SourcePosRefund)
	s.Require().NoError(err)
	s.Equal(1, res.Claimed)
	s.Equal(1, res.Retrying)
	s.Zero(res.Synced)

	refund := s.item(domain.SourcePosRefund, "R-1")
	s.Equal(domain.OutboxPending, refund.Status)
	s.Equal(1, refund.Attempts)
	s.Require().NotNil(refund.LastError)
	s.Contains(*refund.LastError, "S-1")
	s.Equal(domain.OutboxPending, s.item(domain.SourcePosSale, "S-1").Status)
	_, err = s.env.ledger.FindEntryBySource(s.ctx, domain.SourcePosRefund, "R-1")
	s.ErrorIs(err, apperrors.ErrNotFound)

	res, err = s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(2, res.Synced)

	entry, err := s.env.ledger.FindEntryBySource(s.ctx, domain.SourcePosRefund, "R-1")
	s.Require().NoError(err)
	s.Equal("S-1", entry.RelatedSourceID)
}

func (s *OutboxServiceTestSuite) TestRunQueueSync_RefundOfFailedSaleNeverPosts() {
	bad := cashSale("S-1")
	bad.Total = dec("90")
	s.env.store.PutSource(domain.SourcePosSale, "S-1", bad)
	s.env.store.PutSource(domain.SourcePosRefund, "R-1", cashRefund("R-1", "S-1"))
	_, err := s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")
	s.Require().NoError(err)
	s.clock.Advance(time.Second)
	_, err = s.outbox.Enqueue(s.ctx, domain.SourcePosRefund, "R-1")
	s.Require().NoError(err)

	res, err := s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(2, res.Claimed)
	s.Equal(1, res.Failed)
	s.Equal(1, res.Retrying)
	s.Equal(domain.OutboxError, s.item(domain.SourcePosSale, "S-1").Status)
	s.Equal(domain.OutboxPending, s.item(domain.SourcePosRefund, "R-1").Status)

	// the refund keeps waiting until it runs out of attempts
	_, err = s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	res, err = s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(1, res.Failed)

	refund := s.item(domain.SourcePosRefund, "R-1")
	s.Equal(domain.OutboxError, refund.Status)
	s.Equal(3, refund.Attempts)
	_, err = s.env.ledger.FindEntryBySource(s.ctx, domain.SourcePosRefund, "R-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *OutboxServiceTestSuite) TestRetryItem_OnlyFromError() {
	it, err := s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")
	s.Require().NoError(err)

	_, err = s.outbox.RetryItem(s.ctx, it.ItemID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.outbox.RetryItem(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *OutboxServiceTestSuite) TestRunQueueSync_ReclaimsStaleClaims() {
	s.env.store.PutSource(domain.SourcePosSale, "S-1", cashSale("S-1"))
	_, _ = s.outbox.Enqueue(s.ctx, domain.SourcePosSale, "S-1")

	// a worker claims the item and crashes
	claimed, err := s.env.store.ClaimBatch(s.ctx, "", 10, s.clock.Now(), s.clock.Now().Add(-time.Minute))
	s.Require().NoError(err)
	s.Require().Len(claimed, 1)
	crashedClaim := *claimed[0].ClaimedAt

	// still within the timeout: nothing to claim
	s.clock.Advance(30 * time.Second)
	res, err := s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Zero(res.Claimed)

	s.clock.Advance(time.Minute)
	res, err = s.outbox.RunQueueSync(s.ctx, 0, "")
	s.Require().NoError(err)
	s.Equal(1, res.Claimed)
	s.Equal(1, res.Synced)

	// the crashed worker wakes up and can no longer finish the item
	err = s.env.store.MarkSynced(s.ctx, claimed[0].ItemID, crashedClaim, s.clock.Now())
	s.ErrorIs(err, apperrors.ErrClaimLost)
	err = s.env.store.MarkFailed(s.ctx, claimed[0].ItemID, crashedClaim, domain.OutboxPending, "late", s.clock.Now())
	s.ErrorIs(err, apperrors.ErrClaimLost)
}

func (s *OutboxServiceTestSuite) TestListItems_Pagination() {
	for _, id := range []string{"S-1", "S-2", "S-3"} {
		_, err := s.outbox.Enqueue(s.ctx, domain.SourcePosSale, id)
		s.Require().NoError(err)
		s.clock.Advance(time.Second)
	}

	page, next, err := s.outbox.ListItems(s.ctx, domain.OutboxFilter{Limit: 2})
	s.Require().NoError(err)
	s.Len(page, 2)
	s.Require().NotNil(next)
	s.Equal("S-1", page[0].SourceID)

	page, next, err = s.outbox.ListItems(s.ctx, domain.OutboxFilter{Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Len(page, 1)
	s.Nil(next)
	s.Equal("S-3", page[0].SourceID)

	_, _, err = s.outbox.ListItems(s.ctx, domain.OutboxFilter{Status: "stuck"})
	s.ErrorIs(err, apperrors.ErrValidation)
}
