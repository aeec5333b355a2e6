package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/SscSPs/autoledger/internal/core/posting"
	"github.com/SscSPs/autoledger/internal/core/services"
	"github.com/SscSPs/autoledger/internal/dto"
	"github.com/SscSPs/autoledger/internal/handlers"
	"github.com/SscSPs/autoledger/internal/middleware"
	"github.com/SscSPs/autoledger/internal/platform/config"
	"github.com/SscSPs/autoledger/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var saleDate = time.Date(2025, 11, 14, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cashSale(id string) domain.PosSale {
	return domain.PosSale{
		SaleID:    id,
		SaleDate:  saleDate,
		StoreCode: "MAIN",
		Items:     []domain.PosSaleItem{{ItemID: id + "-1", Name: "Cement", Quantity: dec("2"), LineTotal: dec("80"), CostAmount: dec("50")}},
		Subtotal:  dec("80"),
		TaxTotal:  dec("20"),
		Total:     dec("100"),
		Payments:  []domain.PosPayment{{Method: "cash", Amount: dec("100")}},
	}
}

// --- Test Suite ---
type LedgerAPITestSuite struct {
	suite.Suite
	router    *gin.Engine
	store     *memory.Store
	cfg       *config.Config
	jwtSecret string
}

func TestLedgerAPITestSuite(t *testing.T) {
	suite.Run(t, new(LedgerAPITestSuite))
}

func (suite *LedgerAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(dto.RegisterValidators())
}

func (suite *LedgerAPITestSuite) SetupTest() {
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.cfg = &config.Config{
		IsProduction:           true, // keeps swagger out of the test router
		JWTSecret:              suite.jwtSecret,
		QueueBatchSize:         25,
		QueueMaxAttempts:       3,
		QueueProcessingTimeout: time.Minute,
		EventRateLimit:         "1000-S",
	}
	suite.store = memory.New()
	suite.router = suite.newRouter(suite.cfg)
}

func (suite *LedgerAPITestSuite) newRouter(cfg *config.Config) *gin.Engine {
	container := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(suite.store), posting.NewEngine(nil))
	_, err := container.Chart.SeedChart(suite.T().Context(), posting.DefaultMapping().SeedAccounts(), "seed")
	suite.Require().NoError(err)

	r := gin.New()
	suite.Require().NoError(handlers.RegisterRoutes(r, cfg, container))
	return r
}

// generateTestToken creates a signed JWT for testing.
func (suite *LedgerAPITestSuite) generateTestToken(subject string) string {
	signed, err := middleware.IssueActorToken(subject, suite.jwtSecret, time.Hour)
	suite.Require().NoError(err)
	return signed
}

func (suite *LedgerAPITestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	return suite.doOn(suite.router, method, path, body)
}

func (suite *LedgerAPITestSuite) doOn(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken("clerk-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](suite *LedgerAPITestSuite, w *httptest.ResponseRecorder) T {
	var v T
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// --- Test Cases ---

func (suite *LedgerAPITestSuite) TestHealthIsPublic() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *LedgerAPITestSuite) TestRequiresToken() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *LedgerAPITestSuite) TestPostEvent_PostsOnce() {
	w := suite.do(http.MethodPost, "/api/v1/events/pos_sale/S-1", cashSale("S-1"))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	first := decodeBody[dto.EventResponse](suite, w)
	suite.True(first.Posted)
	suite.Require().NotNil(first.EntryID)

	w = suite.do(http.MethodPost, "/api/v1/events/pos_sale/S-1", cashSale("S-1"))
	suite.Require().Equal(http.StatusOK, w.Code)
	again := decodeBody[dto.EventResponse](suite, w)
	suite.False(again.Posted)
	suite.Equal(*first.EntryID, *again.EntryID)

	// the token subject is recorded as the creator
	w = suite.do(http.MethodGet, "/api/v1/entries/"+*first.EntryID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("clerk-1", decodeBody[dto.JournalEntryResponse](suite, w).CreatedBy)
}

func (suite *LedgerAPITestSuite) TestPostEvent_LedgerFailureIsAccepted() {
	overpaid := cashSale("S-2")
	overpaid.Payments = []domain.PosPayment{{Method: "cash", Amount: dec("150")}}

	w := suite.do(http.MethodPost, "/api/v1/events/pos_sale/S-2", overpaid)

	suite.Equal(http.StatusAccepted, w.Code)
	resp := decodeBody[dto.EventResponse](suite, w)
	suite.False(resp.Posted)
	suite.Nil(resp.EntryID)
}

func (suite *LedgerAPITestSuite) TestPostEvent_RejectsMalformedRequests() {
	tests := []struct {
		name string
		path string
		body any
	}{
		{"unknown source type", "/api/v1/events/invoice/I-1", map[string]any{}},
		{"reversal is not an event", "/api/v1/events/reversal/E-1", map[string]any{}},
		{"unknown field", "/api/v1/events/pos_sale/S-3", map[string]any{"saleID": "S-3", "totl": "100"}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(http.MethodPost, tt.path, tt.body)
			suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func (suite *LedgerAPITestSuite) TestOutbox_EnqueueSyncAndReport() {
	suite.store.PutSource(domain.SourcePosSale, "S-9", cashSale("S-9"))
	suite.store.PutSource(domain.SourcePosSale, "S-10", cashSale("S-10"))

	w := suite.do(http.MethodPost, "/api/v1/outbox", dto.EnqueueRequest{SourceType: "pos_sale", SourceID: "S-9"})
	suite.Require().Equal(http.StatusAccepted, w.Code, w.Body.String())
	suite.Equal(domain.OutboxPending, decodeBody[domain.OutboxItem](suite, w).Status)

	w = suite.do(http.MethodPost, "/api/v1/outbox/sync?limit=10&kind=pos_sale", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[domain.SyncResult](suite, w)
	suite.Equal(1, result.Claimed)
	suite.Equal(1, result.Synced)

	w = suite.do(http.MethodGet, "/api/v1/outbox/stats", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(1, decodeBody[map[string]int](suite, w)["synced"])

	w = suite.do(http.MethodGet, "/api/v1/outbox?status=synced", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(decodeBody[dto.ListOutboxResponse](suite, w).Items, 1)

	// S-10 never went through the queue
	w = suite.do(http.MethodGet, "/api/v1/reports/unreconciled?sourceType=pos_sale", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	unreconciled := decodeBody[dto.UnreconciledResponse](suite, w)
	suite.Require().Len(unreconciled.Sources, 1)
	suite.Equal("S-10", unreconciled.Sources[0].SourceID)

	w = suite.do(http.MethodPost, "/api/v1/outbox", dto.EnqueueRequest{SourceType: "invoice", SourceID: "X"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/outbox/missing/retry", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LedgerAPITestSuite) TestReports_TrialBalance() {
	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/v1/events/pos_sale/S-1", cashSale("S-1")).Code)

	w := suite.do(http.MethodGet, "/api/v1/reports/trial-balance?asOf=2025-11-30", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	report := decodeBody[dto.TrialBalanceResponse](suite, w)
	suite.True(report.Balanced)
	suite.Equal("2025-11-30", report.AsOf)
	suite.Equal("150", report.Totals.Debit.String())
	suite.True(report.Totals.Net.IsZero())

	w = suite.do(http.MethodGet, "/api/v1/reports/trial-balance?asOf=30-11-2025", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/reports/unbalanced", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(decodeBody[dto.UnbalancedEntriesResponse](suite, w).Entries)
}

func (suite *LedgerAPITestSuite) TestAccounts() {
	w := suite.do(http.MethodGet, "/api/v1/accounts", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.NotEmpty(decodeBody[dto.ListAccountsResponse](suite, w).Accounts)

	inactive := false
	w = suite.do(http.MethodPatch, "/api/v1/accounts/4020", dto.UpdateAccountRequest{IsActive: &inactive})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.False(decodeBody[dto.AccountResponse](suite, w).IsActive)

	w = suite.do(http.MethodPatch, "/api/v1/accounts/9999", dto.UpdateAccountRequest{IsActive: &inactive})
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/accounts/1000/ledger?limit=10", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(decodeBody[dto.AccountLedgerResponse](suite, w).Lines)
}

func (suite *LedgerAPITestSuite) TestEntries_Reverse() {
	w := suite.do(http.MethodPost, "/api/v1/events/pos_sale/S-1", cashSale("S-1"))
	suite.Require().Equal(http.StatusOK, w.Code)
	entryID := *decodeBody[dto.EventResponse](suite, w).EntryID

	w = suite.do(http.MethodPost, "/api/v1/entries/"+entryID+"/reverse", dto.ReverseEntryRequest{Memo: "keyed twice"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	reversal := decodeBody[dto.PostingResponse](suite, w)
	suite.True(reversal.Posted)
	suite.Require().NotNil(reversal.Entry)

	w = suite.do(http.MethodPost, "/api/v1/entries/"+entryID+"/reverse", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(reversal.Entry.EntryID, decodeBody[dto.PostingResponse](suite, w).Entry.EntryID)

	w = suite.do(http.MethodPost, "/api/v1/entries/"+reversal.Entry.EntryID+"/reverse", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/entries/missing", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LedgerAPITestSuite) TestProducerRateLimit() {
	cfg := *suite.cfg
	cfg.EventRateLimit = "1-M"
	r := suite.newRouter(&cfg)

	suite.Equal(http.StatusOK, suite.doOn(r, http.MethodPost, "/api/v1/events/pos_sale/S-1", cashSale("S-1")).Code)
	suite.Equal(http.StatusTooManyRequests, suite.doOn(r, http.MethodPost, "/api/v1/events/pos_sale/S-2", cashSale("S-2")).Code)

	// reads are not limited
	suite.Equal(http.StatusOK, suite.doOn(r, http.MethodGet, "/api/v1/accounts", nil).Code)
}

func (suite *LedgerAPITestSuite) TestRegisterRoutesRejectsBadRate() {
	cfg := *suite.cfg
	cfg.EventRateLimit = "lots"
	container := services.NewServiceContainer(&cfg, memory.NewRepositoryProvider(memory.New()), posting.NewEngine(nil))

	suite.Error(handlers.RegisterRoutes(gin.New(), &cfg, container))
}
