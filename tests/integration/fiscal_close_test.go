// Package integration tests the fiscal close engine against a real
// PostgreSQL database: period provisioning, the close preview, the
// generated closing entry, and the posting guard on closed periods.
package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcore "github.com/hera/backend/internal/application/core"
	appfiscal "github.com/hera/backend/internal/application/fiscal"
	appledger "github.com/hera/backend/internal/application/ledger"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/fiscal"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/domain/smartcode"
	"github.com/hera/backend/internal/infrastructure/persistence"
)

// CloseTestSetup wires the real repositories and services against a
// migrated database, with one provisioned organization.
type CloseTestSetup struct {
	DB           *TestDB
	Orgs         *appcore.OrganizationService
	Entities     *appcore.EntityService
	Transactions *appledger.TransactionService
	Closer       *appfiscal.CloseService
	TxnRepo      ledger.Repository
	OrgID        uuid.UUID
}

func NewCloseTestSetup(t *testing.T) *CloseTestSetup {
	t.Helper()

	testDB := NewTestDB(t)
	log := zap.NewNop()

	orgRepo := persistence.NewGormOrganizationRepository(testDB.DB)
	entityRepo := persistence.NewGormEntityRepository(testDB.DB)
	relRepo := persistence.NewGormRelationshipRepository(testDB.DB)
	txnRepo := persistence.NewGormTransactionRepository(testDB.DB)
	policyRepo := persistence.NewGormSmartCodePolicyRepository(testDB.DB)
	checker := smartcode.NewChecker(policyRepo)

	orgs := appcore.NewOrganizationService(orgRepo, log)
	entities := appcore.NewEntityService(entityRepo, relRepo, txnRepo, checker, log)
	transactions := appledger.NewTransactionService(txnRepo, entityRepo, checker, log)
	closer := appfiscal.NewCloseService(entityRepo, txnRepo, log)

	org, err := orgs.Create(context.Background(), appcore.CreateOrganizationRequest{
		Name:                 "Close Test Co",
		Currency:             "USD",
		FiscalYearStartMonth: 1,
	})
	require.NoError(t, err, "Failed to provision organization")

	return &CloseTestSetup{
		DB:           testDB,
		Orgs:         orgs,
		Entities:     entities,
		Transactions: transactions,
		Closer:       closer,
		TxnRepo:      txnRepo,
		OrgID:        org.ID,
	}
}

// CreateGLAccount seeds one general-ledger account entity. accountType is
// stored in metadata and drives the close sweep classification; pass ""
// for accounts that do not participate in the close.
func (s *CloseTestSetup) CreateGLAccount(t *testing.T, code, name, smartCode, accountType string) uuid.UUID {
	t.Helper()

	req := appcore.CreateEntityRequest{
		EntityType: entity.TypeGLAccount,
		EntityName: name,
		EntityCode: code,
		SmartCode:  smartCode,
	}
	if accountType != "" {
		req.Metadata = shared.JSONMap{"account_type": accountType}
	}

	resp, err := s.Entities.Create(context.Background(), s.OrgID, req)
	require.NoError(t, err, "Failed to create GL account %s", code)
	return resp.ID
}

// PostJournal posts a two-line balanced journal entry on the given date.
func (s *CloseTestSetup) PostJournal(t *testing.T, code string, date time.Time, debitAccount, creditAccount uuid.UUID, amount decimal.Decimal) *appledger.TransactionResponse {
	t.Helper()

	resp, err := s.Transactions.Post(context.Background(), s.OrgID, appledger.PostTransactionRequest{
		TransactionType: ledger.TypeJournalEntry,
		TransactionCode: code,
		TransactionDate: date,
		SmartCode:       "HERA.FIN.GL.TXN.JOURNAL.v1",
		TotalAmount:     amount,
		Lines: []appledger.PostLineRequest{
			{
				LineNumber:   1,
				LineEntityID: debitAccount,
				LineAmount:   amount,
				Side:         string(ledger.SideDebit),
				SmartCode:    "HERA.FIN.GL.LINE.JOURNAL.v1",
			},
			{
				LineNumber:   2,
				LineEntityID: creditAccount,
				LineAmount:   amount,
				Side:         string(ledger.SideCredit),
				SmartCode:    "HERA.FIN.GL.LINE.JOURNAL.v1",
			},
		},
	})
	require.NoError(t, err, "Failed to post journal %s", code)
	return resp
}

func TestCloseEngine_FullCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewCloseTestSetup(t)
	ctx := context.Background()

	// Provision the 2025 fiscal periods
	periods, err := setup.Closer.GeneratePeriods(ctx, setup.OrgID, 2025)
	require.NoError(t, err)
	require.Len(t, periods, 12)
	for _, p := range periods {
		assert.Equal(t, string(entity.StatusOpen), p.Status)
	}
	assert.Equal(t, "2025-01", periods[0].Code)
	assert.Equal(t, "2025-12", periods[11].Code)

	// Chart of accounts: cash stays out of the close sweep
	cash := setup.CreateGLAccount(t, "1000", "Cash", "HERA.FIN.GL.ACC.CASH.v1", "")
	revenue := setup.CreateGLAccount(t, "4000", "Service Revenue", "HERA.FIN.GL.ACC.REVENUE.v1", "revenue")
	expense := setup.CreateGLAccount(t, "5000", "Rent Expense", "HERA.FIN.GL.ACC.EXPENSE.v1", "expense")
	retained := setup.CreateGLAccount(t, "3200", "Retained Earnings", "HERA.FIN.GL.ACC.EQUITY.RETAINED.v1", "")
	setup.CreateGLAccount(t, "3300", "Current Year Earnings", "HERA.FIN.GL.ACC.EQUITY.CURRENT.v1", "")

	march := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	setup.PostJournal(t, "JE-2025-001", march, cash, revenue, decimal.NewFromInt(1000))
	setup.PostJournal(t, "JE-2025-002", march, expense, cash, decimal.NewFromInt(400))

	closeReq := appfiscal.CloseRequest{Year: 2025, Month: 3}

	t.Run("preview computes net income without writing", func(t *testing.T) {
		preview, err := setup.Closer.Preview(ctx, setup.OrgID, closeReq)
		require.NoError(t, err)

		assert.Equal(t, "2025-03", preview.PeriodCode)
		require.Len(t, preview.Revenue, 1)
		require.Len(t, preview.Expenses, 1)
		assert.Equal(t, "4000", preview.Revenue[0].AccountCode)
		assert.Equal(t, "5000", preview.Expenses[0].AccountCode)
		assert.True(t, preview.TotalRevenue.Equal(decimal.NewFromInt(1000)),
			"total revenue = %s", preview.TotalRevenue)
		assert.True(t, preview.TotalExpenses.Equal(decimal.NewFromInt(400)),
			"total expenses = %s", preview.TotalExpenses)
		assert.True(t, preview.NetIncome.Equal(decimal.NewFromInt(600)),
			"net income = %s", preview.NetIncome)
		assert.NotEmpty(t, preview.Lines)

		// Preview must not post anything or flip the period
		period, err := setup.Entities.ReadByCode(ctx, setup.OrgID, entity.TypeFiscalPeriod, "2025-03")
		require.NoError(t, err)
		assert.Equal(t, string(entity.StatusOpen), period.Status)
	})

	var closingTxnID uuid.UUID

	t.Run("close posts the closing entry and flips the period", func(t *testing.T) {
		result, err := setup.Closer.Close(ctx, setup.OrgID, closeReq)
		require.NoError(t, err)
		require.NotNil(t, result.TransactionID)
		closingTxnID = *result.TransactionID

		txn, err := setup.Transactions.Get(ctx, setup.OrgID, closingTxnID)
		require.NoError(t, err)
		assert.Equal(t, ledger.TypeClosingEntry, txn.TransactionType)
		assert.Equal(t, "CLOSE-2025-03", txn.TransactionCode)
		assert.Equal(t, string(ledger.StatusPosted), txn.Status)
		assert.NotEmpty(t, txn.Lines)

		period, err := setup.Entities.ReadByCode(ctx, setup.OrgID, entity.TypeFiscalPeriod, "2025-03")
		require.NoError(t, err)
		assert.Equal(t, string(entity.StatusClosed), period.Status)
	})

	t.Run("closing entry zeroes the swept accounts", func(t *testing.T) {
		asOf := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

		revBal, err := setup.TxnRepo.GetBalance(ctx, setup.OrgID, revenue, asOf)
		require.NoError(t, err)
		assert.True(t, revBal.IsZero(), "revenue balance = %s", revBal)

		expBal, err := setup.TxnRepo.GetBalance(ctx, setup.OrgID, expense, asOf)
		require.NoError(t, err)
		assert.True(t, expBal.IsZero(), "expense balance = %s", expBal)

		// Net income lands in retained earnings as a credit balance
		reBal, err := setup.TxnRepo.GetBalance(ctx, setup.OrgID, retained, asOf)
		require.NoError(t, err)
		assert.True(t, reBal.Equal(decimal.NewFromInt(-600)), "retained earnings balance = %s", reBal)
	})

	t.Run("closing twice is rejected", func(t *testing.T) {
		_, err := setup.Closer.Close(ctx, setup.OrgID, closeReq)
		require.Error(t, err)

		var verr *appfiscal.ValidationError
		require.True(t, errors.As(err, &verr))
		codes := make([]string, 0, len(verr.Report.Issues))
		for _, issue := range verr.Report.Issues {
			codes = append(codes, issue.Code)
		}
		assert.Contains(t, codes, fiscal.IssuePeriodNotOpen)
	})

	t.Run("posting into the closed period is rejected", func(t *testing.T) {
		_, err := setup.Transactions.Post(ctx, setup.OrgID, appledger.PostTransactionRequest{
			TransactionType: ledger.TypeJournalEntry,
			TransactionCode: "JE-2025-003",
			TransactionDate: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
			SmartCode:       "HERA.FIN.GL.TXN.JOURNAL.v1",
			TotalAmount:     decimal.NewFromInt(50),
			Lines: []appledger.PostLineRequest{
				{LineNumber: 1, LineEntityID: cash, LineAmount: decimal.NewFromInt(50), Side: string(ledger.SideDebit), SmartCode: "HERA.FIN.GL.LINE.JOURNAL.v1"},
				{LineNumber: 2, LineEntityID: revenue, LineAmount: decimal.NewFromInt(50), Side: string(ledger.SideCredit), SmartCode: "HERA.FIN.GL.LINE.JOURNAL.v1"},
			},
		})
		require.Error(t, err)

		var derr *shared.DomainError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, shared.ErrPeriodClosed.Code, derr.Code)
	})

	t.Run("adjacent periods stay open", func(t *testing.T) {
		period, err := setup.Entities.ReadByCode(ctx, setup.OrgID, entity.TypeFiscalPeriod, "2025-04")
		require.NoError(t, err)
		assert.Equal(t, string(entity.StatusOpen), period.Status)

		// Posting into April still works
		setup.PostJournal(t, "JE-2025-004",
			time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC),
			cash, revenue, decimal.NewFromInt(250))
	})
}

func TestCloseEngine_Validation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewCloseTestSetup(t)
	ctx := context.Background()

	t.Run("close without provisioned period is rejected", func(t *testing.T) {
		_, err := setup.Closer.Close(ctx, setup.OrgID, appfiscal.CloseRequest{Year: 2030, Month: 6})
		require.Error(t, err)
	})

	t.Run("generate periods is idempotent", func(t *testing.T) {
		first, err := setup.Closer.GeneratePeriods(ctx, setup.OrgID, 2026)
		require.NoError(t, err)
		require.Len(t, first, 12)

		again, err := setup.Closer.GeneratePeriods(ctx, setup.OrgID, 2026)
		require.NoError(t, err)
		require.Len(t, again, 12)
	})

	t.Run("close without earnings accounts is rejected", func(t *testing.T) {
		_, err := setup.Closer.GeneratePeriods(ctx, setup.OrgID, 2027)
		require.NoError(t, err)

		_, err = setup.Closer.Close(ctx, setup.OrgID, appfiscal.CloseRequest{Year: 2027, Month: 1})
		require.Error(t, err)

		// The failed close releases the period lock
		period, err := setup.Entities.ReadByCode(ctx, setup.OrgID, entity.TypeFiscalPeriod, "2027-01")
		require.NoError(t, err)
		assert.Equal(t, string(entity.StatusOpen), period.Status)
	})
}
