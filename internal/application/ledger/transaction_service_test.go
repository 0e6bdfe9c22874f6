package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hera/backend/internal/domain/entity"
	"github.com/hera/backend/internal/domain/ledger"
	"github.com/hera/backend/internal/domain/shared"
	"github.com/hera/backend/internal/domain/smartcode"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePolicyProvider struct {
	industries map[string]*smartcode.IndustryPolicy
}

func newFakePolicyProvider(industries ...string) *fakePolicyProvider {
	p := &fakePolicyProvider{industries: make(map[string]*smartcode.IndustryPolicy)}
	for _, ind := range industries {
		p.industries[ind] = &smartcode.IndustryPolicy{Industry: ind, MinVersion: 1, IsActive: true}
	}
	return p
}

func (p *fakePolicyProvider) FindIndustry(_ context.Context, industry string) (*smartcode.IndustryPolicy, error) {
	return p.industries[industry], nil
}

func (p *fakePolicyProvider) ListIndustries(_ context.Context) ([]smartcode.IndustryPolicy, error) {
	out := make([]smartcode.IndustryPolicy, 0, len(p.industries))
	for _, v := range p.industries {
		out = append(out, *v)
	}
	return out, nil
}

type fakeTransactionRepo struct {
	transactions map[uuid.UUID]*ledger.Transaction
	createErr    error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[uuid.UUID]*ledger.Transaction)}
}

func (r *fakeTransactionRepo) CreateAtomic(_ context.Context, t *ledger.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *t
	r.transactions[t.ID] = &copied
	return nil
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, organizationID, id uuid.UUID) (*ledger.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok || t.OrganizationID != organizationID {
		return nil, shared.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTransactionRepo) UpdateStatus(_ context.Context, t *ledger.Transaction) error {
	stored, ok := r.transactions[t.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Status = t.Status
	stored.Metadata = t.Metadata
	return nil
}

func (r *fakeTransactionRepo) GetBalance(_ context.Context, organizationID, entityID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, t := range r.transactions {
		if t.OrganizationID != organizationID || !t.IsPosted() || t.TransactionDate.After(asOf) {
			continue
		}
		for _, line := range t.Lines {
			if line.LineEntityID == entityID {
				balance = balance.Add(line.SignedAmount())
			}
		}
	}
	return balance, nil
}

func (r *fakeTransactionRepo) GetBalances(ctx context.Context, organizationID uuid.UUID, entityIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, id := range entityIDs {
		b, err := r.GetBalance(ctx, organizationID, id, asOf)
		if err != nil {
			return nil, err
		}
		if !b.IsZero() {
			out[id] = b
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) CountNonVoidedLinesForEntity(_ context.Context, organizationID, entityID uuid.UUID) (int64, error) {
	var n int64
	for _, t := range r.transactions {
		if t.OrganizationID != organizationID || t.Status == ledger.StatusVoided {
			continue
		}
		for _, line := range t.Lines {
			if line.LineEntityID == entityID {
				n++
			}
		}
	}
	return n, nil
}

func (r *fakeTransactionRepo) CountDraftInRange(_ context.Context, organizationID uuid.UUID, start, end time.Time) (int64, error) {
	var n int64
	for _, t := range r.transactions {
		if t.OrganizationID == organizationID && t.Status == ledger.StatusDraft &&
			!t.TransactionDate.Before(start) && !t.TransactionDate.After(end) {
			n++
		}
	}
	return n, nil
}

type fakeEntityRepo struct {
	entities map[uuid.UUID]*entity.Entity
	fields   map[uuid.UUID][]entity.DynamicField
}

func newFakeEntityRepo() *fakeEntityRepo {
	return &fakeEntityRepo{
		entities: make(map[uuid.UUID]*entity.Entity),
		fields:   make(map[uuid.UUID][]entity.DynamicField),
	}
}

func (r *fakeEntityRepo) put(e *entity.Entity) { r.entities[e.ID] = e }

func (r *fakeEntityRepo) Create(_ context.Context, e *entity.Entity) error {
	for _, existing := range r.entities {
		if existing.OrganizationID == e.OrganizationID && existing.EntityType == e.EntityType &&
			e.EntityCode != "" && existing.EntityCode == e.EntityCode && !existing.IsDeleted() {
			return shared.ErrDuplicateEntityCode
		}
	}
	r.put(e)
	return nil
}

func (r *fakeEntityRepo) FindByID(_ context.Context, organizationID, id uuid.UUID) (*entity.Entity, error) {
	e, ok := r.entities[id]
	if !ok || e.OrganizationID != organizationID || e.IsDeleted() {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *fakeEntityRepo) FindByTypeAndCode(_ context.Context, organizationID uuid.UUID, entityType, entityCode string) (*entity.Entity, error) {
	for _, e := range r.entities {
		if e.OrganizationID == organizationID && e.EntityType == entityType &&
			e.EntityCode == entityCode && !e.IsDeleted() {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEntityRepo) List(_ context.Context, organizationID uuid.UUID, entityType string, filter shared.Filter) ([]entity.Entity, int64, error) {
	var out []entity.Entity
	for _, e := range r.entities {
		if e.OrganizationID == organizationID && (entityType == "" || e.EntityType == entityType) && !e.IsDeleted() {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeEntityRepo) ListByType(_ context.Context, organizationID uuid.UUID, entityType string) ([]entity.Entity, error) {
	var out []entity.Entity
	for _, e := range r.entities {
		if e.OrganizationID == organizationID && e.EntityType == entityType && !e.IsDeleted() {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntityRepo) Update(_ context.Context, e *entity.Entity) error {
	if _, ok := r.entities[e.ID]; !ok {
		return shared.ErrNotFound
	}
	r.put(e)
	return nil
}

func (r *fakeEntityRepo) UpdateStatusIf(_ context.Context, organizationID, id uuid.UUID, from, to entity.Status) (bool, error) {
	e, ok := r.entities[id]
	if !ok || e.OrganizationID != organizationID {
		return false, shared.ErrNotFound
	}
	if e.Status != from {
		return false, nil
	}
	e.Status = to
	return true, nil
}

func (r *fakeEntityRepo) UpsertDynamicField(_ context.Context, f *entity.DynamicField) error {
	existing := r.fields[f.EntityID]
	for i, old := range existing {
		if old.FieldName == f.FieldName {
			existing[i] = *f
			return nil
		}
	}
	r.fields[f.EntityID] = append(existing, *f)
	return nil
}

func (r *fakeEntityRepo) FindDynamicFields(_ context.Context, organizationID, entityID uuid.UUID) ([]entity.DynamicField, error) {
	return r.fields[entityID], nil
}

func newTestTransactionService() (*TransactionService, *fakeTransactionRepo, *fakeEntityRepo) {
	txns := newFakeTransactionRepo()
	entities := newFakeEntityRepo()
	checker := smartcode.NewChecker(newFakePolicyProvider("FIN", "SALON"))
	return NewTransactionService(txns, entities, checker, zap.NewNop()), txns, entities
}

func mustAccount(t *testing.T, repo *fakeEntityRepo, orgID uuid.UUID, code, name string) *entity.Entity {
	t.Helper()
	e, err := entity.New(orgID, entity.TypeGLAccount, name, code, "HERA.FIN.GL.ACCOUNT.v1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func journalRequest(cash, revenue uuid.UUID, amount string, date time.Time) PostTransactionRequest {
	amt, _ := decimal.NewFromString(amount)
	return PostTransactionRequest{
		TransactionType: ledger.TypeJournalEntry,
		TransactionCode: "JE-" + uuid.NewString()[:8],
		TransactionDate: date,
		SmartCode:       "HERA.FIN.GL.TXN.JOURNAL.v1",
		TotalAmount:     amt,
		Lines: []PostLineRequest{
			{LineNumber: 1, LineEntityID: cash, LineAmount: amt, Side: "debit", SmartCode: "HERA.FIN.GL.LINE.DEBIT.v1"},
			{LineNumber: 2, LineEntityID: revenue, LineAmount: amt, Side: "credit", SmartCode: "HERA.FIN.GL.LINE.CREDIT.v1"},
		},
	}
}

func TestTransactionService_Post(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("posts a balanced journal entry", func(t *testing.T) {
		svc, txns, entities := newTestTransactionService()
		cash := mustAccount(t, entities, orgID, "1100", "Cash")
		revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

		resp, err := svc.Post(ctx, orgID, journalRequest(cash.ID, revenue.ID, "250.00", date))
		require.NoError(t, err)
		assert.Equal(t, string(ledger.StatusPosted), resp.Status)
		assert.Len(t, resp.Lines, 2)

		stored, err := txns.FindByID(ctx, orgID, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusPosted, stored.Status)
	})

	t.Run("rejects an unbalanced journal entry", func(t *testing.T) {
		svc, txns, entities := newTestTransactionService()
		cash := mustAccount(t, entities, orgID, "1100", "Cash")
		revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

		req := journalRequest(cash.ID, revenue.ID, "100.00", date)
		req.Lines[1].LineAmount = decimal.NewFromInt(90)

		_, err := svc.Post(ctx, orgID, req)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNBALANCED_ENTRY", domainErr.Code)
		assert.Empty(t, txns.transactions)
	})

	t.Run("rejects an unregistered smart-code industry", func(t *testing.T) {
		svc, _, entities := newTestTransactionService()
		cash := mustAccount(t, entities, orgID, "1100", "Cash")
		revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

		req := journalRequest(cash.ID, revenue.ID, "100.00", date)
		req.SmartCode = "HERA.NOPE.GL.TXN.JOURNAL.v1"

		_, err := svc.Post(ctx, orgID, req)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_SMART_CODE", domainErr.Code)
	})

	t.Run("rejects a gapped line sequence", func(t *testing.T) {
		svc, _, entities := newTestTransactionService()
		cash := mustAccount(t, entities, orgID, "1100", "Cash")
		revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

		req := journalRequest(cash.ID, revenue.ID, "100.00", date)
		req.Lines[1].LineNumber = 3

		_, err := svc.Post(ctx, orgID, req)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_LINE_SEQUENCE", domainErr.Code)
	})

	t.Run("refuses a ledger posting into a closed period", func(t *testing.T) {
		svc, _, entities := newTestTransactionService()
		cash := mustAccount(t, entities, orgID, "1100", "Cash")
		revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

		period, err := entity.New(orgID, entity.TypeFiscalPeriod, "March 2025", "2025-03", "HERA.FIN.FISCAL.PERIOD.MONTH.v1")
		require.NoError(t, err)
		period.Status = entity.StatusClosed
		require.NoError(t, entities.Create(ctx, period))

		_, err = svc.Post(ctx, orgID, journalRequest(cash.ID, revenue.ID, "100.00", date))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PERIOD_CLOSED", domainErr.Code)
	})

	t.Run("allows a non-ledger posting into a closed period", func(t *testing.T) {
		svc, _, entities := newTestTransactionService()
		customer := mustAccount(t, entities, orgID, "CUST-1", "Walk-in")

		period, err := entity.New(orgID, entity.TypeFiscalPeriod, "March 2025", "2025-03", "HERA.FIN.FISCAL.PERIOD.MONTH.v1")
		require.NoError(t, err)
		period.Status = entity.StatusClosed
		require.NoError(t, entities.Create(ctx, period))

		amt := decimal.NewFromInt(40)
		resp, err := svc.Post(ctx, orgID, PostTransactionRequest{
			TransactionType: ledger.TypeSale,
			TransactionCode: "SALE-1",
			TransactionDate: date,
			SmartCode:       "HERA.SALON.POS.TXN.SALE.v1",
			TotalAmount:     amt,
			Lines: []PostLineRequest{
				{LineNumber: 1, LineEntityID: customer.ID, LineAmount: amt, SmartCode: "HERA.SALON.POS.LINE.SERVICE.v1"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, string(ledger.StatusPosted), resp.Status)
	})
}

func TestTransactionService_Reverse(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("nets the balance to zero and annotates the original", func(t *testing.T) {
		svc, txns, entities := newTestTransactionService()
		cash := mustAccount(t, entities, orgID, "1100", "Cash")
		revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

		posted, err := svc.Post(ctx, orgID, journalRequest(cash.ID, revenue.ID, "250.00", date))
		require.NoError(t, err)

		rev, err := svc.Reverse(ctx, orgID, posted.ID, "JE-REV-1", date.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, posted.ID, *rev.ReversalOfID)

		original, err := txns.FindByID(ctx, orgID, posted.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusReversed, original.Status)

		balance, err := svc.GetBalance(ctx, orgID, cash.ID, date.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.True(t, balance.Balance.IsZero(), "cash balance should net to zero, got %s", balance.Balance)
	})

	t.Run("refuses a second reversal", func(t *testing.T) {
		svc, _, entities := newTestTransactionService()
		cash := mustAccount(t, entities, orgID, "1100", "Cash")
		revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

		posted, err := svc.Post(ctx, orgID, journalRequest(cash.ID, revenue.ID, "250.00", date))
		require.NoError(t, err)

		_, err = svc.Reverse(ctx, orgID, posted.ID, "JE-REV-1", date)
		require.NoError(t, err)

		_, err = svc.Reverse(ctx, orgID, posted.ID, "JE-REV-2", date)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_REVERSED", domainErr.Code)
	})

	t.Run("refuses a reversal into a closed period", func(t *testing.T) {
		svc, _, entities := newTestTransactionService()
		cash := mustAccount(t, entities, orgID, "1100", "Cash")
		revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

		posted, err := svc.Post(ctx, orgID, journalRequest(cash.ID, revenue.ID, "250.00", date))
		require.NoError(t, err)

		period, err := entity.New(orgID, entity.TypeFiscalPeriod, "April 2025", "2025-04", "HERA.FIN.FISCAL.PERIOD.MONTH.v1")
		require.NoError(t, err)
		period.Status = entity.StatusClosed
		require.NoError(t, entities.Create(ctx, period))

		_, err = svc.Reverse(ctx, orgID, posted.ID, "JE-REV-1", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PERIOD_CLOSED", domainErr.Code)
	})
}

func TestTransactionService_GetBalance(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	svc, _, entities := newTestTransactionService()
	cash := mustAccount(t, entities, orgID, "1100", "Cash")
	revenue := mustAccount(t, entities, orgID, "4100", "Service Revenue")

	_, err := svc.Post(ctx, orgID, journalRequest(cash.ID, revenue.ID, "250.00", date))
	require.NoError(t, err)
	_, err = svc.Post(ctx, orgID, journalRequest(cash.ID, revenue.ID, "100.00", date.AddDate(0, 0, 5)))
	require.NoError(t, err)

	t.Run("sums signed amounts up to the as-of date", func(t *testing.T) {
		balance, err := svc.GetBalance(ctx, orgID, cash.ID, date.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(250).Equal(balance.Balance))

		balance, err = svc.GetBalance(ctx, orgID, cash.ID, date.AddDate(0, 0, 10))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(350).Equal(balance.Balance))
	})

	t.Run("revenue carries a credit balance", func(t *testing.T) {
		balance, err := svc.GetBalance(ctx, orgID, revenue.ID, date.AddDate(0, 0, 10))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(-350).Equal(balance.Balance))
	})

	t.Run("unknown entity is rejected", func(t *testing.T) {
		_, err := svc.GetBalance(ctx, orgID, uuid.New(), date)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}
