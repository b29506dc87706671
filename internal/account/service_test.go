package account

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/duetrack/internal/transaction"
	"github.com/kislikjeka/duetrack/pkg/logger"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, a *BankAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*BankAccount, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*BankAccount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*BankAccount, error) {
	args := m.Called(ctx, userID)
	if as := args.Get(0); as != nil {
		return as.([]*BankAccount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, a *BankAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockSettledReader struct {
	mock.Mock
}

func (m *mockSettledReader) ListSettledByAccount(ctx context.Context, accountID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, accountID)
	if txs := args.Get(0); txs != nil {
		return txs.([]*transaction.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *logger.Logger {
	return logger.New("test", io.Discard)
}

func settledTx(kind transaction.Kind, paidAmount int64, accountID uuid.UUID) *transaction.Transaction {
	paymentDate := time.Date(2025, time.September, 18, 0, 0, 0, 0, time.UTC)
	return &transaction.Transaction{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Description:   "settled",
		Kind:          kind,
		Amount:        decimal.NewFromInt(paidAmount),
		DueDate:       paymentDate,
		IsPaid:        true,
		PaymentDate:   &paymentDate,
		PaidAmount:    decimal.NewFromInt(paidAmount),
		PaymentType:   transaction.PaymentBankAccount,
		BankAccountID: &accountID,
	}
}

func TestCreate(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, new(mockSettledReader), testLogger())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*account.BankAccount")).Return(nil)

	a, err := svc.Create(context.Background(), uuid.New(), "Checking", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "Checking", a.Name)
	assert.True(t, a.InitialBalance.Equal(decimal.NewFromInt(1000)))
	repo.AssertExpectations(t)
}

func TestCreate_Invalid(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, new(mockSettledReader), testLogger())

	_, err := svc.Create(context.Background(), uuid.New(), "", decimal.Zero)
	assert.ErrorIs(t, err, ErrEmptyName)
	repo.AssertNotCalled(t, "Create")
}

func TestBalance(t *testing.T) {
	repo := new(mockRepository)
	settled := new(mockSettledReader)
	svc := NewService(repo, settled, testLogger())

	accountID := uuid.New()
	a := &BankAccount{ID: accountID, UserID: uuid.New(), Name: "Checking", InitialBalance: decimal.Zero}

	repo.On("GetByID", mock.Anything, accountID).Return(a, nil)
	settled.On("ListSettledByAccount", mock.Anything, accountID).Return([]*transaction.Transaction{
		settledTx(transaction.KindIncome, 5000, accountID),
		settledTx(transaction.KindExpense, 1200, accountID),
		settledTx(transaction.KindInvestment, 300, accountID),
	}, nil)

	b, err := svc.Balance(context.Background(), accountID)
	require.NoError(t, err)

	assert.Equal(t, accountID, b.AccountID)
	assert.True(t, b.InitialBalance.IsZero())
	assert.True(t, b.TotalMovements.Equal(decimal.NewFromInt(4100)), "got %s", b.TotalMovements)
	assert.True(t, b.Current.Equal(decimal.NewFromInt(4100)), "got %s", b.Current)
}

func TestBalance_UsesPaidAmountNotScheduledAmount(t *testing.T) {
	repo := new(mockRepository)
	settled := new(mockSettledReader)
	svc := NewService(repo, settled, testLogger())

	accountID := uuid.New()
	a := &BankAccount{ID: accountID, UserID: uuid.New(), Name: "Checking", InitialBalance: decimal.NewFromInt(100)}

	tx := settledTx(transaction.KindExpense, 250, accountID)
	tx.PaidAmount = decimal.NewFromInt(200) // settled below the scheduled amount

	repo.On("GetByID", mock.Anything, accountID).Return(a, nil)
	settled.On("ListSettledByAccount", mock.Anything, accountID).Return([]*transaction.Transaction{tx}, nil)

	b, err := svc.Balance(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, b.Current.Equal(decimal.NewFromInt(-100)), "got %s", b.Current)
}

// Credit-card settlements never move a bank balance, even when the row still
// carries a stale bank account reference.
func TestBalance_ExcludesCreditCardSettlements(t *testing.T) {
	repo := new(mockRepository)
	settled := new(mockSettledReader)
	svc := NewService(repo, settled, testLogger())

	accountID := uuid.New()
	a := &BankAccount{ID: accountID, UserID: uuid.New(), Name: "Checking", InitialBalance: decimal.NewFromInt(5000)}

	cardSettled := settledTx(transaction.KindExpense, 1200, accountID)
	cardSettled.PaymentType = transaction.PaymentCreditCard

	unpaid := settledTx(transaction.KindExpense, 400, accountID)
	unpaid.IsPaid = false

	repo.On("GetByID", mock.Anything, accountID).Return(a, nil)
	settled.On("ListSettledByAccount", mock.Anything, accountID).Return([]*transaction.Transaction{
		cardSettled,
		unpaid,
	}, nil)

	b, err := svc.Balance(context.Background(), accountID)
	require.NoError(t, err)

	assert.True(t, b.TotalMovements.IsZero(), "got %s", b.TotalMovements)
	assert.True(t, b.Current.Equal(decimal.NewFromInt(5000)), "got %s", b.Current)
}

func TestBalance_AccountNotFound(t *testing.T) {
	repo := new(mockRepository)
	settled := new(mockSettledReader)
	svc := NewService(repo, settled, testLogger())

	accountID := uuid.New()
	repo.On("GetByID", mock.Anything, accountID).Return(nil, ErrAccountNotFound)

	_, err := svc.Balance(context.Background(), accountID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	settled.AssertNotCalled(t, "ListSettledByAccount")
}
