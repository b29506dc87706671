package transaction

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/duetrack/internal/card"
	"github.com/kislikjeka/duetrack/pkg/logger"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, tx *Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockRepository) CreateBatch(ctx context.Context, txs []*Transaction) error {
	args := m.Called(ctx, txs)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	args := m.Called(ctx, id)
	if tx := args.Get(0); tx != nil {
		return tx.(*Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, tx *Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepository) List(ctx context.Context, userID uuid.UUID, filters Filters) ([]*Transaction, error) {
	args := m.Called(ctx, userID, filters)
	if txs := args.Get(0); txs != nil {
		return txs.([]*Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) FindByOrigin(ctx context.Context, originID uuid.UUID) (*Transaction, error) {
	args := m.Called(ctx, originID)
	if tx := args.Get(0); tx != nil {
		return tx.(*Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) BeginTx(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return ctx, args.Error(0)
}

func (m *mockRepository) CommitTx(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockRepository) RollbackTx(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockCardStore struct {
	mock.Mock
}

func (m *mockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*card.Card), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockContactLookup struct {
	mock.Mock
}

func (m *mockContactLookup) ContactName(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func testLogger() *logger.Logger {
	return logger.New("test", io.Discard)
}

func newTestService(repo *mockRepository, cards *mockCardStore, contacts *mockContactLookup) *Service {
	return NewService(repo, cards, contacts, testLogger())
}

func unpaidTransaction(userID uuid.UUID) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Description: "Electricity bill",
		Kind:        KindExpense,
		Amount:      decimal.NewFromInt(250),
		DueDate:     date(2025, time.September, 20),
	}
}

func TestCreateFromEntry(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	entry := validEntry()
	entry.Schedule = ScheduleInstallments{Count: 3}

	repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(txs []*Transaction) bool {
		return len(txs) == 3
	})).Return(nil)

	txs, err := svc.CreateFromEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
	repo.AssertExpectations(t)
}

func TestCreateFromEntry_InvalidEntryNeverHitsRepo(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	entry := validEntry()
	entry.Amount = decimal.Zero

	_, err := svc.CreateFromEntry(context.Background(), entry)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	repo.AssertNotCalled(t, "CreateBatch")
}

func TestMarkAsPaid_BankAccount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	tx := unpaidTransaction(uuid.New())
	accountID := uuid.New()

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, tx).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	got, err := svc.MarkAsPaid(context.Background(), tx.ID, PaymentInput{
		PaymentDate:   date(2025, time.September, 18),
		PaidAmount:    decimal.NewFromInt(250),
		PaymentType:   PaymentBankAccount,
		BankAccountID: &accountID,
	})
	require.NoError(t, err)

	assert.True(t, got.IsPaid)
	require.NotNil(t, got.PaymentDate)
	assert.Equal(t, date(2025, time.September, 18), *got.PaymentDate)
	assert.True(t, got.PaidAmount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, PaymentBankAccount, got.PaymentType)
	require.NotNil(t, got.BankAccountID)
	assert.Equal(t, accountID, *got.BankAccountID)
	assert.Nil(t, got.CardID)

	// A bank-account settlement must never spawn a statement charge.
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestMarkAsPaid_PartialAmount(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	tx := unpaidTransaction(uuid.New()) // amount 250
	accountID := uuid.New()

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, tx).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	got, err := svc.MarkAsPaid(context.Background(), tx.ID, PaymentInput{
		PaymentDate:   date(2025, time.September, 18),
		PaidAmount:    decimal.NewFromInt(100),
		PaymentType:   PaymentBankAccount,
		BankAccountID: &accountID,
	})
	require.NoError(t, err)

	// Paid amount may differ from the scheduled amount; both are kept.
	assert.True(t, got.PaidAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(250)))
}

func TestMarkAsPaid_AlreadyPaid(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	tx := unpaidTransaction(uuid.New())
	tx.IsPaid = true
	accountID := uuid.New()

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)

	_, err := svc.MarkAsPaid(context.Background(), tx.ID, PaymentInput{
		PaymentDate:   date(2025, time.September, 18),
		PaidAmount:    decimal.NewFromInt(250),
		PaymentType:   PaymentBankAccount,
		BankAccountID: &accountID,
	})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMarkAsPaid_InputValidation(t *testing.T) {
	accountID := uuid.New()
	cardID := uuid.New()

	tests := []struct {
		name    string
		input   PaymentInput
		wantErr error
	}{
		{
			name: "zero paid amount",
			input: PaymentInput{
				PaymentDate:   date(2025, time.September, 18),
				PaymentType:   PaymentBankAccount,
				BankAccountID: &accountID,
			},
			wantErr: ErrInvalidPaidAmount,
		},
		{
			name: "negative paid amount",
			input: PaymentInput{
				PaymentDate:   date(2025, time.September, 18),
				PaidAmount:    decimal.NewFromInt(-10),
				PaymentType:   PaymentBankAccount,
				BankAccountID: &accountID,
			},
			wantErr: ErrInvalidPaidAmount,
		},
		{
			name: "bank account type without account",
			input: PaymentInput{
				PaymentDate: date(2025, time.September, 18),
				PaidAmount:  decimal.NewFromInt(10),
				PaymentType: PaymentBankAccount,
			},
			wantErr: ErrMissingTargetReference,
		},
		{
			name: "credit card type without card",
			input: PaymentInput{
				PaymentDate: date(2025, time.September, 18),
				PaidAmount:  decimal.NewFromInt(10),
				PaymentType: PaymentCreditCard,
			},
			wantErr: ErrMissingTargetReference,
		},
		{
			name: "unknown payment type",
			input: PaymentInput{
				PaymentDate: date(2025, time.September, 18),
				PaidAmount:  decimal.NewFromInt(10),
				PaymentType: "cash_under_mattress",
				CardID:      &cardID,
			},
			wantErr: ErrMissingTargetReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

			_, err := svc.MarkAsPaid(context.Background(), uuid.New(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)

			// Validation failures must leave the row untouched.
			repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

func TestMarkAsPaid_CreditCardSpawnsStatementCharge(t *testing.T) {
	repo := new(mockRepository)
	cards := new(mockCardStore)
	contacts := new(mockContactLookup)
	svc := newTestService(repo, cards, contacts)

	userID := uuid.New()
	tx := unpaidTransaction(userID)
	tx.Description = "Dinner"
	contactID := uuid.New()
	tx.ContactID = &contactID
	categoryID := uuid.New()
	tx.CategoryID = &categoryID

	cardID := uuid.New()
	c := &card.Card{
		ID:         cardID,
		UserID:     userID,
		Name:       "Visa",
		ClosingDay: 10,
		DueDay:     15,
	}

	var charge *Transaction

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	cards.On("GetByID", mock.Anything, cardID).Return(c, nil)
	contacts.On("ContactName", mock.Anything, contactID).Return("Maria", nil)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, tx).Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*transaction.Transaction")).
		Run(func(args mock.Arguments) {
			charge = args.Get(1).(*Transaction)
		}).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	got, err := svc.MarkAsPaid(context.Background(), tx.ID, PaymentInput{
		PaymentDate: date(2025, time.September, 29),
		PaidAmount:  decimal.NewFromInt(250),
		PaymentType: PaymentCreditCard,
		CardID:      &cardID,
	})
	require.NoError(t, err)
	require.NotNil(t, charge)

	assert.True(t, got.IsPaid)
	assert.Equal(t, PaymentCreditCard, got.PaymentType)
	assert.Nil(t, got.BankAccountID)

	// Paying on Sep 29 misses the Sep 10 close, so the charge lands on the
	// October statement, due Oct 15.
	assert.Equal(t, date(2025, time.October, 15), charge.DueDate)
	assert.Equal(t, "Card charge: Dinner (Maria)", charge.Description)
	assert.Equal(t, KindExpense, charge.Kind)
	assert.True(t, charge.Amount.Equal(decimal.NewFromInt(250)))
	assert.False(t, charge.IsPaid)
	assert.Equal(t, userID, charge.UserID)
	require.NotNil(t, charge.OriginTransactionID)
	assert.Equal(t, tx.ID, *charge.OriginTransactionID)
	require.NotNil(t, charge.CardID)
	assert.Equal(t, cardID, *charge.CardID)
	require.NotNil(t, charge.CategoryID)
	assert.Equal(t, categoryID, *charge.CategoryID)
	assert.True(t, charge.IsStatementCharge())

	repo.AssertExpectations(t)
}

func TestMarkAsPaid_CreditCardDueDayBeforeClosingDay(t *testing.T) {
	repo := new(mockRepository)
	cards := new(mockCardStore)
	svc := newTestService(repo, cards, new(mockContactLookup))

	tx := unpaidTransaction(uuid.New())
	cardID := uuid.New()
	c := &card.Card{ID: cardID, UserID: tx.UserID, Name: "Master", ClosingDay: 20, DueDay: 5}

	var charge *Transaction

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	cards.On("GetByID", mock.Anything, cardID).Return(c, nil)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, tx).Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*transaction.Transaction")).
		Run(func(args mock.Arguments) {
			charge = args.Get(1).(*Transaction)
		}).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	_, err := svc.MarkAsPaid(context.Background(), tx.ID, PaymentInput{
		PaymentDate: date(2025, time.September, 10),
		PaidAmount:  decimal.NewFromInt(80),
		PaymentType: PaymentCreditCard,
		CardID:      &cardID,
	})
	require.NoError(t, err)
	require.NotNil(t, charge)

	// Sep 10 is inside the cycle closing Sep 20; due day 5 precedes the
	// closing day, so the statement is payable the following month.
	assert.Equal(t, date(2025, time.October, 5), charge.DueDate)
}

func TestMarkAsPaid_ContactLookupFailureDegradesDescription(t *testing.T) {
	repo := new(mockRepository)
	cards := new(mockCardStore)
	contacts := new(mockContactLookup)
	svc := newTestService(repo, cards, contacts)

	tx := unpaidTransaction(uuid.New())
	tx.Description = "Dinner"
	contactID := uuid.New()
	tx.ContactID = &contactID

	cardID := uuid.New()
	c := &card.Card{ID: cardID, UserID: tx.UserID, Name: "Visa", ClosingDay: 10, DueDay: 15}

	var charge *Transaction

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	cards.On("GetByID", mock.Anything, cardID).Return(c, nil)
	contacts.On("ContactName", mock.Anything, contactID).Return("", errors.New("lookup down"))
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, tx).Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*transaction.Transaction")).
		Run(func(args mock.Arguments) {
			charge = args.Get(1).(*Transaction)
		}).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	_, err := svc.MarkAsPaid(context.Background(), tx.ID, PaymentInput{
		PaymentDate: date(2025, time.September, 29),
		PaidAmount:  decimal.NewFromInt(250),
		PaymentType: PaymentCreditCard,
		CardID:      &cardID,
	})
	require.NoError(t, err)
	require.NotNil(t, charge)
	assert.Equal(t, "Card charge: Dinner", charge.Description)
}

func TestMarkAsPaid_CardNotFoundAbortsWithoutMutation(t *testing.T) {
	repo := new(mockRepository)
	cards := new(mockCardStore)
	svc := newTestService(repo, cards, new(mockContactLookup))

	tx := unpaidTransaction(uuid.New())
	cardID := uuid.New()

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	cards.On("GetByID", mock.Anything, cardID).Return(nil, card.ErrCardNotFound)

	_, err := svc.MarkAsPaid(context.Background(), tx.ID, PaymentInput{
		PaymentDate: date(2025, time.September, 29),
		PaidAmount:  decimal.NewFromInt(250),
		PaymentType: PaymentCreditCard,
		CardID:      &cardID,
	})
	assert.ErrorIs(t, err, ErrCardNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMarkAsPaid_CommitFailureRollsBack(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	tx := unpaidTransaction(uuid.New())
	accountID := uuid.New()

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, tx).Return(errors.New("connection reset"))
	repo.On("RollbackTx", mock.Anything).Return(nil)

	_, err := svc.MarkAsPaid(context.Background(), tx.ID, PaymentInput{
		PaymentDate:   date(2025, time.September, 18),
		PaidAmount:    decimal.NewFromInt(250),
		PaymentType:   PaymentBankAccount,
		BankAccountID: &accountID,
	})
	require.Error(t, err)
	repo.AssertCalled(t, "RollbackTx", mock.Anything)
	repo.AssertNotCalled(t, "CommitTx", mock.Anything)
}

func TestReversePayment_RestoresUnpaidState(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	tx := unpaidTransaction(uuid.New())
	accountID := uuid.New()
	paymentDate := date(2025, time.September, 18)
	tx.IsPaid = true
	tx.PaymentDate = &paymentDate
	tx.PaidAmount = decimal.NewFromInt(250)
	tx.PaymentType = PaymentBankAccount
	tx.BankAccountID = &accountID

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	repo.On("FindByOrigin", mock.Anything, tx.ID).Return(nil, nil)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, tx).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	got, err := svc.ReversePayment(context.Background(), tx.ID)
	require.NoError(t, err)

	assert.False(t, got.IsPaid)
	assert.Nil(t, got.PaymentDate)
	assert.True(t, got.PaidAmount.IsZero())
	assert.Empty(t, got.PaymentType)
	assert.Nil(t, got.BankAccountID)
	assert.Nil(t, got.CardID)

	// Schedule and identity fields survive the reversal untouched.
	assert.Equal(t, "Electricity bill", got.Description)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, date(2025, time.September, 20), got.DueDate)

	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestReversePayment_CancelsStatementCharge(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	tx := unpaidTransaction(uuid.New())
	cardID := uuid.New()
	paymentDate := date(2025, time.September, 29)
	tx.IsPaid = true
	tx.PaymentDate = &paymentDate
	tx.PaidAmount = decimal.NewFromInt(250)
	tx.PaymentType = PaymentCreditCard
	tx.CardID = &cardID

	originID := tx.ID
	charge := &Transaction{
		ID:                  uuid.New(),
		UserID:              tx.UserID,
		Description:         "Card charge: Electricity bill",
		Kind:                KindExpense,
		Amount:              decimal.NewFromInt(250),
		DueDate:             date(2025, time.October, 15),
		CardID:              &cardID,
		OriginTransactionID: &originID,
	}

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	repo.On("FindByOrigin", mock.Anything, tx.ID).Return(charge, nil)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, tx).Return(nil)
	repo.On("Delete", mock.Anything, charge.ID).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	got, err := svc.ReversePayment(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPaid)
	repo.AssertExpectations(t)
}

func TestReversePayment_NotPaid(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	tx := unpaidTransaction(uuid.New())

	repo.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)

	_, err := svc.ReversePayment(context.Background(), tx.ID)
	assert.ErrorIs(t, err, ErrNotPaid)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMarkAsPaidBatch_AggregatesPerID(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	okTx := unpaidTransaction(uuid.New())
	paidTx := unpaidTransaction(uuid.New())
	paidTx.IsPaid = true
	missingID := uuid.New()
	accountID := uuid.New()

	repo.On("GetByID", mock.Anything, okTx.ID).Return(okTx, nil)
	repo.On("GetByID", mock.Anything, paidTx.ID).Return(paidTx, nil)
	repo.On("GetByID", mock.Anything, missingID).Return(nil, ErrTransactionNotFound)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, okTx).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	ids := []uuid.UUID{okTx.ID, paidTx.ID, missingID}
	results := svc.MarkAsPaidBatch(context.Background(), ids, PaymentInput{
		PaymentDate:   date(2025, time.September, 18),
		PaidAmount:    decimal.NewFromInt(100),
		PaymentType:   PaymentBankAccount,
		BankAccountID: &accountID,
	})

	require.Len(t, results, 3)
	assert.Equal(t, okTx.ID, results[0].ID)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, paidTx.ID, results[1].ID)
	assert.ErrorIs(t, results[1].Err, ErrAlreadyPaid)
	assert.Equal(t, missingID, results[2].ID)
	assert.ErrorIs(t, results[2].Err, ErrTransactionNotFound)

	// The successful sibling committed despite the failures.
	assert.True(t, okTx.IsPaid)
}

func TestReversePaymentBatch_AggregatesPerID(t *testing.T) {
	repo := new(mockRepository)
	svc := newTestService(repo, new(mockCardStore), new(mockContactLookup))

	paidTx := unpaidTransaction(uuid.New())
	paymentDate := date(2025, time.September, 18)
	paidTx.IsPaid = true
	paidTx.PaymentDate = &paymentDate
	paidTx.PaidAmount = decimal.NewFromInt(50)
	paidTx.PaymentType = PaymentOther

	unpaidTx := unpaidTransaction(uuid.New())

	repo.On("GetByID", mock.Anything, paidTx.ID).Return(paidTx, nil)
	repo.On("GetByID", mock.Anything, unpaidTx.ID).Return(unpaidTx, nil)
	repo.On("FindByOrigin", mock.Anything, paidTx.ID).Return(nil, nil)
	repo.On("BeginTx", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, paidTx).Return(nil)
	repo.On("CommitTx", mock.Anything).Return(nil)

	results := svc.ReversePaymentBatch(context.Background(), []uuid.UUID{paidTx.ID, unpaidTx.ID})

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrNotPaid)
	assert.False(t, paidTx.IsPaid)
}
