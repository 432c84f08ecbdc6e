package operationservice

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/internal/txrecorder"
	"github.com/go-petr/core-bank/pkg/errorspkg"
	"github.com/go-petr/core-bank/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testMaxRetries = 2

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(l Ledger) *Service {
	s := New(l, txrecorder.New(), RetryPolicy{MaxRetries: testMaxRetries, Interval: time.Millisecond})
	s.now = func() time.Time { return testNow }

	return s
}

func randomAccount(balance string) domain.Account {
	return domain.Account{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Number:     randompkg.AccountNumber(),
		Balance:    decimal.RequireFromString(balance),
		Version:    3,
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

// committed mimics the ledger storing the accounts.
func committed(ctx context.Context, accounts []domain.Account, _ []domain.Transaction) ([]domain.Account, error) {
	stored := make([]domain.Account, len(accounts))
	for i, a := range accounts {
		a.Version++
		stored[i] = a
	}

	return stored, nil
}

func TestWithdraw(t *testing.T) {
	account := randomAccount("1000")
	amount := decimal.RequireFromString("600")

	testCases := []struct {
		name          string
		accountID     uuid.UUID
		amount        decimal.Decimal
		buildStubs    func(ledger *MockLedger)
		checkResponse func(res domain.Account, err error)
	}{
		{
			name:      "OK",
			accountID: account.ID,
			amount:    amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(ctx context.Context, accounts []domain.Account, txs []domain.Transaction) ([]domain.Account, error) {
						require.Len(t, accounts, 1)
						require.Equal(t, account.Version, accounts[0].Version)
						require.True(t, accounts[0].Balance.Equal(decimal.RequireFromString("400")))

						require.Len(t, txs, 1)
						require.Equal(t, domain.Withdraw, txs[0].Kind)
						require.Equal(t, account.ID, txs[0].AccountID)
						require.True(t, txs[0].Amount.Equal(amount))
						require.Equal(t, testNow, txs[0].CreatedAt)

						return committed(ctx, accounts, txs)
					})
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.True(t, res.Balance.Equal(decimal.RequireFromString("400")))
				require.Equal(t, account.Version+1, res.Version)
			},
		},
		{
			name:      "InvalidAccountID",
			accountID: uuid.Nil,
			amount:    amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Any()).Times(0)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInvalidInput)
			},
		},
		{
			name:      "ZeroAmount",
			accountID: account.ID,
			amount:    decimal.Zero,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Any()).Times(0)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrAmountNotPositive)
			},
		},
		{
			name:      "TooPreciseAmount",
			accountID: account.ID,
			amount:    decimal.RequireFromString("0.000000001"),
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
			},
		},
		{
			name:      "HugeExponentAmount",
			accountID: account.ID,
			amount:    decimal.RequireFromString("1e-20000000"),
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrAmountPrecision)
			},
		},
		{
			name:      "AccountNotFound",
			accountID: account.ID,
			amount:    amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
		{
			name:      "InsufficientFunds",
			accountID: account.ID,
			amount:    decimal.RequireFromString("1000.01"),
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			},
		},
		{
			name:      "StoreUnavailable",
			accountID: account.ID,
			amount:    amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, errorspkg.ErrStoreUnavailable)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, errorspkg.ErrStoreUnavailable)
			},
		},
		{
			name:      "ConflictThenOK",
			accountID: account.ID,
			amount:    amount,
			buildStubs: func(ledger *MockLedger) {
				reloaded := account
				reloaded.Balance = decimal.RequireFromString("700")
				reloaded.Version++

				gomock.InOrder(
					ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Return(account, nil),
					ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrConflict),
					ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Return(reloaded, nil),
					ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(committed),
				)
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.True(t, res.Balance.Equal(decimal.RequireFromString("100")))
				require.Equal(t, account.Version+2, res.Version)
			},
		},
		{
			name:      "ConflictThenInsufficientFunds",
			accountID: account.ID,
			amount:    amount,
			buildStubs: func(ledger *MockLedger) {
				reloaded := account
				reloaded.Balance = decimal.RequireFromString("400")
				reloaded.Version++

				gomock.InOrder(
					ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Return(account, nil),
					ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrConflict),
					ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Return(reloaded, nil),
				)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			},
		},
		{
			name:      "Contention",
			accountID: account.ID,
			amount:    amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Times(testMaxRetries+1).Return(account, nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(testMaxRetries+1).
					Return(nil, domain.ErrConflict)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrContention)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ledger := NewMockLedger(ctrl)
			tc.buildStubs(ledger)

			res, err := newTestService(ledger).Withdraw(context.Background(), tc.accountID, tc.amount)
			tc.checkResponse(res, err)
		})
	}
}

func TestDepositAbandonedBeforeCommit(t *testing.T) {
	account := randomAccount("10")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := NewMockLedger(ctrl)
	ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
	ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestService(ledger).Deposit(ctx, account.ID, decimal.NewFromInt(5))
	require.Empty(t, res)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDepositBalanceLimit(t *testing.T) {
	account := randomAccount("99999999999999999999")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := NewMockLedger(ctrl)
	ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
	ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := newTestService(ledger).Deposit(context.Background(), account.ID, decimal.NewFromInt(1))
	require.ErrorIs(t, err, domain.ErrBalanceLimitExceeded)
}

func TestTransfer(t *testing.T) {
	source := randomAccount("51000.00")
	destination := randomAccount("1.00")
	amount := decimal.RequireFromString("51000.00")

	testCases := []struct {
		name              string
		sourceID          uuid.UUID
		destinationNumber string
		amount            decimal.Decimal
		buildStubs        func(ledger *MockLedger)
		wantErr           error
	}{
		{
			name:              "OK",
			sourceID:          source.ID,
			destinationNumber: destination.Number,
			amount:            amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(source.ID)).Times(1).Return(source, nil)
				ledger.EXPECT().LoadByNumber(gomock.Any(), gomock.Eq(destination.Number)).Times(1).Return(destination, nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(ctx context.Context, accounts []domain.Account, txs []domain.Transaction) ([]domain.Account, error) {
						require.Len(t, accounts, 2)
						require.Equal(t, source.ID, accounts[0].ID)
						require.True(t, accounts[0].Balance.IsZero())
						require.Equal(t, destination.ID, accounts[1].ID)
						require.True(t, accounts[1].Balance.Equal(decimal.RequireFromString("51001.00")))

						require.Len(t, txs, 2)
						require.Equal(t, domain.Withdraw, txs[0].Kind)
						require.Equal(t, source.ID, txs[0].AccountID)
						require.Equal(t, domain.Deposit, txs[1].Kind)
						require.Equal(t, destination.ID, txs[1].AccountID)
						require.Equal(t, txs[0].CreatedAt, txs[1].CreatedAt)

						return committed(ctx, accounts, txs)
					})
			},
		},
		{
			name:              "EmptyDestinationNumber",
			sourceID:          source.ID,
			destinationNumber: "",
			amount:            amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:              "NegativeAmount",
			sourceID:          source.ID,
			destinationNumber: destination.Number,
			amount:            decimal.NewFromInt(-1),
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrAmountNotPositive,
		},
		{
			name:              "SourceNotFound",
			sourceID:          source.ID,
			destinationNumber: destination.Number,
			amount:            amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(source.ID)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				ledger.EXPECT().LoadByNumber(gomock.Any(), gomock.Any()).Times(0)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:              "DestinationNotFound",
			sourceID:          source.ID,
			destinationNumber: destination.Number,
			amount:            amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(source.ID)).Times(1).Return(source, nil)
				ledger.EXPECT().LoadByNumber(gomock.Any(), gomock.Eq(destination.Number)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrDestinationNotFound,
		},
		{
			name:              "DestinationLoadFailure",
			sourceID:          source.ID,
			destinationNumber: destination.Number,
			amount:            amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(source.ID)).Times(1).Return(source, nil)
				ledger.EXPECT().LoadByNumber(gomock.Any(), gomock.Eq(destination.Number)).Times(1).Return(domain.Account{}, errorspkg.ErrStoreUnavailable)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: errorspkg.ErrStoreUnavailable,
		},
		{
			name:              "SameAccount",
			sourceID:          source.ID,
			destinationNumber: source.Number,
			amount:            amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(source.ID)).Times(1).Return(source, nil)
				ledger.EXPECT().LoadByNumber(gomock.Any(), gomock.Eq(source.Number)).Times(1).Return(source, nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:              "InsufficientFunds",
			sourceID:          source.ID,
			destinationNumber: destination.Number,
			amount:            amount.Add(decimal.NewFromInt(1)),
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(source.ID)).Times(1).Return(source, nil)
				ledger.EXPECT().LoadByNumber(gomock.Any(), gomock.Eq(destination.Number)).Times(1).Return(destination, nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:              "InsufficientFundsBeforeMissingDestination",
			sourceID:          source.ID,
			destinationNumber: destination.Number,
			amount:            amount.Add(decimal.NewFromInt(1)),
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(source.ID)).Times(1).Return(source, nil)
				ledger.EXPECT().LoadByNumber(gomock.Any(), gomock.Eq(destination.Number)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:              "Contention",
			sourceID:          source.ID,
			destinationNumber: destination.Number,
			amount:            amount,
			buildStubs: func(ledger *MockLedger) {
				ledger.EXPECT().Load(gomock.Any(), gomock.Eq(source.ID)).Times(testMaxRetries+1).Return(source, nil)
				ledger.EXPECT().LoadByNumber(gomock.Any(), gomock.Eq(destination.Number)).Times(testMaxRetries+1).Return(destination, nil)
				ledger.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(testMaxRetries+1).
					Return(nil, domain.ErrConflict)
			},
			wantErr: domain.ErrContention,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ledger := NewMockLedger(ctrl)
			tc.buildStubs(ledger)

			err := newTestService(ledger).Transfer(context.Background(), tc.sourceID, tc.destinationNumber, tc.amount)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestHistory(t *testing.T) {
	account := randomAccount("10")
	txs := []domain.Transaction{
		txrecorder.New().Deposit(account.ID, decimal.NewFromInt(10), testNow),
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := NewMockLedger(ctrl)
	ledger.EXPECT().Load(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
	ledger.EXPECT().ListTransactions(gomock.Any(), gomock.Eq(account.ID), gomock.Eq(int32(5)), gomock.Eq(int32(10))).
		Times(1).
		Return(txs, nil)

	s := newTestService(ledger)

	got, err := s.History(context.Background(), account.ID, 5, 3)
	require.NoError(t, err)
	require.Equal(t, txs, got)

	_, err = s.History(context.Background(), account.ID, 0, 1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
