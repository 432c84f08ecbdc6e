// Package operationservice manages business logic layer of balance operations:
// deposits, withdrawals and transfers.
package operationservice

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-petr/core-bank/internal/balance"
	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/internal/txrecorder"
	"github.com/go-petr/core-bank/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Ledger provides data access layer interface needed by operation service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package operationservice
type Ledger interface {
	Load(ctx context.Context, id uuid.UUID) (domain.Account, error)
	LoadByNumber(ctx context.Context, number string) (domain.Account, error)
	Commit(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Account, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error)
}

// RetryPolicy bounds how a commit losing a race with a concurrent update is retried.
type RetryPolicy struct {
	MaxRetries uint64
	Interval   time.Duration
}

// Service facilitates operation service layer logic.
type Service struct {
	ledger   Ledger
	recorder *txrecorder.Recorder
	retry    RetryPolicy
	now      func() time.Time
}

// New returns operation service struct to manage balance changing operations.
func New(l Ledger, r *txrecorder.Recorder, p RetryPolicy) *Service {
	return &Service{
		ledger:   l,
		recorder: r,
		retry:    p,
		now:      time.Now,
	}
}

// Deposit credits the account and returns its updated snapshot.
func (s *Service) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (domain.Account, error) {
	var result domain.Account

	if err := validRequest(ctx, accountID, amount); err != nil {
		return result, err
	}

	err := s.retryOnConflict(ctx, "deposit", func() error {
		account, err := s.ledger.Load(ctx, accountID)
		if err != nil {
			return err
		}

		next, err := balance.Deposit(account.Balance, amount)
		if err != nil {
			return err
		}

		account.Balance = next
		record := s.recorder.Deposit(account.ID, amount, s.now())

		stored, err := s.commit(ctx, []domain.Account{account}, []domain.Transaction{record})
		if err != nil {
			return err
		}

		result = stored[0]

		return nil
	})

	return result, err
}

// Withdraw debits the account and returns its updated snapshot.
func (s *Service) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (domain.Account, error) {
	var result domain.Account

	if err := validRequest(ctx, accountID, amount); err != nil {
		return result, err
	}

	err := s.retryOnConflict(ctx, "withdraw", func() error {
		account, err := s.ledger.Load(ctx, accountID)
		if err != nil {
			return err
		}

		next, err := balance.Withdraw(account.Balance, amount)
		if err != nil {
			return err
		}

		account.Balance = next
		record := s.recorder.Withdraw(account.ID, amount, s.now())

		stored, err := s.commit(ctx, []domain.Account{account}, []domain.Transaction{record})
		if err != nil {
			return err
		}

		result = stored[0]

		return nil
	})

	return result, err
}

// Transfer moves amount from the source account to the account with the given number.
//
// Both balances and both transaction legs are committed together or not at all.
func (s *Service) Transfer(ctx context.Context, sourceID uuid.UUID, destinationNumber string, amount decimal.Decimal) error {
	if destinationNumber == "" {
		zerolog.Ctx(ctx).Info().Msg("empty destination account number")
		return domain.ErrInvalidInput
	}

	if err := validRequest(ctx, sourceID, amount); err != nil {
		return err
	}

	return s.retryOnConflict(ctx, "transfer", func() error {
		source, err := s.ledger.Load(ctx, sourceID)
		if err != nil {
			return err
		}

		destinationExists := true

		destination, err := s.ledger.LoadByNumber(ctx, destinationNumber)
		if err != nil {
			if !errors.Is(err, domain.ErrAccountNotFound) {
				return err
			}

			destinationExists = false
		}

		if destinationExists && destination.ID == source.ID {
			return domain.ErrSameAccount
		}

		legs, err := balance.Transfer(source.Balance, destination.Balance, destinationExists, amount)
		if err != nil {
			return err
		}

		source.Balance = legs.Source
		destination.Balance = legs.Destination
		records := s.recorder.Transfer(source.ID, destination.ID, amount, s.now())

		_, err = s.commit(ctx, []domain.Account{source, destination}, records)

		return err
	})
}

// History returns a page of the account transactions, oldest first.
func (s *Service) History(ctx context.Context, accountID uuid.UUID, pageSize, pageID int32) ([]domain.Transaction, error) {
	if accountID == uuid.Nil || pageSize < 1 || pageID < 1 {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.ledger.Load(ctx, accountID); err != nil {
		return nil, err
	}

	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.ledger.ListTransactions(ctx, accountID, limit, offset)
}

func validRequest(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error {
	l := zerolog.Ctx(ctx)

	if accountID == uuid.Nil {
		l.Info().Msg("empty account id")
		return domain.ErrInvalidInput
	}

	if err := balance.CheckAmount(amount); err != nil {
		l.Info().Err(err).Str("amount", amount.String()).Send()
		return err
	}

	return nil
}

// commit hands the attempt to the ledger unless the caller already gave up.
func (s *Service) commit(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.ledger.Commit(ctx, accounts, transactions)
}

// retryOnConflict runs attempt until it succeeds, fails with anything other
// than domain.ErrConflict or runs out of retries.
func (s *Service) retryOnConflict(ctx context.Context, op string, attempt func() error) error {
	l := zerolog.Ctx(ctx)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.Interval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.retry.MaxRetries), ctx)

	err := backoff.RetryNotify(func() error {
		err := attempt()
		if err == nil || errors.Is(err, domain.ErrConflict) {
			return err
		}

		return backoff.Permanent(err)
	}, policy, func(err error, next time.Duration) {
		l.Warn().Err(err).Str("operation", op).Dur("retry_in", next).Send()
	})

	switch {
	case err == nil:
		l.Info().Str("operation", op).Msg("committed")
	case errors.Is(err, domain.ErrConflict):
		l.Error().Err(err).Str("operation", op).Uint64("retries", s.retry.MaxRetries).Send()
		return domain.ErrContention
	case errors.Is(err, errorspkg.ErrStoreUnavailable):
		l.Error().Err(err).Str("operation", op).Send()
	default:
		l.Info().Err(err).Str("operation", op).Msg("rejected")
	}

	return err
}
