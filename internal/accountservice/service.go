// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/pkg/randompkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxNumberRetries bounds how many times a colliding account number is regenerated.
const maxNumberRetries = 5

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	List(ctx context.Context, arg domain.ListAccountsParams) ([]domain.Account, error)
	Count(ctx context.Context, customerID uuid.UUID) (int64, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo      Repo
	newID     func() (uuid.UUID, error)
	newNumber func() string
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{
		repo:      ar,
		newID:     uuid.NewV7,
		newNumber: randompkg.AccountNumber,
	}
}

// Create opens an account with zero balance for the given customer.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var account domain.Account

	if customerID == uuid.Nil {
		return account, domain.ErrInvalidInput
	}

	id, err := s.newID()
	if err != nil {
		l.Error().Err(err).Send()
		return account, err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxNumberRetries), ctx)

	err = backoff.Retry(func() error {
		arg := domain.CreateAccountParams{
			ID:         id,
			CustomerID: customerID,
			Number:     s.newNumber(),
		}

		created, err := s.repo.Create(ctx, arg)
		if errors.Is(err, domain.ErrAccountNumberExists) {
			return err
		}

		if err != nil {
			return backoff.Permanent(err)
		}

		account = created

		return nil
	}, policy)

	return account, err
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	if id == uuid.Nil {
		return domain.Account{}, domain.ErrInvalidInput
	}

	return s.repo.Get(ctx, id)
}

// List returns a page of accounts and the number of all matching accounts.
//
// uuid.Nil customerID lists accounts of all customers.
func (s *Service) List(ctx context.Context, customerID uuid.UUID, pageSize, pageID int32) ([]domain.Account, int64, error) {
	if pageSize < 1 || pageID < 1 {
		return nil, 0, domain.ErrInvalidInput
	}

	arg := domain.ListAccountsParams{
		CustomerID: customerID,
		Limit:      pageSize,
		Offset:     (pageID - 1) * pageSize,
	}

	accounts, err := s.repo.List(ctx, arg)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}
