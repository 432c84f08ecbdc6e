// Package customerservice manages business logic layer of customers.
package customerservice

import (
	"context"
	"strings"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by customer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package customerservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateCustomerParams) (domain.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Customer, error)
	Count(ctx context.Context) (int64, error)
}

// Service facilitates customer service layer logic.
type Service struct {
	repo  Repo
	newID func() (uuid.UUID, error)
}

// New returns customer service struct to manage customer bussines logic.
func New(cr Repo) *Service {
	return &Service{
		repo:  cr,
		newID: uuid.NewV7,
	}
}

// Create creates and returns customer.
func (s *Service) Create(ctx context.Context, name, address string) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		l.Info().Msg("empty customer name")
		return domain.Customer{}, domain.ErrInvalidInput
	}

	id, err := s.newID()
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Customer{}, err
	}

	arg := domain.CreateCustomerParams{
		ID:      id,
		Name:    name,
		Address: strings.TrimSpace(address),
	}

	return s.repo.Create(ctx, arg)
}

// Get returns customer for the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	if id == uuid.Nil {
		return domain.Customer{}, domain.ErrInvalidInput
	}

	return s.repo.Get(ctx, id)
}

// List returns a page of customers and the number of all customers.
func (s *Service) List(ctx context.Context, pageSize, pageID int32) ([]domain.Customer, int64, error) {
	if pageSize < 1 || pageID < 1 {
		return nil, 0, domain.ErrInvalidInput
	}

	limit := pageSize
	offset := (pageID - 1) * pageSize

	customers, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}
