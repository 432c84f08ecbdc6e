// Package customerrepo manages repository layer of customers.
package customerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/pkg/dbpkg"
	"github.com/go-petr/core-bank/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates customer repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns customer RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO customers (
    id,
    name,
    address
) VALUES (
    $1, $2, $3
) RETURNING id, name, address, created_at
`

// Create creates the customer and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateCustomerParams) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.ID,
		arg.Name,
		arg.Address,
	)

	var c domain.Customer

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Address,
		&c.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()
		return domain.Customer{}, errorspkg.ErrStoreUnavailable
	}

	return c, nil
}

const getQuery = `
SELECT
	id,
	name,
	address,
	created_at
FROM customers
WHERE id = $1
`

// Get returns the customer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var c domain.Customer

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Address,
		&c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Msgf("customer %v", id)
			return c, domain.ErrCustomerNotFound
		}

		l.Error().Err(err).Send()

		return c, errorspkg.ErrStoreUnavailable
	}

	return c, nil
}

const listQuery = `
SELECT
	id, name, address, created_at
FROM customers
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`

// List returns the specified number of customers, oldest first.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}
	defer rows.Close()

	items := []domain.Customer{}

	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStoreUnavailable
		}

		items = append(items, c)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}

	return items, nil
}

const countQuery = `SELECT count(*) FROM customers`

// Count returns the number of customers.
func (r *RepoPGS) Count(ctx context.Context) (int64, error) {
	var total int64

	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return 0, errorspkg.ErrStoreUnavailable
	}

	return total, nil
}
