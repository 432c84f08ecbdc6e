// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/pkg/dbpkg"
	"github.com/go-petr/core-bank/pkg/errorspkg"
	"github.com/google/uuid"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (id, customer_id, number)
VALUES
    ($1, $2, $3)
RETURNING id, customer_id, number, balance, version, created_at
`

// Create creates the account with zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.ID, arg.CustomerID, arg.Number)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.Number,
		&a.Balance,
		&a.Version,
		&a.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "accounts_customer_id_fkey":
				l.Info().Err(err).Send()
				return domain.Account{}, domain.ErrCustomerNotFound
			case "accounts_number_key":
				l.Warn().Err(err).Send()
				return domain.Account{}, domain.ErrAccountNumberExists
			}
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrStoreUnavailable
	}

	return a, nil
}

const getQuery = `
SELECT
	id, customer_id, number, balance, version, created_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.Number,
		&a.Balance,
		&a.Version,
		&a.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Msgf("account %v", id)
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrStoreUnavailable
	}

	return a, nil
}

// A NULL customer filter matches every account.
const listAccounts = `
SELECT
	id, customer_id, number, balance, version, created_at
FROM accounts
WHERE $1::uuid IS NULL OR customer_id = $1
ORDER BY created_at, id
LIMIT $2 OFFSET $3
`

// List returns the specified number of accounts, optionally of a single customer.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListAccountsParams) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listAccounts, customerFilter(arg.CustomerID), arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Number, &a.Balance, &a.Version, &a.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStoreUnavailable
		}

		items = append(items, a)
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

const countAccounts = `
SELECT count(*)
FROM accounts
WHERE $1::uuid IS NULL OR customer_id = $1
`

// Count returns the number of accounts, optionally of a single customer.
func (r *RepoPGS) Count(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var total int64

	err := r.db.QueryRowContext(ctx, countAccounts, customerFilter(customerID)).Scan(&total)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return 0, errorspkg.ErrStoreUnavailable
	}

	return total, nil
}

func customerFilter(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
