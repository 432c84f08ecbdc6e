// Package ledgerrepo manages repository layer of the ledger: account balances
// and the transactions explaining them.
package ledgerrepo

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/pkg/dbpkg"
	"github.com/go-petr/core-bank/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// SQLSTATE codes meaning the transaction lost a race and can be retried.
const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns ledger RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const accountColumns = `id, customer_id, number, balance, version, created_at`

func scanAccount(row interface{ Scan(...any) error }, a *domain.Account) error {
	return row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.Number,
		&a.Balance,
		&a.Version,
		&a.CreatedAt,
	)
}

const loadQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
`

// Load returns the account snapshot with the given id.
func (r *RepoPGS) Load(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.load(ctx, loadQuery, id)
}

const loadByNumberQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE number = $1
`

// LoadByNumber returns the account snapshot with the given account number.
func (r *RepoPGS) LoadByNumber(ctx context.Context, number string) (domain.Account, error) {
	return r.load(ctx, loadByNumberQuery, number)
}

func (r *RepoPGS) load(ctx context.Context, query string, arg any) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	err := scanAccount(r.db.QueryRowContext(ctx, query, arg), &a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Msgf("load account %v", arg)

		return a, errorspkg.ErrStoreUnavailable
	}

	return a, nil
}

const updateBalanceQuery = `
UPDATE accounts
SET balance = $1, version = version + 1
WHERE id = $2 AND version = $3
RETURNING ` + accountColumns

const insertTransactionQuery = `
INSERT INTO
    transactions (id, account_id, amount, kind, created_at)
VALUES
    ($1, $2, $3, $4, $5)
`

// Commit writes the new balances and inserts the transactions within a single
// db transaction and returns the stored accounts in the given order.
//
// Each account is written only if its version still matches the loaded one,
// otherwise nothing is committed and domain.ErrConflict is returned.
// Accounts are written in ascending id order so that concurrent commits over
// the same pair of accounts cannot deadlock.
func (r *RepoPGS) Commit(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, storeError(ctx, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	stored := make([]domain.Account, len(accounts))

	for _, i := range writeOrder(accounts) {
		a := accounts[i]

		row := tx.QueryRowContext(ctx, updateBalanceQuery, a.Balance, a.ID, a.Version)
		if err := scanAccount(row, &stored[i]); err != nil {
			l.Warn().Err(err).Msgf("update balance of account %v at version %d", a.ID, a.Version)
			return nil, storeError(ctx, err)
		}
	}

	for _, t := range transactions {
		_, err := tx.ExecContext(ctx, insertTransactionQuery, t.ID, t.AccountID, t.Amount, string(t.Kind), t.CreatedAt)
		if err != nil {
			l.Error().Err(err).Msgf("insert transaction %+v", t)
			return nil, storeError(ctx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return nil, storeError(ctx, err)
	}

	return stored, nil
}

// writeOrder returns indexes of accounts sorted by account id.
func writeOrder(accounts []domain.Account) []int {
	order := make([]int, len(accounts))
	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := accounts[order[i]].ID, accounts[order[j]].ID
		return bytes.Compare(a[:], b[:]) < 0
	})

	return order
}

func storeError(ctx context.Context, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrConflict
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case serializationFailure, deadlockDetected:
			return domain.ErrConflict
		}

		if pqErr.Constraint == "accounts_balance_check" {
			return domain.ErrInsufficientFunds
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	return errorspkg.ErrStoreUnavailable
}

const listTransactionsQuery = `
SELECT id, account_id, amount, kind, created_at
FROM transactions
WHERE account_id = $1
ORDER BY created_at, id
LIMIT $2 OFFSET $3
`

// ListTransactions returns the specified number of transactions of the given account.
func (r *RepoPGS) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listTransactionsQuery, accountID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStoreUnavailable
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var (
			t    domain.Transaction
			kind string
		)

		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &kind, &t.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStoreUnavailable
		}

		t.Kind = domain.TransactionKind(kind)
		t.CreatedAt = t.CreatedAt.UTC()
		items = append(items, t)
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
