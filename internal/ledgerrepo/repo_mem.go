package ledgerrepo

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/google/uuid"
)

// RepoMem is an in-memory ledger with the same commit semantics as RepoPGS.
type RepoMem struct {
	mu           sync.RWMutex
	accounts     map[uuid.UUID]domain.Account
	numbers      map[string]uuid.UUID
	transactions []domain.Transaction
}

// NewRepoMem returns empty RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts: make(map[uuid.UUID]domain.Account),
		numbers:  make(map[string]uuid.UUID),
	}
}

// Insert adds the account as is.
func (r *RepoMem) Insert(a domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.numbers[a.Number]; ok {
		return domain.ErrAccountNumberExists
	}

	r.accounts[a.ID] = a
	r.numbers[a.Number] = a.ID

	return nil
}

// Load returns the account snapshot with the given id.
func (r *RepoMem) Load(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// LoadByNumber returns the account snapshot with the given account number.
func (r *RepoMem) LoadByNumber(ctx context.Context, number string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.numbers[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return r.accounts[id], nil
}

// Commit stores the new balances and appends the transactions if none of the
// accounts changed since it was loaded.
func (r *RepoMem) Commit(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uuid.UUID]struct{}, len(accounts))

	for _, a := range accounts {
		current, ok := r.accounts[a.ID]
		if !ok || current.Version != a.Version {
			return nil, domain.ErrConflict
		}

		// A second write of the same row would see a bumped version.
		if _, dup := seen[a.ID]; dup {
			return nil, domain.ErrConflict
		}

		seen[a.ID] = struct{}{}

		if a.Balance.IsNegative() {
			return nil, domain.ErrInsufficientFunds
		}
	}

	stored := make([]domain.Account, len(accounts))

	for i, a := range accounts {
		current := r.accounts[a.ID]
		current.Balance = a.Balance
		current.Version++

		r.accounts[a.ID] = current
		stored[i] = current
	}

	r.transactions = append(r.transactions, transactions...)

	return stored, nil
}

// ListTransactions returns the specified number of transactions of the given account.
func (r *RepoMem) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []domain.Transaction{}

	for _, t := range r.transactions {
		if t.AccountID == accountID {
			items = append(items, t)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}

		a, b := items[i].ID, items[j].ID

		return bytes.Compare(a[:], b[:]) < 0
	})

	if int(offset) >= len(items) {
		return []domain.Transaction{}, nil
	}

	items = items[offset:]
	if int(limit) < len(items) {
		items = items[:limit]
	}

	return items, nil
}
