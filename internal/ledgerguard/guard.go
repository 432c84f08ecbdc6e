// Package ledgerguard protects the ledger storage with a circuit breaker.
//
// While the breaker is open every call fails fast with
// errorspkg.ErrStoreUnavailable instead of waiting on a broken database.
package ledgerguard

import (
	"context"
	"errors"
	"time"

	"github.com/go-petr/core-bank/internal/domain"
	"github.com/go-petr/core-bank/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Ledger is the storage being guarded.
type Ledger interface {
	Load(ctx context.Context, id uuid.UUID) (domain.Account, error)
	LoadByNumber(ctx context.Context, number string) (domain.Account, error)
	Commit(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Account, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error)
}

// Settings configures when the breaker opens and for how long.
type Settings struct {
	// MaxFailures is the number of consecutive storage failures opening the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Guard is a Ledger decorator tripping on storage failures.
type Guard struct {
	next Ledger
	cb   *gobreaker.CircuitBreaker
}

// New returns Guard around next.
//
// Only storage failures count against the breaker, business rejections and
// version conflicts are successful calls from its point of view.
func New(next Ledger, s Settings, logger zerolog.Logger) *Guard {
	maxFailures := s.MaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ledger",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			return !errors.Is(err, errorspkg.ErrStoreUnavailable)
		},
	})

	return &Guard{next: next, cb: cb}
}

func execute[T any](g *Guard, fn func() (T, error)) (T, error) {
	var zero T

	res, err := g.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, errorspkg.ErrStoreUnavailable
		}

		return zero, err
	}

	return res.(T), nil
}

// Load returns the account snapshot with the given id.
func (g *Guard) Load(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return execute(g, func() (domain.Account, error) {
		return g.next.Load(ctx, id)
	})
}

// LoadByNumber returns the account snapshot with the given account number.
func (g *Guard) LoadByNumber(ctx context.Context, number string) (domain.Account, error) {
	return execute(g, func() (domain.Account, error) {
		return g.next.LoadByNumber(ctx, number)
	})
}

// Commit atomically stores the accounts and transactions.
func (g *Guard) Commit(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Account, error) {
	return execute(g, func() ([]domain.Account, error) {
		return g.next.Commit(ctx, accounts, transactions)
	})
}

// ListTransactions returns the specified number of transactions of the given account.
func (g *Guard) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]domain.Transaction, error) {
	return execute(g, func() ([]domain.Transaction, error) {
		return g.next.ListTransactions(ctx, accountID, limit, offset)
	})
}
