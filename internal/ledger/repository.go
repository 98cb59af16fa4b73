package ledger

import (
	"context"
	"time"

	"github.com/fekuna/cashierpro-core/internal/ledger/dto"
	"github.com/fekuna/cashierpro-core/internal/model"
)

type Repository interface {
	// Ledger reads. Storage order is insertion order; chronology is a
	// read-time concern handled by the usecase.
	ListMutations(ctx context.Context) ([]model.MutationLogEntry, error)
	ListTransactions(ctx context.Context) ([]model.TransactionLogEntry, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.SaleSnapshot, error)

	// FinalizeSale commits a whole sale in one storage transaction: every
	// line's guarded stock decrement, one mutation row per line, and the
	// transaction-log row. Returns the new transaction-log row id.
	FinalizeSale(ctx context.Context, lines []dto.PreparedSaleLine, snapshot *model.SaleSnapshot, allowNegative bool) (int64, error)

	// Reporting aggregates, inclusive lower bound.
	SumIncomeSince(ctx context.Context, since time.Time) (int64, error)
	SumExpenditureSince(ctx context.Context, since time.Time) (int64, error)
}
