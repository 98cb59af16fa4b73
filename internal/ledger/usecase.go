package ledger

import (
	"context"

	"github.com/fekuna/cashierpro-core/internal/ledger/dto"
	"github.com/fekuna/cashierpro-core/internal/model"
)

type UseCase interface {
	// FinalizeSale checks stock and payment before touching storage, then
	// decrements every line and appends the sale snapshot atomically.
	FinalizeSale(ctx context.Context, input *dto.SaleInput) (*model.SaleSnapshot, error)

	// CombinedHistory merges both ledgers into one chronological view.
	CombinedHistory(ctx context.Context, order dto.SortOrder) ([]model.CombinedLogEntry, error)

	// GroupedHistory buckets mutation rows by second and hides the
	// per-line decrements already represented by a transaction row.
	GroupedHistory(ctx context.Context) ([]model.HistoryEntry, error)

	TransactionByID(ctx context.Context, id int64) (*model.SaleSnapshot, error)

	PeriodicIncome(ctx context.Context, period dto.Period) (int64, error)
	PeriodicExpenditure(ctx context.Context, period dto.Period) (int64, error)
}
